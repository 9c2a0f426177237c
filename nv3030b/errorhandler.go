// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nv3030b

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// errorHandler implements controller on top of a Dev and keeps the first
// error. Once set, every operation but chip select release is skipped.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) pinOut(p gpio.PinOut, l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = p.Out(l)
}

func (eh *errorHandler) tx(w []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, nil)
}

func (eh *errorHandler) sendCommand(cmd byte) {
	eh.pinOut(eh.d.dc, gpio.Low)
	eh.tx([]byte{cmd})
}

// sendData writes data in chunks no larger than the connection allows.
func (eh *errorHandler) sendData(data []byte) {
	eh.pinOut(eh.d.dc, gpio.High)
	for len(data) > 0 && eh.err == nil {
		n := min(len(data), eh.d.maxTxSize)
		eh.tx(data[:n])
		data = data[n:]
	}
}

func (eh *errorHandler) chipSelect(active bool) {
	if eh.d.cs == nil {
		return
	}
	if active {
		eh.pinOut(eh.d.cs, gpio.Low)
		return
	}
	// Always release the bus.
	if err := eh.d.cs.Out(gpio.High); eh.err == nil {
		eh.err = err
	}
}

func (eh *errorHandler) sleep(d time.Duration) {
	if eh.err != nil {
		return
	}
	eh.d.sleep(d)
}

func (eh *errorHandler) wrapped() error {
	if eh.err != nil {
		return fmt.Errorf("nv3030b: %w", eh.err)
	}
	return nil
}
