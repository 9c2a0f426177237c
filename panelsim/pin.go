// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

// Pin is a GPIO wired to the emulated panel.
type Pin struct {
	gpiotest.Pin

	onOut  func(gpio.Level)
	onDuty func(gpio.Duty)
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	if p.onOut != nil {
		p.onOut(l)
	}
	if p.onDuty != nil {
		d := gpio.Duty(0)
		if l == gpio.High {
			d = gpio.DutyMax
		}
		p.onDuty(d)
	}
	return nil
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	if err := p.Pin.Out(duty > 0); err != nil {
		return err
	}
	if p.onDuty != nil {
		p.onDuty(duty)
	}
	return nil
}

var _ gpio.PinIO = &Pin{}
