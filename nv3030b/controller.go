// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nv3030b

import (
	"image"
	"time"
)

// Commands
const (
	swReset       byte = 0x01
	sleepIn       byte = 0x10
	sleepOut      byte = 0x11
	invertOff     byte = 0x20
	invertOn      byte = 0x21
	displayOff    byte = 0x28
	displayOn     byte = 0x29
	columnAddress byte = 0x2A
	rowAddress    byte = 0x2B
	memoryWrite   byte = 0x2C
	madctl        byte = 0x36
	pixelFormat   byte = 0x3A
)

// MADCTL bits.
const (
	madctlMY  byte = 0x80 // Bottom to top
	madctlMX  byte = 0x40 // Right to left
	madctlMV  byte = 0x20 // Row/column exchange
	madctlML  byte = 0x10 // Refresh bottom to top
	madctlBGR byte = 0x08
	madctlRGB byte = 0x00
)

// pixelFormat16 selects RGB565 on the MCU interface.
const pixelFormat16 byte = 0x05

// rowOffset is the number of RAM rows above the visible area.
const rowOffset = 20

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	chipSelect(bool)
	sleep(time.Duration)
}

// initPanel runs the power-on configuration. The panel must have been
// hardware reset before.
func initPanel(ctrl controller) {
	ctrl.chipSelect(true)

	ctrl.sendCommand(swReset)
	ctrl.sleep(10 * time.Millisecond)

	ctrl.sendCommand(madctl)
	ctrl.sendData([]byte{madctlRGB})

	ctrl.sendCommand(pixelFormat)
	ctrl.sendData([]byte{pixelFormat16})

	// Without it this panel family shows inverted colors.
	ctrl.sendCommand(invertOn)

	ctrl.sendCommand(sleepOut)
	ctrl.sleep(10 * time.Millisecond)

	ctrl.sendCommand(displayOn)

	ctrl.chipSelect(false)
}

// setAddressWindow selects the RAM area written by the next memory write.
// area is in RAM coordinates, Max exclusive.
func setAddressWindow(ctrl controller, area image.Rectangle) {
	x0, x1 := area.Min.X, area.Max.X-1
	y0, y1 := area.Min.Y, area.Max.Y-1

	ctrl.sendCommand(columnAddress)
	ctrl.sendData([]byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)})

	ctrl.sendCommand(rowAddress)
	ctrl.sendData([]byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)})

	ctrl.sendCommand(memoryWrite)
}

// writeFrame sends a full width*height frame. pix is in wire order.
func writeFrame(ctrl controller, size image.Point, pix []byte) {
	ctrl.chipSelect(true)
	setAddressWindow(ctrl, image.Rect(0, rowOffset, size.X, size.Y+rowOffset))
	ctrl.sendData(pix)
	ctrl.chipSelect(false)
}

// haltPanel blanks the panel and puts it to sleep.
func haltPanel(ctrl controller) {
	ctrl.chipSelect(true)
	ctrl.sendCommand(displayOff)
	ctrl.sendCommand(sleepIn)
	// Sleep-in needs 120ms before any sleep-out.
	ctrl.sleep(120 * time.Millisecond)
	ctrl.chipSelect(false)
}
