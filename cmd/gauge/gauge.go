// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"github.com/GermanBionicSystems/nvpanel/glyphfont"
	"github.com/GermanBionicSystems/nvpanel/nv3030b"
	"github.com/GermanBionicSystems/nvpanel/rgb565"
)

// Layout of the 240x280 screen.
const (
	labelText = "Miles Per Gallon"
	labelX    = 15
	labelY    = 180
	digitsY   = 100
)

// gauge shows a fuel economy reading counting up by 0.2.
type gauge struct {
	dev    *nv3030b.Dev
	label  *glyphfont.Font
	digits *bigDigits

	tenths    int
	lastWidth int
}

// start clears the screen and draws the static label.
func (g *gauge) start() error {
	fb := g.dev.Framebuffer()
	fb.Clear(rgb565.Black)
	if err := fb.DrawTextBG(g.label, labelText, labelX, labelY, rgb565.Black, rgb565.White); err != nil {
		return err
	}
	return g.dev.UpdateDisplay()
}

// step draws the current reading, sends the frame and advances the reading.
func (g *gauge) step() error {
	fb := g.dev.Framebuffer()
	cx := fb.Rect.Dx() / 2
	w := g.digits.draw(fb, cx, digitsY, reading(g.tenths), alignMiddle)
	if w < g.lastWidth {
		// Erase what the previous, wider reading left on both sides.
		oldX := cx - g.lastWidth/2
		newX := cx - w/2
		g.clearSpan(fb, oldX, newX)
		g.clearSpan(fb, newX+w, oldX+g.lastWidth)
	}
	g.lastWidth = w
	g.tenths += 2
	return g.dev.UpdateDisplay()
}

// clearSpan blacks out columns [x0, x1) of the digits row.
func (g *gauge) clearSpan(fb *rgb565.Image, x0, x1 int) {
	x0 = max(x0, 0)
	x1 = min(x1, fb.Rect.Dx())
	if x1 <= x0 {
		return
	}
	fb.DrawRectangle(rgb565.Rect{X: uint16(x0), Y: digitsY, W: uint16(x1 - x0), H: uint16(g.digits.height)}, rgb565.Black)
}
