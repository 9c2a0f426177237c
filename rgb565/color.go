// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"fmt"
	"image/color"
)

// Color is a packed RGB565 color: 5 bits red, 6 bits green, 5 bits blue.
type Color uint16

// Colors used by the gauge firmware.
const (
	Black  Color = 0x0000
	White  Color = 0xFFFF
	Red    Color = 0xF800
	Purple Color = 0xF81F
)

// RGB packs 8 bits per channel values, dropping the low bits.
func RGB(r, g, b uint8) Color {
	return Color(r>>3)<<11 | Color(g>>2)<<5 | Color(b>>3)
}

// Channels returns the 5 bits red, 6 bits green and 5 bits blue values.
func (c Color) Channels() (r, g, b uint8) {
	return uint8(c>>11) & 0x1F, uint8(c>>5) & 0x3F, uint8(c) & 0x1F
}

// Hi returns the first byte sent on the wire: RRRRRGGG.
func (c Color) Hi() byte {
	return byte(c >> 8)
}

// Lo returns the second byte sent on the wire: GGGBBBBB.
func (c Color) Lo() byte {
	return byte(c)
}

// RGBA implements color.Color.
//
// Channels are expanded by replicating their high bits into the low bits so
// that White maps to 0xFFFF.
func (c Color) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := c.Channels()
	r8 := uint32(r5<<3 | r5>>2)
	g8 := uint32(g6<<2 | g6>>4)
	b8 := uint32(b5<<3 | b5>>2)
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

func (c Color) String() string {
	return fmt.Sprintf("rgb565.Color(0x%04X)", uint16(c))
}

func convert(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return Color(r>>11)<<11 | Color(g>>10)<<5 | Color(b>>11)
}

// Model converts any color to Color. Alpha is ignored.
var Model = color.ModelFunc(convert)

// Blend mixes fg over bg. mix is the weight of fg: 0 returns bg and 255
// returns fg unchanged.
//
// Each channel is computed on its native bit width with truncating integer
// division.
func Blend(bg, fg Color, mix uint8) Color {
	switch mix {
	case 0:
		return bg
	case 255:
		return fg
	}
	r1, g1, b1 := bg.Channels()
	r2, g2, b2 := fg.Channels()
	m := uint32(mix)
	n := 255 - m
	r := (uint32(r1)*n + uint32(r2)*m) / 255
	g := (uint32(g1)*n + uint32(g2)*m) / 255
	b := (uint32(b1)*n + uint32(b2)*m) / 255
	return Color(r)<<11 | Color(g)<<5 | Color(b)
}

// BlendTable maps an 8 bits intensity to the blended color.
type BlendTable [256]Color

// NewBlendTable precomputes Blend(bg, fg, i) for every intensity i.
func NewBlendTable(bg, fg Color) *BlendTable {
	t := &BlendTable{}
	for i := range t {
		t[i] = Blend(bg, fg, uint8(i))
	}
	return t
}
