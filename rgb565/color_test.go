// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"image/color"
	"testing"
)

func TestColorBytes(t *testing.T) {
	for _, tc := range []struct {
		name   string
		c      Color
		hi, lo byte
	}{
		{"black", Black, 0x00, 0x00},
		{"white", White, 0xFF, 0xFF},
		{"red", Red, 0xF8, 0x00},
		{"purple", Purple, 0xF8, 0x1F},
		{"green", RGB(0, 255, 0), 0x07, 0xE0},
		{"blue", RGB(0, 0, 255), 0x00, 0x1F},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Hi(); got != tc.hi {
				t.Errorf("Hi() = 0x%02X, want 0x%02X", got, tc.hi)
			}
			if got := tc.c.Lo(); got != tc.lo {
				t.Errorf("Lo() = 0x%02X, want 0x%02X", got, tc.lo)
			}
		})
	}
}

func TestModelRoundTrip(t *testing.T) {
	// Every one of the 65536 values survives RGBA() and back.
	for v := 0; v <= 0xFFFF; v++ {
		c := Color(v)
		if got := Model.Convert(color.RGBA64Model.Convert(c)).(Color); got != c {
			t.Fatalf("round trip of %v = %v", c, got)
		}
	}
}

func TestModelConvert(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   color.Color
		want Color
	}{
		{"passthrough", Purple, Purple},
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"red", color.RGBA{0xFF, 0, 0, 0xFF}, Red},
		{"truncated", color.RGBA{0x07, 0x03, 0x07, 0xFF}, Black},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := Model.Convert(tc.in).(Color); got != tc.want {
				t.Errorf("Convert(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestBlendEndpoints(t *testing.T) {
	colors := []Color{Black, White, Red, Purple, RGB(12, 200, 99), RGB(250, 1, 128)}
	for _, bg := range colors {
		for _, fg := range colors {
			if got := Blend(bg, fg, 0); got != bg {
				t.Errorf("Blend(%v, %v, 0) = %v, want %v", bg, fg, got, bg)
			}
			if got := Blend(bg, fg, 255); got != fg {
				t.Errorf("Blend(%v, %v, 255) = %v, want %v", bg, fg, got, fg)
			}
		}
	}
}

func TestBlendMonotonic(t *testing.T) {
	for _, tc := range []struct {
		name   string
		bg, fg Color
	}{
		{"black to white", Black, White},
		{"white to black", White, Black},
		{"red to purple", Red, Purple},
		{"mixed", RGB(200, 30, 90), RGB(10, 250, 180)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sign := func(a, b uint8) int {
				switch {
				case b > a:
					return 1
				case b < a:
					return -1
				}
				return 0
			}
			br, bg, bb := tc.bg.Channels()
			fr, fg, fb := tc.fg.Channels()
			dir := [3]int{sign(br, fr), sign(bg, fg), sign(bb, fb)}
			prev := [3]uint8{br, bg, bb}
			for mix := 1; mix <= 255; mix++ {
				r, g, b := Blend(tc.bg, tc.fg, uint8(mix)).Channels()
				cur := [3]uint8{r, g, b}
				for i := range cur {
					if s := sign(prev[i], cur[i]); s != 0 && s != dir[i] {
						t.Fatalf("channel %d moved from %d to %d at mix %d", i, prev[i], cur[i], mix)
					}
				}
				prev = cur
			}
		})
	}
}

func TestBlendMidpoint(t *testing.T) {
	// (0*127 + 31*128) / 255 = 15, (0*127 + 63*128) / 255 = 31.
	want := Color(15<<11 | 31<<5 | 15)
	if got := Blend(Black, White, 128); got != want {
		t.Errorf("Blend(Black, White, 128) = %v, want %v", got, want)
	}
}

func TestNewBlendTable(t *testing.T) {
	table := NewBlendTable(Red, White)
	for i, c := range table {
		if want := Blend(Red, White, uint8(i)); c != want {
			t.Fatalf("table[%d] = %v, want %v", i, c, want)
		}
	}
}
