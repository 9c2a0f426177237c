// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/GermanBionicSystems/nvpanel/rgb565"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// digitChars are the characters of a gauge reading.
const digitChars = "0123456789."

type alignment int

const (
	alignLeft alignment = iota
	alignMiddle
	alignRight
)

// bigDigits is a set of pre-rendered character images.
type bigDigits struct {
	glyphs map[byte]*rgb565.Image
	height int
}

// renderDigits draws every digit of face, magnified by scale, into its own
// image. TrueType faces are usually rendered at the final size with scale 1,
// bitmap faces are scaled up.
func renderDigits(face font.Face, scale float64, fg, bg color.Color) (*bigDigits, error) {
	m := face.Metrics()
	ascent := float64(m.Ascent.Ceil())
	height := int(math.Ceil((ascent + float64(m.Descent.Ceil())) * scale))
	b := &bigDigits{glyphs: map[byte]*rgb565.Image{}, height: height}
	for i := 0; i < len(digitChars); i++ {
		c := digitChars[i]
		adv, ok := face.GlyphAdvance(rune(c))
		if !ok {
			return nil, fmt.Errorf("font has no %q glyph", c)
		}
		w := int(math.Ceil(float64(adv) / 64 * scale))
		dc := gg.NewContext(w, height)
		dc.SetColor(bg)
		dc.Clear()
		dc.SetColor(fg)
		dc.SetFontFace(face)
		dc.Scale(scale, scale)
		dc.DrawString(string(c), 0, ascent)
		img := rgb565.FromImage(dc.Image())
		if img.Null() {
			return nil, fmt.Errorf("can't allocate the %q glyph", c)
		}
		b.glyphs[c] = img
	}
	return b, nil
}

// measure returns the width of s. Characters without an image are skipped.
func (b *bigDigits) measure(s string) int {
	w := 0
	for i := 0; i < len(s); i++ {
		if g := b.glyphs[s[i]]; g != nil {
			w += g.Rect.Dx()
		}
	}
	return w
}

// draw copies the images of s into dst with the anchor at (x, y) and returns
// the drawn width.
func (b *bigDigits) draw(dst *rgb565.Image, x, y int, s string, a alignment) int {
	total := b.measure(s)
	pen := x - total*int(a)/2
	for i := 0; i < len(s); i++ {
		g := b.glyphs[s[i]]
		if g == nil {
			continue
		}
		dst.DrawImage(pen, y, g)
		pen += g.Rect.Dx()
	}
	return total
}

// reading formats tenths as a one decimal number.
func reading(tenths int) string {
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
