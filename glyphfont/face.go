// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyphfont

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ASCII is the printable ASCII range, space included.
const ASCII = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// FromFace rasterizes the characters of charset with face.
//
// Glyph cells are the advance width of the character by the ascent plus
// descent of the face, with the baseline at the ascent. charset must only
// contain ASCII characters; duplicates are ignored.
func FromFace(face font.Face, charset string) (*Font, error) {
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()
	if height <= 0 {
		return nil, fmt.Errorf("glyphfont: face has no height (%v)", m)
	}
	f := &Font{Index: make([]uint32, 128), Height: height}
	for i := range f.Index {
		f.Index[i] = NoGlyph
	}
	for i := 0; i < len(charset); i++ {
		c := charset[i]
		if c >= 128 {
			return nil, fmt.Errorf("glyphfont: non ASCII character 0x%02X", c)
		}
		if f.Index[c] != NoGlyph {
			continue
		}
		adv, ok := face.GlyphAdvance(rune(c))
		if !ok {
			return nil, fmt.Errorf("%w %q in face", ErrNoGlyph, c)
		}
		w := adv.Round()
		if w < 0 || w > 255 {
			return nil, fmt.Errorf("glyphfont: %q is %d pixels wide", c, w)
		}
		f.Index[c] = uint32(len(f.Data))
		f.Data = append(f.Data, byte(w))
		if c == ' ' {
			continue
		}
		dst := image.NewAlpha(image.Rect(0, 0, w, height))
		d := font.Drawer{
			Dst:  dst,
			Src:  image.Opaque,
			Face: face,
			Dot:  fixed.P(0, ascent),
		}
		d.DrawString(string(c))
		f.Data = append(f.Data, dst.Pix...)
	}
	return f, nil
}
