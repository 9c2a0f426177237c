// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyphfont reads pre-rasterized bitmap fonts.
//
// A font is a byte blob plus an index table mapping a character code to the
// offset of its glyph in the blob. A glyph is one width byte followed by
// width*Height intensity bytes, row-major. Intensities are 0 (background) to
// 255 (foreground).
//
// The space glyph is only used for its advance width and does not need to
// carry a raster.
package glyphfont

import (
	"errors"
	"fmt"
)

// NoGlyph marks an index table entry without a glyph.
const NoGlyph = ^uint32(0)

var (
	// ErrNoGlyph is returned for characters absent from the index table.
	ErrNoGlyph = errors.New("glyphfont: no glyph for character")
	// ErrCorrupt is returned when a glyph record extends past the blob.
	ErrCorrupt = errors.New("glyphfont: glyph outside of font data")
)

// Font is a read-only bitmap font.
type Font struct {
	// Data holds the glyph records.
	Data []byte
	// Index maps a character code to an offset in Data, or NoGlyph.
	Index []uint32
	// Height is the number of rows of every glyph.
	Height int
}

// Glyph is one character's raster.
type Glyph struct {
	Width int
	// Alpha holds Width*Height intensities, row-major.
	Alpha []byte
}

// Row returns the intensities of row y.
func (g Glyph) Row(y int) []byte {
	return g.Alpha[y*g.Width : (y+1)*g.Width]
}

func (f *Font) offset(c byte) (int, error) {
	if f.Height <= 0 {
		return 0, fmt.Errorf("%w: height %d", ErrCorrupt, f.Height)
	}
	if int(c) >= len(f.Index) || f.Index[c] == NoGlyph {
		return 0, fmt.Errorf("%w %q", ErrNoGlyph, c)
	}
	off := int(f.Index[c])
	if off >= len(f.Data) {
		return 0, fmt.Errorf("%w: %q at offset %d", ErrCorrupt, c, off)
	}
	return off, nil
}

// Advance returns the registered width of c in pixels.
func (f *Font) Advance(c byte) (int, error) {
	off, err := f.offset(c)
	if err != nil {
		return 0, err
	}
	return int(f.Data[off]), nil
}

// Glyph returns the raster of c.
func (f *Font) Glyph(c byte) (Glyph, error) {
	off, err := f.offset(c)
	if err != nil {
		return Glyph{}, err
	}
	w := int(f.Data[off])
	end := off + 1 + w*f.Height
	if end > len(f.Data) {
		return Glyph{}, fmt.Errorf("%w: %q needs %d bytes", ErrCorrupt, c, end-off)
	}
	return Glyph{Width: w, Alpha: f.Data[off+1 : end]}, nil
}

// MeasureText returns the sum of the advances of every character of text,
// spaces included.
//
// The index table must cover every character in text; the first missing one
// is reported as ErrNoGlyph.
func (f *Font) MeasureText(text string) (int, error) {
	w := 0
	for i := 0; i < len(text); i++ {
		a, err := f.Advance(text[i])
		if err != nil {
			return 0, err
		}
		w += a
	}
	return w, nil
}

func (f *Font) String() string {
	n := 0
	for _, off := range f.Index {
		if off != NoGlyph {
			n++
		}
	}
	return fmt.Sprintf("glyphfont.Font{height: %d, glyphs: %d, %d bytes}", f.Height, n, len(f.Data))
}
