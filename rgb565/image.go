// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb565

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/GermanBionicSystems/nvpanel/glyphfont"
)

// MaxPixels is the largest surface New agrees to allocate.
const MaxPixels = 1 << 22

// ErrTextOutOfBounds is returned by DrawTextBG in StrictText mode when the
// text run does not fit in the image.
var ErrTextOutOfBounds = errors.New("rgb565: text does not fit in image")

// PanelID identifies the panel driver using an Image as its framebuffer.
// Zero means none.
type PanelID uint32

// TextClipping selects how DrawTextBG handles text crossing the image edges.
type TextClipping uint8

const (
	// ClipText drops the glyph pixels falling outside of the image.
	ClipText TextClipping = iota
	// StrictText refuses to draw a run that does not entirely fit.
	StrictText
)

// Rect is a rectangle in pixels relative to the top-left corner of an Image.
type Rect struct {
	X, Y, W, H uint16
}

// Image is a RGB565 surface with its origin at (0, 0).
//
// The zero value is the null image: no size and no buffer. It is what New
// returns when it cannot allocate.
type Image struct {
	// Pix holds two bytes per pixel, row-major, in wire order.
	Pix []byte
	// Stride is the number of bytes per row, 2*width.
	Stride int
	// Rect is the image bounds; Min is always (0, 0).
	Rect image.Rectangle
	// Text is the clipping policy of DrawTextBG.
	Text TextClipping

	owner PanelID
}

// New allocates a width*height image cleared to Black.
//
// It returns the null image when a dimension is not positive or the surface
// is larger than MaxPixels. Callers must check Null before use.
func New(width, height int) *Image {
	if width <= 0 || height <= 0 || width > MaxPixels/height {
		return &Image{}
	}
	return &Image{
		Pix:    make([]byte, 2*width*height),
		Stride: 2 * width,
		Rect:   image.Rect(0, 0, width, height),
	}
}

// FromImage returns a copy of src converted to RGB565, or the null image if
// src is too large.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	p := New(b.Dx(), b.Dy())
	if !p.Null() {
		draw.Draw(p, p.Rect, src, b.Min, draw.Src)
	}
	return p
}

// Null reports whether p is the null image.
func (p *Image) Null() bool {
	return p.Pix == nil
}

// Release drops the buffer and resets p to the null image. Calling it on the
// null image does nothing.
func (p *Image) Release() {
	*p = Image{}
}

// SetOwner marks p as the framebuffer of panel id, or unmarks it with 0.
func (p *Image) SetOwner(id PanelID) {
	p.owner = id
}

// Owner returns the panel using p as its framebuffer, or 0.
func (p *Image) Owner() PanelID {
	return p.owner
}

// IsFramebuffer reports whether p is bound to a panel.
func (p *Image) IsFramebuffer() bool {
	return p.owner != 0
}

// ColorModel implements image.Image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the pixel at (x, y), or Black outside of the image.
func (p *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Black
	}
	i := p.offset(x, y)
	return Color(p.Pix[i])<<8 | Color(p.Pix[i+1])
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Model.Convert(c).(Color))
}

// SetRGB565 sets the pixel at (x, y). It does nothing outside of the image.
func (p *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.offset(x, y)
	p.Pix[i] = c.Hi()
	p.Pix[i+1] = c.Lo()
}

func (p *Image) offset(x, y int) int {
	return y*p.Stride + 2*x
}

// Clear sets every pixel to c.
func (p *Image) Clear(c Color) {
	hi, lo := c.Hi(), c.Lo()
	for i := 0; i < len(p.Pix); i += 2 {
		p.Pix[i] = hi
		p.Pix[i+1] = lo
	}
}

// DrawRectangle fills r with c.
//
// A rectangle starting past the right or bottom edge is ignored; otherwise it
// is clipped to the image.
func (p *Image) DrawRectangle(r Rect, c Color) {
	w, h := p.Rect.Dx(), p.Rect.Dy()
	x, y := int(r.X), int(r.Y)
	if x > w || y > h {
		return
	}
	rw, rh := min(int(r.W), w-x), min(int(r.H), h-y)
	if rw == 0 || rh == 0 {
		return
	}
	// Fill the first row and replicate it, every row is identical.
	start := p.offset(x, y)
	first := p.Pix[start : start+2*rw]
	hi, lo := c.Hi(), c.Lo()
	for i := 0; i < len(first); i += 2 {
		first[i] = hi
		first[i+1] = lo
	}
	for j := 1; j < rh; j++ {
		o := start + j*p.Stride
		copy(p.Pix[o:o+2*rw], first)
	}
}

// DrawTextBG renders text with its top-left corner at (x, y), blending fg
// over bg with each glyph intensity.
//
// Every glyph is looked up before drawing: a character missing from f
// (glyphfont.ErrNoGlyph) or a damaged glyph (glyphfont.ErrCorrupt) is
// reported and nothing is drawn. Spaces only advance the pen. What happens at
// the image edges depends on p.Text.
func (p *Image) DrawTextBG(f *glyphfont.Font, text string, x, y int, bg, fg Color) error {
	glyphs := make([]glyphfont.Glyph, len(text))
	width := 0
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			adv, err := f.Advance(' ')
			if err != nil {
				return err
			}
			glyphs[i].Width = adv
		} else {
			g, err := f.Glyph(text[i])
			if err != nil {
				return err
			}
			glyphs[i] = g
		}
		width += glyphs[i].Width
	}
	w, h := p.Rect.Dx(), p.Rect.Dy()
	if p.Text == StrictText && (x < 0 || y < 0 || x+width > w || y+f.Height > h) {
		return ErrTextOutOfBounds
	}
	table := NewBlendTable(bg, fg)
	pen := x
	for i, g := range glyphs {
		if text[i] == ' ' {
			pen += g.Width
			continue
		}
		for row := 0; row < f.Height; row++ {
			dy := y + row
			if dy < 0 || dy >= h {
				continue
			}
			for col, a := range g.Row(row) {
				dx := pen + col
				if dx < 0 || dx >= w {
					continue
				}
				o := p.offset(dx, dy)
				c := table[a]
				p.Pix[o] = c.Hi()
				p.Pix[o+1] = c.Lo()
			}
		}
		pen += g.Width
	}
	return nil
}

// DrawImage copies src onto p with the top-left corner of src at (x, y).
//
// The copy is opaque. Only the part of src overlapping p is copied.
func (p *Image) DrawImage(x, y int, src *Image) {
	dw, dh := p.Rect.Dx(), p.Rect.Dy()
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	if x >= dw || y >= dh || x <= -sw || y <= -sh {
		return
	}
	x0, y0 := max(0, -x), max(0, -y)
	x1, y1 := min(sw, dw-x), min(sh, dh-y)
	n := 2 * (x1 - x0)
	for sy := y0; sy < y1; sy++ {
		so := src.offset(x0, sy)
		do := p.offset(x+x0, y+sy)
		copy(p.Pix[do:do+n], src.Pix[so:so+n])
	}
}

var _ draw.Image = &Image{}
