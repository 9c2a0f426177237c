// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/draw"
)

// TerminalOpts represents the options of a Terminal.
type TerminalOpts struct {
	// Scale divides both dimensions of the rendered images. Defaults to 4.
	Scale   int
	Palette *ansi256.Palette

	_ struct{}
}

// Terminal renders panel snapshots to the console (stdout) using ANSI color
// codes, one character cell per scaled down pixel.
type Terminal struct {
	w       io.Writer
	scale   int
	palette ansi256.Palette

	small *image.RGBA
	buf   bytes.Buffer
}

// NewTerminal returns a Terminal writing to stdout.
func NewTerminal(opts *TerminalOpts) *Terminal {
	t := &Terminal{
		w:       colorable.NewColorableStdout(),
		scale:   4,
		palette: *ansi256.Default,
	}
	if opts != nil {
		if opts.Scale > 0 {
			t.scale = opts.Scale
		}
		if opts.Palette != nil {
			t.palette = *opts.Palette
		}
	}
	return t
}

func (t *Terminal) String() string {
	return "Terminal"
}

// Halt implements conn.Resource.
//
// It resets the colors so the console is not corrupted.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\033[0m\n"))
	return err
}

// Render draws img from the top-left corner of the console.
func (t *Terminal) Render(img image.Image) error {
	b := img.Bounds()
	r := image.Rect(0, 0, (b.Dx()+t.scale-1)/t.scale, (b.Dy()+t.scale-1)/t.scale)
	if t.small == nil || t.small.Bounds() != r {
		t.small = image.NewRGBA(r)
	}
	draw.NearestNeighbor.Scale(t.small, r, img, b, draw.Src, nil)

	// This code is designed to minimize the amount of memory allocated per call.
	t.buf.Reset()
	_, _ = t.buf.WriteString("\033[H\033[0m")
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			c := t.small.RGBAAt(x, y)
			_, _ = io.WriteString(&t.buf, t.palette.Block(color.NRGBA{c.R, c.G, c.B, 0xFF}))
		}
		_, _ = t.buf.WriteString("\033[0m\r\n")
	}
	_, err := t.buf.WriteTo(t.w)
	return err
}
