// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
)

// ImageFormat is the encoding of the frames served by the HTTP preview.
type ImageFormat int

const (
	// PNG is the lossless rendering of what the panel shows.
	PNG ImageFormat = iota
	// JPEG is a quality 90 rendering of what the panel shows.
	JPEG
	// RGB565 is the visible part of the panel memory, two bytes per pixel in
	// wire order. It ignores the display state and the inversion, which makes
	// it directly comparable to the driver framebuffer.
	RGB565

	// DefaultFormat is used when neither the options nor the "format" URL
	// parameter select one.
	DefaultFormat = PNG
)

var formats = map[ImageFormat]struct {
	name, mime string
	aliases    []string
}{
	PNG:    {"PNG", "image/png", []string{"png"}},
	JPEG:   {"JPEG", "image/jpeg", []string{"jpg", "jpeg"}},
	RGB565: {"RGB565", "application/octet-stream", []string{"rgb565", "raw"}},
}

func (f ImageFormat) String() string {
	if d, ok := formats[f]; ok {
		return d.name
	}
	return fmt.Sprint(int(f))
}

func (f ImageFormat) mimeType() string {
	if d, ok := formats[f]; ok {
		return d.mime
	}
	return "application/octet-stream"
}

// ImageFormatFromString returns the ImageFormat named by value, as used in the
// "format" URL parameter.
func ImageFormatFromString(value string) (ImageFormat, error) {
	for f, d := range formats {
		for _, a := range d.aliases {
			if a == value {
				return f, nil
			}
		}
	}
	return DefaultFormat, fmt.Errorf("panelsim: unrecognized image format %q", value)
}

// encodeLocked appends the current panel content in format to buf.
func (p *Panel) encodeLocked(format ImageFormat, buf *bytes.Buffer) error {
	switch format {
	case PNG:
		return p.pngEnc.Encode(buf, p.snapshotLocked())
	case JPEG:
		return jpeg.Encode(buf, p.snapshotLocked(), &jpeg.Options{Quality: 90})
	case RGB565:
		buf.Grow(2 * p.opts.Width * p.opts.Height)
		for y := RowOffset; y < p.opts.Height+RowOffset; y++ {
			for _, c := range p.ram[y*p.ramW : y*p.ramW+p.opts.Width] {
				buf.WriteByte(c.Hi())
				buf.WriteByte(c.Lo())
			}
		}
		return nil
	}
	return fmt.Errorf("panelsim: unhandled image format %s", format)
}

// newPNGEncoder returns the encoder used for the PNG preview. Frames are
// encoded on every panel update, so speed wins over size.
func newPNGEncoder() png.Encoder {
	return png.Encoder{CompressionLevel: png.BestSpeed}
}
