// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/GermanBionicSystems/nvpanel/rgb565"
	"github.com/google/go-cmp/cmp"
)

func TestImageFormat(t *testing.T) {
	for _, tc := range []struct {
		format       ImageFormat
		wantString   string
		wantMimeType string
	}{
		{
			format:       ImageFormat(-1),
			wantString:   "-1",
			wantMimeType: "application/octet-stream",
		},
		{
			format:       DefaultFormat,
			wantString:   "PNG",
			wantMimeType: "image/png",
		},
		{
			format:       JPEG,
			wantString:   "JPEG",
			wantMimeType: "image/jpeg",
		},
		{
			format:       RGB565,
			wantString:   "RGB565",
			wantMimeType: "application/octet-stream",
		},
	} {
		t.Run(fmt.Sprint(tc), func(t *testing.T) {
			if got := tc.format.String(); got != tc.wantString {
				t.Errorf("String() returned %q, want %q", got, tc.wantString)
			}
			if got := tc.format.mimeType(); got != tc.wantMimeType {
				t.Errorf("mimeType() returned %q, want %q", got, tc.wantMimeType)
			}
		})
	}
}

func TestImageFormatFromString(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    ImageFormat
		wantErr bool
	}{
		{"png", PNG, false},
		{"jpg", JPEG, false},
		{"jpeg", JPEG, false},
		{"rgb565", RGB565, false},
		{"raw", RGB565, false},
		{"gif", DefaultFormat, true},
		{"", DefaultFormat, true},
	} {
		got, err := ImageFormatFromString(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ImageFormatFromString(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ImageFormatFromString(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEncodeRGB565(t *testing.T) {
	h := newHost(t, 2, 2)
	h.wake()
	h.cmd(CASET, 0, 0, 0, 1)
	h.cmd(RASET, 0, RowOffset, 0, RowOffset+1)
	h.cmd(RAMWR)
	h.data(pixels(rgb565.Red, rgb565.White, rgb565.Purple, rgb565.Black)...)
	// Turning the display off does not change the memory dump.
	h.cmd(DISPOFF)

	var buf bytes.Buffer
	h.p.mu.Lock()
	err := h.p.encodeLocked(RGB565, &buf)
	h.p.mu.Unlock()
	if err != nil {
		t.Fatal(err)
	}
	want := pixels(rgb565.Red, rgb565.White, rgb565.Purple, rgb565.Black)
	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("RGB565 dump mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeImages(t *testing.T) {
	h := newHost(t, 3, 2)
	h.wake()
	for _, tc := range []struct {
		format ImageFormat
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{PNG, func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }},
		{JPEG, func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) }},
	} {
		var buf bytes.Buffer
		h.p.mu.Lock()
		err := h.p.encodeLocked(tc.format, &buf)
		h.p.mu.Unlock()
		if err != nil {
			t.Fatalf("%s: %v", tc.format, err)
		}
		img, err := tc.decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%s: %v", tc.format, err)
		}
		if got := img.Bounds().Size(); got != (image.Point{3, 2}) {
			t.Errorf("%s: size %v, want 3x2", tc.format, got)
		}
	}
	if err := h.p.encodeLocked(ImageFormat(-1), &bytes.Buffer{}); err == nil {
		t.Error("expected error for an unknown format")
	}
}
