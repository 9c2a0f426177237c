// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"image"
	"image/color"
	"testing"

	"github.com/GermanBionicSystems/nvpanel/rgb565"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// host drives a Panel like a driver would.
type host struct {
	t *testing.T
	p *Panel
	c spi.Conn
}

func newHost(t *testing.T, w, h int) *host {
	t.Helper()
	p := New(&Opts{Width: w, Height: h})
	c, err := p.Connect(physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	return &host{t: t, p: p, c: c}
}

func (h *host) cmd(cmd byte, data ...byte) {
	h.t.Helper()
	if err := h.p.DC().Out(gpio.Low); err != nil {
		h.t.Fatal(err)
	}
	if err := h.c.Tx([]byte{cmd}, nil); err != nil {
		h.t.Fatal(err)
	}
	if len(data) != 0 {
		h.data(data...)
	}
}

func (h *host) data(data ...byte) {
	h.t.Helper()
	if err := h.p.DC().Out(gpio.High); err != nil {
		h.t.Fatal(err)
	}
	if err := h.c.Tx(data, nil); err != nil {
		h.t.Fatal(err)
	}
}

// wake brings the panel to the state the driver leaves it after a reset.
func (h *host) wake() {
	h.cmd(COLMOD, 0x05)
	h.cmd(INVON)
	h.cmd(SLPOUT)
	h.cmd(DISPON)
}

func pixels(cs ...rgb565.Color) []byte {
	var b []byte
	for _, c := range cs {
		b = append(b, c.Hi(), c.Lo())
	}
	return b
}

var (
	red    = color.RGBA{0xFF, 0, 0, 0xFF}
	white  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	black  = color.RGBA{0, 0, 0, 0xFF}
	purple = color.RGBA{0xFF, 0, 0xFF, 0xFF}
)

func colors(img *image.RGBA) []color.RGBA {
	var out []color.RGBA
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, img.RGBAAt(x, y))
		}
	}
	return out
}

func TestFrame(t *testing.T) {
	h := newHost(t, 2, 2)
	h.wake()
	h.cmd(CASET, 0, 0, 0, 1)
	h.cmd(RASET, 0, 20, 0, 21)
	h.cmd(RAMWR, pixels(rgb565.Red, rgb565.White, rgb565.Black, rgb565.Purple)...)

	if diff := cmp.Diff(colors(h.p.Snapshot()), []color.RGBA{red, white, black, purple}); diff != "" {
		t.Errorf("Snapshot() difference (-got +want):\n%s", diff)
	}
	if got := h.p.Frames(); got != 1 {
		t.Errorf("Frames() = %d, want 1", got)
	}
	if got := h.p.RAM(1, 20); got != rgb565.White {
		t.Errorf("RAM(1, 20) = %v, want %v", got, rgb565.White)
	}
}

func TestSnapshotStates(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(h *host)
		want  color.RGBA
	}{
		{"after reset", func(h *host) {}, black},
		{"awake", func(h *host) { h.wake() }, red},
		{"not inverted", func(h *host) { h.wake(); h.cmd(INVOFF) }, color.RGBA{0, 0xFF, 0xFF, 0xFF}},
		{"display off", func(h *host) { h.wake(); h.cmd(DISPOFF) }, black},
		{"asleep", func(h *host) { h.wake(); h.cmd(SLPIN) }, black},
		{"software reset", func(h *host) { h.wake(); h.cmd(SWRESET) }, black},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHost(t, 1, 1)
			h.cmd(COLMOD, 0x05)
			h.cmd(CASET, 0, 0, 0, 0)
			h.cmd(RASET, 0, 20, 0, 20)
			h.cmd(RAMWR, pixels(rgb565.Red)...)
			tc.setup(h)
			if got := h.p.Snapshot().RGBAAt(0, 0); got != tc.want {
				t.Errorf("Snapshot() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHardwareReset(t *testing.T) {
	h := newHost(t, 1, 1)
	h.wake()
	if err := h.p.RST().Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := h.p.RST().Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if got := h.p.Snapshot().RGBAAt(0, 0); got != black {
		t.Errorf("Snapshot() after reset = %v, want black", got)
	}
}

func TestPixelSplitAcrossTransfers(t *testing.T) {
	h := newHost(t, 2, 1)
	h.wake()
	h.cmd(CASET, 0, 0, 0, 1)
	h.cmd(RASET, 0, 20, 0, 20)
	h.cmd(RAMWR, 0xF8)
	h.data(0x00, 0xF8)
	h.data(0x1F)
	if diff := cmp.Diff(colors(h.p.Snapshot()), []color.RGBA{red, purple}); diff != "" {
		t.Errorf("Snapshot() difference (-got +want):\n%s", diff)
	}
}

func TestWindowWraps(t *testing.T) {
	h := newHost(t, 3, 1)
	h.wake()
	h.cmd(CASET, 0, 1, 0, 2)
	h.cmd(RASET, 0, 20, 0, 20)
	// Three pixels in a two pixels window: the third overwrites the first.
	h.cmd(RAMWR, pixels(rgb565.Red, rgb565.White, rgb565.Purple)...)
	if diff := cmp.Diff(colors(h.p.Snapshot()), []color.RGBA{black, purple, white}); diff != "" {
		t.Errorf("Snapshot() difference (-got +want):\n%s", diff)
	}
	if got := h.p.Frames(); got != 1 {
		t.Errorf("Frames() = %d, want 1", got)
	}
}

func TestMADCTLMirror(t *testing.T) {
	h := newHost(t, 2, 1)
	h.wake()
	h.cmd(MADCTL, madctlMX)
	h.cmd(CASET, 0, 0, 0, 0)
	h.cmd(RASET, 0, 20, 0, 20)
	h.cmd(RAMWR, pixels(rgb565.Red)...)
	if diff := cmp.Diff(colors(h.p.Snapshot()), []color.RGBA{black, red}); diff != "" {
		t.Errorf("Snapshot() difference (-got +want):\n%s", diff)
	}
}

func TestUnsupportedPixelFormat(t *testing.T) {
	h := newHost(t, 1, 1)
	h.cmd(INVON)
	h.cmd(SLPOUT)
	h.cmd(DISPON)
	// 18 bits per pixel is the reset value.
	h.cmd(RAMWR, 0xFC, 0, 0)
	if got := h.p.Frames(); got != 0 {
		t.Errorf("Frames() = %d, want 0", got)
	}
	if got := h.p.RAM(0, 0); got != rgb565.Black {
		t.Errorf("RAM(0, 0) = %v, want %v", got, rgb565.Black)
	}
}

func TestCommands(t *testing.T) {
	h := newHost(t, 2, 2)
	h.data(1, 2) // Ignored.
	h.wake()
	h.cmd(CASET, 0, 0, 0, 1)
	h.cmd(RAMWR, pixels(rgb565.Red, rgb565.Red, rgb565.Red)...)
	want := []Command{
		{Cmd: COLMOD, Data: []byte{0x05}},
		{Cmd: INVON},
		{Cmd: SLPOUT},
		{Cmd: DISPON},
		{Cmd: CASET, Data: []byte{0, 0, 0, 1}},
		{Cmd: RAMWR, Pixels: 3},
	}
	got := h.p.Commands()
	if diff := cmp.Diff(got, want, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Commands() difference (-got +want):\n%s", diff)
	}
	if s := got[4].String(); s != "0x2a [00 00 00 01]" {
		t.Errorf("String() = %q", s)
	}
	if s := got[5].String(); s != "0x2c [3 pixels]" {
		t.Errorf("String() = %q", s)
	}
}

func TestConnect(t *testing.T) {
	p := New(nil)
	for _, tc := range []struct {
		mode    spi.Mode
		bits    int
		wantErr bool
	}{
		{spi.Mode0, 8, false},
		{spi.Mode0 | spi.NoCS, 8, false},
		{spi.Mode3, 8, false},
		{spi.Mode1, 8, true},
		{spi.Mode0, 9, true},
	} {
		c, err := p.Connect(physic.MegaHertz, tc.mode, tc.bits)
		if (err != nil) != tc.wantErr {
			t.Errorf("Connect(%v, %d) = %v", tc.mode, tc.bits, err)
		}
		if err == nil {
			if l, ok := c.(conn.Limits); !ok || l.MaxTxSize() != 4096 {
				t.Errorf("Connect(%v, %d) does not report a 4096 bytes limit", tc.mode, tc.bits)
			}
		}
	}
	if diff := cmp.Diff(p.Bounds(), image.Rect(0, 0, 240, 280)); diff != "" {
		t.Errorf("Bounds() difference (-got +want):\n%s", diff)
	}
}

func TestTxLimits(t *testing.T) {
	h := newHost(t, 1, 1)
	if err := h.c.Tx(make([]byte, 4097), nil); err == nil {
		t.Error("Tx() accepted a transfer larger than MaxTxSize")
	}
	if err := h.c.Tx([]byte{0}, make([]byte, 1)); err == nil {
		t.Error("Tx() accepted a read")
	}
}

func TestBacklight(t *testing.T) {
	p := New(nil)
	if got := p.Backlight(); got != 0 {
		t.Errorf("Backlight() = %v, want 0", got)
	}
	if err := p.BL().PWM(gpio.DutyHalf, physic.KiloHertz); err != nil {
		t.Fatal(err)
	}
	if got := p.Backlight(); got != gpio.DutyHalf {
		t.Errorf("Backlight() = %v, want %v", got, gpio.DutyHalf)
	}
	if err := p.BL().Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if got := p.Backlight(); got != gpio.DutyMax {
		t.Errorf("Backlight() = %v, want %v", got, gpio.DutyMax)
	}
}

func TestNextFrame(t *testing.T) {
	h := newHost(t, 1, 1)
	h.wake()
	next := h.p.NextFrame()
	select {
	case <-next:
		t.Fatal("NextFrame() fired before a frame")
	default:
	}
	h.cmd(RAMWR, pixels(rgb565.Red)...)
	// The default window is the whole RAM.
	h.data(make([]byte, 2*(1*21-1))...)
	select {
	case <-next:
	default:
		t.Fatal("NextFrame() did not fire")
	}
}
