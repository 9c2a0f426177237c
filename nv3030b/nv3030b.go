// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nv3030b

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/GermanBionicSystems/nvpanel/rgb565"
	"golang.org/x/image/draw"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var (
	// ErrNotReady is returned by UpdateDisplay before a successful Reset, or
	// after Halt.
	ErrNotReady = errors.New("nv3030b: panel not initialized, call Reset first")
	// ErrClosed is returned by operations on a closed Dev.
	ErrClosed = errors.New("nv3030b: device closed")
	// ErrNoBacklight is returned by SetBrightness when Pins.BL is nil.
	ErrNoBacklight = errors.New("nv3030b: no backlight pin")
	// ErrReleased is returned when the framebuffer was released or replaced
	// behind the Dev's back.
	ErrReleased = errors.New("nv3030b: framebuffer released")
)

// Opts defines the panel configuration.
type Opts struct {
	// Width and Height of the framebuffer allocated by New, 240x280 when
	// zero.
	Width, Height int
	// Frequency is the SPI clock.
	Frequency physic.Frequency
	// BacklightFrequency is the PWM frequency used by SetBrightness.
	BacklightFrequency physic.Frequency
}

// DefaultOpts is the 1.69" 240x280 module.
var DefaultOpts = Opts{
	Width:              240,
	Height:             280,
	Frequency:          40 * physic.MegaHertz,
	BacklightFrequency: physic.KiloHertz,
}

// Pins lists the GPIOs wired to the panel.
//
// DC and RST are required. BL may be nil when the backlight is hardwired.
// CS may be nil to let the SPI port drive chip select itself.
type Pins struct {
	DC  gpio.PinOut
	RST gpio.PinOut
	BL  gpio.PinOut
	CS  gpio.PinOut
}

type state uint8

const (
	bound state = iota + 1
	ready
	closed
)

var lastID uint32

// Dev is an open handle to the panel.
//
// It is not safe for concurrent use.
type Dev struct {
	c         conn.Conn
	maxTxSize int

	dc  gpio.PinOut
	rst gpio.PinOut
	bl  gpio.PinOut
	cs  gpio.PinOut

	opts   Opts
	bounds image.Rectangle
	fb     *rgb565.Image
	owned  bool
	id     rgb565.PanelID
	state  state

	sleep func(time.Duration)
}

// New opens a handle to the panel and allocates its framebuffer, cleared to
// black.
//
// The panel is not usable before Reset.
func New(p spi.Port, pins Pins, opts *Opts) (*Dev, error) {
	o := optsOrDefault(opts)
	fb := rgb565.New(o.Width, o.Height)
	if fb.Null() {
		return nil, fmt.Errorf("nv3030b: can't allocate a %dx%d framebuffer", o.Width, o.Height)
	}
	d, err := newDev(p, pins, fb, o)
	if err != nil {
		return nil, err
	}
	d.owned = true
	return d, nil
}

// NewWithFramebuffer opens a handle to the panel drawing from fb.
//
// The panel size is the size of fb; opts.Width and opts.Height are ignored.
// fb stays owned by the caller, Close only unbinds it.
func NewWithFramebuffer(p spi.Port, pins Pins, fb *rgb565.Image, opts *Opts) (*Dev, error) {
	if fb == nil || fb.Null() {
		return nil, errors.New("nv3030b: framebuffer is the null image")
	}
	if fb.IsFramebuffer() {
		return nil, fmt.Errorf("nv3030b: image is already the framebuffer of panel %d", fb.Owner())
	}
	o := optsOrDefault(opts)
	o.Width, o.Height = fb.Rect.Dx(), fb.Rect.Dy()
	return newDev(p, pins, fb, o)
}

func optsOrDefault(opts *Opts) Opts {
	if opts == nil {
		return DefaultOpts
	}
	o := *opts
	if o.Width == 0 {
		o.Width = DefaultOpts.Width
	}
	if o.Height == 0 {
		o.Height = DefaultOpts.Height
	}
	if o.Frequency == 0 {
		o.Frequency = DefaultOpts.Frequency
	}
	if o.BacklightFrequency == 0 {
		o.BacklightFrequency = DefaultOpts.BacklightFrequency
	}
	return o
}

func newDev(p spi.Port, pins Pins, fb *rgb565.Image, opts Opts) (*Dev, error) {
	if pins.DC == nil || pins.RST == nil {
		return nil, errors.New("nv3030b: DC and RST pins are required")
	}
	mode := spi.Mode0
	if pins.CS != nil {
		mode |= spi.NoCS
	}
	c, err := p.Connect(opts.Frequency, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("nv3030b: %w", err)
	}

	// Get the maxTxSize from the conn if it implements the conn.Limits
	// interface, otherwise use 4096 bytes.
	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize == 0 {
		maxTxSize = 4096
	}

	d := &Dev{
		c:         c,
		maxTxSize: maxTxSize,
		dc:        pins.DC,
		rst:       pins.RST,
		bl:        pins.BL,
		cs:        pins.CS,
		opts:      opts,
		bounds:    image.Rect(0, 0, opts.Width, opts.Height),
		fb:        fb,
		id:        rgb565.PanelID(atomic.AddUint32(&lastID, 1)),
		state:     bound,
		sleep:     time.Sleep,
	}

	eh := errorHandler{d: d}
	eh.pinOut(d.dc, gpio.High)
	eh.pinOut(d.rst, gpio.High)
	if d.cs != nil {
		eh.pinOut(d.cs, gpio.High)
	}
	if d.bl != nil {
		eh.pinOut(d.bl, gpio.High)
	}
	if err := eh.wrapped(); err != nil {
		return nil, err
	}
	fb.SetOwner(d.id)
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("nv3030b.Dev{%s, %d, %dx%d}", d.c, d.id, d.bounds.Dx(), d.bounds.Dy())
}

// ID returns the identifier the framebuffer is marked with.
func (d *Dev) ID() rgb565.PanelID {
	return d.id
}

// Framebuffer returns the image sent by UpdateDisplay.
//
// It is the null image once the Dev is closed.
func (d *Dev) Framebuffer() *rgb565.Image {
	return d.fb
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Draw implements display.Drawer.
//
// It copies src into the framebuffer, then sends the full frame.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.state == closed {
		return ErrClosed
	}
	if err := d.checkFramebuffer(); err != nil {
		return err
	}
	draw.Draw(d.fb, r, src, sp, draw.Src)
	return d.UpdateDisplay()
}

// Reset pulses the hardware reset line and configures the panel for RGB565
// pixels. The framebuffer is not sent.
func (d *Dev) Reset() error {
	if d.state == closed {
		return ErrClosed
	}
	eh := errorHandler{d: d}
	eh.pinOut(d.rst, gpio.Low)
	eh.sleep(100 * time.Millisecond)
	eh.pinOut(d.rst, gpio.High)
	eh.sleep(120 * time.Millisecond)
	initPanel(&eh)
	if err := eh.wrapped(); err != nil {
		return err
	}
	d.state = ready
	return nil
}

// UpdateDisplay sends the whole framebuffer to the panel.
func (d *Dev) UpdateDisplay() error {
	switch d.state {
	case closed:
		return ErrClosed
	case ready:
	default:
		return ErrNotReady
	}
	if err := d.checkFramebuffer(); err != nil {
		return err
	}
	eh := errorHandler{d: d}
	writeFrame(&eh, d.bounds.Size(), d.fb.Pix)
	return eh.wrapped()
}

// checkFramebuffer verifies the framebuffer still holds a full frame and is
// still bound to this Dev.
func (d *Dev) checkFramebuffer() error {
	if len(d.fb.Pix) != 2*d.bounds.Dx()*d.bounds.Dy() || d.fb.Owner() != d.id {
		return ErrReleased
	}
	return nil
}

// SetBrightness sets the backlight level in percent.
//
// 0 turns it off and 100 or more fully on, in between the backlight pin is
// driven in PWM.
func (d *Dev) SetBrightness(percent int) error {
	if d.state == closed {
		return ErrClosed
	}
	if d.bl == nil {
		return ErrNoBacklight
	}
	var err error
	switch {
	case percent <= 0:
		err = d.bl.Out(gpio.Low)
	case percent >= 100:
		err = d.bl.Out(gpio.High)
	default:
		err = d.bl.PWM(gpio.Duty(percent)*gpio.DutyMax/100, d.opts.BacklightFrequency)
	}
	if err != nil {
		return fmt.Errorf("nv3030b: %w", err)
	}
	return nil
}

// Halt implements conn.Resource.
//
// It turns the display and the backlight off and puts the panel to sleep.
// Reset must be called before the next UpdateDisplay.
func (d *Dev) Halt() error {
	if d.state == closed {
		return nil
	}
	eh := errorHandler{d: d}
	haltPanel(&eh)
	if d.bl != nil {
		eh.pinOut(d.bl, gpio.Low)
	}
	d.state = bound
	return eh.wrapped()
}

// Close unbinds the framebuffer. An owned framebuffer is released, an adopted
// one is left intact for the caller.
//
// The panel itself is left as is, call Halt first to blank it. Calling Close
// more than once is a no-op.
func (d *Dev) Close() error {
	if d.state == closed {
		return nil
	}
	d.state = closed
	if d.owned {
		d.fb.Release()
	} else {
		d.fb.SetOwner(0)
		d.fb = &rgb565.Image{}
	}
	return nil
}

var _ display.Drawer = &Dev{}
