// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/GermanBionicSystems/nvpanel/rgb565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Commands decoded by the panel.
const (
	SWRESET byte = 0x01
	SLPIN   byte = 0x10
	SLPOUT  byte = 0x11
	INVOFF  byte = 0x20
	INVON   byte = 0x21
	DISPOFF byte = 0x28
	DISPON  byte = 0x29
	CASET   byte = 0x2A
	RASET   byte = 0x2B
	RAMWR   byte = 0x2C
	MADCTL  byte = 0x36
	COLMOD  byte = 0x3A
)

const (
	madctlMY = 0x80
	madctlMX = 0x40
	madctlMV = 0x20
)

// RowOffset is the number of RAM rows above the visible area.
const RowOffset = 20

// maxCommands bounds the Commands log.
const maxCommands = 4096

// Opts for a Panel.
type Opts struct {
	// Width and Height of the visible area.
	Width, Height int
	// Format of the frames streamed over HTTP.
	Format ImageFormat
	// MaxTxSize is reported through conn.Limits. Defaults to 4096.
	MaxTxSize int
}

// DefaultOpts is the 240x280 module.
var DefaultOpts = Opts{Width: 240, Height: 280, MaxTxSize: 4096}

// Command is a decoded command and its parameters.
//
// Pixels following RAMWR are counted in Pixels, not stored in Data.
type Command struct {
	Cmd    byte
	Data   []byte
	Pixels int
}

func (c Command) String() string {
	if c.Cmd == RAMWR {
		return fmt.Sprintf("%#02x [%d pixels]", c.Cmd, c.Pixels)
	}
	return fmt.Sprintf("%#02x [% x]", c.Cmd, c.Data)
}

// Panel is an emulated NV3030B panel.
type Panel struct {
	opts Opts
	dc   *Pin
	rst  *Pin
	bl   *Pin

	mu sync.Mutex
	// Controller state.
	ram      []rgb565.Color
	ramW     int
	ramH     int
	madctl   byte
	colmod   byte
	inverted bool
	sleeping bool
	on       bool
	window   image.Rectangle // Max inclusive.
	cursor   image.Point
	writing  bool
	pending  []byte // Half pixel.
	cmd      byte
	commands []Command
	frames   int
	backlit  gpio.Duty

	// HTTP preview.
	defaultFormat ImageFormat
	clients       map[*client]struct{}
	snapshot      map[imageConfig][]byte
	pngEnc        png.Encoder
	frameWaiters  []chan struct{}
}

// New returns a powered on panel, asleep with the display off as after a
// hardware reset.
func New(opts *Opts) *Panel {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.MaxTxSize <= 0 {
		o.MaxTxSize = DefaultOpts.MaxTxSize
	}
	p := &Panel{
		opts:          o,
		ramW:          o.Width,
		ramH:          o.Height + RowOffset,
		defaultFormat: o.Format,
		clients:       map[*client]struct{}{},
		snapshot:      map[imageConfig][]byte{},
		pngEnc:        newPNGEncoder(),
	}
	p.ram = make([]rgb565.Color, p.ramW*p.ramH)
	p.dc = &Pin{Pin: gpiotest.Pin{N: "DC"}}
	p.rst = &Pin{Pin: gpiotest.Pin{N: "RST", L: gpio.High}, onOut: p.onReset}
	p.bl = &Pin{Pin: gpiotest.Pin{N: "BL"}, onDuty: p.onBacklight}
	p.resetLocked()
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("panelsim(%dx%d)", p.opts.Width, p.opts.Height)
}

// LimitSpeed implements spi.Port.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Connect implements spi.Port.
//
// Only mode 0 and mode 3 with 8 bits words are supported, like the real
// controller.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if bits != 8 {
		return nil, fmt.Errorf("panelsim: %d bits words are not supported", bits)
	}
	if m := mode &^ (spi.NoCS | spi.HalfDuplex); m != spi.Mode0 && m != spi.Mode3 {
		return nil, fmt.Errorf("panelsim: unsupported mode %v", mode)
	}
	return &panelConn{p: p, f: f}, nil
}

// Close implements spi.PortCloser.
func (p *Panel) Close() error {
	return p.Halt()
}

// DC returns the data/command pin sampled on every transfer.
func (p *Panel) DC() *Pin {
	return p.dc
}

// RST returns the reset pin. Driving it low resets the controller.
func (p *Panel) RST() *Pin {
	return p.rst
}

// BL returns the backlight pin.
func (p *Panel) BL() *Pin {
	return p.bl
}

// Backlight returns the backlight level.
func (p *Panel) Backlight() gpio.Duty {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backlit
}

// Bounds returns the visible area.
func (p *Panel) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.opts.Width, p.opts.Height)
}

// Commands returns the commands received so far, oldest first.
func (p *Panel) Commands() []Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Command, len(p.commands))
	for i, c := range p.commands {
		c.Data = append([]byte(nil), c.Data...)
		out[i] = c
	}
	return out
}

// Frames returns the number of completed memory writes.
func (p *Panel) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// NextFrame returns a channel closed on the next completed memory write.
func (p *Panel) NextFrame() <-chan struct{} {
	c := make(chan struct{})
	p.mu.Lock()
	p.frameWaiters = append(p.frameWaiters, c)
	p.mu.Unlock()
	return c
}

// Snapshot returns what the panel currently shows.
func (p *Panel) Snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Panel) snapshotLocked() *image.RGBA {
	img := image.NewRGBA(p.Bounds())
	lit := p.on && !p.sleeping
	for y := 0; y < p.opts.Height; y++ {
		for x := 0; x < p.opts.Width; x++ {
			c := color.RGBA{A: 0xFF}
			if lit {
				v := p.ram[(y+RowOffset)*p.ramW+x]
				if !p.inverted {
					v = ^v
				}
				r, g, b, _ := v.RGBA()
				c = color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xFF}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// RAM returns the raw pixel at (x, y) in RAM coordinates.
func (p *Panel) RAM(x, y int) rgb565.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	if x < 0 || y < 0 || x >= p.ramW || y >= p.ramH {
		return 0
	}
	return p.ram[y*p.ramW+x]
}

// onReset is called on every write to the reset pin.
func (p *Panel) onReset(l gpio.Level) {
	if l == gpio.Low {
		p.mu.Lock()
		p.resetLocked()
		p.bufferChangedLocked()
		p.mu.Unlock()
	}
}

func (p *Panel) onBacklight(d gpio.Duty) {
	p.mu.Lock()
	p.backlit = d
	p.mu.Unlock()
}

// resetLocked restores the power-on register values. RAM is kept.
func (p *Panel) resetLocked() {
	p.madctl = 0
	p.colmod = 0x06
	p.inverted = false
	p.sleeping = true
	p.on = false
	p.window = image.Rect(0, 0, p.ramW-1, p.ramH-1)
	p.cursor = image.Point{}
	p.writing = false
	p.pending = nil
	p.cmd = 0
}

func (p *Panel) logLocked(c Command) {
	if len(p.commands) == maxCommands {
		copy(p.commands, p.commands[1:])
		p.commands = p.commands[:maxCommands-1]
	}
	p.commands = append(p.commands, c)
}

func (p *Panel) commandLocked(cmd byte) {
	p.cmd = cmd
	p.writing = false
	p.pending = nil
	p.logLocked(Command{Cmd: cmd})
	switch cmd {
	case SWRESET:
		p.resetLocked()
		p.cmd = cmd
	case SLPIN:
		p.sleeping = true
	case SLPOUT:
		p.sleeping = false
	case INVOFF:
		p.inverted = false
	case INVON:
		p.inverted = true
	case DISPOFF:
		p.on = false
	case DISPON:
		p.on = true
	case RAMWR:
		p.cursor = p.window.Min
		p.writing = true
		return
	default:
		return
	}
	p.bufferChangedLocked()
}

func (p *Panel) dataLocked(data []byte) {
	if len(p.commands) == 0 || len(data) == 0 {
		// Parameters without a command are ignored by the controller.
		return
	}
	last := &p.commands[len(p.commands)-1]
	if p.writing {
		p.pixelsLocked(data, last)
		return
	}
	last.Data = append(last.Data, data...)
	switch p.cmd {
	case CASET:
		if len(last.Data) >= 4 {
			p.window.Min.X = int(last.Data[0])<<8 | int(last.Data[1])
			p.window.Max.X = int(last.Data[2])<<8 | int(last.Data[3])
		}
	case RASET:
		if len(last.Data) >= 4 {
			p.window.Min.Y = int(last.Data[0])<<8 | int(last.Data[1])
			p.window.Max.Y = int(last.Data[2])<<8 | int(last.Data[3])
		}
	case MADCTL:
		p.madctl = last.Data[0]
	case COLMOD:
		p.colmod = last.Data[0]
	}
}

// pixelsLocked stores a RGB565 stream at the write cursor. Other pixel
// formats are not emulated and their data is dropped.
func (p *Panel) pixelsLocked(data []byte, last *Command) {
	if p.colmod&0x07 != 0x05 {
		return
	}
	if len(p.pending) != 0 {
		data = append(p.pending, data...)
		p.pending = nil
	}
	for ; len(data) >= 2; data = data[2:] {
		p.storeLocked(rgb565.Color(data[0])<<8 | rgb565.Color(data[1]))
		last.Pixels++
	}
	if len(data) == 1 {
		p.pending = []byte{data[0]}
	}
}

// storeLocked writes one pixel and advances the cursor inside the window.
func (p *Panel) storeLocked(c rgb565.Color) {
	x, y := p.cursor.X, p.cursor.Y
	if p.madctl&madctlMV != 0 {
		x, y = y, x
	}
	if p.madctl&madctlMX != 0 {
		x = p.ramW - 1 - x
	}
	if p.madctl&madctlMY != 0 {
		y = p.ramH - 1 - y
	}
	if x >= 0 && y >= 0 && x < p.ramW && y < p.ramH {
		p.ram[y*p.ramW+x] = c
	}

	p.cursor.X++
	if p.cursor.X <= p.window.Max.X {
		return
	}
	p.cursor.X = p.window.Min.X
	p.cursor.Y++
	if p.cursor.Y <= p.window.Max.Y {
		return
	}
	p.cursor.Y = p.window.Min.Y
	p.frames++
	p.bufferChangedLocked()
	for _, w := range p.frameWaiters {
		close(w)
	}
	p.frameWaiters = nil
}

// panelConn is a connection to a Panel.
type panelConn struct {
	p *Panel
	f physic.Frequency
}

func (c *panelConn) String() string {
	return fmt.Sprintf("%s@%s", c.p, c.f)
}

// Halt implements conn.Resource.
func (c *panelConn) Halt() error {
	return nil
}

// Duplex implements conn.Conn.
func (c *panelConn) Duplex() conn.Duplex {
	return conn.Half
}

// MaxTxSize implements conn.Limits.
func (c *panelConn) MaxTxSize() int {
	return c.p.opts.MaxTxSize
}

// Tx implements conn.Conn.
//
// The panel has no read path, r must be nil.
func (c *panelConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("panelsim: reads are not supported")
	}
	if len(w) > c.p.opts.MaxTxSize {
		return fmt.Errorf("panelsim: %d bytes transfer exceeds %d", len(w), c.p.opts.MaxTxSize)
	}
	dc := c.p.dc.Read()
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	if dc == gpio.Low {
		for _, b := range w {
			c.p.commandLocked(b)
		}
		return nil
	}
	c.p.dataLocked(w)
	return nil
}

// TxPackets implements spi.Conn.
func (c *panelConn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ spi.PortCloser = &Panel{}
var _ spi.Conn = &panelConn{}
var _ conn.Limits = &panelConn{}
