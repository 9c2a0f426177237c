// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gauge shows a fuel economy reading on a NV3030B panel, or on an emulated
// one.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/GermanBionicSystems/nvpanel/glyphfont"
	"github.com/GermanBionicSystems/nvpanel/nv3030b"
	"github.com/GermanBionicSystems/nvpanel/panelsim"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// board is where the panel is wired.
type board struct {
	port  spi.Port
	pins  nv3030b.Pins
	led   gpio.PinOut
	sim   *panelsim.Panel
	close func() error
}

func openHardware(spiName, dc, rst, bl, cs, led string) (*board, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p, err := spireg.Open(spiName)
	if err != nil {
		return nil, err
	}
	b := &board{port: p, close: p.Close}
	byName := func(name string, optional bool) (gpio.PinOut, error) {
		if name == "" {
			if optional {
				return nil, nil
			}
			return nil, errors.New("missing pin name")
		}
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("failed to find pin %q", name)
		}
		return pin, nil
	}
	for _, l := range []struct {
		dst      *gpio.PinOut
		name     string
		optional bool
	}{
		{&b.pins.DC, dc, false},
		{&b.pins.RST, rst, false},
		{&b.pins.BL, bl, true},
		{&b.pins.CS, cs, true},
		{&b.led, led, true},
	} {
		pin, err := byName(l.name, l.optional)
		if err != nil {
			p.Close()
			return nil, err
		}
		if pin != nil {
			*l.dst = pin
		}
	}
	return b, nil
}

func openSim(width, height int, format panelsim.ImageFormat) *board {
	sim := panelsim.New(&panelsim.Opts{Width: width, Height: height, Format: format})
	return &board{
		port:  sim,
		pins:  nv3030b.Pins{DC: sim.DC(), RST: sim.RST(), BL: sim.BL()},
		sim:   sim,
		close: sim.Close,
	}
}

// loadLabelFont decodes a glyph blob, or rasterizes the basic font when path
// is empty.
func loadLabelFont(path string) (*glyphfont.Font, error) {
	if path == "" {
		return glyphfont.FromFace(basicfont.Face7x13, glyphfont.ASCII)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return glyphfont.Decode(f)
}

// loadDigits renders the big digits from a TrueType file at 64 points, or
// from the basic font magnified 5 times.
func loadDigits(ttf string) (*bigDigits, error) {
	var face font.Face = basicfont.Face7x13
	scale := 5.
	if ttf != "" {
		var err error
		if face, err = gg.LoadFontFace(ttf, 64); err != nil {
			return nil, err
		}
		scale = 1
	}
	return renderDigits(face, scale, color.White, color.Black)
}

func mainImpl() error {
	spiName := flag.String("spi", "", "SPI port to use")
	var hz physic.Frequency
	flag.Var(&hz, "hz", "SPI port speed, defaults to 40MHz")
	dcName := flag.String("dc", "GPIO25", "data/command pin")
	rstName := flag.String("rst", "GPIO27", "reset pin")
	blName := flag.String("bl", "GPIO18", "backlight pin, empty when hardwired")
	csName := flag.String("cs", "", "chip select pin, empty to let the SPI port drive it")
	ledName := flag.String("led", "", "status LED pin, toggled on every frame")
	width := flag.Int("width", 240, "panel width")
	height := flag.Int("height", 280, "panel height")
	sim := flag.String("sim", "none", "emulate the panel: none, term or http")
	httpAddr := flag.String("http", "localhost:8010", "preview address with -sim http")
	format := flag.String("format", "png", "preview image format with -sim http: png, jpeg or rgb565")
	ttf := flag.String("ttf", "", "TrueType font for the digits")
	fontPath := flag.String("font", "", "glyph blob for the label, as written by fontgen")
	brightness := flag.Int("brightness", 100, "backlight in percent")
	frames := flag.Int("frames", 0, "number of readings to show, 0 to run until interrupted")
	interval := flag.Duration("interval", 100*time.Millisecond, "delay between readings")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	var b *board
	var term *panelsim.Terminal
	switch *sim {
	case "none":
		var err error
		if b, err = openHardware(*spiName, *dcName, *rstName, *blName, *csName, *ledName); err != nil {
			return err
		}
	case "term", "http":
		f, err := panelsim.ImageFormatFromString(*format)
		if err != nil {
			return err
		}
		b = openSim(*width, *height, f)
		if *sim == "term" {
			term = panelsim.NewTerminal(nil)
			defer term.Halt()
		} else {
			go func() {
				log.Printf("Serving the panel on http://%s/", *httpAddr)
				if err := http.ListenAndServe(*httpAddr, b.sim); err != nil {
					log.Printf("HTTP preview stopped: %v", err)
				}
			}()
		}
	default:
		return fmt.Errorf("unknown -sim %q", *sim)
	}
	defer b.close()

	label, err := loadLabelFont(*fontPath)
	if err != nil {
		return err
	}
	digits, err := loadDigits(*ttf)
	if err != nil {
		return err
	}

	opts := nv3030b.DefaultOpts
	opts.Width = *width
	opts.Height = *height
	if hz != 0 {
		opts.Frequency = hz
	}
	dev, err := nv3030b.New(b.port, b.pins, &opts)
	if err != nil {
		return err
	}
	defer dev.Close()
	if err := dev.Reset(); err != nil {
		return err
	}
	defer dev.Halt()
	if b.pins.BL != nil {
		if err := dev.SetBrightness(*brightness); err != nil {
			return err
		}
	}

	g := &gauge{dev: dev, label: label, digits: digits}
	if err := g.start(); err != nil {
		return err
	}

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt)
	t := time.NewTicker(*interval)
	defer t.Stop()
	led := gpio.Low
	for i := 0; *frames == 0 || i < *frames; i++ {
		if err := g.step(); err != nil {
			return err
		}
		if b.led != nil {
			led = !led
			if err := b.led.Out(led); err != nil {
				return err
			}
		}
		if term != nil {
			if err := term.Render(b.sim.Snapshot()); err != nil {
				return err
			}
		}
		select {
		case <-interrupted:
			return nil
		case <-t.C:
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "gauge: %s.\n", err)
		os.Exit(1)
	}
}
