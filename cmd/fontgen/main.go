// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// fontgen rasterizes a font into a glyph blob loadable with
// glyphfont.Decode.
//
// Without -ttf the 7x13 basic font is used.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/GermanBionicSystems/nvpanel/glyphfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// loadFace returns the TrueType face at path, or the basic font if path is
// empty.
func loadFace(path string, size, dpi float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	}), nil
}

// generate writes the blob of face restricted to chars.
func generate(w io.Writer, face font.Face, chars string) (*glyphfont.Font, error) {
	f, err := glyphfont.FromFace(face, chars)
	if err != nil {
		return nil, err
	}
	if err := f.Encode(w); err != nil {
		return nil, err
	}
	return f, nil
}

// writeFile writes the blob of face restricted to chars to path.
func writeFile(path string, face font.Face, chars string) (*glyphfont.Font, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	g, err := generate(f, face, chars)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func mainImpl() error {
	ttf := flag.String("ttf", "", "TrueType font file")
	size := flag.Float64("size", 16, "font size in points, with -ttf")
	dpi := flag.Float64("dpi", 72, "resolution, with -ttf")
	chars := flag.String("chars", glyphfont.ASCII, "characters to include")
	out := flag.String("o", "", "output file, stdout when empty")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	face, err := loadFace(*ttf, *size, *dpi)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err := generate(os.Stdout, face, *chars)
		return err
	}
	g, err := writeFile(*out, face, *chars)
	if err != nil {
		return err
	}
	log.Printf("Wrote %s: %s", *out, g)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "fontgen: %s.\n", err)
		os.Exit(1)
	}
}
