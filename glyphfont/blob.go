// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyphfont

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Blob container layout, all integers little endian:
//
//	"GFNT" | version u8 | height u16 | entries u16 | entries*u32 | size u32 | data
var magic = [4]byte{'G', 'F', 'N', 'T'}

const (
	version     = 1
	maxDataSize = 16 << 20
)

type header struct {
	Magic   [4]byte
	Version uint8
	Height  uint16
	Entries uint16
}

// Encode writes f in the blob container format.
func (f *Font) Encode(w io.Writer) error {
	if f.Height <= 0 || f.Height > 0xFFFF {
		return fmt.Errorf("glyphfont: invalid height %d", f.Height)
	}
	if len(f.Index) > 0xFFFF {
		return fmt.Errorf("glyphfont: too many index entries (%d)", len(f.Index))
	}
	h := header{Magic: magic, Version: version, Height: uint16(f.Height), Entries: uint16(len(f.Index))}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, f.Index); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(f.Data))); err != nil {
		return err
	}
	_, err := w.Write(f.Data)
	return err
}

// Decode reads a font written by Encode.
//
// Every index entry is checked against the data size so that lookups on the
// returned font never read past the blob.
func Decode(r io.Reader) (*Font, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("glyphfont: reading header: %w", err)
	}
	if h.Magic != magic {
		return nil, errors.New("glyphfont: not a font blob")
	}
	if h.Version != version {
		return nil, fmt.Errorf("glyphfont: unsupported version %d", h.Version)
	}
	if h.Height == 0 {
		return nil, errors.New("glyphfont: zero height")
	}
	f := &Font{Index: make([]uint32, h.Entries), Height: int(h.Height)}
	if err := binary.Read(r, binary.LittleEndian, f.Index); err != nil {
		return nil, fmt.Errorf("glyphfont: reading index: %w", err)
	}
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("glyphfont: reading data size: %w", err)
	}
	if size > maxDataSize {
		return nil, fmt.Errorf("glyphfont: data size %d exceeds %d", size, maxDataSize)
	}
	f.Data = make([]byte, size)
	if _, err := io.ReadFull(r, f.Data); err != nil {
		return nil, fmt.Errorf("glyphfont: reading data: %w", err)
	}
	for c, off := range f.Index {
		if off != NoGlyph && off >= size {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrCorrupt, rune(c), off)
		}
	}
	return f, nil
}
