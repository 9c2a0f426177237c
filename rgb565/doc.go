// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb565 implements the 16 bits per pixel color format used by small
// SPI TFT panels, and an in-memory surface with the drawing primitives needed
// to compose a frame before it is streamed to the panel.
//
// Each pixel is stored as two bytes, most significant first:
//
//	bit 76543210  76543210
//	    RRRRRGGG  GGGBBBBB
//	    byte 0    byte 1
//
// Image buffers are kept in exactly this order so a panel driver can transmit
// Image.Pix as-is.
//
// Text is rendered with a 256 entry blend table computed once per call, so the
// per pixel cost is one table lookup regardless of the foreground and
// background colors.
//
// Images are not safe for concurrent use.
package rgb565
