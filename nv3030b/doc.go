// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package nv3030b controls a 240x280 RGB565 TFT panel driven by a NV3030B
// controller over 4-wire SPI.
//
// The driver keeps a full frame in an rgb565.Image and always sends the whole
// frame: there is no partial update. Drawing happens on the framebuffer
// returned by Dev.Framebuffer, then Dev.UpdateDisplay pushes it.
//
// # Addressing
//
// The first 20 rows of the controller RAM are not visible on this panel, so
// the row window of every update starts at 20.
//
// # Chip select
//
// Pass a CS pin in Pins to keep the chip selected for the whole reset and
// update sequences. Without it the SPI port toggles its own chip select on
// every transfer.
//
// # Wiring
//
// Connect SDA to SPI_MOSI, SCL to SPI_CLK, and DC, RES and BLK to any GPIO.
package nv3030b
