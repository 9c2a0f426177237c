// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panelsim emulates a NV3030B panel on the host.
//
// A Panel is a spi.Port: pass it, together with the pins returned by DC, RST
// and BL, to nv3030b.New to run a program without the hardware. Bytes sent
// while DC is low are decoded as commands, the others as their parameters or
// as pixels following a memory write.
//
// The emulated RAM is rendered with Snapshot, the way the glass would show
// it: colors are inverted unless inversion is on, and the panel is black while
// asleep or with the display off.
//
// Two previews are provided. Terminal draws snapshots with ANSI colors.
// Panel is also an http.Handler streaming snapshots as "MJPEG"
// (https://en.wikipedia.org/wiki/Motion_JPEG), PNG by default; JPEG is
// selected via Opts.Format or with the "format" URL parameter.
package panelsim
