// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package nvpanel is a container for the NV3030B LCD stack.
//
// rgb565 holds the framebuffer and its drawing primitives, glyphfont the
// bitmap fonts, nv3030b the panel driver and panelsim an emulated panel for
// development without hardware.
package nvpanel
