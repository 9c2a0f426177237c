// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panelsim

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var boundaryRe = regexp.MustCompile(`^[a-f0-9]{60,70}$`)

func TestRandomBoundary(t *testing.T) {
	for i := 0; i < 100; i++ {
		if got := randomBoundary(); !boundaryRe.MatchString(got) {
			t.Errorf("Boundary must match the expression %q: %s", boundaryRe.String(), got)
		}
	}
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	pw := makePartWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", "image/png")
	for _, body := range []string{"first", "second frame"} {
		if err := pw.writeFrame(h, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}

	mr := multipart.NewReader(&buf, pw.boundary)
	var got []string
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		b, err := io.ReadAll(part)
		if err != nil {
			t.Fatal(err)
		}
		if part.Header.Get("Content-Length") == "" {
			t.Error("part without Content-Length")
		}
		got = append(got, string(b))
	}
	if diff := cmp.Diff(got, []string{"first", "second frame"}); diff != "" {
		t.Errorf("parts difference (-got +want):\n%s", diff)
	}
}
