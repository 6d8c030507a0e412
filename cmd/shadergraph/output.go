// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gogpu/shadergraph/gpucore"
)

// screenReader is implemented by backends that keep the screen offscreen,
// such as the native backend.
type screenReader interface {
	ReadScreen() ([]byte, int, int, error)
}

var errNoScreen = errors.New("backend has no readable screen")

// writeScreen saves the last screen frame of b as a PNG file.
func writeScreen(b gpucore.Backend, path string) error {
	sr, ok := b.(screenReader)
	if !ok {
		return fmt.Errorf("write %s: %s: %w", path, b.Name(), errNoScreen)
	}
	pix, w, h, err := sr.ReadScreen()
	if err != nil {
		return fmt.Errorf("read screen: %w", err)
	}
	img := &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}

	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("write screen: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
