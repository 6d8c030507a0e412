// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// checker returns a 3x2 image with distinct opaque pixels.
func checker() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(2, 0, color.NRGBA{B: 255, A: 255})
	img.Set(0, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{A: 255})
	img.Set(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	return img
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		format string
		encode func(io.Writer, image.Image) error
	}{
		{"png", "checker.png", "png", png.Encode},
		{"bmp", "checker.bmp", "bmp", bmp.Encode},
		{"tiff", "checker.tiff", "tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }},
	}
	want := checker()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			var buf bytes.Buffer
			if err := tt.encode(&buf, want); err != nil {
				t.Fatalf("encode: %v", err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
				t.Fatal(err)
			}

			img, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if img.Width != 3 || img.Height != 2 {
				t.Fatalf("size = %dx%d, want 3x2", img.Width, img.Height)
			}
			if img.Format != tt.format {
				t.Errorf("Format = %q, want %q", img.Format, tt.format)
			}
			if !bytes.Equal(img.Pix, want.Pix) {
				t.Errorf("Pix = %v, want %v", img.Pix, want.Pix)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v, want ErrNotExist", err)
	}

	junk := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(junk, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(junk); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("junk file: err = %v, want ErrUnsupportedFormat", err)
	}

	if _, err := LoadBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("empty data: err = %v, want ErrEmptyData", err)
	}
}

func TestFromImage(t *testing.T) {
	// a sub-image has a non-zero origin and a wide stride
	src := checker().SubImage(image.Rect(1, 0, 3, 2))
	img := FromImage(src)
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("size = %dx%d, want 2x2", img.Width, img.Height)
	}
	want := []byte{
		0, 255, 0, 255, 0, 0, 255, 255,
		0, 0, 0, 255, 10, 20, 30, 255,
	}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %v, want %v", img.Pix, want)
	}

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 128})
	if got := FromImage(gray).Pix; !bytes.Equal(got, []byte{128, 128, 128, 255}) {
		t.Errorf("gray Pix = %v", got)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"textures/noise.png", "noise"},
		{"/abs/path/brick.wall.jpg", "brick.wall"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Name(tt.path); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
