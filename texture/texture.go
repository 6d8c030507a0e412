// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texture loads image files into the tightly packed RGBA pixels a
// shadergraph backend uploads.
//
// PNG, JPEG, GIF, BMP, TIFF and WebP are supported. Pixels are 8-bit RGBA
// with straight (non-premultiplied) alpha, top row first.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	// Decoders register themselves with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load errors.
var (
	// ErrUnsupportedFormat is returned when no decoder recognizes the data.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("texture: empty data")
)

// Image is a decoded texture.
type Image struct {
	Width  int
	Height int

	// Pix holds Width*Height RGBA pixels, 4 bytes each.
	Pix []byte

	// Format is the name of the decoder that read the image.
	Format string
}

// Load reads and decodes the image file at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("texture: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// LoadBytes decodes an image held in memory.
func LoadBytes(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes an image from r, detecting the format from its content.
func Decode(r io.Reader) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedFormat
		}
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	img := FromImage(src)
	img.Format = format
	return img, nil
}

// FromImage converts any image to RGBA pixels.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	// Fast path for NRGBA images with a tight stride
	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Stride == w*4 && b.Min == (image.Point{}) {
		return &Image{Width: w, Height: h, Pix: append([]byte(nil), nrgba.Pix...)}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return &Image{Width: w, Height: h, Pix: dst.Pix}
}

// Name returns the library name of a texture file: its base name without
// the extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
