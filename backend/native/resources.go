// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shadergraph/gpucore"
)

// rowAlignment is the required BytesPerRow alignment of texture copies.
const rowAlignment = 256

// textureUsage covers every role a shader graph texture can play: sampled
// input, writable image, render attachment and copy source for readback.
const textureUsage = gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageStorageBinding |
	gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageCopySrc

func (b *Backend) createTexture(label string, width, height int) (*texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         textureUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	return &texture{tex: tex, view: view, width: width, height: height}, nil
}

func (b *Backend) destroyTexture(t *texture) {
	if t.view != nil {
		b.device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		b.device.DestroyTexture(t.tex)
	}
}

// CreateTexture creates a 2D RGBA8 texture. With nil pixels the texture is
// a writable image.
func (b *Backend) CreateTexture(width, height int, pixels []byte) (gpucore.TextureID, error) {
	if b.isClosed() {
		return gpucore.InvalidID, ErrClosed
	}
	if pixels != nil && len(pixels) != width*height*4 {
		return gpucore.InvalidID, fmt.Errorf("native: texture data is %d bytes, want %d", len(pixels), width*height*4)
	}
	id := gpucore.TextureID(b.newID())
	t, err := b.createTexture(fmt.Sprintf("texture_%d", id), width, height)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: %w", err)
	}
	if pixels != nil {
		err := b.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
			pixels,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(width * 4),
				RowsPerImage: uint32(height),
			},
			&hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		)
		if err != nil {
			b.destroyTexture(t)
			return gpucore.InvalidID, fmt.Errorf("native: upload texture: %w", err)
		}
	}

	b.mu.Lock()
	b.textures[id] = t
	b.mu.Unlock()
	return id, nil
}

// DestroyTexture releases a texture. Attachments of a render target are
// released with the target only.
func (b *Backend) DestroyTexture(id gpucore.TextureID) {
	if id == gpucore.InvalidID {
		return
	}
	b.mu.Lock()
	t, ok := b.textures[id]
	if ok && t.owner != gpucore.InvalidID {
		b.mu.Unlock()
		slogger().Debug("native: attachment destroyed with its target only", "texture", id, "target", t.owner)
		return
	}
	delete(b.textures, id)
	b.mu.Unlock()
	if ok {
		b.destroyTexture(t)
	}
}

// CreateRenderTarget creates a framebuffer with the given number of RGBA
// color attachments.
func (b *Backend) CreateRenderTarget(attachments, width, height int) (gpucore.RenderTargetID, []gpucore.TextureID, error) {
	if b.isClosed() {
		return gpucore.InvalidID, nil, ErrClosed
	}
	if attachments < 1 {
		return gpucore.InvalidID, nil, fmt.Errorf("native: render target needs an attachment, got %d", attachments)
	}
	id := gpucore.RenderTargetID(b.newID())
	rt := &renderTarget{width: width, height: height}
	created := make([]*texture, 0, attachments)
	for i := range attachments {
		t, err := b.createTexture(fmt.Sprintf("target_%d_attachment_%d", id, i), width, height)
		if err != nil {
			for _, c := range created {
				b.destroyTexture(c)
			}
			return gpucore.InvalidID, nil, fmt.Errorf("native: render target: %w", err)
		}
		t.owner = id
		created = append(created, t)
	}

	b.mu.Lock()
	for _, t := range created {
		tid := gpucore.TextureID(b.newID())
		b.textures[tid] = t
		rt.attachments = append(rt.attachments, tid)
	}
	b.targets[id] = rt
	b.mu.Unlock()
	return id, append([]gpucore.TextureID(nil), rt.attachments...), nil
}

// DestroyRenderTarget releases a render target and its attachments.
func (b *Backend) DestroyRenderTarget(id gpucore.RenderTargetID) {
	if id == gpucore.InvalidID {
		return
	}
	b.mu.Lock()
	rt, ok := b.targets[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.targets, id)
	attachments := make([]*texture, 0, len(rt.attachments))
	for _, tid := range rt.attachments {
		if t, ok := b.textures[tid]; ok {
			attachments = append(attachments, t)
			delete(b.textures, tid)
		}
	}
	b.mu.Unlock()
	for _, t := range attachments {
		b.destroyTexture(t)
	}
}

func bufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	usage := gputypes.BufferUsageCopyDst
	if u&gpucore.BufferUsageUniform != 0 {
		usage |= gputypes.BufferUsageUniform
	}
	if u&gpucore.BufferUsageStorage != 0 {
		usage |= gputypes.BufferUsageStorage
	}
	if u&gpucore.BufferUsageCopySrc != 0 {
		usage |= gputypes.BufferUsageCopySrc
	}
	return usage
}

// CreateBuffer creates a buffer of size bytes. The device buffer is padded
// to a multiple of 16 bytes.
func (b *Backend) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if b.isClosed() {
		return gpucore.InvalidID, ErrClosed
	}
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("native: invalid buffer size %d", size)
	}
	id := gpucore.BufferID(b.newID())
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("buffer_%d", id),
		Size:  align(uint64(size), 16),
		Usage: bufferUsage(usage) | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create buffer: %w", err)
	}
	b.mu.Lock()
	b.buffers[id] = &buffer{buf: buf, size: uint64(size), usage: usage}
	b.mu.Unlock()
	return id, nil
}

// DestroyBuffer releases a buffer.
func (b *Backend) DestroyBuffer(id gpucore.BufferID) {
	if id == gpucore.InvalidID {
		return
	}
	b.mu.Lock()
	buf, ok := b.buffers[id]
	delete(b.buffers, id)
	b.mu.Unlock()
	if ok {
		b.device.DestroyBuffer(buf.buf)
	}
}

// WriteBuffer uploads data to a buffer at offset. Writes to unknown buffers
// or past the end are dropped.
func (b *Backend) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	b.mu.Lock()
	buf, ok := b.buffers[id]
	b.mu.Unlock()
	if !ok {
		slogger().Warn("native: write to unknown buffer", "buffer", id)
		return
	}
	if offset+uint64(len(data)) > buf.size {
		slogger().Warn("native: buffer write out of range",
			"buffer", id, "offset", offset, "len", len(data), "size", buf.size)
		return
	}
	if err := b.queue.WriteBuffer(buf.buf, offset, data); err != nil {
		slogger().Warn("native: buffer write failed", "buffer", id, "err", err)
	}
}

// ReadBuffer copies the contents of a buffer back to the CPU.
func (b *Backend) ReadBuffer(id gpucore.BufferID) ([]byte, error) {
	b.mu.Lock()
	buf, ok := b.buffers[id]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", ErrUnknownResource, id)
	}
	size := align(buf.size, 4)
	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.beginEncoder("readback_buffer")
	if err != nil {
		return nil, err
	}
	encoder.CopyBufferToBuffer(buf.buf, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	if err := b.submit(encoder); err != nil {
		return nil, fmt.Errorf("native: read buffer: %w", err)
	}
	out, err := b.readStaging(staging, size)
	if err != nil {
		return nil, fmt.Errorf("native: read buffer: %w", err)
	}
	return out[:buf.size], nil
}

// ReadTexture copies the RGBA pixels of a texture back to the CPU, tightly
// packed row by row.
func (b *Backend) ReadTexture(id gpucore.TextureID) ([]byte, int, int, error) {
	b.mu.Lock()
	t, ok := b.textures[id]
	b.mu.Unlock()
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: texture %d", ErrUnknownResource, id)
	}
	pixels, err := b.readTexture(t)
	return pixels, t.width, t.height, err
}

// ReadScreen returns the pixels last drawn to the screen target. It fails
// with ErrUnknownResource before the first screen draw.
func (b *Backend) ReadScreen() ([]byte, int, int, error) {
	b.mu.Lock()
	t := b.screen
	b.mu.Unlock()
	if t == nil {
		return nil, 0, 0, fmt.Errorf("%w: nothing drawn to the screen", ErrUnknownResource)
	}
	pixels, err := b.readTexture(t)
	return pixels, t.width, t.height, err
}

func (b *Backend) readTexture(t *texture) ([]byte, error) {
	w, h := uint32(t.width), uint32(t.height)
	stride := uint32(align(uint64(w*4), rowAlignment))
	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_texture_staging",
		Size:  uint64(stride * h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.beginEncoder("readback_texture")
	if err != nil {
		return nil, err
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: stride, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	if err := b.submit(encoder); err != nil {
		return nil, fmt.Errorf("native: read texture: %w", err)
	}

	padded, err := b.readStaging(staging, uint64(stride*h))
	if err != nil {
		return nil, fmt.Errorf("native: read texture: %w", err)
	}
	row := int(w * 4)
	out := make([]byte, 0, row*int(h))
	for y := range int(h) {
		start := y * int(stride)
		out = append(out, padded[start:start+row]...)
	}
	return out, nil
}

// readStaging maps the first size bytes of a completed staging buffer and
// copies them out.
func (b *Backend) readStaging(staging hal.Buffer, size uint64) ([]byte, error) {
	mapping, err := b.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := b.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return out, nil
}

// ensureScreen returns the screen texture, recreating it when the viewport
// size changed. Called with mu held.
func (b *Backend) ensureScreen(width, height int) (*texture, error) {
	if b.screen != nil && b.screen.width == width && b.screen.height == height {
		return b.screen, nil
	}
	t, err := b.createTexture("screen", width, height)
	if err != nil {
		return nil, err
	}
	if b.screen != nil {
		b.destroyTexture(b.screen)
	}
	b.screen = t
	return t, nil
}

func (b *Backend) beginEncoder(label string) (hal.CommandEncoder, error) {
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	return encoder, nil
}

func (b *Backend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
