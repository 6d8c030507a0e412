// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shadergraph/gpucore"
)

// Execute runs one program with its resolved inputs and waits for the GPU
// to finish it.
//
// Slots the dispatch leaves unbound get a placeholder: a zeroed buffer for
// blocks, a 1x1 transparent texture for textures and images.
func (b *Backend) Execute(d *gpucore.Dispatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	p, ok := b.programs[d.Program]
	if !ok {
		return fmt.Errorf("%w: program %d", ErrUnknownResource, d.Program)
	}

	var views []hal.TextureView
	if d.Mode == gpucore.DispatchArray {
		if !p.canRender() {
			return fmt.Errorf("%w: %q has no vertex and fragment entry", ErrModeUnsupported, p.name)
		}
		var err error
		if views, err = b.colorViews(d); err != nil {
			return err
		}
	} else if p.compute == nil {
		return fmt.Errorf("%w: %q has no compute entry", ErrModeUnsupported, p.name)
	}

	for _, v := range d.Values {
		buf, ok := p.uniforms[v.Slot]
		if !ok {
			continue
		}
		if err := b.queue.WriteBuffer(buf, 0, v.Data); err != nil {
			return fmt.Errorf("native: %q: upload %s: %w", p.name, v.Name, err)
		}
	}

	groups, err := b.bindGroups(p, d)
	defer func() {
		for _, bg := range groups {
			b.device.DestroyBindGroup(bg)
		}
	}()
	if err != nil {
		return err
	}

	encoder, err := b.beginEncoder(p.name)
	if err != nil {
		return err
	}
	switch d.Mode {
	case gpucore.DispatchCompute:
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: p.name})
		pass.SetPipeline(p.compute)
		for i, bg := range groups {
			pass.SetBindGroup(uint32(i), bg, nil)
		}
		pass.Dispatch(max(d.Groups[0], 1), max(d.Groups[1], 1), max(d.Groups[2], 1))
		pass.End()
	default:
		pipeline, err := b.renderPipeline(p, d.Topology, len(views))
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("native: %q: %w", p.name, err)
		}
		attachments := make([]hal.RenderPassColorAttachment, len(views))
		for i, v := range views {
			attachments[i] = hal.RenderPassColorAttachment{
				View:       v,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			}
		}
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label:            p.name,
			ColorAttachments: attachments,
		})
		rp.SetPipeline(pipeline)
		for i, bg := range groups {
			rp.SetBindGroup(uint32(i), bg, nil)
		}
		if d.Count > 0 {
			rp.Draw(d.Count, 1, 0, 0)
		}
		rp.End()
	}
	if err := b.submit(encoder); err != nil {
		return fmt.Errorf("native: execute %q: %w", p.name, err)
	}
	return nil
}

// colorViews returns the attachment views an array dispatch draws into.
// Called with mu held.
func (b *Backend) colorViews(d *gpucore.Dispatch) ([]hal.TextureView, error) {
	if d.Target == gpucore.InvalidID {
		screen, err := b.ensureScreen(max(d.Width, 1), max(d.Height, 1))
		if err != nil {
			return nil, fmt.Errorf("native: screen: %w", err)
		}
		return []hal.TextureView{screen.view}, nil
	}
	rt, ok := b.targets[d.Target]
	if !ok {
		return nil, fmt.Errorf("%w: render target %d", ErrUnknownResource, d.Target)
	}
	views := make([]hal.TextureView, 0, len(rt.attachments))
	for _, tid := range rt.attachments {
		views = append(views, b.textures[tid].view)
	}
	return views, nil
}

// bindGroups creates one bind group per layout of p. Called with mu held.
// The returned groups must be destroyed by the caller, even on error.
func (b *Backend) bindGroups(p *program, d *gpucore.Dispatch) ([]hal.BindGroup, error) {
	textures := make(map[gpucore.Slot]gpucore.TextureID, len(d.Textures)+len(d.Images))
	for _, t := range d.Textures {
		textures[t.Slot] = t.Texture
	}
	for _, t := range d.Images {
		textures[t.Slot] = t.Texture
	}
	buffers := make(map[gpucore.Slot]gpucore.BufferBinding, len(d.UniformBlocks)+len(d.StorageBlocks))
	for _, bb := range d.UniformBlocks {
		buffers[bb.Slot] = bb
	}
	for _, bb := range d.StorageBlocks {
		buffers[bb.Slot] = bb
	}

	groups := make([]hal.BindGroup, 0, len(p.layouts))
	for g, layout := range p.layouts {
		var entries []gputypes.BindGroupEntry
		for _, bd := range p.bindings {
			if int(bd.slot.Group) != g {
				continue
			}
			e, err := b.bindEntry(p, bd, textures, buffers)
			if err != nil {
				return groups, err
			}
			entries = append(entries, e)
		}
		bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s_bind%d", p.name, g),
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			return groups, fmt.Errorf("native: %q: create bind group %d: %w", p.name, g, err)
		}
		groups = append(groups, bg)
	}
	return groups, nil
}

func (b *Backend) bindEntry(p *program, bd binding, textures map[gpucore.Slot]gpucore.TextureID, buffers map[gpucore.Slot]gpucore.BufferBinding) (gputypes.BindGroupEntry, error) {
	e := gputypes.BindGroupEntry{Binding: bd.slot.Binding}
	switch bd.kind {
	case bindUniform:
		e.Resource = gputypes.BufferBinding{Buffer: p.uniforms[bd.slot].NativeHandle(), Offset: 0, Size: bd.size}
	case bindUniformBlock, bindStorageBlock:
		if bb, ok := buffers[bd.slot]; ok {
			if buf, ok := b.buffers[bb.Buffer]; ok {
				size := bb.Size
				if size == 0 || size > buf.size {
					size = buf.size
				}
				e.Resource = gputypes.BufferBinding{Buffer: buf.buf.NativeHandle(), Offset: 0, Size: size}
				return e, nil
			}
		}
		buf, err := b.fallbackBuffer(p, bd)
		if err != nil {
			return e, err
		}
		e.Resource = gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: bd.size}
	case bindTexture, bindImage:
		view, err := b.textureView(textures[bd.slot])
		if err != nil {
			return e, err
		}
		e.Resource = gputypes.TextureViewBinding{TextureView: view.NativeHandle()}
	case bindSampler:
		e.Resource = gputypes.SamplerBinding{Sampler: b.sampler.NativeHandle()}
	}
	return e, nil
}

// fallbackBuffer returns the zeroed buffer bound to an unresolved block.
func (b *Backend) fallbackBuffer(p *program, bd binding) (hal.Buffer, error) {
	if buf, ok := p.fallback[bd.slot]; ok {
		return buf, nil
	}
	usage := gputypes.BufferUsageUniform
	if bd.kind == bindStorageBlock {
		usage = gputypes.BufferUsageStorage
	}
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("%s_fallback_%d_%d", p.name, bd.slot.Group, bd.slot.Binding),
		Size:  align(bd.size, 16),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: %q: create fallback buffer: %w", p.name, err)
	}
	p.fallback[bd.slot] = buf
	return buf, nil
}

// textureView returns the view of a texture, or of the placeholder texture
// when id names none. Called with mu held.
func (b *Backend) textureView(id gpucore.TextureID) (hal.TextureView, error) {
	if t, ok := b.textures[id]; ok {
		return t.view, nil
	}
	if t, ok := b.textures[blankTexture]; ok {
		return t.view, nil
	}
	t, err := b.createTexture("blank", 1, 1)
	if err != nil {
		return nil, fmt.Errorf("native: placeholder texture: %w", err)
	}
	err = b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		make([]byte, 4),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	if err != nil {
		b.destroyTexture(t)
		return nil, fmt.Errorf("native: placeholder texture: %w", err)
	}
	b.textures[blankTexture] = t
	return t.view, nil
}

// blankTexture keys the placeholder texture. IDs handed out start at 1 and
// never reach it.
const blankTexture = ^gpucore.TextureID(0)
