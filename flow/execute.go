// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flow

import (
	"fmt"
	"slices"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/graph"
)

// execute builds the dispatch of a Program node and runs it.
func (it *Interpreter) execute(n *graph.Node) error {
	pd := n.Program()
	if pd == nil {
		return fmt.Errorf("flow: %v is %s, not program", n.ID(), n.Kind())
	}
	if !pd.Program.Compiled() {
		slogger().Debug("flow: program not compiled", "node", n.ID())
		return nil
	}
	d, err := it.Dispatch(n)
	if err != nil {
		return err
	}
	if err := it.exec.Execute(d); err != nil {
		return fmt.Errorf("flow: execute %q: %w", pd.Program.Name, err)
	}
	return nil
}

// Dispatch resolves every input of a Program node into a dispatch. Uniform
// blocks bound by the dispatch are uploaded as a side effect.
func (it *Interpreter) Dispatch(n *graph.Node) (*gpucore.Dispatch, error) {
	pd := n.Program()
	if pd == nil || pd.Program == nil {
		return nil, fmt.Errorf("flow: %v has no program: %w", n.ID(), graph.ErrWrongNodeKind)
	}
	d := &gpucore.Dispatch{
		Program:  pd.Program.ID,
		Mode:     pd.Mode,
		Topology: pd.Topology,
	}
	switch pd.Mode {
	case gpucore.DispatchArray:
		d.Count = pd.Size[0]
		d.Width, d.Height = it.width, it.height
		if !pd.Target.IsScreen() {
			d.Target = pd.Target.ID
			d.Width, d.Height = pd.Target.Width, pd.Target.Height
		}
	case gpucore.DispatchCompute:
		d.Groups = pd.Size
	default:
		panic(fmt.Sprintf("flow: unknown dispatch mode %d", pd.Mode))
	}

	// Image and buffer block inputs are numbered by kind for resolution
	// through upstream Program nodes.
	images, buffers := 0, 0
	for _, pid := range n.Inputs() {
		p, ok := it.g.Pin(pid)
		if !ok {
			continue
		}
		switch k := p.Kind(); {
		case k == graph.KindFlow:
		case k.IsScalar():
			d.Values = append(d.Values, gpucore.ValueBinding{
				Name: p.Name,
				Slot: p.Slot(),
				Type: k.VarType(),
				Data: it.scalar(p).Bytes(k),
			})
		case k == graph.KindTexture:
			if tex, ok := it.texture(p); ok {
				d.Textures = append(d.Textures, gpucore.TextureBinding{Name: p.Name, Slot: p.Slot(), Texture: tex})
			} else {
				it.skip(n, p)
			}
		case k == graph.KindImage:
			if img, ok := it.image(p, images); ok {
				d.Images = append(d.Images, gpucore.TextureBinding{Name: p.Name, Slot: p.Slot(), Texture: img})
			} else {
				it.skip(n, p)
			}
			images++
		case k == graph.KindBlock:
			if b, ok := it.block(p, buffers); ok {
				if p.Role() == graph.RoleUniformBlock {
					d.UniformBlocks = append(d.UniformBlocks, b)
				} else {
					d.StorageBlocks = append(d.StorageBlocks, b)
				}
			} else {
				it.skip(n, p)
			}
			if p.Role() == graph.RoleBufferBlock {
				buffers++
			}
		default:
			panic("flow: unknown pin kind " + k.String())
		}
	}
	return d, nil
}

func (it *Interpreter) skip(n *graph.Node, p *graph.Pin) {
	slogger().Debug("flow: input left unbound", "node", n.ID(), "pin", p.Name, "kind", p.Kind())
}

// scalar returns the value a scalar input feeds its program: the live value
// of a linked Time or MousePos node, or the pin's literal.
func (it *Interpreter) scalar(p *graph.Pin) graph.Value {
	if v, ok := it.live(p); ok {
		return v
	}
	return p.Value()
}

// live returns the value of the Time or MousePos node linked to p.
func (it *Interpreter) live(p *graph.Pin) (graph.Value, bool) {
	src, _, ok := it.g.SourceNode(p.ID())
	if !ok {
		return graph.Value{}, false
	}
	switch src.Data().(type) {
	case *graph.TimeData:
		return graph.Floats(float32(it.clock.Elapsed().Seconds())), true
	case *graph.MousePosData:
		var pos graph.Vec2
		if it.pointer != nil {
			pos = it.pointer.Position()
		}
		return graph.Floats(pos.X/float32(it.width), pos.Y/float32(it.height)), true
	default:
		return graph.Value{}, false
	}
}

// texture returns the texture bound to a Texture input: an attachment of
// the producing Program node's render target, a library texture, or an
// Image node's image.
func (it *Interpreter) texture(p *graph.Pin) (gpucore.TextureID, bool) {
	src, out, ok := it.g.SourceNode(p.ID())
	if !ok {
		return gpucore.InvalidID, false
	}
	switch d := src.Data().(type) {
	case *graph.ProgramData:
		i := slices.Index(src.Outputs(), out.ID()) - d.AttachmentStart
		if d.Target == nil || i < 0 || i >= len(d.Target.Attachments) {
			return gpucore.InvalidID, false
		}
		return d.Target.Attachments[i], true
	case *graph.TextureData:
		if d.Texture == nil || d.Texture.ID == gpucore.InvalidID {
			return gpucore.InvalidID, false
		}
		return d.Texture.ID, true
	case *graph.ImageData:
		return it.imageTexture(src)
	default:
		return gpucore.InvalidID, false
	}
}

// image returns the image bound to the index-th Image input.
func (it *Interpreter) image(p *graph.Pin, index int) (gpucore.TextureID, bool) {
	id, ok := it.g.Resolve(p.ID(), graph.KindImage, index, it.Parity)
	if !ok {
		return gpucore.InvalidID, false
	}
	n, _ := it.g.Node(id)
	return it.imageTexture(n)
}

// imageTexture returns the texture of an Image node: the library texture
// linked to its Texture input, or the node's own image.
func (it *Interpreter) imageTexture(n *graph.Node) (gpucore.TextureID, bool) {
	if n.NumInputs() > 0 {
		if src, _, ok := it.g.SourceNode(n.Input(0)); ok {
			if td := src.Texture(); td != nil && td.Texture != nil && td.Texture.ID != gpucore.InvalidID {
				return td.Texture.ID, true
			}
		}
	}
	img := n.Image().Image
	return img, img != gpucore.InvalidID
}

// block resolves a Block input and returns its binding. A uniform block's
// buffer is refreshed with the packed field values first.
func (it *Interpreter) block(p *graph.Pin, index int) (gpucore.BufferBinding, bool) {
	id, ok := it.g.Resolve(p.ID(), graph.KindBlock, index, it.Parity)
	if !ok {
		return gpucore.BufferBinding{}, false
	}
	n, _ := it.g.Node(id)
	bd := n.Block()
	b := gpucore.BufferBinding{Name: p.Name, Slot: p.Slot()}

	if p.Role() == graph.RoleUniformBlock {
		if bd.Uniform == gpucore.InvalidID {
			return b, false
		}
		data, err := it.g.PackBlock(id, it.live)
		if err != nil {
			slogger().Warn("flow: pack block", "node", id, "err", err)
		}
		it.exec.WriteBuffer(bd.Uniform, 0, data)
		b.Buffer, b.Size = bd.Uniform, uint64(bd.Size)
		return b, true
	}
	if bd.Storage == gpucore.InvalidID {
		return b, false
	}
	b.Buffer, b.Size = bd.Storage, uint64(bd.Size*bd.Repeat)
	return b, true
}
