// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"

	"github.com/gogpu/shadergraph/gpucore"
)

// MaxImageSize bounds the width and height of an Image node.
const MaxImageSize = 4096

// AddTextureNode places a node showing a library texture.
func (g *Graph) AddTextureNode(pos Vec2, tex *gpucore.Texture) NodeID {
	id := g.addNode(pos, &TextureData{Texture: tex})
	g.addPin(id, Output, KindTexture, "Texture")
	return id
}

// AddImageNode places a node owning a writable width x height image.
func (g *Graph) AddImageNode(pos Vec2, width, height int) (NodeID, error) {
	id := g.addNode(pos, &ImageData{})
	g.addPin(id, Input, KindTexture, "Texture")
	g.addPin(id, Output, KindImage, "Image")
	g.addPin(id, Output, KindTexture, "Texture")
	if err := g.ResizeImage(id, width, height); err != nil {
		g.DeleteNode(id)
		return NodeID{}, err
	}
	return id, nil
}

// ResizeImage recreates an Image node's image. Each side is clamped to
// 1..MaxImageSize.
func (g *Graph) ResizeImage(id NodeID, width, height int) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("%v: %w", id, ErrNodeNotFound)
	}
	d := n.Image()
	if d == nil {
		return fmt.Errorf("%v is %s, not image: %w", id, n.Kind(), ErrWrongNodeKind)
	}
	d.Width = min(max(width, 1), MaxImageSize)
	d.Height = min(max(height, 1), MaxImageSize)
	g.release(n)
	if g.res == nil {
		return nil
	}
	img, err := g.res.CreateTexture(d.Width, d.Height, nil)
	if err != nil {
		return fmt.Errorf("graph: create image %dx%d: %w", d.Width, d.Height, err)
	}
	d.Image = img
	return nil
}

// AddPingPongNode places a double-buffer node of the given kind.
func (g *Graph) AddPingPongNode(pos Vec2, sub PingPongKind) NodeID {
	pp := &PingPongData{Sub: sub, Size: sub.emptySize()}
	id := g.addNode(pos, pp)
	kind := sub.PinKind()
	for _, name := range []string{"A", "B"} {
		g.addPin(id, Input, kind, name).size = pp.Size
	}
	for _, name := range []string{"Out1", "Out2"} {
		g.addPin(id, Output, kind, name).size = pp.Size
	}
	return id
}

// SetPingPongKind switches a PingPong node between Block and Image. Every
// link of the node is deleted and the size resets.
func (g *Graph) SetPingPongKind(id NodeID, sub PingPongKind) error {
	n, ok := g.Node(id)
	if !ok {
		return fmt.Errorf("%v: %w", id, ErrNodeNotFound)
	}
	pp := n.PingPong()
	if pp == nil {
		return fmt.Errorf("%v is %s, not pingpong: %w", id, n.Kind(), ErrWrongNodeKind)
	}
	for _, pid := range n.pins() {
		if p, ok := g.Pin(pid); ok {
			g.unlinkPin(p, true)
			p.kind = sub.PinKind()
		}
	}
	pp.Sub = sub
	g.setPingPongSize(n, sub.emptySize())
	return nil
}

// AddTimeNode places a node providing the seconds since playback started.
func (g *Graph) AddTimeNode(pos Vec2) NodeID {
	id := g.addNode(pos, &TimeData{})
	g.addPin(id, Output, KindFloat, "Time")
	return id
}

// AddMousePosNode places a node providing the pointer position normalized to
// the render size.
func (g *Graph) AddMousePosNode(pos Vec2) NodeID {
	id := g.addNode(pos, &MousePosData{})
	g.addPin(id, Output, KindFloat2, "Mouse")
	return id
}
