// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shadergraph

import (
	"fmt"
	"slices"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/graph"
)

// AddProgramNode places a node running a library program into target. A
// nil target is the screen.
func (e *Editor) AddProgramNode(pos graph.Vec2, p *gpucore.Program, target *gpucore.RenderTarget) (graph.NodeID, error) {
	if !slices.Contains(e.programs, p) {
		return graph.NodeID{}, fmt.Errorf("%w: program %q", ErrNotInLibrary, p.Name)
	}
	if target == nil {
		target = e.Screen()
	}
	if !slices.Contains(e.targets, target) {
		return graph.NodeID{}, fmt.Errorf("%w: render target %q", ErrNotInLibrary, target.Name)
	}
	return e.graph.AddProgramNode(pos, p, target), nil
}

// SetRenderTarget points a Program node at a library render target. A nil
// target is the screen.
func (e *Editor) SetRenderTarget(id graph.NodeID, target *gpucore.RenderTarget) error {
	if target == nil {
		target = e.Screen()
	}
	if !slices.Contains(e.targets, target) {
		return fmt.Errorf("%w: render target %q", ErrNotInLibrary, target.Name)
	}
	return e.graph.SetRenderTarget(id, target)
}

// AddTextureNode places a node showing a library texture.
func (e *Editor) AddTextureNode(pos graph.Vec2, t *gpucore.Texture) (graph.NodeID, error) {
	if !slices.Contains(e.textures, t) {
		return graph.NodeID{}, fmt.Errorf("%w: texture %q", ErrNotInLibrary, t.Name)
	}
	return e.graph.AddTextureNode(pos, t), nil
}

// AddBlockNode places a Block node with the given fields.
func (e *Editor) AddBlockNode(pos graph.Vec2, fields []gpucore.Field) (graph.NodeID, error) {
	return e.graph.AddBlockNode(pos, fields)
}

// AddBlockNodeFromPin places a Block node shaped after a Program node's
// block input and links it there.
func (e *Editor) AddBlockNodeFromPin(pos graph.Vec2, pin graph.PinID) (graph.NodeID, error) {
	return e.graph.AddBlockNodeFromPin(pos, pin)
}

// AddImageNode places a node owning a writable image.
func (e *Editor) AddImageNode(pos graph.Vec2, width, height int) (graph.NodeID, error) {
	return e.graph.AddImageNode(pos, width, height)
}

// AddPingPongNode places a double-buffering node.
func (e *Editor) AddPingPongNode(pos graph.Vec2, sub graph.PingPongKind) graph.NodeID {
	return e.graph.AddPingPongNode(pos, sub)
}

// AddTimeNode places a node reporting seconds since playback started.
func (e *Editor) AddTimeNode(pos graph.Vec2) graph.NodeID { return e.graph.AddTimeNode(pos) }

// AddMousePosNode places a node reporting the pointer and render size.
func (e *Editor) AddMousePosNode(pos graph.Vec2) graph.NodeID { return e.graph.AddMousePosNode(pos) }

// TryLink links two pins, or reports why it cannot.
func (e *Editor) TryLink(a, b graph.PinID) (graph.LinkID, graph.Reject) { return e.graph.TryLink(a, b) }

// DeleteNode removes a node with its pins and links.
func (e *Editor) DeleteNode(id graph.NodeID) bool { return e.graph.DeleteNode(id) }

// DeleteLink removes a link.
func (e *Editor) DeleteLink(id graph.LinkID) bool { return e.graph.DeleteLink(id) }

// DeletePin removes a Block field and its links. It returns false for any
// other pin.
func (e *Editor) DeletePin(id graph.PinID) bool { return e.graph.DeletePin(id) }

// SetLiteral sets the value an unlinked scalar input feeds its program.
func (e *Editor) SetLiteral(pin graph.PinID, v graph.Value) error { return e.graph.SetLiteral(pin, v) }

// SetDispatch sets how a Program node runs.
func (e *Editor) SetDispatch(id graph.NodeID, mode gpucore.DispatchMode, topology gpucore.Topology, size [3]uint32) error {
	return e.graph.SetDispatch(id, mode, topology, size)
}

// AddBlockField appends a Float field to a Block node.
func (e *Editor) AddBlockField(id graph.NodeID) (graph.PinID, error) { return e.graph.AddBlockField(id) }

// SetBlockFieldKind changes the type of a Block field, dropping its links
// and literal.
func (e *Editor) SetBlockFieldKind(pin graph.PinID, kind graph.PinKind) error {
	return e.graph.SetBlockFieldKind(pin, kind)
}

// RenameBlockField renames a Block field.
func (e *Editor) RenameBlockField(pin graph.PinID, name string) error {
	return e.graph.RenameBlockField(pin, name)
}

// RemoveBlockField removes a field from its Block node.
func (e *Editor) RemoveBlockField(pin graph.PinID) error { return e.graph.RemoveBlockField(pin) }

// SetBlockRepeat sets how many copies of a Block's layout its storage
// buffer holds.
func (e *Editor) SetBlockRepeat(id graph.NodeID, repeat int) error {
	return e.graph.SetBlockRepeat(id, repeat)
}

// ResizeImage recreates an Image node's image at a new size.
func (e *Editor) ResizeImage(id graph.NodeID, width, height int) error {
	return e.graph.ResizeImage(id, width, height)
}

// SetPingPongKind switches what a PingPong node double-buffers. Every link
// on the node is removed.
func (e *Editor) SetPingPongKind(id graph.NodeID, sub graph.PingPongKind) error {
	return e.graph.SetPingPongKind(id, sub)
}
