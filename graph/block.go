// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gogpu/shadergraph/gpucore"
)

// AddBlockNode places a Block node with the given fields. Fields whose type
// is not a scalar are skipped.
func (g *Graph) AddBlockNode(pos Vec2, fields []gpucore.Field) (NodeID, error) {
	bd := &BlockData{Repeat: 1}
	id := g.addNode(pos, bd)
	for _, f := range fields {
		kind, ok := KindOf(f.Type)
		if !ok || !kind.IsScalar() {
			continue
		}
		g.addPin(id, Input, kind, f.Name)
	}
	g.addPin(id, Output, KindBlock, "Out")

	n, _ := g.Node(id)
	if err := g.reshapeBlock(n); err != nil {
		g.DeleteNode(id)
		return NodeID{}, err
	}
	return id, nil
}

// AddBlockNodeFromPin places a Block node laid out like the uniform or
// buffer block behind a Program node's Block input, and links the two.
func (g *Graph) AddBlockNodeFromPin(pos Vec2, pin PinID) (NodeID, error) {
	p, ok := g.Pin(pin)
	if !ok {
		return NodeID{}, fmt.Errorf("block from %v: %w", pin, ErrPinNotFound)
	}
	if p.kind != KindBlock || p.dir != Input || p.role == RoleNone {
		return NodeID{}, fmt.Errorf("block from %s %s pin: %w", p.kind, p.dir, ErrWrongPinKind)
	}
	prog, pd, err := g.programNode(p.node)
	if err != nil {
		return NodeID{}, err
	}
	block, ok := g.programBlock(prog, pd, p)
	if !ok {
		return NodeID{}, fmt.Errorf("block from %v: no block %q in program: %w", pin, p.Name, ErrPinNotFound)
	}
	id, err := g.AddBlockNode(pos, block.Fields)
	if err != nil {
		return NodeID{}, err
	}
	n, _ := g.Node(id)
	if _, r := g.TryLink(n.out[0], pin); r != RejectNone {
		slogger().Warn("graph: new block does not fit its pin", "pin", pin, "reason", r)
	}
	return id, nil
}

// programBlock finds the program block described by a Block input pin.
func (g *Graph) programBlock(n *Node, pd *ProgramData, p *Pin) (gpucore.Block, bool) {
	if pd.Program == nil {
		return gpucore.Block{}, false
	}
	blocks := pd.Program.Info.UniformBlocks
	if p.role == RoleBufferBlock {
		blocks = pd.Program.Info.BufferBlocks
	}
	ordinal := 0
	for _, pid := range n.in {
		if pid == p.id {
			break
		}
		if q, ok := g.Pin(pid); ok && q.kind == KindBlock && q.role == p.role {
			ordinal++
		}
	}
	if ordinal >= len(blocks) {
		return gpucore.Block{}, false
	}
	return blocks[ordinal], true
}

func (g *Graph) blockNode(id NodeID) (*Node, *BlockData, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, nil, fmt.Errorf("%v: %w", id, ErrNodeNotFound)
	}
	bd := n.Block()
	if bd == nil {
		return nil, nil, fmt.Errorf("%v is %s, not block: %w", id, n.Kind(), ErrWrongNodeKind)
	}
	return n, bd, nil
}

// blockField returns a field pin and its Block node.
func (g *Graph) blockField(pin PinID) (*Pin, *Node, error) {
	p, ok := g.Pin(pin)
	if !ok {
		return nil, nil, fmt.Errorf("block field %v: %w", pin, ErrPinNotFound)
	}
	n, _, err := g.blockNode(p.node)
	if err != nil {
		return nil, nil, err
	}
	if p.dir != Input {
		return nil, nil, fmt.Errorf("block output is not a field: %w", ErrWrongPinKind)
	}
	return p, n, nil
}

// AddBlockField appends a Float field named new_varN to a Block node.
func (g *Graph) AddBlockField(id NodeID) (PinID, error) {
	n, _, err := g.blockNode(id)
	if err != nil {
		return PinID{}, err
	}
	p := g.addPin(id, Input, KindFloat, "new_var"+strconv.Itoa(len(n.in)))
	return p.id, g.reshapeBlock(n)
}

// SetBlockFieldKind changes the type of a field. The field loses its links
// and literal.
func (g *Graph) SetBlockFieldKind(pin PinID, kind PinKind) error {
	if !kind.IsScalar() {
		return fmt.Errorf("block field of kind %s: %w", kind, ErrWrongPinKind)
	}
	p, n, err := g.blockField(pin)
	if err != nil {
		return err
	}
	if p.kind == kind {
		return nil
	}
	g.unlinkPin(p, true)
	p.kind = kind
	p.value = Value{}
	return g.reshapeBlock(n)
}

// RenameBlockField renames a field.
func (g *Graph) RenameBlockField(pin PinID, name string) error {
	p, _, err := g.blockField(pin)
	if err != nil {
		return err
	}
	p.Name = name
	return nil
}

// RemoveBlockField deletes a field and its links.
func (g *Graph) RemoveBlockField(pin PinID) error {
	p, n, err := g.blockField(pin)
	if err != nil {
		return err
	}
	g.deletePin(p)
	return g.reshapeBlock(n)
}

// SetBlockRepeat sets the element count of the storage buffer. Values below
// 1 are raised to 1.
func (g *Graph) SetBlockRepeat(id NodeID, repeat int) error {
	n, bd, err := g.blockNode(id)
	if err != nil {
		return err
	}
	bd.Repeat = max(repeat, 1)
	return g.allocBlock(n, bd)
}

// reshapeBlock recomputes the block size after a field change. The output
// pin takes the new size and loses its links, and the buffers are
// recreated.
func (g *Graph) reshapeBlock(n *Node) error {
	bd := n.Block()
	size := 0
	for _, pid := range n.in {
		if p, ok := g.Pin(pid); ok {
			size += p.Size()
		}
	}
	bd.Size = size
	if out, ok := g.Pin(n.out[0]); ok {
		g.unlinkPin(out, true)
		out.size = size
	}
	return g.allocBlock(n, bd)
}

// allocBlock replaces a Block node's buffers with ones of the current size.
func (g *Graph) allocBlock(n *Node, bd *BlockData) error {
	g.release(n)
	if g.res == nil || bd.Size == 0 {
		return nil
	}
	ubo, err := g.res.CreateBuffer(bd.Size, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("graph: create uniform buffer: %w", err)
	}
	ssbo, err := g.res.CreateBuffer(bd.Size*bd.Repeat,
		gpucore.BufferUsageStorage|gpucore.BufferUsageCopyDst|gpucore.BufferUsageCopySrc)
	if err != nil {
		g.res.DestroyBuffer(ubo)
		return fmt.Errorf("graph: create storage buffer: %w", err)
	}
	bd.Uniform, bd.Storage = ubo, ssbo
	return nil
}

// PackBlock returns the packed field values of a Block node. source supplies
// the value of a linked field; with nil source, or when it reports false,
// the field's literal is used.
func (g *Graph) PackBlock(id NodeID, source func(field *Pin) (Value, bool)) ([]byte, error) {
	n, bd, err := g.blockNode(id)
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, bd.Size)
	var errs []error
	for _, pid := range n.in {
		p, ok := g.Pin(pid)
		if !ok {
			errs = append(errs, fmt.Errorf("%v: %w", pid, ErrPinNotFound))
			continue
		}
		v := p.value
		if source != nil && p.Linked() {
			if sv, ok := source(p); ok {
				v = sv
			}
		}
		data = v.AppendBytes(data, p.kind)
	}
	return data, errors.Join(errs...)
}
