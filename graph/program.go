// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/gogpu/shadergraph/gpucore"
)

// AddProgramNode places a Program node backed by prog rendering into target.
// A nil target means the screen.
func (g *Graph) AddProgramNode(pos Vec2, prog *gpucore.Program, target *gpucore.RenderTarget) NodeID {
	if target == nil {
		target = gpucore.NewScreenTarget()
	}
	pd := &ProgramData{
		Program: prog,
		Target:  target,
		Mode:    gpucore.DispatchArray,
		Size:    [3]uint32{1, 1, 1},
	}
	id := g.addNode(pos, pd)
	n, _ := g.Node(id)
	n.in, n.out = g.programPins(id, prog, pd)
	return id
}

// programPins creates the pins of a Program node from its program interface
// and render target. The pins are owned by id but not yet attached to it.
func (g *Graph) programPins(id NodeID, prog *gpucore.Program, pd *ProgramData) (in, out []PinID) {
	newPin := func(dir Direction, kind PinKind, name string) *Pin {
		p := &Pin{Name: name, node: id, kind: kind, dir: dir}
		p.id = PinID(g.pins.add(p))
		if dir == Input {
			in = append(in, p.id)
		} else {
			out = append(out, p.id)
		}
		return p
	}

	newPin(Input, KindFlow, "In")
	newPin(Output, KindFlow, "Out")

	var info gpucore.ProgramInfo
	if prog != nil {
		info = prog.Info
	}
	for _, u := range info.Uniforms {
		kind, ok := KindOf(u.Type)
		if !ok {
			slogger().Debug("graph: uniform without pin kind", "name", u.Name, "type", u.Type)
			continue
		}
		newPin(Input, kind, u.Name).slot = u.Slot
		if kind == KindImage {
			newPin(Output, KindImage, u.Name).slot = u.Slot
		}
	}
	for _, b := range info.UniformBlocks {
		p := newPin(Input, KindBlock, b.Name)
		p.size, p.role, p.slot = b.Size, RoleUniformBlock, b.Slot
	}
	for _, b := range info.BufferBlocks {
		p := newPin(Input, KindBlock, b.Name)
		p.size, p.role, p.slot = b.Size, RoleBufferBlock, b.Slot
		q := newPin(Output, KindBlock, b.Name)
		q.size, q.role, q.slot = b.Size, RoleBufferBlock, b.Slot
	}

	pd.AttachmentStart = len(out)
	for i := range attachmentCount(pd.Target) {
		newPin(Output, KindTexture, "Attachment "+strconv.Itoa(i))
	}
	return in, out
}

func attachmentCount(t *gpucore.RenderTarget) int {
	if t == nil {
		return 0
	}
	return t.AttachmentCount
}

func (g *Graph) programNode(id NodeID) (*Node, *ProgramData, error) {
	n, ok := g.Node(id)
	if !ok {
		return nil, nil, fmt.Errorf("%v: %w", id, ErrNodeNotFound)
	}
	pd := n.Program()
	if pd == nil {
		return nil, nil, fmt.Errorf("%v is %s, not program: %w", id, n.Kind(), ErrWrongNodeKind)
	}
	return n, pd, nil
}

// SetRenderTarget points a Program node at another render target. Its
// attachment outputs are dropped with their links and rebuilt for target.
func (g *Graph) SetRenderTarget(id NodeID, target *gpucore.RenderTarget) error {
	n, pd, err := g.programNode(id)
	if err != nil {
		return err
	}
	if target == nil {
		target = gpucore.NewScreenTarget()
	}
	for _, pid := range slices.Clone(n.out) {
		if p, ok := g.Pin(pid); ok && p.kind == KindTexture {
			g.deletePin(p)
		}
	}
	pd.Target = target
	pd.AttachmentStart = len(n.out)
	for i := range attachmentCount(target) {
		g.addPin(id, Output, KindTexture, "Attachment "+strconv.Itoa(i))
	}
	return nil
}

// SetDispatch sets how a Program node runs. For array dispatch size[0] is the
// vertex count.
func (g *Graph) SetDispatch(id NodeID, mode gpucore.DispatchMode, topology gpucore.Topology, size [3]uint32) error {
	_, pd, err := g.programNode(id)
	if err != nil {
		return err
	}
	pd.Mode = mode
	pd.Topology = topology
	pd.Size = size
	return nil
}

// MigrateProgramNode rebuilds a Program node's pins from prog's current
// interface.
//
// The node keeps its identity, position and dispatch settings. It keeps its
// render target when target is still in targets and falls back to
// targets[0] (the screen) otherwise. Each new pin whose old counterpart at
// the same position has the same kind and size inherits its literal and
// links; every other old pin is deleted with its links.
func (g *Graph) MigrateProgramNode(id NodeID, prog *gpucore.Program, targets []*gpucore.RenderTarget) error {
	n, old, err := g.programNode(id)
	if err != nil {
		return err
	}

	target := gpucore.NewScreenTarget()
	if len(targets) > 0 {
		target = targets[0]
	}
	if slices.Contains(targets, old.Target) {
		target = old.Target
	}
	pd := &ProgramData{
		Program:  prog,
		Target:   target,
		Mode:     old.Mode,
		Topology: old.Topology,
		Size:     old.Size,
	}
	in, out := g.programPins(id, prog, pd)

	kept := g.carryPins(n.in, in) + g.carryPins(n.out, out)

	for _, pid := range n.pins() {
		if p, ok := g.Pin(pid); ok {
			g.unlinkPin(p, true)
			g.pins.free(handle(pid))
		}
	}
	n.in, n.out, n.data = in, out, pd

	slogger().Debug("graph: program node migrated",
		"node", id, "pins", len(in)+len(out), "kept", kept)
	return nil
}

// carryPins moves literals and links from old pins to new pins at the same
// position when kind and size match. It returns the number of pins carried.
func (g *Graph) carryPins(oldPins, newPins []PinID) int {
	carried := 0
	for i := range min(len(oldPins), len(newPins)) {
		op, ok1 := g.Pin(oldPins[i])
		np, ok2 := g.Pin(newPins[i])
		if !ok1 || !ok2 || op.kind != np.kind || op.Size() != np.Size() {
			continue
		}
		np.value = op.value
		for _, lid := range op.links {
			l, ok := g.Link(lid)
			if !ok {
				continue
			}
			if l.a == op.id {
				l.a = np.id
			} else {
				l.b = np.id
			}
			np.links = append(np.links, lid)
		}
		op.links = nil
		carried++
	}
	return carried
}
