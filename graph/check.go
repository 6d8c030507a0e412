// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"errors"
	"fmt"
	"slices"
)

// Check verifies the structural invariants of the graph and returns every
// violation found, joined. Each wraps ErrInvariant.
func (g *Graph) Check() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	for i, kind := range []EventKind{EventInit, EventFrame} {
		n, ok := g.NodeAt(i)
		if !ok || n.Event() == nil || n.Event().Event != kind {
			fail("event node %s missing at index %d", kind, i)
		}
	}

	for n := range g.Nodes() {
		for _, list := range [][]PinID{n.in, n.out} {
			for _, pid := range list {
				p, ok := g.Pin(pid)
				if !ok {
					fail("%v lists dead %v", n.id, pid)
				} else if p.node != n.id {
					fail("%v lists %v owned by %v", n.id, pid, p.node)
				}
			}
		}
		g.checkLayout(n, fail)
		if pp := n.PingPong(); pp != nil {
			g.checkPingPong(n, pp, fail)
		}
	}

	for p := range g.Pins() {
		n, ok := g.Node(p.node)
		if !ok {
			fail("%v owned by dead %v", p.id, p.node)
			continue
		}
		list := n.in
		if p.dir == Output {
			list = n.out
		}
		if !slices.Contains(list, p.id) {
			fail("%v missing from %s list of %v", p.id, p.dir, n.id)
		}
		if p.dir == Input && len(p.links) > 1 {
			fail("input %v holds %d links", p.id, len(p.links))
		}
		for _, lid := range p.links {
			l, ok := g.Link(lid)
			if !ok {
				fail("%v holds dead %v", p.id, lid)
			} else if l.a != p.id && l.b != p.id {
				fail("%v holds %v which does not touch it", p.id, lid)
			}
		}
	}

	for l := range g.Links() {
		a, okA := g.Pin(l.a)
		b, okB := g.Pin(l.b)
		if !okA || !okB {
			fail("%v references a dead pin", l.id)
			continue
		}
		if !a.hasLink(l.id) || !b.hasLink(l.id) {
			fail("%v not registered on both endpoints", l.id)
		}
		if a.kind != b.kind {
			fail("%v joins %s to %s", l.id, a.kind, b.kind)
		}
		if a.kind == KindBlock && a.size != b.size {
			fail("%v joins block sizes %d and %d", l.id, a.size, b.size)
		}
	}
	return errors.Join(errs...)
}

// layout is the fixed pin shape of a node variant. moreIn and moreOut allow
// further pins after the listed ones.
type layout struct {
	in, out         []PinKind
	moreIn, moreOut bool
}

func layoutOf(n *Node) layout {
	switch n.Kind() {
	case NodeEvent:
		return layout{out: []PinKind{KindFlow}}
	case NodeProgram:
		return layout{in: []PinKind{KindFlow}, out: []PinKind{KindFlow}, moreIn: true, moreOut: true}
	case NodeBlock:
		return layout{out: []PinKind{KindBlock}, moreIn: true}
	case NodeTexture:
		return layout{out: []PinKind{KindTexture}}
	case NodeImage:
		return layout{in: []PinKind{KindTexture}, out: []PinKind{KindImage, KindTexture}}
	case NodePingPong:
		k := n.PingPong().Sub.PinKind()
		return layout{in: []PinKind{k, k}, out: []PinKind{k, k}}
	case NodeTime:
		return layout{out: []PinKind{KindFloat}}
	case NodeMousePos:
		return layout{out: []PinKind{KindFloat2}}
	}
	return layout{moreIn: true, moreOut: true}
}

// checkLayout verifies the pins a node variant addresses by position.
func (g *Graph) checkLayout(n *Node, fail func(string, ...any)) {
	want := layoutOf(n)
	match := func(dir Direction, got []PinID, kinds []PinKind, more bool) {
		if len(got) < len(kinds) || (!more && len(got) != len(kinds)) {
			fail("%s %v has %d %s pins, want %d", n.Kind(), n.id, len(got), dir, len(kinds))
			return
		}
		for i, k := range kinds {
			if p, ok := g.Pin(got[i]); ok && p.kind != k {
				fail("%s %v %s pin %d is %s, want %s", n.Kind(), n.id, dir, i, p.kind, k)
			}
		}
	}
	match(Input, n.in, want.in, want.moreIn)
	match(Output, n.out, want.out, want.moreOut)
}

func (g *Graph) checkPingPong(n *Node, pp *PingPongData, fail func(string, ...any)) {
	linked := false
	for _, pid := range n.pins() {
		p, ok := g.Pin(pid)
		if !ok {
			continue
		}
		if p.size != pp.Size {
			fail("pingpong %v pin %v size %d, node size %d", n.id, pid, p.size, pp.Size)
		}
		if p.kind != pp.Sub.PinKind() {
			fail("pingpong %v pin %v kind %s", n.id, pid, p.kind)
		}
		linked = linked || p.Linked()
	}
	if pp.Sub == PingPongBlock && linked == (pp.Size == 0) {
		fail("pingpong %v size %d with linked=%v", n.id, pp.Size, linked)
	}
	if pp.Sub == PingPongImage && pp.Size != 1 {
		fail("image pingpong %v size %d", n.id, pp.Size)
	}
}
