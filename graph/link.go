// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Reject is the reason TryLink refused a link.
type Reject uint8

const (
	// RejectNone means the link was created (or already existed).
	RejectNone Reject = iota

	// RejectMissingPin means an endpoint does not name a live pin.
	RejectMissingPin

	// RejectSamePin means both endpoints are the same pin.
	RejectSamePin

	// RejectSameNode means both endpoints belong to one node.
	RejectSameNode

	// RejectKindMismatch means the endpoints have different kinds.
	RejectKindMismatch

	// RejectSizeMismatch means two Block pins have different sizes and
	// neither is an open PingPong wildcard, or the link would carry 0 bytes.
	RejectSizeMismatch

	// RejectFlowDirection means a Flow link does not join an output to an
	// input.
	RejectFlowDirection

	// RejectFlowCycle means a Flow link would close a cycle in the flow
	// chain.
	RejectFlowCycle
)

var rejectNames = [...]string{
	RejectNone:          "none",
	RejectMissingPin:    "missing pin",
	RejectSamePin:       "same pin",
	RejectSameNode:      "same node",
	RejectKindMismatch:  "kind mismatch",
	RejectSizeMismatch:  "size mismatch",
	RejectFlowDirection: "flow direction",
	RejectFlowCycle:     "flow cycle",
}

func (r Reject) String() string {
	if int(r) < len(rejectNames) {
		return rejectNames[r]
	}
	return "unknown"
}

// TryLink links two pins if the linking rules allow it.
//
// Flow links join one output to one input and replace any link on either
// end. Block links need equal sizes, unless one end belongs to a PingPong
// node whose size is still open; that node then adopts the other size and
// drops its old links. For every other kind, an input end replaces its
// previous link and an output end fans out.
//
// A rejected link leaves the graph untouched; the returned Reject tells why.
// Linking two pins that are already linked returns the existing link.
func (g *Graph) TryLink(a, b PinID) (LinkID, Reject) {
	id, r := g.tryLink(a, b)
	if r != RejectNone {
		slogger().Debug("graph: link rejected", "a", a, "b", b, "reason", r)
	}
	return id, r
}

func (g *Graph) tryLink(a, b PinID) (LinkID, Reject) {
	pa, ok := g.Pin(a)
	if !ok {
		return LinkID{}, RejectMissingPin
	}
	pb, ok := g.Pin(b)
	if !ok {
		return LinkID{}, RejectMissingPin
	}
	switch {
	case a == b:
		return LinkID{}, RejectSamePin
	case pa.node == pb.node:
		return LinkID{}, RejectSameNode
	case pa.kind != pb.kind:
		return LinkID{}, RejectKindMismatch
	}
	if id, ok := g.LinkBetween(a, b); ok {
		return id, RejectNone
	}

	switch pa.kind {
	case KindFlow:
		return g.linkFlow(pa, pb)
	case KindBlock:
		return g.linkBlock(pa, pb)
	case KindFloat, KindFloat2, KindFloat3, KindFloat4,
		KindInt, KindInt2, KindInt3, KindInt4,
		KindTexture, KindImage:
		g.replaceInputLinks(pa, pb)
		return g.createLink(pa, pb), RejectNone
	default:
		panic("graph: unknown pin kind " + pa.kind.String())
	}
}

func (g *Graph) linkFlow(pa, pb *Pin) (LinkID, Reject) {
	if pa.dir == pb.dir {
		return LinkID{}, RejectFlowDirection
	}
	out, in := pa, pb
	if out.dir == Input {
		out, in = in, out
	}
	if g.closesFlowCycle(out, in) {
		return LinkID{}, RejectFlowCycle
	}
	g.unlinkPin(out, true)
	g.unlinkPin(in, true)
	return g.createLink(pa, pb), RejectNone
}

func (g *Graph) linkBlock(pa, pb *Pin) (LinkID, Reject) {
	if pa.size == pb.size {
		if pa.size == 0 {
			return LinkID{}, RejectSizeMismatch
		}
		g.replaceInputLinks(pa, pb)
		return g.createLink(pa, pb), RejectNone
	}

	wild, fixed := g.openPingPong(pa), pb
	if wild == nil {
		wild, fixed = g.openPingPong(pb), pa
	}
	if wild == nil || fixed.size == 0 {
		return LinkID{}, RejectSizeMismatch
	}

	// The wildcard side adopts the concrete size. Its old links were made
	// for another size and go without resetting the node again.
	for _, pid := range wild.pins() {
		if p, ok := g.Pin(pid); ok {
			g.unlinkPin(p, false)
		}
	}
	g.setPingPongSize(wild, fixed.size)
	g.replaceInputLinks(pa, pb)
	return g.createLink(pa, pb), RejectNone
}

// openPingPong returns the node of p if it is a PingPong node whose size is
// still the wildcard 0.
func (g *Graph) openPingPong(p *Pin) *Node {
	n, ok := g.Node(p.node)
	if !ok {
		return nil
	}
	if pp := n.PingPong(); pp != nil && pp.Sub == PingPongBlock && pp.Size == 0 {
		return n
	}
	return nil
}

// replaceInputLinks drops the existing link of every input endpoint.
func (g *Graph) replaceInputLinks(pins ...*Pin) {
	for _, p := range pins {
		if p.dir == Input {
			g.unlinkPin(p, true)
		}
	}
}

func (g *Graph) createLink(pa, pb *Pin) LinkID {
	l := &Link{a: pa.id, b: pb.id}
	l.id = LinkID(g.links.add(l))
	pa.links = append(pa.links, l.id)
	pb.links = append(pb.links, l.id)
	return l.id
}

// closesFlowCycle reports whether linking out to in would let the flow chain
// reach out's node again. Links that the new link replaces are ignored.
func (g *Graph) closesFlowCycle(out, in *Pin) bool {
	fg := simple.NewDirectedGraph()
	for l := range g.Links() {
		src, ok1 := g.Pin(l.a)
		dst, ok2 := g.Pin(l.b)
		if !ok1 || !ok2 || src.kind != KindFlow {
			continue
		}
		if src.dir == Input {
			src, dst = dst, src
		}
		if src == out || dst == in || src.node == dst.node {
			continue
		}
		fg.SetEdge(fg.NewEdge(simple.Node(src.node.idx), simple.Node(dst.node.idx)))
	}
	from, to := fg.Node(int64(in.node.idx)), fg.Node(int64(out.node.idx))
	if from == nil || to == nil {
		return false
	}
	return topo.PathExistsIn(fg, from, to)
}
