// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"
	"iter"

	"github.com/gogpu/shadergraph/gpucore"
)

// Resources allocates the buffers and images owned by Block and Image nodes.
// gpucore.Backend satisfies it.
type Resources interface {
	CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error)
	DestroyBuffer(id gpucore.BufferID)
	CreateTexture(width, height int, pixels []byte) (gpucore.TextureID, error)
	DestroyTexture(id gpucore.TextureID)
}

// Graph owns all nodes, pins and links of a shader pipeline.
//
// A Graph is not safe for concurrent use. It is edited and interpreted from
// the frame thread only.
type Graph struct {
	nodes arena[Node]
	pins  arena[Pin]
	links arena[Link]

	res Resources

	initNode  NodeID
	frameNode NodeID
}

// New creates a graph holding the Init and Frame event nodes. res allocates
// node-owned resources; with nil res Block and Image nodes get none.
func New(res Resources) *Graph {
	g := &Graph{res: res}
	g.initNode = g.addEvent(EventInit)
	g.frameNode = g.addEvent(EventFrame)
	return g
}

func (g *Graph) addEvent(kind EventKind) NodeID {
	id := g.addNode(Vec2{}, &EventData{Event: kind})
	g.addPin(id, Output, KindFlow, "Out")
	return id
}

// EventNode returns the Init or Frame event node.
func (g *Graph) EventNode(kind EventKind) NodeID {
	if kind == EventFrame {
		return g.frameNode
	}
	return g.initNode
}

func (g *Graph) addNode(pos Vec2, data Payload) NodeID {
	n := &Node{Pos: pos, data: data}
	n.id = NodeID(g.nodes.add(n))
	return n.id
}

// addPin appends a pin to the node's input or output list.
func (g *Graph) addPin(node NodeID, dir Direction, kind PinKind, name string) *Pin {
	n, _ := g.Node(node)
	p := &Pin{Name: name, node: node, kind: kind, dir: dir}
	p.id = PinID(g.pins.add(p))
	if dir == Input {
		n.in = append(n.in, p.id)
	} else {
		n.out = append(n.out, p.id)
	}
	return p
}

// Node returns the live node with the given identity.
func (g *Graph) Node(id NodeID) (*Node, bool) { return g.nodes.get(handle(id)) }

// Pin returns the live pin with the given identity.
func (g *Graph) Pin(id PinID) (*Pin, bool) { return g.pins.get(handle(id)) }

// Link returns the live link with the given identity.
func (g *Graph) Link(id LinkID) (*Link, bool) { return g.links.get(handle(id)) }

// NodeAt returns the live node at a dense index.
func (g *Graph) NodeAt(i int) (*Node, bool) {
	n, _, ok := g.nodes.at(i)
	return n, ok
}

// PinAt returns the live pin at a dense index.
func (g *Graph) PinAt(i int) (*Pin, bool) {
	p, _, ok := g.pins.at(i)
	return p, ok
}

// LinkAt returns the live link at a dense index.
func (g *Graph) LinkAt(i int) (*Link, bool) {
	l, _, ok := g.links.at(i)
	return l, ok
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return g.nodes.live }

// PinCount returns the number of live pins.
func (g *Graph) PinCount() int { return g.pins.live }

// LinkCount returns the number of live links.
func (g *Graph) LinkCount() int { return g.links.live }

// Nodes iterates live nodes in identity order.
func (g *Graph) Nodes() iter.Seq[*Node] { return each(&g.nodes) }

// Pins iterates live pins in identity order.
func (g *Graph) Pins() iter.Seq[*Pin] { return each(&g.pins) }

// Links iterates live links in identity order.
func (g *Graph) Links() iter.Seq[*Link] { return each(&g.links) }

func each[T any](a *arena[T]) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := range a.slots {
			if v := a.slots[i].val; v != nil && !yield(v) {
				return
			}
		}
	}
}

// Source returns the pin at the other end of p's first link.
func (g *Graph) Source(p PinID) (*Pin, bool) {
	pin, ok := g.Pin(p)
	if !ok || len(pin.links) == 0 {
		return nil, false
	}
	l, ok := g.Link(pin.links[0])
	if !ok {
		return nil, false
	}
	return g.Pin(l.Other(p))
}

// SourceNode returns the node owning the pin at the other end of p's first
// link.
func (g *Graph) SourceNode(p PinID) (*Node, *Pin, bool) {
	src, ok := g.Source(p)
	if !ok {
		return nil, nil, false
	}
	n, ok := g.Node(src.node)
	return n, src, ok
}

// LinkBetween returns the link joining a and b, if any.
func (g *Graph) LinkBetween(a, b PinID) (LinkID, bool) {
	pa, ok := g.Pin(a)
	if !ok {
		return LinkID{}, false
	}
	for _, id := range pa.links {
		if l, ok := g.Link(id); ok && l.Other(a) == b {
			return id, true
		}
	}
	return LinkID{}, false
}

// SetLiteral sets the literal value of a scalar pin.
func (g *Graph) SetLiteral(id PinID, v Value) error {
	p, ok := g.Pin(id)
	if !ok {
		return fmt.Errorf("set literal %v: %w", id, ErrPinNotFound)
	}
	if !p.kind.IsScalar() {
		return fmt.Errorf("set literal on %s pin: %w", p.kind, ErrWrongPinKind)
	}
	p.value = v
	return nil
}

// NodesOf returns the nodes whose payload satisfies match, in identity order.
func (g *Graph) NodesOf(match func(*Node) bool) []NodeID {
	var out []NodeID
	for n := range g.Nodes() {
		if match(n) {
			out = append(out, n.id)
		}
	}
	return out
}

// ProgramNodes returns the Program nodes backed by prog.
func (g *Graph) ProgramNodes(prog *gpucore.Program) []NodeID {
	return g.NodesOf(func(n *Node) bool {
		pd := n.Program()
		return pd != nil && pd.Program == prog
	})
}

// TargetNodes returns the Program nodes rendering into target.
func (g *Graph) TargetNodes(target *gpucore.RenderTarget) []NodeID {
	return g.NodesOf(func(n *Node) bool {
		pd := n.Program()
		return pd != nil && pd.Target == target
	})
}

// TextureNodes returns the Texture nodes showing tex.
func (g *Graph) TextureNodes(tex *gpucore.Texture) []NodeID {
	return g.NodesOf(func(n *Node) bool {
		td := n.Texture()
		return td != nil && td.Texture == tex
	})
}

// Compact renumbers live nodes, pins and links to dense indices in their
// original order and rewrites every reference between them. Handles to
// items that moved go stale.
func (g *Graph) Compact() {
	if !g.nodes.holes() && !g.pins.holes() && !g.links.holes() {
		return
	}
	nr := g.nodes.compact()
	pr := g.pins.compact()
	lr := g.links.compact()

	nodeOf := func(id NodeID) NodeID { return NodeID(nr.apply(handle(id))) }
	pinOf := func(id PinID) PinID { return PinID(pr.apply(handle(id))) }
	linkOf := func(id LinkID) LinkID { return LinkID(lr.apply(handle(id))) }

	for n := range g.Nodes() {
		n.id = nodeOf(n.id)
		for i := range n.in {
			n.in[i] = pinOf(n.in[i])
		}
		for i := range n.out {
			n.out[i] = pinOf(n.out[i])
		}
	}
	for p := range g.Pins() {
		p.id = pinOf(p.id)
		p.node = nodeOf(p.node)
		for i := range p.links {
			p.links[i] = linkOf(p.links[i])
		}
	}
	for l := range g.Links() {
		l.id = linkOf(l.id)
		l.a = pinOf(l.a)
		l.b = pinOf(l.b)
	}
	g.initNode = nodeOf(g.initNode)
	g.frameNode = nodeOf(g.frameNode)
}

// Close releases every node-owned resource. The graph stays usable but its
// Block and Image nodes hold no resources afterwards.
func (g *Graph) Close() {
	for n := range g.Nodes() {
		g.release(n)
	}
}

// release destroys the resources owned by n and forgets them.
func (g *Graph) release(n *Node) {
	if g.res == nil {
		return
	}
	switch d := n.data.(type) {
	case *BlockData:
		if d.Uniform != gpucore.InvalidID {
			g.res.DestroyBuffer(d.Uniform)
		}
		if d.Storage != gpucore.InvalidID {
			g.res.DestroyBuffer(d.Storage)
		}
		d.Uniform, d.Storage = gpucore.InvalidID, gpucore.InvalidID
	case *ImageData:
		if d.Image != gpucore.InvalidID {
			g.res.DestroyTexture(d.Image)
		}
		d.Image = gpucore.InvalidID
	case *EventData, *ProgramData, *TextureData, *PingPongData, *TimeData, *MousePosData:
	default:
		panic(fmt.Sprintf("graph: unknown payload %T", d))
	}
}
