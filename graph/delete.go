// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

// DeleteLink removes a link from both endpoints. When this leaves all four
// pins of a PingPong node unlinked, the node's size resets.
func (g *Graph) DeleteLink(id LinkID) bool {
	return g.deleteLink(id, true)
}

// deleteLink removes a link. settle runs the PingPong emptiness check on
// both endpoints.
func (g *Graph) deleteLink(id LinkID, settle bool) bool {
	l, ok := g.Link(id)
	if !ok {
		return false
	}
	ends := [2]PinID{l.a, l.b}
	for _, pid := range ends {
		if p, ok := g.Pin(pid); ok {
			p.dropLink(id)
		}
	}
	g.links.free(handle(id))
	if settle {
		for _, pid := range ends {
			if p, ok := g.Pin(pid); ok {
				g.settlePingPong(p.node)
			}
		}
	}
	return true
}

// unlinkPin removes every link attached to a pin.
func (g *Graph) unlinkPin(p *Pin, settle bool) {
	for len(p.links) > 0 {
		g.deleteLink(p.links[len(p.links)-1], settle)
	}
}

// DeletePin removes a Block field and every link attached to it, and
// reshapes the block. Other pins belong to a fixed layout that the node
// variant depends on, so deleting them is refused and returns false.
func (g *Graph) DeletePin(id PinID) bool {
	p, ok := g.Pin(id)
	if !ok || p.dir != Input {
		return false
	}
	n, ok := g.Node(p.node)
	if !ok || n.Kind() != NodeBlock {
		return false
	}
	g.deletePin(p)
	return g.reshapeBlock(n) == nil
}

// deletePin removes a pin with its links, without any layout check.
func (g *Graph) deletePin(p *Pin) {
	g.unlinkPin(p, true)
	if n, ok := g.Node(p.node); ok {
		n.detach(p.id)
	}
	g.pins.free(handle(p.id))
}

// DeleteNode removes a node, its pins and every link touching them, and
// releases the resources the node owns. Event nodes cannot be deleted.
func (g *Graph) DeleteNode(id NodeID) bool {
	n, ok := g.Node(id)
	if !ok || n.Kind() == NodeEvent {
		return false
	}
	for _, pid := range n.pins() {
		if p, ok := g.Pin(pid); ok {
			g.unlinkPin(p, true)
			g.pins.free(handle(pid))
		}
	}
	n.in, n.out = nil, nil
	g.release(n)
	g.nodes.free(handle(id))
	slogger().Debug("graph: node deleted", "node", id, "kind", n.Kind())
	return true
}

// settlePingPong resets a PingPong node to its empty size once none of its
// pins is linked.
func (g *Graph) settlePingPong(id NodeID) {
	n, ok := g.Node(id)
	if !ok {
		return
	}
	pp := n.PingPong()
	if pp == nil {
		return
	}
	for _, pid := range n.pins() {
		if p, ok := g.Pin(pid); ok && p.Linked() {
			return
		}
	}
	g.setPingPongSize(n, pp.Sub.emptySize())
}

func (g *Graph) setPingPongSize(n *Node, size int) {
	n.PingPong().Size = size
	for _, pid := range n.pins() {
		if p, ok := g.Pin(pid); ok {
			p.size = size
		}
	}
}
