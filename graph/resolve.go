// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

// Resolve finds the node that produces the resource a consumer pin receives.
//
// The walk starts at the node on the other end of start's link. An Image
// node ends an Image walk and a Block node ends a Block walk. A PingPong node
// is passed through its input A, or input B when parity is set. A Program
// node is passed through its index-th Image input (Image walks) or index-th
// buffer block input (Block walks). Any other node, an unlinked pin, or a
// walk longer than the node count ends with ok == false.
func (g *Graph) Resolve(start PinID, kind PinKind, index int, parity bool) (NodeID, bool) {
	if kind != KindImage && kind != KindBlock {
		return NodeID{}, false
	}
	pin := start
	for range g.nodes.live + 1 {
		n, _, ok := g.SourceNode(pin)
		if !ok {
			return NodeID{}, false
		}
		switch d := n.data.(type) {
		case *ImageData:
			if kind != KindImage {
				return NodeID{}, false
			}
			return n.id, true
		case *BlockData:
			if kind != KindBlock {
				return NodeID{}, false
			}
			return n.id, true
		case *PingPongData:
			if d.Sub.PinKind() != kind {
				return NodeID{}, false
			}
			side := 0
			if parity {
				side = 1
			}
			if side >= len(n.in) {
				return NodeID{}, false
			}
			pin = n.in[side]
		case *ProgramData:
			next, ok := g.programInput(n, kind, index)
			if !ok {
				return NodeID{}, false
			}
			pin = next
		case *EventData, *TextureData, *TimeData, *MousePosData:
			return NodeID{}, false
		default:
			panic("graph: unknown payload in Resolve")
		}
	}
	slogger().Warn("graph: resolve walk exceeded node count", "start", start)
	return NodeID{}, false
}

// programInput returns the index-th Image input, or the index-th buffer block
// input, of a Program node.
func (g *Graph) programInput(n *Node, kind PinKind, index int) (PinID, bool) {
	seen := 0
	for _, pid := range n.in {
		p, ok := g.Pin(pid)
		if !ok || p.kind != kind {
			continue
		}
		if kind == KindBlock && p.role != RoleBufferBlock {
			continue
		}
		if seen == index {
			return pid, true
		}
		seen++
	}
	return PinID{}, false
}
