// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"slices"

	"github.com/gogpu/shadergraph/gpucore"
)

// Pin is a typed connection point on a node.
//
// An input pin holds at most one link, an output pin any number. Pins are
// owned by the Graph; change them through Graph methods.
type Pin struct {
	// Name is the display name. For program pins it is the shader
	// variable name.
	Name string

	id    PinID
	node  NodeID
	kind  PinKind
	dir   Direction
	size  int
	role  BlockRole
	slot  gpucore.Slot
	value Value
	links []LinkID
}

// ID returns the pin's identity.
func (p *Pin) ID() PinID { return p.id }

// Node returns the owning node.
func (p *Pin) Node() NodeID { return p.node }

// Kind returns the pin kind.
func (p *Pin) Kind() PinKind { return p.kind }

// Dir returns the pin direction.
func (p *Pin) Dir() Direction { return p.dir }

// IsInput reports whether p is an input pin.
func (p *Pin) IsInput() bool { return p.dir == Input }

// IsOutput reports whether p is an output pin.
func (p *Pin) IsOutput() bool { return p.dir == Output }

// Size returns the byte size of the pin's data: the pin's own size for Block
// pins (0 is the PingPong wildcard), the fixed kind size otherwise.
func (p *Pin) Size() int {
	if p.kind == KindBlock {
		return p.size
	}
	return p.kind.Size()
}

// Role returns the program block role of a Block input.
func (p *Pin) Role() BlockRole { return p.role }

// Slot returns the program binding of the pin, if it belongs to a Program
// node.
func (p *Pin) Slot() gpucore.Slot { return p.slot }

// Value returns the literal value.
func (p *Pin) Value() Value { return p.value }

// Links returns a copy of the attached links.
func (p *Pin) Links() []LinkID { return slices.Clone(p.links) }

// LinkCount returns the number of attached links.
func (p *Pin) LinkCount() int { return len(p.links) }

// Linked reports whether any link is attached.
func (p *Pin) Linked() bool { return len(p.links) > 0 }

func (p *Pin) hasLink(id LinkID) bool {
	return slices.Contains(p.links, id)
}

func (p *Pin) dropLink(id LinkID) {
	p.links = slices.DeleteFunc(p.links, func(l LinkID) bool { return l == id })
}

// Link is an edge between two pins. The pair is unordered.
type Link struct {
	id   LinkID
	a, b PinID
}

// ID returns the link identity.
func (l *Link) ID() LinkID { return l.id }

// Pins returns both endpoints.
func (l *Link) Pins() (PinID, PinID) { return l.a, l.b }

// Other returns the endpoint opposite p.
func (l *Link) Other(p PinID) PinID {
	if l.a == p {
		return l.b
	}
	return l.a
}
