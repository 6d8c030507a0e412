// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import "fmt"

// handle addresses an arena slot. Generation 0 never names a live item, so
// the zero handle is invalid.
type handle struct {
	idx int32
	gen uint32
}

// NodeID identifies a node.
type NodeID handle

// PinID identifies a pin.
type PinID handle

// LinkID identifies a link.
type LinkID handle

// Index returns the dense position of the node. Positions are stable until
// the next Compact.
func (id NodeID) Index() int { return int(id.idx) }

// Valid reports whether id was ever issued by a graph.
func (id NodeID) Valid() bool { return id.gen != 0 }

func (id NodeID) String() string { return fmt.Sprintf("node#%d", id.idx) }

// Index returns the dense position of the pin.
func (id PinID) Index() int { return int(id.idx) }

// Valid reports whether id was ever issued by a graph.
func (id PinID) Valid() bool { return id.gen != 0 }

func (id PinID) String() string { return fmt.Sprintf("pin#%d", id.idx) }

// Index returns the dense position of the link.
func (id LinkID) Index() int { return int(id.idx) }

// Valid reports whether id was ever issued by a graph.
func (id LinkID) Valid() bool { return id.gen != 0 }

func (id LinkID) String() string { return fmt.Sprintf("link#%d", id.idx) }

type slot[T any] struct {
	gen uint32
	val *T // nil when free
}

// arena stores items by pointer in append order. Freed slots stay in place
// until compact.
type arena[T any] struct {
	slots   []slot[T]
	live    int
	nextGen uint32
}

func (a *arena[T]) add(v *T) handle {
	a.nextGen++
	h := handle{idx: int32(len(a.slots)), gen: a.nextGen}
	a.slots = append(a.slots, slot[T]{gen: h.gen, val: v})
	a.live++
	return h
}

func (a *arena[T]) get(h handle) (*T, bool) {
	if h.gen == 0 || h.idx < 0 || int(h.idx) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.idx]
	if s.val == nil || s.gen != h.gen {
		return nil, false
	}
	return s.val, true
}

// at returns the live item at a dense index.
func (a *arena[T]) at(i int) (*T, handle, bool) {
	if i < 0 || i >= len(a.slots) || a.slots[i].val == nil {
		return nil, handle{}, false
	}
	return a.slots[i].val, handle{idx: int32(i), gen: a.slots[i].gen}, true
}

func (a *arena[T]) free(h handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}
	a.slots[h.idx].val = nil
	a.live--
	return true
}

// holes reports whether any slot is free.
func (a *arena[T]) holes() bool {
	return a.live != len(a.slots)
}

// remap maps the slot index of a survivor before compaction to its handle
// after compaction.
type remap []handle

func (r remap) apply(h handle) handle {
	if h.idx < 0 || int(h.idx) >= len(r) {
		return handle{}
	}
	return r[h.idx]
}

// compact drops free slots, keeping survivors in order. A survivor that
// moves gets a fresh generation so handles to its old position go stale.
func (a *arena[T]) compact() remap {
	r := make(remap, len(a.slots))
	out := a.slots[:0]
	for i, s := range a.slots {
		if s.val == nil {
			continue
		}
		nh := handle{idx: int32(len(out)), gen: s.gen}
		if len(out) != i {
			a.nextGen++
			nh.gen = a.nextGen
		}
		r[i] = nh
		out = append(out, slot[T]{gen: nh.gen, val: s.val})
	}
	clear(a.slots[len(out):])
	a.slots = out
	return r
}
