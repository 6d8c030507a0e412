// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"errors"
	"testing"

	"github.com/gogpu/shadergraph/gpucore"
)

// countingResources hands out sequential IDs and counts releases per ID.
type countingResources struct {
	next      uint64
	buffers   map[gpucore.BufferID]int
	textures  map[gpucore.TextureID]int
	destroyed map[uint64]int
	failNext  bool
}

func newCountingResources() *countingResources {
	return &countingResources{
		buffers:   make(map[gpucore.BufferID]int),
		textures:  make(map[gpucore.TextureID]int),
		destroyed: make(map[uint64]int),
	}
}

var errOutOfMemory = errors.New("out of memory")

func (r *countingResources) CreateBuffer(size int, _ gpucore.BufferUsage) (gpucore.BufferID, error) {
	if r.failNext {
		r.failNext = false
		return gpucore.InvalidID, errOutOfMemory
	}
	r.next++
	id := gpucore.BufferID(r.next)
	r.buffers[id] = size
	return id, nil
}

func (r *countingResources) DestroyBuffer(id gpucore.BufferID) {
	r.destroyed[uint64(id)]++
	delete(r.buffers, id)
}

func (r *countingResources) CreateTexture(w, h int, _ []byte) (gpucore.TextureID, error) {
	if r.failNext {
		r.failNext = false
		return gpucore.InvalidID, errOutOfMemory
	}
	r.next++
	id := gpucore.TextureID(r.next)
	r.textures[id] = w * h
	return id, nil
}

func (r *countingResources) DestroyTexture(id gpucore.TextureID) {
	r.destroyed[uint64(id)]++
	delete(r.textures, id)
}

func (r *countingResources) live() int { return len(r.buffers) + len(r.textures) }

// assertReleasedOnce fails if any resource was destroyed more than once.
func (r *countingResources) assertReleasedOnce(t *testing.T) {
	t.Helper()
	for id, n := range r.destroyed {
		if n != 1 {
			t.Errorf("resource %d destroyed %d times", id, n)
		}
	}
}

// mustCheck fails the test when the graph breaks an invariant.
func mustCheck(t *testing.T, g *Graph) {
	t.Helper()
	if err := g.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func mustPin(t *testing.T, g *Graph, id PinID) *Pin {
	t.Helper()
	p, ok := g.Pin(id)
	if !ok {
		t.Fatalf("pin %v not found", id)
	}
	return p
}

func mustNode(t *testing.T, g *Graph, id NodeID) *Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %v not found", id)
	}
	return n
}

func mustLink(t *testing.T, g *Graph, a, b PinID) LinkID {
	t.Helper()
	id, r := g.TryLink(a, b)
	if r != RejectNone {
		t.Fatalf("TryLink(%v, %v) rejected: %v", a, b, r)
	}
	return id
}

// testProgram has uniforms [time f32, color vec4, tex texture, img image],
// one uniform block of 12 bytes and one buffer block of 16 bytes.
func testProgram() *gpucore.Program {
	return &gpucore.Program{
		Name: "test",
		ID:   1,
		Info: gpucore.ProgramInfo{
			Uniforms: []gpucore.Uniform{
				{Name: "time", Type: gpucore.VarFloat, ArraySize: 1},
				{Name: "color", Type: gpucore.VarFloat4, ArraySize: 1},
				{Name: "tex", Type: gpucore.VarTexture, ArraySize: 1},
				{Name: "img", Type: gpucore.VarImage, ArraySize: 1},
			},
			UniformBlocks: []gpucore.Block{{
				Name: "params",
				Size: 12,
				Fields: []gpucore.Field{
					{Name: "offset", Type: gpucore.VarFloat2},
					{Name: "scale", Type: gpucore.VarFloat},
				},
			}},
			BufferBlocks: []gpucore.Block{{
				Name:   "particles",
				Size:   16,
				Fields: []gpucore.Field{{Name: "pos", Type: gpucore.VarFloat4}},
			}},
		},
	}
}

// passProgram has one image uniform and one 16 byte buffer block, so it can
// pass both resources through.
func passProgram() *gpucore.Program {
	return &gpucore.Program{
		Name: "pass",
		ID:   2,
		Info: gpucore.ProgramInfo{
			Uniforms: []gpucore.Uniform{{Name: "img", Type: gpucore.VarImage, ArraySize: 1}},
			BufferBlocks: []gpucore.Block{{
				Name:   "data",
				Size:   16,
				Fields: []gpucore.Field{{Name: "v", Type: gpucore.VarFloat4}},
			}},
		},
	}
}

// inputNamed returns the input pin of n with the given name.
func inputNamed(t *testing.T, g *Graph, n NodeID, name string) PinID {
	t.Helper()
	for _, pid := range mustNode(t, g, n).in {
		if mustPin(t, g, pid).Name == name {
			return pid
		}
	}
	t.Fatalf("%v has no input %q", n, name)
	return PinID{}
}

// flowOut returns the flow output of an Event or Program node.
func flowOut(t *testing.T, g *Graph, n NodeID) PinID {
	t.Helper()
	return mustNode(t, g, n).out[0]
}

// flowIn returns the flow input of a Program node.
func flowIn(t *testing.T, g *Graph, n NodeID) PinID {
	t.Helper()
	return mustNode(t, g, n).in[0]
}
