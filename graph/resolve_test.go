// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"testing"

	"github.com/gogpu/shadergraph/gpucore"
)

func float4Block(t *testing.T, g *Graph) (NodeID, PinID) {
	t.Helper()
	id, err := g.AddBlockNode(Vec2{}, []gpucore.Field{{Name: "v", Type: gpucore.VarFloat4}})
	if err != nil {
		t.Fatal(err)
	}
	return id, mustNode(t, g, id).Output(0)
}

func TestResolveThroughChainedPingPongs(t *testing.T) {
	g := New(nil)
	consumer := g.AddProgramNode(Vec2{}, testProgram(), nil)
	pp1 := mustNode(t, g, g.AddPingPongNode(Vec2{}, PingPongBlock))
	pp2 := mustNode(t, g, g.AddPingPongNode(Vec2{}, PingPongBlock))
	blockX, outX := float4Block(t, g)
	blockY, outY := float4Block(t, g)
	blockA, outA := float4Block(t, g)

	mustLink(t, g, outY, pp1.Input(1))
	mustLink(t, g, outX, pp1.Input(0))
	mustLink(t, g, pp1.Output(0), pp2.Input(1))
	mustLink(t, g, outA, pp2.Input(0))
	particles := inputNamed(t, g, consumer, "particles")
	mustLink(t, g, pp2.Output(0), particles)
	mustCheck(t, g)

	tests := []struct {
		name   string
		parity bool
		want   NodeID
	}{
		{"parity 1 takes input B at each hop", true, blockY},
		{"parity 0 takes input A", false, blockA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.Resolve(particles, KindBlock, 0, tt.parity)
			if !ok || got != tt.want {
				t.Errorf("Resolve = %v, %v; want %v", got, ok, tt.want)
			}
		})
	}

	// With pp2's A side fed by pp1, parity 0 takes A at both hops.
	mustLink(t, g, pp1.Output(1), pp2.Input(0))
	if got, ok := g.Resolve(particles, KindBlock, 0, false); !ok || got != blockX {
		t.Errorf("Resolve after relink = %v, %v; want %v", got, ok, blockX)
	}
}

func TestResolveThroughProgram(t *testing.T) {
	g := New(nil)
	consumer := g.AddProgramNode(Vec2{}, testProgram(), nil)
	pass := g.AddProgramNode(Vec2{}, passProgram(), nil)
	img, err := g.AddImageNode(Vec2{}, 32, 32)
	if err != nil {
		t.Fatal(err)
	}
	blk, blkOut := float4Block(t, g)
	passN := mustNode(t, g, pass)

	// pass outputs: Out, img mirror, data mirror.
	mustLink(t, g, mustNode(t, g, img).Output(0), inputNamed(t, g, pass, "img"))
	mustLink(t, g, blkOut, inputNamed(t, g, pass, "data"))
	mustLink(t, g, passN.Output(1), inputNamed(t, g, consumer, "img"))
	mustLink(t, g, passN.Output(2), inputNamed(t, g, consumer, "particles"))

	if got, ok := g.Resolve(inputNamed(t, g, consumer, "img"), KindImage, 0, false); !ok || got != img {
		t.Errorf("image resolve = %v, %v; want %v", got, ok, img)
	}
	if got, ok := g.Resolve(inputNamed(t, g, consumer, "particles"), KindBlock, 0, false); !ok || got != blk {
		t.Errorf("block resolve = %v, %v; want %v", got, ok, blk)
	}
	if _, ok := g.Resolve(inputNamed(t, g, consumer, "img"), KindImage, 1, false); ok {
		t.Error("out of range program index should not resolve")
	}
}

func TestResolveDeadEnds(t *testing.T) {
	g := New(nil)
	consumer := g.AddProgramNode(Vec2{}, testProgram(), nil)
	pp := mustNode(t, g, g.AddPingPongNode(Vec2{}, PingPongImage))
	img := inputNamed(t, g, consumer, "img")

	if _, ok := g.Resolve(img, KindImage, 0, false); ok {
		t.Error("unlinked pin resolved")
	}

	mustLink(t, g, pp.Output(0), img)
	if _, ok := g.Resolve(img, KindImage, 0, false); ok {
		t.Error("ping-pong with unlinked input resolved")
	}

	imgNode, _ := g.AddImageNode(Vec2{}, 4, 4)
	mustLink(t, g, mustNode(t, g, imgNode).Output(0), pp.Input(1))
	if _, ok := g.Resolve(img, KindImage, 0, false); ok {
		t.Error("parity 0 should read the unlinked input A")
	}
	if got, ok := g.Resolve(img, KindImage, 0, true); !ok || got != imgNode {
		t.Errorf("parity 1 = %v, %v; want %v", got, ok, imgNode)
	}

	if _, ok := g.Resolve(inputNamed(t, g, consumer, "time"), KindFloat, 0, false); ok {
		t.Error("scalar kinds do not resolve")
	}
}

func TestResolvePingPongCycleTerminates(t *testing.T) {
	g := New(nil)
	consumer := g.AddProgramNode(Vec2{}, testProgram(), nil)
	a := mustNode(t, g, g.AddPingPongNode(Vec2{}, PingPongImage))
	b := mustNode(t, g, g.AddPingPongNode(Vec2{}, PingPongImage))

	mustLink(t, g, a.Output(0), b.Input(0))
	mustLink(t, g, b.Output(0), a.Input(0))
	mustLink(t, g, a.Output(1), inputNamed(t, g, consumer, "img"))

	if _, ok := g.Resolve(inputNamed(t, g, consumer, "img"), KindImage, 0, false); ok {
		t.Error("cyclic ping-pong chain resolved")
	}
}
