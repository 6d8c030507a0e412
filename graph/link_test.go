// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"math/rand/v2"
	"testing"

	"github.com/gogpu/shadergraph/gpucore"
)

func TestTryLinkRejects(t *testing.T) {
	g := New(nil)
	a := g.AddProgramNode(Vec2{}, testProgram(), nil)
	b := g.AddProgramNode(Vec2{}, testProgram(), nil)
	mouse := g.AddMousePosNode(Vec2{})

	tests := []struct {
		name string
		x, y PinID
		want Reject
	}{
		{"missing pin", PinID{}, flowIn(t, g, a), RejectMissingPin},
		{"same pin", flowIn(t, g, a), flowIn(t, g, a), RejectSamePin},
		{"same node", flowOut(t, g, a), flowIn(t, g, a), RejectSameNode},
		{"kind mismatch", mustNode(t, g, mouse).Output(0), inputNamed(t, g, a, "time"), RejectKindMismatch},
		{"flow output to output", flowOut(t, g, a), flowOut(t, g, b), RejectFlowDirection},
		{"flow input to input", flowIn(t, g, a), flowIn(t, g, b), RejectFlowDirection},
		{"block size", inputNamed(t, g, a, "params"), inputNamed(t, g, b, "particles"), RejectSizeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := g.LinkCount()
			if _, r := g.TryLink(tt.x, tt.y); r != tt.want {
				t.Errorf("TryLink = %v, want %v", r, tt.want)
			}
			if g.LinkCount() != links {
				t.Error("rejected link mutated the graph")
			}
		})
	}
	mustCheck(t, g)
}

func TestFlowLinkReplacesBothEnds(t *testing.T) {
	g := New(nil)
	prog := testProgram()
	a := g.AddProgramNode(Vec2{}, prog, nil)
	b := g.AddProgramNode(Vec2{}, prog, nil)
	c := g.AddProgramNode(Vec2{}, prog, nil)

	first := mustLink(t, g, flowOut(t, g, a), flowIn(t, g, b))
	// a's flow output drives exactly one successor.
	second := mustLink(t, g, flowIn(t, g, c), flowOut(t, g, a))
	if _, ok := g.Link(first); ok {
		t.Error("old flow link from a survived")
	}
	if mustPin(t, g, flowIn(t, g, b)).Linked() {
		t.Error("b still linked")
	}
	// A new driver for c replaces the old one.
	mustLink(t, g, flowOut(t, g, b), flowIn(t, g, c))
	if _, ok := g.Link(second); ok {
		t.Error("old flow link into c survived")
	}
	if mustPin(t, g, flowOut(t, g, a)).Linked() {
		t.Error("a still drives a successor")
	}
	mustCheck(t, g)
}

func TestFlowCycleRejected(t *testing.T) {
	g := New(nil)
	prog := testProgram()
	a := g.AddProgramNode(Vec2{}, prog, nil)
	b := g.AddProgramNode(Vec2{}, prog, nil)
	c := g.AddProgramNode(Vec2{}, prog, nil)

	mustLink(t, g, flowOut(t, g, g.EventNode(EventFrame)), flowIn(t, g, a))
	mustLink(t, g, flowOut(t, g, a), flowIn(t, g, b))
	mustLink(t, g, flowOut(t, g, b), flowIn(t, g, c))

	if _, r := g.TryLink(flowOut(t, g, c), flowIn(t, g, a)); r != RejectFlowCycle {
		t.Errorf("c -> a: %v, want %v", r, RejectFlowCycle)
	}
	if _, r := g.TryLink(flowOut(t, g, c), flowIn(t, g, b)); r != RejectFlowCycle {
		t.Errorf("c -> b: %v, want %v", r, RejectFlowCycle)
	}
	// b -> a would replace b -> c, but a still reaches b.
	if _, r := g.TryLink(flowOut(t, g, b), flowIn(t, g, a)); r != RejectFlowCycle {
		t.Errorf("b -> a: %v, want %v", r, RejectFlowCycle)
	}
	// c -> a is fine once a no longer leads to c.
	g.DeleteLink(mustPin(t, g, flowOut(t, g, a)).Links()[0])
	if _, r := g.TryLink(flowOut(t, g, c), flowIn(t, g, a)); r != RejectNone {
		t.Errorf("c -> a after unlinking a: %v", r)
	}
	mustCheck(t, g)
}

func TestScalarLinkSingleConsumer(t *testing.T) {
	g := New(nil)
	a := g.AddProgramNode(Vec2{}, testProgram(), nil)
	b := g.AddProgramNode(Vec2{}, testProgram(), nil)
	t1 := mustNode(t, g, g.AddTimeNode(Vec2{})).Output(0)
	t2 := mustNode(t, g, g.AddTimeNode(Vec2{})).Output(0)

	mustLink(t, g, t1, inputNamed(t, g, a, "time"))
	mustLink(t, g, t1, inputNamed(t, g, b, "time"))
	if mustPin(t, g, t1).LinkCount() != 2 {
		t.Error("output should fan out")
	}

	mustLink(t, g, inputNamed(t, g, a, "time"), t2)
	if mustPin(t, g, t1).LinkCount() != 1 {
		t.Error("input did not replace its previous link")
	}
	src, ok := g.Source(inputNamed(t, g, a, "time"))
	if !ok || src.ID() != t2 {
		t.Error("input should be driven by the second time node")
	}
	mustCheck(t, g)
}

func TestTryLinkIdempotent(t *testing.T) {
	g := New(nil)
	a := g.AddProgramNode(Vec2{}, testProgram(), nil)
	pp := g.AddPingPongNode(Vec2{}, PingPongBlock)
	tm := mustNode(t, g, g.AddTimeNode(Vec2{})).Output(0)

	pairs := [][2]PinID{
		{flowOut(t, g, g.EventNode(EventInit)), flowIn(t, g, a)},
		{tm, inputNamed(t, g, a, "time")},
		{mustNode(t, g, pp).Output(0), inputNamed(t, g, a, "particles")},
	}
	for _, p := range pairs {
		id1 := mustLink(t, g, p[0], p[1])
		links := g.LinkCount()
		id2 := mustLink(t, g, p[0], p[1])
		id3 := mustLink(t, g, p[1], p[0])
		if id1 != id2 || id1 != id3 || g.LinkCount() != links {
			t.Errorf("repeating TryLink(%v, %v) changed the graph", p[0], p[1])
		}
	}
	mustCheck(t, g)
}

func TestPingPongAdoptsBlockSize(t *testing.T) {
	g := New(nil)
	blk, err := g.AddBlockNode(Vec2{}, []gpucore.Field{{Name: "v", Type: gpucore.VarFloat3}})
	if err != nil {
		t.Fatal(err)
	}
	pp := g.AddPingPongNode(Vec2{}, PingPongBlock)
	ppn := mustNode(t, g, pp)
	blkOut := mustNode(t, g, blk).Output(0)
	if mustPin(t, g, blkOut).Size() != 12 {
		t.Fatalf("block size = %d, want 12", mustPin(t, g, blkOut).Size())
	}

	// A wildcard-to-wildcard link between two open ping-pongs is refused.
	other := g.AddPingPongNode(Vec2{}, PingPongBlock)
	if _, r := g.TryLink(ppn.Output(1), mustNode(t, g, other).Input(0)); r != RejectSizeMismatch {
		t.Fatalf("wildcard link: %v", r)
	}

	mustLink(t, g, blkOut, ppn.Input(0))

	if ppn.PingPong().Size != 12 {
		t.Errorf("pingpong size = %d, want 12", ppn.PingPong().Size)
	}
	for _, pid := range ppn.pins() {
		if s := mustPin(t, g, pid).Size(); s != 12 {
			t.Errorf("pingpong pin %v size = %d, want 12", pid, s)
		}
	}
	mustCheck(t, g)
}

func TestPingPongAdoptionDropsOldLinks(t *testing.T) {
	g := New(nil)
	prog := testProgram()
	consumer := g.AddProgramNode(Vec2{}, prog, nil)
	pp := g.AddPingPongNode(Vec2{}, PingPongBlock)
	ppn := mustNode(t, g, pp)

	// Fix the ping-pong at 16 bytes via a buffer block.
	mustLink(t, g, ppn.Output(1), inputNamed(t, g, consumer, "particles"))
	if ppn.PingPong().Size != 16 {
		t.Fatalf("size = %d, want 16", ppn.PingPong().Size)
	}

	blk, err := g.AddBlockNode(Vec2{}, []gpucore.Field{{Name: "v", Type: gpucore.VarFloat3}})
	if err != nil {
		t.Fatal(err)
	}
	blkOut := mustNode(t, g, blk).Output(0)
	if _, r := g.TryLink(blkOut, ppn.Input(0)); r != RejectSizeMismatch {
		t.Fatalf("12 into fixed 16: %v", r)
	}

	// Reopen the node while it still holds the 16 byte link, then link a
	// 12 byte block.
	ppn.PingPong().Size = 0
	for _, pid := range ppn.pins() {
		mustPin(t, g, pid).size = 0
	}
	mustLink(t, g, blkOut, ppn.Input(0))

	if mustPin(t, g, ppn.Output(1)).Linked() {
		t.Error("link made for the old size survived adoption")
	}
	if ppn.PingPong().Size != 12 {
		t.Errorf("size = %d, want 12", ppn.PingPong().Size)
	}
	if !mustPin(t, g, ppn.Input(0)).Linked() {
		t.Error("new link missing")
	}
	mustCheck(t, g)
}

func TestPingPongResetsWhenEmpty(t *testing.T) {
	g := New(nil)
	prog := testProgram()
	consumer := g.AddProgramNode(Vec2{}, prog, nil)
	blk, _ := g.AddBlockNode(Vec2{}, []gpucore.Field{{Name: "v", Type: gpucore.VarFloat4}})
	pp := g.AddPingPongNode(Vec2{}, PingPongBlock)
	ppn := mustNode(t, g, pp)

	in := mustLink(t, g, mustNode(t, g, blk).Output(0), ppn.Input(0))
	out := mustLink(t, g, ppn.Output(0), inputNamed(t, g, consumer, "particles"))

	g.DeleteLink(in)
	if ppn.PingPong().Size != 16 {
		t.Errorf("size reset while a pin is still linked")
	}
	mustCheck(t, g)

	g.DeleteLink(out)
	if ppn.PingPong().Size != 0 {
		t.Errorf("size = %d after last unlink, want 0", ppn.PingPong().Size)
	}
	for _, pid := range ppn.pins() {
		if mustPin(t, g, pid).Size() != 0 {
			t.Errorf("pin %v kept its size", pid)
		}
	}
	mustCheck(t, g)

	// Deleting the consumer node also counts as unlinking.
	mustLink(t, g, ppn.Output(0), inputNamed(t, g, consumer, "particles"))
	g.DeleteNode(consumer)
	if ppn.PingPong().Size != 0 {
		t.Errorf("size = %d after consumer deletion, want 0", ppn.PingPong().Size)
	}
	mustCheck(t, g)
}

func TestImagePingPongSize(t *testing.T) {
	g := New(nil)
	pp := g.AddPingPongNode(Vec2{}, PingPongImage)
	img, _ := g.AddImageNode(Vec2{}, 16, 16)
	ppn := mustNode(t, g, pp)

	if ppn.PingPong().Size != 1 {
		t.Fatalf("image pingpong size = %d, want 1", ppn.PingPong().Size)
	}
	l := mustLink(t, g, mustNode(t, g, img).Output(0), ppn.Input(1))
	g.DeleteLink(l)
	if ppn.PingPong().Size != 1 {
		t.Errorf("image pingpong size = %d, want 1", ppn.PingPong().Size)
	}
	mustCheck(t, g)
}

// TestRandomEditsKeepInvariants drives random links and deletions and checks
// the structural invariants after every step.
func TestRandomEditsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	res := newCountingResources()
	g := New(res)

	add := func() {
		switch rng.IntN(6) {
		case 0:
			g.AddProgramNode(Vec2{}, testProgram(), nil)
		case 1:
			g.AddProgramNode(Vec2{}, passProgram(), nil)
		case 2:
			_, _ = g.AddBlockNode(Vec2{}, []gpucore.Field{{Name: "v", Type: gpucore.VarFloat4}})
		case 3:
			g.AddPingPongNode(Vec2{}, PingPongKind(rng.IntN(2)))
		case 4:
			_, _ = g.AddImageNode(Vec2{}, 8, 8)
		default:
			g.AddTimeNode(Vec2{})
		}
	}
	for range 12 {
		add()
	}

	for step := range 400 {
		switch op := rng.IntN(11); {
		case op < 6:
			a, okA := g.PinAt(rng.IntN(max(g.PinCount(), 1)))
			b, okB := g.PinAt(rng.IntN(max(g.PinCount(), 1)))
			if okA && okB {
				g.TryLink(a.ID(), b.ID())
			}
		case op < 7:
			if l, ok := g.LinkAt(rng.IntN(max(g.LinkCount(), 1))); ok {
				g.DeleteLink(l.ID())
			}
		case op < 8:
			if n, ok := g.NodeAt(rng.IntN(g.NodeCount())); ok {
				g.DeleteNode(n.ID())
			}
		case op < 9:
			if p, ok := g.PinAt(rng.IntN(max(g.PinCount(), 1))); ok {
				g.DeletePin(p.ID())
			}
		default:
			add()
		}
		g.Compact()
		if err := g.Check(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}

	g.Close()
	if res.live() != 0 {
		t.Errorf("%d resources leaked", res.live())
	}
	res.assertReleasedOnce(t)
}
