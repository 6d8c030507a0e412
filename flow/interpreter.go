// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/graph"
)

// ErrFlowCycle is returned when a run visits more Program nodes than the
// visit limit allows, which only a cycle in the flow chain can cause.
var ErrFlowCycle = errors.New("flow: flow chain exceeds visit limit")

// Executor runs dispatches and refreshes uniform buffers. gpucore.Backend
// satisfies it.
type Executor interface {
	WriteBuffer(id gpucore.BufferID, offset uint64, data []byte)
	Execute(d *gpucore.Dispatch) error
}

// Clock reports the time since playback started.
type Clock interface {
	Elapsed() time.Duration
}

// Pointer reports the pointer position in render pixels.
type Pointer interface {
	Position() graph.Vec2
}

// Interpreter executes the flow chains of a graph.
//
// An Interpreter is not safe for concurrent use; it runs on the frame
// thread together with the edits of its graph.
type Interpreter struct {
	// Parity selects input B of PingPong nodes when set. It flips after
	// every Frame run.
	Parity bool

	g       *graph.Graph
	exec    Executor
	clock   Clock
	pointer Pointer

	width, height int

	// visitLimit caps the Program nodes visited per run. Zero means the
	// live node count.
	visitLimit int
	debug      bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithClock sets the clock feeding Time nodes. The default clock starts at
// New and can be restarted with Restart.
func WithClock(c Clock) Option {
	return func(it *Interpreter) { it.clock = c }
}

// WithPointer sets the source of MousePos nodes. Without one the pointer
// sits at the origin.
func WithPointer(p Pointer) Option {
	return func(it *Interpreter) { it.pointer = p }
}

// WithRenderSize sets the screen size in pixels.
func WithRenderSize(width, height int) Option {
	return func(it *Interpreter) { it.SetRenderSize(width, height) }
}

// WithVisitLimit caps the Program nodes visited per run. Values below 1
// restore the default, the live node count.
func WithVisitLimit(n int) Option {
	return func(it *Interpreter) { it.visitLimit = max(n, 0) }
}

// WithDebug makes a run panic on a flow cycle instead of returning
// ErrFlowCycle.
func WithDebug(debug bool) Option {
	return func(it *Interpreter) { it.debug = debug }
}

// New returns an interpreter for g that executes on exec.
func New(g *graph.Graph, exec Executor, opts ...Option) *Interpreter {
	it := &Interpreter{
		g:      g,
		exec:   exec,
		clock:  &wallClock{start: time.Now()},
		width:  1,
		height: 1,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// SetRenderSize sets the screen size in pixels. Sizes below 1 are raised
// to 1.
func (it *Interpreter) SetRenderSize(width, height int) {
	it.width, it.height = max(width, 1), max(height, 1)
}

// RenderSize returns the screen size in pixels.
func (it *Interpreter) RenderSize() (width, height int) {
	return it.width, it.height
}

// Restart resets the time reported to Time nodes to zero, if the clock
// supports it.
func (it *Interpreter) Restart() {
	if r, ok := it.clock.(interface{ Restart() }); ok {
		r.Restart()
	}
}

// Run executes the flow chain of the given event: starting at the event
// node, it follows each flow output to the next Program node and executes
// it, until a flow output is unlinked. Only flow pins are followed.
//
// A backend failure on one node is logged and the chain continues. A chain
// longer than the visit limit stops with ErrFlowCycle, or panics in debug
// mode. A Frame run flips Parity exactly once, whatever its outcome.
func (it *Interpreter) Run(event graph.EventKind) error {
	if event == graph.EventFrame {
		defer func() { it.Parity = !it.Parity }()
	}

	limit := it.visitLimit
	if limit == 0 {
		limit = it.g.NodeCount()
	}

	id := it.g.EventNode(event)
	for visits := 0; ; visits++ {
		n, ok := it.g.Node(id)
		if !ok || n.NumOutputs() == 0 {
			return nil
		}
		out, ok := it.g.Pin(n.Output(0))
		if !ok || out.Kind() != graph.KindFlow {
			return nil
		}
		next, in, ok := it.g.SourceNode(out.ID())
		if !ok || in.Kind() != graph.KindFlow || next.Program() == nil {
			return nil
		}
		if visits >= limit {
			err := fmt.Errorf("%w: %s chain after %d nodes", ErrFlowCycle, event, visits)
			if it.debug {
				panic(err)
			}
			return err
		}
		if err := it.execute(next); err != nil {
			slogger().Warn("flow: program failed", "node", next.ID(), "err", err)
		}
		id = next.ID()
	}
}

type wallClock struct {
	start time.Time
}

func (c *wallClock) Elapsed() time.Duration { return time.Since(c.start) }

func (c *wallClock) Restart() { c.start = time.Now() }
