// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shadergraph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/shadergraph/flow"
	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/graph"
)

// Editor owns a shader graph, the libraries its nodes refer to and the
// interpreter that runs it once per frame.
//
// All methods except Enqueue and SetPointer must be called from the frame
// thread. Other goroutines hand edits over with Enqueue; they are applied
// at the start of the next Display.
type Editor struct {
	backend gpucore.Backend
	owned   bool

	graph  *graph.Graph
	interp *flow.Interpreter

	programs []*gpucore.Program
	targets  []*gpucore.RenderTarget
	textures []*gpucore.Texture

	width, height int
	debug         bool

	playing bool
	onInit  bool
	frames  uint64
	closed  bool

	mu      sync.Mutex
	pending []func(*Editor)
	pointer graph.Vec2
}

// New creates an editor with an empty graph holding the Init and Frame
// event nodes, and a library holding only the screen target.
func New(opts ...Option) (*Editor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := o.backend
	owned := false
	if b == nil {
		var err error
		if b, err = gpucore.NewBackend(o.backendName); err != nil {
			return nil, fmt.Errorf("shadergraph: open backend: %w", err)
		}
		owned = true
	}

	e := &Editor{
		backend: b,
		owned:   owned,
		graph:   graph.New(b),
		targets: []*gpucore.RenderTarget{gpucore.NewScreenTarget()},
		width:   max(o.width, 1),
		height:  max(o.height, 1),
		debug:   o.debug,
	}
	flowOpts := []flow.Option{
		flow.WithPointer(e),
		flow.WithRenderSize(e.width, e.height),
		flow.WithVisitLimit(o.visitLimit),
		flow.WithDebug(o.debug),
	}
	if o.clock != nil {
		flowOpts = append(flowOpts, flow.WithClock(o.clock))
	}
	e.interp = flow.New(e.graph, b, flowOpts...)

	Logger().Info("shadergraph: editor created",
		"backend", b.Name(), "width", e.width, "height", e.height)
	return e, nil
}

// Close deletes every node and library entry and releases their resources.
// A backend opened by New is closed too. Close is idempotent.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.playing = false

	e.graph.Close()
	for _, p := range e.programs {
		e.backend.DestroyProgram(p.ID)
		p.ID = gpucore.InvalidID
	}
	for _, t := range e.targets {
		if !t.IsScreen() {
			e.backend.DestroyRenderTarget(t.ID)
			t.ID, t.Attachments = gpucore.InvalidID, nil
		}
	}
	for _, t := range e.textures {
		e.backend.DestroyTexture(t.ID)
		t.ID = gpucore.InvalidID
	}
	e.programs, e.targets, e.textures = nil, nil, nil

	if e.owned {
		e.backend.Close()
	}
	Logger().Debug("shadergraph: editor closed", "frames", e.frames)
}

// Graph returns the node graph for enumeration and editing.
func (e *Editor) Graph() *graph.Graph { return e.graph }

// Backend returns the backend the editor runs on.
func (e *Editor) Backend() gpucore.Backend { return e.backend }

// Interpreter returns the flow interpreter.
func (e *Editor) Interpreter() *flow.Interpreter { return e.interp }

// Play starts playback. The next Display runs the Init chain before the
// Frame chain.
func (e *Editor) Play() {
	if e.playing {
		return
	}
	e.playing = true
	e.onInit = true
}

// Pause stops playback. Display keeps applying queued edits.
func (e *Editor) Pause() { e.playing = false }

// Playing reports whether playback is running.
func (e *Editor) Playing() bool { return e.playing }

// Frames returns the number of Frame chains run so far.
func (e *Editor) Frames() uint64 { return e.frames }

// RenderSize returns the screen size in pixels.
func (e *Editor) RenderSize() (width, height int) { return e.width, e.height }

// SetPointer moves the pointer reported to MousePos nodes, in render
// pixels. Safe for concurrent use.
func (e *Editor) SetPointer(x, y float32) {
	e.mu.Lock()
	e.pointer = graph.Vec2{X: x, Y: y}
	e.mu.Unlock()
}

// Position implements flow.Pointer.
func (e *Editor) Position() graph.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pointer
}

// Enqueue schedules fn to run on the frame thread at the start of the next
// Display. Safe for concurrent use.
func (e *Editor) Enqueue(fn func(*Editor)) {
	e.mu.Lock()
	e.pending = append(e.pending, fn)
	e.mu.Unlock()
}

func (e *Editor) drain() {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, fn := range pending {
		fn(e)
	}
}

// Display runs one frame: queued edits are applied and the graph is
// compacted, then, while playing,
// the Init chain on the first frame after Play and the Frame chain on
// every frame. PingPong parity flips once per Frame chain.
func (e *Editor) Display() error {
	if e.closed {
		return ErrClosed
	}
	e.drain()
	e.graph.Compact()
	if !e.playing {
		return nil
	}
	if e.debug {
		if err := e.graph.Check(); err != nil {
			panic(err)
		}
	}

	var errs []error
	if e.onInit {
		e.onInit = false
		e.interp.Restart()
		if err := e.interp.Run(graph.EventInit); err != nil {
			errs = append(errs, fmt.Errorf("shadergraph: init: %w", err))
		}
	}
	if err := e.interp.Run(graph.EventFrame); err != nil {
		errs = append(errs, fmt.Errorf("shadergraph: frame %d: %w", e.frames, err))
	}
	e.frames++
	return errors.Join(errs...)
}

// Resize sets the screen size and recreates every offscreen render target
// at the new size. Sizes below 1 are raised to 1.
func (e *Editor) Resize(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	if width == e.width && height == e.height {
		return nil
	}
	e.width, e.height = width, height
	e.interp.SetRenderSize(width, height)

	var errs []error
	for _, t := range e.targets {
		if t.IsScreen() {
			continue
		}
		if err := e.recreateTarget(t, t.AttachmentCount); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
