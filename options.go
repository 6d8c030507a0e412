// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shadergraph

import (
	"github.com/gogpu/shadergraph/backend/native"
	"github.com/gogpu/shadergraph/flow"
	"github.com/gogpu/shadergraph/gpucore"
)

// Option configures an Editor during creation.
//
// Example:
//
//	// Default native backend at 1280x720
//	ed, err := shadergraph.New()
//
//	// Headless run on the recording backend
//	ed, err := shadergraph.New(
//	    shadergraph.WithBackendName("recording"),
//	    shadergraph.WithRenderSize(640, 480),
//	)
type Option func(*options)

type options struct {
	backend     gpucore.Backend
	backendName string

	width, height int
	visitLimit    int
	debug         bool
	clock         flow.Clock
}

func defaultOptions() options {
	return options{
		backendName: native.Name,
		width:       DefaultWidth,
		height:      DefaultHeight,
	}
}

// Default render size.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// WithBackend runs the editor on an opened backend. The editor does not
// close it.
func WithBackend(b gpucore.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name. The editor opens it
// and closes it with Close. Ignored when WithBackend is given.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithRenderSize sets the screen size in pixels. Render targets are created
// at this size.
func WithRenderSize(width, height int) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithVisitLimit caps the Program nodes executed per flow chain. Zero uses
// the live node count.
func WithVisitLimit(n int) Option {
	return func(o *options) {
		o.visitLimit = n
	}
}

// WithDebug makes flow cycles and graph inconsistencies panic.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithClock replaces the wall clock feeding Time nodes.
func WithClock(c flow.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}
