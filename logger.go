// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shadergraph

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/shadergraph/backend/native"
	"github.com/gogpu/shadergraph/flow"
	"github.com/gogpu/shadergraph/graph"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for shadergraph and its sub-packages.
// By default nothing is logged.
//
// SetLogger is safe for concurrent use. Pass nil to restore silent logging.
//
// Log levels used by shadergraph:
//   - [slog.LevelDebug]: per-frame detail (skipped bindings, migrations)
//   - [slog.LevelInfo]: lifecycle events (program compiled, target recreated)
//   - [slog.LevelWarn]: absorbed failures (compile errors, failed programs)
//
// Example:
//
//	shadergraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	graph.SetLogger(l)
	flow.SetLogger(l)
	native.SetLogger(l)
}

// Logger returns the current logger used by shadergraph.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
