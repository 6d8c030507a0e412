// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shadergraph runs GPU pipelines assembled as node graphs.
//
// # Overview
//
// A shader graph is a set of typed nodes (shader programs, data blocks,
// textures, double-buffered resources, time and pointer sources) joined by
// typed links. Two flow chains, Init and Frame, decide which programs run
// and in what order. An [Editor] owns the graph, the libraries its nodes
// refer to and the interpreter that runs the chains on a GPU backend.
//
// # Quick Start
//
//	ed, err := shadergraph.New(shadergraph.WithRenderSize(800, 600))
//	if err != nil { ... }
//	defer ed.Close()
//
//	sources, err := shadergraph.LoadSources("shaders/plasma.wgsl")
//	prog, err := ed.AddProgram("plasma", sources)
//	node, err := ed.AddProgramNode(graph.Vec2{}, prog, nil)
//
//	g := ed.Graph()
//	frame, _ := g.Node(g.EventNode(graph.EventFrame))
//	n, _ := g.Node(node)
//	ed.TryLink(frame.Output(0), n.Input(0))
//
//	ed.Play()
//	for running {
//	    if err := ed.Display(); err != nil { ... }
//	}
//
// # Libraries
//
// Programs, render targets and textures live in editor libraries. Program
// and Texture nodes refer to library entries; deleting an entry deletes
// its nodes, except for render targets, whose users fall back to the
// screen target. [Editor.ReloadProgram] recompiles a program and migrates
// its nodes, keeping every link whose slot did not change.
//
// # Threading
//
// The editor runs on one thread. Other goroutines, such as a file watcher,
// hand edits over with [Editor.Enqueue]; they run at the start of the next
// [Editor.Display].
//
// # Backends
//
// Backends register by name with [gpucore.Register]. This package links the
// native backend in backend/native; backend/recording records calls without
// a GPU and is used for tests and dry runs.
//
// # Logging
//
// shadergraph is silent by default. Call [SetLogger] to route logs of this
// package and its sub-packages to a [log/slog] logger.
package shadergraph
