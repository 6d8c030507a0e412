// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package flow interprets a shader graph.
//
// An [Interpreter] walks the flow chain that starts at one of the graph's
// event nodes and executes every Program node it reaches, in chain order.
// The Init chain runs once when playback starts, the Frame chain once per
// displayed frame:
//
//	it := flow.New(g, backend, flow.WithRenderSize(1280, 720))
//	if err := it.Run(graph.EventInit); err != nil { ... }
//	for running {
//		if err := it.Run(graph.EventFrame); err != nil { ... }
//	}
//
// Each executed node is turned into a [gpucore.Dispatch]: loose uniforms
// take their literal, or the clock or pointer when linked to a Time or
// MousePos node; texture and image inputs are bound to the resource their
// producer owns; Block inputs are resolved through PingPong and Program
// nodes to a Block node, whose uniform buffer is refreshed before the
// dispatch. Inputs that resolve to nothing are left unbound.
//
// After every Frame run the interpreter flips its parity, so PingPong nodes
// swap which input feeds their outputs on alternate frames.
package flow
