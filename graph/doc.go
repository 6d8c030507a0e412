// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package graph is the node graph model of a shader pipeline.
//
// A [Graph] owns three arenas: nodes, pins and links. Items are addressed by
// generation-checked handles ([NodeID], [PinID], [LinkID]); a handle to a
// deleted item, or to an item that moved during [Graph.Compact], no longer
// resolves. Deletion leaves a tombstone, and Compact renumbers the survivors
// to dense indices 0..N-1 in their original order.
//
// # Nodes
//
// Every node carries exactly one payload ([EventData], [ProgramData],
// [BlockData], [TextureData], [ImageData], [PingPongData], [TimeData],
// [MousePosData]). Event nodes Init and Frame are created by [New] at
// indices 0 and 1 and cannot be deleted.
//
// # Linking
//
// [Graph.TryLink] validates and creates links. A rejected link leaves the
// graph untouched and reports a [Reject] reason; rejection is not an error.
//
// # Resolution
//
// [Graph.Resolve] walks from a consumer pin through PingPong and Program
// pass-through nodes to the Image or Block node that produces the resource.
//
// # Migration
//
// [Graph.MigrateProgramNode] rebuilds a Program node's pins after its program
// was recompiled, keeping literals and links on every slot whose kind and size
// did not change.
package graph
