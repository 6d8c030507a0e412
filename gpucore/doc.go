// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore defines the resource backend contract used by the shader
// graph.
//
// The graph never touches GPU objects directly. Programs, render targets,
// textures and buffers are referred to by opaque IDs ([ProgramID],
// [RenderTargetID], [TextureID], [BufferID]) handed out by a [Backend].
// Each backend keeps the mapping between IDs and its native resources.
//
//	         +-------------------+
//	         |   shadergraph     |
//	         | (graph + flow)    |
//	         +---------+---------+
//	                   |  gpucore.Backend
//	     +-------------+--------------+
//	     |                            |
//	+----v-----------+     +----------v--------+
//	| backend/native |     | backend/recording |
//	|  (wgpu hal)    |     |   (in memory)     |
//	+----------------+     +-------------------+
//
// # Programs
//
// [Backend.CompileProgram] returns the program interface as a [ProgramInfo]:
// the ordered loose uniforms, uniform blocks and buffer blocks. The graph
// derives a Program node's pins from it.
//
// # Execution
//
// The flow interpreter resolves every input of a Program node and hands the
// result to [Backend.Execute] as a [Dispatch].
//
// # Registry
//
// Backends register a factory under a name with [Register], following the
// database/sql driver pattern, and are created with [NewBackend].
package gpucore
