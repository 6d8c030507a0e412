// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native is the GPU backend of shadergraph, built directly on
// gogpu/wgpu/hal.
//
// Shaders are WGSL. Every program is compiled to SPIR-V with gogpu/naga and
// reflected for its resource interface before a shader module is created,
// so a program that fails to compile never reaches the device.
//
// The package registers itself as "native" with gpucore:
//
//	import _ "github.com/gogpu/shadergraph/backend/native"
//
//	b, err := gpucore.NewBackend("native")
//
// A backend can also share the device of a host application through
// NewFromProvider, or wrap an already opened device with New.
//
// Programs drawing to the screen target render into an offscreen RGBA
// texture owned by the backend, sized to the dispatch viewport. Its pixels
// are available through ReadScreen.
package native
