// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgsl extracts the resource interface of a WGSL module.
//
// Modules are parsed and lowered with gogpu/naga, so type aliases, struct
// layouts and entry point stages are resolved the same way the compiler
// resolves them. Lowering does not validate function bodies, so a module
// that reflects cleanly may still fail to compile.
//
// Resource variables map to the program interface as follows:
//
//	var<uniform> t: f32           loose uniform of kind Float
//	var<uniform> p: Params        uniform block with the fields of Params
//	var<storage, read_write> b: array<P>  buffer block with the fields of P
//	var t: texture_2d<f32>        Texture uniform
//	var i: texture_storage_2d<..> Image uniform
//
// Samplers are listed by slot. Unsupported types are ignored.
package wgsl
