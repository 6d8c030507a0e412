// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

// ValueBinding is a resolved loose uniform value.
type ValueBinding struct {
	Name string
	Slot Slot
	Type VarType

	// Data is the little-endian packed value.
	Data []byte
}

// TextureBinding binds a texture (sampled) or an image (storage) to a slot.
type TextureBinding struct {
	Name    string
	Slot    Slot
	Texture TextureID
}

// BufferBinding binds a uniform or storage buffer to a slot.
type BufferBinding struct {
	Name   string
	Slot   Slot
	Buffer BufferID
	Size   uint64
}

// Dispatch is one fully resolved program execution.
type Dispatch struct {
	Program ProgramID
	Mode    DispatchMode

	// Target is the render target of an array dispatch. InvalidID draws to
	// the screen.
	Target RenderTargetID

	// Width and Height are the viewport of an array dispatch.
	Width  int
	Height int

	// Topology and Count describe an array dispatch.
	Topology Topology
	Count    uint32

	// Groups is the work group grid of a compute dispatch.
	Groups [3]uint32

	Values        []ValueBinding
	Textures      []TextureBinding
	Images        []TextureBinding
	UniformBlocks []BufferBinding
	StorageBlocks []BufferBinding
}
