// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

// ShaderSource is one shader file of a program.
type ShaderSource struct {
	// Path is where the source was loaded from. Empty for inline sources.
	Path string

	// Code is the WGSL source text.
	Code string
}

// Slot addresses a resource binding inside a program.
type Slot struct {
	Group   uint32
	Binding uint32
}

// Uniform is a loose (non-block) uniform of a program.
type Uniform struct {
	Name string
	Type VarType

	// ArraySize is the declared array length, 1 for plain variables.
	ArraySize int

	Slot Slot
}

// Field is one member of a uniform or buffer block.
type Field struct {
	Name string
	Type VarType
}

// Block is a uniform block or buffer block of a program.
type Block struct {
	Name string

	// Size is the packed byte size of one element of the block.
	Size int

	Fields []Field
	Slot   Slot

	// ReadOnly marks a buffer block declared without write access.
	ReadOnly bool
}

// ProgramInfo is the resource interface of a compiled program, in
// declaration order.
type ProgramInfo struct {
	Uniforms      []Uniform
	UniformBlocks []Block
	BufferBlocks  []Block

	// Samplers are the sampler bindings. They carry no pin; the backend
	// binds its own sampler to each.
	Samplers []Slot

	// Entry points found in the module. Array dispatch needs a vertex and a
	// fragment entry, compute dispatch a compute entry.
	VertexEntry   string
	FragmentEntry string
	ComputeEntry  string
}

// Program is a library entry: a named set of shader sources and, once
// compiled, its backend handle and interface.
type Program struct {
	Name    string
	Sources []ShaderSource

	ID   ProgramID
	Info ProgramInfo

	// Err is the error of the last failed compile. A failed recompile keeps
	// the previous ID and Info.
	Err error
}

// Compiled reports whether the program has a working backend handle.
func (p *Program) Compiled() bool {
	return p != nil && p.ID != InvalidID
}

// ScreenTargetName is the name of the built-in screen target.
const ScreenTargetName = "Screen"

// RenderTarget is a library entry for an offscreen framebuffer with a
// number of color attachments. The screen target has no attachments and no
// backend handle.
type RenderTarget struct {
	Name string

	ID          RenderTargetID
	Attachments []TextureID

	// AttachmentCount is the requested number of color attachments.
	AttachmentCount int

	Width  int
	Height int
}

// NewScreenTarget returns the built-in screen target.
func NewScreenTarget() *RenderTarget {
	return &RenderTarget{Name: ScreenTargetName}
}

// IsScreen reports whether t is the screen target.
func (t *RenderTarget) IsScreen() bool {
	return t == nil || (t.ID == InvalidID && t.AttachmentCount == 0 && t.Name == ScreenTargetName)
}

// Texture is a library entry for an image loaded from disk.
type Texture struct {
	Name string
	Path string

	ID     TextureID
	Width  int
	Height int
}
