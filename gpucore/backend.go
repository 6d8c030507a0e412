// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

// Backend creates and executes the resources a shader graph refers to.
//
// Every Create method has a matching Destroy method. Destroy of an unknown
// ID or of InvalidID is a no-op, so an owner can release unconditionally.
//
// Backends are not required to be safe for concurrent use; the graph calls
// them from the frame thread only.
type Backend interface {
	// Name returns the registry name of the backend.
	Name() string

	// CompileProgram compiles the sources into one program and returns its
	// interface. On error no resource is allocated.
	CompileProgram(name string, sources []ShaderSource) (ProgramID, ProgramInfo, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// CreateRenderTarget creates a framebuffer with the given number of RGBA
	// color attachments and returns the attachment textures in order.
	CreateRenderTarget(attachments, width, height int) (RenderTargetID, []TextureID, error)

	// DestroyRenderTarget releases a render target and its attachments.
	DestroyRenderTarget(id RenderTargetID)

	// CreateTexture creates a 2D RGBA8 texture. With nil pixels the texture
	// is a writable image usable as a storage binding.
	CreateTexture(width, height int, pixels []byte) (TextureID, error)

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// CreateBuffer creates a buffer of size bytes.
	CreateBuffer(size int, usage BufferUsage) (BufferID, error)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer uploads data to a buffer at offset.
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// Execute runs one program with its resolved inputs.
	Execute(d *Dispatch) error

	// Close releases every resource still held by the backend.
	Close()
}
