// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import "github.com/gogpu/shadergraph/gpucore"

// CommandType identifies the backend call a command records.
type CommandType uint8

const (
	// Program commands
	CmdCompileProgram CommandType = iota // Compile a program
	CmdDestroyProgram                    // Release a program

	// Resource commands
	CmdCreateRenderTarget  // Create a framebuffer
	CmdDestroyRenderTarget // Release a framebuffer
	CmdCreateTexture       // Create a texture or image
	CmdDestroyTexture      // Release a texture
	CmdCreateBuffer        // Create a buffer
	CmdDestroyBuffer       // Release a buffer
	CmdWriteBuffer         // Upload buffer data

	// Execution commands
	CmdExecute // Run a program
)

var commandTypeNames = [...]string{
	CmdCompileProgram:      "CompileProgram",
	CmdDestroyProgram:      "DestroyProgram",
	CmdCreateRenderTarget:  "CreateRenderTarget",
	CmdDestroyRenderTarget: "DestroyRenderTarget",
	CmdCreateTexture:       "CreateTexture",
	CmdDestroyTexture:      "DestroyTexture",
	CmdCreateBuffer:        "CreateBuffer",
	CmdDestroyBuffer:       "DestroyBuffer",
	CmdWriteBuffer:         "WriteBuffer",
	CmdExecute:             "Execute",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded backend call.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// CompileProgramCommand records a compile. Program is InvalidID when the
// compile failed.
type CompileProgramCommand struct {
	Name    string
	Program gpucore.ProgramID
	Err     error
}

// Type implements Command.
func (CompileProgramCommand) Type() CommandType { return CmdCompileProgram }

// DestroyProgramCommand records a program release.
type DestroyProgramCommand struct {
	Program gpucore.ProgramID
}

// Type implements Command.
func (DestroyProgramCommand) Type() CommandType { return CmdDestroyProgram }

// CreateRenderTargetCommand records a framebuffer creation.
type CreateRenderTargetCommand struct {
	Target        gpucore.RenderTargetID
	Attachments   []gpucore.TextureID
	Width, Height int
}

// Type implements Command.
func (CreateRenderTargetCommand) Type() CommandType { return CmdCreateRenderTarget }

// DestroyRenderTargetCommand records a framebuffer release.
type DestroyRenderTargetCommand struct {
	Target gpucore.RenderTargetID
}

// Type implements Command.
func (DestroyRenderTargetCommand) Type() CommandType { return CmdDestroyRenderTarget }

// CreateTextureCommand records a texture creation. Writable is set for
// images created without pixels.
type CreateTextureCommand struct {
	Texture       gpucore.TextureID
	Width, Height int
	Writable      bool
}

// Type implements Command.
func (CreateTextureCommand) Type() CommandType { return CmdCreateTexture }

// DestroyTextureCommand records a texture release.
type DestroyTextureCommand struct {
	Texture gpucore.TextureID
}

// Type implements Command.
func (DestroyTextureCommand) Type() CommandType { return CmdDestroyTexture }

// CreateBufferCommand records a buffer creation.
type CreateBufferCommand struct {
	Buffer gpucore.BufferID
	Size   int
	Usage  gpucore.BufferUsage
}

// Type implements Command.
func (CreateBufferCommand) Type() CommandType { return CmdCreateBuffer }

// DestroyBufferCommand records a buffer release.
type DestroyBufferCommand struct {
	Buffer gpucore.BufferID
}

// Type implements Command.
func (DestroyBufferCommand) Type() CommandType { return CmdDestroyBuffer }

// WriteBufferCommand records an upload. Data is a private copy.
type WriteBufferCommand struct {
	Buffer gpucore.BufferID
	Offset uint64
	Data   []byte
}

// Type implements Command.
func (WriteBufferCommand) Type() CommandType { return CmdWriteBuffer }

// ExecuteCommand records a program execution.
type ExecuteCommand struct {
	Dispatch gpucore.Dispatch
}

// Type implements Command.
func (ExecuteCommand) Type() CommandType { return CmdExecute }
