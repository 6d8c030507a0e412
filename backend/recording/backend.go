// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recording

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/internal/wgsl"
)

// Name is the registry name of the recording backend.
const Name = "recording"

func init() {
	gpucore.Register(Name, func() (gpucore.Backend, error) {
		return New(), nil
	})
}

var (
	// ErrUnknownResource is returned when a call names a resource the
	// backend did not create or already destroyed.
	ErrUnknownResource = errors.New("recording: unknown resource")

	// ErrNoEntryPoint is returned by the default compiler when a module has
	// neither a vertex and fragment pair nor a compute entry point.
	ErrNoEntryPoint = errors.New("recording: no entry point")
)

// CompileFunc turns shader sources into a program interface.
type CompileFunc func(name string, sources []gpucore.ShaderSource) (gpucore.ProgramInfo, error)

// ExecuteFunc inspects a dispatch before it is recorded. A non-nil error
// fails the execution.
type ExecuteFunc func(d *gpucore.Dispatch) error

// Option configures a Backend.
type Option func(*Backend)

// WithCompiler replaces WGSL reflection as the program compiler.
func WithCompiler(fn CompileFunc) Option {
	return func(b *Backend) { b.compile = fn }
}

// WithExecuteHook installs a function called for every execution.
func WithExecuteHook(fn ExecuteFunc) Option {
	return func(b *Backend) { b.onExecute = fn }
}

type textureInfo struct {
	width, height int
	writable      bool
}

// Backend is the recording gpucore.Backend. It is not safe for concurrent
// use.
type Backend struct {
	commands []Command
	nextID   uint64

	programs map[gpucore.ProgramID]string
	targets  map[gpucore.RenderTargetID][]gpucore.TextureID
	textures map[gpucore.TextureID]textureInfo
	buffers  map[gpucore.BufferID][]byte

	compile   CompileFunc
	onExecute ExecuteFunc
}

var _ gpucore.Backend = (*Backend)(nil)

// New returns an empty recording backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		programs: make(map[gpucore.ProgramID]string),
		targets:  make(map[gpucore.RenderTargetID][]gpucore.TextureID),
		textures: make(map[gpucore.TextureID]textureInfo),
		buffers:  make(map[gpucore.BufferID][]byte),
		compile:  reflectSources,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// reflectSources is the default compiler: the sources are joined into one
// WGSL module and reflected.
func reflectSources(name string, sources []gpucore.ShaderSource) (gpucore.ProgramInfo, error) {
	var sb strings.Builder
	for _, s := range sources {
		sb.WriteString(s.Code)
		sb.WriteByte('\n')
	}
	info, err := wgsl.Reflect(sb.String())
	if err != nil {
		return info, err
	}
	if info.ComputeEntry == "" && (info.VertexEntry == "" || info.FragmentEntry == "") {
		return info, fmt.Errorf("%w in %q", ErrNoEntryPoint, name)
	}
	return info, nil
}

func (b *Backend) record(c Command) {
	b.commands = append(b.commands, c)
}

func (b *Backend) id() uint64 {
	b.nextID++
	return b.nextID
}

// Name implements gpucore.Backend.
func (b *Backend) Name() string { return Name }

// CompileProgram implements gpucore.Backend.
func (b *Backend) CompileProgram(name string, sources []gpucore.ShaderSource) (gpucore.ProgramID, gpucore.ProgramInfo, error) {
	info, err := b.compile(name, sources)
	if err != nil {
		b.record(CompileProgramCommand{Name: name, Err: err})
		return gpucore.InvalidID, gpucore.ProgramInfo{}, fmt.Errorf("recording: compile %q: %w", name, err)
	}
	id := gpucore.ProgramID(b.id())
	b.programs[id] = name
	b.record(CompileProgramCommand{Name: name, Program: id})
	return id, info, nil
}

// DestroyProgram implements gpucore.Backend.
func (b *Backend) DestroyProgram(id gpucore.ProgramID) {
	if id == gpucore.InvalidID {
		return
	}
	delete(b.programs, id)
	b.record(DestroyProgramCommand{Program: id})
}

// CreateRenderTarget implements gpucore.Backend.
func (b *Backend) CreateRenderTarget(attachments, width, height int) (gpucore.RenderTargetID, []gpucore.TextureID, error) {
	if attachments < 1 || width < 1 || height < 1 {
		return gpucore.InvalidID, nil, fmt.Errorf("recording: render target %dx%d with %d attachments", width, height, attachments)
	}
	id := gpucore.RenderTargetID(b.id())
	texs := make([]gpucore.TextureID, attachments)
	for i := range texs {
		texs[i] = gpucore.TextureID(b.id())
	}
	b.targets[id] = texs
	b.record(CreateRenderTargetCommand{Target: id, Attachments: slices.Clone(texs), Width: width, Height: height})
	return id, texs, nil
}

// DestroyRenderTarget implements gpucore.Backend.
func (b *Backend) DestroyRenderTarget(id gpucore.RenderTargetID) {
	if id == gpucore.InvalidID {
		return
	}
	delete(b.targets, id)
	b.record(DestroyRenderTargetCommand{Target: id})
}

// CreateTexture implements gpucore.Backend.
func (b *Backend) CreateTexture(width, height int, pixels []byte) (gpucore.TextureID, error) {
	if width < 1 || height < 1 {
		return gpucore.InvalidID, fmt.Errorf("recording: texture %dx%d", width, height)
	}
	if pixels != nil && len(pixels) != width*height*4 {
		return gpucore.InvalidID, fmt.Errorf("recording: texture %dx%d needs %d bytes, got %d",
			width, height, width*height*4, len(pixels))
	}
	id := gpucore.TextureID(b.id())
	info := textureInfo{width: width, height: height, writable: pixels == nil}
	b.textures[id] = info
	b.record(CreateTextureCommand{Texture: id, Width: width, Height: height, Writable: info.writable})
	return id, nil
}

// DestroyTexture implements gpucore.Backend.
func (b *Backend) DestroyTexture(id gpucore.TextureID) {
	if id == gpucore.InvalidID {
		return
	}
	delete(b.textures, id)
	b.record(DestroyTextureCommand{Texture: id})
}

// CreateBuffer implements gpucore.Backend.
func (b *Backend) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size < 1 {
		return gpucore.InvalidID, fmt.Errorf("recording: buffer of %d bytes", size)
	}
	id := gpucore.BufferID(b.id())
	b.buffers[id] = make([]byte, size)
	b.record(CreateBufferCommand{Buffer: id, Size: size, Usage: usage})
	return id, nil
}

// DestroyBuffer implements gpucore.Backend.
func (b *Backend) DestroyBuffer(id gpucore.BufferID) {
	if id == gpucore.InvalidID {
		return
	}
	delete(b.buffers, id)
	b.record(DestroyBufferCommand{Buffer: id})
}

// WriteBuffer implements gpucore.Backend. Writes past the end of the buffer
// are truncated.
func (b *Backend) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	b.record(WriteBufferCommand{Buffer: id, Offset: offset, Data: slices.Clone(data)})
	buf, ok := b.buffers[id]
	if !ok || offset >= uint64(len(buf)) {
		return
	}
	copy(buf[offset:], data)
}

// Execute implements gpucore.Backend. It fails for unknown programs and
// render targets.
func (b *Backend) Execute(d *gpucore.Dispatch) error {
	if _, ok := b.programs[d.Program]; !ok {
		return fmt.Errorf("recording: execute program %d: %w", d.Program, ErrUnknownResource)
	}
	if d.Mode == gpucore.DispatchArray && d.Target != gpucore.InvalidID {
		if _, ok := b.targets[d.Target]; !ok {
			return fmt.Errorf("recording: execute into target %d: %w", d.Target, ErrUnknownResource)
		}
	}
	if b.onExecute != nil {
		if err := b.onExecute(d); err != nil {
			return err
		}
	}
	b.record(ExecuteCommand{Dispatch: *d})
	return nil
}

// Close implements gpucore.Backend. It forgets every live resource; the
// command log is kept.
func (b *Backend) Close() {
	clear(b.programs)
	clear(b.targets)
	clear(b.textures)
	clear(b.buffers)
}

// Commands returns the recorded commands in call order.
func (b *Backend) Commands() []Command {
	return slices.Clone(b.commands)
}

// Executions returns the recorded dispatches in call order.
func (b *Backend) Executions() []gpucore.Dispatch {
	var out []gpucore.Dispatch
	for _, c := range b.commands {
		if ex, ok := c.(ExecuteCommand); ok {
			out = append(out, ex.Dispatch)
		}
	}
	return out
}

// Count returns the number of recorded commands of type t.
func (b *Backend) Count(t CommandType) int {
	n := 0
	for _, c := range b.commands {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// Reset clears the command log. Live resources are kept.
func (b *Backend) Reset() {
	b.commands = b.commands[:0]
}

// Live returns the number of live programs, render targets, textures and
// buffers.
func (b *Backend) Live() int {
	return len(b.programs) + len(b.targets) + len(b.textures) + len(b.buffers)
}

// Buffer returns a copy of a live buffer's contents.
func (b *Backend) Buffer(id gpucore.BufferID) ([]byte, bool) {
	buf, ok := b.buffers[id]
	return slices.Clone(buf), ok
}

// TextureSize returns the size of a live texture.
func (b *Backend) TextureSize(id gpucore.TextureID) (width, height int, ok bool) {
	info, ok := b.textures[id]
	return info.width, info.height, ok
}
