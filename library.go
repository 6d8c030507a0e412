// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shadergraph

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/texture"
)

// LoadSources reads shader files into program sources, in order.
func LoadSources(paths ...string) ([]gpucore.ShaderSource, error) {
	if len(paths) == 0 {
		return nil, ErrNoSources
	}
	sources := make([]gpucore.ShaderSource, 0, len(paths))
	for _, path := range paths {
		code, err := os.ReadFile(path) //nolint:gosec // shader paths come from the user
		if err != nil {
			return nil, fmt.Errorf("shadergraph: read shader: %w", err)
		}
		sources = append(sources, gpucore.ShaderSource{Path: path, Code: string(code)})
	}
	return sources, nil
}

// Programs returns the program library in insertion order.
func (e *Editor) Programs() []*gpucore.Program { return slices.Clone(e.programs) }

// Program returns the program with the given name.
func (e *Editor) Program(name string) (*gpucore.Program, bool) {
	i := slices.IndexFunc(e.programs, func(p *gpucore.Program) bool { return p.Name == name })
	if i < 0 {
		return nil, false
	}
	return e.programs[i], true
}

// AddProgram adds a program to the library and compiles it.
//
// A program that fails to compile is still added, with Err set and no
// backend handle, so that a later ReloadProgram can fix it. The compile
// error is returned.
func (e *Editor) AddProgram(name string, sources []gpucore.ShaderSource) (*gpucore.Program, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	if _, ok := e.Program(name); ok {
		return nil, fmt.Errorf("%w: program %q", ErrDuplicateName, name)
	}
	p := &gpucore.Program{Name: name, Sources: slices.Clone(sources)}
	e.programs = append(e.programs, p)

	id, info, err := e.backend.CompileProgram(name, p.Sources)
	if err != nil {
		p.Err = err
		Logger().Warn("shadergraph: compile failed", "program", name, "err", err)
		return p, fmt.Errorf("shadergraph: compile %q: %w", name, err)
	}
	p.ID, p.Info = id, info
	Logger().Info("shadergraph: program compiled", "program", name,
		"uniforms", len(info.Uniforms), "uniform_blocks", len(info.UniformBlocks),
		"buffer_blocks", len(info.BufferBlocks))
	return p, nil
}

// ReloadProgram recompiles a program, from sources when given and from its
// current sources otherwise.
//
// On success every Program node using it is migrated to the new interface,
// keeping the links and literals of unchanged inputs. On failure the
// program keeps its previous handle and interface, Err is set and the
// graph is untouched.
func (e *Editor) ReloadProgram(p *gpucore.Program, sources []gpucore.ShaderSource) error {
	if e.closed {
		return ErrClosed
	}
	if !slices.Contains(e.programs, p) {
		return fmt.Errorf("%w: program %q", ErrNotInLibrary, p.Name)
	}
	if len(sources) == 0 {
		sources = p.Sources
	}
	id, info, err := e.backend.CompileProgram(p.Name, sources)
	if err != nil {
		p.Err = err
		Logger().Warn("shadergraph: recompile failed, keeping previous program",
			"program", p.Name, "err", err)
		return fmt.Errorf("shadergraph: recompile %q: %w", p.Name, err)
	}

	old := p.ID
	p.ID, p.Info, p.Err = id, info, nil
	p.Sources = slices.Clone(sources)

	var errs []error
	nodes := e.graph.ProgramNodes(p)
	for _, n := range nodes {
		if err := e.graph.MigrateProgramNode(n, p, e.targets); err != nil {
			errs = append(errs, err)
		}
	}
	e.backend.DestroyProgram(old)
	Logger().Info("shadergraph: program reloaded", "program", p.Name, "nodes", len(nodes))
	return errors.Join(errs...)
}

// DeleteProgram deletes every Program node using p, then removes p from the
// library and destroys it.
func (e *Editor) DeleteProgram(p *gpucore.Program) error {
	i := slices.Index(e.programs, p)
	if i < 0 {
		return fmt.Errorf("%w: program %q", ErrNotInLibrary, p.Name)
	}
	for _, n := range e.graph.ProgramNodes(p) {
		e.graph.DeleteNode(n)
	}
	e.programs = slices.Delete(e.programs, i, i+1)
	e.backend.DestroyProgram(p.ID)
	p.ID = gpucore.InvalidID
	return nil
}

// RenderTargets returns the render target library. The screen target is
// always first.
func (e *Editor) RenderTargets() []*gpucore.RenderTarget { return slices.Clone(e.targets) }

// Screen returns the screen target.
func (e *Editor) Screen() *gpucore.RenderTarget {
	if len(e.targets) == 0 {
		return gpucore.NewScreenTarget()
	}
	return e.targets[0]
}

// RenderTarget returns the render target with the given name.
func (e *Editor) RenderTarget(name string) (*gpucore.RenderTarget, bool) {
	i := slices.IndexFunc(e.targets, func(t *gpucore.RenderTarget) bool { return t.Name == name })
	if i < 0 {
		return nil, false
	}
	return e.targets[i], true
}

// AddRenderTarget adds an offscreen render target of the current render
// size with the given number of color attachments.
func (e *Editor) AddRenderTarget(name string, attachments int) (*gpucore.RenderTarget, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if attachments < 1 {
		return nil, ErrInvalidAttachments
	}
	if _, ok := e.RenderTarget(name); ok {
		return nil, fmt.Errorf("%w: render target %q", ErrDuplicateName, name)
	}
	t := &gpucore.RenderTarget{Name: name}
	if err := e.recreateTarget(t, attachments); err != nil {
		return nil, err
	}
	e.targets = append(e.targets, t)
	return t, nil
}

// SetRenderTargetAttachments recreates t with n attachments and migrates
// every Program node drawing into it, so their attachment outputs match.
func (e *Editor) SetRenderTargetAttachments(t *gpucore.RenderTarget, n int) error {
	if err := e.offscreen(t); err != nil {
		return err
	}
	if n < 1 {
		return ErrInvalidAttachments
	}
	if n == t.AttachmentCount {
		return nil
	}
	if err := e.recreateTarget(t, n); err != nil {
		return err
	}
	var errs []error
	for _, id := range e.graph.TargetNodes(t) {
		node, _ := e.graph.Node(id)
		if err := e.graph.MigrateProgramNode(id, node.Program().Program, e.targets); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteRenderTarget points every Program node drawing into t at the
// screen, then removes t from the library and destroys it.
func (e *Editor) DeleteRenderTarget(t *gpucore.RenderTarget) error {
	if err := e.offscreen(t); err != nil {
		return err
	}
	for _, id := range e.graph.TargetNodes(t) {
		if err := e.graph.SetRenderTarget(id, e.Screen()); err != nil {
			return err
		}
	}
	i := slices.Index(e.targets, t)
	e.targets = slices.Delete(e.targets, i, i+1)
	e.backend.DestroyRenderTarget(t.ID)
	t.ID, t.Attachments = gpucore.InvalidID, nil
	return nil
}

func (e *Editor) offscreen(t *gpucore.RenderTarget) error {
	i := slices.Index(e.targets, t)
	switch {
	case i < 0:
		return fmt.Errorf("%w: render target %q", ErrNotInLibrary, t.Name)
	case i == 0:
		return ErrScreenTarget
	}
	return nil
}

// recreateTarget gives t a new backend framebuffer of the render size. The
// old one is destroyed only once the new one exists.
func (e *Editor) recreateTarget(t *gpucore.RenderTarget, attachments int) error {
	id, textures, err := e.backend.CreateRenderTarget(attachments, e.width, e.height)
	if err != nil {
		return fmt.Errorf("shadergraph: create render target %q: %w", t.Name, err)
	}
	e.backend.DestroyRenderTarget(t.ID)
	t.ID, t.Attachments, t.AttachmentCount = id, textures, attachments
	t.Width, t.Height = e.width, e.height
	Logger().Info("shadergraph: render target created", "target", t.Name,
		"attachments", attachments, "width", e.width, "height", e.height)
	return nil
}

// Textures returns the texture library in insertion order.
func (e *Editor) Textures() []*gpucore.Texture { return slices.Clone(e.textures) }

// Texture returns the texture with the given name.
func (e *Editor) Texture(name string) (*gpucore.Texture, bool) {
	i := slices.IndexFunc(e.textures, func(t *gpucore.Texture) bool { return t.Name == name })
	if i < 0 {
		return nil, false
	}
	return e.textures[i], true
}

// AddTexture loads an image file into the texture library. An empty name
// uses the file name without its extension.
func (e *Editor) AddTexture(name, path string) (*gpucore.Texture, error) {
	if e.closed {
		return nil, ErrClosed
	}
	if name == "" {
		name = texture.Name(path)
	}
	if _, ok := e.Texture(name); ok {
		return nil, fmt.Errorf("%w: texture %q", ErrDuplicateName, name)
	}
	t := &gpucore.Texture{Name: name, Path: path}
	if err := e.loadTexture(t); err != nil {
		return nil, err
	}
	e.textures = append(e.textures, t)
	return t, nil
}

// ReloadTexture reads the texture's file again. Texture nodes pick up the
// new image on the next frame. On failure the old image is kept.
func (e *Editor) ReloadTexture(t *gpucore.Texture) error {
	if !slices.Contains(e.textures, t) {
		return fmt.Errorf("%w: texture %q", ErrNotInLibrary, t.Name)
	}
	return e.loadTexture(t)
}

func (e *Editor) loadTexture(t *gpucore.Texture) error {
	img, err := texture.Load(t.Path)
	if err != nil {
		return fmt.Errorf("shadergraph: load texture %q: %w", t.Name, err)
	}
	id, err := e.backend.CreateTexture(img.Width, img.Height, img.Pix)
	if err != nil {
		return fmt.Errorf("shadergraph: create texture %q: %w", t.Name, err)
	}
	e.backend.DestroyTexture(t.ID)
	t.ID, t.Width, t.Height = id, img.Width, img.Height
	Logger().Info("shadergraph: texture loaded", "texture", t.Name,
		"format", img.Format, "width", img.Width, "height", img.Height)
	return nil
}

// DeleteTexture deletes every Texture node showing t, then removes t from
// the library and destroys it.
func (e *Editor) DeleteTexture(t *gpucore.Texture) error {
	i := slices.Index(e.textures, t)
	if i < 0 {
		return fmt.Errorf("%w: texture %q", ErrNotInLibrary, t.Name)
	}
	for _, n := range e.graph.TextureNodes(t) {
		e.graph.DeleteNode(n)
	}
	e.textures = slices.Delete(e.textures, i, i+1)
	e.backend.DestroyTexture(t.ID)
	t.ID = gpucore.InvalidID
	return nil
}
