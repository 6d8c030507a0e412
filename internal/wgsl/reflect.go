// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgsl

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/shadergraph/gpucore"
)

var (
	// ErrSyntax is wrapped by every parse error.
	ErrSyntax = errors.New("wgsl: syntax error")

	// ErrInvalid is wrapped when a module parses but does not lower, such
	// as a reference to an undeclared type.
	ErrInvalid = errors.New("wgsl: invalid module")
)

// Reflect returns the resource interface of a WGSL module, in declaration
// order.
func Reflect(src string) (gpucore.ProgramInfo, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return gpucore.ProgramInfo{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return gpucore.ProgramInfo{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return reflectModule(module), nil
}

func reflectModule(m *ir.Module) gpucore.ProgramInfo {
	var info gpucore.ProgramInfo
	for _, ep := range m.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			if info.VertexEntry == "" {
				info.VertexEntry = ep.Name
			}
		case ir.StageFragment:
			if info.FragmentEntry == "" {
				info.FragmentEntry = ep.Name
			}
		case ir.StageCompute:
			if info.ComputeEntry == "" {
				info.ComputeEntry = ep.Name
			}
		}
	}

	r := reflector{m: m, info: &info}
	for i := range m.GlobalVariables {
		g := &m.GlobalVariables[i]
		if g.Binding == nil {
			continue
		}
		r.bind(g, gpucore.Slot{Group: g.Binding.Group, Binding: g.Binding.Binding})
	}
	return info
}

type reflector struct {
	m    *ir.Module
	info *gpucore.ProgramInfo
}

func (r *reflector) inner(h ir.TypeHandle) ir.TypeInner {
	if int(h) >= len(r.m.Types) {
		return nil
	}
	return r.m.Types[h].Inner
}

// bind adds a resource variable to the interface.
func (r *reflector) bind(g *ir.GlobalVariable, slot gpucore.Slot) {
	t := r.inner(g.Type)
	switch g.Space {
	case ir.SpaceUniform:
		if s, ok := t.(ir.StructType); ok {
			r.info.UniformBlocks = append(r.info.UniformBlocks, r.block(g.Name, slot, s.Members))
			return
		}
		elem, n := r.arrayOf(t)
		if vt := r.varType(elem); vt != gpucore.VarUnknown {
			r.info.Uniforms = append(r.info.Uniforms, gpucore.Uniform{Name: g.Name, Type: vt, ArraySize: n, Slot: slot})
		}
	case ir.SpaceStorage:
		elem, _ := r.arrayOf(t)
		var b gpucore.Block
		if s, ok := elem.(ir.StructType); ok {
			b = r.block(g.Name, slot, s.Members)
		} else {
			vt := r.varType(elem)
			if vt == gpucore.VarUnknown {
				return
			}
			b = gpucore.Block{
				Name:   g.Name,
				Slot:   slot,
				Fields: []gpucore.Field{{Name: g.Name, Type: vt}},
				Size:   vt.Size(),
			}
		}
		b.ReadOnly = g.Access == ir.StorageRead
		r.info.BufferBlocks = append(r.info.BufferBlocks, b)
	case ir.SpaceHandle:
		switch v := t.(type) {
		case ir.SamplerType:
			r.info.Samplers = append(r.info.Samplers, slot)
		case ir.ImageType:
			if v.Dim != ir.Dim2D || v.Arrayed || v.Multisampled {
				return
			}
			vt := gpucore.VarUnknown
			switch v.Class {
			case ir.ImageClassSampled:
				vt = gpucore.VarTexture
			case ir.ImageClassStorage:
				vt = gpucore.VarImage
			}
			if vt != gpucore.VarUnknown {
				r.info.Uniforms = append(r.info.Uniforms, gpucore.Uniform{Name: g.Name, Type: vt, ArraySize: 1, Slot: slot})
			}
		}
	}
}

// block builds a block from struct members. Members of types without a
// pin kind are left out of Fields and Size.
func (r *reflector) block(name string, slot gpucore.Slot, members []ir.StructMember) gpucore.Block {
	b := gpucore.Block{Name: name, Slot: slot}
	for _, m := range members {
		vt := r.varType(r.inner(m.Type))
		if vt == gpucore.VarUnknown {
			continue
		}
		b.Fields = append(b.Fields, gpucore.Field{Name: m.Name, Type: vt})
		b.Size += vt.Size()
	}
	return b
}

// arrayOf unwraps array<T, N> into T and N. Runtime-sized arrays and
// other types have a length of 1.
func (r *reflector) arrayOf(t ir.TypeInner) (ir.TypeInner, int) {
	a, ok := t.(ir.ArrayType)
	if !ok {
		return t, 1
	}
	n := 1
	if a.Size.Constant != nil && *a.Size.Constant > 0 {
		n = int(*a.Size.Constant)
	}
	return r.inner(a.Base), n
}

// varType maps a 32-bit float or signed integer scalar or vector to its
// VarType.
func (r *reflector) varType(t ir.TypeInner) gpucore.VarType {
	var (
		scalar ir.ScalarType
		width  = 1
	)
	switch v := t.(type) {
	case ir.ScalarType:
		scalar = v
	case ir.VectorType:
		scalar = v.Scalar
		width = int(v.Size)
	default:
		return gpucore.VarUnknown
	}
	if scalar.Width != 4 {
		return gpucore.VarUnknown
	}
	switch scalar.Kind {
	case ir.ScalarFloat:
		return gpucore.VarFloat + gpucore.VarType(width-1)
	case ir.ScalarSint:
		return gpucore.VarInt + gpucore.VarType(width-1)
	default:
		return gpucore.VarUnknown
	}
}
