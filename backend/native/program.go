// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/internal/wgsl"
)

// bindingKind is what a slot of a program expects.
type bindingKind uint8

const (
	bindUniform bindingKind = iota // loose uniform, backed by the program
	bindUniformBlock
	bindStorageBlock
	bindTexture
	bindImage
	bindSampler
)

// binding is one slot of a program's bind group layouts.
type binding struct {
	slot     gpucore.Slot
	kind     bindingKind
	size     uint64
	readOnly bool
}

type renderKey struct {
	topology gputypes.PrimitiveTopology
	targets  int
}

// program holds the device objects of one compiled program.
type program struct {
	name string
	info gpucore.ProgramInfo

	bindings []binding

	module     hal.ShaderModule
	layouts    []hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
	render     map[renderKey]hal.RenderPipeline

	// uniforms backs the loose uniforms of the program, by slot. fallback
	// holds zeroed buffers bound to blocks the graph left unresolved.
	uniforms map[gpucore.Slot]hal.Buffer
	fallback map[gpucore.Slot]hal.Buffer
}

func (p *program) canRender() bool {
	return p.info.VertexEntry != "" && p.info.FragmentEntry != ""
}

func (p *program) destroy(device hal.Device) {
	for _, rp := range p.render {
		device.DestroyRenderPipeline(rp)
	}
	if p.compute != nil {
		device.DestroyComputePipeline(p.compute)
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
	}
	for _, l := range p.layouts {
		if l != nil {
			device.DestroyBindGroupLayout(l)
		}
	}
	if p.module != nil {
		device.DestroyShaderModule(p.module)
	}
	for _, buf := range p.uniforms {
		device.DestroyBuffer(buf)
	}
	for _, buf := range p.fallback {
		device.DestroyBuffer(buf)
	}
}

// uniformSize is the buffer size of a loose uniform. Array elements of a
// uniform buffer are 16-byte aligned.
func uniformSize(u gpucore.Uniform) uint64 {
	n := max(u.ArraySize, 1)
	if n == 1 {
		return align(uint64(u.Type.Size()), 16)
	}
	return uint64(n) * 16
}

func align(n, to uint64) uint64 {
	return (n + to - 1) / to * to
}

// collectBindings lists the slots of a program, sorted by group and binding.
func collectBindings(info gpucore.ProgramInfo) []binding {
	var out []binding
	for _, u := range info.Uniforms {
		switch u.Type {
		case gpucore.VarTexture:
			out = append(out, binding{slot: u.Slot, kind: bindTexture})
		case gpucore.VarImage:
			out = append(out, binding{slot: u.Slot, kind: bindImage})
		default:
			out = append(out, binding{slot: u.Slot, kind: bindUniform, size: uniformSize(u)})
		}
	}
	for _, blk := range info.UniformBlocks {
		out = append(out, binding{slot: blk.Slot, kind: bindUniformBlock, size: align(uint64(max(blk.Size, 4)), 16)})
	}
	for _, blk := range info.BufferBlocks {
		out = append(out, binding{slot: blk.Slot, kind: bindStorageBlock, size: align(uint64(max(blk.Size, 4)), 4), readOnly: blk.ReadOnly})
	}
	for _, s := range info.Samplers {
		out = append(out, binding{slot: s, kind: bindSampler})
	}
	slices.SortStableFunc(out, func(a, b binding) int {
		if a.slot.Group != b.slot.Group {
			return int(a.slot.Group) - int(b.slot.Group)
		}
		return int(a.slot.Binding) - int(b.slot.Binding)
	})
	return out
}

func (p *program) visibility(bd binding) gputypes.ShaderStage {
	var stages gputypes.ShaderStage
	if p.info.ComputeEntry != "" {
		stages |= gputypes.ShaderStageCompute
	}
	if p.canRender() {
		stages |= gputypes.ShaderStageFragment
		writable := bd.kind == bindImage || (bd.kind == bindStorageBlock && !bd.readOnly)
		if !writable {
			stages |= gputypes.ShaderStageVertex
		}
	}
	return stages
}

func (p *program) layoutEntry(bd binding) gputypes.BindGroupLayoutEntry {
	e := gputypes.BindGroupLayoutEntry{
		Binding:    bd.slot.Binding,
		Visibility: p.visibility(bd),
	}
	switch bd.kind {
	case bindUniform, bindUniformBlock:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case bindStorageBlock:
		typ := gputypes.BufferBindingTypeStorage
		if bd.readOnly {
			typ = gputypes.BufferBindingTypeReadOnlyStorage
		}
		e.Buffer = &gputypes.BufferBindingLayout{Type: typ}
	case bindTexture:
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case bindImage:
		e.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access:        gputypes.StorageTextureAccessWriteOnly,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case bindSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	}
	return e
}

// groupCount is one past the highest bind group index in use.
func (p *program) groupCount() int {
	n := 0
	for _, bd := range p.bindings {
		n = max(n, int(bd.slot.Group)+1)
	}
	return n
}

// CompileProgram compiles the sources into one program and returns its
// interface. On error no resource is allocated.
func (b *Backend) CompileProgram(name string, sources []gpucore.ShaderSource) (gpucore.ProgramID, gpucore.ProgramInfo, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return gpucore.InvalidID, gpucore.ProgramInfo{}, ErrClosed
	}

	src := joinSources(sources)
	info, err := wgsl.Reflect(src)
	if err != nil {
		return gpucore.InvalidID, gpucore.ProgramInfo{}, fmt.Errorf("native: program %q: %w", name, err)
	}
	p := &program{
		name:     name,
		info:     info,
		bindings: collectBindings(info),
		render:   make(map[renderKey]hal.RenderPipeline),
		uniforms: make(map[gpucore.Slot]hal.Buffer),
		fallback: make(map[gpucore.Slot]hal.Buffer),
	}
	if info.ComputeEntry == "" && !p.canRender() {
		return gpucore.InvalidID, gpucore.ProgramInfo{}, fmt.Errorf("native: program %q: %w", name, ErrNoEntryPoint)
	}
	if err := b.buildProgram(p, src); err != nil {
		p.destroy(b.device)
		return gpucore.InvalidID, gpucore.ProgramInfo{}, fmt.Errorf("native: program %q: %w", name, err)
	}

	id := gpucore.ProgramID(b.newID())
	b.mu.Lock()
	b.programs[id] = p
	b.mu.Unlock()
	slogger().Info("native: program compiled", "name", name, "id", id,
		"uniforms", len(info.Uniforms), "uniform_blocks", len(info.UniformBlocks),
		"buffer_blocks", len(info.BufferBlocks))
	return id, info, nil
}

func (b *Backend) buildProgram(p *program, src string) error {
	module, err := b.createShaderModule(p.name, src)
	if err != nil {
		return err
	}
	p.module = module

	p.layouts = make([]hal.BindGroupLayout, p.groupCount())
	for g := range p.layouts {
		var entries []gputypes.BindGroupLayoutEntry
		for _, bd := range p.bindings {
			if int(bd.slot.Group) == g {
				entries = append(entries, p.layoutEntry(bd))
			}
		}
		layout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s_group%d", p.name, g),
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("create bind group layout %d: %w", g, err)
		}
		p.layouts[g] = layout
	}

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.name + "_layout",
		BindGroupLayouts: p.layouts,
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	if p.info.ComputeEntry != "" {
		pipeline, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  p.name + "_compute",
			Layout: p.pipeLayout,
			Compute: hal.ComputeState{
				Module:     p.module,
				EntryPoint: p.info.ComputeEntry,
			},
		})
		if err != nil {
			return fmt.Errorf("create compute pipeline: %w", err)
		}
		p.compute = pipeline
	}

	for _, bd := range p.bindings {
		if bd.kind != bindUniform {
			continue
		}
		buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("%s_uniform_%d_%d", p.name, bd.slot.Group, bd.slot.Binding),
			Size:  bd.size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create uniform buffer: %w", err)
		}
		p.uniforms[bd.slot] = buf
	}
	return nil
}

// renderPipeline returns the pipeline drawing with topology into a target
// with the given number of attachments, creating it on first use.
func (b *Backend) renderPipeline(p *program, topology gpucore.Topology, targets int) (hal.RenderPipeline, error) {
	key := renderKey{topology: primitiveTopology(topology), targets: targets}
	if rp, ok := p.render[key]; ok {
		return rp, nil
	}
	colorTargets := make([]gputypes.ColorTargetState, targets)
	for i := range colorTargets {
		colorTargets[i] = gputypes.ColorTargetState{
			Format:    gputypes.TextureFormatRGBA8Unorm,
			WriteMask: gputypes.ColorWriteMaskAll,
		}
	}
	rp, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s_%s_%d", p.name, topology, targets),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: p.info.VertexEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: p.info.FragmentEntry,
			Targets:    colorTargets,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: key.topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	p.render[key] = rp
	return rp, nil
}

// primitiveTopology maps a draw topology onto the closest WebGPU one.
// Loops, fans and adjacency variants have no WebGPU equivalent and draw as
// their plain strip or list form.
func primitiveTopology(t gpucore.Topology) gputypes.PrimitiveTopology {
	switch t {
	case gpucore.TopologyPoints:
		return gputypes.PrimitiveTopologyPointList
	case gpucore.TopologyLineStrip, gpucore.TopologyLineLoop, gpucore.TopologyLineStripAdjacency:
		return gputypes.PrimitiveTopologyLineStrip
	case gpucore.TopologyLines, gpucore.TopologyLinesAdjacency:
		return gputypes.PrimitiveTopologyLineList
	case gpucore.TopologyTriangleStrip, gpucore.TopologyTriangleFan, gpucore.TopologyTriangleStripAdjacency:
		return gputypes.PrimitiveTopologyTriangleStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

// DestroyProgram releases a program.
func (b *Backend) DestroyProgram(id gpucore.ProgramID) {
	if id == gpucore.InvalidID {
		return
	}
	b.mu.Lock()
	p, ok := b.programs[id]
	delete(b.programs, id)
	b.mu.Unlock()
	if ok {
		p.destroy(b.device)
	}
}
