// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/shadergraph/gpucore"
)

const computeWGSL = `
struct Particle {
    pos: vec4<f32>,
    vel: vec4<f32>,
}

struct Params {
    dt: f32,
    count: i32,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read_write> particles: array<Particle>;
@group(0) @binding(2) var<uniform> gravity: f32;

@compute @workgroup_size(64)
fn update(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    particles[i].vel.y = particles[i].vel.y - gravity * params.dt;
    particles[i].pos = particles[i].pos + particles[i].vel * params.dt;
}
`

const renderWGSL = `
@group(0) @binding(0) var<uniform> tint: vec4<f32>;
@group(0) @binding(1) var image: texture_2d<f32>;
@group(0) @binding(2) var imageSampler: sampler;

struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> VertexOut {
    let uv = vec2<f32>(f32((i << 1u) & 2u), f32(i & 2u));
    var out: VertexOut;
    out.pos = vec4<f32>(uv * 2.0 - 1.0, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(v: VertexOut) -> @location(0) vec4<f32> {
    return textureSample(image, imageSampler, v.uv) * tint;
}
`

// newNoopBackend opens a backend on the noop HAL device.
func newNoopBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := openAPI(noop.API{}, nil)
	if err != nil {
		t.Fatalf("openAPI(noop) failed: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

// mustCompile compiles src, skipping the test when naga lacks a feature
// the shader uses.
func mustCompile(t *testing.T, b *Backend, name, src string) (gpucore.ProgramID, gpucore.ProgramInfo) {
	t.Helper()
	id, info, err := b.CompileProgram(name, []gpucore.ShaderSource{{Code: src}})
	if err != nil {
		if msg := err.Error(); strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("CompileProgram(%s) failed: %v", name, err)
	}
	return id, info
}

func TestRegistered(t *testing.T) {
	if !gpucore.IsRegistered(Name) {
		t.Fatalf("backend %q not registered", Name)
	}
}

func TestCompileCompute(t *testing.T) {
	b := newNoopBackend(t)
	id, info := mustCompile(t, b, "particles", computeWGSL)
	if id == gpucore.InvalidID {
		t.Fatal("expected valid program ID")
	}
	if info.ComputeEntry != "update" {
		t.Errorf("ComputeEntry = %q, want update", info.ComputeEntry)
	}

	p := b.programs[id]
	if p.compute == nil {
		t.Error("expected compute pipeline")
	}
	if len(p.layouts) != 1 {
		t.Errorf("layouts = %d, want 1", len(p.layouts))
	}
	if len(p.uniforms) != 1 {
		t.Errorf("uniform buffers = %d, want 1 (gravity)", len(p.uniforms))
	}
	want := []bindingKind{bindUniformBlock, bindStorageBlock, bindUniform}
	if len(p.bindings) != len(want) {
		t.Fatalf("bindings = %+v", p.bindings)
	}
	for i, bd := range p.bindings {
		if bd.kind != want[i] || bd.slot.Binding != uint32(i) {
			t.Errorf("binding %d = %+v, want kind %d", i, bd, want[i])
		}
	}

	b.DestroyProgram(id)
	if _, ok := b.programs[id]; ok {
		t.Error("program still tracked after DestroyProgram")
	}
	b.DestroyProgram(id)
	b.DestroyProgram(gpucore.InvalidID)
}

func TestCompileErrors(t *testing.T) {
	b := newNoopBackend(t)
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no entry", "@group(0) @binding(0) var<uniform> v: f32;", ErrNoEntryPoint},
		{"vertex only", "@vertex fn vs() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }", ErrNoEntryPoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, _, err := b.CompileProgram(tt.name, []gpucore.ShaderSource{{Code: tt.src}})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if id != gpucore.InvalidID {
				t.Errorf("id = %d, want InvalidID", id)
			}
		})
	}
	if len(b.programs) != 0 {
		t.Errorf("failed compiles left %d programs", len(b.programs))
	}

	if _, _, err := b.CompileProgram("bad", []gpucore.ShaderSource{{Code: "struct {"}}); err == nil {
		t.Error("expected syntax error")
	}
}

func TestModuleCache(t *testing.T) {
	b := newNoopBackend(t)
	first, _ := mustCompile(t, b, "a", computeWGSL)
	second, _ := mustCompile(t, b, "b", computeWGSL)
	if first == second {
		t.Fatal("programs from the same source share an ID")
	}
	st := b.modules.Stats()
	if st.Len != 1 || st.Hits != 1 || st.Misses != 1 {
		t.Errorf("module cache stats = %+v, want 1 entry, 1 hit, 1 miss", st)
	}

	if _, _, err := b.CompileProgram("bad", []gpucore.ShaderSource{{Code: "fn broken( {"}}); err == nil {
		t.Fatal("broken source compiled")
	}
	if b.modules.Len() != 1 {
		t.Errorf("failed compile was cached: len = %d", b.modules.Len())
	}
}

func TestJoinSources(t *testing.T) {
	got := joinSources([]gpucore.ShaderSource{
		{Path: "a.wgsl", Code: "const a = 1;"},
		{Path: "b.wgsl", Code: "const b = 2;\n"},
	})
	if got != "const a = 1;\nconst b = 2;\n" {
		t.Errorf("joinSources = %q", got)
	}
}

func TestUniformSize(t *testing.T) {
	tests := []struct {
		u    gpucore.Uniform
		want uint64
	}{
		{gpucore.Uniform{Type: gpucore.VarFloat, ArraySize: 1}, 16},
		{gpucore.Uniform{Type: gpucore.VarFloat3, ArraySize: 1}, 16},
		{gpucore.Uniform{Type: gpucore.VarFloat4, ArraySize: 0}, 16},
		{gpucore.Uniform{Type: gpucore.VarFloat2, ArraySize: 4}, 64},
	}
	for _, tt := range tests {
		if got := uniformSize(tt.u); got != tt.want {
			t.Errorf("uniformSize(%v x%d) = %d, want %d", tt.u.Type, tt.u.ArraySize, got, tt.want)
		}
	}
}

func TestPrimitiveTopology(t *testing.T) {
	for _, top := range gpucore.Topologies() {
		// every topology maps to something drawable
		_ = primitiveTopology(top)
	}
	if primitiveTopology(gpucore.TopologyTriangles) == primitiveTopology(gpucore.TopologyPoints) {
		t.Error("triangles and points map to the same topology")
	}
}

func TestTextures(t *testing.T) {
	b := newNoopBackend(t)

	if _, err := b.CreateTexture(0, 4, nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero width: err = %v, want ErrInvalidDimensions", err)
	}
	if _, err := b.CreateTexture(2, 2, make([]byte, 3)); err == nil {
		t.Error("short pixel data: expected error")
	}

	img, err := b.CreateTexture(4, 4, nil)
	if err != nil {
		t.Fatalf("CreateTexture(image) failed: %v", err)
	}
	tex, err := b.CreateTexture(2, 2, make([]byte, 16))
	if err != nil {
		t.Fatalf("CreateTexture(pixels) failed: %v", err)
	}
	if img == tex {
		t.Fatal("texture IDs collide")
	}

	pixels, w, h, err := b.ReadTexture(tex)
	if err != nil {
		t.Fatalf("ReadTexture failed: %v", err)
	}
	if w != 2 || h != 2 || len(pixels) != 16 {
		t.Errorf("ReadTexture = %d bytes %dx%d, want 16 bytes 2x2", len(pixels), w, h)
	}

	b.DestroyTexture(img)
	b.DestroyTexture(img)
	if _, _, _, err := b.ReadTexture(img); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("ReadTexture(destroyed) err = %v, want ErrUnknownResource", err)
	}
}

func TestRenderTargets(t *testing.T) {
	b := newNoopBackend(t)

	if _, _, err := b.CreateRenderTarget(0, 8, 8); err == nil {
		t.Error("zero attachments: expected error")
	}
	id, attachments, err := b.CreateRenderTarget(3, 8, 8)
	if err != nil {
		t.Fatalf("CreateRenderTarget failed: %v", err)
	}
	if len(attachments) != 3 {
		t.Fatalf("attachments = %d, want 3", len(attachments))
	}

	// attachments live as long as the target
	b.DestroyTexture(attachments[0])
	if _, ok := b.textures[attachments[0]]; !ok {
		t.Error("DestroyTexture released a render target attachment")
	}

	b.DestroyRenderTarget(id)
	for _, a := range attachments {
		if _, ok := b.textures[a]; ok {
			t.Errorf("attachment %d survived its target", a)
		}
	}
	b.DestroyRenderTarget(id)
}

func TestBuffers(t *testing.T) {
	b := newNoopBackend(t)

	if _, err := b.CreateBuffer(0, gpucore.BufferUsageUniform); err == nil {
		t.Error("zero size: expected error")
	}
	id, err := b.CreateBuffer(12, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst)
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	b.WriteBuffer(id, 0, []byte{1, 2, 3, 4})
	b.WriteBuffer(id, 10, []byte{1, 2, 3, 4}) // out of range, dropped
	b.WriteBuffer(gpucore.InvalidID, 0, []byte{1})

	data, err := b.ReadBuffer(id)
	if err != nil {
		t.Fatalf("ReadBuffer failed: %v", err)
	}
	if len(data) != 12 {
		t.Errorf("ReadBuffer = %d bytes, want 12", len(data))
	}

	b.DestroyBuffer(id)
	if _, err := b.ReadBuffer(id); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("ReadBuffer(destroyed) err = %v, want ErrUnknownResource", err)
	}
}

func TestSubmitWaitsForCompletion(t *testing.T) {
	b := newNoopBackend(t)

	before := b.queue.PollCompleted()
	enc, err := b.beginEncoder("submit-test")
	if err != nil {
		t.Fatalf("beginEncoder failed: %v", err)
	}
	if err := b.submit(enc); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if got := b.queue.PollCompleted(); got <= before {
		t.Errorf("PollCompleted = %d after submit, want > %d", got, before)
	}

	b.waitTimeout = time.Millisecond
	if err := b.waitSubmission(b.queue.PollCompleted() + 1); !errors.Is(err, ErrGPUTimeout) {
		t.Errorf("waitSubmission(pending) err = %v, want ErrGPUTimeout", err)
	}
}

func TestExecuteCompute(t *testing.T) {
	b := newNoopBackend(t)
	id, info := mustCompile(t, b, "particles", computeWGSL)

	params, err := b.CreateBuffer(info.UniformBlocks[0].Size, gpucore.BufferUsageUniform)
	if err != nil {
		t.Fatal(err)
	}
	storage, err := b.CreateBuffer(info.BufferBlocks[0].Size*64, gpucore.BufferUsageStorage)
	if err != nil {
		t.Fatal(err)
	}

	d := &gpucore.Dispatch{
		Program: id,
		Mode:    gpucore.DispatchCompute,
		Groups:  [3]uint32{1, 1, 1},
		Values: []gpucore.ValueBinding{{
			Name: "gravity", Slot: info.Uniforms[0].Slot, Type: gpucore.VarFloat,
			Data: []byte{0, 0, 0x80, 0x3f},
		}},
		UniformBlocks: []gpucore.BufferBinding{{Name: "params", Slot: info.UniformBlocks[0].Slot, Buffer: params, Size: 8}},
		StorageBlocks: []gpucore.BufferBinding{{Name: "particles", Slot: info.BufferBlocks[0].Slot, Buffer: storage, Size: 32 * 64}},
	}
	if err := b.Execute(d); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// unresolved blocks fall back to zeroed buffers
	d.UniformBlocks, d.StorageBlocks = nil, nil
	if err := b.Execute(d); err != nil {
		t.Fatalf("Execute without blocks failed: %v", err)
	}
	if n := len(b.programs[id].fallback); n != 2 {
		t.Errorf("fallback buffers = %d, want 2", n)
	}

	d.Mode = gpucore.DispatchArray
	if err := b.Execute(d); !errors.Is(err, ErrModeUnsupported) {
		t.Errorf("array dispatch of compute program: err = %v, want ErrModeUnsupported", err)
	}
}

func TestExecuteRender(t *testing.T) {
	b := newNoopBackend(t)
	id, info := mustCompile(t, b, "blit", renderWGSL)
	if len(info.Samplers) != 1 {
		t.Fatalf("Samplers = %v, want one", info.Samplers)
	}

	tex, err := b.CreateTexture(2, 2, make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	target, _, err := b.CreateRenderTarget(2, 16, 16)
	if err != nil {
		t.Fatal(err)
	}

	d := &gpucore.Dispatch{
		Program:  id,
		Mode:     gpucore.DispatchArray,
		Target:   target,
		Topology: gpucore.TopologyTriangles,
		Count:    3,
		Textures: []gpucore.TextureBinding{{Name: "image", Slot: info.Uniforms[1].Slot, Texture: tex}},
	}
	if err := b.Execute(d); err != nil {
		t.Fatalf("Execute(target) failed: %v", err)
	}

	if _, _, _, err := b.ReadScreen(); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("ReadScreen before screen draw: err = %v", err)
	}
	d.Target = gpucore.InvalidID
	d.Width, d.Height = 32, 24
	d.Textures = nil
	if err := b.Execute(d); err != nil {
		t.Fatalf("Execute(screen) failed: %v", err)
	}
	pixels, w, h, err := b.ReadScreen()
	if err != nil {
		t.Fatalf("ReadScreen failed: %v", err)
	}
	if w != 32 || h != 24 || len(pixels) != 32*24*4 {
		t.Errorf("ReadScreen = %d bytes %dx%d, want 32x24", len(pixels), w, h)
	}
	if n := len(b.programs[id].render); n != 2 {
		t.Errorf("render pipelines = %d, want 2 (one per attachment count)", n)
	}

	d.Mode = gpucore.DispatchCompute
	if err := b.Execute(d); !errors.Is(err, ErrModeUnsupported) {
		t.Errorf("compute dispatch of render program: err = %v, want ErrModeUnsupported", err)
	}
	d.Program = 9999
	if err := b.Execute(d); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("unknown program: err = %v, want ErrUnknownResource", err)
	}
}

func TestClose(t *testing.T) {
	b, err := openAPI(noop.API{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateTexture(4, 4, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.CreateRenderTarget(1, 4, 4); err != nil {
		t.Fatal(err)
	}
	b.Close()
	if len(b.textures) != 0 || len(b.targets) != 0 {
		t.Error("Close left resources tracked")
	}
	b.Close()

	if _, err := b.CreateBuffer(4, gpucore.BufferUsageUniform); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateBuffer after Close: err = %v, want ErrClosed", err)
	}
	if err := b.Execute(&gpucore.Dispatch{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Execute after Close: err = %v, want ErrClosed", err)
	}
}

type fakeProvider struct {
	device, queue any
}

func (p fakeProvider) HalDevice() any { return p.device }
func (p fakeProvider) HalQueue() any  { return p.queue }

func TestNewFromProvider(t *testing.T) {
	owner := newNoopBackend(t)

	b, err := newFromHAL(fakeProvider{device: owner.device, queue: owner.queue})
	if err != nil {
		t.Fatalf("newFromHAL failed: %v", err)
	}
	if !b.external {
		t.Error("shared device must be external")
	}
	b.Close()
	if owner.device == nil {
		t.Error("closing a shared backend released the owner's device")
	}

	if _, err := newFromHAL(fakeProvider{device: 1, queue: owner.queue}); !errors.Is(err, ErrNoHALProvider) {
		t.Errorf("bad device: err = %v, want ErrNoHALProvider", err)
	}
	if _, err := newFromHAL(struct{}{}); !errors.Is(err, ErrNoHALProvider) {
		t.Errorf("no HAL methods: err = %v, want ErrNoHALProvider", err)
	}
}
