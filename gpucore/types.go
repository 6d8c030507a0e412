// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

// Resource IDs
//
// These opaque IDs represent backend resources. Each backend implementation
// maintains a mapping between IDs and actual resources.
// IDs are uint64 to accommodate various backend handle sizes.

// ProgramID is an opaque handle to a compiled shader program.
type ProgramID uint64

// RenderTargetID is an opaque handle to a render target.
type RenderTargetID uint64

// TextureID is an opaque handle to a 2D texture or writable image.
type TextureID uint64

// BufferID is an opaque handle to a uniform or storage buffer.
type BufferID uint64

// InvalidID is the zero value, representing an invalid/null resource.
// Destroying InvalidID is a no-op on every backend.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageUniform indicates the buffer backs a uniform block.
	BufferUsageUniform BufferUsage = 1 << 0

	// BufferUsageStorage indicates the buffer backs a buffer (storage) block.
	BufferUsageStorage BufferUsage = 1 << 1

	// BufferUsageCopyDst indicates the buffer can be written from the CPU.
	BufferUsageCopyDst BufferUsage = 1 << 2

	// BufferUsageCopySrc indicates the buffer can be read back.
	BufferUsageCopySrc BufferUsage = 1 << 3
)

// VarType is the scalar or vector type of a shader variable.
type VarType uint8

// Variable types.
const (
	VarUnknown VarType = iota
	VarFloat
	VarFloat2
	VarFloat3
	VarFloat4
	VarInt
	VarInt2
	VarInt3
	VarInt4
	VarTexture
	VarImage
)

// Size returns the packed byte size of the type. Textures and images have
// no data size.
func (t VarType) Size() int {
	switch t {
	case VarFloat, VarInt:
		return 4
	case VarFloat2, VarInt2:
		return 8
	case VarFloat3, VarInt3:
		return 12
	case VarFloat4, VarInt4:
		return 16
	default:
		return 0
	}
}

// String returns the WGSL spelling of the type.
func (t VarType) String() string {
	switch t {
	case VarFloat:
		return "f32"
	case VarFloat2:
		return "vec2<f32>"
	case VarFloat3:
		return "vec3<f32>"
	case VarFloat4:
		return "vec4<f32>"
	case VarInt:
		return "i32"
	case VarInt2:
		return "vec2<i32>"
	case VarInt3:
		return "vec3<i32>"
	case VarInt4:
		return "vec4<i32>"
	case VarTexture:
		return "texture_2d<f32>"
	case VarImage:
		return "texture_storage_2d"
	default:
		return "unknown"
	}
}

// Topology is the primitive topology of an array draw.
type Topology uint8

// Draw topologies, in the order a UI lists them.
const (
	TopologyPoints Topology = iota
	TopologyLineStrip
	TopologyLineLoop
	TopologyLines
	TopologyLineStripAdjacency
	TopologyLinesAdjacency
	TopologyTriangleStrip
	TopologyTriangleFan
	TopologyTriangles
	TopologyTriangleStripAdjacency
)

var topologyNames = [...]string{
	"points",
	"line_strip",
	"line_loop",
	"lines",
	"line_strip_adjacency",
	"lines_adjacency",
	"triangle_strip",
	"triangle_fan",
	"triangles",
	"triangle_strip_adjacency",
}

// String returns the topology name.
func (t Topology) String() string {
	if int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return "unknown"
}

// Topologies returns every topology in display order.
func Topologies() []Topology {
	out := make([]Topology, len(topologyNames))
	for i := range out {
		out[i] = Topology(i)
	}
	return out
}

// DispatchMode selects how a program runs.
type DispatchMode uint8

const (
	// DispatchArray draws vertices into the program's render target.
	DispatchArray DispatchMode = iota

	// DispatchCompute runs a compute grid.
	DispatchCompute
)

// String returns the mode name.
func (m DispatchMode) String() string {
	if m == DispatchCompute {
		return "compute"
	}
	return "array"
}
