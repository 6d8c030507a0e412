// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"fmt"

	"github.com/gogpu/shadergraph/gpucore"
)

// PinKind is the data type carried by a pin.
type PinKind uint8

// Pin kinds.
const (
	KindFlow PinKind = iota
	KindFloat
	KindFloat2
	KindFloat3
	KindFloat4
	KindInt
	KindInt2
	KindInt3
	KindInt4
	KindBlock
	KindTexture
	KindImage
)

var pinKindNames = [...]string{
	KindFlow:    "flow",
	KindFloat:   "float",
	KindFloat2:  "float2",
	KindFloat3:  "float3",
	KindFloat4:  "float4",
	KindInt:     "int",
	KindInt2:    "int2",
	KindInt3:    "int3",
	KindInt4:    "int4",
	KindBlock:   "block",
	KindTexture: "texture",
	KindImage:   "image",
}

func (k PinKind) String() string {
	if int(k) < len(pinKindNames) {
		return pinKindNames[k]
	}
	return fmt.Sprintf("PinKind(%d)", k)
}

// Size returns the fixed byte size of a scalar kind. Flow, Texture and Image
// pins carry no data; Block pins carry their own size.
func (k PinKind) Size() int {
	return k.VarType().Size()
}

// IsScalar reports whether k is one of the float or int kinds.
func (k PinKind) IsScalar() bool {
	return k >= KindFloat && k <= KindInt4
}

// IsInt reports whether k is one of the int kinds.
func (k PinKind) IsInt() bool {
	return k >= KindInt && k <= KindInt4
}

// Components returns the vector width of a scalar kind.
func (k PinKind) Components() int {
	switch k {
	case KindFloat, KindInt:
		return 1
	case KindFloat2, KindInt2:
		return 2
	case KindFloat3, KindInt3:
		return 3
	case KindFloat4, KindInt4:
		return 4
	default:
		return 0
	}
}

// VarType returns the shader variable type of k.
func (k PinKind) VarType() gpucore.VarType {
	switch k {
	case KindFloat:
		return gpucore.VarFloat
	case KindFloat2:
		return gpucore.VarFloat2
	case KindFloat3:
		return gpucore.VarFloat3
	case KindFloat4:
		return gpucore.VarFloat4
	case KindInt:
		return gpucore.VarInt
	case KindInt2:
		return gpucore.VarInt2
	case KindInt3:
		return gpucore.VarInt3
	case KindInt4:
		return gpucore.VarInt4
	case KindTexture:
		return gpucore.VarTexture
	case KindImage:
		return gpucore.VarImage
	default:
		return gpucore.VarUnknown
	}
}

// KindOf maps a shader variable type to a pin kind. ok is false for types
// that have no pin.
func KindOf(t gpucore.VarType) (PinKind, bool) {
	switch t {
	case gpucore.VarFloat:
		return KindFloat, true
	case gpucore.VarFloat2:
		return KindFloat2, true
	case gpucore.VarFloat3:
		return KindFloat3, true
	case gpucore.VarFloat4:
		return KindFloat4, true
	case gpucore.VarInt:
		return KindInt, true
	case gpucore.VarInt2:
		return KindInt2, true
	case gpucore.VarInt3:
		return KindInt3, true
	case gpucore.VarInt4:
		return KindInt4, true
	case gpucore.VarTexture:
		return KindTexture, true
	case gpucore.VarImage:
		return KindImage, true
	default:
		return 0, false
	}
}

// Direction is the side of a node a pin sits on.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// BlockRole tells which kind of program block a Block input binds.
type BlockRole uint8

const (
	RoleNone BlockRole = iota
	RoleUniformBlock
	RoleBufferBlock
)

// NodeKind is the variant tag of a node.
type NodeKind uint8

// Node kinds.
const (
	NodeEvent NodeKind = iota
	NodeProgram
	NodeBlock
	NodeTexture
	NodeImage
	NodePingPong
	NodeTime
	NodeMousePos
)

var nodeKindNames = [...]string{
	NodeEvent:    "event",
	NodeProgram:  "program",
	NodeBlock:    "block",
	NodeTexture:  "texture",
	NodeImage:    "image",
	NodePingPong: "pingpong",
	NodeTime:     "time",
	NodeMousePos: "mousepos",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// EventKind selects the phase an Event node starts.
type EventKind uint8

const (
	EventInit EventKind = iota
	EventFrame
)

func (k EventKind) String() string {
	if k == EventFrame {
		return "frame"
	}
	return "init"
}

// PingPongKind is the resource kind a PingPong node double-buffers.
type PingPongKind uint8

const (
	PingPongBlock PingPongKind = iota
	PingPongImage
)

// PinKind returns the kind of the node's four pins.
func (k PingPongKind) PinKind() PinKind {
	if k == PingPongImage {
		return KindImage
	}
	return KindBlock
}

// emptySize is the shared size of an unlinked PingPong node.
func (k PingPongKind) emptySize() int {
	if k == PingPongImage {
		return 1
	}
	return 0
}

func (k PingPongKind) String() string {
	if k == PingPongImage {
		return "image"
	}
	return "block"
}

// Vec2 is a node position on the editor canvas. The graph only stores it.
type Vec2 struct {
	X, Y float32
}
