// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"slices"

	"github.com/gogpu/shadergraph/gpucore"
)

// Payload is the variant-specific state of a node. It is implemented only by
// the payload types of this package.
type Payload interface {
	Kind() NodeKind
	payload()
}

// EventData is the payload of the Init and Frame event nodes.
type EventData struct {
	Event EventKind
}

// ProgramData is the payload of a Program node.
type ProgramData struct {
	// Program and Target are library entries owned by the editor.
	Program *gpucore.Program
	Target  *gpucore.RenderTarget

	Mode     gpucore.DispatchMode
	Topology gpucore.Topology

	// Size is the vertex count in Size[0] for array dispatch and the work
	// group grid for compute dispatch.
	Size [3]uint32

	// AttachmentStart is the output index of the first render target
	// attachment pin.
	AttachmentStart int
}

// BlockData is the payload of a Block node. The node's input pins are the
// block fields; its single output carries the packed block.
type BlockData struct {
	// Size is the packed byte size of one block element.
	Size int

	// Repeat is the number of elements in the storage buffer.
	Repeat int

	Uniform gpucore.BufferID
	Storage gpucore.BufferID
}

// TextureData is the payload of a Texture node.
type TextureData struct {
	Texture *gpucore.Texture
}

// ImageData is the payload of an Image node, a writable texture owned by
// the node.
type ImageData struct {
	Width  int
	Height int
	Image  gpucore.TextureID
}

// PingPongData is the payload of a PingPong node.
type PingPongData struct {
	Sub PingPongKind

	// Size is shared by all four pins. For Block it is 0 until the first
	// link fixes it.
	Size int
}

// TimeData is the payload of a Time node.
type TimeData struct{}

// MousePosData is the payload of a MousePos node.
type MousePosData struct{}

func (*EventData) Kind() NodeKind    { return NodeEvent }
func (*ProgramData) Kind() NodeKind  { return NodeProgram }
func (*BlockData) Kind() NodeKind    { return NodeBlock }
func (*TextureData) Kind() NodeKind  { return NodeTexture }
func (*ImageData) Kind() NodeKind    { return NodeImage }
func (*PingPongData) Kind() NodeKind { return NodePingPong }
func (*TimeData) Kind() NodeKind     { return NodeTime }
func (*MousePosData) Kind() NodeKind { return NodeMousePos }

func (*EventData) payload()    {}
func (*ProgramData) payload()  {}
func (*BlockData) payload()    {}
func (*TextureData) payload()  {}
func (*ImageData) payload()    {}
func (*PingPongData) payload() {}
func (*TimeData) payload()     {}
func (*MousePosData) payload() {}

// Node is a graph node: ordered input and output pins plus a payload.
type Node struct {
	// Pos is the canvas position, passed through untouched.
	Pos Vec2

	id   NodeID
	in   []PinID
	out  []PinID
	data Payload
}

// ID returns the node identity.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the variant tag.
func (n *Node) Kind() NodeKind { return n.data.Kind() }

// Data returns the payload.
func (n *Node) Data() Payload { return n.data }

// Inputs returns a copy of the input pin list.
func (n *Node) Inputs() []PinID { return slices.Clone(n.in) }

// Outputs returns a copy of the output pin list.
func (n *Node) Outputs() []PinID { return slices.Clone(n.out) }

// NumInputs returns the number of input pins.
func (n *Node) NumInputs() int { return len(n.in) }

// NumOutputs returns the number of output pins.
func (n *Node) NumOutputs() int { return len(n.out) }

// Input returns input pin i.
func (n *Node) Input(i int) PinID { return n.in[i] }

// Output returns output pin i.
func (n *Node) Output(i int) PinID { return n.out[i] }

// Event returns the payload of an Event node, or nil.
func (n *Node) Event() *EventData {
	d, _ := n.data.(*EventData)
	return d
}

// Program returns the payload of a Program node, or nil.
func (n *Node) Program() *ProgramData {
	d, _ := n.data.(*ProgramData)
	return d
}

// Block returns the payload of a Block node, or nil.
func (n *Node) Block() *BlockData {
	d, _ := n.data.(*BlockData)
	return d
}

// Texture returns the payload of a Texture node, or nil.
func (n *Node) Texture() *TextureData {
	d, _ := n.data.(*TextureData)
	return d
}

// Image returns the payload of an Image node, or nil.
func (n *Node) Image() *ImageData {
	d, _ := n.data.(*ImageData)
	return d
}

// PingPong returns the payload of a PingPong node, or nil.
func (n *Node) PingPong() *PingPongData {
	d, _ := n.data.(*PingPongData)
	return d
}

// pins returns inputs followed by outputs.
func (n *Node) pins() []PinID {
	return append(slices.Clone(n.in), n.out...)
}

func (n *Node) detach(p PinID) {
	n.in = slices.DeleteFunc(n.in, func(x PinID) bool { return x == p })
	n.out = slices.DeleteFunc(n.out, func(x PinID) bool { return x == p })
}
