// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"strings"

	"github.com/gogpu/shadergraph"
	"github.com/gogpu/shadergraph/gpucore"
	"github.com/gogpu/shadergraph/graph"
)

// workgroupSize is the tile a compute program is assumed to cover per
// work group when its grid is sized to the render size.
const workgroupSize = 8

// scene lays programs out as one Frame chain. Every program but the last
// draws into its own render target whose first attachment feeds the first
// texture input of the next program. Remaining texture inputs take library
// textures in turn; inputs named time or mouse are fed by a Time or MousePos
// node; blocks and images get nodes of their own.
type scene struct {
	ed *shadergraph.Editor
	g  *graph.Graph

	textures []graph.NodeID
	nextTex  int
	timeNode graph.NodeID
	mouse    graph.NodeID
	x        float32
}

func buildScene(ed *shadergraph.Editor, programs []*gpucore.Program) ([]graph.NodeID, error) {
	s := &scene{ed: ed, g: ed.Graph()}
	for i, t := range ed.Textures() {
		id, err := ed.AddTextureNode(graph.Vec2{X: -200, Y: float32(i) * 100}, t)
		if err != nil {
			return nil, err
		}
		s.textures = append(s.textures, id)
	}

	nodes := make([]graph.NodeID, 0, len(programs))
	prev := s.g.EventNode(graph.EventFrame)
	var feed graph.PinID
	for i, p := range programs {
		target := ed.Screen()
		if i < len(programs)-1 && canRender(p) {
			var err error
			if target, err = ed.AddRenderTarget(fmt.Sprintf("pass%d", i), 1); err != nil {
				return nil, err
			}
		}
		s.x += 250
		id, err := ed.AddProgramNode(graph.Vec2{X: s.x}, p, target)
		if err != nil {
			return nil, err
		}
		if err := s.dispatch(id, p); err != nil {
			return nil, err
		}
		if err := s.link(s.node(prev).Output(0), s.node(id).Input(0)); err != nil {
			return nil, err
		}
		if err := s.feedInputs(id, feed); err != nil {
			return nil, err
		}

		feed = graph.PinID{}
		n := s.node(id)
		if pd := n.Program(); pd.AttachmentStart < n.NumOutputs() {
			feed = n.Output(pd.AttachmentStart)
		}
		nodes = append(nodes, id)
		prev = id
	}
	return nodes, nil
}

func canRender(p *gpucore.Program) bool {
	return p.Info.VertexEntry != "" && p.Info.FragmentEntry != ""
}

func (s *scene) node(id graph.NodeID) *graph.Node {
	n, _ := s.g.Node(id)
	return n
}

func (s *scene) link(a, b graph.PinID) error {
	if _, r := s.ed.TryLink(a, b); r != graph.RejectNone {
		return fmt.Errorf("link %v to %v: %s", a, b, r)
	}
	return nil
}

func (s *scene) dispatch(id graph.NodeID, p *gpucore.Program) error {
	if canRender(p) || p.Info.ComputeEntry == "" {
		return s.ed.SetDispatch(id, gpucore.DispatchArray, gpucore.TopologyTriangles, [3]uint32{3, 1, 1})
	}
	w, h := s.ed.RenderSize()
	groups := [3]uint32{
		uint32((w + workgroupSize - 1) / workgroupSize), //nolint:gosec // render size is positive
		uint32((h + workgroupSize - 1) / workgroupSize), //nolint:gosec // render size is positive
		1,
	}
	return s.ed.SetDispatch(id, gpucore.DispatchCompute, gpucore.TopologyTriangles, groups)
}

// feedInputs links a source to every data input of a Program node.
func (s *scene) feedInputs(id graph.NodeID, feed graph.PinID) error {
	for i, pid := range s.node(id).Inputs() {
		if i == 0 {
			continue
		}
		p, _ := s.g.Pin(pid)
		var err error
		switch name := strings.ToLower(p.Name); {
		case p.Kind() == graph.KindTexture && feed.Valid():
			err = s.link(feed, pid)
			feed = graph.PinID{}
		case p.Kind() == graph.KindTexture && len(s.textures) > 0:
			tex := s.textures[s.nextTex%len(s.textures)]
			s.nextTex++
			err = s.link(s.node(tex).Output(0), pid)
		case p.Kind() == graph.KindFloat && name == "time":
			if !s.timeNode.Valid() {
				s.timeNode = s.ed.AddTimeNode(graph.Vec2{X: s.x - 125, Y: 200})
			}
			err = s.link(s.node(s.timeNode).Output(0), pid)
		case p.Kind() == graph.KindFloat2 && name == "mouse":
			if !s.mouse.Valid() {
				s.mouse = s.ed.AddMousePosNode(graph.Vec2{X: s.x - 125, Y: 300})
			}
			err = s.link(s.node(s.mouse).Output(0), pid)
		case p.Kind() == graph.KindBlock:
			_, err = s.ed.AddBlockNodeFromPin(graph.Vec2{X: s.x - 125, Y: float32(i) * 80}, pid)
		case p.Kind() == graph.KindImage:
			err = s.image(pid, i)
		}
		if err != nil {
			return fmt.Errorf("input %q: %w", p.Name, err)
		}
	}
	return nil
}

func (s *scene) image(pid graph.PinID, i int) error {
	w, h := s.ed.RenderSize()
	img, err := s.ed.AddImageNode(graph.Vec2{X: s.x - 125, Y: float32(i) * 80}, min(w, graph.MaxImageSize), min(h, graph.MaxImageSize))
	if err != nil {
		return err
	}
	return s.link(s.node(img).Output(0), pid)
}
