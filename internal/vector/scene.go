/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"chartnote/internal/geom"
	"chartnote/internal/render"
	"chartnote/internal/textlayout"
)

// Scene is the root of a retained drawing and the factory for its nodes.
type Scene struct {
	Width, Height float64
	Root          *Node

	Provider textlayout.Provider

	translates, animates int
	clips                []*Clip
}

// NewScene returns an empty scene of the given pixel size.
func NewScene(w, h float64) *Scene {
	s := &Scene{Width: w, Height: h}
	s.Root = &Node{scene: s, kind: KindGroup, name: "root"}
	return s
}

func (s *Scene) provider() textlayout.Provider {
	if s == nil || s.Provider == nil {
		return textlayout.BasicProvider{}
	}
	return s.Provider
}

// Group creates a detached group.
func (s *Scene) Group(name string) render.Element {
	return &Node{scene: s, kind: KindGroup, name: name}
}

// Shape creates a detached shape primitive. Unknown kinds yield an empty,
// never-hit shape so callers can treat it uniformly.
func (s *Scene) Shape(kind render.Kind, a render.Attrs) render.Element {
	return &Node{scene: s, kind: KindShape, name: string(kind), shape: kind, attrs: a.Clone()}
}

// Label creates a detached text label.
func (s *Scene) Label(text string, style render.TextStyle) render.Label {
	return &Node{scene: s, kind: KindLabel, name: "label", text: text, style: style}
}

// ClipRect creates a clip region.
func (s *Scene) ClipRect(r geom.Rect) render.Clip {
	c := &Clip{r: r}
	s.clips = append(s.clips, c)
	return c
}

// Clips returns the live clip regions in creation order.
func (s *Scene) Clips() []*Clip {
	out := s.clips[:0:0]
	for _, c := range s.clips {
		if !c.removed {
			out = append(out, c)
		}
	}
	return out
}

// Counts reports how many immediate and animated translations were applied.
func (s *Scene) Counts() (translates, animates int) { return s.translates, s.animates }

// Walk visits visible nodes depth-first in paint order. Returning false from
// fn skips the node's subtree.
func (s *Scene) Walk(fn func(n *Node, depth int) bool) {
	var walk func(n *Node, d int)
	walk = func(n *Node, d int) {
		if n.hidden || n.removed {
			return
		}
		if !fn(n, d) {
			return
		}
		for _, c := range n.children {
			walk(c, d+1)
		}
	}
	walk(s.Root, 0)
}

// Find returns the first node (in paint order) with the given name.
func (s *Scene) Find(name string) *Node {
	var found *Node
	s.Walk(func(n *Node, _ int) bool {
		if found == nil && n.name == name {
			found = n
		}
		return found == nil
	})
	return found
}

// Clip is a rectangular clip region in the clipped node's parent space.
type Clip struct {
	r       geom.Rect
	removed bool
}

func (c *Clip) SetRect(r geom.Rect) { c.r = r }
func (c *Clip) Rect() geom.Rect     { return c.r }
func (c *Clip) Destroy()            { c.removed = true }
func (c *Clip) Destroyed() bool     { return c.removed }
