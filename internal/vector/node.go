/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Retained scene graph implementing render.Renderer. Every element is a Node;
// groups carry children and a translation, shapes carry attributes, labels
// carry text measured through textlayout.

import (
	"math"

	"chartnote/internal/geom"
	"chartnote/internal/render"
	"chartnote/internal/textlayout"
)

// NodeKind discriminates the node variants.
type NodeKind uint8

const (
	KindGroup NodeKind = iota
	KindShape
	KindLabel
)

// Node is one element of the scene. It satisfies render.Element and
// render.Label; SetText/SetStyle are no-ops on non-label nodes.
type Node struct {
	scene    *Scene
	kind     NodeKind
	name     string
	shape    render.Kind
	attrs    render.Attrs
	text     string
	style    render.TextStyle
	parent   *Node
	children []*Node

	tx, ty  float64
	hasT    bool
	hidden  bool
	clip    *Clip
	removed bool
}

func (n *Node) Kind() NodeKind              { return n.kind }
func (n *Node) Name() string                { return n.name }
func (n *Node) Shape() render.Kind          { return n.shape }
func (n *Node) Parent() *Node               { return n.parent }
func (n *Node) Children() []*Node           { return n.children }
func (n *Node) Attrs() render.Attrs         { return n.attrs.Clone() }
func (n *Node) Text() string                { return n.text }
func (n *Node) Style() render.TextStyle     { return n.style }
func (n *Node) Clip() *Clip                 { return n.clip }
func (n *Node) Visible() bool               { return !n.hidden }
func (n *Node) SetVisible(v bool)           { n.hidden = !v }
func (n *Node) Destroyed() bool             { return n.removed }
func (n *Node) SetStyle(s render.TextStyle) { n.style = n.style.Merge(s) }
func (n *Node) SetText(s string)            { n.text = s }

// Add attaches n as the last (top-most) child of parent, detaching it from
// any previous parent. A nil parent means the scene root; parents from
// another renderer are ignored.
func (n *Node) Add(parent render.Element) {
	var p *Node
	if parent == nil {
		if n.scene != nil {
			p = n.scene.Root
		}
	} else {
		p, _ = parent.(*Node)
	}
	if p == nil || p == n || p.removed || n.removed {
		return
	}
	n.detach()
	n.parent = p
	p.children = append(p.children, n)
}

func (n *Node) SetAttrs(a render.Attrs) { n.attrs = n.attrs.Merge(a) }

func (n *Node) Translate(x, y float64) {
	n.tx, n.ty, n.hasT = x, y, true
	if n.scene != nil {
		n.scene.translates++
	}
}

// Animate moves to the target translation. The scene has no timeline, so the
// end state is applied at once; the call is counted separately.
func (n *Node) Animate(x, y float64) {
	n.tx, n.ty, n.hasT = x, y, true
	if n.scene != nil {
		n.scene.animates++
	}
}

func (n *Node) Translation() (float64, float64, bool) { return n.tx, n.ty, n.hasT }

func (n *Node) SetClip(c render.Clip) {
	cr, _ := c.(*Clip)
	n.clip = cr
}

// Destroy removes the node and its subtree. Calling it twice is harmless.
func (n *Node) Destroy() {
	if n.removed {
		return
	}
	for len(n.children) > 0 {
		n.children[len(n.children)-1].Destroy()
	}
	n.detach()
	n.removed = true
	n.clip = nil
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	sib := n.parent.children
	for i, c := range sib {
		if c == n {
			n.parent.children = append(sib[:i:i], sib[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// BBox returns the bounds in the node's own space. Hidden children do not
// count; children translations do.
func (n *Node) BBox() geom.Rect {
	switch n.kind {
	case KindShape:
		return shapeBounds(n.shape, n.attrs)
	case KindLabel:
		sz := textlayout.Measure(n.scene.provider(), n.text, n.style.FontSize)
		return geom.R(render.Val(n.attrs.X, 0), render.Val(n.attrs.Y, 0), sz.W, sz.H)
	}
	var b geom.Rect
	first := true
	for _, c := range n.children {
		if c.hidden {
			continue
		}
		cb := c.BBox().Offset(c.tx, c.ty)
		if first {
			b, first = cb, false
		} else {
			b = b.Union(cb)
		}
	}
	return b
}

// Hit tests p given in the parent's space. Children are tested top-most first.
func (n *Node) Hit(p geom.Pt) bool {
	if n.hidden || n.removed {
		return false
	}
	if n.clip != nil && !n.clip.r.Contains(p) {
		return false
	}
	q := geom.Pt{X: p.X - n.tx, Y: p.Y - n.ty}
	switch n.kind {
	case KindShape:
		return shapeHit(n.shape, n.attrs, q)
	case KindLabel:
		return n.BBox().Contains(q)
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].Hit(q) {
			return true
		}
	}
	return false
}

// Offset returns the sum of translations of n and all its ancestors, i.e. the
// mapping from n's own space to scene space.
func (n *Node) Offset() geom.Pt {
	var o geom.Pt
	for c := n; c != nil; c = c.parent {
		o.X += c.tx
		o.Y += c.ty
	}
	return o
}

// SceneBBox is BBox expressed in scene coordinates.
func (n *Node) SceneBBox() geom.Rect {
	o := n.Offset()
	return n.BBox().Offset(o.X, o.Y)
}

func shapeBounds(k render.Kind, a render.Attrs) geom.Rect {
	switch k {
	case render.KindCircle:
		r := math.Abs(render.Val(a.R, 0))
		return geom.R(render.Val(a.X, 0)-r, render.Val(a.Y, 0)-r, 2*r, 2*r)
	case render.KindRect:
		x, y := render.Val(a.X, 0), render.Val(a.Y, 0)
		w, h := render.Val(a.Width, 0), render.Val(a.Height, 0)
		if w < 0 {
			x, w = x+w, -w
		}
		if h < 0 {
			y, h = y+h, -h
		}
		return geom.R(x, y, w, h)
	case render.KindPath:
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		a.D.Pairs(func(_ int, x, y float64) {
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		})
		if math.IsInf(minX, 1) {
			return geom.Rect{}
		}
		return geom.R(minX, minY, maxX-minX, maxY-minY)
	}
	return geom.Rect{}
}

func shapeHit(k render.Kind, a render.Attrs, q geom.Pt) bool {
	// stroke counts as part of the shape
	sw := render.Val(a.StrokeWidth, 1) / 2
	switch k {
	case render.KindCircle:
		r := math.Abs(render.Val(a.R, 0)) + sw
		dx, dy := q.X-render.Val(a.X, 0), q.Y-render.Val(a.Y, 0)
		return dx*dx+dy*dy <= r*r
	case render.KindPath:
		// thin lines get a few pixels of slack
		slack := math.Max(sw, 3)
		return shapeBounds(k, a).Inset(-slack, -slack).Contains(q)
	}
	return shapeBounds(k, a).Inset(-sw, -sw).Contains(q)
}
