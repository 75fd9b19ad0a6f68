/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"math"

	"chartnote/internal/geom"
	"chartnote/internal/render"
)

// ToolKind selects the sizing behavior of a toolbar button.
type ToolKind uint8

const (
	ToolCircle ToolKind = iota
	ToolLine
	ToolRect
	ToolText
	toolCount
)

func (t ToolKind) String() string {
	switch t {
	case ToolCircle:
		return "circle"
	case ToolLine:
		return "line"
	case ToolRect:
		return "square"
	case ToolText:
		return "text"
	}
	return "unknown"
}

// ParseTool maps a button symbol onto its tool.
func ParseTool(symbol string) (ToolKind, bool) {
	switch symbol {
	case "circle":
		return ToolCircle, true
	case "line", "path":
		return ToolLine, true
	case "square", "rect":
		return ToolRect, true
	case "text":
		return ToolText, true
	}
	return toolCount, false
}

// tool is the sizing pair of one kind: step runs on every move and writes
// straight onto the primitive, stop commits on release.
type tool struct {
	step func(d *Drawer, a *Annotation, p geom.Pt)
	stop func(d *Drawer, a *Annotation, p geom.Pt)
}

// tools is indexed by ToolKind; a kind without an entry fails to compile.
var tools = [toolCount]tool{
	ToolCircle: {step: circleStep, stop: circleStop},
	ToolLine:   {step: lineStep, stop: lineStop},
	ToolRect:   {step: rectStep, stop: rectStop},
	ToolText:   {step: func(*Drawer, *Annotation, geom.Pt) {}, stop: textStop},
}

// live writes params onto the primitive and records them in the options
// without a full update.
func live(a *Annotation, p render.Attrs) {
	if a.shape != nil {
		a.shape.SetAttrs(p)
	}
	if a.opts.Shape != nil {
		a.opts.Shape.Params = a.opts.Shape.Params.Merge(p)
	}
}

func radius(d *Drawer, a *Annotation, p geom.Pt) (float64, bool) {
	s, _, ok := d.startScreen(a)
	if !ok {
		return 0, false
	}
	dx, dy := math.Abs(p.X-s.X), math.Abs(p.Y-s.Y)
	return float64(int(math.Sqrt(dx*dx + dy*dy))), true
}

func circleStep(d *Drawer, a *Annotation, p geom.Pt) {
	if r, ok := radius(d, a, p); ok {
		live(a, render.Attrs{R: render.F(r)})
	}
}

func circleStop(d *Drawer, a *Annotation, p geom.Pt) {
	r, ok := radius(d, a, p)
	if !ok {
		return
	}
	a.Update(Options{Shape: &Shape{Params: render.Attrs{R: render.F(r), X: render.F(-r), Y: render.F(-r)}}}, true)
}

func linePath(d *Drawer, a *Annotation, p geom.Pt) (render.Path, geom.Pt, Axes, bool) {
	s, ax, ok := d.startScreen(a)
	if !ok {
		return nil, s, ax, false
	}
	dx, dy := float64(int(p.X-s.X)), float64(int(p.Y-s.Y))
	return render.P("M", 0, 0, "L", dx, dy), s, ax, true
}

func lineStep(d *Drawer, a *Annotation, p geom.Pt) {
	if path, _, _, ok := linePath(d, a, p); ok {
		live(a, render.Attrs{D: path})
	}
}

func lineStop(d *Drawer, a *Annotation, p geom.Pt) {
	path, s, ax, ok := linePath(d, a, p)
	if !ok {
		return
	}
	xe, ye := ax.ToValues(geom.Pt{X: s.X + path[4].V, Y: s.Y + path[5].V})
	a.Update(Options{XValueEnd: F(xe), YValueEnd: F(ye), Shape: &Shape{Params: render.Attrs{D: path}}}, true)
}

// rectParams sizes the rectangle from the start point to p. Dragging up or
// left moves the origin so width and height stay positive.
func rectParams(d *Drawer, a *Annotation, p geom.Pt) (render.Attrs, bool) {
	s, _, ok := d.startScreen(a)
	if !ok {
		return render.Attrs{}, false
	}
	w := math.Round(p.X-s.X) + 1
	h := math.Round(p.Y-s.Y) + 1
	x, y := 0.0, 0.0
	if w < 0 {
		x = w
	}
	if h < 0 {
		y = h
	}
	return render.Attrs{X: render.F(x), Y: render.F(y), Width: render.F(math.Abs(w)), Height: render.F(math.Abs(h))}, true
}

func rectStep(d *Drawer, a *Annotation, p geom.Pt) {
	if r, ok := rectParams(d, a, p); ok {
		live(a, r)
	}
}

func rectStop(d *Drawer, a *Annotation, p geom.Pt) {
	if r, ok := rectParams(d, a, p); ok {
		a.Update(Options{Shape: &Shape{Params: r}}, true)
	}
}

func textStop(d *Drawer, a *Annotation, p geom.Pt) {
	d.showInput(a, p)
}
