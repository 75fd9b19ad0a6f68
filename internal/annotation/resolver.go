/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

// Geometry resolution: pure functions from options plus axis state to pixel
// geometry. Nothing here touches the renderer.

import (
	"math"

	"chartnote/internal/chart"
	"chartnote/internal/geom"
	"chartnote/internal/render"
)

var alignFactor = map[string]float64{
	"top":    0,
	"left":   0,
	"center": 0.5,
	"middle": 0.5,
	"bottom": 1,
	"right":  1,
}

// AlignFactor maps an anchor name to its factor; unknown or empty names are
// centered.
func AlignFactor(name string) float64 {
	if f, ok := alignFactor[name]; ok {
		return f
	}
	return 0.5
}

// Align returns the group translation placing the anchor point of a box of
// the given size at pos.
func Align(pos geom.Pt, size geom.Size, anchorX, anchorY string) geom.Pt {
	return geom.Pt{
		X: pos.X - size.W*AlignFactor(anchorX),
		Y: pos.Y - size.H*AlignFactor(anchorY),
	}
}

// Axes is the axis pair an annotation resolves through, plus orientation.
type Axes struct {
	X, Y     chart.Axis
	Inverted bool
}

// AxesFor looks up the axis pair of o on c. ok is false when either axis is
// missing.
func AxesFor(c chart.Chart, o Options) (Axes, bool) {
	ax := Axes{X: c.XAxis(o.XAxisIndex()), Y: c.YAxis(o.YAxisIndex()), Inverted: c.Inverted()}
	return ax, ax.X != nil && ax.Y != nil
}

// horizontal and vertical return the axis running along each screen axis.
func (a Axes) horizontal() chart.Axis {
	if a.Inverted {
		return a.Y
	}
	return a.X
}

func (a Axes) vertical() chart.Axis {
	if a.Inverted {
		return a.X
	}
	return a.Y
}

// ToScreen converts a value pair to chart pixels honoring inversion.
func (a Axes) ToScreen(xv, yv float64) geom.Pt {
	px, py := a.X.ToPixels(xv), a.Y.ToPixels(yv)
	if a.Inverted {
		px, py = py, px
	}
	return geom.Pt{X: px, Y: py}
}

// ToValues is the inverse of ToScreen.
func (a Axes) ToValues(p geom.Pt) (xv, yv float64) {
	if a.Inverted {
		return a.X.ToValue(p.Y), a.Y.ToValue(p.X)
	}
	return a.X.ToValue(p.X), a.Y.ToValue(p.Y)
}

// ResolvePosition returns the pixel position of o before alignment. Value
// fields win over pixel fields. When both value fields are set on an
// inverted chart the pair is swapped. ok is false when either coordinate is
// not a finite number, e.g. before the axes are laid out.
func ResolvePosition(o Options, ax Axes) (geom.Pt, bool) {
	x, y := math.NaN(), math.NaN()
	if o.XValue != nil {
		x = ax.X.ToPixels(*o.XValue)
	} else if o.X != nil {
		x = *o.X
	}
	if o.YValue != nil {
		y = ax.Y.ToPixels(*o.YValue)
	} else if o.Y != nil {
		y = *o.Y
	}
	if swapsAxes(o, ax.Inverted) {
		x, y = y, x
	}
	if !geom.Finite(x, y) {
		return geom.Pt{}, false
	}
	return geom.Pt{X: x, Y: y}, true
}

// ResolveShape returns the primitive attributes for o's shape drawn in a
// group whose origin is pos.
func ResolveShape(o Options, pos geom.Pt, ax Axes) render.Attrs {
	if o.Shape == nil {
		return render.Attrs{}
	}
	p := o.Shape.Params.Clone()
	kind, _ := o.Shape.Kind()

	if o.Units == UnitsValues {
		h, v := ax.horizontal(), ax.vertical()
		// value-space lengths have no origin: convert as pixel deltas
		delta := func(a chart.Axis, val float64) float64 { return a.ToPixels(val) - a.ToPixels(0) }
		if p.X != nil {
			p.X = render.F(delta(h, *p.X))
		}
		if p.Width != nil {
			p.Width = render.F(delta(h, *p.Width))
		}
		if p.Y != nil {
			p.Y = render.F(delta(v, *p.Y))
		}
		if p.Height != nil {
			p.Height = render.F(delta(v, *p.Height))
		}
		if kind == render.KindPath {
			p.D = TranslatePath(p.D, ax, pos)
		}
	}

	if kind == render.KindPath && o.XValueEnd != nil && o.YValueEnd != nil {
		if i, ok := p.D.LastPair(); ok {
			end := ax.ToScreen(*o.XValueEnd, *o.YValueEnd)
			p.D = p.D.Clone()
			p.D[i].V = end.X - pos.X
			p.D[i+1].V = end.Y - pos.Y
		}
	}

	switch kind {
	case render.KindCircle:
		// params give the top-left of the bounding box
		r := render.Val(p.R, 0)
		p.X = render.F(render.Val(p.X, 0) + r)
		p.Y = render.F(render.Val(p.Y, 0) + r)
	case render.KindRect:
		x, w := render.Val(p.X, 0), render.Val(p.Width, 0)
		if w < 0 {
			x, w = x+w, -w
		}
		y, hh := render.Val(p.Y, 0), render.Val(p.Height, 0)
		if hh < 0 {
			y, hh = y+hh, -hh
		}
		p.X, p.Y, p.Width, p.Height = render.F(x), render.F(y), render.F(w), render.F(hh)
	}
	return p
}

// TranslatePath converts every numeric pair of a value-space path into
// pixels relative to origin. Command tokens pass through.
func TranslatePath(d render.Path, ax Axes, origin geom.Pt) render.Path {
	out := d.Clone()
	d.Pairs(func(i int, x, y float64) {
		p := ax.ToScreen(x, y)
		out[i].V = p.X - origin.X
		out[i+1].V = p.Y - origin.Y
	})
	return out
}

// BoxSize returns the explicit size from options, falling back to measured
// per dimension.
func BoxSize(o Options, measured geom.Rect) geom.Size {
	s := geom.Size{W: measured.W, H: measured.H}
	if o.Width != nil && geom.Finite(*o.Width) {
		s.W = *o.Width
	}
	if o.Height != nil && geom.Finite(*o.Height) {
		s.H = *o.Height
	}
	return s
}
