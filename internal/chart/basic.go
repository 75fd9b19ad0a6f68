/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package chart

import (
	"fmt"
	"math"

	"chartnote/internal/geom"
	"chartnote/internal/render"
)

// AxisRange is the initial extent of an axis.
type AxisRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// PaneSpec describes a y axis and the band of the plot it occupies. Top and
// Height are fractions of the plot; a zero Height means the full plot.
type PaneSpec struct {
	AxisRange `yaml:",inline" json:",inline"`
	Top       float64 `yaml:"top,omitempty" json:"top,omitempty"`
	Height    float64 `yaml:"height,omitempty" json:"height,omitempty"`
}

// Options configures a Basic chart.
type Options struct {
	Width, Height float64
	Plot          geom.Rect
	Inverted      bool
	XAxes         []AxisRange
	YAxes         []PaneSpec
}

// Basic is a minimal line chart: linear axes, stacked panes, series of points
// and a redraw notification. It draws its series into the renderer so
// exports show what annotations sit on.
type Basic struct {
	opts     Options
	renderer render.Renderer
	xAxes    []*LinearAxis
	yAxes    []*LinearAxis
	panes    []PaneSpec
	series   []*BasicSeries

	animating bool
	redraws   int
	subs      []*subscription
	nextSub   int
	plotGroup render.Element
	content   render.Element
}

type subscription struct {
	id int
	fn func()
}

// NewBasic lays out a chart. Missing axes default to one [0,100] axis each.
func NewBasic(r render.Renderer, o Options) *Basic {
	if len(o.XAxes) == 0 {
		o.XAxes = []AxisRange{{Min: 0, Max: 100}}
	}
	if len(o.YAxes) == 0 {
		o.YAxes = []PaneSpec{{AxisRange: AxisRange{Min: 0, Max: 100}}}
	}
	c := &Basic{opts: o, renderer: r}
	if r != nil {
		// created first so the series stay below anything added later
		c.plotGroup = r.Group("series")
		c.plotGroup.Add(nil)
	}
	for i, xr := range o.XAxes {
		c.xAxes = append(c.xAxes, NewLinearAxis(i, xr.Min, xr.Max, !o.Inverted, o.Plot))
	}
	for _, p := range o.YAxes {
		c.addPane(p)
	}
	c.layout()
	return c
}

func (c *Basic) addPane(p PaneSpec) {
	a := NewLinearAxis(len(c.yAxes), p.Min, p.Max, c.opts.Inverted, geom.Rect{})
	c.yAxes = append(c.yAxes, a)
	c.panes = append(c.panes, p)
}

func (c *Basic) layout() {
	plot := c.opts.Plot
	for _, a := range c.xAxes {
		a.SetPane(plot)
		// inverted x axes run top to bottom
		a.Reversed = c.opts.Inverted
	}
	for i, a := range c.yAxes {
		p := c.panes[i]
		h := p.Height
		if h <= 0 {
			h = 1
		}
		if c.opts.Inverted {
			a.SetPane(geom.R(plot.X+p.Top*plot.W, plot.Y, h*plot.W, plot.H))
		} else {
			a.SetPane(geom.R(plot.X, plot.Y+p.Top*plot.H, plot.W, h*plot.H))
		}
	}
}

func (c *Basic) Renderer() render.Renderer { return c.renderer }
func (c *Basic) PlotBox() geom.Rect        { return c.opts.Plot }
func (c *Basic) Inverted() bool            { return c.opts.Inverted }
func (c *Basic) Animating() bool           { return c.animating }
func (c *Basic) YAxisCount() int           { return len(c.yAxes) }
func (c *Basic) Size() geom.Size           { return geom.Size{W: c.opts.Width, H: c.opts.Height} }

// Redraws reports how many times Redraw ran.
func (c *Basic) Redraws() int { return c.redraws }

func (c *Basic) XAxis(i int) Axis {
	if i < 0 || i >= len(c.xAxes) {
		return nil
	}
	return c.xAxes[i]
}

func (c *Basic) YAxis(i int) Axis {
	if i < 0 || i >= len(c.yAxes) {
		return nil
	}
	return c.yAxes[i]
}

// IsInsidePlot takes plot-relative coordinates.
func (c *Basic) IsInsidePlot(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= c.opts.Plot.W && y <= c.opts.Plot.H
}

func (c *Basic) Get(id string) Object {
	for _, s := range c.series {
		if s.id == id {
			return s
		}
		for _, p := range s.points {
			if p.id == id {
				return p
			}
		}
	}
	return nil
}

func (c *Basic) OnRedraw(fn func()) func() {
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, &subscription{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Redraw lays the chart out again, repaints the series and notifies
// subscribers in subscription order.
func (c *Basic) Redraw() {
	c.layout()
	c.paint()
	c.redraws++
	for _, s := range append([]*subscription(nil), c.subs...) {
		s.fn()
	}
}

// SetAnimating marks the chart as mid-animation.
func (c *Basic) SetAnimating(v bool) { c.animating = v }

// Resize changes the chart and plot box.
func (c *Basic) Resize(w, h float64, plot geom.Rect) {
	c.opts.Width, c.opts.Height, c.opts.Plot = w, h, plot
	c.layout()
}

// AddPane adds a y axis at runtime and returns its index.
func (c *Basic) AddPane(p PaneSpec) int {
	c.opts.YAxes = append(c.opts.YAxes, p)
	c.addPane(p)
	c.layout()
	return len(c.yAxes) - 1
}

// SetExtremes zooms an x (horizontal=true) or y axis.
func (c *Basic) SetExtremes(x bool, index int, min, max float64) error {
	axes := c.yAxes
	if x {
		axes = c.xAxes
	}
	if index < 0 || index >= len(axes) {
		return fmt.Errorf("chart: no axis %d", index)
	}
	axes[index].SetExtremes(min, max)
	return nil
}

// AddSeries appends a series bound to the given axes.
func (c *Basic) AddSeries(id string, xAxis, yAxis int, pts ...PointSpec) *BasicSeries {
	s := &BasicSeries{chart: c, id: id, xAxis: xAxis, yAxis: yAxis, visible: true}
	for i, p := range pts {
		pid := p.ID
		if pid == "" {
			pid = fmt.Sprintf("%s.%d", id, i)
		}
		s.points = append(s.points, &BasicPoint{id: pid, x: p.X, y: p.Y, series: s})
	}
	c.series = append(c.series, s)
	return s
}

// SeriesList returns the series in insertion order.
func (c *Basic) SeriesList() []*BasicSeries { return c.series }

// MovePoint changes a point's values.
func (c *Basic) MovePoint(id string, x, y float64) bool {
	p, ok := c.Get(id).(*BasicPoint)
	if !ok {
		return false
	}
	p.x, p.y = x, y
	return true
}

// SetSeriesOffset applies a stacking offset (in y value units).
func (c *Basic) SetSeriesOffset(id string, off float64) bool {
	s, ok := c.Get(id).(*BasicSeries)
	if !ok {
		return false
	}
	s.offset = off
	return true
}

// SetSeriesVisible shows or hides a series.
func (c *Basic) SetSeriesVisible(id string, v bool) bool {
	s, ok := c.Get(id).(*BasicSeries)
	if !ok {
		return false
	}
	s.visible = v
	return true
}

// paint replaces the plot background and series lines inside the series
// group.
func (c *Basic) paint() {
	if c.renderer == nil {
		return
	}
	if c.content != nil {
		c.content.Destroy()
	}
	g := c.renderer.Group("series-content")
	g.Add(c.plotGroup)
	plot := c.opts.Plot
	c.renderer.Shape(render.KindRect, render.Attrs{
		X: render.F(plot.X), Y: render.F(plot.Y), Width: render.F(plot.W), Height: render.F(plot.H),
		Stroke: "#cccccc", Fill: "none", StrokeWidth: render.F(1),
	}).Add(g)
	for _, s := range c.series {
		if !s.visible {
			continue
		}
		var d render.Path
		for _, p := range s.points {
			px, ok := p.Pixel()
			if !ok {
				continue
			}
			cmd := "L"
			if len(d) == 0 {
				cmd = "M"
			}
			d = append(d, render.P(cmd, px.X, px.Y)...)
			c.renderer.Shape(render.KindCircle, render.Attrs{
				X: render.F(px.X), Y: render.F(px.Y), R: render.F(3), Fill: "#2f7ed8",
			}).Add(g)
		}
		if len(d) > 0 {
			line := c.renderer.Shape(render.KindPath, render.Attrs{D: d, Stroke: "#2f7ed8", Fill: "none", StrokeWidth: render.F(2)})
			line.Add(g)
		}
	}
	c.content = g
}

// PointSpec is the initial state of a point.
type PointSpec struct {
	ID string  `yaml:"id,omitempty" json:"id,omitempty"`
	X  float64 `yaml:"x" json:"x"`
	Y  float64 `yaml:"y" json:"y"`
}

// BasicSeries implements Series.
type BasicSeries struct {
	chart        *Basic
	id           string
	xAxis, yAxis int
	points       []*BasicPoint
	visible      bool
	offset       float64
}

func (s *BasicSeries) ID() string            { return s.id }
func (s *BasicSeries) Visible() bool         { return s.visible }
func (s *BasicSeries) Points() []*BasicPoint { return s.points }
func (s *BasicSeries) Offset() float64       { return s.offset }

// Anchor is the last laid out point.
func (s *BasicSeries) Anchor() (geom.Pt, bool) {
	if !s.visible {
		return geom.Pt{}, false
	}
	for i := len(s.points) - 1; i >= 0; i-- {
		if px, ok := s.points[i].Pixel(); ok {
			return px, true
		}
	}
	return geom.Pt{}, false
}

// BasicPoint implements Point.
type BasicPoint struct {
	id     string
	x, y   float64
	series *BasicSeries
}

func (p *BasicPoint) ID() string     { return p.id }
func (p *BasicPoint) X() float64     { return p.x }
func (p *BasicPoint) Y() float64     { return p.y }
func (p *BasicPoint) Series() Series { return p.series }

func (p *BasicPoint) Pixel() (geom.Pt, bool) {
	c := p.series.chart
	xa, ya := c.XAxis(p.series.xAxis), c.YAxis(p.series.yAxis)
	if xa == nil || ya == nil {
		return geom.Pt{}, false
	}
	px, py := xa.ToPixels(p.x), ya.ToPixels(p.y+p.series.offset)
	if c.opts.Inverted {
		px, py = py, px
	}
	if !geom.Finite(px, py) {
		return geom.Pt{}, false
	}
	return geom.Pt{X: px, Y: py}, true
}

func nan() float64 { return math.NaN() }
