/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"log/slog"

	"github.com/samber/lo"

	"chartnote/internal/geom"
	applog "chartnote/internal/log"
	"chartnote/internal/pointer"
	"chartnote/internal/render"
)

const (
	ownerDrawer = "drawer"

	buttonSpacing = 30
	buttonSize    = 20
	symbolSize    = 12
)

// Button is one creation tool on the toolbar. Template holds the options new
// annotations start from.
type Button struct {
	Symbol   string   `yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Tool     ToolKind `yaml:"-" json:"-"`
	Template Options  `yaml:"annotation,omitempty" json:"annotation,omitempty"`

	Fill         string `yaml:"fill,omitempty" json:"fill,omitempty"`
	HoverFill    string `yaml:"hoverFill,omitempty" json:"hoverFill,omitempty"`
	SelectedFill string `yaml:"selectedFill,omitempty" json:"selectedFill,omitempty"`
}

// Merge overlays the set fields of o. The template merges like options.
func (b Button) Merge(o Button) Button {
	if o.Symbol != "" {
		b.Symbol = o.Symbol
		if t, ok := ParseTool(o.Symbol); ok {
			b.Tool = t
		}
	}
	b.Template = b.Template.Merge(o.Template)
	if o.Fill != "" {
		b.Fill = o.Fill
	}
	if o.HoverFill != "" {
		b.HoverFill = o.HoverFill
	}
	if o.SelectedFill != "" {
		b.SelectedFill = o.SelectedFill
	}
	return b
}

// DefaultButtons returns the circle, line, square and text tools.
func DefaultButtons() []Button {
	style := func(a render.Attrs) render.Attrs {
		a.Fill = "rgba(255,0,0,0.4)"
		a.Stroke = "black"
		return a
	}
	tmpl := func(s *Shape) Options {
		return Options{AnchorX: "left", AnchorY: "top", XAxis: I(0), YAxis: I(0), Shape: s}
	}
	mk := func(sym string, t ToolKind, s *Shape) Button {
		return Button{Symbol: sym, Tool: t, Template: tmpl(s), Fill: "#f7f7f7", HoverFill: "#99bbdd", SelectedFill: "#99bbdd"}
	}
	return []Button{
		mk("circle", ToolCircle, &Shape{Type: ShapeCircle, Params: style(render.Attrs{R: render.F(0)})}),
		mk("line", ToolLine, &Shape{Type: ShapePath, Params: style(render.Attrs{D: render.P("M", 0, 0, "L", 10, 10)})}),
		mk("square", ToolRect, &Shape{Type: ShapeRect, Params: style(render.Attrs{Width: render.F(10), Height: render.F(10)})}),
		mk("text", ToolText, nil),
	}
}

// MergeButtons applies per-index overrides onto base. Extra overrides add
// buttons.
func MergeButtons(base, overrides []Button) []Button {
	out := append([]Button(nil), base...)
	for i, o := range overrides {
		if i < len(out) {
			out[i] = out[i].Merge(o)
			continue
		}
		b := Button{Fill: "#f7f7f7", HoverFill: "#99bbdd", SelectedFill: "#99bbdd"}.Merge(o)
		out = append(out, b)
	}
	return out
}

type toolbarButton struct {
	Button
	box    geom.Rect
	bg     render.Element
	symbol render.Element
}

// DrawState is the state of the drawer.
type DrawState uint8

const (
	DrawIdle DrawState = iota
	Drawing
)

// Drawer is the creation tool: a radio group of toolbar buttons and the
// press, move, release gesture that sizes a new annotation.
type Drawer struct {
	m   *Manager
	log *slog.Logger

	buttons   []*toolbarButton
	group     render.Element
	armed     int
	hover     int
	allowZoom bool

	state    DrawState
	current  *Annotation
	start    geom.Pt
	moved    bool
	before   []byte
	handles  []pointer.Handle
	inputIdx int
	input    *TextInput
}

func newDrawer(m *Manager, buttons []Button) *Drawer {
	d := &Drawer{m: m, log: applog.WithComponent("drawer"), armed: -1, hover: -1, allowZoom: true}
	for _, b := range buttons {
		if t, ok := ParseTool(b.Symbol); ok {
			b.Tool = t
		}
		d.buttons = append(d.buttons, &toolbarButton{Button: b})
	}
	return d
}

// Buttons returns the configured buttons.
func (d *Drawer) Buttons() []Button {
	return lo.Map(d.buttons, func(b *toolbarButton, _ int) Button { return b.Button })
}

// Armed is the index of the armed button or -1.
func (d *Drawer) Armed() int { return d.armed }

// AllowZoom is false while a tool is armed.
func (d *Drawer) AllowZoom() bool { return d.allowZoom }

// State reports the gesture state.
func (d *Drawer) State() DrawState { return d.state }

// Current is the annotation being drawn, nil when idle.
func (d *Drawer) Current() *Annotation { return d.current }

// ButtonBox returns the hit box of button i in chart pixels.
func (d *Drawer) ButtonBox(i int) (geom.Rect, bool) {
	if i < 0 || i >= len(d.buttons) {
		return geom.Rect{}, false
	}
	return d.boxFor(i), true
}

func (d *Drawer) boxFor(i int) geom.Rect {
	plot := d.m.chart.PlotBox()
	tb := d.m.settings.Toolbar
	x := plot.X + plot.W - float64(i+1)*buttonSpacing - tb.OffsetX
	y := plot.Y + tb.OffsetY
	return geom.R(x, y, buttonSize, buttonSize)
}

// ButtonAt returns the toolbar button under p, or -1.
func (d *Drawer) ButtonAt(p geom.Pt) int {
	if !d.m.settings.Toolbar.Enabled {
		return -1
	}
	for i := range d.buttons {
		if d.boxFor(i).Contains(p) {
			return i
		}
	}
	return -1
}

// layout renders the toolbar on first use and moves it to the current plot
// box.
func (d *Drawer) layout() {
	if !d.m.settings.Toolbar.Enabled {
		return
	}
	r := d.m.chart.Renderer()
	if d.group == nil {
		d.group = r.Group("toolbar")
		d.group.Add(nil)
	}
	for i, b := range d.buttons {
		box := d.boxFor(i)
		b.box = box
		if b.bg == nil {
			b.bg = r.Shape(render.KindRect, render.Attrs{Stroke: "#cccccc", StrokeWidth: render.F(1)})
			b.bg.Add(d.group)
			b.symbol = r.Shape(symbolKind(b.Symbol), render.Attrs{Stroke: "black", StrokeWidth: render.F(2), Fill: "red"})
			b.symbol.Add(d.group)
		}
		b.bg.SetAttrs(render.Attrs{X: render.F(box.X), Y: render.F(box.Y), Width: render.F(box.W), Height: render.F(box.H)})
		b.symbol.SetAttrs(symbolAttrs(b.Symbol, box.Inset((buttonSize-symbolSize)/2, (buttonSize-symbolSize)/2)))
	}
	d.paintStates()
}

func (d *Drawer) raise() {
	if d.group != nil {
		d.group.Add(nil)
	}
}

func (d *Drawer) paintStates() {
	for i, b := range d.buttons {
		if b.bg == nil {
			continue
		}
		fill := b.Fill
		switch i {
		case d.armed:
			fill = b.SelectedFill
		case d.hover:
			fill = b.HoverFill
		}
		b.bg.SetAttrs(render.Attrs{Fill: fill})
	}
}

func symbolKind(sym string) render.Kind {
	switch sym {
	case "circle":
		return render.KindCircle
	case "square":
		return render.KindRect
	}
	return render.KindPath
}

// symbolAttrs draws the button glyph inside box.
func symbolAttrs(sym string, box geom.Rect) render.Attrs {
	x, y, w, h := box.X, box.Y, box.W, box.H
	switch sym {
	case "circle":
		return render.Attrs{X: render.F(x + w/2), Y: render.F(y + h/2), R: render.F(w / 2)}
	case "square":
		return render.Attrs{X: render.F(x), Y: render.F(y), Width: render.F(w), Height: render.F(h)}
	case "text":
		const p = 1
		return render.Attrs{D: render.P("M", x, y+p, "L", x+w, y+p, "M", x+w/2, y+p, "L", x+w/2, y+p+h)}
	}
	const p = 2
	return render.Attrs{D: render.P("M", x+p, y+p, "L", x+w-p, y+h-p)}
}

// Click toggles button i like a radio button: arming one disarms the
// previous, clicking the armed one disarms it. Chart zoom is suppressed
// while a button is armed.
func (d *Drawer) Click(i int) {
	if i < 0 || i >= len(d.buttons) {
		return
	}
	if d.armed == i {
		d.Disarm()
		return
	}
	d.armed = i
	d.allowZoom = false
	d.paintStates()
	d.log.Debug("tool armed", "symbol", d.buttons[i].Symbol)
}

// Disarm deselects the armed button and restores zoom.
func (d *Drawer) Disarm() {
	d.armed = -1
	d.allowZoom = true
	d.paintStates()
}

// Hover highlights the button under p.
func (d *Drawer) Hover(p geom.Pt) {
	h := d.ButtonAt(p)
	if h == d.hover {
		return
	}
	d.hover = h
	d.paintStates()
}

// Down starts drawing when a tool is armed and p lies inside the plot. It
// reports whether the drawer took the event.
func (d *Drawer) Down(e pointer.Event) bool {
	if d.armed < 0 || d.allowZoom || d.state != DrawIdle || e.Button != pointer.Primary {
		return false
	}
	ch := d.m.chart
	plot := ch.PlotBox()
	if !ch.IsInsidePlot(e.X-plot.X, e.Y-plot.Y) {
		return false
	}
	if !d.m.owner.Acquire(ownerDrawer) {
		return false
	}
	p := geom.Pt{X: e.X, Y: e.Y}
	yi := d.paneAt(p)
	ax := Axes{X: ch.XAxis(0), Y: ch.YAxis(yi), Inverted: ch.Inverted()}
	if ax.X == nil || ax.Y == nil {
		d.m.owner.Release(ownerDrawer)
		return false
	}
	xv, yv := ax.ToValues(p)
	b := d.buttons[d.armed]
	opts := b.Template.Merge(Options{
		XValue: F(xv), YValue: F(yv),
		XAxis: I(0), YAxis: I(yi),
		AllowDragX: B(true), AllowDragY: B(true),
	})
	d.before = d.m.capture()
	d.current = d.m.coll.Add(true, opts)[0]
	d.start = p
	d.moved = false
	d.state = Drawing
	d.handles = append(d.handles,
		d.m.bus.On(pointer.Move, d.step),
		d.m.bus.On(pointer.Up, d.stop),
	)
	d.log.Debug("drawing started", "tool", b.Tool, "x", e.X, "y", e.Y, "pane", yi)
	return true
}

// paneAt picks the y axis whose pane contains p, defaulting to the first.
func (d *Drawer) paneAt(p geom.Pt) int {
	ch := d.m.chart
	for i := 0; i < ch.YAxisCount(); i++ {
		if ax := ch.YAxis(i); ax != nil && ax.Pane().Contains(p) {
			return i
		}
	}
	return 0
}

func (d *Drawer) tool() ToolKind { return d.buttons[d.armed].Tool }

func (d *Drawer) step(e pointer.Event) {
	a := d.current
	if d.state != Drawing || a == nil || a.destroyed || d.armed < 0 {
		return
	}
	if e.X != d.start.X || e.Y != d.start.Y {
		d.moved = true
	}
	tools[d.tool()].step(d, a, geom.Pt{X: e.X, Y: e.Y})
}

func (d *Drawer) stop(e pointer.Event) {
	a, moved, before := d.current, d.moved, d.before
	tool := ToolKind(toolCount)
	if d.armed >= 0 {
		tool = d.tool()
	}
	d.reset()
	if a == nil || a.destroyed || tool == toolCount {
		return
	}
	p := geom.Pt{X: e.X, Y: e.Y}
	if !moved && tool != ToolText {
		a.Destroy()
		d.Disarm()
		d.log.Debug("drawing discarded without movement")
		return
	}
	d.m.push("draw", before)
	tools[tool].stop(d, a, p)
}

// Cancel abandons a gesture in progress and removes the half drawn
// annotation.
func (d *Drawer) Cancel() {
	a := d.current
	d.reset()
	if a != nil && !a.destroyed {
		a.Destroy()
	}
}

func (d *Drawer) reset() {
	for _, h := range d.handles {
		h.Remove()
	}
	d.handles = nil
	d.m.owner.Release(ownerDrawer)
	d.state = DrawIdle
	d.current = nil
	d.before = nil
	d.moved = false
}

// startScreen is the pixel position of the annotation's start values.
func (d *Drawer) startScreen(a *Annotation) (geom.Pt, Axes, bool) {
	ax, ok := AxesFor(d.m.chart, a.opts)
	if !ok || a.opts.XValue == nil || a.opts.YValue == nil {
		return geom.Pt{}, ax, false
	}
	s := ax.ToScreen(*a.opts.XValue, *a.opts.YValue)
	return s, ax, geom.Finite(s.X, s.Y)
}
