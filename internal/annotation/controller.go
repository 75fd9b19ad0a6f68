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

	"chartnote/internal/geom"
	"chartnote/internal/pointer"
)

const ownerDrag = "drag"

// DragState is the state of the drag controller.
type DragState uint8

const (
	DragIdle DragState = iota
	DragPressed
	Dragging
)

func (s DragState) String() string {
	switch s {
	case DragPressed:
		return "pressed"
	case Dragging:
		return "dragging"
	}
	return "idle"
}

// Controller moves the selected annotation with the pointer and commits the
// final translation into its options. Move and up listeners live on the
// manager's document bus only between press and release.
type Controller struct {
	m   *Manager
	log *slog.Logger

	state   DragState
	target  *Annotation
	start   geom.Pt
	base    geom.Pt
	delta   geom.Pt
	moved   bool
	handles []pointer.Handle
}

// State reports the current state.
func (c *Controller) State() DragState { return c.state }

// Target is the annotation being dragged, nil when idle.
func (c *Controller) Target() *Annotation { return c.target }

// Press starts a drag of a. It fails for non-draggable annotations, for
// annotations placed by a linked chart object, for other buttons, or when
// another state machine owns the pointer.
func (c *Controller) Press(a *Annotation, e pointer.Event) bool {
	if c.state != DragIdle || a == nil || a.destroyed || a.group == nil {
		return false
	}
	if a.linked != nil {
		return false
	}
	if e.Button != pointer.Primary || !a.opts.Draggable() {
		return false
	}
	if !c.m.owner.Acquire(ownerDrag) {
		return false
	}
	a.Select()
	tx, ty, _ := a.group.Translation()
	c.target = a
	c.start = geom.Pt{X: e.X, Y: e.Y}
	c.base = geom.Pt{X: tx, Y: ty}
	c.delta = geom.Pt{}
	c.moved = false
	c.state = DragPressed
	c.handles = append(c.handles,
		c.m.bus.On(pointer.Move, c.move),
		c.m.bus.On(pointer.Up, c.release),
	)
	c.log.Debug("drag pressed", "id", a.opts.ID, "x", e.X, "y", e.Y)
	return true
}

func (c *Controller) move(e pointer.Event) {
	a := c.target
	if c.state == DragIdle || a == nil || a.destroyed {
		return
	}
	plot := c.m.chart.PlotBox()
	if !c.m.chart.IsInsidePlot(e.X-plot.X, e.Y-plot.Y) {
		return
	}
	d := geom.Pt{X: e.X - c.start.X, Y: e.Y - c.start.Y}
	hx, vy := bval(a.opts.AllowDragX), bval(a.opts.AllowDragY)
	if swapsAxes(a.opts, c.m.chart.Inverted()) {
		// the x axis runs vertically
		hx, vy = vy, hx
	}
	if !hx {
		d.X = 0
	}
	if !vy {
		d.Y = 0
	}
	c.delta = d
	if d.X != 0 || d.Y != 0 {
		c.moved = true
	}
	c.state = Dragging
	a.group.Translate(c.base.X+d.X, c.base.Y+d.Y)
}

func (c *Controller) release(pointer.Event) {
	a, d, moved := c.target, c.delta, c.moved
	c.reset()
	if a == nil || a.destroyed || !moved || (d.X == 0 && d.Y == 0) {
		return
	}
	ax, ok := AxesFor(c.m.chart, a.opts)
	if !ok {
		return
	}
	patch := DragPatch(a.opts, d, ax)
	c.m.snapshot("drag")
	a.Update(patch, false)
	c.log.Debug("drag committed", "id", a.opts.ID, "dx", d.X, "dy", d.Y)
	c.m.chart.Redraw()
}

// Cancel abandons a gesture without committing.
func (c *Controller) Cancel() {
	if c.target != nil {
		if !c.target.destroyed && c.target.group != nil {
			c.target.group.Translate(c.base.X, c.base.Y)
		}
	}
	c.reset()
}

// reset detaches the gesture listeners and gives the pointer back. Every
// exit path goes through here.
func (c *Controller) reset() {
	for _, h := range c.handles {
		h.Remove()
	}
	c.handles = nil
	c.m.owner.Release(ownerDrag)
	c.state = DragIdle
	c.target = nil
	c.delta = geom.Pt{}
	c.moved = false
}

// DragPatch converts a screen translation d into an options patch. Value
// fields round-trip through their axis, newValue = ToValue(ToPixels(old) +
// delta), with the deltas swapped back when the position itself was swapped
// (inverted chart, both value fields set). Pixel fields add
// the screen delta. Fields of an axis without movement are left out, so
// they stay exactly as they were.
func DragPatch(o Options, d geom.Pt, ax Axes) Options {
	var p Options
	dx, dy := d.X, d.Y
	if swapsAxes(o, ax.Inverted) {
		dx, dy = dy, dx
	}
	shift := func(v *float64, delta float64, toPx func(float64) float64, toVal func(float64) float64) *float64 {
		if v == nil || delta == 0 {
			return nil
		}
		return F(toVal(toPx(*v) + delta))
	}
	p.XValue = shift(o.XValue, dx, ax.X.ToPixels, ax.X.ToValue)
	p.XValueEnd = shift(o.XValueEnd, dx, ax.X.ToPixels, ax.X.ToValue)
	p.YValue = shift(o.YValue, dy, ax.Y.ToPixels, ax.Y.ToValue)
	p.YValueEnd = shift(o.YValueEnd, dy, ax.Y.ToPixels, ax.Y.ToValue)
	if o.XValue == nil && o.X != nil && d.X != 0 {
		p.X = F(*o.X + d.X)
	}
	if o.YValue == nil && o.Y != nil && d.Y != 0 {
		p.Y = F(*o.Y + d.Y)
	}
	return p
}

// swapsAxes mirrors ResolvePosition: only a position given by both value
// fields is swapped on an inverted chart.
func swapsAxes(o Options, inverted bool) bool {
	return inverted && o.XValue != nil && o.YValue != nil
}
