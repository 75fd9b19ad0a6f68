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

	"chartnote/internal/chart"
	"chartnote/internal/geom"
	"chartnote/internal/pointer"
	"chartnote/internal/render"
)

// Annotation is one shape plus optional title rendered into a group on the
// pane of its y axis. It is created through Collection.Add and lives until
// Destroy.
type Annotation struct {
	coll *Collection
	opts Options
	log  *slog.Logger

	group     render.Element
	shape     render.Element
	shapeKind render.Kind
	title     render.Label
	marker    render.Element

	linked    chart.Object
	hasEvents bool
	local     pointer.Bus
	handles   []pointer.Handle

	pane     int
	attached bool
	bbox     *geom.Rect
	pos      geom.Pt
	resolved bool

	destroyed bool
}

func newAnnotation(c *Collection, o Options) *Annotation {
	return &Annotation{coll: c, opts: withDefaults(o), log: c.m.log}
}

// Options returns a copy of the effective options.
func (a *Annotation) Options() Options { return a.opts.Clone() }

// ID is the user id from options, possibly empty.
func (a *Annotation) ID() string { return a.opts.ID }

// Group is the rendered group, nil before the first render.
func (a *Annotation) Group() render.Element { return a.group }

// ShapeElement is the rendered shape primitive, nil for title-only
// annotations.
func (a *Annotation) ShapeElement() render.Element { return a.shape }

// TitleElement is the rendered title, nil without a title.
func (a *Annotation) TitleElement() render.Label { return a.title }

// Marker is the selection outline, nil unless selected.
func (a *Annotation) Marker() render.Element { return a.marker }

// Linked is the chart object the annotation follows, nil when unlinked or
// when the id no longer resolves.
func (a *Annotation) Linked() chart.Object { return a.linked }

// Position is the last resolved pixel position before alignment; ok is false
// until a redraw succeeded.
func (a *Annotation) Position() (geom.Pt, bool) { return a.pos, a.resolved }

// Destroyed reports whether Destroy ran.
func (a *Annotation) Destroyed() bool { return a.destroyed }

// Selected reports whether a is the selection of its collection.
func (a *Annotation) Selected() bool { return !a.destroyed && a.coll.selected == a }

// ListenerCount reports how many gesture listeners of kind k are bound.
func (a *Annotation) ListenerCount(k pointer.Kind) int { return a.local.Count(k) }

// Dispatch delivers a gesture to the annotation's own listeners.
func (a *Annotation) Dispatch(e pointer.Event) {
	if a.destroyed {
		return
	}
	a.local.Dispatch(e)
}

// Render creates the primitives that do not exist yet, binds gesture
// listeners once, attaches the group to its pane and re-resolves the link.
// With redraw it also recomputes the geometry.
func (a *Annotation) Render(redraw bool) *Annotation {
	if a.destroyed {
		return a
	}
	r := a.coll.m.chart.Renderer()
	if a.group == nil {
		a.group = r.Group("annotation")
	}
	if a.shape == nil && a.opts.Shape != nil {
		if k, ok := a.opts.Shape.Kind(); ok {
			a.shape = r.Shape(k, render.Attrs{})
			a.shapeKind = k
			a.shape.Add(a.group)
			if a.title != nil {
				// keep the title above the shape
				a.title.Add(a.group)
			}
		} else if t := a.opts.Shape.Type; t != "" && t != ShapeNone {
			a.log.Debug("unknown shape type, skipping shape", "type", t, "id", a.opts.ID)
		}
	}
	if a.title == nil && a.opts.Title != nil {
		a.title = r.Label(a.opts.Title.Text, a.opts.Title.Style)
		a.title.Add(a.group)
	}
	a.bindEvents()

	pane := a.coll.paneIndex(a.opts.YAxisIndex())
	if !a.attached || pane != a.pane {
		a.group.Add(a.coll.paneGroup(pane))
		a.pane, a.attached = pane, true
	}
	a.linkObjects()
	if redraw {
		a.Redraw()
	}
	return a
}

func (a *Annotation) bindEvents() {
	if a.hasEvents {
		return
	}
	a.hasEvents = true
	for _, k := range []pointer.Kind{pointer.Down, pointer.Up, pointer.Click, pointer.DblClick, pointer.Over, pointer.Out} {
		k := k
		a.handles = append(a.handles, a.local.On(k, func(e pointer.Event) { a.onGesture(k, e) }))
	}
}

func (a *Annotation) onGesture(k pointer.Kind, e pointer.Event) {
	if h := a.opts.Events.hook(k); h != nil {
		h(e, a)
	}
	if a.destroyed {
		return
	}
	switch k {
	case pointer.Down:
		if e.Button != pointer.Primary {
			return
		}
		if !a.coll.m.drag.Press(a, e) {
			a.Select()
		}
	case pointer.DblClick:
		a.coll.m.destroyCascade(a)
	}
}

func (a *Annotation) linkObjects() {
	a.linked = nil
	if a.opts.LinkedTo == "" {
		return
	}
	a.linked = a.coll.m.chart.Get(a.opts.LinkedTo)
	if a.linked == nil {
		a.log.Debug("linked object not found", "linkedTo", a.opts.LinkedTo, "id", a.opts.ID)
	}
}

// linkedPosition reads the live location of the linked object and applies
// its visibility to the group.
func (a *Annotation) linkedPosition() (geom.Pt, bool) {
	switch o := a.linked.(type) {
	case chart.Point:
		if s := o.Series(); s != nil {
			a.group.SetVisible(s.Visible())
		}
		return o.Pixel()
	case chart.Series:
		a.group.SetVisible(o.Visible())
		return o.Anchor()
	}
	return geom.Pt{}, false
}

// Redraw recomputes the geometry from the current options and axis state
// and moves the group. Frames that cannot be resolved are skipped.
func (a *Annotation) Redraw() {
	if a.destroyed || a.group == nil {
		return
	}
	c := a.coll.m.chart
	ax, ok := AxesFor(c, a.opts)
	if !ok {
		a.log.Debug("axes missing, skipping redraw", "id", a.opts.ID)
		return
	}
	pos, ok := geom.Pt{}, false
	if a.linked != nil {
		pos, ok = a.linkedPosition()
	}
	if !ok {
		if pos, ok = ResolvePosition(a.opts, ax); !ok {
			a.log.Debug("position not finite, skipping redraw", "id", a.opts.ID)
			return
		}
	}
	a.pos, a.resolved = pos, true

	if a.shape != nil {
		a.shape.SetAttrs(ResolveShape(a.opts, pos, ax))
	}
	if a.title != nil && a.opts.Title != nil {
		a.title.SetText(a.opts.Title.Text)
		a.title.SetStyle(a.opts.Title.Style)
	}

	b := a.contentBox()
	a.bbox = &b
	t := Align(pos, BoxSize(a.opts, b), a.opts.AnchorX, a.opts.AnchorY)
	_, _, had := a.group.Translation()
	if had && a.coll.m.settings.Animation && c.Animating() {
		a.group.Animate(t.X, t.Y)
	} else {
		a.group.Translate(t.X, t.Y)
	}
	if a.marker != nil {
		a.placeMarker()
	}
}

// contentBox is the union of the shape and title boxes in group space. The
// selection outline never counts.
func (a *Annotation) contentBox() geom.Rect {
	var b geom.Rect
	first := true
	for _, el := range []render.Element{a.shape, a.title} {
		if el == nil || !el.Visible() {
			continue
		}
		eb := el.BBox()
		if first {
			b, first = eb, false
		} else {
			b = b.Union(eb)
		}
	}
	return b
}

// Update merges patch into the options and renders again. A changed shape
// type replaces the primitive; a shape added to a title-only annotation gets
// the default style.
func (a *Annotation) Update(patch Options, redraw bool) *Annotation {
	if a.destroyed {
		return a
	}
	hadShape := a.opts.Shape != nil
	a.opts = a.opts.Merge(patch)
	if !hadShape && a.opts.Shape != nil {
		a.opts.Shape = withDefaults(Options{Shape: a.opts.Shape}).Shape
	}
	if a.shape != nil {
		if k, ok := a.opts.Shape.Kind(); !ok || k != a.shapeKind {
			a.shape.Destroy()
			a.shape = nil
		}
	}
	a.bbox = nil
	return a.Render(redraw)
}

// Show and Hide toggle visibility. Linked annotations follow their host and
// ignore both.
func (a *Annotation) Show() { a.setVisible(true) }
func (a *Annotation) Hide() { a.setVisible(false) }

func (a *Annotation) setVisible(v bool) {
	if a.destroyed || a.group == nil || a.linked != nil {
		return
	}
	a.group.SetVisible(v)
}

// Visible reports whether the group is shown.
func (a *Annotation) Visible() bool { return a.group != nil && a.group.Visible() }

// Select outlines the annotation and deselects the previous selection.
func (a *Annotation) Select() {
	if a.destroyed || a.group == nil {
		return
	}
	if prev := a.coll.selected; prev != nil && prev != a {
		prev.Deselect()
	}
	a.coll.selected = a
	if a.marker == nil {
		st := a.coll.m.settings.Selection
		attrs := render.Attrs{Stroke: st.Stroke, Fill: st.Fill, StrokeWidth: render.F(st.StrokeWidth)}
		if a.opts.SelectionMarker != nil {
			attrs = attrs.Merge(*a.opts.SelectionMarker)
		}
		a.marker = a.coll.m.chart.Renderer().Shape(render.KindRect, attrs)
		a.marker.Add(a.group)
	}
	a.placeMarker()
}

func (a *Annotation) placeMarker() {
	if a.bbox == nil {
		b := a.contentBox()
		a.bbox = &b
	}
	pad := a.coll.m.settings.Selection.Padding
	b := a.bbox.Inset(-pad, -pad)
	a.marker.SetAttrs(render.Attrs{X: render.F(b.X), Y: render.F(b.Y), Width: render.F(b.W), Height: render.F(b.H)})
}

// Deselect removes the outline and drops the cached box.
func (a *Annotation) Deselect() {
	if a.marker != nil {
		a.marker.Destroy()
		a.marker = nil
	}
	a.bbox = nil
	if a.coll != nil && a.coll.selected == a {
		a.coll.selected = nil
	}
}

// Destroy removes the annotation from its collection and releases its
// primitives. Further calls are no-ops.
func (a *Annotation) Destroy() {
	if a.destroyed {
		a.log.Debug("annotation already destroyed", "id", a.opts.ID)
		return
	}
	a.Deselect()
	a.destroyed = true
	a.coll.remove(a)
	a.coll.m.forget(a)
	for _, h := range a.handles {
		h.Remove()
	}
	a.handles = nil
	if a.title != nil {
		a.title.Destroy()
		a.title = nil
	}
	if a.shape != nil {
		a.shape.Destroy()
		a.shape = nil
	}
	if a.group != nil {
		a.group.Destroy()
		a.group = nil
	}
	a.linked = nil
	a.bbox = nil
	a.opts = Options{}
}
