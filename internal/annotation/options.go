/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"chartnote/internal/pointer"
	"chartnote/internal/render"
)

// Shape types accepted in options. "line" is an alias of "path"; "none" and
// the empty string mean a title-only annotation.
const (
	ShapeCircle = "circle"
	ShapePath   = "path"
	ShapeLine   = "line"
	ShapeRect   = "rect"
	ShapeNone   = "none"
)

// Units of shape params.
const (
	UnitsPixels = "pixels"
	UnitsValues = "values"
)

// Shape is the drawable part of an annotation.
type Shape struct {
	Type   string       `yaml:"type,omitempty" json:"type,omitempty"`
	Params render.Attrs `yaml:"params,omitempty" json:"params,omitempty"`
}

// Kind maps the option type onto a renderer primitive; ok is false for
// title-only and unknown types.
func (s *Shape) Kind() (render.Kind, bool) {
	if s == nil {
		return "", false
	}
	switch s.Type {
	case ShapeCircle:
		return render.KindCircle, true
	case ShapePath, ShapeLine:
		return render.KindPath, true
	case ShapeRect:
		return render.KindRect, true
	}
	return "", false
}

// Title is the text label of an annotation. In documents it may be given as
// a plain string.
type Title struct {
	Text  string           `yaml:"text,omitempty" json:"text,omitempty"`
	Style render.TextStyle `yaml:"style,omitempty" json:"style,omitempty"`
}

func (t *Title) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		t.Text = n.Value
		return nil
	}
	type plain Title
	var p plain
	if err := n.Decode(&p); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	*t = Title(p)
	return nil
}

func (t *Title) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t.Text = s
		return nil
	}
	type plain Title
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	*t = Title(p)
	return nil
}

// Hook is a user callback for a gesture on an annotation.
type Hook func(e pointer.Event, a *Annotation)

// Events holds the per-annotation gesture hooks.
type Events struct {
	MouseDown Hook
	MouseUp   Hook
	Click     Hook
	DblClick  Hook
	MouseOver Hook
	MouseOut  Hook
}

func (e Events) hook(k pointer.Kind) Hook {
	switch k {
	case pointer.Down:
		return e.MouseDown
	case pointer.Up:
		return e.MouseUp
	case pointer.Click:
		return e.Click
	case pointer.DblClick:
		return e.DblClick
	case pointer.Over:
		return e.MouseOver
	case pointer.Out:
		return e.MouseOut
	}
	return nil
}

func (e Events) merge(p Events) Events {
	if p.MouseDown != nil {
		e.MouseDown = p.MouseDown
	}
	if p.MouseUp != nil {
		e.MouseUp = p.MouseUp
	}
	if p.Click != nil {
		e.Click = p.Click
	}
	if p.DblClick != nil {
		e.DblClick = p.DblClick
	}
	if p.MouseOver != nil {
		e.MouseOver = p.MouseOver
	}
	if p.MouseOut != nil {
		e.MouseOut = p.MouseOut
	}
	return e
}

// Options is the declarative description of one annotation. Pointer fields
// are optional: nil means unset, which lets partial options act as patches.
//
// Position is either pixel space (X, Y) or value space (XValue, YValue)
// resolved through the axis pair (XAxis, YAxis). XValueEnd/YValueEnd give the
// second point of two-point shapes.
type Options struct {
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	X         *float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y         *float64 `yaml:"y,omitempty" json:"y,omitempty"`
	XValue    *float64 `yaml:"xValue,omitempty" json:"xValue,omitempty"`
	YValue    *float64 `yaml:"yValue,omitempty" json:"yValue,omitempty"`
	XValueEnd *float64 `yaml:"xValueEnd,omitempty" json:"xValueEnd,omitempty"`
	YValueEnd *float64 `yaml:"yValueEnd,omitempty" json:"yValueEnd,omitempty"`
	XAxis     *int     `yaml:"xAxis,omitempty" json:"xAxis,omitempty"`
	YAxis     *int     `yaml:"yAxis,omitempty" json:"yAxis,omitempty"`

	AnchorX string `yaml:"anchorX,omitempty" json:"anchorX,omitempty"`
	AnchorY string `yaml:"anchorY,omitempty" json:"anchorY,omitempty"`

	Shape *Shape `yaml:"shape,omitempty" json:"shape,omitempty"`
	Units string `yaml:"units,omitempty" json:"units,omitempty"`
	Title *Title `yaml:"title,omitempty" json:"title,omitempty"`

	LinkedTo          string `yaml:"linkedTo,omitempty" json:"linkedTo,omitempty"`
	LinkedAnnotations string `yaml:"linkedAnnotations,omitempty" json:"linkedAnnotations,omitempty"`

	AllowDragX *bool `yaml:"allowDragX,omitempty" json:"allowDragX,omitempty"`
	AllowDragY *bool `yaml:"allowDragY,omitempty" json:"allowDragY,omitempty"`

	Width  *float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height *float64 `yaml:"height,omitempty" json:"height,omitempty"`

	SelectionMarker *render.Attrs `yaml:"selectionMarker,omitempty" json:"selectionMarker,omitempty"`

	Events Events `yaml:"-" json:"-"`
}

func F(v float64) *float64 { return &v }
func I(v int) *int         { return &v }
func B(v bool) *bool       { return &v }

func ival(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func bval(p *bool) bool { return p != nil && *p }

// XAxisIndex and YAxisIndex default to the first axis.
func (o Options) XAxisIndex() int { return ival(o.XAxis) }
func (o Options) YAxisIndex() int { return ival(o.YAxis) }

// Draggable reports whether any axis accepts dragging.
func (o Options) Draggable() bool { return bval(o.AllowDragX) || bval(o.AllowDragY) }

// Merge returns o with patch applied. Scalars replace when set in patch;
// shape params and title style merge key by key; hooks replace one by one.
// Merge never clears a field.
func (o Options) Merge(patch Options) Options {
	out := o.Clone()
	if patch.ID != "" {
		out.ID = patch.ID
	}
	setf := func(dst **float64, src *float64) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	setf(&out.X, patch.X)
	setf(&out.Y, patch.Y)
	setf(&out.XValue, patch.XValue)
	setf(&out.YValue, patch.YValue)
	setf(&out.XValueEnd, patch.XValueEnd)
	setf(&out.YValueEnd, patch.YValueEnd)
	setf(&out.Width, patch.Width)
	setf(&out.Height, patch.Height)
	if patch.XAxis != nil {
		out.XAxis = I(*patch.XAxis)
	}
	if patch.YAxis != nil {
		out.YAxis = I(*patch.YAxis)
	}
	if patch.AllowDragX != nil {
		out.AllowDragX = B(*patch.AllowDragX)
	}
	if patch.AllowDragY != nil {
		out.AllowDragY = B(*patch.AllowDragY)
	}
	if patch.AnchorX != "" {
		out.AnchorX = patch.AnchorX
	}
	if patch.AnchorY != "" {
		out.AnchorY = patch.AnchorY
	}
	if patch.Units != "" {
		out.Units = patch.Units
	}
	if patch.LinkedTo != "" {
		out.LinkedTo = patch.LinkedTo
	}
	if patch.LinkedAnnotations != "" {
		out.LinkedAnnotations = patch.LinkedAnnotations
	}
	if patch.Shape != nil {
		if out.Shape == nil {
			out.Shape = &Shape{}
		}
		if patch.Shape.Type != "" {
			out.Shape.Type = patch.Shape.Type
		}
		out.Shape.Params = out.Shape.Params.Merge(patch.Shape.Params)
	}
	if patch.Title != nil {
		if out.Title == nil {
			out.Title = &Title{}
		}
		if patch.Title.Text != "" {
			out.Title.Text = patch.Title.Text
		}
		out.Title.Style = out.Title.Style.Merge(patch.Title.Style)
	}
	if patch.SelectionMarker != nil {
		var base render.Attrs
		if out.SelectionMarker != nil {
			base = *out.SelectionMarker
		}
		m := base.Merge(*patch.SelectionMarker)
		out.SelectionMarker = &m
	}
	out.Events = out.Events.merge(patch.Events)
	return out
}

// Clone returns a deep copy; hooks are shared.
func (o Options) Clone() Options {
	c := o
	cp := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		return F(*p)
	}
	c.X, c.Y = cp(o.X), cp(o.Y)
	c.XValue, c.YValue = cp(o.XValue), cp(o.YValue)
	c.XValueEnd, c.YValueEnd = cp(o.XValueEnd), cp(o.YValueEnd)
	c.Width, c.Height = cp(o.Width), cp(o.Height)
	if o.XAxis != nil {
		c.XAxis = I(*o.XAxis)
	}
	if o.YAxis != nil {
		c.YAxis = I(*o.YAxis)
	}
	if o.AllowDragX != nil {
		c.AllowDragX = B(*o.AllowDragX)
	}
	if o.AllowDragY != nil {
		c.AllowDragY = B(*o.AllowDragY)
	}
	if o.Shape != nil {
		c.Shape = &Shape{Type: o.Shape.Type, Params: o.Shape.Params.Clone()}
	}
	if o.Title != nil {
		t := *o.Title
		c.Title = &t
	}
	if o.SelectionMarker != nil {
		m := o.SelectionMarker.Clone()
		c.SelectionMarker = &m
	}
	return c
}

// defaultOptions are the base every new annotation merges its options onto.
func defaultOptions(shapeType string) Options {
	o := Options{
		XAxis: I(0),
		YAxis: I(0),
		Shape: &Shape{Params: render.Attrs{
			Stroke:      "#000000",
			Fill:        "rgba(0,0,0,0)",
			StrokeWidth: render.F(2),
		}},
	}
	if shapeType == ShapeCircle {
		o.Shape.Params.X = render.F(0)
		o.Shape.Params.Y = render.F(0)
	}
	return o
}

// withDefaults merges user options onto the defaults. Annotations without a
// shape keep Shape nil.
func withDefaults(user Options) Options {
	t := ""
	if user.Shape != nil {
		t = user.Shape.Type
	}
	o := defaultOptions(t).Merge(user)
	if user.Shape == nil {
		o.Shape = nil
	}
	return o
}
