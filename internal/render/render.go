/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render defines the drawing boundary the annotation engine talks to.
// A host supplies a Renderer (the chart's graphics engine); the engine only
// creates groups, shapes, labels and clip regions, sets attributes, moves
// groups and measures bounding boxes.
package render

import "chartnote/internal/geom"

// Kind is a drawable shape primitive.
type Kind string

const (
	KindCircle Kind = "circle"
	KindPath   Kind = "path"
	KindRect   Kind = "rect"
)

// Valid reports whether k names a primitive the renderer can create.
func (k Kind) Valid() bool {
	switch k {
	case KindCircle, KindPath, KindRect:
		return true
	}
	return false
}

// TextStyle is the visual style of a text label.
type TextStyle struct {
	Color      string  `yaml:"color,omitempty" json:"color,omitempty"`
	FontSize   float64 `yaml:"fontSize,omitempty" json:"fontSize,omitempty"`
	FontWeight string  `yaml:"fontWeight,omitempty" json:"fontWeight,omitempty"`
}

// Merge overlays the non-zero fields of o onto s.
func (s TextStyle) Merge(o TextStyle) TextStyle {
	if o.Color != "" {
		s.Color = o.Color
	}
	if o.FontSize != 0 {
		s.FontSize = o.FontSize
	}
	if o.FontWeight != "" {
		s.FontWeight = o.FontWeight
	}
	return s
}

// Element is one rendered primitive or group. Add(nil) attaches the element
// to the renderer's root.
//
// BBox is measured in the element's own coordinate space: a group's own
// translation is not part of its box, children translations are. Hit takes a
// point in the parent's coordinate space.
type Element interface {
	Add(parent Element)
	SetAttrs(a Attrs)
	Attrs() Attrs
	Translate(x, y float64)
	Animate(x, y float64)
	Translation() (x, y float64, ok bool)
	BBox() geom.Rect
	Hit(p geom.Pt) bool
	SetVisible(v bool)
	Visible() bool
	SetClip(c Clip)
	Destroy()
}

// Label is a text element.
type Label interface {
	Element
	SetText(s string)
	Text() string
	SetStyle(s TextStyle)
}

// Clip is a rectangular clip region shared by the elements clipped to it.
type Clip interface {
	SetRect(r geom.Rect)
	Rect() geom.Rect
	Destroy()
}

// Renderer creates primitives. New elements are detached until Add is called.
type Renderer interface {
	Group(name string) Element
	Shape(kind Kind, a Attrs) Element
	Label(text string, style TextStyle) Label
	ClipRect(r geom.Rect) Clip
}
