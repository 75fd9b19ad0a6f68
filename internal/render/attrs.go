/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

// Attrs carries the attributes of a shape primitive. Pointer fields are
// optional; nil means "not set" so that Merge can overlay partial updates.
type Attrs struct {
	X           *float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y           *float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Width       *float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height      *float64 `yaml:"height,omitempty" json:"height,omitempty"`
	R           *float64 `yaml:"r,omitempty" json:"r,omitempty"`
	D           Path     `yaml:"d,omitempty" json:"d,omitempty"`
	Stroke      string   `yaml:"stroke,omitempty" json:"stroke,omitempty"`
	Fill        string   `yaml:"fill,omitempty" json:"fill,omitempty"`
	StrokeWidth *float64 `yaml:"stroke-width,omitempty" json:"stroke-width,omitempty"`
}

// F returns a pointer to v, for building Attrs literals.
func F(v float64) *float64 { return &v }

// Val dereferences p, falling back to def when unset.
func Val(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Clone returns a deep copy.
func (a Attrs) Clone() Attrs {
	c := a
	c.X = clonef(a.X)
	c.Y = clonef(a.Y)
	c.Width = clonef(a.Width)
	c.Height = clonef(a.Height)
	c.R = clonef(a.R)
	c.StrokeWidth = clonef(a.StrokeWidth)
	c.D = a.D.Clone()
	return c
}

// Merge overlays every field set in patch onto a, key by key. The path is
// replaced as a whole when the patch carries one.
func (a Attrs) Merge(patch Attrs) Attrs {
	out := a.Clone()
	if patch.X != nil {
		out.X = clonef(patch.X)
	}
	if patch.Y != nil {
		out.Y = clonef(patch.Y)
	}
	if patch.Width != nil {
		out.Width = clonef(patch.Width)
	}
	if patch.Height != nil {
		out.Height = clonef(patch.Height)
	}
	if patch.R != nil {
		out.R = clonef(patch.R)
	}
	if patch.D != nil {
		out.D = patch.D.Clone()
	}
	if patch.Stroke != "" {
		out.Stroke = patch.Stroke
	}
	if patch.Fill != "" {
		out.Fill = patch.Fill
	}
	if patch.StrokeWidth != nil {
		out.StrokeWidth = clonef(patch.StrokeWidth)
	}
	return out
}

func clonef(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
