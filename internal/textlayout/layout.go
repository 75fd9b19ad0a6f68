/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Label measurement for annotation titles. All measuring goes through a
// Provider so tests and exporters agree on deterministic metrics.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"chartnote/internal/geom"
)

// DefaultFontSize is the nominal size in pixels labels are laid out at.
const DefaultFontSize = 13

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps a nominal font size to a face and its metrics.
type Provider interface {
	Resolve(size float64) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
// The face has a fixed size; Measure scales its advances to the request.
type BasicProvider struct{}

func (BasicProvider) Resolve(_ float64) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Lines splits label text into display lines. Both "\n" and the HTML-style
// "<br>" produce breaks.
func Lines(text string) []string {
	text = strings.NewReplacer("<br/>", "\n", "<br />", "\n", "<br>", "\n").Replace(text)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// Measure returns the box a label occupies at the given font size: the width
// of the widest line and the sum of line heights.
func Measure(provider Provider, text string, size float64) geom.Size {
	if provider == nil {
		provider = BasicProvider{}
	}
	if size <= 0 {
		size = DefaultFontSize
	}
	face, met := provider.Resolve(size)
	scale := size / DefaultFontSize
	d := &font.Drawer{Face: face}
	lines := Lines(text)
	var w float64
	for _, l := range lines {
		if adv := advance(d, l) * scale; adv > w {
			w = adv
		}
	}
	lineH := (met.Ascent + met.Descent + met.LineGap) * scale
	return geom.Size{W: w, H: lineH * float64(len(lines))}
}

// LineHeight is the vertical advance between label lines at size.
func LineHeight(provider Provider, size float64) float64 {
	if provider == nil {
		provider = BasicProvider{}
	}
	if size <= 0 {
		size = DefaultFontSize
	}
	_, met := provider.Resolve(size)
	return (met.Ascent + met.Descent + met.LineGap) * size / DefaultFontSize
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s) >> 6) // fixed.Int26_6 to px
}
