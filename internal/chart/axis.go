/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package chart

import "chartnote/internal/geom"

// LinearAxis maps [Min, Max] linearly onto its pane. Horizontal axes grow to
// the right; vertical axes grow upward unless Reversed.
type LinearAxis struct {
	Min, Max   float64
	Horizontal bool
	Reversed   bool

	index int
	pane  geom.Rect
}

// NewLinearAxis returns an axis laid out on pane.
func NewLinearAxis(index int, min, max float64, horizontal bool, pane geom.Rect) *LinearAxis {
	return &LinearAxis{Min: min, Max: max, Horizontal: horizontal, index: index, pane: pane}
}

func (a *LinearAxis) Index() int      { return a.index }
func (a *LinearAxis) Pane() geom.Rect { return a.pane }

// SetPane re-lays out the axis.
func (a *LinearAxis) SetPane(r geom.Rect) { a.pane = r }

// SetExtremes zooms the axis.
func (a *LinearAxis) SetExtremes(min, max float64) { a.Min, a.Max = min, max }

func (a *LinearAxis) span() (start, length float64) {
	if a.Horizontal {
		return a.pane.X, a.pane.W
	}
	return a.pane.Y, a.pane.H
}

// flipped reports whether pixels grow against values.
func (a *LinearAxis) flipped() bool {
	if a.Horizontal {
		return a.Reversed
	}
	return !a.Reversed
}

// ToPixels returns NaN when the axis has no extent yet.
func (a *LinearAxis) ToPixels(v float64) float64 {
	start, length := a.span()
	if a.Max == a.Min || length == 0 {
		return nan()
	}
	f := (v - a.Min) / (a.Max - a.Min)
	if a.flipped() {
		f = 1 - f
	}
	return start + f*length
}

func (a *LinearAxis) ToValue(px float64) float64 {
	start, length := a.span()
	if length == 0 {
		return nan()
	}
	f := (px - start) / length
	if a.flipped() {
		f = 1 - f
	}
	return a.Min + f*(a.Max-a.Min)
}
