/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"

	"chartnote/internal/geom"
)

// Viewport maps between widget pixels and chart pixels. The chart is scaled
// uniformly to fit and centered.
type Viewport struct {
	Scale      float64
	OffX, OffY float64
}

// Fit returns the viewport that fits a chart of size chart into avail.
func Fit(chart, avail geom.Size) Viewport {
	if chart.W <= 0 || chart.H <= 0 || avail.W <= 0 || avail.H <= 0 {
		return Viewport{Scale: 1}
	}
	k := math.Min(avail.W/chart.W, avail.H/chart.H)
	return Viewport{
		Scale: k,
		OffX:  (avail.W - chart.W*k) / 2,
		OffY:  (avail.H - chart.H*k) / 2,
	}
}

// ToChart converts a widget position to chart coordinates.
func (v Viewport) ToChart(x, y float64) geom.Pt {
	return geom.Pt{X: (x - v.OffX) / v.Scale, Y: (y - v.OffY) / v.Scale}
}

// ToWidget converts chart coordinates to a widget position.
func (v Viewport) ToWidget(p geom.Pt) geom.Pt {
	return geom.Pt{X: p.X*v.Scale + v.OffX, Y: p.Y*v.Scale + v.OffY}
}
