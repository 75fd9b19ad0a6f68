/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package chart describes the host chart the annotation engine lives on and
// ships Basic, a small reference chart used by the CLI, the desktop host and
// tests.
//
// Pixel coordinates are chart-relative (scene space) everywhere except
// IsInsidePlot, which takes plot-relative coordinates.
package chart

import (
	"chartnote/internal/geom"
	"chartnote/internal/render"
)

// Axis converts between value space and pixel space.
type Axis interface {
	ToPixels(v float64) float64
	ToValue(px float64) float64
	// Pane is the plotting band of the axis in chart pixels.
	Pane() geom.Rect
	Index() int
}

// Object is anything addressable by id through Chart.Get.
type Object interface {
	ID() string
}

// Series is a data series. Anchor is the rendered location annotations
// linked to the series attach to.
type Series interface {
	Object
	Visible() bool
	Anchor() (geom.Pt, bool)
}

// Point is a single rendered data point.
type Point interface {
	Object
	X() float64
	Y() float64
	// Pixel is the rendered location including any stacking offset of the
	// series; ok is false when the point is not laid out.
	Pixel() (geom.Pt, bool)
	Series() Series
}

// Chart is the host surface.
type Chart interface {
	Renderer() render.Renderer
	PlotBox() geom.Rect
	Inverted() bool
	XAxis(i int) Axis
	YAxis(i int) Axis
	YAxisCount() int
	Get(id string) Object
	IsInsidePlot(x, y float64) bool
	Animating() bool
	// Redraw re-lays out the chart and notifies redraw subscribers.
	Redraw()
	// OnRedraw subscribes fn to redraw notifications; the returned func
	// unsubscribes.
	OnRedraw(fn func()) func()
}
