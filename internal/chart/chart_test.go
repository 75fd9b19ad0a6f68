/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"chartnote/internal/geom"
	"chartnote/internal/vector"
)

func newTestChart(inverted bool) *Basic {
	return NewBasic(vector.NewScene(600, 400), Options{
		Width: 600, Height: 400,
		Plot:     geom.R(50, 20, 500, 300),
		Inverted: inverted,
		XAxes:    []AxisRange{{Min: 0, Max: 10}},
		YAxes:    []PaneSpec{{AxisRange: AxisRange{Min: 0, Max: 100}}},
	})
}

func TestLinearAxis_RoundTrip(t *testing.T) {
	c := newTestChart(false)
	x, y := c.XAxis(0), c.YAxis(0)
	assert.Equal(t, 50.0, x.ToPixels(0))
	assert.Equal(t, 550.0, x.ToPixels(10))
	assert.Equal(t, 320.0, y.ToPixels(0), "y grows upward")
	assert.Equal(t, 20.0, y.ToPixels(100))
	for _, v := range []float64{-3, 0, 2.5, 7.25, 12} {
		assert.True(t, scalar.EqualWithinAbs(v, x.ToValue(x.ToPixels(v)), 1e-9))
		assert.True(t, scalar.EqualWithinAbs(v, y.ToValue(y.ToPixels(v)), 1e-9))
	}
}

func TestLinearAxis_DegenerateIsNaN(t *testing.T) {
	a := NewLinearAxis(0, 5, 5, true, geom.R(0, 0, 100, 10))
	assert.True(t, math.IsNaN(a.ToPixels(5)))
	b := NewLinearAxis(0, 0, 1, true, geom.Rect{})
	assert.True(t, math.IsNaN(b.ToValue(3)))
}

func TestInverted_AxesSwapOrientation(t *testing.T) {
	c := newTestChart(true)
	// x runs top to bottom, y left to right
	assert.Equal(t, 20.0, c.XAxis(0).ToPixels(0))
	assert.Equal(t, 320.0, c.XAxis(0).ToPixels(10))
	assert.Equal(t, 50.0, c.YAxis(0).ToPixels(0))
	assert.Equal(t, 550.0, c.YAxis(0).ToPixels(100))

	s := c.AddSeries("s", 0, 0, PointSpec{ID: "p", X: 10, Y: 100})
	px, ok := s.Points()[0].Pixel()
	require.True(t, ok)
	assert.Equal(t, geom.Pt{X: 550, Y: 320}, px)
}

func TestPanes_StackVertically(t *testing.T) {
	c := NewBasic(nil, Options{
		Plot: geom.R(0, 0, 100, 200),
		YAxes: []PaneSpec{
			{AxisRange: AxisRange{Max: 1}, Height: 0.5},
			{AxisRange: AxisRange{Max: 1}, Top: 0.5, Height: 0.5},
		},
	})
	require.Equal(t, 2, c.YAxisCount())
	assert.Equal(t, geom.R(0, 0, 100, 100), c.YAxis(0).Pane())
	assert.Equal(t, geom.R(0, 100, 100, 100), c.YAxis(1).Pane())

	i := c.AddPane(PaneSpec{AxisRange: AxisRange{Max: 1}, Top: 0.75, Height: 0.25})
	assert.Equal(t, 2, i)
	assert.Equal(t, geom.R(0, 150, 100, 50), c.YAxis(2).Pane())
	assert.Nil(t, c.YAxis(3))
}

func TestGet_PointsSeriesAndStacking(t *testing.T) {
	c := newTestChart(false)
	c.AddSeries("s1", 0, 0, PointSpec{ID: "a", X: 5, Y: 50}, PointSpec{X: 10, Y: 0})
	p, ok := c.Get("a").(Point)
	require.True(t, ok)
	assert.Equal(t, "s1", p.Series().ID())
	assert.NotNil(t, c.Get("s1.1"), "unnamed points get positional ids")
	assert.Nil(t, c.Get("missing"))

	before, _ := p.Pixel()
	require.True(t, c.SetSeriesOffset("s1", 25))
	after, _ := p.Pixel()
	assert.Equal(t, before.X, after.X)
	assert.Equal(t, before.Y-75, after.Y)

	require.True(t, c.MovePoint("a", 0, 0))
	moved, _ := p.Pixel()
	assert.Equal(t, 50.0, moved.X)

	anchor, ok := c.Get("s1").(Series).Anchor()
	require.True(t, ok)
	assert.Equal(t, 550.0, anchor.X)
	c.SetSeriesVisible("s1", false)
	_, ok = c.Get("s1").(Series).Anchor()
	assert.False(t, ok)
}

func TestRedraw_NotifiesInOrderAndUnsubscribes(t *testing.T) {
	c := newTestChart(false)
	var got []int
	c.OnRedraw(func() { got = append(got, 1) })
	off := c.OnRedraw(func() { got = append(got, 2) })
	c.Redraw()
	off()
	c.Redraw()
	assert.Equal(t, []int{1, 2, 1}, got)
	assert.Equal(t, 2, c.Redraws())
}

func TestIsInsidePlot_PlotRelative(t *testing.T) {
	c := newTestChart(false)
	assert.True(t, c.IsInsidePlot(0, 0))
	assert.True(t, c.IsInsidePlot(500, 300))
	assert.False(t, c.IsInsidePlot(-1, 10))
	assert.False(t, c.IsInsidePlot(10, 301))
}

func TestPaint_SeriesGroupReplacedOnRedraw(t *testing.T) {
	scene := vector.NewScene(600, 400)
	c := NewBasic(scene, Options{Plot: geom.R(0, 0, 100, 100)})
	c.AddSeries("s", 0, 0, PointSpec{X: 10, Y: 10}, PointSpec{X: 20, Y: 20})
	c.Redraw()
	scene.Group("overlay").Add(nil)
	c.Redraw()
	require.NotEmpty(t, scene.Root.Children())
	assert.Equal(t, "series", scene.Root.Children()[0].Name(), "series stay below later groups")
	assert.Len(t, scene.Root.Children()[0].Children(), 1)
	n := 0
	for _, ch := range scene.Root.Children() {
		if ch.Name() == "series" {
			n++
		}
	}
	assert.Equal(t, 1, n)
}
