/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartnote/internal/chart"
	"chartnote/internal/config"
	"chartnote/internal/geom"
	"chartnote/internal/pointer"
	"chartnote/internal/render"
	"chartnote/internal/vector"
)

type host struct {
	scene *vector.Scene
	chart *chart.Basic
	m     *Manager
}

func newHost(t *testing.T, inverted bool, initial ...Options) *host {
	t.Helper()
	scene := vector.NewScene(600, 400)
	c := chart.NewBasic(scene, chart.Options{Width: 600, Height: 400, Plot: testPlot, Inverted: inverted})
	m := NewManager(c, SettingsFrom(config.Defaults()), initial...)
	t.Cleanup(m.Close)
	return &host{scene: scene, chart: c, m: m}
}

func (h *host) send(k pointer.Kind, x, y float64) {
	h.m.Handle(pointer.Event{Kind: k, X: x, Y: y, Button: pointer.Primary})
}

func (h *host) drag(x0, y0, x1, y1 float64) {
	h.send(pointer.Down, x0, y0)
	h.send(pointer.Move, (x0+x1)/2, (y0+y1)/2)
	h.send(pointer.Move, x1, y1)
	h.send(pointer.Up, x1, y1)
}

func translation(t *testing.T, a *Annotation) geom.Pt {
	t.Helper()
	require.NotNil(t, a.Group())
	x, y, ok := a.Group().Translation()
	require.True(t, ok, "group was never placed")
	return geom.Pt{X: x, Y: y}
}

func assertPt(t *testing.T, want, got geom.Pt, msg ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, msg...)
	assert.InDelta(t, want.Y, got.Y, 1e-9, msg...)
}

// box returns a 20x20 rect anchored at its top-left corner.
func box(xv, yv float64) Options {
	return Options{
		XValue: F(xv), YValue: F(yv),
		AnchorX: "left", AnchorY: "top",
		AllowDragX: B(true), AllowDragY: B(true),
		Shape: &Shape{Type: ShapeRect, Params: render.Attrs{Width: render.F(20), Height: render.F(20)}},
	}
}

func TestRender_PlacesValueAnnotation(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	p, ok := a.Position()
	require.True(t, ok)
	assert.InDelta(t, h.chart.XAxis(0).ToPixels(10), p.X, 1e-9)
	assert.InDelta(t, h.chart.YAxis(0).ToPixels(20), p.Y, 1e-9)
	assertPt(t, geom.Pt{X: 100, Y: 280}, translation(t, a))
	require.NotNil(t, a.ShapeElement())
	assert.Equal(t, "#000000", a.ShapeElement().Attrs().Stroke, "default stroke")
}

func TestDrag_CommitRoundTripsThroughAxis(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	before := h.chart.Redraws()

	h.drag(105, 285, 125, 295)

	o := a.Options()
	xa, ya := h.chart.XAxis(0), h.chart.YAxis(0)
	assert.InDelta(t, xa.ToValue(xa.ToPixels(10)+20), *o.XValue, 1e-9)
	assert.InDelta(t, ya.ToValue(ya.ToPixels(20)+10), *o.YValue, 1e-9)
	assert.InDelta(t, 14, *o.XValue, 1e-9)
	assert.Equal(t, before+1, h.chart.Redraws(), "one host redraw per commit")
	assertPt(t, geom.Pt{X: 120, Y: 290}, translation(t, a))
	assert.True(t, a.Selected(), "dragging selects")
	assert.Equal(t, DragIdle, h.m.Controller().State())
}

func TestDrag_MaskedAxisKeepsValueExactly(t *testing.T) {
	o := box(10.123456789, 20)
	o.AllowDragX = B(false)
	h := newHost(t, false, o)
	a := h.m.Collection().Items()[0]

	h.drag(105, 285, 145, 265)

	got := a.Options()
	assert.Equal(t, 10.123456789, *got.XValue, "x must not move at all")
	assert.InDelta(t, 20+20.0/3, *got.YValue, 1e-9)
}

func TestDrag_LiveTranslationIsMasked(t *testing.T) {
	o := box(10, 20)
	o.AllowDragY = B(false)
	h := newHost(t, false, o)
	a := h.m.Collection().Items()[0]

	h.send(pointer.Down, 105, 285)
	h.send(pointer.Move, 135, 250)
	assert.Equal(t, Dragging, h.m.Controller().State())
	assertPt(t, geom.Pt{X: 130, Y: 280}, translation(t, a))
	h.send(pointer.Up, 135, 250)
}

func TestDrag_ZeroDeltaIsNoop(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	before := h.chart.Redraws()

	h.send(pointer.Down, 105, 285)
	h.send(pointer.Move, 105, 285)
	h.send(pointer.Up, 105, 285)

	assert.Equal(t, before, h.chart.Redraws())
	assert.Equal(t, 10.0, *a.Options().XValue)
	assert.False(t, h.m.CanUndo())
}

func TestDrag_ListenersDetachedWhenReleasedOutsidePlot(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]

	h.send(pointer.Down, 105, 285)
	assert.Equal(t, 1, h.m.Listeners(pointer.Move))
	assert.Equal(t, ownerDrag, h.m.Owner())
	assert.False(t, h.m.AllowZoom())

	h.send(pointer.Move, 5, 5) // outside the plot: ignored
	assertPt(t, geom.Pt{X: 100, Y: 280}, translation(t, a))
	h.send(pointer.Up, 5, 5)

	assert.Equal(t, 0, h.m.Listeners(pointer.Move))
	assert.Equal(t, 0, h.m.Listeners(pointer.Up))
	assert.Equal(t, "", h.m.Owner())
	assert.True(t, h.m.AllowZoom())
}

func TestDrag_NotDraggableOnlySelects(t *testing.T) {
	o := box(10, 20)
	o.AllowDragX, o.AllowDragY = B(false), B(false)
	h := newHost(t, false, o)
	a := h.m.Collection().Items()[0]

	h.send(pointer.Down, 105, 285)
	assert.Equal(t, DragIdle, h.m.Controller().State())
	assert.Equal(t, 0, h.m.Listeners(pointer.Move))
	assert.True(t, a.Selected())
}

func TestUndoRedo_Drag(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	h.drag(105, 285, 125, 285)
	require.True(t, h.m.CanUndo())

	require.True(t, h.m.Undo())
	items := h.m.Collection().Items()
	require.Len(t, items, 1)
	assert.Equal(t, 10.0, *items[0].Options().XValue)

	require.True(t, h.m.Redo())
	assert.InDelta(t, 14, *h.m.Collection().Items()[0].Options().XValue, 1e-9)
}

func TestAnchor_ShiftsByBoxWidth(t *testing.T) {
	at := func(anchor string) float64 {
		o := box(10, 20)
		o.AnchorX = anchor
		h := newHost(t, false, o)
		return translation(t, h.m.Collection().Items()[0]).X
	}
	left, center, right := at("left"), at("center"), at("right")
	// the rect has a 20px box
	assert.InDelta(t, -20, right-left, 1e-9)
	assert.InDelta(t, -10, center-left, 1e-9)
}

func TestAnchor_ExplicitWidthWins(t *testing.T) {
	o := box(10, 20)
	o.AnchorX, o.Width = "right", F(60)
	h := newHost(t, false, o)
	assert.InDelta(t, 40, translation(t, h.m.Collection().Items()[0]).X, 1e-9)
}

func TestSelect_IsExclusive(t *testing.T) {
	h := newHost(t, false, box(10, 20), box(50, 50))
	items := h.m.Collection().Items()
	a, b := items[0], items[1]

	a.Select()
	require.NotNil(t, a.Marker())
	b.Select()
	assert.Nil(t, a.Marker())
	assert.NotNil(t, b.Marker())
	assert.Same(t, b, h.m.Collection().Selected())

	n := 0
	for _, it := range h.m.Collection().Items() {
		if it.Marker() != nil {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestSelect_MarkerIsPadded(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	a.Select()
	m := a.Marker().Attrs()
	assert.Equal(t, -5.0, *m.X)
	assert.Equal(t, -5.0, *m.Y)
	assert.Equal(t, 30.0, *m.Width)
	assert.Equal(t, "#3399ff", m.Stroke)

	a.Deselect()
	assert.Nil(t, a.Marker())
	assert.Nil(t, h.m.Collection().Selected())
}

func TestClickOnEmptyPlotDeselects(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	a.Select()
	h.send(pointer.Down, 400, 200)
	h.send(pointer.Up, 400, 200)
	assert.False(t, a.Selected())
}

func TestCascadeDelete_LinkedGroup(t *testing.T) {
	a := box(10, 20)
	a.LinkedAnnotations = "g1"
	b := box(60, 60)
	b.LinkedAnnotations = "g1"
	c := box(80, 80)
	c.ID = "keep"
	h := newHost(t, false, a, b, c)
	items := h.m.Collection().Items()

	h.send(pointer.DblClick, 105, 285)

	assert.True(t, items[0].Destroyed())
	assert.True(t, items[1].Destroyed())
	require.Equal(t, 1, h.m.Collection().Len())
	opts := h.m.Options()
	require.Len(t, opts, 1)
	assert.Equal(t, "keep", opts[0].ID)

	assert.NotPanics(t, func() { items[0].Destroy() })
	assert.True(t, h.m.CanUndo())
}

func TestDestroy_TitleOnlyAndTwice(t *testing.T) {
	h := newHost(t, false, Options{X: F(100), Y: F(100), Title: &Title{Text: "note"}})
	a := h.m.Collection().Items()[0]
	assert.Nil(t, a.ShapeElement())
	require.NotNil(t, a.TitleElement())
	a.Destroy()
	a.Destroy()
	assert.Equal(t, 0, h.m.Collection().Len())
	assert.Nil(t, a.Group())
}

func TestRender_IdempotentListeners(t *testing.T) {
	downs := 0
	o := box(10, 20)
	o.Events.MouseDown = func(pointer.Event, *Annotation) { downs++ }
	h := newHost(t, false, o)
	a := h.m.Collection().Items()[0]

	a.Render(true)
	a.Render(true)
	a.Update(Options{AnchorY: "middle"}, true)
	assert.Equal(t, 1, a.ListenerCount(pointer.Down))

	h.send(pointer.Down, 105, 275)
	h.send(pointer.Up, 105, 275)
	assert.Equal(t, 1, downs)
}

func TestUpdate_MergesParamsAndSwapsShape(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	first := a.ShapeElement()

	a.Update(Options{Shape: &Shape{Params: render.Attrs{Width: render.F(50)}}}, true)
	assert.Same(t, first, a.ShapeElement(), "same kind keeps the primitive")
	got := a.ShapeElement().Attrs()
	assert.Equal(t, 50.0, *got.Width)
	assert.Equal(t, 20.0, *got.Height)

	a.Update(Options{Shape: &Shape{Type: ShapeCircle, Params: render.Attrs{R: render.F(5)}}}, true)
	require.NotNil(t, a.ShapeElement())
	assert.NotSame(t, first, a.ShapeElement())
	assert.Equal(t, 5.0, *a.ShapeElement().Attrs().X, "circle centered on its box")
}

func TestUpdate_ShapeAddedToTitleOnlyGetsDefaults(t *testing.T) {
	h := newHost(t, false, Options{X: F(100), Y: F(100), Title: &Title{Text: "t"}})
	a := h.m.Collection().Items()[0]
	a.Update(Options{Shape: &Shape{Type: ShapeRect, Params: render.Attrs{Width: render.F(4), Height: render.F(4)}}}, true)
	require.NotNil(t, a.ShapeElement())
	assert.Equal(t, "#000000", a.ShapeElement().Attrs().Stroke)
}

func TestUnknownShapeTypeKeepsTitle(t *testing.T) {
	h := newHost(t, false, Options{X: F(100), Y: F(100), Shape: &Shape{Type: "star"}, Title: &Title{Text: "t"}})
	a := h.m.Collection().Items()[0]
	assert.Nil(t, a.ShapeElement())
	assert.NotNil(t, a.TitleElement())
	_, ok := a.Position()
	assert.True(t, ok)
}

func TestShowHide(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	a.Hide()
	assert.False(t, a.Visible())
	assert.Nil(t, h.m.Collection().HitTest(geom.Pt{X: 105, Y: 285}), "hidden annotations are not hit")
	a.Show()
	assert.True(t, a.Visible())
}

func TestLink_TracksPointWithoutUpdate(t *testing.T) {
	scene := vector.NewScene(600, 400)
	c := chart.NewBasic(scene, chart.Options{Width: 600, Height: 400, Plot: testPlot})
	c.AddSeries("s", 0, 0, chart.PointSpec{ID: "p1", X: 10, Y: 10}, chart.PointSpec{X: 20, Y: 20})
	m := NewManager(c, SettingsFrom(config.Defaults()), Options{
		LinkedTo: "p1", XValue: F(90), YValue: F(90),
		AnchorX: "left", AnchorY: "top",
		Shape: &Shape{Type: ShapeRect, Params: render.Attrs{Width: render.F(4), Height: render.F(4)}},
	})
	defer m.Close()
	a := m.Collection().Items()[0]
	require.NotNil(t, a.Linked())
	assertPt(t, geom.Pt{X: 100, Y: 310}, translation(t, a))

	c.MovePoint("p1", 30, 40)
	c.Redraw()
	assertPt(t, geom.Pt{X: 200, Y: 220}, translation(t, a))

	c.SetSeriesOffset("s", 10)
	c.Redraw()
	assertPt(t, geom.Pt{X: 200, Y: 190}, translation(t, a), "stacking offset is followed")
}

func TestLink_SeriesVisibilityWins(t *testing.T) {
	scene := vector.NewScene(600, 400)
	c := chart.NewBasic(scene, chart.Options{Width: 600, Height: 400, Plot: testPlot})
	c.AddSeries("s", 0, 0, chart.PointSpec{X: 10, Y: 10}, chart.PointSpec{X: 20, Y: 20})
	m := NewManager(c, SettingsFrom(config.Defaults()), Options{LinkedTo: "s", Title: &Title{Text: "last"}})
	defer m.Close()
	a := m.Collection().Items()[0]
	p, ok := a.Position()
	require.True(t, ok)
	assert.InDelta(t, 150, p.X, 1e-9, "anchored on the last point")

	a.Hide()
	assert.True(t, a.Visible(), "linked annotations ignore Hide")
	c.SetSeriesVisible("s", false)
	c.Redraw()
	assert.False(t, a.Visible())
	a.Show()
	assert.False(t, a.Visible(), "linked annotations ignore Show")
}

func TestLink_MissingObjectFallsBack(t *testing.T) {
	h := newHost(t, false, Options{LinkedTo: "gone", X: F(70), Y: F(80), AnchorX: "left", AnchorY: "top", Title: &Title{Text: "x"}})
	a := h.m.Collection().Items()[0]
	assert.Nil(t, a.Linked())
	assertPt(t, geom.Pt{X: 70, Y: 80}, translation(t, a))
}

func TestRedraw_SkipsNonFiniteFrame(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	require.NoError(t, h.chart.SetExtremes(true, 0, 5, 5))
	h.chart.Redraw()
	assertPt(t, geom.Pt{X: 100, Y: 280}, translation(t, a), "previous frame kept")

	require.NoError(t, h.chart.SetExtremes(true, 0, 0, 50))
	h.chart.Redraw()
	assertPt(t, geom.Pt{X: 150, Y: 280}, translation(t, a))
}

func TestRedraw_AnimatesOnlyWhenChartAnimates(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	_, animates := h.scene.Counts()
	require.Equal(t, 0, animates)

	h.chart.SetAnimating(true)
	h.chart.Redraw()
	_, animates = h.scene.Counts()
	assert.Equal(t, 1, animates)
}

func TestPanes_CreatedLazilyAndClipped(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	coll := h.m.Collection()
	require.Equal(t, 1, coll.PaneCount())

	idx := h.chart.AddPane(chart.PaneSpec{AxisRange: chart.AxisRange{Min: 0, Max: 10}, Top: 0.5, Height: 0.5})
	assert.Equal(t, 1, coll.PaneCount(), "not before the next redraw")
	h.chart.Redraw()
	assert.Equal(t, 2, coll.PaneCount())
	r, ok := coll.PaneClip(idx)
	require.True(t, ok)
	assert.Equal(t, h.chart.YAxis(idx).Pane(), r)
	assert.NotNil(t, h.scene.Find("annotations-group-1"))
}

func TestHitTest_RespectsPaneClip(t *testing.T) {
	o := box(10, 20)
	o.X, o.XValue = F(20), nil // left of the plot, outside the clip
	h := newHost(t, false, o)
	assert.Nil(t, h.m.Collection().HitTest(geom.Pt{X: 25, Y: 285}))
}

func TestHoverHooks(t *testing.T) {
	var seen []string
	o := box(10, 20)
	o.Events.MouseOver = func(pointer.Event, *Annotation) { seen = append(seen, "over") }
	o.Events.MouseOut = func(pointer.Event, *Annotation) { seen = append(seen, "out") }
	h := newHost(t, false, o)

	h.send(pointer.Move, 105, 285)
	h.send(pointer.Move, 106, 286)
	h.send(pointer.Move, 300, 100)
	assert.Equal(t, []string{"over", "out"}, seen)
}

func TestClose_DetachesFromChart(t *testing.T) {
	h := newHost(t, false, box(10, 20))
	a := h.m.Collection().Items()[0]
	h.send(pointer.Down, 105, 285)
	h.m.Close()
	assert.Equal(t, 0, h.m.Listeners(pointer.Move))
	assert.Equal(t, "", h.m.Owner())

	require.NoError(t, h.chart.SetExtremes(true, 0, 0, 50))
	h.chart.Redraw()
	assertPt(t, geom.Pt{X: 100, Y: 280}, translation(t, a), "no redraw after Close")
}

func TestSetOptions_ReplacesList(t *testing.T) {
	h := newHost(t, false, box(10, 20), box(30, 30))
	h.m.SetOptions([]Options{box(50, 50)})
	require.Equal(t, 1, h.m.Collection().Len())
	assert.Equal(t, 50.0, *h.m.Options()[0].XValue)
}

func TestInverted_DragAlongXAxis(t *testing.T) {
	o := box(10, 20)
	o.AllowDragY = B(false)
	h := newHost(t, true, o)
	a := h.m.Collection().Items()[0]
	start := translation(t, a)

	// x runs downward on inverted charts; only vertical movement counts
	h.drag(start.X+5, start.Y+5, start.X+45, start.Y+35)

	got := a.Options()
	assert.Equal(t, 20.0, *got.YValue)
	assert.InDelta(t, 20, *got.XValue, 1e-9)
}

func TestInverted_MixedValueAndPixelDragsHorizontally(t *testing.T) {
	o := Options{
		XValue: F(10), Y: F(100),
		AnchorX: "left", AnchorY: "top",
		AllowDragX: B(true), AllowDragY: B(true),
		Shape: &Shape{Type: ShapeRect, Params: render.Attrs{Width: render.F(20), Height: render.F(20)}},
	}
	h := newHost(t, true, o)
	a := h.m.Collection().Items()[0]
	start := translation(t, a)
	xa := h.chart.XAxis(0)

	h.drag(start.X+5, start.Y+5, start.X+45, start.Y+5)

	got := a.Options()
	require.NotNil(t, got.XValue)
	assert.InDelta(t, xa.ToValue(xa.ToPixels(10)+40), *got.XValue, 1e-9)
	assert.Nil(t, got.YValue)
	assert.Equal(t, 100.0, *got.Y)
	assertPt(t, geom.Pt{X: start.X + 40, Y: start.Y}, translation(t, a), "commit keeps the dragged position")
	assert.True(t, h.m.CanUndo())
}

func TestLink_PressSelectsWithoutDragging(t *testing.T) {
	scene := vector.NewScene(600, 400)
	c := chart.NewBasic(scene, chart.Options{Width: 600, Height: 400, Plot: testPlot})
	c.AddSeries("s", 0, 0, chart.PointSpec{ID: "p1", X: 10, Y: 10})
	m := NewManager(c, SettingsFrom(config.Defaults()), Options{
		LinkedTo: "p1", XValue: F(90), YValue: F(90),
		AnchorX: "left", AnchorY: "top",
		AllowDragX: B(true), AllowDragY: B(true),
		Shape: &Shape{Type: ShapeRect, Params: render.Attrs{Width: render.F(4), Height: render.F(4)}},
	})
	defer m.Close()
	a := m.Collection().Items()[0]
	require.NotNil(t, a.Linked())

	send := func(k pointer.Kind, x, y float64) {
		m.Handle(pointer.Event{Kind: k, X: x, Y: y, Button: pointer.Primary})
	}
	send(pointer.Down, 101, 311)
	assert.True(t, a.Selected())
	assert.Equal(t, DragIdle, m.Controller().State())
	assert.Equal(t, 0, m.Listeners(pointer.Move))
	send(pointer.Move, 141, 281)
	send(pointer.Up, 141, 281)

	assert.Equal(t, 90.0, *a.Options().XValue)
	assert.False(t, m.CanUndo(), "no drag step recorded")
	assertPt(t, geom.Pt{X: 100, Y: 310}, translation(t, a))
}
