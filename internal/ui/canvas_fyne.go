//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"chartnote/internal/export"
	"chartnote/internal/geom"
	"chartnote/internal/pointer"
)

// ChartCanvas shows the session scene and turns mouse input into pointer
// events in chart coordinates.
type ChartCanvas struct {
	widget.BaseWidget

	session *Session
	bg      string
	pressed bool
	last    fyne.Position

	// OnChange runs after every forwarded event.
	OnChange func()
}

var (
	_ desktop.Mouseable   = (*ChartCanvas)(nil)
	_ desktop.Hoverable   = (*ChartCanvas)(nil)
	_ fyne.Draggable      = (*ChartCanvas)(nil)
	_ fyne.Tappable       = (*ChartCanvas)(nil)
	_ fyne.DoubleTappable = (*ChartCanvas)(nil)
)

func NewChartCanvas(s *Session, background string) *ChartCanvas {
	c := &ChartCanvas{session: s, bg: background}
	c.ExtendBaseWidget(c)
	return c
}

// SetSession swaps the displayed document.
func (c *ChartCanvas) SetSession(s *Session) {
	c.session = s
	c.pressed = false
	c.Refresh()
}

func (c *ChartCanvas) viewport() Viewport {
	sz := c.session.Built.Chart.Size()
	return Fit(sz, geom.Size{W: float64(c.Size().Width), H: float64(c.Size().Height)})
}

func (c *ChartCanvas) send(k pointer.Kind, pos fyne.Position, b desktop.MouseButton) {
	p := c.viewport().ToChart(float64(pos.X), float64(pos.Y))
	c.session.Handle(pointer.Event{Kind: k, X: p.X, Y: p.Y, Button: button(b)})
	c.last = pos
	c.Refresh()
	if c.OnChange != nil {
		c.OnChange()
	}
}

func button(b desktop.MouseButton) pointer.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return pointer.Secondary
	case desktop.MouseButtonTertiary:
		return pointer.Middle
	}
	return pointer.Primary
}

func (c *ChartCanvas) MouseDown(e *desktop.MouseEvent) {
	c.pressed = true
	c.send(pointer.Down, e.Position, e.Button)
}

func (c *ChartCanvas) MouseUp(e *desktop.MouseEvent) {
	if !c.pressed {
		return
	}
	c.pressed = false
	c.send(pointer.Up, e.Position, e.Button)
}

func (c *ChartCanvas) MouseIn(*desktop.MouseEvent) {}

func (c *ChartCanvas) MouseMoved(e *desktop.MouseEvent) { c.send(pointer.Move, e.Position, e.Button) }

func (c *ChartCanvas) MouseOut() {}

// Dragged covers moves while a button is held; hover moves stop during drags.
func (c *ChartCanvas) Dragged(e *fyne.DragEvent) {
	c.send(pointer.Move, e.Position, desktop.MouseButtonPrimary)
}

// DragEnd closes a drag whose MouseUp was not delivered.
func (c *ChartCanvas) DragEnd() {
	if c.pressed {
		c.pressed = false
		c.send(pointer.Up, c.last, desktop.MouseButtonPrimary)
	}
}

func (c *ChartCanvas) Tapped(e *fyne.PointEvent) {
	c.send(pointer.Click, e.Position, desktop.MouseButtonPrimary)
}

func (c *ChartCanvas) DoubleTapped(e *fyne.PointEvent) {
	c.send(pointer.DblClick, e.Position, desktop.MouseButtonPrimary)
}

func (c *ChartCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &chartRenderer{c: c}
	r.raster = canvas.NewRaster(r.draw)
	return r
}

type chartRenderer struct {
	c      *ChartCanvas
	raster *canvas.Raster
}

// draw renders the scene for a w x h pixel raster. Pixels may be denser than
// widget units on HiDPI screens.
func (r *chartRenderer) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}), image.Point{}, draw.Src)
	if r.c.Size().Width <= 0 || r.c.session == nil {
		return dst
	}
	px := float64(w) / float64(r.c.Size().Width)
	vp := r.c.viewport()
	img, err := export.Raster(r.c.session.Built.Scene, export.Options{Background: r.c.bg, Scale: vp.Scale * px})
	if err != nil {
		r.c.session.log.Warn("raster failed", "err", err)
		return dst
	}
	at := image.Pt(int(math.Round(vp.OffX*px)), int(math.Round(vp.OffY*px)))
	draw.Draw(dst, img.Bounds().Add(at), img, image.Point{}, draw.Over)
	return dst
}

func (r *chartRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))
}

func (r *chartRenderer) MinSize() fyne.Size           { return fyne.NewSize(320, 200) }
func (r *chartRenderer) Refresh()                     { canvas.Refresh(r.raster) }
func (r *chartRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.raster} }
func (r *chartRenderer) Destroy()                     {}
