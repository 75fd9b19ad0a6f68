/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import (
	"fmt"

	"github.com/samber/lo"

	"chartnote/internal/geom"
	"chartnote/internal/render"
)

// pane is the clip region and render group of one y axis.
type pane struct {
	clip  render.Clip
	group render.Element
}

// Collection holds the live annotations of a chart in z-order and the
// per-pane groups they render into.
type Collection struct {
	m        *Manager
	items    []*Annotation
	panes    []pane
	selected *Annotation
}

// Add creates, appends and renders one annotation per options value, in
// order.
func (c *Collection) Add(redraw bool, opts ...Options) []*Annotation {
	out := make([]*Annotation, 0, len(opts))
	for _, o := range opts {
		a := newAnnotation(c, o)
		c.items = append(c.items, a)
		a.Render(redraw)
		out = append(out, a)
	}
	return out
}

// RedrawAnnotations syncs pane clips and groups with the chart's y axes,
// then redraws every annotation in collection order.
func (c *Collection) RedrawAnnotations() {
	c.ensurePanes()
	for _, a := range c.Items() {
		// a pane added at runtime may now exist for an annotation that fell
		// back to pane 0
		a.Render(false)
		a.Redraw()
	}
}

// ensurePanes creates missing pane groups lazily and moves existing clips to
// the current pane bounds.
func (c *Collection) ensurePanes() {
	ch := c.m.chart
	r := ch.Renderer()
	created := false
	for i := 0; i < ch.YAxisCount(); i++ {
		ax := ch.YAxis(i)
		if ax == nil {
			continue
		}
		box := ax.Pane()
		if i < len(c.panes) {
			c.panes[i].clip.SetRect(box)
			continue
		}
		clip := r.ClipRect(box)
		g := r.Group(fmt.Sprintf("annotations-group-%d", i))
		g.SetClip(clip)
		g.Add(nil)
		c.panes = append(c.panes, pane{clip: clip, group: g})
		created = true
	}
	if created {
		c.m.log.Debug("pane groups created", "panes", len(c.panes))
		c.m.raiseToolbar()
	}
}

// paneIndex maps a y axis index onto an existing pane, falling back to the
// first one.
func (c *Collection) paneIndex(yAxis int) int {
	c.ensurePanes()
	if yAxis < 0 || yAxis >= len(c.panes) {
		return 0
	}
	return yAxis
}

func (c *Collection) paneGroup(i int) render.Element {
	if i < 0 || i >= len(c.panes) {
		return nil
	}
	return c.panes[i].group
}

// PaneCount reports how many pane groups exist.
func (c *Collection) PaneCount() int { return len(c.panes) }

// PaneClip returns the clip rectangle of pane i.
func (c *Collection) PaneClip(i int) (geom.Rect, bool) {
	if i < 0 || i >= len(c.panes) {
		return geom.Rect{}, false
	}
	return c.panes[i].clip.Rect(), true
}

// Items returns the live annotations in z-order.
func (c *Collection) Items() []*Annotation { return append([]*Annotation(nil), c.items...) }

// Len is the number of live annotations.
func (c *Collection) Len() int { return len(c.items) }

// Options mirrors the declarative list: one options value per live
// annotation, in z-order.
func (c *Collection) Options() []Options {
	return lo.Map(c.items, func(a *Annotation, _ int) Options { return a.Options() })
}

// SetOptions replaces every annotation with the given list.
func (c *Collection) SetOptions(list []Options) {
	for _, a := range c.Items() {
		a.Destroy()
	}
	c.Add(true, list...)
}

// Selected is the selected annotation or nil.
func (c *Collection) Selected() *Annotation { return c.selected }

// Get finds an annotation by options id.
func (c *Collection) Get(id string) *Annotation {
	a, _ := lo.Find(c.items, func(a *Annotation) bool { return id != "" && a.opts.ID == id })
	return a
}

func (c *Collection) remove(a *Annotation) {
	c.items = lo.Without(c.items, a)
	if c.selected == a {
		c.selected = nil
	}
}

// DestroyLinked destroys a and, when it belongs to a linked group, every
// annotation sharing that group id. Items are visited top-most first.
func (c *Collection) DestroyLinked(a *Annotation) {
	if a == nil || a.destroyed {
		return
	}
	g := a.opts.LinkedAnnotations
	if g == "" {
		a.Destroy()
		return
	}
	for _, it := range lo.Reverse(c.Items()) {
		if !it.destroyed && it.opts.LinkedAnnotations == g {
			it.Destroy()
		}
	}
}

// HitTest returns the top-most visible annotation under p (chart pixels),
// honoring pane clips.
func (c *Collection) HitTest(p geom.Pt) *Annotation {
	for pi := len(c.panes) - 1; pi >= 0; pi-- {
		if !c.panes[pi].clip.Rect().Contains(p) {
			continue
		}
		for i := len(c.items) - 1; i >= 0; i-- {
			a := c.items[i]
			if a.pane != pi || a.group == nil {
				continue
			}
			if a.group.Hit(p) {
				return a
			}
		}
	}
	return nil
}
