/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"chartnote/internal/annotation"
	"chartnote/internal/chart"
	"chartnote/internal/config"
	applog "chartnote/internal/log"
	"chartnote/internal/vector"
)

// Built is a document brought to life: scene, chart and annotation context.
type Built struct {
	Doc     *Document
	Scene   *vector.Scene
	Chart   *chart.Basic
	Manager *annotation.Manager
}

// Build lays out the chart of d on a fresh scene, adds its series and
// annotations and runs the first redraw. Toolbar settings in d override cfg.
func Build(d *Document, cfg config.AppConfig, opts ...func(*annotation.Settings)) *Built {
	size := d.Chart.Size()
	scene := vector.NewScene(size.W, size.H)
	c := chart.NewBasic(scene, chart.Options{
		Width:    size.W,
		Height:   size.H,
		Plot:     d.Chart.PlotBox(),
		Inverted: d.Chart.Inverted,
		XAxes:    d.Chart.XAxes,
		YAxes:    d.Chart.YAxes,
	})
	for _, s := range d.Series {
		c.AddSeries(s.ID, s.XAxis, s.YAxis, s.Points...)
		if s.Offset != 0 {
			c.SetSeriesOffset(s.ID, s.Offset)
		}
		if s.Hidden {
			c.SetSeriesVisible(s.ID, false)
		}
	}

	st := annotation.SettingsFrom(cfg)
	if tb := d.Toolbar; tb != nil {
		if tb.Enabled != nil {
			st.Toolbar.Enabled = *tb.Enabled
		}
		if tb.OffsetX != nil {
			st.Toolbar.OffsetX = *tb.OffsetX
		}
		if tb.OffsetY != nil {
			st.Toolbar.OffsetY = *tb.OffsetY
		}
		st.Buttons = tb.Buttons
	}
	for _, o := range opts {
		o(&st)
	}
	m := annotation.NewManager(c, st, d.Annotations...)
	c.Redraw()
	applog.WithComponent("document").Debug("document built",
		"series", len(d.Series), "annotations", len(d.Annotations), "panes", c.YAxisCount())
	return &Built{Doc: d, Scene: scene, Chart: c, Manager: m}
}

// Snapshot returns a copy of the document carrying the live annotation
// list.
func (b *Built) Snapshot() *Document {
	out := *b.Doc
	out.Annotations = b.Manager.Options()
	return &out
}

// Close releases the annotation context.
func (b *Built) Close() { b.Manager.Close() }
