/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package annotation is the annotation geometry and interaction engine: it
// keeps shapes and labels declared in options in sync with a host chart's
// coordinate system and runs the pointer gestures that create, move, select
// and delete them.
//
// Everything runs on the caller's goroutine. A Manager is the per-chart
// context; hosts feed it pointer events through Handle.
package annotation

import (
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"chartnote/internal/chart"
	"chartnote/internal/config"
	"chartnote/internal/geom"
	applog "chartnote/internal/log"
	"chartnote/internal/pointer"
	"chartnote/internal/undo"
)

const historyScope = "annotations"

// Settings tune a Manager. Use SettingsFrom to derive them from the app
// config.
type Settings struct {
	Animation bool
	Selection config.SelectionConfig
	History   config.HistoryConfig
	Toolbar   config.ToolbarConfig
	// Buttons are per-index overrides of DefaultButtons.
	Buttons []Button
	// OnTextInput is called when the text tool opens its input; the host
	// shows an entry and answers with ConfirmText or CancelText.
	OnTextInput func(TextInput)
}

// SettingsFrom maps the app config onto engine settings.
func SettingsFrom(cfg config.AppConfig) Settings {
	return Settings{
		Animation: cfg.Annotations.Animation,
		Selection: cfg.Annotations.Selection,
		History:   cfg.Annotations.History,
		Toolbar:   cfg.Toolbar,
	}
}

// Manager is the annotation context of one chart: collection, selection,
// drag controller, drawer, pointer owner and history. Create it with
// NewManager and release it with Close.
type Manager struct {
	chart    chart.Chart
	settings Settings
	log      *slog.Logger

	owner   pointer.Owner
	bus     pointer.Bus
	coll    *Collection
	drag    *Controller
	drawer  *Drawer
	history *undo.Manager

	hover  *Annotation
	unsub  func()
	closed bool
}

// NewManager attaches an annotation context to c, renders the toolbar and
// adds the initial annotations.
func NewManager(c chart.Chart, s Settings, initial ...Options) *Manager {
	m := &Manager{chart: c, settings: s, log: applog.WithComponent("annotation")}
	m.coll = &Collection{m: m}
	m.drag = &Controller{m: m, log: applog.WithComponent("drag")}
	m.drawer = newDrawer(m, MergeButtons(DefaultButtons(), s.Buttons))
	m.history = undo.NewManager(undo.Config{
		MaxDepth:    s.History.MaxDepth,
		MinInterval: time.Duration(s.History.MinIntervalMs) * time.Millisecond,
	})
	m.unsub = c.OnRedraw(m.onRedraw)
	m.drawer.layout()
	m.coll.Add(true, initial...)
	m.log.Debug("manager ready", "annotations", len(initial), "toolbar", s.Toolbar.Enabled)
	return m
}

func (m *Manager) onRedraw() {
	if m.closed {
		return
	}
	m.drawer.layout()
	m.coll.RedrawAnnotations()
}

// Chart is the host chart.
func (m *Manager) Chart() chart.Chart { return m.chart }

// Collection holds the live annotations.
func (m *Manager) Collection() *Collection { return m.coll }

// Controller is the drag state machine.
func (m *Manager) Controller() *Controller { return m.drag }

// Drawer is the creation tool.
func (m *Manager) Drawer() *Drawer { return m.drawer }

// Owner names the state machine capturing the pointer, "" when none.
func (m *Manager) Owner() string { return m.owner.Holder() }

// Listeners reports how many document level listeners of kind k exist.
func (m *Manager) Listeners(k pointer.Kind) int { return m.bus.Count(k) }

// Add adds one or many annotations.
func (m *Manager) Add(redraw bool, opts ...Options) []*Annotation {
	return m.coll.Add(redraw, opts...)
}

// Options mirrors the declarative annotation list.
func (m *Manager) Options() []Options { return m.coll.Options() }

// SetOptions replaces the annotation list.
func (m *Manager) SetOptions(list []Options) {
	m.drag.Cancel()
	m.drawer.Cancel()
	m.coll.SetOptions(list)
}

// RedrawAnnotations redraws every annotation without a chart redraw.
func (m *Manager) RedrawAnnotations() { m.coll.RedrawAnnotations() }

// AllowZoom reports whether the host may run its own pan and zoom. It is
// false while a tool is armed or a gesture owns the pointer.
func (m *Manager) AllowZoom() bool { return m.drawer.allowZoom && !m.owner.Held() }

// ConfirmText answers an open text input.
func (m *Manager) ConfirmText(text string) bool { return m.drawer.ConfirmText(text) }

// CancelText closes an open text input without a title.
func (m *Manager) CancelText() { m.drawer.CancelText() }

// Handle routes one host pointer event. Down goes to the toolbar, then the
// armed drawer, then the top-most annotation under the pointer. Move and Up
// reach the document listeners of a running gesture.
func (m *Manager) Handle(e pointer.Event) {
	if m.closed {
		return
	}
	p := geom.Pt{X: e.X, Y: e.Y}
	switch e.Kind {
	case pointer.Down:
		if i := m.drawer.ButtonAt(p); i >= 0 {
			m.drawer.Click(i)
			return
		}
		if m.drawer.Down(e) || m.drawer.armed >= 0 {
			return
		}
		if a := m.coll.HitTest(p); a != nil {
			a.Dispatch(e)
			return
		}
		if sel := m.coll.selected; sel != nil {
			sel.Deselect()
		}
		m.bus.Dispatch(e)
	case pointer.Move:
		m.drawer.Hover(p)
		m.bus.Dispatch(e)
		if !m.owner.Held() {
			m.trackHover(e)
		}
	case pointer.Up:
		if !m.owner.Held() || m.owner.Holder() == ownerDrag {
			if a := m.coll.HitTest(p); a != nil {
				a.Dispatch(e)
			}
		}
		m.bus.Dispatch(e)
	case pointer.Click, pointer.DblClick:
		if m.drawer.ButtonAt(p) >= 0 || m.drawer.armed >= 0 {
			return
		}
		if a := m.coll.HitTest(p); a != nil {
			a.Dispatch(e)
		}
	}
}

func (m *Manager) trackHover(e pointer.Event) {
	a := m.coll.HitTest(geom.Pt{X: e.X, Y: e.Y})
	if a == m.hover {
		return
	}
	if prev := m.hover; prev != nil && !prev.destroyed {
		out := e
		out.Kind = pointer.Out
		prev.Dispatch(out)
	}
	m.hover = a
	if a != nil {
		over := e
		over.Kind = pointer.Over
		a.Dispatch(over)
	}
}

func (m *Manager) raiseToolbar() { m.drawer.raise() }

// forget drops every reference the context holds to a destroyed annotation.
func (m *Manager) forget(a *Annotation) {
	if m.hover == a {
		m.hover = nil
	}
	if m.drag.target == a {
		m.drag.Cancel()
	}
	if m.drawer.current == a {
		m.drawer.reset()
	}
	if in := m.drawer.input; in != nil && in.Target == a {
		m.drawer.input = nil
	}
}

func (m *Manager) destroyCascade(a *Annotation) {
	m.snapshot("delete")
	m.coll.DestroyLinked(a)
}

// Destroy removes a (and its linked group) with an undo step.
func (m *Manager) Destroy(a *Annotation) {
	if a == nil || a.destroyed {
		return
	}
	m.destroyCascade(a)
}

// capture serializes the declarative list for the history.
func (m *Manager) capture() []byte {
	b, err := yaml.Marshal(m.coll.Options())
	if err != nil {
		m.log.Warn("history snapshot failed", "err", err)
		return nil
	}
	return b
}

func (m *Manager) push(label string, blob []byte) {
	if blob == nil {
		return
	}
	m.history.Push(undo.Snapshot{Scope: historyScope, Label: label, Blob: blob})
}

func (m *Manager) snapshot(label string) { m.push(label, m.capture()) }

// CanUndo and CanRedo report history availability.
func (m *Manager) CanUndo() bool { return m.history.CanUndo(historyScope) }
func (m *Manager) CanRedo() bool { return m.history.CanRedo(historyScope) }

// Undo restores the annotation list before the last committed gesture.
func (m *Manager) Undo() bool {
	s, ok := m.history.Undo(historyScope, m.capture())
	if !ok {
		return false
	}
	return m.restore(s)
}

// Redo reapplies the last undone gesture.
func (m *Manager) Redo() bool {
	s, ok := m.history.Redo(historyScope, m.capture())
	if !ok {
		return false
	}
	return m.restore(s)
}

func (m *Manager) restore(s undo.Snapshot) bool {
	var list []Options
	if err := yaml.Unmarshal(s.Blob, &list); err != nil {
		m.log.Warn("history restore failed", "label", s.Label, "err", err)
		return false
	}
	// hooks are not serialized; carry them over by id
	hooks := map[string]Events{}
	for _, a := range m.coll.items {
		if a.opts.ID != "" {
			hooks[a.opts.ID] = a.opts.Events
		}
	}
	for i := range list {
		list[i].Events = hooks[list[i].ID]
	}
	m.SetOptions(list)
	m.log.Debug("history restored", "label", s.Label, "annotations", len(list))
	return true
}

// Close detaches the context from the chart and abandons running gestures.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.drag.Cancel()
	m.drawer.Cancel()
	m.drawer.CancelText()
	if m.unsub != nil {
		m.unsub()
	}
	m.closed = true
}
