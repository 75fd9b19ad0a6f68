/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package document

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"

	"chartnote/internal/annotation"
	applog "chartnote/internal/log"
	"chartnote/internal/pointer"
)

// Step is one scripted gesture or chart change. Coordinates are chart
// pixels unless Plot is set, in which case they are plot-relative.
type Step struct {
	Action string   `yaml:"action" json:"action"`
	X      float64  `yaml:"x,omitempty" json:"x,omitempty"`
	Y      float64  `yaml:"y,omitempty" json:"y,omitempty"`
	ToX    float64  `yaml:"toX,omitempty" json:"toX,omitempty"`
	ToY    float64  `yaml:"toY,omitempty" json:"toY,omitempty"`
	Steps  int      `yaml:"steps,omitempty" json:"steps,omitempty"`
	Plot   bool     `yaml:"plot,omitempty" json:"plot,omitempty"`
	Button string   `yaml:"button,omitempty" json:"button,omitempty"`
	Tool   string   `yaml:"tool,omitempty" json:"tool,omitempty"`
	Text   string   `yaml:"text,omitempty" json:"text,omitempty"`
	Axis   string   `yaml:"axis,omitempty" json:"axis,omitempty"`
	Index  int      `yaml:"index,omitempty" json:"index,omitempty"`
	Min    *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	On     bool     `yaml:"on,omitempty" json:"on,omitempty"`
}

// Replay errors.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrUnknownTool   = errors.New("unknown tool")
	ErrNoInput       = errors.New("no text input open")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrMissingRange  = errors.New("zoom needs min and max")
)

var buttons = map[string]pointer.Button{
	"":          pointer.Primary,
	"primary":   pointer.Primary,
	"secondary": pointer.Secondary,
	"middle":    pointer.Middle,
}

// Replay runs steps in order against b and stops at the first failing step.
func Replay(b *Built, steps []Step) error {
	l := applog.WithComponent("replay")
	for i, s := range steps {
		if err := b.step(s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.Action, err)
		}
		l.Debug("step done", "n", i+1, "action", s.Action)
	}
	return nil
}

func (b *Built) point(s Step, x, y float64) (float64, float64) {
	if s.Plot {
		p := b.Chart.PlotBox()
		return x + p.X, y + p.Y
	}
	return x, y
}

func (b *Built) send(s Step, k pointer.Kind, x, y float64) {
	x, y = b.point(s, x, y)
	b.Manager.Handle(pointer.Event{Kind: k, X: x, Y: y, Button: buttons[s.Button]})
}

func (b *Built) step(s Step) error {
	m := b.Manager
	switch s.Action {
	case "arm":
		i, ok := toolIndex(m.Drawer().Buttons(), s)
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownTool, s.Tool)
		}
		m.Drawer().Click(i)
	case "down":
		b.send(s, pointer.Down, s.X, s.Y)
	case "move":
		b.send(s, pointer.Move, s.X, s.Y)
	case "up":
		b.send(s, pointer.Up, s.X, s.Y)
	case "click":
		b.send(s, pointer.Click, s.X, s.Y)
	case "dblclick":
		b.send(s, pointer.DblClick, s.X, s.Y)
	case "drag":
		n := max(s.Steps, 1)
		xs := floats.Span(make([]float64, n+1), s.X, s.ToX)
		ys := floats.Span(make([]float64, n+1), s.Y, s.ToY)
		b.send(s, pointer.Down, s.X, s.Y)
		for k := 1; k <= n; k++ {
			b.send(s, pointer.Move, xs[k], ys[k])
		}
		b.send(s, pointer.Up, s.ToX, s.ToY)
	case "text":
		if !m.ConfirmText(s.Text) {
			return ErrNoInput
		}
	case "cancelText":
		m.CancelText()
	case "zoom":
		if s.Min == nil || s.Max == nil {
			return ErrMissingRange
		}
		if err := b.Chart.SetExtremes(s.Axis != "y", s.Index, *s.Min, *s.Max); err != nil {
			return err
		}
		b.Chart.Redraw()
	case "redraw":
		b.Chart.Redraw()
	case "animate":
		b.Chart.SetAnimating(s.On)
	case "undo":
		if !m.Undo() {
			return ErrNothingToUndo
		}
	case "redo":
		if !m.Redo() {
			return ErrNothingToRedo
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, s.Action)
	}
	return nil
}

// toolIndex finds the button by symbol, or by index when no tool is named.
func toolIndex(bs []annotation.Button, s Step) (int, bool) {
	if s.Tool == "" {
		return s.Index, s.Index >= 0 && s.Index < len(bs)
	}
	_, i, ok := lo.FindIndexOf(bs, func(b annotation.Button) bool { return b.Symbol == s.Tool })
	return i, ok
}
