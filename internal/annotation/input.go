/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package annotation

import "chartnote/internal/geom"

// TextInput is the inline entry opened by the text tool. Index grows by one
// per opened input; only the latest input is interactive.
type TextInput struct {
	Index  int
	X, Y   float64
	Target *Annotation
}

func (d *Drawer) showInput(a *Annotation, p geom.Pt) {
	if d.inputIdx == 0 {
		d.inputIdx = 1
	}
	if prev := d.input; prev != nil {
		d.dropEmpty(prev.Target)
	}
	d.input = &TextInput{Index: d.inputIdx, X: p.X, Y: p.Y, Target: a}
	d.inputIdx++
	d.log.Debug("text input opened", "index", d.input.Index)
	if fn := d.m.settings.OnTextInput; fn != nil {
		fn(*d.input)
	}
}

// Input is the open text input, nil when none.
func (d *Drawer) Input() *TextInput { return d.input }

// ConfirmText commits text as the title of the input's annotation and closes
// the input. Empty text closes it like CancelText. It reports false when no
// input is open.
func (d *Drawer) ConfirmText(text string) bool {
	in := d.input
	if in == nil {
		return false
	}
	d.input = nil
	if in.Target == nil || in.Target.destroyed {
		return false
	}
	if text == "" {
		d.dropEmpty(in.Target)
		return true
	}
	d.m.snapshot("text")
	in.Target.Update(Options{Title: &Title{Text: text}}, true)
	return true
}

// CancelText closes the input. An annotation left without shape or title is
// removed.
func (d *Drawer) CancelText() {
	in := d.input
	d.input = nil
	if in != nil {
		d.dropEmpty(in.Target)
	}
}

func (d *Drawer) dropEmpty(a *Annotation) {
	if a == nil || a.destroyed {
		return
	}
	if a.shape == nil && (a.opts.Title == nil || a.opts.Title.Text == "") {
		a.Destroy()
	}
}
