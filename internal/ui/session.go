/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"fmt"
	"log/slog"

	"chartnote/internal/annotation"
	"chartnote/internal/config"
	"chartnote/internal/document"
	"chartnote/internal/export"
	applog "chartnote/internal/log"
	"chartnote/internal/pointer"
)

// Session is one open chart document in the desktop host. It owns the built
// chart and tracks whether the annotations changed since the last save.
type Session struct {
	Path  string
	Built *document.Built

	// OnTextInput is called when the text tool needs a caption.
	OnTextInput func(annotation.TextInput)

	cfg   config.AppConfig
	saved []byte
	log   *slog.Logger
}

// NewSession loads the document at path, or starts an empty chart when path
// is empty.
func NewSession(path string, cfg config.AppConfig) (*Session, error) {
	d := &document.Document{Version: document.Version}
	if path != "" {
		var err error
		if d, err = document.Load(path); err != nil {
			return nil, err
		}
	}
	s := &Session{Path: path, cfg: cfg, log: applog.WithComponent("ui")}
	s.Built = document.Build(d, cfg, func(st *annotation.Settings) {
		st.OnTextInput = func(in annotation.TextInput) {
			if s.OnTextInput != nil {
				s.OnTextInput(in)
			}
		}
	})
	s.saved = s.Snapshot()
	s.log.Info("session opened", "path", path, "annotations", len(d.Annotations))
	return s, nil
}

// Manager is the annotation context of the session.
func (s *Session) Manager() *annotation.Manager { return s.Built.Manager }

// Handle forwards a pointer event in chart coordinates.
func (s *Session) Handle(e pointer.Event) { s.Built.Manager.Handle(e) }

// Snapshot encodes the document with the live annotations. Errors yield nil.
func (s *Session) Snapshot() []byte {
	b, err := document.Marshal(s.Built.Snapshot())
	if err != nil {
		s.log.Warn("snapshot failed", "err", err)
		return nil
	}
	return b
}

// Dirty reports unsaved annotation changes.
func (s *Session) Dirty() bool { return !bytes.Equal(s.saved, s.Snapshot()) }

// Save writes the document back to its path.
func (s *Session) Save() error {
	if s.Path == "" {
		return fmt.Errorf("save: document has no path")
	}
	return s.SaveAs(s.Path)
}

// SaveAs writes the document to path and makes it the session path.
func (s *Session) SaveAs(path string) error {
	if err := document.Save(path, s.Built.Snapshot()); err != nil {
		return err
	}
	s.Path = path
	s.saved = s.Snapshot()
	s.log.Info("document saved", "path", path)
	return nil
}

// Export writes the current scene; the format follows the extension.
func (s *Session) Export(path string) error {
	return export.WriteFile(path, s.Built.Scene, export.OptionsFrom(s.cfg.Export))
}

// Status is a one line summary for the status bar.
func (s *Session) Status() string {
	m := s.Built.Manager
	tool := "none"
	if i := m.Drawer().Armed(); i >= 0 {
		tool = m.Drawer().Buttons()[i].Symbol
	}
	mark := ""
	if s.Dirty() {
		mark = " (modified)"
	}
	return fmt.Sprintf("%d annotations, tool: %s%s", m.Collection().Len(), tool, mark)
}

// Close releases the annotation context.
func (s *Session) Close() { s.Built.Close() }
