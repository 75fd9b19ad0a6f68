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
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"chartnote/internal/annotation"
	"chartnote/internal/config"
	"chartnote/internal/crash"
	applog "chartnote/internal/log"
	"chartnote/internal/version"
)

// Run opens the desktop editor on the document at path, or on an empty chart
// when path is empty. It blocks until the window closes.
func Run(path string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", "document", path)

	s, err := NewSession(path, cfg)
	if err != nil {
		return err
	}
	defer func() { s.Close() }()
	defer crash.Recover(&crash.Context{
		Document: path,
		Snapshot: func() ([]byte, error) { return s.Snapshot(), nil },
	})

	fyneApp := app.NewWithID("chartnote")
	w := fyneApp.NewWindow("chartnote")
	prefs := fyneApp.Preferences()
	w.Resize(fyne.NewSize(
		float32(max(prefs.IntWithFallback("window.width", 1000), 640)),
		float32(max(prefs.IntWithFallback("window.height", 700), 480)),
	))

	status := widget.NewLabel("")
	cv := NewChartCanvas(s, cfg.Export.Background)
	refresh := func() {
		status.SetText(s.Status())
		title := "chartnote"
		if s.Path != "" {
			title += " - " + filepath.Base(s.Path)
		}
		if s.Dirty() {
			title += " *"
		}
		w.SetTitle(title)
	}
	cv.OnChange = refresh

	var askText func(in annotation.TextInput)
	askText = func(in annotation.TextInput) {
		entry := widget.NewEntry()
		entry.SetPlaceHolder(fmt.Sprintf("Text %d", in.Index))
		dialog.ShowForm("Annotation text", "OK", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Text", entry)},
			func(ok bool) {
				if ok && strings.TrimSpace(entry.Text) != "" {
					s.Manager().ConfirmText(entry.Text)
				} else {
					s.Manager().CancelText()
				}
				cv.Refresh()
				refresh()
			}, w)
	}
	s.OnTextInput = askText

	open := func(p string) {
		next, err := NewSession(p, cfg)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		s.Close()
		s = next
		s.OnTextInput = askText
		cv.SetSession(s)
		refresh()
	}
	save := func() {
		if s.Path == "" {
			saveAs(w, s, refresh)
			return
		}
		if err := s.Save(); err != nil {
			dialog.ShowError(err, w)
		}
		refresh()
	}
	undoFn := func() {
		if !s.Manager().Undo() {
			status.SetText("Nothing to undo")
			return
		}
		cv.Refresh()
		refresh()
	}
	redoFn := func() {
		if !s.Manager().Redo() {
			status.SetText("Nothing to redo")
			return
		}
		cv.Refresh()
		refresh()
	}

	openItem := fyne.NewMenuItem("Open…", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if rc == nil {
				return
			}
			p := rc.URI().Path()
			_ = rc.Close()
			open(p)
		}, w)
	})
	saveItem := fyne.NewMenuItem("Save", save)
	saveAsItem := fyne.NewMenuItem("Save As…", func() { saveAs(w, s, refresh) })
	exportItem := fyne.NewMenuItem("Export…", func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if wc == nil {
				return
			}
			p := wc.URI().Path()
			_ = wc.Close()
			if err := s.Export(p); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported to " + p)
		}, w)
	})
	undoItem := fyne.NewMenuItem("Undo", undoFn)
	redoItem := fyne.NewMenuItem("Redo", redoFn)
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
	for _, it := range []*fyne.MenuItem{openItem, saveItem, undoItem, redoItem} {
		sc := it.Shortcut
		action := it.Action
		w.Canvas().AddShortcut(sc, func(fyne.Shortcut) { action() })
	}
	aboutItem := fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("chartnote", "Version "+version.String(), w)
	})
	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", openItem, saveItem, saveAsItem, fyne.NewMenuItemSeparator(), exportItem),
		fyne.NewMenu("Edit", undoItem, redoItem),
		fyne.NewMenu("Help", aboutItem),
	))

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), save),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), undoFn),
		widget.NewToolbarAction(theme.ContentRedoIcon(), redoFn),
	)
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, cv))

	w.SetCloseIntercept(func() {
		prefs.SetInt("window.width", int(w.Canvas().Size().Width))
		prefs.SetInt("window.height", int(w.Canvas().Size().Height))
		if !s.Dirty() {
			w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Close without saving the annotations?", func(ok bool) {
			if ok {
				w.Close()
			}
		}, w)
	})

	refresh()
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

func saveAs(w fyne.Window, s *Session, done func()) {
	dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if wc == nil {
			return
		}
		p := wc.URI().Path()
		_ = wc.Close()
		if err := s.SaveAs(p); err != nil {
			dialog.ShowError(err, w)
		}
		done()
	}, w)
}
