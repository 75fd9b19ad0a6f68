/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics in the CLI and desktop host into crash reports.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "chartnote/internal/log"
	"chartnote/internal/version"
)

// exitFn is swapped in tests so Recover does not terminate the process.
var exitFn = os.Exit

// Context describes what is open when a panic happens. All fields are
// optional.
type Context struct {
	// Dir receives the report; empty means the temp dir.
	Dir string
	// Document is the path of the chart document being worked on.
	Document string
	// Snapshot returns the live annotation options (YAML) so work is not lost.
	Snapshot func() ([]byte, error)
}

// Recover captures a panic, logs it with a stacktrace, writes a report file
// next to an autosave of the annotations and exits with code 2.
//
// Usage: defer crash.Recover(ctx)
func Recover(ctx *Context) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(ctx, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, err := autosave(ctx, reportPath); err != nil {
		l.Error("autosave annotations failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("annotations autosaved", slog.String("path", path))
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(ctx *Context) string {
	if ctx != nil && ctx.Dir != "" {
		_ = os.MkdirAll(ctx.Dir, 0o755)
		return ctx.Dir
	}
	return os.TempDir()
}

func writeReport(ctx *Context, panicVal any, stack []byte) (string, error) {
	path := filepath.Join(reportDir(ctx), fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "chartnote crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if ctx != nil && ctx.Document != "" {
		_, _ = fmt.Fprintf(&buf, "Document: %s\n", ctx.Document)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

// autosave writes the snapshot next to the report. The snapshot callback runs
// on a possibly inconsistent state, so its own panic is contained.
func autosave(ctx *Context, reportPath string) (path string, err error) {
	if ctx == nil || ctx.Snapshot == nil {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot panicked: %v", r)
		}
	}()
	data, err := ctx.Snapshot()
	if err != nil {
		return "", err
	}
	path = reportPath[:len(reportPath)-len(filepath.Ext(reportPath))] + ".annotations.yaml"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
