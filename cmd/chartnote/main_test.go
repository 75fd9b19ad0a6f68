/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartnote/internal/crash"
	"chartnote/internal/document"
)

const doc = `
chart:
  width: 600
  height: 400
  plot: {x: 50, y: 40, width: 500, height: 300}
annotations:
  - id: note
    xValue: 20
    yValue: 30
    title: peak<br>here
  - id: box
    x: 10
    y: 10
    shape:
      type: rect
      params: {width: 40, height: 20}
script:
  - {action: arm, tool: square}
  - {action: drag, plot: true, x: 50, y: 150, toX: 100, toY: 210, steps: 3}
`

// run executes the CLI with an isolated config and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "missing-config.yaml")
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&crash.Context{})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "chart.yaml")
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	return p
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "chartnote "))
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("chart: {}\nbogus: 1\n"), 0o644))

	out, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "chart.yaml: ok")

	out, err = run(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "bad.yaml:")
}

func TestList(t *testing.T) {
	out, err := run(t, "list", writeDoc(t, t.TempDir()))
	require.NoError(t, err)
	for _, want := range []string{"ID", "note", "value 20, 30", "peak / here", "box", "px 10, 10", "rect"} {
		assert.Contains(t, out, want)
	}
}

func TestRender_Formats(t *testing.T) {
	dir := t.TempDir()
	src := writeDoc(t, dir)
	for _, ext := range []string{"svg", "png", "pdf"} {
		t.Run(ext, func(t *testing.T) {
			out := filepath.Join(dir, "out."+ext)
			_, err := run(t, "render", src, "-o", out)
			require.NoError(t, err)
			info, err := os.Stat(out)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}

	_, err := run(t, "render", src, "-o", filepath.Join(dir, "out.gif"))
	assert.Error(t, err)
	_, err = run(t, "render", src)
	assert.Error(t, err)
}

func TestRender_Preset(t *testing.T) {
	dir := t.TempDir()
	src := writeDoc(t, dir)
	outDir := filepath.Join(dir, "dist")
	out, err := run(t, "render", src, "--preset", "web", "--out-dir", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "chart.png"))
	assert.FileExists(t, filepath.Join(outDir, "chart.svg"))
	assert.Equal(t, 2, strings.Count(out, "wrote"))

	_, err = run(t, "render", src, "--preset", "poster", "--out-dir", outDir)
	assert.Error(t, err)
}

func TestReplay_SavesDocument(t *testing.T) {
	dir := t.TempDir()
	src := writeDoc(t, dir)
	dst := filepath.Join(dir, "after.yaml")

	_, err := run(t, "replay", src, "-o", dst)
	require.NoError(t, err)

	d, err := document.Load(dst)
	require.NoError(t, err)
	assert.Len(t, d.Annotations, 3)
	assert.Empty(t, d.Script)
}

func TestReplay_ScriptFile(t *testing.T) {
	dir := t.TempDir()
	src := writeDoc(t, dir)
	script := filepath.Join(dir, "steps.yaml")
	require.NoError(t, os.WriteFile(script, []byte("- {action: undo}\n"), 0o644))

	_, err := run(t, "replay", src, "--script", script, "-o", filepath.Join(dir, "x.svg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, document.ErrNothingToUndo)
}
