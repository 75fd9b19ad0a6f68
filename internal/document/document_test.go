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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartnote/internal/annotation"
	"chartnote/internal/config"
	"chartnote/internal/render"
)

const sample = `
chart:
  width: 600
  height: 400
  plot: {x: 50, y: 40, width: 500, height: 300}
  xAxes: [{min: 0, max: 100}]
  yAxes: [{min: 0, max: 100}]
series:
  - id: s1
    points:
      - {id: p1, x: 20, y: 30}
      - {x: 60, y: 70}
annotations:
  - id: note
    xValue: 20
    yValue: 30
    title: peak
  - id: box
    x: 10
    y: 10
    shape:
      type: rect
      params: {width: 40, height: 20}
    title:
      text: boxed
      style: {color: "#333333", fontSize: 11}
`

func TestParse_Sample(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, Version, d.Version)
	assert.Equal(t, 600.0, d.Chart.Size().W)
	assert.Equal(t, 50.0, d.Chart.PlotBox().X)
	require.Len(t, d.Series, 1)
	assert.Len(t, d.Series[0].Points, 2)

	require.Len(t, d.Annotations, 2)
	require.NotNil(t, d.Annotations[0].Title)
	assert.Equal(t, "peak", d.Annotations[0].Title.Text, "string title form")
	assert.Equal(t, 11.0, d.Annotations[1].Title.Style.FontSize)
	assert.Equal(t, annotation.ShapeRect, d.Annotations[1].Shape.Type)
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing chart":   "annotations: []",
		"unknown field":   "chart: {}\nbogus: 1",
		"bad anchor":      "chart: {}\nannotations: [{anchorX: sideways}]",
		"bad shape type":  "chart: {}\nannotations: [{shape: {type: star}}]",
		"negative radius": "chart: {}\nannotations: [{shape: {type: circle, params: {r: -1}}}]",
		"bad action":      "chart: {}\nscript: [{action: teleport}]",
		"empty":           "",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			err := Validate([]byte(src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Problems)
		})
	}
}

func TestChartSpec_Defaults(t *testing.T) {
	var c ChartSpec
	s := c.Size()
	assert.Equal(t, float64(DefaultWidth), s.W)
	assert.Equal(t, float64(DefaultHeight), s.H)
	p := c.PlotBox()
	assert.Equal(t, float64(marginLeft), p.X)
	assert.Equal(t, float64(DefaultWidth-marginLeft-marginRight), p.W)
}

func TestBuild_PlacesAnnotations(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)
	b := Build(d, config.Defaults())
	defer b.Close()

	items := b.Manager.Collection().Items()
	require.Len(t, items, 2)
	p, ok := items[0].Position()
	require.True(t, ok)
	assert.InDelta(t, 150, p.X, 1e-9)
	assert.InDelta(t, 250, p.Y, 1e-9)
	assert.NotNil(t, b.Scene.Find("annotations-group-0"))
}

func TestReplay_DrawRect(t *testing.T) {
	d, err := Parse([]byte(sample + `
script:
  - {action: arm, tool: square}
  - {action: drag, plot: true, x: 50, y: 150, toX: 100, toY: 210, steps: 3}
`))
	require.NoError(t, err)
	b := Build(d, config.Defaults())
	defer b.Close()

	require.NoError(t, Replay(b, d.Script))
	opts := b.Manager.Options()
	require.Len(t, opts, 3)
	o := opts[2]
	require.NotNil(t, o.Shape)
	assert.Equal(t, annotation.ShapeRect, o.Shape.Type)
	require.NotNil(t, o.XValue)
	require.NotNil(t, o.YValue)
	assert.InDelta(t, 10, *o.XValue, 1e-9)
	assert.InDelta(t, 50, *o.YValue, 1e-9)
	assert.InDelta(t, 51, render.Val(o.Shape.Params.Width, 0), 1e-9)
	assert.InDelta(t, 61, render.Val(o.Shape.Params.Height, 0), 1e-9)

	require.NoError(t, Replay(b, []Step{{Action: "undo"}}))
	assert.Len(t, b.Manager.Options(), 2)
	require.NoError(t, Replay(b, []Step{{Action: "redo"}}))
	assert.Len(t, b.Manager.Options(), 3)
}

func TestReplay_Errors(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)
	b := Build(d, config.Defaults())
	defer b.Close()

	err = Replay(b, []Step{{Action: "redraw"}, {Action: "text", Text: "x"}})
	require.ErrorIs(t, err, ErrNoInput)
	assert.Contains(t, err.Error(), "step 2 (text)")

	assert.ErrorIs(t, Replay(b, []Step{{Action: "arm", Tool: "star"}}), ErrUnknownTool)
	assert.ErrorIs(t, Replay(b, []Step{{Action: "zoom"}}), ErrMissingRange)
	assert.ErrorIs(t, Replay(b, []Step{{Action: "undo"}}), ErrNothingToUndo)
	assert.ErrorIs(t, Replay(b, []Step{{Action: "warp"}}), ErrUnknownAction)
}

func TestReplay_ZoomMovesValueAnnotations(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)
	b := Build(d, config.Defaults())
	defer b.Close()

	lo, hi := 0.0, 50.0
	require.NoError(t, Replay(b, []Step{{Action: "zoom", Axis: "x", Min: &lo, Max: &hi}}))
	p, ok := b.Manager.Collection().Items()[0].Position()
	require.True(t, ok)
	assert.InDelta(t, 250, p.X, 1e-9, "x=20 on [0,50] over 500px")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	d, err := Parse([]byte(sample))
	require.NoError(t, err)
	b := Build(d, config.Defaults())
	defer b.Close()
	b.Manager.Add(true, annotation.Options{
		ID:     "extra",
		XValue: annotation.F(40), YValue: annotation.F(40),
		Shape: &annotation.Shape{Type: annotation.ShapeCircle},
	})

	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, Save(path, b.Snapshot()))
	back, err := Load(path)
	require.NoError(t, err)
	require.Len(t, back.Annotations, 3)
	assert.Equal(t, "extra", back.Annotations[2].ID)
	assert.Equal(t, annotation.ShapeCircle, back.Annotations[2].Shape.Type)
	assert.Equal(t, "peak", back.Annotations[0].Title.Text)
}
