/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartnote/internal/config"
	"chartnote/internal/geom"
	"chartnote/internal/render"
	"chartnote/internal/vector"
)

// testScene has a clipped, translated red rect, a translucent circle and a
// two line label.
func testScene() *vector.Scene {
	s := vector.NewScene(200, 100)
	g := s.Group("pane")
	g.Add(nil)
	g.SetClip(s.ClipRect(geom.R(0, 0, 60, 60)))
	g.Translate(10, 20)
	rect := s.Shape(render.KindRect, render.Attrs{
		X: render.F(0), Y: render.F(0), Width: render.F(100), Height: render.F(40), Fill: "#ff0000",
	})
	rect.Add(g)

	c := s.Shape(render.KindCircle, render.Attrs{X: render.F(150), Y: render.F(50), R: render.F(20), Fill: "rgba(255,0,0,0.4)", Stroke: "black"})
	c.Add(nil)

	l := s.Label("hi<br>there", render.TextStyle{Color: "#0000ff"})
	l.SetAttrs(render.Attrs{X: render.F(120), Y: render.F(5)})
	l.Add(nil)

	hidden := s.Shape(render.KindRect, render.Attrs{Width: render.F(200), Height: render.F(100), Fill: "black"})
	hidden.Add(nil)
	hidden.SetVisible(false)
	return s
}

func rgbaAt(t *testing.T, img interface{ At(x, y int) color.Color }, x, y int) color.RGBA {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func TestFlatten_OffsetsClipsAndHidden(t *testing.T) {
	items := flatten(testScene())
	require.Len(t, items, 3)
	assert.Equal(t, geom.Pt{X: 10, Y: 20}, items[0].off)
	require.NotNil(t, items[0].clip)
	assert.Equal(t, geom.R(0, 0, 60, 60), *items[0].clip)
	assert.Nil(t, items[1].clip)
	assert.Equal(t, vector.KindLabel, items[2].node.Kind())
}

func TestRaster_Pixels(t *testing.T) {
	img, err := Raster(testScene(), Options{Background: "#ffffff"})
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgbaAt(t, img, 30, 40), "inside rect and clip")
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(t, img, 80, 40), "clipped away")
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(t, img, 5, 5), "background")

	mid := rgbaAt(t, img, 150, 50)
	assert.Equal(t, uint8(255), mid.R)
	assert.InDelta(t, 153, int(mid.G), 3, "40%% red over white")
}

func TestRaster_Scale(t *testing.T) {
	img, err := Raster(testScene(), Options{Background: "white", Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgbaAt(t, img, 60, 80))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(t, img, 160, 80))
}

func TestRaster_LabelInk(t *testing.T) {
	img, err := Raster(testScene(), Options{Background: "#ffffff"})
	require.NoError(t, err)
	blue := 0
	for y := 5; y < 35; y++ {
		for x := 120; x < 170; x++ {
			if c := rgbaAt(t, img, x, y); c.B > 200 && c.R < 150 {
				blue++
			}
		}
	}
	assert.Positive(t, blue, "label drew no pixels")
}

func TestRaster_TransparentBackground(t *testing.T) {
	img, err := Raster(testScene(), Options{})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), rgbaAt(t, img, 5, 5).A)
}

func TestSVG_Structure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, testScene(), Options{Background: "#ffffff"}))
	out := buf.String()
	assert.Contains(t, out, `<svg`)
	assert.Contains(t, out, `viewBox="0 0 200 100"`)
	assert.Contains(t, out, `<clipPath id="clip-0"`)
	assert.Equal(t, 1, strings.Count(out, "<clipPath "), "one clip per pane rectangle")
	assert.Contains(t, out, `clip-path="url(#clip-0)"`)
	assert.Contains(t, out, `<g transform="translate(10,20)">`)
	assert.Contains(t, out, `fill:#ff0000`)
	assert.Contains(t, out, `fill-opacity:0.400`)
	assert.Contains(t, out, `>hi</text>`)
	assert.Contains(t, out, `>there</text>`)
	assert.NotContains(t, out, `M 0 0 H 200 V 100 H 0 Z" style="fill:#000000`, "hidden shape exported")
	assert.Contains(t, out, `</svg>`)
}

func TestPDF_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, testScene(), Options{Background: "#ffffff"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestOutline_OpenPathNotFilled(t *testing.T) {
	s := vector.NewScene(100, 100)
	p := s.Shape(render.KindPath, render.Attrs{D: render.P("M", 10, 10, "L", 90, 90), Fill: "red", Stroke: "black"})
	p.Add(nil)
	items := flatten(s)
	require.Len(t, items, 1)
	assert.False(t, closed(items[0].node))
	assert.Contains(t, shapeStyle(items[0].node.Attrs(), false), "fill:none")

	img, err := Raster(s, Options{Background: "white"})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(t, img, 80, 20), "open path must not fill")
	c := rgbaAt(t, img, 50, 50)
	assert.Less(t, int(c.R), 200, "stroke on the diagonal")
}

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("out/Chart.PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	_, err = FormatFor("chart.gif")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "chart.svg")
	require.NoError(t, WriteFile(path, testScene(), OptionsFrom(config.Defaults().Export)))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	leftovers, err := filepath.Glob(filepath.Join(dir, "nested", ".export-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	assert.ErrorIs(t, WriteFile(filepath.Join(dir, "chart.bmp"), testScene(), Options{}), ErrUnknownFormat)
}

func TestBatch_Presets(t *testing.T) {
	dir := t.TempDir()
	paths, err := Batch(testScene(), BatchOptions{Preset: PresetWeb, OutDir: dir, Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "c.png"), filepath.Join(dir, "c.svg")}, paths)

	paths, err = Batch(testScene(), BatchOptions{Preset: PresetPrint, OutDir: dir})
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, p := range paths {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}

	_, err = ParsePreset("poster")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	p, err := ParsePreset(" Print ")
	require.NoError(t, err)
	assert.Equal(t, PresetPrint, p)
}
