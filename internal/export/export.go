/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a chart scene to SVG, PNG or PDF. All three walk the
// same flattened list of visible nodes, so clipping and paint order agree
// across formats.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"chartnote/internal/config"
	"chartnote/internal/geom"
	applog "chartnote/internal/log"
	"chartnote/internal/render"
	"chartnote/internal/textlayout"
	"chartnote/internal/vector"
)

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ErrUnknownFormat is returned for extensions no exporter handles.
var ErrUnknownFormat = errors.New("unknown export format")

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")); f {
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Options controls all exporters. Scale only applies to PNG.
type Options struct {
	Background string
	Scale      float64
}

// OptionsFrom takes the export section of the app config.
func OptionsFrom(c config.ExportConfig) Options {
	return Options{Background: c.Background, Scale: c.PNGScale}
}

func (o Options) scale() float64 {
	if o.Scale <= 0 || math.IsNaN(o.Scale) {
		return 1
	}
	return o.Scale
}

// Write encodes s in format f.
func Write(w io.Writer, f Format, s *vector.Scene, o Options) error {
	switch f {
	case FormatSVG:
		return SVG(w, s, o)
	case FormatPNG:
		return PNG(w, s, o)
	case FormatPDF:
		return PDF(w, s, o)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile exports s to path, choosing the format by extension. The file is
// written through a temp file in the same directory and renamed into place.
func WriteFile(path string, s *vector.Scene, o Options) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, s, o); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", f, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename export: %w", err)
	}
	applog.WithComponent("export").Info("exported", "path", path, "format", string(f), "bytes", buf.Len())
	return nil
}

// item is a visible shape or label with its scene offset and the effective
// clip rectangle in scene space.
type item struct {
	node *vector.Node
	off  geom.Pt
	clip *geom.Rect
}

// flatten lists the drawable nodes of s in paint order.
func flatten(s *vector.Scene) []item {
	var out []item
	var walk func(n *vector.Node, parent geom.Pt, clip *geom.Rect)
	walk = func(n *vector.Node, parent geom.Pt, clip *geom.Rect) {
		if !n.Visible() || n.Destroyed() {
			return
		}
		if c := n.Clip(); c != nil && !c.Destroyed() {
			r := c.Rect().Offset(parent.X, parent.Y)
			if clip != nil {
				r = intersect(*clip, r)
			}
			clip = &r
		}
		tx, ty, _ := n.Translation()
		off := geom.Pt{X: parent.X + tx, Y: parent.Y + ty}
		switch n.Kind() {
		case vector.KindShape, vector.KindLabel:
			out = append(out, item{node: n, off: off, clip: clip})
			return
		}
		for _, c := range n.Children() {
			walk(c, off, clip)
		}
	}
	walk(s.Root, geom.Pt{}, nil)
	return out
}

func intersect(a, b geom.Rect) geom.Rect {
	x0, y0 := math.Max(a.X, b.X), math.Max(a.Y, b.Y)
	x1, y1 := math.Min(a.X+a.W, b.X+b.W), math.Min(a.Y+a.H, b.Y+b.H)
	return geom.R(x0, y0, math.Max(x1-x0, 0), math.Max(y1-y0, 0))
}

// paint is a resolved fill or stroke.
type paint struct {
	hex     string
	opacity float64
	r, g, b uint8
}

// resolvePaint returns ok=false for empty, transparent and unparsable paints.
func resolvePaint(s string) (paint, bool) {
	c, ok := vector.ParseColor(s)
	if !ok || c.A == 0 {
		return paint{}, false
	}
	return paint{
		hex:     fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B),
		opacity: float64(c.A) / 255,
		r:       c.R, g: c.G, b: c.B,
	}, true
}

func strokeWidth(a render.Attrs) float64 { return render.Val(a.StrokeWidth, 1) }

// outline feeds the geometry of a shape node, in its own space, to p.
func outline(n *vector.Node, p rasterx.Adder) error {
	a := n.Attrs()
	switch n.Shape() {
	case render.KindRect:
		x, y := render.Val(a.X, 0), render.Val(a.Y, 0)
		w, h := render.Val(a.Width, 0), render.Val(a.Height, 0)
		rasterx.AddRect(math.Min(x, x+w), math.Min(y, y+h), math.Max(x, x+w), math.Max(y, y+h), 0, p)
	case render.KindCircle:
		rasterx.AddCircle(render.Val(a.X, 0), render.Val(a.Y, 0), math.Abs(render.Val(a.R, 0)), p)
	case render.KindPath:
		if len(a.D) == 0 {
			return nil
		}
		var c oksvg.PathCursor
		if err := c.CompilePath(a.D.String()); err != nil {
			return fmt.Errorf("path %q: %w", a.D.String(), err)
		}
		c.Path.AddTo(p)
	}
	return nil
}

// closed reports whether fills apply; open paths are only stroked.
func closed(n *vector.Node) bool {
	if n.Shape() != render.KindPath {
		return true
	}
	for _, t := range n.Attrs().D {
		if t.Cmd == "Z" || t.Cmd == "z" {
			return true
		}
	}
	return false
}

// textLayout is a label broken into lines, in the label's own space.
type textLayout struct {
	x         float64
	lines     []string
	baselines []float64
	size      float64
}

func layoutLabel(s *vector.Scene, n *vector.Node) textLayout {
	size := n.Style().FontSize
	if size <= 0 {
		size = textlayout.DefaultFontSize
	}
	prov := s.Provider
	if prov == nil {
		prov = textlayout.BasicProvider{}
	}
	_, met := prov.Resolve(size)
	ascent := met.Ascent * size / textlayout.DefaultFontSize
	lh := textlayout.LineHeight(prov, size)
	a := n.Attrs()
	t := textLayout{x: render.Val(a.X, 0), lines: textlayout.Lines(n.Text()), size: size}
	y := render.Val(a.Y, 0)
	for i := range t.lines {
		t.baselines = append(t.baselines, y+ascent+float64(i)*lh)
	}
	return t
}

func labelColor(n *vector.Node) paint {
	if p, ok := resolvePaint(n.Style().Color); ok {
		return p
	}
	return paint{hex: "#000000", opacity: 1}
}
