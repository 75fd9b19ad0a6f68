/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"chartnote/internal/geom"
	"chartnote/internal/render"
	"chartnote/internal/vector"
)

// errWriter keeps the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// SVG writes s as a standalone SVG document. Every drawable node becomes a
// translated group; pane clips are emitted once as clipPath definitions.
func SVG(w io.Writer, s *vector.Scene, o Options) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(int(math.Ceil(s.Width)), int(math.Ceil(s.Height)),
		fmt.Sprintf(`viewBox="0 0 %s %s"`, num(s.Width), num(s.Height)))
	if bg, ok := resolvePaint(o.Background); ok {
		canvas.Path(rectPath(geom.R(0, 0, s.Width, s.Height)), "fill:"+bg.hex+opacityStyle("fill", bg.opacity))
	}

	items := flatten(s)
	clips := map[geom.Rect]string{}
	var order []geom.Rect
	for _, it := range items {
		if it.clip == nil {
			continue
		}
		if _, seen := clips[*it.clip]; !seen {
			clips[*it.clip] = fmt.Sprintf("clip-%d", len(order))
			order = append(order, *it.clip)
		}
	}
	if len(order) > 0 {
		canvas.Def()
		for _, r := range order {
			canvas.ClipPath(fmt.Sprintf(`id="%s"`, clips[r]))
			canvas.Path(rectPath(r))
			canvas.ClipEnd()
		}
		canvas.DefEnd()
	}

	for _, it := range items {
		if it.clip != nil {
			canvas.Group(fmt.Sprintf(`clip-path="url(#%s)"`, clips[*it.clip]))
		}
		canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(it.off.X), num(it.off.Y)))
		if it.node.Kind() == vector.KindLabel {
			svgLabel(canvas, s, it.node)
		} else {
			canvas.Path(shapePath(it.node), shapeStyle(it.node.Attrs(), closed(it.node)))
		}
		canvas.Gend()
		if it.clip != nil {
			canvas.Gend()
		}
	}
	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("write svg: %w", ew.err)
	}
	return nil
}

func svgLabel(canvas *svg.SVG, s *vector.Scene, n *vector.Node) {
	t := layoutLabel(s, n)
	c := labelColor(n)
	style := fmt.Sprintf("font-family:monospace;font-size:%spx;fill:%s%s", num(t.size), c.hex, opacityStyle("fill", c.opacity))
	if wgt := n.Style().FontWeight; wgt != "" {
		style += ";font-weight:" + wgt
	}
	for i, l := range t.lines {
		canvas.Text(int(math.Round(t.x)), int(math.Round(t.baselines[i])), l, style)
	}
}

// shapePath renders any primitive as path data so coordinates keep their
// fractions.
func shapePath(n *vector.Node) string {
	a := n.Attrs()
	switch n.Shape() {
	case render.KindRect:
		x, y := render.Val(a.X, 0), render.Val(a.Y, 0)
		w, h := render.Val(a.Width, 0), render.Val(a.Height, 0)
		return rectPath(geom.R(math.Min(x, x+w), math.Min(y, y+h), math.Abs(w), math.Abs(h)))
	case render.KindCircle:
		cx, cy, r := render.Val(a.X, 0), render.Val(a.Y, 0), math.Abs(render.Val(a.R, 0))
		return fmt.Sprintf("M %s %s A %s %s 0 1 0 %s %s A %s %s 0 1 0 %s %s Z",
			num(cx-r), num(cy), num(r), num(r), num(cx+r), num(cy), num(r), num(r), num(cx-r), num(cy))
	case render.KindPath:
		return a.D.String()
	}
	return ""
}

func rectPath(r geom.Rect) string {
	return fmt.Sprintf("M %s %s H %s V %s H %s Z", num(r.X), num(r.Y), num(r.X+r.W), num(r.Y+r.H), num(r.X))
}

func shapeStyle(a render.Attrs, fillable bool) string {
	var b strings.Builder
	if f, ok := resolvePaint(a.Fill); ok && fillable {
		b.WriteString("fill:" + f.hex + opacityStyle("fill", f.opacity))
	} else {
		b.WriteString("fill:none")
	}
	if st, ok := resolvePaint(a.Stroke); ok {
		b.WriteString(";stroke:" + st.hex + opacityStyle("stroke", st.opacity))
		b.WriteString(";stroke-width:" + num(strokeWidth(a)))
	}
	return b.String()
}

func opacityStyle(prop string, v float64) string {
	if v >= 1 {
		return ""
	}
	return fmt.Sprintf(";%s-opacity:%s", prop, strconv.FormatFloat(v, 'f', 3, 64))
}
