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

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"

	"chartnote/internal/geom"
	"chartnote/internal/vector"
)

// pdfPath adapts gofpdf path operators to rasterx.Adder, offsetting every
// point by off.
type pdfPath struct {
	pdf  *gofpdf.Fpdf
	off  geom.Pt
	open bool
}

func (p *pdfPath) xy(a fixed.Point26_6) (float64, float64) {
	return float64(a.X)/64 + p.off.X, float64(a.Y)/64 + p.off.Y
}

func (p *pdfPath) Start(a fixed.Point26_6) {
	x, y := p.xy(a)
	p.pdf.MoveTo(x, y)
	p.open = true
}

func (p *pdfPath) Line(b fixed.Point26_6) {
	x, y := p.xy(b)
	p.pdf.LineTo(x, y)
}

func (p *pdfPath) QuadBezier(b, c fixed.Point26_6) {
	cx, cy := p.xy(b)
	x, y := p.xy(c)
	p.pdf.CurveTo(cx, cy, x, y)
}

func (p *pdfPath) CubeBezier(b, c, d fixed.Point26_6) {
	c0x, c0y := p.xy(b)
	c1x, c1y := p.xy(c)
	x, y := p.xy(d)
	p.pdf.CurveBezierCubicTo(c0x, c0y, c1x, c1y, x, y)
}

func (p *pdfPath) Stop(closeLoop bool) {
	if p.open && closeLoop {
		p.pdf.ClosePath()
	}
}

// PDF writes s as a single page PDF, one point per chart pixel.
func PDF(w io.Writer, s *vector.Scene, o Options) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: s.Width, Ht: s.Height},
	})
	pdf.SetCreator("chartnote", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: s.Width, Ht: s.Height})
	pdf.SetFont("Helvetica", "", 12)

	if bg, ok := resolvePaint(o.Background); ok {
		pdf.SetAlpha(bg.opacity, "Normal")
		pdf.SetFillColor(int(bg.r), int(bg.g), int(bg.b))
		pdf.Rect(0, 0, s.Width, s.Height, "F")
	}

	for _, it := range flatten(s) {
		if it.clip != nil {
			c := *it.clip
			pdf.ClipRect(c.X, c.Y, c.W, c.H, false)
		}
		var err error
		if it.node.Kind() == vector.KindLabel {
			pdfLabel(pdf, s, it)
		} else {
			err = pdfShape(pdf, it)
		}
		if it.clip != nil {
			pdf.ClipEnd()
		}
		if err != nil {
			return err
		}
	}
	pdf.SetAlpha(1, "Normal")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func pdfShape(pdf *gofpdf.Fpdf, it item) error {
	a := it.node.Attrs()
	f, fill := resolvePaint(a.Fill)
	fill = fill && closed(it.node)
	st, stroke := resolvePaint(a.Stroke)
	if !fill && !stroke {
		return nil
	}
	// gofpdf has a single alpha for fill and stroke; draw them separately
	// when the opacities differ.
	if fill && stroke && f.opacity != st.opacity {
		if err := pdfDraw(pdf, it, &f, nil); err != nil {
			return err
		}
		return pdfDraw(pdf, it, nil, &st)
	}
	var fp, sp *paint
	if fill {
		fp = &f
	}
	if stroke {
		sp = &st
	}
	return pdfDraw(pdf, it, fp, sp)
}

func pdfDraw(pdf *gofpdf.Fpdf, it item, fill, stroke *paint) error {
	style := ""
	alpha := 1.0
	if fill != nil {
		pdf.SetFillColor(int(fill.r), int(fill.g), int(fill.b))
		style += "F"
		alpha = fill.opacity
	}
	if stroke != nil {
		pdf.SetDrawColor(int(stroke.r), int(stroke.g), int(stroke.b))
		pdf.SetLineWidth(strokeWidth(it.node.Attrs()))
		style += "D"
		alpha = stroke.opacity
	}
	pdf.SetAlpha(alpha, "Normal")
	if err := outline(it.node, &pdfPath{pdf: pdf, off: it.off}); err != nil {
		return err
	}
	pdf.DrawPath(style)
	return nil
}

func pdfLabel(pdf *gofpdf.Fpdf, s *vector.Scene, it item) {
	t := layoutLabel(s, it.node)
	c := labelColor(it.node)
	style := ""
	if wgt := it.node.Style().FontWeight; wgt == "bold" || wgt == "700" {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, t.size)
	pdf.SetTextColor(int(c.r), int(c.g), int(c.b))
	pdf.SetAlpha(c.opacity, "Normal")
	for i, l := range t.lines {
		pdf.Text(it.off.X+t.x, it.off.Y+t.baselines[i], l)
	}
}
