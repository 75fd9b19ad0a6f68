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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"chartnote/internal/textlayout"
	"chartnote/internal/vector"
)

// Raster renders s into an RGBA image at the option scale.
func Raster(s *vector.Scene, o Options) (*image.RGBA, error) {
	k := o.scale()
	w, h := int(math.Ceil(s.Width*k)), int(math.Ceil(s.Height*k))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: empty scene %gx%g", s.Width, s.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg, ok := resolvePaint(o.Background); ok {
		draw.Draw(img, img.Bounds(), image.NewUniform(bg.nrgba()), image.Point{}, draw.Src)
	}

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	stroker := rasterx.NewStroker(w, h, scanner)
	for _, it := range flatten(s) {
		clip := image.Rectangle{}
		if it.clip != nil {
			c := *it.clip
			clip = image.Rect(int(math.Floor(c.X*k)), int(math.Floor(c.Y*k)),
				int(math.Ceil((c.X+c.W)*k)), int(math.Ceil((c.Y+c.H)*k)))
			if clip.Empty() {
				continue
			}
		}
		if it.node.Kind() == vector.KindLabel {
			rasterLabel(img, clip, s, it, k)
			continue
		}
		scanner.SetClip(clip)
		m := rasterx.Identity.Scale(k, k).Translate(it.off.X, it.off.Y)
		a := it.node.Attrs()
		if f, ok := resolvePaint(a.Fill); ok && closed(it.node) {
			filler.Clear()
			filler.SetColor(f.nrgba())
			if err := outline(it.node, &rasterx.MatrixAdder{Adder: filler, M: m}); err != nil {
				return nil, err
			}
			filler.Draw()
		}
		if st, ok := resolvePaint(a.Stroke); ok {
			stroker.Clear()
			stroker.SetStroke(fixed.Int26_6(strokeWidth(a)*k*64), 4<<6, rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.MiterClip)
			stroker.SetColor(st.nrgba())
			if err := outline(it.node, &rasterx.MatrixAdder{Adder: stroker, M: m}); err != nil {
				return nil, err
			}
			stroker.Draw()
		}
	}
	return img, nil
}

// PNG rasterizes s and encodes it as PNG.
func PNG(w io.Writer, s *vector.Scene, o Options) error {
	img, err := Raster(s, o)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (p paint) nrgba() color.NRGBA {
	return color.NRGBA{R: p.r, G: p.g, B: p.b, A: uint8(math.Round(p.opacity * 255))}
}

// rasterLabel draws each line with the provider face at its native size and
// scales the result onto img.
func rasterLabel(img *image.RGBA, clip image.Rectangle, s *vector.Scene, it item, k float64) {
	t := layoutLabel(s, it.node)
	prov := s.Provider
	if prov == nil {
		prov = textlayout.BasicProvider{}
	}
	face, met := prov.Resolve(t.size)
	fk := t.size / textlayout.DefaultFontSize
	dst := img
	if !clip.Empty() {
		sub, ok := img.SubImage(clip).(*image.RGBA)
		if !ok {
			return
		}
		dst = sub
	}
	col := image.NewUniform(labelColor(it.node).nrgba())
	for i, line := range t.lines {
		adv := font.MeasureString(face, line).Ceil()
		lh := int(met.Ascent + met.Descent)
		if adv <= 0 || lh <= 0 {
			continue
		}
		src := image.NewRGBA(image.Rect(0, 0, adv, lh))
		d := &font.Drawer{Dst: src, Src: col, Face: face, Dot: fixed.P(0, int(met.Ascent))}
		d.DrawString(line)

		x := (it.off.X + t.x) * k
		y := (it.off.Y + t.baselines[i] - met.Ascent*fk) * k
		r := image.Rect(int(math.Round(x)), int(math.Round(y)),
			int(math.Round(x+float64(adv)*fk*k)), int(math.Round(y+float64(lh)*fk*k)))
		xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
	}
}
