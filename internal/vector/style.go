/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Paint parsing for exporters. Shapes keep CSS-like strings ("#3399ff",
// "rgba(0,0,0,0)", "none", "black"); rasterizing backends need RGBA.

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	Black       = color.RGBA{0, 0, 0, 255}
	White       = color.RGBA{255, 255, 255, 255}
	Transparent = color.RGBA{}
)

var named = map[string]color.RGBA{
	"black":       Black,
	"white":       White,
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"yellow":      {255, 255, 0, 255},
	"transparent": Transparent,
	"none":        Transparent,
}

// ParseColor converts a paint string to straight (non-premultiplied) RGBA.
// ok is false for unknown formats; the returned color is then Black.
func ParseColor(s string) (c color.RGBA, ok bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Transparent, true
	}
	if v, found := named[s]; found {
		return v, true
	}
	if strings.HasPrefix(s, "#") {
		cf, err := colorful.Hex(s)
		if err != nil {
			return Black, false
		}
		r, g, b := cf.RGB255()
		return color.RGBA{r, g, b, 255}, true
	}
	if strings.HasPrefix(s, "rgb") {
		return parseFunc(s)
	}
	return Black, false
}

// Opaque reports whether the paint draws anything.
func Opaque(s string) bool {
	c, ok := ParseColor(s)
	return ok && c.A > 0
}

// parseFunc handles rgb(r,g,b) and rgba(r,g,b,a) with a in [0,1].
func parseFunc(s string) (color.RGBA, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return Black, false
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Black, false
	}
	var ch [4]uint8
	ch[3] = 255
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Black, false
		}
		if i == 3 {
			v *= 255
		}
		ch[i] = uint8(min(max(v, 0), 255) + 0.5)
	}
	return color.RGBA{ch[0], ch[1], ch[2], ch[3]}, true
}
