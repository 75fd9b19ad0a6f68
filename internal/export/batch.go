/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"chartnote/internal/vector"
)

// Preset names a bundle of formats and a raster scale.
type Preset string

const (
	PresetWeb   Preset = "web"
	PresetPrint Preset = "print"
)

// ErrUnknownPreset is returned by ParsePreset.
var ErrUnknownPreset = errors.New("unknown export preset")

func ParsePreset(s string) (Preset, error) {
	switch p := Preset(strings.ToLower(strings.TrimSpace(s))); p {
	case PresetWeb, PresetPrint:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// Formats returns the default formats of p.
func (p Preset) Formats() []Format {
	if p == PresetPrint {
		return []Format{FormatPDF, FormatPNG}
	}
	return []Format{FormatPNG, FormatSVG}
}

// minScale is the PNG scale floor of p.
func (p Preset) minScale() float64 {
	if p == PresetPrint {
		return 3
	}
	return 1
}

// BatchOptions controls Batch.
//
// Files are written as <OutDir>/<Name>.<ext>. Formats overrides the preset's
// defaults; duplicates are written once.
type BatchOptions struct {
	Preset  Preset
	Formats []Format
	OutDir  string
	Name    string
	Options Options
}

// Batch exports s in every format of the preset and returns the written
// paths in order.
func Batch(s *vector.Scene, b BatchOptions) ([]string, error) {
	formats := b.Formats
	if len(formats) == 0 {
		formats = b.Preset.Formats()
	}
	formats = lo.Uniq(formats)
	name := b.Name
	if name == "" {
		name = "chart"
	}
	o := b.Options
	o.Scale = max(o.scale(), b.Preset.minScale())

	var out []string
	for _, f := range formats {
		path := filepath.Join(b.OutDir, name+"."+string(f))
		if err := WriteFile(path, s, o); err != nil {
			return out, fmt.Errorf("preset %s: %w", b.Preset, err)
		}
		out = append(out, path)
	}
	return out, nil
}
