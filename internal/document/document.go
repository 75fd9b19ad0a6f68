/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document reads chart documents: a chart description, its series,
// the declarative annotation list and an optional gesture script. Documents
// are YAML or JSON and are checked against an embedded JSON schema before
// they are decoded.
package document

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"chartnote/internal/annotation"
	"chartnote/internal/chart"
	"chartnote/internal/geom"
)

//go:embed schema.json
var schemaJSON []byte

// Version is the document format version written by Save.
const Version = 1

// ErrInvalid is wrapped by every schema violation.
var ErrInvalid = errors.New("document does not conform to schema")

// ValidationError lists schema problems.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalid, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Document is a chart with annotations.
type Document struct {
	Version     int                  `yaml:"version,omitempty" json:"version,omitempty"`
	Chart       ChartSpec            `yaml:"chart" json:"chart"`
	Series      []SeriesSpec         `yaml:"series,omitempty" json:"series,omitempty"`
	Annotations []annotation.Options `yaml:"annotations,omitempty" json:"annotations,omitempty"`
	Toolbar     *ToolbarSpec         `yaml:"toolbar,omitempty" json:"toolbar,omitempty"`
	Script      []Step               `yaml:"script,omitempty" json:"script,omitempty"`
}

// ChartSpec describes the chart surface. Zero sizes take defaults.
type ChartSpec struct {
	Width    float64           `yaml:"width,omitempty" json:"width,omitempty"`
	Height   float64           `yaml:"height,omitempty" json:"height,omitempty"`
	Plot     *Box              `yaml:"plot,omitempty" json:"plot,omitempty"`
	Inverted bool              `yaml:"inverted,omitempty" json:"inverted,omitempty"`
	XAxes    []chart.AxisRange `yaml:"xAxes,omitempty" json:"xAxes,omitempty"`
	YAxes    []chart.PaneSpec  `yaml:"yAxes,omitempty" json:"yAxes,omitempty"`
}

// Box is a rectangle in chart pixels.
type Box struct {
	X      float64 `yaml:"x" json:"x"`
	Y      float64 `yaml:"y" json:"y"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (b Box) Rect() geom.Rect { return geom.R(b.X, b.Y, b.Width, b.Height) }

// SeriesSpec is one data series.
type SeriesSpec struct {
	ID     string            `yaml:"id" json:"id"`
	XAxis  int               `yaml:"xAxis,omitempty" json:"xAxis,omitempty"`
	YAxis  int               `yaml:"yAxis,omitempty" json:"yAxis,omitempty"`
	Offset float64           `yaml:"offset,omitempty" json:"offset,omitempty"`
	Hidden bool              `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Points []chart.PointSpec `yaml:"points,omitempty" json:"points,omitempty"`
}

// ToolbarSpec overrides the app config for the creation toolbar.
type ToolbarSpec struct {
	Enabled *bool               `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	OffsetX *float64            `yaml:"offsetX,omitempty" json:"offsetX,omitempty"`
	OffsetY *float64            `yaml:"offsetY,omitempty" json:"offsetY,omitempty"`
	Buttons []annotation.Button `yaml:"buttons,omitempty" json:"buttons,omitempty"`
}

// Default chart size and plot margins.
const (
	DefaultWidth  = 800
	DefaultHeight = 500
	marginLeft    = 60
	marginTop     = 40
	marginRight   = 20
	marginBottom  = 40
)

// Size returns the chart size with defaults applied.
func (c ChartSpec) Size() geom.Size {
	s := geom.Size{W: c.Width, H: c.Height}
	if s.W <= 0 {
		s.W = DefaultWidth
	}
	if s.H <= 0 {
		s.H = DefaultHeight
	}
	return s
}

// PlotBox returns the plot rectangle, derived from the margins when unset.
func (c ChartSpec) PlotBox() geom.Rect {
	if c.Plot != nil {
		return c.Plot.Rect()
	}
	s := c.Size()
	return geom.R(marginLeft, marginTop, s.W-marginLeft-marginRight, s.H-marginTop-marginBottom)
}

// Validate checks raw YAML or JSON against the document schema.
func Validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	if raw == nil {
		return &ValidationError{Problems: []string{"document is empty"}}
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert document to json: %w", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(js))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}

// Parse validates and decodes a document.
func Parse(data []byte) (*Document, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if d.Version == 0 {
		d.Version = Version
	}
	return &d, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Marshal encodes d as YAML.
func Marshal(d *Document) ([]byte, error) {
	if d.Version == 0 {
		d.Version = Version
	}
	b, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// Save writes d as YAML through a temp file and rename.
func Save(path string, d *Document) error {
	b, err := Marshal(d)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
