/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

// Path data as a flat token list, e.g. [M 0 0 L 10 10]. Command letters pass
// through coordinate conversions untouched; numbers are read in x,y pairs.

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Token is either a command letter (Cmd != "") or a number.
type Token struct {
	Cmd string
	V   float64
}

func (t Token) IsNum() bool { return t.Cmd == "" }

// Path is an ordered list of path tokens.
type Path []Token

// P builds a path from command strings and numbers.
func P(items ...any) Path {
	p := make(Path, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			p = append(p, Token{Cmd: v})
		case int:
			p = append(p, Token{V: float64(v)})
		case float64:
			p = append(p, Token{V: v})
		case float32:
			p = append(p, Token{V: float64(v)})
		}
	}
	return p
}

func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Pairs calls fn for every numeric x,y pair with the index of the x token.
func (p Path) Pairs(fn func(i int, x, y float64)) {
	for i := 0; i < len(p); {
		if i+1 < len(p) && p[i].IsNum() && p[i+1].IsNum() {
			fn(i, p[i].V, p[i+1].V)
			i += 2
			continue
		}
		i++
	}
}

// LastPair returns the index of the final numeric pair's x token.
func (p Path) LastPair() (int, bool) {
	idx := -1
	p.Pairs(func(i int, _, _ float64) { idx = i })
	return idx, idx >= 0
}

// String renders SVG path data.
func (p Path) String() string {
	parts := make([]string, 0, len(p))
	for _, t := range p {
		if t.IsNum() {
			parts = append(parts, strconv.FormatFloat(t.V, 'f', -1, 64))
		} else {
			parts = append(parts, t.Cmd)
		}
	}
	return strings.Join(parts, " ")
}

func (p Path) items() []any {
	out := make([]any, len(p))
	for i, t := range p {
		if t.IsNum() {
			out[i] = t.V
		} else {
			out[i] = t.Cmd
		}
	}
	return out
}

func (p Path) MarshalYAML() (any, error) { return p.items(), nil }

func (p *Path) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("path: expected sequence, got %v", n.Tag)
	}
	out := make(Path, 0, len(n.Content))
	for _, c := range n.Content {
		switch c.Tag {
		case "!!int", "!!float":
			var f float64
			if err := c.Decode(&f); err != nil {
				return fmt.Errorf("path token %q: %w", c.Value, err)
			}
			out = append(out, Token{V: f})
		default:
			out = append(out, Token{Cmd: c.Value})
		}
	}
	*p = out
	return nil
}

func (p Path) MarshalJSON() ([]byte, error) { return json.Marshal(p.items()) }

func (p *Path) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("path: %w", err)
	}
	*p = P(raw...)
	return nil
}
