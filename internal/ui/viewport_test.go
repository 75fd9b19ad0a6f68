/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chartnote/internal/geom"
)

func TestFit_CentersUniformly(t *testing.T) {
	v := Fit(geom.Size{W: 800, H: 500}, geom.Size{W: 400, H: 400})
	assert.InDelta(t, 0.5, v.Scale, 1e-9)
	assert.InDelta(t, 0, v.OffX, 1e-9)
	assert.InDelta(t, 75, v.OffY, 1e-9)

	p := v.ToChart(200, 200)
	assert.InDelta(t, 400, p.X, 1e-9)
	assert.InDelta(t, 250, p.Y, 1e-9)

	back := v.ToWidget(p)
	assert.InDelta(t, 200, back.X, 1e-9)
	assert.InDelta(t, 200, back.Y, 1e-9)
}

func TestFit_DegenerateSizes(t *testing.T) {
	assert.Equal(t, Viewport{Scale: 1}, Fit(geom.Size{}, geom.Size{W: 10, H: 10}))
	assert.Equal(t, Viewport{Scale: 1}, Fit(geom.Size{W: 10, H: 10}, geom.Size{}))
}
