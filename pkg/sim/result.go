// Copyright SDLabs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/project"
)

// Result holds one run's output: a row per save-step, each row sized and
// offset exactly like the working row the simulator steps (spec.md §4.5's
// "result buffer [save_step_count][offset_count]"). Rows is always
// complete through the last successfully saved step, even when a run was
// cancelled early.
type Result struct {
	Offsets *project.OffsetTable
	Rows    [][]float64
}

// Series extracts one variable's saved values across every row, or nil if
// name was never given an offset (e.g. a Module-kind variable, which
// carries no storage of its own per pkg/compiler's black-box treatment).
func (r *Result) Series(name common.Ident) []float64 {
	slot, ok := r.Offsets.Slots[name]
	if !ok || slot.Count != 1 {
		return nil
	}
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[slot.Start]
	}
	return out
}

// At returns the full set of values a named array variable held at save
// step i (Count elements starting at its slot, in row-major order).
func (r *Result) At(name common.Ident, step int) []float64 {
	slot, ok := r.Offsets.Slots[name]
	if !ok || step < 0 || step >= len(r.Rows) {
		return nil
	}
	row := r.Rows[step]
	return append([]float64(nil), row[slot.Start:slot.Start+slot.Count]...)
}
