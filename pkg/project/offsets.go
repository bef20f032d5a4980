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

package project

import (
	"sort"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
)

// timePseudoVars are reserved offsets assigned before any model variable,
// per spec.md §4.4 stage 6 ("time and dt are reserved as pseudo-variables
// with fixed offsets").
var timePseudoVars = []common.Ident{"time", "dt", "starttime", "finaltime"}

// Slot describes one variable's reserved run of f64 storage slots.
type Slot struct {
	Start int
	Count int
	View  dimension.View
}

// OffsetTable maps every variable (plus the four time pseudo-variables) to
// its reserved slot run in a model's working row / result buffer.
type OffsetTable struct {
	Slots map[common.Ident]Slot
	Total int

	TimeOffset      int
	DtOffset        int
	StartTimeOffset int
	FinalTimeOffset int
}

// BuildOffsetTable reserves a contiguous run of slots for every variable in
// names, sized to the product of its declared view's dimension lengths (1
// for a scalar or an absent view), after reserving the four time
// pseudo-variables. Variables are visited in canonical-ident sort order so
// the resulting layout is deterministic across compiler runs.
func BuildOffsetTable(names []common.Ident, views map[common.Ident]dimension.View) *OffsetTable {
	table := &OffsetTable{Slots: map[common.Ident]Slot{}}

	next := 0
	reserve := func(id common.Ident) int {
		o := next
		table.Slots[id] = Slot{Start: o, Count: 1}
		next++
		return o
	}
	table.TimeOffset = reserve(timePseudoVars[0])
	table.DtOffset = reserve(timePseudoVars[1])
	table.StartTimeOffset = reserve(timePseudoVars[2])
	table.FinalTimeOffset = reserve(timePseudoVars[3])

	sorted := append([]common.Ident(nil), names...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, name := range sorted {
		view := views[name]
		count := view.Size() // 1 for a scalar or an absent (zero-value) view
		table.Slots[name] = Slot{Start: next, Count: count, View: view}
		next += count
	}
	table.Total = next
	return table
}
