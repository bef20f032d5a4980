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
	"github.com/sdlabs/sdcore/pkg/common"
)

// CompiledModel is the output of pkg/compiler for one model: its offset
// table and the three evaluation orders spec.md §4.4 stage 5 names.
type CompiledModel struct {
	Model *Model
	Offsets *OffsetTable

	// InitialOrder runs once, before the first step, to populate stocks'
	// initial values and init-only auxiliaries.
	InitialOrder []common.Ident
	// RuntimeOrder runs every step, in topological order.
	RuntimeOrder []common.Ident
	// StockUpdateOrder lists the stocks to update after RuntimeOrder, in a
	// deterministic (canonical-ident) order.
	StockUpdateOrder []common.Ident
}

// CompiledProject is the immutable artifact a Project compiles to: a
// CompiledModel per model plus every diagnostic collected along the way,
// sorted per spec.md §7's determinism rule.
type CompiledProject struct {
	Project     *Project
	Models      map[common.Ident]*CompiledModel
	Diagnostics []common.Diagnostic
}

// Blocking reports whether any collected diagnostic must prevent
// simulation (every kind except UnitWarning).
func (c *CompiledProject) Blocking() bool {
	for _, d := range c.Diagnostics {
		if d.Blocking() {
			return true
		}
	}
	return false
}
