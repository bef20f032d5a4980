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

package compiler

import (
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// Recompile merges a set of already-typed variables (e.g. pkg/ltm's
// synthetic score/loop variables) into an already-compiled model and
// reruns stages 5-6 of the pipeline (evaluation ordering, offset
// allocation) without re-resolving, re-checking units or re-typing
// anything: the merged variables carry their own typed.Expr already, so
// stages 1-4 have nothing left to do for them. Used by the CLI's "ltm" verb, which augments a
// compiled model's variables before simulating the result.
func Recompile(cm *project.CompiledModel, extra map[common.Ident]*variable.Variable) (*project.CompiledModel, []common.Diagnostic) {
	vars := make(map[common.Ident]*variable.Variable, len(cm.Model.Variables)+len(extra))
	for name, v := range cm.Model.Variables {
		vars[name] = v
	}
	for name, v := range extra {
		vars[name] = v
	}

	initial, runtime, stockUpdate, diags := buildOrders(cm.Model.Name, vars)

	views := make(map[common.Ident]dimension.View, len(vars))
	for name, slot := range cm.Offsets.Slots {
		if _, ok := vars[name]; ok {
			views[name] = slot.View
		}
	}

	model := project.NewModel(cm.Model.Name)
	model.Variables = vars
	for k, v := range cm.Model.Dimensions {
		model.Dimensions[k] = v
	}

	offsets := project.BuildOffsetTable(allVariableNames(vars), views)

	out := &project.CompiledModel{
		Model:            model,
		Offsets:          offsets,
		InitialOrder:     initial,
		RuntimeOrder:     runtime,
		StockUpdateOrder: stockUpdate,
	}
	return out, diags
}
