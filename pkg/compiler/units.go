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
	"sort"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/unit"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// checkUnits runs stage 3: walks every variable's typed equation(s)
// inferring a unit per node, collecting every mismatch as a non-blocking
// UnitWarning diagnostic. It never changes compilation's outcome (spec.md
// §4.4 stage 3).
func checkUnits(model common.Ident, vars map[common.Ident]*variable.Variable) []common.Diagnostic {
	varUnits := make(map[common.Ident]unit.Expr, len(vars))
	for name, v := range vars {
		varUnits[name] = v.Unit
	}

	names := make([]common.Ident, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var diags []common.Diagnostic
	for _, name := range names {
		v := vars[name]
		switch v.Equation.Kind {
		case variable.Scalar, variable.ApplyToAll:
			if v.Equation.Expr == nil {
				continue
			}
			_, d := unit.Infer(v.Equation.Expr, varUnits, model)
			diags = append(diags, d...)
		case variable.Arrayed:
			keys := make([]string, 0, len(v.Equation.Elements))
			for k := range v.Equation.Elements {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, d := unit.Infer(v.Equation.Elements[k], varUnits, model)
				diags = append(diags, d...)
			}
		}
	}
	return diags
}
