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
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/unit"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// typeModel runs stage 4: lowering every resolved variable to its typed
// form, attaching ArraySource from rm's declared views.
func typeModel(rm *RawModel, resolvedVars map[common.Ident]*resolvedVariable) (map[common.Ident]*variable.Variable, []common.Diagnostic) {
	ctx := typed.NewContext(rm.Name, rm.Views)
	out := make(map[common.Ident]*variable.Variable, len(resolvedVars))
	var diags []common.Diagnostic

	for name, rv := range resolvedVars {
		eq, d := typeEquation(rv.Equation, ctx)
		diags = append(diags, d...)

		var initEq *variable.Equation
		if rv.InitialEquation != nil {
			e, d := typeEquation(*rv.InitialEquation, ctx)
			diags = append(diags, d...)
			initEq = &e
		}

		out[name] = &variable.Variable{
			Name:            name,
			Kind:            rv.Kind,
			Doc:             rv.Doc,
			Equation:        eq,
			Unit:            unit.Atomic(rv.UnitName),
			Lookup:          rv.Lookup,
			InitialEquation: initEq,
			NonNegative:     rv.NonNegative,
			Inflows:         rv.Inflows,
			Outflows:        rv.Outflows,
			PortBindings:    rv.PortBindings,
		}
	}
	return out, diags
}

func typeEquation(eq resolvedEquation, ctx *typed.Context) (variable.Equation, []common.Diagnostic) {
	var diags []common.Diagnostic
	switch eq.Kind {
	case variable.Scalar, variable.ApplyToAll:
		if eq.Expr == nil {
			return variable.Equation{Kind: eq.Kind}, nil
		}
		e, d := typed.Lower(eq.Expr, ctx)
		diags = append(diags, d...)
		return variable.Equation{Kind: eq.Kind, Expr: e}, diags
	case variable.Arrayed:
		elements := make(map[string]typed.Expr, len(eq.Elements))
		for key, e := range eq.Elements {
			te, d := typed.Lower(e, ctx)
			diags = append(diags, d...)
			elements[key] = te
		}
		return variable.Equation{Kind: eq.Kind, Elements: elements}, diags
	default:
		return variable.Equation{Kind: eq.Kind}, nil
	}
}
