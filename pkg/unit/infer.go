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

package unit

import (
	"fmt"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
)

// transcendental builtins require a dimensionless argument (spec.md §4.8).
var transcendental = map[builtin.ID]bool{
	builtin.Exp: true, builtin.Ln: true, builtin.Log10: true, builtin.Sqrt: true,
	builtin.Sin: true, builtin.Cos: true, builtin.Tan: true,
	builtin.Arcsin: true, builtin.Arccos: true, builtin.Arctan: true,
}

var comparison = map[builtin.ID]bool{
	builtin.Eq: true, builtin.Neq: true, builtin.Lt: true, builtin.Lte: true,
	builtin.Gt: true, builtin.Gte: true,
}

var logical = map[builtin.ID]bool{builtin.And: true, builtin.Or: true, builtin.Not: true}

// Infer walks a typed expression computing a unit for every node, collecting
// every mismatch as a non-blocking common.Diagnostic with Kind UnitWarning
// (spec.md §4.4 stage 3, §4.8). varUnits supplies the declared unit of every
// variable the expression may reference.
func Infer(e typed.Expr, varUnits map[common.Ident]Expr, model common.Ident) (Expr, []common.Diagnostic) {
	switch n := e.(type) {
	case typed.Const:
		return Dimensionless(), nil
	case typed.Var:
		if u, ok := varUnits[n.Name]; ok {
			return u, nil
		}
		return Dimensionless(), nil
	case typed.Subscript:
		if u, ok := varUnits[n.Base]; ok {
			return u, nil
		}
		return Dimensionless(), nil
	case typed.App:
		return inferApp(n, varUnits, model)
	case typed.If:
		then, dt := Infer(n.Then, varUnits, model)
		els, de := Infer(n.Else, varUnits, model)
		diags := append(dt, de...)
		if !then.Equal(els) {
			diags = append(diags, warn(model, n.Span(), fmt.Sprintf("if-branches have mismatched units: %s vs %s", then, els)))
		}
		return then, diags
	case typed.Transpose:
		return Infer(n.Inner, varUnits, model)
	default:
		return Dimensionless(), nil
	}
}

func inferApp(n typed.App, varUnits map[common.Ident]Expr, model common.Ident) (Expr, []common.Diagnostic) {
	argUnits := make([]Expr, len(n.Args))
	var diags []common.Diagnostic
	for i, a := range n.Args {
		u, d := Infer(a, varUnits, model)
		argUnits[i] = u
		diags = append(diags, d...)
	}

	switch {
	case n.Fn == builtin.Add || n.Fn == builtin.Sub:
		if len(argUnits) == 2 && !argUnits[0].Equal(argUnits[1]) {
			diags = append(diags, warn(model, n.Span(), fmt.Sprintf("mismatched units under +/-: %s vs %s", argUnits[0], argUnits[1])))
		}
		return argUnits[0], diags
	case n.Fn == builtin.Mul:
		return Mul(argUnits[0], argUnits[1]), diags
	case n.Fn == builtin.Div:
		return Div(argUnits[0], argUnits[1]), diags
	case n.Fn == builtin.Neg:
		return argUnits[0], diags
	case n.Fn == builtin.Pow:
		return argUnits[0], diags // exponent is assumed dimensionless per spec.md §4.8's pointwise-op rule
	case transcendental[n.Fn]:
		if !argUnits[0].IsDimensionless() {
			diags = append(diags, warn(model, n.Span(), fmt.Sprintf("%s requires a dimensionless argument, got %s", n.Fn, argUnits[0])))
		}
		return Dimensionless(), diags
	case comparison[n.Fn]:
		if len(argUnits) == 2 && !argUnits[0].Equal(argUnits[1]) {
			diags = append(diags, warn(model, n.Span(), fmt.Sprintf("comparison of mismatched units: %s vs %s", argUnits[0], argUnits[1])))
		}
		return Dimensionless(), diags
	case logical[n.Fn]:
		return Dimensionless(), diags
	case n.Fn == builtin.SafeDiv:
		num, den := argUnits[0], argUnits[1]
		want := Div(num, den)
		if len(argUnits) == 3 && !argUnits[2].Equal(want) {
			diags = append(diags, warn(model, n.Span(), fmt.Sprintf("safediv fallback must have units %s, got %s", want, argUnits[2])))
		}
		return want, diags
	case n.Fn.IsReduction():
		if len(argUnits) > 0 {
			return argUnits[0], diags
		}
		return Dimensionless(), diags
	default:
		if len(argUnits) > 0 {
			return argUnits[0], diags
		}
		return Dimensionless(), diags
	}
}

func warn(model common.Ident, span common.Span, msg string) common.Diagnostic {
	return common.NewDiagnostic(common.UnitWarning, model, "", span, msg)
}
