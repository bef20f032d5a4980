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
	"github.com/sdlabs/sdcore/pkg/resolved"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// resolvedEquation is a RawEquation with every identifier bound to its
// canonical form.
type resolvedEquation struct {
	Kind     variable.EquationKind
	Expr     resolved.Expr
	Elements map[string]resolved.Expr
}

// resolvedVariable is a RawVariable after stage 2 (spec.md §4.4).
type resolvedVariable struct {
	Name            common.Ident
	Kind            variable.Kind
	Doc             string
	Equation        resolvedEquation
	UnitName        string
	Lookup          *variable.LookupTable
	InitialEquation *resolvedEquation
	NonNegative     bool
	Inflows         []common.Ident
	Outflows        []common.Ident
	PortBindings    map[common.Ident]common.Ident
}

// resolveModel runs stage 2 over every variable in rm: it builds one
// model-wide Scope (every variable's canonical name is visible to every
// equation — a flat namespace, consistent with the subscript-scoped
// dimension names being resolved separately at the typed stage) and
// resolves each RawVariable's equation(s) against it.
func resolveModel(rm *RawModel) (map[common.Ident]*resolvedVariable, []common.Diagnostic) {
	names := map[common.Ident]bool{}
	for rawName := range rm.Variables {
		names[common.Canonicalize(rawName)] = true
	}
	scope := resolved.NewScope(rm.Name, names)

	out := make(map[common.Ident]*resolvedVariable, len(rm.Variables))
	var diags []common.Diagnostic

	for rawName, rv := range rm.Variables {
		canon := common.Canonicalize(rawName)
		eq, d := resolveEquation(rv.Equation, scope)
		diags = append(diags, d...)

		var initEq *resolvedEquation
		if rv.InitialEquation != nil {
			e, d := resolveEquation(*rv.InitialEquation, scope)
			diags = append(diags, d...)
			initEq = &e
		}

		ports := map[common.Ident]common.Ident{}
		for port, src := range rv.PortBindings {
			ports[common.Canonicalize(port)] = common.Canonicalize(src)
		}

		out[canon] = &resolvedVariable{
			Name:            canon,
			Kind:            rv.Kind,
			Doc:             rv.Doc,
			Equation:        eq,
			UnitName:        rv.UnitName,
			Lookup:          rv.Lookup,
			InitialEquation: initEq,
			NonNegative:     rv.NonNegative,
			Inflows:         canonicalizeAll(rv.Inflows),
			Outflows:        canonicalizeAll(rv.Outflows),
			PortBindings:    ports,
		}
	}
	return out, diags
}

func resolveEquation(eq RawEquation, scope *resolved.Scope) (resolvedEquation, []common.Diagnostic) {
	var diags []common.Diagnostic
	switch eq.Kind {
	case variable.Scalar, variable.ApplyToAll:
		e, d := resolved.Resolve(eq.Expr, scope)
		diags = append(diags, d...)
		return resolvedEquation{Kind: eq.Kind, Expr: e}, diags
	case variable.Arrayed:
		elements := make(map[string]resolved.Expr, len(eq.Elements))
		for key, e := range eq.Elements {
			re, d := resolved.Resolve(e, scope)
			diags = append(diags, d...)
			elements[key] = re
		}
		return resolvedEquation{Kind: eq.Kind, Elements: elements}, diags
	default:
		return resolvedEquation{Kind: eq.Kind}, nil
	}
}

func canonicalizeAll(raws []common.RawIdent) []common.Ident {
	if raws == nil {
		return nil
	}
	out := make([]common.Ident, len(raws))
	for i, r := range raws {
		out[i] = common.Canonicalize(r)
	}
	return out
}
