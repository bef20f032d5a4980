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

package resolved

import (
	"fmt"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/raw"
)

// Scope binds raw names to canonical model variables for one equation's
// resolution, per spec.md §4.4 stage 2. Port substitutes a module input
// port's raw name with the already-resolved expression for the parent's
// source variable: resolving a reference inside a sub-model inlines the
// binding rather than keeping an indirection, so later pipeline stages
// never need to chase through module boundaries.
type Scope struct {
	Model common.Ident
	Names map[common.Ident]bool
	Ports map[common.Ident]Expr
}

// NewScope builds an empty scope for model.
func NewScope(model common.Ident, names map[common.Ident]bool) *Scope {
	if names == nil {
		names = map[common.Ident]bool{}
	}
	return &Scope{Model: model, Names: names, Ports: map[common.Ident]Expr{}}
}

// BindPort registers a module input-port substitution.
func (s *Scope) BindPort(port common.Ident, value Expr) { s.Ports[port] = value }

// Resolve lowers a raw expression to a resolved one against scope. Unknown
// identifiers are reported as blocking common.Diagnostic values rather than
// a Go error: resolution continues best-effort over the rest of the
// equation so a single typo doesn't suppress every other diagnostic in the
// model, mirroring the teacher's non-fatal diagnostic accumulation.
func Resolve(e raw.Expr, scope *Scope) (Expr, []common.Diagnostic) {
	switch n := e.(type) {
	case raw.Const:
		return NewConst(n.Value, n.Span()), nil
	case raw.Var:
		return resolveVar(n, scope)
	case raw.App:
		args := make([]Expr, len(n.Args))
		var diags []common.Diagnostic
		for i, a := range n.Args {
			r, d := Resolve(a, scope)
			args[i] = r
			diags = append(diags, d...)
		}
		return NewApp(n.Fn, args, n.Span()), diags
	case raw.If:
		cond, dc := Resolve(n.Cond, scope)
		then, dt := Resolve(n.Then, scope)
		els, de := Resolve(n.Else, scope)
		diags := append(append(dc, dt...), de...)
		return NewIf(cond, then, els, n.Span()), diags
	case raw.Subscript:
		return resolveSubscript(n, scope)
	default:
		panic(fmt.Sprintf("resolved.Resolve: unhandled raw expr %T", e))
	}
}

func resolveVar(n raw.Var, scope *Scope) (Expr, []common.Diagnostic) {
	canon := common.Canonicalize(n.Name)
	if bound, ok := scope.Ports[canon]; ok {
		return bound, nil
	}
	if !scope.Names[canon] {
		return nil, []common.Diagnostic{common.NewDiagnostic(common.UnknownIdent, scope.Model, canon, n.Span(),
			fmt.Sprintf("unknown identifier %q", n.Name))}
	}
	return NewVar(canon, n.Span()), nil
}

func resolveSubscript(n raw.Subscript, scope *Scope) (Expr, []common.Diagnostic) {
	base := common.Canonicalize(n.Base)
	var diags []common.Diagnostic
	if bound, ok := scope.Ports[base]; ok {
		if bv, ok := bound.(Var); ok {
			base = bv.Name
		}
	} else if !scope.Names[base] {
		diags = append(diags, common.NewDiagnostic(common.UnknownIdent, scope.Model, base, n.Span(),
			fmt.Sprintf("unknown identifier %q", n.Base)))
	}

	indices := make([]Index, len(n.Indices))
	for i, idx := range n.Indices {
		ri := Index{Kind: IndexKind(idx.Kind), DimName: idx.DimName, Position: idx.Position}
		if idx.Expr != nil {
			e, d := Resolve(idx.Expr, scope)
			ri.Expr = e
			diags = append(diags, d...)
		}
		if idx.RangeLo != nil {
			e, d := Resolve(idx.RangeLo, scope)
			ri.RangeLo = e
			diags = append(diags, d...)
		}
		if idx.RangeHi != nil {
			e, d := Resolve(idx.RangeHi, scope)
			ri.RangeHi = e
			diags = append(diags, d...)
		}
		indices[i] = ri
	}
	return NewSubscript(base, indices, n.Span()), diags
}
