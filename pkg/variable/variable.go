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

// Package variable holds the Variable/Equation/LookupTable model (spec.md
// §4.3). A Variable owns its own AST (or one AST per element, for an
// Arrayed equation) and carries no back-reference to its model: every
// traversal that needs the wider model passes the variable map in
// explicitly, so Variable values stay independently testable and copyable.
package variable

import (
	"sort"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/unit"
)

// Kind distinguishes the three variable roles spec.md §4.3 names.
type Kind int

// The three variable kinds.
const (
	Stock Kind = iota
	// Var is spec.md's "Flow-or-Aux": flows and auxiliaries share an
	// equation shape and differ only in how the dependency graph and
	// stock-update step treat them (a flow also appears in some stock's
	// Inflows/Outflows).
	Var
	Module
)

// EquationKind distinguishes a variable's equation shape.
type EquationKind int

// The three equation shapes spec.md §4.5 evaluates differently.
const (
	// Scalar: one AST, one value.
	Scalar EquationKind = iota
	// ApplyToAll: one AST evaluated once per element, with the current
	// element bound into scope for each evaluation.
	ApplyToAll
	// Arrayed: one AST per element, each written out by the model author.
	Arrayed
)

// Equation is a Variable's right-hand side.
type Equation struct {
	Kind EquationKind
	// Expr holds the single AST for Scalar and ApplyToAll equations.
	Expr typed.Expr
	// Elements holds one AST per element for an Arrayed equation, keyed by
	// the element's subscript tuple joined with commas (e.g. "north,2").
	Elements map[string]typed.Expr
}

// ExtrapolateKind selects how a LookupTable behaves outside its domain.
type ExtrapolateKind int

// The two extrapolation behaviors a lookup table can have.
const (
	// ExtrapolateClamp holds the nearest endpoint value.
	ExtrapolateClamp ExtrapolateKind = iota
	// ExtrapolateContinue extends the slope of the nearest segment.
	ExtrapolateContinue
)

// LookupTable is a piecewise-linear graphical function: ordered (x, y)
// pairs plus an extrapolation rule and optional display-scale bounds.
type LookupTable struct {
	X, Y        []float64
	Extrapolate ExtrapolateKind
	XScale      [2]float64
	YScale      [2]float64
}

// Monotonicity classifies the sign of a LookupTable's slope across its
// domain, scanned with a tight epsilon per spec.md §4.6.
func (t *LookupTable) Monotonicity() int {
	const epsilon = 1e-9
	increasing, decreasing := false, false
	for i := 1; i < len(t.Y); i++ {
		d := t.Y[i] - t.Y[i-1]
		switch {
		case d > epsilon:
			increasing = true
		case d < -epsilon:
			decreasing = true
		}
	}
	switch {
	case increasing && !decreasing:
		return 1
	case decreasing && !increasing:
		return -1
	default:
		return 0
	}
}

// Interpolate evaluates the table at x by linear interpolation between its
// bracketing (X, Y) pairs, applying Extrapolate outside [X[0], X[last]]. An
// empty table returns 0.
func (t *LookupTable) Interpolate(x float64) float64 {
	n := len(t.X)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return t.Y[0]
	}
	if x <= t.X[0] {
		if t.Extrapolate == ExtrapolateContinue {
			return lerp(t.X[0], t.Y[0], t.X[1], t.Y[1], x)
		}
		return t.Y[0]
	}
	if x >= t.X[n-1] {
		if t.Extrapolate == ExtrapolateContinue {
			return lerp(t.X[n-2], t.Y[n-2], t.X[n-1], t.Y[n-1], x)
		}
		return t.Y[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= t.X[i] {
			return lerp(t.X[i-1], t.Y[i-1], t.X[i], t.Y[i], x)
		}
	}
	return t.Y[n-1]
}

func lerp(x0, y0, x1, y1, x float64) float64 {
	if x1 == x0 {
		return y0
	}
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Variable is one model variable: its kind, its equation(s), and the extra
// fields each kind needs.
type Variable struct {
	Name common.Ident
	Kind Kind
	Doc  string

	Equation Equation
	Unit     unit.Expr
	Lookup   *LookupTable

	// Stock-only fields.
	InitialEquation *Equation
	NonNegative     bool
	Inflows         []common.Ident
	Outflows        []common.Ident

	// Module-only fields: the canonical name, in the parent model, each
	// input port is bound to.
	PortBindings map[common.Ident]common.Ident
}

// Dependencies computes the set of variables this one reads at runtime, by
// walking its equation AST(s) and collecting free variable names — never by
// consulting a model map (spec.md §4.3). For a Stock, the initial-value AST
// is excluded: it only contributes to InitialDependencies. For a Module,
// dependencies are the source-in-parent names of its input bindings.
func (v *Variable) Dependencies() []common.Ident {
	set := map[common.Ident]bool{}

	if v.Kind == Module {
		for _, src := range v.PortBindings {
			set[src] = true
		}
	} else {
		collectEquation(v.Equation, set)
	}

	if v.Kind == Stock {
		for _, f := range v.Inflows {
			set[f] = true
		}
		for _, f := range v.Outflows {
			set[f] = true
		}
	}

	return sortedKeys(set)
}

// InitialDependencies computes the dependency set used only for initial
// evaluation: the runtime dependencies plus, for a Stock, its initial-value
// AST's free variables.
func (v *Variable) InitialDependencies() []common.Ident {
	set := map[common.Ident]bool{}
	for _, d := range v.Dependencies() {
		set[d] = true
	}
	if v.Kind == Stock && v.InitialEquation != nil {
		collectEquation(*v.InitialEquation, set)
	}
	return sortedKeys(set)
}

func collectEquation(eq Equation, set map[common.Ident]bool) {
	switch eq.Kind {
	case Scalar, ApplyToAll:
		collectExpr(eq.Expr, set)
	case Arrayed:
		keys := make([]string, 0, len(eq.Elements))
		for k := range eq.Elements {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectExpr(eq.Elements[k], set)
		}
	}
}

func collectExpr(e typed.Expr, set map[common.Ident]bool) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case typed.Const:
	case typed.Var:
		set[n.Name] = true
	case typed.App:
		for _, a := range n.Args {
			collectExpr(a, set)
		}
	case typed.If:
		collectExpr(n.Cond, set)
		collectExpr(n.Then, set)
		collectExpr(n.Else, set)
	case typed.Subscript:
		set[n.Base] = true
		for _, d := range n.DynIndices {
			collectExpr(d.Expr, set)
		}
	case typed.Transpose:
		collectExpr(n.Inner, set)
	}
}

func sortedKeys(set map[common.Ident]bool) []common.Ident {
	out := make([]common.Ident, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
