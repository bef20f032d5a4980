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

package causal

import (
	"sort"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// Polarity is a causal link or loop's direction of influence (spec.md
// §4.6's glossary entry: Positive ↑⇒↑, Negative ↑⇒↓, Unknown). Unknown
// doubles as "from does not appear in this expression at all" — the two
// cases are indistinguishable by construction, since an expression that
// doesn't reference from bottoms out through the same default case as one
// that does but isn't structurally classifiable.
type Polarity int

// The three polarity classes.
const (
	Unknown Polarity = iota
	Positive
	Negative
)

func (p Polarity) flip() Polarity {
	switch p {
	case Positive:
		return Negative
	case Negative:
		return Positive
	default:
		return Unknown
	}
}

// LinkPolarity computes the structural polarity of the edge from -> v,
// examining how from appears in v's equation (spec.md §4.6). vars supplies
// lookup-table variables referenced by a LOOKUP call and resolves a
// multiplier's sign when it is itself a variable whose own equation is a
// constant (e.g. a named growth-rate parameter).
func LinkPolarity(from common.Ident, v *variable.Variable, vars map[common.Ident]*variable.Variable) Polarity {
	return equationPolarity(v.Equation, from, vars)
}

func equationPolarity(eq variable.Equation, target common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	switch eq.Kind {
	case variable.Scalar, variable.ApplyToAll:
		if eq.Expr == nil {
			return Unknown
		}
		return polarityOfExpr(eq.Expr, target, vars)
	case variable.Arrayed:
		keys := make([]string, 0, len(eq.Elements))
		for k := range eq.Elements {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pol := Unknown
		for _, k := range keys {
			elemPol := polarityOfExpr(eq.Elements[k], target, vars)
			if pol == Unknown {
				pol = elemPol
			} else if pol != elemPol && elemPol != Unknown {
				return Unknown
			}
		}
		return pol
	default:
		return Unknown
	}
}

func polarityOfExpr(e typed.Expr, target common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	switch n := e.(type) {
	case typed.Const:
		return Unknown
	case typed.Var:
		if n.Name == target {
			return Positive
		}
		return Unknown
	case typed.Subscript:
		if n.Base == target {
			return Positive
		}
		return Unknown
	case typed.Transpose:
		return polarityOfExpr(n.Inner, target, vars)
	case typed.If:
		thenP := polarityOfExpr(n.Then, target, vars)
		elseP := polarityOfExpr(n.Else, target, vars)
		if thenP == elseP {
			return thenP
		}
		return Unknown
	case typed.App:
		return polarityOfApp(n, target, vars)
	default:
		return Unknown
	}
}

func polarityOfApp(n typed.App, target common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	switch n.Fn {
	case builtin.Add:
		left := polarityOfExpr(n.Args[0], target, vars)
		if left != Unknown {
			return left
		}
		return polarityOfExpr(n.Args[1], target, vars)
	case builtin.Sub:
		left := polarityOfExpr(n.Args[0], target, vars)
		if left != Unknown {
			return left
		}
		right := polarityOfExpr(n.Args[1], target, vars)
		if right != Unknown {
			return right.flip()
		}
		return Unknown
	case builtin.Mul:
		return polarityOfProduct(n.Args[0], n.Args[1], target, vars)
	case builtin.Div, builtin.SafeDiv:
		num := polarityOfExpr(n.Args[0], target, vars)
		if num != Unknown {
			return num
		}
		den := polarityOfExpr(n.Args[1], target, vars)
		if den != Unknown {
			return den.flip()
		}
		return Unknown
	case builtin.Neg, builtin.Not:
		return polarityOfExpr(n.Args[0], target, vars).flip()
	case builtin.Max, builtin.Min:
		// Max/Min are array reductions here (spec.md §4.2), not the
		// original's binary comparison — they consume one array view (or,
		// degenerately, more than one), so their polarity is whichever
		// known sign all arguments agree on.
		return polarityOfReduction(n.Args, target, vars)
	case builtin.Lookup:
		return polarityOfLookup(n, target, vars)
	default:
		// Every builtin with no structural rule (comparisons, logical
		// and/or, trig, randomness, time queries, reductions other than
		// max/min, exp/ln/log10/sqrt/arctan/int's generic catalog
		// counterparts not special-cased above): spec.md §4.6 "anything
		// not covered yields Unknown", except the explicit monotone set
		// below.
		return polarityOfMonotoneUnary(n, target, vars)
	}
}

// polarityOfProduct mirrors x*y's structural rule (spec.md §4.6): if both
// operands have known polarity, the product's sign is their product
// (agreeing signs -> Positive, disagreeing -> Negative); if only one does,
// the other must be a constant (or a variable whose own equation is one)
// of known sign to propagate or flip it, otherwise Unknown.
func polarityOfProduct(left, right typed.Expr, target common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	leftP := polarityOfExpr(left, target, vars)
	rightP := polarityOfExpr(right, target, vars)

	switch {
	case leftP != Unknown && rightP != Unknown:
		if leftP == rightP {
			return Positive
		}
		return Negative
	case leftP != Unknown:
		return combineWithConstantFactor(leftP, right, vars)
	case rightP != Unknown:
		return combineWithConstantFactor(rightP, left, vars)
	default:
		return Unknown
	}
}

func polarityOfReduction(args []typed.Expr, target common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	pol := Unknown
	for _, a := range args {
		p := polarityOfExpr(a, target, vars)
		if p == Unknown {
			continue
		}
		if pol == Unknown {
			pol = p
		} else if pol != p {
			return Unknown
		}
	}
	return pol
}

func combineWithConstantFactor(known Polarity, other typed.Expr, vars map[common.Ident]*variable.Variable) Polarity {
	switch constSign(other, vars) {
	case 1:
		return known
	case -1:
		return known.flip()
	default:
		return Unknown
	}
}

// constSign reports the sign of a literal constant, or of a variable whose
// own scalar equation is a literal constant (e.g. a named rate parameter),
// or 0 if neither.
func constSign(e typed.Expr, vars map[common.Ident]*variable.Variable) int {
	switch n := e.(type) {
	case typed.Const:
		return sign(n.Value)
	case typed.Var:
		other, ok := vars[n.Name]
		if !ok || other.Equation.Kind != variable.Scalar {
			return 0
		}
		if c, ok := other.Equation.Expr.(typed.Const); ok {
			return sign(c.Value)
		}
		return 0
	default:
		return 0
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// polarityOfLookup composes the last argument's polarity with a lookup
// table's monotonicity (spec.md §4.6: "the lookup call's polarity is the
// composition of argument polarity and table polarity"). The table is
// found by resolving one of the App's other arguments as a variable
// reference that names a variable with a LookupTable attached; when no
// argument names such a variable, the result is Unknown.
func polarityOfLookup(n typed.App, target common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	argPol := polarityOfExpr(n.Args[len(n.Args)-1], target, vars)
	if argPol == Unknown {
		return Unknown
	}
	for _, a := range n.Args[:len(n.Args)-1] {
		if ref, ok := a.(typed.Var); ok {
			if table, ok := vars[ref.Name]; ok && table.Lookup != nil {
				return combineTablePolarity(argPol, table.Lookup.Monotonicity())
			}
		}
	}
	return Unknown
}

func combineTablePolarity(argPol Polarity, tableMono int) Polarity {
	switch tableMono {
	case 1:
		return argPol
	case -1:
		return argPol.flip()
	default:
		return Unknown
	}
}

// polarityOfMonotoneUnary covers the monotonically-increasing single-arg
// builtins spec.md §4.6 names explicitly (exp, ln, log10, sqrt, arctan,
// int), propagating the argument's polarity unchanged, using the catalog's
// own Monotone() classification (also covering decreasing unary builtins
// like arccos by flipping) rather than re-listing each function by name.
func polarityOfMonotoneUnary(n typed.App, target common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	if n.Fn.Arity() != 1 || len(n.Args) != 1 {
		return Unknown
	}
	switch n.Fn.Monotone() {
	case builtin.Increasing:
		return polarityOfExpr(n.Args[0], target, vars)
	case builtin.Decreasing:
		return polarityOfExpr(n.Args[0], target, vars).flip()
	default:
		return Unknown
	}
}
