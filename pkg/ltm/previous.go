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

package ltm

import (
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
)

// wrapPrevious implements spec.md §4.7's ceteris-paribus rewrite: walk e,
// wrapping every Var/Subscript leaf whose canonical identity is in deps
// with PREVIOUS(...). Builtin call names in App nodes are never touched —
// a variable named "max" inside a MAX(...) call stays untouched, since the
// walk only ever inspects App.Args, never App.Fn.
func wrapPrevious(e typed.Expr, deps map[common.Ident]bool) typed.Expr {
	switch n := e.(type) {
	case typed.Const:
		return n
	case typed.Var:
		if deps[n.Name] {
			return previous(n)
		}
		return n
	case typed.Subscript:
		if deps[n.Base] {
			return previous(n)
		}
		return n
	case typed.Transpose:
		return typed.NewTranspose(wrapPrevious(n.Inner, deps), n.Span(), n.Source())
	case typed.If:
		return typed.NewIf(
			wrapPrevious(n.Cond, deps),
			wrapPrevious(n.Then, deps),
			wrapPrevious(n.Else, deps),
			n.Span(), n.Source(),
		)
	case typed.App:
		args := make([]typed.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = wrapPrevious(a, deps)
		}
		return typed.NewApp(n.Fn, args, n.Span(), n.Source())
	default:
		return e
	}
}

// buildPartialEquation returns the ceteris-paribus rewrite of e: every
// free variable e depends on, except exclude, wrapped in PREVIOUS(...).
// deps is the full dependency set of the variable e belongs to (computed
// once by the caller via variable.Variable.Dependencies, which already
// walks the same AST).
func buildPartialEquation(e typed.Expr, deps []common.Ident, exclude common.Ident) typed.Expr {
	toWrap := make(map[common.Ident]bool, len(deps))
	for _, d := range deps {
		if d != exclude {
			toWrap[d] = true
		}
	}
	if len(toWrap) == 0 {
		return e
	}
	return wrapPrevious(e, toWrap)
}
