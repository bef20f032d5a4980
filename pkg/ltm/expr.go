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

// Package ltm builds the "Loops That Matter" synthetic variables spec.md
// §4.7 describes: link scores, loop scores and relative loop scores, plus
// the module-internal pathway/composite variables for dynamic stdlib
// modules. Every synthetic variable's equation is built directly as a
// typed.Expr (this core already has the full AST in hand; there is no
// source text to re-parse, unlike the original's equation-string
// generation-and-reparse approach).
package ltm

import (
	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
)

func noSpan() common.Span { return common.Span{} }

func varRef(name common.Ident) typed.Expr {
	return typed.NewVar(name, noSpan(), nil)
}

func constant(v float64) typed.Expr {
	return typed.NewConst(v, noSpan())
}

func app(fn builtin.ID, args ...typed.Expr) typed.Expr {
	return typed.NewApp(fn, args, noSpan(), nil)
}

func ifExpr(cond, then, els typed.Expr) typed.Expr {
	return typed.NewIf(cond, then, els, noSpan(), nil)
}

func previous(e typed.Expr) typed.Expr { return app(builtin.Previous, e) }

func sub(a, b typed.Expr) typed.Expr { return app(builtin.Sub, a, b) }

func or(a, b typed.Expr) typed.Expr { return app(builtin.Or, a, b) }

func eq(a, b typed.Expr) typed.Expr { return app(builtin.Eq, a, b) }

func abs(a typed.Expr) typed.Expr { return app(builtin.Abs, a) }

func sign(a typed.Expr) typed.Expr { return app(builtin.Sign, a) }

func neg(a typed.Expr) typed.Expr { return app(builtin.Neg, a) }

func mul(a, b typed.Expr) typed.Expr { return app(builtin.Mul, a, b) }

func safeDiv(num, den, fallback typed.Expr) typed.Expr { return app(builtin.SafeDiv, num, den, fallback) }

// timeExpr reads the current simulation clock.
func timeExpr() typed.Expr { return app(builtin.Time) }

// delta builds u - PREVIOUS(u) for a named variable u.
func delta(u common.Ident) typed.Expr {
	return sub(varRef(u), previous(varRef(u)))
}

// deltaOfExpr builds e - PREVIOUS(e) for an arbitrary (already-built)
// expression, used when e is itself a ceteris-paribus rewrite rather than
// a bare variable reference.
func deltaOfExpr(e typed.Expr) typed.Expr {
	return sub(e, previous(e))
}
