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

// Package raw is the outermost level of the three-level expression IR
// (spec.md §3): exactly what a parser would emit. Variable references carry
// the raw, as-written name; builtin calls reference the closed catalog in
// pkg/builtin (the source-language translation layer that maps spellings
// like XMILE's "SMTH1" onto this catalog lives outside the core); numeric
// literals keep their original lexeme for round-tripping; subscripts may be
// element names, wildcards, ranges, bang-subscripts or dimension-position
// markers.
package raw

import (
	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
)

// Expr is a node in the raw expression tree.
type Expr interface {
	Span() common.Span
}

// Const is a numeric literal. Lexeme preserves exactly what was written
// ("1e3", "1000", "1,000") even though Value is its parsed float64.
type Const struct {
	Value  float64
	Lexeme string
	span   common.Span
}

// NewConst constructs a Const node.
func NewConst(value float64, lexeme string, span common.Span) Const {
	return Const{Value: value, Lexeme: lexeme, span: span}
}

// Span implements Expr.
func (c Const) Span() common.Span { return c.span }

// Var is a reference to a variable by its as-written name.
type Var struct {
	Name common.RawIdent
	span common.Span
}

// NewVar constructs a Var reference.
func NewVar(name common.RawIdent, span common.Span) Var {
	return Var{Name: name, span: span}
}

// Span implements Expr.
func (v Var) Span() common.Span { return v.span }

// App is a call to a catalog builtin.
type App struct {
	Fn   builtin.ID
	Args []Expr
	span common.Span
}

// NewApp constructs an App node.
func NewApp(fn builtin.ID, args []Expr, span common.Span) App {
	return App{Fn: fn, Args: args, span: span}
}

// Span implements Expr.
func (a App) Span() common.Span { return a.span }

// If is a conditional expression.
type If struct {
	Cond, Then, Else Expr
	span             common.Span
}

// NewIf constructs an If node.
func NewIf(cond, then, els Expr, span common.Span) If {
	return If{Cond: cond, Then: then, Else: els, span: span}
}

// Span implements Expr.
func (i If) Span() common.Span { return i.span }

// Subscript applies subscripts to a variable reference, e.g.
// "Inventory[Region, *]".
type Subscript struct {
	Base    common.RawIdent
	Indices []Index
	span    common.Span
}

// NewSubscript constructs a Subscript node.
func NewSubscript(base common.RawIdent, indices []Index, span common.Span) Subscript {
	return Subscript{Base: base, Indices: indices, span: span}
}

// Span implements Expr.
func (s Subscript) Span() common.Span { return s.span }

// IndexKind distinguishes the subscript forms spec.md §3 names: element
// names, wildcards, ranges, bang-subscripts, or dimension-position markers.
type IndexKind int

// The five raw subscript index forms.
const (
	IdxWildcard IndexKind = iota // "*"
	IdxExpr                      // an arbitrary element expression
	IdxRange                     // "a:b"
	IdxBang                      // "dim!"
	IdxDimPosition                // "@n" (left-hand-side only)
)

// Index is one raw subscript index.
type Index struct {
	Kind      IndexKind
	Expr      Expr   // IdxExpr
	RangeLo   Expr   // IdxRange
	RangeHi   Expr   // IdxRange
	DimName   string // IdxBang
	Position  int    // IdxDimPosition
}
