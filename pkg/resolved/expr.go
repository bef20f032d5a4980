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

// Package resolved is the middle level of the three-level expression IR
// (spec.md §3): every variable reference has been bound to a canonical
// identifier, with module input-port references already substituted for
// the parent's source variable per spec.md §4.4 stage 2.
package resolved

import (
	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
)

// Expr is a node in the resolved expression tree.
type Expr interface {
	Span() common.Span
}

// Const is a numeric literal.
type Const struct {
	Value float64
	span  common.Span
}

// NewConst constructs a Const node.
func NewConst(value float64, span common.Span) Const { return Const{Value: value, span: span} }

// Span implements Expr.
func (c Const) Span() common.Span { return c.span }

// Var is a reference to a variable by its canonical identifier.
type Var struct {
	Name common.Ident
	span common.Span
}

// NewVar constructs a Var reference.
func NewVar(name common.Ident, span common.Span) Var { return Var{Name: name, span: span} }

// Span implements Expr.
func (v Var) Span() common.Span { return v.span }

// App is a validated call to a catalog builtin.
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
func NewIf(cond, then, els Expr, span common.Span) If { return If{cond, then, els, span} }

// Span implements Expr.
func (i If) Span() common.Span { return i.span }

// Subscript applies subscripts to a resolved variable reference.
type Subscript struct {
	Base    common.Ident
	Indices []Index
	span    common.Span
}

// NewSubscript constructs a Subscript node.
func NewSubscript(base common.Ident, indices []Index, span common.Span) Subscript {
	return Subscript{Base: base, Indices: indices, span: span}
}

// Span implements Expr.
func (s Subscript) Span() common.Span { return s.span }

// IndexKind mirrors raw.IndexKind at the resolved level.
type IndexKind int

// The five resolved subscript index forms.
const (
	IdxWildcard IndexKind = iota
	IdxExpr
	IdxRange
	IdxBang
	IdxDimPosition
)

// Index is one resolved subscript index.
type Index struct {
	Kind     IndexKind
	Expr     Expr
	RangeLo  Expr
	RangeHi  Expr
	DimName  string
	Position int
}
