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

// Package typed is the innermost level of the three-level expression IR
// (spec.md §3): every node carries its Span plus, for array-valued nodes, an
// ArraySource describing which buffer and which dimension.View the
// simulator reads or writes when it evaluates the node.
package typed

import (
	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
)

// SourceKind distinguishes the two ways a typed node can be array-valued.
type SourceKind int

// The two array-source flavors spec.md §4.2 distinguishes.
const (
	// SourceNamed reads/writes a model variable's own storage buffer.
	SourceNamed SourceKind = iota
	// SourceTemp reads a compiler-synthesized scratch buffer, used when a
	// view must be materialized contiguous before further use (e.g. after
	// a Transpose) rather than addressed directly.
	SourceTemp
)

// ArraySource is attached to a typed node when it is array-valued; a nil
// *ArraySource means the node is scalar.
type ArraySource struct {
	Kind SourceKind
	// Name identifies the backing variable for SourceNamed.
	Name common.Ident
	// TempID identifies the backing scratch buffer for SourceTemp.
	TempID int
	View   dimension.View
	// Materialize reports whether this view must be copied into a fresh
	// contiguous buffer before being read further, because it is not
	// itself contiguous (spec.md §4.1).
	Materialize bool
}

// Expr is a node in the typed expression tree.
type Expr interface {
	Span() common.Span
	Source() *ArraySource
}

// Const is a numeric literal; always scalar.
type Const struct {
	Value float64
	span  common.Span
}

// NewConst constructs a Const node.
func NewConst(value float64, span common.Span) Const { return Const{Value: value, span: span} }

// Span implements Expr.
func (c Const) Span() common.Span { return c.span }

// Source implements Expr; a Const is always scalar.
func (c Const) Source() *ArraySource { return nil }

// Var is a reference to a variable's storage, scalar or array.
type Var struct {
	Name   common.Ident
	span   common.Span
	source *ArraySource
}

// NewVar constructs a Var node, with source nil for a scalar variable.
func NewVar(name common.Ident, span common.Span, source *ArraySource) Var {
	return Var{Name: name, span: span, source: source}
}

// Span implements Expr.
func (v Var) Span() common.Span { return v.span }

// Source implements Expr.
func (v Var) Source() *ArraySource { return v.source }

// App is a call to a catalog builtin, typed with its unified result shape.
type App struct {
	Fn     builtin.ID
	Args   []Expr
	span   common.Span
	source *ArraySource
}

// NewApp constructs an App node.
func NewApp(fn builtin.ID, args []Expr, span common.Span, source *ArraySource) App {
	return App{Fn: fn, Args: args, span: span, source: source}
}

// Span implements Expr.
func (a App) Span() common.Span { return a.span }

// Source implements Expr.
func (a App) Source() *ArraySource { return a.source }

// If is a conditional expression, typed with the unified shape of its two
// branches.
type If struct {
	Cond, Then, Else Expr
	span             common.Span
	source           *ArraySource
}

// NewIf constructs an If node.
func NewIf(cond, then, els Expr, span common.Span, source *ArraySource) If {
	return If{Cond: cond, Then: then, Else: els, span: span, source: source}
}

// Span implements Expr.
func (i If) Span() common.Span { return i.span }

// Source implements Expr.
func (i If) Source() *ArraySource { return i.source }

// DynIndex is a subscript dimension whose element position could only be
// resolved at evaluation time: Expr must be evaluated to an integer, then
// (result-1)*Stride added to the source view's offset.
type DynIndex struct {
	DimIndex int
	Stride   int
	Expr     Expr
}

// Subscript applies a compile-time-resolved view transformation to a base
// variable, plus zero or more dynamic indices resolved at evaluation time.
type Subscript struct {
	Base       common.Ident
	DynIndices []DynIndex
	span       common.Span
	source     *ArraySource
}

// NewSubscript constructs a Subscript node.
func NewSubscript(base common.Ident, dyn []DynIndex, span common.Span, source *ArraySource) Subscript {
	return Subscript{Base: base, DynIndices: dyn, span: span, source: source}
}

// Span implements Expr.
func (s Subscript) Span() common.Span { return s.span }

// Source implements Expr.
func (s Subscript) Source() *ArraySource { return s.source }

// Transpose reverses the dimension order of an array-valued inner
// expression. The result always materializes into a fresh contiguous
// scratch buffer (spec.md §4.1): a transposed view is Strided, and nothing
// downstream may assume a Strided view stays valid past the statement that
// produced it.
type Transpose struct {
	Inner  Expr
	span   common.Span
	source *ArraySource
}

// NewTranspose constructs a Transpose node. source.Materialize is always
// true for a Transpose result.
func NewTranspose(inner Expr, span common.Span, source *ArraySource) Transpose {
	return Transpose{Inner: inner, span: span, source: source}
}

// Span implements Expr.
func (t Transpose) Span() common.Span { return t.span }

// Source implements Expr.
func (t Transpose) Source() *ArraySource { return t.source }
