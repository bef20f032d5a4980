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

package typed

import (
	"fmt"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/resolved"
)

// Context carries the per-model state Lower needs: the declared shape of
// every array-valued variable, the project's dimension declarations (for
// resolving a Subscript's base view), and a fresh-temp-id counter shared
// across every equation lowered for one model, matching how the teacher's
// MIR-to-AIR pass threads one register allocator through a whole lowering.
type Context struct {
	Model    common.Ident
	VarViews map[common.Ident]dimension.View
	nextTemp int
}

// NewContext constructs a lowering context for model.
func NewContext(model common.Ident, varViews map[common.Ident]dimension.View) *Context {
	if varViews == nil {
		varViews = map[common.Ident]dimension.View{}
	}
	return &Context{Model: model, VarViews: varViews}
}

func (c *Context) freshTemp() int {
	c.nextTemp++
	return c.nextTemp
}

// NewTempSource allocates a fresh scratch-buffer source over view, for a
// node whose result must be materialized rather than addressed in place
// (e.g. Transpose).
func (c *Context) NewTempSource(view dimension.View) *ArraySource {
	return &ArraySource{Kind: SourceTemp, TempID: c.freshTemp(), View: view, Materialize: true}
}

// Lower attaches array sources and resolves subscripts, turning a resolved
// expression into a typed one (spec.md §4.2 stage B).
func Lower(e resolved.Expr, ctx *Context) (Expr, []common.Diagnostic) {
	switch n := e.(type) {
	case resolved.Const:
		return NewConst(n.Value, n.Span()), nil
	case resolved.Var:
		return lowerVar(n, ctx), nil
	case resolved.App:
		return lowerApp(n, ctx)
	case resolved.If:
		return lowerIf(n, ctx)
	case resolved.Subscript:
		return lowerSubscript(n, ctx)
	default:
		panic(fmt.Sprintf("typed.Lower: unhandled resolved expr %T", e))
	}
}

func lowerVar(n resolved.Var, ctx *Context) Expr {
	view, isArray := ctx.VarViews[n.Name]
	var src *ArraySource
	if isArray && len(view.Dims()) > 0 {
		src = &ArraySource{Kind: SourceNamed, Name: n.Name, View: view}
	}
	return NewVar(n.Name, n.Span(), src)
}

func lowerApp(n resolved.App, ctx *Context) (Expr, []common.Diagnostic) {
	args := make([]Expr, len(n.Args))
	var diags []common.Diagnostic
	for i, a := range n.Args {
		la, d := Lower(a, ctx)
		args[i] = la
		diags = append(diags, d...)
	}

	if n.Fn.IsReduction() {
		return NewApp(n.Fn, args, n.Span(), nil), diags
	}

	src, d := unify(ctx, n.Span(), args...)
	diags = append(diags, d...)
	return NewApp(n.Fn, args, n.Span(), src), diags
}

func lowerIf(n resolved.If, ctx *Context) (Expr, []common.Diagnostic) {
	cond, dc := Lower(n.Cond, ctx)
	then, dt := Lower(n.Then, ctx)
	els, de := Lower(n.Else, ctx)
	diags := append(append(dc, dt...), de...)

	src, d := unify(ctx, n.Span(), then, els)
	diags = append(diags, d...)
	return NewIf(cond, then, els, n.Span(), src), diags
}

// unify computes the array shape of a builtin call or conditional from its
// operand shapes: every array-valued operand must agree on element count
// (spec.md §4.2); scalar operands broadcast freely. The first array-valued
// operand's view is carried forward as the result's shape.
func unify(ctx *Context, span common.Span, operands ...Expr) (*ArraySource, []common.Diagnostic) {
	var result *ArraySource
	for _, op := range operands {
		s := op.Source()
		if s == nil {
			continue
		}
		if result == nil {
			result = s
			continue
		}
		if result.View.Size() != s.View.Size() {
			return nil, []common.Diagnostic{common.NewDiagnostic(common.MismatchedDimensions, ctx.Model, "", span,
				fmt.Sprintf("mismatched array shapes: %d elements vs %d elements", result.View.Size(), s.View.Size()))}
		}
	}
	return result, nil
}

func lowerSubscript(n resolved.Subscript, ctx *Context) (Expr, []common.Diagnostic) {
	baseView, ok := ctx.VarViews[n.Base]
	if !ok {
		return NewSubscript(n.Base, nil, n.Span(), nil),
			[]common.Diagnostic{common.NewDiagnostic(common.Generic, ctx.Model, n.Base, n.Span(),
				fmt.Sprintf("%q is not an array-valued variable", n.Base))}
	}

	var diags []common.Diagnostic
	dimIndices := make([]dimension.Index, len(n.Indices))
	runtimeExprs := make(map[int]Expr)

	for i, idx := range n.Indices {
		switch idx.Kind {
		case resolved.IdxWildcard, resolved.IdxBang:
			dimIndices[i] = dimension.Wildcard()
		case resolved.IdxRange:
			lo, errLo := EvalConstInt(idx.RangeLo)
			hi, errHi := EvalConstInt(idx.RangeHi)
			if errLo != nil || errHi != nil {
				diags = append(diags, common.NewDiagnostic(common.ExpectedInteger, ctx.Model, n.Base, n.Span(),
					"range subscript bounds must be compile-time integers"))
				dimIndices[i] = dimension.Wildcard()
				continue
			}
			dimIndices[i] = dimension.Range(lo, hi)
		case resolved.IdxDimPosition:
			diags = append(diags, common.NewDiagnostic(common.Generic, ctx.Model, n.Base, n.Span(),
				"dimension-position markers are only valid on the left-hand side of an arrayed equation"))
			dimIndices[i] = dimension.Wildcard()
		case resolved.IdxExpr:
			if pos, err := EvalConstInt(idx.Expr); err == nil {
				dimIndices[i] = dimension.Element(pos)
				continue
			}
			lowered, d := Lower(idx.Expr, ctx)
			diags = append(diags, d...)
			runtimeExprs[i] = lowered
			dimIndices[i] = dimension.Dynamic()
		default:
			dimIndices[i] = dimension.Wildcard()
		}
	}

	outView, dynOffsets, err := dimension.Subscript(baseView, dimIndices)
	if err != nil {
		diags = append(diags, common.NewDiagnostic(common.MismatchedDimensions, ctx.Model, n.Base, n.Span(), err.Error()))
		return NewSubscript(n.Base, nil, n.Span(), nil), diags
	}

	dyn := make([]DynIndex, len(dynOffsets))
	for i, off := range dynOffsets {
		dyn[i] = DynIndex{DimIndex: off.DimIndex, Stride: off.Stride, Expr: runtimeExprs[off.DimIndex]}
	}

	var src *ArraySource
	if len(outView.Dims()) > 0 {
		src = &ArraySource{Kind: SourceNamed, Name: n.Base, View: outView, Materialize: !outView.IsContiguous()}
	}
	return NewSubscript(n.Base, dyn, n.Span(), src), diags
}

// LowerTranspose builds a Transpose node over an already-lowered array
// expression. Per spec.md §4.1, the result always materializes into a
// fresh contiguous temp sized to the transposed shape; the strided view the
// algebra naturally produces is never itself exposed as the node's source.
func LowerTranspose(inner Expr, span common.Span, ctx *Context) (Transpose, []common.Diagnostic) {
	src := inner.Source()
	if src == nil {
		return NewTranspose(inner, span, nil),
			[]common.Diagnostic{common.NewDiagnostic(common.MismatchedDimensions, ctx.Model, "", span,
				"cannot transpose a scalar expression")}
	}
	transposed := src.View.Transpose()
	contiguous := dimension.NewContiguous(transposed.Dims()...)
	return NewTranspose(inner, span, ctx.NewTempSource(contiguous)), nil
}
