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

// Package sim is the fixed-step system-dynamics simulator (spec.md §4.5):
// Euler and RK4 drivers over a working row of f64 storage, the typed.Expr
// evaluator that fills it, and the save-step result buffer. Grounded on
// go-corset's pkg/hir Term.EvalAt(row, trace) (value, error) idiom — a
// term evaluates itself against a row of an external trace rather than
// owning its own state — generalized here from one field element per
// column to a possibly-array-valued slot per variable.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// evalContext carries everything evaluating one typed.Expr needs: the
// working row, the row as of the prior integration step (for PREVIOUS), the
// model's variables (for Lookup table resolution) and offset table, an RNG
// for the randomness builtins, and — only inside an apply-to-all equation
// — the element index and shape currently being computed.
type evalContext struct {
	vars    map[common.Ident]*variable.Variable
	offsets *project.OffsetTable
	row     []float64
	prevRow []float64
	rng     *rand.Rand

	// element and elementSize are set while evaluating one element of an
	// ApplyToAll equation (spec.md §4.5's "current element" binding): a
	// Var/Subscript reference whose own view has the same element count
	// as the variable being computed narrows to just this element,
	// implementing the implicit per-element loop.
	hasElement  bool
	element     int
	elementSize int
}

// baseOffset resolves an ArraySource to its absolute starting offset in
// row/prevRow.
func baseOffset(offsets *project.OffsetTable, src *typed.ArraySource) (int, error) {
	if src.Kind != typed.SourceNamed {
		return 0, fmt.Errorf("sim: cannot address a scratch (Transpose) buffer directly")
	}
	slot, ok := offsets.Slots[src.Name]
	if !ok {
		return 0, fmt.Errorf("sim: %q has no reserved offset", src.Name)
	}
	return slot.Start, nil
}

// evalScalar evaluates e to a single f64. It is an error to reach an
// array-valued node here outside an apply-to-all element binding.
func evalScalar(e typed.Expr, ctx *evalContext) (float64, error) {
	switch n := e.(type) {
	case typed.Const:
		return n.Value, nil
	case typed.Var:
		if n.Source() == nil {
			slot, ok := ctx.offsets.Slots[n.Name]
			if !ok {
				return 0, fmt.Errorf("sim: %q has no reserved offset", n.Name)
			}
			return ctx.row[slot.Start], nil
		}
		return evalNarrowed(e, n.Source(), ctx)
	case typed.Subscript:
		return evalSubscriptScalar(n, ctx)
	case typed.Transpose:
		return evalNarrowed(e, n.Source(), ctx)
	case typed.If:
		cond, err := evalScalar(n.Cond, ctx)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return evalScalar(n.Then, ctx)
		}
		return evalScalar(n.Else, ctx)
	case typed.App:
		return evalApp(n, ctx)
	default:
		return 0, fmt.Errorf("sim: unhandled expression node %T", e)
	}
}

// evalNarrowed implements the apply-to-all "current element" binding: an
// array-valued node whose view has the same size as the enclosing
// variable's own view is read at just the current element.
func evalNarrowed(e typed.Expr, src *typed.ArraySource, ctx *evalContext) (float64, error) {
	if !ctx.hasElement {
		return 0, fmt.Errorf("sim: array-valued expression used in a scalar context")
	}
	if src.View.Size() != ctx.elementSize {
		return 0, fmt.Errorf("sim: apply-to-all shape mismatch: expression has %d elements, expected %d", src.View.Size(), ctx.elementSize)
	}
	vals, err := evalArray(e, ctx)
	if err != nil {
		return 0, err
	}
	return vals[ctx.element], nil
}

func evalSubscriptScalar(n typed.Subscript, ctx *evalContext) (float64, error) {
	src := n.Source()
	if src == nil {
		// Every dimension was dropped by static indices: a scalar read.
		off, err := subscriptOffset(n, ctx)
		if err != nil {
			return 0, err
		}
		return ctx.row[off], nil
	}
	return evalNarrowed(n, src, ctx)
}

// subscriptOffset resolves a Subscript's absolute flat-buffer offset,
// combining its base variable's offset, its (possibly already-static)
// view offset, and any runtime-resolved dynamic indices (spec.md §4.1).
func subscriptOffset(n typed.Subscript, ctx *evalContext) (int, error) {
	slot, ok := ctx.offsets.Slots[n.Base]
	if !ok {
		return 0, fmt.Errorf("sim: %q has no reserved offset", n.Base)
	}
	offset := slot.Start
	src := n.Source()
	if src != nil {
		offset += src.View.Offset()
	}
	for _, d := range n.DynIndices {
		pos, err := evalScalar(d.Expr, ctx)
		if err != nil {
			return 0, err
		}
		offset += (int(pos) - 1) * d.Stride
	}
	return offset, nil
}

// evalArray evaluates e to its full slice of values, in logical row-major
// order, for use as a reduction's argument or an ApplyToAll/Arrayed
// equation's right-hand side.
func evalArray(e typed.Expr, ctx *evalContext) ([]float64, error) {
	switch n := e.(type) {
	case typed.Var:
		src := n.Source()
		if src == nil {
			v, err := evalScalar(e, ctx)
			return []float64{v}, err
		}
		base, err := baseOffset(ctx.offsets, src)
		if err != nil {
			return nil, err
		}
		view := dimension.NewStrided(src.View.Dims(), src.View.Strides(), base+src.View.Offset())
		return view.Values(ctx.row), nil
	case typed.Subscript:
		src := n.Source()
		if src == nil {
			off, err := subscriptOffset(n, ctx)
			if err != nil {
				return nil, err
			}
			return []float64{ctx.row[off]}, nil
		}
		slot, ok := ctx.offsets.Slots[n.Base]
		if !ok {
			return nil, fmt.Errorf("sim: %q has no reserved offset", n.Base)
		}
		offset := slot.Start + src.View.Offset()
		for _, d := range n.DynIndices {
			pos, err := evalScalar(d.Expr, ctx)
			if err != nil {
				return nil, err
			}
			offset += (int(pos) - 1) * d.Stride
		}
		view := dimension.NewStrided(src.View.Dims(), src.View.Strides(), offset)
		return view.Values(ctx.row), nil
	case typed.Transpose:
		innerSrc := n.Inner.Source()
		if innerSrc == nil {
			return nil, fmt.Errorf("sim: cannot transpose a scalar expression")
		}
		base, err := baseOffset(ctx.offsets, innerSrc)
		if err != nil {
			return nil, err
		}
		view := dimension.NewStrided(innerSrc.View.Dims(), innerSrc.View.Strides(), base+innerSrc.View.Offset()).Transpose()
		return view.Values(ctx.row), nil
	case typed.If:
		cond, err := evalScalar(n.Cond, ctx)
		if err != nil {
			return nil, err
		}
		if cond != 0 {
			return evalArray(n.Then, ctx)
		}
		return evalArray(n.Else, ctx)
	case typed.App:
		return evalAppArray(n, ctx)
	case typed.Const:
		return []float64{n.Value}, nil
	default:
		return nil, fmt.Errorf("sim: unhandled array expression node %T", e)
	}
}

// evalAppArray handles an elementwise (non-reduction) builtin call that
// produced an array result under unify (e.g. adding two same-shaped
// arrays): every array-valued argument is read in full and combined
// position-by-position; a scalar argument broadcasts.
func evalAppArray(n typed.App, ctx *evalContext) ([]float64, error) {
	if n.Fn.IsReduction() {
		v, err := evalApp(n, ctx)
		return []float64{v}, err
	}
	if n.Source() == nil {
		v, err := evalApp(n, ctx)
		return []float64{v}, err
	}
	argVals := make([][]float64, len(n.Args))
	size := n.Source().View.Size()
	for i, a := range n.Args {
		if a.Source() != nil {
			vals, err := evalArray(a, ctx)
			if err != nil {
				return nil, err
			}
			argVals[i] = vals
		} else {
			v, err := evalScalar(a, ctx)
			if err != nil {
				return nil, err
			}
			argVals[i] = broadcast(v, size)
		}
	}
	out := make([]float64, size)
	for i := 0; i < size; i++ {
		elemArgs := make([]float64, len(n.Args))
		for j := range n.Args {
			elemArgs[j] = argVals[j][i]
		}
		v, err := applyScalarBuiltin(n.Fn, elemArgs)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func broadcast(v float64, size int) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = v
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// applyScalarBuiltin evaluates a non-reduction, non-time, non-random,
// non-stateful builtin given its already-evaluated scalar arguments.
func applyScalarBuiltin(fn builtin.ID, a []float64) (float64, error) {
	switch fn {
	case builtin.Add:
		return a[0] + a[1], nil
	case builtin.Sub:
		return a[0] - a[1], nil
	case builtin.Mul:
		return a[0] * a[1], nil
	case builtin.Div:
		return a[0] / a[1], nil
	case builtin.Neg:
		return -a[0], nil
	case builtin.Pow:
		return math.Pow(a[0], a[1]), nil
	case builtin.Mod:
		return math.Mod(a[0], a[1]), nil
	case builtin.Eq:
		return boolToFloat(a[0] == a[1]), nil
	case builtin.Neq:
		return boolToFloat(a[0] != a[1]), nil
	case builtin.Lt:
		return boolToFloat(a[0] < a[1]), nil
	case builtin.Lte:
		return boolToFloat(a[0] <= a[1]), nil
	case builtin.Gt:
		return boolToFloat(a[0] > a[1]), nil
	case builtin.Gte:
		return boolToFloat(a[0] >= a[1]), nil
	case builtin.And:
		return boolToFloat(a[0] != 0 && a[1] != 0), nil
	case builtin.Or:
		return boolToFloat(a[0] != 0 || a[1] != 0), nil
	case builtin.Not:
		return boolToFloat(a[0] == 0), nil
	case builtin.Abs:
		return math.Abs(a[0]), nil
	case builtin.Exp:
		return math.Exp(a[0]), nil
	case builtin.Ln:
		return math.Log(a[0]), nil
	case builtin.Log10:
		return math.Log10(a[0]), nil
	case builtin.Sqrt:
		return math.Sqrt(a[0]), nil
	case builtin.Sin:
		return math.Sin(a[0]), nil
	case builtin.Cos:
		return math.Cos(a[0]), nil
	case builtin.Tan:
		return math.Tan(a[0]), nil
	case builtin.Arcsin:
		return math.Asin(a[0]), nil
	case builtin.Arccos:
		return math.Acos(a[0]), nil
	case builtin.Arctan:
		return math.Atan(a[0]), nil
	case builtin.Int:
		return math.Trunc(a[0]), nil
	case builtin.Pi:
		return math.Pi, nil
	case builtin.Inf:
		return math.Inf(1), nil
	case builtin.Sign:
		switch {
		case a[0] > 0:
			return 1, nil
		case a[0] < 0:
			return -1, nil
		default:
			return 0, nil
		}
	case builtin.SafeDiv:
		if a[1] == 0 {
			if len(a) == 3 {
				return a[2], nil
			}
			return 0, nil
		}
		return a[0] / a[1], nil
	default:
		return 0, fmt.Errorf("sim: builtin %s cannot be evaluated elementwise", fn)
	}
}

// evalApp evaluates a builtin call to a scalar: reductions over their
// array-valued arguments, the four time queries, the randomness and
// generator builtins (all of which need the evaluation context rather than
// just their already-reduced argument values), SafeDiv/Lookup/ModuleInput/
// Previous, and finally every ordinary pure function via
// applyScalarBuiltin.
func evalApp(n typed.App, ctx *evalContext) (float64, error) {
	fn := n.Fn

	if fn.IsReduction() {
		return evalReductionApp(n, ctx)
	}

	switch fn {
	case builtin.Time:
		return ctx.row[ctx.offsets.TimeOffset], nil
	case builtin.Dt:
		return ctx.row[ctx.offsets.DtOffset], nil
	case builtin.StartTime:
		return ctx.row[ctx.offsets.StartTimeOffset], nil
	case builtin.FinalTime:
		return ctx.row[ctx.offsets.FinalTimeOffset], nil

	case builtin.Uniform:
		lo, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		hi, err := evalScalar(n.Args[1], ctx)
		if err != nil {
			return 0, err
		}
		return uniform(ctx.rng, lo, hi), nil
	case builtin.Normal:
		mean, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		stddev, err := evalScalar(n.Args[1], ctx)
		if err != nil {
			return 0, err
		}
		return mean + ctx.rng.NormFloat64()*stddev, nil
	case builtin.Poisson:
		lambda, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		return poisson(ctx.rng, lambda), nil
	case builtin.PinkNoise:
		return pinkNoise(ctx.rng), nil

	case builtin.Step:
		height, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		start, err := evalScalar(n.Args[1], ctx)
		if err != nil {
			return 0, err
		}
		return step(ctx.row[ctx.offsets.TimeOffset], height, start), nil
	case builtin.Ramp:
		slope, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		start, err := evalScalar(n.Args[1], ctx)
		if err != nil {
			return 0, err
		}
		end, err := evalScalar(n.Args[2], ctx)
		if err != nil {
			return 0, err
		}
		return ramp(ctx.row[ctx.offsets.TimeOffset], slope, start, end), nil
	case builtin.Pulse:
		height, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		start, err := evalScalar(n.Args[1], ctx)
		if err != nil {
			return 0, err
		}
		width, err := evalScalar(n.Args[2], ctx)
		if err != nil {
			return 0, err
		}
		return pulse(ctx.row[ctx.offsets.TimeOffset], height, start, width), nil
	case builtin.PulseTrain:
		start, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		width, err := evalScalar(n.Args[1], ctx)
		if err != nil {
			return 0, err
		}
		interval, err := evalScalar(n.Args[2], ctx)
		if err != nil {
			return 0, err
		}
		end, err := evalScalar(n.Args[3], ctx)
		if err != nil {
			return 0, err
		}
		return pulseTrain(ctx.row[ctx.offsets.TimeOffset], start, width, interval, end), nil

	case builtin.SafeDiv:
		num, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		den, err := evalScalar(n.Args[1], ctx)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			if len(n.Args) == 3 {
				return evalScalar(n.Args[2], ctx)
			}
			return 0, nil
		}
		return num / den, nil

	case builtin.Lookup:
		return evalLookup(n, ctx)

	case builtin.ModuleInput:
		return evalScalar(n.Args[0], ctx)

	case builtin.Previous:
		return evalPrevious(n.Args[0], ctx)

	case builtin.If:
		cond, err := evalScalar(n.Args[0], ctx)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return evalScalar(n.Args[1], ctx)
		}
		return evalScalar(n.Args[2], ctx)

	default:
		args := make([]float64, len(n.Args))
		for i, a := range n.Args {
			v, err := evalScalar(a, ctx)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return applyScalarBuiltin(fn, args)
	}
}

// evalReductionApp flattens every argument's array values (spec.md §4.6's
// treatment of Max/Min as N-ary reductions generalizes cleanly here: any
// reduction may take more than one array argument, all values pooled
// together before reducing).
func evalReductionApp(n typed.App, ctx *evalContext) (float64, error) {
	if n.Fn == builtin.Rank {
		return evalRank(n, ctx)
	}
	var vals []float64
	for _, a := range n.Args {
		if a.Source() != nil {
			vs, err := evalArray(a, ctx)
			if err != nil {
				return 0, err
			}
			vals = append(vals, vs...)
		} else {
			v, err := evalScalar(a, ctx)
			if err != nil {
				return 0, err
			}
			vals = append(vals, v)
		}
	}
	return reduce(n.Fn, vals)
}

// evalRank returns the k-th largest value of its array argument, k given by
// the second (1-based) scalar argument.
func evalRank(n typed.App, ctx *evalContext) (float64, error) {
	vals, err := evalArray(n.Args[0], ctx)
	if err != nil {
		return 0, err
	}
	k, err := evalScalar(n.Args[1], ctx)
	if err != nil {
		return 0, err
	}
	sorted := append([]float64(nil), vals...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	idx := int(k) - 1
	if idx < 0 || idx >= len(sorted) {
		return 0, fmt.Errorf("sim: RANK: k=%d out of range for %d-element array", int(k), len(sorted))
	}
	return sorted[idx], nil
}

// evalLookup resolves a LOOKUP(var, x) call: var must be a Var node naming
// a variable whose own Lookup table is non-nil, mirroring
// pkg/causal/polarity.go's polarityOfLookup convention for how a table is
// addressed by the variable that owns it rather than passed inline.
func evalLookup(n typed.App, ctx *evalContext) (float64, error) {
	v, ok := n.Args[0].(typed.Var)
	if !ok {
		return 0, fmt.Errorf("sim: LOOKUP's first argument must be a variable reference")
	}
	target, ok := ctx.vars[v.Name]
	if !ok || target.Lookup == nil {
		return 0, fmt.Errorf("sim: %q has no lookup table", v.Name)
	}
	x, err := evalScalar(n.Args[1], ctx)
	if err != nil {
		return 0, err
	}
	return target.Lookup.Interpolate(x), nil
}

// evalPrevious evaluates e against prevRow, the working row as Run
// snapshotted it before the previous integration step, rather than the
// working row currently being computed, implementing the PREVIOUS builtin
// (spec.md §4.7) at simulation time. At the very first step, before any
// earlier step exists, prevRow is nil and e is read from row: there is no
// earlier value to report, so PREVIOUS(x) reads the initial value of x,
// matching the LTM augmentation's convention that the first pass through a
// ceteris-paribus link carries no lagged effect.
func evalPrevious(e typed.Expr, ctx *evalContext) (float64, error) {
	if ctx.prevRow == nil {
		return evalScalar(e, ctx)
	}
	shifted := *ctx
	shifted.row = ctx.prevRow
	return evalScalar(e, &shifted)
}

func reduce(fn builtin.ID, vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, fmt.Errorf("sim: %s: empty array", fn)
	}
	switch fn {
	case builtin.Sum:
		return gonumSum(vals), nil
	case builtin.Mean:
		return gonumMean(vals), nil
	case builtin.StdDev:
		return gonumStdDev(vals), nil
	case builtin.Max:
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m, nil
	case builtin.Min:
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m, nil
	case builtin.Size:
		return float64(len(vals)), nil
	default:
		return 0, fmt.Errorf("sim: %s is not a reduction", fn)
	}
}
