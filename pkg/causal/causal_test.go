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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/variable"
)

func scalar(e typed.Expr) variable.Equation {
	return variable.Equation{Kind: variable.Scalar, Expr: e}
}

// reinforcingLoopVars builds spec.md §8's "simple reinforcing loop":
// population(stock, inflow births), births = population * birth_fraction.
func reinforcingLoopVars() map[common.Ident]*variable.Variable {
	return map[common.Ident]*variable.Variable{
		"population": {
			Name: "population", Kind: variable.Stock,
			Inflows: []common.Ident{"births"},
		},
		"births": {
			Name: "births", Kind: variable.Var,
			Equation: scalar(typed.NewApp(builtin.Mul, []typed.Expr{
				typed.NewVar("population", common.Span{}, nil),
				typed.NewVar("birth_fraction", common.Span{}, nil),
			}, common.Span{}, nil)),
		},
		"birth_fraction": {
			Name: "birth_fraction", Kind: variable.Var,
			Equation: scalar(typed.NewConst(0.1, common.Span{})),
		},
	}
}

func TestDetectLoopsSimpleReinforcingLoop(t *testing.T) {
	loops := DetectLoops(reinforcingLoopVars())
	require.Len(t, loops, 1)
	assert.Equal(t, "r1", loops[0].ID)
	assert.Equal(t, Positive, loops[0].Polarity)
	assert.Equal(t, []common.Ident{"population"}, loops[0].Stocks)
	assert.Len(t, loops[0].Links, 2)
}

// carryingCapacityVars builds spec.md §8's "carrying-capacity balancing
// loop": births = population * (1 - population/capacity).
func carryingCapacityVars() map[common.Ident]*variable.Variable {
	return map[common.Ident]*variable.Variable{
		"population": {Name: "population", Kind: variable.Stock, Inflows: []common.Ident{"births"}},
		"capacity":    {Name: "capacity", Kind: variable.Var, Equation: scalar(typed.NewConst(100, common.Span{}))},
		"births": {
			Name: "births", Kind: variable.Var,
			Equation: scalar(typed.NewApp(builtin.Mul, []typed.Expr{
				typed.NewVar("population", common.Span{}, nil),
				typed.NewApp(builtin.Sub, []typed.Expr{
					typed.NewConst(1, common.Span{}),
					typed.NewApp(builtin.Div, []typed.Expr{
						typed.NewVar("population", common.Span{}, nil),
						typed.NewVar("capacity", common.Span{}, nil),
					}, common.Span{}, nil),
				}, common.Span{}, nil),
			}, common.Span{}, nil)),
		},
	}
}

func TestDetectLoopsCarryingCapacityResolvesToBalancingLoop(t *testing.T) {
	loops := DetectLoops(carryingCapacityVars())
	require.Len(t, loops, 1) // population <-> births is the only elementary cycle; capacity has no back-edge

	loop := loops[0]
	// population's direct factor is Positive; the ratio term
	// population/capacity is Positive (Div propagates a known numerator),
	// so 1-ratio is Negative (Sub flips a known right side); multiplying two
	// known, disagreeing-sign factors yields Negative overall.
	assert.Equal(t, "b1", loop.ID)
	assert.Equal(t, Negative, loop.Polarity)
}

func TestLinkPolaritySubtractionFlipsSecondOperand(t *testing.T) {
	v := &variable.Variable{
		Name: "gap", Kind: variable.Var,
		Equation: scalar(typed.NewApp(builtin.Sub, []typed.Expr{
			typed.NewConst(100, common.Span{}),
			typed.NewVar("level", common.Span{}, nil),
		}, common.Span{}, nil)),
	}
	assert.Equal(t, Negative, LinkPolarity("level", v, nil))
}

func TestLinkPolarityIfBranchesMustAgree(t *testing.T) {
	agree := &variable.Variable{
		Name: "v", Kind: variable.Var,
		Equation: scalar(typed.NewIf(
			typed.NewVar("cond", common.Span{}, nil),
			typed.NewVar("x", common.Span{}, nil),
			typed.NewVar("x", common.Span{}, nil),
			common.Span{}, nil)),
	}
	assert.Equal(t, Positive, LinkPolarity("x", agree, nil))

	disagree := &variable.Variable{
		Name: "v", Kind: variable.Var,
		Equation: scalar(typed.NewIf(
			typed.NewVar("cond", common.Span{}, nil),
			typed.NewVar("x", common.Span{}, nil),
			typed.NewApp(builtin.Neg, []typed.Expr{typed.NewVar("x", common.Span{}, nil)}, common.Span{}, nil),
			common.Span{}, nil)),
	}
	assert.Equal(t, Unknown, LinkPolarity("x", disagree, nil))
}

func TestLinkPolarityUnknownWhenTargetDrivesCondition(t *testing.T) {
	v := &variable.Variable{
		Name: "v", Kind: variable.Var,
		Equation: scalar(typed.NewIf(
			typed.NewVar("x", common.Span{}, nil),
			typed.NewConst(1, common.Span{}),
			typed.NewConst(0, common.Span{}),
			common.Span{}, nil)),
	}
	assert.Equal(t, Unknown, LinkPolarity("x", v, nil))
}

func TestLinkPolarityMonotoneBuiltinPropagates(t *testing.T) {
	v := &variable.Variable{
		Name: "v", Kind: variable.Var,
		Equation: scalar(typed.NewApp(builtin.Sqrt, []typed.Expr{typed.NewVar("x", common.Span{}, nil)}, common.Span{}, nil)),
	}
	assert.Equal(t, Positive, LinkPolarity("x", v, nil))
}

func TestRuntimeLoopPolarityFiltersZeroAndNaN(t *testing.T) {
	pol, ok := RuntimeLoopPolarity([]float64{0, 1, 2, 0})
	require.True(t, ok)
	assert.Equal(t, Positive, pol)

	_, ok = RuntimeLoopPolarity([]float64{0, 0})
	assert.False(t, ok)

	pol, ok = RuntimeLoopPolarity([]float64{1, -1})
	require.True(t, ok)
	assert.Equal(t, Unknown, pol)
}

func TestStructuralLoopPolarityUnknownLinkIsUndetermined(t *testing.T) {
	pol := StructuralLoopPolarity([]Link{{Polarity: Positive}, {Polarity: Unknown}})
	assert.Equal(t, Unknown, pol)
}

func TestLoopIDsDeterministicAcrossRuns(t *testing.T) {
	loopsA := DetectLoops(carryingCapacityVars())
	loopsB := DetectLoops(carryingCapacityVars())
	require.Len(t, loopsA, 1)
	require.Len(t, loopsB, 1)
	assert.Equal(t, loopsA[0].ID, loopsB[0].ID)
}
