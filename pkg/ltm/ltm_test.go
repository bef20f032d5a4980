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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/causal"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/variable"
)

func scalar(e typed.Expr) variable.Equation {
	return variable.Equation{Kind: variable.Scalar, Expr: e}
}

// carryingCapacityVars mirrors spec.md §8.2's balancing loop: a stock
// population with inflow births, births = population * (1 -
// population/capacity), capacity a constant.
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

func TestWrapPreviousLeavesBuiltinNamesAlone(t *testing.T) {
	// MAX(population, capacity) where population is a dependency to wrap:
	// only the Var leaf should gain a PREVIOUS wrapper, never the call's Fn.
	e := typed.NewApp(builtin.Max, []typed.Expr{
		typed.NewVar("population", common.Span{}, nil),
		typed.NewVar("capacity", common.Span{}, nil),
	}, common.Span{}, nil)

	wrapped := wrapPrevious(e, map[common.Ident]bool{"population": true})
	app, ok := wrapped.(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Max, app.Fn)

	first, ok := app.Args[0].(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Previous, first.Fn)

	second, ok := app.Args[1].(typed.Var)
	require.True(t, ok)
	assert.Equal(t, common.Ident("capacity"), second.Name)
}

func TestBuildPartialEquationExcludesTheLinkSource(t *testing.T) {
	e := typed.NewApp(builtin.Add, []typed.Expr{
		typed.NewVar("x", common.Span{}, nil),
		typed.NewVar("y", common.Span{}, nil),
	}, common.Span{}, nil)

	partial := buildPartialEquation(e, []common.Ident{"x", "y"}, "x")
	app, ok := partial.(typed.App)
	require.True(t, ok)

	// x (the link source) stays a bare Var; y (ceteris paribus) is wrapped.
	xArg, ok := app.Args[0].(typed.Var)
	require.True(t, ok)
	assert.Equal(t, common.Ident("x"), xArg.Name)

	yArg, ok := app.Args[1].(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Previous, yArg.Fn)
}

func TestLinkScoreEquationDispatchesOnEdgeShape(t *testing.T) {
	vars := carryingCapacityVars()

	auxExpr, ok := linkScoreEquation("capacity", "births", vars, nil)
	require.True(t, ok)
	assert.IsType(t, typed.If{}, auxExpr)

	flowExpr, ok := linkScoreEquation("births", "population", vars, nil)
	require.True(t, ok)
	assert.IsType(t, typed.If{}, flowExpr)

	_, ok = linkScoreEquation("population", "nonexistent", vars, nil)
	assert.False(t, ok, "an edge into an unknown variable must be a best-effort skip, not a panic")
}

func TestLinkScoreEquationModuleFallsBackToBlackBoxWithoutComposite(t *testing.T) {
	vars := map[common.Ident]*variable.Variable{
		"supply_chain": {
			Name: "supply_chain", Kind: variable.Module,
			PortBindings: map[common.Ident]common.Ident{"input": "orders"},
		},
		"orders": {Name: "orders", Kind: variable.Var, Equation: scalar(typed.NewConst(10, common.Span{}))},
	}

	expr, ok := linkScoreEquation("orders", "supply_chain", vars, nil)
	require.True(t, ok)

	ifExpr, ok := expr.(typed.If)
	require.True(t, ok)
	inner, ok := ifExpr.Else.(typed.If)
	require.True(t, ok)
	mulExpr, ok := inner.Else.(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Mul, mulExpr.Fn)
}

func TestLinkScoreEquationModuleUsesCompositeWhenAvailable(t *testing.T) {
	vars := map[common.Ident]*variable.Variable{
		"supply_chain": {
			Name: "supply_chain", Kind: variable.Module,
			PortBindings: map[common.Ident]common.Ident{"input": "orders"},
		},
		"orders": {Name: "orders", Kind: variable.Var, Equation: scalar(typed.NewConst(10, common.Span{}))},
	}
	composites := map[common.Ident]map[common.Ident]common.Ident{
		"supply_chain": {"input": CompositeName("input")},
	}

	expr, ok := linkScoreEquation("orders", "supply_chain", vars, composites)
	require.True(t, ok)
	v, ok := expr.(typed.Var)
	require.True(t, ok)
	assert.Equal(t, CompositeName("input"), v.Name)
}

func TestLoopScoreEquationMultipliesLinkScores(t *testing.T) {
	loop := causal.Loop{
		ID: "b1",
		Links: []causal.Link{
			{From: "population", To: "births"},
			{From: "births", To: "population"},
		},
	}
	expr := loopScoreEquation(loop)
	app, ok := expr.(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Mul, app.Fn)

	left, ok := app.Args[0].(typed.Var)
	require.True(t, ok)
	assert.Equal(t, LinkScoreName("population", "births"), left.Name)

	right, ok := app.Args[1].(typed.Var)
	require.True(t, ok)
	assert.Equal(t, LinkScoreName("births", "population"), right.Name)
}

func TestRelativeLoopScoreEquationSumsAbsOverPartition(t *testing.T) {
	expr := relativeLoopScoreEquation("b1", []string{"b1", "r1"})
	app, ok := expr.(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.SafeDiv, app.Fn)

	numerator, ok := app.Args[0].(typed.Var)
	require.True(t, ok)
	assert.Equal(t, LoopScoreName("b1"), numerator.Name)

	denom, ok := app.Args[1].(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Add, denom.Fn)
}

func TestAugmentLoopsModeProducesLinkLoopAndRelativeScores(t *testing.T) {
	vars := carryingCapacityVars()
	out := Augment(vars, Loops, nil)

	_, hasLinkA := out[LinkScoreName("population", "births")]
	_, hasLinkB := out[LinkScoreName("births", "population")]
	assert.True(t, hasLinkA)
	assert.True(t, hasLinkB)

	_, hasLoopScore := out[LoopScoreName("b1")]
	_, hasRelScore := out[RelLoopScoreName("b1")]
	assert.True(t, hasLoopScore)
	assert.True(t, hasRelScore)
}

func TestAugmentAllLinksModeOmitsLoopScores(t *testing.T) {
	vars := carryingCapacityVars()
	out := Augment(vars, AllLinks, nil)

	_, hasLinkC := out[LinkScoreName("capacity", "births")]
	assert.True(t, hasLinkC)
	_, hasLoopScore := out[LoopScoreName("b1")]
	assert.False(t, hasLoopScore, "AllLinks is a discovery mode, it never emits loop scores")
}

func TestMaxAbsChainPicksLargestMagnitudePathway(t *testing.T) {
	names := []common.Ident{"p0", "p1", "p2"}
	expr := maxAbsChain(names)

	outer, ok := expr.(typed.If)
	require.True(t, ok)
	cond, ok := outer.Cond.(typed.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Gte, cond.Fn)

	// the rightmost name is compared first against the chain of the rest.
	lastArg, ok := cond.Args[0].(typed.App)
	require.True(t, ok)
	require.Len(t, lastArg.Args, 1)
	v, ok := lastArg.Args[0].(typed.Var)
	require.True(t, ok)
	assert.Equal(t, common.Ident("p2"), v.Name)
}

func TestInputPortsExcludesVariablesWithIncomingEdges(t *testing.T) {
	vars := carryingCapacityVars()
	ports := inputPorts(vars)
	assert.Equal(t, []common.Ident{"capacity"}, ports)
}

func TestEnumerateModulePathwaysFindsPathFromPortToOutput(t *testing.T) {
	vars := carryingCapacityVars()
	pathways := enumerateModulePathways(vars, "births")
	paths, ok := pathways["capacity"]
	require.True(t, ok)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 1)
	assert.Equal(t, causal.Link{From: "capacity", To: "births"}, paths[0][0])
}

func TestGenerateModuleInternalVariablesBuildsIlinkPathwayAndComposite(t *testing.T) {
	vars := carryingCapacityVars()
	out := GenerateModuleInternalVariables(vars, "births")

	_, hasIlink := out[ILinkScoreName("capacity", "births")]
	assert.True(t, hasIlink)

	_, hasPathway := out[PathwayName("capacity", 0)]
	assert.True(t, hasPathway)

	_, hasComposite := out[CompositeName("capacity")]
	assert.True(t, hasComposite)
}

func TestGenerateModuleInternalVariablesSkipsPortsWithNoPathway(t *testing.T) {
	vars := carryingCapacityVars()
	// "capacity", the only input port, has no causal path to an output named
	// "nonexistent_output".
	out := GenerateModuleInternalVariables(vars, "nonexistent_output")
	assert.Empty(t, out)
}
