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

package variable_test

import (
	"testing"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/variable"
	"github.com/stretchr/testify/require"
)

func TestAuxDependenciesWalkEquation(t *testing.T) {
	eq := variable.Equation{
		Kind: variable.Scalar,
		Expr: typed.NewApp(builtin.Mul, []typed.Expr{
			typed.NewVar("population", common.NewSpan(0, 1), nil),
			typed.NewVar("birth_rate", common.NewSpan(2, 3), nil),
		}, common.NewSpan(0, 3), nil),
	}
	v := &variable.Variable{Name: "births", Kind: variable.Var, Equation: eq}

	deps := v.Dependencies()
	require.Equal(t, []common.Ident{"birth_rate", "population"}, deps)
}

func TestStockDependenciesIncludeFlowsNotInitial(t *testing.T) {
	initial := variable.Equation{Kind: variable.Scalar, Expr: typed.NewVar("initial_population", common.NewSpan(0, 1), nil)}
	v := &variable.Variable{
		Name:            "population",
		Kind:            variable.Stock,
		Equation:        variable.Equation{Kind: variable.Scalar, Expr: typed.NewConst(0, common.NewSpan(0, 1))},
		InitialEquation: &initial,
		Inflows:         []common.Ident{"births"},
		Outflows:        []common.Ident{"deaths"},
	}

	deps := v.Dependencies()
	require.Equal(t, []common.Ident{"births", "deaths"}, deps)
	require.NotContains(t, deps, common.Ident("initial_population"))

	initDeps := v.InitialDependencies()
	require.Contains(t, initDeps, common.Ident("initial_population"))
	require.Contains(t, initDeps, common.Ident("births"))
}

func TestModuleDependenciesAreInputBindings(t *testing.T) {
	v := &variable.Variable{
		Name: "smth1",
		Kind: variable.Module,
		PortBindings: map[common.Ident]common.Ident{
			"input": "signal",
			"delay": "delay_time",
		},
	}
	deps := v.Dependencies()
	require.Equal(t, []common.Ident{"delay_time", "signal"}, deps)
}

func TestArrayedEquationCollectsAllElements(t *testing.T) {
	eq := variable.Equation{
		Kind: variable.Arrayed,
		Elements: map[string]typed.Expr{
			"north": typed.NewVar("base_north", common.NewSpan(0, 1), nil),
			"south": typed.NewVar("base_south", common.NewSpan(0, 1), nil),
		},
	}
	v := &variable.Variable{Name: "inventory", Kind: variable.Var, Equation: eq}
	require.Equal(t, []common.Ident{"base_north", "base_south"}, v.Dependencies())
}

func TestLookupTableMonotonicity(t *testing.T) {
	increasing := &variable.LookupTable{X: []float64{0, 1, 2}, Y: []float64{0, 1, 2}}
	require.Equal(t, 1, increasing.Monotonicity())

	decreasing := &variable.LookupTable{X: []float64{0, 1, 2}, Y: []float64{2, 1, 0}}
	require.Equal(t, -1, decreasing.Monotonicity())

	flat := &variable.LookupTable{X: []float64{0, 1, 2}, Y: []float64{1, 1, 1}}
	require.Equal(t, 0, flat.Monotonicity())
}
