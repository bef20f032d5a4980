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

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/raw"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// reinforcingLoopProject builds a single-model project for spec.md §8's
// "simple reinforcing loop" scenario: population(t) grows by a constant
// fractional birth rate, population -> births -> population being a legal
// stock-mediated cycle.
func reinforcingLoopProject() *RawProject {
	rp := NewRawProject("main", project.SimSpecs{Start: 0, Stop: 10, DtValue: 1, Method: project.Euler})
	rm := NewRawModel("main")

	rm.Variables["population"] = &RawVariable{
		Name: "population", Kind: variable.Stock,
		InitialEquation: &RawEquation{Kind: variable.Scalar, Expr: raw.NewConst(100, "100", common.Span{})},
		Inflows:         []common.RawIdent{"births"},
		UnitName:        "people",
	}
	rm.Variables["births"] = &RawVariable{
		Name: "births", Kind: variable.Var,
		Equation: RawEquation{Kind: variable.Scalar, Expr: raw.NewApp(builtin.Mul, []raw.Expr{
			raw.NewVar("population", common.Span{}),
			raw.NewVar("birth_fraction", common.Span{}),
		}, common.Span{})},
		UnitName: "people/year",
	}
	rm.Variables["birth_fraction"] = &RawVariable{
		Name: "birth_fraction", Kind: variable.Var,
		Equation: RawEquation{Kind: variable.Scalar, Expr: raw.NewConst(0.1, "0.1", common.Span{})},
		UnitName: "1/year",
	}

	rp.Models["main"] = rm
	return rp
}

func TestCompileReinforcingLoopProducesEvaluationOrders(t *testing.T) {
	rp := reinforcingLoopProject()
	cp, diags := Compile(rp)
	require.Empty(t, diags)

	cm := cp.Models["main"]
	require.NotNil(t, cm)

	assert.Equal(t, []common.Ident{"population"}, cm.StockUpdateOrder)
	assert.Equal(t, []common.Ident{"birth_fraction", "births"}, cm.RuntimeOrder)
	assert.Contains(t, cm.InitialOrder, common.Ident("population"))
	assert.Contains(t, cm.InitialOrder, common.Ident("birth_fraction"))

	assert.Equal(t, 0, cm.Offsets.TimeOffset) // time pseudo-vars reserved first
	_, ok := cm.Offsets.Slots["population"]
	assert.True(t, ok)
}

func TestCompileCarryingCapacityBalancingLoop(t *testing.T) {
	rp := NewRawProject("main", project.SimSpecs{Start: 0, Stop: 10, DtValue: 1, Method: project.RK4})
	rm := NewRawModel("main")

	rm.Variables["population"] = &RawVariable{
		Name: "population", Kind: variable.Stock,
		InitialEquation: &RawEquation{Kind: variable.Scalar, Expr: raw.NewConst(10, "10", common.Span{})},
		Inflows:         []common.RawIdent{"net_growth"},
	}
	rm.Variables["net_growth"] = &RawVariable{
		Name: "net_growth", Kind: variable.Var,
		Equation: RawEquation{Kind: variable.Scalar, Expr: raw.NewApp(builtin.Mul, []raw.Expr{
			raw.NewVar("population", common.Span{}),
			raw.NewApp(builtin.Sub, []raw.Expr{
				raw.NewConst(1, "1", common.Span{}),
				raw.NewApp(builtin.Div, []raw.Expr{
					raw.NewVar("population", common.Span{}),
					raw.NewVar("capacity", common.Span{}),
				}, common.Span{}),
			}, common.Span{}),
		}, common.Span{})},
	}
	rm.Variables["capacity"] = &RawVariable{
		Name: "capacity", Kind: variable.Var,
		Equation: RawEquation{Kind: variable.Scalar, Expr: raw.NewConst(1000, "1000", common.Span{})},
	}
	rp.Models["main"] = rm

	cp, diags := Compile(rp)
	require.Empty(t, diags)
	cm := cp.Models["main"]
	assert.Equal(t, []common.Ident{"capacity", "net_growth"}, cm.RuntimeOrder)
	assert.Equal(t, []common.Ident{"population"}, cm.StockUpdateOrder)
}

func TestCompileReportsCircularDependencyAmongAuxVariables(t *testing.T) {
	rp := NewRawProject("main", project.SimSpecs{Start: 0, Stop: 1, DtValue: 1})
	rm := NewRawModel("main")
	rm.Variables["a"] = &RawVariable{Name: "a", Kind: variable.Var, Equation: RawEquation{Kind: variable.Scalar, Expr: raw.NewVar("b", common.Span{})}}
	rm.Variables["b"] = &RawVariable{Name: "b", Kind: variable.Var, Equation: RawEquation{Kind: variable.Scalar, Expr: raw.NewVar("a", common.Span{})}}
	rp.Models["main"] = rm

	_, diags := Compile(rp)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Kind == common.CircularDependency {
			found = true
		}
	}
	assert.True(t, found)
}
