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

package unit_test

import (
	"testing"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/unit"
	"github.com/stretchr/testify/require"
)

func TestMulDivCancelMatchingAtoms(t *testing.T) {
	people := unit.Atomic("people")
	year := unit.Atomic("year")
	rate := unit.Div(people, year)

	require.Equal(t, "people/year", rate.String())
	require.True(t, unit.Mul(rate, year).Equal(people))
}

func TestPowAndInverse(t *testing.T) {
	people := unit.Atomic("people")
	require.True(t, unit.Inverse(people).Equal(unit.Pow(people, -1)))
	require.Equal(t, "1/people", unit.Inverse(people).String())
}

func TestDeriveStockUnit(t *testing.T) {
	people := unit.Atomic("people")
	year := unit.Atomic("year")
	flow := unit.Div(people, year)
	require.True(t, unit.DeriveStockUnit(flow, year).Equal(people))
}

func TestInferAddMismatchWarnsButDoesNotBlock(t *testing.T) {
	vars := map[common.Ident]unit.Expr{
		"a": unit.Atomic("people"),
		"b": unit.Atomic("dollars"),
	}
	app := typed.NewApp(builtin.Add, []typed.Expr{
		typed.NewVar("a", common.NewSpan(0, 1), nil),
		typed.NewVar("b", common.NewSpan(2, 3), nil),
	}, common.NewSpan(0, 3), nil)

	_, diags := unit.Infer(app, vars, "main")
	require.Len(t, diags, 1)
	require.Equal(t, common.UnitWarning, diags[0].Kind)
	require.False(t, diags[0].Blocking())
}

func TestInferTranscendentalRequiresDimensionless(t *testing.T) {
	vars := map[common.Ident]unit.Expr{"a": unit.Atomic("people")}
	app := typed.NewApp(builtin.Exp, []typed.Expr{typed.NewVar("a", common.NewSpan(0, 1), nil)}, common.NewSpan(0, 1), nil)

	result, diags := unit.Infer(app, vars, "main")
	require.Len(t, diags, 1)
	require.True(t, result.IsDimensionless())
}

func TestInferSafeDivRequiresMatchingFallback(t *testing.T) {
	vars := map[common.Ident]unit.Expr{
		"a": unit.Atomic("people"),
		"b": unit.Atomic("year"),
		"c": unit.Atomic("dollars"),
	}
	app := typed.NewApp(builtin.SafeDiv, []typed.Expr{
		typed.NewVar("a", common.NewSpan(0, 1), nil),
		typed.NewVar("b", common.NewSpan(2, 3), nil),
		typed.NewVar("c", common.NewSpan(4, 5), nil),
	}, common.NewSpan(0, 5), nil)

	result, diags := unit.Infer(app, vars, "main")
	require.Len(t, diags, 1)
	require.Equal(t, "people/year", result.String())
}
