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

package typed_test

import (
	"testing"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/resolved"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalConstIntArithmetic(t *testing.T) {
	// (2 + 3) * 4 = 20
	e := resolved.NewApp(builtin.Mul, []resolved.Expr{
		resolved.NewApp(builtin.Add, []resolved.Expr{
			resolved.NewConst(2, common.Span{}),
			resolved.NewConst(3, common.Span{}),
		}, common.Span{}),
		resolved.NewConst(4, common.Span{}),
	}, common.Span{})

	v, err := typed.EvalConstInt(e)
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestEvalConstIntLogicalAndComparisonOps(t *testing.T) {
	cases := []struct {
		name string
		fn   builtin.ID
		args []float64
		want int
	}{
		{"eq true", builtin.Eq, []float64{1, 1}, 1},
		{"eq false", builtin.Eq, []float64{1, 2}, 0},
		{"lte true", builtin.Lte, []float64{1, 2}, 1},
		{"gte false", builtin.Gte, []float64{1, 2}, 0},
		{"and both true", builtin.And, []float64{1, 1}, 1},
		{"or one true", builtin.Or, []float64{0, 1}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			args := make([]resolved.Expr, len(c.args))
			for i, a := range c.args {
				args[i] = resolved.NewConst(a, common.Span{})
			}
			v, err := typed.EvalConstInt(resolved.NewApp(c.fn, args, common.Span{}))
			require.NoError(t, err)
			assert.Equal(t, c.want, v)
		})
	}
}

func TestEvalConstIntNot(t *testing.T) {
	e := resolved.NewApp(builtin.Not, []resolved.Expr{resolved.NewConst(0, common.Span{})}, common.Span{})
	v, err := typed.EvalConstInt(e)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestEvalConstIntVariableReferenceIsNotConstEvaluable(t *testing.T) {
	_, err := typed.EvalConstInt(resolved.NewVar("x", common.Span{}))
	assert.Error(t, err)
}
