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

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/raw"
	"github.com/sdlabs/sdcore/pkg/variable"
)

const reinforcingLoopJSON = `{
  "main_model": "main",
  "sim_specs": {"start": 0, "stop": 10, "dt": 1, "method": "euler", "time_units": "year"},
  "models": {
    "main": {
      "dimensions": [
        {"name": "region", "elements": ["east", "west"]}
      ],
      "variables": {
        "population": {
          "kind": "stock",
          "unit": "people",
          "inflows": ["births"],
          "initial_equation": {"kind": "scalar", "expr": {"kind": "const", "value": 100}}
        },
        "births": {
          "kind": "var",
          "unit": "people/year",
          "equation": {"kind": "scalar", "expr": {
            "kind": "app", "fn": "MUL",
            "args": [{"kind": "var", "name": "population"}, {"kind": "var", "name": "birth_fraction"}]
          }}
        },
        "birth_fraction": {
          "kind": "var",
          "unit": "1/year",
          "equation": {"kind": "scalar", "expr": {"kind": "const", "value": 0.1}}
        },
        "sales": {
          "kind": "var",
          "dims": ["region"],
          "equation": {"kind": "scalar", "expr": {
            "kind": "subscript", "name": "sales",
            "indices": [{"kind": "wildcard"}]
          }}
        }
      }
    }
  }
}`

func writeTempProject(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadProject_DecodesScalarEquations(t *testing.T) {
	path := writeTempProject(t, reinforcingLoopJSON)

	rp, err := loadProject(path)
	require.NoError(t, err)

	assert.Equal(t, project.SimSpecs{Start: 0, Stop: 10, DtValue: 1, Method: project.Euler, TimeUnits: "year"}, rp.SimSpecs)

	rm, ok := rp.Models["main"]
	require.True(t, ok)
	require.Len(t, rm.Dimensions, 1)
	assert.Equal(t, "region", rm.Dimensions[0].Name())

	pop, ok := rm.Variables["population"]
	require.True(t, ok)
	assert.Equal(t, variable.Stock, pop.Kind)
	assert.Equal(t, "people", pop.UnitName)
	require.Len(t, pop.Inflows, 1)
	assert.Equal(t, "births", string(pop.Inflows[0]))
	require.NotNil(t, pop.InitialEquation)
	cst, ok := pop.InitialEquation.Expr.(raw.Const)
	require.True(t, ok)
	assert.Equal(t, 100.0, cst.Value)

	births, ok := rm.Variables["births"]
	require.True(t, ok)
	app, ok := births.Equation.Expr.(raw.App)
	require.True(t, ok)
	assert.Equal(t, builtin.Mul, app.Fn)
	require.Len(t, app.Args, 2)
	lhs, ok := app.Args[0].(raw.Var)
	require.True(t, ok)
	assert.Equal(t, "population", string(lhs.Name))
}

func TestLoadProject_DecodesWildcardSubscript(t *testing.T) {
	path := writeTempProject(t, reinforcingLoopJSON)

	rp, err := loadProject(path)
	require.NoError(t, err)

	sales := rp.Models["main"].Variables["sales"]
	sub, ok := sales.Equation.Expr.(raw.Subscript)
	require.True(t, ok)
	assert.Equal(t, "sales", string(sub.Base))
	require.Len(t, sub.Indices, 1)
	assert.Equal(t, raw.IdxWildcard, sub.Indices[0].Kind)

	_, hasView := rp.Models["main"].Views["sales"]
	assert.True(t, hasView)
}

func TestLoadProject_UnknownBuiltinIsAnError(t *testing.T) {
	path := writeTempProject(t, `{
  "main_model": "main",
  "sim_specs": {"start": 0, "stop": 1, "dt": 1},
  "models": {"main": {"variables": {
    "x": {"kind": "var", "equation": {"kind": "scalar", "expr": {
      "kind": "app", "fn": "not_a_real_builtin", "args": []
    }}}
  }}}
}`)

	_, err := loadProject(path)
	assert.Error(t, err)
}

func TestLoadProject_MissingFileIsAnError(t *testing.T) {
	_, err := loadProject(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}
