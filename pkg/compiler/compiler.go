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
	"sort"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// Compile runs the full pipeline of spec.md §4.4 over rp, producing a
// CompiledProject with one CompiledModel per input model. Compilation
// never aborts on a blocking diagnostic mid-pipeline: every model is
// compiled through to an offset table so the caller sees the complete
// diagnostic set in one pass, then CompiledProject.Blocking reports
// whether simulation may proceed.
func Compile(rp *RawProject) (*project.CompiledProject, []common.Diagnostic) {
	proj := project.NewProject(rp.MainModel, rp.SimSpecs)
	models := make(map[common.Ident]*project.CompiledModel, len(rp.Models))
	var diags []common.Diagnostic

	for _, name := range sortedModelNames(rp.Models) {
		rm := rp.Models[name]
		cm, model, d := compileModel(rm)
		diags = append(diags, d...)
		proj.Models[name] = model
		models[name] = cm
	}

	common.SortDiagnostics(diags)
	return &project.CompiledProject{Project: proj, Models: models, Diagnostics: diags}, diags
}

func compileModel(rm *RawModel) (*project.CompiledModel, *project.Model, []common.Diagnostic) {
	var diags []common.Diagnostic

	resolvedVars, d := resolveModel(rm)
	diags = append(diags, d...)

	vars, d := typeModel(rm, resolvedVars)
	diags = append(diags, d...)

	diags = append(diags, checkUnits(rm.Name, vars)...)

	initial, runtime, stockUpdate, d := buildOrders(rm.Name, vars)
	diags = append(diags, d...)

	model := project.NewModel(rm.Name)
	model.Variables = vars
	for _, dim := range rm.Dimensions {
		model.Dimensions[dim.Name()] = dim
	}

	offsets := project.BuildOffsetTable(allVariableNames(vars), rm.Views)

	cm := &project.CompiledModel{
		Model:            model,
		Offsets:          offsets,
		InitialOrder:     initial,
		RuntimeOrder:     runtime,
		StockUpdateOrder: stockUpdate,
	}
	return cm, model, diags
}

func allVariableNames(vars map[common.Ident]*variable.Variable) []common.Ident {
	out := make([]common.Ident, 0, len(vars))
	for name := range vars {
		out = append(out, name)
	}
	return out
}

func sortedModelNames(models map[common.Ident]*RawModel) []common.Ident {
	out := make([]common.Ident, 0, len(models))
	for name := range models {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
