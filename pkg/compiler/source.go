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

// Package compiler implements the model-compiler pipeline of spec.md §4.4:
// assemble raw IR, resolve, check units (non-blocking), type (attach
// ArraySource), build the dependency graph and evaluation orders, and
// allocate the offset table. Each stage lives in its own file
// (resolve.go, units.go, typecheck.go, depgraph.go), orchestrated by
// Compile in compiler.go — mirroring the teacher's one-file-per-pass
// lowering pipeline.
//
// Implicit stdlib modules (spec.md §4.4 stage 1, e.g. a source-language
// SMTH1 call expanding to a delay sub-model) are assumed already expanded
// into ordinary RawVariable entries by the out-of-scope source-language
// front end before a RawProject reaches this package: a Module-kind variable
// only records its port-to-source bindings (PortBindings), used for
// dependency computation and
// LTM pathway analysis, not for macro-expanding text.
package compiler

import (
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/raw"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// RawEquation is a variable's right-hand side before name resolution.
type RawEquation struct {
	Kind variable.EquationKind
	// Expr holds the single AST for Scalar and ApplyToAll equations.
	Expr raw.Expr
	// Elements holds one AST per element for an Arrayed equation, keyed as
	// variable.Equation.Elements is.
	Elements map[string]raw.Expr
}

// RawVariable is one model variable as assembled from a project description,
// before resolution.
type RawVariable struct {
	Name common.RawIdent
	Kind variable.Kind
	Doc  string

	Equation RawEquation
	UnitName string
	Lookup   *variable.LookupTable

	InitialEquation *RawEquation
	NonNegative     bool
	Inflows         []common.RawIdent
	Outflows        []common.RawIdent

	// PortBindings maps a module's input-port raw name to the raw name of
	// its source variable in the parent model.
	PortBindings map[common.RawIdent]common.RawIdent
}

// RawModel is one model before compilation.
type RawModel struct {
	Name       common.Ident
	Variables  map[common.RawIdent]*RawVariable
	Dimensions []dimension.Dimension
	// Views declares the array shape of every array-valued variable, keyed
	// by canonical name, built by the caller from the model's dimension
	// declarations (spec.md §4.1/§4.4 stage 4: "at this stage, dimensions
	// are known").
	Views map[common.Ident]dimension.View
}

// NewRawModel constructs an empty RawModel.
func NewRawModel(name common.Ident) *RawModel {
	return &RawModel{
		Name:      name,
		Variables: map[common.RawIdent]*RawVariable{},
		Views:     map[common.Ident]dimension.View{},
	}
}

// RawProject is the top-level input to Compile.
type RawProject struct {
	Models    map[common.Ident]*RawModel
	MainModel common.Ident
	SimSpecs  project.SimSpecs
}

// NewRawProject constructs an empty RawProject.
func NewRawProject(main common.Ident, specs project.SimSpecs) *RawProject {
	return &RawProject{Models: map[common.Ident]*RawModel{}, MainModel: main, SimSpecs: specs}
}
