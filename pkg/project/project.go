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

// Package project holds the logical description of a system-dynamics
// project — models, their variables, simulation specs and dimensions — and
// the compiled artifacts pkg/compiler produces from it (spec.md §4.4, §6).
package project

import (
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// DtKind distinguishes the two ways a SimSpecs may express its step size.
type DtKind int

// The two dt representations a model author may write.
const (
	// DtLiteral: dt is the value itself.
	DtLiteral DtKind = iota
	// DtReciprocal: dt is 1/value (XMILE's "reciprocal" dt convention).
	DtReciprocal
)

// Method selects the simulator's numeric integration scheme.
type Method int

// The two integration methods spec.md §4.5 describes.
const (
	Euler Method = iota
	RK4
)

// SimSpecs describes one model's simulation time window and step method.
type SimSpecs struct {
	Start, Stop float64
	DtKind      DtKind
	DtValue     float64
	SaveStep    float64
	Method      Method
	TimeUnits   string
}

// Dt returns the effective step size, resolving DtReciprocal.
func (s SimSpecs) Dt() float64 {
	if s.DtKind == DtReciprocal {
		if s.DtValue == 0 {
			return 0
		}
		return 1 / s.DtValue
	}
	return s.DtValue
}

// Model is one system-dynamics model: a named set of variables plus the
// dimensions it declares or references.
type Model struct {
	Name       common.Ident
	Variables  map[common.Ident]*variable.Variable
	Dimensions map[string]dimension.Dimension
}

// NewModel constructs an empty Model.
func NewModel(name common.Ident) *Model {
	return &Model{Name: name, Variables: map[common.Ident]*variable.Variable{}, Dimensions: map[string]dimension.Dimension{}}
}

// Project is the top-level logical description fed to the compiler: every
// model, the main model to simulate, project-wide simulation specs, and the
// dimension registry shared across all models (spec.md §3 — "the set of
// subrange dimensions is tracked globally").
type Project struct {
	Models     map[common.Ident]*Model
	MainModel  common.Ident
	SimSpecs   SimSpecs
	Dimensions *dimension.Registry
}

// NewProject constructs an empty Project with a fresh dimension registry.
func NewProject(main common.Ident, specs SimSpecs) *Project {
	return &Project{
		Models:     map[common.Ident]*Model{},
		MainModel:  main,
		SimSpecs:   specs,
		Dimensions: dimension.NewRegistry(),
	}
}
