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
	"encoding/json"
	"fmt"
	"os"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/compiler"
	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/raw"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// projectFile is the JSON shape a project description file takes: it
// decodes the logical project/model/variable/equation structure of
// spec.md §3/§6 directly into a compiler.RawProject, with no
// source-language formula text to parse — every equation is already an
// expression tree, the same shape pkg/raw.Expr already holds.
type projectFile struct {
	MainModel string            `json:"main_model"`
	SimSpecs  jsonSimSpecs      `json:"sim_specs"`
	Models    map[string]jsonModel `json:"models"`
}

type jsonSimSpecs struct {
	Start      float64 `json:"start"`
	Stop       float64 `json:"stop"`
	Dt         float64 `json:"dt"`
	Reciprocal bool    `json:"dt_reciprocal"`
	SaveStep   float64 `json:"save_step"`
	Method     string  `json:"method"`
	TimeUnits  string  `json:"time_units"`
}

type jsonModel struct {
	Dimensions []jsonDimension         `json:"dimensions"`
	Variables  map[string]jsonVariable `json:"variables"`
}

type jsonDimension struct {
	Name     string   `json:"name"`
	Elements []string `json:"elements"` // Named, if set
	Size     int      `json:"size"`     // Indexed, if Elements is empty
}

type jsonVariable struct {
	Kind            string          `json:"kind"` // "stock", "var", "module"
	Doc             string          `json:"doc"`
	Dims            []string        `json:"dims"` // array shape, by declared dimension name
	Equation        *jsonEquation   `json:"equation"`
	Unit            string          `json:"unit"`
	Lookup          *jsonLookup     `json:"lookup"`
	InitialEquation *jsonEquation   `json:"initial_equation"`
	NonNegative     bool            `json:"non_negative"`
	Inflows         []string        `json:"inflows"`
	Outflows        []string        `json:"outflows"`
	PortBindings    map[string]string `json:"port_bindings"`
}

type jsonLookup struct {
	X           []float64 `json:"x"`
	Y           []float64 `json:"y"`
	Extrapolate string    `json:"extrapolate"` // "clamp" (default) or "continue"
}

// jsonEquation carries either a single expr (Scalar/ApplyToAll) or a map of
// per-element exprs (Arrayed), matching variable.Equation's own shape.
type jsonEquation struct {
	Kind     string                  `json:"kind"` // "scalar" (default), "apply_to_all", "arrayed"
	Expr     *jsonExpr               `json:"expr"`
	Elements map[string]*jsonExpr    `json:"elements"`
}

// jsonExpr is a discriminated union over pkg/raw.Expr's node kinds.
type jsonExpr struct {
	Kind string `json:"kind"` // "const", "var", "app", "if", "subscript"

	// const
	Value float64 `json:"value"`

	// var / subscript
	Name    string        `json:"name"`
	Indices []jsonIndex   `json:"indices"`

	// app
	Fn   string      `json:"fn"`
	Args []*jsonExpr `json:"args"`

	// if
	Cond *jsonExpr `json:"cond"`
	Then *jsonExpr `json:"then"`
	Else *jsonExpr `json:"else"`
}

type jsonIndex struct {
	Kind     string    `json:"kind"` // "element", "wildcard", "range", "bang"
	Expr     *jsonExpr `json:"expr"`     // element
	RangeLo  *jsonExpr `json:"range_lo"` // range
	RangeHi  *jsonExpr `json:"range_hi"` // range
	DimName  string    `json:"dim_name"` // bang
}

// loadProject reads and decodes a project description file into a
// compiler.RawProject ready for compiler.Compile.
func loadProject(path string) (*compiler.RawProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return pf.toRawProject()
}

func (pf *projectFile) toRawProject() (*compiler.RawProject, error) {
	specs := project.SimSpecs{
		Start:     pf.SimSpecs.Start,
		Stop:      pf.SimSpecs.Stop,
		DtValue:   pf.SimSpecs.Dt,
		SaveStep:  pf.SimSpecs.SaveStep,
		TimeUnits: pf.SimSpecs.TimeUnits,
	}
	if pf.SimSpecs.Reciprocal {
		specs.DtKind = project.DtReciprocal
	}
	if pf.SimSpecs.Method == "rk4" {
		specs.Method = project.RK4
	}

	rp := compiler.NewRawProject(common.Canonicalize(common.RawIdent(pf.MainModel)), specs)
	for name, jm := range pf.Models {
		rm, err := jm.toRawModel(name)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		rp.Models[rm.Name] = rm
	}
	return rp, nil
}

func (jm *jsonModel) toRawModel(name string) (*compiler.RawModel, error) {
	rm := compiler.NewRawModel(common.Canonicalize(common.RawIdent(name)))

	dims := make(map[string]dimension.Dimension, len(jm.Dimensions))
	for _, jd := range jm.Dimensions {
		var d dimension.Dimension
		if len(jd.Elements) > 0 {
			d = dimension.NewNamed(jd.Name, jd.Elements)
		} else {
			d = dimension.NewIndexed(jd.Name, jd.Size)
		}
		dims[jd.Name] = d
		rm.Dimensions = append(rm.Dimensions, d)
	}

	for rawName, jv := range jm.Variables {
		rv, view, err := jv.toRawVariable(rawName, dims)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", rawName, err)
		}
		rm.Variables[common.RawIdent(rawName)] = rv
		if len(jv.Dims) > 0 {
			rm.Views[common.Canonicalize(common.RawIdent(rawName))] = view
		}
	}
	return rm, nil
}

func (jv *jsonVariable) toRawVariable(name string, dims map[string]dimension.Dimension) (*compiler.RawVariable, dimension.View, error) {
	rv := &compiler.RawVariable{
		Name:        common.RawIdent(name),
		Doc:         jv.Doc,
		UnitName:    jv.Unit,
		NonNegative: jv.NonNegative,
		Lookup:      jv.Lookup.toLookupTable(),
	}
	switch jv.Kind {
	case "stock":
		rv.Kind = variable.Stock
	case "module":
		rv.Kind = variable.Module
	default:
		rv.Kind = variable.Var
	}
	for _, f := range jv.Inflows {
		rv.Inflows = append(rv.Inflows, common.RawIdent(f))
	}
	for _, f := range jv.Outflows {
		rv.Outflows = append(rv.Outflows, common.RawIdent(f))
	}
	if len(jv.PortBindings) > 0 {
		rv.PortBindings = make(map[common.RawIdent]common.RawIdent, len(jv.PortBindings))
		for port, src := range jv.PortBindings {
			rv.PortBindings[common.RawIdent(port)] = common.RawIdent(src)
		}
	}

	eq, err := jv.Equation.toRawEquation()
	if err != nil {
		return nil, dimension.View{}, err
	}
	rv.Equation = eq

	if jv.InitialEquation != nil {
		ieq, err := jv.InitialEquation.toRawEquation()
		if err != nil {
			return nil, dimension.View{}, err
		}
		rv.InitialEquation = &ieq
	}

	var view dimension.View
	if len(jv.Dims) > 0 {
		resolved := make([]dimension.Dimension, len(jv.Dims))
		for i, dn := range jv.Dims {
			d, ok := dims[dn]
			if !ok {
				return nil, dimension.View{}, fmt.Errorf("unknown dimension %q", dn)
			}
			resolved[i] = d
		}
		view = dimension.NewContiguous(resolved...)
	}
	return rv, view, nil
}

func (jl *jsonLookup) toLookupTable() *variable.LookupTable {
	if jl == nil {
		return nil
	}
	lt := &variable.LookupTable{X: jl.X, Y: jl.Y}
	if jl.Extrapolate == "continue" {
		lt.Extrapolate = variable.ExtrapolateContinue
	}
	return lt
}

func (je *jsonEquation) toRawEquation() (compiler.RawEquation, error) {
	if je == nil {
		return compiler.RawEquation{Kind: variable.Scalar}, nil
	}
	eq := compiler.RawEquation{}
	switch je.Kind {
	case "apply_to_all":
		eq.Kind = variable.ApplyToAll
	case "arrayed":
		eq.Kind = variable.Arrayed
	default:
		eq.Kind = variable.Scalar
	}
	if eq.Kind == variable.Arrayed {
		eq.Elements = make(map[string]raw.Expr, len(je.Elements))
		for key, e := range je.Elements {
			expr, err := e.toExpr()
			if err != nil {
				return eq, err
			}
			eq.Elements[key] = expr
		}
		return eq, nil
	}
	expr, err := je.Expr.toExpr()
	if err != nil {
		return eq, err
	}
	eq.Expr = expr
	return eq, nil
}

// builtinByName indexes the catalog by its table names, which are upper
// case (e.g. "MUL", "SAFEDIV"); a project description's "fn" field must match
// exactly.
var builtinByName = func() map[string]builtin.ID {
	out := map[string]builtin.ID{}
	for id := builtin.Add; id <= builtin.Previous; id++ {
		out[id.String()] = id
	}
	return out
}()

func (je *jsonExpr) toExpr() (raw.Expr, error) {
	if je == nil {
		return nil, fmt.Errorf("missing expression")
	}
	switch je.Kind {
	case "const":
		return raw.NewConst(je.Value, fmt.Sprintf("%g", je.Value), common.Span{}), nil
	case "var":
		return raw.NewVar(common.RawIdent(je.Name), common.Span{}), nil
	case "app":
		id, ok := builtinByName[je.Fn]
		if !ok {
			return nil, fmt.Errorf("unknown builtin %q", je.Fn)
		}
		args := make([]raw.Expr, len(je.Args))
		for i, a := range je.Args {
			expr, err := a.toExpr()
			if err != nil {
				return nil, err
			}
			args[i] = expr
		}
		return raw.NewApp(id, args, common.Span{}), nil
	case "if":
		cond, err := je.Cond.toExpr()
		if err != nil {
			return nil, err
		}
		then, err := je.Then.toExpr()
		if err != nil {
			return nil, err
		}
		els, err := je.Else.toExpr()
		if err != nil {
			return nil, err
		}
		return raw.NewIf(cond, then, els, common.Span{}), nil
	case "subscript":
		indices := make([]raw.Index, len(je.Indices))
		for i, idx := range je.Indices {
			ri, err := idx.toIndex()
			if err != nil {
				return nil, err
			}
			indices[i] = ri
		}
		return raw.NewSubscript(common.RawIdent(je.Name), indices, common.Span{}), nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", je.Kind)
	}
}

func (ji *jsonIndex) toIndex() (raw.Index, error) {
	switch ji.Kind {
	case "wildcard", "":
		return raw.Index{Kind: raw.IdxWildcard}, nil
	case "bang":
		return raw.Index{Kind: raw.IdxBang, DimName: ji.DimName}, nil
	case "range":
		lo, err := ji.RangeLo.toExpr()
		if err != nil {
			return raw.Index{}, err
		}
		hi, err := ji.RangeHi.toExpr()
		if err != nil {
			return raw.Index{}, err
		}
		return raw.Index{Kind: raw.IdxRange, RangeLo: lo, RangeHi: hi}, nil
	case "element":
		e, err := ji.Expr.toExpr()
		if err != nil {
			return raw.Index{}, err
		}
		return raw.Index{Kind: raw.IdxExpr, Expr: e}, nil
	default:
		return raw.Index{}, fmt.Errorf("unknown subscript index kind %q", ji.Kind)
	}
}
