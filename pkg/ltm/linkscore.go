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
	"fmt"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// LinkScoreName builds the reserved synthetic name for a link's score
// variable (spec.md §6's naming convention).
func LinkScoreName(from, to common.Ident) common.Ident {
	return common.SyntheticIdent("ltm", "link_score", fmt.Sprintf("%s→%s", from, to))
}

// ModuleRole classifies a module variable's involvement in an LTM link,
// supplementing spec.md §4.7's implied binary with the three-way split
// ltm.rs's classify_module_for_ltm draws: a module the pass cannot see
// inside is a black box; one whose composite-port scores have already
// been generated (GenerateModuleInternalVariables) gets a direct
// reference instead.
type ModuleRole int

const (
	// None means the variable on this side of the link is not a Module.
	None ModuleRole = iota
	BlackBox
	Composite
)

// classifyModuleForLTM determines a module variable's role with respect
// to one of its ports. composites maps a module's name to the set of
// port names for which GenerateModuleInternalVariables already produced
// a composite score; a nil or non-matching map yields BlackBox.
func classifyModuleForLTM(moduleVar *variable.Variable, port common.Ident, composites map[common.Ident]map[common.Ident]common.Ident) ModuleRole {
	if moduleVar == nil || moduleVar.Kind != variable.Module {
		return None
	}
	if ports, ok := composites[moduleVar.Name]; ok {
		if _, ok := ports[port]; ok {
			return Composite
		}
	}
	return BlackBox
}

// portBoundTo finds the internal port name a module binds to parent-model
// source name src, if any (the inverse of Variable.PortBindings).
func portBoundTo(moduleVar *variable.Variable, src common.Ident) (common.Ident, bool) {
	for port, bound := range moduleVar.PortBindings {
		if bound == src {
			return port, true
		}
	}
	return "", false
}

// linkScoreEquation builds one link's LTM score equation, dispatching on
// the structural shape of the edge (spec.md §4.7). It returns ok=false
// when the edge references a variable this pass cannot analyze (a
// best-effort skip per the spec's failure semantics — no fatal error).
// composites carries any already-generated module composite scores (see
// ModuleRole); pass nil when none are available, which degrades every
// module edge to the black-box formula.
func linkScoreEquation(from, to common.Ident, vars map[common.Ident]*variable.Variable, composites map[common.Ident]map[common.Ident]common.Ident) (typed.Expr, bool) {
	toVar, ok := vars[to]
	if !ok {
		return nil, false
	}
	fromVar, fromKnown := vars[from]

	if fromKnown && fromVar.Kind == variable.Module {
		if port, bound := portBoundTo(fromVar, to); bound {
			if classifyModuleForLTM(fromVar, port, composites) == Composite {
				return moduleCompositeEquation(fromVar.Name, port, composites), true
			}
		}
		return moduleBlackBoxEquation(from, to), true
	}
	if toVar.Kind == variable.Module {
		if port, bound := portBoundTo(toVar, from); bound {
			if classifyModuleForLTM(toVar, port, composites) == Composite {
				return moduleCompositeEquation(toVar.Name, port, composites), true
			}
		}
		return moduleBlackBoxEquation(from, to), true
	}

	switch {
	case toVar.Kind == variable.Stock:
		return flowToStockEquation(from, to, toVar), true
	case fromKnown && fromVar.Kind == variable.Stock && isFlow(to, vars):
		return stockToFlowEquation(from, to, toVar), true
	default:
		return auxToAuxEquation(from, to, toVar), true
	}
}

// isFlow reports whether name is declared as an inflow or outflow of any
// stock in vars (spec.md §4.3: flows and auxiliaries share an equation
// shape and are only distinguished by this stock-membership check).
func isFlow(name common.Ident, vars map[common.Ident]*variable.Variable) bool {
	for _, v := range vars {
		if v.Kind != variable.Stock {
			continue
		}
		for _, f := range v.Inflows {
			if f == name {
				return true
			}
		}
		for _, f := range v.Outflows {
			if f == name {
				return true
			}
		}
	}
	return false
}

// auxToAuxEquation builds the standard ceteris-paribus link score for an
// aux-to-aux or stock-to-flow edge (spec.md §4.7's first formula):
//
//	LS = if Δt=0 -> 0
//	     else if Δy=0 or Δx=0 -> 0
//	     else |SAFEDIV(f_partial - PREVIOUS(y), Δy, 0)| * SIGN(SAFEDIV(f_partial - PREVIOUS(y), Δx, 0))
func auxToAuxEquation(from, to common.Ident, toVar *variable.Variable) typed.Expr {
	eqExpr := toVar.Equation.Expr
	if eqExpr == nil {
		eqExpr = constant(0)
	}
	partial := buildPartialEquation(eqExpr, toVar.Dependencies(), from)

	deltaY := delta(to)
	deltaX := delta(from)
	numerator := sub(partial, previous(varRef(to)))

	absPart := abs(safeDiv(numerator, deltaY, constant(0)))
	signPart := sign(safeDiv(numerator, deltaX, constant(0)))

	return ifExpr(
		eq(timeExpr(), previous(timeExpr())),
		constant(0),
		ifExpr(
			or(eq(deltaY, constant(0)), eq(deltaX, constant(0))),
			constant(0),
			mul(absPart, signPart),
		),
	)
}

// stockToFlowEquation is identical in shape to auxToAuxEquation: spec.md
// §4.7 groups "aux -> aux / stock -> flow" under one formula, since a
// stock appearing in a flow's equation is just another free variable from
// the ceteris-paribus rewrite's point of view.
func stockToFlowEquation(from, to common.Ident, toVar *variable.Variable) typed.Expr {
	return auxToAuxEquation(from, to, toVar)
}

// flowToStockEquation builds the flow-to-stock link score (spec.md §4.7's
// second formula). Sign is structural: +1 for an inflow, -1 for an
// outflow.
func flowToStockEquation(flow, stock common.Ident, stockVar *variable.Variable) typed.Expr {
	isInflow := true
	for _, f := range stockVar.Outflows {
		if f == flow {
			isInflow = false
		}
	}

	numerator := sub(previous(varRef(flow)), previous(previous(varRef(flow))))
	stockDeltaNow := delta(stock)
	stockDeltaPrev := sub(previous(varRef(stock)), previous(previous(varRef(stock))))
	denominator := sub(stockDeltaNow, stockDeltaPrev)

	magnitude := abs(safeDiv(numerator, denominator, constant(0)))
	score := magnitude
	if !isInflow {
		score = neg(magnitude)
	}

	prevTime := previous(timeExpr())
	prevPrevTime := previous(prevTime)
	noHistory := or(eq(timeExpr(), prevTime), eq(prevTime, prevPrevTime))

	return ifExpr(noHistory, constant(0), score)
}

// moduleCompositeEquation builds the module-composite-reference link
// score (spec.md §4.7's fourth formula): a direct reference to the
// port's already-generated composite score, skipping the black-box
// approximation entirely once the module's internals are known.
func moduleCompositeEquation(module, port common.Ident, composites map[common.Ident]map[common.Ident]common.Ident) typed.Expr {
	return varRef(composites[module][port])
}

// moduleBlackBoxEquation builds the black-box link score for an edge
// touching a module with no known composite reference (spec.md §4.7's
// third formula): the signed magnitude is always 1 once gated nonzero, so
// this is |Δy/Δy| * SIGN(Δy/Δx), matching the spec's literal formula
// rather than hand-simplifying it to a bare SIGN call.
func moduleBlackBoxEquation(from, to common.Ident) typed.Expr {
	deltaY := delta(to)
	deltaX := delta(from)

	magnitude := abs(app(builtin.Div, deltaY, deltaY))
	signPart := sign(app(builtin.Div, deltaY, deltaX))

	return ifExpr(
		eq(timeExpr(), previous(timeExpr())),
		constant(0),
		ifExpr(
			or(eq(deltaY, constant(0)), eq(deltaX, constant(0))),
			constant(0),
			mul(magnitude, signPart),
		),
	)
}
