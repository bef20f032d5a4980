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
	"sort"

	"github.com/sdlabs/sdcore/pkg/causal"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/unit"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// Mode selects what generate_ltm_variables_inner's all_links_mode flag did
// in the original: Loops augments only links that participate in a
// detected loop, plus loop and relative-loop scores; AllLinks augments
// every causal edge in the model (a discovery mode), omitting loop scores
// entirely (spec.md §4.7's "Inputs to the pass").
type Mode int

const (
	Loops Mode = iota
	AllLinks
)

// Augment produces the synthetic LTM variables for one model's vars
// (spec.md §4.7). It never mutates vars; the returned map holds only the
// new variables to add. Augmentation is best-effort: a link or loop whose
// equation cannot be analyzed is silently skipped, never a fatal error.
// composites should hold any module composite scores already produced by
// GenerateModuleInternalVariables for modules vars instantiates; pass nil
// when none are available.
func Augment(vars map[common.Ident]*variable.Variable, mode Mode, composites map[common.Ident]map[common.Ident]common.Ident) map[common.Ident]*variable.Variable {
	out := map[common.Ident]*variable.Variable{}

	loops := causal.DetectLoops(vars)

	var links []causal.Link
	if mode == AllLinks {
		links = allLinks(vars)
	} else {
		if len(loops) == 0 {
			return out
		}
		seen := map[string]bool{}
		for _, loop := range loops {
			for _, l := range loop.Links {
				key := string(l.From) + "\x00" + string(l.To)
				if seen[key] {
					continue
				}
				seen[key] = true
				links = append(links, l)
			}
		}
	}

	for _, l := range links {
		expr, ok := linkScoreEquation(l.From, l.To, vars, composites)
		if !ok {
			continue
		}
		name := LinkScoreName(l.From, l.To)
		out[name] = buildScoreVariable(name, expr)
	}

	if mode == AllLinks {
		return out
	}

	partitions := map[string][]string{}
	for _, loop := range loops {
		partitions[loop.Partition] = append(partitions[loop.Partition], loop.ID)
	}
	for key := range partitions {
		sort.Strings(partitions[key])
	}

	for _, loop := range loops {
		name := LoopScoreName(loop.ID)
		out[name] = buildScoreVariable(name, loopScoreEquation(loop))
	}
	for _, loop := range loops {
		name := RelLoopScoreName(loop.ID)
		out[name] = buildScoreVariable(name, relativeLoopScoreEquation(loop.ID, partitions[loop.Partition]))
	}

	return out
}

// allLinks returns every causal edge in vars' graph, in deterministic
// (from, to) order (spec.md §6's all_links interface).
func allLinks(vars map[common.Ident]*variable.Variable) []causal.Link {
	g := causal.Build(vars)
	var links []causal.Link
	for _, from := range g.Nodes {
		for _, to := range g.Successors(from) {
			links = append(links, causal.Link{From: from, To: to})
		}
	}
	return links
}

// buildScoreVariable wraps expr as a dimensionless auxiliary named name
// (spec.md §4.7: synthetic variables are always dimensionless by design).
func buildScoreVariable(name common.Ident, expr typed.Expr) *variable.Variable {
	return &variable.Variable{
		Name: name,
		Kind: variable.Var,
		Doc:  "LTM",
		Equation: variable.Equation{
			Kind: variable.Scalar,
			Expr: expr,
		},
		Unit: unit.Dimensionless(),
	}
}
