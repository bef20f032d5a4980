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
	"sort"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/causal"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// ILinkScoreName, PathwayName and CompositeName build the reserved
// synthetic names module-internal pathway expansion produces (spec.md
// §6, §4.7 step 5).
func ILinkScoreName(from, to common.Ident) common.Ident {
	return common.SyntheticIdent("ltm", "ilink", fmt.Sprintf("%s→%s", from, to))
}

func PathwayName(port common.Ident, index int) common.Ident {
	return common.SyntheticIdent("ltm", "path", string(port), fmt.Sprintf("%d", index))
}

func CompositeName(port common.Ident) common.Ident {
	return common.SyntheticIdent("ltm", "composite", string(port))
}

// inputPorts returns every variable in a module's internal scope with no
// incoming causal edge — spec.md §4.7 step 2's definition of an input
// port.
func inputPorts(vars map[common.Ident]*variable.Variable) []common.Ident {
	hasIncoming := map[common.Ident]bool{}
	for _, v := range vars {
		if len(v.Dependencies()) > 0 {
			hasIncoming[v.Name] = true
		}
	}

	var ports []common.Ident
	for name := range vars {
		if !hasIncoming[name] {
			ports = append(ports, name)
		}
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports
}

// enumerateModulePathways finds every open simple path, as a sequence of
// causal links, from each input port to output within a module's internal
// causal graph (spec.md §4.7 step 2).
func enumerateModulePathways(vars map[common.Ident]*variable.Variable, output common.Ident) map[common.Ident][][]causal.Link {
	g := causal.Build(vars)
	result := map[common.Ident][][]causal.Link{}

	for _, port := range inputPorts(vars) {
		var paths [][]causal.Link
		var walk func(node common.Ident, visited map[common.Ident]bool, path []causal.Link)
		walk = func(node common.Ident, visited map[common.Ident]bool, path []causal.Link) {
			if node == output && len(path) > 0 {
				paths = append(paths, append([]causal.Link(nil), path...))
				return
			}
			for _, next := range g.Successors(node) {
				if visited[next] {
					continue
				}
				visited[next] = true
				path = append(path, causal.Link{From: node, To: next})
				walk(next, visited, path)
				path = path[:len(path)-1]
				visited[next] = false
			}
		}
		visited := map[common.Ident]bool{port: true}
		walk(port, visited, nil)
		if len(paths) > 0 {
			result[port] = paths
		}
	}
	return result
}

// maxAbsChain builds the deterministic nested "if ABS(.) >= ABS(.) then ..
// else .." selection spec.md §4.7 step 5 describes, picking the pathway
// with the largest-magnitude score.
func maxAbsChain(names []common.Ident) typed.Expr {
	switch len(names) {
	case 0:
		return constant(0)
	case 1:
		return varRef(names[0])
	default:
		last := varRef(names[len(names)-1])
		rest := maxAbsChain(names[:len(names)-1])
		return ifExpr(
			app(builtin.Gte, abs(last), abs(rest)),
			last,
			rest,
		)
	}
}

// GenerateModuleInternalVariables builds the ilink, pathway and composite
// synthetic variables for one dynamic stdlib module's internal scope
// (spec.md §4.7 step 5, grounded on generate_module_internal_ltm_variables
// in ltm_augment.rs). vars holds the module's own internal variables (not
// the parent model's); output names the internal variable whose value the
// module exposes to its parent. The result is best-effort: an input port
// with no path to output simply contributes no composite variable, never
// a fatal error.
func GenerateModuleInternalVariables(vars map[common.Ident]*variable.Variable, output common.Ident) map[common.Ident]*variable.Variable {
	out := map[common.Ident]*variable.Variable{}

	pathways := enumerateModulePathways(vars, output)

	ports := make([]common.Ident, 0, len(pathways))
	for port := range pathways {
		ports = append(ports, port)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })

	for _, port := range ports {
		paths := pathways[port]

		var pathwayNames []common.Ident
		for i, path := range paths {
			var linkNames []common.Ident
			ok := true
			for _, l := range path {
				expr, linkOk := linkScoreEquation(l.From, l.To, vars, nil)
				if !linkOk {
					ok = false
					break
				}
				name := ILinkScoreName(l.From, l.To)
				if _, exists := out[name]; !exists {
					out[name] = buildScoreVariable(name, expr)
				}
				linkNames = append(linkNames, name)
			}
			if !ok || len(linkNames) == 0 {
				continue
			}

			pathwayName := PathwayName(port, i)
			var pathwayExpr typed.Expr = varRef(linkNames[0])
			for _, n := range linkNames[1:] {
				pathwayExpr = mul(pathwayExpr, varRef(n))
			}
			out[pathwayName] = buildScoreVariable(pathwayName, pathwayExpr)
			pathwayNames = append(pathwayNames, pathwayName)
		}

		if len(pathwayNames) == 0 {
			continue
		}
		compositeName := CompositeName(port)
		out[compositeName] = buildScoreVariable(compositeName, maxAbsChain(pathwayNames))
	}

	return out
}
