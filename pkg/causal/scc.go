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

package causal

import (
	"sort"

	"github.com/sdlabs/sdcore/pkg/common"
)

// tarjanSCC assigns every node in g a strongly-connected-component index,
// in canonical-ident visitation order for determinism. Component indices
// are assigned in the order Tarjan's algorithm pops them (reverse
// topological order of the condensation graph), which is stable run to
// run given g's fixed edge set.
func tarjanSCC(g *Graph) map[common.Ident]int {
	nodes := append([]common.Ident(nil), g.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	index := map[common.Ident]int{}
	lowlink := map[common.Ident]int{}
	onStack := map[common.Ident]bool{}
	comp := map[common.Ident]int{}
	var stack []common.Ident
	next := 0
	nextComp := 0

	var strongconnect func(v common.Ident)
	strongconnect = func(v common.Ident) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		succs := append([]common.Ident(nil), g.Successors(v)...)
		sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
		for _, w := range succs {
			if _, visited := index[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp[w] = nextComp
				if w == v {
					break
				}
			}
			nextComp++
		}
	}

	for _, n := range nodes {
		if _, visited := index[n]; !visited {
			strongconnect(n)
		}
	}
	return comp
}
