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
	"strings"

	"github.com/sdlabs/sdcore/pkg/common"
)

// FindCycles enumerates every elementary simple cycle in g (spec.md §4.6).
// At the scale this core targets (hundreds of nodes) a full Johnson-style
// algorithm is unnecessary: a DFS rooted at each node in canonical order,
// restricted to only visit nodes whose canonical rank is >= the root's,
// finds every elementary cycle exactly once without needing Johnson's
// blocked-node bookkeeping, since any cycle is discovered from its
// lowest-ranked vertex. Self-loops are dropped; duplicate vertex-sets
// (defensive, since the rank restriction should already prevent them) are
// deduplicated by their sorted-vertex-set key.
func FindCycles(g *Graph) [][]common.Ident {
	rank := make(map[common.Ident]int, len(g.Nodes))
	sorted := append([]common.Ident(nil), g.Nodes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, n := range sorted {
		rank[n] = i
	}

	seen := map[string]bool{}
	var cycles [][]common.Ident

	for _, root := range sorted {
		var path []common.Ident
		var walk func(n common.Ident)
		walk = func(n common.Ident) {
			path = append(path, n)
			for _, next := range g.Successors(n) {
				if next == root {
					if len(path) > 1 {
						recordCycle(append([]common.Ident(nil), path...), seen, &cycles)
					}
					continue
				}
				if rank[next] <= rank[root] {
					continue
				}
				if containsIdent(path, next) {
					continue
				}
				walk(next)
			}
			path = path[:len(path)-1]
		}
		walk(root)
	}

	sort.Slice(cycles, func(i, j int) bool { return cycleKey(cycles[i]) < cycleKey(cycles[j]) })
	return cycles
}

func recordCycle(cycle []common.Ident, seen map[string]bool, out *[][]common.Ident) {
	key := cycleKey(cycle)
	if seen[key] {
		return
	}
	seen[key] = true
	*out = append(*out, cycle)
}

// cycleKey normalizes a cycle to its deduplication key: the sorted set of
// vertices joined by a separator no canonical ident can contain.
func cycleKey(cycle []common.Ident) string {
	strs := make([]string, len(cycle))
	for i, n := range cycle {
		strs[i] = string(n)
	}
	sort.Strings(strs)
	return strings.Join(strs, "\x00")
}

func containsIdent(path []common.Ident, n common.Ident) bool {
	for _, p := range path {
		if p == n {
			return true
		}
	}
	return false
}
