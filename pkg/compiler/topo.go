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

import "sort"

// topoSort orders nodes so that every dependency precedes its dependent,
// breaking ties by canonical-ident sort for determinism (spec.md §5:
// "ties broken by canonical-ident sort"). deps[v] lists v's dependencies;
// entries not present in nodes are treated as already satisfied (e.g. a
// flow's dependency on a stock's already-available previous-step value).
// Nodes left over once no zero-indegree node remains form cyc, the
// dependency cycle spec.md §4.4 stage 5 reports as CircularDependency.
func topoSort(nodes []string, deps map[string][]string) (order, cyc []string) {
	inSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inSet[n] = true
	}

	indegree := make(map[string]int, len(nodes))
	children := make(map[string][]string)
	for _, n := range nodes {
		indegree[n] = 0
	}
	for _, n := range nodes {
		for _, d := range deps[n] {
			if !inSet[d] || d == n {
				continue
			}
			indegree[n]++
			children[d] = append(children[d], n)
		}
	}

	var ready []string
	for _, n := range nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		next := append([]string(nil), children[n]...)
		sort.Strings(next)
		for _, c := range next {
			indegree[c]--
			if indegree[c] == 0 {
				ready = insertSorted(ready, c)
			}
		}
	}

	for _, n := range nodes {
		if indegree[n] > 0 {
			cyc = append(cyc, n)
		}
	}
	sort.Strings(cyc)
	return order, cyc
}

func insertSorted(sorted []string, v string) []string {
	i := sort.SearchStrings(sorted, v)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = v
	return sorted
}
