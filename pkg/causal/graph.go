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

// Package causal builds a model's causal graph from its compiled variables
// and finds every elementary feedback loop in it (spec.md §4.6): edge
// construction, Johnson-style-equivalent elementary-cycle enumeration,
// structural and runtime link/loop polarity, loop ID assignment, and
// partitioning loops by the stocks they share.
package causal

import (
	"sort"

	lvlath "github.com/katalvlaran/lvlath/graph/core"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// Graph is a model's causal graph: canonical idents as vertex IDs, backed
// by lvlath's thread-safe directed adjacency list rather than a hand-rolled
// map, so the same primitive that drives the teacher-adjacent example
// pack's other graph algorithms drives cycle and component search here.
type Graph struct {
	Nodes []common.Ident
	inner *lvlath.Graph
}

// Build constructs the causal graph for vars, per spec.md §4.6's edge
// construction rule: a dependency edge dep -> var for every variable's
// free variables, plus a bidirectional stock <-> flow edge pair for every
// stock's declared inflows and outflows (stocks both read their flows'
// current value and are updated by them, which matters for LTM).
// Module input bindings contribute source -> module edges; a module's own
// output is an ordinary dependency edge from the consuming variable's
// point of view, so no extra rule is needed for it.
func Build(vars map[common.Ident]*variable.Variable) *Graph {
	inner := lvlath.NewGraph(true, false)

	names := make([]common.Ident, 0, len(vars))
	for name := range vars {
		names = append(names, name)
		inner.AddVertex(&lvlath.Vertex{ID: string(name)})
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	addEdge := func(from, to common.Ident) {
		inner.AddEdge(string(from), string(to), 0)
	}

	for _, name := range names {
		v := vars[name]
		for _, dep := range v.Dependencies() {
			addEdge(dep, name)
		}
		if v.Kind == variable.Stock {
			for _, f := range v.Inflows {
				addEdge(name, f)
				addEdge(f, name)
			}
			for _, f := range v.Outflows {
				addEdge(name, f)
				addEdge(f, name)
			}
		}
	}
	return &Graph{Nodes: names, inner: inner}
}

// Successors returns every node n has an outgoing edge to, in canonical
// sort order, used by the cycle search and SCC pass which need "where can
// I go from here" deterministically.
func (g *Graph) Successors(n common.Ident) []common.Ident {
	neighbors := g.inner.Neighbors(string(n))
	out := make([]common.Ident, len(neighbors))
	for i, v := range neighbors {
		out[i] = common.Ident(v.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
