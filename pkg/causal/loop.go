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
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// Link is one directed edge of a Loop, with its structurally-classified
// polarity already attached.
type Link struct {
	From, To common.Ident
	Polarity Polarity
}

// Loop is one elementary causal cycle.
type Loop struct {
	ID       string
	Links    []Link
	Stocks   []common.Ident
	Polarity Polarity
	// Partition is the key of the stock-SCC group this loop belongs to,
	// used to scope relative-loop-score denominators (spec.md §4.6). Loops
	// with no stocks share the reserved "unpartitioned" key.
	Partition string
}

// unpartitioned is the partition key for a loop with no stocks.
const unpartitioned = "unpartitioned"

// linkPolarityFor classifies one edge of a cycle. A flow->stock edge
// (the flow accumulates into the stock) takes its sign from whether the
// flow is one of the stock's declared inflows or outflows, per the
// accumulation semantics in spec.md §4.6, rather than from structural
// analysis of an equation (a stock has none). Every other edge — including
// stock->flow, since a flow's equation ordinarily does reference its
// stock — is classified by LinkPolarity.
func linkPolarityFor(from, to common.Ident, vars map[common.Ident]*variable.Variable) Polarity {
	if toVar, ok := vars[to]; ok && toVar.Kind == variable.Stock {
		for _, f := range toVar.Inflows {
			if f == from {
				return Positive
			}
		}
		for _, f := range toVar.Outflows {
			if f == from {
				return Negative
			}
		}
	}
	toVar, ok := vars[to]
	if !ok {
		return Unknown
	}
	return LinkPolarity(from, toVar, vars)
}

// DetectLoops enumerates every elementary cycle in vars' causal graph,
// classifies link and structural loop polarity, assigns deterministic IDs,
// and partitions loops by shared stocks.
func DetectLoops(vars map[common.Ident]*variable.Variable) []Loop {
	g := Build(vars)
	rawCycles := FindCycles(g)

	loops := make([]Loop, 0, len(rawCycles))
	for _, cycle := range rawCycles {
		loop := Loop{}
		for i, n := range cycle {
			next := cycle[(i+1)%len(cycle)]
			pol := linkPolarityFor(n, next, vars)
			loop.Links = append(loop.Links, Link{From: n, To: next, Polarity: pol})
			if v, ok := vars[n]; ok && v.Kind == variable.Stock {
				loop.Stocks = append(loop.Stocks, n)
			}
		}
		sort.Slice(loop.Stocks, func(i, j int) bool { return loop.Stocks[i] < loop.Stocks[j] })
		loop.Polarity = StructuralLoopPolarity(loop.Links)
		loops = append(loops, loop)
	}

	assignPartitions(loops, g, vars)
	assignIDs(loops)
	return loops
}

// StructuralLoopPolarity applies spec.md §4.6's structural rule: any
// Unknown link makes the loop Undetermined (represented here by Unknown,
// the same zero value — this package does not distinguish a loop's
// Undetermined from a link's Unknown, since both mean "no determinate
// sign could be established"); otherwise an even number of Negative links
// is Reinforcing (Positive) and an odd number is Balancing (Negative).
func StructuralLoopPolarity(links []Link) Polarity {
	negatives := 0
	for _, l := range links {
		if l.Polarity == Unknown {
			return Unknown
		}
		if l.Polarity == Negative {
			negatives++
		}
	}
	if negatives%2 == 0 {
		return Positive
	}
	return Negative
}

// RuntimeLoopPolarity classifies a loop from a vector of scalar scores
// sampled across a simulation run (spec.md §4.6): NaN and zero scores are
// filtered out first, since a zero score means "no information", not a
// polarity flip. All-positive -> Reinforcing, all-negative -> Balancing,
// mixed -> Undetermined, none remaining -> ok is false (no classification).
func RuntimeLoopPolarity(scores []float64) (pol Polarity, ok bool) {
	sawPositive, sawNegative := false, false
	for _, s := range scores {
		if math.IsNaN(s) || s == 0 {
			continue
		}
		if s > 0 {
			sawPositive = true
		} else {
			sawNegative = true
		}
	}
	switch {
	case sawPositive && sawNegative:
		return Unknown, true
	case sawPositive:
		return Positive, true
	case sawNegative:
		return Negative, true
	default:
		return Unknown, false
	}
}

// assignIDs sorts loops by their joined sorted-vertex-set key and assigns
// r1, r2, ... / b1, b2, ... / u1, ... per spec.md §4.6's deterministic
// loop-ID rule.
func assignIDs(loops []Loop) {
	sort.Slice(loops, func(i, j int) bool { return loopVertexKey(loops[i]) < loopVertexKey(loops[j]) })
	var r, b, u int
	for i := range loops {
		switch loops[i].Polarity {
		case Positive:
			r++
			loops[i].ID = fmt.Sprintf("r%d", r)
		case Negative:
			b++
			loops[i].ID = fmt.Sprintf("b%d", b)
		default:
			u++
			loops[i].ID = fmt.Sprintf("u%d", u)
		}
	}
}

func loopVertexKey(l Loop) string {
	names := make([]string, len(l.Links))
	for i, link := range l.Links {
		names[i] = string(link.From)
	}
	sort.Strings(names)
	return strings.Join(names, "\x00")
}

// assignPartitions groups loops by the strongly connected component their
// stocks belong to in the full causal graph (spec.md §4.6): two stocks
// that sit on a common elementary cycle are, by construction, mutually
// reachable, so the SCC containing any one of a loop's stocks identifies
// its partition.
func assignPartitions(loops []Loop, g *Graph, vars map[common.Ident]*variable.Variable) {
	comp := tarjanSCC(g)
	for i := range loops {
		if len(loops[i].Stocks) == 0 {
			loops[i].Partition = unpartitioned
			continue
		}
		loops[i].Partition = fmt.Sprintf("scc%d", comp[loops[i].Stocks[0]])
	}
}
