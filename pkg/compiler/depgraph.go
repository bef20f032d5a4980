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

import (
	"fmt"
	"sort"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// buildOrders runs stage 5: the dependency graph and the three evaluation
// orders (spec.md §4.4). A flow's dependency on a stock never becomes a
// graph edge: a stock's *current* value is already available at the start
// of a step, so ordering a flow after "its" stock would be both
// unnecessary and would turn every stock<->flow relationship into an
// illegal cycle. This is how spec.md's "any cycle not mediated by a stock
// is an error" rule falls out naturally, rather than needing explicit SCC
// classification.
func buildOrders(model common.Ident, vars map[common.Ident]*variable.Variable) (initial, runtime, stockUpdate []common.Ident, diags []common.Diagnostic) {
	var stockNames, nonStockNames []string
	for name, v := range vars {
		if v.Kind == variable.Stock {
			stockNames = append(stockNames, string(name))
		} else {
			nonStockNames = append(nonStockNames, string(name))
		}
	}
	sort.Strings(stockNames)
	sort.Strings(nonStockNames)

	runtimeDeps := map[string][]string{}
	for _, name := range nonStockNames {
		v := vars[common.Ident(name)]
		for _, d := range v.Dependencies() {
			runtimeDeps[name] = append(runtimeDeps[name], string(d))
		}
	}
	order, cyc := topoSort(nonStockNames, runtimeDeps)
	reported := map[string]bool{}
	for _, n := range cyc {
		reported[n] = true
		diags = append(diags, common.NewDiagnostic(common.CircularDependency, model, common.Ident(n), common.Span{},
			fmt.Sprintf("circular dependency involving %q, not mediated by a stock", n)))
	}
	runtime = toIdents(order)

	allNames := append(append([]string(nil), stockNames...), nonStockNames...)
	initDeps := map[string][]string{}
	for _, name := range allNames {
		v := vars[common.Ident(name)]
		if v.Kind == variable.Stock {
			// A stock's initial value comes from its initial equation alone;
			// its flows only feed the stock-update step.
			initOnly := *v
			initOnly.Inflows, initOnly.Outflows = nil, nil
			v = &initOnly
		}
		for _, d := range v.InitialDependencies() {
			initDeps[name] = append(initDeps[name], string(d))
		}
	}
	initOrder, initCyc := topoSort(allNames, initDeps)
	for _, n := range initCyc {
		if reported[n] {
			continue
		}
		diags = append(diags, common.NewDiagnostic(common.CircularDependency, model, common.Ident(n), common.Span{},
			fmt.Sprintf("circular initial dependency involving %q", n)))
	}
	initial = toIdents(initOrder)
	stockUpdate = toIdents(stockNames)
	return initial, runtime, stockUpdate, diags
}

func toIdents(ss []string) []common.Ident {
	out := make([]common.Ident, len(ss))
	for i, s := range ss {
		out[i] = common.Ident(s)
	}
	return out
}
