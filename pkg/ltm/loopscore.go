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
	"github.com/sdlabs/sdcore/pkg/causal"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/typed"
)

// LoopScoreName and RelLoopScoreName build the reserved synthetic names
// for a loop's absolute and relative score variables (spec.md §6).
func LoopScoreName(loopID string) common.Ident {
	return common.SyntheticIdent("ltm", "loop_score", loopID)
}

func RelLoopScoreName(loopID string) common.Ident {
	return common.SyntheticIdent("ltm", "rel_loop_score", loopID)
}

// loopScoreEquation builds the product of a loop's constituent link
// scores (spec.md §4.7: LS_loop = Π link scores).
func loopScoreEquation(loop causal.Loop) typed.Expr {
	if len(loop.Links) == 0 {
		return constant(0)
	}
	result := varRef(LinkScoreName(loop.Links[0].From, loop.Links[0].To))
	for _, l := range loop.Links[1:] {
		result = mul(result, varRef(LinkScoreName(l.From, l.To)))
	}
	return result
}

// relativeLoopScoreEquation builds a loop's relative score: its absolute
// score divided by the sum of absolute scores of every loop in the same
// partition (spec.md §4.6's partition scoping, §4.7's formula).
func relativeLoopScoreEquation(loopID string, sameGroupIDs []string) typed.Expr {
	numerator := varRef(LoopScoreName(loopID))

	var denom typed.Expr = constant(1) // avoid an always-zero denominator when the group is somehow empty
	for i, id := range sameGroupIDs {
		term := abs(varRef(LoopScoreName(id)))
		if i == 0 {
			denom = term
		} else {
			denom = app(builtin.Add, denom, term)
		}
	}

	return safeDiv(numerator, denom, constant(0))
}
