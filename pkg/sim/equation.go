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

package sim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// evalEquationInto evaluates eq and writes its result(s) into ctx.row at
// slot, dispatching on the three equation shapes spec.md §4.5 names. A zero
// Slot.Count (no storage reserved, e.g. a Module) is a silent no-op.
func evalEquationInto(eq variable.Equation, slot project.Slot, ctx *evalContext) error {
	switch eq.Kind {
	case variable.Scalar:
		if eq.Expr == nil {
			return nil
		}
		v, err := evalScalar(eq.Expr, ctx)
		if err != nil {
			return err
		}
		ctx.row[slot.Start] = v
		return nil

	case variable.ApplyToAll:
		ctx.hasElement = true
		ctx.elementSize = slot.Count
		defer func() { ctx.hasElement = false }()
		for i := 0; i < slot.Count; i++ {
			ctx.element = i
			v, err := evalScalar(eq.Expr, ctx)
			if err != nil {
				return err
			}
			ctx.row[slot.Start+i] = v
		}
		return nil

	case variable.Arrayed:
		for key, expr := range eq.Elements {
			off, err := arrayedElementOffset(slot.View, key)
			if err != nil {
				return err
			}
			v, err := evalScalar(expr, ctx)
			if err != nil {
				return err
			}
			ctx.row[slot.Start+off] = v
		}
		return nil

	default:
		return fmt.Errorf("sim: unknown equation kind %d", eq.Kind)
	}
}

// arrayedElementOffset resolves one Arrayed equation element's key (its
// subscript tuple joined with commas, e.g. "north,2") to a flat offset
// within view, matching each comma-separated label against the
// corresponding dimension: a Named dimension's element name, or an
// Indexed dimension's 1-based integer position.
func arrayedElementOffset(view dimension.View, key string) (int, error) {
	parts := strings.Split(key, ",")
	dims := view.Dims()
	if len(parts) != len(dims) {
		return 0, fmt.Errorf("sim: arrayed key %q has %d subscripts, expected %d", key, len(parts), len(dims))
	}
	strides := view.Strides()
	offset := 0
	for i, part := range parts {
		d := dims[i]
		pos, ok := d.PositionOf(part)
		if !ok {
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, fmt.Errorf("sim: invalid arrayed subscript %q for dimension %q", part, d.Name())
			}
			pos = n
		}
		if pos < 1 || pos > d.Len() {
			return 0, fmt.Errorf("sim: arrayed subscript %d out of bounds for dimension %q (len %d)", pos, d.Name(), d.Len())
		}
		offset += (pos - 1) * strides[i]
	}
	return offset, nil
}
