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
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/sdlabs/sdcore/pkg/variable"
)

// saveTolerance, expressed as a fraction of dt, absorbs float64 drift in
// the accumulated simulation clock when deciding whether the current step
// lands on a save point (spec.md §4.5).
const saveTolerance = 0.5

// Simulation drives one run of a compiled model: Euler or RK4 integration
// over a single working row of f64 storage, sampled into a Result at every
// save step.
type Simulation struct {
	Model *project.CompiledModel
	Specs project.SimSpecs
	// RunID identifies this run for logging and for seeding its
	// randomness builtins deterministically (spec.md §4.5 [NEW]).
	RunID uuid.UUID

	rng *rand.Rand
}

// NewSimulation constructs a Simulation over a compiled model, seeding its
// randomness builtins from a fresh RunID so repeated runs of the same
// model are independently random but each run's own Uniform/Normal/Poisson/
// PinkNoise calls are reproducible if the run is ever replayed with the
// same RunID.
func NewSimulation(cm *project.CompiledModel, specs project.SimSpecs) *Simulation {
	runID := uuid.New()
	return &Simulation{
		Model: cm,
		Specs: specs,
		RunID: runID,
		rng:   rand.New(rand.NewSource(seedFromRunID(runID))),
	}
}

func seedFromRunID(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[:8]))
}

// Run executes the full time window at a fixed step, returning every row
// successfully saved even if ctx is cancelled partway through; cancellation
// is polled only at save-step boundaries (spec.md §4.5), never mid-step, so
// a run's last saved row is always a complete, consistent model state.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	log.WithField("run_id", s.RunID).Info("starting simulation run")

	offsets := s.Model.Offsets
	vars := s.Model.Model.Variables
	dt := s.Specs.Dt()
	if dt <= 0 {
		return nil, fmt.Errorf("sim: non-positive dt")
	}

	row := make([]float64, offsets.Total)
	row[offsets.TimeOffset] = s.Specs.Start
	row[offsets.DtOffset] = dt
	row[offsets.StartTimeOffset] = s.Specs.Start
	row[offsets.FinalTimeOffset] = s.Specs.Stop

	ec := &evalContext{vars: vars, offsets: offsets, row: row, rng: s.rng}

	for _, name := range s.Model.InitialOrder {
		v := vars[name]
		if v.Kind == variable.Module {
			continue
		}
		slot := offsets.Slots[name]
		if v.Kind == variable.Stock {
			if v.InitialEquation != nil {
				if err := evalEquationInto(*v.InitialEquation, slot, ec); err != nil {
					return nil, fmt.Errorf("sim: initializing %q: %w", name, err)
				}
			}
			continue
		}
		if err := evalEquationInto(v.Equation, slot, ec); err != nil {
			return nil, fmt.Errorf("sim: initializing %q: %w", name, err)
		}
	}

	saveStep := s.Specs.SaveStep
	if saveStep <= 0 {
		saveStep = dt
	}

	result := &Result{Offsets: offsets}
	nextSave := s.Specs.Start
	var prevRow []float64

	for {
		t := row[offsets.TimeOffset]

		if t >= nextSave-saveTolerance*dt {
			result.Rows = append(result.Rows, append([]float64(nil), row...))
			nextSave += saveStep

			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}
		}

		if t >= s.Specs.Stop-saveTolerance*dt {
			break
		}

		ec.prevRow = prevRow
		snapshot := append([]float64(nil), row...)

		var err error
		switch s.Specs.Method {
		case project.RK4:
			err = s.stepRK4(ec, offsets, dt)
		default:
			err = s.stepEuler(ec, offsets, dt)
		}
		if err != nil {
			return result, fmt.Errorf("sim: at t=%g: %w", t, err)
		}
		prevRow = snapshot
	}

	log.WithFields(log.Fields{"run_id": s.RunID, "rows": len(result.Rows)}).Info("simulation run complete")
	return result, nil
}

// runRuntime evaluates every non-stock variable in RuntimeOrder, in
// topological order, against the current row. Module-kind variables carry
// no equation of their own (spec.md §4.4's note that stdlib modules are
// pre-expanded before reaching the compiler) and are skipped.
func (s *Simulation) runRuntime(ec *evalContext) error {
	vars := s.Model.Model.Variables
	offsets := s.Model.Offsets
	for _, name := range s.Model.RuntimeOrder {
		v := vars[name]
		if v.Kind == variable.Module {
			continue
		}
		slot := offsets.Slots[name]
		if err := evalEquationInto(v.Equation, slot, ec); err != nil {
			return fmt.Errorf("evaluating %q: %w", name, err)
		}
	}
	return nil
}

// stockDerivative computes a stock's net flow rate, elementwise, by summing
// its inflow variables' current values and subtracting its outflows'
// (spec.md §4.5: a stock's rate of change is inflows minus outflows, never
// its own equation).
func (s *Simulation) stockDerivative(v *variable.Variable, row []float64) []float64 {
	offsets := s.Model.Offsets
	slot := offsets.Slots[v.Name]
	deriv := make([]float64, slot.Count)
	for _, in := range v.Inflows {
		fs := offsets.Slots[in]
		for i := 0; i < slot.Count; i++ {
			deriv[i] += row[fs.Start+i]
		}
	}
	for _, out := range v.Outflows {
		fs := offsets.Slots[out]
		for i := 0; i < slot.Count; i++ {
			deriv[i] -= row[fs.Start+i]
		}
	}
	return deriv
}

func clampNonNegative(v *variable.Variable, vals []float64) {
	if !v.NonNegative {
		return
	}
	for i, x := range vals {
		if x < 0 {
			vals[i] = 0
		}
	}
}

// stepEuler advances row by one dt using forward Euler: flows evaluated
// once at the step's starting state, stocks updated by rate*dt. A trailing
// runRuntime at t0+dt leaves every aux/flow variable consistent with the
// committed stock values, the same as stepRK4, so a save immediately after
// this step reflects t0+dt rather than the stale pre-update state.
func (s *Simulation) stepEuler(ec *evalContext, offsets *project.OffsetTable, dt float64) error {
	t0 := ec.row[offsets.TimeOffset]
	if err := s.runRuntime(ec); err != nil {
		return err
	}
	vars := s.Model.Model.Variables
	for _, name := range s.Model.StockUpdateOrder {
		v := vars[name]
		slot := offsets.Slots[name]
		deriv := s.stockDerivative(v, ec.row)
		next := make([]float64, slot.Count)
		for i := 0; i < slot.Count; i++ {
			next[i] = ec.row[slot.Start+i] + dt*deriv[i]
		}
		clampNonNegative(v, next)
		copy(ec.row[slot.Start:slot.Start+slot.Count], next)
	}
	ec.row[offsets.TimeOffset] = t0 + dt
	return s.runRuntime(ec)
}

// stepRK4 advances row by one dt using the classic four-stage Runge-Kutta
// method: each stage re-runs the full runtime evaluation order against a
// trial stock state, so aux/flow variables that depend on stocks see a
// consistent state at every stage, not just at integer step boundaries.
func (s *Simulation) stepRK4(ec *evalContext, offsets *project.OffsetTable, dt float64) error {
	vars := s.Model.Model.Variables
	stocks := s.Model.StockUpdateOrder
	t0 := ec.row[offsets.TimeOffset]

	x0 := make(map[common.Ident][]float64, len(stocks))
	for _, name := range stocks {
		slot := offsets.Slots[name]
		x0[name] = append([]float64(nil), ec.row[slot.Start:slot.Start+slot.Count]...)
	}

	evalDerivatives := func(t float64, x map[common.Ident][]float64) (map[common.Ident][]float64, error) {
		ec.row[offsets.TimeOffset] = t
		for _, name := range stocks {
			slot := offsets.Slots[name]
			copy(ec.row[slot.Start:slot.Start+slot.Count], x[name])
		}
		if err := s.runRuntime(ec); err != nil {
			return nil, err
		}
		k := make(map[common.Ident][]float64, len(stocks))
		for _, name := range stocks {
			k[name] = s.stockDerivative(vars[name], ec.row)
		}
		return k, nil
	}

	k1, err := evalDerivatives(t0, x0)
	if err != nil {
		return err
	}
	k2, err := evalDerivatives(t0+dt/2, addScaled(x0, k1, dt/2))
	if err != nil {
		return err
	}
	k3, err := evalDerivatives(t0+dt/2, addScaled(x0, k2, dt/2))
	if err != nil {
		return err
	}
	k4, err := evalDerivatives(t0+dt, addScaled(x0, k3, dt))
	if err != nil {
		return err
	}

	for _, name := range stocks {
		slot := offsets.Slots[name]
		final := make([]float64, slot.Count)
		for i := 0; i < slot.Count; i++ {
			final[i] = x0[name][i] + (dt/6)*(k1[name][i]+2*k2[name][i]+2*k3[name][i]+k4[name][i])
		}
		clampNonNegative(vars[name], final)
		copy(ec.row[slot.Start:slot.Start+slot.Count], final)
	}

	// A final runtime pass at t0+dt leaves every aux/flow variable
	// consistent with the committed stock values, so a save immediately
	// after this step reflects t0+dt rather than the last RK4 stage.
	ec.row[offsets.TimeOffset] = t0 + dt
	return s.runRuntime(ec)
}

func addScaled(x map[common.Ident][]float64, k map[common.Ident][]float64, factor float64) map[common.Ident][]float64 {
	out := make(map[common.Ident][]float64, len(x))
	for name, vals := range x {
		kk := k[name]
		scaled := make([]float64, len(vals))
		for i := range vals {
			scaled[i] = vals[i] + factor*kk[i]
		}
		out[name] = scaled
	}
	return out
}
