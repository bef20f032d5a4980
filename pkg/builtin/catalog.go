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

// Package builtin is the finite catalog of builtin functions and operators
// the typed expression IR can reference (spec.md §4.2). It is a closed,
// iota-based enum with an info table, grounded on the opcode/Function enum
// style of the teacher's pkg/hir/term.go, rather than a map of strings: the
// core never sees source-language spellings (XMILE "SMTH1", MDL "SMOOTH",
// ...) because that translation happens in the out-of-scope format layer.
package builtin

// ID identifies one entry in the builtin catalog.
type ID int

// The closed builtin catalog.
const (
	// Arithmetic.
	Add ID = iota
	Sub
	Mul
	Div
	Neg
	Pow
	Mod
	// Comparison / logical.
	Eq
	Neq
	Lt
	Lte
	Gt
	Gte
	And
	Or
	Not
	If
	// Standard math.
	Abs
	Exp
	Ln
	Log10
	Sqrt
	Sin
	Cos
	Tan
	Arcsin
	Arccos
	Arctan
	Int
	Pi
	Inf
	Sign
	// Statistical, over arrays.
	Sum
	Mean
	Min
	Max
	StdDev
	Size
	Rank
	// Time queries.
	Time
	Dt
	StartTime
	FinalTime
	// Randomness.
	Uniform
	Normal
	Poisson
	PinkNoise
	// Stepwise / ramp / pulse generators.
	Step
	Ramp
	Pulse
	PulseTrain
	// Safe division and table lookup.
	SafeDiv
	Lookup
	// Module-input probe: reads the value bound to one of a module's input
	// ports from inside the module's sub-model scope.
	ModuleInput
	// Previous reads its argument's value as of the prior integration step
	// (the timestep it was evaluated at before the current one), rather than
	// the value currently being computed. Unlike every other builtin it is
	// stateful: pkg/sim's evaluator special-cases it instead of folding it
	// into the ordinary pure-function dispatch. Used exclusively by the LTM
	// augmentation's ceteris-paribus rewrite (spec.md §4.7).
	Previous
)

// Monotonicity classifies how a builtin's output polarity relates to its
// argument's polarity, for the structural link-polarity analysis of
// spec.md §4.6.
type Monotonicity int

// The three monotonicity classes spec.md §4.6 distinguishes.
const (
	NonMonotone Monotonicity = iota
	Increasing
	Decreasing
)

// Info describes one catalog entry: its arity (-1 means variadic/array),
// whether it is an array reduction that consumes a whole view, and its
// monotonicity for unary math functions.
type Info struct {
	Name        string
	Arity       int
	IsReduction bool
	Monotone    Monotonicity
}

var table = map[ID]Info{
	Add: {"ADD", 2, false, NonMonotone},
	Sub: {"SUB", 2, false, NonMonotone},
	Mul: {"MUL", 2, false, NonMonotone},
	Div: {"DIV", 2, false, NonMonotone},
	Neg: {"NEG", 1, false, Decreasing},
	Pow: {"POW", 2, false, NonMonotone},
	Mod: {"MOD", 2, false, NonMonotone},

	Eq:  {"EQ", 2, false, NonMonotone},
	Neq: {"NEQ", 2, false, NonMonotone},
	Lt:  {"LT", 2, false, NonMonotone},
	Lte: {"LTE", 2, false, NonMonotone},
	Gt:  {"GT", 2, false, NonMonotone},
	Gte: {"GTE", 2, false, NonMonotone},
	And: {"AND", 2, false, NonMonotone},
	Or:  {"OR", 2, false, NonMonotone},
	Not: {"NOT", 1, false, Decreasing},
	If:  {"IF", 3, false, NonMonotone},

	Abs:    {"ABS", 1, false, NonMonotone},
	Exp:    {"EXP", 1, false, Increasing},
	Ln:     {"LN", 1, false, Increasing},
	Log10:  {"LOG10", 1, false, Increasing},
	Sqrt:   {"SQRT", 1, false, Increasing},
	Sin:    {"SIN", 1, false, NonMonotone},
	Cos:    {"COS", 1, false, NonMonotone},
	Tan:    {"TAN", 1, false, NonMonotone},
	Arcsin: {"ARCSIN", 1, false, Increasing},
	Arccos: {"ARCCOS", 1, false, Decreasing},
	Arctan: {"ARCTAN", 1, false, Increasing},
	Int:    {"INT", 1, false, Increasing},
	Pi:     {"PI", 0, false, NonMonotone},
	Inf:    {"INF", 0, false, NonMonotone},
	Sign:   {"SIGN", 1, false, Increasing},

	Sum:    {"SUM", 1, true, NonMonotone},
	Mean:   {"MEAN", 1, true, NonMonotone},
	Min:    {"MIN", -1, true, NonMonotone},
	Max:    {"MAX", -1, true, NonMonotone},
	StdDev: {"STDDEV", 1, true, NonMonotone},
	Size:   {"SIZE", 1, true, NonMonotone},
	Rank:   {"RANK", 2, true, NonMonotone},

	Time:      {"TIME", 0, false, NonMonotone},
	Dt:        {"DT", 0, false, NonMonotone},
	StartTime: {"STARTTIME", 0, false, NonMonotone},
	FinalTime: {"FINALTIME", 0, false, NonMonotone},

	Uniform:   {"UNIFORM", 2, false, NonMonotone},
	Normal:    {"NORMAL", 2, false, NonMonotone},
	Poisson:   {"POISSON", 1, false, NonMonotone},
	PinkNoise: {"PINKNOISE", 0, false, NonMonotone},

	Step:       {"STEP", 2, false, NonMonotone},
	Ramp:       {"RAMP", 3, false, NonMonotone},
	Pulse:      {"PULSE", 3, false, NonMonotone},
	PulseTrain: {"PULSETRAIN", 4, false, NonMonotone},

	SafeDiv:     {"SAFEDIV", -1, false, NonMonotone}, // 2 or 3 args
	Lookup:      {"LOOKUP", 2, false, NonMonotone},
	ModuleInput: {"$MODULE_INPUT", 1, false, NonMonotone},
	Previous:    {"PREVIOUS", 1, false, Increasing},
}

// Describe returns the catalog entry for id.
func Describe(id ID) Info { return table[id] }

// Arity returns a builtin's fixed argument count, or -1 for a variadic one.
func (id ID) Arity() int { return table[id].Arity }

// IsReduction reports whether id reduces an array view to a scalar.
func (id ID) IsReduction() bool { return table[id].IsReduction }

// Monotone returns id's monotonicity classification.
func (id ID) Monotone() Monotonicity { return table[id].Monotone }

// String renders the canonical spelling of a builtin, used for equation
// pretty-printing and LTM variable names.
func (id ID) String() string { return table[id].Name }
