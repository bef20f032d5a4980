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

// Package unit implements the tiny unit-expression algebra of spec.md §4.8:
// atomic names combined by product and quotient, with a canonical form that
// cancels matching atoms between numerator and denominator.
package unit

import (
	"sort"
	"strings"
)

// Expr is a unit expression, represented as a map from atomic unit name to
// its net exponent (positive in the numerator, negative in the
// denominator). A nil or empty Exponents map is dimensionless.
type Expr struct {
	Exponents map[string]int
}

// Dimensionless is the unit of a number with no physical dimension.
func Dimensionless() Expr { return Expr{} }

// Atomic constructs a unit expression for a single named unit, e.g. "people"
// or "year".
func Atomic(name string) Expr {
	if name == "" {
		return Dimensionless()
	}
	return Expr{Exponents: map[string]int{name: 1}}
}

// Mul combines two unit expressions as a product.
func Mul(a, b Expr) Expr { return combine(a, b, 1) }

// Div combines two unit expressions as a quotient a/b.
func Div(a, b Expr) Expr { return combine(a, b, -1) }

func combine(a, b Expr, sign int) Expr {
	out := map[string]int{}
	for k, v := range a.Exponents {
		out[k] += v
	}
	for k, v := range b.Exponents {
		out[k] += sign * v
	}
	return canonicalize(out)
}

// Pow raises a unit expression to an integer power.
func Pow(a Expr, n int) Expr {
	out := map[string]int{}
	for k, v := range a.Exponents {
		out[k] = v * n
	}
	return canonicalize(out)
}

// Inverse returns 1/a.
func Inverse(a Expr) Expr { return Pow(a, -1) }

// DeriveStockUnit computes a stock's unit from its net flow's unit and the
// model's time unit, per spec.md §4.8 ("derives stock from flow × time").
func DeriveStockUnit(flow, time Expr) Expr { return Mul(flow, time) }

func canonicalize(m map[string]int) Expr {
	for k, v := range m {
		if v == 0 {
			delete(m, k)
		}
	}
	if len(m) == 0 {
		return Dimensionless()
	}
	return Expr{Exponents: m}
}

// IsDimensionless reports whether every atom has cancelled out.
func (e Expr) IsDimensionless() bool { return len(e.Exponents) == 0 }

// Equal reports structural equivalence on canonical form: the same atoms
// with the same net exponents.
func (e Expr) Equal(other Expr) bool {
	if len(e.Exponents) != len(other.Exponents) {
		return false
	}
	for k, v := range e.Exponents {
		if other.Exponents[k] != v {
			return false
		}
	}
	return true
}

// String renders the canonical numerator/denominator form, e.g.
// "people/year", "people*year^2", or "1" for dimensionless.
func (e Expr) String() string {
	if e.IsDimensionless() {
		return "1"
	}
	names := make([]string, 0, len(e.Exponents))
	for k := range e.Exponents {
		names = append(names, k)
	}
	sort.Strings(names)

	var num, den []string
	for _, k := range names {
		v := e.Exponents[k]
		switch {
		case v == 1:
			num = append(num, k)
		case v > 1:
			num = append(num, k+"^"+itoa(v))
		case v == -1:
			den = append(den, k)
		case v < 0:
			den = append(den, k+"^"+itoa(-v))
		}
	}
	numStr := "1"
	if len(num) > 0 {
		numStr = strings.Join(num, "*")
	}
	if len(den) == 0 {
		return numStr
	}
	return numStr + "/" + strings.Join(den, "*")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		digits = append([]byte{'-'}, digits...)
	}
	return string(digits)
}
