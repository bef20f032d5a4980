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

package common

import (
	"fmt"
	"sort"
)

// ErrorKind enumerates the diagnostic kinds surfaced at the compiler's
// boundary (spec.md §7).
type ErrorKind int

// The closed set of diagnostic kinds the core can produce.
const (
	UnknownIdent ErrorKind = iota
	ExpectedInteger
	MismatchedDimensions
	CircularDependency
	TodoStarRange
	Generic
	UnitWarning
)

// String renders the kind for log lines and error messages.
func (k ErrorKind) String() string {
	switch k {
	case UnknownIdent:
		return "UnknownIdent"
	case ExpectedInteger:
		return "ExpectedInteger"
	case MismatchedDimensions:
		return "MismatchedDimensions"
	case CircularDependency:
		return "CircularDependency"
	case TodoStarRange:
		return "TodoStarRange"
	case UnitWarning:
		return "UnitWarning"
	default:
		return "Generic"
	}
}

// Diagnostic is a single compiler error or warning. It is modeled directly
// on pkg/sexp.SyntaxError in the teacher repo: a Span plus a message, with
// Error() formatting "start:end: kind: message".
type Diagnostic struct {
	Kind     ErrorKind
	Variable Ident // empty if not attributable to a single variable
	Model    Ident
	Span     Span
	Msg      string
}

// NewDiagnostic constructs a Diagnostic.
func NewDiagnostic(kind ErrorKind, model, variable Ident, span Span, msg string) Diagnostic {
	return Diagnostic{Kind: kind, Model: model, Variable: variable, Span: span, Msg: msg}
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Span.Start(), d.Span.End(), d.Kind, d.Msg)
}

// Blocking reports whether this diagnostic must prevent compilation from
// succeeding. Only UnitWarning is always non-blocking; every other kind
// blocks simulation of the variable it was reported against (spec.md §7).
func (d Diagnostic) Blocking() bool {
	return d.Kind != UnitWarning
}

// SortDiagnostics orders diagnostics by source position (span.start then
// span.end), then by canonical variable name, matching the determinism rule
// in spec.md §7.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Span != b.Span {
			return a.Span.Before(b.Span)
		}
		return a.Variable < b.Variable
	})
}
