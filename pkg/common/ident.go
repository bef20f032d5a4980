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

// Package common holds the identifier, span and diagnostic types shared by
// every stage of the compiler pipeline.
package common

import "strings"

// RawIdent is an identifier exactly as it was written by a model author,
// e.g. "Birth Rate" or "Inventory[Region 1]".
type RawIdent string

// Ident is a canonical identifier: case-folded and space-normalized. Only
// values produced by Canonicalize should be used as Ident, so that lookup
// keys in variable maps are never ambiguous.
type Ident string

// sentinelPrefix marks synthetic identifiers (LTM score, pathway and
// composite variables) that must never collide with a user-supplied
// name. The sentinel is a character sequence no XMILE/MDL identifier can
// legally contain.
const sentinelPrefix = "$⁚" // '$' + U+205A TWO DOT PUNCTUATION, the colon substitute

// Canonicalize folds a raw identifier into its canonical form: lowercase,
// with runs of whitespace collapsed to a single underscore.
func Canonicalize(raw RawIdent) Ident {
	s := strings.TrimSpace(string(raw))
	s = strings.ToLower(s)
	fields := strings.Fields(s)
	return Ident(strings.Join(fields, "_"))
}

// IsSynthetic reports whether id was generated by the LTM augmentation pass
// (or another internal synthesis step) rather than written by a model author.
func (id Ident) IsSynthetic() bool {
	return strings.HasPrefix(string(id), sentinelPrefix)
}

// String returns the underlying string value.
func (id Ident) String() string { return string(id) }

// String returns the underlying string value.
func (r RawIdent) String() string { return string(r) }

// SyntheticIdent builds a reserved, sentinel-prefixed identifier from a
// namespace ("ltm⁚link_score") and a colon-separated key path, matching
// the naming convention in spec.md §6 ("Synthetic-name convention").
func SyntheticIdent(parts ...string) Ident {
	return Ident(sentinelPrefix + strings.Join(parts, "⁚"))
}
