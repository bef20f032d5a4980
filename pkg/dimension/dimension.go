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

// Package dimension implements named/indexed dimensions and the ArrayView
// abstraction that lets array expressions describe transpose, subscript and
// slice operations as cheap views over a contiguous f64 buffer, without
// copying (spec.md §4.1).
package dimension

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Kind distinguishes a Named dimension (an ordered list of element labels)
// from an Indexed one (just a size).
type Kind int

// The two dimension flavors spec.md §3 describes.
const (
	Named Kind = iota
	Indexed
)

// Dimension is either Named (element labels with a reverse index) or
// Indexed (name + size). Dimension values are immutable and comparable by
// value for the Indexed case; Named dimensions should be compared with
// Equal since they carry a map.
type Dimension struct {
	kind     Kind
	name     string
	elements []string       // Named only; len(elements) == size
	index    map[string]int // Named only: element name -> 1-based position
	size     int
	// subrangeOf is the parent dimension name this dimension was sliced
	// from, or "" if this dimension was declared directly.
	subrangeOf string
}

// NewNamed constructs a Named dimension from an ordered list of element
// labels. Positions are assigned 1-based, matching the subscript semantics
// in spec.md §4.1.
func NewNamed(name string, elements []string) Dimension {
	idx := make(map[string]int, len(elements))
	for i, e := range elements {
		idx[e] = i + 1
	}
	return Dimension{kind: Named, name: name, elements: elements, index: idx, size: len(elements)}
}

// NewIndexed constructs an Indexed dimension of the given size.
func NewIndexed(name string, size int) Dimension {
	return Dimension{kind: Indexed, name: name, size: size}
}

// Name returns the dimension's declared name.
func (d Dimension) Name() string { return d.name }

// Kind returns whether this dimension is Named or Indexed.
func (d Dimension) Kind() Kind { return d.kind }

// Len returns the number of elements along this dimension.
func (d Dimension) Len() int { return d.size }

// Elements returns the ordered element labels of a Named dimension, or nil
// for an Indexed one.
func (d Dimension) Elements() []string { return d.elements }

// PositionOf returns the 1-based position of a named element, and whether
// it was found. Always false for an Indexed dimension.
func (d Dimension) PositionOf(element string) (int, bool) {
	if d.kind != Named {
		return 0, false
	}
	p, ok := d.index[element]
	return p, ok
}

// ShapeCompatible reports whether two dimensions have equal length, the
// weaker of the two equivalences spec.md §3 defines.
func (d Dimension) ShapeCompatible(other Dimension) bool {
	return d.size == other.size
}

// Equal reports whether two dimensions have the same name and, for Named
// dimensions, the same element list in the same order.
func (d Dimension) Equal(other Dimension) bool {
	if d.kind != other.kind || d.name != other.name || d.size != other.size {
		return false
	}
	if d.kind == Indexed {
		return true
	}
	for i := range d.elements {
		if d.elements[i] != other.elements[i] {
			return false
		}
	}
	return true
}

// Slice returns the subrange dimension covering elements [start, end) of d,
// as described by spec.md §4.1's Range subscript: named "parent[start:end]",
// with a recomputed 1-based index for a Named parent.
func (d Dimension) Slice(start, end int) (Dimension, error) {
	if start < 0 || end > d.size || start >= end {
		return Dimension{}, fmt.Errorf("dimension: invalid slice [%d:%d) of %q (len %d)", start, end, d.name, d.size)
	}
	name := fmt.Sprintf("%s[%d:%d]", d.name, start, end)
	if d.kind == Indexed {
		out := NewIndexed(name, end-start)
		out.subrangeOf = d.name
		return out, nil
	}
	out := NewNamed(name, append([]string(nil), d.elements[start:end]...))
	out.subrangeOf = d.name
	return out, nil
}

// IsSubrangeOf reports whether d was produced as a slice of a dimension with
// the given name.
func (d Dimension) IsSubrangeOf(parentName string) bool {
	return d.subrangeOf == parentName
}

// Registry tracks, across a whole project, which dimensions are subranges
// of another (spec.md §3: "The set of subrange dimensions is tracked
// globally"). It is backed by a bitset over a dense per-project dimension
// index, mirroring how go-corset's register allocator tracks column-index
// membership sets densely rather than with a map.
type Registry struct {
	names    []string
	indexOf  map[string]int
	subrange bitset.BitSet
}

// NewRegistry constructs an empty dimension registry.
func NewRegistry() *Registry {
	return &Registry{indexOf: make(map[string]int)}
}

// Declare registers a dimension, recording whether it is a subrange.
func (r *Registry) Declare(d Dimension) int {
	if i, ok := r.indexOf[d.name]; ok {
		return i
	}
	i := len(r.names)
	r.names = append(r.names, d.name)
	r.indexOf[d.name] = i
	if d.subrangeOf != "" {
		r.subrange.Set(uint(i))
	}
	return i
}

// IsSubrange reports whether the named dimension was declared as a subrange
// of another dimension.
func (r *Registry) IsSubrange(name string) bool {
	i, ok := r.indexOf[name]
	if !ok {
		return false
	}
	return r.subrange.Test(uint(i))
}
