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

package dimension

import "fmt"

// IndexKind distinguishes the five subscript forms spec.md §4.1 describes.
type IndexKind int

// The subscript forms a single dimension index can take.
const (
	// IndexWildcard ("*") preserves the dimension with its original stride.
	IndexWildcard IndexKind = iota
	// IndexElement drops the dimension, contributing (pos-1)*stride to the
	// view's offset, where pos is either a named element's 1-based
	// position or a resolved compile-time integer.
	IndexElement
	// IndexDynamic also drops the dimension, but the index is only known
	// at evaluation time; RuntimePos must be supplied by the caller when
	// materializing the view for a particular evaluation.
	IndexDynamic
	// IndexRange creates a new subrange dimension spanning [Start, End).
	IndexRange
	// IndexStarRange is parsed but, per spec.md's Open Questions, always an
	// error in a read context in the current core.
	IndexStarRange
	// IndexDimPosition is only valid on the left-hand side of an arrayed
	// equation; using it to read a view is always an error.
	IndexDimPosition
)

// Index is one resolved subscript index, one per dimension of the view
// being subscripted. The typed IR layer is responsible for resolving a raw
// subscript expression into one of these forms (element-name match,
// const-int evaluation, or "give up, it's dynamic") before calling
// Subscript; this package only implements the resulting mechanics.
type Index struct {
	Kind IndexKind
	// Pos is the resolved 1-based element position, valid for IndexElement.
	Pos int
	// Start, End bound an IndexRange, 0 <= Start < End <= dim length.
	Start, End int
	// DimPositionArg is the argument to a DimPosition marker.
	DimPositionArg int
}

// Wildcard constructs a wildcard index.
func Wildcard() Index { return Index{Kind: IndexWildcard} }

// Element constructs a resolved element index at 1-based position pos.
func Element(pos int) Index { return Index{Kind: IndexElement, Pos: pos} }

// Dynamic constructs a dynamic (runtime-resolved) element index.
func Dynamic() Index { return Index{Kind: IndexDynamic} }

// Range constructs a range index over [start, end).
func Range(start, end int) Index { return Index{Kind: IndexRange, Start: start, End: end} }

// DynamicOffset describes one dimension of a Subscript result whose element
// position could not be resolved at compile time: the caller must evaluate
// an expression at runtime to obtain the 1-based position, then add
// (pos-1)*Stride to the view's base offset before reading.
type DynamicOffset struct {
	// DimIndex is the position (0-based, in the *input* view's dimension
	// list) of the dimension this offset corresponds to.
	DimIndex int
	Stride   int
}

// Subscript applies one Index per dimension of v, returning the resulting
// view plus the list of dimensions whose position could only be resolved
// dynamically (spec.md §4.1). Subscripting a Strided view is unsupported in
// the current core (spec.md's Open Questions) and always fails; compose
// subscripts on a Contiguous base instead.
func Subscript(v View, indices []Index) (View, []DynamicOffset, error) {
	if len(indices) != len(v.dims) {
		return View{}, nil, fmt.Errorf("dimension: subscript arity mismatch: view has %d dims, got %d indices", len(v.dims), len(indices))
	}
	if !v.IsContiguous() {
		return View{}, nil, fmt.Errorf("dimension: cannot subscript a non-contiguous (strided) view")
	}

	strides := rowMajorStrides(v.dims)
	offset := v.offset

	var outDims []Dimension
	var outStrides []int
	var dyn []DynamicOffset

	for i, idx := range indices {
		d := v.dims[i]
		switch idx.Kind {
		case IndexWildcard:
			outDims = append(outDims, d)
			outStrides = append(outStrides, strides[i])
		case IndexElement:
			if idx.Pos < 1 || idx.Pos > d.Len() {
				return View{}, nil, fmt.Errorf("dimension: index %d out of bounds for dimension %q (len %d)", idx.Pos, d.Name(), d.Len())
			}
			offset += (idx.Pos - 1) * strides[i]
		case IndexDynamic:
			dyn = append(dyn, DynamicOffset{DimIndex: i, Stride: strides[i]})
		case IndexRange:
			if idx.Start < 0 || idx.End > d.Len() || idx.Start >= idx.End {
				return View{}, nil, fmt.Errorf("dimension: invalid range [%d:%d) of dimension %q (len %d)", idx.Start, idx.End, d.Name(), d.Len())
			}
			sliced, err := d.Slice(idx.Start, idx.End)
			if err != nil {
				return View{}, nil, err
			}
			outDims = append(outDims, sliced)
			outStrides = append(outStrides, strides[i])
			offset += idx.Start * strides[i]
		case IndexStarRange:
			return View{}, nil, fmt.Errorf("dimension: TodoStarRange: star-range subscripts are not executable in a read context")
		case IndexDimPosition:
			return View{}, nil, fmt.Errorf("dimension: dimension-position markers are only valid on the left-hand side of an arrayed equation")
		default:
			return View{}, nil, fmt.Errorf("dimension: unknown index kind %d", idx.Kind)
		}
	}

	if outDims == nil {
		// every dimension was dropped: a scalar view
		return NewStrided(nil, nil, offset), dyn, nil
	}
	return NewStrided(outDims, outStrides, offset), dyn, nil
}
