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

// View describes how to read a flat []float64 buffer as an N-dimensional
// array (spec.md §3's ArrayView). A View never owns its storage: it is a
// plain value, copied like an int, and the lifetime of the underlying
// buffer is the caller's responsibility.
//
// A View is Contiguous when strides is nil: row-major layout, offset 0,
// strides implied by the dimension lengths. Otherwise it is Strided: each
// dimension carries its own (possibly negative) stride in elements, plus a
// starting offset.
type View struct {
	dims    []Dimension
	strides []int // nil => contiguous, row-major, offset 0
	offset  int
}

// NewContiguous builds a Contiguous view over the given dimensions.
func NewContiguous(dims ...Dimension) View {
	return View{dims: append([]Dimension(nil), dims...)}
}

// NewStrided builds a Strided view with explicit per-dimension strides and a
// starting offset.
func NewStrided(dims []Dimension, strides []int, offset int) View {
	return View{
		dims:    append([]Dimension(nil), dims...),
		strides: append([]int(nil), strides...),
		offset:  offset,
	}
}

// Shape returns the length of each dimension, outermost first.
func (v View) Shape() []int {
	shape := make([]int, len(v.dims))
	for i, d := range v.dims {
		shape[i] = d.Len()
	}
	return shape
}

// Dims returns the view's dimensions.
func (v View) Dims() []Dimension { return v.dims }

// Offset returns the view's base offset into the backing buffer.
func (v View) Offset() int { return v.offset }

// Size returns the total element count: the product of all dimension
// lengths. A scalar (zero-dimension) view has size 1.
func (v View) Size() int {
	size := 1
	for _, d := range v.dims {
		size *= d.Len()
	}
	return size
}

// rowMajorStrides computes the implied strides of a contiguous, row-major
// layout over the given dimension lengths: the last dimension has stride 1,
// and each earlier dimension's stride is the product of the lengths of all
// dimensions to its right.
func rowMajorStrides(dims []Dimension) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i].Len()
	}
	return strides
}

// Strides returns this view's effective per-dimension strides, computing
// the implied row-major strides for a Contiguous view.
func (v View) Strides() []int {
	if v.strides != nil {
		return v.strides
	}
	return rowMajorStrides(v.dims)
}

// IsContiguous reports whether this view reads a contiguous row-major block
// starting at offset 0: true unconditionally for the Contiguous variant,
// and for a Strided view only when its offset is 0 and its strides equal
// the implied row-major strides.
func (v View) IsContiguous() bool {
	if v.strides == nil {
		return true
	}
	if v.offset != 0 {
		return false
	}
	want := rowMajorStrides(v.dims)
	for i := range want {
		if v.strides[i] != want[i] {
			return false
		}
	}
	return true
}

// Transpose returns a Strided view with dimensions and strides reversed. A
// Contiguous view first has its implied row-major strides materialized,
// then both dims and strides are reversed. Transpose is its own inverse:
// transposing twice reconstructs the original dims, strides and offset.
func (v View) Transpose() View {
	strides := v.Strides()
	n := len(v.dims)
	rdims := make([]Dimension, n)
	rstrides := make([]int, n)
	for i := 0; i < n; i++ {
		rdims[i] = v.dims[n-1-i]
		rstrides[i] = strides[n-1-i]
	}
	return NewStrided(rdims, rstrides, v.offset)
}

// Iterator yields the logical row-major sequence of flat-buffer offsets a
// view covers: a per-dimension index counter increments the rightmost axis
// fastest and carries into earlier axes on overflow. A scalar (zero-shape)
// view yields exactly one offset; a view with any zero-length dimension
// yields none.
type Iterator struct {
	v       View
	strides []int
	counter []int
	offset  int
	done    bool
	started bool
}

// Iter constructs an Iterator over v's logical elements.
func (v View) Iter() *Iterator {
	it := &Iterator{
		v:       v,
		strides: v.Strides(),
		counter: make([]int, len(v.dims)),
		offset:  v.offset,
	}
	for _, d := range v.dims {
		if d.Len() == 0 {
			it.done = true
		}
	}
	return it
}

// Next advances the iterator and returns the flat-buffer offset of the next
// element, or ok=false when exhausted.
func (it *Iterator) Next() (offset int, ok bool) {
	if it.done {
		return 0, false
	}
	if !it.started {
		it.started = true
		return it.offset, true
	}
	// Increment the rightmost axis fastest, carrying left on overflow.
	for i := len(it.v.dims) - 1; i >= 0; i-- {
		it.counter[i]++
		it.offset += it.strides[i]
		if it.counter[i] < it.v.dims[i].Len() {
			return it.offset, true
		}
		// carry: reset this axis, undo its stride contribution
		it.offset -= it.counter[i] * it.strides[i]
		it.counter[i] = 0
	}
	it.done = true
	return 0, false
}

// Values reads every element a view covers from buf, in logical row-major
// order.
func (v View) Values(buf []float64) []float64 {
	out := make([]float64, 0, v.Size())
	it := v.Iter()
	for {
		off, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, buf[off])
	}
	return out
}
