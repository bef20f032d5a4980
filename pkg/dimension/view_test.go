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

package dimension_test

import (
	"testing"

	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/stretchr/testify/require"
)

func TestContiguousIterMatchesBuffer(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("r", 2), dimension.NewIndexed("c", 3))
	buf := []float64{1, 2, 3, 4, 5, 6}
	require.Equal(t, buf, v.Values(buf))
	require.Equal(t, 6, v.Size())
	require.True(t, v.IsContiguous())
}

func TestTransposeTwiceIsIdentity(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("r", 2), dimension.NewIndexed("c", 3))
	buf := []float64{1, 2, 3, 4, 5, 6}

	transposed := v.Transpose()
	require.Equal(t, []float64{1, 4, 2, 5, 3, 6}, transposed.Values(buf))

	back := transposed.Transpose()
	require.Equal(t, v.Values(buf), back.Values(buf))
}

func TestScalarViewYieldsOneElement(t *testing.T) {
	v := dimension.NewContiguous()
	buf := []float64{42}
	require.Equal(t, 1, v.Size())
	require.Equal(t, []float64{42}, v.Values(buf))
}

func TestZeroLengthDimYieldsNoElements(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("empty", 0), dimension.NewIndexed("c", 3))
	require.Equal(t, 0, v.Size())
	require.Empty(t, v.Values([]float64{1, 2, 3}))
}

func TestIterCountMatchesSize(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("a", 3), dimension.NewIndexed("b", 4))
	count := 0
	it := v.Iter()
	for {
		if _, ok := it.Next(); !ok {
			break
		}
		count++
	}
	require.Equal(t, v.Size(), count)
}
