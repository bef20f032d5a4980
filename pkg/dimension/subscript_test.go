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

func TestSubscriptWildcardPreservesDim(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("r", 2), dimension.NewIndexed("c", 3))
	out, dyn, err := dimension.Subscript(v, []dimension.Index{dimension.Wildcard(), dimension.Element(2)})
	require.NoError(t, err)
	require.Empty(t, dyn)
	require.Equal(t, 2, out.Size())
	require.Equal(t, []float64{2, 5}, out.Values([]float64{1, 2, 3, 4, 5, 6}))
}

func TestSubscriptRangeCreatesSubrange(t *testing.T) {
	named := dimension.NewNamed("region", []string{"north", "south", "east", "west"})
	v := dimension.NewContiguous(named)
	out, _, err := dimension.Subscript(v, []dimension.Index{dimension.Range(1, 3)})
	require.NoError(t, err)
	require.Equal(t, 2, out.Size())
	require.Equal(t, []float64{20, 30}, out.Values([]float64{10, 20, 30, 40}))
}

func TestSubscriptDynamicIndexReported(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("r", 2), dimension.NewIndexed("c", 3))
	_, dyn, err := dimension.Subscript(v, []dimension.Index{dimension.Dynamic(), dimension.Wildcard()})
	require.NoError(t, err)
	require.Len(t, dyn, 1)
	require.Equal(t, 0, dyn[0].DimIndex)
	require.Equal(t, 3, dyn[0].Stride)
}

func TestSubscriptOutOfBoundsErrors(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("r", 2))
	_, _, err := dimension.Subscript(v, []dimension.Index{dimension.Element(5)})
	require.Error(t, err)
}

func TestSubscriptOfStridedViewFails(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("r", 2), dimension.NewIndexed("c", 3))
	transposed := v.Transpose()
	_, _, err := dimension.Subscript(transposed, []dimension.Index{dimension.Wildcard(), dimension.Wildcard()})
	require.Error(t, err)
}

func TestSubscriptArityMismatch(t *testing.T) {
	v := dimension.NewContiguous(dimension.NewIndexed("r", 2), dimension.NewIndexed("c", 3))
	_, _, err := dimension.Subscript(v, []dimension.Index{dimension.Wildcard()})
	require.Error(t, err)
}

func TestRegistryTracksSubranges(t *testing.T) {
	parent := dimension.NewIndexed("region", 4)
	child, err := parent.Slice(1, 3)
	require.NoError(t, err)

	reg := dimension.NewRegistry()
	reg.Declare(parent)
	reg.Declare(child)

	require.False(t, reg.IsSubrange("region"))
	require.True(t, reg.IsSubrange(child.Name()))
}
