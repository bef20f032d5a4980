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

package project_test

import (
	"testing"

	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/dimension"
	"github.com/sdlabs/sdcore/pkg/project"
	"github.com/stretchr/testify/require"
)

func TestBuildOffsetTableReservesTimePseudoVarsFirst(t *testing.T) {
	table := project.BuildOffsetTable(nil, nil)
	require.Equal(t, 0, table.TimeOffset)
	require.Equal(t, 1, table.DtOffset)
	require.Equal(t, 2, table.StartTimeOffset)
	require.Equal(t, 3, table.FinalTimeOffset)
	require.Equal(t, 4, table.Total)
}

func TestBuildOffsetTableSizesArraysAndIsDeterministic(t *testing.T) {
	views := map[common.Ident]dimension.View{
		"inventory": dimension.NewContiguous(dimension.NewIndexed("region", 3)),
	}
	names := []common.Ident{"population", "inventory", "births"}

	a := project.BuildOffsetTable(names, views)
	b := project.BuildOffsetTable(names, views)

	require.Equal(t, a.Slots, b.Slots)
	require.Equal(t, 1, a.Slots["population"].Count)
	require.Equal(t, 3, a.Slots["inventory"].Count)

	require.Less(t, a.Slots["births"].Start, a.Slots["inventory"].Start)
	require.Less(t, a.Slots["inventory"].Start, a.Slots["population"].Start)
	require.Equal(t, 4+1+3+1, a.Total)
}

func TestSimSpecsDtReciprocal(t *testing.T) {
	s := project.SimSpecs{DtKind: project.DtReciprocal, DtValue: 4}
	require.Equal(t, 0.25, s.Dt())

	lit := project.SimSpecs{DtKind: project.DtLiteral, DtValue: 0.25}
	require.Equal(t, 0.25, lit.Dt())
}
