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

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopoSortOrdersByDependency(t *testing.T) {
	nodes := []string{"c", "a", "b"}
	deps := map[string][]string{
		"b": {"a"},
		"c": {"b"},
	}
	order, cyc := topoSort(nodes, deps)
	assert.Empty(t, cyc)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopoSortBreaksTiesByName(t *testing.T) {
	nodes := []string{"z", "y", "x"}
	order, cyc := topoSort(nodes, map[string][]string{})
	assert.Empty(t, cyc)
	assert.Equal(t, []string{"x", "y", "z"}, order)
}

func TestTopoSortIgnoresDependencyOutsideNodeSet(t *testing.T) {
	nodes := []string{"flow"}
	deps := map[string][]string{"flow": {"stock"}}
	order, cyc := topoSort(nodes, deps)
	assert.Empty(t, cyc)
	assert.Equal(t, []string{"flow"}, order)
}

func TestTopoSortIgnoresSelfDependency(t *testing.T) {
	nodes := []string{"a"}
	deps := map[string][]string{"a": {"a"}}
	order, cyc := topoSort(nodes, deps)
	assert.Empty(t, cyc)
	assert.Equal(t, []string{"a"}, order)
}

func TestTopoSortReportsCycle(t *testing.T) {
	nodes := []string{"a", "b"}
	deps := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	order, cyc := topoSort(nodes, deps)
	assert.Empty(t, order)
	assert.Equal(t, []string{"a", "b"}, cyc)
}
