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

package resolved_test

import (
	"testing"

	"github.com/sdlabs/sdcore/pkg/builtin"
	"github.com/sdlabs/sdcore/pkg/common"
	"github.com/sdlabs/sdcore/pkg/raw"
	"github.com/sdlabs/sdcore/pkg/resolved"
	"github.com/stretchr/testify/require"
)

func scopeWith(names ...string) *resolved.Scope {
	set := map[common.Ident]bool{}
	for _, n := range names {
		set[common.Canonicalize(common.RawIdent(n))] = true
	}
	return resolved.NewScope(common.Ident("main"), set)
}

func TestResolveVarBindsCanonicalName(t *testing.T) {
	scope := scopeWith("Birth Rate")
	r, diags := resolved.Resolve(raw.NewVar("Birth Rate", common.NewSpan(0, 10)), scope)
	require.Empty(t, diags)
	v, ok := r.(resolved.Var)
	require.True(t, ok)
	require.Equal(t, common.Ident("birth_rate"), v.Name)
}

func TestResolveVarUnknownReportsDiagnostic(t *testing.T) {
	scope := scopeWith("Population")
	_, diags := resolved.Resolve(raw.NewVar("Populaiton", common.NewSpan(0, 10)), scope)
	require.Len(t, diags, 1)
	require.Equal(t, common.UnknownIdent, diags[0].Kind)
	require.True(t, diags[0].Blocking())
}

func TestResolvePortSubstitutesParentExpr(t *testing.T) {
	scope := scopeWith("capacity")
	parentRef := resolved.NewVar(common.Ident("max_capacity"), common.NewSpan(0, 0))
	scope.BindPort(common.Ident("capacity"), parentRef)

	r, diags := resolved.Resolve(raw.NewVar("Capacity", common.NewSpan(0, 8)), scope)
	require.Empty(t, diags)
	v, ok := r.(resolved.Var)
	require.True(t, ok)
	require.Equal(t, common.Ident("max_capacity"), v.Name)
}

func TestResolveAppRecursesIntoArgsAndAccumulatesDiagnostics(t *testing.T) {
	scope := scopeWith("a")
	app := raw.NewApp(builtin.Add, []raw.Expr{
		raw.NewVar("a", common.NewSpan(0, 1)),
		raw.NewVar("bogus", common.NewSpan(2, 7)),
	}, common.NewSpan(0, 7))

	r, diags := resolved.Resolve(app, scope)
	require.Len(t, diags, 1)
	a, ok := r.(resolved.App)
	require.True(t, ok)
	require.Equal(t, builtin.Add, a.Fn)
	require.Len(t, a.Args, 2)
}

func TestResolveSubscriptResolvesBaseAndIndices(t *testing.T) {
	scope := scopeWith("Inventory")
	sub := raw.NewSubscript("Inventory", []raw.Index{
		{Kind: raw.IdxWildcard},
		{Kind: raw.IdxRange,
			RangeLo: raw.NewConst(1, "1", common.NewSpan(0, 1)),
			RangeHi: raw.NewConst(3, "3", common.NewSpan(2, 3))},
	}, common.NewSpan(0, 20))

	r, diags := resolved.Resolve(sub, scope)
	require.Empty(t, diags)
	s, ok := r.(resolved.Subscript)
	require.True(t, ok)
	require.Equal(t, common.Ident("inventory"), s.Base)
	require.Len(t, s.Indices, 2)
	require.Equal(t, resolved.IdxWildcard, s.Indices[0].Kind)
	require.Equal(t, resolved.IdxRange, s.Indices[1].Kind)
}

func TestResolveIfRecursesIntoAllBranches(t *testing.T) {
	scope := scopeWith("switch_on")
	cond := raw.NewVar("Switch On", common.NewSpan(3, 9))
	then := raw.NewConst(1, "1", common.NewSpan(13, 14))
	els := raw.NewConst(0, "0", common.NewSpan(20, 21))

	r, diags := resolved.Resolve(raw.NewIf(cond, then, els, common.NewSpan(0, 21)), scope)
	require.Empty(t, diags)
	i, ok := r.(resolved.If)
	require.True(t, ok)
	require.Equal(t, resolved.Const{Value: 1}, setSpanZero(i.Then))
	require.Equal(t, resolved.Const{Value: 0}, setSpanZero(i.Else))
}

func setSpanZero(e resolved.Expr) resolved.Expr {
	if c, ok := e.(resolved.Const); ok {
		return resolved.NewConst(c.Value, common.Span{})
	}
	return e
}
