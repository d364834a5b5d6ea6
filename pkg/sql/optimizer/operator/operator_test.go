// Copyright 2021 - 2025 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/function"
)

func newAgg(t *testing.T) (*Operator, *ColumnRef, *ColumnRef) {
	factory := NewColumnRefFactory()
	k := factory.Create("k", types.New(types.T_int64), true)
	x := factory.Create("x", types.New(types.T_int64), true)

	fn, err := function.GetBuiltinFunction(function.Sum, []types.Type{x.Typ})
	require.NoError(t, err)
	call := NewCall(function.Sum, fn.ReturnType, []ScalarOperator{x}, fn)
	out := factory.Create("sum(x)", fn.ReturnType, true)

	return NewAggregate(AggGlobal, []*ColumnRef{k}, []AggMapping{{Ref: out, Call: call}}), k, out
}

func TestAggregationPatchLeavesOriginalUntouched(t *testing.T) {
	agg, _, _ := newAgg(t)
	agg.Limit = 7

	local := AggLocal
	patched := AggregationPatch{
		AggType:   &local,
		MarkSplit: true,
		DropLimit: true,
	}.Apply(agg)

	require.Equal(t, AggLocal, patched.Aggregation.AggType)
	require.True(t, patched.Aggregation.IsSplit)
	require.False(t, patched.HasLimit())

	require.Equal(t, AggGlobal, agg.Aggregation.AggType)
	require.False(t, agg.Aggregation.IsSplit)
	require.Equal(t, int64(7), agg.Limit)
}

func TestAggregationPatchSetsEmptyValues(t *testing.T) {
	agg, _, _ := newAgg(t)

	empty := []*ColumnRef{}
	patched := AggregationPatch{GroupingKeys: &empty}.Apply(agg)
	require.Empty(t, patched.Aggregation.GroupingKeys)
	require.Len(t, agg.Aggregation.GroupingKeys, 1)

	// a nil patch field leaves the value alone
	same := AggregationPatch{}.Apply(agg)
	require.Len(t, same.Aggregation.GroupingKeys, 1)
}

func TestFingerprintCoversAttributes(t *testing.T) {
	agg, _, _ := newAgg(t)

	local := AggLocal
	split := AggregationPatch{AggType: &local, MarkSplit: true}.Apply(agg)
	require.NotEqual(t, agg.Fingerprint(), split.Fingerprint())

	limited := AggregationPatch{}.Apply(agg)
	limited.Limit = 10
	require.NotEqual(t, agg.Fingerprint(), limited.Fingerprint())

	require.Equal(t, agg.Fingerprint(), AggregationPatch{}.Apply(agg).Fingerprint())
}

func TestCallFingerprintDistinguishesDistinct(t *testing.T) {
	factory := NewColumnRefFactory()
	x := factory.Create("x", types.New(types.T_int64), true)

	fn, err := function.GetBuiltinFunction(function.Count, []types.Type{x.Typ})
	require.NoError(t, err)
	plain := NewCall(function.Count, fn.ReturnType, []ScalarOperator{x}, fn)
	distinct := NewDistinctCall(function.Count, fn.ReturnType, []ScalarOperator{x}, fn)

	require.NotEqual(t, plain.Fingerprint(), distinct.Fingerprint())
}

func TestColumnRefEqualityIsIdentity(t *testing.T) {
	a := NewColumnRef(3, types.New(types.T_int64), "a", true)
	// same slot re-typed to intermediate state is still the same column
	b := NewColumnRef(3, types.New(types.T_varbinary), "a", true)
	c := NewColumnRef(4, types.New(types.T_int64), "a", true)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestReplaceColumnRefs(t *testing.T) {
	factory := NewColumnRefFactory()
	x := factory.Create("x", types.New(types.T_int64), true)
	y := factory.Create("y", types.New(types.T_int64), true)

	fn, err := function.GetBuiltinFunction(function.Sum, []types.Type{x.Typ})
	require.NoError(t, err)
	call := NewCall(function.Sum, fn.ReturnType, []ScalarOperator{x}, fn)

	replaced := ReplaceColumnRefs(call, map[int]ScalarOperator{
		x.ID: NewConstant(int64(1), x.Typ),
	})
	require.True(t, replaced.IsConstant())
	// the original call is untouched
	require.False(t, call.IsConstant())

	kept := ReplaceColumnRefs(call, map[int]ScalarOperator{y.ID: y})
	require.Equal(t, call.Fingerprint(), kept.Fingerprint())
}

func TestFactoryMintsUniqueIDs(t *testing.T) {
	factory := NewColumnRefFactory()
	a := factory.Create("a", types.New(types.T_int64), true)
	b := factory.Create("b", types.New(types.T_int64), true)

	require.NotEqual(t, a.ID, b.ID)
	require.Same(t, a, factory.ColumnRef(a.ID))
	require.Nil(t, factory.ColumnRef(999))
}

func TestProjectionLookup(t *testing.T) {
	factory := NewColumnRefFactory()
	c := factory.Create("c", types.New(types.T_int64), false)
	d := factory.Create("d", types.New(types.T_int64), true)

	proj := NewProjection([]ProjectionItem{
		{Ref: c, Expr: NewConstant(int64(1), c.Typ)},
		{Ref: d, Expr: d},
	})

	expr, ok := proj.ExprFor(c)
	require.True(t, ok)
	require.True(t, expr.IsConstant())

	_, ok = proj.ExprFor(factory.Create("e", types.New(types.T_int64), true))
	require.False(t, ok)

	require.Equal(t, []int{c.ID, d.ID}, proj.OutputColumns().ColumnIDs())
}
