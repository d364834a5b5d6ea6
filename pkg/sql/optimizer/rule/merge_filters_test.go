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

package rule

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
)

func boolConst(v bool) operator.ScalarOperator {
	return operator.NewConstant(v, types.New(types.T_bool))
}

func TestMergeTwoFilters(t *testing.T) {
	ctx := newTestContext(t, 0)
	k := ctx.ColumnRefFactory.Create("k", bigint(), true)

	scan := memo.NewOptExpression(operator.NewScan("t", []*operator.ColumnRef{k}, false))
	inner := memo.NewOptExpression(operator.NewFilter(boolConst(true)), scan)
	outer := memo.NewOptExpression(operator.NewFilter(boolConst(false)), inner)

	outer.DeriveLogicalProperty()
	m := memo.New()
	m.Init(outer)
	m.DeriveStatistics(ctx.Estimator)
	require.NoError(t, NewEngine(NewMergeTwoFiltersRule()).Apply(ctx, m))

	root := m.RootGroup()
	require.Len(t, root.Expressions(), 2)

	fused := root.Expressions()[1]
	require.Equal(t, operator.LogicalFilter, fused.Op().Type)
	call, ok := fused.Op().Predicate.(*operator.Call)
	require.True(t, ok)
	require.Equal(t, "and", call.FnName)

	// the fused filter sits directly on the scan group
	child := m.Group(fused.Child(0)).First()
	require.Equal(t, operator.LogicalScan, child.Op().Type)
}

func TestMergeFiltersBlockedByInnerLimit(t *testing.T) {
	ctx := newTestContext(t, 0)
	k := ctx.ColumnRefFactory.Create("k", bigint(), true)

	scan := memo.NewOptExpression(operator.NewScan("t", []*operator.ColumnRef{k}, false))
	innerOp := operator.NewFilter(boolConst(true))
	innerOp.Limit = 5
	inner := memo.NewOptExpression(innerOp, scan)
	outer := memo.NewOptExpression(operator.NewFilter(boolConst(false)), inner)

	outer.DeriveLogicalProperty()
	m := memo.New()
	m.Init(outer)
	m.DeriveStatistics(ctx.Estimator)
	require.NoError(t, NewEngine(NewMergeTwoFiltersRule()).Apply(ctx, m))
	require.Len(t, m.RootGroup().Expressions(), 1)
}

func TestPatternMatching(t *testing.T) {
	ctx := newTestContext(t, 0)
	k := ctx.ColumnRefFactory.Create("k", bigint(), true)

	scan := memo.NewOptExpression(operator.NewScan("t", []*operator.ColumnRef{k}, false))
	filter := memo.NewOptExpression(operator.NewFilter(boolConst(true)), scan)

	require.True(t, PatternAny().Match(filter))
	require.True(t, NewPattern(operator.LogicalFilter).Match(filter))
	require.True(t, NewPattern(operator.LogicalFilter, PatternAny()).Match(filter))
	require.True(t, NewPattern(operator.LogicalFilter,
		NewPattern(operator.LogicalScan)).Match(filter))

	require.False(t, NewPattern(operator.LogicalAggregate).Match(filter))
	require.False(t, NewPattern(operator.LogicalFilter,
		NewPattern(operator.LogicalAggregate)).Match(filter))

	// a leaf pattern never descends: the scan's absence of children is
	// irrelevant to the ANY leaf above it
	require.True(t, NewPattern(operator.LogicalFilter, PatternAny()).Match(
		memo.NewOptExpression(operator.NewFilter(nil),
			memo.NewOptExpression(operator.NewFilter(nil), scan))))
}
