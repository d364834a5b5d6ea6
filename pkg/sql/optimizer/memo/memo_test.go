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

package memo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/statistics"
)

func testColumn(id int, name string) *operator.ColumnRef {
	return operator.NewColumnRef(id, types.New(types.T_int64), name, true)
}

func scanExpr(table string, cols ...*operator.ColumnRef) *OptExpression {
	return NewOptExpression(operator.NewScan(table, cols, false))
}

func TestInsertDeduplicates(t *testing.T) {
	k := testColumn(1, "k")

	m := New()
	first := m.Init(NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))),
		scanExpr("t", k)))

	again := m.CopyIn(NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))),
		scanExpr("t", k)), InvalidGroupID)

	require.Equal(t, first, again)
	require.Equal(t, 2, m.GroupCount())
	require.Len(t, m.RootGroup().Expressions(), 1)
}

func TestSharedSubtreeReusesGroup(t *testing.T) {
	k := testColumn(1, "k")
	x := testColumn(2, "x")

	m := New()
	m.Init(NewOptExpression(
		operator.NewJoin(operator.InnerJoin, nil),
		scanExpr("t", k),
		scanExpr("t", k)))

	// both join children collapse into one scan group
	require.Equal(t, 2, m.GroupCount())
	root := m.RootGroup().First()
	require.Equal(t, root.Child(0), root.Child(1))

	// a different scan gets its own group
	m.CopyIn(scanExpr("u", x), InvalidGroupID)
	require.Equal(t, 3, m.GroupCount())
}

func TestCopyInMergesIntoTargetGroup(t *testing.T) {
	k := testColumn(1, "k")

	m := New()
	m.Init(NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))),
		scanExpr("t", k)))

	root := m.RootGroup()
	before := len(root.Expressions())

	alternative := NewOptExpression(
		operator.NewFilter(operator.NewConstant(false, types.New(types.T_bool))),
		scanExpr("t", k))
	got := m.CopyIn(alternative, root.ID())
	require.Equal(t, root.ID(), got)
	require.Equal(t, before+1, len(root.Expressions()))

	// inserting the same alternative again changes nothing
	again := NewOptExpression(
		operator.NewFilter(operator.NewConstant(false, types.New(types.T_bool))),
		scanExpr("t", k))
	m.CopyIn(again, root.ID())
	require.Equal(t, before+1, len(root.Expressions()))
}

func TestCopyInRefusesCrossGroupMerge(t *testing.T) {
	k := testColumn(1, "k")

	m := New()
	m.Init(NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))),
		scanExpr("t", k)))

	// the scan already owns its own group; merging it into the root
	// group would alias two inequivalent groups in the index
	require.Panics(t, func() {
		m.CopyIn(scanExpr("t", k), m.RootGroupID())
	})
}

func TestDeriveLogicalPropertyIdempotent(t *testing.T) {
	k := testColumn(1, "k")
	x := testColumn(2, "x")
	expr := NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))),
		scanExpr("t", k, x))

	first := expr.DeriveLogicalProperty()
	second := expr.DeriveLogicalProperty()
	require.Equal(t, first.OutputColumns.String(), second.OutputColumns.String())
	require.Equal(t, []int{1, 2}, first.OutputColumns.ColumnIDs())
}

func TestDerivePanicsOnArityMismatch(t *testing.T) {
	// a filter without its child is a rule contract breach
	expr := NewOptExpression(operator.NewFilter(nil))
	require.Panics(t, func() {
		expr.DeriveLogicalProperty()
	})
}

func TestSinglePartitionPropagates(t *testing.T) {
	k := testColumn(1, "k")

	single := NewOptExpression(
		operator.NewFilter(nil),
		NewOptExpression(operator.NewScan("t", []*operator.ColumnRef{k}, true)))
	require.True(t, single.DeriveLogicalProperty().ExecuteInSinglePartition)

	mixed := NewOptExpression(
		operator.NewJoin(operator.InnerJoin, nil),
		NewOptExpression(operator.NewScan("t", []*operator.ColumnRef{k}, true)),
		scanExpr("u", testColumn(2, "x")))
	require.False(t, mixed.DeriveLogicalProperty().ExecuteInSinglePartition)
}

func TestDeriveStatisticsFillsEveryGroup(t *testing.T) {
	k := testColumn(1, "k")

	m := New()
	m.Init(NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))),
		scanExpr("t", k)))

	est := statistics.NewDefaultEstimator(0.25)
	est.RegisterTable("t", &statistics.TableStatistics{
		RowCount: 1000,
		Columns: map[string]*statistics.ColumnStatistic{
			"k": statistics.NewColumnStatistic(0, 100, 0, 100),
		},
	})
	m.DeriveStatistics(est)

	for gid := 0; gid < m.GroupCount(); gid++ {
		require.NotNil(t, m.Group(GroupID(gid)).Statistics())
	}
	require.Equal(t, float64(250), m.RootGroup().Statistics().OutputRowCount)
}

func TestExplainShape(t *testing.T) {
	k := testColumn(1, "k")
	expr := NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))),
		scanExpr("lineitem", k))

	out := expr.Explain()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "FILTER", lines[0])
	require.Equal(t, "->  SCAN(lineitem)", lines[1])
}

func TestMemoString(t *testing.T) {
	k := testColumn(1, "k")
	m := New()
	m.Init(scanExpr("t", k))

	out := m.String()
	require.Contains(t, out, "group #0 (root)")
	require.Contains(t, out, "SCAN")
}
