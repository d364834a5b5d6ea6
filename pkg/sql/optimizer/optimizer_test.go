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

package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/cascade/pkg/config"
	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/function"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/rule"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/statistics"
)

// Full pass over SELECT count(distinct id) FROM t WHERE ... GROUP BY k
// with stacked filters: the filters fuse and the aggregate splits, all
// alternatives accumulating in the same memo.
func TestOptimizePipeline(t *testing.T) {
	sv := config.DefaultSessionVariable()
	est := statistics.NewDefaultEstimator(sv.DefaultFilterSelectivity)
	est.RegisterTable("t", &statistics.TableStatistics{
		RowCount: 1_000_000,
		Columns: map[string]*statistics.ColumnStatistic{
			"k":  statistics.NewColumnStatistic(0, 10, 0, 10),
			"id": statistics.NewColumnStatistic(0, 1_000_000, 0, 1_000_000),
		},
	})
	ctx := rule.NewOptimizerContext(sv, est)

	k := ctx.ColumnRefFactory.Create("k", types.New(types.T_int64), true)
	id := ctx.ColumnRefFactory.Create("id", types.New(types.T_int64), true)

	scan := memo.NewOptExpression(operator.NewScan("t", []*operator.ColumnRef{k, id}, false))
	inner := memo.NewOptExpression(
		operator.NewFilter(operator.NewConstant(true, types.New(types.T_bool))), scan)
	outer := memo.NewOptExpression(
		operator.NewFilter(operator.NewConstant(false, types.New(types.T_bool))), inner)

	fn, err := function.GetBuiltinFunction(function.Count, []types.Type{id.Typ})
	require.NoError(t, err)
	call := operator.NewDistinctCall(function.Count, fn.ReturnType,
		[]operator.ScalarOperator{id}, fn)
	out := ctx.ColumnRefFactory.Create("count(distinct id)", fn.ReturnType, false)
	agg := memo.NewOptExpression(
		operator.NewAggregate(operator.AggGlobal, []*operator.ColumnRef{k},
			[]operator.AggMapping{{Ref: out, Call: call}}),
		outer)

	m, err := New().OptimizeWithContext(ctx, agg)
	require.NoError(t, err)

	// the aggregate group holds the original plus a split alternative
	var sawSplit bool
	for _, ge := range m.RootGroup().Expressions() {
		if ge.Op().Type == operator.LogicalAggregate && ge.Op().Aggregation.IsSplit {
			sawSplit = true
			require.Equal(t, operator.AggGlobal, ge.Op().Aggregation.AggType)
		}
	}
	require.True(t, sawSplit)

	// somewhere in the memo the two filters fused into one
	var sawFused bool
	for gid := 0; gid < m.GroupCount(); gid++ {
		for _, ge := range m.Group(memo.GroupID(gid)).Expressions() {
			if ge.Op().Type != operator.LogicalFilter {
				continue
			}
			if call, ok := ge.Op().Predicate.(*operator.Call); ok && call.FnName == "and" {
				sawFused = true
			}
		}
	}
	require.True(t, sawFused)

	// every group carries statistics for the downstream cost layer
	for gid := 0; gid < m.GroupCount(); gid++ {
		require.NotNil(t, m.Group(memo.GroupID(gid)).Statistics())
	}
}

func TestOptimizeDefaultsWhenContextOmitted(t *testing.T) {
	k := operator.NewColumnRef(1, types.New(types.T_int64), "k", true)
	scan := memo.NewOptExpression(operator.NewScan("t", []*operator.ColumnRef{k}, false))

	m, err := New().Optimize(scan, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, m.GroupCount())
	require.NotNil(t, m.RootGroup().Statistics())
}
