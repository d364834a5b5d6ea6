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

package statistics

import (
	"math"

	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
)

// Estimator derives one operator's output statistics from its
// children's. The optimizer calls it bottom-up, once per memo group.
type Estimator interface {
	Estimate(op *operator.Operator, children []*Statistics) *Statistics
}

// TableStatistics is the collected statistics of one table: row count
// plus per-column NDV sketches and value ranges, keyed by column name.
type TableStatistics struct {
	RowCount float64
	Columns  map[string]*ColumnStatistic
}

// DefaultEstimator estimates from a table-statistics registry. Tables
// without collected statistics yield unknown column statistics, which
// downstream planning treats conservatively.
type DefaultEstimator struct {
	tables map[string]*TableStatistics

	// FilterSelectivity is applied to predicates; the cost layer owns
	// smarter selectivity, this is the planning-time default.
	FilterSelectivity float64
}

func NewDefaultEstimator(filterSelectivity float64) *DefaultEstimator {
	return &DefaultEstimator{
		tables:            make(map[string]*TableStatistics),
		FilterSelectivity: filterSelectivity,
	}
}

// RegisterTable records collected statistics for a table.
func (e *DefaultEstimator) RegisterTable(name string, stats *TableStatistics) {
	e.tables[name] = stats
}

func (e *DefaultEstimator) Estimate(op *operator.Operator, children []*Statistics) *Statistics {
	switch op.Type {
	case operator.LogicalScan:
		return e.estimateScan(op)
	case operator.LogicalFilter:
		return e.estimateFilter(op, children)
	case operator.LogicalAggregate:
		return e.estimateAggregate(op, children)
	case operator.LogicalRepeat:
		return e.estimateRepeat(op, children)
	case operator.LogicalJoin:
		return e.estimateJoin(children)
	default:
		return passThrough(children)
	}
}

func passThrough(children []*Statistics) *Statistics {
	if len(children) == 0 {
		return NewStatistics(1)
	}
	out := NewStatistics(children[0].OutputRowCount)
	for id, cs := range children[0].ColumnStatistics {
		out.ColumnStatistics[id] = cs
	}
	return out
}

func (e *DefaultEstimator) estimateScan(op *operator.Operator) *Statistics {
	table, ok := e.tables[op.Scan.Table]
	if !ok {
		out := NewStatistics(1)
		for _, col := range op.Scan.Columns {
			out.ColumnStatistics[col.ID] = UnknownColumnStatistic()
		}
		return out
	}
	out := NewStatistics(table.RowCount)
	for _, col := range op.Scan.Columns {
		if cs, exist := table.Columns[col.Name]; exist {
			out.ColumnStatistics[col.ID] = cs
		} else {
			out.ColumnStatistics[col.ID] = UnknownColumnStatistic()
		}
	}
	return out
}

func (e *DefaultEstimator) estimateFilter(op *operator.Operator, children []*Statistics) *Statistics {
	in := passThrough(children)
	in.OutputRowCount = math.Max(1, in.OutputRowCount*e.FilterSelectivity)
	return in
}

// estimateAggregate caps the grouping-key NDV product by the input row
// count; no grouping keys means one output row.
func (e *DefaultEstimator) estimateAggregate(op *operator.Operator, children []*Statistics) *Statistics {
	in := passThrough(children)
	agg := op.Aggregation
	if len(agg.GroupingKeys) == 0 {
		out := NewStatistics(1)
		out.ColumnStatistics = in.ColumnStatistics
		return out
	}
	rows := 1.0
	unknown := false
	for _, key := range agg.GroupingKeys {
		cs := in.ColumnStatistic(key.ID)
		if cs.IsUnknown() {
			unknown = true
			break
		}
		rows *= math.Max(1, cs.DistinctCount)
	}
	if unknown {
		rows = in.OutputRowCount
	}
	out := NewStatistics(math.Min(rows, math.Max(1, in.OutputRowCount)))
	out.ColumnStatistics = in.ColumnStatistics
	return out
}

func (e *DefaultEstimator) estimateRepeat(op *operator.Operator, children []*Statistics) *Statistics {
	in := passThrough(children)
	sets := len(op.Repeat.RepeatColumnRefs)
	if sets < 1 {
		sets = 1
	}
	in.OutputRowCount *= float64(sets)
	return in
}

func (e *DefaultEstimator) estimateJoin(children []*Statistics) *Statistics {
	if len(children) < 2 {
		return passThrough(children)
	}
	out := NewStatistics(math.Max(children[0].OutputRowCount, children[1].OutputRowCount))
	for _, child := range children {
		for id, cs := range child.ColumnStatistics {
			out.ColumnStatistics[id] = cs
		}
	}
	return out
}
