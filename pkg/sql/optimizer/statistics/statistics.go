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

// Package statistics holds the cardinality and column statistics the
// planner consumes. The planner never fails on missing statistics; an
// unknown marker pushes it toward the conservative plan shape instead.
package statistics

// ColumnStatistic describes one column's value distribution. Column
// statistics are keyed by column reference id everywhere.
type ColumnStatistic struct {
	MinValue      float64
	MaxValue      float64
	NullsFraction float64
	DistinctCount float64

	unknown bool
}

// UnknownColumnStatistic marks a column with no usable statistics.
func UnknownColumnStatistic() *ColumnStatistic {
	return &ColumnStatistic{DistinctCount: 1, unknown: true}
}

func NewColumnStatistic(min, max, nullsFraction, distinctCount float64) *ColumnStatistic {
	return &ColumnStatistic{
		MinValue:      min,
		MaxValue:      max,
		NullsFraction: nullsFraction,
		DistinctCount: distinctCount,
	}
}

func (c *ColumnStatistic) IsUnknown() bool {
	return c.unknown
}

// Statistics is the per-group estimate: output row count plus the known
// column statistics of the group's output columns.
type Statistics struct {
	OutputRowCount   float64
	ColumnStatistics map[int]*ColumnStatistic
}

func NewStatistics(outputRowCount float64) *Statistics {
	return &Statistics{
		OutputRowCount:   outputRowCount,
		ColumnStatistics: make(map[int]*ColumnStatistic),
	}
}

// ColumnStatistic returns the statistic for the column id, or the
// unknown marker when nothing is recorded.
func (s *Statistics) ColumnStatistic(id int) *ColumnStatistic {
	if cs, ok := s.ColumnStatistics[id]; ok {
		return cs
	}
	return UnknownColumnStatistic()
}

// AnyUnknown reports whether any recorded column statistic is unknown,
// or no column statistics exist at all.
func (s *Statistics) AnyUnknown() bool {
	if len(s.ColumnStatistics) == 0 {
		return true
	}
	for _, cs := range s.ColumnStatistics {
		if cs.IsUnknown() {
			return true
		}
	}
	return false
}
