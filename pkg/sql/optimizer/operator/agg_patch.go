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

// AggregationPatch is an edit set applied functionally to an aggregate
// operator: Apply copies the old operator and overlays the set fields,
// leaving the original untouched. Operators stay immutable once built,
// which keeps fingerprints trustworthy after a node has entered the
// memo.
//
// Pointer fields distinguish "leave as-is" (nil) from "set to this
// value, including an empty one".
type AggregationPatch struct {
	AggType *AggType

	// MarkSplit stamps the result as part of a finished decomposition.
	MarkSplit bool

	GroupingKeys       *[]*ColumnRef
	PartitionByColumns *[]*ColumnRef
	Aggregations       *[]AggMapping

	SingleDistinctFunctionPos *int

	SetProjection *Projection

	DropPredicate  bool
	DropLimit      bool
	DropProjection bool
}

// Apply builds a new aggregate operator from old with the patch
// overlaid. old must be a LogicalAggregate.
func (p AggregationPatch) Apply(old *Operator) *Operator {
	agg := *old.Aggregation
	next := &Operator{
		Type:        LogicalAggregate,
		Limit:       old.Limit,
		Predicate:   old.Predicate,
		Projection:  old.Projection,
		Aggregation: &agg,
	}

	if p.AggType != nil {
		agg.AggType = *p.AggType
	}
	if p.MarkSplit {
		agg.IsSplit = true
	}
	if p.GroupingKeys != nil {
		agg.GroupingKeys = *p.GroupingKeys
	}
	if p.PartitionByColumns != nil {
		agg.PartitionByColumns = *p.PartitionByColumns
	}
	if p.Aggregations != nil {
		agg.Aggregations = *p.Aggregations
	}
	if p.SingleDistinctFunctionPos != nil {
		agg.SingleDistinctFunctionPos = *p.SingleDistinctFunctionPos
	}
	if p.SetProjection != nil {
		next.Projection = p.SetProjection
	}
	if p.DropPredicate {
		next.Predicate = nil
	}
	if p.DropLimit {
		next.Limit = DefaultLimit
	}
	if p.DropProjection {
		next.Projection = nil
	}
	return next
}
