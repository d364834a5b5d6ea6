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

// Package operator models the closed set of logical operator variants
// the optimizer rewrites. An Operator is a tag plus one variant payload
// and the common projection/predicate/limit contract; behavior stays in
// the property deriver and the rules, which switch exhaustively on the
// tag.
package operator

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/cascade/pkg/sql/optimizer/base"
)

type OperatorType int

const (
	Unknown OperatorType = iota
	LogicalScan
	LogicalFilter
	LogicalProject
	LogicalJoin
	LogicalAggregate
	LogicalRepeat
)

var operatorNames = map[OperatorType]string{
	Unknown:          "UNKNOWN",
	LogicalScan:      "SCAN",
	LogicalFilter:    "FILTER",
	LogicalProject:   "PROJECT",
	LogicalJoin:      "JOIN",
	LogicalAggregate: "AGGREGATE",
	LogicalRepeat:    "REPEAT",
}

func (t OperatorType) String() string {
	if name, ok := operatorNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// Arity is the number of children an operator of this kind owns.
func (t OperatorType) Arity() int {
	switch t {
	case LogicalScan:
		return 0
	case LogicalFilter, LogicalProject, LogicalAggregate, LogicalRepeat:
		return 1
	case LogicalJoin:
		return 2
	}
	return 0
}

// DefaultLimit means "no row limit".
const DefaultLimit int64 = -1

// Operator is one plan node's payload. Exactly the variant field named
// by Type is set; Limit, Predicate and Projection are the common
// contract available on every kind.
type Operator struct {
	Type OperatorType

	Limit      int64
	Predicate  ScalarOperator
	Projection *Projection

	Scan        *ScanOperator
	Join        *JoinOperator
	Aggregation *AggregationOperator
	Repeat      *RepeatOperator
}

func (op *Operator) HasLimit() bool {
	return op.Limit != DefaultLimit
}

// ScanOperator reads one table. SinglePartition marks a table whose
// data lives entirely in one partition, so plans over it never need a
// shuffle.
type ScanOperator struct {
	Table           string
	Columns         []*ColumnRef
	SinglePartition bool
}

type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	CrossJoin
)

type JoinOperator struct {
	JoinType    JoinType
	OnPredicate ScalarOperator
}

// AggType tags an aggregate node's role inside a multi-phase
// decomposition. An aggregate fresh from the analyzer is GLOBAL and
// unsplit; the aggregation planner rewrites it into one of the phase
// chains and marks every node it emits as part of a split.
type AggType int

const (
	AggLocal AggType = iota
	AggGlobal
	AggDistinctGlobal
	AggDistinctLocal
)

var aggTypeNames = map[AggType]string{
	AggLocal:          "LOCAL",
	AggGlobal:         "GLOBAL",
	AggDistinctGlobal: "DISTINCT_GLOBAL",
	AggDistinctLocal:  "DISTINCT_LOCAL",
}

func (t AggType) String() string {
	return aggTypeNames[t]
}

func (t AggType) IsLocal() bool {
	return t == AggLocal
}

func (t AggType) IsGlobal() bool {
	return t == AggGlobal
}

func (t AggType) IsDistinctGlobal() bool {
	return t == AggDistinctGlobal
}

func (t AggType) IsDistinctLocal() bool {
	return t == AggDistinctLocal
}

// AggMapping binds the output column of one aggregate call to the call
// itself. The analyzer's encounter order is preserved through every
// phase rewrite so plans stay deterministic.
type AggMapping struct {
	Ref  *ColumnRef
	Call *Call
}

// AggregationOperator is a GROUP BY/aggregate node.
type AggregationOperator struct {
	AggType AggType

	// IsSplit marks a node already emitted by the aggregation planner;
	// a split node is never re-planned.
	IsSplit bool

	GroupingKeys []*ColumnRef
	Aggregations []AggMapping

	// PartitionByColumns is the shuffle key the phase expects; empty
	// means inherit.
	PartitionByColumns []*ColumnRef

	// SingleDistinctFunctionPos is the index of the distinct call within
	// Aggregations, or -1. Downstream phases use it to locate the
	// rewritten call.
	SingleDistinctFunctionPos int
}

// FindAggregation returns the call mapped to ref, or nil.
func (a *AggregationOperator) FindAggregation(ref *ColumnRef) *Call {
	for _, m := range a.Aggregations {
		if m.Ref.Equal(ref) {
			return m.Call
		}
	}
	return nil
}

// RepeatOperator expands each input row once per grouping set, as
// GROUPING SETS/ROLLUP/CUBE require.
type RepeatOperator struct {
	// RepeatColumnRefs holds one column list per grouping set.
	RepeatColumnRefs [][]*ColumnRef

	// OutputGroupingColumns are the generated grouping-id columns.
	OutputGroupingColumns []*ColumnRef
}

// ProjectionItem maps one output column to its defining expression.
type ProjectionItem struct {
	Ref  *ColumnRef
	Expr ScalarOperator
}

// Projection is an output column map attached to an operator.
type Projection struct {
	Items []ProjectionItem
}

func NewProjection(items []ProjectionItem) *Projection {
	return &Projection{Items: items}
}

// ExprFor returns the defining expression of ref, matching by id.
func (p *Projection) ExprFor(ref *ColumnRef) (ScalarOperator, bool) {
	for _, item := range p.Items {
		if item.Ref.Equal(ref) {
			return item.Expr, true
		}
	}
	return nil, false
}

// ColumnRefMap flattens the projection into an id-keyed substitution.
func (p *Projection) ColumnRefMap() map[int]ScalarOperator {
	m := make(map[int]ScalarOperator, len(p.Items))
	for _, item := range p.Items {
		m[item.Ref.ID] = item.Expr
	}
	return m
}

// OutputColumns is the set of column ids the projection produces.
func (p *Projection) OutputColumns() *base.ColumnRefSet {
	out := base.NewColumnRefSet()
	for _, item := range p.Items {
		out.Add(item.Ref.ID)
	}
	return out
}

func (p *Projection) fingerprint() string {
	parts := make([]string, len(p.Items))
	for i, item := range p.Items {
		parts[i] = fmt.Sprintf("%d<-%s", item.Ref.ID, item.Expr.Fingerprint())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// NewScan builds a scan leaf.
func NewScan(table string, columns []*ColumnRef, singlePartition bool) *Operator {
	return &Operator{
		Type:  LogicalScan,
		Limit: DefaultLimit,
		Scan:  &ScanOperator{Table: table, Columns: columns, SinglePartition: singlePartition},
	}
}

// NewFilter builds a filter with the given residual predicate.
func NewFilter(predicate ScalarOperator) *Operator {
	return &Operator{
		Type:      LogicalFilter,
		Limit:     DefaultLimit,
		Predicate: predicate,
	}
}

// NewProject builds a projection-only node.
func NewProject(projection *Projection) *Operator {
	return &Operator{
		Type:       LogicalProject,
		Limit:      DefaultLimit,
		Projection: projection,
	}
}

// NewJoin builds a join node.
func NewJoin(joinType JoinType, on ScalarOperator) *Operator {
	return &Operator{
		Type:  LogicalJoin,
		Limit: DefaultLimit,
		Join:  &JoinOperator{JoinType: joinType, OnPredicate: on},
	}
}

// NewAggregate builds a logical aggregate. Aggregates produced by the
// analyzer are GLOBAL and unsplit.
func NewAggregate(aggType AggType, groupingKeys []*ColumnRef, aggregations []AggMapping) *Operator {
	return &Operator{
		Type:  LogicalAggregate,
		Limit: DefaultLimit,
		Aggregation: &AggregationOperator{
			AggType:                   aggType,
			GroupingKeys:              groupingKeys,
			Aggregations:              aggregations,
			SingleDistinctFunctionPos: -1,
		},
	}
}

// NewRepeat builds a grouping-sets expansion node.
func NewRepeat(repeatColumnRefs [][]*ColumnRef, outputGrouping []*ColumnRef) *Operator {
	return &Operator{
		Type:  LogicalRepeat,
		Limit: DefaultLimit,
		Repeat: &RepeatOperator{
			RepeatColumnRefs:      repeatColumnRefs,
			OutputGroupingColumns: outputGrouping,
		},
	}
}

func refIDs(refs []*ColumnRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = fmt.Sprintf("%d", ref.ID)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Fingerprint is the canonical signature the memo dedups on. It covers
// every attribute that affects the operator's result, in a fixed order.
func (op *Operator) Fingerprint() string {
	var sb strings.Builder
	sb.WriteString(op.Type.String())
	switch op.Type {
	case LogicalScan:
		fmt.Fprintf(&sb, "[%s,cols=%s,single=%t]", op.Scan.Table, refIDs(op.Scan.Columns), op.Scan.SinglePartition)
	case LogicalJoin:
		fmt.Fprintf(&sb, "[type=%d", op.Join.JoinType)
		if op.Join.OnPredicate != nil {
			fmt.Fprintf(&sb, ",on=%s", op.Join.OnPredicate.Fingerprint())
		}
		sb.WriteString("]")
	case LogicalAggregate:
		agg := op.Aggregation
		fmt.Fprintf(&sb, "[%s,split=%t,keys=%s", agg.AggType, agg.IsSplit, refIDs(agg.GroupingKeys))
		calls := make([]string, len(agg.Aggregations))
		for i, m := range agg.Aggregations {
			calls[i] = fmt.Sprintf("%d<-%s", m.Ref.ID, m.Call.Fingerprint())
		}
		fmt.Fprintf(&sb, ",calls=[%s],part=%s]", strings.Join(calls, ","), refIDs(agg.PartitionByColumns))
	case LogicalRepeat:
		sets := make([]string, len(op.Repeat.RepeatColumnRefs))
		for i, set := range op.Repeat.RepeatColumnRefs {
			sets[i] = refIDs(set)
		}
		fmt.Fprintf(&sb, "[sets=[%s],out=%s]", strings.Join(sets, ","), refIDs(op.Repeat.OutputGroupingColumns))
	}
	if op.HasLimit() {
		fmt.Fprintf(&sb, "limit=%d", op.Limit)
	}
	if op.Predicate != nil {
		fmt.Fprintf(&sb, "pred=%s", op.Predicate.Fingerprint())
	}
	if op.Projection != nil {
		fmt.Fprintf(&sb, "proj=%s", op.Projection.fingerprint())
	}
	return sb.String()
}

func (op *Operator) String() string {
	if op.Type == LogicalAggregate {
		return fmt.Sprintf("%s(%s)", op.Type, op.Aggregation.AggType)
	}
	return op.Type.String()
}
