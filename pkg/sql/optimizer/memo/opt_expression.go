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
	"fmt"
	"strings"

	"github.com/matrixorigin/cascade/pkg/errno"
	"github.com/matrixorigin/cascade/pkg/sql/errors"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/base"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/statistics"
)

// OptExpression is an operator with zero or more input expressions. It
// serves two roles: a disposable tree rules consume and produce, and a
// view over a memo entry when bound to a GroupExpression (pattern
// binding wraps group expressions this way).
type OptExpression struct {
	op     *operator.Operator
	inputs []*OptExpression

	property  *base.LogicalProperty
	stats     *statistics.Statistics
	groupExpr *GroupExpression
}

// NewOptExpression builds a detached expression node.
func NewOptExpression(op *operator.Operator, inputs ...*OptExpression) *OptExpression {
	return &OptExpression{op: op, inputs: inputs}
}

// BindGroupExpression wraps a memo entry. The wrapper carries the
// group's derived property and statistics and owns no inputs of its
// own; the binder attaches child views explicitly when a pattern needs
// to descend.
func BindGroupExpression(ge *GroupExpression) *OptExpression {
	return &OptExpression{
		op:        ge.Op(),
		property:  ge.Group().LogicalProperty(),
		stats:     ge.Group().Statistics(),
		groupExpr: ge,
	}
}

func (e *OptExpression) Op() *operator.Operator {
	return e.op
}

func (e *OptExpression) Inputs() []*OptExpression {
	return e.inputs
}

func (e *OptExpression) Input(i int) *OptExpression {
	return e.inputs[i]
}

func (e *OptExpression) Arity() int {
	return len(e.inputs)
}

func (e *OptExpression) SetInputs(inputs []*OptExpression) {
	e.inputs = inputs
}

// GroupExpression returns the bound memo entry, or nil for a detached
// node.
func (e *OptExpression) GroupExpression() *GroupExpression {
	return e.groupExpr
}

// LogicalProperty is valid only after DeriveLogicalProperty (memo-bound
// nodes are born with their group's property).
func (e *OptExpression) LogicalProperty() *base.LogicalProperty {
	return e.property
}

// Statistics returns the bound group's statistics; nil for detached
// nodes that never entered the memo.
func (e *OptExpression) Statistics() *statistics.Statistics {
	if e.groupExpr != nil {
		return e.groupExpr.Group().Statistics()
	}
	return e.stats
}

// DeriveLogicalProperty computes properties bottom-up. It is a pure
// fold: a second call on an unmodified tree recomputes the identical
// result. Memo-bound nodes keep their group's property untouched.
func (e *OptExpression) DeriveLogicalProperty() *base.LogicalProperty {
	if e.groupExpr != nil && e.property != nil {
		return e.property
	}
	if len(e.inputs) != e.op.Type.Arity() {
		// a rule emitted a malformed tree; this is not recoverable
		panic(errors.Newf(errno.InternalError,
			"operator %s expects %d children, got %d",
			e.op.Type, e.op.Type.Arity(), len(e.inputs)))
	}
	childProps := make([]*base.LogicalProperty, len(e.inputs))
	for i, input := range e.inputs {
		childProps[i] = input.DeriveLogicalProperty()
	}
	e.property = deriveProperty(e.op, childProps)
	return e.property
}

// deriveProperty is the per-operator property function: output columns
// and single-partition execution as a function of the operator and its
// children's properties, nothing else.
func deriveProperty(op *operator.Operator, children []*base.LogicalProperty) *base.LogicalProperty {
	prop := base.NewLogicalProperty()

	allChildrenSingle := true
	for _, child := range children {
		if !child.ExecuteInSinglePartition {
			allChildrenSingle = false
		}
	}

	switch op.Type {
	case operator.LogicalScan:
		for _, col := range op.Scan.Columns {
			prop.OutputColumns.Add(col.ID)
		}
		prop.ExecuteInSinglePartition = op.Scan.SinglePartition
	case operator.LogicalFilter:
		prop.OutputColumns.Union(children[0].OutputColumns)
		prop.ExecuteInSinglePartition = allChildrenSingle
	case operator.LogicalProject:
		prop.OutputColumns.Union(op.Projection.OutputColumns())
		prop.ExecuteInSinglePartition = allChildrenSingle
	case operator.LogicalJoin:
		for _, child := range children {
			prop.OutputColumns.Union(child.OutputColumns)
		}
		prop.ExecuteInSinglePartition = allChildrenSingle
	case operator.LogicalAggregate:
		agg := op.Aggregation
		for _, key := range agg.GroupingKeys {
			prop.OutputColumns.Add(key.ID)
		}
		for _, m := range agg.Aggregations {
			prop.OutputColumns.Add(m.Ref.ID)
		}
		prop.ExecuteInSinglePartition = allChildrenSingle
	case operator.LogicalRepeat:
		prop.OutputColumns.Union(children[0].OutputColumns)
		for _, col := range op.Repeat.OutputGroupingColumns {
			prop.OutputColumns.Add(col.ID)
		}
		prop.ExecuteInSinglePartition = allChildrenSingle
	default:
		panic(errors.Newf(errno.InternalError, "cannot derive property for operator %s", op.Type))
	}

	// an explicit projection overrides the natural output column set
	if op.Projection != nil {
		prop.OutputColumns = op.Projection.OutputColumns()
	}
	return prop
}

// Explain renders the plan shape, one node per line, children indented
// behind "->".
func (e *OptExpression) Explain() string {
	return e.explain("", "")
}

func (e *OptExpression) explain(headlinePrefix, detailPrefix string) string {
	var sb strings.Builder
	sb.WriteString(headlinePrefix)
	sb.WriteString(describeOperator(e.op))
	sb.WriteString("\n")
	childHeadline := detailPrefix + "->  "
	childDetail := detailPrefix + "    "
	for _, input := range e.inputs {
		sb.WriteString(input.explain(childHeadline, childDetail))
	}
	return sb.String()
}

func describeOperator(op *operator.Operator) string {
	switch op.Type {
	case operator.LogicalAggregate:
		agg := op.Aggregation
		keys := make([]string, len(agg.GroupingKeys))
		for i, key := range agg.GroupingKeys {
			keys[i] = fmt.Sprintf("#%d", key.ID)
		}
		calls := make([]string, len(agg.Aggregations))
		for i, m := range agg.Aggregations {
			calls[i] = m.Call.Fingerprint()
		}
		return fmt.Sprintf("AGGREGATE(%s) keys=[%s] calls=[%s]",
			agg.AggType, strings.Join(keys, ","), strings.Join(calls, ","))
	case operator.LogicalScan:
		return fmt.Sprintf("SCAN(%s)", op.Scan.Table)
	default:
		return op.String()
	}
}
