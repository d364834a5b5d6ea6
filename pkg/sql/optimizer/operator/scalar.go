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
	"fmt"
	"strings"

	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/base"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/function"
)

// ScalarOperator is a fully resolved scalar expression: a column
// reference, a constant, or a call over other scalars. Scalars are
// immutable once constructed; rewrites build new values.
type ScalarOperator interface {
	// ScalarType is the resolved result type.
	ScalarType() types.Type

	// UsedColumns is the set of column reference ids the expression reads.
	UsedColumns() *base.ColumnRefSet

	// IsConstant reports whether the expression reads no columns.
	IsConstant() bool

	// Fingerprint is a canonical string; equal fingerprints mean equal
	// expressions.
	Fingerprint() string
}

// ColumnRef identifies one column produced somewhere in the plan.
// Equality is identity on ID, never structural: two refs with the same
// id denote the same column even when one carries the intermediate
// aggregation-state type instead of the declared SQL type.
type ColumnRef struct {
	ID       int
	Name     string
	Typ      types.Type
	Nullable bool
}

// NewColumnRef builds a reference with an already-allocated id. It is
// used by phase rewrites that re-type an existing slot; fresh ids come
// only from the factory.
func NewColumnRef(id int, typ types.Type, name string, nullable bool) *ColumnRef {
	return &ColumnRef{ID: id, Name: name, Typ: typ, Nullable: nullable}
}

func (c *ColumnRef) ScalarType() types.Type {
	return c.Typ
}

func (c *ColumnRef) UsedColumns() *base.ColumnRefSet {
	return base.NewColumnRefSet(c.ID)
}

func (c *ColumnRef) IsConstant() bool {
	return false
}

func (c *ColumnRef) Equal(o *ColumnRef) bool {
	return o != nil && c.ID == o.ID
}

func (c *ColumnRef) Fingerprint() string {
	return fmt.Sprintf("#%d", c.ID)
}

func (c *ColumnRef) String() string {
	return fmt.Sprintf("%d:%s", c.ID, c.Name)
}

// Constant is a literal value. Value is nil when IsNull is set.
type Constant struct {
	Typ    types.Type
	Value  interface{}
	IsNull bool
}

func NewConstant(value interface{}, typ types.Type) *Constant {
	return &Constant{Typ: typ, Value: value}
}

// NewNullConstant builds a typed NULL literal.
func NewNullConstant(typ types.Type) *Constant {
	return &Constant{Typ: typ, IsNull: true}
}

func (c *Constant) ScalarType() types.Type {
	return c.Typ
}

func (c *Constant) UsedColumns() *base.ColumnRefSet {
	return base.NewColumnRefSet()
}

func (c *Constant) IsConstant() bool {
	return true
}

func (c *Constant) Fingerprint() string {
	if c.IsNull {
		return fmt.Sprintf("null(%s)", c.Typ)
	}
	return fmt.Sprintf("const(%s,%v)", c.Typ, c.Value)
}

// Call is a function invocation. For aggregate calls Fn carries the
// resolved aggregate signature including the intermediate type, and
// Distinct marks a still-unresolved DISTINCT modifier; the aggregation
// planner removes the modifier while building phase structure.
type Call struct {
	FnName   string
	RetType  types.Type
	Children []ScalarOperator
	Fn       *function.Function
	Distinct bool
}

func NewCall(fnName string, retType types.Type, children []ScalarOperator, fn *function.Function) *Call {
	return &Call{FnName: fnName, RetType: retType, Children: children, Fn: fn}
}

func NewDistinctCall(fnName string, retType types.Type, children []ScalarOperator, fn *function.Function) *Call {
	return &Call{FnName: fnName, RetType: retType, Children: children, Fn: fn, Distinct: true}
}

func (c *Call) ScalarType() types.Type {
	return c.RetType
}

func (c *Call) UsedColumns() *base.ColumnRefSet {
	used := base.NewColumnRefSet()
	for _, child := range c.Children {
		used.Union(child.UsedColumns())
	}
	return used
}

func (c *Call) IsConstant() bool {
	for _, child := range c.Children {
		if !child.IsConstant() {
			return false
		}
	}
	return true
}

// Nullable reports whether the call may evaluate to NULL.
func (c *Call) Nullable() bool {
	if c.Fn != nil {
		return c.Fn.ResultNullable()
	}
	return true
}

func (c *Call) Child(i int) ScalarOperator {
	return c.Children[i]
}

func (c *Call) Fingerprint() string {
	parts := make([]string, len(c.Children))
	for i, child := range c.Children {
		parts[i] = child.Fingerprint()
	}
	distinct := ""
	if c.Distinct {
		distinct = "distinct "
	}
	return fmt.Sprintf("%s(%s%s):%s", c.FnName, distinct, strings.Join(parts, ","), c.RetType)
}

// IsNullPredicate tests a scalar for NULL.
type IsNullPredicate struct {
	Child ScalarOperator
}

func NewIsNullPredicate(child ScalarOperator) *IsNullPredicate {
	return &IsNullPredicate{Child: child}
}

func (p *IsNullPredicate) ScalarType() types.Type {
	return types.New(types.T_bool)
}

func (p *IsNullPredicate) UsedColumns() *base.ColumnRefSet {
	return p.Child.UsedColumns()
}

func (p *IsNullPredicate) IsConstant() bool {
	return p.Child.IsConstant()
}

func (p *IsNullPredicate) Fingerprint() string {
	return fmt.Sprintf("isnull(%s)", p.Child.Fingerprint())
}

// ReplaceColumnRefs substitutes column references through mapping,
// rebuilding interior nodes. References without a mapping entry are
// kept as-is.
func ReplaceColumnRefs(s ScalarOperator, mapping map[int]ScalarOperator) ScalarOperator {
	switch v := s.(type) {
	case *ColumnRef:
		if repl, ok := mapping[v.ID]; ok {
			return repl
		}
		return v
	case *Call:
		children := make([]ScalarOperator, len(v.Children))
		for i, child := range v.Children {
			children[i] = ReplaceColumnRefs(child, mapping)
		}
		return &Call{FnName: v.FnName, RetType: v.RetType, Children: children, Fn: v.Fn, Distinct: v.Distinct}
	case *IsNullPredicate:
		return &IsNullPredicate{Child: ReplaceColumnRefs(v.Child, mapping)}
	default:
		return s
	}
}
