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

	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
)

// GroupExpression is one concrete operator whose children are groups,
// not nodes: many parents may reference the same child group, and the
// memo's arena owns everything, so members hold plain ids.
type GroupExpression struct {
	op       *operator.Operator
	children []GroupID

	group       *Group
	fingerprint string
}

func newGroupExpression(op *operator.Operator, children []GroupID) *GroupExpression {
	return &GroupExpression{
		op:          op,
		children:    children,
		fingerprint: groupExpressionFingerprint(op, children),
	}
}

func groupExpressionFingerprint(op *operator.Operator, children []GroupID) string {
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = fmt.Sprintf("%d", child)
	}
	return op.Fingerprint() + "(" + strings.Join(parts, ",") + ")"
}

func (ge *GroupExpression) Op() *operator.Operator {
	return ge.op
}

func (ge *GroupExpression) Children() []GroupID {
	return ge.children
}

func (ge *GroupExpression) Child(i int) GroupID {
	return ge.children[i]
}

func (ge *GroupExpression) Arity() int {
	return len(ge.children)
}

// Group is the owning group.
func (ge *GroupExpression) Group() *Group {
	return ge.group
}

// Fingerprint is the canonical signature of operator plus child groups.
func (ge *GroupExpression) Fingerprint() string {
	return ge.fingerprint
}
