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
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
)

// Pattern describes the operator-type shape a rule fires on. A pattern
// with zero children is a leaf and matches regardless of what the
// expression's children look like; PatternAny is the leaf that matches
// any operator at all.
type Pattern struct {
	opType   operator.OperatorType
	children []*Pattern
	any      bool
}

// NewPattern builds a pattern node matching one operator type.
func NewPattern(opType operator.OperatorType, children ...*Pattern) *Pattern {
	return &Pattern{opType: opType, children: children}
}

// PatternAny matches any single operator.
func PatternAny() *Pattern {
	return &Pattern{any: true}
}

func (p *Pattern) Children() []*Pattern {
	return p.children
}

// IsLeaf reports whether the pattern stops descending here.
func (p *Pattern) IsLeaf() bool {
	return len(p.children) == 0
}

// Match walks pattern and expression in lockstep. Expression children
// below a leaf pattern node are ignored.
func (p *Pattern) Match(expr *memo.OptExpression) bool {
	if !p.any && expr.Op().Type != p.opType {
		return false
	}
	if p.IsLeaf() {
		return true
	}
	if expr.Arity() != len(p.children) {
		return false
	}
	for i, child := range p.children {
		if !child.Match(expr.Input(i)) {
			return false
		}
	}
	return true
}
