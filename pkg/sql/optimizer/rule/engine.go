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
	"github.com/matrixorigin/cascade/pkg/logutil"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
)

// Engine drives a batch of rules over a memo until no rule produces
// anything new. Termination relies on the memo's idempotent insertion:
// a rewrite that is already present grows nothing, so the fixed point
// is reached once every alternative has been generated.
type Engine struct {
	rules []Rule
}

func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Apply runs all rules over every group member, repeatedly, until one
// full pass changes nothing. New statistics are derived after every
// pass so later iterations see fresh group cardinalities.
func (e *Engine) Apply(ctx *OptimizerContext, m *memo.Memo) error {
	for {
		changed, err := e.applyOnce(ctx, m)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		m.DeriveStatistics(ctx.Estimator)
	}
}

func (e *Engine) applyOnce(ctx *OptimizerContext, m *memo.Memo) (bool, error) {
	changed := false
	// iterate by index: rules append groups while we walk
	for gid := 0; gid < m.GroupCount(); gid++ {
		group := m.Group(memo.GroupID(gid))
		for i := 0; i < len(group.Expressions()); i++ {
			ge := group.Expressions()[i]
			for _, r := range e.rules {
				grew, err := e.applyRule(ctx, m, r, ge)
				if err != nil {
					return false, err
				}
				changed = changed || grew
			}
		}
	}
	return changed, nil
}

func (e *Engine) applyRule(ctx *OptimizerContext, m *memo.Memo, r Rule, ge *memo.GroupExpression) (bool, error) {
	expr, ok := e.bind(m, r.Pattern(), ge)
	if !ok {
		return false, nil
	}
	if !r.Check(ctx, expr) {
		return false, nil
	}
	results, err := r.Transform(ctx, expr)
	if err != nil {
		return false, err
	}
	target := ge.Group()
	grew := false
	before := len(target.Expressions())
	for _, result := range results {
		m.CopyIn(result, target.ID())
	}
	if len(target.Expressions()) > before {
		grew = true
		logutil.Debugf("rule %s fired on group #%d: %d -> %d members",
			r.Name(), target.ID(), before, len(target.Expressions()))
	}
	return grew, nil
}

// bind builds the expression view a pattern asks for: the matched
// member itself, child views over each child group's first expression,
// recursing wherever the pattern descends past a leaf.
//
// Only the first member of each child group is considered as an inner
// node. The current rules match inner nodes that predate any rewrite
// of their group, and the first member is always the original one;
// enumerating all child members would be needed before adding rules
// whose inner nodes can themselves be rule output.
func (e *Engine) bind(m *memo.Memo, p *Pattern, ge *memo.GroupExpression) (*memo.OptExpression, bool) {
	expr := memo.BindGroupExpression(ge)
	inputs := make([]*memo.OptExpression, ge.Arity())
	for i := range inputs {
		childID := ge.Child(i)
		if !p.IsLeaf() && i < len(p.Children()) && !p.Children()[i].IsLeaf() {
			bound, ok := e.bind(m, p.Children()[i], m.Group(childID).First())
			if !ok {
				return nil, false
			}
			inputs[i] = bound
		} else {
			inputs[i] = m.BindGroup(childID)
		}
	}
	expr.SetInputs(inputs)
	if !p.Match(expr) {
		return nil, false
	}
	return expr, true
}
