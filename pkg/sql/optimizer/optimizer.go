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

// Package optimizer drives logical optimization: the analyzed
// expression tree goes into a memo, statistics are derived per group,
// and the rule engine expands each group with equivalent alternatives
// until nothing new appears. Costing and physical enumeration consume
// the resulting memo downstream.
package optimizer

import (
	"github.com/matrixorigin/cascade/pkg/config"
	"github.com/matrixorigin/cascade/pkg/logutil"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/rule"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/statistics"
)

// Optimizer owns the rule batches of one optimization pass. A pass is
// single threaded and the memo it builds is exclusively owned; run one
// Optimize per query.
type Optimizer struct {
	engine *rule.Engine
}

// New builds an optimizer with the default logical rule set.
func New() *Optimizer {
	return &Optimizer{
		engine: rule.NewEngine(
			rule.NewMergeTwoFiltersRule(),
			rule.NewSplitAggregateRule(),
		),
	}
}

// NewWithRules builds an optimizer over a caller-chosen rule set.
func NewWithRules(rules ...rule.Rule) *Optimizer {
	return &Optimizer{engine: rule.NewEngine(rules...)}
}

// Optimize derives properties over the input tree, seeds a fresh memo
// with it and expands the memo to a fixed point. The returned memo
// holds at least one alternative per group; the root group is the
// query's.
func (o *Optimizer) Optimize(
	expr *memo.OptExpression,
	sv *config.SessionVariable,
	est statistics.Estimator,
) (*memo.Memo, error) {
	ctx := rule.NewOptimizerContext(sv, est)

	expr.DeriveLogicalProperty()
	m := memo.New()
	m.Init(expr)
	m.DeriveStatistics(ctx.Estimator)

	if err := o.engine.Apply(ctx, m); err != nil {
		return nil, err
	}
	logutil.Debugf("optimization finished: %d groups, root #%d",
		m.GroupCount(), m.RootGroupID())
	return m, nil
}

// OptimizeWithContext runs over a caller-prepared context, so the
// caller can mint column references from the same factory the analyzer
// used.
func (o *Optimizer) OptimizeWithContext(ctx *rule.OptimizerContext, expr *memo.OptExpression) (*memo.Memo, error) {
	expr.DeriveLogicalProperty()
	m := memo.New()
	m.Init(expr)
	m.DeriveStatistics(ctx.Estimator)
	if err := o.engine.Apply(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
