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
	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
)

// MergeTwoFiltersRule fuses FILTER over FILTER into one node with a
// conjoined predicate. Stacked filters appear after predicate pushdown
// and subquery unnesting; one node evaluates the same rows once.
type MergeTwoFiltersRule struct{}

func NewMergeTwoFiltersRule() *MergeTwoFiltersRule {
	return &MergeTwoFiltersRule{}
}

func (r *MergeTwoFiltersRule) Name() string {
	return "MergeTwoFilters"
}

func (r *MergeTwoFiltersRule) Pattern() *Pattern {
	return NewPattern(operator.LogicalFilter,
		NewPattern(operator.LogicalFilter, PatternAny()))
}

func (r *MergeTwoFiltersRule) Check(ctx *OptimizerContext, expr *memo.OptExpression) bool {
	// a limit between the filters fixes evaluation order, and an inner
	// projection changes what the outer predicate sees; either blocks
	// the fuse
	inner := expr.Input(0).Op()
	return !inner.HasLimit() && inner.Projection == nil
}

func (r *MergeTwoFiltersRule) Transform(ctx *OptimizerContext, expr *memo.OptExpression) ([]*memo.OptExpression, error) {
	upper := expr.Op().Predicate
	lower := expr.Input(0).Op().Predicate

	fused := operator.NewFilter(conjoin(upper, lower))
	fused.Limit = expr.Op().Limit
	fused.Projection = expr.Op().Projection
	result := memo.NewOptExpression(fused, expr.Input(0).Input(0))
	return []*memo.OptExpression{result}, nil
}

func conjoin(a, b operator.ScalarOperator) operator.ScalarOperator {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return operator.NewCall("and", types.New(types.T_bool),
		[]operator.ScalarOperator{a, b}, nil)
}
