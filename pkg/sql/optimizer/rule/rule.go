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

// Package rule holds the transformation rules of the optimizer and the
// engine that drives them over a memo to a fixed point.
package rule

import (
	"github.com/matrixorigin/cascade/pkg/config"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/memo"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/operator"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/statistics"
)

// Rule rewrites one matched expression into zero or more logically
// equivalent alternatives. Transform never mutates its input; it builds
// fresh operator nodes and reuses child expressions by reference.
type Rule interface {
	Name() string
	Pattern() *Pattern

	// Check runs after the shape match and before Transform; rules put
	// their semantic preconditions here.
	Check(ctx *OptimizerContext, expr *memo.OptExpression) bool

	Transform(ctx *OptimizerContext, expr *memo.OptExpression) ([]*memo.OptExpression, error)
}

// OptimizerContext carries everything a rule may consult: the column
// slot allocator, the session's tuning variables and the statistics
// estimator. It is created per optimization and passed explicitly, so
// rules stay free of ambient session state.
type OptimizerContext struct {
	ColumnRefFactory *operator.ColumnRefFactory
	SessionVariable  *config.SessionVariable
	Estimator        statistics.Estimator
}

// NewOptimizerContext builds a context with a fresh column allocator.
// A nil session variable falls back to the compiled-in defaults.
func NewOptimizerContext(sv *config.SessionVariable, est statistics.Estimator) *OptimizerContext {
	if sv == nil {
		sv = config.DefaultSessionVariable()
	}
	if est == nil {
		est = statistics.NewDefaultEstimator(sv.DefaultFilterSelectivity)
	}
	return &OptimizerContext{
		ColumnRefFactory: operator.NewColumnRefFactory(),
		SessionVariable:  sv,
		Estimator:        est,
	}
}
