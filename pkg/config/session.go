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

package config

// SessionVariable is the read-only snapshot of session settings one
// optimization pass consults. It is captured once when the pass starts;
// rules receive it through the optimizer context instead of reading any
// global session state.
type SessionVariable struct {
	// AggregationStage is the user hint for aggregate decomposition.
	// 0: planner decides, 1: force single stage, 2: force two stage.
	AggregationStage int64

	LowAggregateEffectCoefficient float64

	DefaultFilterSelectivity float64
}

// NewSessionVariable snapshots the session-relevant parameters.
func NewSessionVariable(params *OptimizerParameters) *SessionVariable {
	return &SessionVariable{
		AggregationStage:              params.AggregationStage,
		LowAggregateEffectCoefficient: params.LowAggregateEffectCoefficient,
		DefaultFilterSelectivity:      params.DefaultFilterSelectivity,
	}
}

// DefaultSessionVariable returns a snapshot with all defaults applied.
func DefaultSessionVariable() *SessionVariable {
	params := &OptimizerParameters{}
	params.SetDefaultValues()
	return NewSessionVariable(params)
}
