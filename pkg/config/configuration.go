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

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/cascade/pkg/errno"
	"github.com/matrixorigin/cascade/pkg/logutil"
	"github.com/matrixorigin/cascade/pkg/sql/errors"
)

const (
	defaultAggregationStage = 0

	// defaultLowAggregateEffectCoefficient is deliberately a tunable
	// heuristic. The planner treats grouping as "sharply reducing" when
	// estimated output rows * coefficient < input rows.
	defaultLowAggregateEffectCoefficient = 500

	// defaultFilterSelectivity is applied when estimating filter output
	// without usable column statistics.
	defaultFilterSelectivity = 0.25
)

// OptimizerParameters of the planner
type OptimizerParameters struct {
	// aggregation stage the user asks for. 0: planner decides,
	// 1: force single stage, 2: force two stage
	AggregationStage int64 `toml:"aggregationStage"`

	// see defaultLowAggregateEffectCoefficient
	LowAggregateEffectCoefficient float64 `toml:"lowAggregateEffectCoefficient"`

	// selectivity used for predicates without statistics
	DefaultFilterSelectivity float64 `toml:"defaultFilterSelectivity"`

	Log logutil.LogConfig `toml:"log"`
}

// SetDefaultValues fills unset fields with their defaults.
func (p *OptimizerParameters) SetDefaultValues() {
	if p.AggregationStage < 0 || p.AggregationStage > 2 {
		p.AggregationStage = defaultAggregationStage
	}
	if p.LowAggregateEffectCoefficient <= 0 {
		p.LowAggregateEffectCoefficient = defaultLowAggregateEffectCoefficient
	}
	if p.DefaultFilterSelectivity <= 0 || p.DefaultFilterSelectivity > 1 {
		p.DefaultFilterSelectivity = defaultFilterSelectivity
	}
}

// LoadOptimizerParameters loads the toml file and applies defaults for
// anything the file leaves out.
func LoadOptimizerParameters(path string) (*OptimizerParameters, error) {
	params := &OptimizerParameters{}
	if _, err := toml.DecodeFile(path, params); err != nil {
		return nil, errors.New(errno.BadConfiguration,
			fmt.Sprintf("cannot decode optimizer configuration '%s': %v", path, err))
	}
	params.SetDefaultValues()
	return params, nil
}
