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
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/matrixorigin/cascade/pkg/errno"
	"github.com/matrixorigin/cascade/pkg/sql/errors"
)

func TestOptimizerParameters(t *testing.T) {
	Convey("default values", t, func() {
		params := &OptimizerParameters{}
		params.SetDefaultValues()

		So(params.AggregationStage, ShouldEqual, 0)
		So(params.LowAggregateEffectCoefficient, ShouldEqual, 500)
		So(params.DefaultFilterSelectivity, ShouldEqual, 0.25)
	})

	Convey("out-of-range values fall back to defaults", t, func() {
		params := &OptimizerParameters{
			AggregationStage:              9,
			LowAggregateEffectCoefficient: -1,
			DefaultFilterSelectivity:      3,
		}
		params.SetDefaultValues()

		So(params.AggregationStage, ShouldEqual, 0)
		So(params.LowAggregateEffectCoefficient, ShouldEqual, 500)
		So(params.DefaultFilterSelectivity, ShouldEqual, 0.25)
	})

	Convey("load from toml", t, func() {
		path := filepath.Join(t.TempDir(), "optimizer.toml")
		content := `
aggregationStage = 2
lowAggregateEffectCoefficient = 100.0

[log]
level = "debug"
`
		So(os.WriteFile(path, []byte(content), 0o644), ShouldBeNil)

		params, err := LoadOptimizerParameters(path)
		So(err, ShouldBeNil)
		So(params.AggregationStage, ShouldEqual, 2)
		So(params.LowAggregateEffectCoefficient, ShouldEqual, 100.0)
		// unset fields get defaults
		So(params.DefaultFilterSelectivity, ShouldEqual, 0.25)
		So(params.Log.Level, ShouldEqual, "debug")
	})

	Convey("missing file is a configuration error", t, func() {
		_, err := LoadOptimizerParameters("/nonexistent/optimizer.toml")
		So(err, ShouldNotBeNil)
		So(errors.Code(err), ShouldEqual, errno.BadConfiguration)
	})
}

func TestSessionVariableSnapshot(t *testing.T) {
	Convey("snapshot copies the planner parameters", t, func() {
		params := &OptimizerParameters{AggregationStage: 1}
		params.SetDefaultValues()
		// SetDefaultValues keeps in-range values
		So(params.AggregationStage, ShouldEqual, 1)

		sv := NewSessionVariable(params)
		So(sv.AggregationStage, ShouldEqual, 1)
		So(sv.LowAggregateEffectCoefficient, ShouldEqual, 500)

		def := DefaultSessionVariable()
		So(def.AggregationStage, ShouldEqual, 0)
	})
}
