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

package statistics

import (
	"github.com/axiomhq/hyperloglog"
)

// NDVSketch estimates the distinct-value count of one column from
// sampled values. Sketches built on different partitions merge
// losslessly, which is how table-level NDVs are assembled.
type NDVSketch struct {
	sketch *hyperloglog.Sketch
}

func NewNDVSketch() *NDVSketch {
	return &NDVSketch{sketch: hyperloglog.New14()}
}

func (s *NDVSketch) Insert(value []byte) {
	s.sketch.Insert(value)
}

func (s *NDVSketch) InsertString(value string) {
	s.sketch.Insert([]byte(value))
}

func (s *NDVSketch) Merge(o *NDVSketch) error {
	return s.sketch.Merge(o.sketch)
}

// Estimate returns the approximate distinct count.
func (s *NDVSketch) Estimate() float64 {
	return float64(s.sketch.Estimate())
}
