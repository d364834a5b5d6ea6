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

package base

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// ColumnRefSet is a set of column reference ids. Column references are
// identified by the id minted by the factory, never by structure, so a
// bitmap over ids is the whole story.
type ColumnRefSet struct {
	bm *roaring.Bitmap
}

func NewColumnRefSet(ids ...int) *ColumnRefSet {
	s := &ColumnRefSet{bm: roaring.New()}
	for _, id := range ids {
		s.bm.Add(uint32(id))
	}
	return s
}

func (s *ColumnRefSet) Add(id int) {
	s.bm.Add(uint32(id))
}

func (s *ColumnRefSet) Union(o *ColumnRefSet) {
	if o == nil {
		return
	}
	s.bm.Or(o.bm)
}

func (s *ColumnRefSet) Contains(id int) bool {
	return s.bm.Contains(uint32(id))
}

func (s *ColumnRefSet) ContainsAll(o *ColumnRefSet) bool {
	if o == nil {
		return true
	}
	tmp := o.bm.Clone()
	tmp.AndNot(s.bm)
	return tmp.IsEmpty()
}

func (s *ColumnRefSet) IsEmpty() bool {
	return s.bm.IsEmpty()
}

func (s *ColumnRefSet) Cardinality() int {
	return int(s.bm.GetCardinality())
}

// ColumnIDs returns the member ids in ascending order.
func (s *ColumnRefSet) ColumnIDs() []int {
	raw := s.bm.ToArray()
	ids := make([]int, len(raw))
	for i, v := range raw {
		ids[i] = int(v)
	}
	return ids
}

func (s *ColumnRefSet) Clone() *ColumnRefSet {
	return &ColumnRefSet{bm: s.bm.Clone()}
}

func (s *ColumnRefSet) Equal(o *ColumnRefSet) bool {
	if o == nil {
		return s.IsEmpty()
	}
	return s.bm.Equals(o.bm)
}

func (s *ColumnRefSet) String() string {
	ids := s.ColumnIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
