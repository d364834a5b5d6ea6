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

package operator

import (
	"github.com/matrixorigin/cascade/pkg/container/types"
)

// ColumnRefFactory is the identity allocator for column references.
// Every new column of a query gets its id here, so id equality is
// column identity across the whole optimization pass.
type ColumnRefFactory struct {
	nextID int
	refs   map[int]*ColumnRef
}

func NewColumnRefFactory() *ColumnRefFactory {
	return &ColumnRefFactory{nextID: 1, refs: make(map[int]*ColumnRef)}
}

// Create mints a reference with a fresh id.
func (f *ColumnRefFactory) Create(name string, typ types.Type, nullable bool) *ColumnRef {
	ref := &ColumnRef{ID: f.nextID, Name: name, Typ: typ, Nullable: nullable}
	f.refs[ref.ID] = ref
	f.nextID++
	return ref
}

// ColumnRef resolves an id back to its canonical reference, or nil for
// an id the factory never minted.
func (f *ColumnRefFactory) ColumnRef(id int) *ColumnRef {
	return f.refs[id]
}
