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

package memo

import (
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/base"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/statistics"
)

// GroupID indexes a group inside its memo's arena.
type GroupID int32

// InvalidGroupID is the zero-value sentinel for "no group".
const InvalidGroupID GroupID = -1

// Group is a set of logically equivalent expressions: same output
// columns, same result rows as a multiset, for any input. The group
// owns the shared logical property and statistics; members never carry
// their own.
type Group struct {
	id          GroupID
	expressions []*GroupExpression

	// fingerprints dedups members: insertion is idempotent.
	fingerprints map[string]struct{}

	property *base.LogicalProperty
	stats    *statistics.Statistics
}

func newGroup(id GroupID, property *base.LogicalProperty) *Group {
	return &Group{
		id:           id,
		fingerprints: make(map[string]struct{}),
		property:     property,
	}
}

func (g *Group) ID() GroupID {
	return g.id
}

func (g *Group) Expressions() []*GroupExpression {
	return g.expressions
}

// First returns the group's first (normalized) expression.
func (g *Group) First() *GroupExpression {
	return g.expressions[0]
}

func (g *Group) LogicalProperty() *base.LogicalProperty {
	return g.property
}

func (g *Group) Statistics() *statistics.Statistics {
	return g.stats
}

func (g *Group) SetStatistics(stats *statistics.Statistics) {
	g.stats = stats
}

// insert adds ge unless an attribute-for-attribute identical member
// already exists. Reports whether the group grew.
func (g *Group) insert(ge *GroupExpression) bool {
	if _, ok := g.fingerprints[ge.Fingerprint()]; ok {
		return false
	}
	g.fingerprints[ge.Fingerprint()] = struct{}{}
	ge.group = g
	g.expressions = append(g.expressions, ge)
	return true
}
