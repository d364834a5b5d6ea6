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

// Package memo is the search-space structure of the optimizer: a map
// from canonical expression signatures to groups of logically
// equivalent alternatives. One memo belongs to one optimization pass of
// one query; it is never shared and never locked.
package memo

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/cascade/pkg/errno"
	"github.com/matrixorigin/cascade/pkg/sql/errors"
	"github.com/matrixorigin/cascade/pkg/sql/optimizer/statistics"
)

type Memo struct {
	// groups is the arena; a GroupID is an index into it.
	groups []*Group

	// index maps member fingerprints to their owning group, so
	// structurally identical expressions land in the same group.
	index map[string]GroupID

	root GroupID
}

func New() *Memo {
	return &Memo{
		index: make(map[string]GroupID),
		root:  InvalidGroupID,
	}
}

// Init copies the whole expression tree in, children before parents,
// and records the root group.
func (m *Memo) Init(expr *OptExpression) GroupID {
	m.root = m.CopyIn(expr, InvalidGroupID)
	return m.root
}

func (m *Memo) RootGroup() *Group {
	return m.Group(m.root)
}

func (m *Memo) RootGroupID() GroupID {
	return m.root
}

func (m *Memo) Group(id GroupID) *Group {
	if id < 0 || int(id) >= len(m.groups) {
		panic(errors.Newf(errno.InternalError, "group id %d out of range", id))
	}
	return m.groups[id]
}

func (m *Memo) GroupCount() int {
	return len(m.groups)
}

// CopyIn inserts an expression tree. Children are inserted first, so a
// member's child references always resolve to existing groups. When
// target is a valid group id the new expression is merged into that
// group (the rule engine merges transform results into the origin
// group); otherwise the expression lands in the group owning its
// signature, or a fresh one.
//
// Insertion is idempotent: a tree identical to an existing member
// neither grows any group nor allocates a new one.
func (m *Memo) CopyIn(expr *OptExpression, target GroupID) GroupID {
	expr.DeriveLogicalProperty()

	children := make([]GroupID, expr.Arity())
	for i, input := range expr.Inputs() {
		if bound := input.GroupExpression(); bound != nil {
			children[i] = bound.Group().ID()
			continue
		}
		children[i] = m.CopyIn(input, InvalidGroupID)
	}

	ge := newGroupExpression(expr.Op(), children)

	if target != InvalidGroupID {
		if gid, ok := m.index[ge.Fingerprint()]; ok && gid != target {
			// one fingerprint in two groups would merge inequivalent
			// groups on later lookups
			panic(errors.Newf(errno.InternalError,
				"expression %s already belongs to group #%d, cannot merge into group #%d",
				ge.Fingerprint(), gid, target))
		}
		group := m.Group(target)
		if group.insert(ge) {
			m.index[ge.Fingerprint()] = target
		}
		return target
	}

	if gid, ok := m.index[ge.Fingerprint()]; ok {
		return gid
	}

	group := newGroup(GroupID(len(m.groups)), expr.LogicalProperty())
	m.groups = append(m.groups, group)
	group.insert(ge)
	m.index[ge.Fingerprint()] = group.ID()
	return group.ID()
}

// DeriveStatistics fills in statistics for every group that has none,
// using the group's first expression. Groups created by rule rewrites
// get estimated from the same child groups the original expressions
// share, so equivalent groups agree on cardinality.
func (m *Memo) DeriveStatistics(est statistics.Estimator) {
	for _, group := range m.groups {
		m.ensureStatistics(group, est)
	}
}

func (m *Memo) ensureStatistics(group *Group, est statistics.Estimator) *statistics.Statistics {
	if group.Statistics() != nil {
		return group.Statistics()
	}
	ge := group.First()
	childStats := make([]*statistics.Statistics, ge.Arity())
	for i, childID := range ge.Children() {
		childStats[i] = m.ensureStatistics(m.Group(childID), est)
	}
	group.SetStatistics(est.Estimate(ge.Op(), childStats))
	return group.Statistics()
}

// BindGroup wraps a group's first expression as an expression view,
// used for ANY-leaf pattern bindings.
func (m *Memo) BindGroup(id GroupID) *OptExpression {
	return BindGroupExpression(m.Group(id).First())
}

// String dumps every group and member, for debugging and tests.
func (m *Memo) String() string {
	var sb strings.Builder
	for _, group := range m.groups {
		fmt.Fprintf(&sb, "group #%d", group.ID())
		if group.ID() == m.root {
			sb.WriteString(" (root)")
		}
		sb.WriteString("\n")
		for i, ge := range group.Expressions() {
			fmt.Fprintf(&sb, "  %d: %s\n", i, ge.Fingerprint())
		}
	}
	return sb.String()
}
