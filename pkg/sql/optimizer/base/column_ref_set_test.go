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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumnRefSet(t *testing.T) {
	s := NewColumnRefSet(3, 1)
	s.Add(2)

	require.Equal(t, 3, s.Cardinality())
	require.Equal(t, []int{1, 2, 3}, s.ColumnIDs())
	require.True(t, s.Contains(2))
	require.False(t, s.Contains(4))
	require.Equal(t, "{1,2,3}", s.String())

	require.True(t, s.ContainsAll(NewColumnRefSet(1, 3)))
	require.False(t, s.ContainsAll(NewColumnRefSet(3, 4)))
	require.True(t, s.ContainsAll(nil))

	other := NewColumnRefSet(4)
	s.Union(other)
	require.True(t, s.Contains(4))
	// union leaves the argument alone
	require.Equal(t, 1, other.Cardinality())

	clone := s.Clone()
	clone.Add(9)
	require.False(t, s.Contains(9))
	require.False(t, s.Equal(clone))
	require.True(t, s.Equal(NewColumnRefSet(1, 2, 3, 4)))

	require.True(t, NewColumnRefSet().IsEmpty())
	require.True(t, NewColumnRefSet().Equal(nil))
}
