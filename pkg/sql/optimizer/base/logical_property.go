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

// LogicalProperty holds the derived, cost-independent facts about an
// expression. All members of one memo group share a single instance.
type LogicalProperty struct {
	// OutputColumns is the column set the expression produces.
	OutputColumns *ColumnRefSet

	// ExecuteInSinglePartition is true when the whole subtree is known to
	// run inside one data partition, so no shuffle is ever needed below
	// this point.
	ExecuteInSinglePartition bool
}

func NewLogicalProperty() *LogicalProperty {
	return &LogicalProperty{OutputColumns: NewColumnRefSet()}
}
