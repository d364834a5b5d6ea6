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

// Package function is the builtin function registry the optimizer
// resolves call signatures against. Only the functions the aggregation
// planner rewrites are registered; resolution is loose (nonstrict
// supertype matching): the registry decides return and intermediate
// types from the argument types instead of demanding exact signatures.
package function

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/errno"
	"github.com/matrixorigin/cascade/pkg/sql/errors"
)

const (
	Count = "count"
	Sum   = "sum"
	Min   = "min"
	Max   = "max"
	Avg   = "avg"

	// Duplicate-insensitive counterparts used by the two-stage distinct
	// rewrite. Their intermediate state is a serialized distinct set.
	MultiDistinctCount = "multi_distinct_count"
	MultiDistinctSum   = "multi_distinct_sum"

	If     = "if"
	IsNull = "isnull"
)

// Function is a resolved signature. IntermediateType is only set for
// aggregate functions whose partial state differs from the return type;
// aggregates with nil IntermediateType merge through their return type.
type Function struct {
	Name       string
	ArgTypes   []types.Type
	ReturnType types.Type

	Aggregate        bool
	IntermediateType *types.Type
}

// GetIntermediateType returns the type of the partial aggregation state
// shipped between phases.
func (f *Function) GetIntermediateType() types.Type {
	if f.IntermediateType == nil {
		return f.ReturnType
	}
	return *f.IntermediateType
}

// ResultNullable reports whether the call result may be NULL. count and
// its multi-distinct form always produce a row, everything else keeps
// SQL's "empty group is NULL" behavior.
func (f *Function) ResultNullable() bool {
	switch f.Name {
	case Count, MultiDistinctCount:
		return false
	}
	return true
}

func typeP(t types.Type) *types.Type {
	return &t
}

// sumReturnType widens integers to bigint and keeps float/decimal.
func sumReturnType(arg types.Type) types.Type {
	switch {
	case arg.IsInteger():
		return types.New(types.T_int64)
	case arg.IsFloat():
		return types.New(types.T_float64)
	default:
		return arg
	}
}

// GetBuiltinFunction resolves name against the given argument types.
// Unknown names or impossible arities fail with a user-visible error;
// the optimizer treats an unresolvable rewrite as its own bug and panics
// at the call site instead.
func GetBuiltinFunction(name string, argTypes []types.Type) (*Function, error) {
	fn := &Function{Name: strings.ToLower(name), ArgTypes: argTypes}
	switch fn.Name {
	case Count:
		if len(argTypes) < 1 {
			return nil, badSignature(name, argTypes)
		}
		fn.Aggregate = true
		fn.ReturnType = types.New(types.T_int64)
	case Sum:
		if len(argTypes) != 1 {
			return nil, badSignature(name, argTypes)
		}
		fn.Aggregate = true
		fn.ReturnType = sumReturnType(argTypes[0])
	case Min, Max:
		if len(argTypes) != 1 {
			return nil, badSignature(name, argTypes)
		}
		fn.Aggregate = true
		fn.ReturnType = argTypes[0]
	case Avg:
		if len(argTypes) != 1 {
			return nil, badSignature(name, argTypes)
		}
		fn.Aggregate = true
		fn.ReturnType = types.New(types.T_float64)
		// partial avg state is (sum, count) serialized
		fn.IntermediateType = typeP(types.New(types.T_varbinary))
	case MultiDistinctCount:
		if len(argTypes) != 1 {
			return nil, badSignature(name, argTypes)
		}
		fn.Aggregate = true
		fn.ReturnType = types.New(types.T_int64)
		fn.IntermediateType = typeP(types.New(types.T_varbinary))
	case MultiDistinctSum:
		if len(argTypes) != 1 {
			return nil, badSignature(name, argTypes)
		}
		fn.Aggregate = true
		fn.ReturnType = sumReturnType(argTypes[0])
		fn.IntermediateType = typeP(types.New(types.T_varbinary))
	case If:
		if len(argTypes) != 3 {
			return nil, badSignature(name, argTypes)
		}
		// nonstrict: result type follows the else branch
		fn.ReturnType = argTypes[2]
	case IsNull:
		if len(argTypes) != 1 {
			return nil, badSignature(name, argTypes)
		}
		fn.ReturnType = types.New(types.T_bool)
	default:
		return nil, errors.New(errno.FeatureNotSupported,
			fmt.Sprintf("function '%s' is not supported", name))
	}
	return fn, nil
}

func badSignature(name string, argTypes []types.Type) error {
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.String()
	}
	return errors.New(errno.FeatureNotSupported,
		fmt.Sprintf("no builtin function matches '%s(%s)'", name, strings.Join(parts, ", ")))
}
