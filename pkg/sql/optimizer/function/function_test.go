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

package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/cascade/pkg/container/types"
	"github.com/matrixorigin/cascade/pkg/errno"
	"github.com/matrixorigin/cascade/pkg/sql/errors"
)

func TestAggregateResolution(t *testing.T) {
	count, err := GetBuiltinFunction(Count, []types.Type{types.New(types.T_varchar)})
	require.NoError(t, err)
	require.True(t, count.Aggregate)
	require.Equal(t, types.T_int64, count.ReturnType.Oid)
	require.Equal(t, types.T_int64, count.GetIntermediateType().Oid)
	require.False(t, count.ResultNullable())

	sum, err := GetBuiltinFunction(Sum, []types.Type{types.New(types.T_int32)})
	require.NoError(t, err)
	require.Equal(t, types.T_int64, sum.ReturnType.Oid)
	require.True(t, sum.ResultNullable())

	sumf, err := GetBuiltinFunction(Sum, []types.Type{types.New(types.T_float32)})
	require.NoError(t, err)
	require.Equal(t, types.T_float64, sumf.ReturnType.Oid)

	avg, err := GetBuiltinFunction(Avg, []types.Type{types.New(types.T_int64)})
	require.NoError(t, err)
	require.Equal(t, types.T_float64, avg.ReturnType.Oid)
	require.Equal(t, types.T_varbinary, avg.GetIntermediateType().Oid)

	minFn, err := GetBuiltinFunction(Min, []types.Type{types.New(types.T_varchar)})
	require.NoError(t, err)
	require.Equal(t, types.T_varchar, minFn.ReturnType.Oid)
}

func TestMultiDistinctResolution(t *testing.T) {
	mdc, err := GetBuiltinFunction(MultiDistinctCount, []types.Type{types.New(types.T_int64)})
	require.NoError(t, err)
	require.Equal(t, types.T_int64, mdc.ReturnType.Oid)
	require.Equal(t, types.T_varbinary, mdc.GetIntermediateType().Oid)
	require.False(t, mdc.ResultNullable())

	mds, err := GetBuiltinFunction(MultiDistinctSum, []types.Type{types.New(types.T_int32)})
	require.NoError(t, err)
	require.Equal(t, types.T_int64, mds.ReturnType.Oid)
	require.Equal(t, types.T_varbinary, mds.GetIntermediateType().Oid)
}

func TestScalarResolution(t *testing.T) {
	ifFn, err := GetBuiltinFunction(If, []types.Type{
		types.New(types.T_bool), types.New(types.T_varchar), types.New(types.T_varchar)})
	require.NoError(t, err)
	require.False(t, ifFn.Aggregate)
	require.Equal(t, types.T_varchar, ifFn.ReturnType.Oid)

	isNull, err := GetBuiltinFunction(IsNull, []types.Type{types.New(types.T_datetime)})
	require.NoError(t, err)
	require.Equal(t, types.T_bool, isNull.ReturnType.Oid)
}

func TestResolutionFailures(t *testing.T) {
	_, err := GetBuiltinFunction("percentile_disc", []types.Type{types.New(types.T_int64)})
	require.Error(t, err)
	require.Equal(t, errno.FeatureNotSupported, errors.Code(err))

	_, err = GetBuiltinFunction(If, []types.Type{types.New(types.T_bool)})
	require.Error(t, err)

	_, err = GetBuiltinFunction(Sum, nil)
	require.Error(t, err)
}
