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

package types

import "fmt"

type T uint8

const (
	// T_any matches any type during function resolution.
	T_any T = iota

	T_bool

	T_int8
	T_int16
	T_int32
	T_int64

	T_uint8
	T_uint16
	T_uint32
	T_uint64

	T_float32
	T_float64

	T_decimal64
	T_decimal128

	T_date
	T_datetime
	T_timestamp

	T_char
	T_varchar

	// T_varbinary holds serialized intermediate aggregation state
	// shipped between aggregation phases.
	T_varbinary

	T_array
)

// Type describes the semantic type of a column reference or a scalar
// expression. Width and Scale only matter for char/decimal kinds.
type Type struct {
	Oid   T
	Width int32
	Scale int32
}

func New(oid T) Type {
	return Type{Oid: oid}
}

func NewWithWidth(oid T, width int32) Type {
	return Type{Oid: oid, Width: width}
}

func (t Type) Eq(o Type) bool {
	return t.Oid == o.Oid && t.Width == o.Width && t.Scale == o.Scale
}

func (t Type) IsArray() bool {
	return t.Oid == T_array
}

func (t Type) IsDecimal() bool {
	return t.Oid == T_decimal64 || t.Oid == T_decimal128
}

func (t Type) IsInteger() bool {
	switch t.Oid {
	case T_int8, T_int16, T_int32, T_int64, T_uint8, T_uint16, T_uint32, T_uint64:
		return true
	}
	return false
}

func (t Type) IsFloat() bool {
	return t.Oid == T_float32 || t.Oid == T_float64
}

func (t Type) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat() || t.IsDecimal()
}

func (t Type) IsString() bool {
	return t.Oid == T_char || t.Oid == T_varchar
}

var typeNames = map[T]string{
	T_any:        "any",
	T_bool:       "bool",
	T_int8:       "tinyint",
	T_int16:      "smallint",
	T_int32:      "int",
	T_int64:      "bigint",
	T_uint8:      "tinyint unsigned",
	T_uint16:     "smallint unsigned",
	T_uint32:     "int unsigned",
	T_uint64:     "bigint unsigned",
	T_float32:    "float",
	T_float64:    "double",
	T_decimal64:  "decimal64",
	T_decimal128: "decimal128",
	T_date:       "date",
	T_datetime:   "datetime",
	T_timestamp:  "timestamp",
	T_char:       "char",
	T_varchar:    "varchar",
	T_varbinary:  "varbinary",
	T_array:      "array",
}

func (t T) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown type oid %d", uint8(t))
}

func (t Type) String() string {
	return t.Oid.String()
}
