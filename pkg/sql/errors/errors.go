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

package errors

import (
	"errors"
	"fmt"

	"github.com/matrixorigin/cascade/pkg/errno"
)

// SqlError carries an errno code alongside the message so callers can
// distinguish user errors from internal ones without string matching.
type SqlError struct {
	Code    uint16
	Message string
}

func (e *SqlError) Error() string {
	return e.Message
}

func New(code uint16, message string) *SqlError {
	return &SqlError{Code: code, Message: message}
}

func Newf(code uint16, format string, args ...interface{}) *SqlError {
	return &SqlError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsUserError reports whether err is a SqlError of the user error class.
func IsUserError(err error) bool {
	var se *SqlError
	if errors.As(err, &se) {
		return errno.IsUserError(se.Code)
	}
	return false
}

// Code returns the errno code of err, or errno.InternalError when err is
// not a SqlError.
func Code(err error) uint16 {
	var se *SqlError
	if errors.As(err, &se) {
		return se.Code
	}
	return errno.InternalError
}
