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

// Package errno defines the error code space shared by the sql layer.
// Codes are grouped by class; the class decides whether an error is
// reported back to the client (user error) or aborts the compile
// (internal error).
package errno

const (
	// 20100 - 20199: internal errors. These indicate a broken invariant
	// inside the optimizer and are never surfaced as ordinary query
	// failures.
	InternalError       uint16 = 20101
	FeatureNotSupported uint16 = 20102

	// 20300 - 20399: user errors, reported as query-compile failures.
	SyntaxErrorOrAccessRuleViolation uint16 = 20301
	GroupingError                    uint16 = 20302
	InvalidColumnReference           uint16 = 20303
	BadConfiguration                 uint16 = 20304
)

// IsUserError reports whether the code belongs to the user error class.
func IsUserError(code uint16) bool {
	return code >= 20300 && code < 20400
}
