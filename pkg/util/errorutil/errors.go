// Copyright (c) 2022-present, Shanghai Yunxi Technology Co, Ltd. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// This software (KWDB) is licensed under Mulan PSL v2.
// You can use this software according to the terms and conditions of the Mulan PSL v2.
// You may obtain a copy of Mulan PSL v2 at:
//          http://license.coscl.org.cn/MulanPSL2
// THIS SOFTWARE IS PROVIDED ON AN "AS IS" BASIS, WITHOUT WARRANTIES OF ANY KIND,
// EITHER EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO NON-INFRINGEMENT,
// MERCHANTABILITY OR FIT FOR A PARTICULAR PURPOSE.
// See the Mulan PSL v2 for more details.

// Package errorutil defines the hash aggregator's three error kinds and
// helpers to raise and classify them, on top of cockroachdb/errors.
package errorutil

import "github.com/cockroachdb/errors"

// Sentinel error kinds. Classify a returned error with errors.Is against
// these; cockroachdb/errors preserves the chain through Wrapf/Newf.
var (
	// ErrInvalidAggregate: AVG/STDDEV_SAMP requested on a non-arithmetic
	// column, COUNT(*) paired with a valid column id, or a non-COUNT
	// aggregate paired with InvalidColumnID.
	ErrInvalidAggregate = errors.New("invalid aggregate")

	// ErrGroupByOutOfBounds: a grouping column id, or an aggregate's input
	// column id other than InvalidColumnID, is outside the input table's
	// columns.
	ErrGroupByOutOfBounds = errors.New("group by column out of bounds")

	// ErrInternal: a type-conversion or key-cache invariant was violated.
	ErrInternal = errors.New("internal error")
)

// InvalidAggregatef wraps ErrInvalidAggregate with a formatted detail.
func InvalidAggregatef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidAggregate, format, args...)
}

// GroupByOutOfBoundsf wraps ErrGroupByOutOfBounds with a formatted detail.
func GroupByOutOfBoundsf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrGroupByOutOfBounds, format, args...)
}

// Internalf wraps ErrInternal with a formatted detail.
func Internalf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInternal, format, args...)
}
