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

package groupmap

import "gitee.com/kwbasedb/hashagg/pkg/catalog"

// ResultSlot holds one aggregate kernel's per-group state: the first row
// seen for the group (used only to materialize grouping columns later),
// how many non-NULL values were folded in, and the running accumulator,
// whose type A varies by (ColumnDataType, AggregateFunction) per spec §3.
type ResultSlot[A any] struct {
	RowID catalog.RowID
	Count uint32
	Acc   A
}

// newResultSlot returns a default-initialized slot: no row seen yet.
func newResultSlot[A any]() ResultSlot[A] {
	return ResultSlot[A]{RowID: catalog.InvalidRowID}
}

// EnsureSlot grows *slots (if needed) so index resultID is valid, default-
// initializing any newly created slots, and returns a pointer to it. This
// is spec §4.3's "grow results to result_id+1 if needed" for every shape.
func EnsureSlot[A any](slots *[]ResultSlot[A], resultID uint32) *ResultSlot[A] {
	if int(resultID) >= len(*slots) {
		grown := make([]ResultSlot[A], resultID+1)
		copy(grown, *slots)
		for i := len(*slots); i < len(grown); i++ {
			grown[i] = newResultSlot[A]()
		}
		*slots = grown
	}
	return &(*slots)[resultID]
}
