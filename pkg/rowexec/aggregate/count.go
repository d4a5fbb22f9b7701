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

package aggregate

import (
	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/rowexec/groupmap"
)

// countKernel implements COUNT(column) (spec §4.4): the running accumulator
// is the non-NULL count itself, so Materialize never reports NULL, even for
// an empty group (Count == 0 is a legitimate zero, not an unset marker).
type countKernel struct {
	slots []groupmap.ResultSlot[struct{}]
}

func newCountKernel() Kernel {
	return &countKernel{}
}

func (k *countKernel) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	slot.Count++
}

func (k *countKernel) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *countKernel) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) {
		return uint32(0), true
	}
	return k.slots[resultID].Count, true
}

func (k *countKernel) Len() uint32 { return uint32(len(k.slots)) }

// countStarKernel implements COUNT(*) (spec §4.4 / §4.5): every row counts,
// NULL or not, so Ingest ignores isNull and value entirely. AddN folds in a
// whole chunk at once, the fast path the operator takes for the K=0
// (no GROUP BY columns) case instead of calling Ingest once per row.
type countStarKernel struct {
	slots []groupmap.ResultSlot[struct{}]
}

func newCountStarKernel() Kernel {
	return &countStarKernel{}
}

func (k *countStarKernel) Ingest(resultID uint32, rowID catalog.RowID, _ bool, _ interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	slot.Count++
}

// AddN folds n rows represented by rowID into resultID in one step.
func (k *countStarKernel) AddN(resultID uint32, rowID catalog.RowID, n uint32) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	slot.Count += n
}

func (k *countStarKernel) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *countStarKernel) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) {
		return uint32(0), true
	}
	return k.slots[resultID].Count, true
}

func (k *countStarKernel) Len() uint32 { return uint32(len(k.slots)) }
