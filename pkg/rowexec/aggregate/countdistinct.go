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
	"gitee.com/kwbasedb/hashagg/pkg/util/errorutil"
)

// countDistinctKernel implements COUNT(DISTINCT column) (spec §4.4): each
// group keeps its own distinct-value set, so memory is O(groups * distinct
// values per group) in the worst case, same as the upstream design note.
type countDistinctKernel[T comparable] struct {
	slots []groupmap.ResultSlot[map[T]struct{}]
}

func newCountDistinctKernel(colType catalog.ColumnDataType) (Kernel, error) {
	switch colType {
	case catalog.ColumnDataTypeInt32:
		return &countDistinctKernel[int32]{}, nil
	case catalog.ColumnDataTypeInt64:
		return &countDistinctKernel[int64]{}, nil
	case catalog.ColumnDataTypeFloat64:
		return &countDistinctKernel[float64]{}, nil
	case catalog.ColumnDataTypeString:
		return &countDistinctKernel[string]{}, nil
	default:
		return nil, errorutil.InvalidAggregatef("COUNT(DISTINCT) unsupported for column type %v", colType)
	}
}

func (k *countDistinctKernel[T]) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	if slot.Acc == nil {
		slot.Acc = make(map[T]struct{})
	}
	v := value.(T)
	if _, seen := slot.Acc[v]; !seen {
		slot.Acc[v] = struct{}{}
		slot.Count++
	}
}

func (k *countDistinctKernel[T]) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *countDistinctKernel[T]) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) {
		return uint32(0), true
	}
	return uint32(len(k.slots[resultID].Acc)), true
}

func (k *countDistinctKernel[T]) Len() uint32 { return uint32(len(k.slots)) }
