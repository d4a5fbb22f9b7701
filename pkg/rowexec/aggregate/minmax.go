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

// minMaxKernel implements MIN and MAX (spec §4.4): the running state is
// simply the value T, with ResultSlot.Count == 0 meaning "unset".
type minMaxKernel[T Ordered] struct {
	slots []groupmap.ResultSlot[T]
	isMax bool
}

func newMinMaxKernel(colType catalog.ColumnDataType, isMax bool) (Kernel, error) {
	switch colType {
	case catalog.ColumnDataTypeInt32:
		return &minMaxKernel[int32]{isMax: isMax}, nil
	case catalog.ColumnDataTypeInt64:
		return &minMaxKernel[int64]{isMax: isMax}, nil
	case catalog.ColumnDataTypeFloat64:
		return &minMaxKernel[float64]{isMax: isMax}, nil
	case catalog.ColumnDataTypeString:
		return &minMaxKernel[string]{isMax: isMax}, nil
	case catalog.ColumnDataTypeDecimal:
		return newDecimalMinMaxKernel(isMax), nil
	default:
		return nil, errorutil.InvalidAggregatef("MIN/MAX unsupported for column type %v", colType)
	}
}

func (k *minMaxKernel[T]) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	v := value.(T)
	if slot.Count == 0 || (k.isMax && v > slot.Acc) || (!k.isMax && v < slot.Acc) {
		slot.Acc = v
	}
	slot.Count++
}

func (k *minMaxKernel[T]) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *minMaxKernel[T]) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) || k.slots[resultID].Count == 0 {
		return nil, false
	}
	return k.slots[resultID].Acc, true
}

func (k *minMaxKernel[T]) Len() uint32 { return uint32(len(k.slots)) }
