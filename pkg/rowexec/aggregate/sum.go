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

// sumKernel implements SUM (spec §4.4): T is the column's value type, A is
// its widened accumulator type (int32 widens to int64; int64 and float64
// widen to themselves).
type sumKernel[T Number, A Number] struct {
	slots []groupmap.ResultSlot[A]
}

func newSumKernel(colType catalog.ColumnDataType) (Kernel, error) {
	switch colType {
	case catalog.ColumnDataTypeInt32:
		return &sumKernel[int32, int64]{}, nil
	case catalog.ColumnDataTypeInt64:
		return &sumKernel[int64, int64]{}, nil
	case catalog.ColumnDataTypeFloat64:
		return &sumKernel[float64, float64]{}, nil
	case catalog.ColumnDataTypeDecimal:
		return newDecimalSumKernel(), nil
	default:
		return nil, errorutil.InvalidAggregatef("SUM unsupported for column type %v", colType)
	}
}

func (k *sumKernel[T, A]) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	slot.Acc += A(value.(T))
	slot.Count++
}

func (k *sumKernel[T, A]) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *sumKernel[T, A]) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) || k.slots[resultID].Count == 0 {
		return nil, false
	}
	return k.slots[resultID].Acc, true
}

func (k *sumKernel[T, A]) Len() uint32 { return uint32(len(k.slots)) }
