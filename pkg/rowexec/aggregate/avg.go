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

// avgAcc is AVG's running state (spec §4.4): AVG always widens to a
// floating-point running sum, regardless of the input column's integer or
// float type, and divides by the non-NULL count at materialization time.
type avgAcc struct {
	sum float64
	n   uint32
}

type avgKernel[T Number] struct {
	slots []groupmap.ResultSlot[avgAcc]
}

func newAvgKernel(colType catalog.ColumnDataType) (Kernel, error) {
	switch colType {
	case catalog.ColumnDataTypeInt32:
		return &avgKernel[int32]{}, nil
	case catalog.ColumnDataTypeInt64:
		return &avgKernel[int64]{}, nil
	case catalog.ColumnDataTypeFloat64:
		return &avgKernel[float64]{}, nil
	case catalog.ColumnDataTypeDecimal:
		return newDecimalAvgKernel(), nil
	default:
		return nil, errorutil.InvalidAggregatef("AVG unsupported for column type %v", colType)
	}
}

func (k *avgKernel[T]) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	slot.Acc.sum += toFloat64(value.(T))
	slot.Acc.n++
	slot.Count++
}

func (k *avgKernel[T]) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *avgKernel[T]) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) || k.slots[resultID].Acc.n == 0 {
		return nil, false
	}
	acc := k.slots[resultID].Acc
	return acc.sum / float64(acc.n), true
}

func (k *avgKernel[T]) Len() uint32 { return uint32(len(k.slots)) }
