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
	"math"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/rowexec/groupmap"
	"gitee.com/kwbasedb/hashagg/pkg/util/errorutil"
)

// welfordState accumulates the sample variance of a group one value at a
// time without the catastrophic cancellation of sum-of-squares formulas
// (Welford's online algorithm).
type welfordState struct {
	n    uint32
	mean float64
	m2   float64
}

func (w *welfordState) add(x float64) {
	w.n++
	delta := x - w.mean
	w.mean += delta / float64(w.n)
	delta2 := x - w.mean
	w.m2 += delta * delta2
}

// sampleVariance returns the sample variance, which is undefined for n < 2.
func (w *welfordState) sampleVariance() (float64, bool) {
	if w.n < 2 {
		return 0, false
	}
	return w.m2 / float64(w.n-1), true
}

type stddevKernel[T Number] struct {
	slots []groupmap.ResultSlot[welfordState]
}

func newStddevKernel(colType catalog.ColumnDataType) (Kernel, error) {
	switch colType {
	case catalog.ColumnDataTypeInt32:
		return &stddevKernel[int32]{}, nil
	case catalog.ColumnDataTypeInt64:
		return &stddevKernel[int64]{}, nil
	case catalog.ColumnDataTypeFloat64:
		return &stddevKernel[float64]{}, nil
	default:
		return nil, errorutil.InvalidAggregatef("STDDEV_SAMP unsupported for column type %v", colType)
	}
}

func (k *stddevKernel[T]) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	slot.Acc.add(toFloat64(value.(T)))
	slot.Count++
}

func (k *stddevKernel[T]) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *stddevKernel[T]) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) {
		return nil, false
	}
	variance, ok := k.slots[resultID].Acc.sampleVariance()
	if !ok {
		return nil, false
	}
	return math.Sqrt(variance), true
}

func (k *stddevKernel[T]) Len() uint32 { return uint32(len(k.slots)) }
