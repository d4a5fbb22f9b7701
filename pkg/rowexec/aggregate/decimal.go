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
	"github.com/cockroachdb/apd/v3"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/rowexec/groupmap"
)

// decimalContext bounds the precision of every Decimal arithmetic op a
// kernel in this file performs to 38 significant digits.
var decimalContext = apd.BaseContext.WithPrecision(38)

func decimalValue(value interface{}) *apd.Decimal {
	switch v := value.(type) {
	case *apd.Decimal:
		return v
	case apd.Decimal:
		return &v
	default:
		panic("aggregate: value is not a Decimal")
	}
}

// decimalMinMaxKernel implements MIN/MAX over DECIMAL columns; apd.Decimal
// compares via Cmp rather than a relational operator, so it needs its own
// kernel instead of folding into the generic Ordered minMaxKernel.
type decimalMinMaxKernel struct {
	slots []groupmap.ResultSlot[apd.Decimal]
	isMax bool
}

func newDecimalMinMaxKernel(isMax bool) Kernel {
	return &decimalMinMaxKernel{isMax: isMax}
}

func (k *decimalMinMaxKernel) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	v := decimalValue(value)
	if slot.Count == 0 {
		slot.Acc.Set(v)
	} else {
		cmp := slot.Acc.Cmp(v)
		if (k.isMax && cmp < 0) || (!k.isMax && cmp > 0) {
			slot.Acc.Set(v)
		}
	}
	slot.Count++
}

func (k *decimalMinMaxKernel) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *decimalMinMaxKernel) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) || k.slots[resultID].Count == 0 {
		return nil, false
	}
	v := k.slots[resultID].Acc
	return &v, true
}

func (k *decimalMinMaxKernel) Len() uint32 { return uint32(len(k.slots)) }

// decimalSumKernel implements SUM over DECIMAL columns.
type decimalSumKernel struct {
	slots []groupmap.ResultSlot[apd.Decimal]
}

func newDecimalSumKernel() Kernel {
	return &decimalSumKernel{}
}

func (k *decimalSumKernel) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	v := decimalValue(value)
	_, _ = decimalContext.Add(&slot.Acc, &slot.Acc, v)
	slot.Count++
}

func (k *decimalSumKernel) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *decimalSumKernel) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) || k.slots[resultID].Count == 0 {
		return nil, false
	}
	v := k.slots[resultID].Acc
	return &v, true
}

func (k *decimalSumKernel) Len() uint32 { return uint32(len(k.slots)) }

// decimalAvgAcc is AVG's running state over DECIMAL columns: a running sum
// plus a non-NULL count, divided at materialization time.
type decimalAvgAcc struct {
	sum apd.Decimal
	n   uint32
}

type decimalAvgKernel struct {
	slots []groupmap.ResultSlot[decimalAvgAcc]
}

func newDecimalAvgKernel() Kernel {
	return &decimalAvgKernel{}
}

func (k *decimalAvgKernel) Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
	if isNull {
		return
	}
	v := decimalValue(value)
	_, _ = decimalContext.Add(&slot.Acc.sum, &slot.Acc.sum, v)
	slot.Acc.n++
	slot.Count++
}

func (k *decimalAvgKernel) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

func (k *decimalAvgKernel) Materialize(resultID uint32) (interface{}, bool) {
	if int(resultID) >= len(k.slots) || k.slots[resultID].Acc.n == 0 {
		return nil, false
	}
	acc := k.slots[resultID].Acc
	var divisor, result apd.Decimal
	divisor.SetInt64(int64(acc.n))
	_, _ = decimalContext.Quo(&result, &acc.sum, &divisor)
	return &result, true
}

func (k *decimalAvgKernel) Len() uint32 { return uint32(len(k.slots)) }
