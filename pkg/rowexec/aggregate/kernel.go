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

// Package aggregate implements the aggregator kernels of spec §4.4: one per
// (ColumnDataType, AggregateFunction) pair, each generic over the column's Go
// value type and chosen once at construction. The per-row path is not free
// of dynamic dispatch: the operator calls Ingest through the Kernel interface
// once per row, with the value boxed in an interface{}, and each kernel
// type-asserts it back to its value type.
package aggregate

import (
	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/execinfrapb"
	"gitee.com/kwbasedb/hashagg/pkg/util/errorutil"
)

// Kernel is the uniform, type-erased surface the operator drives every
// aggregate context through. Each concrete Kernel implementation is itself
// generic over the column's Go value type, so the type-specialized code
// lives inside the kernel, not at this call boundary.
type Kernel interface {
	// Ingest processes one input row already assigned to resultID: if
	// isNull is false, value folds into the running aggregate; either way
	// the slot's representative RowID is recorded if this is its first
	// touch.
	Ingest(resultID uint32, rowID catalog.RowID, isNull bool, value interface{})

	// RowID returns the representative row id recorded for resultID, or
	// catalog.InvalidRowID if that slot has never been touched.
	RowID(resultID uint32) catalog.RowID

	// Materialize renders the output for resultID. ok is false when the
	// function's null policy (spec §4.4) says this group's value is NULL.
	Materialize(resultID uint32) (value interface{}, ok bool)

	// Len is the number of slots currently allocated.
	Len() uint32
}

// New builds the Kernel for one (AggregateFunction, ColumnDataType) pair,
// monomorphizing at construction time per spec's Design Notes. columnID ==
// execinfrapb.InvalidColumnID selects the COUNT(*) kernel and is only valid
// when fn == execinfrapb.Count.
func New(fn execinfrapb.AggregateFunction, columnID int, colType catalog.ColumnDataType) (Kernel, error) {
	if columnID == execinfrapb.InvalidColumnID {
		if fn != execinfrapb.Count {
			return nil, errorutil.InvalidAggregatef("COUNT(*) is the only aggregate valid with no input column")
		}
		return newCountStarKernel(), nil
	}

	switch fn {
	case execinfrapb.Min:
		return newMinMaxKernel(colType, false)
	case execinfrapb.Max:
		return newMinMaxKernel(colType, true)
	case execinfrapb.Sum:
		return newSumKernel(colType)
	case execinfrapb.Avg:
		return newAvgKernel(colType)
	case execinfrapb.Count:
		return newCountKernel(), nil
	case execinfrapb.CountDistinct:
		return newCountDistinctKernel(colType)
	case execinfrapb.StddevSamp:
		return newStddevKernel(colType)
	case execinfrapb.Any:
		return newAnyKernel(), nil
	default:
		return nil, errorutil.InvalidAggregatef("unsupported aggregate function %v", fn)
	}
}
