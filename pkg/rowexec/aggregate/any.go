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

// anyKernel implements ANY() (spec §4.4 / §4.5): a pseudo-aggregate used for
// non-aggregated SELECT columns the SQL standard leaves implementation
// defined under GROUP BY. It carries no running value of its own; it only
// records which representative row each group picked, so the operator's
// output assembler materializes the column straight from that row, the same
// way it does for an actual GROUP BY column.
type anyKernel struct {
	slots []groupmap.ResultSlot[struct{}]
}

func newAnyKernel() Kernel {
	return &anyKernel{}
}

func (k *anyKernel) Ingest(resultID uint32, rowID catalog.RowID, _ bool, _ interface{}) {
	slot := groupmap.EnsureSlot(&k.slots, resultID)
	if !slot.RowID.Valid() {
		slot.RowID = rowID
	}
}

func (k *anyKernel) RowID(resultID uint32) catalog.RowID {
	if int(resultID) >= len(k.slots) {
		return catalog.InvalidRowID
	}
	return k.slots[resultID].RowID
}

// Materialize always reports no value: ANY's output comes from the column
// segment at RowID, not from any accumulator this kernel owns.
func (k *anyKernel) Materialize(uint32) (interface{}, bool) { return nil, false }

func (k *anyKernel) Len() uint32 { return uint32(len(k.slots)) }
