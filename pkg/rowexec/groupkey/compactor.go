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

package groupkey

// compactionFactor is the row-count multiple a key's observed [min,max]
// range must stay under for compaction to kick in (spec §4.2).
const compactionFactor = 1.2

// ShouldCompact decides whether the observed single-column key range is
// dense enough to compact into [1, max-min+1], per spec §4.2.
func ShouldCompact(mm MinMaxRange, rowCount int) bool {
	if !mm.Seen {
		return false
	}
	span := mm.Max - mm.Min
	return float64(span) < compactionFactor*float64(rowCount)
}

// Compact rewrites every key in keys as ((key - min) + 1) | ResultIDCacheBit,
// for the ShapeSingle case only. The rewritten low 63 bits serve directly as
// the result id (spec §4.2): the Group Map returns them for a cached key
// without inserting the key or assigning an id of its own.
func Compact(keys PerChunk, mm MinMaxRange) {
	min := mm.Min
	for _, row := range keys {
		for i := range row {
			e := uint64(row[i].Single())
			compacted := Entry((e-min)+1) | ResultIDCacheBit
			row[i].SetSingle(compacted)
		}
	}
}
