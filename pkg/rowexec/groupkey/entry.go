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

// Package groupkey builds the per-row GroupKey entries that identify which
// group a row belongs to (spec §4.1) and, for the single-column case,
// compacts them into a dense range with a cached result id (spec §4.2).
package groupkey

// Entry is one 64-bit component of a GroupKey. 0 is reserved for SQL NULL;
// the top bit is the result-id-cache flag (set by the Compactor, consumed
// by the Group Map).
type Entry uint64

// NullEntry is the reserved NULL entry value.
const NullEntry Entry = 0

// ResultIDCacheBit marks an Entry as carrying a cached result id in its
// low 63 bits rather than a group-identifying value.
const ResultIDCacheBit Entry = 1 << 63

const resultIDMask Entry = ResultIDCacheBit - 1

// CachedResultID reports whether e carries a cached result id, and if so,
// returns it.
func (e Entry) CachedResultID() (id uint32, ok bool) {
	if e&ResultIDCacheBit == 0 {
		return 0, false
	}
	return uint32(e & resultIDMask), true
}

// WithCachedResultID returns an Entry with the result-id-cache bit set and
// id packed into the low 63 bits.
func WithCachedResultID(id uint32) Entry {
	return ResultIDCacheBit | Entry(id)
}

// Short-string direct-id bases (spec §4.1 Case B sub-optimization). Chosen
// so the five length classes (and the id-map range for length >= 5) never
// collide.
const (
	shortStringLen0ID   Entry = 1
	shortStringLen1Base Entry = 2
	shortStringLen2Base Entry = 258
	shortStringLen3Base Entry = 65794
	shortStringLen4Base Entry = 16843010
	// IDMapStringBase is the first id assignable by the per-task id map
	// for strings of length >= 5.
	IDMapStringBase Entry = 5000000000
)

// ShortStringEntry computes the direct numeric id for a string of length
// 0..4, per spec §4.1. Callers must not call this for len(s) >= 5.
func ShortStringEntry(s string) Entry {
	switch len(s) {
	case 0:
		return shortStringLen0ID
	case 1:
		return shortStringLen1Base + Entry(s[0])
	case 2:
		return shortStringLen2Base + Entry(s[1])<<8 + Entry(s[0])
	case 3:
		return shortStringLen3Base + Entry(s[2])<<16 + Entry(s[1])<<8 + Entry(s[0])
	case 4:
		return shortStringLen4Base + Entry(s[3])<<24 + Entry(s[2])<<16 + Entry(s[1])<<8 + Entry(s[0])
	default:
		panic("groupkey: ShortStringEntry called with len(s) >= 5")
	}
}
