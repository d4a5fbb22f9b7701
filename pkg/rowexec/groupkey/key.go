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

// Shape selects one of the four GroupKey representations, chosen once per
// operator Execute from the number of grouping columns, so that the
// common K=0/1/2 cases avoid any heap allocation per row.
type Shape int

// Supported shapes.
const (
	ShapeEmpty  Shape = iota // K == 0: a single global group.
	ShapeSingle              // K == 1: one Entry.
	ShapePair                // K == 2: a fixed pair of Entry.
	ShapeSeq                 // K  > 2: a heap-backed slice of Entry, length K.
)

// ShapeFor returns the Shape appropriate for numGroupColumns grouping
// columns.
func ShapeFor(numGroupColumns int) Shape {
	switch numGroupColumns {
	case 0:
		return ShapeEmpty
	case 1:
		return ShapeSingle
	case 2:
		return ShapePair
	default:
		return ShapeSeq
	}
}

// Key is a GroupKey: the per-row identifier of a group. Its representation
// depends on Shape; only the accessors matching that shape are valid.
type Key struct {
	e0, e1 Entry
	seq    []Entry // len == numGroupColumns, only for ShapeSeq
}

// NewSeqKey allocates a Key for the ShapeSeq case with n entries.
func NewSeqKey(n int) Key {
	return Key{seq: make([]Entry, n)}
}

// Set writes the entry for grouping column index i. For ShapeSingle, i
// must be 0 and writes the whole key. For ShapePair, i must be 0 or 1. For
// ShapeSeq, i indexes the backing slice.
func (k *Key) Set(i int, e Entry) {
	switch {
	case k.seq != nil:
		k.seq[i] = e
	case i == 0:
		k.e0 = e
	case i == 1:
		k.e1 = e
	default:
		panic("groupkey: Set index out of range for non-Seq Key")
	}
}

// Get reads the entry at grouping column index i.
func (k Key) Get(i int) Entry {
	switch {
	case k.seq != nil:
		return k.seq[i]
	case i == 0:
		return k.e0
	case i == 1:
		return k.e1
	default:
		panic("groupkey: Get index out of range for non-Seq Key")
	}
}

// Single returns the sole entry of a ShapeSingle key.
func (k Key) Single() Entry { return k.e0 }

// SetSingle overwrites the sole entry of a ShapeSingle key. Used by the
// Compactor and by the Group Map's result-id cache writeback.
func (k *Key) SetSingle(e Entry) { k.e0 = e }

// Pair returns the two entries of a ShapePair key as a comparable array,
// suitable as a map key.
func (k Key) Pair() [2]Entry { return [2]Entry{k.e0, k.e1} }

// Seq returns the entries of a ShapeSeq key.
func (k Key) Seq() []Entry { return k.seq }

// PerChunk holds one Key per row, for every chunk of the input table,
// indexed by dense ChunkId.
type PerChunk [][]Key
