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

// Package groupmap is the Group Map of spec §4.3: a hash map from GroupKey
// to a dense result id, shared by every aggregate kernel of one operator
// invocation so they agree on which result id names which group.
package groupmap

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/swiss"

	"gitee.com/kwbasedb/hashagg/pkg/rowexec/groupkey"
)

// defaultCapacity is the initial swiss-table capacity; small enough not to
// waste memory on tiny inputs, large enough to dodge the first few grows.
const defaultCapacity = 32

// Map is the Group Map for grouping shapes K >= 1. K == 0 (a single global
// group) never needs a Map; callers special-case it.
type Map struct {
	shape  groupkey.Shape
	next   uint32
	single *swiss.Map[groupkey.Entry, uint32]
	pair   *swiss.Map[[2]groupkey.Entry, uint32]
	seq    *swiss.Map[uint64, []seqBucketEntry]
}

type seqBucketEntry struct {
	encoded string
	id      uint32
}

// New returns a Map for the given non-empty shape.
func New(shape groupkey.Shape) *Map {
	m := &Map{shape: shape}
	switch shape {
	case groupkey.ShapeSingle:
		m.single = swiss.NewMap[groupkey.Entry, uint32](defaultCapacity)
	case groupkey.ShapePair:
		m.pair = swiss.NewMap[[2]groupkey.Entry, uint32](defaultCapacity)
	case groupkey.ShapeSeq:
		m.seq = swiss.NewMap[uint64, []seqBucketEntry](defaultCapacity)
	default:
		panic("groupmap: New called with ShapeEmpty")
	}
	return m
}

// GetOrAdd implements spec §4.3's get_or_add_result for K >= 1: it returns
// the result id for key, assigning a new one on first sight. For ShapeSingle
// keys with cacheResultIDs set, a key that already carries the cache bit
// returns its cached id without a hash lookup, and any other key gets its
// result id written back into *key with the cache bit set, per spec §4.3's
// dense-range bypass. ShapePair and ShapeSeq keys ignore cacheResultIDs.
func (m *Map) GetOrAdd(key *groupkey.Key, cacheResultIDs bool) uint32 {
	switch m.shape {
	case groupkey.ShapeSingle:
		return m.getOrAddSingle(key, cacheResultIDs)
	case groupkey.ShapePair:
		return m.getOrAddPair(key)
	case groupkey.ShapeSeq:
		return m.getOrAddSeq(key)
	default:
		panic("groupmap: GetOrAdd called on a Map with ShapeEmpty")
	}
}

func (m *Map) getOrAddSingle(key *groupkey.Key, cacheResultIDs bool) uint32 {
	if cacheResultIDs {
		if id, ok := key.Single().CachedResultID(); ok {
			return id
		}
	}
	k := key.Single()
	if id, ok := m.single.Get(k); ok {
		if cacheResultIDs {
			key.SetSingle(groupkey.WithCachedResultID(id))
		}
		return id
	}
	id := m.next
	m.next++
	m.single.Put(k, id)
	if cacheResultIDs {
		key.SetSingle(groupkey.WithCachedResultID(id))
	}
	return id
}

func (m *Map) getOrAddPair(key *groupkey.Key) uint32 {
	k := key.Pair()
	if id, ok := m.pair.Get(k); ok {
		return id
	}
	id := m.next
	m.next++
	m.pair.Put(k, id)
	return id
}

func (m *Map) getOrAddSeq(key *groupkey.Key) uint32 {
	encoded := encodeSeq(key.Seq())
	h := xxhash.Sum64String(encoded)
	bucket, _ := m.seq.Get(h)
	for _, e := range bucket {
		if e.encoded == encoded {
			return e.id
		}
	}
	id := m.next
	m.next++
	m.seq.Put(h, append(bucket, seqBucketEntry{encoded: encoded, id: id}))
	return id
}

// Len is the number of distinct groups this Map has assigned a result id so
// far. Result ids read from keys that already carry the cache bit are not
// counted.
func (m *Map) Len() uint32 { return m.next }

// encodeSeq packs a ShapeSeq key's entries into a comparable string so it
// can be chained under its xxhash bucket.
func encodeSeq(entries []groupkey.Entry) string {
	buf := make([]byte, 8*len(entries))
	for i, e := range entries {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(e))
	}
	return string(buf)
}
