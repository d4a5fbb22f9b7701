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

package groupmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitee.com/kwbasedb/hashagg/pkg/rowexec/groupkey"
)

func TestGetOrAddSingleAssignsDenseIDs(t *testing.T) {
	m := New(groupkey.ShapeSingle)
	var k1, k2, k3 groupkey.Key
	k1.SetSingle(10)
	k2.SetSingle(20)
	k3.SetSingle(10)

	id1 := m.GetOrAdd(&k1, false)
	id2 := m.GetOrAdd(&k2, false)
	id3 := m.GetOrAdd(&k3, false)

	require.Equal(t, id1, id3)
	require.NotEqual(t, id1, id2)
	require.EqualValues(t, 2, m.Len())
}

func TestGetOrAddSingleCachesResultID(t *testing.T) {
	m := New(groupkey.ShapeSingle)
	var k groupkey.Key
	k.SetSingle(99)

	id := m.GetOrAdd(&k, true)
	cached, ok := k.Single().CachedResultID()
	require.True(t, ok)
	require.Equal(t, id, cached)

	// A second lookup against the now-cached key must short-circuit
	// without consulting the underlying swiss map at all.
	id2 := m.GetOrAdd(&k, true)
	require.Equal(t, id, id2)
}

func TestGetOrAddPair(t *testing.T) {
	m := New(groupkey.ShapePair)
	var k1, k2 groupkey.Key
	k1.Set(0, 1)
	k1.Set(1, 2)
	k2.Set(0, 1)
	k2.Set(1, 3)

	id1 := m.GetOrAdd(&k1, false)
	id2 := m.GetOrAdd(&k2, false)
	require.NotEqual(t, id1, id2)
}

func TestGetOrAddSeq(t *testing.T) {
	m := New(groupkey.ShapeSeq)
	k1 := groupkey.NewSeqKey(3)
	k1.Set(0, 1)
	k1.Set(1, 2)
	k1.Set(2, 3)
	k2 := groupkey.NewSeqKey(3)
	k2.Set(0, 1)
	k2.Set(1, 2)
	k2.Set(2, 3)
	k3 := groupkey.NewSeqKey(3)
	k3.Set(0, 1)
	k3.Set(1, 2)
	k3.Set(2, 4)

	id1 := m.GetOrAdd(&k1, false)
	id2 := m.GetOrAdd(&k2, false)
	id3 := m.GetOrAdd(&k3, false)
	require.Equal(t, id1, id2)
	require.NotEqual(t, id1, id3)
}

func TestEnsureSlotGrowsAndDefaultInits(t *testing.T) {
	var slots []ResultSlot[int64]
	s := EnsureSlot(&slots, 3)
	require.Len(t, slots, 4)
	require.False(t, slots[0].RowID.Valid())
	require.False(t, slots[3].RowID.Valid())
	s.Acc = 42
	require.Equal(t, int64(42), slots[3].Acc)
}
