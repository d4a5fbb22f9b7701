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

import (
	"context"
	"math"
	"sync/atomic"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/scheduler"
	"gitee.com/kwbasedb/hashagg/pkg/util/errorutil"
)

// MinMaxRange is the observed range of ShapeSingle entries across every
// chunk, populated only when there is exactly one grouping column. A zero
// value (with Seen == false) means either K != 1 or the input had no rows.
type MinMaxRange struct {
	Min, Max uint64
	Seen     bool
}

// minMaxTracker accumulates MinMaxRange under concurrent updates from Key
// Builder tasks, per spec §5: "relaxed atomics suffice since both tasks on
// the same column do not coexist in K=1".
type minMaxTracker struct {
	min, max atomic.Uint64
	seen     atomic.Bool
}

func newMinMaxTracker() *minMaxTracker {
	t := &minMaxTracker{}
	t.min.Store(math.MaxUint64)
	return t
}

func (t *minMaxTracker) observe(e Entry) {
	v := uint64(e)
	for {
		old := t.min.Load()
		if v >= old {
			break
		}
		if t.min.CompareAndSwap(old, v) {
			break
		}
	}
	for {
		old := t.max.Load()
		if v <= old {
			break
		}
		if t.max.CompareAndSwap(old, v) {
			break
		}
	}
	t.seen.Store(true)
}

func (t *minMaxTracker) Range() MinMaxRange {
	if !t.seen.Load() {
		return MinMaxRange{}
	}
	return MinMaxRange{Min: t.min.Load(), Max: t.max.Load(), Seen: true}
}

// Builder populates PerChunk so that keys[chunkID][offset] uniquely
// identifies the group of that row, per spec §4.1.
type Builder struct {
	shape           Shape
	numGroupColumns int
}

// NewBuilder returns a Builder for the given number of grouping columns.
func NewBuilder(numGroupColumns int) *Builder {
	return &Builder{shape: ShapeFor(numGroupColumns), numGroupColumns: numGroupColumns}
}

// Shape returns the GroupKey shape this Builder produces.
func (b *Builder) Shape() Shape { return b.shape }

// Build runs one scheduler task per grouping column (in parallel) and
// returns the populated PerChunk, plus the observed MinMaxRange when
// Shape() == ShapeSingle.
func (b *Builder) Build(
	ctx context.Context,
	sched scheduler.Scheduler,
	table catalog.Table,
	groupColumnIDs []int,
) (PerChunk, MinMaxRange, error) {
	if b.shape == ShapeEmpty {
		return nil, MinMaxRange{}, nil
	}

	numColumns := table.ColumnCount()
	for _, columnID := range groupColumnIDs {
		if columnID < 0 || columnID >= numColumns {
			return nil, MinMaxRange{}, errorutil.GroupByOutOfBoundsf(
				"group by column id %d is out of bounds for %d columns", columnID, numColumns)
		}
	}

	numChunks := table.ChunkCount()
	keys := make(PerChunk, numChunks)
	chunks := make([]catalog.Chunk, numChunks)
	for c := 0; c < numChunks; c++ {
		chunk, ok := table.GetChunk(c)
		if !ok {
			continue
		}
		chunks[c] = chunk
		row := make([]Key, chunk.Size())
		if b.shape == ShapeSeq {
			for i := range row {
				row[i] = NewSeqKey(b.numGroupColumns)
			}
		}
		keys[c] = row
	}

	var tracker *minMaxTracker
	if b.shape == ShapeSingle {
		tracker = newMinMaxTracker()
	}

	for j, columnID := range groupColumnIDs {
		j, columnID := j, columnID
		colType := table.ColumnDataType(columnID)
		sched.Schedule(ctx, func(ctx context.Context) error {
			return buildColumn(chunks, keys, j, colType, columnID, tracker)
		})
	}
	if err := sched.ScheduleAndWait(ctx); err != nil {
		return nil, MinMaxRange{}, err
	}

	var mm MinMaxRange
	if tracker != nil {
		mm = tracker.Range()
	}
	return keys, mm, nil
}

func buildColumn(
	chunks []catalog.Chunk,
	keys PerChunk,
	groupColIdx int,
	colType catalog.ColumnDataType,
	columnID int,
	tracker *minMaxTracker,
) error {
	switch colType {
	case catalog.ColumnDataTypeInt32:
		return buildInt32Column(chunks, keys, groupColIdx, columnID, tracker)
	case catalog.ColumnDataTypeInt64:
		return buildIDMapColumn(chunks, keys, groupColIdx, columnID, tracker, newIDMap[int64](1))
	case catalog.ColumnDataTypeFloat64:
		return buildIDMapColumn(chunks, keys, groupColIdx, columnID, tracker, newIDMap[float64](1))
	case catalog.ColumnDataTypeDecimal:
		return buildIDMapColumn(chunks, keys, groupColIdx, columnID, tracker, newIDMap[string](1))
	case catalog.ColumnDataTypeString:
		return buildStringColumn(chunks, keys, groupColIdx, columnID, tracker)
	default:
		return errorutil.Internalf("groupkey: unsupported column data type %v", colType)
	}
}

// buildInt32Column implements spec §4.1 Case A: no auxiliary map, direct
// formula mapping every int32 value into a disjoint positive uint64.
func buildInt32Column(
	chunks []catalog.Chunk, keys PerChunk, groupColIdx int, columnID int, tracker *minMaxTracker,
) error {
	for c, chunk := range chunks {
		if chunk == nil {
			continue
		}
		seg := chunk.GetSegment(columnID)
		row := keys[c]
		var convErr error
		seg.Visit(func(offset uint32, isNull bool, value interface{}) {
			var e Entry
			if isNull {
				e = NullEntry
			} else {
				v, ok := value.(int32)
				if !ok {
					convErr = errorutil.Internalf("groupkey: expected int32, got %T", value)
					return
				}
				e = Entry(uint64(int64(v)-int64(math.MinInt32)) + 1)
			}
			if tracker != nil {
				tracker.observe(e)
			}
			writeEntry(row, int(offset), groupColIdx, e)
		})
		if convErr != nil {
			return convErr
		}
	}
	return nil
}

// buildStringColumn implements spec §4.1 Case B with the short-string
// sub-optimization: lengths 0..4 get a direct numeric id, lengths >= 5 use
// a per-task id map starting at IDMapStringBase.
func buildStringColumn(
	chunks []catalog.Chunk, keys PerChunk, groupColIdx int, columnID int, tracker *minMaxTracker,
) error {
	ids := newIDMap[string](IDMapStringBase)
	for c, chunk := range chunks {
		if chunk == nil {
			continue
		}
		seg := chunk.GetSegment(columnID)
		row := keys[c]
		var convErr error
		seg.Visit(func(offset uint32, isNull bool, value interface{}) {
			var e Entry
			if isNull {
				e = NullEntry
			} else {
				s, ok := value.(string)
				if !ok {
					convErr = errorutil.Internalf("groupkey: expected string, got %T", value)
					return
				}
				if len(s) <= 4 {
					e = ShortStringEntry(s)
				} else {
					e = ids.idFor(s)
				}
			}
			if tracker != nil {
				tracker.observe(e)
			}
			writeEntry(row, int(offset), groupColIdx, e)
		})
		if convErr != nil {
			return convErr
		}
	}
	return nil
}

// buildIDMapColumn implements spec §4.1 Case B for types with no dense
// direct encoding: int64, float64, and (as an extension) decimal, keyed by
// its canonical string form.
func buildIDMapColumn[T comparable](
	chunks []catalog.Chunk,
	keys PerChunk,
	groupColIdx int,
	columnID int,
	tracker *minMaxTracker,
	ids *idMap[T],
) error {
	for c, chunk := range chunks {
		if chunk == nil {
			continue
		}
		seg := chunk.GetSegment(columnID)
		row := keys[c]
		var convErr error
		seg.Visit(func(offset uint32, isNull bool, value interface{}) {
			var e Entry
			if isNull {
				e = NullEntry
			} else {
				v, ok := toComparable[T](value)
				if !ok {
					convErr = errorutil.Internalf("groupkey: unexpected value type %T", value)
					return
				}
				e = ids.idFor(v)
			}
			if tracker != nil {
				tracker.observe(e)
			}
			writeEntry(row, int(offset), groupColIdx, e)
		})
		if convErr != nil {
			return convErr
		}
	}
	return nil
}

// writeEntry sets only the entry at groupColIdx of row[offset], in place, so
// concurrent tasks for other grouping columns of the same row never overwrite
// each other's entries.
func writeEntry(row []Key, offset, groupColIdx int, e Entry) {
	row[offset].Set(groupColIdx, e)
}

// idMap assigns dense, incrementing Entry ids to distinct values of T,
// starting at start. One idMap is owned by exactly one Key Builder task, so
// no locking is required (spec §4.1, §5).
type idMap[T comparable] struct {
	m    map[T]Entry
	next Entry
}

func newIDMap[T comparable](start Entry) *idMap[T] {
	return &idMap[T]{m: make(map[T]Entry), next: start}
}

func (m *idMap[T]) idFor(v T) Entry {
	if e, ok := m.m[v]; ok {
		return e
	}
	e := m.next
	m.m[v] = e
	m.next++
	return e
}

// toComparable adapts a dynamically-typed segment value to T, including
// the decimal-as-string special case.
func toComparable[T comparable](value interface{}) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		if s, ok := value.(fmt_Stringer); ok {
			return any(s.String()).(T), true
		}
	}
	v, ok := value.(T)
	return v, ok
}

// fmt_Stringer avoids importing fmt just for the Stringer interface shape.
type fmt_Stringer interface {
	String() string
}
