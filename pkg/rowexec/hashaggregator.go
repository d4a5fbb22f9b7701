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

// Package rowexec wires the Key Builder, Key Compactor, Group Map and
// aggregate Kernels together into the hash aggregation operator described
// end to end by spec §3-§6: one pass to build group keys, an optional
// compaction pass, one pass per chunk to resolve result ids and fold
// values into kernels, and a final pass to assemble the output table.
package rowexec

import (
	"context"
	"time"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/catalog/memtable"
	"gitee.com/kwbasedb/hashagg/pkg/execinfrapb"
	"gitee.com/kwbasedb/hashagg/pkg/rowexec/aggregate"
	"gitee.com/kwbasedb/hashagg/pkg/rowexec/groupkey"
	"gitee.com/kwbasedb/hashagg/pkg/rowexec/groupmap"
	"gitee.com/kwbasedb/hashagg/pkg/scheduler"
	"gitee.com/kwbasedb/hashagg/pkg/util/errorutil"
	"gitee.com/kwbasedb/hashagg/pkg/util/log"
	"gitee.com/kwbasedb/hashagg/pkg/util/timeutil"
)

// Stage names recorded by Stats(). Four stages are timed: key building,
// key compaction (recorded under the name "GroupByColumnsWriting", and only
// when there is one grouping column and at least one aggregate), aggregation,
// and output assembly. Writing the grouping columns and writing the aggregate
// columns are not timed separately: both happen inside OutputWriting, and no
// "AggregateColumnsWriting" stage is recorded.
const (
	StageBuildKeys = "GroupByKeyPartitioning"
	StageCompact   = "GroupByColumnsWriting"
	StageAggregate = "Aggregating"
	StageAssemble  = "OutputWriting"
)

// Option configures a HashAggregator at construction time.
type Option func(*HashAggregator)

// WithScheduler overrides the default scheduler.ErrGroupScheduler, mainly
// for tests that want a deterministic single-goroutine Scheduler.
func WithScheduler(sched scheduler.Scheduler) Option {
	return func(h *HashAggregator) { h.sched = sched }
}

// HashAggregator is a hash-based GROUP BY / aggregation operator over a
// catalog.Table, per spec §1-§6.
type HashAggregator struct {
	input            catalog.Table
	groupByColumnIDs []int
	aggregates       []execinfrapb.AggregateExpression
	sched            scheduler.Scheduler

	timer *timeutil.StageTimer
}

// New validates the request and returns a ready-to-run HashAggregator.
// aggregates may be empty, meaning the operator computes a DISTINCT over
// groupByColumnIDs instead (spec §4.5).
func New(
	input catalog.Table,
	groupByColumnIDs []int,
	aggregates []execinfrapb.AggregateExpression,
	opts ...Option,
) (*HashAggregator, error) {
	numColumns := input.ColumnCount()
	for _, columnID := range groupByColumnIDs {
		if columnID < 0 || columnID >= numColumns {
			return nil, errorutil.GroupByOutOfBoundsf(
				"group by column id %d is out of bounds for %d columns", columnID, numColumns)
		}
	}
	for _, agg := range aggregates {
		if agg.ColumnID == execinfrapb.InvalidColumnID {
			continue
		}
		if agg.ColumnID < 0 || agg.ColumnID >= numColumns {
			return nil, errorutil.GroupByOutOfBoundsf(
				"aggregate column id %d is out of bounds for %d columns", agg.ColumnID, numColumns)
		}
	}

	h := &HashAggregator{
		input:            input,
		groupByColumnIDs: groupByColumnIDs,
		aggregates:       aggregates,
		sched:            scheduler.NewErrGroupScheduler(),
		timer:            timeutil.NewStageTimer(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Stats returns the wall-clock duration spent in each named stage of the
// most recent Execute call.
func (h *HashAggregator) Stats() map[string]time.Duration {
	return h.timer.Durations()
}

// Execute runs the pipeline of spec §3 and returns the grouped, aggregated
// result as a new in-memory catalog.Table.
func (h *HashAggregator) Execute(ctx context.Context) (catalog.Table, error) {
	distinctOnly := len(h.aggregates) == 0

	builder := groupkey.NewBuilder(len(h.groupByColumnIDs))
	shape := builder.Shape()

	var keys groupkey.PerChunk
	var mm groupkey.MinMaxRange
	var err error
	h.timer.Time(StageBuildKeys, func() {
		keys, mm, err = builder.Build(ctx, h.sched, h.input, h.groupByColumnIDs)
	})
	if err != nil {
		return nil, err
	}

	cacheResultIDs := false
	if shape == groupkey.ShapeSingle && !distinctOnly {
		h.timer.Time(StageCompact, func() {
			if groupkey.ShouldCompact(mm, h.input.RowCount()) {
				groupkey.Compact(keys, mm)
				cacheResultIDs = true
			}
		})
	}

	var gmap *groupmap.Map
	if shape != groupkey.ShapeEmpty {
		gmap = groupmap.New(shape)
	}

	var kernels []aggregate.Kernel
	h.timer.Time(StageAggregate, func() {
		if distinctOnly {
			kernels, err = h.runDistinct(keys, shape, gmap)
		} else {
			kernels, err = h.runAggregates(keys, shape, gmap, cacheResultIDs)
		}
	})
	if err != nil {
		return nil, err
	}

	var out catalog.Table
	h.timer.Time(StageAssemble, func() {
		out = h.assembleOutput(kernels, distinctOnly)
	})

	log.VEventf(ctx, 2, "hash aggregator: %d output rows from %d input rows", out.RowCount(), h.input.RowCount())
	return out, nil
}

// runDistinct implements spec §4.5: a single dummy, inert MIN kernel
// exercises the Group Map with cache=false and never sees a real value, so
// SELECT DISTINCT reuses the exact same group-identity machinery as a real
// GROUP BY.
func (h *HashAggregator) runDistinct(
	keys groupkey.PerChunk, shape groupkey.Shape, gmap *groupmap.Map,
) ([]aggregate.Kernel, error) {
	dummy, err := aggregate.New(execinfrapb.Min, 0, catalog.ColumnDataTypeInt32)
	if err != nil {
		return nil, err
	}
	numChunks := h.input.ChunkCount()
	for c := 0; c < numChunks; c++ {
		chunk, ok := h.input.GetChunk(c)
		if !ok {
			continue
		}
		size := chunk.Size()
		for offset := 0; offset < size; offset++ {
			rowID := catalog.RowID{ChunkID: uint32(c), ChunkOffset: uint32(offset)}
			resultID := resultIDForRow(gmap, shape, keys, c, offset, false)
			dummy.Ingest(resultID, rowID, true, nil)
		}
	}
	return []aggregate.Kernel{dummy}, nil
}

// runAggregates implements the per-row loop of spec §4.4: resolve each
// row's result id from its GroupKey (or the single global group when
// K == 0), then fold every aggregate's input value into its Kernel.
func (h *HashAggregator) runAggregates(
	keys groupkey.PerChunk, shape groupkey.Shape, gmap *groupmap.Map, cacheResultIDs bool,
) ([]aggregate.Kernel, error) {
	kernels := make([]aggregate.Kernel, len(h.aggregates))
	for i, agg := range h.aggregates {
		var colType catalog.ColumnDataType
		if agg.ColumnID != execinfrapb.InvalidColumnID {
			colType = h.input.ColumnDataType(agg.ColumnID)
		}
		k, err := aggregate.New(agg.Function, agg.ColumnID, colType)
		if err != nil {
			return nil, err
		}
		kernels[i] = k
	}

	numChunks := h.input.ChunkCount()
	for c := 0; c < numChunks; c++ {
		chunk, ok := h.input.GetChunk(c)
		if !ok {
			continue
		}
		size := chunk.Size()
		if size == 0 {
			continue
		}

		resultIDs := make([]uint32, size)
		for offset := 0; offset < size; offset++ {
			resultIDs[offset] = resultIDForRow(gmap, shape, keys, c, offset, cacheResultIDs)
		}

		for i, agg := range h.aggregates {
			kernel := kernels[i]

			if agg.ColumnID == execinfrapb.InvalidColumnID {
				// COUNT(*): every row counts regardless of nullness; K=0
				// bypasses per-row Ingest entirely (spec §4.4).
				if cs, isCountStar := kernel.(bulkIngester); isCountStar && shape == groupkey.ShapeEmpty {
					cs.AddN(0, catalog.RowID{ChunkID: uint32(c), ChunkOffset: 0}, uint32(size))
					continue
				}
				for offset := 0; offset < size; offset++ {
					rowID := catalog.RowID{ChunkID: uint32(c), ChunkOffset: uint32(offset)}
					kernel.Ingest(resultIDs[offset], rowID, false, nil)
				}
				continue
			}

			seg := chunk.GetSegment(agg.ColumnID)
			seg.Visit(func(offset uint32, isNull bool, value interface{}) {
				rowID := catalog.RowID{ChunkID: uint32(c), ChunkOffset: offset}
				kernel.Ingest(resultIDs[offset], rowID, isNull, value)
			})
		}
	}
	return kernels, nil
}

// bulkIngester is implemented by countStarKernel to fold a whole chunk of
// identical-result-id rows in one call, the K=0 fast path spec §4.4 calls
// out explicitly (`results[0].count += chunk_size`).
type bulkIngester interface {
	AddN(resultID uint32, rowID catalog.RowID, n uint32)
}

// resultIDForRow resolves the GroupKey at (chunk, offset) to a result id,
// or 0 unconditionally when shape is ShapeEmpty (K == 0: a single global
// group never touches the Group Map).
func resultIDForRow(
	gmap *groupmap.Map, shape groupkey.Shape, keys groupkey.PerChunk, chunk, offset int, cacheResultIDs bool,
) uint32 {
	if shape == groupkey.ShapeEmpty {
		return 0
	}
	k := keys[chunk][offset]
	return gmap.GetOrAdd(&k, cacheResultIDs)
}

// assembleOutput implements the Output Assembler of spec §4.6: one output
// row per distinct group, grouping columns taken from each group's
// representative row, aggregate columns taken from each Kernel, ANY
// columns taken from the representative row directly.
func (h *HashAggregator) assembleOutput(kernels []aggregate.Kernel, distinctOnly bool) catalog.Table {
	numGroups := int(kernels[0].Len())
	emitEmptyRow := numGroups == 0 && len(h.groupByColumnIDs) == 0 && !distinctOnly

	columns := make([]memtable.Column, 0, len(h.groupByColumnIDs)+len(h.aggregates))
	for _, columnID := range h.groupByColumnIDs {
		columns = append(columns, memtable.Column{
			Name:     h.input.ColumnName(columnID),
			Type:     h.input.ColumnDataType(columnID),
			Nullable: h.input.ColumnIsNullable(columnID),
		})
	}
	if !distinctOnly {
		for _, agg := range h.aggregates {
			columns = append(columns, outputColumnFor(h.input, agg))
		}
	}

	b := memtable.NewBuilder(columns, 0)

	emit := func(resultID int) {
		row := make([]interface{}, 0, len(columns))
		repRowID := representativeRowID(kernels, uint32(resultID))
		for _, columnID := range h.groupByColumnIDs {
			row = append(row, valueAt(h.input, repRowID, columnID))
		}
		if !distinctOnly {
			for i, agg := range h.aggregates {
				if agg.Function == execinfrapb.Any {
					row = append(row, valueAt(h.input, repRowID, agg.ColumnID))
					continue
				}
				v, ok := kernels[i].Materialize(uint32(resultID))
				if !ok {
					row = append(row, nil)
					continue
				}
				row = append(row, v)
			}
		}
		b.AddRow(row...)
	}

	if emitEmptyRow {
		// spec §4.6 step 4: K=0, zero input rows still produces exactly
		// one output row (e.g. COUNT(*) of nothing is 0, not "no rows").
		// Every Kernel's Materialize/RowID already report their empty-slot
		// defaults for an out-of-range result id, so result id 0 renders
		// correctly even though no kernel ever assigned it.
		emit(0)
	} else {
		for resultID := 0; resultID < numGroups; resultID++ {
			if !representativeRowID(kernels, uint32(resultID)).Valid() {
				continue
			}
			emit(resultID)
		}
	}
	return b.Build()
}

// representativeRowID returns the first Kernel's recorded RowID for
// resultID: every Kernel touched by the same result id stream records the
// same representative row.
func representativeRowID(kernels []aggregate.Kernel, resultID uint32) catalog.RowID {
	for _, k := range kernels {
		if rid := k.RowID(resultID); rid.Valid() {
			return rid
		}
	}
	return catalog.InvalidRowID
}

func valueAt(table catalog.Table, rowID catalog.RowID, columnID int) interface{} {
	if !rowID.Valid() {
		return nil
	}
	chunk, ok := table.GetChunk(int(rowID.ChunkID))
	if !ok {
		return nil
	}
	v, isNull := chunk.GetSegment(columnID).At(rowID.ChunkOffset)
	if isNull {
		return nil
	}
	return v
}

func outputColumnFor(input catalog.Table, agg execinfrapb.AggregateExpression) memtable.Column {
	name := agg.As
	if name == "" {
		name = agg.Function.String()
	}
	switch agg.Function {
	case execinfrapb.Count, execinfrapb.CountDistinct:
		return memtable.Column{Name: name, Type: catalog.ColumnDataTypeInt64, Nullable: false}
	case execinfrapb.Avg, execinfrapb.StddevSamp:
		// AVG over DECIMAL materializes an *apd.Decimal, not a float64.
		if agg.Function == execinfrapb.Avg && input.ColumnDataType(agg.ColumnID) == catalog.ColumnDataTypeDecimal {
			return memtable.Column{Name: name, Type: catalog.ColumnDataTypeDecimal, Nullable: true}
		}
		return memtable.Column{Name: name, Type: catalog.ColumnDataTypeFloat64, Nullable: true}
	case execinfrapb.Any:
		return memtable.Column{
			Name:     name,
			Type:     input.ColumnDataType(agg.ColumnID),
			Nullable: input.ColumnIsNullable(agg.ColumnID),
		}
	default:
		var colType catalog.ColumnDataType
		if agg.ColumnID != execinfrapb.InvalidColumnID {
			colType = input.ColumnDataType(agg.ColumnID)
		}
		// SUM over int32 accumulates (and materializes) as int64.
		if agg.Function == execinfrapb.Sum && colType == catalog.ColumnDataTypeInt32 {
			colType = catalog.ColumnDataTypeInt64
		}
		return memtable.Column{Name: name, Type: colType, Nullable: true}
	}
}
