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

package rowexec

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/catalog/memtable"
	"gitee.com/kwbasedb/hashagg/pkg/execinfrapb"
	"gitee.com/kwbasedb/hashagg/pkg/util/leaktest"
)

func rowKey(row []interface{}) string {
	return fmt.Sprint(row)
}

// multisetOf reads every row of table into a multiset keyed by its string
// representation, for order-independent comparison against an expected
// multiset.
func multisetOf(t *testing.T, table catalog.Table) map[string]int {
	t.Helper()
	out := map[string]int{}
	for c := 0; c < table.ChunkCount(); c++ {
		chunk, ok := table.GetChunk(c)
		if !ok {
			continue
		}
		for offset := 0; offset < chunk.Size(); offset++ {
			row := make([]interface{}, table.ColumnCount())
			for col := 0; col < table.ColumnCount(); col++ {
				v, isNull := chunk.GetSegment(col).At(uint32(offset))
				if isNull {
					row[col] = nil
				} else {
					row[col] = v
				}
			}
			out[rowKey(row)]++
		}
	}
	return out
}

// TestS1EmptyInputK1 covers spec scenario S6's K=1 half: zero rows with
// one grouping column produces zero output rows.
func TestS6EmptyInputK1(t *testing.T) {
	defer leaktest.AfterTest(t)()
	table := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32},
	}, 0).Build()

	agg, err := New(table, []int{0}, nil)
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, out.RowCount())
}

// TestS2SumGroupByWithNulls covers spec scenario S2: SUM(v) GROUP BY k,
// with NULL treated as its own group.
func TestS2SumGroupByWithNulls(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32, Nullable: true},
		{Name: "v", Type: catalog.ColumnDataTypeInt32},
	}, 2)
	rows := [][2]interface{}{
		{int32(1), int32(10)}, {int32(1), int32(20)}, {int32(2), int32(30)},
		{nil, int32(40)}, {int32(2), int32(50)}, {nil, int32(60)},
	}
	for _, r := range rows {
		b.AddRow(r[0], r[1])
	}
	table := b.Build()

	agg, err := New(table, []int{0}, []execinfrapb.AggregateExpression{
		{ColumnID: 1, Function: execinfrapb.Sum, As: "sum_v"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)

	got := multisetOf(t, out)
	want := map[string]int{
		rowKey([]interface{}{int32(1), int64(30)}): 1,
		rowKey([]interface{}{int32(2), int64(80)}): 1,
		rowKey([]interface{}{nil, int64(100)}):     1,
	}
	require.Equal(t, want, got)
}

// TestS3CountDistinct covers spec scenario S3.
func TestS3CountDistinct(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32},
		{Name: "v", Type: catalog.ColumnDataTypeString},
	}, 0)
	b.AddRow(int32(1), "a")
	b.AddRow(int32(1), "a")
	b.AddRow(int32(1), "b")
	b.AddRow(int32(2), "a")
	table := b.Build()

	agg, err := New(table, []int{0}, []execinfrapb.AggregateExpression{
		{ColumnID: 1, Function: execinfrapb.CountDistinct, As: "cd"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)

	got := multisetOf(t, out)
	want := map[string]int{
		rowKey([]interface{}{int32(1), uint32(2)}): 1,
		rowKey([]interface{}{int32(2), uint32(1)}): 1,
	}
	require.Equal(t, want, got)
}

// TestS4DistinctPath covers spec scenario S4: SELECT DISTINCT a, b.
func TestS4DistinctPath(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "a", Type: catalog.ColumnDataTypeInt32},
		{Name: "b", Type: catalog.ColumnDataTypeString},
	}, 0)
	b.AddRow(int32(1), "x")
	b.AddRow(int32(1), "x")
	b.AddRow(int32(2), "x")
	b.AddRow(int32(1), "y")
	table := b.Build()

	agg, err := New(table, []int{0, 1}, nil)
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)

	got := multisetOf(t, out)
	want := map[string]int{
		rowKey([]interface{}{int32(1), "x"}): 1,
		rowKey([]interface{}{int32(2), "x"}): 1,
		rowKey([]interface{}{int32(1), "y"}): 1,
	}
	require.Equal(t, want, got)
}

// TestS5ShortStringBoundary covers spec scenario S5: strings of length 4
// must not collide in group assignment with strings of length 5 sharing a
// prefix, nor with each other.
func TestS5ShortStringBoundary(t *testing.T) {
	defer leaktest.AfterTest(t)()
	values := []string{"", "\x01", "\x01\x00", "a", "ab", "abcd", "abcde"}
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "s", Type: catalog.ColumnDataTypeString},
	}, 0)
	for _, v := range values {
		b.AddRow(v)
	}
	table := b.Build()

	agg, err := New(table, []int{0}, nil)
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(values), out.RowCount())
}

// TestS6EmptyInputK0 covers spec scenario S6's K=0 half: zero rows still
// produce exactly one output row, NULL for SUM and 0 for COUNT(*).
func TestS6EmptyInputK0(t *testing.T) {
	defer leaktest.AfterTest(t)()
	table := memtable.NewBuilder([]memtable.Column{
		{Name: "x", Type: catalog.ColumnDataTypeInt32, Nullable: true},
	}, 0).Build()

	agg, err := New(table, nil, []execinfrapb.AggregateExpression{
		{ColumnID: execinfrapb.InvalidColumnID, Function: execinfrapb.Count, As: "n"},
		{ColumnID: 0, Function: execinfrapb.Sum, As: "sum_x"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.RowCount())

	chunk, ok := out.GetChunk(0)
	require.True(t, ok)
	n, nIsNull := chunk.GetSegment(0).At(0)
	require.False(t, nIsNull)
	require.Equal(t, uint32(0), n)
	_, sumIsNull := chunk.GetSegment(1).At(0)
	require.True(t, sumIsNull)
}

// TestS7AvgIntegerWidensToFloat covers spec scenario S7.
func TestS7AvgIntegerWidensToFloat(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "v", Type: catalog.ColumnDataTypeInt64},
	}, 0)
	for _, v := range []int64{1, 2, 2, 3} {
		b.AddRow(v)
	}
	table := b.Build()

	agg, err := New(table, nil, []execinfrapb.AggregateExpression{
		{ColumnID: 0, Function: execinfrapb.Avg, As: "avg_v"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.RowCount())

	chunk, ok := out.GetChunk(0)
	require.True(t, ok)
	v, isNull := chunk.GetSegment(0).At(0)
	require.False(t, isNull)
	require.InDelta(t, 2.0, v.(float64), 1e-9)
}

// TestCompactionInvarianceK1 covers universal property 5: forcing
// compaction on vs. off (by varying the observed range's density) must not
// change which groups are reported, only internal key representation.
func TestCompactionInvarianceK1(t *testing.T) {
	defer leaktest.AfterTest(t)()
	newTable := func(spread int32) catalog.Table {
		b := memtable.NewBuilder([]memtable.Column{
			{Name: "k", Type: catalog.ColumnDataTypeInt32},
			{Name: "v", Type: catalog.ColumnDataTypeInt32},
		}, 0)
		b.AddRow(int32(0), int32(1))
		b.AddRow(int32(1), int32(2))
		b.AddRow(spread, int32(3))
		return b.Build()
	}

	for _, spread := range []int32{2, 10_000_000} {
		table := newTable(spread)
		agg, err := New(table, []int{0}, []execinfrapb.AggregateExpression{
			{ColumnID: 1, Function: execinfrapb.Sum, As: "sum_v"},
		})
		require.NoError(t, err)
		out, err := agg.Execute(context.Background())
		require.NoError(t, err)
		require.Equal(t, 3, out.RowCount())
	}
}

// TestCountStarBulkAddK0 exercises the K=0 bulk-add fast path over a
// table whose only chunk holds several rows.
func TestCountStarBulkAddK0(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "x", Type: catalog.ColumnDataTypeInt32},
	}, 0)
	for i := 0; i < 5; i++ {
		b.AddRow(int32(i))
	}
	table := b.Build()

	agg, err := New(table, nil, []execinfrapb.AggregateExpression{
		{ColumnID: execinfrapb.InvalidColumnID, Function: execinfrapb.Count, As: "n"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)

	chunk, ok := out.GetChunk(0)
	require.True(t, ok)
	n, _ := chunk.GetSegment(0).At(0)
	require.Equal(t, uint32(5), n)
}

// TestGroupByOutOfBounds covers the ErrGroupByOutOfBounds error path.
func TestGroupByOutOfBounds(t *testing.T) {
	defer leaktest.AfterTest(t)()
	table := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32},
	}, 0).Build()

	_, err := New(table, []int{5}, nil)
	require.Error(t, err)
}

// TestPairShapeGroupBy exercises K=2 (ShapePair).
func TestPairShapeGroupBy(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "a", Type: catalog.ColumnDataTypeInt32},
		{Name: "b", Type: catalog.ColumnDataTypeInt32},
		{Name: "v", Type: catalog.ColumnDataTypeInt32},
	}, 0)
	b.AddRow(int32(1), int32(1), int32(10))
	b.AddRow(int32(1), int32(1), int32(20))
	b.AddRow(int32(1), int32(2), int32(30))
	table := b.Build()

	agg, err := New(table, []int{0, 1}, []execinfrapb.AggregateExpression{
		{ColumnID: 2, Function: execinfrapb.Sum, As: "sum_v"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)

	got := multisetOf(t, out)
	want := map[string]int{
		rowKey([]interface{}{int32(1), int32(1), int64(30)}): 1,
		rowKey([]interface{}{int32(1), int32(2), int64(30)}): 1,
	}
	require.Equal(t, want, got)
}

// TestSeqShapeGroupBy exercises K>2 (ShapeSeq).
func TestSeqShapeGroupBy(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "a", Type: catalog.ColumnDataTypeInt32},
		{Name: "b", Type: catalog.ColumnDataTypeInt32},
		{Name: "c", Type: catalog.ColumnDataTypeInt32},
		{Name: "v", Type: catalog.ColumnDataTypeInt32},
	}, 0)
	b.AddRow(int32(1), int32(1), int32(1), int32(10))
	b.AddRow(int32(1), int32(1), int32(1), int32(20))
	b.AddRow(int32(1), int32(1), int32(2), int32(30))
	table := b.Build()

	agg, err := New(table, []int{0, 1, 2}, []execinfrapb.AggregateExpression{
		{ColumnID: 3, Function: execinfrapb.Max, As: "max_v"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, out.RowCount())
}

// TestAnyPseudoAggregate exercises the ANY pseudo-aggregate's
// representative-row materialization.
func TestAnyPseudoAggregate(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32},
		{Name: "tag", Type: catalog.ColumnDataTypeString},
	}, 0)
	b.AddRow(int32(1), "first")
	b.AddRow(int32(1), "second")
	table := b.Build()

	agg, err := New(table, []int{0}, []execinfrapb.AggregateExpression{
		{ColumnID: 1, Function: execinfrapb.Any, As: "tag"},
	})
	require.NoError(t, err)
	out, err := agg.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.RowCount())

	chunk, ok := out.GetChunk(0)
	require.True(t, ok)
	v, isNull := chunk.GetSegment(1).At(0)
	require.False(t, isNull)
	require.Contains(t, []string{"first", "second"}, v.(string))
}

// TestInvalidAggregateAvgOnString covers the ErrInvalidAggregate path: AVG
// requires an arithmetic column type.
func TestInvalidAggregateAvgOnString(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "s", Type: catalog.ColumnDataTypeString},
	}, 0)
	b.AddRow("x")
	table := b.Build()

	_, err := New(table, nil, []execinfrapb.AggregateExpression{
		{ColumnID: 0, Function: execinfrapb.Avg, As: "avg_s"},
	})
	require.NoError(t, err) // New only validates column bounds.

	agg, _ := New(table, nil, []execinfrapb.AggregateExpression{
		{ColumnID: 0, Function: execinfrapb.Avg, As: "avg_s"},
	})
	_, err = agg.Execute(context.Background())
	require.Error(t, err)
}
