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

// Package memtable is a reference, entirely in-memory catalog.Table used by
// tests and the cmd/aggbench harness. Production kwbase plugs in the real
// segment storage layer instead.
package memtable

import "gitee.com/kwbasedb/hashagg/pkg/catalog"

// Column describes one column of a Builder-constructed table.
type Column struct {
	Name     string
	Type     catalog.ColumnDataType
	Nullable bool
}

// Builder accumulates rows and chunks them into a Table.
type Builder struct {
	columns   []Column
	rows      [][]interface{} // nil entry means NULL
	chunkSize int
}

// NewBuilder creates a Builder for the given column schema. chunkSize
// bounds how many rows land in each Chunk; values <= 0 mean "one chunk".
func NewBuilder(columns []Column, chunkSize int) *Builder {
	return &Builder{columns: columns, chunkSize: chunkSize}
}

// AddRow appends one row. Pass nil for a NULL value in a nullable column.
func (b *Builder) AddRow(values ...interface{}) {
	row := make([]interface{}, len(values))
	copy(row, values)
	b.rows = append(b.rows, row)
}

// Build materializes the accumulated rows into chunks and returns a Table.
func (b *Builder) Build() catalog.Table {
	size := b.chunkSize
	if size <= 0 || size > len(b.rows) {
		size = len(b.rows)
		if size == 0 {
			size = 1
		}
	}
	var chunks []*memChunk
	for start := 0; start < len(b.rows); start += size {
		end := start + size
		if end > len(b.rows) {
			end = len(b.rows)
		}
		chunks = append(chunks, newMemChunk(b.columns, b.rows[start:end]))
	}
	if len(b.rows) == 0 {
		chunks = nil
	}
	return &table{columns: b.columns, chunks: chunks, rowCount: len(b.rows)}
}

type table struct {
	columns  []Column
	chunks   []*memChunk
	rowCount int
}

func (t *table) ChunkCount() int { return len(t.chunks) }

func (t *table) GetChunk(id int) (catalog.Chunk, bool) {
	if id < 0 || id >= len(t.chunks) {
		return nil, false
	}
	return t.chunks[id], true
}

func (t *table) RowCount() int    { return t.rowCount }
func (t *table) ColumnCount() int { return len(t.columns) }

func (t *table) ColumnDataType(columnID int) catalog.ColumnDataType {
	return t.columns[columnID].Type
}

func (t *table) ColumnIsNullable(columnID int) bool {
	return t.columns[columnID].Nullable
}

func (t *table) ColumnName(columnID int) string {
	return t.columns[columnID].Name
}

type memChunk struct {
	columns []Column
	rows    [][]interface{}
}

func newMemChunk(columns []Column, rows [][]interface{}) *memChunk {
	return &memChunk{columns: columns, rows: rows}
}

func (c *memChunk) Size() int { return len(c.rows) }

func (c *memChunk) GetSegment(columnID int) catalog.Segment {
	return &memSegment{rows: c.rows, columnID: columnID}
}

type memSegment struct {
	rows     [][]interface{}
	columnID int
}

func (s *memSegment) Visit(visit func(offset uint32, isNull bool, value interface{})) {
	for i, row := range s.rows {
		v := row[s.columnID]
		visit(uint32(i), v == nil, v)
	}
}

func (s *memSegment) At(offset uint32) (interface{}, bool) {
	v := s.rows[offset][s.columnID]
	return v, v == nil
}
