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

// Package catalog defines the storage-layer contract the hash aggregator
// runs against: chunked, column-oriented tables. The engine's real storage
// manager implements these interfaces; only the interfaces matter here.
package catalog

import "math"

// ColumnDataType enumerates the column types the aggregator dispatches on.
type ColumnDataType int

// Supported column data types.
const (
	ColumnDataTypeInt32 ColumnDataType = iota
	ColumnDataTypeInt64
	ColumnDataTypeFloat64
	ColumnDataTypeString
	ColumnDataTypeDecimal
)

// String implements fmt.Stringer.
func (t ColumnDataType) String() string {
	switch t {
	case ColumnDataTypeInt32:
		return "Int32"
	case ColumnDataTypeInt64:
		return "Int64"
	case ColumnDataTypeFloat64:
		return "Float64"
	case ColumnDataTypeString:
		return "String"
	case ColumnDataTypeDecimal:
		return "Decimal"
	default:
		return "Unknown"
	}
}

// InvalidChunkID and InvalidChunkOffset are the sentinel components of
// InvalidRowID.
const (
	InvalidChunkID     uint32 = math.MaxUint32
	InvalidChunkOffset uint32 = math.MaxUint32
)

// RowID identifies a row by the chunk it belongs to and its offset within
// that chunk.
type RowID struct {
	ChunkID     uint32
	ChunkOffset uint32
}

// InvalidRowID marks an unused result slot.
var InvalidRowID = RowID{ChunkID: InvalidChunkID, ChunkOffset: InvalidChunkOffset}

// Valid reports whether r refers to an actual row.
func (r RowID) Valid() bool {
	return r != InvalidRowID
}

// Segment exposes one column's data within a chunk.
type Segment interface {
	// Visit iterates every position in offset order, yielding (isNull,
	// value) for each. value is meaningless when isNull is true.
	Visit(visit func(offset uint32, isNull bool, value interface{}))

	// At performs random access to a single offset.
	At(offset uint32) (value interface{}, isNull bool)
}

// Chunk is an immutable horizontal slice of a Table: one Segment per
// column, all sliced identically.
type Chunk interface {
	// Size is the number of rows in the chunk.
	Size() int

	// GetSegment returns the Segment backing columnID within this chunk.
	GetSegment(columnID int) Segment
}

// Table is the input the hash aggregator consumes: a sequence of Chunks.
type Table interface {
	ChunkCount() int

	// GetChunk returns the chunk with the given id. Missing chunks (false)
	// are skipped by callers, not treated as an error.
	GetChunk(id int) (Chunk, bool)

	RowCount() int
	ColumnCount() int
	ColumnDataType(columnID int) ColumnDataType
	ColumnIsNullable(columnID int) bool
	ColumnName(columnID int) string
}
