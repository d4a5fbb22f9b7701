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

// Package execinfrapb is the expression-layer contract the hash aggregator
// consumes: which column an aggregate reads and which function applies.
// The real planner produces these; only the shape matters here.
package execinfrapb

// AggregateFunction enumerates the supported aggregate functions.
type AggregateFunction int

// Supported aggregate functions.
const (
	Min AggregateFunction = iota
	Max
	Sum
	Avg
	Count
	CountDistinct
	StddevSamp
	Any
)

// String implements fmt.Stringer.
func (f AggregateFunction) String() string {
	switch f {
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Count:
		return "COUNT"
	case CountDistinct:
		return "COUNT DISTINCT"
	case StddevSamp:
		return "STDDEV_SAMP"
	case Any:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// InvalidColumnID marks an aggregate with no input column, i.e. COUNT(*).
const InvalidColumnID = -1

// AggregateExpression names one aggregate to compute.
type AggregateExpression struct {
	// ColumnID is the input column this aggregate reads, or
	// InvalidColumnID for COUNT(*).
	ColumnID int
	Function AggregateFunction
	// As is the rendered output column name.
	As string
}
