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

package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/execinfrapb"
)

func TestStddevSampKnownValues(t *testing.T) {
	k, err := New(execinfrapb.StddevSamp, 0, catalog.ColumnDataTypeFloat64)
	require.NoError(t, err)
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		k.Ingest(0, row(0, 0), false, v)
	}
	v, ok := k.Materialize(0)
	require.True(t, ok)
	require.InDelta(t, 2.1380899, v.(float64), 1e-6)
}

func TestStddevSampNullBelowTwoSamples(t *testing.T) {
	k, err := New(execinfrapb.StddevSamp, 0, catalog.ColumnDataTypeInt32)
	require.NoError(t, err)
	k.Ingest(0, row(0, 0), false, int32(1))
	_, ok := k.Materialize(0)
	require.False(t, ok)
}

func TestWelfordMatchesTextbookVariance(t *testing.T) {
	var w welfordState
	for _, v := range []float64{1, 2, 3, 4} {
		w.add(v)
	}
	variance, ok := w.sampleVariance()
	require.True(t, ok)
	require.InDelta(t, 1.6666667, variance, 1e-6)
	require.InDelta(t, math.Sqrt(1.6666667), math.Sqrt(variance), 1e-6)
}
