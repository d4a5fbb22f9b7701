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
	"testing"

	"github.com/stretchr/testify/require"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/execinfrapb"
)

func TestSumInt32WidensToInt64(t *testing.T) {
	k, err := New(execinfrapb.Sum, 0, catalog.ColumnDataTypeInt32)
	require.NoError(t, err)
	k.Ingest(0, row(0, 0), false, int32(10))
	k.Ingest(0, row(0, 1), false, int32(20))

	v, ok := k.Materialize(0)
	require.True(t, ok)
	require.IsType(t, int64(0), v)
	require.Equal(t, int64(30), v)
}

func TestSumAllNullIsNull(t *testing.T) {
	k, err := New(execinfrapb.Sum, 0, catalog.ColumnDataTypeFloat64)
	require.NoError(t, err)
	k.Ingest(0, row(0, 0), true, nil)
	_, ok := k.Materialize(0)
	require.False(t, ok)
}
