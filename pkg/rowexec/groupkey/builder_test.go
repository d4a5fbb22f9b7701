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
	"testing"

	"github.com/stretchr/testify/require"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/catalog/memtable"
	"gitee.com/kwbasedb/hashagg/pkg/scheduler"
	"gitee.com/kwbasedb/hashagg/pkg/util/leaktest"
)

func TestBuilderSingleColumnInt32(t *testing.T) {
	defer leaktest.AfterTest(t)()
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32, Nullable: true},
	}, 0)
	b.AddRow(int32(5))
	b.AddRow(nil)
	b.AddRow(int32(5))
	table := b.Build()

	builder := NewBuilder(1)
	require.Equal(t, ShapeSingle, builder.Shape())

	keys, mm, err := builder.Build(context.Background(), scheduler.NewErrGroupScheduler(), table, []int{0})
	require.NoError(t, err)
	require.True(t, mm.Seen)

	require.Equal(t, keys[0][0].Single(), keys[0][2].Single())
	require.Equal(t, NullEntry, keys[0][1].Single())
	require.NotEqual(t, keys[0][0].Single(), keys[0][1].Single())
}

func TestBuilderOutOfBoundsColumn(t *testing.T) {
	defer leaktest.AfterTest(t)()
	table := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32},
	}, 0).Build()

	builder := NewBuilder(1)
	_, _, err := builder.Build(context.Background(), scheduler.NewErrGroupScheduler(), table, []int{7})
	require.Error(t, err)
}

func TestBuilderShapeEmptyNoWork(t *testing.T) {
	defer leaktest.AfterTest(t)()
	table := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32},
	}, 0).Build()

	builder := NewBuilder(0)
	require.Equal(t, ShapeEmpty, builder.Shape())
	keys, mm, err := builder.Build(context.Background(), scheduler.NewErrGroupScheduler(), table, nil)
	require.NoError(t, err)
	require.Nil(t, keys)
	require.False(t, mm.Seen)
}
