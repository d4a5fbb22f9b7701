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

// Command aggbench synthesizes an input table and runs the hash aggregator
// over it, reporting per-stage timings, so the operator's behavior can be
// exercised outside a full query engine.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gitee.com/kwbasedb/hashagg/pkg/catalog"
	"gitee.com/kwbasedb/hashagg/pkg/catalog/memtable"
	"gitee.com/kwbasedb/hashagg/pkg/execinfrapb"
	"gitee.com/kwbasedb/hashagg/pkg/rowexec"
	"gitee.com/kwbasedb/hashagg/pkg/util/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		rows        int
		cardinality int
		chunkSize   int
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "aggbench",
		Short: "Benchmark the hash aggregation operator over a synthesized table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), rows, cardinality, chunkSize, seed)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 1_000_000, "number of input rows to synthesize")
	cmd.Flags().IntVar(&cardinality, "cardinality", 1000, "number of distinct group-by key values")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 65536, "rows per input chunk")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed for synthesized data")

	return cmd
}

func runBench(ctx context.Context, rows, cardinality, chunkSize int, seed int64) error {
	table := synthesize(rows, cardinality, chunkSize, seed)

	agg, err := rowexec.New(
		table,
		[]int{0},
		[]execinfrapb.AggregateExpression{
			{ColumnID: 1, Function: execinfrapb.Sum, As: "sum_v"},
			{ColumnID: 1, Function: execinfrapb.Avg, As: "avg_v"},
			{ColumnID: execinfrapb.InvalidColumnID, Function: execinfrapb.Count, As: "n"},
		},
	)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := agg.Execute(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	log.Infof(ctx, "aggbench: %d input rows -> %d output rows in %s", rows, out.RowCount(), elapsed)
	for stage, d := range agg.Stats() {
		fmt.Printf("%-28s %s\n", stage, d)
	}
	return nil
}

// synthesize builds a table with an int32 group-by column k uniform over
// [0, cardinality) and an int64 value column v, chunked at chunkSize rows.
func synthesize(rows, cardinality, chunkSize int, seed int64) catalog.Table {
	rng := rand.New(rand.NewSource(seed))
	b := memtable.NewBuilder([]memtable.Column{
		{Name: "k", Type: catalog.ColumnDataTypeInt32, Nullable: false},
		{Name: "v", Type: catalog.ColumnDataTypeInt64, Nullable: false},
	}, chunkSize)
	for i := 0; i < rows; i++ {
		b.AddRow(int32(rng.Intn(cardinality)), int64(rng.Intn(1000)))
	}
	return b.Build()
}
