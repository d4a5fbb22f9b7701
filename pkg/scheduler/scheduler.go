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

// Package scheduler is the external task-fan-out contract the hash
// aggregator's Key Builder uses to run one task per grouping column. The
// operator runs on the calling goroutine and only ever suspends at
// ScheduleAndWait.
package scheduler

import "context"

// Task is a one-shot, fire-and-forget unit of work with no return channel
// other than its error.
type Task func(ctx context.Context) error

// Scheduler enqueues tasks and joins a batch of them.
type Scheduler interface {
	// Schedule enqueues t to run, concurrently with any other task
	// scheduled since the last ScheduleAndWait.
	Schedule(ctx context.Context, t Task)

	// ScheduleAndWait blocks until every task enqueued since the last call
	// completes. If any task returned an error, ScheduleAndWait returns
	// one such error after every task has finished running (short tasks
	// are allowed to complete rather than being cancelled mid-flight).
	ScheduleAndWait(ctx context.Context) error
}
