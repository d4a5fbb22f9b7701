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

package scheduler

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrGroupScheduler implements Scheduler on top of golang.org/x/sync/errgroup,
// the same fan-out/join primitive kwbase's own cluster_init.go and
// pgx_helpers.go use for bounded-parallelism task batches.
type ErrGroupScheduler struct {
	mu sync.Mutex
	g  *errgroup.Group
}

// NewErrGroupScheduler returns a ready-to-use ErrGroupScheduler.
func NewErrGroupScheduler() *ErrGroupScheduler {
	return &ErrGroupScheduler{g: new(errgroup.Group)}
}

// Schedule implements Scheduler.
func (s *ErrGroupScheduler) Schedule(ctx context.Context, t Task) {
	s.mu.Lock()
	g := s.g
	s.mu.Unlock()
	g.Go(func() error {
		return t(ctx)
	})
}

// ScheduleAndWait implements Scheduler.
func (s *ErrGroupScheduler) ScheduleAndWait(ctx context.Context) error {
	s.mu.Lock()
	g := s.g
	s.g = new(errgroup.Group)
	s.mu.Unlock()
	return g.Wait()
}
