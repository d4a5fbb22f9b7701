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

// Package timeutil provides StageTimer, a small named wall-clock stopwatch
// the operator uses to time its execution stages.
package timeutil

import "time"

// StageTimer accumulates wall-clock durations under named stages.
type StageTimer struct {
	durations map[string]time.Duration
}

// NewStageTimer returns an empty StageTimer.
func NewStageTimer() *StageTimer {
	return &StageTimer{durations: make(map[string]time.Duration)}
}

// Time runs fn and records its wall-clock duration under stage, adding to
// any prior recording under the same name.
func (s *StageTimer) Time(stage string, fn func()) {
	start := time.Now()
	fn()
	s.durations[stage] += time.Since(start)
}

// Durations returns a copy of the accumulated per-stage durations.
func (s *StageTimer) Durations() map[string]time.Duration {
	out := make(map[string]time.Duration, len(s.durations))
	for k, v := range s.durations {
		out[k] = v
	}
	return out
}
