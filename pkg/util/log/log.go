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

// Package log is a ctx-first structured logging facade, call-compatible
// with kwbase's own util/log package (Infof/Warningf/Errorf/Fatalf take a
// context.Context first), backed by zap instead of kwbase's bespoke
// glog-derived core.
package log

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

var base = mustBuild()

func mustBuild() *zap.SugaredLogger {
	l, err := zap.NewProduction()
	if err != nil {
		// Logging must never be the reason the process can't start.
		l = zap.NewNop()
	}
	return l.Sugar()
}

// traceIDKey is the context key VEventf-style callers may stash a trace or
// span id under; when present it's attached to every log line.
type traceIDKey struct{}

// WithTraceID returns a context that tags subsequent log calls with id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

func withCtx(ctx context.Context) *zap.SugaredLogger {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		return base.With("trace_id", id)
	}
	return base
}

// Infof logs at info level.
func Infof(ctx context.Context, format string, args ...interface{}) {
	withCtx(ctx).Infof(format, args...)
}

// Warningf logs at warn level.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	withCtx(ctx).Warnf(format, args...)
}

// Errorf logs at error level.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	withCtx(ctx).Errorf(format, args...)
}

// Fatalf logs at fatal level and terminates the process, matching
// kwbase/pkg/util/log.Fatalf's behavior.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	withCtx(ctx).Fatalf(format, args...)
}

// VEventf logs at info level with level prefixed to the message. There is
// no verbosity setting in this module, so every call is logged whatever its
// level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	withCtx(ctx).Infof(fmt.Sprintf("[v%d] %s", level, format), args...)
}
