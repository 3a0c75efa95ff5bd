// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a thin key/value layer over log/slog with the verbosity
// levels, terminal format and vmodule filtering used across this module.
package log

import (
	"context"
	"log/slog"
	"math"
	"os"
	"runtime"
	"time"
)

// Trace sits below slog's debug level and crit above its error level.
// Trace 低于 slog 的 debug 级别，crit 高于 error 级别。
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12

	levelAll slog.Level = math.MinInt
)

// legacyLevels is indexed by the numeric --verbosity value.
var legacyLevels = [...]slog.Level{LevelCrit, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}

// FromLegacyLevel maps a numeric verbosity (0=crit .. 5=trace) to a slog
// level. Values out of range are clamped.
// FromLegacyLevel 将数字级别（0=crit .. 5=trace）转换为 slog 级别，越界值取边界。
func FromLegacyLevel(lvl int) slog.Level {
	lvl = min(max(lvl, 0), len(legacyLevels)-1)
	return legacyLevels[lvl]
}

// levelNames holds the name of each level and its padded terminal tag.
var levelNames = map[slog.Level][2]string{
	LevelTrace: {"trace", "TRACE"},
	LevelDebug: {"debug", "DEBUG"},
	LevelInfo:  {"info", "INFO "},
	LevelWarn:  {"warn", "WARN "},
	LevelError: {"error", "ERROR"},
	LevelCrit:  {"crit", "CRIT "},
}

// LevelString is the lower case level name used by the JSON and logfmt
// output.
func LevelString(l slog.Level) string {
	if names, ok := levelNames[l]; ok {
		return names[0]
	}
	return "unknown"
}

// LevelAlignedString is the five character tag opening a terminal line.
func LevelAlignedString(l slog.Level) string {
	if names, ok := levelNames[l]; ok {
		return names[1]
	}
	return "unknown level"
}

// A Logger writes messages with alternating key/value context.
// Logger 以交替的键值对形式写入日志。
type Logger interface {
	// With and New both return a child carrying the extra context.
	With(ctx ...any) Logger
	New(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)

	// Crit exits the process once the record is written.
	Crit(msg string, ctx ...any)

	Write(level slog.Level, msg string, attrs ...any)
}

// NewLogger wraps a slog handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

type logger struct {
	inner *slog.Logger
}

// oddKey pads a context list that lost its last value.
const oddKey = "LOG_ERROR"

// Write records the caller three frames up. Every exported entry point, the
// package level ones included, sits exactly one frame above Write so the
// recorded source line is the call site.
// Write 记录向上第三层调用者；所有导出入口都恰好比 Write 高一层，保证记录的源码位置正确。
func (l *logger) Write(level slog.Level, msg string, attrs ...any) {
	ctx := context.Background()
	if !l.inner.Enabled(ctx, level) {
		return
	}
	var pc [1]uintptr
	runtime.Callers(3, pc[:])

	if len(attrs)%2 == 1 {
		attrs = append(attrs, nil, oddKey, "Normalized odd number of arguments by adding nil")
	}
	rec := slog.NewRecord(time.Now(), level, msg, pc[0])
	rec.Add(attrs...)
	l.inner.Handler().Handle(ctx, rec)
}

func (l *logger) With(ctx ...any) Logger { return &logger{l.inner.With(ctx...)} }
func (l *logger) New(ctx ...any) Logger  { return &logger{l.inner.With(ctx...)} }

func (l *logger) Trace(msg string, ctx ...any) { l.Write(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.Write(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.Write(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.Write(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.Write(LevelError, msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...any) {
	l.Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}
