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

package log

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// rootHolder keeps the stored type fixed whatever Logger is installed.
type rootHolder struct{ Logger }

var root atomic.Value

func init() {
	root.Store(rootHolder{NewLogger(DiscardHandler())})
}

// SetDefault installs l as the package logger. A logger built by NewLogger
// also becomes slog's default.
// SetDefault 设置全局默认日志器，由 NewLogger 创建的日志器同时成为 slog 的默认日志器。
func SetDefault(l Logger) {
	root.Store(rootHolder{l})
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the package logger, which discards everything until
// SetDefault runs.
func Root() Logger {
	return root.Load().(rootHolder).Logger
}

// New returns a child of the package logger.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

// The helpers below call Write directly so they keep the call depth of the
// logger methods.

func Trace(msg string, ctx ...any) { Root().Write(LevelTrace, msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Write(LevelDebug, msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Write(LevelInfo, msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Write(LevelWarn, msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Write(LevelError, msg, ctx...) }

// Crit is reserved for storage failures the process cannot recover from.
// Crit 仅用于无法恢复的存储写失败，写入后退出进程。
func Crit(msg string, ctx ...any) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}
