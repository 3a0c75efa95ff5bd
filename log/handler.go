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
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

type discardHandler struct{}

// DiscardHandler drops every record.
// DiscardHandler 返回一个丢弃所有记录的处理器。
func DiscardHandler() slog.Handler { return discardHandler{} }

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// TerminalHandler formats records for a human in front of a terminal:
//
//	INFO [10-14|09:12:31.025] Frame exited    depth=1 gas=2979 err=nil
//
// Attribute values are left-aligned across consecutive records by remembering
// the widest value seen per key.
// TerminalHandler 为终端用户格式化日志记录，按键记住最宽的值以便对齐。
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      slog.Level
	useColor bool
	attrs    []slog.Attr

	fieldPadding map[string]int // widest value seen per attribute key

	buf []byte
}

// NewTerminalHandler prints every level. Colour codes the level tag when
// useColor is set.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewTerminalHandlerWithLevel(wr, levelAll, useColor)
}

// NewTerminalHandlerWithLevel drops records below lvl.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	return &TerminalHandler{wr: wr, lvl: lvl, useColor: useColor, fieldPadding: make(map[string]int)}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf = h.format(h.buf[:0], r, h.useColor)
	_, err := h.wr.Write(h.buf)
	return err
}

// WithAttrs starts the child with fresh padding, its lines carry a
// different prefix.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := NewTerminalHandlerWithLevel(h.wr, h.lvl, h.useColor)
	child.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return child
}

// WithGroup is unsupported, nothing in this module logs with groups.
func (h *TerminalHandler) WithGroup(string) slog.Handler {
	panic("log: groups are not supported by the terminal handler")
}

// JSONHandler prints one JSON object per record.
func JSONHandler(wr io.Writer) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{Level: levelAll, ReplaceAttr: replaceAttr(false)})
}

// LogfmtHandler prints key=value lines.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{Level: levelAll, ReplaceAttr: replaceAttr(true)})
}

// replaceAttr renames the time and level keys to "t" and "lvl" and prints
// value types slog cannot render as text. logfmt output also formats times
// as text.
// replaceAttr 将时间和级别键改为 "t" 与 "lvl"，并把 big.Int、uint256.Int 等转为字符串。
func replaceAttr(logfmt bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, attr slog.Attr) slog.Attr {
		switch attr.Key {
		case slog.TimeKey:
			attr.Key = "t"
		case slog.LevelKey:
			if l, ok := attr.Value.Any().(slog.Level); ok {
				return slog.String("lvl", LevelString(l))
			}
		}
		if t, ok := attr.Value.Any().(time.Time); ok {
			if logfmt {
				attr.Value = slog.StringValue(t.Format(timeFormat))
			}
			return attr
		}
		if s, ok := textOf(attr.Value.Any()); ok {
			attr.Value = slog.StringValue(s)
		}
		return attr
	}
}

// textOf renders numbers wider than 64 bits in decimal and calls String on
// any other Stringer. Nil pointers print as "<nil>".
func textOf(v any) (string, bool) {
	switch v := v.(type) {
	case *big.Int:
		if v == nil {
			return "<nil>", true
		}
		return v.String(), true
	case *uint256.Int:
		if v == nil {
			return "<nil>", true
		}
		return v.Dec(), true
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "<nil>", true
		}
		return v.String(), true
	}
	return "", false
}
