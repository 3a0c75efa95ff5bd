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
	"bytes"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

const (
	timeFormat        = "2006-01-02T15:04:05-0700"
	termTimeFormat    = "01-02|15:04:05.000"
	termMsgJust       = 40
	termCtxMaxPadding = 40
)

// TerminalStringer is an analogous interface to the stdlib stringer, allowing
// own types to have custom shortened serialization formats when printed to the
// screen.
// TerminalStringer 允许类型在终端输出时提供缩短的格式，例如哈希只显示首尾。
type TerminalStringer interface {
	TerminalString() string
}

// level colours, ANSI escape codes
var levelColor = map[slog.Level]string{
	LevelCrit:  "\x1b[35m",
	LevelError: "\x1b[31m",
	LevelWarn:  "\x1b[33m",
	LevelInfo:  "\x1b[32m",
	LevelDebug: "\x1b[36m",
	LevelTrace: "\x1b[34m",
}

func (h *TerminalHandler) format(buf []byte, r slog.Record, usecolor bool) []byte {
	b := bytes.NewBuffer(buf)
	color := ""
	if usecolor {
		color = levelColor[r.Level]
	}
	lvl := LevelAlignedString(r.Level)
	if color != "" {
		b.WriteString(color)
		b.WriteString(lvl)
		b.WriteString("\x1b[0m")
	} else {
		b.WriteString(lvl)
	}
	b.WriteString(" [")
	b.WriteString(r.Time.Format(termTimeFormat))
	b.WriteString("] ")

	msg := escapeMessage(r.Message)
	b.WriteString(msg)

	// Try to justify the log output for short messages
	// 短消息补齐空格，使属性列对齐。
	length := utf8.RuneCountInString(msg)
	if (r.NumAttrs()+len(h.attrs)) > 0 && length < termMsgJust {
		b.Write(bytes.Repeat([]byte{' '}, termMsgJust-length))
	}
	h.formatAttributes(b, r, color)
	return b.Bytes()
}

func (h *TerminalHandler) formatAttributes(buf *bytes.Buffer, r slog.Record, color string) {
	writeAttr := func(attr slog.Attr, last bool) {
		buf.WriteByte(' ')
		if color != "" {
			buf.WriteString(color)
			buf.WriteString(attr.Key)
			buf.WriteString("\x1b[0m=")
		} else {
			buf.WriteString(attr.Key)
			buf.WriteByte('=')
		}
		val := FormatSlogValue(attr.Value)
		buf.WriteString(val)

		// Pad all but the last attribute so columns line up.
		// 除最后一个属性外都补齐空格。
		width := utf8.RuneCountInString(val)
		padding := h.fieldPadding[attr.Key]
		if padding < width && width <= termCtxMaxPadding {
			padding = width
			h.fieldPadding[attr.Key] = padding
		}
		if !last && padding > width {
			buf.Write(bytes.Repeat([]byte{' '}, padding-width))
		}
	}
	n := 0
	total := len(h.attrs) + r.NumAttrs()
	for _, attr := range h.attrs {
		n++
		writeAttr(attr, n == total)
	}
	r.Attrs(func(attr slog.Attr) bool {
		n++
		writeAttr(attr, n == total)
		return true
	})
	buf.WriteByte('\n')
}

// FormatSlogValue formats a slog.Value for serialization to terminal.
// FormatSlogValue 将 slog.Value 格式化为终端输出的字符串。
func FormatSlogValue(v slog.Value) (result string) {
	defer func() {
		if err := recover(); err != nil {
			if v := reflect.ValueOf(v.Any()); v.Kind() == reflect.Ptr && v.IsNil() {
				result = "<nil>"
			} else {
				panic(err)
			}
		}
	}()

	var value any
	if v.Kind() == slog.KindAny {
		value = v.Any()
	} else {
		value = v.Resolve().Any()
	}
	if value == nil {
		return "<nil>"
	}
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return "<nil>"
		}
		return FormatLogfmtBig(v)
	case *uint256.Int:
		if v == nil {
			return "<nil>"
		}
		return FormatLogfmtUint256(v)
	case []byte:
		return escapeString(fmt.Sprintf("%#x", v))
	case int64:
		return FormatLogfmtInt64(v)
	case int:
		return FormatLogfmtInt64(int64(v))
	case uint64:
		return FormatLogfmtUint64(v)
	case float64:
		return strconv.FormatFloat(v, 'f', 3, 64)
	case time.Time:
		return v.Format(timeFormat)
	case time.Duration:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case error:
		return escapeString(v.Error())
	case TerminalStringer:
		return escapeString(v.TerminalString())
	case fmt.Stringer:
		return escapeString(v.String())
	case string:
		return escapeString(v)
	}
	return escapeString(fmt.Sprintf("%+v", value))
}

// FormatLogfmtInt64 formats n with thousand separators.
func FormatLogfmtInt64(n int64) string {
	if n < 0 {
		return "-" + FormatLogfmtUint64(uint64(-n))
	}
	return FormatLogfmtUint64(uint64(n))
}

// FormatLogfmtUint64 formats n with thousand separators.
// FormatLogfmtUint64 使用千位分隔符格式化 n，例如 1,000,000。
func FormatLogfmtUint64(n uint64) string {
	if n < 100000 {
		return strconv.FormatUint(n, 10)
	}
	return groupDigits(strconv.FormatUint(n, 10))
}

// FormatLogfmtBig formats a big integer with thousand separators. Values
// wider than 64 bits are printed in hex.
func FormatLogfmtBig(n *big.Int) string {
	if n.IsUint64() {
		return FormatLogfmtUint64(n.Uint64())
	}
	if n.IsInt64() {
		return FormatLogfmtInt64(n.Int64())
	}
	return "0x" + n.Text(16)
}

// FormatLogfmtUint256 formats a 256-bit word like FormatLogfmtBig.
func FormatLogfmtUint256(n *uint256.Int) string {
	if n.IsUint64() {
		return FormatLogfmtUint64(n.Uint64())
	}
	return n.Hex()
}

func groupDigits(s string) string {
	var out strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		out.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if out.Len() > 0 {
			out.WriteByte(',')
		}
		out.WriteString(s[i : i+3])
	}
	return out.String()
}

// escapeString quotes s if it contains whitespace, '=' or quotes.
func escapeString(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r > '~' {
			return strconv.Quote(s)
		}
	}
	return s
}

// escapeMessage checks if the provided string needs escaping/quoting, similarly
// to escapeString. The difference is that this method is more lenient: it allows
// for spaces and linebreaks to occur without needing quoting.
func escapeMessage(s string) string {
	needsQuoting := false
	for _, r := range s {
		// Allow CR/LF/TAB. This is to make multi-line messages work.
		if r == '\r' || r == '\n' || r == '\t' {
			continue
		}
		// We quote everything below <space> (0x20) and above~ (0x7E),
		// plus equal-sign
		if r < ' ' || r > '~' || r == '=' {
			needsQuoting = true
			break
		}
	}
	if !needsQuoting {
		return s
	}
	return strconv.Quote(s)
}
