// Copyright 2017 The go-ethereum Authors
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

package asm

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/0xrusowsky/goevm/common/math"
	"github.com/0xrusowsky/goevm/core/vm"
)

// labelWidth is the number of bytes a label reference is pushed with.
const labelWidth = 4

// Compiler assembles a token stream into bytecode in two passes.
// Compiler 分两遍将标记流汇编为字节码。
//
// Source is line oriented. Each line holds at most one statement:
//
//	name:            defines a label and emits JUMPDEST
//	push <value>     emits the smallest PUSHn holding value
//	jump <value>     pushes value and emits JUMP (same for jumpi)
//	<opcode>         emits the named instruction
//
// Values are decimal or 0x-prefixed hex numbers, "strings" or @label
// references. Label references are always pushed with PUSH4. Comments start
// with ';' and run to the end of the line.
type Compiler struct {
	lines  []statement
	labels map[string]int
	errs   []error // found while feeding
	out    []byte
	debug  bool
}

// statement is the tokens of one source line, without the line markers.
type statement struct {
	lineno int
	toks   []token
}

func NewCompiler(debug bool) *Compiler {
	return &Compiler{labels: make(map[string]int), debug: debug}
}

// Feed drains ch. It splits the stream into lines and assigns every label
// the offset of its JUMPDEST, so later statements can reference labels
// defined further down.
// Feed 是第一遍：按行切分标记并计算每个标签的偏移量。
func (c *Compiler) Feed(ch <-chan token) {
	var (
		pc  int
		cur statement
	)
	for tok := range ch {
		switch tok.typ {
		case lineStart:
			cur = statement{lineno: tok.lineno}
		case lineEnd:
			c.lines = append(c.lines, cur)
		case eof:
		default:
			if tok.typ == labelDef {
				if _, dup := c.labels[tok.text]; dup {
					c.errs = append(c.errs, fmt.Errorf("%d: label %q already defined", tok.lineno+1, tok.text))
				}
				c.labels[tok.text] = pc
			}
			pc += encodedSize(tok, cur.toks)
			cur.toks = append(cur.toks, tok)
		}
	}
	if c.debug {
		fmt.Fprintln(os.Stderr, "found", len(c.labels), "labels")
	}
}

// encodedSize is the number of bytes tok adds to the output, given the
// tokens before it on the same line. An argument of jump(i) also pays for
// the PUSH it implies.
func encodedSize(tok token, before []token) int {
	implicit := 0
	if n := len(before); n > 0 && before[n-1].typ == element && isJump(before[n-1].text) {
		implicit = 1
	}
	switch tok.typ {
	case element, labelDef:
		return 1
	case number:
		b, _ := parseNumber(tok.text)
		return len(b) + implicit
	case stringValue:
		return len(tok.text) + implicit
	case label:
		return labelWidth + implicit
	}
	return 0
}

// Compile runs the second pass and returns the hex encoded bytecode with
// every error found. A faulty line is reported and skipped, so the output is
// only usable when no error is returned.
// Compile 是第二遍：返回十六进制字节码以及所有错误。
func (c *Compiler) Compile() (string, []error) {
	errs := append([]error(nil), c.errs...)
	for _, st := range c.lines {
		if err := c.compileStatement(st); err != nil {
			errs = append(errs, err)
		}
	}
	return hex.EncodeToString(c.out), errs
}

// compileStatement compiles one line, e.g. "push 1" or "jump @label".
// compileStatement 编译单行语句，例如 "push 1"、"jump @label"。
func (c *Compiler) compileStatement(st statement) error {
	if len(st.toks) == 0 {
		return nil
	}
	head, args := st.toks[0], st.toks[1:]
	switch {
	case head.typ == labelDef:
		c.outputOpcode(vm.JUMPDEST)

	case head.typ != element:
		return compileErr(head, head.text, fmt.Sprintf("%v or %v", labelDef, element))

	case isJump(head.text):
		// Without an argument the destination is taken from the stack.
		if len(args) > 0 {
			if err := c.pushArg(args[0]); err != nil {
				return err
			}
			args = args[1:]
		}
		c.outputOpcode(vm.StringToOp(strings.ToUpper(head.text)))

	case isPush(head.text):
		if len(args) == 0 {
			return compileErr(token{lineno: st.lineno}, "", "number, string or label")
		}
		if err := c.pushArg(args[0]); err != nil {
			return err
		}
		args = args[1:]

	default:
		name := strings.ToUpper(head.text)
		if !vm.ValidOpName(name) {
			return fmt.Errorf("%d: unknown instruction %q", head.lineno+1, head.text)
		}
		c.outputOpcode(vm.StringToOp(name))
	}
	if len(args) > 0 {
		return compileErr(args[0], args[0].text, lineEnd.String())
	}
	return nil
}

// pushArg emits the PUSHn carrying a number, string or label argument.
func (c *Compiler) pushArg(tok token) error {
	value, err := c.value(tok)
	if err != nil {
		return err
	}
	c.outputOpcode(vm.PUSH1 - 1 + vm.OpCode(len(value)))
	c.outputBytes(value)
	return nil
}

// value resolves a push argument to the bytes that follow the opcode.
// value 将 push 参数解析为紧随操作码之后的字节。
func (c *Compiler) value(tok token) ([]byte, error) {
	var value []byte
	switch tok.typ {
	case number:
		b, ok := parseNumber(tok.text)
		if !ok {
			return nil, fmt.Errorf("%d: invalid number %q", tok.lineno+1, tok.text)
		}
		value = b
	case stringValue:
		if tok.text == "" {
			return nil, fmt.Errorf("%d: empty string", tok.lineno+1)
		}
		value = []byte(tok.text)
	case label:
		pos, ok := c.labels[tok.text]
		if !ok {
			return nil, fmt.Errorf("%d: undefined label %q", tok.lineno+1, tok.text)
		}
		value = binary.BigEndian.AppendUint32(nil, uint32(pos))
	default:
		return nil, compileErr(tok, tok.text, "number, string or label")
	}
	if len(value) > 32 {
		return nil, fmt.Errorf("%d: string or number size > 32 bytes", tok.lineno+1)
	}
	return value, nil
}

func (c *Compiler) outputOpcode(op vm.OpCode) {
	if c.debug {
		fmt.Printf("%d: %v\n", len(c.out), op)
	}
	c.out = append(c.out, byte(op))
}

func (c *Compiler) outputBytes(b []byte) {
	if c.debug {
		fmt.Printf("%d: %x\n", len(c.out), b)
	}
	c.out = append(c.out, b...)
}

// parseNumber returns the minimal big endian encoding of a number token,
// at least one byte. A malformed number yields a single zero byte and false.
func parseNumber(text string) ([]byte, bool) {
	num, ok := math.ParseBig256(text)
	if !ok || num.Sign() == 0 {
		return []byte{0}, ok
	}
	return num.Bytes(), true
}

// isPush reports whether op is the generic push statement.
func isPush(op string) bool {
	return strings.EqualFold(op, "PUSH")
}

// isJump reports whether op is jump or jumpi.
func isJump(op string) bool {
	return strings.EqualFold(op, "JUMP") || strings.EqualFold(op, "JUMPI")
}

type compileError struct {
	got, want string
	lineno    int
}

func (err compileError) Error() string {
	return fmt.Sprintf("%d: syntax error: unexpected %v, expected %v", err.lineno, err.got, err.want)
}

func compileErr(tok token, got, want string) error {
	return compileError{got: got, want: want, lineno: tok.lineno + 1}
}
