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

// Package asm disassembles EVM bytecode and compiles a small assembly
// language into it.
// asm 包提供 EVM 字节码的反汇编以及一个简单的汇编器。
package asm

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/0xrusowsky/goevm/core/vm"
)

// InstructionIterator walks the instructions of legacy bytecode. PUSH
// operands are returned by Arg, never as instructions of their own.
// InstructionIterator 逐条遍历字节码中的指令，跳过 PUSH 的立即数。
type InstructionIterator struct {
	code []byte
	pc   uint64 // offset of the current instruction
	next uint64 // offset of the one after it
	op   vm.OpCode
	arg  []byte
	err  error
}

func NewInstructionIterator(code []byte) *InstructionIterator {
	return &InstructionIterator{code: code}
}

// Next advances to the following instruction. It stops at the end of the
// code or at a PUSH whose operand is cut off, which Error then reports.
func (it *InstructionIterator) Next() bool {
	size := uint64(len(it.code))
	if it.err != nil || it.next >= size {
		return false
	}
	it.pc = it.next
	it.op = vm.OpCode(it.code[it.pc])
	it.arg = nil

	n := uint64(0)
	if it.op.IsPush() {
		n = uint64(it.op - vm.PUSH0)
	}
	it.next = it.pc + 1 + n
	if it.next > size {
		it.err = fmt.Errorf("incomplete push instruction at %v", it.pc)
		return false
	}
	if n > 0 {
		it.arg = it.code[it.pc+1 : it.next]
	}
	return true
}

func (it *InstructionIterator) Error() error  { return it.err }
func (it *InstructionIterator) PC() uint64    { return it.pc }
func (it *InstructionIterator) Op() vm.OpCode { return it.op }
func (it *InstructionIterator) Arg() []byte   { return it.arg }

// String renders the current instruction as "pc: OP [arg]".
func (it *InstructionIterator) String() string {
	if len(it.arg) > 0 {
		return fmt.Sprintf("%05x: %v %#x", it.pc, it.op, it.arg)
	}
	return fmt.Sprintf("%05x: %v", it.pc, it.op)
}

// Disassemble lists every instruction of script, each line terminated by a
// newline.
func Disassemble(script []byte) ([]string, error) {
	var lines []string
	it := NewInstructionIterator(script)
	for it.Next() {
		lines = append(lines, it.String()+"\n")
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return lines, nil
}

// WriteDisassembled decodes hex code and writes its disassembly to w. The
// instructions before a truncated PUSH are still written.
// WriteDisassembled 将十六进制代码的反汇编结果逐行写入 w。
func WriteDisassembled(w io.Writer, code string) error {
	script, err := hex.DecodeString(code)
	if err != nil {
		return err
	}
	it := NewInstructionIterator(script)
	for it.Next() {
		if _, err := fmt.Fprintln(w, it); err != nil {
			return err
		}
	}
	return it.Error()
}
