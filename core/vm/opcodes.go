// Copyright 2014 The go-ethereum Authors
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

package vm

import (
	"fmt"
	"strings"
)

// OpCode is an EVM opcode
// OpCode 是单字节的 EVM 操作码。
type OpCode byte

// IsPush specifies if an opcode is a PUSH opcode, PUSH0 included.
func (op OpCode) IsPush() bool {
	return PUSH0 <= op && op <= PUSH32
}

// Immediates returns the number of operand bytes that follow the opcode in
// the code. Only PUSH1..PUSH32 carry operands.
// Immediates 返回紧随操作码之后的立即数字节数，只有 PUSH1..PUSH32 携带立即数。
func (op OpCode) Immediates() int {
	if PUSH1 <= op && op <= PUSH32 {
		return int(op-PUSH1) + 1
	}
	return 0
}

// Arithmetic.
const (
	STOP OpCode = iota
	ADD
	MUL
	SUB
	DIV
	SDIV
	MOD
	SMOD
	ADDMOD
	MULMOD
	EXP
	SIGNEXTEND
)

// Comparison and bitwise logic.
const (
	LT OpCode = 0x10 + iota
	GT
	SLT
	SGT
	EQ
	ISZERO
	AND
	OR
	XOR
	NOT
	BYTE
	SHL
	SHR
	SAR
)

const KECCAK256 OpCode = 0x20

// Call environment.
const (
	ADDRESS OpCode = 0x30 + iota
	BALANCE
	ORIGIN
	CALLER
	CALLVALUE
	CALLDATALOAD
	CALLDATASIZE
	CALLDATACOPY
	CODESIZE
	CODECOPY
	GASPRICE
	EXTCODESIZE
	EXTCODECOPY
	RETURNDATASIZE
	RETURNDATACOPY
	EXTCODEHASH
)

// Block environment.
const (
	BLOCKHASH OpCode = 0x40 + iota
	COINBASE
	TIMESTAMP
	NUMBER
	PREVRANDAO
	GASLIMIT
	CHAINID
	SELFBALANCE
	BASEFEE
	BLOBHASH
	BLOBBASEFEE
)

// DIFFICULTY is the pre-merge name of PREVRANDAO.
// 合并后 DIFFICULTY 被 PREVRANDAO 取代。
const DIFFICULTY = PREVRANDAO

// Stack, memory, storage and flow control.
const (
	POP OpCode = 0x50 + iota
	MLOAD
	MSTORE
	MSTORE8
	SLOAD
	SSTORE
	JUMP
	JUMPI
	PC
	MSIZE
	GAS
	JUMPDEST
	TLOAD
	TSTORE
	MCOPY
	PUSH0
)

const (
	PUSH1 OpCode = 0x60 + iota
	PUSH2
	PUSH3
	PUSH4
	PUSH5
	PUSH6
	PUSH7
	PUSH8
	PUSH9
	PUSH10
	PUSH11
	PUSH12
	PUSH13
	PUSH14
	PUSH15
	PUSH16
	PUSH17
	PUSH18
	PUSH19
	PUSH20
	PUSH21
	PUSH22
	PUSH23
	PUSH24
	PUSH25
	PUSH26
	PUSH27
	PUSH28
	PUSH29
	PUSH30
	PUSH31
	PUSH32
)

const (
	DUP1 OpCode = 0x80 + iota
	DUP2
	DUP3
	DUP4
	DUP5
	DUP6
	DUP7
	DUP8
	DUP9
	DUP10
	DUP11
	DUP12
	DUP13
	DUP14
	DUP15
	DUP16
)

const (
	SWAP1 OpCode = 0x90 + iota
	SWAP2
	SWAP3
	SWAP4
	SWAP5
	SWAP6
	SWAP7
	SWAP8
	SWAP9
	SWAP10
	SWAP11
	SWAP12
	SWAP13
	SWAP14
	SWAP15
	SWAP16
)

const (
	LOG0 OpCode = 0xa0 + iota
	LOG1
	LOG2
	LOG3
	LOG4
)

// System operations.
const (
	CREATE OpCode = 0xf0 + iota
	CALL
	CALLCODE
	RETURN
	DELEGATECALL
	CREATE2
)

const (
	STATICCALL   OpCode = 0xfa
	REVERT       OpCode = 0xfd
	INVALID      OpCode = 0xfe
	SELFDESTRUCT OpCode = 0xff
)

// mnemonics lists the names of each contiguous opcode run starting at its
// first opcode.
// mnemonics 按区间列出连续操作码的名称。
var mnemonics = []struct {
	first OpCode
	names string
}{
	{STOP, "STOP ADD MUL SUB DIV SDIV MOD SMOD ADDMOD MULMOD EXP SIGNEXTEND"},
	{LT, "LT GT SLT SGT EQ ISZERO AND OR XOR NOT BYTE SHL SHR SAR"},
	{KECCAK256, "KECCAK256"},
	{ADDRESS, "ADDRESS BALANCE ORIGIN CALLER CALLVALUE CALLDATALOAD CALLDATASIZE CALLDATACOPY " +
		"CODESIZE CODECOPY GASPRICE EXTCODESIZE EXTCODECOPY RETURNDATASIZE RETURNDATACOPY EXTCODEHASH"},
	{BLOCKHASH, "BLOCKHASH COINBASE TIMESTAMP NUMBER DIFFICULTY GASLIMIT CHAINID SELFBALANCE BASEFEE BLOBHASH BLOBBASEFEE"},
	{POP, "POP MLOAD MSTORE MSTORE8 SLOAD SSTORE JUMP JUMPI PC MSIZE GAS JUMPDEST TLOAD TSTORE MCOPY PUSH0"},
	{CREATE, "CREATE CALL CALLCODE RETURN DELEGATECALL CREATE2"},
	{STATICCALL, "STATICCALL"},
	{REVERT, "REVERT INVALID SELFDESTRUCT"},
}

var (
	opNames   [256]string
	nameToOp  = make(map[string]OpCode, 256)
	opAliases = map[string]OpCode{
		"PREVRANDAO": PREVRANDAO,
		"SHA3":       KECCAK256,
	}
)

func init() {
	for _, run := range mnemonics {
		for i, name := range strings.Fields(run.names) {
			opNames[run.first+OpCode(i)] = name
		}
	}
	for n := 1; n <= 32; n++ {
		opNames[PUSH1+OpCode(n-1)] = fmt.Sprintf("PUSH%d", n)
	}
	for n := 1; n <= 16; n++ {
		opNames[DUP1+OpCode(n-1)] = fmt.Sprintf("DUP%d", n)
		opNames[SWAP1+OpCode(n-1)] = fmt.Sprintf("SWAP%d", n)
	}
	for n := 0; n <= 4; n++ {
		opNames[LOG0+OpCode(n)] = fmt.Sprintf("LOG%d", n)
	}
	for op, name := range opNames {
		if name != "" {
			nameToOp[name] = OpCode(op)
		}
	}
	for name, op := range opAliases {
		nameToOp[name] = op
	}
}

func (op OpCode) String() string {
	if s := opNames[op]; s != "" {
		return s
	}
	return fmt.Sprintf("opcode %#x not defined", int(op))
}

// StringToOp finds the opcode whose name is stored in `str`.
// Unknown names map to STOP.
func StringToOp(str string) OpCode {
	return nameToOp[str]
}

// ValidOpName reports whether str names an assigned opcode or an alias.
func ValidOpName(str string) bool {
	_, ok := nameToOp[str]
	return ok
}
