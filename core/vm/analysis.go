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

package vm

import (
	"math/bits"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/crypto"
)

// codePadding is the number of STOP bytes appended to analyzed code. A PUSH32
// placed on the last real byte reads 32 operand bytes past it, and the 33rd
// byte is a STOP that halts execution running off the end.
// codePadding 是分析后追加的 STOP 字节数：最后一个真实字节处的 PUSH32 会读取其后 32 个字节，
// 第 33 个 STOP 字节使越过代码末尾的执行停止。
const codePadding = 33

// BitVec is a bit vector with one bit per offset of the padded code. A set
// bit marks a JUMPDEST that is not part of a PUSH operand.
// BitVec 为填充后代码的每个偏移保存一位，置位表示该处是不属于 PUSH 立即数的 JUMPDEST。
type BitVec []byte

func (bv BitVec) set(pos uint64) {
	bv[pos/8] |= 1 << (pos % 8)
}

// IsSet reports whether the bit at pos is set. Positions past the end of the
// vector are never set.
func (bv BitVec) IsSet(pos uint64) bool {
	if pos/8 >= uint64(len(bv)) {
		return false
	}
	return bv[pos/8]&(1<<(pos%8)) != 0
}

// Count returns the number of set bits.
func (bv BitVec) Count() int {
	n := 0
	for _, b := range bv {
		n += bits.OnesCount8(b)
	}
	return n
}

// jumpdestBitmap scans code from offset zero and marks every reachable
// JUMPDEST. PUSH1..PUSH32 skip their operand bytes without inspecting them,
// including operands truncated by the end of the code.
// jumpdestBitmap 从偏移 0 扫描代码并标记所有有效的 JUMPDEST，PUSH 的立即数字节被整体跳过。
func jumpdestBitmap(code []byte) BitVec {
	bv := make(BitVec, (len(code)+codePadding+7)/8)
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		switch {
		case op == JUMPDEST:
			bv.set(pc)
			pc++
		case op >= PUSH1 && op <= PUSH32:
			pc += uint64(op-PUSH1) + 2
		default:
			pc++
		}
	}
	return bv
}

// BytecodeState is the lifecycle stage of a Bytecode value.
type BytecodeState uint8

const (
	BytecodeRaw BytecodeState = iota
	BytecodePadded
	BytecodeAnalyzed
)

func (s BytecodeState) String() string {
	switch s {
	case BytecodeRaw:
		return "raw"
	case BytecodePadded:
		return "padded"
	case BytecodeAnalyzed:
		return "analyzed"
	}
	return "unknown"
}

// Bytecode is contract code moving through the Raw, Padded and Analyzed
// stages. Each transition returns a new value and leaves the receiver as it
// was; an Analyzed value is immutable and may be shared by any number of
// frames without copying.
// Bytecode 依次经历 Raw、Padded、Analyzed 三个阶段，每次转换都返回新值；
// Analyzed 状态的值不可变，可以在嵌套调用帧之间共享。
type Bytecode struct {
	state    BytecodeState
	original []byte
	padded   []byte
	jumps    BitVec
	hash     common.Hash
}

// NewBytecode wraps raw code. The slice is not copied and must not be
// modified afterwards.
func NewBytecode(code []byte) *Bytecode {
	return &Bytecode{state: BytecodeRaw, original: code}
}

// newAnalyzedBytecode assembles an analyzed value from code whose hash and
// jump table are already known, typically from a JumpDestCache.
func newAnalyzedBytecode(code []byte, hash common.Hash, jumps BitVec) *Bytecode {
	return &Bytecode{
		state:    BytecodeAnalyzed,
		original: code,
		padded:   padCode(code),
		jumps:    jumps,
		hash:     hash,
	}
}

func padCode(code []byte) []byte {
	padded := make([]byte, len(code)+codePadding)
	copy(padded, code)
	return padded
}

// State returns the lifecycle stage of the bytecode.
func (b *Bytecode) State() BytecodeState { return b.state }

// Pad returns the padded form of raw bytecode. Padded and analyzed values are
// returned unchanged.
func (b *Bytecode) Pad() *Bytecode {
	if b.state != BytecodeRaw {
		return b
	}
	return &Bytecode{state: BytecodePadded, original: b.original, padded: padCode(b.original)}
}

// Analyze returns the analyzed form of the bytecode, padding it first if
// needed. Analyzing an analyzed value returns it as is. The pass never fails:
// malformed code is left to the interpreter, which reports unknown opcodes
// when it reaches them.
// Analyze 返回分析后的字节码，对已分析的值重复调用返回其本身，且该过程永不失败。
func (b *Bytecode) Analyze() *Bytecode {
	if b.state == BytecodeAnalyzed {
		return b
	}
	padded := b.padded
	if padded == nil {
		padded = padCode(b.original)
	}
	return &Bytecode{
		state:    BytecodeAnalyzed,
		original: b.original,
		padded:   padded,
		jumps:    jumpdestBitmap(b.original),
		hash:     crypto.Keccak256Hash(b.original),
	}
}

// Original returns the code as supplied, without padding.
func (b *Bytecode) Original() []byte { return b.original }

// Padded returns the code followed by the STOP padding, or nil for raw
// bytecode.
func (b *Bytecode) Padded() []byte { return b.padded }

// Len returns the length of the original code.
func (b *Bytecode) Len() int { return len(b.original) }

// OpAt returns the opcode at pc. Offsets past the end of the code read as
// STOP.
func (b *Bytecode) OpAt(pc uint64) OpCode {
	if pc < uint64(len(b.original)) {
		return OpCode(b.original[pc])
	}
	return STOP
}

// IsJumpdest reports whether a jump to pc lands on a valid JUMPDEST. It is
// always false before analysis and for offsets outside the original code.
func (b *Bytecode) IsJumpdest(pc uint64) bool {
	if pc >= uint64(len(b.original)) {
		return false
	}
	return b.jumps.IsSet(pc)
}

// JumpTable returns the jump destination bitmap, nil before analysis.
func (b *Bytecode) JumpTable() BitVec { return b.jumps }

// Hash returns the keccak256 hash of the original code. It is only known once
// the code is analyzed.
func (b *Bytecode) Hash() common.Hash { return b.hash }

// operand returns the n operand bytes that follow the opcode at pc. Analyzed
// code is padded, so the slice is always n bytes long, zero filled past the
// end of the real code.
func (b *Bytecode) operand(pc uint64, n uint64) []byte {
	if end := pc + 1 + n; end <= uint64(len(b.padded)) {
		return b.padded[pc+1 : end]
	}
	return common.RightPadBytes(nil, int(n))
}
