// Copyright 2024 The go-ethereum Authors
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

// Package program builds bytecode for tests. Builders panic on input they
// cannot encode, so the package is unfit for untrusted input.
// program 包用于在测试中构造字节码；无法编码的输入会直接 panic。
package program

import (
	"fmt"
	"math/big"

	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/holiman/uint256"
)

// Program is a growable bytecode buffer with chainable builders.
// Program 是可链式追加指令的字节码缓冲区。
type Program struct {
	code []byte
}

// New creates an empty Program.
func New() *Program {
	return &Program{code: make([]byte, 0)}
}

// Append adds raw bytes to the end of the program.
func (p *Program) Append(data []byte) *Program {
	p.code = append(p.code, data...)
	return p
}

// Bytes returns the bytecode built so far.
func (p *Program) Bytes() []byte { return p.code }

// Hex returns the bytecode as unprefixed hex.
func (p *Program) Hex() string { return fmt.Sprintf("%02x", p.code) }

// Size returns the current length of the bytecode.
func (p *Program) Size() int { return len(p.code) }

// Op appends the given opcodes without operands.
func (p *Program) Op(ops ...vm.OpCode) *Program {
	for _, op := range ops {
		p.code = append(p.code, byte(op))
	}
	return p
}

// Push appends the smallest PUSHn carrying val. Zero is pushed as PUSH1 0
// so the output also runs before Shanghai; use Push0 for the short form.
// Push 使用能容纳 val 的最短 PUSHn；零值编码为 PUSH1 0，需要 PUSH0 时请用 Push0。
func (p *Program) Push(val any) *Program {
	var v *uint256.Int
	switch x := val.(type) {
	case int:
		v = uint256.NewInt(uint64(x))
	case uint64:
		v = uint256.NewInt(x)
	case uint32:
		v = uint256.NewInt(uint64(x))
	case byte:
		v = uint256.NewInt(uint64(x))
	case *big.Int:
		v = uint256.MustFromBig(x)
	case *uint256.Int:
		v = x
	case []byte:
		v = new(uint256.Int).SetBytes(x)
	case interface{ Bytes() []byte }:
		v = new(uint256.Int).SetBytes(x.Bytes())
	case nil:
		v = new(uint256.Int)
	default:
		panic(fmt.Sprintf("unsupported push type %T", val))
	}
	data := v.Bytes()
	if len(data) == 0 {
		data = []byte{0}
	}
	p.code = append(p.code, byte(vm.PUSH1)-1+byte(len(data)))
	return p.Append(data)
}

// Push0 appends PUSH0.
func (p *Program) Push0() *Program { return p.Op(vm.PUSH0) }

// Label returns the offset the next instruction will be placed at.
func (p *Program) Label() uint64 { return uint64(len(p.code)) }

// Jumpdest appends a JUMPDEST and returns its offset.
func (p *Program) Jumpdest() (*Program, uint64) {
	here := p.Label()
	p.Op(vm.JUMPDEST)
	return p, here
}

// Jump jumps to loc.
func (p *Program) Jump(loc any) *Program {
	return p.Push(loc).Op(vm.JUMP)
}

// JumpIf jumps to loc when condition is non-zero.
func (p *Program) JumpIf(loc any, condition any) *Program {
	return p.Push(condition).Push(loc).Op(vm.JUMPI)
}

// Call appends a CALL. A nil gas forwards all remaining gas.
func (p *Program) Call(gas *uint256.Int, address, value, inOffset, inSize, outOffset, outSize any) *Program {
	p.Push(outSize).Push(outOffset).Push(inSize).Push(inOffset).Push(value).Push(address)
	return p.pushGas(gas).Op(vm.CALL)
}

// DelegateCall appends a DELEGATECALL. A nil gas forwards all remaining gas.
func (p *Program) DelegateCall(gas *uint256.Int, address, inOffset, inSize, outOffset, outSize any) *Program {
	p.Push(outSize).Push(outOffset).Push(inSize).Push(inOffset).Push(address)
	return p.pushGas(gas).Op(vm.DELEGATECALL)
}

// StaticCall appends a STATICCALL. A nil gas forwards all remaining gas.
func (p *Program) StaticCall(gas *uint256.Int, address, inOffset, inSize, outOffset, outSize any) *Program {
	p.Push(outSize).Push(outOffset).Push(inSize).Push(inOffset).Push(address)
	return p.pushGas(gas).Op(vm.STATICCALL)
}

func (p *Program) pushGas(gas *uint256.Int) *Program {
	if gas == nil {
		return p.Op(vm.GAS)
	}
	return p.Push(gas)
}

// Mstore writes data to memory at memStart, word by word with MSTORE and
// the tail byte by byte with MSTORE8.
// Mstore 将 data 写入从 memStart 开始的内存：整字用 MSTORE，余下字节用 MSTORE8。
func (p *Program) Mstore(data []byte, memStart uint32) *Program {
	idx := 0
	for ; idx+32 <= len(data); idx += 32 {
		p.Push(data[idx : idx+32]).Push(uint32(idx) + memStart).Op(vm.MSTORE)
	}
	for ; idx < len(data); idx++ {
		p.Push(data[idx]).Push(uint32(idx) + memStart).Op(vm.MSTORE8)
	}
	return p
}

// Sstore writes value to slot.
func (p *Program) Sstore(slot any, value any) *Program {
	return p.Push(value).Push(slot).Op(vm.SSTORE)
}

// Tstore writes value to the transient slot.
func (p *Program) Tstore(slot any, value any) *Program {
	return p.Push(value).Push(slot).Op(vm.TSTORE)
}

// Return returns memory[offset:offset+len].
func (p *Program) Return(offset, len int) *Program {
	return p.Push(len).Push(offset).Op(vm.RETURN)
}

// ReturnData stores data in memory and returns it.
func (p *Program) ReturnData(data []byte) *Program {
	return p.Mstore(data, 0).Return(0, len(data))
}

// ReturnViaCodeCopy appends a constructor that copies data from the tail of
// its own code and returns it. The offset is patched in place, so nothing may
// be appended after this call.
// ReturnViaCodeCopy 追加一个构造器：从自身代码末尾复制 data 并返回。偏移量在原位回填，调用后不能再追加指令。
func (p *Program) ReturnViaCodeCopy(data []byte) *Program {
	p.Push(len(data))
	// PUSH2 always fits: init code is capped well below 0x10000.
	p.Op(vm.PUSH2)
	patch := p.Size()
	p.Append([]byte{0, 0})
	p.Push(0).Op(vm.CODECOPY)
	p.Return(0, len(data))

	offset := p.Size()
	p.Append(data)
	p.code[patch] = byte(offset >> 8)
	p.code[patch+1] = byte(offset)
	return p
}

// Create deploys code with CREATE, leaving the address or zero on the stack.
func (p *Program) Create(code []byte, value any) *Program {
	p.Mstore(code, 0)
	return p.Push(len(code)).Push(0).Push(value).Op(vm.CREATE)
}

// Create2 deploys code with CREATE2, leaving the address or zero on the stack.
func (p *Program) Create2(code []byte, salt any) *Program {
	p.Mstore(code, 0)
	return p.Push(salt).Push(len(code)).Push(0).Push(0).Op(vm.CREATE2)
}

// Selfdestruct sends the balance to beneficiary and halts.
func (p *Program) Selfdestruct(beneficiary any) *Program {
	return p.Push(beneficiary).Op(vm.SELFDESTRUCT)
}
