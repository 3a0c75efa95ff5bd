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

// Memory size functions return the highest memory offset an operation will
// touch, derived from its stack operands, and whether computing it
// overflowed. They run before any gas is charged, with the stack depth
// already validated.
// 内存大小函数根据栈操作数返回指令将访问的最高内存偏移，以及计算是否溢出。

func memoryKeccak256(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(0), stack.back(1))
}

func memoryCallDataCopy(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(0), stack.back(2))
}

func memoryReturnDataCopy(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(0), stack.back(2))
}

func memoryCodeCopy(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(0), stack.back(2))
}

func memoryExtCodeCopy(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(1), stack.back(3))
}

func memoryMLoad(stack *Stack) (uint64, bool) {
	return memoryEndN(stack.back(0), 32)
}

func memoryMStore8(stack *Stack) (uint64, bool) {
	return memoryEndN(stack.back(0), 1)
}

func memoryMStore(stack *Stack) (uint64, bool) {
	return memoryEndN(stack.back(0), 32)
}

func memoryMcopy(stack *Stack) (uint64, bool) {
	mStart := stack.back(0) // stack[0]: dest
	if stack.back(1).Gt(mStart) {
		mStart = stack.back(1) // stack[1]: source
	}
	return memoryEnd(mStart, stack.back(2)) // stack[2]: length
}

func memoryCreate(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(1), stack.back(2))
}

func memoryCreate2(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(1), stack.back(2))
}

// memoryCallArgs covers both the argument and the return buffer of a call,
// given the stack position of the argument offset.
// memoryCallArgs 同时覆盖调用的参数区与返回区，argsPos 为参数偏移在栈中的位置。
func memoryCallArgs(argsPos int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		x, overflow := memoryEnd(stack.back(argsPos), stack.back(argsPos+1))
		if overflow {
			return 0, true
		}
		y, overflow := memoryEnd(stack.back(argsPos+2), stack.back(argsPos+3))
		if overflow {
			return 0, true
		}
		return max(x, y), false
	}
}

var (
	memoryCall         = memoryCallArgs(3) // gas, addr, value, argsOffset, ...
	memoryCallCode     = memoryCallArgs(3)
	memoryDelegateCall = memoryCallArgs(2) // gas, addr, argsOffset, ...
	memoryStaticCall   = memoryCallArgs(2)
)

func memoryReturn(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(0), stack.back(1))
}

func memoryRevert(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(0), stack.back(1))
}

func memoryLog(stack *Stack) (uint64, bool) {
	return memoryEnd(stack.back(0), stack.back(1))
}
