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

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/common/math"
	"github.com/0xrusowsky/goevm/params"
)

// maxMemoryForGas is the largest memory size whose word count still squares
// inside a uint64.
const maxMemoryForGas = 0x1FFFFFFFE0

// memoryTotalCost is the cumulative fee for a memory of the given number of
// words: 3 per word plus the square of the word count divided by 512.
func memoryTotalCost(words uint64) uint64 {
	return words*params.MemoryGas + words*words/params.QuadCoeffDiv
}

// memoryGasCost charges only the words added on top of the current memory.
// The memory itself is left untouched, the interpreter resizes it once the
// fee has been paid.
// memoryGasCost 只计算扩展部分的二次方内存费用，不修改内存；解释器在扣费成功后才扩展内存。
func memoryGasCost(mem *Memory, newMemSize uint64) (uint64, error) {
	switch {
	case newMemSize == 0:
		return 0, nil
	case newMemSize > maxMemoryForGas:
		return 0, ErrGasUintOverflow
	}
	want, have := toWordSize(newMemSize), uint64(mem.Len())/32
	if want <= have {
		return 0, nil
	}
	return memoryTotalCost(want) - memoryTotalCost(have), nil
}

// addGas sums the parts of a fee, failing on overflow.
func addGas(parts ...uint64) (uint64, error) {
	var total uint64
	for _, part := range parts {
		sum, overflow := math.SafeAdd(total, part)
		if overflow {
			return 0, ErrGasUintOverflow
		}
		total = sum
	}
	return total, nil
}

// perWord charges fee for every started word of the length at stack
// position pos.
func perWord(stack *Stack, pos int, fee uint64) (uint64, error) {
	size, overflow := stack.back(pos).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	gas, overflow := math.SafeMul(toWordSize(size), fee)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// withMemory builds a gas function charging the memory expansion plus
// whatever extra prices from the stack.
// withMemory 组合内存扩展费用与 extra 根据栈计算的额外费用。
func withMemory(extra func(*Stack) (uint64, error)) gasFunc {
	return func(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		more, err := extra(stack)
		if err != nil {
			return 0, err
		}
		return addGas(gas, more)
	}
}

// copyGas prices the copy opcodes, the copied length sits at sizePos.
func copyGas(sizePos int) gasFunc {
	return withMemory(func(stack *Stack) (uint64, error) {
		return perWord(stack, sizePos, params.CopyGas)
	})
}

// pureMemoryGascost is the dynamic part of the opcodes whose only variable
// cost is memory.
func pureMemoryGascost(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

var (
	gasCallDataCopy   = copyGas(2)
	gasCodeCopy       = copyGas(2)
	gasMcopy          = copyGas(2)
	gasExtCodeCopy    = copyGas(3)
	gasReturnDataCopy = copyGas(2)

	gasKeccak256 = withMemory(func(stack *Stack) (uint64, error) {
		return perWord(stack, 1, params.Keccak256WordGas)
	})
	gasCreate2 = withMemory(func(stack *Stack) (uint64, error) {
		return perWord(stack, 2, params.Keccak256WordGas)
	})

	gasReturn  = pureMemoryGascost
	gasRevert  = pureMemoryGascost
	gasMLoad   = pureMemoryGascost
	gasMStore8 = pureMemoryGascost
	gasMStore  = pureMemoryGascost
	gasCreate  = pureMemoryGascost

	// Shanghai charges init code per word and caps its size (EIP-3860).
	gasCreateEip3860  = initCodeGas(params.InitCodeWordGas)
	gasCreate2Eip3860 = initCodeGas(params.InitCodeWordGas + params.Keccak256WordGas)
)

// makeGasLog 返回带 n 个主题的 LOG 指令的 gas 函数。
func makeGasLog(topics uint64) gasFunc {
	return withMemory(func(stack *Stack) (uint64, error) {
		size, overflow := stack.back(1).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflow
		}
		data, overflow := math.SafeMul(size, params.LogDataGas)
		if overflow {
			return 0, ErrGasUintOverflow
		}
		return addGas(params.LogGas, topics*params.LogTopicGas, data)
	})
}

// initCodeGas rejects init code above the size limit before pricing it.
// initCodeGas 按初始化代码的字数收费，超过大小上限时报错。
func initCodeGas(wordGas uint64) gasFunc {
	return withMemory(func(stack *Stack) (uint64, error) {
		size, overflow := stack.back(2).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflow
		}
		if size > params.MaxInitCodeSize {
			return 0, fmt.Errorf("%w: size %d", ErrMaxInitCodeSizeExceeded, size)
		}
		return toWordSize(size) * wordGas, nil
	})
}

// gasExp charges per byte of the exponent. It cannot overflow: the exponent
// has at most 32 bytes.
func gasExp(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	bytes := uint64((stack.back(1).BitLen() + 7) / 8)
	return params.ExpGas + bytes*params.ExpByteEIP158, nil
}

// gasCall charges memory expansion, value transfer and account creation, and
// settles the gas forwarded to the callee in in.callGasTemp.
// gasCall 计算内存扩展、转账以及新建账户的费用，并把转交给被调用者的 gas 存入 callGasTemp。
func gasCall(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	var extra uint64
	if !stack.back(2).IsZero() {
		extra = params.CallValueTransferGas
		if in.host.Empty(common.Address(stack.back(1).Bytes20())) {
			extra += params.CallNewAccountGas
		}
	}
	return callWith(in, contract, stack, mem, memorySize, extra)
}

// gasCallCode charges the transfer even though the value stays with the
// caller.
func gasCallCode(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	var extra uint64
	if !stack.back(2).IsZero() {
		extra = params.CallValueTransferGas
	}
	return callWith(in, contract, stack, mem, memorySize, extra)
}

// gasDelegateCall is shared by DELEGATECALL and STATICCALL, neither of which
// moves value.
func gasDelegateCall(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return callWith(in, contract, stack, mem, memorySize, 0)
}

var gasStaticCall = gasDelegateCall

// callWith adds the memory expansion to extra, then the gas handed to the
// callee under the 63/64 rule, which is kept in in.callGasTemp for the
// opcode.
func callWith(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize, extra uint64) (uint64, error) {
	memGas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	gas, err := addGas(extra, memGas)
	if err != nil {
		return 0, err
	}
	if in.callGasTemp, err = callGas(contract.Gas, gas, stack.back(0)); err != nil {
		return 0, err
	}
	return addGas(gas, in.callGasTemp)
}
