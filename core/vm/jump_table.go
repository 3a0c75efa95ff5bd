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
	"github.com/0xrusowsky/goevm/params"
)

type (
	executionFunc func(pc *uint64, interpreter *EVMInterpreter, callContext *ScopeContext) ([]byte, error)
	gasFunc       func(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) // last parameter is the requested memory size as a uint64
	// memorySizeFunc returns the required size, and whether the operation overflowed a uint64
	// memorySizeFunc 返回所需的内存大小，以及计算是否溢出 uint64。
	memorySizeFunc func(*Stack) (size uint64, overflow bool)
)

// operation is the metadata of a single opcode: what it costs, how deep the
// stack must be and what it does. The flags are plain fields, read by the
// interpreter loop and by code inspection tools.
// operation 描述单个操作码：费用、栈深度要求以及执行函数；各标志位供解释器与代码分析工具读取。
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  gasFunc
	memorySize  memorySizeFunc // set only together with dynamicGas
	minStack    int            // items that must be present
	maxStack    int            // deepest stack that still leaves room for the pushes

	isPush    bool // carries an operand, the handler moves pc past it
	isJump    bool // may set pc to a popped destination
	halts     bool // the frame ends once the handler returns
	undefined bool // no instruction is assigned to the slot
}

// newOp describes an instruction that takes pops items off the stack and
// leaves pushes items on it.
func newOp(execute executionFunc, gas uint64, pops, pushes int) *operation {
	return &operation{
		execute:     execute,
		constantGas: gas,
		minStack:    minStack(pops, pushes),
		maxStack:    maxStack(pops, pushes),
	}
}

// metered adds a dynamic gas part. size is nil for instructions that do not
// touch memory.
func (op *operation) metered(gas gasFunc, size memorySizeFunc) *operation {
	op.dynamicGas, op.memorySize = gas, size
	return op
}

func (op *operation) halting() *operation { op.halts = true; return op }
func (op *operation) jumping() *operation { op.isJump = true; return op }

var (
	mergeInstructionSet    = newMergeInstructionSet()
	shanghaiInstructionSet = newShanghaiInstructionSet()
	cancunInstructionSet   = newCancunInstructionSet()
)

// JumpTable contains the EVM opcodes supported at a given fork.
// JumpTable 包含某一分叉支持的全部操作码。
type JumpTable [256]*operation

// validate panics on a table the interpreter loop cannot run: an empty slot,
// or a memory size function without the gas function that prices it.
func validate(jt JumpTable) JumpTable {
	for i, op := range jt {
		switch {
		case op == nil:
			panic("jump table slot " + OpCode(i).String() + " is empty")
		case op.memorySize != nil && op.dynamicGas == nil:
			panic("malformed jumptable: memorySize set without dynamicGas for " + OpCode(i).String())
		}
	}
	return jt
}

func newCancunInstructionSet() JumpTable {
	jt := newShanghaiInstructionSet()
	for _, eip := range []int{4844, 7516, 1153, 5656} {
		mustEnable(eip, &jt)
	}
	return validate(jt)
}

func newShanghaiInstructionSet() JumpTable {
	jt := newMergeInstructionSet()
	for _, eip := range []int{3855, 3860} {
		mustEnable(eip, &jt)
	}
	return validate(jt)
}

// newMergeInstructionSet returns the instructions available after the merge.
// The costs of EIP-1884, EIP-2200, EIP-2929 and EIP-3529 are already folded
// in, and DIFFICULTY reads PREVRANDAO.
// newMergeInstructionSet 返回合并后的指令集，已包含 EIP-1884/2200/2929/3529 的定价，DIFFICULTY 读取 PREVRANDAO。
func newMergeInstructionSet() JumpTable {
	const (
		quick   = GasQuickStep
		fastest = GasFastestStep
		fast    = GasFastStep
		mid     = GasMidStep
		warm    = params.WarmStorageReadCostEIP2929
	)
	jt := JumpTable{
		STOP:       newOp(opStop, 0, 0, 0).halting(),
		ADD:        newOp(opAdd, fastest, 2, 1),
		MUL:        newOp(opMul, fast, 2, 1),
		SUB:        newOp(opSub, fastest, 2, 1),
		DIV:        newOp(opDiv, fast, 2, 1),
		SDIV:       newOp(opSdiv, fast, 2, 1),
		MOD:        newOp(opMod, fast, 2, 1),
		SMOD:       newOp(opSmod, fast, 2, 1),
		ADDMOD:     newOp(opAddmod, mid, 3, 1),
		MULMOD:     newOp(opMulmod, mid, 3, 1),
		EXP:        newOp(opExp, params.ExpGas, 2, 1).metered(gasExp, nil),
		SIGNEXTEND: newOp(opSignExtend, fast, 2, 1),

		LT:     newOp(opLt, fastest, 2, 1),
		GT:     newOp(opGt, fastest, 2, 1),
		SLT:    newOp(opSlt, fastest, 2, 1),
		SGT:    newOp(opSgt, fastest, 2, 1),
		EQ:     newOp(opEq, fastest, 2, 1),
		ISZERO: newOp(opIszero, fastest, 1, 1),
		AND:    newOp(opAnd, fastest, 2, 1),
		OR:     newOp(opOr, fastest, 2, 1),
		XOR:    newOp(opXor, fastest, 2, 1),
		NOT:    newOp(opNot, fastest, 1, 1),
		BYTE:   newOp(opByte, fastest, 2, 1),
		SHL:    newOp(opSHL, fastest, 2, 1),
		SHR:    newOp(opSHR, fastest, 2, 1),
		SAR:    newOp(opSAR, fastest, 2, 1),

		KECCAK256: newOp(opKeccak256, params.Keccak256Gas, 2, 1).metered(gasKeccak256, memoryKeccak256),

		ADDRESS:        newOp(opAddress, quick, 0, 1),
		BALANCE:        newOp(opBalance, warm, 1, 1).metered(gasEip2929AccountCheck, nil),
		ORIGIN:         newOp(opOrigin, quick, 0, 1),
		CALLER:         newOp(opCaller, quick, 0, 1),
		CALLVALUE:      newOp(opCallValue, quick, 0, 1),
		CALLDATALOAD:   newOp(opCallDataLoad, fastest, 1, 1),
		CALLDATASIZE:   newOp(opCallDataSize, quick, 0, 1),
		CALLDATACOPY:   newOp(opCallDataCopy, fastest, 3, 0).metered(gasCallDataCopy, memoryCallDataCopy),
		CODESIZE:       newOp(opCodeSize, quick, 0, 1),
		CODECOPY:       newOp(opCodeCopy, fastest, 3, 0).metered(gasCodeCopy, memoryCodeCopy),
		GASPRICE:       newOp(opGasprice, quick, 0, 1),
		EXTCODESIZE:    newOp(opExtCodeSize, warm, 1, 1).metered(gasEip2929AccountCheck, nil),
		EXTCODECOPY:    newOp(opExtCodeCopy, warm, 4, 0).metered(gasExtCodeCopyEIP2929, memoryExtCodeCopy),
		RETURNDATASIZE: newOp(opReturnDataSize, quick, 0, 1),
		RETURNDATACOPY: newOp(opReturnDataCopy, fastest, 3, 0).metered(gasReturnDataCopy, memoryReturnDataCopy),
		EXTCODEHASH:    newOp(opExtCodeHash, warm, 1, 1).metered(gasEip2929AccountCheck, nil),

		BLOCKHASH:   newOp(opBlockhash, GasExtStep, 1, 1),
		COINBASE:    newOp(opCoinbase, quick, 0, 1),
		TIMESTAMP:   newOp(opTimestamp, quick, 0, 1),
		NUMBER:      newOp(opNumber, quick, 0, 1),
		PREVRANDAO:  newOp(opRandom, quick, 0, 1),
		GASLIMIT:    newOp(opGasLimit, quick, 0, 1),
		CHAINID:     newOp(opChainID, quick, 0, 1),
		SELFBALANCE: newOp(opSelfBalance, fast, 0, 1),
		BASEFEE:     newOp(opBaseFee, quick, 0, 1),

		POP:      newOp(opPop, quick, 1, 0),
		MLOAD:    newOp(opMload, fastest, 1, 1).metered(gasMLoad, memoryMLoad),
		MSTORE:   newOp(opMstore, fastest, 2, 0).metered(gasMStore, memoryMStore),
		MSTORE8:  newOp(opMstore8, fastest, 2, 0).metered(gasMStore8, memoryMStore8),
		SLOAD:    newOp(opSload, 0, 1, 1).metered(gasSLoadEIP2929, nil),
		SSTORE:   newOp(opSstore, 0, 2, 0).metered(gasSStoreEIP3529, nil),
		JUMP:     newOp(opJump, mid, 1, 0).jumping(),
		JUMPI:    newOp(opJumpi, GasSlowStep, 2, 0).jumping(),
		PC:       newOp(opPc, quick, 0, 1),
		MSIZE:    newOp(opMsize, quick, 0, 1),
		GAS:      newOp(opGas, quick, 0, 1),
		JUMPDEST: newOp(opJumpdest, params.JumpdestGas, 0, 0),

		CREATE:       newOp(opCreate, params.CreateGas, 3, 1).metered(gasCreate, memoryCreate),
		CALL:         newOp(opCall, warm, 7, 1).metered(gasCallEIP2929, memoryCall),
		CALLCODE:     newOp(opCallCode, warm, 7, 1).metered(gasCallCodeEIP2929, memoryCallCode),
		RETURN:       newOp(opReturn, 0, 2, 0).metered(gasReturn, memoryReturn).halting(),
		DELEGATECALL: newOp(opDelegateCall, warm, 6, 1).metered(gasDelegateCallEIP2929, memoryDelegateCall),
		CREATE2:      newOp(opCreate2, params.Create2Gas, 4, 1).metered(gasCreate2, memoryCreate2),
		STATICCALL:   newOp(opStaticCall, warm, 6, 1).metered(gasStaticCallEIP2929, memoryStaticCall),
		REVERT:       newOp(opRevert, 0, 2, 0).metered(gasRevert, memoryRevert).halting(),
		SELFDESTRUCT: newOp(opSelfdestruct, params.SelfdestructGasEIP150, 1, 0).metered(gasSelfdestructEIP3529, nil).halting(),
	}

	for n := 1; n <= 32; n++ {
		push := newOp(makePush(uint64(n)), fastest, 0, 1)
		push.isPush = true
		jt[PUSH1+OpCode(n-1)] = push
	}
	for n := 1; n <= 16; n++ {
		jt[DUP1+OpCode(n-1)] = &operation{execute: makeDup(n), constantGas: fastest, minStack: minDupStack(n), maxStack: maxDupStack(n)}
		jt[SWAP1+OpCode(n-1)] = &operation{execute: makeSwap(n), constantGas: fastest, minStack: minSwapStack(n + 1), maxStack: maxSwapStack(n + 1)}
	}
	for n := 0; n <= 4; n++ {
		jt[LOG0+OpCode(n)] = newOp(makeLog(n), 0, n+2, 0).metered(makeGasLog(uint64(n)), memoryLog)
	}

	// Every slot left empty, INVALID included, fails with ErrInvalidOpCode.
	// 其余空槽位（包括 INVALID）都以 ErrInvalidOpCode 失败。
	for i := range jt {
		if jt[i] == nil {
			jt[i] = &operation{execute: opUndefined, maxStack: maxStack(0, 0), undefined: true, halts: true}
		}
	}
	return validate(jt)
}

func copyJumpTable(source *JumpTable) *JumpTable {
	dest := *source
	for i, op := range source {
		if op != nil {
			opCopy := *op
			dest[i] = &opCopy
		}
	}
	return &dest
}
