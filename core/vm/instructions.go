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
	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

// Handlers run after the interpreter loop has validated the stack bounds,
// charged the gas and expanded the memory. The program counter already points
// one past the opcode being executed.
// 处理函数运行前，解释器循环已校验栈深度、扣除 gas 并扩展内存；此时 pc 已指向当前操作码之后。

// binaryOp lifts a uint256 method into a handler replacing the top two items
// a, b with f(a, b). All arithmetic wraps modulo 2^256 and division by zero
// yields zero, both of which uint256 already does.
// binaryOp 把 uint256 的二元方法包装为处理函数：弹出 a、b，压入 f(a, b)。
func binaryOp(f func(z, x, y *uint256.Int) *uint256.Int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		a, b := scope.Stack.pop(), scope.Stack.peek()
		f(b, &a, b)
		return nil, nil
	}
}

// compareOp is binaryOp for predicates, the result is 1 or 0.
func compareOp(f func(x, y *uint256.Int) bool) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		a, b := scope.Stack.pop(), scope.Stack.peek()
		setBool(b, f(&a, b))
		return nil, nil
	}
}

// modularOp replaces a, b, n with f(a, b) mod n computed without the
// intermediate wrapping.
func modularOp(f func(z, x, y, m *uint256.Int) *uint256.Int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		a, b, n := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.peek()
		f(n, &a, &b, n)
		return nil, nil
	}
}

// shiftOp replaces shift, value with value shifted by shift bits. Shifting
// by 256 or more clears the value.
func shiftOp(f func(z, x *uint256.Int, n uint) *uint256.Int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		shift, value := scope.Stack.pop(), scope.Stack.peek()
		if !shift.LtUint64(256) {
			value.Clear()
			return nil, nil
		}
		f(value, value, uint(shift.Uint64()))
		return nil, nil
	}
}

// pushWord returns a handler pushing a value read from the execution
// context. get must return a fresh or otherwise unshared word, push copies
// it onto the stack.
// pushWord 生成把执行上下文中的某个值压栈的处理函数。
func pushWord(get func(interpreter *EVMInterpreter, scope *ScopeContext) *uint256.Int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		scope.Stack.push(get(interpreter, scope))
		return nil, nil
	}
}

func u256(v uint64) *uint256.Int { return new(uint256.Int).SetUint64(v) }

func addressWord(a common.Address) *uint256.Int { return new(uint256.Int).SetBytes(a[:]) }

// setBool replaces v with 1 or 0.
// setBool 将 v 置为 1 或 0。
func setBool(v *uint256.Int, b bool) {
	if b {
		v.SetOne()
	} else {
		v.Clear()
	}
}

var (
	opAdd  = binaryOp((*uint256.Int).Add)
	opSub  = binaryOp((*uint256.Int).Sub)
	opMul  = binaryOp((*uint256.Int).Mul)
	opDiv  = binaryOp((*uint256.Int).Div)
	opSdiv = binaryOp((*uint256.Int).SDiv)
	opMod  = binaryOp((*uint256.Int).Mod)
	opSmod = binaryOp((*uint256.Int).SMod)
	opExp  = binaryOp((*uint256.Int).Exp)
	opAnd  = binaryOp((*uint256.Int).And)
	opOr   = binaryOp((*uint256.Int).Or)
	opXor  = binaryOp((*uint256.Int).Xor)

	opAddmod = modularOp((*uint256.Int).AddMod)
	opMulmod = modularOp((*uint256.Int).MulMod)

	opLt  = compareOp((*uint256.Int).Lt)
	opGt  = compareOp((*uint256.Int).Gt)
	opSlt = compareOp((*uint256.Int).Slt)
	opSgt = compareOp((*uint256.Int).Sgt)
	opEq  = compareOp((*uint256.Int).Eq)

	opSHL = shiftOp((*uint256.Int).Lsh)
	opSHR = shiftOp((*uint256.Int).Rsh)
)

// opSignExtend sign extends the value from byte b counted from the least
// significant end. b of 31 or more leaves the value as is.
func opSignExtend(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	b, num := scope.Stack.pop(), scope.Stack.peek()
	num.ExtendSign(num, &b)
	return nil, nil
}

func opNot(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	x.Not(x)
	return nil, nil
}

func opIszero(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	setBool(x, x.IsZero())
	return nil, nil
}

// opByte takes byte i of the value, counted from the most significant end.
func opByte(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	i, val := scope.Stack.pop(), scope.Stack.peek()
	val.Byte(&i)
	return nil, nil
}

// opSAR implements Arithmetic Shift Right. The result is rounded towards
// negative infinity, so shifting a negative value by 256 or more gives -1.
// opSAR 算术右移，向负无穷取整。
func opSAR(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	shift, value := scope.Stack.pop(), scope.Stack.peek()
	switch {
	case shift.LtUint64(256):
		value.SRsh(value, uint(shift.Uint64()))
	case value.Sign() < 0:
		value.SetAllOne()
	default:
		value.Clear()
	}
	return nil, nil
}

func opKeccak256(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.peek()
	data := scope.Memory.GetPtr(offset.Uint64(), size.Uint64())

	hash := interpreter.keccak(data)
	if interpreter.cfg.EnablePreimageRecording {
		if recorder, ok := interpreter.host.(PreimageRecorder); ok {
			recorder.AddPreimage(hash, data)
		}
	}
	size.SetBytes(hash[:])
	return nil, nil
}

// keccak hashes data with the hasher kept by the interpreter.
func (in *EVMInterpreter) keccak(data []byte) common.Hash {
	if in.hasher == nil {
		in.hasher = crypto.NewKeccakState()
	}
	in.hasher.Reset()
	in.hasher.Write(data)
	in.hasher.Read(in.hasherBuf[:])
	return in.hasherBuf
}

var (
	opAddress = pushWord(func(_ *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return addressWord(scope.Contract.Address())
	})
	opOrigin = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		return addressWord(interpreter.host.TxContext().Origin)
	})
	opCaller = pushWord(func(_ *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return addressWord(scope.Contract.Caller())
	})
	opCallValue = pushWord(func(_ *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return scope.Contract.Value()
	})
	opCallDataSize = pushWord(func(_ *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return u256(uint64(len(scope.Contract.Input)))
	})
	opCodeSize = pushWord(func(_ *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return u256(uint64(len(scope.Contract.Code)))
	})
	opReturnDataSize = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		return u256(uint64(len(interpreter.returnData)))
	})
	opGasprice = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		v, _ := uint256.FromBig(interpreter.host.TxContext().GasPrice)
		return v
	})
	opSelfBalance = pushWord(func(interpreter *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return interpreter.host.GetBalance(scope.Contract.Address())
	})

	// Block context.
	// 区块上下文。
	opCoinbase = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		return addressWord(interpreter.host.BlockContext().Coinbase)
	})
	opTimestamp = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		return u256(interpreter.host.BlockContext().Time)
	})
	opNumber = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		v, _ := uint256.FromBig(interpreter.host.BlockContext().BlockNumber)
		return v
	})
	// opRandom pushes the beacon randomness that replaced the difficulty
	// field at the merge.
	opRandom = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		v := new(uint256.Int)
		if random := interpreter.host.BlockContext().Random; random != nil {
			v.SetBytes(random[:])
		}
		return v
	})
	opGasLimit = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		return u256(interpreter.host.BlockContext().GasLimit)
	})
	opChainID = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		v, _ := uint256.FromBig(interpreter.host.ChainConfig().ChainID)
		return v
	})
	opBaseFee = pushWord(func(interpreter *EVMInterpreter, _ *ScopeContext) *uint256.Int {
		v, _ := uint256.FromBig(interpreter.host.BlockContext().BaseFee)
		return v
	})

	opMsize = pushWord(func(_ *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return u256(uint64(scope.Memory.Len()))
	})
	opGas = pushWord(func(_ *EVMInterpreter, scope *ScopeContext) *uint256.Int {
		return u256(scope.Contract.Gas)
	})
)

func opPc(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(u256(*pc - 1))
	return nil, nil
}

func opBalance(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	slot.Set(interpreter.host.GetBalance(slot.Bytes20()))
	return nil, nil
}

func opExtCodeSize(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	slot.SetUint64(uint64(interpreter.host.GetCodeSize(slot.Bytes20())))
	return nil, nil
}

// opExtCodeHash pushes zero for an account that does not exist or is
// empty, and the hash of its code otherwise. An account without code thus
// reads the empty code hash only when it holds a balance or a nonce.
// opExtCodeHash 不存在或为空的账户返回 0，否则返回其代码哈希。
func opExtCodeHash(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	address := common.Address(slot.Bytes20())
	if interpreter.host.Empty(address) {
		slot.Clear()
		return nil, nil
	}
	hash := interpreter.host.GetCodeHash(address)
	slot.SetBytes(hash[:])
	return nil, nil
}

// opCallDataLoad reads a 32 byte word of the call input. Bytes past the end of
// the input read as zero.
// opCallDataLoad 读取调用输入中的 32 字节，越界部分补零。
func opCallDataLoad(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	x.SetBytes(paddedSlice(scope.Contract.Input, clampedOffset(x), 32))
	return nil, nil
}

// copyPadded pops memOffset, srcOffset and length and writes that window of
// src into memory, zero filling the part past the end of src.
// copyPadded 弹出 memOffset、srcOffset 与 length，把 src 的对应区间写入内存，越界部分补零。
func copyPadded(scope *ScopeContext, src []byte) {
	memOffset, srcOffset, length := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.pop()
	// memOffset and length were bounded by the memory size function.
	size := length.Uint64()
	scope.Memory.Set(memOffset.Uint64(), size, paddedSlice(src, clampedOffset(&srcOffset), size))
}

func opCallDataCopy(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	copyPadded(scope, scope.Contract.Input)
	return nil, nil
}

func opCodeCopy(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	copyPadded(scope, scope.Contract.Code)
	return nil, nil
}

func opExtCodeCopy(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	addr := scope.Stack.pop()
	copyPadded(scope, interpreter.host.GetCode(addr.Bytes20()))
	return nil, nil
}

// opReturnDataCopy copies from the last call's return data. Unlike the other
// copy instructions it fails instead of zero filling when the range reaches
// past the end.
// opReturnDataCopy 越界时不会补零，而是返回 ErrReturnDataOutOfBounds。
func opReturnDataCopy(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	memOffset, dataOffset, length := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.pop()

	var end uint256.Int
	if _, overflow := end.AddOverflow(&dataOffset, &length); overflow || !end.IsUint64() {
		return nil, ErrReturnDataOutOfBounds
	}
	if end.Uint64() > uint64(len(interpreter.returnData)) {
		return nil, ErrReturnDataOutOfBounds
	}
	scope.Memory.Set(memOffset.Uint64(), length.Uint64(), interpreter.returnData[dataOffset.Uint64():end.Uint64()])
	return nil, nil
}

// opBlockhash answers for the 256 most recent complete blocks only. Any other
// number, the current block included, yields zero.
// opBlockhash 只返回最近 256 个区块的哈希，其余返回 0。
func opBlockhash(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	num := scope.Stack.peek()
	current := interpreter.host.BlockContext().BlockNumber.Uint64()
	if !num.IsUint64() || num.Uint64() >= current || current-num.Uint64() > 256 {
		num.Clear()
		return nil, nil
	}
	hash := interpreter.host.GetHash(num.Uint64())
	num.SetBytes(hash[:])
	return nil, nil
}

func opPop(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop()
	return nil, nil
}

func opMload(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	v := scope.Stack.peek()
	v.SetBytes(scope.Memory.GetPtr(v.Uint64(), 32))
	return nil, nil
}

func opMstore(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.Set32(offset.Uint64(), &val)
	return nil, nil
}

// opMstore8 writes the least significant byte of the value.
func opMstore8(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.store()[offset.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	val := interpreter.host.GetState(scope.Contract.Address(), slot.Bytes32())
	slot.SetBytes(val[:])
	return nil, nil
}

func opSstore(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interpreter.readOnly {
		return nil, ErrWriteProtection
	}
	slot, val := scope.Stack.pop(), scope.Stack.pop()
	interpreter.host.SetState(scope.Contract.Address(), slot.Bytes32(), val.Bytes32())
	return nil, nil
}

// jumpTo moves pc to dest, which must be a JUMPDEST outside any PUSH
// operand.
// jumpTo 把 pc 移到 dest，目标必须是不在 PUSH 操作数内的 JUMPDEST。
func jumpTo(pc *uint64, scope *ScopeContext, dest *uint256.Int) error {
	if !scope.Contract.validJumpdest(dest) {
		return ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil
}

func opJump(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	dest := scope.Stack.pop()
	return nil, jumpTo(pc, scope, &dest)
}

// opJumpi only checks the destination when the condition holds.
func opJumpi(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	dest, cond := scope.Stack.pop(), scope.Stack.pop()
	if cond.IsZero() {
		return nil, nil
	}
	return nil, jumpTo(pc, scope, &dest)
}

func opJumpdest(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	return nil, nil
}

// makeCreate returns the handler of CREATE, or of CREATE2 when salted. The
// init code gets all but one 64th of the remaining gas, and the address of
// the new account, or zero on failure, is pushed.
// makeCreate 生成 CREATE（salted 时为 CREATE2）的处理函数：初始化代码获得除 1/64 外的全部剩余 gas，新账户地址（失败时为 0）压栈。
func makeCreate(salted bool) executionFunc {
	reason := tracing.GasChangeCallContractCreation
	if salted {
		reason = tracing.GasChangeCallContractCreation2
	}
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		if interpreter.readOnly {
			return nil, ErrWriteProtection
		}
		stack := scope.Stack
		value, offset, size := stack.pop(), stack.pop(), stack.pop()
		var salt uint256.Int
		if salted {
			salt = stack.pop()
		}
		input := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())

		gas := scope.Contract.Gas
		gas -= gas / 64
		scope.Contract.UseGas(gas, interpreter.cfg.Tracer, reason)

		var (
			caller    = scope.Contract.Address()
			res       []byte
			addr      common.Address
			returnGas uint64
			err       error
		)
		if salted {
			res, addr, returnGas, err = interpreter.host.Create2(caller, input, gas, &value, &salt)
		} else {
			res, addr, returnGas, err = interpreter.host.Create(caller, input, gas, &value)
		}
		result := size // the popped size word is free to reuse
		if err != nil {
			result.Clear()
		} else {
			result.SetBytes(addr[:])
		}
		stack.push(&result)
		scope.Contract.RefundGas(returnGas, interpreter.cfg.Tracer, tracing.GasChangeCallLeftOverRefunded)

		// Only a reverting init code leaves return data behind.
		if err == ErrExecutionReverted {
			interpreter.returnData = res
			return res, nil
		}
		interpreter.returnData = nil
		return nil, nil
	}
}

var (
	opCreate  = makeCreate(false)
	opCreate2 = makeCreate(true)
)

// callArgs are the stack operands of the CALL family. The gas operand was
// already turned into interpreter.callGasTemp by the gas function.
// callArgs 是 CALL 系列指令的栈操作数；gas 操作数已由 gas 函数换算为 interpreter.callGasTemp。
type callArgs struct {
	addr               common.Address
	value              uint256.Int // zero for DELEGATECALL and STATICCALL
	inOffset, inSize   uint256.Int
	retOffset, retSize uint256.Int
}

// popCallArgs pops the operands of a call. The returned word is the slot
// of the gas operand, reused for the success flag.
func popCallArgs(stack *Stack, withValue bool) (flag uint256.Int, args callArgs) {
	flag = stack.pop()
	addr := stack.pop()
	args.addr = addr.Bytes20()
	if withValue {
		args.value = stack.pop()
	}
	args.inOffset, args.inSize = stack.pop(), stack.pop()
	args.retOffset, args.retSize = stack.pop(), stack.pop()
	return flag, args
}

func (a *callArgs) input(mem *Memory) []byte {
	return mem.GetPtr(a.inOffset.Uint64(), a.inSize.Uint64())
}

// finishCall pushes the success flag of a nested call, copies its output to
// the caller's memory and returns the unused gas to the caller.
// finishCall 压入子调用的成功标志，把输出写回调用者内存并退还剩余 gas。
func finishCall(interpreter *EVMInterpreter, scope *ScopeContext, flag *uint256.Int, args *callArgs, ret []byte, returnGas uint64, err error) ([]byte, error) {
	setBool(flag, err == nil)
	scope.Stack.push(flag)
	if err == nil || err == ErrExecutionReverted {
		scope.Memory.Set(args.retOffset.Uint64(), args.retSize.Uint64(), ret)
	}
	scope.Contract.RefundGas(returnGas, interpreter.cfg.Tracer, tracing.GasChangeCallLeftOverRefunded)

	interpreter.returnData = ret
	return ret, nil
}

// transferGas is the gas handed to a value carrying call, the stipend
// included.
func (in *EVMInterpreter) transferGas(value *uint256.Int) uint64 {
	if value.IsZero() {
		return in.callGasTemp
	}
	return in.callGasTemp + params.CallStipend
}

func opCall(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	flag, args := popCallArgs(scope.Stack, true)
	if interpreter.readOnly && !args.value.IsZero() {
		return nil, ErrWriteProtection
	}
	gas := interpreter.transferGas(&args.value)
	ret, returnGas, err := interpreter.host.Call(scope.Contract.Address(), args.addr, args.input(scope.Memory), gas, &args.value)
	return finishCall(interpreter, scope, &flag, &args, ret, returnGas, err)
}

// opCallCode runs the target's code against the current account's storage.
// Value moves from the account to itself, so it is allowed in a static
// frame.
func opCallCode(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	flag, args := popCallArgs(scope.Stack, true)
	gas := interpreter.transferGas(&args.value)
	ret, returnGas, err := interpreter.host.CallCode(scope.Contract.Address(), args.addr, args.input(scope.Memory), gas, &args.value)
	return finishCall(interpreter, scope, &flag, &args, ret, returnGas, err)
}

// opDelegateCall runs the target's code in the current context: the callee
// sees the caller and value of the current frame.
// opDelegateCall 在当前上下文中执行目标代码，被调方看到的调用者与转账值与当前帧相同。
func opDelegateCall(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	flag, args := popCallArgs(scope.Stack, false)
	contract := scope.Contract
	ret, returnGas, err := interpreter.host.DelegateCall(contract.Caller(), contract.Address(), args.addr, args.input(scope.Memory), interpreter.callGasTemp, contract.Value())
	return finishCall(interpreter, scope, &flag, &args, ret, returnGas, err)
}

func opStaticCall(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	flag, args := popCallArgs(scope.Stack, false)
	ret, returnGas, err := interpreter.host.StaticCall(scope.Contract.Address(), args.addr, args.input(scope.Memory), interpreter.callGasTemp)
	return finishCall(interpreter, scope, &flag, &args, ret, returnGas, err)
}

// The handlers below end the frame. The table marks them as halting, so
// the success path returns no error.
// 以下处理函数会结束当前帧，跳转表将它们标记为终止指令，成功时不返回错误。

func opStop(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opReturn(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	return scope.Memory.GetCopy(offset.Uint64(), size.Uint64()), nil
}

func opRevert(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	ret := scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
	interpreter.returnData = ret
	return ret, ErrExecutionReverted
}

// opUndefined backs every unassigned slot of the jump table, INVALID (0xfe)
// included.
// opUndefined 对应跳转表中所有未定义的槽位，包括 INVALID (0xfe)。
func opUndefined(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	return nil, &ErrInvalidOpCode{opcode: scope.Contract.Bytecode().OpAt(*pc - 1)}
}

// opSelfdestruct moves the balance of the current account to the
// beneficiary and halts. From Cancun on the host only deletes the account
// when it was created in the same transaction (EIP-6780).
// opSelfdestruct 将余额转给受益人并停止执行；Cancun 之后只有同一交易内创建的账户才会被真正删除。
func opSelfdestruct(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interpreter.readOnly {
		return nil, ErrWriteProtection
	}
	target := scope.Stack.pop()
	var (
		self        = scope.Contract.Address()
		beneficiary = common.Address(target.Bytes20())
		balance     = new(uint256.Int).Set(interpreter.host.GetBalance(self))
	)
	interpreter.host.SelfDestruct(self, beneficiary)

	tracer := interpreter.cfg.Tracer
	if tracer != nil && tracer.OnEnter != nil {
		tracer.OnEnter(interpreter.depth, byte(SELFDESTRUCT), self, beneficiary, []byte{}, 0, balance.ToBig())
	}
	if tracer != nil && tracer.OnExit != nil {
		tracer.OnExit(interpreter.depth, []byte{}, 0, nil, false)
	}
	return nil, nil
}

// makeLog returns the handler of LOG<topics>. The topics follow the memory
// range on the stack.
// makeLog 生成 LOG<topics> 的处理函数，主题位于栈上内存区间参数之后。
func makeLog(topics int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		if interpreter.readOnly {
			return nil, ErrWriteProtection
		}
		offset, size := scope.Stack.pop(), scope.Stack.pop()
		entry := &types.Log{
			Address:     scope.Contract.Address(),
			Topics:      make([]common.Hash, topics),
			BlockNumber: interpreter.host.BlockContext().BlockNumber.Uint64(),
		}
		for i := range entry.Topics {
			topic := scope.Stack.pop()
			entry.Topics[i] = topic.Bytes32()
		}
		entry.Data = scope.Memory.GetCopy(offset.Uint64(), size.Uint64())
		interpreter.host.AddLog(entry)
		return nil, nil
	}
}

// makePush returns the handler of PUSH<size>. The operand is read from the
// padded code, so a PUSH cut short by the end of the code reads zeros for the
// missing bytes.
// makePush 生成 PUSH<size> 的处理函数；操作数从填充后的代码读取，越过代码末尾的字节按 0 计。
func makePush(size uint64) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		operand := scope.Contract.Bytecode().operand(*pc-1, size)
		scope.Stack.push(new(uint256.Int).SetBytes(operand))
		*pc += size
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		scope.Stack.dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		scope.Stack.swap(n)
		return nil, nil
	}
}
