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

// Package tracing exposes execution events to tracers through optional
// callbacks. A nil callback is never invoked.
// tracing 包通过可选回调向跟踪器暴露执行事件。
package tracing

import (
	"math/big"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/holiman/uint256"
)

// OpContext is the view of the running frame handed to opcode hooks.
type OpContext interface {
	MemoryData() []byte
	StackData() []uint256.Int
	Caller() common.Address
	Address() common.Address
	CallValue() *uint256.Int
	CallInput() []byte
	ContractCode() []byte
}

// StateDB is the read-only state surface tracers may query.
// 跟踪器只读访问的状态接口。
type StateDB interface {
	GetBalance(common.Address) *uint256.Int
	GetNonce(common.Address) uint64
	GetCode(common.Address) []byte
	GetCodeHash(common.Address) common.Hash
	GetState(common.Address, common.Hash) common.Hash
	GetTransientState(common.Address, common.Hash) common.Hash
	Exist(common.Address) bool
	GetRefund() uint64
}

// VMContext describes the block a message executes in.
type VMContext struct {
	Coinbase    common.Address
	BlockNumber *big.Int
	Time        uint64
	Random      *common.Hash
	BaseFee     *big.Int
	StateDB     StateDB
}

type (
	// TxStartHook fires once before the top-level message runs.
	TxStartHook = func(vm *VMContext, from common.Address, to *common.Address, input []byte, gas uint64)

	// TxEndHook fires once after the top-level message returns.
	TxEndHook = func(gasUsed uint64, err error)

	// EnterHook fires when a call frame opens. typ is the opcode that opened it.
	// 调用帧开始时触发。
	EnterHook = func(depth int, typ byte, from common.Address, to common.Address, input []byte, gas uint64, value *big.Int)

	// ExitHook fires when a call frame closes; reverted reports whether its
	// state changes were discarded.
	ExitHook = func(depth int, output []byte, gasUsed uint64, err error, reverted bool)

	// OpcodeHook fires before each instruction, after its gas is known.
	// 每条指令执行前触发。
	OpcodeHook = func(pc uint64, op byte, gas, cost uint64, scope OpContext, rData []byte, depth int, err error)

	FaultHook = func(pc uint64, op byte, gas, cost uint64, scope OpContext, depth int, err error)

	GasChangeHook = func(old, new uint64, reason GasChangeReason)

	BalanceChangeHook = func(addr common.Address, prev, new *big.Int, reason BalanceChangeReason)

	NonceChangeHook = func(addr common.Address, prev, new uint64)

	CodeChangeHook = func(addr common.Address, prevCodeHash common.Hash, prevCode []byte, codeHash common.Hash, code []byte)

	StorageChangeHook = func(addr common.Address, slot common.Hash, prev, new common.Hash)

	LogHook = func(log *types.Log)
)

// Hooks groups every callback a tracer can register.
// Hooks 汇总跟踪器可注册的全部回调。
type Hooks struct {
	// execution
	OnTxStart   TxStartHook
	OnTxEnd     TxEndHook
	OnEnter     EnterHook
	OnExit      ExitHook
	OnOpcode    OpcodeHook
	OnFault     FaultHook
	OnGasChange GasChangeHook
	// state
	OnBalanceChange BalanceChangeHook
	OnNonceChange   NonceChangeHook
	OnCodeChange    CodeChangeHook
	OnStorageChange StorageChangeHook
	OnLog           LogHook
}

// BalanceChangeReason tags a balance mutation for tracers.
type BalanceChangeReason byte

const (
	BalanceChangeUnspecified BalanceChangeReason = 0

	// value moved by a call, debited from the sender and credited to the recipient
	BalanceChangeTransfer BalanceChangeReason = 10
	// zero-value transfer that only touches the recipient
	BalanceChangeTouchAccount BalanceChangeReason = 11

	// SELFDESTRUCT beneficiary credit
	BalanceIncreaseSelfdestruct BalanceChangeReason = 12
	// SELFDESTRUCT debit of the destroyed contract
	BalanceDecreaseSelfdestruct BalanceChangeReason = 13
	// value received by an account already destroyed in this transaction
	BalanceDecreaseSelfdestructBurn BalanceChangeReason = 14
)

// GasChangeReason tags a change of the remaining gas in a frame.
// 标记调用帧剩余 gas 变化的原因。
type GasChangeReason byte

const (
	// gas handed to a new frame
	GasChangeCallInitialBalance GasChangeReason = 5
	// unused gas drained back to the caller
	GasChangeCallLeftOverReturned GasChangeReason = 6
	// unused child gas credited to the parent
	GasChangeCallLeftOverRefunded GasChangeReason = 7

	GasChangeCallContractCreation    GasChangeReason = 8
	GasChangeCallContractCreation2   GasChangeReason = 9
	GasChangeCallCodeStorage         GasChangeReason = 10
	GasChangeCallOpCode              GasChangeReason = 11
	GasChangeCallPrecompiledContract GasChangeReason = 12

	// EIP-2929 cold access surcharge
	GasChangeCallStorageColdAccess GasChangeReason = 13
	// remaining gas burnt by a failure other than REVERT
	GasChangeCallFailedExecution GasChangeReason = 14

	// GasChangeIgnored marks a change the emitter reports itself.
	GasChangeIgnored GasChangeReason = 0xFF
)
