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
	"errors"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/params"
)

// Access list accounting. The host warms an address or slot on first access
// and reports whether it was already warm; a cold access that the frame
// cannot pay for is rolled back together with the frame.
// 访问列表计费：宿主在首次访问时预热地址或存储槽并返回之前是否已预热，
// 付不起费用的冷访问会随调用帧一起回滚。

const (
	warmRead = params.WarmStorageReadCostEIP2929
	// coldSurcharge is what a cold account costs on top of the warm read
	// already charged as constant gas.
	coldSurcharge = params.ColdAccountAccessCostEIP2929 - warmRead
	// slotReset is SSTORE_RESET_GAS as repriced by EIP-2929.
	slotReset = params.SstoreResetGasEIP2200 - params.ColdSloadCostEIP2929
	slotSet   = params.SstoreSetGasEIP2200
)

var errSstoreSentry = errors.New("not enough gas for reentrancy sentry")

// sstoreCost prices writing value into a slot holding current, which held
// original when the transaction began (EIP-2200 with warm prices). refund is
// the change to the refund counter.
// sstoreCost 按 EIP-2200 规则计算写入费用，refund 为退款计数器的变化量。
func sstoreCost(original, current, value common.Hash, clearRefund uint64) (cost uint64, refund int64) {
	var zero common.Hash
	if current == value {
		return warmRead, 0
	}
	if original == current {
		switch {
		case original == zero:
			return slotSet, 0
		case value == zero:
			return slotReset, int64(clearRefund)
		}
		return slotReset, 0
	}
	// The slot is dirty already: charge a warm read and fix up the refunds
	// granted by the earlier writes.
	if original != zero {
		if current == zero {
			refund -= int64(clearRefund)
		} else if value == zero {
			refund += int64(clearRefund)
		}
	}
	if original == value {
		if original == zero {
			refund += int64(slotSet - warmRead)
		} else {
			refund += int64(slotReset - warmRead)
		}
	}
	return warmRead, refund
}

// makeGasSStoreFunc returns the SSTORE gas function, clearingRefund being
// the refund for zeroing a slot.
// makeGasSStoreFunc 返回 SSTORE 的 gas 函数，clearingRefund 为清空存储槽的退款额。
func makeGasSStoreFunc(clearingRefund uint64) gasFunc {
	return func(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		if contract.Gas <= params.SstoreSentryGasEIP2200 {
			return 0, errSstoreSentry
		}
		var (
			self  = contract.Address()
			slot  = common.Hash(stack.peek().Bytes32())
			value = common.Hash(stack.back(1).Bytes32())
			cold  uint64
		)
		if !in.host.AccessSlot(self, slot) {
			cold = params.ColdSloadCostEIP2929
		}
		original := in.host.GetCommittedState(self, slot)
		cost, refund := sstoreCost(original, in.host.GetState(self, slot), value, clearingRefund)
		switch {
		case refund > 0:
			in.host.AddRefund(uint64(refund))
		case refund < 0:
			in.host.SubRefund(uint64(-refund))
		}
		return cold + cost, nil
	}
}

// gasSStoreEIP3529 uses the reduced clearing refund of London.
var gasSStoreEIP3529 = makeGasSStoreFunc(params.SstoreClearsScheduleRefundEIP3529)

func gasSLoadEIP2929(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if in.host.AccessSlot(contract.Address(), common.Hash(stack.peek().Bytes32())) {
		return warmRead, nil
	}
	return params.ColdSloadCostEIP2929, nil
}

// accountSurcharge warms the address and returns the cold surcharge when it
// was not warm yet.
func accountSurcharge(in *EVMInterpreter, addr common.Address) uint64 {
	if in.host.AccessAccount(addr) {
		return 0
	}
	return coldSurcharge
}

// gasEip2929AccountCheck is the dynamic gas of BALANCE, EXTCODESIZE and
// EXTCODEHASH, which read the account on top of the stack.
func gasEip2929AccountCheck(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return accountSurcharge(in, common.Address(stack.peek().Bytes20())), nil
}

func gasExtCodeCopyEIP2929(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := gasExtCodeCopy(in, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	return addGas(gas, accountSurcharge(in, common.Address(stack.peek().Bytes20())))
}

// coldCall wraps the gas function of a call opcode. The cold surcharge is
// taken from the frame before the 63/64 split so the callee cannot receive
// it, then handed back and reported as dynamic gas so tracers see it.
// coldCall 在 63/64 划分前先扣除冷访问附加费，之后再退回并计入动态 gas，以便跟踪器正确报告。
func coldCall(inner gasFunc) gasFunc {
	return func(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		surcharge := accountSurcharge(in, common.Address(stack.back(1).Bytes20()))
		if surcharge > 0 && !contract.UseGas(surcharge, in.cfg.Tracer, tracing.GasChangeCallStorageColdAccess) {
			return 0, ErrOutOfGas
		}
		gas, err := inner(in, contract, stack, mem, memorySize)
		if surcharge == 0 || err != nil {
			return gas, err
		}
		contract.Gas += surcharge
		return addGas(gas, surcharge)
	}
}

var (
	gasCallEIP2929         = coldCall(gasCall)
	gasCallCodeEIP2929     = coldCall(gasCallCode)
	gasDelegateCallEIP2929 = coldCall(gasDelegateCall)
	gasStaticCallEIP2929   = coldCall(gasStaticCall)
)

// gasSelfdestructEIP3529 charges the cold access of the beneficiary and the
// creation of an empty beneficiary that receives a balance. There is no
// refund since EIP-3529.
// gasSelfdestructEIP3529 收取受益地址的冷访问费用，以及向空账户转入余额时的新建账户费用；EIP-3529 之后不再退款。
func gasSelfdestructEIP3529(in *EVMInterpreter, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	var gas uint64
	beneficiary := common.Address(stack.peek().Bytes20())
	if !in.host.AccessAccount(beneficiary) {
		gas = params.ColdAccountAccessCostEIP2929
	}
	if in.host.Empty(beneficiary) && !in.host.GetBalance(contract.Address()).IsZero() {
		gas += params.CreateBySelfdestructGas
	}
	return gas, nil
}
