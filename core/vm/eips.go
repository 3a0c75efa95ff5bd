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
	"fmt"
	"slices"
	"strconv"

	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

// eip is an instruction set change that can be layered onto a jump table.
// eip 表示可以叠加到跳转表上的一项指令集变更。
type eip struct {
	desc   string
	enable func(*JumpTable)
}

// eips holds the changes the Shanghai and Cancun tables are built from. They
// can also be switched on one by one through Config.ExtraEips.
// eips 列出构造 Shanghai 与 Cancun 指令集所用的变更，也可通过 Config.ExtraEips 单独启用。
var eips = map[int]eip{
	1153: {"transient storage (TLOAD, TSTORE)", func(jt *JumpTable) {
		jt[TLOAD] = newOp(opTload, params.WarmStorageReadCostEIP2929, 1, 1)
		jt[TSTORE] = newOp(opTstore, params.WarmStorageReadCostEIP2929, 2, 0)
	}},
	3855: {"PUSH0", func(jt *JumpTable) {
		push0 := newOp(opPush0, GasQuickStep, 0, 1)
		push0.isPush = true
		jt[PUSH0] = push0
	}},
	3860: {"initcode size limit and word gas", func(jt *JumpTable) {
		jt[CREATE].dynamicGas = gasCreateEip3860
		jt[CREATE2].dynamicGas = gasCreate2Eip3860
	}},
	4844: {"BLOBHASH", func(jt *JumpTable) {
		jt[BLOBHASH] = newOp(opBlobHash, GasFastestStep, 1, 1)
	}},
	5656: {"MCOPY", func(jt *JumpTable) {
		jt[MCOPY] = newOp(opMcopy, GasFastestStep, 3, 0).metered(gasMcopy, memoryMcopy)
	}},
	7516: {"BLOBBASEFEE", func(jt *JumpTable) {
		jt[BLOBBASEFEE] = newOp(opBlobBaseFee, GasQuickStep, 0, 1)
	}},
}

// EnableEIP enables the given EIP on the config.
// This operation writes in-place, and callers need to ensure that the globally
// defined jump tables are not polluted.
// EnableEIP 在给定跳转表上原地启用 EIP，调用者需保证不会污染全局跳转表。
func EnableEIP(eipNum int, jt *JumpTable) error {
	e, ok := eips[eipNum]
	if !ok {
		return fmt.Errorf("undefined eip %d", eipNum)
	}
	e.enable(jt)
	return nil
}

func mustEnable(eipNum int, jt *JumpTable) {
	if err := EnableEIP(eipNum, jt); err != nil {
		panic(err)
	}
}

// ValidEip reports whether the EIP number can be passed to EnableEIP.
func ValidEip(eipNum int) bool {
	_, ok := eips[eipNum]
	return ok
}

// ActivateableEips lists the EIPs that can be activated, in ascending order,
// each with a short description.
func ActivateableEips() []string {
	nums := make([]int, 0, len(eips))
	for n := range eips {
		nums = append(nums, n)
	}
	slices.Sort(nums)

	list := make([]string, len(nums))
	for i, n := range nums {
		list[i] = strconv.Itoa(n) + ": " + eips[n].desc
	}
	return list
}

func opTload(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	value := interpreter.host.GetTransientState(scope.Contract.Address(), slot.Bytes32())
	slot.SetBytes32(value[:])
	return nil, nil
}

func opTstore(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interpreter.readOnly {
		return nil, ErrWriteProtection
	}
	slot, value := scope.Stack.pop(), scope.Stack.pop()
	interpreter.host.SetTransientState(scope.Contract.Address(), slot.Bytes32(), value.Bytes32())
	return nil, nil
}

func opPush0(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int))
	return nil, nil
}

// opMcopy copies within memory. The ranges may overlap, and both were
// bounds checked while sizing the memory.
// opMcopy 在内存内部复制，源与目标可以重叠，范围已在计算内存大小时检查。
func opMcopy(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	dst, src, length := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.Copy(dst.Uint64(), src.Uint64(), length.Uint64())
	return nil, nil
}

// opBlobHash replaces an index with the versioned hash of that blob of the
// transaction, or zero when there is no such blob.
func opBlobHash(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	index := scope.Stack.peek()
	hashes := interpreter.host.TxContext().BlobHashes
	if i, overflow := index.Uint64WithOverflow(); !overflow && i < uint64(len(hashes)) {
		index.SetBytes32(hashes[i][:])
		return nil, nil
	}
	index.Clear()
	return nil, nil
}

func opBlobBaseFee(pc *uint64, interpreter *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	fee := new(uint256.Int)
	if blobFee := interpreter.host.BlockContext().BlobBaseFee; blobFee != nil {
		fee.SetFromBig(blobFee)
	}
	scope.Stack.push(fee)
	return nil, nil
}
