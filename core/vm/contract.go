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
	"github.com/holiman/uint256"
)

// Contract is one call frame: the code being run, its arguments and the gas
// still available to it.
// Contract 表示一次调用帧中执行的合约：代码、调用参数与剩余 gas。
type Contract struct {
	caller  common.Address
	address common.Address
	value   *uint256.Int

	jumpDests JumpDestCache // shared with the other frames of the call
	bytecode  *Bytecode     // analysis of Code, built on first use

	Code         []byte
	CodeHash     common.Hash // zero for init code
	Input        []byte
	IsDeployment bool

	Gas uint64
}

// NewContract opens a frame. A nil jumpDests gives the frame a private
// cache and a nil value means no value is transferred.
// NewContract 创建新的合约执行环境；跳转目标缓存与父帧共享，传入 nil 时使用私有缓存。
func NewContract(caller common.Address, address common.Address, value *uint256.Int, gas uint64, jumpDests JumpDestCache) *Contract {
	if jumpDests == nil {
		jumpDests = newMapJumpDests()
	}
	if value == nil {
		value = new(uint256.Int)
	}
	return &Contract{caller: caller, address: address, value: value, jumpDests: jumpDests, Gas: gas}
}

// Bytecode returns the analyzed code. Deployed code reuses the JUMPDEST
// table cached under its hash; init code is analyzed again in every frame.
// Bytecode 返回合约的分析结果；已知哈希的代码先查缓存，初始化代码每次重新分析。
func (c *Contract) Bytecode() *Bytecode {
	if c.bytecode != nil {
		return c.bytecode
	}
	if c.CodeHash == (common.Hash{}) {
		c.bytecode = NewBytecode(c.Code).Analyze()
	} else if jumps, ok := c.jumpDests.Load(c.CodeHash); ok {
		c.bytecode = newAnalyzedBytecode(c.Code, c.CodeHash, jumps)
	} else {
		c.bytecode = NewBytecode(c.Code).Analyze()
		c.jumpDests.Store(c.CodeHash, c.bytecode.JumpTable())
	}
	return c.bytecode
}

func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}
	return c.Bytecode().IsJumpdest(dest.Uint64())
}

// GetOp returns the opcode at n, STOP past the end of the code.
func (c *Contract) GetOp(n uint64) OpCode { return c.Bytecode().OpAt(n) }

func (c *Contract) Caller() common.Address  { return c.caller }
func (c *Contract) Address() common.Address { return c.address }
func (c *Contract) Value() *uint256.Int     { return c.value }

// UseGas deducts gas if that much is left and reports whether it did.
// UseGas 尝试扣除 gas，余额不足时返回 false 且不做任何修改。
func (c *Contract) UseGas(gas uint64, logger *tracing.Hooks, reason tracing.GasChangeReason) bool {
	if c.Gas < gas {
		return false
	}
	c.setGas(c.Gas-gas, logger, reason)
	return true
}

// RefundGas hands gas back to the frame, typically what a child call left.
func (c *Contract) RefundGas(gas uint64, logger *tracing.Hooks, reason tracing.GasChangeReason) {
	if gas != 0 {
		c.setGas(c.Gas+gas, logger, reason)
	}
}

func (c *Contract) setGas(gas uint64, logger *tracing.Hooks, reason tracing.GasChangeReason) {
	if logger != nil && logger.OnGasChange != nil && reason != tracing.GasChangeIgnored {
		logger.OnGasChange(c.Gas, gas, reason)
	}
	c.Gas = gas
}

// SetCallCode installs the code to run. A zero hash marks init code, which
// never enters the JUMPDEST cache.
// SetCallCode 设置合约代码；哈希为零表示初始化代码，不会写入缓存。
func (c *Contract) SetCallCode(hash common.Hash, code []byte) {
	c.Code, c.CodeHash, c.bytecode = code, hash, nil
}
