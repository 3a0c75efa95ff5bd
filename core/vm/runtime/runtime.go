// Copyright 2015 The go-ethereum Authors
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

// Package runtime runs bytecode against a throwaway or caller supplied state
// without any transaction or block processing.
// runtime 包在临时或调用方提供的状态上直接运行字节码，不涉及交易与区块处理。
package runtime

import (
	"math"
	"math/big"
	"strconv"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/state"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

// Config describes the block and message a piece of code runs in. Unset
// fields get workable defaults: Cancun rules, an unlimited gas limit and a
// fresh in-memory state.
// Config 指定运行 EVM 所需的配置，未设置的字段使用默认值。
type Config struct {
	ChainConfig *params.ChainConfig
	Difficulty  *big.Int
	Origin      common.Address
	Coinbase    common.Address
	BlockNumber *big.Int
	Time        uint64
	GasLimit    uint64
	GasPrice    *big.Int
	Value       *big.Int
	EVMConfig   vm.Config
	BaseFee     *big.Int
	BlobBaseFee *big.Int
	BlobHashes  []common.Hash
	BlobFeeCap  *big.Int
	Random      *common.Hash

	State     *state.StateDB
	GetHashFn func(n uint64) common.Hash
}

// orBig returns v, or a fresh copy of def when v is nil.
func orBig(v *big.Int, def int64) *big.Int {
	if v != nil {
		return v
	}
	return big.NewInt(def)
}

func setDefaults(cfg *Config) {
	if cfg.ChainConfig == nil {
		cfg.ChainConfig = params.AllCancunChainConfig
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = math.MaxUint64
	}
	cfg.Difficulty = orBig(cfg.Difficulty, 0)
	cfg.GasPrice = orBig(cfg.GasPrice, 0)
	cfg.Value = orBig(cfg.Value, 0)
	cfg.BlockNumber = orBig(cfg.BlockNumber, 0)
	cfg.BaseFee = orBig(cfg.BaseFee, params.InitialBaseFee)
	cfg.BlobBaseFee = orBig(cfg.BlobBaseFee, params.BlobTxMinBlobGasprice)
	if cfg.Random == nil {
		cfg.Random = new(common.Hash)
	}
	if cfg.GetHashFn == nil {
		// keccak256 of the decimal block number
		cfg.GetHashFn = func(n uint64) common.Hash {
			return crypto.Keccak256Hash([]byte(strconv.FormatUint(n, 10)))
		}
	}
	if cfg.State == nil {
		statedb, err := state.New(rawdb.NewMemoryDatabase())
		if err != nil {
			panic(err) // a memory database never fails to open
		}
		cfg.State = statedb
	}
}

// transact wraps run in the transaction level tracer hooks, after warming
// the access list for a message from Origin to dst (nil for a creation).
func transact(cfg *Config, dst *common.Address, input []byte, run func(evm *vm.EVM) (uint64, error)) error {
	evm := NewEnv(cfg)
	rules := evm.Rules()
	hooks := cfg.EVMConfig.Tracer
	if hooks != nil && hooks.OnTxStart != nil {
		hooks.OnTxStart(evm.GetVMContext(), cfg.Origin, dst, input, cfg.GasLimit)
	}
	evm.StateDB.Prepare(rules, cfg.Origin, cfg.Coinbase, dst, vm.ActivePrecompiles(rules), nil)

	left, err := run(evm)
	if hooks != nil && hooks.OnTxEnd != nil {
		hooks.OnTxEnd(cfg.GasLimit-left, err)
	}
	return err
}

// Execute installs code at a fixed address and calls it with input. It
// returns the output and the state the call left behind.
// Execute 在临时的内存环境中以 input 作为调用数据执行 code，返回输出、新状态与错误。
func Execute(code, input []byte, cfg *Config) ([]byte, *state.StateDB, error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	var (
		address = common.BytesToAddress([]byte("contract"))
		ret     []byte
	)
	err := transact(cfg, &address, input, func(evm *vm.EVM) (left uint64, err error) {
		evm.StateDB.CreateAccount(address)
		evm.StateDB.SetCode(address, code)
		ret, left, err = evm.Call(cfg.Origin, address, input, cfg.GasLimit, uint256.MustFromBig(cfg.Value))
		return left, err
	})
	return ret, cfg.State, err
}

// Create runs input as init code and returns the deployed code, its address
// and the gas left.
// Create 通过 EVM 的创建流程执行 input，返回部署的代码、地址与剩余 gas。
func Create(input []byte, cfg *Config) (code []byte, address common.Address, left uint64, err error) {
	if cfg == nil {
		cfg = new(Config)
	}
	setDefaults(cfg)

	err = transact(cfg, nil, input, func(evm *vm.EVM) (uint64, error) {
		code, address, left, err = evm.Create(cfg.Origin, input, cfg.GasLimit, uint256.MustFromBig(cfg.Value))
		return left, err
	})
	return code, address, left, err
}

// Call runs the code already deployed at address. cfg is required and
// normally carries the State holding that code.
// Call 执行 address 处已有的代码；必须提供配置，通常带有包含该代码的 State。
func Call(address common.Address, input []byte, cfg *Config) (ret []byte, left uint64, err error) {
	setDefaults(cfg)

	err = transact(cfg, &address, input, func(evm *vm.EVM) (uint64, error) {
		ret, left, err = evm.Call(cfg.Origin, address, input, cfg.GasLimit, uint256.MustFromBig(cfg.Value))
		return left, err
	})
	return ret, left, err
}
