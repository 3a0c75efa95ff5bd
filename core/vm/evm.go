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
	"math/big"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/log"
	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

type (
	// CanTransferFunc reports whether an account can pay a value transfer.
	CanTransferFunc func(StateDB, common.Address, *uint256.Int) bool
	// TransferFunc moves value between two accounts.
	TransferFunc func(StateDB, common.Address, common.Address, *uint256.Int)
	// GetHashFunc answers BLOCKHASH for a block number.
	GetHashFunc func(uint64) common.Hash
)

// BlockContext is the block the code runs in. It is fixed for the lifetime
// of an EVM.
// BlockContext 为 EVM 提供区块层面的信息，创建后不再修改。
type BlockContext struct {
	CanTransfer CanTransferFunc // defaults to CanTransfer
	Transfer    TransferFunc    // defaults to Transfer
	GetHash     GetHashFunc     // nil answers zero for every block

	Coinbase    common.Address // COINBASE
	GasLimit    uint64         // GASLIMIT
	BlockNumber *big.Int       // NUMBER
	Time        uint64         // TIMESTAMP, also selects the fork
	Difficulty  *big.Int       // informational, DIFFICULTY reads Random after the merge
	BaseFee     *big.Int       // BASEFEE
	BlobBaseFee *big.Int       // BLOBBASEFEE
	Random      *common.Hash   // PREVRANDAO
}

// TxContext is the transaction being executed. It may change between
// transactions run on the same EVM.
// TxContext 为 EVM 提供交易层面的信息，不同交易之间可变。
type TxContext struct {
	Origin     common.Address // ORIGIN
	GasPrice   *big.Int       // GASPRICE
	BlobHashes []common.Hash  // BLOBHASH
	BlobFeeCap *big.Int
}

// CanTransfer compares the balance against the amount. Gas is not part of
// the check.
func CanTransfer(db StateDB, addr common.Address, amount *uint256.Int) bool {
	return db.GetBalance(addr).Cmp(amount) >= 0
}

// Transfer debits sender and credits recipient.
func Transfer(db StateDB, sender, recipient common.Address, amount *uint256.Int) {
	db.SubBalance(sender, amount, tracing.BalanceChangeTransfer)
	db.AddBalance(recipient, amount, tracing.BalanceChangeTransfer)
}

// EVM runs contracts on top of a StateDB and is the default Host of the
// interpreter. Any error out of a call means the frame reverted and, unless
// it is ErrExecutionReverted, consumed its gas. An EVM serves a single
// goroutine.
// EVM 在给定状态与上下文上运行合约，是解释器默认的 Host。它只能在单个 goroutine 中使用。
type EVM struct {
	Context BlockContext
	StateDB StateDB
	Config  Config

	txContext   TxContext
	chainConfig *params.ChainConfig
	chainRules  params.Rules

	interpreter *EVMInterpreter
	precompiles PrecompiledContracts
	jumpDests   JumpDestCache // shared by every frame
}

// NewEVM builds an EVM for one block. The fork rules follow from the block
// time. Call SetTxContext before each transaction.
// NewEVM 为一个区块创建 EVM，分叉规则由区块时间决定。
func NewEVM(blockCtx BlockContext, statedb StateDB, chainConfig *params.ChainConfig, config Config) *EVM {
	if blockCtx.CanTransfer == nil {
		blockCtx.CanTransfer = CanTransfer
	}
	if blockCtx.Transfer == nil {
		blockCtx.Transfer = Transfer
	}
	if blockCtx.BlockNumber == nil {
		blockCtx.BlockNumber = new(big.Int)
	}
	rules := chainConfig.Rules(blockCtx.Time)
	evm := &EVM{
		Context:     blockCtx,
		StateDB:     statedb,
		Config:      config,
		chainConfig: chainConfig,
		chainRules:  rules,
		precompiles: activePrecompiledContracts(rules),
		jumpDests:   config.JumpDestCache,
	}
	if evm.jumpDests == nil {
		evm.jumpDests = newMapJumpDests()
	}
	evm.interpreter = NewEVMInterpreter(evm, rules, &evm.Config)
	return evm
}

// SetTxContext installs the next transaction. A nil gas price reads as zero.
func (evm *EVM) SetTxContext(txCtx TxContext) {
	if txCtx.GasPrice == nil {
		txCtx.GasPrice = new(big.Int)
	}
	evm.txContext = txCtx
}

func (evm *EVM) Interpreter() *EVMInterpreter     { return evm.interpreter }
func (evm *EVM) Rules() params.Rules              { return evm.chainRules }
func (evm *EVM) ChainConfig() *params.ChainConfig { return evm.chainConfig }

func (evm *EVM) depth() int { return evm.interpreter.depth }

// message is one call frame about to be entered.
type message struct {
	op       OpCode
	from     common.Address // account issuing the call
	code     common.Address // account the code and precompile are looked up at
	caller   common.Address // CALLER inside the frame
	self     common.Address // ADDRESS inside the frame
	input    []byte
	gas      uint64
	value    *uint256.Int // CALLVALUE, nil for STATICCALL
	readOnly bool
}

// call runs a message. check rejects it before any state is touched. enter
// runs after the snapshot and may end the call early with success by
// returning false. Precompiles run in place of code.
// call 执行一个调用帧：check 在修改状态前拒绝调用，enter 在快照之后执行，返回 false 时直接成功返回。
func (evm *EVM) call(m message, check func() error, enter func(precompile bool) bool) (ret []byte, leftOverGas uint64, err error) {
	if evm.Config.Tracer != nil {
		evm.captureBegin(evm.depth(), m.op, m.from, m.code, m.input, m.gas, m.value.ToBig())
		defer func() {
			evm.captureEnd(evm.depth(), m.gas, leftOverGas, ret, err)
		}()
	}
	if evm.depth() > int(params.CallCreateDepth) {
		return nil, m.gas, ErrDepth
	}
	if check != nil {
		if err := check(); err != nil {
			return nil, m.gas, err
		}
	}
	snapshot := evm.StateDB.Snapshot()
	p, isPrecompile := evm.precompiles[m.code]
	if enter != nil && !enter(isPrecompile) {
		return nil, m.gas, nil
	}
	gas := m.gas
	if isPrecompile {
		ret, gas, err = RunPrecompiledContract(p, m.input, gas, evm.Config.Tracer)
	} else if code := evm.StateDB.GetCode(m.code); len(code) > 0 {
		value := m.value
		if value == nil {
			value = new(uint256.Int)
		}
		contract := NewContract(m.caller, m.self, value, gas, evm.jumpDests)
		contract.SetCallCode(evm.StateDB.GetCodeHash(m.code), code)
		ret, err = evm.interpreter.Run(contract, m.input, m.readOnly)
		gas = contract.Gas
	}
	return ret, evm.settle(snapshot, gas, err), err
}

// settle closes a frame: on error the state goes back to the snapshot and,
// unless the code reverted, the remaining gas is gone.
// settle 结束一个调用帧：出错时回滚到快照，非 revert 错误还会耗尽剩余 gas。
func (evm *EVM) settle(snapshot int, gas uint64, err error) uint64 {
	if err == nil {
		return gas
	}
	evm.StateDB.RevertToSnapshot(snapshot)
	if err == ErrExecutionReverted {
		return gas
	}
	if evm.Config.Tracer != nil && evm.Config.Tracer.OnGasChange != nil {
		evm.Config.Tracer.OnGasChange(gas, 0, tracing.GasChangeCallFailedExecution)
	}
	return 0
}

// Call runs the code at addr with value moved from caller to addr. A call
// carrying no value to an account that does not exist is a successful no-op.
// Call 以给定输入执行 addr 处的合约并转账；向不存在的账户发起零值调用直接成功。
func (evm *EVM) Call(caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	m := message{op: CALL, from: caller, code: addr, caller: caller, self: addr, input: input, gas: gas, value: value}
	check := func() error {
		if !value.IsZero() && !evm.Context.CanTransfer(evm.StateDB, caller, value) {
			return ErrInsufficientBalance
		}
		return nil
	}
	enter := func(precompile bool) bool {
		if !evm.StateDB.Exist(addr) {
			if !precompile && value.IsZero() {
				return false
			}
			evm.StateDB.CreateAccount(addr)
		}
		evm.Context.Transfer(evm.StateDB, caller, addr, value)
		return true
	}
	return evm.call(m, check, enter)
}

// CallCode runs the code at addr inside the caller's own account. The value
// never leaves the caller but its balance must still cover it.
// CallCode 以调用者自身为上下文执行 addr 的代码。
func (evm *EVM) CallCode(caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	m := message{op: CALLCODE, from: caller, code: addr, caller: caller, self: caller, input: input, gas: gas, value: value}
	return evm.call(m, func() error {
		if !evm.Context.CanTransfer(evm.StateDB, caller, value) {
			return ErrInsufficientBalance
		}
		return nil
	}, nil)
}

// DelegateCall runs the code at addr inside caller's account, keeping the
// CALLER and CALLVALUE of the frame that issued it.
// DelegateCall 以调用者为上下文执行 addr 的代码，且保留上一层的调用者与转账值。
func (evm *EVM) DelegateCall(originCaller common.Address, caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	m := message{op: DELEGATECALL, from: caller, code: addr, caller: originCaller, self: caller, input: input, gas: gas, value: value}
	return evm.call(m, nil, nil)
}

// StaticCall runs the code at addr with every state modification turned
// into an error.
// StaticCall 以只读方式执行合约，任何修改状态的操作码都会失败。
func (evm *EVM) StaticCall(caller common.Address, addr common.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	m := message{op: STATICCALL, from: caller, code: addr, caller: caller, self: addr, input: input, gas: gas, readOnly: true}
	return evm.call(m, nil, func(bool) bool {
		// Even a static call touches its target, which matters for empty
		// account removal.
		evm.StateDB.AddBalance(addr, new(uint256.Int), tracing.BalanceChangeTouchAccount)
		return true
	})
}

// create deploys code at address. The sender's nonce is bumped and the
// address warmed before the snapshot, so neither is undone by a failure.
// create 在 address 处部署合约；发送者 nonce 的递增与访问列表的预热发生在快照之前，失败时不会回滚。
func (evm *EVM) create(caller common.Address, code []byte, gas uint64, value *uint256.Int, address common.Address, typ OpCode) (ret []byte, createAddress common.Address, leftOverGas uint64, err error) {
	if evm.Config.Tracer != nil {
		evm.captureBegin(evm.depth(), typ, caller, address, code, gas, value.ToBig())
		defer func(startGas uint64) {
			evm.captureEnd(evm.depth(), startGas, leftOverGas, ret, err)
		}(gas)
	}
	switch nonce := evm.StateDB.GetNonce(caller); {
	case evm.depth() > int(params.CallCreateDepth):
		return nil, common.Address{}, gas, ErrDepth
	case !evm.Context.CanTransfer(evm.StateDB, caller, value):
		return nil, common.Address{}, gas, ErrInsufficientBalance
	case nonce+1 < nonce:
		return nil, common.Address{}, gas, ErrNonceUintOverflow
	default:
		evm.StateDB.SetNonce(caller, nonce+1)
	}
	evm.StateDB.AddAddressToAccessList(address)

	// An address with a nonce or code is taken. The collision burns the gas.
	if hash := evm.StateDB.GetCodeHash(address); evm.StateDB.GetNonce(address) != 0 ||
		(hash != (common.Hash{}) && hash != types.EmptyCodeHash) {
		if evm.Config.Tracer != nil && evm.Config.Tracer.OnGasChange != nil {
			evm.Config.Tracer.OnGasChange(gas, 0, tracing.GasChangeCallFailedExecution)
		}
		return nil, common.Address{}, 0, ErrContractAddressCollision
	}
	snapshot := evm.StateDB.Snapshot()
	if !evm.StateDB.Exist(address) {
		evm.StateDB.CreateAccount(address)
	}
	// The account becomes a contract before the init code runs inside it.
	evm.StateDB.CreateContract(address)
	evm.StateDB.SetNonce(address, 1)
	evm.Context.Transfer(evm.StateDB, caller, address, value)

	contract := NewContract(caller, address, value, gas, evm.jumpDests)
	contract.SetCallCode(common.Hash{}, code)
	contract.IsDeployment = true

	if ret, err = evm.initNewContract(contract, address); err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.UseGas(contract.Gas, evm.Config.Tracer, tracing.GasChangeCallFailedExecution)
		}
	}
	log.Debug("Contract creation", "address", address, "codesize", len(ret), "gasleft", contract.Gas, "err", err)
	return ret, address, contract.Gas, err
}

// initNewContract runs the init code and stores what it returns as the
// account code, charging the per byte deposit.
// initNewContract 执行初始化代码，校验返回的运行时代码并收取代码存储费用。
func (evm *EVM) initNewContract(contract *Contract, address common.Address) ([]byte, error) {
	ret, err := evm.interpreter.Run(contract, nil, false)
	switch {
	case err != nil:
		return ret, err
	case len(ret) > params.MaxCodeSize:
		return ret, ErrMaxCodeSizeExceeded
	case len(ret) > 0 && ret[0] == 0xEF: // EIP-3541
		return ret, ErrInvalidCode
	case !contract.UseGas(uint64(len(ret))*params.CreateDataGas, evm.Config.Tracer, tracing.GasChangeCallCodeStorage):
		return ret, ErrCodeStoreOutOfGas
	}
	evm.StateDB.SetCode(address, ret)
	return ret, nil
}

// Create deploys at keccak256(rlp([caller, nonce]))[12:].
func (evm *EVM) Create(caller common.Address, code []byte, gas uint64, value *uint256.Int) (ret []byte, contractAddr common.Address, leftOverGas uint64, err error) {
	contractAddr = crypto.CreateAddress(caller, evm.StateDB.GetNonce(caller))
	return evm.create(caller, code, gas, value, contractAddr, CREATE)
}

// Create2 deploys at keccak256(0xff ++ caller ++ salt ++ keccak256(code))[12:].
func (evm *EVM) Create2(caller common.Address, code []byte, gas uint64, endowment *uint256.Int, salt *uint256.Int) (ret []byte, contractAddr common.Address, leftOverGas uint64, err error) {
	contractAddr = crypto.CreateAddress2(caller, salt.Bytes32(), crypto.Keccak256(code))
	return evm.create(caller, code, gas, endowment, contractAddr, CREATE2)
}

// GetVMContext is the view of the block handed to tracers.
// GetVMContext 向跟踪器提供当前区块的上下文与状态。
func (evm *EVM) GetVMContext() *tracing.VMContext {
	return &tracing.VMContext{
		Coinbase:    evm.Context.Coinbase,
		BlockNumber: evm.Context.BlockNumber,
		Time:        evm.Context.Time,
		Random:      evm.Context.Random,
		BaseFee:     evm.Context.BaseFee,
		StateDB:     evm.StateDB,
	}
}

func (evm *EVM) captureBegin(depth int, typ OpCode, from common.Address, to common.Address, input []byte, startGas uint64, value *big.Int) {
	hooks := evm.Config.Tracer
	if hooks.OnEnter != nil {
		hooks.OnEnter(depth, byte(typ), from, to, input, startGas, value)
	}
	if hooks.OnGasChange != nil {
		hooks.OnGasChange(0, startGas, tracing.GasChangeCallInitialBalance)
	}
}

func (evm *EVM) captureEnd(depth int, startGas uint64, leftOverGas uint64, ret []byte, err error) {
	hooks := evm.Config.Tracer
	if leftOverGas != 0 && hooks.OnGasChange != nil {
		hooks.OnGasChange(leftOverGas, 0, tracing.GasChangeCallLeftOverReturned)
	}
	if hooks.OnExit != nil {
		hooks.OnExit(depth, ret, startGas-leftOverGas, VMErrorFromErr(err), err != nil)
	}
}

// Host implementation. The EVM answers every query of the running code from
// its StateDB and contexts.
// 以下为 Host 接口的实现，全部基于 StateDB 与上下文。

func (evm *EVM) BlockContext() *BlockContext { return &evm.Context }
func (evm *EVM) TxContext() *TxContext       { return &evm.txContext }

// GetHash returns the hash of the given block, or zero when the context has
// no GetHash function.
func (evm *EVM) GetHash(number uint64) common.Hash {
	if evm.Context.GetHash == nil {
		return common.Hash{}
	}
	return evm.Context.GetHash(number)
}

func (evm *EVM) Exist(addr common.Address) bool               { return evm.StateDB.Exist(addr) }
func (evm *EVM) Empty(addr common.Address) bool               { return evm.StateDB.Empty(addr) }
func (evm *EVM) GetBalance(addr common.Address) *uint256.Int  { return evm.StateDB.GetBalance(addr) }
func (evm *EVM) GetCode(addr common.Address) []byte           { return evm.StateDB.GetCode(addr) }
func (evm *EVM) GetCodeSize(addr common.Address) int          { return evm.StateDB.GetCodeSize(addr) }
func (evm *EVM) GetCodeHash(addr common.Address) common.Hash  { return evm.StateDB.GetCodeHash(addr) }
func (evm *EVM) HasSelfDestructed(addr common.Address) bool   { return evm.StateDB.HasSelfDestructed(addr) }
func (evm *EVM) AddLog(log *types.Log)                        { evm.StateDB.AddLog(log) }
func (evm *EVM) AddPreimage(hash common.Hash, preimage []byte) { evm.StateDB.AddPreimage(hash, preimage) }

// AccessAccount adds the address to the access list and reports whether it
// was already there.
// AccessAccount 将地址加入访问列表，并返回其此前是否已在列表中。
func (evm *EVM) AccessAccount(addr common.Address) bool {
	if evm.StateDB.AddressInAccessList(addr) {
		return true
	}
	evm.StateDB.AddAddressToAccessList(addr)
	return false
}

// AccessSlot adds the slot to the access list and reports whether it was
// already there.
func (evm *EVM) AccessSlot(addr common.Address, slot common.Hash) bool {
	if _, warm := evm.StateDB.SlotInAccessList(addr, slot); warm {
		return true
	}
	evm.StateDB.AddSlotToAccessList(addr, slot)
	return false
}

func (evm *EVM) GetState(addr common.Address, key common.Hash) common.Hash {
	return evm.StateDB.GetState(addr, key)
}

func (evm *EVM) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	return evm.StateDB.GetCommittedState(addr, key)
}

func (evm *EVM) SetState(addr common.Address, key, value common.Hash) {
	evm.StateDB.SetState(addr, key, value)
}

func (evm *EVM) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return evm.StateDB.GetTransientState(addr, key)
}

func (evm *EVM) SetTransientState(addr common.Address, key, value common.Hash) {
	evm.StateDB.SetTransientState(addr, key, value)
}

func (evm *EVM) AddRefund(gas uint64) { evm.StateDB.AddRefund(gas) }
func (evm *EVM) SubRefund(gas uint64) { evm.StateDB.SubRefund(gas) }
func (evm *EVM) GetRefund() uint64    { return evm.StateDB.GetRefund() }

// SelfDestruct moves the balance of addr to the beneficiary and schedules
// the account for deletion. From Cancun on, only accounts created in the
// same transaction are deleted.
// SelfDestruct 将 addr 的余额转给受益人；Cancun 之后只删除同一交易内创建的账户。
func (evm *EVM) SelfDestruct(addr, beneficiary common.Address) {
	balance := new(uint256.Int).Set(evm.StateDB.GetBalance(addr))
	if evm.chainRules.IsCancun {
		evm.StateDB.SubBalance(addr, balance, tracing.BalanceDecreaseSelfdestruct)
		evm.StateDB.AddBalance(beneficiary, balance, tracing.BalanceIncreaseSelfdestruct)
		evm.StateDB.SelfDestruct6780(addr)
		return
	}
	evm.StateDB.AddBalance(beneficiary, balance, tracing.BalanceIncreaseSelfdestruct)
	evm.StateDB.SelfDestruct(addr)
}

var (
	_ Host             = (*EVM)(nil)
	_ PreimageRecorder = (*EVM)(nil)
)
