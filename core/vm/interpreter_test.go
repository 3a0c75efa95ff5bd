// Copyright 2018 The go-ethereum Authors
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
	"math/big"
	"strings"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/state"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCaller   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testContract = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func newTestEVM(t testing.TB, cfg Config) (*EVM, *state.StateDB) {
	t.Helper()
	statedb, err := state.New(rawdb.NewMemoryDatabase())
	require.NoError(t, err)
	evm := NewEVM(BlockContext{GasLimit: 30_000_000, BlockNumber: big.NewInt(1)}, statedb, params.AllCancunChainConfig, cfg)
	evm.SetTxContext(TxContext{Origin: testCaller})
	return evm, statedb
}

// execute runs code in a single frame, bypassing the host's call logic.
func execute(t testing.TB, evm *EVM, code, input []byte, gas uint64, readOnly bool) *Outcome {
	t.Helper()
	contract := NewContract(testCaller, testContract, nil, gas, nil)
	contract.SetCallCode(crypto.Keccak256Hash(code), code)
	return evm.Interpreter().Execute(contract, input, readOnly)
}

func word(v uint64) []byte {
	return common.LeftPadBytes(new(big.Int).SetUint64(v).Bytes(), 32)
}

func TestCalldataAdd(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	// CALLDATALOAD(0) + CALLDATALOAD(32), returned as one word
	code := common.FromHex("0x6000356020350160005260206000f3")
	input := append(word(2), word(3)...)

	out := execute(t, evm, code, input, 100_000, false)
	require.NoError(t, out.Err)
	assert.Equal(t, StatusSucceeded, out.Status)
	assert.Equal(t, word(5), out.Output)
	assert.Equal(t, uint64(30), out.GasUsed)
	assert.Equal(t, uint64(100_000-30), out.GasLeft)
}

// returnTop stores the top of the stack at offset zero and returns that word.
const returnTop = "60005260206000f3"

func TestReturnedWord(t *testing.T) {
	var (
		allOnes  = strings.Repeat("ff", 32)
		minusOne = new(uint256.Int).SetAllOne().Bytes32()
	)
	tests := []struct {
		name  string
		code  string
		input []byte
		want  []byte
	}{
		{"add wraps", "7f" + allOnes + "600201", nil, word(1)},
		{"sub wraps", "6001600003", nil, minusOne[:]},
		{"div by zero", "6000600504", nil, word(0)},
		{"lt true", "6002600110", nil, word(1)},
		{"gt false", "6002600111", nil, word(0)},
		{"slt signed", "60017f" + allOnes + "12", nil, word(1)},
		{"eq", "6005600514", nil, word(1)},
		{"iszero", "600015", nil, word(1)},
		{"calldata sum", "60003560203501", append(word(0), word(1)...), word(1)},
		{"calldataload past end", "600235", []byte{0x11, 0x22, 0x33, 0x44}, common.RightPadBytes([]byte{0x33, 0x44}, 32)},
		{"calldataload huge offset", "7f" + allOnes + "35", word(7), word(0)},
	}
	evm, _ := newTestEVM(t, Config{})
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code := common.FromHex(test.code + returnTop)
			out := execute(t, evm, code, test.input, 100_000, false)
			require.NoError(t, out.Err)
			assert.Equal(t, test.want, out.Output)
		})
	}
}

func TestRunOffTheEnd(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	out := execute(t, evm, common.FromHex("0x6001"), nil, 1000, false)
	require.NoError(t, out.Err)
	assert.Nil(t, out.Output)
	assert.Equal(t, uint64(3), out.GasUsed)
}

func TestEmptyCode(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	out := execute(t, evm, nil, nil, 1000, false)
	require.NoError(t, out.Err)
	assert.Equal(t, uint64(0), out.GasUsed)
}

func TestInvalidJump(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	tests := []struct {
		code string
		err  error
	}{
		{"0x6003565b", nil},                  // lands on a JUMPDEST
		{"0x600356", ErrInvalidJump},         // past the end of the code
		{"0x600456605b", ErrInvalidJump},     // inside a PUSH operand
		{"0x600256", ErrInvalidJump},         // on the JUMP itself
		{"0x6001600657005b", nil},            // JUMPI taken
		{"0x6000600557005b", nil},            // JUMPI not taken, invalid target ignored
		{"0x6001600557005b", ErrInvalidJump}, // JUMPI to a STOP
	}
	for i, test := range tests {
		out := execute(t, evm, common.FromHex(test.code), nil, 1000, false)
		if test.err == nil {
			assert.NoError(t, out.Err, "test %d", i)
			continue
		}
		assert.ErrorIs(t, out.Err, test.err, "test %d", i)
		assert.Equal(t, StatusErrored, out.Status, "test %d", i)
		assert.Equal(t, uint64(0), out.GasLeft, "test %d", i)
	}
}

func TestUnknownOpcode(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	for _, op := range []byte{0x0c, 0x21, 0xef, 0xfe} {
		out := execute(t, evm, []byte{byte(PUSH1), 0x01, op}, nil, 1000, false)
		var invalid *ErrInvalidOpCode
		require.ErrorAs(t, out.Err, &invalid, "opcode %#x", op)
		assert.Equal(t, OpCode(op), invalid.OpCode())
		assert.Equal(t, uint64(1000), out.GasUsed, "errors consume all gas")
		assert.True(t, out.Failed())
	}
}

func TestRevertOutput(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	code := common.FromHex("0x602a60005260206000fd")
	out := execute(t, evm, code, nil, 1000, false)
	assert.ErrorIs(t, out.Err, ErrExecutionReverted)
	assert.Equal(t, StatusReverted, out.Status)
	assert.Equal(t, word(42), out.Output)
	assert.NotZero(t, out.GasLeft, "reverts keep the remaining gas")
	assert.Equal(t, uint64(1000), out.GasLeft+out.GasUsed)
}

func TestStackErrors(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	out := execute(t, evm, []byte{byte(ADD)}, nil, 1000, false)
	assert.True(t, errors.Is(out.Err, errStackUnderflow))

	// 1025 pushes overflow the stack.
	code := make([]byte, 0, 1025)
	for i := 0; i < 1025; i++ {
		code = append(code, byte(PUSH0))
	}
	out = execute(t, evm, code, nil, 10_000, false)
	var overflow *ErrStackOverflow
	assert.ErrorAs(t, out.Err, &overflow)
}

func TestOutOfGasStep(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	// Two PUSH1 and an ADD need 9 gas.
	code := common.FromHex("0x6001600201")
	out := execute(t, evm, code, nil, 8, false)
	assert.ErrorIs(t, out.Err, ErrOutOfGas)
	assert.Equal(t, uint64(0), out.GasLeft)

	out = execute(t, evm, code, nil, 9, false)
	require.NoError(t, out.Err)
	assert.Equal(t, uint64(0), out.GasLeft)
}

func TestWriteProtection(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})
	out := execute(t, evm, common.FromHex("0x6001600055"), nil, 100_000, true)
	assert.ErrorIs(t, out.Err, ErrWriteProtection)

	// TSTORE is a state modification too.
	out = execute(t, evm, common.FromHex("0x600160005d"), nil, 100_000, true)
	assert.ErrorIs(t, out.Err, ErrWriteProtection)
}

func TestInterpreterMemoryLimit(t *testing.T) {
	evm, _ := newTestEVM(t, Config{MemoryLimit: 1024})
	// MSTORE at offset 0x400 needs 1056 bytes.
	out := execute(t, evm, common.FromHex("0x600161040052"), nil, 1_000_000, false)
	assert.ErrorIs(t, out.Err, ErrMemoryLimitExceeded)

	out = execute(t, evm, common.FromHex("0x60016103e052"), nil, 1_000_000, false)
	require.NoError(t, out.Err)
	assert.Equal(t, 0, evm.Interpreter().Memory().Len(), "frames release their memory")
}

func TestEndlessLoopRunsOutOfGas(t *testing.T) {
	evm, _ := newTestEVM(t, Config{})

	// JUMPDEST PUSH1 0 JUMP only stops when the gas is gone.
	out := execute(t, evm, common.FromHex("0x5b600056"), nil, 1_000, false)
	assert.ErrorIs(t, out.Err, ErrOutOfGas)
	assert.Equal(t, StatusErrored, out.Status)
	assert.Equal(t, uint64(1_000), out.GasUsed)
	assert.Zero(t, out.GasLeft)
}

func TestMcopyAndTransient(t *testing.T) {
	evm, statedb := newTestEVM(t, Config{})
	// store 0x2a at 0, MCOPY 32 bytes to 32, return memory[32:64]
	code := common.FromHex("0x602a600052" + "602060006020" + "5e" + "60206020f3")
	out := execute(t, evm, code, nil, 100_000, false)
	require.NoError(t, out.Err)
	assert.Equal(t, word(42), out.Output)

	// TSTORE then TLOAD through the host.
	code = common.FromHex("0x602a60015d" + "60015c" + "60005260206000f3")
	out = execute(t, evm, code, nil, 100_000, false)
	require.NoError(t, out.Err)
	assert.Equal(t, word(42), out.Output)
	assert.Equal(t, common.BytesToHash(word(42)), statedb.GetTransientState(testContract, common.BytesToHash(word(1))))
}

func TestTracerHooks(t *testing.T) {
	var (
		ops     []OpCode
		gasLast uint64
		enters  int
		exits   int
	)
	hooks := &tracing.Hooks{
		OnOpcode: func(pc uint64, op byte, gas, cost uint64, scope tracing.OpContext, rData []byte, depth int, err error) {
			ops = append(ops, OpCode(op))
			gasLast = gas
		},
		OnEnter: func(depth int, typ byte, from, to common.Address, input []byte, gas uint64, value *big.Int) {
			enters++
		},
		OnExit: func(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
			exits++
		},
	}
	evm, statedb := newTestEVM(t, Config{Tracer: hooks})
	statedb.SetCode(testContract, common.FromHex("0x6001600201"))

	_, left, err := evm.Call(testCaller, testContract, nil, 1000, new(uint256.Int))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000-9), left)
	assert.Equal(t, []OpCode{PUSH1, PUSH1, ADD, STOP}, ops)
	assert.Equal(t, uint64(1000-9), gasLast)
	assert.Equal(t, 1, enters)
	assert.Equal(t, 1, exits)
}

func TestForkInstructionSets(t *testing.T) {
	statedb, err := state.New(rawdb.NewMemoryDatabase())
	require.NoError(t, err)
	merged := NewEVM(BlockContext{}, statedb, params.MergedChainConfig, Config{})

	// PUSH0 arrives with Shanghai, MCOPY with Cancun.
	for _, code := range []string{"0x5f", "0x6000600060005e"} {
		out := execute(t, merged, common.FromHex(code), nil, 1000, false)
		var invalid *ErrInvalidOpCode
		assert.ErrorAs(t, out.Err, &invalid, "code %s", code)

		cancun, _ := newTestEVM(t, Config{})
		out = execute(t, cancun, common.FromHex(code), nil, 1000, false)
		assert.NoError(t, out.Err, "code %s", code)
	}
}
