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

package runtime

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/state"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/0xrusowsky/goevm/core/vm/program"
	"github.com/0xrusowsky/goevm/eth/tracers/logger"
	"github.com/0xrusowsky/goevm/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(v uint64) []byte {
	return common.LeftPadBytes(new(big.Int).SetUint64(v).Bytes(), 32)
}

func TestDefaults(t *testing.T) {
	cfg := new(Config)
	setDefaults(cfg)

	assert.Equal(t, params.AllCancunChainConfig, cfg.ChainConfig)
	assert.NotNil(t, cfg.Difficulty)
	assert.NotZero(t, cfg.GasLimit)
	assert.NotNil(t, cfg.GasPrice)
	assert.NotNil(t, cfg.Value)
	assert.NotNil(t, cfg.GetHashFn)
	assert.NotNil(t, cfg.BlockNumber)
	assert.Equal(t, int64(params.InitialBaseFee), cfg.BaseFee.Int64())
	assert.Equal(t, int64(params.BlobTxMinBlobGasprice), cfg.BlobBaseFee.Int64())
	assert.NotNil(t, cfg.Random)
}

func TestExecute(t *testing.T) {
	code := program.New().
		Push(2).Push(3).Op(vm.ADD).
		Push(0).Op(vm.MSTORE).
		Return(0, 32).Bytes()

	ret, statedb, err := Execute(code, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, word(5), ret)
	assert.NotNil(t, statedb)
}

func TestExecuteBlockContext(t *testing.T) {
	code := program.New().
		Op(vm.NUMBER).Push(0).Op(vm.MSTORE).
		Op(vm.TIMESTAMP).Push(32).Op(vm.MSTORE).
		Op(vm.CALLER).Push(64).Op(vm.MSTORE).
		Return(0, 96).Bytes()
	origin := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	ret, _, err := Execute(code, nil, &Config{BlockNumber: big.NewInt(10), Time: 1234, Origin: origin})
	require.NoError(t, err)
	require.Len(t, ret, 96)
	assert.Equal(t, word(10), ret[:32])
	assert.Equal(t, word(1234), ret[32:64])
	assert.Equal(t, common.LeftPadBytes(origin.Bytes(), 32), ret[64:])
}

func TestCall(t *testing.T) {
	statedb, err := state.New(rawdb.NewMemoryDatabase())
	require.NoError(t, err)
	address := common.HexToAddress("0xaa")
	statedb.SetCode(address, program.New().ReturnData([]byte{0x2a}).Bytes())

	ret, _, err := Call(address, nil, &Config{State: statedb})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2a}, ret)
}

func TestCallPersistsStorage(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	statedb, err := state.New(db)
	require.NoError(t, err)
	address := common.HexToAddress("0xaa")
	statedb.SetCode(address, program.New().Sstore(0, 7).Bytes())

	_, _, err = Call(address, nil, &Config{State: statedb})
	require.NoError(t, err)
	require.NoError(t, statedb.Commit(db))

	reloaded, err := state.New(db)
	require.NoError(t, err)
	assert.Equal(t, common.BytesToHash([]byte{7}), reloaded.GetState(address, common.Hash{}))
}

func TestCreate(t *testing.T) {
	runtimeCode := program.New().ReturnData([]byte{0x2a}).Bytes()
	initCode := program.New().ReturnViaCodeCopy(runtimeCode).Bytes()

	cfg := new(Config)
	code, address, left, err := Create(initCode, cfg)
	require.NoError(t, err)
	assert.Equal(t, runtimeCode, code)
	assert.Equal(t, runtimeCode, cfg.State.GetCode(address))
	assert.Less(t, left, cfg.GasLimit)

	ret, _, err := Call(address, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2a}, ret)
}

func TestExecuteRevert(t *testing.T) {
	code := program.New().Mstore([]byte{0xbe, 0xef}, 0).Push(2).Push(0).Op(vm.REVERT).Bytes()
	ret, _, err := Execute(code, nil, nil)
	assert.ErrorIs(t, err, vm.ErrExecutionReverted)
	assert.Equal(t, []byte{0xbe, 0xef}, ret)
}

func TestStructLogger(t *testing.T) {
	tracer := logger.NewStructLogger(&logger.Config{EnableMemory: true})
	code := program.New().Sstore(0, 1).Push(0).Op(vm.SLOAD).Op(vm.POP).Bytes()

	_, _, err := Execute(code, nil, &Config{GasLimit: 100_000, EVMConfig: vm.Config{Tracer: tracer.Hooks()}})
	require.NoError(t, err)

	logs := tracer.StructLogs()
	// PUSH1 PUSH1 SSTORE PUSH1 SLOAD POP STOP
	require.Len(t, logs, 7)
	assert.Equal(t, vm.SSTORE, logs[2].Op)
	assert.Equal(t, common.BytesToHash([]byte{1}), logs[2].Storage[common.Hash{}])
	assert.Equal(t, vm.SLOAD, logs[4].Op)
	assert.Equal(t, common.BytesToHash([]byte{1}), logs[4].Storage[common.Hash{}])
	assert.Len(t, logs[2].Stack, 2)
	assert.Equal(t, 1, logs[0].Depth)

	res := tracer.Result()
	assert.False(t, res.Failed)
	assert.NotZero(t, res.Gas)

	var out bytes.Buffer
	logger.WriteTrace(&out, logs)
	assert.Contains(t, out.String(), "SSTORE")
}

func TestJSONLogger(t *testing.T) {
	var out bytes.Buffer
	code := program.New().Push(1).Push(2).Op(vm.ADD).Bytes()

	_, _, err := Execute(code, nil, &Config{EVMConfig: vm.Config{Tracer: logger.NewJSONLogger(nil, &out)}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// four steps and one frame summary
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"opName":"PUSH1"`)
	assert.Contains(t, lines[2], `"opName":"ADD"`)
	assert.Contains(t, lines[4], `"gasUsed":"0x9"`)
}

func TestStateHooks(t *testing.T) {
	var changes []common.Hash
	hooks := &tracing.Hooks{
		OnStorageChange: func(addr common.Address, slot common.Hash, prev, new common.Hash) {
			changes = append(changes, new)
		},
	}
	code := program.New().Sstore(0, 1).Sstore(0, 2).Bytes()

	_, _, err := Execute(code, nil, &Config{GasLimit: 100_000, EVMConfig: vm.Config{Tracer: hooks}})
	require.NoError(t, err)
	assert.Equal(t, []common.Hash{common.BytesToHash([]byte{1}), common.BytesToHash([]byte{2})}, changes)
}

func BenchmarkSimpleLoop(b *testing.B) {
	// JUMPDEST, counter+1, loop while counter < 1000
	p, loop := program.New().Push(0).Jumpdest()
	p.Push(1).Op(vm.ADD).Op(vm.DUP1).Push(1000).Op(vm.GT).Push(loop).Op(vm.JUMPI)
	code := p.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Execute(code, nil, &Config{GasLimit: 10_000_000})
	}
}
