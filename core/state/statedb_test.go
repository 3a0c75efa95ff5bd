// Copyright 2016 The go-ethereum Authors
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

package state

import (
	"math/big"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAddr  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	otherAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	slotA     = common.HexToHash("0x01")
	slotB     = common.HexToHash("0x02")
	testCode  = common.FromHex("0x6001600055")
)

func newTestState(t *testing.T, db ethdb.Database) *StateDB {
	t.Helper()
	if db == nil {
		db = rawdb.NewMemoryDatabase()
	}
	s, err := New(db)
	require.NoError(t, err)
	return s
}

func TestNewNilDatabase(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, errNilDatabase)
}

func TestSnapshotRevert(t *testing.T) {
	s := newTestState(t, nil)
	s.SetBalance(testAddr, uint256.NewInt(10), tracing.BalanceChangeUnspecified)

	snap := s.Snapshot()
	s.AddBalance(testAddr, uint256.NewInt(5), tracing.BalanceChangeTransfer)
	s.SetNonce(testAddr, 3)
	s.SetState(testAddr, slotA, common.HexToHash("0xff"))
	s.SetCode(testAddr, testCode)
	s.AddRefund(10)
	s.AddBalance(otherAddr, uint256.NewInt(1), tracing.BalanceChangeTransfer)

	assert.Equal(t, uint64(15), s.GetBalance(testAddr).Uint64())
	assert.True(t, s.Exist(otherAddr))

	s.RevertToSnapshot(snap)
	assert.Equal(t, uint64(10), s.GetBalance(testAddr).Uint64())
	assert.Equal(t, uint64(0), s.GetNonce(testAddr))
	assert.Equal(t, common.Hash{}, s.GetState(testAddr, slotA))
	assert.Nil(t, s.GetCode(testAddr))
	assert.Equal(t, types.EmptyCodeHash, s.GetCodeHash(testAddr))
	assert.Equal(t, uint64(0), s.GetRefund())
	assert.False(t, s.Exist(otherAddr))

	// The revision is consumed by the revert.
	assert.Panics(t, func() { s.RevertToSnapshot(snap) })
}

func TestNestedSnapshots(t *testing.T) {
	s := newTestState(t, nil)
	outer := s.Snapshot()
	s.SetState(testAddr, slotA, common.HexToHash("0x01"))
	inner := s.Snapshot()
	s.SetState(testAddr, slotA, common.HexToHash("0x02"))

	s.RevertToSnapshot(inner)
	assert.Equal(t, common.HexToHash("0x01"), s.GetState(testAddr, slotA))
	s.RevertToSnapshot(outer)
	assert.Equal(t, common.Hash{}, s.GetState(testAddr, slotA))
}

func TestCommittedState(t *testing.T) {
	s := newTestState(t, nil)
	s.SetState(testAddr, slotA, common.HexToHash("0x05"))
	assert.Equal(t, common.HexToHash("0x05"), s.GetState(testAddr, slotA))
	assert.Equal(t, common.Hash{}, s.GetCommittedState(testAddr, slotA))

	// Once the transaction is finalised the write counts as the original value
	// for the next one.
	s.Finalise(false)
	assert.Equal(t, common.HexToHash("0x05"), s.GetCommittedState(testAddr, slotA))
}

func TestSetStateReturnsPrevious(t *testing.T) {
	s := newTestState(t, nil)
	assert.Equal(t, common.Hash{}, s.SetState(testAddr, slotA, common.HexToHash("0x01")))
	assert.Equal(t, common.HexToHash("0x01"), s.SetState(testAddr, slotA, common.HexToHash("0x02")))
	assert.Equal(t, common.HexToHash("0x02"), s.SetState(testAddr, slotA, common.HexToHash("0x02")))
}

func TestCommitAndReload(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	s := newTestState(t, db)
	s.AddBalance(testAddr, uint256.NewInt(100), tracing.BalanceChangeTransfer)
	s.SetNonce(testAddr, 5)
	s.SetCode(testAddr, testCode)
	s.SetState(testAddr, slotA, common.HexToHash("0x01"))
	s.SetState(testAddr, slotB, common.HexToHash("0x02"))
	s.SetState(testAddr, slotB, common.Hash{})
	s.AddPreimage(crypto.Keccak256Hash([]byte("hello")), []byte("hello"))
	require.NoError(t, s.Commit(db))

	reloaded := newTestState(t, db)
	assert.True(t, reloaded.Exist(testAddr))
	assert.Equal(t, uint64(100), reloaded.GetBalance(testAddr).Uint64())
	assert.Equal(t, uint64(5), reloaded.GetNonce(testAddr))
	assert.Equal(t, testCode, reloaded.GetCode(testAddr))
	assert.Equal(t, crypto.Keccak256Hash(testCode), reloaded.GetCodeHash(testAddr))
	assert.Equal(t, common.HexToHash("0x01"), reloaded.GetState(testAddr, slotA))
	assert.Equal(t, common.HexToHash("0x01"), reloaded.GetCommittedState(testAddr, slotA))
	assert.Equal(t, common.Hash{}, reloaded.GetState(testAddr, slotB))

	var stored int
	require.NoError(t, rawdb.IterateStorage(db, testAddr, func(slot, value common.Hash) bool {
		stored++
		return true
	}))
	assert.Equal(t, 1, stored)
	assert.Equal(t, []byte("hello"), rawdb.ReadPreimage(db, crypto.Keccak256Hash([]byte("hello"))))
	assert.Equal(t, uint64(1), rawdb.ReadCommitCount(db))

	require.NoError(t, reloaded.Commit(db))
	assert.Equal(t, uint64(2), rawdb.ReadCommitCount(db))
}

func TestCommitThroughBatch(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	s := newTestState(t, db)
	s.AddBalance(testAddr, uint256.NewInt(1), tracing.BalanceChangeTransfer)

	batch := db.NewBatch()
	require.NoError(t, s.Commit(batch))
	assert.Nil(t, rawdb.ReadAccount(db, testAddr))

	require.NoError(t, batch.Write())
	acct := rawdb.ReadAccount(db, testAddr)
	require.NotNil(t, acct)
	assert.Equal(t, uint64(1), acct.Balance.Uint64())
}

func TestSelfDestructWipesStorage(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	s := newTestState(t, db)
	s.AddBalance(testAddr, uint256.NewInt(7), tracing.BalanceChangeTransfer)
	s.SetCode(testAddr, testCode)
	s.SetState(testAddr, slotA, common.HexToHash("0x01"))
	require.NoError(t, s.Commit(db))

	s = newTestState(t, db)
	prev := s.SelfDestruct(testAddr)
	assert.Equal(t, uint64(7), prev.Uint64())
	assert.True(t, s.HasSelfDestructed(testAddr))
	assert.True(t, s.Exist(testAddr), "destructed account stays visible until finalised")
	assert.True(t, s.GetBalance(testAddr).IsZero())
	require.NoError(t, s.Commit(db))

	s = newTestState(t, db)
	assert.False(t, s.Exist(testAddr))
	assert.Equal(t, common.Hash{}, s.GetState(testAddr, slotA))
	assert.Nil(t, rawdb.ReadAccount(db, testAddr))
	require.NoError(t, rawdb.IterateStorage(db, testAddr, func(slot, value common.Hash) bool {
		t.Errorf("slot %x survived the destruct", slot)
		return true
	}))
}

func TestRecreateAfterDestruct(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	s := newTestState(t, db)
	s.AddBalance(testAddr, uint256.NewInt(1), tracing.BalanceChangeTransfer)
	s.SetState(testAddr, slotA, common.HexToHash("0x01"))
	require.NoError(t, s.Commit(db))

	s = newTestState(t, db)
	s.SelfDestruct(testAddr)
	s.Finalise(true)
	assert.False(t, s.Exist(testAddr))

	// A fresh account at the same address does not see the old storage.
	s.CreateAccount(testAddr)
	s.AddBalance(testAddr, uint256.NewInt(3), tracing.BalanceChangeTransfer)
	assert.Equal(t, common.Hash{}, s.GetState(testAddr, slotA))
	s.SetState(testAddr, slotB, common.HexToHash("0x02"))
	require.NoError(t, s.Commit(db))

	s = newTestState(t, db)
	assert.Equal(t, uint64(3), s.GetBalance(testAddr).Uint64())
	assert.Equal(t, common.Hash{}, s.GetState(testAddr, slotA))
	assert.Equal(t, common.HexToHash("0x02"), s.GetState(testAddr, slotB))
}

func TestSelfDestruct6780(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	s := newTestState(t, db)
	s.AddBalance(testAddr, uint256.NewInt(5), tracing.BalanceChangeTransfer)
	require.NoError(t, s.Commit(db))

	s = newTestState(t, db)
	bal, destructed := s.SelfDestruct6780(testAddr)
	assert.False(t, destructed)
	assert.Equal(t, uint64(5), bal.Uint64())
	assert.False(t, s.HasSelfDestructed(testAddr))

	s.CreateAccount(otherAddr)
	s.CreateContract(otherAddr)
	s.AddBalance(otherAddr, uint256.NewInt(2), tracing.BalanceChangeTransfer)
	bal, destructed = s.SelfDestruct6780(otherAddr)
	assert.True(t, destructed)
	assert.Equal(t, uint64(2), bal.Uint64())
	assert.True(t, s.HasSelfDestructed(otherAddr))

	_, destructed = s.SelfDestruct6780(common.HexToAddress("0xdead"))
	assert.False(t, destructed)
}

func TestCreateContractRevert(t *testing.T) {
	s := newTestState(t, nil)
	s.CreateAccount(testAddr)
	snap := s.Snapshot()
	s.CreateContract(testAddr)
	s.RevertToSnapshot(snap)

	_, destructed := s.SelfDestruct6780(testAddr)
	assert.False(t, destructed)
}

func TestFinaliseDeletesTouchedEmpty(t *testing.T) {
	s := newTestState(t, nil)
	s.AddBalance(testAddr, new(uint256.Int), tracing.BalanceChangeTouchAccount)
	assert.True(t, s.Exist(testAddr))
	assert.True(t, s.Empty(testAddr))

	s.Finalise(true)
	assert.False(t, s.Exist(testAddr))
	assert.True(t, s.Empty(testAddr))
}

func TestFinaliseKeepsEmptyWithoutClearing(t *testing.T) {
	s := newTestState(t, nil)
	s.AddBalance(testAddr, new(uint256.Int), tracing.BalanceChangeTouchAccount)
	s.Finalise(false)
	assert.True(t, s.Exist(testAddr))
}

func TestRefund(t *testing.T) {
	s := newTestState(t, nil)
	s.AddRefund(100)
	s.SubRefund(40)
	assert.Equal(t, uint64(60), s.GetRefund())
	assert.Panics(t, func() { s.SubRefund(61) })

	s.Finalise(true)
	assert.Equal(t, uint64(0), s.GetRefund())
}

func TestLogs(t *testing.T) {
	s := newTestState(t, nil)
	tx := common.HexToHash("0x1234")
	s.SetTxContext(tx, 3)
	assert.Equal(t, 3, s.TxIndex())

	s.AddLog(&types.Log{Address: testAddr})
	snap := s.Snapshot()
	s.AddLog(&types.Log{Address: otherAddr})
	require.Len(t, s.Logs(), 2)

	s.RevertToSnapshot(snap)
	logs := s.GetLogs(tx, 9)
	require.Len(t, logs, 1)
	assert.Equal(t, testAddr, logs[0].Address)
	assert.Equal(t, tx, logs[0].TxHash)
	assert.Equal(t, uint64(9), logs[0].BlockNumber)
	assert.Equal(t, uint(0), logs[0].Index)

	s.AddLog(&types.Log{Address: otherAddr})
	assert.Equal(t, uint(1), s.Logs()[1].Index)
}

func TestTransientStorage(t *testing.T) {
	s := newTestState(t, nil)
	value := common.HexToHash("0x2a")
	s.SetTransientState(testAddr, slotA, value)
	assert.Equal(t, value, s.GetTransientState(testAddr, slotA))

	snap := s.Snapshot()
	s.SetTransientState(testAddr, slotA, common.HexToHash("0x2b"))
	s.RevertToSnapshot(snap)
	assert.Equal(t, value, s.GetTransientState(testAddr, slotA))

	// Transient storage never reaches persistent storage and is cleared
	// at the beginning of the next transaction.
	assert.Equal(t, common.Hash{}, s.GetState(testAddr, slotA))
	s.Prepare(params.Rules{}, otherAddr, common.Address{}, nil, nil, nil)
	assert.Equal(t, common.Hash{}, s.GetTransientState(testAddr, slotA))
}

func TestPrepareAccessList(t *testing.T) {
	s := newTestState(t, nil)
	coinbase := common.HexToAddress("0xc0")
	precompile := common.BytesToAddress([]byte{0x01})
	list := types.AccessList{{Address: otherAddr, StorageKeys: []common.Hash{slotA}}}

	s.Prepare(params.Rules{IsShanghai: true}, testAddr, coinbase, &otherAddr, []common.Address{precompile}, list)
	assert.True(t, s.AddressInAccessList(testAddr))
	assert.True(t, s.AddressInAccessList(otherAddr))
	assert.True(t, s.AddressInAccessList(precompile))
	assert.True(t, s.AddressInAccessList(coinbase))
	addrOk, slotOk := s.SlotInAccessList(otherAddr, slotA)
	assert.True(t, addrOk)
	assert.True(t, slotOk)

	s.Prepare(params.Rules{}, testAddr, coinbase, nil, nil, nil)
	assert.False(t, s.AddressInAccessList(coinbase))
	assert.False(t, s.AddressInAccessList(otherAddr))
}

func TestAccessListRevert(t *testing.T) {
	s := newTestState(t, nil)
	s.AddAddressToAccessList(testAddr)

	snap := s.Snapshot()
	s.AddSlotToAccessList(otherAddr, slotA)
	s.AddSlotToAccessList(testAddr, slotB)
	addrOk, slotOk := s.SlotInAccessList(otherAddr, slotA)
	assert.True(t, addrOk && slotOk)

	s.RevertToSnapshot(snap)
	assert.True(t, s.AddressInAccessList(testAddr))
	assert.False(t, s.AddressInAccessList(otherAddr))
	addrOk, slotOk = s.SlotInAccessList(testAddr, slotB)
	assert.True(t, addrOk)
	assert.False(t, slotOk)
}

func TestCopyIsIndependent(t *testing.T) {
	s := newTestState(t, nil)
	s.AddBalance(testAddr, uint256.NewInt(1), tracing.BalanceChangeTransfer)
	s.SetState(testAddr, slotA, common.HexToHash("0x01"))
	s.AddAddressToAccessList(testAddr)

	cpy := s.Copy()
	cpy.AddBalance(testAddr, uint256.NewInt(1), tracing.BalanceChangeTransfer)
	cpy.SetState(testAddr, slotA, common.HexToHash("0x02"))
	cpy.AddSlotToAccessList(testAddr, slotA)

	assert.Equal(t, uint64(1), s.GetBalance(testAddr).Uint64())
	assert.Equal(t, common.HexToHash("0x01"), s.GetState(testAddr, slotA))
	_, slotOk := s.SlotInAccessList(testAddr, slotA)
	assert.False(t, slotOk)
	assert.Equal(t, uint64(2), cpy.GetBalance(testAddr).Uint64())
}

func TestMissingCode(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	rawdb.WriteAccount(db, testAddr, &types.StateAccount{
		Balance:  new(uint256.Int),
		Root:     types.EmptyRootHash,
		CodeHash: crypto.Keccak256(testCode),
	})
	s := newTestState(t, db)
	assert.Empty(t, s.GetCode(testAddr))
	assert.Error(t, s.Error())
	assert.Error(t, s.Commit(db))
}

func TestDump(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	s := newTestState(t, db)
	s.AddBalance(testAddr, uint256.NewInt(100), tracing.BalanceChangeTransfer)
	s.SetCode(testAddr, testCode)
	s.SetState(testAddr, slotA, common.HexToHash("0x01"))
	s.AddBalance(otherAddr, uint256.NewInt(1), tracing.BalanceChangeTransfer)

	// Uncommitted changes are not part of the dump.
	assert.Empty(t, s.RawDump(nil).Accounts)
	require.NoError(t, s.Commit(db))

	dump := s.RawDump(nil)
	require.Len(t, dump.Accounts, 2)
	account := dump.Accounts[testAddr]
	assert.Equal(t, "100", account.Balance)
	assert.Equal(t, testCode, []byte(account.Code))
	assert.Equal(t, "01", account.Storage[slotA])

	limited := s.RawDump(&DumpConfig{SkipCode: true, SkipStorage: true, Max: 1})
	require.Len(t, limited.Accounts, 1)
	for _, acct := range limited.Accounts {
		assert.Empty(t, acct.Code)
		assert.Empty(t, acct.Storage)
	}
	assert.Contains(t, string(s.Dump(nil)), `"balance": "100"`)
}

func TestHookedState(t *testing.T) {
	type balanceEvent struct {
		prev, next *big.Int
		reason     tracing.BalanceChangeReason
	}
	var (
		balances []balanceEvent
		nonces   [][2]uint64
		slots    []common.Hash
		codes    int
		logs     int
	)
	hooks := &tracing.Hooks{
		OnBalanceChange: func(addr common.Address, prev, new *big.Int, reason tracing.BalanceChangeReason) {
			balances = append(balances, balanceEvent{prev, new, reason})
		},
		OnNonceChange: func(addr common.Address, prev, new uint64) {
			nonces = append(nonces, [2]uint64{prev, new})
		},
		OnStorageChange: func(addr common.Address, slot common.Hash, prev, new common.Hash) {
			slots = append(slots, new)
		},
		OnCodeChange: func(addr common.Address, prevCodeHash common.Hash, prevCode []byte, codeHash common.Hash, code []byte) {
			codes++
		},
		OnLog: func(*types.Log) { logs++ },
	}
	hs := NewHookedState(newTestState(t, nil), hooks)

	hs.AddBalance(testAddr, uint256.NewInt(7), tracing.BalanceChangeTransfer)
	hs.SubBalance(testAddr, uint256.NewInt(2), tracing.BalanceChangeTransfer)
	hs.AddBalance(testAddr, new(uint256.Int), tracing.BalanceChangeTouchAccount)
	hs.SetNonce(testAddr, 1)
	hs.SetState(testAddr, slotA, common.HexToHash("0x01"))
	hs.SetState(testAddr, slotA, common.HexToHash("0x01"))
	hs.SetCode(testAddr, testCode)
	hs.AddLog(&types.Log{Address: testAddr})
	hs.SelfDestruct(testAddr)

	require.Len(t, balances, 3)
	assert.Equal(t, int64(7), balances[0].next.Int64())
	assert.Equal(t, int64(5), balances[1].next.Int64())
	assert.Equal(t, tracing.BalanceDecreaseSelfdestruct, balances[2].reason)
	assert.Equal(t, [][2]uint64{{0, 1}}, nonces)
	assert.Equal(t, []common.Hash{common.HexToHash("0x01")}, slots)
	assert.Equal(t, 2, codes)
	assert.Equal(t, 1, logs)
	assert.True(t, hs.Inner().HasSelfDestructed(testAddr))
}

func TestCodeCache(t *testing.T) {
	db := rawdb.NewMemoryDatabase()
	hash := crypto.Keccak256Hash(testCode)
	rawdb.WriteCode(db, hash, testCode)

	s := newTestState(t, db)
	assert.Equal(t, testCode, s.readCode(hash))

	rawdb.DeleteCode(db, hash)
	assert.Equal(t, testCode, s.readCode(hash))
	assert.Equal(t, testCode, s.Copy().readCode(hash))
	assert.Empty(t, newTestState(t, db).readCode(hash))
}
