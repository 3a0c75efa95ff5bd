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

package state

import (
	"bytes"
	"fmt"
	"maps"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/holiman/uint256"
)

type storage map[common.Hash]common.Hash

// stateObject is the in-memory view of one account. Storage moves through
// three layers: dirty slots belong to the running transaction, pending
// slots to finished transactions not yet committed, and origin slots cache
// what the database holds.
// stateObject 是单个账户的内存视图；存储分为 dirty、pending、origin 三层。
type stateObject struct {
	db      *StateDB
	address common.Address
	origin  *types.StateAccount // as last committed, nil if the account did not exist
	data    types.StateAccount

	code      []byte // loaded lazily
	dirtyCode bool

	originStorage  storage
	pendingStorage storage
	dirtyStorage   storage

	// selfDestructed accounts stay readable until the transaction ends.
	selfDestructed bool
	// newContract is set for contracts deployed in this transaction, the
	// only ones SELFDESTRUCT may delete (EIP-6780).
	newContract bool
}

func newObject(db *StateDB, address common.Address, acct *types.StateAccount) *stateObject {
	obj := &stateObject{
		db:             db,
		address:        address,
		origin:         acct,
		originStorage:  make(storage),
		pendingStorage: make(storage),
		dirtyStorage:   make(storage),
	}
	if acct == nil {
		acct = types.NewEmptyStateAccount()
	}
	obj.data = *acct
	return obj
}

// empty reports whether the account has no nonce, balance or code (EIP-161).
// empty 判断账户是否为空（EIP-161）。
func (s *stateObject) empty() bool {
	return s.data.Nonce == 0 && s.data.Balance.IsZero() && !s.hasCode()
}

func (s *stateObject) hasCode() bool {
	return !bytes.Equal(s.data.CodeHash, types.EmptyCodeHash.Bytes())
}

func (s *stateObject) codeHash() common.Hash { return common.BytesToHash(s.data.CodeHash) }

func (s *stateObject) markSelfdestructed() { s.selfDestructed = true }

func (s *stateObject) GetState(key common.Hash) common.Hash {
	value, _ := s.getState(key)
	return value
}

// getState returns the current value of a slot and its value before the
// running transaction.
func (s *stateObject) getState(key common.Hash) (value, origin common.Hash) {
	origin = s.GetCommittedState(key)
	if value, dirty := s.dirtyStorage[key]; dirty {
		return value, origin
	}
	return origin, origin
}

// GetCommittedState returns a slot as it was before the running transaction,
// including writes of earlier transactions in the same block.
// GetCommittedState 返回当前交易开始前的存储值（包含本区块内已结算的修改）。
func (s *stateObject) GetCommittedState(key common.Hash) common.Hash {
	if value, ok := s.pendingStorage[key]; ok {
		return value
	}
	if value, ok := s.originStorage[key]; ok {
		return value
	}
	// A fresh account ignores rows left behind by a destroyed predecessor.
	if s.origin == nil {
		return common.Hash{}
	}
	value := rawdb.ReadStorage(s.db.db, s.address, key)
	s.originStorage[key] = value
	return value
}

// SetState journals and applies a slot write, returning the previous value.
// Writing the current value is a no-op.
func (s *stateObject) SetState(key, value common.Hash) common.Hash {
	prev, origin := s.getState(key)
	if prev != value {
		s.db.journal.storageChange(s.address, key, prev, origin)
		s.setState(key, value, origin)
	}
	return prev
}

// setState stores value as dirty, or drops the dirty entry when the slot is
// back at its origin.
func (s *stateObject) setState(key, value, origin common.Hash) {
	if value == origin {
		delete(s.dirtyStorage, key)
	} else {
		s.dirtyStorage[key] = value
	}
}

// finalise ends the transaction for this account, promoting dirty slots to
// pending.
// finalise 在每笔交易结束时把脏存储移入待提交区域。
func (s *stateObject) finalise() {
	if len(s.dirtyStorage) == 0 {
		return
	}
	maps.Copy(s.pendingStorage, s.dirtyStorage)
	s.dirtyStorage = make(storage)
}

// commit writes the account, changed code and pending slots to w and
// returns the number of slots written.
// commit 将账户、修改过的代码和待提交存储写入 w，返回写入的槽数量。
func (s *stateObject) commit(w ethdb.KeyValueWriter) int {
	slots := len(s.pendingStorage)
	for key, value := range s.pendingStorage {
		rawdb.WriteStorage(w, s.address, key, value)
	}
	maps.Copy(s.originStorage, s.pendingStorage)
	s.pendingStorage = make(storage)

	if s.dirtyCode && len(s.code) > 0 {
		rawdb.WriteCode(w, s.codeHash(), s.code)
		s.db.codeCache.Add(s.codeHash(), s.code)
	}
	s.dirtyCode = false

	rawdb.WriteAccount(w, s.address, &s.data)
	s.origin = s.data.Copy()
	return slots
}

// AddBalance credits amount and returns the previous balance. A zero credit
// still touches an empty account so EIP-161 can clear it.
func (s *stateObject) AddBalance(amount *uint256.Int) uint256.Int {
	if amount.IsZero() {
		if s.empty() {
			s.db.journal.touchChange(s.address)
		}
		return *s.data.Balance
	}
	return s.SetBalance(new(uint256.Int).Add(s.data.Balance, amount))
}

// SubBalance debits amount and returns the previous balance.
func (s *stateObject) SubBalance(amount *uint256.Int) uint256.Int {
	if amount.IsZero() {
		return *s.data.Balance
	}
	return s.SetBalance(new(uint256.Int).Sub(s.data.Balance, amount))
}

func (s *stateObject) SetBalance(amount *uint256.Int) uint256.Int {
	prev := *s.data.Balance
	s.db.journal.balanceChange(s.address, s.data.Balance)
	s.setBalance(amount)
	return prev
}

func (s *stateObject) setBalance(amount *uint256.Int) { s.data.Balance = amount }

func (s *stateObject) deepCopy(db *StateDB) *stateObject {
	cp := *s
	cp.db = db
	cp.data = *s.data.Copy()
	if s.origin != nil {
		cp.origin = s.origin.Copy()
	}
	cp.originStorage = maps.Clone(s.originStorage)
	cp.pendingStorage = maps.Clone(s.pendingStorage)
	cp.dirtyStorage = maps.Clone(s.dirtyStorage)
	return &cp
}

func (s *stateObject) Address() common.Address { return s.address }

// Code returns the account code, loading it through the code cache on first
// use. Missing code is recorded as a database error.
// Code 返回账户代码，首次访问时从数据库加载。
func (s *stateObject) Code() []byte {
	if len(s.code) != 0 {
		return s.code
	}
	if !s.hasCode() {
		return nil
	}
	code := s.db.readCode(s.codeHash())
	if len(code) == 0 {
		s.db.setError(fmt.Errorf("missing code: address %x, hash %x", s.address, s.data.CodeHash))
	}
	s.code = code
	return code
}

func (s *stateObject) CodeSize() int { return len(s.Code()) }

// SetCode journals and replaces the code, returning the previous code.
func (s *stateObject) SetCode(codeHash common.Hash, code []byte) (prev []byte) {
	prev = common.CopyBytes(s.Code())
	s.db.journal.setCode(s.address, s.codeHash(), prev)
	s.setCode(codeHash, code)
	return prev
}

func (s *stateObject) setCode(codeHash common.Hash, code []byte) {
	s.code = code
	s.data.CodeHash = codeHash.Bytes()
	s.dirtyCode = true
}

func (s *stateObject) SetNonce(nonce uint64) {
	s.db.journal.nonceChange(s.address, s.data.Nonce)
	s.setNonce(nonce)
}

func (s *stateObject) setNonce(nonce uint64) { s.data.Nonce = nonce }

func (s *stateObject) CodeHash() []byte      { return s.data.CodeHash }
func (s *stateObject) Balance() *uint256.Int { return s.data.Balance }
func (s *stateObject) Nonce() uint64         { return s.data.Nonce }
