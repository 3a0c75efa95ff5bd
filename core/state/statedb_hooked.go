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

package state

import (
	"math/big"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

// hookedStateDB wraps a StateDB and reports every state mutation to the
// registered tracing hooks. Reads go straight to the inner state.
// hookedStateDB 包装 StateDB，将每次状态修改通知给跟踪钩子。
type hookedStateDB struct {
	inner *StateDB
	hooks *tracing.Hooks
}

// NewHookedState wraps the given stateDb with the given hooks
func NewHookedState(stateDb *StateDB, hooks *tracing.Hooks) *hookedStateDB {
	s := &hookedStateDB{stateDb, hooks}
	if s.hooks == nil {
		s.hooks = new(tracing.Hooks)
	}
	return s
}

// Inner returns the wrapped state.
func (s *hookedStateDB) Inner() *StateDB { return s.inner }

func (s *hookedStateDB) CreateAccount(addr common.Address)  { s.inner.CreateAccount(addr) }
func (s *hookedStateDB) CreateContract(addr common.Address) { s.inner.CreateContract(addr) }

func (s *hookedStateDB) GetBalance(addr common.Address) *uint256.Int { return s.inner.GetBalance(addr) }
func (s *hookedStateDB) GetNonce(addr common.Address) uint64         { return s.inner.GetNonce(addr) }
func (s *hookedStateDB) GetCodeHash(addr common.Address) common.Hash { return s.inner.GetCodeHash(addr) }
func (s *hookedStateDB) GetCode(addr common.Address) []byte          { return s.inner.GetCode(addr) }
func (s *hookedStateDB) GetCodeSize(addr common.Address) int         { return s.inner.GetCodeSize(addr) }

func (s *hookedStateDB) AddRefund(gas uint64) { s.inner.AddRefund(gas) }
func (s *hookedStateDB) SubRefund(gas uint64) { s.inner.SubRefund(gas) }
func (s *hookedStateDB) GetRefund() uint64    { return s.inner.GetRefund() }

func (s *hookedStateDB) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	return s.inner.GetCommittedState(addr, key)
}

func (s *hookedStateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	return s.inner.GetState(addr, key)
}

func (s *hookedStateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return s.inner.GetTransientState(addr, key)
}

func (s *hookedStateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	s.inner.SetTransientState(addr, key, value)
}

func (s *hookedStateDB) HasSelfDestructed(addr common.Address) bool { return s.inner.HasSelfDestructed(addr) }
func (s *hookedStateDB) Exist(addr common.Address) bool             { return s.inner.Exist(addr) }
func (s *hookedStateDB) Empty(addr common.Address) bool             { return s.inner.Empty(addr) }

func (s *hookedStateDB) AddressInAccessList(addr common.Address) bool {
	return s.inner.AddressInAccessList(addr)
}

func (s *hookedStateDB) SlotInAccessList(addr common.Address, slot common.Hash) (addressOk bool, slotOk bool) {
	return s.inner.SlotInAccessList(addr, slot)
}

func (s *hookedStateDB) AddAddressToAccessList(addr common.Address) {
	s.inner.AddAddressToAccessList(addr)
}

func (s *hookedStateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	s.inner.AddSlotToAccessList(addr, slot)
}

func (s *hookedStateDB) Prepare(rules params.Rules, sender, coinbase common.Address, dest *common.Address, precompiles []common.Address, txAccesses types.AccessList) {
	s.inner.Prepare(rules, sender, coinbase, dest, precompiles, txAccesses)
}

func (s *hookedStateDB) RevertToSnapshot(revid int) { s.inner.RevertToSnapshot(revid) }
func (s *hookedStateDB) Snapshot() int              { return s.inner.Snapshot() }

func (s *hookedStateDB) AddPreimage(hash common.Hash, preimage []byte) {
	s.inner.AddPreimage(hash, preimage)
}

func (s *hookedStateDB) SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int {
	prev := s.inner.SubBalance(addr, amount, reason)
	if s.hooks.OnBalanceChange != nil && !amount.IsZero() {
		newBalance := new(uint256.Int).Sub(&prev, amount)
		s.hooks.OnBalanceChange(addr, prev.ToBig(), newBalance.ToBig(), reason)
	}
	return prev
}

func (s *hookedStateDB) AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int {
	prev := s.inner.AddBalance(addr, amount, reason)
	if s.hooks.OnBalanceChange != nil && !amount.IsZero() {
		newBalance := new(uint256.Int).Add(&prev, amount)
		s.hooks.OnBalanceChange(addr, prev.ToBig(), newBalance.ToBig(), reason)
	}
	return prev
}

func (s *hookedStateDB) SetNonce(addr common.Address, nonce uint64) {
	prev := s.inner.GetNonce(addr)
	s.inner.SetNonce(addr, nonce)
	if s.hooks.OnNonceChange != nil {
		s.hooks.OnNonceChange(addr, prev, nonce)
	}
}

func (s *hookedStateDB) SetCode(addr common.Address, code []byte) []byte {
	prevHash := s.inner.GetCodeHash(addr)
	prev := s.inner.SetCode(addr, code)
	if s.hooks.OnCodeChange != nil {
		if prevHash == (common.Hash{}) {
			prevHash = types.EmptyCodeHash
		}
		s.hooks.OnCodeChange(addr, prevHash, prev, s.inner.GetCodeHash(addr), code)
	}
	return prev
}

func (s *hookedStateDB) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := s.inner.SetState(addr, key, value)
	if s.hooks.OnStorageChange != nil && prev != value {
		s.hooks.OnStorageChange(addr, key, prev, value)
	}
	return prev
}

func (s *hookedStateDB) SelfDestruct(addr common.Address) uint256.Int {
	prevCode, prevCodeHash := s.codeBeforeDestruct(addr)
	prev := s.inner.SelfDestruct(addr)
	s.onDestructed(addr, &prev, prevCode, prevCodeHash)
	return prev
}

func (s *hookedStateDB) SelfDestruct6780(addr common.Address) (uint256.Int, bool) {
	prevCode, prevCodeHash := s.codeBeforeDestruct(addr)
	prev, changed := s.inner.SelfDestruct6780(addr)
	if changed {
		s.onDestructed(addr, &prev, prevCode, prevCodeHash)
	}
	return prev, changed
}

func (s *hookedStateDB) codeBeforeDestruct(addr common.Address) ([]byte, common.Hash) {
	if s.hooks.OnCodeChange == nil {
		return nil, common.Hash{}
	}
	return s.inner.GetCode(addr), s.inner.GetCodeHash(addr)
}

func (s *hookedStateDB) onDestructed(addr common.Address, prev *uint256.Int, prevCode []byte, prevCodeHash common.Hash) {
	if s.hooks.OnBalanceChange != nil && !prev.IsZero() {
		s.hooks.OnBalanceChange(addr, prev.ToBig(), new(big.Int), tracing.BalanceDecreaseSelfdestruct)
	}
	if s.hooks.OnCodeChange != nil && len(prevCode) > 0 {
		s.hooks.OnCodeChange(addr, prevCodeHash, prevCode, types.EmptyCodeHash, nil)
	}
}

func (s *hookedStateDB) AddLog(log *types.Log) {
	// The inner will modify the log (add fields), so invoke that first
	s.inner.AddLog(log)
	if s.hooks.OnLog != nil {
		s.hooks.OnLog(log)
	}
}

// Finalise reports the ether burnt by accounts that received funds after
// self-destructing, then finalises the inner state.
func (s *hookedStateDB) Finalise(deleteEmptyObjects bool) {
	defer s.inner.Finalise(deleteEmptyObjects)
	if s.hooks.OnBalanceChange == nil {
		return
	}
	for addr := range s.inner.journal.dirties {
		obj := s.inner.stateObjects[addr]
		if obj != nil && obj.selfDestructed {
			if bal := obj.Balance(); !bal.IsZero() {
				s.hooks.OnBalanceChange(addr, bal.ToBig(), new(big.Int), tracing.BalanceDecreaseSelfdestructBurn)
			}
		}
	}
}
