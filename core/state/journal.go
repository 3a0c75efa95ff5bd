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
	"fmt"
	"maps"
	"slices"

	"github.com/0xrusowsky/goevm/common"
	"github.com/holiman/uint256"
)

// change is one reversible modification. undo puts the previous value back
// into the state it is handed, which lets a copied journal unwind the copied
// state.
// change 是一条可回滚的修改，undo 将旧值写回传入的状态。
type change struct {
	account *common.Address // nil when no account is dirtied
	undo    func(*StateDB)
}

// mark ties a snapshot id to the journal length when it was taken.
type mark struct {
	id, length int
}

// journal lists the modifications since the last commit, newest last, so a
// failed call frame can be unwound to its snapshot.
// journal 按顺序记录自上次提交以来的修改，失败的调用帧可以回滚到其快照。
type journal struct {
	changes []change
	dirties map[common.Address]int // changes recorded per account

	marks  []mark // ascending ids
	nextID int
}

func newJournal() *journal {
	return &journal{dirties: make(map[common.Address]int)}
}

// reset empties the journal for the next transaction, keeping the buffers.
func (j *journal) reset() {
	j.changes, j.marks, j.nextID = j.changes[:0], j.marks[:0], 0
	clear(j.dirties)
}

func (j *journal) snapshot() int {
	j.nextID++
	j.marks = append(j.marks, mark{id: j.nextID - 1, length: len(j.changes)})
	return j.nextID - 1
}

// revertToSnapshot undoes every change made after the snapshot and forgets
// the snapshots taken since. An unknown or already reverted id is a bug in
// the caller and panics.
// revertToSnapshot 撤销快照之后的全部修改，未知或已回滚的快照会 panic。
func (j *journal) revertToSnapshot(id int, s *StateDB) {
	idx, ok := slices.BinarySearchFunc(j.marks, id, func(m mark, id int) int { return m.id - id })
	if !ok {
		panic(fmt.Errorf("revision id %v cannot be reverted", id))
	}
	length := j.marks[idx].length
	j.marks = j.marks[:idx]

	for i := len(j.changes) - 1; i >= length; i-- {
		c := j.changes[i]
		c.undo(s)
		if c.account == nil {
			continue
		}
		if j.dirties[*c.account]--; j.dirties[*c.account] == 0 {
			delete(j.dirties, *c.account)
		}
	}
	j.changes = j.changes[:length]
}

func (j *journal) record(account *common.Address, undo func(*StateDB)) {
	j.changes = append(j.changes, change{account: account, undo: undo})
	if account != nil {
		j.dirties[*account]++
	}
}

// copy shares the recorded changes: they are never mutated once appended.
func (j *journal) copy() *journal {
	return &journal{
		changes: slices.Clone(j.changes),
		dirties: maps.Clone(j.dirties),
		marks:   slices.Clone(j.marks),
		nextID:  j.nextID,
	}
}

func (j *journal) createObject(addr common.Address) {
	j.record(&addr, func(s *StateDB) { delete(s.stateObjects, addr) })
}

// createContract is recorded before the init code runs.
func (j *journal) createContract(addr common.Address) {
	j.record(nil, func(s *StateDB) { s.getStateObject(addr).newContract = false })
}

func (j *journal) destruct(addr common.Address) {
	j.record(&addr, func(s *StateDB) {
		if obj := s.getStateObject(addr); obj != nil {
			obj.selfDestructed = false
		}
	})
}

// touchChange only dirties the account, there is nothing to restore.
func (j *journal) touchChange(addr common.Address) {
	j.record(&addr, func(*StateDB) {})
}

func (j *journal) balanceChange(addr common.Address, prev *uint256.Int) {
	old := *prev
	j.record(&addr, func(s *StateDB) { s.getStateObject(addr).setBalance(&old) })
}

func (j *journal) nonceChange(addr common.Address, prev uint64) {
	j.record(&addr, func(s *StateDB) { s.getStateObject(addr).setNonce(prev) })
}

func (j *journal) setCode(addr common.Address, prevHash common.Hash, prevCode []byte) {
	j.record(&addr, func(s *StateDB) { s.getStateObject(addr).setCode(prevHash, prevCode) })
}

func (j *journal) storageChange(addr common.Address, key, prev, origin common.Hash) {
	j.record(&addr, func(s *StateDB) { s.getStateObject(addr).setState(key, prev, origin) })
}

func (j *journal) transientStateChange(addr common.Address, key, prev common.Hash) {
	j.record(nil, func(s *StateDB) { s.setTransientState(addr, key, prev) })
}

func (j *journal) refundChange(prev uint64) {
	j.record(nil, func(s *StateDB) { s.refund = prev })
}

// logChange drops the newest log of the transaction.
func (j *journal) logChange(txHash common.Hash) {
	j.record(nil, func(s *StateDB) {
		if logs := s.logs[txHash]; len(logs) > 1 {
			s.logs[txHash] = logs[:len(logs)-1]
		} else {
			delete(s.logs, txHash)
		}
		s.logSize--
	})
}

// accessListAddAccount is always recorded before the slots of a fresh
// address, so by the time it is undone the slots are gone already.
func (j *journal) accessListAddAccount(addr common.Address) {
	j.record(nil, func(s *StateDB) { s.accessList.DeleteAddress(addr) })
}

func (j *journal) accessListAddSlot(addr common.Address, slot common.Hash) {
	j.record(nil, func(s *StateDB) { s.accessList.DeleteSlot(addr, slot) })
}
