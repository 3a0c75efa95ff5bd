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
	"maps"

	"github.com/0xrusowsky/goevm/common"
)

// transientStorage holds the EIP-1153 slots of the running transaction. Zero
// values are never stored, so an account without live slots has no entry.
// transientStorage 保存当前交易的 EIP-1153 瞬态槽位，交易结束时整体丢弃。
type transientStorage map[common.Address]storage

func newTransientStorage() transientStorage {
	return make(transientStorage)
}

func (t transientStorage) Set(addr common.Address, key, value common.Hash) {
	slots := t[addr]
	if value != (common.Hash{}) {
		if slots == nil {
			slots = make(storage)
			t[addr] = slots
		}
		slots[key] = value
		return
	}
	delete(slots, key)
	if len(slots) == 0 {
		delete(t, addr)
	}
}

// Get reads a slot, a nil inner map reads as zero.
func (t transientStorage) Get(addr common.Address, key common.Hash) common.Hash {
	return t[addr][key]
}

func (t transientStorage) Copy() transientStorage {
	cpy := make(transientStorage, len(t))
	for addr, slots := range t {
		cpy[addr] = maps.Clone(slots)
	}
	return cpy
}
