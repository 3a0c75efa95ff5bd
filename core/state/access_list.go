// Copyright 2020 The go-ethereum Authors
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
	"github.com/0xrusowsky/goevm/common"
	mapset "github.com/deckarep/golang-set/v2"
)

// accessList is the EIP-2929 warm set of a transaction. Every warm address
// maps to its warm storage slots, possibly none.
// accessList 是交易的 EIP-2929 预热集合：每个地址映射到其已预热的存储槽集合。
type accessList map[common.Address]mapset.Set[common.Hash]

func newAccessList() accessList {
	return make(accessList)
}

func (al accessList) ContainsAddress(addr common.Address) bool {
	_, warm := al[addr]
	return warm
}

// Contains reports the warmth of the account and of one of its slots.
func (al accessList) Contains(addr common.Address, slot common.Hash) (addrWarm, slotWarm bool) {
	slots, ok := al[addr]
	if !ok {
		return false, false
	}
	return true, slots.Contains(slot)
}

// Copy returns a deep copy.
func (al accessList) Copy() accessList {
	cp := make(accessList, len(al))
	for addr, slots := range al {
		cp[addr] = slots.Clone()
	}
	return cp
}

// AddAddress warms addr and reports whether it was cold.
func (al accessList) AddAddress(addr common.Address) bool {
	if al.ContainsAddress(addr) {
		return false
	}
	al[addr] = mapset.NewThreadUnsafeSet[common.Hash]()
	return true
}

// AddSlot warms the slot and its account. Each true result needs its own
// journal entry, the account one first.
// AddSlot 预热存储槽及其账户，每个返回 true 的部分都需要一条日志记录。
func (al accessList) AddSlot(addr common.Address, slot common.Hash) (addrAdded, slotAdded bool) {
	addrAdded = al.AddAddress(addr)
	slotAdded = al[addr].Add(slot)
	return addrAdded, slotAdded
}

// DeleteSlot undoes AddSlot. The journal unwinds in reverse order, so the
// account is always still present.
func (al accessList) DeleteSlot(addr common.Address, slot common.Hash) {
	slots, ok := al[addr]
	if !ok {
		panic("access list: slot reverted after its account")
	}
	slots.Remove(slot)
}

// DeleteAddress undoes AddAddress once all of the account's slots are gone.
func (al accessList) DeleteAddress(addr common.Address) {
	slots, ok := al[addr]
	if !ok {
		return
	}
	if slots.Cardinality() != 0 {
		panic("access list: account reverted before its slots")
	}
	delete(al, addr)
}
