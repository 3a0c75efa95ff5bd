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
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/stretchr/testify/assert"
)

func TestAccessListWarmth(t *testing.T) {
	al := newAccessList()

	addrAdded, slotAdded := al.AddSlot(testAddr, slotA)
	assert.True(t, addrAdded)
	assert.True(t, slotAdded)
	addrAdded, slotAdded = al.AddSlot(testAddr, slotA)
	assert.False(t, addrAdded)
	assert.False(t, slotAdded)
	assert.False(t, al.AddAddress(testAddr))

	addrWarm, slotWarm := al.Contains(testAddr, slotB)
	assert.True(t, addrWarm)
	assert.False(t, slotWarm)

	cpy := al.Copy()
	cpy.AddSlot(testAddr, slotB)
	_, slotWarm = al.Contains(testAddr, slotB)
	assert.False(t, slotWarm, "copy must not share slot sets")

	al.DeleteSlot(testAddr, slotA)
	al.DeleteAddress(testAddr)
	assert.False(t, al.ContainsAddress(testAddr))
	assert.True(t, cpy.ContainsAddress(testAddr))
}

func TestAccessListRevertOrder(t *testing.T) {
	al := newAccessList()
	al.AddSlot(testAddr, slotA)

	assert.Panics(t, func() { al.DeleteAddress(testAddr) })
	assert.Panics(t, func() { al.DeleteSlot(common.Address{0xee}, slotA) })
	assert.NotPanics(t, func() { al.DeleteAddress(common.Address{0xee}) })
}
