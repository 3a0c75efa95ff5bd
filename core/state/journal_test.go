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
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalDirtyCounts(t *testing.T) {
	s := newTestState(t, nil)
	s.SetBalance(testAddr, uint256.NewInt(1), tracing.BalanceChangeUnspecified)

	snap := s.Snapshot()
	s.SetNonce(testAddr, 1)
	s.SetNonce(testAddr, 2)
	s.AddRefund(3) // dirties nothing
	before := s.journal.dirties[testAddr]
	assert.GreaterOrEqual(t, before, 3)

	s.RevertToSnapshot(snap)
	assert.Equal(t, before-2, s.journal.dirties[testAddr])
	assert.Zero(t, s.GetRefund())
	assert.Zero(t, s.GetNonce(testAddr))
}

func TestJournalUnknownSnapshot(t *testing.T) {
	s := newTestState(t, nil)
	snap := s.Snapshot()
	s.RevertToSnapshot(snap)

	assert.Panics(t, func() { s.RevertToSnapshot(snap) }, "reverted twice")
	assert.Panics(t, func() { s.RevertToSnapshot(snap + 10) }, "never taken")
}

func TestJournalRevertsCopy(t *testing.T) {
	s := newTestState(t, nil)
	snap := s.Snapshot()
	s.SetState(testAddr, slotA, common.HexToHash("0x01"))
	s.SetTransientState(testAddr, slotB, common.HexToHash("0x02"))

	cpy := s.Copy()
	cpy.RevertToSnapshot(snap)
	assert.Equal(t, common.Hash{}, cpy.GetState(testAddr, slotA))
	assert.Equal(t, common.Hash{}, cpy.GetTransientState(testAddr, slotB))

	// the original keeps its changes
	require.Equal(t, common.HexToHash("0x01"), s.GetState(testAddr, slotA))
	assert.Equal(t, common.HexToHash("0x02"), s.GetTransientState(testAddr, slotB))
}

func TestTransientStorageDropsZero(t *testing.T) {
	ts := newTransientStorage()
	ts.Set(testAddr, slotA, common.HexToHash("0x01"))
	ts.Set(testAddr, slotA, common.Hash{})
	assert.Empty(t, ts)
	assert.Equal(t, common.Hash{}, ts.Get(otherAddr, slotA))
}
