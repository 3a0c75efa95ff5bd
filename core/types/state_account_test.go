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

package types

import (
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlimAccountEmpty(t *testing.T) {
	data := SlimAccountRLP(*NewEmptyStateAccount())
	// [0x80, 0x80, 0x80, 0x80] wrapped in a four byte list
	assert.Equal(t, []byte{0xc4, 0x80, 0x80, 0x80, 0x80}, data)

	acct, err := FullAccount(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), acct.Nonce)
	assert.True(t, acct.Balance.IsZero())
	assert.Equal(t, EmptyRootHash, acct.Root)
	assert.Equal(t, EmptyCodeHash.Bytes(), acct.CodeHash)
}

func TestSlimAccountContract(t *testing.T) {
	orig := StateAccount{
		Nonce:    7,
		Balance:  uint256.NewInt(1_000_000_007),
		Root:     common.HexToHash("0x01"),
		CodeHash: crypto.Keccak256([]byte{0x60, 0x00}),
	}
	acct, err := FullAccount(SlimAccountRLP(orig))
	require.NoError(t, err)
	assert.Equal(t, orig.Nonce, acct.Nonce)
	assert.Equal(t, orig.Balance, acct.Balance)
	assert.Equal(t, orig.Root, acct.Root)
	assert.Equal(t, orig.CodeHash, acct.CodeHash)
}

func TestFullAccountRejectsMalformed(t *testing.T) {
	for name, data := range map[string][]byte{
		"not a list":     {0x80},
		"short root":     {0xc5, 0x80, 0x80, 0x81, 0x01, 0x80},
		"padded balance": {0xc6, 0x80, 0x82, 0x00, 0x01, 0x80, 0x80},
		"extra field":    {0xc5, 0x80, 0x80, 0x80, 0x80, 0x80},
		"trailing bytes": {0xc4, 0x80, 0x80, 0x80, 0x80, 0x00},
	} {
		_, err := FullAccount(data)
		assert.Error(t, err, name)
	}
}

func TestStateAccountCopy(t *testing.T) {
	orig := NewEmptyStateAccount()
	orig.Balance.SetUint64(5)
	cpy := orig.Copy()
	cpy.Balance.SetUint64(6)
	cpy.CodeHash[0] ^= 0xff
	assert.Equal(t, uint64(5), orig.Balance.Uint64())
	assert.Equal(t, EmptyCodeHash.Bytes(), orig.CodeHash)
}
