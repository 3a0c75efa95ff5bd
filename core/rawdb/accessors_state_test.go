// Copyright 2018 The go-ethereum Authors
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

package rawdb

import (
	"bytes"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountStorage(t *testing.T) {
	db := NewMemoryDatabase()
	addr := common.HexToAddress("0x0102")

	assert.Nil(t, ReadAccount(db, addr))

	acct := types.NewEmptyStateAccount()
	acct.Nonce = 7
	acct.Balance = uint256.NewInt(1000)
	WriteAccount(db, addr, acct)

	got := ReadAccount(db, addr)
	require.NotNil(t, got)
	assert.Equal(t, uint64(7), got.Nonce)
	assert.Equal(t, uint64(1000), got.Balance.Uint64())
	assert.Equal(t, types.EmptyCodeHash.Bytes(), got.CodeHash)
	assert.Equal(t, types.EmptyRootHash, got.Root)

	DeleteAccount(db, addr)
	assert.Nil(t, ReadAccount(db, addr))
}

func TestStorageSlots(t *testing.T) {
	db := NewMemoryDatabase()
	var (
		addr  = common.HexToAddress("0xaa")
		other = common.HexToAddress("0xab")
	)
	WriteStorage(db, addr, common.HexToHash("0x02"), common.HexToHash("0x2222"))
	WriteStorage(db, addr, common.HexToHash("0x01"), common.HexToHash("0x11"))
	WriteStorage(db, other, common.HexToHash("0x01"), common.HexToHash("0xff"))

	assert.Equal(t, common.HexToHash("0x11"), ReadStorage(db, addr, common.HexToHash("0x01")))
	assert.Equal(t, common.Hash{}, ReadStorage(db, addr, common.HexToHash("0x03")))

	var slots []common.Hash
	require.NoError(t, IterateStorage(db, addr, func(slot, value common.Hash) bool {
		slots = append(slots, slot)
		return true
	}))
	assert.Equal(t, []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")}, slots)

	// Writing zero clears the slot.
	WriteStorage(db, addr, common.HexToHash("0x01"), common.Hash{})
	has, err := db.Has(storageKey(addr, common.HexToHash("0x01")))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCodeAndPreimages(t *testing.T) {
	db := NewMemoryDatabase()
	code := []byte{0x60, 0x01, 0x00}
	hash := crypto.Keccak256Hash(code)

	assert.False(t, HasCode(db, hash))
	WriteCode(db, hash, code)
	assert.True(t, HasCode(db, hash))
	assert.Equal(t, code, ReadCode(db, hash))

	ok, raw := IsCodeKey(codeKey(hash))
	assert.True(t, ok)
	assert.Equal(t, hash.Bytes(), raw)

	DeleteCode(db, hash)
	assert.Nil(t, ReadCode(db, hash))

	WritePreimages(db, map[common.Hash][]byte{hash: code})
	assert.Equal(t, code, ReadPreimage(db, hash))
}

func TestInspectDatabase(t *testing.T) {
	db := NewMemoryDatabase()
	WriteDatabaseVersion(db, DatabaseVersion)
	WriteCode(db, common.HexToHash("0x01"), []byte{0x00})
	WriteStorage(db, common.HexToAddress("0x01"), common.HexToHash("0x01"), common.HexToHash("0x01"))

	var buf bytes.Buffer
	require.NoError(t, InspectDatabase(db, &buf))
	out := buf.String()
	assert.Contains(t, out, "Contract codes")
	assert.Contains(t, out, "Storage slots")
}

func TestOpenVersion(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(OpenOptions{Type: DBLeveldb, Directory: dir})
	require.NoError(t, err)
	version := ReadDatabaseVersion(db)
	require.NotNil(t, version)
	assert.Equal(t, uint64(DatabaseVersion), *version)
	WriteDatabaseVersion(db, DatabaseVersion+1)
	require.NoError(t, db.Close())

	assert.Equal(t, DBLeveldb, PreexistingDatabase(dir))
	_, err = Open(OpenOptions{Directory: dir})
	assert.ErrorIs(t, err, errVersionMismatch)

	_, err = Open(OpenOptions{Type: DBPebble, Directory: dir})
	assert.Error(t, err)
}
