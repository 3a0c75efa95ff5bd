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

package leveldb

import (
	"testing"

	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/ethdb/dbtest"
	"github.com/0xrusowsky/goevm/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

func newMemDatabase(tb testing.TB) *Database {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	require.NoError(tb, err)
	return &Database{db: db, log: log.Root()}
}

func TestLevelDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() ethdb.KeyValueStore {
			return newMemDatabase(t)
		})
	})
}

func TestLevelDBOnDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := New(dir, 0, 0, false)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("key"), []byte("value")))
	require.NoError(t, db.Close())

	db, err = New(dir, 0, 0, true)
	require.NoError(t, err)
	defer db.Close()
	val, err := db.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	assert.Error(t, db.Put([]byte("key"), nil), "read only database accepted a write")
}

func TestLevelDBStat(t *testing.T) {
	db := newMemDatabase(t)
	defer db.Close()

	stat, err := db.Stat()
	require.NoError(t, err)
	assert.Contains(t, stat, "total: tables=")
	assert.Contains(t, stat, "write stalls: count=0")
}

func BenchmarkLevelDB(b *testing.B) {
	dbtest.BenchDatabaseSuite(b, func() ethdb.KeyValueStore {
		return newMemDatabase(b)
	})
}
