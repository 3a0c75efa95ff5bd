// Copyright 2023 The go-ethereum Authors
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

package pebble

import (
	"testing"

	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/ethdb/dbtest"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemDatabase(tb testing.TB) *Database {
	db, err := open("", &pebble.Options{FS: vfs.NewMem()})
	require.NoError(tb, err)
	return db
}

func TestWriteStallCounters(t *testing.T) {
	db := newMemDatabase(t)
	defer db.Close()

	db.onStallBegin(pebble.WriteStallBeginInfo{Reason: "memtable count limit reached"})
	assert.False(t, db.lastWarn.IsZero(), "first stall should warn")
	db.onStallEnd()
	assert.Equal(t, int64(1), db.stalls.Load())
	assert.Positive(t, db.stalledFor.Load())

	stat, err := db.Stat()
	require.NoError(t, err)
	assert.Contains(t, stat, "write stalls: count=1")
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, upperBound([]byte{0x01, 0x02}))
	assert.Equal(t, []byte{0x02}, upperBound([]byte{0x01, 0xff}))
	assert.Nil(t, upperBound([]byte{0xff, 0xff}))
	assert.Nil(t, upperBound([]byte{}))
}

func TestPebbleDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() ethdb.KeyValueStore {
			return newMemDatabase(t)
		})
	})
}

func TestClosedDatabase(t *testing.T) {
	db := newMemDatabase(t)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err := db.Get([]byte("k"))
	assert.ErrorIs(t, err, pebble.ErrClosed)
	assert.ErrorIs(t, db.NewBatch().Write(), pebble.ErrClosed)
}

func BenchmarkPebbleDB(b *testing.B) {
	dbtest.BenchDatabaseSuite(b, func() ethdb.KeyValueStore {
		return newMemDatabase(b)
	})
}
