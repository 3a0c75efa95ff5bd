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

package memorydb

import (
	"testing"

	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/ethdb/dbtest"
	"github.com/stretchr/testify/assert"
)

func TestMemoryDB(t *testing.T) {
	t.Run("DatabaseSuite", func(t *testing.T) {
		dbtest.TestDatabaseSuite(t, func() ethdb.KeyValueStore {
			return New()
		})
	})
}

func TestMemoryDBStat(t *testing.T) {
	db := NewWithCap(4)
	db.Put([]byte("ab"), []byte("cd"))
	stat, err := db.Stat()
	assert.NoError(t, err)
	assert.Equal(t, "entries: 1, size: 4 bytes", stat)
	assert.Equal(t, 1, db.Len())
}

func TestBatchDeletesMissingKey(t *testing.T) {
	db := New()
	b := db.NewBatch()
	b.Put([]byte("a"), []byte("1"))
	b.Delete([]byte("a"))
	b.Delete([]byte("never written"))
	assert.NoError(t, b.Write())
	assert.Zero(t, db.Len())
}

func BenchmarkMemoryDB(b *testing.B) {
	dbtest.BenchDatabaseSuite(b, func() ethdb.KeyValueStore {
		return New()
	})
}
