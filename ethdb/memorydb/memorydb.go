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

// Package memorydb implements the key-value database layer on top of an
// ordered in-memory skiplist.
// 包 memorydb 基于有序的内存跳表实现键值数据库，用于测试与一次性运行。
package memorydb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	// errMemorydbClosed is returned if a memory database was already closed at the
	// invocation of a data access operation.
	errMemorydbClosed = errors.New("database closed")

	// errMemorydbNotFound is returned if a key is requested that is not found in
	// the provided memory database.
	errMemorydbNotFound = errors.New("not found")
)

// Database is an ephemeral key-value store. Keys are kept sorted in a skiplist
// so iteration never needs to sort.
// Database 是临时键值存储，键保存在有序跳表中，遍历无需排序。
type Database struct {
	db   *memdb.DB
	lock sync.RWMutex
}

// New returns an empty memory database.
func New() *Database {
	return NewWithCap(0)
}

// NewWithCap returns a memory database whose arena is pre-allocated to hold
// the given number of bytes.
func NewWithCap(size int) *Database {
	return &Database{db: memdb.New(comparer.DefaultComparer, size)}
}

// Close drops the content and makes every further data access fail.
func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	db.db = nil
	return nil
}

// view runs fn under the read lock on an open store.
func (db *Database) view(fn func(m *memdb.DB) error) error {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if db.db == nil {
		return errMemorydbClosed
	}
	return fn(db.db)
}

// update runs fn under the write lock on an open store.
func (db *Database) update(fn func(m *memdb.DB) error) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.db == nil {
		return errMemorydbClosed
	}
	return fn(db.db)
}

func (db *Database) Has(key []byte) (found bool, err error) {
	err = db.view(func(m *memdb.DB) error {
		found = m.Contains(key)
		return nil
	})
	return found, err
}

// Get returns a copy of the value stored under key.
// Get 返回值的副本，调用者可以随意修改。
func (db *Database) Get(key []byte) (value []byte, err error) {
	err = db.view(func(m *memdb.DB) error {
		v, err := m.Get(key)
		if err != nil {
			return errMemorydbNotFound
		}
		value = common.CopyBytes(v)
		return nil
	})
	return value, err
}

func (db *Database) Put(key []byte, value []byte) error {
	return db.update(func(m *memdb.DB) error { return m.Put(key, value) })
}

// Delete removes key. Missing keys are not an error.
func (db *Database) Delete(key []byte) error {
	return db.update(func(m *memdb.DB) error { return deleteKey(m, key) })
}

func deleteKey(m *memdb.DB, key []byte) error {
	if err := m.Delete(key); err != nil && !errors.Is(err, memdb.ErrNotFound) {
		return err
	}
	return nil
}

// NewBatch creates a write-only key-value store that buffers changes to its host
// database until a final write is called.
func (db *Database) NewBatch() ethdb.Batch {
	return &batch{db: db, b: new(leveldb.Batch)}
}

// NewIterator snapshots the entries under prefix from prefix+start onwards.
// Later writes do not show up in the iterator.
// 迭代器持有匹配键值的快照，之后的写入不会影响它。
func (db *Database) NewIterator(prefix []byte, start []byte) ethdb.Iterator {
	snap := &iterator{index: -1}
	db.view(func(m *memdb.DB) error {
		rng := util.BytesPrefix(prefix)
		rng.Start = append(common.CopyBytes(prefix), start...)

		it := m.NewIterator(rng)
		defer it.Release()
		for it.Next() {
			snap.keys = append(snap.keys, common.CopyBytes(it.Key()))
			snap.values = append(snap.values, common.CopyBytes(it.Value()))
		}
		return nil
	})
	return snap
}

// Stat returns the number of entries and the bytes they hold.
func (db *Database) Stat() (stat string, err error) {
	err = db.view(func(m *memdb.DB) error {
		stat = fmt.Sprintf("entries: %d, size: %d bytes", m.Len(), m.Size())
		return nil
	})
	return stat, err
}

// Len is the number of entries, zero once closed.
func (db *Database) Len() (n int) {
	db.view(func(m *memdb.DB) error {
		n = m.Len()
		return nil
	})
	return n
}

// batch is a write-only memory batch that commits changes to its host
// database when Write is called. A batch cannot be used concurrently.
type batch struct {
	db   *Database
	b    *leveldb.Batch
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int { return b.size }

// Write applies the queued operations in order.
func (b *batch) Write() error {
	return b.db.update(func(m *memdb.DB) error {
		return replay(b.b, &replayer{
			put:    m.Put,
			delete: func(key []byte) error { return deleteKey(m, key) },
		})
	})
}

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

// replayer adapts error returning writers to the leveldb replay callbacks,
// stopping at the first failure.
type replayer struct {
	put     func(key, value []byte) error
	delete  func(key []byte) error
	failure error
}

func replay(b *leveldb.Batch, r *replayer) error {
	if err := b.Replay(r); err != nil {
		return err
	}
	return r.failure
}

func (r *replayer) Put(key, value []byte) {
	if r.failure == nil {
		r.failure = r.put(key, value)
	}
}

func (r *replayer) Delete(key []byte) {
	if r.failure == nil {
		r.failure = r.delete(key)
	}
}

// iterator walks a snapshot of the matching entries, taken when it was
// created.
type iterator struct {
	index  int
	keys   [][]byte
	values [][]byte
}

func (it *iterator) Next() bool {
	if it.index < len(it.keys) {
		it.index++
	}
	return it.index < len(it.keys)
}

func (it *iterator) Error() error { return nil }

func (it *iterator) valid() bool { return it.index >= 0 && it.index < len(it.keys) }

// Key is nil before the first Next and after the last one.
func (it *iterator) Key() []byte {
	if !it.valid() {
		return nil
	}
	return it.keys[it.index]
}

func (it *iterator) Value() []byte {
	if !it.valid() {
		return nil
	}
	return it.values[it.index]
}

// Release drops the snapshot. It can be called multiple times.
func (it *iterator) Release() {
	it.index, it.keys, it.values = -1, nil, nil
}
