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

// Package leveldb implements the key-value database layer based on LevelDB.
// 包 leveldb 基于 goleveldb 实现持久化键值存储，可通过 --db.engine=leveldb 选用。
package leveldb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/log"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	minCache   = 16 // megabytes
	minHandles = 16
)

// Database wraps a goleveldb handle as an ethdb.KeyValueStore.
type Database struct {
	db  *leveldb.DB
	log log.Logger
}

// New opens, or creates, the database in dir. Half of cacheMB goes to the
// block cache and the rest to the two write buffers leveldb keeps.
// New 打开（或创建）位于 dir 的 LevelDB 数据库，cacheMB 以 MB 为单位。
func New(dir string, cacheMB, handles int, readonly bool) (*Database, error) {
	cacheMB, handles = max(cacheMB, minCache), max(handles, minHandles)
	options := &opt.Options{
		Filter:                 filter.NewBloomFilter(10),
		DisableSeeksCompaction: true,
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cacheMB / 2 * opt.MiB,
		WriteBuffer:            cacheMB / 4 * opt.MiB,
		ReadOnly:               readonly,
	}
	logger := log.New("database", dir)

	db, err := leveldb.OpenFile(dir, options)
	var corrupted *lerrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		logger.Warn("Database corrupted, recovering", "err", err)
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Opened leveldb database", "cache", cacheMB, "handles", handles, "readonly", readonly)
	return &Database{db: db, log: logger}, nil
}

func (d *Database) Close() error { return d.db.Close() }

func (d *Database) Has(key []byte) (bool, error) { return d.db.Has(key, nil) }

func (d *Database) Get(key []byte) ([]byte, error) { return d.db.Get(key, nil) }

func (d *Database) Put(key []byte, value []byte) error { return d.db.Put(key, value, nil) }

func (d *Database) Delete(key []byte) error { return d.db.Delete(key, nil) }

func (d *Database) NewBatch() ethdb.Batch {
	return &batch{db: d.db, b: new(leveldb.Batch)}
}

// NewIterator walks the keys carrying prefix, from prefix+start onwards.
// goleveldb's own iterator already has the ethdb method set.
func (d *Database) NewIterator(prefix []byte, start []byte) ethdb.Iterator {
	r := util.BytesPrefix(prefix)
	r.Start = append(r.Start, start...)
	return d.db.NewIterator(r, nil)
}

// Stat prints one line per populated level, a total line and the io and
// write stall counters.
func (d *Database) Stat() (string, error) {
	var s leveldb.DBStats
	if err := d.db.Stats(&s); err != nil {
		return "", err
	}
	const mb = 1 << 20
	var (
		out    strings.Builder
		tables int
		size   int64
		spent  time.Duration
	)
	for level := range s.LevelSizes {
		n, took := s.LevelTablesCounts[level], s.LevelDurations[level]
		if n == 0 && took == 0 {
			continue
		}
		tables, size, spent = tables+n, size+s.LevelSizes[level], spent+took
		fmt.Fprintf(&out, "level %d: tables=%d size=%.5fMB time=%.5fs\n", level, n, float64(s.LevelSizes[level])/mb, took.Seconds())
	}
	fmt.Fprintf(&out, "total: tables=%d size=%.5fMB time=%.5fs\n", tables, float64(size)/mb, spent.Seconds())
	fmt.Fprintf(&out, "io: read=%.5fMB write=%.5fMB\n", float64(s.IORead)/mb, float64(s.IOWrite)/mb)
	fmt.Fprintf(&out, "write stalls: count=%d time=%v paused=%t\n", s.WriteDelayCount, s.WriteDelayDuration, s.WritePaused)
	return out.String(), nil
}

// batch buffers writes until Write. Not safe for concurrent use.
type batch struct {
	db   *leveldb.DB
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

func (b *batch) Write() error { return b.db.Write(b.b, nil) }

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}
