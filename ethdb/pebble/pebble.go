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

// Package pebble implements the key-value database layer based on pebble.
// 包 pebble 基于 Pebble 实现持久化键值存储，是 evm 工具默认的状态后端。
package pebble

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/log"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
)

const (
	minCache   = 16 // megabytes, split between the block cache and the memtables
	minHandles = 16

	// stallWarnInterval rate limits the warning about stalled writes.
	stallWarnInterval = time.Minute
)

// Database is a pebble backed ethdb.KeyValueStore. Writes skip the fsync, so
// a crash may lose the last writes but leaves the store consistent.
// Database 是基于 pebble 的键值存储；写入不做 fsync，崩溃可能丢失最后的写入但不会损坏数据。
type Database struct {
	path string
	db   *pebble.DB
	log  log.Logger

	closeMu sync.RWMutex // read held by every operation, write held by Close
	closed  bool

	compactions atomic.Int64
	stalls      atomic.Int64
	stalledFor  atomic.Int64 // nanoseconds
	stallStart  time.Time    // only touched by the stall callbacks
	lastWarn    time.Time
}

// New opens, or creates, the database at path. cacheMB and handles are
// raised to a sane minimum.
// New 打开（或创建）位于 path 的数据库，cacheMB 与 handles 会被提升到最小值。
func New(path string, cacheMB, handles int, readonly bool) (*Database, error) {
	cacheMB, handles = max(cacheMB, minCache), max(handles, minHandles)

	// Half of the cache goes to the memtables: the live one and the one
	// being flushed.
	const memTables = 2
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cacheMB) << 20),
		MaxOpenFiles:                handles,
		MemTableSize:                uint64(cacheMB) << 20 / 2 / memTables,
		MemTableStopWritesThreshold: memTables,
		MaxConcurrentCompactions:    runtime.NumCPU,
		ReadOnly:                    readonly,
	}
	for level := 0; level < 4; level++ {
		opts.Levels = append(opts.Levels, pebble.LevelOptions{
			TargetFileSize: 2 << 20 << level, // 2 MiB doubling per level
			FilterPolicy:   bloom.FilterPolicy(10),
		})
	}
	d, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	d.log.Info("Opened pebble database", "cache", cacheMB, "handles", handles, "readonly", readonly)
	return d, nil
}

func open(path string, opts *pebble.Options) (*Database, error) {
	d := &Database{path: path, log: log.New("database", path)}
	opts.Logger = pebbleLogger{d.log}
	opts.EventListener = &pebble.EventListener{
		CompactionEnd:   func(pebble.CompactionInfo) { d.compactions.Add(1) },
		WriteStallBegin: d.onStallBegin,
		WriteStallEnd:   d.onStallEnd,
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, err
	}
	d.db = db
	return d, nil
}

func (d *Database) onStallBegin(info pebble.WriteStallBeginInfo) {
	d.stallStart = time.Now()
	d.stalls.Add(1)
	if time.Since(d.lastWarn) > stallWarnInterval {
		d.log.Warn("Database compacting, degraded performance", "reason", info.Reason)
		d.lastWarn = time.Now()
	}
}

func (d *Database) onStallEnd() {
	d.stalledFor.Add(int64(time.Since(d.stallStart)))
}

// pebbleLogger routes the engine's own messages into the goevm log.
type pebbleLogger struct{ l log.Logger }

func (p pebbleLogger) Infof(format string, args ...interface{}) {
	p.l.Debug(fmt.Sprintf(format, args...))
}

func (p pebbleLogger) Errorf(format string, args ...interface{}) {
	p.l.Error(fmt.Sprintf(format, args...))
}

// Fatalf must not return.
func (p pebbleLogger) Fatalf(format string, args ...interface{}) {
	panic(fmt.Errorf("pebble: "+format, args...))
}

// live takes the close lock for reading. The caller runs release once its
// operation is done.
func (d *Database) live() (release func(), err error) {
	d.closeMu.RLock()
	if d.closed {
		d.closeMu.RUnlock()
		return nil, pebble.ErrClosed
	}
	return d.closeMu.RUnlock, nil
}

// Close flushes the memtables and closes the files. Closing twice is a
// no-op.
func (d *Database) Close() error {
	d.closeMu.Lock()
	defer d.closeMu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.log.Debug("Closing pebble database", "compactions", d.compactions.Load(), "stalls", d.stalls.Load())
	return d.db.Close()
}

func (d *Database) Has(key []byte) (bool, error) {
	release, err := d.live()
	if err != nil {
		return false, err
	}
	defer release()

	_, closer, err := d.db.Get(key)
	switch {
	case errors.Is(err, pebble.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, closer.Close()
}

// Get copies the value out, the engine's buffer is only valid until the
// closer runs.
// Get 会复制返回值，pebble 的缓冲区在 closer 关闭后即失效。
func (d *Database) Get(key []byte) ([]byte, error) {
	release, err := d.live()
	if err != nil {
		return nil, err
	}
	defer release()

	value, closer, err := d.db.Get(key)
	if err != nil {
		return nil, err
	}
	ret := append([]byte{}, value...)
	return ret, closer.Close()
}

func (d *Database) Put(key []byte, value []byte) error {
	release, err := d.live()
	if err != nil {
		return err
	}
	defer release()
	return d.db.Set(key, value, pebble.NoSync)
}

func (d *Database) Delete(key []byte) error {
	release, err := d.live()
	if err != nil {
		return err
	}
	defer release()
	return d.db.Delete(key, pebble.NoSync)
}

// Stat returns pebble's metrics report followed by the compaction and write
// stall counters of this process.
func (d *Database) Stat() (string, error) {
	release, err := d.live()
	if err != nil {
		return "", err
	}
	defer release()
	return fmt.Sprintf("%s\ncompactions: %d\nwrite stalls: count=%d time=%v\n",
		d.db.Metrics(), d.compactions.Load(), d.stalls.Load(), time.Duration(d.stalledFor.Load())), nil
}

func (d *Database) NewBatch() ethdb.Batch {
	return &batch{db: d, b: d.db.NewBatch()}
}

// batch commits its writes to the host database on Write.
type batch struct {
	db   *Database
	b    *pebble.Batch
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.size += len(key) + len(value)
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.size += len(key)
	return b.b.Delete(key, nil)
}

func (b *batch) ValueSize() int { return b.size }

func (b *batch) Write() error {
	release, err := b.db.live()
	if err != nil {
		return err
	}
	defer release()
	return b.b.Commit(pebble.NoSync)
}

func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}

// upperBound returns the smallest key above every key that carries prefix,
// or nil when no such key exists (an empty or all 0xff prefix).
func upperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

func (d *Database) NewIterator(prefix []byte, start []byte) ethdb.Iterator {
	it, err := d.db.NewIter(&pebble.IterOptions{
		LowerBound: append(bytes.Clone(prefix), start...),
		UpperBound: upperBound(prefix),
	})
	return &iterator{it: it, err: err}
}

// iterator positions itself on the first key lazily, so that Next reports
// every pair including the first.
type iterator struct {
	it      *pebble.Iterator // nil once released or if creation failed
	err     error
	started bool
}

func (i *iterator) Next() bool {
	switch {
	case i.it == nil:
		return false
	case !i.started:
		i.started = true
		return i.it.First()
	}
	return i.it.Next()
}

func (i *iterator) Error() error {
	if i.it == nil {
		return i.err
	}
	return i.it.Error()
}

func (i *iterator) Key() []byte   { return i.it.Key() }
func (i *iterator) Value() []byte { return i.it.Value() }

func (i *iterator) Release() {
	if i.it != nil {
		i.it.Close()
		i.it = nil
	}
}
