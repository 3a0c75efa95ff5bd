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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/ethdb/leveldb"
	"github.com/0xrusowsky/goevm/ethdb/memorydb"
	"github.com/0xrusowsky/goevm/ethdb/pebble"
	"github.com/0xrusowsky/goevm/log"
	"github.com/olekukonko/tablewriter"
)

// DatabaseVersion is the version of the flat state layout written by this
// package.
const DatabaseVersion = 1

const (
	DBPebble  = "pebble"
	DBLeveldb = "leveldb"
)

// errVersionMismatch is returned when a database written by another layout
// version is opened.
var errVersionMismatch = errors.New("database version mismatch")

// NewMemoryDatabase creates an ephemeral in-memory key-value database.
func NewMemoryDatabase() ethdb.Database {
	return memorydb.New()
}

// OpenOptions contains the options to apply when opening a database.
// OpenOptions 描述打开数据库时使用的选项。
type OpenOptions struct {
	Type      string // "leveldb" | "pebble", empty selects the existing one or pebble
	Directory string // the datadir
	Cache     int    // the capacity(in megabytes) of the data caching
	Handles   int    // number of files to be open simultaneously
	ReadOnly  bool
}

// PreexistingDatabase reports the engine of the database already in path:
// pebble leaves OPTIONS files next to CURRENT, leveldb does not. An empty
// result means there is no database yet.
func PreexistingDatabase(path string) string {
	if _, err := os.Stat(filepath.Join(path, "CURRENT")); err != nil {
		return ""
	}
	if matches, _ := filepath.Glob(filepath.Join(path, "OPTIONS*")); len(matches) > 0 {
		return DBPebble
	}
	return DBLeveldb
}

// openKeyValueDatabase picks the engine. An explicit type must agree with
// the database on disk; without one the existing engine is reused and a new
// directory gets pebble.
// openKeyValueDatabase 选择存储引擎：显式类型须与已有数据库一致，否则沿用已有引擎，新目录默认 pebble。
func openKeyValueDatabase(o OpenOptions) (ethdb.Database, error) {
	engine := PreexistingDatabase(o.Directory)
	switch {
	case o.Type != "" && o.Type != DBLeveldb && o.Type != DBPebble:
		return nil, fmt.Errorf("unknown db.engine %v", o.Type)
	case o.Type != "" && engine != "" && o.Type != engine:
		return nil, fmt.Errorf("db.engine choice was %v but found pre-existing %v database in specified data directory", o.Type, engine)
	case o.Type != "":
		engine = o.Type
	case engine == "":
		engine = DBPebble
	}
	log.Info("Opening key-value store", "engine", engine, "dir", o.Directory)
	var (
		db  ethdb.Database
		err error
	)
	if engine == DBLeveldb {
		db, err = leveldb.New(o.Directory, o.Cache, o.Handles, o.ReadOnly)
	} else {
		db, err = pebble.New(o.Directory, o.Cache, o.Handles, o.ReadOnly)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Open opens a disk-based key-value database and checks its layout version.
// A fresh writable database gets the current version stamped.
// Open 打开磁盘数据库并检查布局版本，新建的可写数据库会写入当前版本号。
func Open(o OpenOptions) (ethdb.Database, error) {
	kvdb, err := openKeyValueDatabase(o)
	if err != nil {
		return nil, err
	}
	switch version := ReadDatabaseVersion(kvdb); {
	case version == nil && !o.ReadOnly:
		WriteDatabaseVersion(kvdb, DatabaseVersion)
	case version != nil && *version != DatabaseVersion:
		kvdb.Close()
		return nil, fmt.Errorf("%w: have %d, want %d", errVersionMismatch, *version, DatabaseVersion)
	}
	return kvdb, nil
}

type counter uint64

func (c counter) String() string {
	return fmt.Sprintf("%d", c)
}

// storageSize is a byte count printed with a binary unit.
type storageSize float64

func (s storageSize) String() string {
	switch {
	case s >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GiB", s/(1024*1024*1024))
	case s >= 1024*1024:
		return fmt.Sprintf("%.2f MiB", s/(1024*1024))
	case s >= 1024:
		return fmt.Sprintf("%.2f KiB", s/1024)
	}
	return fmt.Sprintf("%.2f B", s)
}

// stat stores sizes and count for a parameter
type stat struct {
	size  storageSize
	count counter
}

// Add size to the stat and increase the counter by 1
func (s *stat) Add(size storageSize) {
	s.size += size
	s.count++
}

func (s *stat) Size() string {
	return s.size.String()
}

func (s *stat) Count() string {
	return s.count.String()
}

// InspectDatabase traverses the entire database and writes a table with the
// size and number of entries of every category to w.
// InspectDatabase 遍历整个数据库，按类别统计条目数量与大小并以表格输出。
func InspectDatabase(db ethdb.Iteratee, w io.Writer) error {
	it := db.NewIterator(nil, nil)
	defer it.Release()

	var (
		count  int64
		start  = time.Now()
		logged = time.Now()

		accounts    stat
		storage     stat
		codes       stat
		preimages   stat
		metadata    stat
		unaccounted stat

		total storageSize
	)
	// Inspect key-value database first.
	for it.Next() {
		var (
			key  = it.Key()
			size = storageSize(len(key) + len(it.Value()))
		)
		total += size
		switch {
		case bytes.HasPrefix(key, AccountPrefix) && len(key) == accountKeyLength:
			accounts.Add(size)
		case bytes.HasPrefix(key, StoragePrefix) && len(key) == storageKeyLength:
			storage.Add(size)
		case bytes.HasPrefix(key, CodePrefix) && len(key) == codeKeyLength:
			codes.Add(size)
		case bytes.HasPrefix(key, PreimagePrefix) && len(key) == len(PreimagePrefix)+32:
			preimages.Add(size)
		case bytes.Equal(key, databaseVersionKey), bytes.Equal(key, lastCommitKey), bytes.Equal(key, uncleanShutdownKey):
			metadata.Add(size)
		default:
			unaccounted.Add(size)
		}
		count++
		if count%1000 == 0 && time.Since(logged) > 8*time.Second {
			log.Info("Inspecting database", "count", count, "elapsed", time.Since(start))
			logged = time.Now()
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	// Display the database statistic of key-value store.
	stats := [][]string{
		{"Key-Value store", "Accounts", accounts.Size(), accounts.Count()},
		{"Key-Value store", "Storage slots", storage.Size(), storage.Count()},
		{"Key-Value store", "Contract codes", codes.Size(), codes.Count()},
		{"Key-Value store", "Preimages", preimages.Size(), preimages.Count()},
		{"Key-Value store", "Metadata", metadata.Size(), metadata.Count()},
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Database", "Category", "Size", "Items"})
	table.SetFooter([]string{"", "Total", total.String(), " "})
	table.AppendBulk(stats)
	table.Render()

	if unaccounted.size > 0 {
		log.Error("Database contains unaccounted data", "size", unaccounted.size, "count", unaccounted.count)
	}
	return nil
}
