// Copyright 2015 The go-ethereum Authors
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

package node

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/log"
	"github.com/gofrs/flock"
)

// Node owns a locked instance directory and the databases opened in it.
// Node 持有加锁的实例目录以及在其中打开的数据库。
type Node struct {
	config Config
	log    log.Logger
	flock  *flock.Flock // nil for an in-memory node

	mu     sync.Mutex
	closed bool
	open   map[*trackedDB]struct{}
}

// New validates conf and locks the instance directory. The config is copied,
// so later changes to conf or the working directory have no effect.
func New(conf *Config) (*Node, error) {
	cfg, err := conf.normalize()
	if err != nil {
		return nil, err
	}
	n := &Node{config: cfg, log: cfg.Logger, open: make(map[*trackedDB]struct{})}
	if dir := cfg.instanceDir(); dir != "" {
		if n.flock, err = lockDir(dir); err != nil {
			return nil, err
		}
		n.log.Debug("Locked instance directory", "dir", dir)
	}
	return n, nil
}

// lockDir creates dir and takes its LOCK file without blocking.
// 创建实例目录并以非阻塞方式获取 LOCK 文件。
func lockDir(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(dir, "LOCK"))
	ok, err := fl.TryLock()
	switch {
	case err != nil:
		return nil, convertFileLockError(err)
	case !ok:
		return nil, ErrDatadirUsed
	}
	return fl, nil
}

func (n *Node) Config() *Config             { return &n.config }
func (n *Node) Ephemeral() bool             { return n.config.DataDir == "" }
func (n *Node) InstanceDir() string         { return n.config.instanceDir() }
func (n *Node) ResolvePath(p string) string { return n.config.ResolvePath(p) }

// OpenDatabase opens, or creates, the named database in the instance
// directory. An in-memory node hands out a fresh memory database instead.
// The database is closed with the node unless the caller closes it first.
// OpenDatabase 打开或创建实例目录中的数据库；内存节点返回内存数据库。
func (n *Node) OpenDatabase(name string, readonly bool) (ethdb.Database, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrNodeStopped
	}
	if n.Ephemeral() {
		return n.track(rawdb.NewMemoryDatabase()), nil
	}
	db, err := rawdb.Open(rawdb.OpenOptions{
		Type:      n.config.DBEngine,
		Directory: n.ResolvePath(name),
		Cache:     n.config.DatabaseCache,
		Handles:   n.config.DatabaseHandles,
		ReadOnly:  readonly,
	})
	if err != nil {
		return nil, err
	}
	return n.track(db), nil
}

// Close closes the databases still open and unlocks the instance directory.
// A second Close returns ErrNodeStopped.
// Close 关闭仍打开的数据库并释放目录锁。
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrNodeStopped
	}
	n.closed = true

	var errs []error
	for db := range n.open {
		delete(n.open, db)
		errs = append(errs, db.Database.Close())
	}
	if n.flock != nil {
		if err := n.flock.Unlock(); err != nil {
			n.log.Error("Can't release datadir lock", "err", err)
			errs = append(errs, err)
		}
		n.flock = nil
	}
	return errors.Join(errs...)
}

// trackedDB forgets itself in the node when its user closes it, so the node
// does not close it a second time.
type trackedDB struct {
	ethdb.Database
	n *Node
}

func (db *trackedDB) Close() error {
	db.n.mu.Lock()
	delete(db.n.open, db)
	db.n.mu.Unlock()
	return db.Database.Close()
}

func (n *Node) track(db ethdb.Database) ethdb.Database {
	t := &trackedDB{db, n}
	n.open[t] = struct{}{}
	return t
}
