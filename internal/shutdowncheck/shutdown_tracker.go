// Copyright 2021 The go-ethereum Authors
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

// Package shutdowncheck reports runs that exited without closing their
// state database.
package shutdowncheck

import (
	"sync"
	"time"

	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/log"
)

// updateInterval is how often the current marker is refreshed while running.
const updateInterval = 5 * time.Minute

// ShutdownTracker is a service that reports previous unclean shutdowns
// upon start. It needs to be started after the state database is opened and
// stopped just before it is closed.
// ShutdownTracker 在启动时报告之前未正常关闭的运行，需在数据库打开后启动、关闭前停止。
type ShutdownTracker struct {
	db       ethdb.KeyValueStore
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewShutdownTracker creates a new ShutdownTracker instance and has
// no other side-effect.
func NewShutdownTracker(db ethdb.KeyValueStore) *ShutdownTracker {
	return &ShutdownTracker{
		db:     db,
		stopCh: make(chan struct{}),
	}
}

// MarkStartup pushes a new startup marker to the db and reports the markers
// left behind by previous unclean shutdowns. It returns the number of
// unclean shutdowns found.
// MarkStartup 写入新的启动标记，并报告此前遗留的非正常关闭记录。
func (t *ShutdownTracker) MarkStartup() int {
	uncleanShutdowns, discards, err := rawdb.PushUncleanShutdownMarker(t.db)
	if err != nil {
		log.Error("Could not update unclean-shutdown-marker list", "error", err)
		return 0
	}
	if discards > 0 {
		log.Warn("Old unclean shutdowns found", "count", discards)
	}
	for _, tstamp := range uncleanShutdowns {
		booted := time.Unix(int64(tstamp), 0)
		log.Warn("Unclean shutdown detected", "booted", booted, "age", time.Since(booted).Round(time.Second))
	}
	return len(uncleanShutdowns)
}

// Start runs an event loop that updates the current marker's timestamp.
func (t *ShutdownTracker) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ticker := time.NewTicker(updateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rawdb.UpdateUncleanShutdownMarker(t.db)
			case <-t.stopCh:
				return
			}
		}
	}()
}

// Stop will stop the update loop and clear the current marker. It is safe to
// call without Start and more than once.
// Stop 停止更新循环并清除当前标记。
func (t *ShutdownTracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		t.wg.Wait()
		rawdb.PopUncleanShutdownMarker(t.db)
	})
}
