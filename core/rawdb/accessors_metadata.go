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

package rawdb

import (
	"errors"
	"time"

	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/log"
	"github.com/0xrusowsky/goevm/rlp"
)

// crashesToKeep is the number of unclean shutdown timestamps kept in the list.
const crashesToKeep = 10

// crashList is the decoded unclean shutdown marker list.
// crashList 记录被丢弃的标记数量与最近的启动时间戳。
type crashList struct {
	Discarded uint64   // how many ucs have we deleted
	Recent    []uint64 // unix timestamps of 10 latest unclean shutdowns
}

func (c *crashList) encode() []byte {
	var recent []byte
	for _, t := range c.Recent {
		recent = rlp.AppendUint64(recent, t)
	}
	var content []byte
	content = rlp.AppendUint64(content, c.Discarded)
	content = rlp.AppendList(content, recent)
	return rlp.AppendList(nil, content)
}

func decodeCrashList(enc []byte) (*crashList, error) {
	content, rest, err := rlp.SplitList(enc)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errors.New("trailing bytes after crash list")
	}
	c := new(crashList)
	if c.Discarded, content, err = rlp.SplitUint64(content); err != nil {
		return nil, err
	}
	recent, _, err := rlp.SplitList(content)
	if err != nil {
		return nil, err
	}
	n, err := rlp.CountValues(recent)
	if err != nil {
		return nil, err
	}
	c.Recent = make([]uint64, 0, n)
	for len(recent) > 0 {
		var t uint64
		if t, recent, err = rlp.SplitUint64(recent); err != nil {
			return nil, err
		}
		c.Recent = append(c.Recent, t)
	}
	return c, nil
}

func readCrashList(db ethdb.KeyValueReader) (*crashList, error) {
	enc, err := db.Get(uncleanShutdownKey)
	if err != nil || len(enc) == 0 {
		return new(crashList), nil
	}
	return decodeCrashList(enc)
}

// PushUncleanShutdownMarker appends a new unclean shutdown marker and returns
// the previous data
// - a list of timestamps
// - a count of how many old unclean-shutdowns have been discarded
// PushUncleanShutdownMarker 追加一个新的非正常关闭标记，并返回之前的时间戳列表与已丢弃的数量。
func PushUncleanShutdownMarker(db ethdb.KeyValueStore) ([]uint64, uint64, error) {
	uncleanShutdowns, err := readCrashList(db)
	if err != nil {
		log.Warn("Error reading unclean shutdown markers", "error", err)
		uncleanShutdowns = new(crashList)
	}
	var discarded = uncleanShutdowns.Discarded
	var previous = make([]uint64, len(uncleanShutdowns.Recent))
	copy(previous, uncleanShutdowns.Recent)
	// Add a new (but cap it)
	uncleanShutdowns.Recent = append(uncleanShutdowns.Recent, uint64(time.Now().Unix()))
	if count := len(uncleanShutdowns.Recent); count > crashesToKeep+1 {
		numDel := count - (crashesToKeep + 1)
		uncleanShutdowns.Recent = uncleanShutdowns.Recent[numDel:]
		uncleanShutdowns.Discarded += uint64(numDel)
	}
	// And save it again
	if err := db.Put(uncleanShutdownKey, uncleanShutdowns.encode()); err != nil {
		log.Warn("Failed to write unclean-shutdown marker", "err", err)
		return nil, 0, err
	}
	return previous, discarded, nil
}

// PopUncleanShutdownMarker removes the last unclean shutdown marker
// PopUncleanShutdownMarker 删除最近的一个非正常关闭标记。
func PopUncleanShutdownMarker(db ethdb.KeyValueStore) {
	uncleanShutdowns, err := readCrashList(db)
	if err != nil {
		log.Warn("Error reading unclean shutdown markers", "error", err)
		return
	}
	if l := len(uncleanShutdowns.Recent); l > 0 {
		uncleanShutdowns.Recent = uncleanShutdowns.Recent[:l-1]
	}
	if err := db.Put(uncleanShutdownKey, uncleanShutdowns.encode()); err != nil {
		log.Warn("Failed to clear unclean-shutdown marker", "err", err)
	}
}

// UpdateUncleanShutdownMarker updates the last marker's timestamp to now.
func UpdateUncleanShutdownMarker(db ethdb.KeyValueStore) {
	uncleanShutdowns, err := readCrashList(db)
	if err != nil {
		log.Warn("Error reading unclean shutdown markers", "error", err)
		return
	}
	// This shouldn't happen because we push a marker on startup
	if l := len(uncleanShutdowns.Recent); l == 0 {
		log.Warn("No unclean shutdown marker to update")
		return
	}
	uncleanShutdowns.Recent[len(uncleanShutdowns.Recent)-1] = uint64(time.Now().Unix())
	if err := db.Put(uncleanShutdownKey, uncleanShutdowns.encode()); err != nil {
		log.Warn("Failed to write unclean-shutdown marker", "err", err)
	}
}
