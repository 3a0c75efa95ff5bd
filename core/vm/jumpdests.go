// Copyright 2025 The go-ethereum Authors
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

package vm

import (
	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/log"
	"github.com/VictoriaMetrics/fastcache"
)

// JumpDestCache represents the cache of jumpdest analysis results.
// JumpDestCache 以代码哈希为键缓存跳转目标分析结果。
type JumpDestCache interface {
	// Load retrieves the cached jumpdest analysis for the given code hash.
	// Returns the BitVec and true if found, or nil and false if not cached.
	Load(codeHash common.Hash) (BitVec, bool)

	// Store saves the jumpdest analysis for the given code hash.
	Store(codeHash common.Hash, vec BitVec)
}

// mapJumpDests is the default implementation of JumpDests using a map.
// This implementation is not thread-safe and is meant to be used per EVM instance.
type mapJumpDests map[common.Hash]BitVec

// newMapJumpDests creates a new map-based JumpDests implementation.
func newMapJumpDests() JumpDestCache {
	return make(mapJumpDests)
}

func (j mapJumpDests) Load(codeHash common.Hash) (BitVec, bool) {
	vec, ok := j[codeHash]
	return vec, ok
}

func (j mapJumpDests) Store(codeHash common.Hash, vec BitVec) {
	j[codeHash] = vec
}

// SharedJumpDests is a size bounded jumpdest cache backed by fastcache. It is
// safe for concurrent use and meant to outlive single executions, so that
// repeated runs over the same contracts skip the analysis.
// SharedJumpDests 是基于 fastcache 的有界缓存，可并发使用，跨多次执行复用分析结果。
type SharedJumpDests struct {
	cache *fastcache.Cache
}

// NewSharedJumpDests creates a cache holding at most maxBytes of bitmaps.
func NewSharedJumpDests(maxBytes int) *SharedJumpDests {
	log.Debug("Allocated jumpdest cache", "bytes", maxBytes)
	return &SharedJumpDests{cache: fastcache.New(maxBytes)}
}

func (j *SharedJumpDests) Load(codeHash common.Hash) (BitVec, bool) {
	vec, ok := j.cache.HasGet(nil, codeHash[:])
	if !ok {
		return nil, false
	}
	return BitVec(vec), true
}

func (j *SharedJumpDests) Store(codeHash common.Hash, vec BitVec) {
	j.cache.Set(codeHash[:], vec)
}

// Stats returns the number of entries, hits and misses recorded so far.
func (j *SharedJumpDests) Stats() (entries, hits, misses uint64) {
	var s fastcache.Stats
	j.cache.UpdateStats(&s)
	return s.EntriesCount, s.GetCalls - s.Misses, s.Misses
}

// Reset drops all cached analyses.
func (j *SharedJumpDests) Reset() {
	j.cache.Reset()
}
