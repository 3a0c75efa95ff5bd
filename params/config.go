// Copyright 2016 The go-ethereum Authors
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

package params

import (
	"fmt"
	"math/big"
)

// ChainConfig is the core config which determines the blockchain settings.
//
// Every chain the interpreter runs is post-merge. The config only carries the
// values that opcodes expose to running code and the timestamps of the two
// forks that changed the instruction set after the merge.
// ChainConfig 决定链的设置。解释器运行的链均已完成合并，这里只保留代码可见的值以及合并后两次改变指令集的分叉时间。
type ChainConfig struct {
	ChainID *big.Int `json:"chainId"` // chainId identifies the current chain and is used for replay protection

	ShanghaiTime *uint64 `json:"shanghaiTime,omitempty"` // Shanghai switch time (nil = no fork, 0 = already on shanghai)
	CancunTime   *uint64 `json:"cancunTime,omitempty"`   // Cancun switch time (nil = no fork, 0 = already on cancun)
}

var (
	zeroTime uint64

	// AllCancunChainConfig is the chain config used when nothing else is
	// provided. Every fork is active from genesis.
	AllCancunChainConfig = &ChainConfig{
		ChainID:      big.NewInt(1),
		ShanghaiTime: &zeroTime,
		CancunTime:   &zeroTime,
	}

	// ShanghaiChainConfig activates Shanghai from genesis and never forks into
	// Cancun.
	ShanghaiChainConfig = &ChainConfig{
		ChainID:      big.NewInt(1),
		ShanghaiTime: &zeroTime,
	}

	// MergedChainConfig stops at the merge: neither Shanghai nor Cancun is
	// scheduled.
	MergedChainConfig = &ChainConfig{ChainID: big.NewInt(1)}
)

// String implements the fmt.Stringer interface.
func (c *ChainConfig) String() string {
	return fmt.Sprintf("{ChainID: %v Shanghai: %v Cancun: %v}", c.ChainID, timestampString(c.ShanghaiTime), timestampString(c.CancunTime))
}

func timestampString(t *uint64) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("@%d", *t)
}

// IsShanghai returns whether time is either equal to the Shanghai fork time or greater.
func (c *ChainConfig) IsShanghai(time uint64) bool {
	return isTimestampForked(c.ShanghaiTime, time)
}

// IsCancun returns whether time is either equal to the Cancun fork time or greater.
func (c *ChainConfig) IsCancun(time uint64) bool {
	return isTimestampForked(c.CancunTime, time)
}

// isTimestampForked returns whether a fork scheduled at timestamp s is active
// at the given head timestamp.
func isTimestampForked(s *uint64, head uint64) bool {
	if s == nil {
		return false
	}
	return *s <= head
}

// Rules wraps ChainConfig and is merely syntactic sugar or can be used for functions
// that do not have or require information about the block.
//
// Rules is a one time interface meaning that it shouldn't be used in between transition
// phases.
// Rules 是某一时刻生效的分叉集合，供不关心区块细节的代码使用。
type Rules struct {
	ChainID              *big.Int
	IsShanghai, IsCancun bool
}

// Rules ensures c's ChainID is not nil.
func (c *ChainConfig) Rules(timestamp uint64) Rules {
	chainID := c.ChainID
	if chainID == nil {
		chainID = new(big.Int)
	}
	// Cancun cannot activate before Shanghai.
	// Cancun 只能在 Shanghai 之后激活。
	isShanghai := c.IsShanghai(timestamp)
	return Rules{
		ChainID:    new(big.Int).Set(chainID),
		IsShanghai: isShanghai,
		IsCancun:   isShanghai && c.IsCancun(timestamp),
	}
}
