// Copyright 2017 The go-ethereum Authors
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
	"math"

	"github.com/holiman/uint256"
)

// memoryEnd returns offset+size, the first byte past a memory range taken
// from the stack, and whether it fits in a uint64. An empty range needs no
// memory wherever it starts.
// memoryEnd 返回内存区间的结束位置 offset+size 以及是否溢出 uint64；长度为 0 的区间不占用内存。
func memoryEnd(offset, size *uint256.Int) (uint64, bool) {
	if !size.IsUint64() {
		return 0, true
	}
	return memoryEndN(offset, size.Uint64())
}

// memoryEndN is memoryEnd for a size fixed by the instruction.
func memoryEndN(offset *uint256.Int, size uint64) (uint64, bool) {
	if size == 0 {
		return 0, false
	}
	if !offset.IsUint64() {
		return 0, true
	}
	end := offset.Uint64() + size
	return end, end < size
}

// paddedSlice returns size bytes of data starting at start. The part of the
// window past the end of data reads as zero, and so does the whole window
// when start is beyond the data.
// paddedSlice 返回 data 从 start 起的 size 个字节，超出 data 的部分补零。
func paddedSlice(data []byte, start, size uint64) []byte {
	out := make([]byte, size)
	if start < uint64(len(data)) {
		copy(out, data[start:])
	}
	return out
}

// clampedOffset turns an offset that does not fit a uint64 into one that is
// past the end of any real buffer.
func clampedOffset(v *uint256.Int) uint64 {
	if off, overflow := v.Uint64WithOverflow(); !overflow {
		return off
	}
	return math.MaxUint64
}

// toWordSize returns the number of 32 byte words needed to hold size bytes.
func toWordSize(size uint64) uint64 {
	words := size / 32
	if size%32 != 0 {
		words++
	}
	return words
}

func isZeroed(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
