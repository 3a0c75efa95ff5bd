// Copyright 2014 The go-ethereum Authors
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

package ethdb

// Batch queues writes and applies them to its store in one go on Write.
// Nothing is visible to readers of the store before that. A batch is not
// safe for concurrent use.
// Batch 缓存写入，调用 Write 时一次性提交到所属存储，不能并发使用。
type Batch interface {
	KeyValueWriter

	// ValueSize is the number of key and value bytes queued so far.
	ValueSize() int

	Write() error

	// Reset drops the queued writes so the batch can be reused.
	Reset()
}

// Batcher creates batches bound to a store.
type Batcher interface {
	NewBatch() Batch
}
