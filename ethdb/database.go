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

// Package ethdb defines the key-value store the state database is persisted
// in. Accounts, code and storage slots live under the key schema of
// core/rawdb; the backends only see opaque byte strings.
// 包 ethdb 定义持久化状态所用的键值存储接口，键的格式由 core/rawdb 决定。
package ethdb

import "io"

// KeyValueReader reads single entries.
type KeyValueReader interface {
	Has(key []byte) (bool, error)

	// Get returns a copy of the value. A missing key is reported through a
	// backend specific error, so callers check Has first when absence is
	// expected.
	// Get 返回值的副本；键不存在时返回后端特定的错误。
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter writes single entries. Stores and batches are both writers,
// so a state commit can target either.
type KeyValueWriter interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// KeyValueStater reports backend statistics as human readable text.
type KeyValueStater interface {
	Stat() (string, error)
}

// KeyValueStore is everything the state database and the inspection tools
// need from a backend.
// KeyValueStore 汇集了状态数据库与检查工具对后端的全部需求。
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	KeyValueStater
	Batcher
	Iteratee
	io.Closer
}

// Database is the store handed to the state database and the rawdb
// accessors. There is no ancient (freezer) part.
type Database interface {
	KeyValueStore
}
