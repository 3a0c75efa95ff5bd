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

// Iterator walks key/value pairs in ascending key order. Key and Value are
// only valid until the next call to Next and must not be modified.
//
// An iterator that hits an error stops, and Error reports it; running out
// of pairs is not an error. Release must be called once done, whether or
// not the iterator was exhausted.
// Iterator 按键升序遍历；出错后停止并由 Error 返回，用完必须调用 Release。
type Iterator interface {
	Next() bool
	Error() error
	Key() []byte
	Value() []byte
	Release()
}

// Iteratee creates iterators over the keys that carry prefix. start is
// relative to the prefix: the walk begins at prefix+start, or the first key
// after it.
type Iteratee interface {
	NewIterator(prefix []byte, start []byte) Iterator
}
