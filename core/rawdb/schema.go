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

// Package rawdb contains a collection of low level database accessors.
// 包 rawdb 定义状态数据在键值存储中的布局以及读写访问器。
package rawdb

import (
	"bytes"

	"github.com/0xrusowsky/goevm/common"
)

// The fields below define the low level database schema prefixing.
// 状态以扁平方式存储：账户、存储槽、代码与原像各占一个前缀。
var (
	// databaseVersionKey tracks the current database version.
	databaseVersionKey = []byte("DatabaseVersion")

	// lastCommitKey tracks the number of state commits made to the database.
	lastCommitKey = []byte("LastCommit")

	// uncleanShutdownKey tracks the list of runs that did not close the database.
	uncleanShutdownKey = []byte("unclean-shutdown")

	AccountPrefix  = []byte("a")           // AccountPrefix + address -> slim account rlp
	StoragePrefix  = []byte("o")           // StoragePrefix + address + slot -> storage value (trimmed of leading zeroes)
	CodePrefix     = []byte("c")           // CodePrefix + code hash -> contract code
	PreimagePrefix = []byte("secure-key-") // PreimagePrefix + hash -> preimage
)

const (
	// accountKeyLength is the length of an account key.
	accountKeyLength = 1 + common.AddressLength

	// storageKeyLength is the length of a storage slot key.
	storageKeyLength = 1 + common.AddressLength + common.HashLength

	// codeKeyLength is the length of a code key.
	codeKeyLength = 1 + common.HashLength
)

// accountKey = AccountPrefix + address
func accountKey(addr common.Address) []byte {
	return append(common.CopyBytes(AccountPrefix), addr.Bytes()...)
}

// storageKey = StoragePrefix + address + slot
func storageKey(addr common.Address, slot common.Hash) []byte {
	buf := make([]byte, storageKeyLength)
	n := copy(buf, StoragePrefix)
	n += copy(buf[n:], addr.Bytes())
	copy(buf[n:], slot.Bytes())
	return buf
}

// storagePrefix = StoragePrefix + address
func storagePrefix(addr common.Address) []byte {
	return append(common.CopyBytes(StoragePrefix), addr.Bytes()...)
}

// codeKey = CodePrefix + hash
func codeKey(hash common.Hash) []byte {
	return append(common.CopyBytes(CodePrefix), hash.Bytes()...)
}

// IsCodeKey reports whether the given byte slice is the key of contract code,
// if so return the raw code hash as well.
func IsCodeKey(key []byte) (bool, []byte) {
	if bytes.HasPrefix(key, CodePrefix) && len(key) == codeKeyLength {
		return true, key[len(CodePrefix):]
	}
	return false, nil
}

// preimageKey = PreimagePrefix + hash
func preimageKey(hash common.Hash) []byte {
	return append(common.CopyBytes(PreimagePrefix), hash.Bytes()...)
}
