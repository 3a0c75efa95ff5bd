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

package rawdb

import (
	"encoding/binary"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/log"
)

// ReadAccount retrieves the account stored under the address. A missing or
// undecodable entry yields nil.
// ReadAccount 读取地址对应的账户，不存在或无法解码时返回 nil。
func ReadAccount(db ethdb.KeyValueReader, addr common.Address) *types.StateAccount {
	data, _ := db.Get(accountKey(addr))
	if len(data) == 0 {
		return nil
	}
	account, err := types.FullAccount(data)
	if err != nil {
		log.Error("Invalid account entry", "address", addr, "err", err)
		return nil
	}
	return account
}

// WriteAccount stores the account in the slim format.
func WriteAccount(db ethdb.KeyValueWriter, addr common.Address, account *types.StateAccount) {
	if err := db.Put(accountKey(addr), types.SlimAccountRLP(*account)); err != nil {
		log.Crit("Failed to store account", "err", err)
	}
}

// DeleteAccount removes the account entry. Storage and code are left alone.
func DeleteAccount(db ethdb.KeyValueWriter, addr common.Address) {
	if err := db.Delete(accountKey(addr)); err != nil {
		log.Crit("Failed to delete account", "err", err)
	}
}

// ReadStorage retrieves a storage slot of the account, zero if it was never
// written.
func ReadStorage(db ethdb.KeyValueReader, addr common.Address, slot common.Hash) common.Hash {
	data, _ := db.Get(storageKey(addr, slot))
	return common.BytesToHash(data)
}

// WriteStorage stores a storage slot. Zero values delete the slot.
// WriteStorage 写入存储槽；写入零值等于删除该槽。
func WriteStorage(db ethdb.KeyValueWriter, addr common.Address, slot, value common.Hash) {
	if value == (common.Hash{}) {
		DeleteStorage(db, addr, slot)
		return
	}
	if err := db.Put(storageKey(addr, slot), common.TrimLeftZeroes(value[:])); err != nil {
		log.Crit("Failed to store storage slot", "err", err)
	}
}

// DeleteStorage removes a storage slot.
func DeleteStorage(db ethdb.KeyValueWriter, addr common.Address, slot common.Hash) {
	if err := db.Delete(storageKey(addr, slot)); err != nil {
		log.Crit("Failed to delete storage slot", "err", err)
	}
}

// IterateStorage calls fn for every stored slot of the account in key order
// until fn returns false.
// IterateStorage 按键序遍历账户的全部存储槽，fn 返回 false 时停止。
func IterateStorage(db ethdb.Iteratee, addr common.Address, fn func(slot, value common.Hash) bool) error {
	it := db.NewIterator(storagePrefix(addr), nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != storageKeyLength {
			continue
		}
		if !fn(common.BytesToHash(key[accountKeyLength:]), common.BytesToHash(it.Value())) {
			break
		}
	}
	return it.Error()
}

// IterateAccounts calls fn for every stored account in address order until
// fn returns false. Undecodable entries are skipped.
func IterateAccounts(db ethdb.Iteratee, fn func(addr common.Address, account *types.StateAccount) bool) error {
	it := db.NewIterator(AccountPrefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != accountKeyLength {
			continue
		}
		account, err := types.FullAccount(it.Value())
		if err != nil {
			log.Error("Invalid account entry", "key", key, "err", err)
			continue
		}
		if !fn(common.BytesToAddress(key[1:]), account) {
			break
		}
	}
	return it.Error()
}

// ReadCode retrieves the contract code of the provided code hash.
func ReadCode(db ethdb.KeyValueReader, hash common.Hash) []byte {
	data, _ := db.Get(codeKey(hash))
	return data
}

// HasCode checks if the contract code corresponding to the
// provided code hash is present in the db.
func HasCode(db ethdb.KeyValueReader, hash common.Hash) bool {
	ok, _ := db.Has(codeKey(hash))
	return ok
}

// WriteCode writes the provided contract code database.
func WriteCode(db ethdb.KeyValueWriter, hash common.Hash, code []byte) {
	if err := db.Put(codeKey(hash), code); err != nil {
		log.Crit("Failed to store contract code", "err", err)
	}
}

// DeleteCode deletes the specified contract code from the database.
func DeleteCode(db ethdb.KeyValueWriter, hash common.Hash) {
	if err := db.Delete(codeKey(hash)); err != nil {
		log.Crit("Failed to delete contract code", "err", err)
	}
}

// ReadPreimage retrieves a single preimage of the provided hash.
func ReadPreimage(db ethdb.KeyValueReader, hash common.Hash) []byte {
	data, _ := db.Get(preimageKey(hash))
	return data
}

// WritePreimages writes the provided set of preimages to the database.
func WritePreimages(db ethdb.KeyValueWriter, preimages map[common.Hash][]byte) {
	for hash, preimage := range preimages {
		if err := db.Put(preimageKey(hash), preimage); err != nil {
			log.Crit("Failed to store trie preimage", "err", err)
		}
	}
}

// ReadDatabaseVersion retrieves the version number of the database.
func ReadDatabaseVersion(db ethdb.KeyValueReader) *uint64 {
	enc, _ := db.Get(databaseVersionKey)
	if len(enc) != 8 {
		return nil
	}
	version := binary.BigEndian.Uint64(enc)
	return &version
}

// WriteDatabaseVersion stores the version number of the database
func WriteDatabaseVersion(db ethdb.KeyValueWriter, version uint64) {
	enc := binary.BigEndian.AppendUint64(nil, version)
	if err := db.Put(databaseVersionKey, enc); err != nil {
		log.Crit("Failed to store the database version", "err", err)
	}
}

// ReadCommitCount retrieves the number of state commits stored so far.
func ReadCommitCount(db ethdb.KeyValueReader) uint64 {
	enc, _ := db.Get(lastCommitKey)
	if len(enc) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(enc)
}

// WriteCommitCount stores the number of state commits.
func WriteCommitCount(db ethdb.KeyValueWriter, count uint64) {
	if err := db.Put(lastCommitKey, binary.BigEndian.AppendUint64(nil, count)); err != nil {
		log.Crit("Failed to store the commit count", "err", err)
	}
}
