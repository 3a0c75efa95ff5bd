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

package state

import (
	"encoding/json"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/common/hexutil"
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/log"
)

// DumpConfig is a set of options to control what portions of the state will be
// iterated and collected.
type DumpConfig struct {
	SkipCode    bool
	SkipStorage bool
	Max         uint64 // Maximum number of accounts to dump, zero means all
}

// DumpAccount represents an account in the state.
type DumpAccount struct {
	Balance  string                 `json:"balance"`
	Nonce    uint64                 `json:"nonce"`
	CodeHash hexutil.Bytes          `json:"codeHash"`
	Code     hexutil.Bytes          `json:"code,omitempty"`
	Storage  map[common.Hash]string `json:"storage,omitempty"`
}

// Dump represents the full dump in a collected format, as one large map.
type Dump struct {
	Accounts map[common.Address]DumpAccount `json:"accounts"`
}

// RawDump collects the committed accounts of the backing database. Changes
// that were not committed yet are not part of the dump.
// RawDump 收集底层数据库中已提交的账户，未提交的修改不包含在内。
func (s *StateDB) RawDump(opts *DumpConfig) Dump {
	if opts == nil {
		opts = new(DumpConfig)
	}
	dump := Dump{Accounts: make(map[common.Address]DumpAccount)}
	err := rawdb.IterateAccounts(s.db, func(addr common.Address, acct *types.StateAccount) bool {
		account := DumpAccount{
			Balance:  acct.Balance.Dec(),
			Nonce:    acct.Nonce,
			CodeHash: acct.CodeHash,
		}
		if !opts.SkipCode {
			account.Code = rawdb.ReadCode(s.db, common.BytesToHash(acct.CodeHash))
		}
		if !opts.SkipStorage {
			account.Storage = make(map[common.Hash]string)
			err := rawdb.IterateStorage(s.db, addr, func(slot, value common.Hash) bool {
				account.Storage[slot] = common.Bytes2Hex(common.TrimLeftZeroes(value[:]))
				return true
			})
			if err != nil {
				log.Error("Failed to iterate storage", "address", addr, "err", err)
			}
		}
		dump.Accounts[addr] = account
		return opts.Max == 0 || uint64(len(dump.Accounts)) < opts.Max
	})
	if err != nil {
		log.Error("Failed to iterate accounts", "err", err)
	}
	return dump
}

// Dump returns a JSON string representing the committed state.
func (s *StateDB) Dump(opts *DumpConfig) []byte {
	dump := s.RawDump(opts)
	json, err := json.MarshalIndent(dump, "", "    ")
	if err != nil {
		log.Error("Error dumping state", "err", err)
	}
	return json
}
