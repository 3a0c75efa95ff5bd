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

package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/rlp"
	"github.com/holiman/uint256"
)

var errTrailingAccountData = errors.New("trailing data after account")

// StateAccount is the Ethereum consensus representation of accounts.
// These objects are stored in the state database.
// StateAccount 是账户的共识表示，存储在状态数据库中。
type StateAccount struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     common.Hash // storage root, EmptyRootHash when nothing was committed
	CodeHash []byte
}

// NewEmptyStateAccount constructs an empty state account.
func NewEmptyStateAccount() *StateAccount {
	return &StateAccount{
		Balance:  new(uint256.Int),
		Root:     EmptyRootHash,
		CodeHash: EmptyCodeHash.Bytes(),
	}
}

// Copy returns a deep-copied state account object.
func (acct *StateAccount) Copy() *StateAccount {
	var balance *uint256.Int
	if acct.Balance != nil {
		balance = new(uint256.Int).Set(acct.Balance)
	}
	return &StateAccount{
		Nonce:    acct.Nonce,
		Balance:  balance,
		Root:     acct.Root,
		CodeHash: common.CopyBytes(acct.CodeHash),
	}
}

// SlimAccountRLP encodes the account in the slim format: the list
// [nonce, balance, root, codehash] where the root and code hash are left
// empty if they equal the empty hashes.
// SlimAccountRLP 以精简格式编码账户：根与代码哈希等于空哈希时留空。
func SlimAccountRLP(account StateAccount) []byte {
	var root, codeHash []byte
	if account.Root != EmptyRootHash {
		root = account.Root[:]
	}
	if !bytes.Equal(account.CodeHash, EmptyCodeHash[:]) {
		codeHash = account.CodeHash
	}
	var balance []byte
	if account.Balance != nil {
		balance = account.Balance.Bytes()
	}
	return rlp.AppendList(nil,
		rlp.AppendUint64(nil, account.Nonce),
		rlp.AppendBytes(nil, balance),
		rlp.AppendBytes(nil, root),
		rlp.AppendBytes(nil, codeHash),
	)
}

// FullAccount decodes the data in the slim format and converts it into the
// consensus format.
// FullAccount 解码精简格式的数据并转换为共识格式。
func FullAccount(data []byte) (*StateAccount, error) {
	content, rest, err := rlp.SplitList(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errTrailingAccountData
	}
	var account StateAccount
	if account.Nonce, content, err = rlp.SplitUint64(content); err != nil {
		return nil, fmt.Errorf("account nonce: %w", err)
	}
	balance, content, err := rlp.SplitString(content)
	if err != nil {
		return nil, fmt.Errorf("account balance: %w", err)
	}
	if len(balance) > 32 || (len(balance) > 0 && balance[0] == 0) {
		return nil, fmt.Errorf("account balance: %w", rlp.ErrCanonInt)
	}
	account.Balance = new(uint256.Int).SetBytes(balance)

	root, content, err := rlp.SplitString(content)
	if err != nil {
		return nil, fmt.Errorf("account root: %w", err)
	}
	switch len(root) {
	case 0:
		account.Root = EmptyRootHash
	case common.HashLength:
		account.Root = common.BytesToHash(root)
	default:
		return nil, fmt.Errorf("account root: invalid length %d", len(root))
	}
	codeHash, content, err := rlp.SplitString(content)
	if err != nil {
		return nil, fmt.Errorf("account code hash: %w", err)
	}
	switch len(codeHash) {
	case 0:
		account.CodeHash = EmptyCodeHash.Bytes()
	case common.HashLength:
		account.CodeHash = common.CopyBytes(codeHash)
	default:
		return nil, fmt.Errorf("account code hash: invalid length %d", len(codeHash))
	}
	if len(content) != 0 {
		return nil, errTrailingAccountData
	}
	return &account, nil
}
