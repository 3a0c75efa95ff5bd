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

// Package crypto holds the hashing, address derivation and secp256k1
// signature helpers the interpreter and its precompiles need.
// 包 crypto 提供解释器及预编译合约所需的哈希、地址推导与 secp256k1 签名工具。
package crypto

import (
	"hash"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/rlp"
	"golang.org/x/crypto/sha3"
)

// Signature layout: r and s, 32 bytes each, then the recovery id.
const (
	RecoveryIDOffset = 64
	SignatureLength  = RecoveryIDOffset + 1
	DigestLength     = 32
)

// KeccakState is a keccak sponge that can be squeezed with Read, which
// skips the copy Sum makes but consumes the state.
// KeccakState 是可以通过 Read 挤出数据的 keccak 海绵，Read 不复制内部状态但会消耗它。
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState returns the pre-standard Keccak-256 used by Ethereum, which
// pads differently from NIST SHA3-256.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// HashData resets kh and hashes data with it, so a caller hashing many times
// keeps a single state.
// HashData 重置 kh 后对 data 求哈希，解释器的 KECCAK256 指令复用同一个状态。
func HashData(kh KeccakState, data []byte) (h common.Hash) {
	kh.Reset()
	kh.Write(data)
	kh.Read(h[:])
	return h
}

// Keccak256Hash hashes the concatenation of data.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	sponge := NewKeccakState()
	for _, chunk := range data {
		sponge.Write(chunk)
	}
	sponge.Read(h[:])
	return h
}

// Keccak256 is Keccak256Hash returning a byte slice.
func Keccak256(data ...[]byte) []byte {
	h := Keccak256Hash(data...)
	return h[:]
}

// CreateAddress is the CREATE address, keccak256(rlp([sender, nonce]))[12:].
// CreateAddress 返回 CREATE 的合约地址。
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	list := rlp.AppendList(nil, rlp.AppendBytes(nil, sender[:]), rlp.AppendUint64(nil, nonce))
	return common.BytesToAddress(Keccak256(list)[12:])
}

// CreateAddress2 is the CREATE2 address of EIP-1014,
// keccak256(0xff ++ sender ++ salt ++ keccak256(init code))[12:].
func CreateAddress2(sender common.Address, salt [32]byte, initHash []byte) common.Address {
	return common.BytesToAddress(Keccak256([]byte{0xff}, sender[:], salt[:], initHash)[12:])
}
