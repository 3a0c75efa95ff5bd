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

package crypto

import (
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccak256Hash(t *testing.T) {
	// keccak256("") is the empty code hash.
	assert.Equal(t,
		common.HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		Keccak256Hash(nil))

	h := HashData(NewKeccakState(), []byte("abc"))
	assert.Equal(t, common.HexToHash("4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"), h)
	assert.Equal(t, h.Bytes(), Keccak256([]byte("a"), []byte("bc")))
}

func TestCreateAddress(t *testing.T) {
	// Well known deployment addresses of 0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0.
	sender := common.HexToAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")
	assert.Equal(t, common.HexToAddress("0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d"), CreateAddress(sender, 0))
	assert.Equal(t, common.HexToAddress("0x343c43a37d37dff08ae8c4a11544c718abb4fcf8"), CreateAddress(sender, 1))
}

func TestCreateAddress2(t *testing.T) {
	// Example 0 from EIP-1014.
	var salt [32]byte
	addr := CreateAddress2(common.Address{}, salt, Keccak256([]byte{0x00}))
	assert.Equal(t, common.HexToAddress("0x4D1A2e2bB4F88F0250f26Ffff098B0b30B26BF38"), addr)
}

func TestSignAndRecover(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	msg := Keccak256([]byte("foo"))
	sig, err := Sign(msg, key)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)

	pub, err := Ecrecover(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, key.PubKey().SerializeUncompressed(), pub)
	assert.Equal(t, PubkeyToAddress(key.PubKey()), PubkeyBytesToAddress(pub))

	_, err = Ecrecover(msg, sig[:10])
	assert.Error(t, err)
}
