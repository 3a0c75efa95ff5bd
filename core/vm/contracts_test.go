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
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/params"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// precompiledTest defines the input/output pairs for precompiled contract tests.
type precompiledTest struct {
	Name     string
	Input    string
	Expected string
	Gas      uint64
}

var precompiledTests = map[string][]precompiledTest{
	"02": {
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", 60},
		{"abc", "616263", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", 72},
	},
	"03": {
		{"empty", "", "0000000000000000000000009c1185a5c5e9fc54612808977ee8f548b2258d31", 600},
	},
	"04": {
		{"empty", "", "", 15},
		{"short", "0102030405", "0102030405", 18},
		{"two words", "00000000000000000000000000000000000000000000000000000000000000000001", "00000000000000000000000000000000000000000000000000000000000000000001", 21},
	},
	"05": {
		{
			"3^2 mod 5",
			"0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000001" +
				"030205",
			"04", 200,
		},
		{
			"zero lengths",
			"",
			"", 200,
		},
		{
			"zero modulus",
			"0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000001" +
				"0000000000000000000000000000000000000000000000000000000000000002" +
				"03020000",
			"0000", 200,
		},
	},
}

func precompile(addr string) PrecompiledContract {
	return PrecompiledContractsBerlin[common.HexToAddress(addr)]
}

func TestPrecompiledContracts(t *testing.T) {
	for addr, tests := range precompiledTests {
		p := precompile(addr)
		require.NotNil(t, p, "precompile %s", addr)
		for _, test := range tests {
			t.Run(p.Name()+"-"+test.Name, func(t *testing.T) {
				in := common.Hex2Bytes(test.Input)
				assert.Equal(t, test.Gas, p.RequiredGas(in))

				out, left, err := RunPrecompiledContract(p, in, test.Gas+100, nil)
				require.NoError(t, err)
				assert.Equal(t, test.Expected, common.Bytes2Hex(out))
				assert.Equal(t, uint64(100), left)
			})
		}
	}
}

func TestPrecompiledOutOfGas(t *testing.T) {
	for addr, tests := range precompiledTests {
		p := precompile(addr)
		test := tests[0]
		in := common.Hex2Bytes(test.Input)
		_, left, err := RunPrecompiledContract(p, in, test.Gas-1, nil)
		assert.ErrorIs(t, err, ErrOutOfGas, "precompile %s", addr)
		assert.Equal(t, uint64(0), left)
	}
}

func TestEcrecover(t *testing.T) {
	key := secp256k1.PrivKeyFromBytes(common.FromHex("0x289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"))
	hash := crypto.Keccak256([]byte("goevm"))
	sig, err := crypto.Sign(hash, key)
	require.NoError(t, err)

	input := make([]byte, 128)
	copy(input, hash)
	input[63] = sig[64] + 27
	copy(input[64:], sig[:64])

	p := precompile("01")
	assert.Equal(t, params.EcrecoverGas, p.RequiredGas(input))
	out, err := p.Run(input)
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PubKey())
	assert.Equal(t, common.LeftPadBytes(want.Bytes(), 32), out)

	// A bad recovery id yields empty output, not an error.
	input[63] = 29
	out, err = p.Run(input)
	require.NoError(t, err)
	assert.Empty(t, out)

	// So does garbage in the padding of v.
	input[63] = sig[64] + 27
	input[40] = 1
	out, err = p.Run(input)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPrecompileViaCall(t *testing.T) {
	evm, statedb := newTestEVM(t, Config{})
	identity := common.BytesToAddress([]byte{4})

	ret, left, err := evm.Call(testCaller, identity, []byte("hello"), 1000, new(uint256.Int))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), ret)
	assert.Equal(t, uint64(1000-18), left)
	assert.True(t, statedb.Exist(identity), "calls to precompiles create the account")

	_, left, err = evm.Call(testCaller, identity, []byte("hello"), 10, new(uint256.Int))
	assert.ErrorIs(t, err, ErrOutOfGas)
	assert.Equal(t, uint64(0), left)
}

func TestActivePrecompiles(t *testing.T) {
	addrs := ActivePrecompiles(params.AllCancunChainConfig.Rules(0))
	assert.Len(t, addrs, 5)
	active := ActivePrecompiledContracts(params.AllCancunChainConfig.Rules(0))
	delete(active, common.BytesToAddress([]byte{1}))
	assert.Len(t, PrecompiledContractsBerlin, 5, "active sets are copies")
}
