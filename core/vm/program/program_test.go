// Copyright 2024 The go-ethereum Authors
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

package program

import (
	"math/big"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestPush(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{0, "6000"},
		{nil, "6000"},
		{uint64(1), "6001"},
		{0xfff, "610fff"},
		{big.NewInt(0x10000), "62010000"},
		{uint256.NewInt(0xff), "60ff"},
		{[]byte{0, 0, 0xaa}, "60aa"},
		{common.HexToAddress("0xdeadbeef00000000000000000000000000000001"), "73deadbeef00000000000000000000000000000001"},
	}
	for i, test := range tests {
		assert.Equal(t, test.expected, New().Push(test.input).Hex(), "test %d", i)
	}
	assert.Equal(t, "5f", New().Push0().Hex())
	assert.Panics(t, func() { New().Push("nope") })
}

func TestJumps(t *testing.T) {
	p, dest := New().Jumpdest()
	p.Op(vm.POP).Jump(dest)
	assert.Equal(t, uint64(0), dest)
	assert.Equal(t, "5b50600056", p.Hex())

	p = New().JumpIf(uint64(7), 1)
	assert.Equal(t, "6001600757", p.Hex())
	assert.Equal(t, uint64(5), p.Label())
}

func TestMstore(t *testing.T) {
	data := make([]byte, 34)
	data[0], data[33] = 0x11, 0x22
	p := New().Mstore(data, 0)
	// one PUSH32/MSTORE for the full word, two MSTORE8 for the tail
	assert.Equal(t, 33+2+1+2+2+1+2+2+1, p.Size())
}

func TestReturnViaCodeCopy(t *testing.T) {
	data := []byte{0xde, 0xad}
	p := New().ReturnViaCodeCopy(data)
	// PUSH1 2, PUSH2 offset, PUSH1 0, CODECOPY, PUSH1 2, PUSH1 0, RETURN, data
	assert.Equal(t, "600261000d600039"+"60026000f3"+"dead", p.Hex())
}

func TestCall(t *testing.T) {
	p := New().Call(nil, 0xaa, 0, 0, 0, 0, 32)
	assert.Equal(t, "6020600060006000600060aa5af1", p.Hex())

	p = New().StaticCall(uint256.NewInt(100), 0xaa, 0, 0, 0, 0)
	assert.Equal(t, "600060006000600060aa6064fa", p.Hex())
}
