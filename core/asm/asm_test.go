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

package asm

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests disassembling instructions
func TestInstructionIterator(t *testing.T) {
	for i, tc := range []struct {
		code  string
		want  int
		error string
	}{
		{"", 0, ""},
		{"61000000", 2, ""},
		{"6100", 0, "incomplete push instruction at 0"},
		{"5f5f01", 3, ""},
		{"7f" + "00000000000000000000000000000000000000000000000000000000000000", 0, "incomplete push instruction at 0"},
		{"ef00", 2, ""},
	} {
		code, err := hex.DecodeString(tc.code)
		require.NoError(t, err, "test %d", i)
		var (
			have int
			it   = NewInstructionIterator(code)
		)
		for it.Next() {
			have++
		}
		if tc.error == "" {
			assert.NoError(t, it.Error(), "test %d", i)
		} else {
			assert.EqualError(t, it.Error(), tc.error, "test %d", i)
		}
		assert.Equal(t, tc.want, have, "test %d", i)
	}
}

func TestIteratorFields(t *testing.T) {
	it := NewInstructionIterator([]byte{byte(vm.PUSH2), 0xbe, 0xef, byte(vm.PUSH0), byte(vm.ADD)})

	require.True(t, it.Next())
	assert.Equal(t, uint64(0), it.PC())
	assert.Equal(t, vm.PUSH2, it.Op())
	assert.Equal(t, []byte{0xbe, 0xef}, it.Arg())

	require.True(t, it.Next())
	assert.Equal(t, uint64(3), it.PC())
	assert.Equal(t, vm.PUSH0, it.Op())
	assert.Empty(t, it.Arg())

	require.True(t, it.Next())
	assert.Equal(t, uint64(4), it.PC())
	assert.Equal(t, vm.ADD, it.Op())

	assert.False(t, it.Next())
	assert.False(t, it.Next())
	assert.NoError(t, it.Error())
}

func TestDisassemble(t *testing.T) {
	code, _ := hex.DecodeString("600160020100")
	instrs, err := Disassemble(code)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"00000: PUSH1 0x01\n",
		"00002: PUSH1 0x02\n",
		"00004: ADD\n",
		"00005: STOP\n",
	}, instrs)

	_, err = Disassemble([]byte{byte(vm.PUSH3), 0x01})
	assert.Error(t, err)
}

func TestWriteDisassembled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDisassembled(&buf, "5b600056"))
	assert.Equal(t, "00000: JUMPDEST\n00001: PUSH1 0x00\n00003: JUMP\n", buf.String())

	assert.Error(t, WriteDisassembled(&buf, "zz"))
}
