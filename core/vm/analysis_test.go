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
	"strings"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpDestAnalysis(t *testing.T) {
	tests := []struct {
		code  string
		dests []uint64
	}{
		{"0x5b", []uint64{0}},
		{"0x605b5b", []uint64{2}},                         // PUSH1 0x5b JUMPDEST
		{"0x7f" + strings.Repeat("5b", 33), []uint64{33}}, // PUSH32 of JUMPDEST bytes
		{"0x615b", nil},                                   // truncated PUSH2 operand
		{"0x5f5b", []uint64{1}},                           // PUSH0 has no operand
		{"0x6000565b00", []uint64{3}},
		{"0x60005b605b5b", []uint64{2, 5}},
		{"0x", nil},
	}
	for i, test := range tests {
		code := common.FromHex(test.code)
		b := NewBytecode(code).Analyze()
		var got []uint64
		for pc := uint64(0); pc < uint64(len(code)); pc++ {
			if b.IsJumpdest(pc) {
				got = append(got, pc)
			}
		}
		assert.Equal(t, test.dests, got, "test %d: %s", i, test.code)
		assert.Equal(t, len(test.dests), b.JumpTable().Count(), "test %d", i)
	}
}

func TestBytecodeStates(t *testing.T) {
	code := common.FromHex("0x6001600201")
	raw := NewBytecode(code)
	assert.Equal(t, BytecodeRaw, raw.State())
	assert.Nil(t, raw.Padded())
	assert.False(t, raw.IsJumpdest(0))

	padded := raw.Pad()
	assert.Equal(t, BytecodePadded, padded.State())
	assert.Equal(t, BytecodeRaw, raw.State(), "transitions leave the receiver untouched")
	assert.Len(t, padded.Padded(), len(code)+codePadding)
	assert.Same(t, padded, padded.Pad())

	analyzed := padded.Analyze()
	assert.Equal(t, BytecodeAnalyzed, analyzed.State())
	assert.Equal(t, crypto.Keccak256Hash(code), analyzed.Hash())
	assert.Equal(t, code, analyzed.Original())
	assert.Equal(t, len(code), analyzed.Len())
	assert.Equal(t, "analyzed", analyzed.State().String())
}

func TestAnalyzeIdempotent(t *testing.T) {
	code := common.FromHex("0x5b60015b56")
	first := NewBytecode(code).Analyze()
	assert.Same(t, first, first.Analyze())

	second := NewBytecode(code).Pad().Analyze()
	assert.Equal(t, first.JumpTable(), second.JumpTable())
	assert.Equal(t, first.Hash(), second.Hash())
}

func TestOpAtPastEnd(t *testing.T) {
	b := NewBytecode([]byte{byte(PUSH1)}).Analyze()
	assert.Equal(t, PUSH1, b.OpAt(0))
	assert.Equal(t, STOP, b.OpAt(1))
	assert.Equal(t, STOP, b.OpAt(1<<40))
	assert.False(t, b.IsJumpdest(1<<40))

	// A truncated operand reads as zero padding.
	require.Len(t, b.operand(0, 1), 1)
	assert.Equal(t, []byte{0}, b.operand(0, 1))
	assert.Equal(t, make([]byte, 32), b.operand(1<<40, 32))
}

func BenchmarkJumpdestAnalysis(b *testing.B) {
	code := make([]byte, 24576)
	for i := range code {
		code[i] = byte(JUMPDEST)
		if i%3 == 0 {
			code[i] = byte(PUSH2)
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		jumpdestBitmap(code)
	}
}
