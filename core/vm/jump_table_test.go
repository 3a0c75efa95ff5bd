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
	"github.com/0xrusowsky/goevm/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupInstructionSet(t *testing.T) {
	merge := LookupInstructionSet(params.MergedChainConfig.Rules(0))
	shanghai := LookupInstructionSet(params.ShanghaiChainConfig.Rules(0))
	cancun := LookupInstructionSet(params.AllCancunChainConfig.Rules(0))

	assert.True(t, merge[PUSH0].Undefined())
	assert.False(t, shanghai[PUSH0].Undefined())
	assert.True(t, shanghai[PUSH0].IsPush())

	for _, op := range []OpCode{TLOAD, TSTORE, MCOPY, BLOBHASH, BLOBBASEFEE} {
		assert.True(t, shanghai[op].Undefined(), "%v before cancun", op)
		assert.False(t, cancun[op].Undefined(), "%v at cancun", op)
	}
}

func TestOperationFlags(t *testing.T) {
	jt := LookupInstructionSet(params.AllCancunChainConfig.Rules(0))
	for i, op := range jt {
		code := OpCode(i)
		assert.Equal(t, code.IsPush(), op.IsPush(), "%v", code)
		assert.Equal(t, code == JUMP || code == JUMPI, op.IsJump(), "%v", code)

		halts := op.Undefined()
		switch code {
		case STOP, RETURN, REVERT, SELFDESTRUCT:
			halts = true
		}
		assert.Equal(t, halts, op.Halts(), "%v", code)
	}
	assert.True(t, jt[INVALID].Undefined())
	assert.False(t, jt[JUMPDEST].Undefined())
}

func TestExtraEips(t *testing.T) {
	evm := NewEVM(BlockContext{}, nil, params.MergedChainConfig, Config{ExtraEips: []int{3855, 42}})

	// Unknown EIPs are dropped from the config.
	assert.Equal(t, []int{3855}, evm.Config.ExtraEips)
	assert.False(t, evm.Interpreter().table[PUSH0].Undefined())
	// The shared merge table is left alone.
	assert.True(t, mergeInstructionSet[PUSH0].Undefined())
}

func TestActivateableEips(t *testing.T) {
	list := ActivateableEips()
	require.Len(t, list, len(eips))
	assert.Equal(t, "1153: transient storage (TLOAD, TSTORE)", list[0])
	assert.True(t, ValidEip(5656))
	assert.False(t, ValidEip(1))
}

func TestPush0ViaExtraEip(t *testing.T) {
	_, statedb := newTestEVM(t, Config{})
	evm := NewEVM(BlockContext{GasLimit: 30_000_000}, statedb, params.MergedChainConfig, Config{ExtraEips: []int{3855}})

	out := execute(t, evm, common.FromHex("0x5f00"), nil, 100, false)
	require.NoError(t, out.Err)
	assert.Equal(t, uint64(2), out.GasUsed)
}
