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

package vm

import (
	"errors"
	"testing"

	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, st.Push(uint256.NewInt(i)))
	}
	assert.Equal(t, 3, st.Len())

	top, err := st.Top()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), top.Uint64())

	second, err := st.Back(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Uint64())

	a, b, err := st.Pop2()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), a.Uint64())
	assert.Equal(t, uint64(2), b.Uint64())

	last, err := st.Pop()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), last.Uint64())
	assert.Equal(t, 0, st.Len())
}

func TestStackUnderflow(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)
	require.NoError(t, st.Push(uint256.NewInt(1)))

	_, _, err := st.Pop2()
	var underflow *ErrStackUnderflow
	require.ErrorAs(t, err, &underflow)
	assert.Equal(t, 1, underflow.stackLen)
	assert.Equal(t, 2, underflow.required)
	assert.Equal(t, 1, st.Len(), "failed pop leaves the stack untouched")

	_, err = st.Back(1)
	assert.True(t, errors.Is(err, errStackUnderflow))
	assert.Error(t, st.Swap(1))
	assert.Error(t, st.Dup(2))
	_, _, _, _, err = st.Pop4()
	assert.Error(t, err)
}

func TestStackOverflow(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)
	for i := 0; i < int(params.StackLimit); i++ {
		require.NoError(t, st.Push(uint256.NewInt(uint64(i))))
	}
	err := st.Push(uint256.NewInt(0))
	var overflow *ErrStackOverflow
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, int(params.StackLimit), st.Len())
	assert.ErrorAs(t, st.Dup(1), &overflow)
}

func TestStackDupSwap(t *testing.T) {
	st := NewStack()
	defer ReturnStack(st)
	for i := uint64(1); i <= 4; i++ {
		require.NoError(t, st.Push(uint256.NewInt(i)))
	}
	// [1 2 3 4] -> SWAP3 -> [4 2 3 1]
	require.NoError(t, st.Swap(3))
	data := st.Data()
	assert.Equal(t, uint64(4), data[0].Uint64())
	assert.Equal(t, uint64(1), data[3].Uint64())

	// DUP2 copies the item below the top.
	require.NoError(t, st.Dup(2))
	top, _ := st.Top()
	assert.Equal(t, uint64(3), top.Uint64())
	assert.Equal(t, 5, st.Len())

	// Items are copied, mutating the duplicate leaves the source alone.
	top.SetUint64(99)
	src, _ := st.Back(2)
	assert.Equal(t, uint64(3), src.Uint64())
}
