// Copyright 2015 The go-ethereum Authors
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

package rlp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendUint64(t *testing.T) {
	tests := []struct {
		input  uint64
		output []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x01}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x81, 0x80}},
		{0xff, []byte{0x81, 0xff}},
		{0x100, []byte{0x82, 0x01, 0x00}},
		{0xffffffffffffffff, []byte{0x88, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, test := range tests {
		x := AppendUint64(nil, test.input)
		assert.Equal(t, test.output, x, "input %d", test.input)

		v, rest, err := SplitUint64(x)
		require.NoError(t, err)
		assert.Equal(t, test.input, v)
		assert.Empty(t, rest)
	}
}

func TestAppendBytes(t *testing.T) {
	assert.Equal(t, []byte{0x80}, AppendBytes(nil, nil))
	assert.Equal(t, []byte{0x05}, AppendBytes(nil, []byte{0x05}))
	assert.Equal(t, []byte{0x81, 0x80}, AppendBytes(nil, []byte{0x80}))

	long := bytes.Repeat([]byte{0xaa}, 60)
	enc := AppendBytes(nil, long)
	assert.Equal(t, []byte{0xb8, 60}, enc[:2])
	assert.Equal(t, BytesSize(long), uint64(len(enc)))

	content, rest, err := SplitString(enc)
	require.NoError(t, err)
	assert.Equal(t, long, content)
	assert.Empty(t, rest)
}

func TestAppendList(t *testing.T) {
	// ["cat", "dog"]
	enc := AppendList(nil, AppendBytes(nil, []byte("cat")), AppendBytes(nil, []byte("dog")))
	assert.Equal(t, []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}, enc)

	content, rest, err := SplitList(enc)
	require.NoError(t, err)
	assert.Empty(t, rest)
	n, err := CountValues(content)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, _, err = SplitString(enc)
	assert.ErrorIs(t, err, ErrExpectedString)
}

func TestSplitErrors(t *testing.T) {
	_, _, _, err := Split(nil)
	assert.Error(t, err)

	// single byte below 0x80 wrapped in a string header
	_, _, _, err = Split([]byte{0x81, 0x05})
	assert.ErrorIs(t, err, ErrCanonSize)

	// declared length exceeds input
	_, _, _, err = Split([]byte{0x83, 'a'})
	assert.ErrorIs(t, err, ErrValueTooLarge)

	_, _, err = SplitUint64([]byte{0x82, 0x00, 0x01})
	assert.ErrorIs(t, err, ErrCanonInt)
}
