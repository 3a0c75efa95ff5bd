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
	"bytes"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryResizeRounding(t *testing.T) {
	m := NewMemory()
	defer m.Free()

	require.NoError(t, m.ResizeToCover(0, 0))
	assert.Equal(t, 0, m.Len(), "zero sized access never grows")

	require.NoError(t, m.ResizeToCover(0, 1))
	assert.Equal(t, 32, m.Len())
	require.NoError(t, m.ResizeToCover(31, 2))
	assert.Equal(t, 64, m.Len())
	require.NoError(t, m.ResizeToCover(0, 10))
	assert.Equal(t, 64, m.Len(), "memory never shrinks")
}

func TestMemoryReadWrite(t *testing.T) {
	m := NewMemory()
	defer m.Free()

	_, err := m.Read(0, 1)
	assert.ErrorIs(t, err, ErrMemoryOutOfBounds)
	assert.ErrorIs(t, m.Write(0, []byte{1}), ErrMemoryOutOfBounds)

	require.NoError(t, m.ResizeToCover(0, 64))
	data, err := m.Read(10, 22)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 22), data, "fresh memory reads as zero")

	require.NoError(t, m.Write(30, []byte{0xaa, 0xbb}))
	data, err = m.Read(30, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb}, data)

	// Reads are copies.
	data[0] = 0
	again, _ := m.Read(30, 1)
	assert.Equal(t, []byte{0xaa}, again)

	_, err = m.Read(^uint64(0), 2)
	assert.ErrorIs(t, err, ErrMemoryOutOfBounds)
}

func TestMemorySet32AndCopy(t *testing.T) {
	m := NewMemory()
	defer m.Free()
	m.Resize(64)

	m.Set32(0, uint256.NewInt(0x0102))
	assert.Equal(t, []byte{0x01, 0x02}, m.GetCopy(30, 2))

	// Overlapping copy behaves like memmove.
	m.Copy(1, 0, 32)
	assert.Equal(t, []byte{0x01, 0x02}, m.GetCopy(31, 2))
	assert.Nil(t, m.GetCopy(0, 0))
}

func TestSharedMemoryFrames(t *testing.T) {
	shared := NewSharedMemory(0)
	assert.Equal(t, DefaultMemoryLimit, shared.Limit())

	outer := shared.EnterFrame()
	outer.Resize(64)
	copy(outer.Data(), bytes.Repeat([]byte{0x11}, 64))

	inner := shared.EnterFrame()
	assert.Equal(t, 2, shared.Depth())
	assert.Equal(t, 0, inner.Len(), "a new frame starts empty")
	inner.Resize(96)
	copy(inner.Data(), bytes.Repeat([]byte{0x22}, 96))
	assert.Equal(t, 160, shared.Len())

	// Memory is private to each frame.
	assert.Equal(t, bytes.Repeat([]byte{0x11}, 64), outer.Data())

	shared.ExitFrame()
	assert.Equal(t, 64, shared.Len(), "exiting truncates back to the checkpoint")
	assert.Equal(t, 1, shared.Depth())

	// Growing again exposes zeroes, not the exited frame's bytes.
	outer.Resize(128)
	assert.Equal(t, make([]byte, 64), outer.GetCopy(64, 64))

	again := shared.EnterFrame()
	again.Resize(32)
	assert.Equal(t, make([]byte, 32), again.Data())
	again.Free()
	outer.Free()
	assert.Equal(t, 0, shared.Len())
	assert.Panics(t, shared.ExitFrame)
}

func TestSharedMemoryOutOfOrderExit(t *testing.T) {
	shared := NewSharedMemory(0)
	outer := shared.EnterFrame()
	shared.EnterFrame()
	assert.Panics(t, outer.Free)
}

func TestMemoryLimit(t *testing.T) {
	shared := NewSharedMemory(128)
	outer := shared.EnterFrame()
	require.NoError(t, outer.ResizeToCover(0, 96))

	inner := shared.EnterFrame()
	// The limit binds the sum of all frames.
	assert.ErrorIs(t, inner.ResizeToCover(0, 64), ErrMemoryLimitExceeded)
	assert.Equal(t, 0, inner.Len(), "a rejected expansion leaves memory as it was")
	require.NoError(t, inner.ResizeToCover(0, 32))
	assert.Equal(t, 128, shared.Len())

	assert.ErrorIs(t, inner.ResizeToCover(^uint64(0), 2), ErrMemoryLimitExceeded)
}
