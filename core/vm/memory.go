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
	"fmt"
	"sync"

	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

// DefaultMemoryLimit caps the combined memory of all frames of one execution
// when no explicit limit is configured.
const DefaultMemoryLimit = params.MemoryLimit

var memoryPool = sync.Pool{
	New: func() any {
		return &Memory{}
	},
}

// SharedMemory is a single byte buffer shared by every frame of an
// execution. Each frame owns the tail of the buffer starting at the
// checkpoint recorded when it was entered; frames are entered and exited in
// strict LIFO order, and exiting truncates the buffer back to the
// checkpoint.
// SharedMemory 是一次执行中所有调用帧共享的字节缓冲区。每个帧拥有从其检查点开始的尾部区域，
// 帧必须按后进先出顺序进入和退出，退出时缓冲区被截断回检查点。
type SharedMemory struct {
	buf    []byte
	frames []*Memory
	limit  uint64
}

// NewSharedMemory creates an empty buffer whose total length may not exceed
// limit bytes. A zero limit selects DefaultMemoryLimit.
func NewSharedMemory(limit uint64) *SharedMemory {
	if limit == 0 {
		limit = DefaultMemoryLimit
	}
	return &SharedMemory{limit: limit}
}

// Limit returns the maximum total length of the buffer.
func (s *SharedMemory) Limit() uint64 { return s.limit }

// Len returns the total length of the buffer across all frames.
func (s *SharedMemory) Len() int { return len(s.buf) }

// Depth returns the number of frames currently entered.
func (s *SharedMemory) Depth() int { return len(s.frames) }

// EnterFrame records the current buffer length as a checkpoint and returns an
// empty view starting at it.
// EnterFrame 以当前缓冲区长度作为检查点，返回从该处开始的空内存视图。
func (s *SharedMemory) EnterFrame() *Memory {
	m := memoryPool.Get().(*Memory)
	m.shared = s
	m.offset = uint64(len(s.buf))
	s.frames = append(s.frames, m)
	return m
}

// ExitFrame discards the innermost frame and truncates the buffer back to its
// checkpoint. Exiting with no frame entered panics.
func (s *SharedMemory) ExitFrame() {
	if len(s.frames) == 0 {
		panic("memory: exit without an entered frame")
	}
	s.exit(s.frames[len(s.frames)-1])
}

func (s *SharedMemory) exit(m *Memory) {
	top := len(s.frames) - 1
	if top < 0 || s.frames[top] != m {
		panic("memory: frames exited out of order")
	}
	if m.offset > uint64(len(s.buf)) {
		panic(fmt.Sprintf("memory: checkpoint %d beyond buffer length %d", m.offset, len(s.buf)))
	}
	s.buf = s.buf[:m.offset]
	s.frames[top] = nil
	s.frames = s.frames[:top]

	m.shared, m.offset = nil, 0
	memoryPool.Put(m)
}

// grow extends the buffer to n bytes. Bytes beyond the old length may hold
// data from frames that already exited, so the new region is cleared.
func (s *SharedMemory) grow(n uint64) {
	old := uint64(len(s.buf))
	if n <= old {
		return
	}
	if n <= uint64(cap(s.buf)) {
		s.buf = s.buf[:n]
		clear(s.buf[old:n])
		return
	}
	s.buf = append(s.buf, make([]byte, n-old)...)
}

// Memory implements a simple memory model for the ethereum virtual machine.
// It is one frame's view of a SharedMemory: offsets are relative to the
// frame's checkpoint.
// Memory 是单个调用帧对共享内存的视图，所有偏移都相对于该帧的检查点。
type Memory struct {
	shared *SharedMemory
	offset uint64
}

// NewMemory returns a standalone memory backed by its own shared buffer with
// the default limit.
func NewMemory() *Memory {
	return NewSharedMemory(0).EnterFrame()
}

// Free exits the frame this view belongs to. It panics if an inner frame is
// still entered.
func (m *Memory) Free() {
	m.shared.exit(m)
}

func (m *Memory) store() []byte {
	return m.shared.buf[m.offset:]
}

// Len returns the length of the frame's memory.
func (m *Memory) Len() int {
	return len(m.shared.buf) - int(m.offset)
}

// Data returns the frame's memory. The slice is only valid until the next
// resize.
func (m *Memory) Data() []byte {
	return m.store()
}

func (m *Memory) inBounds(offset, size uint64) bool {
	end := offset + size
	return end >= offset && end <= uint64(m.Len())
}

// Read returns a copy of size bytes at offset. Ranges reaching past the
// current length fail with ErrMemoryOutOfBounds.
// Read 返回 offset 处 size 字节的副本，超出当前长度的访问返回 ErrMemoryOutOfBounds。
func (m *Memory) Read(offset, size uint64) ([]byte, error) {
	if !m.inBounds(offset, size) {
		return nil, fmt.Errorf("%w: read [%d, +%d) of %d", ErrMemoryOutOfBounds, offset, size, m.Len())
	}
	return m.GetCopy(offset, size), nil
}

// Write copies data to offset. Ranges reaching past the current length fail
// with ErrMemoryOutOfBounds.
func (m *Memory) Write(offset uint64, data []byte) error {
	size := uint64(len(data))
	if !m.inBounds(offset, size) {
		return fmt.Errorf("%w: write [%d, +%d) of %d", ErrMemoryOutOfBounds, offset, size, m.Len())
	}
	m.Set(offset, size, data)
	return nil
}

// ResizeToCover grows the memory so that [offset, offset+size) is
// addressable, rounding the new length up to a multiple of 32 bytes. A zero
// size never grows the memory. Growing the shared buffer past its limit
// fails with ErrMemoryLimitExceeded and leaves the memory as it was.
// ResizeToCover 扩展内存以覆盖 [offset, offset+size)，新长度向上取整到 32 字节的倍数，
// 超过上限时返回 ErrMemoryLimitExceeded 且不改变内存。
func (m *Memory) ResizeToCover(offset, size uint64) error {
	if size == 0 {
		return nil
	}
	end := offset + size
	if end < offset || end > m.shared.limit {
		return ErrMemoryLimitExceeded
	}
	newLen := toWordSize(end) * 32
	if newLen <= uint64(m.Len()) {
		return nil
	}
	if m.exceedsLimit(newLen) {
		return ErrMemoryLimitExceeded
	}
	m.Resize(newLen)
	return nil
}

// exceedsLimit reports whether growing the frame to size bytes would push
// the shared buffer past its limit.
func (m *Memory) exceedsLimit(size uint64) bool {
	total := m.offset + size
	return total < m.offset || total > m.shared.limit
}

// Resize resizes the memory to size. It performs no limit check; the
// interpreter has done that before charging for the expansion.
func (m *Memory) Resize(size uint64) {
	if uint64(m.Len()) < size {
		m.shared.grow(m.offset + size)
	}
}

// Set sets offset + size to value
func (m *Memory) Set(offset, size uint64, value []byte) {
	// It's possible the offset is greater than 0 and size equals 0. This is because
	// memoryEnd reports no memory for an empty range, so nothing was resized.
	if size > 0 {
		// length of store may never be less than offset + size.
		// The store should be resized PRIOR to setting the memory
		if offset+size > uint64(m.Len()) {
			panic("invalid memory: store empty")
		}
		copy(m.store()[offset:offset+size], value)
	}
}

// Set32 sets the 32 bytes starting at offset to the value of val, left-padded with zeroes to
// 32 bytes.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(m.Len()) {
		panic("invalid memory: store empty")
	}
	val.PutUint256(m.store()[offset:])
}

// GetCopy returns offset + size as a new slice
// GetCopy 以新切片返回 offset 处 size 字节的内容。
func (m *Memory) GetCopy(offset, size uint64) (cpy []byte) {
	if size == 0 {
		return nil
	}
	// memory is always resized before being accessed, no need to check bounds
	cpy = make([]byte, size)
	copy(cpy, m.store()[offset:offset+size])
	return
}

// GetPtr returns the offset + size
// GetPtr 直接返回内存区域而不复制，在下一次扩展前有效。
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store()[offset : offset+size]
}

// Copy copies data from the src position slice into the dst position.
// The source and destination may overlap.
// OBS: This operation assumes that any necessary memory expansion has already been performed,
// and this method may panic otherwise.
func (m *Memory) Copy(dst, src, len uint64) {
	if len == 0 {
		return
	}
	store := m.store()
	copy(store[dst:], store[src:src+len])
}
