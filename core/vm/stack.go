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
	"sync"

	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is an object for basic stack operations. Items popped to the stack are
// expected to be changed and modified. stack does not take care of adding newly
// initialized objects.
//
// The exported methods check depth and report ErrStackUnderflow or
// ErrStackOverflow. The lower case variants skip the checks and are only used
// by opcode handlers, after the interpreter has validated the depth against
// the operation's stack bounds.
// Stack 是 256 位字的后进先出栈，深度上限为 1024。导出方法会检查深度，
// 小写方法不做检查，仅供解释器校验过栈边界后的指令处理函数使用。
type Stack struct {
	data []uint256.Int
}

func newstack() *Stack {
	return stackPool.Get().(*Stack)
}

func returnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// NewStack returns an empty stack from the pool. Callers hand it back with
// ReturnStack once done.
func NewStack() *Stack { return newstack() }

// ReturnStack resets s and puts it back into the pool.
func ReturnStack(s *Stack) { returnStack(s) }

// Data returns the underlying uint256.Int array.
// Data 返回底层数组，栈底在前。
func (st *Stack) Data() []uint256.Int {
	return st.data
}

// Len returns the number of items on the stack.
func (st *Stack) Len() int { return len(st.data) }

func (st *Stack) len() int {
	return len(st.data)
}

// Push copies d onto the stack. At the depth limit it fails with
// ErrStackOverflow and leaves the stack unchanged.
// Push 将 d 压入栈顶；达到深度上限时返回错误且不改变栈。
func (st *Stack) Push(d *uint256.Int) error {
	if len(st.data) >= int(params.StackLimit) {
		return &ErrStackOverflow{stackLen: len(st.data), limit: int(params.StackLimit)}
	}
	st.push(d)
	return nil
}

// Pop removes and returns the top item.
func (st *Stack) Pop() (uint256.Int, error) {
	if err := st.require(1); err != nil {
		return uint256.Int{}, err
	}
	return st.pop(), nil
}

// Pop2 removes the top two items, returned top first.
func (st *Stack) Pop2() (a, b uint256.Int, err error) {
	if err = st.require(2); err != nil {
		return
	}
	return st.pop(), st.pop(), nil
}

// Pop3 removes the top three items, returned top first.
func (st *Stack) Pop3() (a, b, c uint256.Int, err error) {
	if err = st.require(3); err != nil {
		return
	}
	return st.pop(), st.pop(), st.pop(), nil
}

// Pop4 removes the top four items, returned top first.
func (st *Stack) Pop4() (a, b, c, d uint256.Int, err error) {
	if err = st.require(4); err != nil {
		return
	}
	return st.pop(), st.pop(), st.pop(), st.pop(), nil
}

// Top returns a pointer to the top item. Writing through the pointer replaces
// the item in place.
// Top 返回栈顶元素的指针，可以原地修改。
func (st *Stack) Top() (*uint256.Int, error) {
	if err := st.require(1); err != nil {
		return nil, err
	}
	return st.peek(), nil
}

// Back returns the n'th item from the top, Back(0) being the top itself.
// Back 返回从栈顶数第 n 个元素，Back(0) 即栈顶。
func (st *Stack) Back(n int) (*uint256.Int, error) {
	if n < 0 {
		return nil, &ErrStackUnderflow{stackLen: len(st.data), required: n}
	}
	if err := st.require(n + 1); err != nil {
		return nil, err
	}
	return st.back(n), nil
}

// Dup pushes a copy of the n'th item, counted from 1 at the top, as DUPn does.
func (st *Stack) Dup(n int) error {
	if n < 1 {
		return &ErrStackUnderflow{stackLen: len(st.data), required: n}
	}
	if err := st.require(n); err != nil {
		return err
	}
	if len(st.data) >= int(params.StackLimit) {
		return &ErrStackOverflow{stackLen: len(st.data), limit: int(params.StackLimit)}
	}
	st.dup(n)
	return nil
}

// Swap exchanges the top item with the one n places below it, as SWAPn does.
func (st *Stack) Swap(n int) error {
	if n < 1 {
		return &ErrStackUnderflow{stackLen: len(st.data), required: n + 1}
	}
	if err := st.require(n + 1); err != nil {
		return err
	}
	st.swap(n)
	return nil
}

func (st *Stack) require(n int) error {
	if len(st.data) < n {
		return &ErrStackUnderflow{stackLen: len(st.data), required: n}
	}
	return nil
}

func (st *Stack) push(d *uint256.Int) {
	// NOTE push limit (1024) is checked in the interpreter loop
	st.data = append(st.data, *d)
}

func (st *Stack) pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) swap(n int) {
	top := len(st.data) - 1
	st.data[top-n], st.data[top] = st.data[top], st.data[top-n]
}

func (st *Stack) dup(n int) {
	st.push(&st.data[len(st.data)-n])
}

func (st *Stack) peek() *uint256.Int {
	return &st.data[len(st.data)-1]
}

func (st *Stack) back(n int) *uint256.Int {
	return &st.data[len(st.data)-n-1]
}
