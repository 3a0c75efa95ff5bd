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
	"errors"
	"fmt"
	"math"
)

// List evm execution errors
// 列出 EVM 执行错误
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrCodeStoreOutOfGas        = errors.New("contract creation code storage out of gas")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrMaxCodeSizeExceeded      = errors.New("max code size exceeded")
	ErrMaxInitCodeSizeExceeded  = errors.New("max initcode size exceeded")
	ErrInvalidJump              = errors.New("invalid jump destination")
	ErrWriteProtection          = errors.New("write protection")
	ErrReturnDataOutOfBounds    = errors.New("return data out of bounds")
	ErrGasUintOverflow          = errors.New("gas uint64 overflow")
	ErrInvalidCode              = errors.New("invalid code: must not begin with 0xef")
	ErrNonceUintOverflow        = errors.New("nonce uint64 overflow")
	ErrMemoryLimitExceeded      = errors.New("memory limit exceeded")       // 内存扩展超过上限
	ErrMemoryOutOfBounds        = errors.New("memory access out of bounds") // 读写超出当前内存长度

	errStackUnderflow = errors.New("stack underflow")
	errStackOverflow  = errors.New("stack overflow")
)

// ErrStackUnderflow wraps an evm error when the items on the stack less
// than the minimal requirement.
// ErrStackUnderflow 在栈上元素少于最低要求时返回。
type ErrStackUnderflow struct {
	stackLen int
	required int
}

func (e *ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.stackLen, e.required)
}

// Unwrap returns the shared base error, so errors.Is can match any
// underflow regardless of the depths involved.
func (e *ErrStackUnderflow) Unwrap() error { return errStackUnderflow }

// ErrStackOverflow wraps an evm error when the items on the stack exceeds
// the maximum allowance.
// ErrStackOverflow 在栈上元素超过允许的最大值时返回。
type ErrStackOverflow struct {
	stackLen int
	limit    int
}

func (e *ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.stackLen, e.limit)
}

func (e *ErrStackOverflow) Unwrap() error { return errStackOverflow }

// ErrInvalidOpCode wraps an evm error when an invalid opcode is encountered.
// ErrInvalidOpCode 在遇到未定义的操作码或 INVALID (0xfe) 时返回。
type ErrInvalidOpCode struct {
	opcode OpCode
}

func (e *ErrInvalidOpCode) Error() string { return fmt.Sprintf("invalid opcode: %s", e.opcode) }

// OpCode returns the offending opcode.
func (e *ErrInvalidOpCode) OpCode() OpCode { return e.opcode }

// VMError wraps a VM error with an additional stable error code. The error
// field is the original error that caused the VM error and must be one of the
// VM error defined at the top of this file.
//
// If the error is not one of the known error above, the error code will be
// set to VMErrorCodeUnknown.
// VMError 为虚拟机错误附加一个稳定的数字代码，未知错误映射为 VMErrorCodeUnknown。
type VMError struct {
	error
	code int
}

// VMErrorFromErr wraps err into a VMError, or returns nil for a nil error.
func VMErrorFromErr(err error) error {
	if err == nil {
		return nil
	}
	return &VMError{
		error: err,
		code:  vmErrorCodeFromErr(err),
	}
}

func (e *VMError) Error() string  { return e.error.Error() }
func (e *VMError) Unwrap() error  { return e.error }
func (e *VMError) ErrorCode() int { return e.code }

const (
	// We start the error code at 1 so that we can use 0 later for some possible extension. There
	// is no unspecified value for the code today because it should always be set to a valid value
	// that could be VMErrorCodeUnknown if the error is not mapped to a known error code.

	VMErrorCodeOutOfGas = 1 + iota
	VMErrorCodeCodeStoreOutOfGas
	VMErrorCodeDepth
	VMErrorCodeInsufficientBalance
	VMErrorCodeContractAddressCollision
	VMErrorCodeExecutionReverted
	VMErrorCodeMaxCodeSizeExceeded
	VMErrorCodeInvalidJump
	VMErrorCodeWriteProtection
	VMErrorCodeReturnDataOutOfBounds
	VMErrorCodeGasUintOverflow
	VMErrorCodeInvalidCode
	VMErrorCodeNonceUintOverflow
	VMErrorCodeStackUnderflow
	VMErrorCodeStackOverflow
	VMErrorCodeInvalidOpCode
	VMErrorCodeMaxInitCodeSizeExceeded
	VMErrorCodeMemoryLimitExceeded
	VMErrorCodeMemoryOutOfBounds

	// VMErrorCodeUnknown explicitly marks an error as unknown, this is useful when error is converted
	// from an actual `error` in which case if the mapping is not known, we can use this value to indicate that.
	VMErrorCodeUnknown = math.MaxInt - 1
)

var vmErrorCodes = []struct {
	err  error
	code int
}{
	{ErrOutOfGas, VMErrorCodeOutOfGas},
	{ErrCodeStoreOutOfGas, VMErrorCodeCodeStoreOutOfGas},
	{ErrDepth, VMErrorCodeDepth},
	{ErrInsufficientBalance, VMErrorCodeInsufficientBalance},
	{ErrContractAddressCollision, VMErrorCodeContractAddressCollision},
	{ErrExecutionReverted, VMErrorCodeExecutionReverted},
	{ErrMaxCodeSizeExceeded, VMErrorCodeMaxCodeSizeExceeded},
	{ErrInvalidJump, VMErrorCodeInvalidJump},
	{ErrWriteProtection, VMErrorCodeWriteProtection},
	{ErrReturnDataOutOfBounds, VMErrorCodeReturnDataOutOfBounds},
	{ErrGasUintOverflow, VMErrorCodeGasUintOverflow},
	{ErrInvalidCode, VMErrorCodeInvalidCode},
	{ErrNonceUintOverflow, VMErrorCodeNonceUintOverflow},
	{errStackUnderflow, VMErrorCodeStackUnderflow},
	{errStackOverflow, VMErrorCodeStackOverflow},
	{ErrMaxInitCodeSizeExceeded, VMErrorCodeMaxInitCodeSizeExceeded},
	{ErrMemoryLimitExceeded, VMErrorCodeMemoryLimitExceeded},
	{ErrMemoryOutOfBounds, VMErrorCodeMemoryOutOfBounds},
}

func vmErrorCodeFromErr(err error) int {
	for _, c := range vmErrorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	// Dynamic errors
	if v := (*ErrInvalidOpCode)(nil); errors.As(err, &v) {
		return VMErrorCodeInvalidOpCode
	}
	return VMErrorCodeUnknown
}
