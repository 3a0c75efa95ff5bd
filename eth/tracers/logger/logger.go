// Copyright 2021 The go-ethereum Authors
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

// Package logger implements opcode level tracers that record every step of
// an execution.
// logger 包实现了操作码级别的跟踪器，记录执行的每一步。
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/common/hexutil"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/types"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/holiman/uint256"
)

// Storage represents a contract's storage.
type Storage map[common.Hash]common.Hash

// Config are the configuration options for structured logger the EVM
// Config 是结构化日志跟踪器的配置项。
type Config struct {
	EnableMemory     bool // enable memory capture
	DisableStack     bool // disable stack capture
	DisableStorage   bool // disable storage capture
	EnableReturnData bool // enable return data capture
	Limit            int  // maximum size of output, but zero means unlimited
}

// StructLog is emitted to the EVM each cycle and lists information about the
// current internal state prior to the execution of the statement.
// StructLog 记录每条指令执行前的内部状态。
type StructLog struct {
	Pc            uint64                      `json:"pc"`
	Op            vm.OpCode                   `json:"op"`
	Gas           uint64                      `json:"gas"`
	GasCost       uint64                      `json:"gasCost"`
	Memory        []byte                      `json:"memory,omitempty"`
	MemorySize    int                         `json:"memSize"`
	Stack         []uint256.Int               `json:"stack"`
	ReturnData    []byte                      `json:"returnData,omitempty"`
	Storage       map[common.Hash]common.Hash `json:"-"`
	Depth         int                         `json:"depth"`
	RefundCounter uint64                      `json:"refund"`
	Err           error                       `json:"-"`
}

// structLogJSON is the wire form of a StructLog.
type structLogJSON struct {
	Pc            uint64                      `json:"pc"`
	Op            string                      `json:"opName"`
	OpCode        byte                        `json:"op"`
	Gas           hexutil.Uint64              `json:"gas"`
	GasCost       hexutil.Uint64              `json:"gasCost"`
	Memory        hexutil.Bytes               `json:"memory,omitempty"`
	MemorySize    int                         `json:"memSize"`
	Stack         []string                    `json:"stack"`
	ReturnData    hexutil.Bytes               `json:"returnData,omitempty"`
	Storage       map[common.Hash]common.Hash `json:"storage,omitempty"`
	Depth         int                         `json:"depth"`
	RefundCounter uint64                      `json:"refund"`
	Error         string                      `json:"error,omitempty"`
}

// MarshalJSON encodes the gas values in hex and the stack as hex words.
func (s StructLog) MarshalJSON() ([]byte, error) {
	enc := structLogJSON{
		Pc:            s.Pc,
		Op:            s.Op.String(),
		OpCode:        byte(s.Op),
		Gas:           hexutil.Uint64(s.Gas),
		GasCost:       hexutil.Uint64(s.GasCost),
		Memory:        s.Memory,
		MemorySize:    s.MemorySize,
		ReturnData:    s.ReturnData,
		Storage:       s.Storage,
		Depth:         s.Depth,
		RefundCounter: s.RefundCounter,
		Error:         s.ErrorString(),
	}
	if s.Stack != nil {
		enc.Stack = make([]string, len(s.Stack))
		for i, v := range s.Stack {
			enc.Stack[i] = v.Hex()
		}
	}
	return json.Marshal(&enc)
}

// OpName formats the operand name in a human-readable format.
func (s *StructLog) OpName() string {
	return s.Op.String()
}

// ErrorString formats the log's error as a string.
func (s *StructLog) ErrorString() string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return ""
}

// StructLogger is an EVM state logger and implements the tracing hooks.
//
// StructLogger can capture state based on the given Log configuration and also keeps
// a track record of modified storage which is used in reporting snapshots of the
// contract their storage.
// StructLogger 按配置记录每一步的状态，并跟踪被修改的存储以便输出存储快照。
type StructLogger struct {
	cfg Config
	env *tracing.VMContext

	storage map[common.Address]Storage
	logs    []StructLog
	output  []byte
	err     error
	usedGas uint64
}

// NewStructLogger returns a new logger
func NewStructLogger(cfg *Config) *StructLogger {
	logger := &StructLogger{
		storage: make(map[common.Address]Storage),
	}
	if cfg != nil {
		logger.cfg = *cfg
	}
	return logger
}

// Hooks returns the tracing hooks of the logger.
func (l *StructLogger) Hooks() *tracing.Hooks {
	return &tracing.Hooks{
		OnTxStart: l.OnTxStart,
		OnTxEnd:   l.OnTxEnd,
		OnExit:    l.OnExit,
		OnOpcode:  l.OnOpcode,
	}
}

// Reset clears the data held by the logger.
func (l *StructLogger) Reset() {
	l.storage = make(map[common.Address]Storage)
	l.output = make([]byte, 0)
	l.logs = l.logs[:0]
	l.err = nil
}

// OnOpcode logs a new structured log message and pushes it out to the environment
//
// OnOpcode also tracks SLOAD/SSTORE ops to track storage change.
// OnOpcode 记录一条结构化日志，并跟踪 SLOAD/SSTORE 引起的存储变化。
func (l *StructLogger) OnOpcode(pc uint64, opcode byte, gas, cost uint64, scope tracing.OpContext, rData []byte, depth int, err error) {
	// check if already accumulated the specified number of logs
	if l.cfg.Limit != 0 && l.cfg.Limit <= len(l.logs) {
		return
	}
	var (
		op           = vm.OpCode(opcode)
		memory       = scope.MemoryData()
		stack        = scope.StackData()
		contractAddr = scope.Address()
	)
	// Copy a snapshot of the current memory state to a new buffer
	var mem []byte
	if l.cfg.EnableMemory {
		mem = make([]byte, len(memory))
		copy(mem, memory)
	}
	// Copy a snapshot of the current stack state to a new buffer
	var stck []uint256.Int
	if !l.cfg.DisableStack {
		stck = make([]uint256.Int, len(stack))
		copy(stck, stack)
	}
	stackLen := len(stack)
	// Copy a snapshot of the current storage to a new container
	var storage Storage
	if !l.cfg.DisableStorage && (op == vm.SLOAD || op == vm.SSTORE) {
		// initialise new changed values storage container for this contract
		// if not present.
		if l.storage[contractAddr] == nil {
			l.storage[contractAddr] = make(Storage)
		}
		// capture SLOAD opcodes and record the read entry in the local storage
		if op == vm.SLOAD && stackLen >= 1 {
			var (
				address = common.Hash(stack[stackLen-1].Bytes32())
				value   common.Hash
			)
			if l.env != nil && l.env.StateDB != nil {
				value = l.env.StateDB.GetState(contractAddr, address)
			}
			l.storage[contractAddr][address] = value
			storage = maps.Clone(l.storage[contractAddr])
		} else if op == vm.SSTORE && stackLen >= 2 {
			// capture SSTORE opcodes and record the written entry in the local storage.
			var (
				value   = common.Hash(stack[stackLen-2].Bytes32())
				address = common.Hash(stack[stackLen-1].Bytes32())
			)
			l.storage[contractAddr][address] = value
			storage = maps.Clone(l.storage[contractAddr])
		}
	}
	var rdata []byte
	if l.cfg.EnableReturnData {
		rdata = make([]byte, len(rData))
		copy(rdata, rData)
	}
	var refund uint64
	if l.env != nil && l.env.StateDB != nil {
		refund = l.env.StateDB.GetRefund()
	}
	// create a new snapshot of the EVM.
	log := StructLog{pc, op, gas, cost, mem, len(memory), stck, rdata, storage, depth, refund, err}
	l.logs = append(l.logs, log)
}

// OnExit records the result of the outermost frame.
func (l *StructLogger) OnExit(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
	if depth != 0 {
		return
	}
	l.output = common.CopyBytes(output)
	l.err = err
}

func (l *StructLogger) OnTxStart(env *tracing.VMContext, from common.Address, to *common.Address, input []byte, gas uint64) {
	l.env = env
}

func (l *StructLogger) OnTxEnd(gasUsed uint64, err error) {
	l.usedGas = gasUsed
	if err != nil && l.err == nil {
		l.err = err
	}
}

// StructLogs returns the captured log entries.
func (l *StructLogger) StructLogs() []StructLog { return l.logs }

// Error returns the VM error captured by the trace.
func (l *StructLogger) Error() error { return l.err }

// Output returns the VM return value captured by the trace.
func (l *StructLogger) Output() []byte { return l.output }

// ExecutionResult groups all structured logs emitted by the EVM
// while replaying a transaction in debug mode as well as transaction
// execution status, the amount of gas used and the return value
// ExecutionResult 汇总一次执行的结构化日志、状态、gas 消耗与返回值。
type ExecutionResult struct {
	Gas         uint64      `json:"gas"`
	Failed      bool        `json:"failed"`
	ReturnValue string      `json:"returnValue"`
	StructLogs  []StructLog `json:"structLogs"`
}

// Result returns the execution summary of the trace.
func (l *StructLogger) Result() *ExecutionResult {
	failed := l.err != nil
	returnData := common.CopyBytes(l.output)
	// Return data when successful and revert reason when reverted, otherwise empty.
	if failed && l.err != vm.ErrExecutionReverted {
		returnData = []byte{}
	}
	return &ExecutionResult{
		Gas:         l.usedGas,
		Failed:      failed,
		ReturnValue: fmt.Sprintf("%x", returnData),
		StructLogs:  l.logs,
	}
}

// WriteTrace writes a formatted trace to the given writer
// WriteTrace 以可读格式将跟踪结果写入 writer。
func WriteTrace(writer io.Writer, logs []StructLog) {
	for _, log := range logs {
		fmt.Fprintf(writer, "%-16spc=%08d gas=%v cost=%v", log.Op, log.Pc, log.Gas, log.GasCost)
		if log.Err != nil {
			fmt.Fprintf(writer, " ERROR: %v", log.Err)
		}
		fmt.Fprintln(writer)

		if len(log.Stack) > 0 {
			fmt.Fprintln(writer, "Stack:")
			for i := len(log.Stack) - 1; i >= 0; i-- {
				fmt.Fprintf(writer, "%08d  %s\n", len(log.Stack)-i-1, log.Stack[i].Hex())
			}
		}
		if len(log.Memory) > 0 {
			fmt.Fprintln(writer, "Memory:")
			fmt.Fprint(writer, formatMemory(log.Memory))
		}
		if len(log.Storage) > 0 {
			fmt.Fprintln(writer, "Storage:")
			for h, item := range log.Storage {
				fmt.Fprintf(writer, "%x: %x\n", h, item)
			}
		}
		if len(log.ReturnData) > 0 {
			fmt.Fprintln(writer, "ReturnData:")
			fmt.Fprint(writer, formatMemory(log.ReturnData))
		}
		fmt.Fprintln(writer)
	}
}

// WriteLogs writes vm logs in a readable format to the given writer
// WriteLogs 以可读格式将合约日志写入 writer。
func WriteLogs(writer io.Writer, logs []*types.Log) {
	for _, log := range logs {
		fmt.Fprintf(writer, "LOG%d: %x bn=%d index=%d\n", len(log.Topics), log.Address, log.BlockNumber, log.Index)

		for i, topic := range log.Topics {
			fmt.Fprintf(writer, "%08d  %x\n", i, topic)
		}
		fmt.Fprint(writer, formatMemory(log.Data))
		fmt.Fprintln(writer)
	}
}

// formatMemory prints data in rows of 32 bytes with the row offset.
func formatMemory(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 32 {
		end := min(i+32, len(data))
		fmt.Fprintf(&b, "%08x  %x\n", i, data[i:end])
	}
	return b.String()
}

