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

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/common/math"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/crypto"
	"github.com/0xrusowsky/goevm/log"
	"github.com/0xrusowsky/goevm/params"
	"github.com/holiman/uint256"
)

// Config are the configuration options for the Interpreter
// Config 是解释器的配置项。
type Config struct {
	Tracer                  *tracing.Hooks
	NoBaseFee               bool  // Forces the EIP-1559 baseFee to 0 (needed for 0 price calls)
	EnablePreimageRecording bool  // Enables recording of SHA3/keccak preimages
	ExtraEips               []int // Additional EIPS that are to be enabled

	// MemoryLimit bounds the memory shared by all frames of one execution.
	// Zero means DefaultMemoryLimit.
	// MemoryLimit 限制一次执行中所有帧共享内存的总大小，0 表示使用默认值。
	MemoryLimit uint64

	// JumpDestCache memoizes code analysis across executions. Nil gives each
	// EVM a private map.
	JumpDestCache JumpDestCache
}

// ScopeContext contains the things that are per-call, such as stack and memory,
// but not transients like pc and gas
// ScopeContext 保存每个调用帧独有的内容（栈、内存、合约），不包括 pc 与 gas 这类瞬时状态。
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}

// MemoryData returns the underlying memory slice. Callers must not modify the contents
// of the returned data.
func (ctx *ScopeContext) MemoryData() []byte {
	if ctx.Memory == nil {
		return nil
	}
	return ctx.Memory.Data()
}

// StackData returns the stack data. Callers must not modify the contents
// of the returned data.
func (ctx *ScopeContext) StackData() []uint256.Int {
	if ctx.Stack == nil {
		return nil
	}
	return ctx.Stack.Data()
}

// Caller returns the current caller.
func (ctx *ScopeContext) Caller() common.Address {
	return ctx.Contract.Caller()
}

// Address returns the address where this scope of execution is taking place.
func (ctx *ScopeContext) Address() common.Address {
	return ctx.Contract.Address()
}

// CallValue returns the value supplied with this call.
func (ctx *ScopeContext) CallValue() *uint256.Int {
	return ctx.Contract.Value()
}

// CallInput returns the input/calldata with this call. Callers must not modify
// the contents of the returned data.
func (ctx *ScopeContext) CallInput() []byte {
	return ctx.Contract.Input
}

// ContractCode returns the code of the contract being executed.
func (ctx *ScopeContext) ContractCode() []byte {
	return ctx.Contract.Code
}

// Status is the state of an execution.
// Status 表示一次执行所处的状态。
type Status uint8

const (
	StatusRunning   Status = iota // 仍在执行
	StatusSucceeded               // STOP、RETURN、SELFDESTRUCT 或执行到代码末尾
	StatusReverted                // REVERT，剩余 gas 退还
	StatusErrored                 // 其他错误，gas 全部耗尽
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusReverted:
		return "reverted"
	case StatusErrored:
		return "errored"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Outcome is the terminal result of running a frame.
// Outcome 是一个调用帧执行结束后的结果。
type Outcome struct {
	Status  Status
	Err     error  // nil on success, ErrExecutionReverted on revert
	Output  []byte // RETURN or REVERT data
	GasLeft uint64
	GasUsed uint64
}

// Failed reports whether the frame ended with a revert or an error.
func (o *Outcome) Failed() bool {
	return o.Status == StatusReverted || o.Status == StatusErrored
}

// EVMInterpreter represents an EVM interpreter
// EVMInterpreter 表示 EVM 解释器。
type EVMInterpreter struct {
	host  Host
	table *JumpTable
	cfg   *Config

	memory *SharedMemory // buffer shared by every frame of this interpreter
	depth  int           // current call depth, 0 outside any frame

	hasher    crypto.KeccakState // Keccak256 hasher instance shared across opcodes
	hasherBuf common.Hash        // Keccak256 hasher result array shared across opcodes

	readOnly   bool   // Whether to throw on stateful modifications
	returnData []byte // Last CALL's return data for subsequent reuse

	// callGasTemp holds the gas available for the current call. This is needed because the
	// available gas is calculated in gasCall* according to the 63/64 rule and later
	// applied in opCall*.
	callGasTemp uint64
}

// NewEVMInterpreter returns a new instance of the Interpreter.
// NewEVMInterpreter 按规则选择指令集并创建解释器，ExtraEips 在跳转表副本上启用。
func NewEVMInterpreter(host Host, rules params.Rules, cfg *Config) *EVMInterpreter {
	if cfg == nil {
		cfg = new(Config)
	}
	table := instructionSet(rules)
	var extraEips []int
	if len(cfg.ExtraEips) > 0 {
		// Deep-copy jumptable to prevent modification of opcodes in other tables
		table = copyJumpTable(table)
	}
	for _, eip := range cfg.ExtraEips {
		if err := EnableEIP(eip, table); err != nil {
			// Disable it, so caller can check if it's activated or not
			log.Error("EIP activation failed", "eip", eip, "error", err)
		} else {
			extraEips = append(extraEips, eip)
		}
	}
	cfg.ExtraEips = extraEips
	return &EVMInterpreter{
		host:   host,
		table:  table,
		cfg:    cfg,
		memory: NewSharedMemory(cfg.MemoryLimit),
	}
}

// Depth returns the current call depth.
func (in *EVMInterpreter) Depth() int { return in.depth }

// Memory returns the memory shared by the frames of this interpreter.
func (in *EVMInterpreter) Memory() *SharedMemory { return in.memory }

// Execute runs the contract like Run and folds the result into an Outcome.
// A frame that ends with an error other than a revert consumes all of its
// gas.
// Execute 与 Run 相同，但把结果整理为 Outcome；非 revert 的错误会耗尽全部 gas。
func (in *EVMInterpreter) Execute(contract *Contract, input []byte, readOnly bool) *Outcome {
	start := contract.Gas
	ret, err := in.Run(contract, input, readOnly)

	out := &Outcome{Err: err, Output: ret, GasLeft: contract.Gas}
	switch {
	case err == nil:
		out.Status = StatusSucceeded
	case errors.Is(err, ErrExecutionReverted):
		out.Status = StatusReverted
	default:
		out.Status = StatusErrored
		out.GasLeft = 0
	}
	out.GasUsed = start - out.GasLeft
	return out
}

// Run loops and evaluates the contract's code with the given input data and returns
// the return byte-slice and an error if one occurred.
//
// It's important to note that any errors returned by the interpreter should be
// considered a revert-and-consume-all-gas operation except for
// ErrExecutionReverted which means revert-and-keep-gas-left.
// Run 循环执行合约代码并返回输出与错误。除 ErrExecutionReverted（回滚但保留剩余 gas）外，
// 其余错误都应视为回滚并耗尽全部 gas。
func (in *EVMInterpreter) Run(contract *Contract, input []byte, readOnly bool) (ret []byte, err error) {
	// Increment the call depth which is restricted to 1024
	in.depth++
	defer func() { in.depth-- }()

	// Make sure the readOnly is only set if we aren't in readOnly yet.
	// This also makes sure that the readOnly flag isn't removed for child calls.
	if readOnly && !in.readOnly {
		in.readOnly = true
		defer func() { in.readOnly = false }()
	}

	// Reset the previous call's return data. It's unimportant to preserve the old buffer
	// as every returning call will return new data anyway.
	in.returnData = nil

	// Don't bother with the execution if there's no code.
	if len(contract.Code) == 0 {
		return nil, nil
	}

	var (
		op          OpCode                    // current opcode
		code        = contract.Bytecode()     // analyzed code, shared by nested frames
		mem         = in.memory.EnterFrame()  // view of the shared memory
		stack       = newstack()              // local stack
		callContext = &ScopeContext{
			Memory:   mem,
			Stack:    stack,
			Contract: contract,
		}
		// For optimisation reason we're using uint64 as the program counter.
		// It's theoretically possible to go above 2^64. The YP defines the PC
		// to be uint256. Practically much less so feasible.
		pc   = uint64(0) // program counter
		cost uint64
		// copies used by tracer
		pcCopy  uint64 // needed for the deferred EVMLogger
		gasCopy uint64 // for EVMLogger to log gas remaining before execution
		logged  bool   // deferred EVMLogger should ignore already logged steps
		res     []byte // result of the opcode execution function
		debug   = in.cfg.Tracer != nil
	)
	// Don't move this deferred function, it's placed before the OnOpcode-deferred method,
	// so that it gets executed _after_: the OnOpcode needs the stacks before
	// they are returned to the pools
	defer func() {
		returnStack(stack)
		mem.Free()
	}()
	contract.Input = input

	log.Trace("Entering frame", "depth", in.depth, "address", contract.Address(), "gas", contract.Gas, "codesize", code.Len())
	defer func() {
		log.Trace("Leaving frame", "depth", in.depth, "gas", contract.Gas, "err", err)
	}()

	if debug {
		defer func() { // this deferred method handles exit-with-error
			if err == nil {
				return
			}
			if !logged && in.cfg.Tracer.OnOpcode != nil {
				in.cfg.Tracer.OnOpcode(pcCopy, byte(op), gasCopy, cost, callContext, in.returnData, in.depth, VMErrorFromErr(err))
			}
			if logged && in.cfg.Tracer.OnFault != nil {
				in.cfg.Tracer.OnFault(pcCopy, byte(op), gasCopy, cost, callContext, in.depth, VMErrorFromErr(err))
			}
		}()
	}
	// The main run loop ends on a halting operation or on the first error.
	// The only bound on a looping program is its gas.
	// 主循环在遇到终止类指令或第一个错误时结束，循环程序只受 gas 限制。
	for {
		if debug {
			// Capture pre-execution values for tracing.
			logged, pcCopy, gasCopy = false, pc, contract.Gas
		}
		// Get the operation from the jump table and validate the stack to ensure there are
		// enough stack items available to perform the operation.
		// Running off the end of the code reads the STOP padding.
		op = code.OpAt(pc)
		operation := in.table[op]
		cost = operation.constantGas // For tracing
		// Validate stack
		if sLen := stack.len(); sLen < operation.minStack {
			return nil, &ErrStackUnderflow{stackLen: sLen, required: operation.minStack}
		} else if sLen > operation.maxStack {
			return nil, &ErrStackOverflow{stackLen: sLen, limit: operation.maxStack}
		}
		// for tracing: this gas consumption event is emitted below in the debug section.
		if contract.Gas < cost {
			return nil, ErrOutOfGas
		} else {
			contract.Gas -= cost
		}

		// All ops with a dynamic memory usage also has a dynamic gas cost.
		var memorySize uint64
		if operation.dynamicGas != nil {
			// calculate the new memory size and expand the memory to fit
			// the operation
			// Memory check needs to be done prior to evaluating the dynamic gas portion,
			// to detect calculation overflows
			if operation.memorySize != nil {
				memSize, overflow := operation.memorySize(stack)
				if overflow {
					return nil, ErrGasUintOverflow
				}
				// memory is expanded in words of 32 bytes. Gas
				// is also calculated in words.
				if memorySize, overflow = math.SafeMul(toWordSize(memSize), 32); overflow {
					return nil, ErrGasUintOverflow
				}
				if mem.exceedsLimit(memorySize) {
					return nil, ErrMemoryLimitExceeded
				}
			}
			// Consume the gas and return an error if not enough gas is available.
			// cost is explicitly set so that the capture state defer method can get the proper cost
			var dynamicCost uint64
			dynamicCost, err = operation.dynamicGas(in, contract, stack, mem, memorySize)
			cost += dynamicCost // for tracing
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrOutOfGas, err)
			}
			// for tracing: this gas consumption event is emitted below in the debug section.
			if contract.Gas < dynamicCost {
				return nil, ErrOutOfGas
			} else {
				contract.Gas -= dynamicCost
			}
		}

		// Do tracing before potential memory expansion
		if debug {
			if in.cfg.Tracer.OnGasChange != nil {
				in.cfg.Tracer.OnGasChange(gasCopy, gasCopy-cost, tracing.GasChangeCallOpCode)
			}
			if in.cfg.Tracer.OnOpcode != nil {
				in.cfg.Tracer.OnOpcode(pc, byte(op), gasCopy, cost, callContext, in.returnData, in.depth, VMErrorFromErr(err))
				logged = true
			}
		}
		if memorySize > 0 {
			mem.Resize(memorySize)
		}

		// execute the operation
		pc++
		res, err = operation.execute(&pc, in, callContext)
		if err != nil || operation.halts {
			break
		}
	}
	return res, err
}
