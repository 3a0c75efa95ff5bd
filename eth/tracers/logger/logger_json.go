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

package logger

import (
	"encoding/json"
	"io"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/common/hexutil"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/holiman/uint256"
)

// callFrame is emitted when a frame is left.
type callFrame struct {
	Output  hexutil.Bytes  `json:"output"`
	GasUsed hexutil.Uint64 `json:"gasUsed"`
	Depth   int            `json:"depth"`
	Error   string         `json:"error,omitempty"`
}

// JSONLogger writes one JSON object per executed opcode, followed by a
// summary object for every frame that exits.
// JSONLogger 为每条执行的操作码输出一行 JSON，并在每个调用帧结束时输出汇总。
type JSONLogger struct {
	encoder *json.Encoder
	cfg     *Config
	env     *tracing.VMContext
}

// NewJSONLogger creates a new EVM tracer that prints execution steps as JSON objects
// into the provided stream.
func NewJSONLogger(cfg *Config, writer io.Writer) *tracing.Hooks {
	l := &JSONLogger{encoder: json.NewEncoder(writer), cfg: cfg}
	if l.cfg == nil {
		l.cfg = &Config{}
	}
	return &tracing.Hooks{
		OnTxStart: l.OnTxStart,
		OnExit:    l.OnExit,
		OnOpcode:  l.OnOpcode,
		OnFault:   l.OnFault,
	}
}

func (l *JSONLogger) OnFault(pc uint64, op byte, gas uint64, cost uint64, scope tracing.OpContext, depth int, err error) {
	// Re-emit the failing step with the error attached.
	l.OnOpcode(pc, op, gas, cost, scope, nil, depth, err)
}

func (l *JSONLogger) OnOpcode(pc uint64, op byte, gas, cost uint64, scope tracing.OpContext, rData []byte, depth int, err error) {
	memory := scope.MemoryData()
	stack := scope.StackData()

	log := StructLog{
		Pc:         pc,
		Op:         vm.OpCode(op),
		Gas:        gas,
		GasCost:    cost,
		MemorySize: len(memory),
		Depth:      depth,
		Err:        err,
	}
	if l.env != nil && l.env.StateDB != nil {
		log.RefundCounter = l.env.StateDB.GetRefund()
	}
	if l.cfg.EnableMemory {
		log.Memory = common.CopyBytes(memory)
	}
	if !l.cfg.DisableStack {
		log.Stack = make([]uint256.Int, len(stack))
		copy(log.Stack, stack)
	}
	if l.cfg.EnableReturnData {
		log.ReturnData = common.CopyBytes(rData)
	}
	l.encoder.Encode(log)
}

func (l *JSONLogger) OnExit(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
	frame := callFrame{
		Output:  output,
		GasUsed: hexutil.Uint64(gasUsed),
		Depth:   depth,
	}
	if err != nil {
		frame.Error = err.Error()
	}
	l.encoder.Encode(frame)
}

func (l *JSONLogger) OnTxStart(env *tracing.VMContext, from common.Address, to *common.Address, input []byte, gas uint64) {
	l.env = env
}
