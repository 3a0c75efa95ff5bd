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

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/0xrusowsky/goevm/cmd/utils"
	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/holiman/uint256"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var analyzeCommand = &cli.Command{
	Action:    analyzeCmd,
	Name:      "analyze",
	Usage:     "Prints the jump destination table of evm binary",
	ArgsUsage: "<code>",
	Description: `The analyze command runs the jump destination analysis over the code and
lists every 0x5b byte together with the reason it is, or is not, a valid jump target.
Opcodes are classified with the instruction set of --fork: it lists the jumps whose
destination is pushed right before them, the opcodes the fork does not define and
the bytes no execution can reach.`,
	Flags: []cli.Flag{CodeFlag, CodeFileFlag, ForkFlag},
}

func analyzeCmd(ctx *cli.Context) error {
	utils.CheckExclusive(ctx, CodeFlag, CodeFileFlag)
	code, err := readCode(ctx)
	if err != nil {
		return err
	}
	if code == nil {
		return errors.New("missing code, use --code, --codefile or an argument")
	}
	chain, err := chainConfig(ctx.String(ForkFlag.Name))
	if err != nil {
		return err
	}
	jt := vm.LookupInstructionSet(chain.Rules(0))
	analyzeCode(code, &jt).write(ctx.App.Writer)
	return nil
}

// staticJump is a JUMP or JUMPI whose destination is the operand of the
// push right before it.
type staticJump struct {
	pc     uint64
	op     vm.OpCode
	target *uint256.Int
	valid  bool
}

// codeReport is the result of walking the code instruction by instruction.
// codeReport 是逐条指令遍历代码得到的分析结果。
type codeReport struct {
	code      *vm.Bytecode
	owners    map[uint64]uint64 // push data byte => pc of the owning push
	jumps     []staticJump
	undefined []uint64 // pcs of opcodes outside the instruction set
	dead      uint64   // bytes after a halting instruction that no JUMPDEST revives
}

func analyzeCode(code []byte, jt *vm.JumpTable) *codeReport {
	r := &codeReport{
		code:   vm.NewBytecode(code).Analyze(),
		owners: make(map[uint64]uint64),
	}
	var (
		size      = uint64(len(code))
		reachable = true
		pushed    []byte // operand of the previous instruction, if a push
	)
	for pc := uint64(0); pc < size; {
		op := vm.OpCode(code[pc])
		info := jt[op]
		width := uint64(1)
		if info.IsPush() {
			width += uint64(op.Immediates())
		}
		if op == vm.JUMPDEST {
			reachable = true
		}
		if !reachable {
			r.dead += min(width, size-pc)
		}
		switch {
		case info.Undefined():
			r.undefined = append(r.undefined, pc)
		case info.IsJump() && pushed != nil:
			target := new(uint256.Int).SetBytes(pushed)
			r.jumps = append(r.jumps, staticJump{
				pc:     pc,
				op:     op,
				target: target,
				valid:  target.IsUint64() && r.code.IsJumpdest(target.Uint64()),
			})
		}
		pushed = nil
		if info.IsPush() {
			// A push cut short by the end of the code reads zeros.
			end := min(pc+width, size)
			for i := pc + 1; i < end; i++ {
				r.owners[i] = pc
			}
			pushed = common.RightPadBytes(code[min(pc+1, size):end], op.Immediates())
		}
		if info.Halts() {
			reachable = false
		}
		pc += width
	}
	return r
}

func (r *codeReport) write(w io.Writer) {
	var rows [][]string
	for pc, b := range r.code.Original() {
		if vm.OpCode(b) != vm.JUMPDEST {
			continue
		}
		valid, reason := "yes", "JUMPDEST"
		if !r.code.IsJumpdest(uint64(pc)) {
			owner := r.owners[uint64(pc)]
			valid, reason = "no", fmt.Sprintf("inside %v at %#x", r.code.OpAt(owner), owner)
		}
		rows = append(rows, []string{fmt.Sprintf("%#x", pc), valid, reason})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PC", "Valid", "Reason"})
	table.SetFooter([]string{fmt.Sprintf("%d bytes", r.code.Len()), "Total", fmt.Sprintf("%d valid", r.code.JumpTable().Count())})
	table.AppendBulk(rows)
	table.Render()

	if len(r.jumps) > 0 {
		jumps := tablewriter.NewWriter(w)
		jumps.SetHeader([]string{"PC", "Op", "Target", "Valid"})
		for _, j := range r.jumps {
			valid := "no"
			if j.valid {
				valid = "yes"
			}
			jumps.Append([]string{fmt.Sprintf("%#x", j.pc), j.op.String(), j.target.Hex(), valid})
		}
		jumps.Render()
	}
	fmt.Fprintf(w, "undefined opcodes: %d\n", len(r.undefined))
	for _, pc := range r.undefined {
		fmt.Fprintf(w, "  %#x: %v\n", pc, r.code.OpAt(pc))
	}
	fmt.Fprintf(w, "unreachable bytes: %d\n", r.dead)
}
