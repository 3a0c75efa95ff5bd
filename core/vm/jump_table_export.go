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
	"github.com/0xrusowsky/goevm/params"
)

// instructionSet selects the prebuilt table of the newest fork the rules
// activate. The result is shared and must not be modified.
func instructionSet(rules params.Rules) *JumpTable {
	switch {
	case rules.IsCancun:
		return &cancunInstructionSet
	case rules.IsShanghai:
		return &shanghaiInstructionSet
	}
	return &mergeInstructionSet
}

// LookupInstructionSet returns a copy of the instruction set for the fork
// configured by the rules. Tools use it to classify opcodes the way the
// interpreter would.
// LookupInstructionSet 返回规则所对应分叉指令集的副本，供工具按解释器的方式识别操作码。
func LookupInstructionSet(rules params.Rules) JumpTable {
	return *instructionSet(rules)
}

// Undefined reports whether the slot has no instruction assigned.
func (op *operation) Undefined() bool { return op.undefined }

// Halts reports whether executing the operation ends the frame.
func (op *operation) Halts() bool { return op.halts }

// IsPush reports whether the operation pushes an immediate from the code.
func (op *operation) IsPush() bool { return op.isPush }

// IsJump reports whether the operation moves the program counter to a
// stack supplied destination.
func (op *operation) IsJump() bool { return op.isJump }
