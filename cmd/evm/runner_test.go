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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/0xrusowsky/goevm/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runEVM runs the command line tool with the given arguments, capturing
// its standard output and error streams.
func runEVM(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer, app.ErrWriter = &stdout, &stderr
	err := app.Run(append([]string{"evm"}, args...))
	return stdout.String(), stderr.String(), err
}

const (
	// returnCalldata returns the first calldata word.
	returnCalldata = "60003560005260206000f3"
	// deployReturn42 deploys a contract returning the word 42.
	deployReturn42 = "69602a60005260206000f3600052600a6016f3"
	// storeSlot0 stores 42 into slot zero.
	storeSlot0 = "602a600055"
	// returnSlot0 returns the word in slot zero.
	returnSlot0 = "60005460005260206000f3"
)

func TestRunAdd(t *testing.T) {
	out, _, err := runEVM(t, "run", "--code", "60016002016000526001601ff3")
	require.NoError(t, err)
	assert.Equal(t, "0x03\n", out)
}

func TestRunCodeArgument(t *testing.T) {
	out, _, err := runEVM(t, "run", "0x60016002016000526001601ff3")
	require.NoError(t, err)
	assert.Equal(t, "0x03\n", out)
}

func TestRunCalldata(t *testing.T) {
	out, _, err := runEVM(t, "run", "--code", returnCalldata, "--input", "0x01")
	require.NoError(t, err)
	assert.Equal(t, "0x01"+strings.Repeat("0", 62)+"\n", out)
}

func TestRunCodeFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "code.hex")
	require.NoError(t, os.WriteFile(fn, []byte("0x60016002016000526001601ff3\n"), 0644))

	out, _, err := runEVM(t, "run", "--codefile", fn)
	require.NoError(t, err)
	assert.Equal(t, "0x03\n", out)
}

func TestRunRevert(t *testing.T) {
	out, _, err := runEVM(t, "run", "--code", "60006000fd")
	require.NoError(t, err)
	assert.Equal(t, "0x\n error: execution reverted\n", out)
}

func TestRunInvalidCode(t *testing.T) {
	_, _, err := runEVM(t, "run", "--code", "6001f")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid code")
}

func TestRunNoCode(t *testing.T) {
	_, _, err := runEVM(t, "run")
	require.Error(t, err)
}

func TestRunUnknownFork(t *testing.T) {
	_, _, err := runEVM(t, "run", "--fork", "frontier", "--code", "00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported fork")
}

func TestRunCreate(t *testing.T) {
	out, _, err := runEVM(t, "run", "--create", "--code", deployReturn42)
	require.NoError(t, err)
	assert.Equal(t, "0x602a60005260206000f3\n", out)
}

func TestRunOutOfGas(t *testing.T) {
	out, _, err := runEVM(t, "run", "--gas", "2", "--code", "6001600201")
	require.NoError(t, err)
	assert.Equal(t, "0x\n error: out of gas\n", out)
}

func TestRunPersistentState(t *testing.T) {
	datadir := t.TempDir()

	out, _, err := runEVM(t, "run", "--datadir", datadir, "--code", storeSlot0)
	require.NoError(t, err)
	assert.Equal(t, "0x\n", out)

	want := "0x" + strings.Repeat("0", 62) + "2a\n"
	out, _, err = runEVM(t, "run", "--datadir", datadir, "--code", returnSlot0)
	require.NoError(t, err)
	assert.Equal(t, want, out)

	// Without code the deployed code of the receiver runs.
	out, _, err = runEVM(t, "run", "--datadir", datadir)
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestRunDump(t *testing.T) {
	out, _, err := runEVM(t, "run", "--dump", "--code", storeSlot0)
	require.NoError(t, err)
	assert.Contains(t, out, "0x0000000000000000000000007265636569766572")
	assert.Contains(t, out, "2a")
}

func TestRunJSONTrace(t *testing.T) {
	out, stderr, err := runEVM(t, "run", "--json", "--code", "6001600201")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, `"opName":"PUSH1"`)
	assert.Contains(t, stderr, `"opName":"ADD"`)
	assert.Contains(t, stderr, `"gasUsed"`)
}

func TestRunDebugTrace(t *testing.T) {
	_, stderr, err := runEVM(t, "run", "--debug", "--code", "6001600201")
	require.NoError(t, err)
	assert.Contains(t, stderr, "#### TRACE ####")
	assert.Contains(t, stderr, "PUSH1")
	assert.Contains(t, stderr, "#### LOGS ####")
}

func TestRunDebugLogs(t *testing.T) {
	// LOG0 with one byte of memory.
	_, stderr, err := runEVM(t, "run", "--debug", "--code", "60ff60005360016000a0")
	require.NoError(t, err)
	assert.Contains(t, stderr, "LOG0")
	assert.Contains(t, stderr, "ff")
}

func TestRunStats(t *testing.T) {
	_, stderr, err := runEVM(t, "run", "--stat", "--jumpdest.cache", "1", "--code", "6001600201")
	require.NoError(t, err)
	assert.Contains(t, stderr, "EVM gas used")
	assert.Contains(t, stderr, "jumpdest misses")
}

func TestCompileCommand(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "add.easm")
	require.NoError(t, os.WriteFile(fn, []byte("push 1\npush 2\nadd\n"), 0644))

	out, _, err := runEVM(t, "compile", fn)
	require.NoError(t, err)
	assert.Equal(t, "6001600201\n", out)
}

func TestCompileErrors(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "bad.easm")
	require.NoError(t, os.WriteFile(fn, []byte("foo\n"), 0644))

	_, _, err := runEVM(t, "compile", fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown instruction "foo"`)
	assert.Contains(t, err.Error(), fn)
}

func TestDisasmCommand(t *testing.T) {
	out, _, err := runEVM(t, "disasm", "--input", "0x6001600201")
	require.NoError(t, err)
	assert.Equal(t, "6001600201\n00000: PUSH1 0x01\n00002: PUSH1 0x02\n00004: ADD\n", out)
}

func TestDisasmMissingInput(t *testing.T) {
	_, _, err := runEVM(t, "disasm")
	require.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	// A valid JUMPDEST followed by a 0x5b byte hidden in a push.
	out, _, err := runEVM(t, "analyze", "--code", "5b605b00")
	require.NoError(t, err)
	assert.Contains(t, out, "JUMPDEST")
	assert.Contains(t, out, "inside PUSH1 at 0x1")
}

func TestPushOwners(t *testing.T) {
	jt := vm.LookupInstructionSet(params.AllCancunChainConfig.Rules(0))
	report := analyzeCode([]byte{0x61, 0x5b, 0x5b, 0x5f, 0x60}, &jt)
	assert.Equal(t, map[uint64]uint64{1: 0, 2: 0}, report.owners)
}

func TestAnalyzeCode(t *testing.T) {
	jt := vm.LookupInstructionSet(params.AllCancunChainConfig.Rules(0))

	// PUSH1 3 JUMP JUMPDEST STOP INVALID JUMPDEST
	report := analyzeCode(common.FromHex("6003565b00fe5b"), &jt)
	require.Len(t, report.jumps, 1)
	assert.Equal(t, uint64(2), report.jumps[0].pc)
	assert.Equal(t, uint64(3), report.jumps[0].target.Uint64())
	assert.True(t, report.jumps[0].valid)
	assert.Equal(t, []uint64{5}, report.undefined)
	assert.Equal(t, uint64(1), report.dead)

	// A pushed target on a STOP is not a destination.
	report = analyzeCode(common.FromHex("6004565b00"), &jt)
	require.Len(t, report.jumps, 1)
	assert.False(t, report.jumps[0].valid)
}

func TestAnalyzeFork(t *testing.T) {
	out, _, err := runEVM(t, "analyze", "--fork", "merge", "--code", "5f00")
	require.NoError(t, err)
	assert.Contains(t, out, "undefined opcodes: 1")
	assert.Contains(t, out, "0x0: PUSH0")

	out, _, err = runEVM(t, "analyze", "--code", "5f00")
	require.NoError(t, err)
	assert.Contains(t, out, "undefined opcodes: 0")
	assert.Contains(t, out, "unreachable bytes: 0")
}

func TestDecodeHex(t *testing.T) {
	b, err := decodeHex([]byte(" 0x0102\n"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)

	_, err = decodeHex([]byte("012"))
	assert.Error(t, err)
	_, err = decodeHex([]byte("zz"))
	assert.Error(t, err)
}

func TestDBCommands(t *testing.T) {
	datadir := t.TempDir()
	_, _, err := runEVM(t, "run", "--datadir", datadir, "--code", storeSlot0)
	require.NoError(t, err)

	out, _, err := runEVM(t, "db", "dump", "--datadir", datadir)
	require.NoError(t, err)
	assert.Contains(t, out, "0x0000000000000000000000007265636569766572")
	assert.Contains(t, out, storeSlot0)

	out, _, err = runEVM(t, "db", "dump", "--nocode", "--datadir", datadir)
	require.NoError(t, err)
	assert.NotContains(t, out, storeSlot0)

	out, _, err = runEVM(t, "db", "inspect", "--datadir", datadir)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, _, err = runEVM(t, "db", "stats", "--datadir", datadir)
	require.NoError(t, err)
}

func TestDBCommandsNeedDatadir(t *testing.T) {
	_, _, err := runEVM(t, "db", "inspect")
	require.Error(t, err)

	_, _, err = runEVM(t, "db", "dump", "--datadir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no state database")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runEVM(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "evm\n"))
	assert.Contains(t, out, "Version: ")
}

func TestRunExtraEips(t *testing.T) {
	// PUSH0 only exists from Shanghai on.
	out, _, err := runEVM(t, "run", "--fork", "merge", "--code", "5f00")
	require.NoError(t, err)
	assert.Equal(t, "0x\n error: invalid opcode: PUSH0\n", out)

	out, _, err = runEVM(t, "run", "--fork", "merge", "--vm.eips", "3855", "--code", "5f00")
	require.NoError(t, err)
	assert.Equal(t, "0x\n", out)
}

func TestRunUnknownEip(t *testing.T) {
	_, _, err := runEVM(t, "run", "--vm.eips", "2", "--code", "00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported eip 2")
}
