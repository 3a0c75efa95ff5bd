// Copyright 2014 The go-ethereum Authors
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

// evm executes EVM code snippets.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/0xrusowsky/goevm/cmd/utils"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/0xrusowsky/goevm/internal/debug"
	"github.com/0xrusowsky/goevm/internal/flags"
	"github.com/0xrusowsky/goevm/internal/version"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "evm" // Instance name used below the data directory

var (
	DebugFlag = &cli.BoolFlag{
		Name:     "debug",
		Usage:    "output full trace logs",
		Category: flags.TraceCategory,
	}
	MachineFlag = &cli.BoolFlag{
		Name:     "json",
		Usage:    "output trace logs in machine readable format (json)",
		Category: flags.TraceCategory,
	}
	TraceMemoryFlag = &cli.BoolFlag{
		Name:     "trace.memory",
		Usage:    "enable memory capture in traces",
		Category: flags.TraceCategory,
	}
	TraceDisableStackFlag = &cli.BoolFlag{
		Name:     "trace.nostack",
		Usage:    "disable stack capture in traces",
		Category: flags.TraceCategory,
	}
	TraceDisableStorageFlag = &cli.BoolFlag{
		Name:     "trace.nostorage",
		Usage:    "disable storage capture in traces",
		Category: flags.TraceCategory,
	}
	TraceReturnDataFlag = &cli.BoolFlag{
		Name:     "trace.returndata",
		Usage:    "enable return data capture in traces",
		Category: flags.TraceCategory,
	}
	TraceLimitFlag = &cli.IntFlag{
		Name:     "trace.limit",
		Usage:    "maximum number of steps kept by the debug trace (0 = unlimited)",
		Category: flags.TraceCategory,
	}
	StatDumpFlag = &cli.BoolFlag{
		Name:     "statdump",
		Aliases:  []string{"stat"},
		Usage:    "displays stack and heap memory information",
		Category: flags.MiscCategory,
	}
	DumpFlag = &cli.BoolFlag{
		Name:     "dump",
		Usage:    "dumps the state after the run",
		Category: flags.StateCategory,
	}
	CodeFlag = &cli.StringFlag{
		Name:     "code",
		Usage:    "EVM code",
		Category: flags.VMCategory,
	}
	CodeFileFlag = &cli.StringFlag{
		Name:     "codefile",
		Usage:    "File containing EVM code. If '-' is specified, code is read from stdin ",
		Category: flags.VMCategory,
	}
	CreateFlag = &cli.BoolFlag{
		Name:     "create",
		Usage:    "indicates the action should be create rather than call",
		Category: flags.VMCategory,
	}
	ForkFlag = &cli.StringFlag{
		Name:     "fork",
		Usage:    "instruction set to run with ('merge', 'shanghai' or 'cancun')",
		Category: flags.VMCategory,
	}
	EipsFlag = &cli.IntSliceFlag{
		Name:     "vm.eips",
		Usage:    "additional EIPs to enable on top of the fork (" + strings.Join(vm.ActivateableEips(), ", ") + ")",
		Category: flags.VMCategory,
	}
	MemoryLimitFlag = &cli.Uint64Flag{
		Name:     "memlimit",
		Usage:    "maximum memory in bytes shared by all call frames (0 = default)",
		Category: flags.VMCategory,
	}
	JumpDestCacheFlag = &cli.IntFlag{
		Name:     "jumpdest.cache",
		Usage:    "megabytes of shared code analysis cache (0 = per run map)",
		Category: flags.VMCategory,
	}
	GasFlag = &cli.Uint64Flag{
		Name:     "gas",
		Usage:    "gas limit for the evm",
		Category: flags.VMCategory,
	}
	PriceFlag = &flags.Uint256Flag{
		Name:     "price",
		Usage:    "price set for the evm",
		Category: flags.EnvCategory,
	}
	ValueFlag = &flags.Uint256Flag{
		Name:     "value",
		Usage:    "value set for the evm",
		Category: flags.EnvCategory,
	}
	InputFlag = &cli.StringFlag{
		Name:     "input",
		Usage:    "input for the EVM",
		Category: flags.EnvCategory,
	}
	InputFileFlag = &cli.StringFlag{
		Name:     "inputfile",
		Usage:    "file containing input for the EVM",
		Category: flags.EnvCategory,
	}
	SenderFlag = &cli.StringFlag{
		Name:     "sender",
		Usage:    "The transaction origin, a hex address or a name",
		Category: flags.EnvCategory,
	}
	ReceiverFlag = &cli.StringFlag{
		Name:     "receiver",
		Usage:    "The transaction receiver (execution context), a hex address or a name",
		Category: flags.EnvCategory,
	}
	CoinbaseFlag = &cli.StringFlag{
		Name:     "coinbase",
		Usage:    "block beneficiary address",
		Category: flags.EnvCategory,
	}
	BlockNumberFlag = &cli.Uint64Flag{
		Name:     "blocknumber",
		Usage:    "block number of the execution context",
		Category: flags.EnvCategory,
	}
	TimestampFlag = &cli.Uint64Flag{
		Name:     "timestamp",
		Usage:    "block timestamp of the execution context",
		Category: flags.EnvCategory,
	}
	BaseFeeFlag = &flags.Uint256Flag{
		Name:     "basefee",
		Usage:    "block base fee",
		Category: flags.EnvCategory,
	}
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

var traceFlags = []cli.Flag{
	DebugFlag,
	MachineFlag,
	TraceMemoryFlag,
	TraceDisableStackFlag,
	TraceDisableStorageFlag,
	TraceReturnDataFlag,
	TraceLimitFlag,
}

var vmFlags = []cli.Flag{
	CodeFlag,
	CodeFileFlag,
	CreateFlag,
	ForkFlag,
	EipsFlag,
	MemoryLimitFlag,
	JumpDestCacheFlag,
	GasFlag,
}

var envFlags = []cli.Flag{
	PriceFlag,
	ValueFlag,
	InputFlag,
	InputFileFlag,
	SenderFlag,
	ReceiverFlag,
	CoinbaseFlag,
	BlockNumberFlag,
	TimestampFlag,
	BaseFeeFlag,
}

var versionCommand = &cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

func printVersion(ctx *cli.Context) error {
	fmt.Fprint(ctx.App.Writer, version.Info(clientIdentifier))
	return nil
}

func newApp() *cli.App {
	app := flags.NewApp("the evm command line interface")
	app.Flags = flags.Merge(
		[]cli.Flag{configFileFlag, StatDumpFlag, DumpFlag},
		traceFlags,
		vmFlags,
		envFlags,
		utils.DatabaseFlags,
		utils.DeprecatedFlags,
		debug.Flags,
	)
	app.Commands = []*cli.Command{
		runCommand,
		compileCommand,
		disasmCommand,
		analyzeCommand,
		dumpConfigCommand,
		dbCommand,
		versionCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		flags.MigrateGlobalFlags(ctx)
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
	return app
}

var app = newApp()

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
