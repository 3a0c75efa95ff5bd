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

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/0xrusowsky/goevm/cmd/utils"
	"github.com/0xrusowsky/goevm/common/hexutil"
	"github.com/0xrusowsky/goevm/core/state"
	"github.com/0xrusowsky/goevm/core/tracing"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/0xrusowsky/goevm/core/vm/runtime"
	"github.com/0xrusowsky/goevm/eth/tracers/logger"
	"github.com/0xrusowsky/goevm/internal/flags"
	"github.com/0xrusowsky/goevm/internal/shutdowncheck"
	"github.com/0xrusowsky/goevm/log"
	"github.com/0xrusowsky/goevm/node"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

// stateDatabaseName is the directory of the state database inside the
// instance directory.
const stateDatabaseName = "statedata"

var runCommand = &cli.Command{
	Action:    runCmd,
	Name:      "run",
	Usage:     "Run arbitrary evm binary",
	ArgsUsage: "<code>",
	Description: `The run command runs arbitrary EVM code.
The code is taken from --code, --codefile or the first argument, in that order.
Without any code the code already deployed at the receiver is executed.`,
	Flags: flags.Merge(
		[]cli.Flag{configFileFlag, StatDumpFlag, DumpFlag},
		vmFlags,
		envFlags,
		traceFlags,
		utils.DatabaseFlags,
		utils.DeprecatedFlags,
	),
}

// execStats holds the measurements of a single execution.
type execStats struct {
	Time           time.Duration // The execution time.
	Allocs         int64         // The number of heap allocations during execution.
	BytesAllocated int64         // The cumulative number of bytes allocated during execution.
	GasUsed        uint64        // the amount of gas used during execution
}

func timedExec(execFunc func() ([]byte, uint64, error)) ([]byte, execStats, error) {
	var (
		stats                         execStats
		memStatsBefore, memStatsAfter goruntime.MemStats
	)
	goruntime.ReadMemStats(&memStatsBefore)
	start := time.Now()
	output, gasUsed, err := execFunc()
	stats.Time = time.Since(start)
	goruntime.ReadMemStats(&memStatsAfter)

	stats.GasUsed = gasUsed
	stats.Allocs = int64(memStatsAfter.Mallocs - memStatsBefore.Mallocs)
	stats.BytesAllocated = int64(memStatsAfter.TotalAlloc - memStatsBefore.TotalAlloc)
	return output, stats, err
}

// decodeHex parses hex text with an optional 0x prefix, ignoring surrounding
// whitespace.
func decodeHex(data []byte) ([]byte, error) {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid input length for hex data (%d)", len(s))
	}
	return hex.DecodeString(s)
}

// readCode loads the code to execute. It returns nil if none was given.
func readCode(ctx *cli.Context) ([]byte, error) {
	var (
		hexcode []byte
		err     error
	)
	switch {
	case ctx.IsSet(CodeFlag.Name):
		hexcode = []byte(ctx.String(CodeFlag.Name))
	case ctx.IsSet(CodeFileFlag.Name):
		if fn := ctx.String(CodeFileFlag.Name); fn == "-" {
			hexcode, err = io.ReadAll(ctx.App.Reader)
		} else {
			hexcode, err = os.ReadFile(fn)
		}
		if err != nil {
			return nil, fmt.Errorf("could not load code from file: %v", err)
		}
	case ctx.NArg() > 0:
		hexcode = []byte(ctx.Args().First())
	default:
		return nil, nil
	}
	code, err := decodeHex(hexcode)
	if err != nil {
		return nil, fmt.Errorf("invalid code: %w", err)
	}
	return code, nil
}

// readInput loads the call data from --input or --inputfile.
func readInput(ctx *cli.Context) ([]byte, error) {
	var hexInput []byte
	switch {
	case ctx.IsSet(InputFlag.Name):
		hexInput = []byte(ctx.String(InputFlag.Name))
	case ctx.IsSet(InputFileFlag.Name):
		var err error
		if hexInput, err = os.ReadFile(ctx.String(InputFileFlag.Name)); err != nil {
			return nil, fmt.Errorf("could not load input from file: %v", err)
		}
	default:
		return nil, nil
	}
	input, err := decodeHex(hexInput)
	if err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return input, nil
}

func runCmd(ctx *cli.Context) error {
	utils.ShowDeprecated(ctx)
	utils.CheckExclusive(ctx, CodeFlag, CodeFileFlag)
	utils.CheckExclusive(ctx, InputFlag, InputFileFlag)
	utils.CheckExclusive(ctx, DebugFlag, MachineFlag)

	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	stack, err := node.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer stack.Close()

	db, err := stack.OpenDatabase(stateDatabaseName, false)
	if err != nil {
		return err
	}
	if !stack.Ephemeral() {
		tracker := shutdowncheck.NewShutdownTracker(db)
		tracker.MarkStartup()
		tracker.Start()
		defer tracker.Stop()
	}
	statedb, err := state.New(db)
	if err != nil {
		return err
	}
	code, err := readCode(ctx)
	if err != nil {
		return err
	}
	input, err := readInput(ctx)
	if err != nil {
		return err
	}
	var (
		sender   = parseAddress(cfg.Runtime.Sender)
		receiver = parseAddress(cfg.Runtime.Receiver)
		create   = ctx.Bool(CreateFlag.Name)

		tracer      *tracing.Hooks
		debugLogger *logger.StructLogger
		stdout      = ctx.App.Writer
		stderr      = ctx.App.ErrWriter
	)
	switch {
	case cfg.Log.JSON:
		tracer = logger.NewJSONLogger(cfg.Log.loggerConfig(), stderr)
	case cfg.Log.Debug:
		debugLogger = logger.NewStructLogger(cfg.Log.loggerConfig())
		tracer = debugLogger.Hooks()
	}
	chain, err := chainConfig(cfg.Runtime.Fork)
	if err != nil {
		return err
	}
	runtimeConfig := runtime.Config{
		ChainConfig: chain,
		Origin:      sender,
		Coinbase:    parseAddress(cfg.Runtime.Coinbase),
		State:       statedb,
		GasLimit:    cfg.Runtime.Gas,
		GasPrice:    cfg.Runtime.GasPrice,
		Value:       cfg.Runtime.Value,
		BlockNumber: new(big.Int).SetUint64(cfg.Runtime.BlockNumber),
		Time:        cfg.Runtime.Time,
		BaseFee:     cfg.Runtime.BaseFee,
		EVMConfig: vm.Config{
			Tracer:      tracer,
			ExtraEips:   cfg.Runtime.ExtraEips,
			MemoryLimit: cfg.Runtime.MemoryLimit,
		},
	}
	var jumpDests *vm.SharedJumpDests
	if cfg.Runtime.JumpDestCacheMB > 0 {
		jumpDests = vm.NewSharedJumpDests(cfg.Runtime.JumpDestCacheMB * 1024 * 1024)
		runtimeConfig.EVMConfig.JumpDestCache = jumpDests
	}

	var execFunc func() ([]byte, uint64, error)
	if create {
		initcode := append(code, input...)
		execFunc = func() ([]byte, uint64, error) {
			output, address, gasLeft, err := runtime.Create(initcode, &runtimeConfig)
			log.Info("Created contract", "address", address, "deployed", len(output), "err", err)
			return output, runtimeConfig.GasLimit - gasLeft, err
		}
	} else {
		if len(code) > 0 {
			statedb.SetCode(receiver, code)
		} else if statedb.GetCodeSize(receiver) == 0 {
			return errors.New("no code given and no code deployed at the receiver")
		}
		execFunc = func() ([]byte, uint64, error) {
			output, gasLeft, err := runtime.Call(receiver, input, &runtimeConfig)
			return output, runtimeConfig.GasLimit - gasLeft, err
		}
	}
	output, stats, err := timedExec(execFunc)

	if debugLogger != nil {
		fmt.Fprintln(stderr, "#### TRACE ####")
		logger.WriteTrace(stderr, debugLogger.StructLogs())
		fmt.Fprintln(stderr, "#### LOGS ####")
		logger.WriteLogs(stderr, statedb.Logs())
	}
	// Persist the post state, then dump it from the database.
	batch := db.NewBatch()
	if cerr := statedb.Commit(batch); cerr != nil {
		return fmt.Errorf("failed to commit state: %w", cerr)
	}
	if werr := batch.Write(); werr != nil {
		return fmt.Errorf("failed to write state: %w", werr)
	}
	log.Debug("Committed post state", "bytes", batch.ValueSize())
	if ctx.Bool(DumpFlag.Name) {
		fmt.Fprintln(stdout, string(statedb.Dump(nil)))
	}
	if ctx.Bool(StatDumpFlag.Name) {
		writeStats(stderr, stats, jumpDests)
	}
	if !cfg.Log.JSON {
		fmt.Fprintln(stdout, hexutil.Encode(output))
		if err != nil {
			fmt.Fprintf(stdout, " error: %v\n", err)
		}
	}
	return nil
}

// writeStats renders the execution measurements as a table.
// writeStats 以表格形式输出执行统计。
func writeStats(w io.Writer, stats execStats, jumpDests *vm.SharedJumpDests) {
	rows := [][]string{
		{"EVM gas used", fmt.Sprint(stats.GasUsed)},
		{"execution time", stats.Time.String()},
		{"allocations", fmt.Sprint(stats.Allocs)},
		{"allocated bytes", fmt.Sprint(stats.BytesAllocated)},
	}
	if jumpDests != nil {
		entries, hits, misses := jumpDests.Stats()
		rows = append(rows,
			[]string{"jumpdest entries", fmt.Sprint(entries)},
			[]string{"jumpdest hits", fmt.Sprint(hits)},
			[]string{"jumpdest misses", fmt.Sprint(misses)},
		)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk(rows)
	table.Render()
}
