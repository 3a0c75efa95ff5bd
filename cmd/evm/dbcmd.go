// Copyright 2020 The go-ethereum Authors
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
	"github.com/0xrusowsky/goevm/core/rawdb"
	"github.com/0xrusowsky/goevm/core/state"
	"github.com/0xrusowsky/goevm/ethdb"
	"github.com/0xrusowsky/goevm/internal/flags"
	"github.com/0xrusowsky/goevm/log"
	"github.com/0xrusowsky/goevm/node"
	"github.com/urfave/cli/v2"
)

var (
	dbCommand = &cli.Command{
		Name:      "db",
		Usage:     "Low level state database operations",
		ArgsUsage: "",
		Subcommands: []*cli.Command{
			dbInspectCmd,
			dbStatCmd,
			dbDumpCmd,
		},
	}
	dbInspectCmd = &cli.Command{
		Action:      inspect,
		Name:        "inspect",
		ArgsUsage:   " ",
		Flags:       flags.Merge([]cli.Flag{configFileFlag}, utils.DatabaseFlags),
		Usage:       "Inspect the storage size for each type of data in the database",
		Description: `This commands iterates the entire database and reports the size per data category.`,
	}
	dbStatCmd = &cli.Command{
		Action: dbStats,
		Name:   "stats",
		Usage:  "Print leveldb or pebble statistics",
		Flags:  flags.Merge([]cli.Flag{configFileFlag}, utils.DatabaseFlags),
	}
	dbDumpCmd = &cli.Command{
		Action: dbDump,
		Name:   "dump",
		Usage:  "Dump the committed accounts of the database as JSON",
		Flags: flags.Merge(
			[]cli.Flag{configFileFlag, dumpNoCodeFlag, dumpNoStorageFlag, dumpLimitFlag},
			utils.DatabaseFlags,
		),
	}

	dumpNoCodeFlag = &cli.BoolFlag{
		Name:  "nocode",
		Usage: "Exclude contract code from the dump",
	}
	dumpNoStorageFlag = &cli.BoolFlag{
		Name:  "nostorage",
		Usage: "Exclude storage entries from the dump",
	}
	dumpLimitFlag = &cli.Uint64Flag{
		Name:  "limit",
		Usage: "Max number of accounts to dump (0 = no limit)",
	}
)

// openStateDB opens the persisted state database read-only. The returned node
// must be closed by the caller.
// openStateDB 以只读方式打开持久化的状态数据库，调用方负责关闭返回的节点。
func openStateDB(ctx *cli.Context) (*node.Node, ethdb.Database, error) {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.DataDir == "" {
		return nil, nil, errors.New("database commands need a --datadir")
	}
	stack, err := node.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	path := stack.ResolvePath(stateDatabaseName)
	if rawdb.PreexistingDatabase(path) == "" {
		stack.Close()
		return nil, nil, fmt.Errorf("no state database at %s", path)
	}
	db, err := stack.OpenDatabase(stateDatabaseName, true)
	if err != nil {
		stack.Close()
		return nil, nil, err
	}
	return stack, db, nil
}

func inspect(ctx *cli.Context) error {
	stack, db, err := openStateDB(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	return rawdb.InspectDatabase(db, ctx.App.Writer)
}

func showDBStats(w io.Writer, db ethdb.KeyValueStater) {
	stats, err := db.Stat()
	if err != nil {
		log.Warn("Failed to read database stats", "error", err)
		return
	}
	fmt.Fprintln(w, stats)
}

func dbStats(ctx *cli.Context) error {
	stack, db, err := openStateDB(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	showDBStats(ctx.App.Writer, db)
	return nil
}

func dbDump(ctx *cli.Context) error {
	stack, db, err := openStateDB(ctx)
	if err != nil {
		return err
	}
	defer stack.Close()

	statedb, err := state.New(db)
	if err != nil {
		return err
	}
	conf := &state.DumpConfig{
		SkipCode:    ctx.Bool(dumpNoCodeFlag.Name),
		SkipStorage: ctx.Bool(dumpNoStorageFlag.Name),
		Max:         ctx.Uint64(dumpLimitFlag.Name),
	}
	fmt.Fprintln(ctx.App.Writer, string(statedb.Dump(conf)))
	return nil
}
