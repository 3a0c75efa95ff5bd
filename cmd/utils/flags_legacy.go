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

package utils

import (
	"fmt"

	"github.com/0xrusowsky/goevm/internal/flags"
	"github.com/urfave/cli/v2"
)

// DeprecatedFlags lists all flags that are still accepted but superseded by
// the trace.* flags.
var DeprecatedFlags = []cli.Flag{
	NoMemoryFlag,
	NoStackFlag,
	NoStorageFlag,
	NoReturnDataFlag,
}

var (
	// Deprecated in favour of --trace.memory, memory capture is off by default
	NoMemoryFlag = &cli.BoolFlag{
		Name:     "nomemory",
		Usage:    "Disable memory output (deprecated, use --trace.memory)",
		Value:    true,
		Category: flags.DeprecatedCategory,
	}
	NoStackFlag = &cli.BoolFlag{
		Name:     "nostack",
		Usage:    "Disable stack output (deprecated, use --trace.nostack)",
		Category: flags.DeprecatedCategory,
	}
	NoStorageFlag = &cli.BoolFlag{
		Name:     "nostorage",
		Usage:    "Disable storage output (deprecated, use --trace.nostorage)",
		Category: flags.DeprecatedCategory,
	}
	// Deprecated in favour of --trace.returndata, return data is off by default
	NoReturnDataFlag = &cli.BoolFlag{
		Name:     "noreturndata",
		Usage:    "Disable return data output (deprecated, use --trace.returndata)",
		Value:    true,
		Category: flags.DeprecatedCategory,
	}
)

// ShowDeprecated prints a warning for every deprecated flag the user set.
// ShowDeprecated 为用户设置的每个已弃用标志打印警告。
func ShowDeprecated(ctx *cli.Context) {
	for _, flag := range DeprecatedFlags {
		name := flag.Names()[0]
		if ctx.IsSet(name) {
			fmt.Fprintf(ctx.App.ErrWriter, "WARNING: flag --%s is deprecated\n", name)
		}
	}
}
