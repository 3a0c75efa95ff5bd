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
	"errors"
	"fmt"
	"os"

	"github.com/0xrusowsky/goevm/core/asm"
	"github.com/urfave/cli/v2"
)

var compileCommand = &cli.Command{
	Action:    compileCmd,
	Name:      "compile",
	Usage:     "Compiles easm source to evm binary",
	ArgsUsage: "<file>",
	Flags:     []cli.Flag{DebugFlag},
}

func compileCmd(ctx *cli.Context) error {
	debug := ctx.Bool(DebugFlag.Name)

	if ctx.Args().Len() != 1 {
		return errors.New("filename required")
	}
	fn := ctx.Args().First()
	src, err := os.ReadFile(fn)
	if err != nil {
		return err
	}

	bin, err := compile(string(src), debug)
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	fmt.Fprintln(ctx.App.Writer, bin)
	return nil
}

// compile assembles the easm source into hex encoded bytecode.
// compile 将 easm 源码汇编为十六进制字节码。
func compile(program string, debug bool) (string, error) {
	compiler := asm.NewCompiler(debug)
	compiler.Feed(asm.Lex([]byte(program), debug))

	bin, compileErrs := compiler.Compile()
	if len(compileErrs) > 0 {
		return "", errors.Join(compileErrs...)
	}
	return bin, nil
}
