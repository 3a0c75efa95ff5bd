// Copyright 2016 The go-ethereum Authors
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

// Package debug wires the logging and profiling command line flags into the
// log package.
package debug

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/0xrusowsky/goevm/internal/flags"
	"github.com/0xrusowsky/goevm/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Interpreter log level (0=off, 1=error, 2=warn, 3=info, 4=debug, 5=trace)",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	logVmoduleFlag = &cli.StringFlag{
		Name:     "log.vmodule",
		Usage:    "Log level overrides per source path, as <glob>=<level>[,...] (e.g. core/vm/*=5)",
		Aliases:  []string{"vmodule"},
		Category: flags.LoggingCategory,
	}
	logFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log record encoding: terminal, logfmt or json",
		Value:    "terminal",
		Category: flags.LoggingCategory,
	}
	logFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Also append log records to this file",
		Category: flags.LoggingCategory,
	}
	logRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Rotate the log file instead of growing it forever",
		Category: flags.LoggingCategory,
	}
	logMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Size in megabytes at which the log file is rotated",
		Value:    100,
		Category: flags.LoggingCategory,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Rotated log files kept on disk",
		Value:    10,
		Category: flags.LoggingCategory,
	}
	logMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Days a rotated log file is kept",
		Value:    30,
		Category: flags.LoggingCategory,
	}
	logCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Gzip rotated log files",
		Category: flags.LoggingCategory,
	}
	cpuprofileFlag = &cli.StringFlag{
		Name:     "pprof.cpuprofile",
		Usage:    "Record a CPU profile of the run into this file",
		Category: flags.LoggingCategory,
	}
)

// Flags lists the logging and profiling flags understood by Setup.
// Flags 为 Setup 所识别的日志与性能分析标志。
var Flags = []cli.Flag{
	verbosityFlag,
	logVmoduleFlag,
	logFormatFlag,
	logFileFlag,
	logRotateFlag,
	logMaxSizeMBsFlag,
	logMaxBackupsFlag,
	logMaxAgeFlag,
	logCompressFlag,
	cpuprofileFlag,
}

// logFile is the file sink opened by Setup, closed again by Exit.
var logFile io.WriteCloser

// Setup installs the default logger described by the flags and starts CPU
// profiling when requested. Call it before anything logs.
// Setup 按标志安装默认日志器，并按需启动 CPU 性能分析。
func Setup(ctx *cli.Context) error {
	format := ctx.String(logFormatFlag.Name)
	color := format == "terminal" && stderrIsTerminal()

	console := io.Writer(os.Stderr)
	if color {
		console = colorable.NewColorableStderr()
	}
	sink, where, err := openLogFile(ctx)
	if err != nil {
		return err
	}
	out := console
	if sink != nil {
		logFile = sink
		out = io.MultiWriter(console, sink)
	}
	handler, err := newHandler(format, out, color)
	if err != nil {
		return err
	}
	glog := log.NewGlogHandler(handler)
	glog.Verbosity(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))
	if err := glog.Vmodule(ctx.String(logVmoduleFlag.Name)); err != nil {
		return fmt.Errorf("invalid --%s: %w", logVmoduleFlag.Name, err)
	}
	log.SetDefault(log.NewLogger(glog))

	if where != "" {
		log.Info("Logging to file", "location", where, "format", format, "rotate", ctx.Bool(logRotateFlag.Name))
	}
	if file := ctx.String(cpuprofileFlag.Name); file != "" {
		return StartCPUProfile(file)
	}
	return nil
}

// newHandler maps a --log.format value onto a record handler.
func newHandler(format string, out io.Writer, color bool) (slog.Handler, error) {
	switch format {
	case "json":
		return log.JSONHandler(out), nil
	case "logfmt":
		return log.LogfmtHandler(out), nil
	case "", "terminal":
		return log.NewTerminalHandler(out, color), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// openLogFile returns the file sink selected by --log.file and --log.rotate,
// or nil when logs only go to the console.
// 根据 --log.file 与 --log.rotate 打开日志文件。
func openLogFile(ctx *cli.Context) (io.WriteCloser, string, error) {
	name := ctx.String(logFileFlag.Name)
	rotate := ctx.Bool(logRotateFlag.Name)
	if name == "" && !rotate {
		return nil, "", nil
	}
	if name != "" {
		if err := checkWritable(filepath.Dir(name)); err != nil {
			return nil, "", fmt.Errorf("log file %s: %w", name, err)
		}
	}
	if !rotate {
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		return f, name, err
	}
	where := name
	if where == "" {
		// lumberjack's own fallback location
		where = filepath.Join(os.TempDir(), filepath.Base(os.Args[0])+"-lumberjack.log")
	}
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    ctx.Int(logMaxSizeMBsFlag.Name),
		MaxBackups: ctx.Int(logMaxBackupsFlag.Name),
		MaxAge:     ctx.Int(logMaxAgeFlag.Name),
		Compress:   ctx.Bool(logCompressFlag.Name),
	}, where, nil
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
}

// Exit stops profiling and closes the log file.
func Exit() {
	if err := StopCPUProfile(); err != nil && !errors.Is(err, errNoProfile) {
		log.Warn("Failed to stop CPU profile", "err", err)
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// checkWritable creates dir if needed and makes sure files can be made in it.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".evm-log-check")
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(f.Name())
}
