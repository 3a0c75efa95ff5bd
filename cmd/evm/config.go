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
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/0xrusowsky/goevm/cmd/utils"
	"github.com/0xrusowsky/goevm/common"
	"github.com/0xrusowsky/goevm/core/vm"
	"github.com/0xrusowsky/goevm/eth/tracers/logger"
	"github.com/0xrusowsky/goevm/internal/flags"
	"github.com/0xrusowsky/goevm/node"
	"github.com/0xrusowsky/goevm/params"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       flags.Merge([]cli.Flag{configFileFlag}, vmFlags, envFlags, traceFlags, utils.DatabaseFlags),
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		if deprecatedConfigFields[id] {
			// Deprecated fields are accepted and ignored.
			return nil
		}
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// deprecatedConfigFields mirror the deprecated trace flags.
var deprecatedConfigFields = map[string]bool{
	"main.traceConfig.NoMemory":     true,
	"main.traceConfig.NoStack":      true,
	"main.traceConfig.NoStorage":    true,
	"main.traceConfig.NoReturnData": true,
}

// runtimeConfig is the [Runtime] section: the execution environment of a run.
type runtimeConfig struct {
	Fork        string
	Gas         uint64
	GasPrice    *big.Int
	Value       *big.Int
	Sender      string
	Receiver    string
	Coinbase    string
	BlockNumber uint64
	Time        uint64
	BaseFee     *big.Int `toml:",omitempty"`

	ExtraEips       []int  `toml:",omitempty"`
	MemoryLimit     uint64 `toml:",omitempty"`
	JumpDestCacheMB int    `toml:",omitempty"`
}

// traceConfig is the [Log] section: how execution steps are reported.
type traceConfig struct {
	Debug            bool // full human readable trace to stderr
	JSON             bool // one JSON object per step to stderr
	EnableMemory     bool
	DisableStack     bool
	DisableStorage   bool
	EnableReturnData bool
	Limit            int `toml:",omitempty"`
}

// evmConfig is the complete file configuration of the evm tool.
// evmConfig 是 evm 工具的完整配置文件结构。
type evmConfig struct {
	Runtime  runtimeConfig
	Database node.Config
	Log      traceConfig
}

func defaultConfig() evmConfig {
	return evmConfig{
		Runtime: runtimeConfig{
			Fork:     "cancun",
			Gas:      10000000000,
			GasPrice: new(big.Int),
			Value:    new(big.Int),
			Sender:   "sender",
			Receiver: "receiver",
		},
		Database: node.Config{
			Name:            clientIdentifier,
			DBEngine:        node.DefaultConfig.DBEngine,
			DatabaseCache:   node.DefaultConfig.DatabaseCache,
			DatabaseHandles: node.DefaultConfig.DatabaseHandles,
		},
	}
}

func loadConfig(file string, cfg *evmConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// loadBaseConfig loads the evmConfig based on the given command line
// parameters and config file. Flags set by the user win over the file.
// loadBaseConfig 依次应用默认值、配置文件与用户设置的命令行标志。
func loadBaseConfig(ctx *cli.Context) (evmConfig, error) {
	cfg := defaultConfig()

	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	setRuntimeConfig(ctx, &cfg.Runtime)
	setTraceConfig(ctx, &cfg.Log)
	utils.SetNodeConfig(ctx, &cfg.Database)

	if _, err := chainConfig(cfg.Runtime.Fork); err != nil {
		return cfg, err
	}
	for _, eip := range cfg.Runtime.ExtraEips {
		if !vm.ValidEip(eip) {
			return cfg, fmt.Errorf("unsupported eip %d, available: %s", eip, strings.Join(vm.ActivateableEips(), ", "))
		}
	}
	return cfg, nil
}

func setRuntimeConfig(ctx *cli.Context, cfg *runtimeConfig) {
	if ctx.IsSet(ForkFlag.Name) {
		cfg.Fork = ctx.String(ForkFlag.Name)
	}
	if ctx.IsSet(EipsFlag.Name) {
		cfg.ExtraEips = ctx.IntSlice(EipsFlag.Name)
	}
	if ctx.IsSet(GasFlag.Name) {
		cfg.Gas = ctx.Uint64(GasFlag.Name)
	}
	if ctx.IsSet(PriceFlag.Name) {
		cfg.GasPrice = flags.GlobalUint256(ctx, PriceFlag.Name).ToBig()
	}
	if ctx.IsSet(ValueFlag.Name) {
		cfg.Value = flags.GlobalUint256(ctx, ValueFlag.Name).ToBig()
	}
	if ctx.IsSet(BaseFeeFlag.Name) {
		cfg.BaseFee = flags.GlobalUint256(ctx, BaseFeeFlag.Name).ToBig()
	}
	if ctx.IsSet(SenderFlag.Name) {
		cfg.Sender = ctx.String(SenderFlag.Name)
	}
	if ctx.IsSet(ReceiverFlag.Name) {
		cfg.Receiver = ctx.String(ReceiverFlag.Name)
	}
	if ctx.IsSet(CoinbaseFlag.Name) {
		cfg.Coinbase = ctx.String(CoinbaseFlag.Name)
	}
	if ctx.IsSet(BlockNumberFlag.Name) {
		cfg.BlockNumber = ctx.Uint64(BlockNumberFlag.Name)
	}
	if ctx.IsSet(TimestampFlag.Name) {
		cfg.Time = ctx.Uint64(TimestampFlag.Name)
	}
	if ctx.IsSet(MemoryLimitFlag.Name) {
		cfg.MemoryLimit = ctx.Uint64(MemoryLimitFlag.Name)
	}
	if ctx.IsSet(JumpDestCacheFlag.Name) {
		cfg.JumpDestCacheMB = ctx.Int(JumpDestCacheFlag.Name)
	}
}

func setTraceConfig(ctx *cli.Context, cfg *traceConfig) {
	if ctx.IsSet(DebugFlag.Name) {
		cfg.Debug = ctx.Bool(DebugFlag.Name)
	}
	if ctx.IsSet(MachineFlag.Name) {
		cfg.JSON = ctx.Bool(MachineFlag.Name)
	}
	// The deprecated negative flags come first so the trace.* flags win.
	if ctx.IsSet(utils.NoMemoryFlag.Name) {
		cfg.EnableMemory = !ctx.Bool(utils.NoMemoryFlag.Name)
	}
	if ctx.IsSet(utils.NoStackFlag.Name) {
		cfg.DisableStack = ctx.Bool(utils.NoStackFlag.Name)
	}
	if ctx.IsSet(utils.NoStorageFlag.Name) {
		cfg.DisableStorage = ctx.Bool(utils.NoStorageFlag.Name)
	}
	if ctx.IsSet(utils.NoReturnDataFlag.Name) {
		cfg.EnableReturnData = !ctx.Bool(utils.NoReturnDataFlag.Name)
	}
	if ctx.IsSet(TraceMemoryFlag.Name) {
		cfg.EnableMemory = ctx.Bool(TraceMemoryFlag.Name)
	}
	if ctx.IsSet(TraceDisableStackFlag.Name) {
		cfg.DisableStack = ctx.Bool(TraceDisableStackFlag.Name)
	}
	if ctx.IsSet(TraceDisableStorageFlag.Name) {
		cfg.DisableStorage = ctx.Bool(TraceDisableStorageFlag.Name)
	}
	if ctx.IsSet(TraceReturnDataFlag.Name) {
		cfg.EnableReturnData = ctx.Bool(TraceReturnDataFlag.Name)
	}
	if ctx.IsSet(TraceLimitFlag.Name) {
		cfg.Limit = ctx.Int(TraceLimitFlag.Name)
	}
}

// loggerConfig converts the [Log] section into the tracer options.
func (c *traceConfig) loggerConfig() *logger.Config {
	return &logger.Config{
		EnableMemory:     c.EnableMemory,
		DisableStack:     c.DisableStack,
		DisableStorage:   c.DisableStorage,
		EnableReturnData: c.EnableReturnData,
		Limit:            c.Limit,
	}
}

// chainConfig maps a fork name to the chain configuration activating it.
func chainConfig(fork string) (*params.ChainConfig, error) {
	switch strings.ToLower(fork) {
	case "", "cancun":
		return params.AllCancunChainConfig, nil
	case "shanghai":
		return params.ShanghaiChainConfig, nil
	case "merge", "paris":
		return params.MergedChainConfig, nil
	}
	return nil, fmt.Errorf("unsupported fork %q, want merge, shanghai or cancun", fork)
}

// parseAddress accepts a hex address, or any other string which is then
// right-aligned into an address like the historical "sender" name.
// parseAddress 接受十六进制地址；其他字符串按字节右对齐转换为地址。
func parseAddress(s string) common.Address {
	if common.IsHexAddress(s) {
		return common.HexToAddress(s)
	}
	return common.BytesToAddress([]byte(s))
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := loadBaseConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	var dump io.Writer = ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
