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
	"os"
	"path/filepath"
	"testing"

	"github.com/0xrusowsky/goevm/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpConfig(t *testing.T) {
	out, _, err := runEVM(t, "dumpconfig", "--gas", "1234", "--fork", "shanghai")
	require.NoError(t, err)
	assert.Contains(t, out, "[Runtime]")
	assert.Contains(t, out, "[Database]")
	assert.Contains(t, out, "[Log]")
	assert.Contains(t, out, "Gas = 1234")
	assert.Contains(t, out, `Fork = "shanghai"`)
}

func TestConfigFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "evm.toml")
	require.NoError(t, os.WriteFile(fn, []byte("[Runtime]\nGas = 777\n\n[Log]\nDisableStack = true\n"), 0644))

	out, _, err := runEVM(t, "dumpconfig", "--config", fn)
	require.NoError(t, err)
	assert.Contains(t, out, "Gas = 777")
	assert.Contains(t, out, "DisableStack = true")

	// Flags win over the file.
	out, _, err = runEVM(t, "dumpconfig", "--config", fn, "--gas", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Gas = 5")
}

func TestConfigFileUnknownField(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "evm.toml")
	require.NoError(t, os.WriteFile(fn, []byte("[Runtime]\nBogus = 1\n"), 0644))

	_, _, err := runEVM(t, "dumpconfig", "--config", fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bogus")
}

func TestConfigFileDeprecatedField(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "evm.toml")
	require.NoError(t, os.WriteFile(fn, []byte("[Log]\nNoMemory = true\n"), 0644))

	_, _, err := runEVM(t, "dumpconfig", "--config", fn)
	require.NoError(t, err)
}

func TestDumpConfigToFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "dump.toml")
	_, _, err := runEVM(t, "dumpconfig", "--gas", "42", fn)
	require.NoError(t, err)

	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Gas = 42")
}

func TestChainConfig(t *testing.T) {
	for _, fork := range []string{"", "cancun", "Shanghai", "merge", "paris"} {
		cfg, err := chainConfig(fork)
		require.NoError(t, err, fork)
		assert.NotNil(t, cfg)
	}
	_, err := chainConfig("byzantium")
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	hex := "0x00000000000000000000000000000000000000aa"
	assert.Equal(t, common.HexToAddress(hex), parseAddress(hex))
	assert.Equal(t, "0x0000000000000000000000007265636569766572", parseAddress("receiver").Hex())
}
