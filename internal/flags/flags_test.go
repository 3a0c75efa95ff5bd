// Copyright 2015 The go-ethereum Authors
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

package flags

import (
	"runtime"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestPathExpansion(t *testing.T) {
	home := HomeDir()
	tests := map[string]string{
		"/home/someuser/tmp": "/home/someuser/tmp",
		"~/tmp":              home + "/tmp",
		"~thisOtherUser/b/":  "~thisOtherUser/b",
		"$DDDXXX/a/b":        "/tmp/a/b",
		"/a/b/":              "/a/b",
	}
	if runtime.GOOS == "windows" {
		t.Skip("unix paths only")
	}
	t.Setenv("DDDXXX", "/tmp")
	for test, expected := range tests {
		assert.Equal(t, expected, expandPath(test), "input %s", test)
	}
}

func TestUint256Value(t *testing.T) {
	v := new(u256Value)
	assert.NoError(t, v.Set("0x10"))
	assert.Equal(t, uint64(16), (*uint256.Int)(v).Uint64())
	assert.NoError(t, v.Set("1000000000000000000"))
	assert.Equal(t, "1000000000000000000", v.String())
	assert.Error(t, v.Set("nope"))
}

func TestNewApp(t *testing.T) {
	app := NewApp("test usage")
	assert.Equal(t, "test usage", app.Usage)
	assert.NotEmpty(t, app.Version)
}
