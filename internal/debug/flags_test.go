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

package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/0xrusowsky/goevm/log"
	"github.com/stretchr/testify/require"
)

func TestNewHandlerFormats(t *testing.T) {
	var out bytes.Buffer
	for _, format := range []string{"", "terminal", "logfmt", "json"} {
		h, err := newHandler(format, &out, false)
		require.NoError(t, err, format)
		log.NewLogger(h).Info("hello", "format", format)
	}
	require.Contains(t, out.String(), `"msg":"hello"`)
	require.Contains(t, out.String(), "format=logfmt")

	_, err := newHandler("yaml", &out, false)
	require.ErrorContains(t, err, "unknown log format")
}

func TestCheckWritable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	require.NoError(t, checkWritable(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestExitWithoutProfile(t *testing.T) {
	require.ErrorIs(t, StopCPUProfile(), errNoProfile)
	Exit()
}
