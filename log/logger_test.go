package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandler(out, false))
	l.Info("Frame exited", "depth", 1, "gas", uint64(1000000), "err", errors.New("out of gas"))

	have := out.String()
	assert.True(t, strings.HasPrefix(have, "INFO  ["), have)
	assert.Contains(t, have, "Frame exited")
	assert.Contains(t, have, "depth=1")
	assert.Contains(t, have, "gas=1,000,000")
	assert.Contains(t, have, `err="out of gas"`)
	assert.True(t, strings.HasSuffix(have, "\n"))
}

func TestTerminalHandlerLevel(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(NewTerminalHandlerWithLevel(out, LevelWarn, false))
	l.Info("dropped")
	assert.Empty(t, out.String())
	l.Warn("kept")
	assert.Contains(t, out.String(), "kept")
}

func TestJSONHandler(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(JSONHandler(out))
	l.Debug("word", "value", uint256.NewInt(42), "big", big.NewInt(7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "debug", rec["lvl"])
	assert.Equal(t, "word", rec["msg"])
	assert.Equal(t, "42", rec["value"])
	assert.Equal(t, "7", rec["big"])
}

func TestGlogHandler(t *testing.T) {
	out := new(bytes.Buffer)
	glog := NewGlogHandler(NewTerminalHandler(out, false))
	glog.Verbosity(LevelInfo)
	l := NewLogger(glog)

	l.Debug("hidden")
	assert.Empty(t, out.String())

	require.NoError(t, glog.Vmodule("logger_test.go=4"))
	l.Debug("shown")
	assert.Contains(t, out.String(), "shown")

	assert.Error(t, glog.Vmodule("broken"))
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
}

func TestFormatLogfmtUint64(t *testing.T) {
	assert.Equal(t, "99999", FormatLogfmtUint64(99999))
	assert.Equal(t, "100,000", FormatLogfmtUint64(100000))
	assert.Equal(t, "18,446,744,073,709,551,615", FormatLogfmtUint64(^uint64(0)))
}

func TestVmoduleGlobs(t *testing.T) {
	for _, tc := range []struct {
		glob, file string
		match      bool
	}{
		{"interpreter.go", "/src/core/vm/interpreter.go", true},
		{"vm", "/src/core/vm/evm.go", true},
		{"vm", "/src/core/vm/runtime/runtime.go", false},
		{"core/*", "/src/core/vm/runtime/runtime.go", true},
		{"core/*", "/src/cmd/evm/main.go", false},
	} {
		re, err := compileGlob(tc.glob)
		require.NoError(t, err)
		assert.Equal(t, tc.match, re.MatchString("+"+tc.file), "%s against %s", tc.glob, tc.file)
	}
}

func TestSetDefaultAcceptsAnyLogger(t *testing.T) {
	defer SetDefault(Root())

	out := new(bytes.Buffer)
	SetDefault(NewLogger(NewTerminalHandler(out, false)).With("component", "test"))
	Info("through the root")
	assert.Contains(t, out.String(), "component=test")
}
