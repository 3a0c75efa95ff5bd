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

package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(src string) (string, []error) {
	c := NewCompiler(false)
	c.Feed(Lex([]byte(src), false))
	return c.Compile()
}

func TestCompiler(t *testing.T) {
	tests := []struct {
		input, output string
	}{
		{
			input:  "push 1\npush 2\nadd",
			output: "6001600201",
		},
		{
			input:  "PUSH 0x1234\nPUSH0",
			output: "6112345f",
		},
		{
			input:  "push 0",
			output: "6000",
		},
		{
			input:  `push "ab"`,
			output: "616162",
		},
		{
			input: `
	start:
		push 1
		jump @start
	`,
			output: "5b" + "6001" + "630000000056",
		},
		{
			input: `
	jump @end
	push 1
	end:
	stop
	`,
			output: "630000000856" + "6001" + "5b" + "00",
		},
		{
			input:  "jump 3\njumpdest",
			output: "6003565b",
		},
		{
			input: `
	push 1
	push @x
	jumpi
	x:
	`,
			output: "6001630000000857" + "5b",
		},
		{
			input:  ";; header\npush 1 ; one\n\n\nsha3",
			output: "600120",
		},
	}
	for _, test := range tests {
		have, errs := compile(test.input)
		require.Empty(t, errs, "input %q", test.input)
		assert.Equal(t, test.output, have, "input %q", test.input)
	}
}

func TestCompilerErrors(t *testing.T) {
	tests := []struct {
		input  string
		errors []string
	}{
		{"push", []string{"syntax error: unexpected , expected number, string or label"}},
		{"foo", []string{`unknown instruction "foo"`}},
		{"jump @nowhere", []string{`undefined label "nowhere"`}},
		{"a:\na:", []string{`label "a" already defined`}},
		{"push 1 2", []string{"unexpected 2, expected lineEnd"}},
		{`push "` + strings.Repeat("x", 33) + `"`, []string{"size > 32 bytes"}},
		{"push $", []string{"unexpected $"}},
		{"foo\nbar\npush 1", []string{`unknown instruction "foo"`, `unknown instruction "bar"`}},
	}
	for _, test := range tests {
		_, errs := compile(test.input)
		require.Len(t, errs, len(test.errors), "input %q: %v", test.input, errs)
		for i, want := range test.errors {
			assert.Contains(t, errs[i].Error(), want, "input %q", test.input)
		}
	}
}

func TestCompilerRecoversAfterError(t *testing.T) {
	have, errs := compile("foo\npush 1")
	require.Len(t, errs, 1)
	assert.Equal(t, "1: unknown instruction \"foo\"", errs[0].Error())
	assert.Equal(t, "6001", have)
}
