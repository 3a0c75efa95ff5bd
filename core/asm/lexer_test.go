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
	"testing"

	"github.com/stretchr/testify/assert"
)

func lexAll(src string) []token {
	var tokens []token
	for tok := range Lex([]byte(src), false) {
		tokens = append(tokens, tok)
	}
	return tokens
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []token
	}{
		{
			input:  "",
			tokens: []token{{typ: lineStart}, {typ: lineEnd}, {typ: eof}},
		},
		{
			input:  ";; comment only",
			tokens: []token{{typ: lineStart}, {typ: lineEnd}, {typ: eof}},
		},
		{
			input:  "push 0x1f ; trailing",
			tokens: []token{
				{typ: lineStart},
				{typ: element, text: "push"},
				{typ: number, text: "0x1f"},
				{typ: lineEnd},
				{typ: eof},
			},
		},
		{
			input:  "loop:\n\tjump @loop",
			tokens: []token{
				{typ: lineStart},
				{typ: labelDef, text: "loop"},
				{typ: lineEnd},
				{typ: lineStart, lineno: 1},
				{typ: element, text: "jump", lineno: 1},
				{typ: label, text: "loop", lineno: 1},
				{typ: lineEnd, lineno: 1},
				{typ: eof, lineno: 1},
			},
		},
		{
			input:  `push "hello world"`,
			tokens: []token{
				{typ: lineStart},
				{typ: element, text: "push"},
				{typ: stringValue, text: "hello world"},
				{typ: lineEnd},
				{typ: eof},
			},
		},
		{
			input:  "push $",
			tokens: []token{
				{typ: lineStart},
				{typ: element, text: "push"},
				{typ: invalidStatement, text: "$"},
				{typ: lineEnd},
				{typ: eof},
			},
		},
		{
			input:  `push "open`,
			tokens: []token{
				{typ: lineStart},
				{typ: element, text: "push"},
				{typ: invalidStatement, text: "open"},
				{typ: lineEnd},
				{typ: eof},
			},
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.tokens, lexAll(test.input), "input %q", test.input)
	}
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "labelDef", labelDef.String())
	assert.Equal(t, "stringValue", stringValue.String())
	assert.Equal(t, "tokenType(42)", tokenType(42).String())
}
