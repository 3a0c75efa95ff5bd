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
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is one lexical element of the source. Every line is framed by a
// lineStart and a lineEnd token, and the stream ends with eof.
// token 是源码的一个词法单元，每行由 lineStart 与 lineEnd 包围，流以 eof 结束。
type token struct {
	typ    tokenType
	lineno int // zero based
	text   string
}

type tokenType int

const (
	eof              tokenType = iota
	lineStart                  // emitted when a line starts
	lineEnd                    // emitted when a line ends
	invalidStatement           // any character the lexer can not place
	element                    // instruction or keyword
	label                      // @name reference
	labelDef                   // name: definition
	number                     // decimal or 0x-prefixed hexadecimal
	stringValue                // "quoted", delivered without the quotes
)

var tokenNames = [...]string{
	eof:              "eof",
	lineStart:        "lineStart",
	lineEnd:          "lineEnd",
	invalidStatement: "invalidStatement",
	element:          "element",
	label:            "label",
	labelDef:         "labelDef",
	number:           "number",
	stringValue:      "stringValue",
}

func (t tokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("tokenType(%d)", int(t))
}

const (
	decimalDigits = "0123456789"
	hexDigits     = decimalDigits + "abcdefABCDEF"
	identChars    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_" + decimalDigits
)

type lexer struct {
	tokens chan<- token
	lineno int
	debug  bool
}

// Lex tokenizes source in a background goroutine. The returned channel is
// closed after the eof token and must be drained by the caller.
// Lex 在后台协程中对源码分词，返回的通道在 eof 之后关闭，调用者必须读完。
func Lex(source []byte, debug bool) <-chan token {
	ch := make(chan token)
	l := &lexer{tokens: ch, debug: debug}
	go func() {
		defer close(ch)
		for i, line := range strings.Split(string(source), "\n") {
			l.lineno = i
			l.emit(lineStart, "")
			l.lexLine(line)
			l.emit(lineEnd, "")
		}
		l.emit(eof, "")
	}()
	return ch
}

func (l *lexer) emit(typ tokenType, text string) {
	tok := token{typ: typ, lineno: l.lineno, text: text}
	if l.debug {
		fmt.Fprintf(os.Stderr, "%04d: (%-20v) %s\n", tok.lineno, tok.typ, tok.text)
	}
	l.tokens <- tok
}

// lexLine splits a single line into tokens. A ';' comments out the rest of
// the line, an unterminated string swallows it as an invalid statement.
// lexLine 将一行拆分为标记；';' 之后为注释。
func (l *lexer) lexLine(line string) {
	for pos := 0; pos < len(line); {
		r, w := utf8.DecodeRuneInString(line[pos:])
		switch {
		case r == ';':
			return

		case unicode.IsSpace(r):
			pos += w

		case unicode.IsLetter(r) || r == '_':
			end := pos + w + span(line[pos+w:], identChars)
			if end < len(line) && line[end] == ':' {
				l.emit(labelDef, line[pos:end])
				end++
			} else {
				l.emit(element, line[pos:end])
			}
			pos = end

		case unicode.IsDigit(r):
			end, digits := pos+w, decimalDigits
			if end < len(line) && (line[end] == 'x' || line[end] == 'X') {
				end, digits = end+1, hexDigits
			}
			end += span(line[end:], digits)
			l.emit(number, line[pos:end])
			pos = end

		case r == '@':
			end := pos + 1 + span(line[pos+1:], identChars)
			l.emit(label, line[pos+1:end])
			pos = end

		case r == '"':
			n := strings.IndexByte(line[pos+1:], '"')
			if n < 0 {
				l.emit(invalidStatement, line[pos+1:])
				return
			}
			l.emit(stringValue, line[pos+1:pos+1+n])
			pos += n + 2

		default:
			l.emit(invalidStatement, line[pos:pos+w])
			pos += w
		}
	}
}

// span is the length of the longest prefix of s made of bytes in set.
func span(s, set string) int {
	if n := strings.IndexFunc(s, func(r rune) bool { return !strings.ContainsRune(set, r) }); n >= 0 {
		return n
	}
	return len(s)
}
