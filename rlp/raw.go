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

/*
Package rlp implements the RLP serialization format on raw byte slices.

Every value starts with a tag that tells its kind and size. A single byte
below 0x80 is its own encoding. Strings of up to 55 bytes are tagged
0x80+len, longer strings 0xB7+len(len) followed by the big endian length.
Lists use the same scheme from 0xC0 and 0xF7.

Only the append and split primitives are offered. Values are composed by
hand.
*/
package rlp

import (
	"errors"
	"io"
	"math/bits"
)

// RLP 编码规则：
// 单字节 [0x00, 0x7f] 直接编码为自身；
// 长度小于 56 的字节数组前缀为 0x80 + 长度；更长的使用 0xb7 + 长度字节数，再接长度；
// 列表前缀从 0xc0 开始，规则与字节数组相同。

var (
	ErrExpectedString = errors.New("rlp: expected String or Byte")
	ErrExpectedList   = errors.New("rlp: expected List")
	ErrCanonInt       = errors.New("rlp: non-canonical integer format")
	ErrCanonSize      = errors.New("rlp: non-canonical size information")
	ErrValueTooLarge  = errors.New("rlp: value size exceeds available input length")

	errUintOverflow = errors.New("rlp: uint overflow")
)

// Kind is the kind of an encoded value.
// Kind 表示 RLP 数据中值的类型。
type Kind int8

const (
	Byte Kind = iota
	String
	List
)

const (
	stringTag     = 0x80
	longStringTag = 0xB7
	listTag       = 0xC0
	longListTag   = 0xF7

	maxShortSize = 55
)

// Split cuts the first value off b, returning its kind, its content and
// whatever follows it.
// Split 返回 b 中第一个 RLP 值的内容以及其后剩余的字节。
func Split(b []byte) (k Kind, content, rest []byte, err error) {
	k, tag, size, err := head(b)
	if err != nil {
		return 0, nil, b, err
	}
	end := tag + size
	return k, b[tag:end], b[end:], nil
}

// SplitString is Split for a value that must not be a list.
func SplitString(b []byte) (content, rest []byte, err error) {
	k, content, rest, err := Split(b)
	switch {
	case err != nil:
		return nil, b, err
	case k == List:
		return nil, b, ErrExpectedString
	}
	return content, rest, nil
}

// SplitList is Split for a value that must be a list.
// SplitList 将 b 拆分为列表内容和列表之后的剩余字节。
func SplitList(b []byte) (content, rest []byte, err error) {
	k, content, rest, err := Split(b)
	switch {
	case err != nil:
		return nil, b, err
	case k != List:
		return nil, b, ErrExpectedList
	}
	return content, rest, nil
}

// SplitUint64 decodes a canonical integer at the start of b: no leading
// zero bytes and at most eight bytes wide.
// SplitUint64 解码 b 开头的整数，并在 rest 中返回整数后的剩余数据。
func SplitUint64(b []byte) (x uint64, rest []byte, err error) {
	content, rest, err := SplitString(b)
	switch {
	case err != nil:
		return 0, b, err
	case len(content) > 8:
		return 0, b, errUintOverflow
	case len(content) > 0 && content[0] == 0:
		return 0, b, ErrCanonInt
	}
	for _, c := range content {
		x = x<<8 | uint64(c)
	}
	return x, rest, nil
}

// CountValues counts the values encoded back to back in b.
func CountValues(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		_, tag, size, err := head(b)
		if err != nil {
			return 0, err
		}
		b = b[tag+size:]
		n++
	}
	return n, nil
}

// head decodes the tag at the start of buf. It returns the tag length and
// the content size, which is known to fit in buf.
func head(buf []byte) (k Kind, tag, size uint64, err error) {
	if len(buf) == 0 {
		return 0, 0, 0, io.ErrUnexpectedEOF
	}
	switch b := buf[0]; {
	case b < stringTag:
		k, tag, size = Byte, 0, 1
	case b <= stringTag+maxShortSize:
		k, tag, size = String, 1, uint64(b-stringTag)
		// a lone byte below 0x80 must encode itself
		// 拒绝本应编码为单字节的字符串。
		if size == 1 && len(buf) > 1 && buf[1] < stringTag {
			return 0, 0, 0, ErrCanonSize
		}
	case b < listTag:
		k, tag = String, 1+uint64(b-longStringTag)
		size, err = longSize(buf[1:], b-longStringTag)
	case b <= listTag+maxShortSize:
		k, tag, size = List, 1, uint64(b-listTag)
	default:
		k, tag = List, 1+uint64(b-longListTag)
		size, err = longSize(buf[1:], b-longListTag)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	if size > uint64(len(buf))-tag {
		return 0, 0, 0, ErrValueTooLarge
	}
	return k, tag, size, nil
}

// longSize reads the n byte length of a long string or list. The length
// must need the long form and carry no leading zeros.
// 拒绝小于 56 的长度（无需单独的长度字段）和带前导零的长度。
func longSize(b []byte, n byte) (uint64, error) {
	if int(n) > len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	var s uint64
	for _, c := range b[:n] {
		s = s<<8 | uint64(c)
	}
	if s <= maxShortSize || b[0] == 0 {
		return 0, ErrCanonSize
	}
	return s, nil
}

// AppendUint64 appends the encoding of i to b.
// AppendUint64 将 i 的 RLP 编码追加到 b 并返回结果切片。
func AppendUint64(b []byte, i uint64) []byte {
	switch {
	case i == 0:
		return append(b, stringTag)
	case i < stringTag:
		return append(b, byte(i))
	}
	n := byteLen(i)
	return appendBigEndian(append(b, stringTag+byte(n)), i, n)
}

// AppendBytes appends the string encoding of s to b.
// AppendBytes 将 s 的 RLP 字符串编码追加到 b。
func AppendBytes(b []byte, s []byte) []byte {
	if len(s) == 1 && s[0] < stringTag {
		return append(b, s[0])
	}
	return append(appendHead(b, stringTag, uint64(len(s))), s...)
}

// AppendList wraps items, each already encoded, in a list and appends it
// to b.
// AppendList 为已编码的元素加上列表头并追加到 b。
func AppendList(b []byte, items ...[]byte) []byte {
	var size uint64
	for _, it := range items {
		size += uint64(len(it))
	}
	b = appendHead(b, listTag, size)
	for _, it := range items {
		b = append(b, it...)
	}
	return b
}

// BytesSize is len(AppendBytes(nil, b)).
func BytesSize(b []byte) uint64 {
	if len(b) == 1 && b[0] < stringTag {
		return 1
	}
	return headSize(uint64(len(b))) + uint64(len(b))
}

// appendHead appends the tag of a value of the given size. tag is the
// short form base, stringTag or listTag.
func appendHead(b []byte, tag byte, size uint64) []byte {
	if size <= maxShortSize {
		return append(b, tag+byte(size))
	}
	n := byteLen(size)
	return appendBigEndian(append(b, tag+maxShortSize+byte(n)), size, n)
}

func headSize(size uint64) uint64 {
	if size <= maxShortSize {
		return 1
	}
	return 1 + uint64(byteLen(size))
}

func appendBigEndian(b []byte, v uint64, n int) []byte {
	for s := n - 1; s >= 0; s-- {
		b = append(b, byte(v>>(8*s)))
	}
	return b
}

// byteLen is the number of bytes needed to hold v, at least one.
func byteLen(v uint64) int {
	return max(1, (bits.Len64(v)+7)/8)
}
