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

package node

// Database tuning used when neither the config file nor the flags say
// otherwise.
const (
	defaultCacheMB = 64
	defaultHandles = 128
)

// DefaultConfig keeps state in memory and lets an existing database pick its
// own engine, pebble for a new one.
// 默认配置：状态保存在内存中，引擎由已有数据库决定。
var DefaultConfig = Config{
	DatabaseCache:   defaultCacheMB,
	DatabaseHandles: defaultHandles,
}
