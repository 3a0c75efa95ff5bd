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

/*
Package node sets up the data directory of a goevm tool instance.

A Node owns an instance directory below the configured data directory
(DataDir/Name). The instance directory is locked while the node is open, so
two processes never write the same databases. Databases are opened relative to
the instance directory and closed together with the node.

When DataDir is empty the node is ephemeral: no lock is taken and every
database lives in memory.

	node, err := node.New(&node.Config{DataDir: "/tmp/evm"})
	db, err := node.OpenDatabase("statedata", false)
	...
	node.Close()

Resources of an instance named "evm" with datadir /tmp/evm end up as

	/tmp/evm/evm/LOCK
	/tmp/evm/evm/statedata/

节点包管理工具实例的数据目录：加锁、打开数据库并在关闭时统一释放。
*/
package node
