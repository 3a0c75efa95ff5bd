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

package node

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xrusowsky/goevm/log"
)

// Config locates the instance directory and tunes the databases opened in it.
// Config 定位实例目录并调整其中数据库的参数。
type Config struct {
	// Name is the instance directory below DataDir. It defaults to the
	// executable name.
	Name string `toml:"-"`

	// DataDir holds every instance directory. Empty keeps all data in memory.
	// 为空时所有数据保存在内存中。
	DataDir string

	// DBEngine is "pebble", "leveldb" or empty for autodetection.
	DBEngine string `toml:",omitempty"`

	DatabaseCache   int // megabytes per database
	DatabaseHandles int // open files per database

	Logger log.Logger `toml:",omitempty"`
}

// normalize returns a copy with an absolute DataDir, a Name and a Logger.
func (c Config) normalize() (Config, error) {
	if strings.ContainsAny(c.Name, `/\`) {
		return c, errors.New(`node name must not contain '/' or '\'`)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")
	}
	if c.DataDir != "" {
		abs, err := filepath.Abs(c.DataDir)
		if err != nil {
			return c, err
		}
		c.DataDir = abs
	}
	if c.Logger == nil {
		c.Logger = log.New()
	}
	return c, nil
}

// instanceDir is DataDir/Name, or empty for an in-memory node.
func (c *Config) instanceDir() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, c.Name)
}

// ResolvePath places a relative path inside the instance directory. An
// in-memory node has no paths and yields "".
// ResolvePath 将相对路径解析到实例目录。
func (c *Config) ResolvePath(path string) string {
	switch {
	case filepath.IsAbs(path):
		return path
	case c.DataDir == "":
		return ""
	}
	return filepath.Join(c.instanceDir(), path)
}
