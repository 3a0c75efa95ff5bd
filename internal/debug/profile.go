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

package debug

import (
	"errors"
	"io"
	"os"
	"runtime/pprof"
	"sync"

	"github.com/0xrusowsky/goevm/log"
)

var errNoProfile = errors.New("CPU profiling not in progress")

var (
	cpuMu   sync.Mutex
	cpuW    io.WriteCloser
	cpuFile string
)

// StartCPUProfile turns on CPU profiling, writing to the given file.
// StartCPUProfile 开启 CPU 性能分析并写入指定文件。
func StartCPUProfile(file string) error {
	cpuMu.Lock()
	defer cpuMu.Unlock()
	if cpuW != nil {
		return errors.New("CPU profiling already in progress")
	}
	f, err := os.Create(expandHome(file))
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}
	cpuW, cpuFile = f, file
	log.Info("CPU profiling started", "dump", cpuFile)
	return nil
}

// StopCPUProfile stops an ongoing CPU profile.
func StopCPUProfile() error {
	cpuMu.Lock()
	defer cpuMu.Unlock()
	if cpuW == nil {
		return errNoProfile
	}
	pprof.StopCPUProfile()
	log.Info("Done writing CPU profile", "dump", cpuFile)
	cpuW.Close()
	cpuW, cpuFile = nil, ""
	return nil
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(p string) string {
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			p = home + p[1:]
		}
	}
	return p
}
