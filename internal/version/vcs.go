// Copyright 2022 The go-ethereum Authors
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

package version

import (
	"runtime/debug"
	"time"
)

// gitCommit and gitDate override the embedded VCS data when set by the linker:
//
//	-ldflags "-X github.com/0xrusowsky/goevm/internal/version.gitCommit=<hash>"
//
// 可由链接器参数在构建时设置。
var gitCommit, gitDate string

// VCSInfo describes the git checkout the binary was built from.
// VCSInfo 描述构建二进制文件时的 git 状态。
type VCSInfo struct {
	Commit string // full revision hash
	Date   string // commit day as YYYYMMDD
	Dirty  bool   // built with uncommitted changes
}

// VCS reports the commit the running binary was built from. Linker values
// win over the build settings the go tool embeds, which are only trusted for
// this module's own main packages.
func VCS() (VCSInfo, bool) {
	if gitCommit != "" {
		return VCSInfo{Commit: gitCommit, Date: gitDate}, true
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path != ourPath {
		return VCSInfo{}, false
	}
	return buildInfoVCS(info)
}

// buildInfoVCS reads the vcs.* build settings. A revision without a
// parseable commit time is not reported.
func buildInfoVCS(info *debug.BuildInfo) (VCSInfo, bool) {
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	when, err := time.Parse(time.RFC3339, settings["vcs.time"])
	if err != nil || settings["vcs.revision"] == "" {
		return VCSInfo{}, false
	}
	return VCSInfo{
		Commit: settings["vcs.revision"],
		Date:   when.UTC().Format("20060102"),
		Dirty:  settings["vcs.modified"] == "true",
	}, true
}
