// Copyright 2023 The go-ethereum Authors
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

package log

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

var errVmoduleSyntax = errors.New("expect comma-separated list of filename=N")

// GlogHandler filters records the way glog does: a global verbosity ceiling
// that vmodule rules such as "core/vm/*=5" raise for matching source files.
// GlogHandler 模仿 glog 的过滤能力：全局级别上限，可用 vmodule 按文件或包提升级别。
type GlogHandler struct {
	origin slog.Handler

	level    atomic.Int32
	hasRules atomic.Bool
	mu       sync.RWMutex // guards rules and sites
	rules    []vmoduleRule
	sites    map[uintptr]slog.Level // lowest level let through per call site
}

// vmoduleRule raises the verbosity of the source files it matches.
type vmoduleRule struct {
	files *regexp.Regexp
	level slog.Level
}

// NewGlogHandler wraps h. The ceiling starts at the zero level, info.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	return &GlogHandler{origin: h, sites: make(map[uintptr]slog.Level)}
}

func (h *GlogHandler) Verbosity(level slog.Level) {
	h.level.Store(int32(level))
}

// Vmodule replaces the rule set. The argument is a comma separated list of
// pattern=N with N a numeric verbosity:
//
//	"interpreter.go=5"  every file named interpreter.go
//	"vm=4"              every file of a package directory named vm
//	"core/*=4"          every file below a core directory
func (h *GlogHandler) Vmodule(ruleset string) error {
	rules, err := parseVmodule(ruleset)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rules, h.sites = rules, make(map[uintptr]slog.Level)
	h.hasRules.Store(len(rules) > 0)
	return nil
}

func parseVmodule(ruleset string) ([]vmoduleRule, error) {
	var rules []vmoduleRule
	for _, spec := range strings.Split(ruleset, ",") {
		if spec == "" {
			continue
		}
		glob, num, ok := strings.Cut(spec, "=")
		glob, num = strings.TrimSpace(glob), strings.TrimSpace(num)
		if !ok || glob == "" {
			return nil, errVmoduleSyntax
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return nil, errVmoduleSyntax
		}
		level := FromLegacyLevel(n)
		if level == LevelCrit {
			continue // crit passes anyway
		}
		files, err := compileGlob(glob)
		if err != nil {
			return nil, errVmoduleSyntax
		}
		rules = append(rules, vmoduleRule{files, level})
	}
	return rules, nil
}

// compileGlob turns a path glob into a regexp matched against "+" followed
// by the absolute source file name. A lone "*" component spans any number
// of directories. A glob not naming a .go file matches the files directly
// inside the directory.
func compileGlob(glob string) (*regexp.Regexp, error) {
	var re strings.Builder
	re.WriteString(".*")
	for _, part := range strings.Split(glob, "/") {
		switch part {
		case "":
		case "*":
			re.WriteString("(/.*)?")
		default:
			re.WriteString("/" + regexp.QuoteMeta(part))
		}
	}
	if !strings.HasSuffix(glob, ".go") {
		re.WriteString(`/[^/]+\.go`)
	}
	re.WriteString("$")
	return regexp.Compile(re.String())
}

// Enabled cannot tell the call site, so with rules installed every level is
// enabled and Handle decides.
func (h *GlogHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return h.hasRules.Load() || lvl >= slog.Level(h.level.Load())
}

func (h *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.RLock()
	child := &GlogHandler{
		origin: h.origin.WithAttrs(attrs),
		rules:  slices.Clone(h.rules),
		sites:  maps.Clone(h.sites),
	}
	h.mu.RUnlock()
	child.level.Store(h.level.Load())
	child.hasRules.Store(h.hasRules.Load())
	return child
}

func (h *GlogHandler) WithGroup(string) slog.Handler {
	panic("log: groups are not supported by the glog handler")
}

func (h *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.Level(h.level.Load()) || r.Level >= h.siteLevel(r.PC) {
		return h.origin.Handle(ctx, r)
	}
	return nil
}

// siteLevel resolves, once per call site, the level the last matching rule
// allows. Sites no rule matches only pass crit and above.
// 每个调用点只解析一次，结果缓存在 sites 中。
func (h *GlogHandler) siteLevel(pc uintptr) slog.Level {
	h.mu.RLock()
	lvl, ok := h.sites[pc]
	h.mu.RUnlock()
	if ok {
		return lvl
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()

	h.mu.Lock()
	defer h.mu.Unlock()
	lvl = LevelCrit + 1
	for _, rule := range h.rules {
		if rule.files.MatchString("+" + frame.File) {
			lvl = rule.level
		}
	}
	h.sites[pc] = lvl
	return lvl
}
