// Copyright 2026 the ferry authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package exclude parses exclusion rule strings and answers whether a single
// directory or file name is excluded.
//
// Rules come in four forms, all encoded in one flat string list:
//
//	/name      exact directory name
//	name       exact file name
//	~/pattern  wildcard directory pattern
//	~pattern   wildcard file pattern
//
// Rules apply to one path component at a time, never to a full path.
package exclude

import (
	"strings"

	"github.com/ferryfs/ferry/pkg/glob"
)

// RuleSet holds parsed exclusion rules split into their four categories.
type RuleSet struct {
	exactDirs     map[string]struct{}
	exactFiles    map[string]struct{}
	wildcardDirs  []string
	wildcardFiles []string
}

// Parse splits a flat rule list into the four categories. Empty strings are
// ignored. The input order of wildcard patterns is preserved.
func Parse(rules []string) *RuleSet {
	rs := &RuleSet{
		exactDirs:  make(map[string]struct{}),
		exactFiles: make(map[string]struct{}),
	}

	for _, rule := range rules {
		switch {
		case rule == "":
		case strings.HasPrefix(rule, "~/"):
			rs.wildcardDirs = append(rs.wildcardDirs, rule[2:])
		case strings.HasPrefix(rule, "~"):
			rs.wildcardFiles = append(rs.wildcardFiles, rule[1:])
		case strings.HasPrefix(rule, "/"):
			rs.exactDirs[strings.TrimPrefix(rule, "/")] = struct{}{}
		default:
			rs.exactFiles[rule] = struct{}{}
		}
	}

	return rs
}

// MatchDir reports whether a directory name is excluded, by exact name or by
// any wildcard directory pattern.
func (rs *RuleSet) MatchDir(name string) bool {
	if _, ok := rs.exactDirs[name]; ok {
		return true
	}
	for _, pattern := range rs.wildcardDirs {
		if glob.Match(pattern, name) {
			return true
		}
	}
	return false
}

// MatchFile reports whether a file name is excluded, by exact name or by any
// wildcard file pattern.
func (rs *RuleSet) MatchFile(name string) bool {
	if _, ok := rs.exactFiles[name]; ok {
		return true
	}
	for _, pattern := range rs.wildcardFiles {
		if glob.Match(pattern, name) {
			return true
		}
	}
	return false
}

// Empty reports whether the set contains no rules at all.
func (rs *RuleSet) Empty() bool {
	return len(rs.exactDirs) == 0 && len(rs.exactFiles) == 0 &&
		len(rs.wildcardDirs) == 0 && len(rs.wildcardFiles) == 0
}
