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

// Package glob implements single-component wildcard matching for exclusion
// rules. Patterns support `*` (zero or more characters) and `?` (exactly one
// character); matching is case-insensitive and the path separator is not
// special — callers split paths into components before matching.
package glob

import "strings"

// Match reports whether name matches pattern in its entirety. Both pattern
// and name are lowercased first, so `*.JPG` matches `photo.jpg`.
func Match(pattern, name string) bool {
	return match([]rune(strings.ToLower(pattern)), []rune(strings.ToLower(name)))
}

// match is a recursive backtracking matcher: `*` first tries to match zero
// characters, then consumes one candidate character and retries; `?` consumes
// exactly one character unconditionally.
func match(pattern, name []rune) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}

	switch pattern[0] {
	case '*':
		if match(pattern[1:], name) {
			return true
		}
		return len(name) > 0 && match(pattern, name[1:])
	case '?':
		return len(name) > 0 && match(pattern[1:], name[1:])
	default:
		return len(name) > 0 && pattern[0] == name[0] && match(pattern[1:], name[1:])
	}
}
