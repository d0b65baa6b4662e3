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

// Package remote talks to other hosts over ssh, scp and rsync. All remote
// state lives behind the Shell interface so the transfer engine never builds
// a command line itself.
package remote

import (
	"context"
	"strings"
)

// Shell is the set of operations the transfer engine needs on a remote host.
type Shell interface {
	// Host returns the endpoint this shell talks to, as given on the
	// command line (possibly user@host).
	Host() string

	// Reachable probes the host with a trivial command.
	Reachable(ctx context.Context) error

	// ListFiles returns every regular file under root, as absolute remote
	// paths. A missing root returns an empty list, not an error.
	ListFiles(ctx context.Context, root string) ([]string, error)

	// MkdirAll creates all given directories in a single round trip.
	MkdirAll(ctx context.Context, dirs []string) error

	// Remove deletes a single remote file.
	Remove(ctx context.Context, path string) error

	// Digest returns the lowercase hex SHA-256 digest of a remote file.
	Digest(ctx context.Context, path string) (string, error)

	// Upload copies a local file to a remote path.
	Upload(ctx context.Context, localPath, remotePath string) error

	// Download copies a remote file to a local path.
	Download(ctx context.Context, remotePath, localPath string) error
}

// Quote wraps s in single quotes for use inside a remote shell command line.
// Embedded single quotes become the '\'' sequence.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// JoinPath joins remote path segments with forward slashes, collapsing
// doubled separators at the joins. Remote paths are always POSIX.
func JoinPath(parts ...string) string {
	joined := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if joined == "" {
			joined = p
			continue
		}
		joined = strings.TrimRight(joined, "/") + "/" + strings.TrimLeft(p, "/")
	}
	return joined
}
