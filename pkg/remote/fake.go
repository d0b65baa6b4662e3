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

package remote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sort"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// FakeShell is an in-memory Shell for tests. Remote files live in a map keyed
// by absolute path; uploads and downloads move bytes between that map and the
// local filesystem.
type FakeShell struct {
	mu sync.Mutex

	host  string
	files map[string][]byte

	// Unreachable makes Reachable fail.
	Unreachable bool

	// CorruptUploads flips the last byte of every uploaded file, so digest
	// verification after an upload fails.
	CorruptUploads bool

	// MkdirCalls records each MkdirAll invocation, one slice per call.
	MkdirCalls [][]string

	// Removed records every path passed to Remove.
	Removed []string

	// Uploads counts Upload calls, Downloads counts Download calls.
	Uploads   int
	Downloads int
}

// NewFakeShell returns an empty fake for the given host name.
func NewFakeShell(host string) *FakeShell {
	return &FakeShell{host: host, files: make(map[string][]byte)}
}

// Put seeds a remote file.
func (f *FakeShell) Put(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = append([]byte(nil), data...)
}

// Get returns a remote file's content and whether it exists.
func (f *FakeShell) Get(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	return data, ok
}

// Paths returns every stored remote path, sorted.
func (f *FakeShell) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (f *FakeShell) Host() string { return f.host }

func (f *FakeShell) Reachable(ctx context.Context) error {
	if f.Unreachable {
		return errors.Errorf("host %s is not reachable", f.host)
	}
	return nil
}

func (f *FakeShell) ListFiles(ctx context.Context, root string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := strings.TrimRight(root, "/") + "/"
	var files []string
	for p := range f.files {
		if strings.HasPrefix(p, prefix) {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (f *FakeShell) MkdirAll(ctx context.Context, dirs []string) error {
	if len(dirs) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MkdirCalls = append(f.MkdirCalls, append([]string(nil), dirs...))
	return nil
}

func (f *FakeShell) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	f.Removed = append(f.Removed, path)
	return nil
}

func (f *FakeShell) Digest(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.files[path]
	if !ok {
		return "", errors.Errorf("no such remote file %s", path)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (f *FakeShell) Upload(ctx context.Context, localPath, remotePath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return errors.Errorf("reading %s: %w", localPath, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads++
	if f.CorruptUploads && len(data) > 0 {
		data = append([]byte(nil), data...)
		data[len(data)-1] ^= 0xff
	}
	f.files[remotePath] = data
	return nil
}

func (f *FakeShell) Download(ctx context.Context, remotePath, localPath string) error {
	f.mu.Lock()
	data, ok := f.files[remotePath]
	f.Downloads++
	f.mu.Unlock()

	if !ok {
		return errors.Errorf("no such remote file %s", remotePath)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return errors.Errorf("writing %s: %w", localPath, err)
	}
	return nil
}
