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

package remote_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferryfs/ferry/pkg/remote"
)

func TestFakeShellRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := remote.NewFakeShell("nas")
	dir := t.TempDir()

	local := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello"), 0o644))

	require.NoError(t, fake.Upload(ctx, local, "/backup/a.txt"))

	files, err := fake.ListFiles(ctx, "/backup")
	require.NoError(t, err)
	assert.Equal(t, []string{"/backup/a.txt"}, files)

	back := filepath.Join(dir, "back.txt")
	require.NoError(t, fake.Download(ctx, "/backup/a.txt", back))
	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// sha256 of "hello"
	digest, err := fake.Digest(ctx, "/backup/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", digest)

	require.NoError(t, fake.Remove(ctx, "/backup/a.txt"))
	_, ok := fake.Get("/backup/a.txt")
	assert.False(t, ok)
}

func TestFakeShellCorruptUploads(t *testing.T) {
	ctx := context.Background()
	fake := remote.NewFakeShell("nas")
	fake.CorruptUploads = true
	dir := t.TempDir()

	local := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello"), 0o644))
	require.NoError(t, fake.Upload(ctx, local, "/backup/a.txt"))

	data, ok := fake.Get("/backup/a.txt")
	require.True(t, ok)
	assert.NotEqual(t, "hello", string(data))
}
