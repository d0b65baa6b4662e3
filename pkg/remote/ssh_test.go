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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferryfs/ferry/pkg/config"
)

// recordingRunner captures every command instead of executing it.
type recordingRunner struct {
	calls  [][]string
	output string
	err    error
}

func (r *recordingRunner) run(ctx context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.output, r.err
}

func newTestShell(method config.Method, rr *recordingRunner) *SSHShell {
	s := NewSSHShell("user@nas", method)
	s.runner = rr
	return s
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "'/data/photos'", Quote("/data/photos"))
	assert.Equal(t, `'/data/it'\''s here'`, Quote("/data/it's here"))
	assert.Equal(t, "''", Quote(""))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/backup/photos/a.txt", JoinPath("/backup", "photos", "a.txt"))
	assert.Equal(t, "/backup/a.txt", JoinPath("/backup/", "/a.txt"))
	assert.Equal(t, "/backup", JoinPath("", "/backup"))
	assert.Equal(t, "", JoinPath())
}

func TestReachableBuildsProbe(t *testing.T) {
	rr := &recordingRunner{output: "ok\n"}
	s := newTestShell(config.MethodStandard, rr)

	require.NoError(t, s.Reachable(context.Background()))
	require.Len(t, rr.calls, 1)

	call := rr.calls[0]
	assert.Equal(t, "ssh", call[0])
	assert.Contains(t, call, "ControlMaster=auto")
	assert.Contains(t, call, "ControlPersist=60")
	assert.Equal(t, "user@nas", call[len(call)-2])
	assert.Equal(t, "echo ok", call[len(call)-1])
}

func TestReachableRejectsBadProbe(t *testing.T) {
	rr := &recordingRunner{output: "banner garbage\n"}
	s := newTestShell(config.MethodStandard, rr)

	assert.Error(t, s.Reachable(context.Background()))
}

func TestListFilesParsesAndQuotes(t *testing.T) {
	rr := &recordingRunner{output: "/data/a.txt\n/data/sub/b.txt\n\n"}
	s := newTestShell(config.MethodStandard, rr)

	files, err := s.ListFiles(context.Background(), "/data/my photos")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.txt", "/data/sub/b.txt"}, files)

	command := rr.calls[0][len(rr.calls[0])-1]
	assert.Contains(t, command, "find '/data/my photos' -type f")
}

func TestMkdirAllBatchesOneCall(t *testing.T) {
	rr := &recordingRunner{}
	s := newTestShell(config.MethodStandard, rr)

	err := s.MkdirAll(context.Background(), []string{"/backup/a", "/backup/b c"})
	require.NoError(t, err)
	require.Len(t, rr.calls, 1, "all directories in a single ssh round trip")

	command := rr.calls[0][len(rr.calls[0])-1]
	assert.Equal(t, "mkdir -p '/backup/a' '/backup/b c'", command)
}

func TestMkdirAllEmptySkipsRoundTrip(t *testing.T) {
	rr := &recordingRunner{}
	s := newTestShell(config.MethodStandard, rr)

	require.NoError(t, s.MkdirAll(context.Background(), nil))
	assert.Empty(t, rr.calls)
}

func TestDigestParsesFirstToken(t *testing.T) {
	rr := &recordingRunner{output: "ABC123  /data/a.txt\n"}
	s := newTestShell(config.MethodStandard, rr)

	digest, err := s.Digest(context.Background(), "/data/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "abc123", digest)

	command := rr.calls[0][len(rr.calls[0])-1]
	assert.Contains(t, command, "sha256sum")
	assert.Contains(t, command, "|| shasum -a 256")
}

func TestUploadStandardUsesScp(t *testing.T) {
	rr := &recordingRunner{}
	s := newTestShell(config.MethodStandard, rr)

	require.NoError(t, s.Upload(context.Background(), "/tmp/a.txt", "/backup/a.txt"))
	require.Len(t, rr.calls, 1)

	call := rr.calls[0]
	assert.Equal(t, "scp", call[0])
	assert.Equal(t, "-q", call[1])
	assert.Equal(t, "/tmp/a.txt", call[len(call)-2])
	assert.Equal(t, "user@nas:/backup/a.txt", call[len(call)-1])
}

func TestUploadRsync(t *testing.T) {
	rr := &recordingRunner{}
	s := newTestShell(config.MethodRsync, rr)

	require.NoError(t, s.Upload(context.Background(), "/tmp/a.txt", "/backup/a.txt"))
	require.Len(t, rr.calls, 1)

	call := rr.calls[0]
	assert.Equal(t, "rsync", call[0])
	assert.Contains(t, call, "-az")
	assert.Contains(t, call, "--checksum")
	assert.Contains(t, call, "ssh -o ControlMaster=auto -o ControlPath=/tmp/ferry_ssh_%h_%p_%r -o ControlPersist=60")
	assert.Equal(t, "user@nas:/backup/a.txt", call[len(call)-1])
}

func TestDownloadStandardUsesScp(t *testing.T) {
	rr := &recordingRunner{}
	s := newTestShell(config.MethodStandard, rr)

	require.NoError(t, s.Download(context.Background(), "/backup/a.txt", "/tmp/a.txt"))
	call := rr.calls[0]
	assert.Equal(t, "scp", call[0])
	assert.Equal(t, "user@nas:/backup/a.txt", call[len(call)-2])
	assert.Equal(t, "/tmp/a.txt", call[len(call)-1])
}
