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
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/config"
)

// controlArgs enable ssh connection multiplexing so repeated commands against
// the same host reuse one authenticated connection.
var controlArgs = []string{
	"-o", "ControlMaster=auto",
	"-o", "ControlPath=/tmp/ferry_ssh_%h_%p_%r",
	"-o", "ControlPersist=60",
}

// commandRunner executes one external command and returns its stdout.
type commandRunner interface {
	run(ctx context.Context, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	zerolog.Ctx(ctx).Debug().
		Str("command", name).
		Strs("args", args).
		Msg("running remote command")

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", errors.Errorf("running %s: %w", name, err)
		}
		return "", errors.Errorf("running %s: %s: %w", name, msg, err)
	}

	return stdout.String(), nil
}

// SSHShell implements Shell with the ssh, scp and rsync binaries.
type SSHShell struct {
	host   string
	method config.Method
	runner commandRunner
}

// NewSSHShell returns a Shell for host. The method picks the file transfer
// tool: scp for standard, rsync with checksum comparison otherwise.
func NewSSHShell(host string, method config.Method) *SSHShell {
	return &SSHShell{host: host, method: method, runner: execRunner{}}
}

// CheckTools verifies the external binaries the given method needs are on
// PATH before any transfer starts.
func CheckTools(method config.Method) error {
	tools := []string{"ssh", "scp"}
	if method == config.MethodRsync {
		tools = append(tools, "rsync")
	}
	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			return errors.Errorf("%s not found on PATH: %w", tool, err)
		}
	}
	return nil
}

func (s *SSHShell) Host() string { return s.host }

// ssh runs a shell command on the remote host and returns its stdout.
func (s *SSHShell) ssh(ctx context.Context, command string) (string, error) {
	args := append(append([]string{}, controlArgs...), s.host, command)
	out, err := s.runner.run(ctx, "ssh", args...)
	if err != nil {
		return "", errors.Errorf("ssh %s: %w", s.host, err)
	}
	return out, nil
}

func (s *SSHShell) Reachable(ctx context.Context) error {
	out, err := s.ssh(ctx, "echo ok")
	if err != nil {
		return errors.Errorf("host %s is not reachable: %w", s.host, err)
	}
	if strings.TrimSpace(out) != "ok" {
		return errors.Errorf("host %s gave unexpected probe output %q", s.host, out)
	}
	return nil
}

func (s *SSHShell) ListFiles(ctx context.Context, root string) ([]string, error) {
	q := Quote(root)
	out, err := s.ssh(ctx, "[ -d "+q+" ] && find "+q+" -type f || true")
	if err != nil {
		return nil, errors.Errorf("listing files under %s: %w", root, err)
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func (s *SSHShell) MkdirAll(ctx context.Context, dirs []string) error {
	if len(dirs) == 0 {
		return nil
	}
	quoted := make([]string, len(dirs))
	for i, d := range dirs {
		quoted[i] = Quote(d)
	}
	if _, err := s.ssh(ctx, "mkdir -p "+strings.Join(quoted, " ")); err != nil {
		return errors.Errorf("creating remote directories: %w", err)
	}
	return nil
}

func (s *SSHShell) Remove(ctx context.Context, path string) error {
	if _, err := s.ssh(ctx, "rm -f "+Quote(path)); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// Digest hashes a remote file with whichever sha-256 tool the host has.
func (s *SSHShell) Digest(ctx context.Context, path string) (string, error) {
	q := Quote(path)
	out, err := s.ssh(ctx, "sha256sum "+q+" 2>/dev/null || shasum -a 256 "+q)
	if err != nil {
		return "", errors.Errorf("hashing %s: %w", path, err)
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", errors.Errorf("empty digest output for %s", path)
	}
	return strings.ToLower(fields[0]), nil
}

func (s *SSHShell) Upload(ctx context.Context, localPath, remotePath string) error {
	target := s.host + ":" + remotePath
	var err error
	if s.method == config.MethodRsync {
		_, err = s.runner.run(ctx, "rsync", s.rsyncArgs(localPath, target)...)
	} else {
		args := append(append([]string{"-q"}, controlArgs...), localPath, target)
		_, err = s.runner.run(ctx, "scp", args...)
	}
	if err != nil {
		return errors.Errorf("uploading %s to %s: %w", localPath, target, err)
	}
	return nil
}

func (s *SSHShell) Download(ctx context.Context, remotePath, localPath string) error {
	source := s.host + ":" + remotePath
	var err error
	if s.method == config.MethodRsync {
		_, err = s.runner.run(ctx, "rsync", s.rsyncArgs(source, localPath)...)
	} else {
		args := append(append([]string{"-q"}, controlArgs...), source, localPath)
		_, err = s.runner.run(ctx, "scp", args...)
	}
	if err != nil {
		return errors.Errorf("downloading %s to %s: %w", source, localPath, err)
	}
	return nil
}

// rsyncArgs builds the rsync invocation, tunnelled through the same
// multiplexed ssh connection the other commands use.
func (s *SSHShell) rsyncArgs(from, to string) []string {
	return []string{
		"-az", "--checksum",
		"-e", "ssh " + strings.Join(controlArgs, " "),
		from, to,
	}
}
