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

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferryfs/ferry/pkg/config"
)

func TestBuildConfigFromFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--src", "/data/photos",
		"--dst", "nas:/backup",
		"--move",
		"--conflict", "rename",
		"--mode", "folders",
		"--method", "rsync",
		"--exclude", "/cache",
		"--exclude", "~*.tmp",
	}))

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, config.SourceDirectory, cfg.Source.Kind)
	assert.Equal(t, "/data/photos", cfg.Source.Path)
	assert.Equal(t, "nas", cfg.Dest.Host)
	assert.Equal(t, "/backup", cfg.Dest.Path)
	assert.True(t, cfg.Move)
	assert.Equal(t, config.ConflictRename, cfg.Conflict)
	assert.Equal(t, config.FoldersAndFiles, cfg.Mode)
	assert.Equal(t, config.MethodRsync, cfg.Method)
	assert.Equal(t, []string{"/cache", "~*.tmp"}, cfg.Exclude)
}

func TestBuildConfigDefaults(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--src", "/a", "--dst", "/b"}))

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, config.ConflictSkip, cfg.Conflict)
	assert.Equal(t, config.FilesOnly, cfg.Mode, "the layout default flattens, matching the original tool")
	assert.Equal(t, config.MethodStandard, cfg.Method)
	assert.False(t, cfg.Move)
}

func TestBuildConfigRejectsBadFlagValues(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--src", "/a", "--dst", "/b", "--conflict", "ask"}))

	_, err := buildConfig(cmd)
	assert.Error(t, err)
}

func TestBuildConfigRequiresDestination(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--src", "/a"}))

	_, err := buildConfig(cmd)
	assert.Error(t, err)
}

func TestBuildConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ferry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: /data\ndestination: /backup\nconflict: overwrite\n"), 0o644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--conflict", "rename"}))

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.Source.Path, "from the config file")
	assert.Equal(t, config.ConflictRename, cfg.Conflict, "flag wins over file")
}

func TestRunEarlyFatalStillPrintsResultLine(t *testing.T) {
	// A run that dies before the engine starts must produce the same
	// stdout shape as one that fails mid-transfer: one JSON line.
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	exitCode = 0
	t.Cleanup(func() {
		os.Stdout = old
		exitCode = 0
	})

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--src", "/a"}) // no destination
	execErr := cmd.Execute()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, execErr)
	assert.Equal(t, 1, exitCode)

	var got struct {
		Status string   `json:"status"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out), &got))
	assert.Equal(t, "error", got.Status)
	require.Len(t, got.Errors, 1)
	assert.Contains(t, got.Errors[0], "destination")
}

func TestExpandFileList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := expandFileList([]string{filepath.Join(dir, "*.txt"), filepath.Join(dir, "c.md")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.md"),
	}, files)
}

func TestExpandFileListNoMatches(t *testing.T) {
	_, err := expandFileList([]string{filepath.Join(t.TempDir(), "*.txt")})
	assert.Error(t, err)
}

func TestExpandFileListSkipsBlanks(t *testing.T) {
	files, err := expandFileList([]string{"/a.txt", "", " "})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.txt"}, files)
}
