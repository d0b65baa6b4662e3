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

package config

import (
	"context"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Mode controls how the destination tree is shaped.
type Mode string

const (
	// FilesOnly copies every file directly into the destination root,
	// discarding source directory structure.
	FilesOnly Mode = "files"

	// FoldersAndFiles recreates the source hierarchy under the destination,
	// rooted at the source directory's own name.
	FoldersAndFiles Mode = "folders"
)

// Method selects the transfer tool used for remote endpoints.
type Method string

const (
	MethodStandard Method = "standard" // scp
	MethodRsync    Method = "rsync"
)

// Conflict decides what happens when a destination file already exists.
type Conflict string

const (
	ConflictSkip      Conflict = "skip"
	ConflictOverwrite Conflict = "overwrite"
	ConflictRename    Conflict = "rename"
)

// SourceKind tags the three ways a transfer source can be given.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceDirectory
	SourceFileList
	SourceRemote
)

// Source describes where files come from. Exactly one form is populated,
// indicated by Kind.
type Source struct {
	Kind  SourceKind
	Path  string   // Directory and Remote
	Files []string // FileList
	Host  string   // Remote
}

// Destination describes where files go. Host is empty for local destinations.
type Destination struct {
	Host string
	Path string
}

// Remote reports whether the destination lives on another host.
func (d Destination) Remote() bool {
	return d.Host != ""
}

// Config is the full set of options for one transfer run.
type Config struct {
	Source      Source      `yaml:"-" json:"-"`
	Dest        Destination `yaml:"-" json:"-"`
	Move        bool        `yaml:"move" json:"move"`
	Conflict    Conflict    `yaml:"conflict" json:"conflict"`
	StripSpaces bool        `yaml:"strip_spaces" json:"strip_spaces"`
	Mode        Mode        `yaml:"mode" json:"mode"`
	Method      Method      `yaml:"method" json:"method"`
	Exclude     []string    `yaml:"exclude" json:"exclude"`
}

// ParseMode converts a flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case FilesOnly:
		return FilesOnly, nil
	case FoldersAndFiles:
		return FoldersAndFiles, nil
	}
	return "", errors.Errorf("unknown mode %q (want files or folders)", s)
}

// ParseMethod converts a flag value into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(s)) {
	case MethodStandard:
		return MethodStandard, nil
	case MethodRsync:
		return MethodRsync, nil
	}
	return "", errors.Errorf("unknown method %q (want standard or rsync)", s)
}

// ParseConflict converts a flag value into a Conflict policy.
func ParseConflict(s string) (Conflict, error) {
	switch Conflict(strings.ToLower(s)) {
	case ConflictSkip:
		return ConflictSkip, nil
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	case ConflictRename:
		return ConflictRename, nil
	}
	return "", errors.Errorf("unknown conflict policy %q (want skip, overwrite or rename)", s)
}

// SplitRemote splits a "host:path" endpoint string. The part before the first
// colon is a host only when it is non-empty and contains no slash; otherwise
// the whole string is a local path. "a:b/c" is remote, "a/b:c" is local.
func SplitRemote(s string) (host, path string) {
	idx := strings.Index(s, ":")
	if idx <= 0 {
		return "", s
	}
	if strings.Contains(s[:idx], "/") {
		return "", s
	}
	return s[:idx], s[idx+1:]
}

// ParseSource builds a Source from the --src flag value. A "host:path" form
// becomes a remote source, anything else a local directory.
func ParseSource(s string) Source {
	host, path := SplitRemote(s)
	if host != "" {
		return Source{Kind: SourceRemote, Host: host, Path: path}
	}
	return Source{Kind: SourceDirectory, Path: path}
}

// ParseDestination builds a Destination from the --dst flag value.
func ParseDestination(s string) Destination {
	host, path := SplitRemote(s)
	return Destination{Host: host, Path: path}
}

// Validate checks cross-field consistency before a run starts.
func Validate(ctx context.Context, cfg *Config) error {
	switch cfg.Source.Kind {
	case SourceDirectory:
		if cfg.Source.Path == "" {
			return errors.New("source directory path is empty")
		}
	case SourceFileList:
		if len(cfg.Source.Files) == 0 {
			return errors.New("source file list is empty")
		}
	case SourceRemote:
		if cfg.Source.Host == "" || cfg.Source.Path == "" {
			return errors.New("remote source needs both host and path")
		}
	default:
		return errors.New("no source given")
	}

	if cfg.Dest.Path == "" {
		return errors.New("no destination given")
	}

	switch cfg.Conflict {
	case ConflictSkip, ConflictOverwrite, ConflictRename:
	default:
		return errors.Errorf("invalid conflict policy %q", cfg.Conflict)
	}
	switch cfg.Mode {
	case FilesOnly, FoldersAndFiles:
	default:
		return errors.Errorf("invalid mode %q", cfg.Mode)
	}
	switch cfg.Method {
	case MethodStandard, MethodRsync:
	default:
		return errors.Errorf("invalid method %q", cfg.Method)
	}

	// Copying a local directory into itself would enumerate its own output.
	if cfg.Source.Kind == SourceDirectory && !cfg.Dest.Remote() {
		src, err := filepath.Abs(cfg.Source.Path)
		if err != nil {
			return errors.Errorf("resolving source path: %w", err)
		}
		dst, err := filepath.Abs(cfg.Dest.Path)
		if err != nil {
			return errors.Errorf("resolving destination path: %w", err)
		}
		if src == dst {
			return errors.New("source and destination are the same directory")
		}
	}

	return nil
}

// Defaults returns a Config with every option at its documented default.
func Defaults() *Config {
	return &Config{
		Conflict: ConflictSkip,
		Mode:     FilesOnly,
		Method:   MethodStandard,
	}
}
