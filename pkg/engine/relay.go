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

package engine

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/remote"
	"github.com/ferryfs/ferry/pkg/verify"
)

// relayExecutor handles remote to remote transfers. No direct host-to-host
// data path is assumed; every file passes through a local staging directory.
type relayExecutor struct {
	cfg    *config.Config
	mapper mapper
	src    remote.Shell
	dst    remote.Shell

	staging  string
	existing map[string]struct{}
}

func (x *relayExecutor) prepare(ctx context.Context, items []item) error {
	staging, err := os.MkdirTemp("", "ferry-staging-*")
	if err != nil {
		return errors.Errorf("creating staging directory: %w", err)
	}
	x.staging = staging

	if err := x.dst.MkdirAll(ctx, x.mapper.parentDirs(x.cfg.Dest.Path, items)); err != nil {
		x.cleanup(ctx)
		return errors.Errorf("creating destination directories: %w", err)
	}

	x.existing = map[string]struct{}{}
	if x.cfg.Conflict != config.ConflictOverwrite {
		files, err := x.dst.ListFiles(ctx, x.cfg.Dest.Path)
		if err != nil {
			x.cleanup(ctx)
			return errors.Errorf("listing destination files: %w", err)
		}
		for _, f := range files {
			x.existing[f] = struct{}{}
		}
	}
	return nil
}

// cleanup removes the staging directory, also on early termination.
func (x *relayExecutor) cleanup(ctx context.Context) {
	if x.staging == "" {
		return
	}
	if err := os.RemoveAll(x.staging); err != nil {
		zerolog.Ctx(ctx).Warn().Str("dir", x.staging).Err(err).
			Msg("could not remove staging directory")
	}
}

func (x *relayExecutor) process(ctx context.Context, it item) (string, error) {
	comps := x.mapper.components(it)
	if comps == nil {
		return reasonOutsideRoot, nil
	}
	dst := remoteDest(x.cfg.Dest.Path, comps)

	dest, skip := resolveRemote(x.cfg.Conflict, dst, x.existing)
	if skip != "" {
		return skip, nil
	}

	stage := filepath.Join(x.staging, path.Base(it.src))
	defer os.Remove(stage)

	if err := x.src.Download(ctx, it.src, stage); err != nil {
		return "", err
	}
	srcDigest, err := x.src.Digest(ctx, it.src)
	if err != nil {
		return "", err
	}
	stageDigest, err := verify.FileDigest(stage)
	if err != nil {
		return "", err
	}
	if srcDigest != stageDigest {
		return "", errors.Errorf("digest mismatch after download to staging")
	}

	if err := x.dst.Upload(ctx, stage, dest); err != nil {
		return "", err
	}
	destDigest, err := x.dst.Digest(ctx, dest)
	if err != nil {
		return "", err
	}
	if destDigest != stageDigest {
		if rmErr := x.dst.Remove(ctx, dest); rmErr != nil {
			zerolog.Ctx(ctx).Warn().Str("file", dest).Err(rmErr).
				Msg("could not delete corrupt remote copy")
		}
		return "", errors.Errorf("digest mismatch after upload, remote copy removed")
	}

	if x.cfg.Move {
		if err := x.src.Remove(ctx, it.src); err != nil {
			zerolog.Ctx(ctx).Warn().Str("file", it.src).Err(err).
				Msg("could not delete remote source after move")
		}
	}
	return "", nil
}
