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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/remote"
	"github.com/ferryfs/ferry/pkg/verify"
)

// pushExecutor handles local to remote transfers.
type pushExecutor struct {
	cfg    *config.Config
	mapper mapper
	shell  remote.Shell

	existing map[string]struct{}
}

// prepare creates every needed remote directory in one batched call and,
// unless the policy is overwrite, fetches the set of existing remote files
// once so conflict checks cost no further round trips.
func (x *pushExecutor) prepare(ctx context.Context, items []item) error {
	if err := x.shell.MkdirAll(ctx, x.mapper.parentDirs(x.cfg.Dest.Path, items)); err != nil {
		return errors.Errorf("creating destination directories: %w", err)
	}

	x.existing = map[string]struct{}{}
	if x.cfg.Conflict != config.ConflictOverwrite {
		files, err := x.shell.ListFiles(ctx, x.cfg.Dest.Path)
		if err != nil {
			return errors.Errorf("listing destination files: %w", err)
		}
		for _, f := range files {
			x.existing[f] = struct{}{}
		}
	}
	return nil
}

func (x *pushExecutor) cleanup(ctx context.Context) {}

func (x *pushExecutor) process(ctx context.Context, it item) (string, error) {
	comps := x.mapper.components(it)
	if comps == nil {
		return reasonOutsideRoot, nil
	}
	dst := remoteDest(x.cfg.Dest.Path, comps)

	dest, skip := resolveRemote(x.cfg.Conflict, dst, x.existing)
	if skip != "" {
		return skip, nil
	}

	if err := x.shell.Upload(ctx, it.src, dest); err != nil {
		return "", err
	}

	localDigest, err := verify.FileDigest(it.src)
	if err != nil {
		return "", err
	}
	remoteDigest, err := x.shell.Digest(ctx, dest)
	if err != nil {
		return "", err
	}
	if localDigest != remoteDigest {
		// Data safety over progress: never leave a copy that does not
		// match its source.
		if rmErr := x.shell.Remove(ctx, dest); rmErr != nil {
			zerolog.Ctx(ctx).Warn().Str("file", dest).Err(rmErr).
				Msg("could not delete corrupt remote copy")
		}
		return "", errors.Errorf("digest mismatch after upload, remote copy removed")
	}

	if x.cfg.Move {
		if err := os.Remove(it.src); err != nil {
			zerolog.Ctx(ctx).Warn().Str("file", it.src).Err(err).
				Msg("could not delete source after move")
		}
	}
	return "", nil
}
