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
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/remote"
	"github.com/ferryfs/ferry/pkg/verify"
)

// pullExecutor handles remote to local transfers.
type pullExecutor struct {
	cfg    *config.Config
	mapper mapper
	shell  remote.Shell
}

func (x *pullExecutor) prepare(ctx context.Context, items []item) error {
	if err := os.MkdirAll(x.cfg.Dest.Path, 0o755); err != nil {
		return errors.Errorf("creating destination directory: %w", err)
	}
	return nil
}

func (x *pullExecutor) cleanup(ctx context.Context) {}

func (x *pullExecutor) process(ctx context.Context, it item) (string, error) {
	comps := x.mapper.components(it)
	if comps == nil {
		return reasonOutsideRoot, nil
	}
	dst := localDest(x.cfg.Dest.Path, comps)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Errorf("creating parent directory: %w", err)
	}

	// The source bytes are remote, so the identical-content shortcut does
	// not apply; an existing destination goes straight to the policy.
	out, err := resolveLocal(x.cfg.Conflict, false, it.src, dst)
	if err != nil {
		return "", err
	}
	if out.skip != "" {
		return out.skip, nil
	}

	if err := x.shell.Download(ctx, it.src, out.dest); err != nil {
		return "", err
	}

	remoteDigest, err := x.shell.Digest(ctx, it.src)
	if err != nil {
		return "", err
	}
	localDigest, err := verify.FileDigest(out.dest)
	if err != nil {
		return "", err
	}
	if remoteDigest != localDigest {
		os.Remove(out.dest)
		return "", errors.Errorf("digest mismatch after download, local copy removed")
	}

	if x.cfg.Move {
		if err := x.shell.Remove(ctx, it.src); err != nil {
			zerolog.Ctx(ctx).Warn().Str("file", it.src).Err(err).
				Msg("could not delete remote source after move")
		}
	}
	return "", nil
}
