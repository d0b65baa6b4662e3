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
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/verify"
)

// rsyncRunner copies one local file with rsync. Split out so tests can
// exercise the rsync path without the binary.
type rsyncRunner func(ctx context.Context, src, dst string) error

// localExecutor handles local to local transfers. rsync is non-nil when the
// rsync method was selected; the built-in rename/copy path runs otherwise.
type localExecutor struct {
	cfg    *config.Config
	mapper mapper
	rsync  rsyncRunner
}

func (x *localExecutor) prepare(ctx context.Context, items []item) error {
	if x.rsync != nil {
		if _, err := exec.LookPath("rsync"); err != nil {
			return errors.Errorf("rsync not found on PATH: %w", err)
		}
	}
	if err := os.MkdirAll(x.cfg.Dest.Path, 0o755); err != nil {
		return errors.Errorf("creating destination directory: %w", err)
	}
	return nil
}

func (x *localExecutor) cleanup(ctx context.Context) {}

func (x *localExecutor) process(ctx context.Context, it item) (string, error) {
	comps := x.mapper.components(it)
	if comps == nil {
		return reasonOutsideRoot, nil
	}
	dst := localDest(x.cfg.Dest.Path, comps)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Errorf("creating parent directory: %w", err)
	}

	out, err := resolveLocal(x.cfg.Conflict, true, it.src, dst)
	if err != nil {
		return "", err
	}
	if out.alreadyDone {
		if !x.cfg.Move {
			return reasonIdentical, nil
		}
		// The destination already holds the content, so the move is
		// complete once the source is gone.
		if err := os.Remove(it.src); err != nil {
			zerolog.Ctx(ctx).Warn().Str("file", it.src).Err(err).
				Msg("could not delete source after move")
		}
		return "", nil
	}
	if out.skip != "" {
		return out.skip, nil
	}

	if x.rsync != nil {
		return "", x.transferRsync(ctx, it.src, out.dest)
	}
	if x.cfg.Move {
		return "", moveLocal(it.src, out.dest)
	}
	return "", copyVerified(it.src, out.dest)
}

// transferRsync copies one file with rsync, then byte-compares the result.
// Verification still runs even though rsync checksums, so the delete-after
// safety of a move never rests on the external tool alone.
func (x *localExecutor) transferRsync(ctx context.Context, src, dst string) error {
	if err := x.rsync(ctx, src, dst); err != nil {
		return err
	}
	same, err := verify.Identical(src, dst)
	if err != nil {
		return err
	}
	if !same {
		os.Remove(dst)
		return errors.Errorf("verification failed, destination removed")
	}
	if x.cfg.Move {
		if err := os.Remove(src); err != nil {
			return errors.Errorf("deleting source after move: %w", err)
		}
	}
	return nil
}

// runLocalRsync shells out to rsync for one file pair.
func runLocalRsync(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, "rsync", "-a", "--checksum", src, dst)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	zerolog.Ctx(ctx).Debug().Str("src", src).Str("dst", dst).Msg("running local rsync")

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return errors.Errorf("running rsync: %w", err)
		}
		return errors.Errorf("running rsync: %s: %w", msg, err)
	}
	return nil
}

// moveLocal renames when possible and falls back to copy plus verify for
// cross-device moves. The original is deleted only after verification.
func moveLocal(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyVerified(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return errors.Errorf("deleting source after move: %w", err)
	}
	return nil
}

// copyVerified copies src to dst and byte-compares the result. A mismatch
// deletes the bad copy and keeps the original.
func copyVerified(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	same, err := verify.Identical(src, dst)
	if err != nil {
		return err
	}
	if !same {
		os.Remove(dst)
		return errors.Errorf("verification failed, destination removed")
	}
	return nil
}

// copyFile copies content and permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Errorf("stating %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return errors.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return errors.Errorf("closing %s: %w", dst, err)
	}
	return nil
}
