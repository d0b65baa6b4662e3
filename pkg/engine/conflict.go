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
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/verify"
)

// renameName appends " (n)" before the extension. A name that is all
// extension, like a dotfile, keeps the suffix at the end instead.
func renameName(name string, n int) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	return fmt.Sprintf("%s (%d)%s", stem, n, ext)
}

// localOutcome is the conflict decision for a local destination.
type localOutcome struct {
	dest string // path to transfer to; empty when nothing is to be done
	skip string // skip reason; empty unless skipped

	// alreadyDone means the destination already holds identical content.
	// The caller decides whether that counts as a completed move or a skip.
	alreadyDone bool
}

// resolveLocal decides the outcome for a local destination path. srcLocal
// marks whether src is a local file whose bytes can be compared; a remote
// source skips the identical-content shortcut.
func resolveLocal(policy config.Conflict, srcLocal bool, src, dst string) (localOutcome, error) {
	if _, err := os.Lstat(dst); err != nil {
		if os.IsNotExist(err) {
			return localOutcome{dest: dst}, nil
		}
		return localOutcome{}, errors.Errorf("checking destination %s: %w", dst, err)
	}

	if srcLocal {
		same, err := verify.Identical(src, dst)
		if err != nil {
			return localOutcome{}, err
		}
		if same {
			return localOutcome{alreadyDone: true}, nil
		}
	}

	switch policy {
	case config.ConflictOverwrite:
		return localOutcome{dest: dst}, nil
	case config.ConflictRename:
		dest, err := uniqueLocalPath(dst)
		if err != nil {
			return localOutcome{}, err
		}
		return localOutcome{dest: dest}, nil
	default:
		if srcLocal {
			return localOutcome{skip: reasonDifferent}, nil
		}
		return localOutcome{skip: reasonAlreadyExists}, nil
	}
}

// uniqueLocalPath probes " (1)", " (2)", ... until a free path is found.
func uniqueLocalPath(dst string) (string, error) {
	dir, name := filepath.Dir(dst), filepath.Base(dst)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, renameName(name, n))
		if _, err := os.Lstat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", errors.Errorf("checking candidate %s: %w", candidate, err)
		}
	}
}

// resolveRemote decides the outcome for a remote destination path against the
// pre-fetched set of existing remote files. A rename claims its chosen path
// in the set so later files in the same run cannot collide with it.
func resolveRemote(policy config.Conflict, dst string, existing map[string]struct{}) (dest, skip string) {
	if policy == config.ConflictOverwrite {
		return dst, ""
	}
	if _, ok := existing[dst]; !ok {
		existing[dst] = struct{}{}
		return dst, ""
	}

	if policy == config.ConflictRename {
		dir, name := path.Dir(dst), path.Base(dst)
		for n := 1; ; n++ {
			candidate := path.Join(dir, renameName(name, n))
			if _, ok := existing[candidate]; !ok {
				existing[candidate] = struct{}{}
				return candidate, ""
			}
		}
	}

	return "", reasonAlreadyExists
}
