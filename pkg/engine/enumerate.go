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
	"io/fs"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/exclude"
	"github.com/ferryfs/ferry/pkg/remote"
)

// item is one file to transfer. src is the full source path, local or remote.
// rel is the path relative to the source root with forward slashes, used for
// destination mapping and for naming the file in results. An empty rel marks
// a file that fell outside the source root.
type item struct {
	src string
	rel string
}

// enumeration is the ordered worklist plus exclusion counters.
type enumeration struct {
	items         []item
	excludedFiles int
	excludedDirs  int
}

// enumerateLocal walks a local directory tree depth first in pre-order.
// Excluded directories are pruned whole and counted once each; excluded
// files are counted and omitted.
func enumerateLocal(root string, rules *exclude.RuleSet) (*enumeration, error) {
	e := &enumeration{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if rules.MatchDir(d.Name()) {
				e.excludedDirs++
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if rules.MatchFile(d.Name()) {
			e.excludedFiles++
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return errors.Errorf("relativizing %s: %w", path, relErr)
		}
		e.items = append(e.items, item{src: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return e, nil
}

// enumerateFileList takes the caller's list verbatim. Exclusion rules never
// apply to explicitly chosen files. rel carries the full given path so skip
// and error entries name the file the way the caller wrote it.
func enumerateFileList(files []string) *enumeration {
	e := &enumeration{}
	for _, f := range files {
		e.items = append(e.items, item{src: f, rel: filepath.ToSlash(f)})
	}
	return e
}

// enumerateRemote lists every file under root with one remote call, then
// applies exclusion rules locally against each path's components. Directory
// exclusion counts distinct excluded directory names, not occurrences.
func enumerateRemote(ctx context.Context, shell remote.Shell, root string, rules *exclude.RuleSet) (*enumeration, error) {
	paths, err := shell.ListFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	e := &enumeration{}
	prefix := strings.TrimRight(root, "/") + "/"
	excludedDirNames := map[string]struct{}{}

	for _, path := range paths {
		if !strings.HasPrefix(path, prefix) {
			// Defensive: the listing should only return paths under
			// root. Kept so the loop can skip it explicitly.
			e.items = append(e.items, item{src: path})
			continue
		}
		rel := strings.TrimPrefix(path, prefix)

		components := strings.Split(rel, "/")
		dirs, name := components[:len(components)-1], components[len(components)-1]

		excluded := false
		for _, dir := range dirs {
			if rules.MatchDir(dir) {
				excludedDirNames[dir] = struct{}{}
				excluded = true
			}
		}
		if excluded {
			continue
		}
		if rules.MatchFile(name) {
			e.excludedFiles++
			continue
		}

		e.items = append(e.items, item{src: path, rel: rel})
	}

	e.excludedDirs = len(excludedDirNames)
	return e, nil
}
