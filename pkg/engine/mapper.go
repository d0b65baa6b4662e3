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
	"path"
	"path/filepath"
	"strings"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/remote"
)

// mapper computes destination paths below the destination root.
type mapper struct {
	source config.Source
	mode   config.Mode
	strip  bool
}

// components returns the destination path segments below the destination
// root for one item, or nil when the item lies outside the source root.
//
// FoldersAndFiles keeps the source hierarchy and prepends the source root's
// own basename, so copying folder photos into /backup yields /backup/photos.
// FilesOnly flattens everything to basenames, as does any file list source.
func (m mapper) components(it item) []string {
	if it.rel == "" {
		return nil
	}

	if m.mode == config.FilesOnly || m.source.Kind == config.SourceFileList {
		return m.finish([]string{path.Base(it.rel)})
	}

	root := m.source.Path
	if m.source.Kind == config.SourceDirectory {
		root = filepath.ToSlash(root)
	}
	comps := append([]string{path.Base(root)}, strings.Split(it.rel, "/")...)
	return m.finish(comps)
}

// finish applies space stripping to each segment when enabled.
func (m mapper) finish(comps []string) []string {
	if !m.strip {
		return comps
	}
	stripped := make([]string, len(comps))
	for i, c := range comps {
		stripped[i] = strings.ReplaceAll(c, " ", "")
	}
	return stripped
}

// localDest joins the segments under a local destination root.
func localDest(root string, comps []string) string {
	return filepath.Join(append([]string{root}, comps...)...)
}

// remoteDest joins the segments under a remote destination root.
func remoteDest(root string, comps []string) string {
	return remote.JoinPath(append([]string{root}, comps...)...)
}

// parentDirs returns the distinct parent directories the given items need
// under a remote destination root, root itself included, in first-use order.
func (m mapper) parentDirs(root string, items []item) []string {
	seen := map[string]struct{}{}
	dirs := []string{strings.TrimRight(root, "/")}
	seen[dirs[0]] = struct{}{}

	for _, it := range items {
		comps := m.components(it)
		if comps == nil {
			continue
		}
		dir := remoteDest(root, comps[:len(comps)-1])
		dir = strings.TrimRight(dir, "/")
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
