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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ferryfs/ferry/pkg/config"
)

func dirSource(path string) config.Source {
	return config.Source{Kind: config.SourceDirectory, Path: path}
}

func TestMapperFoldersKeepsRootBasename(t *testing.T) {
	m := mapper{source: dirSource("/data/photos"), mode: config.FoldersAndFiles}

	comps := m.components(item{src: "/data/photos/2024/a.jpg", rel: "2024/a.jpg"})
	assert.Equal(t, []string{"photos", "2024", "a.jpg"}, comps)
}

func TestMapperFilesOnlyFlattens(t *testing.T) {
	m := mapper{source: dirSource("/data/photos"), mode: config.FilesOnly}

	comps := m.components(item{src: "/data/photos/2024/a.jpg", rel: "2024/a.jpg"})
	assert.Equal(t, []string{"a.jpg"}, comps)
}

func TestMapperFileListIgnoresMode(t *testing.T) {
	m := mapper{
		source: config.Source{Kind: config.SourceFileList, Files: []string{"/tmp/x/a.txt"}},
		mode:   config.FoldersAndFiles,
	}

	comps := m.components(item{src: "/tmp/x/a.txt", rel: "/tmp/x/a.txt"})
	assert.Equal(t, []string{"a.txt"}, comps)
}

func TestMapperRemoteSourceKeepsRootBasename(t *testing.T) {
	m := mapper{
		source: config.Source{Kind: config.SourceRemote, Host: "nas", Path: "/volume1/photos"},
		mode:   config.FoldersAndFiles,
	}

	comps := m.components(item{src: "/volume1/photos/sub/a.jpg", rel: "sub/a.jpg"})
	assert.Equal(t, []string{"photos", "sub", "a.jpg"}, comps)
}

func TestMapperStripSpaces(t *testing.T) {
	m := mapper{source: dirSource("/data/my photos"), mode: config.FoldersAndFiles, strip: true}

	comps := m.components(item{src: "/data/my photos/summer trip/pic 1.jpg", rel: "summer trip/pic 1.jpg"})
	assert.Equal(t, []string{"myphotos", "summertrip", "pic1.jpg"}, comps)
}

func TestMapperOutsideRoot(t *testing.T) {
	m := mapper{source: dirSource("/data/photos"), mode: config.FoldersAndFiles}

	assert.Nil(t, m.components(item{src: "/elsewhere/a.jpg"}))
}

func TestLocalAndRemoteDest(t *testing.T) {
	assert.Equal(t, "/backup/photos/a.jpg", localDest("/backup", []string{"photos", "a.jpg"}))
	assert.Equal(t, "/backup/photos/a.jpg", remoteDest("/backup/", []string{"photos", "a.jpg"}))
}

func TestParentDirsDistinct(t *testing.T) {
	m := mapper{source: dirSource("/data/photos"), mode: config.FoldersAndFiles}
	items := []item{
		{src: "/data/photos/a.jpg", rel: "a.jpg"},
		{src: "/data/photos/2024/b.jpg", rel: "2024/b.jpg"},
		{src: "/data/photos/2024/c.jpg", rel: "2024/c.jpg"},
	}

	dirs := m.parentDirs("/backup", items)
	assert.Equal(t, []string{"/backup", "/backup/photos", "/backup/photos/2024"}, dirs)
}
