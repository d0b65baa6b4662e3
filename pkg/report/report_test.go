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

package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ferryfs/ferry/pkg/report"
)

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	r.Progress(1, 3, "docs/a.txt")

	assert.Contains(t, buf.String(), "[1/3]")
	assert.Contains(t, buf.String(), "docs/a.txt")
}

func TestSummaryFinished(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	r.Summary("finished", 2, []string{"b.txt: identical at destination"}, 1, 0, nil)

	out := buf.String()
	assert.Contains(t, out, "finished")
	assert.Contains(t, out, "copied:")
	assert.Contains(t, out, "b.txt: identical at destination")
}

func TestSummaryWithErrors(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	r.Summary("finished", 0, nil, 0, 0, []string{"a.txt: digest mismatch"})

	assert.Contains(t, buf.String(), "1 error(s)")
	assert.Contains(t, buf.String(), "a.txt: digest mismatch")
}

func TestFatal(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	r.Fatal("host nas is not reachable")

	assert.Contains(t, buf.String(), "host nas is not reachable")
}
