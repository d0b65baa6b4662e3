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

// Event is one message on the stream returned by Run. The stream carries any
// number of Progress events followed by exactly one terminal event (Finished,
// Cancelled or FatalError), after which the channel is closed.
type Event interface {
	isEvent()
}

// Progress reports one file reaching its terminal per-file state.
type Progress struct {
	Done  int
	Total int
	File  string
}

// Finished is the terminal event of a run that processed every file.
type Finished struct {
	Result Result
}

// Cancelled is the terminal event of a run stopped by the cancellation flag.
// Result holds whatever was accumulated before the flag was observed.
type Cancelled struct {
	Result Result
}

// FatalError is the terminal event of a run that aborted before processing
// any file.
type FatalError struct {
	Message string
}

func (Progress) isEvent()   {}
func (Finished) isEvent()   {}
func (Cancelled) isEvent()  {}
func (FatalError) isEvent() {}

// Result is the accumulated outcome of a run. Every enumerated file lands in
// exactly one of Copied, Skipped or Errors.
type Result struct {
	Copied        int      `json:"copied"`
	Skipped       []string `json:"skipped"`
	ExcludedFiles int      `json:"excluded_files"`
	ExcludedDirs  int      `json:"excluded_dirs"`
	Errors        []string `json:"errors"`
}

func newResult() Result {
	return Result{Skipped: []string{}, Errors: []string{}}
}

// Skip reasons, as they appear in Result.Skipped entries.
const (
	reasonIdentical     = "identical at destination"
	reasonDifferent     = "different version exists at destination"
	reasonAlreadyExists = "already exists at destination"
	reasonOutsideRoot   = "outside source directory"
)
