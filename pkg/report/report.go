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

// Package report renders engine events for a human watching the run. All
// output goes to the writer given at construction, normally stderr, so the
// machine-readable result line on stdout stays clean.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Reporter prints per-file progress and a final summary.
type Reporter struct {
	progress *pterm.PrefixPrinter
	success  *pterm.PrefixPrinter
	warning  *pterm.PrefixPrinter
	failure  *pterm.PrefixPrinter
	out      io.Writer
}

// New builds a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{
		progress: pterm.Info.WithWriter(w).WithPrefix(pterm.Prefix{Text: "📦"}),
		success:  pterm.Success.WithWriter(w).WithPrefix(pterm.Prefix{Text: "✅"}),
		warning:  pterm.Warning.WithWriter(w).WithPrefix(pterm.Prefix{Text: "⚠️"}),
		failure:  pterm.Error.WithWriter(w).WithPrefix(pterm.Prefix{Text: "❌"}),
		out:      w,
	}
}

// Progress prints one per-file progress tick.
func (r *Reporter) Progress(done, total int, file string) {
	r.progress.Printfln("[%d/%d] %s", done, total, file)
}

// Summary prints the end-of-run accounting. status is the terminal state the
// run reached: finished or cancelled.
func (r *Reporter) Summary(status string, copied int, skipped []string, excludedFiles, excludedDirs int, errs []string) {
	switch {
	case len(errs) > 0:
		r.failure.Printfln("%s with %d error(s)", status, len(errs))
	case status == "cancelled":
		r.warning.Printfln("cancelled")
	default:
		r.success.Printfln("finished")
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "  copied:   %s\n", bold(copied))
	fmt.Fprintf(r.out, "  skipped:  %s\n", bold(len(skipped)))
	fmt.Fprintf(r.out, "  excluded: %s files, %s directories\n", bold(excludedFiles), bold(excludedDirs))

	for _, s := range skipped {
		fmt.Fprintf(r.out, "  %s %s\n", color.YellowString("skip:"), s)
	}
	for _, e := range errs {
		fmt.Fprintf(r.out, "  %s %s\n", color.RedString("error:"), e)
	}
}

// Fatal prints a run-aborting error.
func (r *Reporter) Fatal(message string) {
	r.failure.Printfln("%s", message)
}
