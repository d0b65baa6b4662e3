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

package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/engine"
	"github.com/ferryfs/ferry/pkg/remote"
	"github.com/ferryfs/ferry/pkg/report"
)

var (
	// Flags
	flagSrc         string
	flagSrcFiles    string
	flagDst         string
	flagMove        bool
	flagConflict    string
	flagStripSpaces bool
	flagMode        string
	flagMethod      string
	flagExclude     []string
	flagConfig      string
	flagDebug       bool

	exitCode int
)

// outcome is the single JSON line printed to stdout when a run completes.
type outcome struct {
	Status string `json:"status"`
	engine.Result
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ferry",
		Short:         "copy or move files between local and remote endpoints",
		Long:          "ferry transfers a directory tree, a file list or a remote tree to a local or remote destination, with exclusion filtering, conflict resolution and post-transfer verification.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}

	cmd.Flags().StringVar(&flagSrc, "src", "", "source directory, local path or host:path")
	cmd.Flags().StringVar(&flagSrcFiles, "src-files", "", "comma-separated list of local files, glob patterns allowed")
	cmd.Flags().StringVar(&flagDst, "dst", "", "destination, local path or host:path")
	cmd.Flags().BoolVar(&flagMove, "move", false, "delete sources after verified transfer")
	cmd.Flags().StringVar(&flagConflict, "conflict", "skip", "conflict policy: skip, overwrite or rename")
	cmd.Flags().BoolVar(&flagStripSpaces, "strip-spaces", false, "remove spaces from destination path components")
	cmd.Flags().StringVar(&flagMode, "mode", "files", "destination layout: files or folders")
	cmd.Flags().StringVar(&flagMethod, "method", "standard", "remote transfer tool: standard (scp) or rsync")
	cmd.Flags().StringArrayVar(&flagExclude, "exclude", nil, "exclusion rule, repeatable")
	cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "config file path (.yaml or .hcl)")
	cmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command) error {
	logLevel := zerolog.InfoLevel
	if flagDebug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(logLevel).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	cfg, err := buildConfig(cmd)
	if err != nil {
		return fatal(err)
	}

	if cfg.Source.Kind == config.SourceRemote || cfg.Dest.Remote() {
		if err := remote.CheckTools(cfg.Method); err != nil {
			return fatal(err)
		}
	}

	eng := engine.New(cfg, func(host string) remote.Shell {
		return remote.NewSSHShell(host, cfg.Method)
	})

	// An interrupt requests cooperative cancellation; the file in flight
	// still finishes and the run ends with a cancelled status.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		logger.Info().Msg("interrupt received, cancelling after current file")
		eng.Cancel()
	}()

	reporter := report.New(os.Stderr)
	var terminal outcome

	for ev := range eng.Run(ctx) {
		switch ev := ev.(type) {
		case engine.Progress:
			reporter.Progress(ev.Done, ev.Total, ev.File)
		case engine.Finished:
			terminal = outcome{Status: "finished", Result: ev.Result}
		case engine.Cancelled:
			terminal = outcome{Status: "cancelled", Result: ev.Result}
		case engine.FatalError:
			terminal = outcome{Status: "error"}
			terminal.Skipped = []string{}
			terminal.Errors = []string{ev.Message}
		}
	}

	if terminal.Status == "error" {
		reporter.Fatal(terminal.Errors[0])
		exitCode = 1
	} else {
		reporter.Summary(terminal.Status, terminal.Copied, terminal.Skipped,
			terminal.ExcludedFiles, terminal.ExcludedDirs, terminal.Errors)
		if len(terminal.Errors) > 0 {
			exitCode = 2
		}
	}

	line, err := json.Marshal(terminal)
	if err != nil {
		return errors.Errorf("encoding result: %w", err)
	}
	os.Stdout.Write(append(line, '\n'))
	return nil
}

// fatal reports an error that stopped the run before any file was touched.
// Stdout still carries the single JSON result line, so callers parsing the
// output see the same shape whether the run died early or mid-transfer.
func fatal(err error) error {
	terminal := outcome{Status: "error", Result: engine.Result{
		Skipped: []string{},
		Errors:  []string{err.Error()},
	}}

	report.New(os.Stderr).Fatal(err.Error())
	exitCode = 1

	line, mErr := json.Marshal(terminal)
	if mErr != nil {
		return errors.Errorf("encoding result: %w", mErr)
	}
	os.Stdout.Write(append(line, '\n'))
	return nil
}

// buildConfig layers defaults, then the config file, then explicitly set
// flags, and validates the result.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Defaults()

	if flagConfig != "" {
		if err := config.LoadFile(flagConfig, cfg); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("src") {
		cfg.Source = config.ParseSource(flagSrc)
	}
	if flags.Changed("src-files") {
		files, err := expandFileList(strings.Split(flagSrcFiles, ","))
		if err != nil {
			return nil, err
		}
		cfg.Source = config.Source{Kind: config.SourceFileList, Files: files}
	}
	if flags.Changed("dst") {
		cfg.Dest = config.ParseDestination(flagDst)
	}
	if flags.Changed("move") {
		cfg.Move = flagMove
	}
	if flags.Changed("strip-spaces") {
		cfg.StripSpaces = flagStripSpaces
	}
	if flags.Changed("conflict") {
		conflict, err := config.ParseConflict(flagConflict)
		if err != nil {
			return nil, err
		}
		cfg.Conflict = conflict
	}
	if flags.Changed("mode") {
		mode, err := config.ParseMode(flagMode)
		if err != nil {
			return nil, err
		}
		cfg.Mode = mode
	}
	if flags.Changed("method") {
		method, err := config.ParseMethod(flagMethod)
		if err != nil {
			return nil, err
		}
		cfg.Method = method
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, flagExclude...)
	}

	if err := config.Validate(cmd.Context(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandFileList resolves glob patterns in a --src-files list. Entries
// without glob metacharacters pass through verbatim.
func expandFileList(entries []string) ([]string, error) {
	var files []string
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.ContainsAny(entry, "*?[{") {
			files = append(files, entry)
			continue
		}
		matches, err := doublestar.FilepathGlob(entry)
		if err != nil {
			return nil, errors.Errorf("expanding pattern %q: %w", entry, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("pattern %q matched no files", entry)
		}
		files = append(files, matches...)
	}
	return files, nil
}
