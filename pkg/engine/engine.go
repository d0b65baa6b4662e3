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
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ferryfs/ferry/pkg/config"
	"github.com/ferryfs/ferry/pkg/exclude"
	"github.com/ferryfs/ferry/pkg/remote"
)

// DialFunc opens a Shell for a host. The engine calls it at most once per
// distinct host in a run.
type DialFunc func(host string) remote.Shell

// Engine runs one transfer. Files are processed strictly one at a time on a
// single worker goroutine; the caller observes the run only through the
// event channel and influences it only through Cancel.
type Engine struct {
	cfg       *config.Config
	dial      DialFunc
	cancelled atomic.Bool
}

// New builds an Engine for one run of cfg. dial may be nil when neither
// endpoint is remote.
func New(cfg *config.Config, dial DialFunc) *Engine {
	return &Engine{cfg: cfg, dial: dial}
}

// Cancel requests cooperative cancellation. The flag is polled once per
// file, at the top of the loop, so the file in flight always completes its
// verification before the run stops.
func (e *Engine) Cancel() {
	e.cancelled.Store(true)
}

// Run starts the worker and returns its event stream: zero or more Progress
// events, then exactly one of Finished, Cancelled or FatalError, then close.
func (e *Engine) Run(ctx context.Context) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		e.run(ctx, events)
	}()
	return events
}

// executor is one transfer topology. prepare runs once before the file loop
// and may fail fatally; process handles a single file and returns either a
// skip reason or an error. cleanup always runs after the loop.
type executor interface {
	prepare(ctx context.Context, items []item) error
	process(ctx context.Context, it item) (skip string, err error)
	cleanup(ctx context.Context)
}

func (e *Engine) run(ctx context.Context, events chan<- Event) {
	log := zerolog.Ctx(ctx)

	srcShell, dstShell, err := e.connect(ctx)
	if err != nil {
		events <- FatalError{Message: err.Error()}
		return
	}

	enum, err := e.enumerate(ctx, srcShell)
	if err != nil {
		events <- FatalError{Message: err.Error()}
		return
	}

	m := mapper{source: e.cfg.Source, mode: e.cfg.Mode, strip: e.cfg.StripSpaces}
	exec := e.executor(m, srcShell, dstShell)

	if err := exec.prepare(ctx, enum.items); err != nil {
		events <- FatalError{Message: err.Error()}
		return
	}
	defer exec.cleanup(ctx)

	result := newResult()
	result.ExcludedFiles = enum.excludedFiles
	result.ExcludedDirs = enum.excludedDirs

	total := len(enum.items)
	for done, it := range enum.items {
		if e.cancelled.Load() {
			log.Info().Int("done", done).Int("total", total).Msg("run cancelled")
			events <- Cancelled{Result: result}
			return
		}

		skip, err := exec.process(ctx, it)
		switch {
		case err != nil:
			log.Error().Str("file", it.rel).Err(err).Msg("transfer failed")
			result.Errors = append(result.Errors, describe(it)+": "+err.Error())
		case skip != "":
			log.Debug().Str("file", it.rel).Str("reason", skip).Msg("skipped")
			result.Skipped = append(result.Skipped, describe(it)+": "+skip)
		default:
			result.Copied++
		}

		events <- Progress{Done: done + 1, Total: total, File: describe(it)}
	}

	events <- Finished{Result: result}
}

// describe names an item in results and progress events.
func describe(it item) string {
	if it.rel == "" {
		return it.src
	}
	return it.rel
}

// connect opens shells for the remote endpoints and probes reachability,
// both hosts concurrently when the transfer is remote to remote.
func (e *Engine) connect(ctx context.Context) (srcShell, dstShell remote.Shell, err error) {
	if e.cfg.Source.Kind == config.SourceRemote {
		srcShell = e.dial(e.cfg.Source.Host)
	}
	if e.cfg.Dest.Remote() {
		dstShell = e.dial(e.cfg.Dest.Host)
	}

	if srcShell != nil && dstShell != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srcShell.Reachable(gctx) })
		g.Go(func() error { return dstShell.Reachable(gctx) })
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
		return srcShell, dstShell, nil
	}

	if srcShell != nil {
		if err := srcShell.Reachable(ctx); err != nil {
			return nil, nil, err
		}
	}
	if dstShell != nil {
		if err := dstShell.Reachable(ctx); err != nil {
			return nil, nil, err
		}
	}
	return srcShell, dstShell, nil
}

func (e *Engine) enumerate(ctx context.Context, srcShell remote.Shell) (*enumeration, error) {
	rules := exclude.Parse(e.cfg.Exclude)

	switch e.cfg.Source.Kind {
	case config.SourceDirectory:
		return enumerateLocal(e.cfg.Source.Path, rules)
	case config.SourceFileList:
		return enumerateFileList(e.cfg.Source.Files), nil
	case config.SourceRemote:
		return enumerateRemote(ctx, srcShell, e.cfg.Source.Path, rules)
	}
	return nil, errors.New("no source selected")
}

func (e *Engine) executor(m mapper, srcShell, dstShell remote.Shell) executor {
	switch {
	case srcShell == nil && dstShell == nil:
		x := &localExecutor{cfg: e.cfg, mapper: m}
		if e.cfg.Method == config.MethodRsync {
			x.rsync = runLocalRsync
		}
		return x
	case srcShell == nil:
		return &pushExecutor{cfg: e.cfg, mapper: m, shell: dstShell}
	case dstShell == nil:
		return &pullExecutor{cfg: e.cfg, mapper: m, shell: srcShell}
	default:
		return &relayExecutor{cfg: e.cfg, mapper: m, src: srcShell, dst: dstShell}
	}
}
