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

// Package engine is the transfer core of ferry. One Engine performs one run:
// it enumerates the source, maps each file to a destination path, resolves
// conflicts, transfers, verifies, and reports everything over an event
// channel.
//
// A run covers one of four topologies, chosen by where the endpoints live:
//
//	local  -> local    rename or copy, byte-compare verification
//	local  -> remote   scp or rsync upload, digest verification
//	remote -> local    download, digest verification
//	remote -> remote   relay through a local staging directory
//
// Files are processed strictly one at a time. Verification always happens
// before any source deletion, so a failed transfer can never lose data. The
// caller stops a run with Cancel; the flag is polled between files, never
// mid-transfer.
//
// Usage:
//
//	eng := engine.New(cfg, func(host string) remote.Shell {
//		return remote.NewSSHShell(host, cfg.Method)
//	})
//	for ev := range eng.Run(ctx) {
//		switch ev := ev.(type) {
//		case engine.Progress:
//			// ...
//		case engine.Finished:
//			// ...
//		}
//	}
package engine
