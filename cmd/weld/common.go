// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/internal/ui"
	"github.com/kraklabs/weld/pkg/batch"
	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/ledger"
)

// mutatingFlags holds the flag set every add/remove/update/rename/
// transform subcommand shares: the file set, apply/dry-run switch, and
// the optional admission filter, limit, and position/kind overrides.
type mutatingFlags struct {
	paths    []string
	excludes []string
	apply    bool
	where    string
	limit    int
	position string
	editMode string
	kind     string
}

func bindMutatingFlags(fs *flag.FlagSet) *mutatingFlags {
	m := &mutatingFlags{}
	fs.StringSliceVar(&m.paths, "paths", nil, "Files, directories, or globs to operate on (repeatable)")
	fs.StringSliceVar(&m.excludes, "exclude", nil, "Glob pattern to exclude (repeatable)")
	fs.BoolVar(&m.apply, "apply", false, "Write changes and record a ledger run (default: dry-run preview)")
	fs.StringVar(&m.where, "where", "", `Admission filter, e.g. "derives_trait:Clone,Debug"`)
	fs.IntVar(&m.limit, "limit", 0, "Stop after this many modified nodes across the whole run (0 = unlimited)")
	fs.StringVar(&m.position, "position", "", "Insertion position: first, last, after:<name>, before:<name>")
	fs.StringVar(&m.editMode, "edit-mode", "", "surgical (default) or reprint")
	fs.StringVar(&m.kind, "kind", "", "Category or group filter (e.g. record, union, function, call)")
	return m
}

// resolveFiles collects the file set a mutating subcommand operates on,
// folding the project config's default excludes in ahead of --exclude.
func resolveFiles(m *mutatingFlags, cfg Config) ([]string, error) {
	if len(m.paths) == 0 {
		return nil, wErrors.NewInputError(
			"No paths given",
			"At least one --paths entry is required",
			"Pass --paths <file-or-dir-or-glob> (repeatable)",
			nil,
		)
	}
	excludes := append(append([]string{}, cfg.Excludes...), m.excludes...)
	files, err := batch.CollectFiles(m.paths, excludes)
	if err != nil {
		return nil, wErrors.NewInputError(
			"Could not resolve --paths",
			err.Error(),
			"Check that the given paths exist",
			err,
		)
	}
	if len(files) == 0 {
		return nil, wErrors.NewInputError(
			"No matching files",
			"--paths matched no *.rs files",
			"Check --paths and --exclude",
			nil,
		)
	}
	return files, nil
}

// openStore resolves the ledger state directory and returns a Store,
// honoring WELD_STATE_DIR / cfg.LocalState the way pkg/ledger.GetStateDir
// documents.
func openStore(cfg Config) (*ledger.Store, error) {
	dir, err := ledger.GetStateDir(cfg.LocalState)
	if err != nil {
		return nil, err
	}
	return ledger.NewStore(dir), nil
}

// loadProjectConfig wraps LoadConfig, turning a load failure into a
// FatalError exit rather than returning it to every subcommand.
func loadProjectConfig(path string, globals GlobalFlags) Config {
	cfg, err := LoadConfig(path)
	if err != nil {
		wErrors.FatalError(err, globals.JSON)
	}
	return cfg
}

// printOperationResult renders one OperationResult to stdout/stderr: a
// unified diff per changed file in dry-run mode, a summary line in apply
// mode, and any hints for files where the target was not found.
func printOperationResult(res batch.OperationResult, globals GlobalFlags) {
	if globals.JSON {
		data, err := json.Marshal(res)
		if err != nil {
			wErrors.FatalError(wErrors.NewInternalError("Failed to marshal result", err.Error(), "", err), true)
		}
		fmt.Println(string(data))
		return
	}

	var stats engine.DiffStats
	changedFiles := 0
	for _, fr := range res.Files {
		if fr.Err != nil {
			ui.Warningf("%s: %v", fr.Path, fr.Err)
			continue
		}
		if !fr.Changed {
			if !globals.Quiet {
				for _, h := range fr.Hints {
					ui.Info(fmt.Sprintf("hint: %s: %s", h.FilePath, h.Message))
				}
			}
			continue
		}
		changedFiles++
		stats.Add(fr.Stats)
		if !res.Operation.Apply {
			fmt.Print(fr.Diff)
		} else {
			observeMutation(fr.Duration)
		}
	}

	if res.Operation.Apply {
		if changedFiles == 0 {
			ui.Info("No files changed.")
			return
		}
		weldMetrics.operationsApplied.Inc()
		ui.Successf("Applied: %d file(s), +%d/-%d lines", changedFiles, stats.LinesAdded, stats.LinesRemoved)
		if res.RunID != "" {
			ui.Info("Run ID: " + res.RunID + " (revert with: weld revert " + res.RunID + ")")
		}
	} else if changedFiles == 0 {
		ui.Info("No matches.")
	} else {
		ui.Infof("%d file(s) would change (dry-run — pass --apply to write)", changedFiles)
	}
}

// exitOnError prints err (if non-nil) via the structured error path and
// exits the process; a no-op when err is nil.
func exitOnError(err error, globals GlobalFlags) {
	if err != nil {
		wErrors.FatalError(err, globals.JSON)
	}
}

// mustParseSubFlags parses args with fs, printing fs's usage and exiting
// 1 on a parse error (pflag already writes the error itself).
func mustParseSubFlags(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
}

// newFileProgress returns a batch.Runner.Progress callback driving a
// terminal progress bar over fileCount files, one Add(1) per path
// reported, the same progressCfg/currentBar shape
// cmd/cie/index.go's own SetProgressCallback wires for its ingestion
// pipeline. Returns nil (no callback) for JSON output, quiet mode, a
// non-TTY stderr, or a file set too small to bother with.
func newFileProgress(label string, fileCount int, globals GlobalFlags) func(string) {
	if globals.JSON || globals.Quiet || fileCount < 20 {
		return nil
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return nil
	}
	bar := progressbar.NewOptions(fileCount,
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
	return func(string) { _ = bar.Add(1) }
}
