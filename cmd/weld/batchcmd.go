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
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/internal/ui"
	"github.com/kraklabs/weld/pkg/batch"
	"github.com/kraklabs/weld/pkg/ledger"
)

// runBatch implements the C8 batch executor subcommand (spec.md §4.9):
// loads a declarative JSON/YAML operation list and runs each operation in
// list order against the files under its base_path, with no
// transactional semantics across operations.
func runBatch(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	var (
		specPath string
		apply    bool
		excludes []string
	)
	fs.StringVar(&specPath, "spec", "", "Path to a JSON or YAML batch spec file")
	fs.BoolVar(&apply, "apply", false, "Write changes and record ledger runs (default: dry-run preview)")
	fs.StringSliceVar(&excludes, "exclude", nil, "Glob pattern to exclude (repeatable, in addition to the project config's excludes)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld batch --spec <file> [--apply] [--exclude <glob>]...")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	if specPath == "" {
		exitOnError(wErrors.NewInputError("Missing --spec", "A batch spec file path is required", "Pass --spec <file.yaml|file.json>", nil), globals)
	}

	spec, err := batch.LoadSpec(specPath)
	exitOnError(err, globals)

	// --apply on the command line overrides any apply flag baked into
	// individual spec operations, the same override relationship a
	// CLI flag takes over a config default elsewhere in this tool.
	if apply {
		for i := range spec.Operations {
			spec.Operations[i].Apply = true
		}
	}

	cfg := loadProjectConfig(configPath, globals)
	excludes = append(append([]string{}, cfg.Excludes...), excludes...)

	var store *ledger.Store
	if apply {
		s, err := openStore(cfg)
		exitOnError(err, globals)
		store = s
	}

	files, err := batch.CollectFiles([]string{spec.BasePath}, excludes)
	exitOnError(err, globals)

	runner := batch.NewRunner(store, "batch")
	if bar := newFileProgress("batch", len(files)*len(spec.Operations), globals); bar != nil {
		runner.Progress = bar
	}
	results, err := runner.RunBatch(context.Background(), spec, excludes)
	exitOnError(err, globals)

	for i, res := range results {
		if !globals.JSON && len(results) > 1 {
			ui.Header(fmt.Sprintf("Operation %d: %s", i+1, res.Operation.Type))
		}
		printOperationResult(res, globals)
	}
}
