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
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/internal/ui"
)

// runRevert implements the "revert" subcommand (spec.md §4.8's
// revert_run): restores every file a run touched to its pre-apply
// content, refusing on a hash mismatch unless --force (spec.md §7 kind
// 7 / §8 scenario 6).
func runRevert(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("revert", flag.ExitOnError)
	var force bool
	fs.BoolVar(&force, "force", false, "Revert even if the file has changed since this run was applied")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld revert <run-id> [--force]")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	rest := fs.Args()
	if len(rest) != 1 {
		exitOnError(wErrors.NewInputError(
			"Missing run ID", "weld revert takes exactly one run ID argument",
			"Run \"weld history\" to find a run ID", nil,
		), globals)
	}
	runID := rest[0]

	cfg := loadProjectConfig(configPath, globals)
	store, err := openStore(cfg)
	exitOnError(err, globals)

	exitOnError(store.RevertRun(runID, force), globals)
	weldMetrics.operationsReverted.Inc()
	ui.Successf("Reverted run %s", runID)
}
