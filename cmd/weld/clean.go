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

	"github.com/kraklabs/weld/internal/ui"
)

// runClean implements the "clean" subcommand (spec.md §4.8's
// clean_old_state/get_state_size): prunes every run older than
// --keep-days and reports the resulting state-directory size.
func runClean(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	var keepDays int
	fs.IntVar(&keepDays, "keep-days", 30, "Remove runs older than this many days (0 removes every run)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld clean [--keep-days <n>]")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	cfg := loadProjectConfig(configPath, globals)
	store, err := openStore(cfg)
	exitOnError(err, globals)

	removed, err := store.CleanOldState(keepDays)
	exitOnError(err, globals)

	size, err := store.Size()
	exitOnError(err, globals)

	ui.Successf("Removed %d run(s) older than %d day(s). State directory now %d bytes.", removed, keepDays, size)
}
