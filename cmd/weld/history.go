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

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/weld/internal/ui"
)

// runHistory implements the "history" subcommand (spec.md §4.8's
// show_history): lists every run newest-first with a
// "[can revert]"/"[applied]"/"[reverted]" status label and a --limit.
func runHistory(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	var limit int
	fs.IntVar(&limit, "limit", 20, "Show at most this many runs (0 = unlimited)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld history [--limit <n>]")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	cfg := loadProjectConfig(configPath, globals)
	store, err := openStore(cfg)
	exitOnError(err, globals)

	entries, err := store.ShowHistory(limit)
	exitOnError(err, globals)

	if globals.JSON {
		data, err := json.Marshal(entries)
		exitOnError(err, globals)
		fmt.Println(string(data))
		return
	}

	if len(entries) == 0 {
		ui.Info("No runs recorded.")
		return
	}
	ui.Header("Run history")
	for _, e := range entries {
		fmt.Printf("  %s  %s  %-9s  %-13s  %d file(s)\n",
			e.Run.RunID,
			e.Run.Timestamp.Format("2006-01-02 15:04:05"),
			e.Run.Command,
			e.Label,
			len(e.Run.FilesModified),
		)
	}
}
