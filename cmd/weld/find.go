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
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/internal/ui"
	"github.com/kraklabs/weld/pkg/batch"
	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/rast"
)

// runFind implements the C4 query subcommand: inspect(category, name?,
// content_filter?, include_comments?) -> []Match (spec.md §4.3), plus the
// field-name mode that searches across struct definitions, enum variant
// bodies, and struct-literal expressions at once.
func runFind(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	var (
		paths           []string
		excludes        []string
		kind            string
		name            string
		fieldName       string
		contentFilter   string
		includeComments bool
	)
	fs.StringSliceVar(&paths, "paths", nil, "Files, directories, or globs to search (repeatable)")
	fs.StringSliceVar(&excludes, "exclude", nil, "Glob pattern to exclude (repeatable)")
	fs.StringVar(&kind, "kind", "", "Category or group to search (e.g. record, union, function, call)")
	fs.StringVar(&name, "name", "", "Name filter: bare, \"*::Name\", or fully-qualified \"A::B\"")
	fs.StringVar(&fieldName, "field", "", "Search field-name mode instead: find every occurrence of this field name")
	fs.StringVar(&contentFilter, "content", "", "Only include matches whose snippet contains this substring")
	fs.BoolVar(&includeComments, "include-comments", false, "Attach each match's preceding comment block")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld find --paths <p>... [--kind <k>] [--name <n>] [--field <f>] [--content <s>] [--include-comments]")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	if fieldName == "" && kind == "" {
		exitOnError(wErrors.NewInputError(
			"Missing --kind or --field",
			"weld find needs either --kind (category search) or --field (field-name mode)",
			"Pass --kind record|union|function|call|<category>, or --field <name>",
			nil,
		), globals)
	}

	cfg := loadProjectConfig(configPath, globals)
	excludes = append(append([]string{}, cfg.Excludes...), excludes...)
	files, err := batch.CollectFiles(paths, excludes)
	exitOnError(err, globals)

	parser := rast.NewParser()
	ctx := context.Background()

	type fileMatches struct {
		Path    string               `json:"file_path"`
		Matches []engine.Match       `json:"matches,omitempty"`
		Fields  []engine.FieldMatch  `json:"field_matches,omitempty"`
	}
	var all []fileMatches
	total := 0

	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			ui.Warningf("%s: %v", path, err)
			continue
		}
		tree, err := parser.Parse(ctx, path, source)
		if err != nil {
			ui.Warningf("%s: %v", path, err)
			continue
		}

		if fieldName != "" {
			fm := engine.InspectFields(tree, fieldName)
			if len(fm) > 0 {
				all = append(all, fileMatches{Path: path, Fields: fm})
				total += len(fm)
			}
			tree.Close()
			continue
		}

		q := engine.InspectQuery{
			Categories:      rast.ExpandKind(kind),
			Name:            name,
			ContentFilter:   contentFilter,
			IncludeComments: includeComments,
		}
		ms := engine.Inspect(tree, q)
		if len(ms) > 0 {
			all = append(all, fileMatches{Path: path, Matches: ms})
			total += len(ms)
		}
		tree.Close()
	}

	if globals.JSON {
		data, err := json.Marshal(all)
		exitOnError(err, globals)
		fmt.Println(string(data))
		return
	}

	if total == 0 {
		ui.Info("No matches.")
		return
	}
	for _, fm := range all {
		ui.Header(fm.Path)
		for _, m := range fm.Matches {
			fmt.Printf("  %s:%d  %s  %s\n", ui.DimText(fm.Path), m.Location.StartLine, m.Category, m.Identifier)
			if includeComments && m.PrecedingComment != "" {
				fmt.Printf("    %s\n", ui.DimText(m.PrecedingComment))
			}
		}
		for _, f := range fm.Fields {
			fmt.Printf("  %s:%d  field %s  (%s)\n", ui.DimText(fm.Path), f.Location.StartLine, f.Identifier, f.FieldContext)
		}
	}
	ui.Infof("%d match(es) across %d file(s)", total, len(all))
}
