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
	"github.com/kraklabs/weld/pkg/batch"
	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/ledger"
)

// runTransform implements the bulk comment-out/remove/replace subcommand
// (spec.md §4.4's Transform primitive): matched nodes are selected the
// same way "weld find" selects them (category/group, name, content
// filter), then action is applied to each, honoring --limit across the
// whole file set.
func runTransform(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	mf := bindMutatingFlags(fs)
	var (
		name    string
		content string
		action  string
	)
	fs.StringVar(&name, "name", "", "Name filter")
	fs.StringVar(&content, "content", "", "Only transform matches whose snippet contains this substring")
	fs.StringVar(&action, "action", "comment", "comment (default), remove, or replace:<text>")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld transform --paths <p>... --kind <k> [--name <n>] [--content <s>] [--action comment|remove|replace:<text>] [--apply]")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	if mf.kind == "" {
		exitOnError(wErrors.NewInputError(
			"Missing --kind", "weld transform needs --kind to select which nodes to act on",
			"Pass --kind record|union|function|call|<category>", nil,
		), globals)
	}

	parsedAction, ok := engine.ParseTransformAction(action)
	if !ok {
		exitOnError(wErrors.NewInputError(
			"Invalid --action", "must be comment, remove, or replace:<text>",
			"Use --action comment|remove|replace:<text>", nil,
		), globals)
	}

	op := engine.Operation{
		Type:          engine.OpTransform,
		Kind:          mf.kind,
		NameFilter:    name,
		ContentFilter: content,
		Action:        parsedAction,
		Apply:         mf.apply,
		Where:         mf.where,
		Limit:         mf.limit,
	}

	cfg := loadProjectConfig(configPath, globals)
	files, err := resolveFiles(mf, cfg)
	exitOnError(err, globals)

	var store *ledger.Store
	if op.Apply {
		s, err := openStore(cfg)
		exitOnError(err, globals)
		store = s
	}

	runner := batch.NewRunner(store, "transform")
	runner.Progress = newFileProgress("transform", len(files), globals)
	res, err := runner.ApplyOperation(context.Background(), op, files)
	exitOnError(err, globals)
	printOperationResult(res, globals)
}
