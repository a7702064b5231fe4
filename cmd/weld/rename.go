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
	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/ledger"
	"github.com/kraklabs/weld/pkg/rast"
)

// runRename implements the function/enum-variant rename subcommand
// (spec.md §4.5/§4.6): a bare target ambiguous between a function and a
// union variant is a fatal error (§7 kind 3) unless --kind disambiguates
// it; --validate runs the line-level textual scan first and never
// mutates.
func runRename(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	mf := bindMutatingFlags(fs)
	var (
		oldName       string
		newName       string
		enumName      string
		canonicalPath string
		explicitKind  string
		validate      bool
	)
	fs.StringVar(&oldName, "old", "", "Current name")
	fs.StringVar(&newName, "new", "", "New name")
	fs.StringVar(&enumName, "enum", "", "Enum the variant belongs to (enum-variant rename)")
	fs.StringVar(&canonicalPath, "canonical-path", "", "Fully qualified path, e.g. \"crate::config::Config\", to disambiguate via the path resolver")
	fs.StringVar(&explicitKind, "kind", "", "Disambiguate a bare rename target: function or enum-variant")
	fs.BoolVar(&validate, "validate", false, "Run the line-level textual scan for misses instead of renaming (never mutates)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: weld rename --paths <p>... --old <name> --new <name> [--enum <E>] [--kind function|enum-variant] [--validate] [--apply]")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	if oldName == "" || newName == "" {
		exitOnError(wErrors.NewInputError(
			"Missing --old/--new", "Both --old and --new are required", "Pass --old <name> --new <name>", nil,
		), globals)
	}

	cfg := loadProjectConfig(configPath, globals)
	files, err := resolveFiles(mf, cfg)
	exitOnError(err, globals)

	parser := rast.NewParser()
	ctx := context.Background()

	if validate {
		any := false
		for _, path := range files {
			source, err := os.ReadFile(path)
			if err != nil {
				ui.Warningf("%s: %v", path, err)
				continue
			}
			hits := engine.ValidateRename(source, oldName)
			if len(hits) == 0 {
				continue
			}
			any = true
			for _, line := range engine.FormatValidationReport(path, hits) {
				fmt.Println(line)
			}
		}
		if !any {
			ui.Info("No textual occurrences found outside the AST-driven rename's reach.")
		}
		return
	}

	opType := engine.OpRenameFunction
	switch explicitKind {
	case "function":
		opType = engine.OpRenameFunction
	case "enum-variant":
		opType = engine.OpRenameEnumVariant
	case "":
		if enumName != "" {
			opType = engine.OpRenameEnumVariant
		} else {
			opType = detectRenameKind(files, parser, ctx, oldName, globals)
		}
	default:
		exitOnError(wErrors.NewInputError(
			"Invalid --kind", "must be function or enum-variant", "Use --kind function|enum-variant", nil,
		), globals)
	}

	op := engine.Operation{
		Type:          opType,
		OldName:       oldName,
		NewName:       newName,
		EnumName:      enumName,
		CanonicalPath: canonicalPath,
		Apply:         mf.apply,
		Where:         mf.where,
		Limit:         mf.limit,
	}

	var store *ledger.Store
	if op.Apply {
		s, err := openStore(cfg)
		exitOnError(err, globals)
		store = s
	}

	runner := batch.NewRunner(store, "rename")
	runner.Progress = newFileProgress("rename", len(files), globals)
	res, err := runner.ApplyOperation(ctx, op, files)
	exitOnError(err, globals)
	printOperationResult(res, globals)
}

// detectRenameKind checks oldName against both candidate categories
// across the whole file set and fails fatally (spec.md §7 kind 3 / §8
// scenario 5) if it matches both, exactly as
// original_source/rs-hack/src/main.rs's own bare-rename ambiguity guard
// does — a bare target can't be resolved without the caller's help when
// a function and an enum variant share its name.
func detectRenameKind(files []string, parser *rast.Parser, ctx context.Context, oldName string, globals GlobalFlags) engine.OperationType {
	foundFunction := false
	foundVariant := false
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		tree, err := parser.Parse(ctx, path, source)
		if err != nil {
			continue
		}
		if amb := engine.DetectRenameAmbiguity(tree, oldName); len(amb) > 1 {
			tree.Close()
			exitOnError(engine.AmbiguityError(oldName, amb), globals)
		}
		if len(engine.Inspect(tree, engine.InspectQuery{Categories: []rast.Category{rast.CategoryFunctionDefinition}, Name: oldName})) > 0 {
			foundFunction = true
		}
		if len(engine.Inspect(tree, engine.InspectQuery{Categories: []rast.Category{rast.CategoryUnionVariantUsage}, Name: oldName})) > 0 {
			foundVariant = true
		}
		tree.Close()
	}
	if foundVariant && !foundFunction {
		return engine.OpRenameEnumVariant
	}
	return engine.OpRenameFunction
}
