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
	"strings"

	flag "github.com/spf13/pflag"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/pkg/batch"
	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/ledger"
)

// runLegacy implements the deprecated single-purpose subcommands
// rs-hack/src/main.rs kept alongside its unified add/remove/update
// commands for users who scripted against the older interface
// (SPEC_FULL.md §5's supplemented-features list). Each one just
// populates the same engine.Operation descriptor the unified commands
// build and hands it to the same dispatcher — sugar over C6, never a
// separate code path.
func runLegacy(command string, args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	mf := bindMutatingFlags(fs)
	var (
		structName string
		enumName   string
		fieldName  string
		fieldType  string
		fieldValue string
		method     string
		derive     string
		use        string
	)
	fs.StringVar(&structName, "struct", "", "Target struct name")
	fs.StringVar(&enumName, "enum", "", "Target enum name (add-derive only)")
	fs.StringVar(&fieldName, "field-name", "", "Field name")
	fs.StringVar(&fieldType, "field-type", "", "Field type")
	fs.StringVar(&fieldValue, "field-value", "", "Literal default value")
	fs.StringVar(&method, "method", "", "Impl method definition")
	fs.StringVar(&derive, "derive", "", "Comma-separated derive trait list")
	fs.StringVar(&use, "use", "", "Use path to add")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: weld %s --paths <p>... [target flags] [--apply]\n", command)
		fmt.Fprintln(os.Stderr, "Deprecated: use the unified add/remove/update subcommands instead.")
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	op := engine.Operation{Apply: mf.apply, Where: mf.where, Limit: mf.limit}
	pos, err := engine.ParsePosition(mf.position)
	exitOnError(err, globals)
	op.Position = pos
	mode, ok := engine.ParseEditMode(mf.editMode)
	if !ok {
		exitOnError(wErrors.NewInputError("Invalid --edit-mode", "must be surgical or reprint", "Use --edit-mode surgical|reprint", nil), globals)
	}
	op.EditMode = mode

	switch command {
	case "add-struct-field":
		op.Type = engine.OpAddStructField
		op.StructName = structName
		op.FieldName = fieldName
		op.FieldDef = fieldName + ": " + fieldType
	case "update-struct-field":
		op.Type = engine.OpUpdateStructField
		op.StructName = structName
		op.FieldName = fieldName
		op.FieldDef = fieldType
	case "remove-struct-field":
		op.Type = engine.OpRemoveStructField
		op.StructName = structName
		op.FieldName = fieldName
	case "add-struct-literal-field":
		op.Type = engine.OpAddStructLiteralField
		op.StructName = structName
		op.FieldName = fieldName
		op.FieldValue = fieldValue
	case "add-derive":
		op.Type = engine.OpAddDerive
		op.TargetName = structName
		if op.TargetName == "" {
			op.TargetName = enumName
		}
		op.DeriveList = strings.Split(derive, ",")
		for i := range op.DeriveList {
			op.DeriveList[i] = strings.TrimSpace(op.DeriveList[i])
		}
	case "add-impl-method":
		op.Type = engine.OpAddImplMethod
		op.StructName = structName
		op.MethodDef = method
	case "add-use":
		op.Type = engine.OpAddUseStatement
		op.UsePath = use
	default:
		exitOnError(wErrors.NewInputError("Unknown legacy command", command, "", nil), globals)
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

	runner := batch.NewRunner(store, command)
	res, err := runner.ApplyOperation(context.Background(), op, files)
	exitOnError(err, globals)
	printOperationResult(res, globals)
}
