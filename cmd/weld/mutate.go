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

type opKind int

const (
	opKindAdd opKind = iota
	opKindRemove
	opKindUpdate
)

// runMutate implements the unified add/remove/update dispatcher (spec.md
// §4.5 / SPEC_FULL.md C6): which primitive fires is resolved from which
// flags were supplied, exactly as original_source/rs-hack/src/main.rs's
// own auto-detection table does — --field-name+--field-type selects a
// struct-definition field, --field-name+--field-value selects a
// struct-literal field, --variant selects an enum variant, --method
// selects an impl method, --derive selects a derive macro, --use selects
// a use statement, --match-arm selects a case arm.
func runMutate(kind opKind, args []string, configPath string, globals GlobalFlags) {
	verb := map[opKind]string{opKindAdd: "add", opKindRemove: "remove", opKindUpdate: "update"}[kind]
	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	mf := bindMutatingFlags(fs)

	var (
		structName  string
		fieldName   string
		fieldType   string
		fieldValue  string
		literalOnly bool
		enumName    string
		variant     string
		variantName string
		method      string
		derive      string
		use         string
		matchArm    string
		function    string
		autoDetect  bool
	)
	fs.StringVar(&structName, "struct", "", "Target struct name")
	fs.StringVar(&fieldName, "field-name", "", "Field name (with --field-type: definition; with --field-value: literal)")
	fs.StringVar(&fieldType, "field-type", "", "Field type, e.g. \"u32\" (definition mode)")
	fs.StringVar(&fieldValue, "field-value", "", "Literal default value (literal mode)")
	fs.BoolVar(&literalOnly, "literal-only", false, "Only update struct-literal occurrences, skip the definition")
	fs.StringVar(&enumName, "enum", "", "Target enum name")
	fs.StringVar(&variant, "variant", "", "Variant definition (add: full def, update: new def)")
	fs.StringVar(&variantName, "variant-name", "", "Existing variant's bare name (update/remove)")
	fs.StringVar(&method, "method", "", "Impl method definition (add only)")
	fs.StringVar(&derive, "derive", "", "Comma-separated derive trait list")
	fs.StringVar(&use, "use", "", "Use path to add (add only)")
	fs.StringVar(&matchArm, "match-arm", "", `Match arm: "pattern => body" (add/update) or a bare pattern (remove)`)
	fs.StringVar(&function, "function", "", "Function containing the match expression")
	fs.BoolVar(&autoDetect, "auto-detect-missing-arms", false, "Add every case arm missing for --enum, inferring the body from --match-arm's template")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: weld %s --paths <p>... [target flags] [--apply]\n", verb)
		fs.PrintDefaults()
	}
	mustParseSubFlags(fs, args)

	op, err := buildOperation(kind, mf, structName, fieldName, fieldType, fieldValue, literalOnly,
		enumName, variant, variantName, method, derive, use, matchArm, function, autoDetect)
	exitOnError(err, globals)

	cfg := loadProjectConfig(configPath, globals)
	files, err := resolveFiles(mf, cfg)
	exitOnError(err, globals)

	var store *ledger.Store
	if op.Apply {
		s, err := openStore(cfg)
		exitOnError(err, globals)
		store = s
	}

	runner := batch.NewRunner(store, verb)
	runner.Progress = newFileProgress(verb, len(files), globals)
	res, err := runner.ApplyOperation(context.Background(), op, files)
	exitOnError(err, globals)
	printOperationResult(res, globals)
}

// buildOperation maps the per-verb flags gathered by runMutate onto a
// concrete engine.Operation, applying SPEC_FULL.md C6's auto-detection
// table. Mutually exclusive flag combinations are rejected here, before
// the file set is even resolved.
func buildOperation(kind opKind, mf *mutatingFlags, structName, fieldName, fieldType, fieldValue string,
	literalOnly bool, enumName, variant, variantName, method, derive, use, matchArm, function string, autoDetect bool,
) (engine.Operation, error) {
	op := engine.Operation{Apply: mf.apply, Where: mf.where, Limit: mf.limit}

	pos, err := engine.ParsePosition(mf.position)
	if err != nil {
		return engine.Operation{}, err
	}
	op.Position = pos

	mode, ok := engine.ParseEditMode(mf.editMode)
	if !ok {
		return engine.Operation{}, wErrors.NewInputError(
			"Invalid --edit-mode", "must be surgical or reprint", "Use --edit-mode surgical|reprint", nil)
	}
	op.EditMode = mode

	switch {
	case fieldName != "" && fieldType != "":
		op.Type = opFieldDefType(kind)
		op.StructName = structName
		op.FieldName = fieldName
		if kind == opKindUpdate {
			// UpdateStructField takes the new type alone, not "name: Type".
			op.FieldDef = fieldType
		} else {
			op.FieldDef = fieldName + ": " + fieldType
		}
		op.FieldValue = fieldValue
		op.LiteralOnly = literalOnly

	case fieldName != "" && fieldValue != "":
		if kind != opKindAdd {
			return engine.Operation{}, wErrors.NewInputError(
				"--field-value only applies to add",
				"remove/update of struct-literal occurrences is not a supported operation",
				"Use weld add --field-name --field-value for literal defaults", nil)
		}
		op.Type = engine.OpAddStructLiteralField
		op.StructName = structName
		op.FieldName = fieldName
		op.FieldValue = fieldValue

	case fieldName != "" && kind == opKindRemove:
		op.Type = engine.OpRemoveStructField
		op.StructName = structName
		op.FieldName = fieldName

	case variant != "" || variantName != "":
		op.Type = opVariantType(kind)
		op.EnumName = enumName
		switch kind {
		case opKindAdd:
			op.VariantDef = variant
		case opKindUpdate:
			op.VariantName = variantName
			op.VariantDef = variant
		case opKindRemove:
			op.VariantName = variantName
		}

	case method != "":
		if kind != opKindAdd {
			return engine.Operation{}, wErrors.NewInputError(
				"--method only applies to add", "impl methods can only be added, not removed/updated by weld",
				"Use weld add --struct --method", nil)
		}
		op.Type = engine.OpAddImplMethod
		op.StructName = structName
		op.MethodDef = method

	case derive != "":
		op.Type = engine.OpAddDerive
		if kind == opKindRemove {
			op.Type = engine.OpRemoveDerive
		}
		op.TargetName = structName
		if op.TargetName == "" {
			op.TargetName = enumName
		}
		op.DeriveList = strings.Split(derive, ",")
		for i := range op.DeriveList {
			op.DeriveList[i] = strings.TrimSpace(op.DeriveList[i])
		}

	case use != "":
		if kind != opKindAdd {
			return engine.Operation{}, wErrors.NewInputError(
				"--use only applies to add", "use statements can only be added by weld",
				"Use weld add --use <path>", nil)
		}
		op.Type = engine.OpAddUseStatement
		op.UsePath = use

	case matchArm != "" || autoDetect:
		op.Type = opMatchArmType(kind)
		op.FunctionName = function
		op.MatchArm = matchArm
		op.EnumName = enumName
		op.AutoDetect = autoDetect && kind == opKindAdd

	default:
		return engine.Operation{}, wErrors.NewInputError(
			"No target specified",
			"None of --field-name, --variant, --method, --derive, --use, or --match-arm were given",
			"See 'weld "+verbName(kind)+" --help' for the supported target flags",
			nil,
		)
	}
	return op, nil
}

func opFieldDefType(kind opKind) engine.OperationType {
	switch kind {
	case opKindAdd:
		return engine.OpAddStructField
	case opKindUpdate:
		return engine.OpUpdateStructField
	default:
		return engine.OpRemoveStructField
	}
}

func opVariantType(kind opKind) engine.OperationType {
	switch kind {
	case opKindAdd:
		return engine.OpAddEnumVariant
	case opKindUpdate:
		return engine.OpUpdateEnumVariant
	default:
		return engine.OpRemoveEnumVariant
	}
}

func opMatchArmType(kind opKind) engine.OperationType {
	switch kind {
	case opKindAdd:
		return engine.OpAddMatchArm
	case opKindUpdate:
		return engine.OpUpdateMatchArm
	default:
		return engine.OpRemoveMatchArm
	}
}

func verbName(kind opKind) string {
	return map[opKind]string{opKindAdd: "add", opKindRemove: "remove", opKindUpdate: "update"}[kind]
}
