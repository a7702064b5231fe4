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

package engine

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

// Dispatch resolves op against the set of payload fields it carries and
// invokes the matching primitive or composite against a single parsed
// file (spec.md §4.5's "Resolves which primitive or composite to invoke
// based on which payload fields were supplied"). The individual
// primitives stay unaware of the Operation type entirely.
func Dispatch(source []byte, root *sitter.Node, op Operation, resolver *PathResolver) ([]byte, ModificationResult, error) {
	if name := whereTargetName(op); name != "" && op.Where != "" {
		if !passesWhereFilter(root, source, name, op.Where) {
			return source, ModificationResult{}, nil
		}
	}

	switch op.Type {
	case OpAddStructField:
		return dispatchAddStructField(source, root, op, resolver)
	case OpUpdateStructField:
		return UpdateStructField(source, root, op.StructName, op.FieldName, op.FieldDef)
	case OpRemoveStructField:
		return RemoveStructField(source, root, op.StructName, op.FieldName)
	case OpAddStructLiteralField:
		return AddStructLiteralField(source, root, resolver, op.StructName, op.FieldName, op.FieldValue, op.Position)

	case OpAddEnumVariant:
		return AddEnumVariant(source, root, op.EnumName, op.VariantDef, op.Position)
	case OpUpdateEnumVariant:
		return UpdateEnumVariant(source, root, op.EnumName, op.VariantName, op.VariantDef)
	case OpRemoveEnumVariant:
		return RemoveEnumVariant(source, root, op.EnumName, op.VariantName)
	case OpRenameEnumVariant:
		return RenameEnumVariant(source, root, resolver, op.EnumName, op.OldName, op.NewName)

	case OpAddMatchArm:
		return dispatchAddMatchArm(source, root, op)
	case OpUpdateMatchArm:
		return dispatchUpdateMatchArm(source, root, op)
	case OpRemoveMatchArm:
		return RemoveMatchArm(source, root, op.FunctionName, op.MatchArm)

	case OpAddImplMethod:
		return AddImplMethod(source, root, op.StructName, op.MethodDef, op.Position)
	case OpAddUseStatement:
		return AddUseDirective(source, root, op.UsePath, op.Position)
	case OpAddDerive:
		return AddDerive(source, root, op.TargetName, op.DeriveList)
	case OpRemoveDerive:
		return RemoveDerive(source, root, op.TargetName, op.DeriveList)

	case OpTransform:
		cats := transformCategories(op)
		return Transform(source, root, cats, op.NameFilter, op.ContentFilter, op.Action, op.Limit)

	case OpRenameFunction:
		return RenameFunction(source, root, resolver, op.OldName, op.NewName)

	case OpAddDocComment:
		return AddDocComment(source, root, op.TargetName, op.DocText, op.DocStyle)
	case OpUpdateDocComment:
		return UpdateDocComment(source, root, op.TargetName, op.DocText, op.DocStyle)
	case OpRemoveDocComment:
		return RemoveDocComment(source, root, op.TargetName)

	default:
		return source, ModificationResult{}, errUnknownOperation(string(op.Type))
	}
}

// dispatchAddStructField implements the add-field-with-literal-default
// composite (spec.md §4.9 / SPEC_FULL.md C6): when FieldValue is set, the
// definition add runs first and the struct-literal add then runs against
// a fresh parse of the edited source, since the definition edit shifts
// every byte offset after it. LiteralOnly
// skips the definition edit entirely, for batches that already added the
// field definition in an earlier operation and only need literals caught
// up.
func dispatchAddStructField(source []byte, root *sitter.Node, op Operation, resolver *PathResolver) ([]byte, ModificationResult, error) {
	cur := source
	var combined ModificationResult

	if !op.LiteralOnly {
		out, res, err := AddStructField(cur, root, op.StructName, op.FieldDef, op.Position)
		if err != nil {
			return source, ModificationResult{}, err
		}
		cur = out
		combined.Changed = combined.Changed || res.Changed
		combined.ModifiedNodes = append(combined.ModifiedNodes, res.ModifiedNodes...)
	}

	if op.FieldValue == "" {
		return cur, combined, nil
	}

	fd, ok := ParseFieldDef(op.FieldDef)
	if !ok {
		return source, ModificationResult{}, errInvalidFieldDef(op.FieldDef)
	}

	// The literal-field add must run against a fresh parse of cur, since
	// the definition edit above shifted every byte offset in source.
	reparsed, err := rast.NewParser().Parse(context.Background(), "", cur)
	if err != nil {
		return source, ModificationResult{}, err
	}
	defer reparsed.Close()
	out, res, err := AddStructLiteralField(reparsed.Source, reparsed.Root, resolver, op.StructName, fd.Name, op.FieldValue, op.Position)
	if err != nil {
		return source, ModificationResult{}, err
	}
	combined.Changed = combined.Changed || res.Changed
	combined.ModifiedNodes = append(combined.ModifiedNodes, res.ModifiedNodes...)
	combined.UnmatchedQualifiedPaths = append(combined.UnmatchedQualifiedPaths, res.UnmatchedQualifiedPaths...)
	return out, combined, nil
}

func dispatchAddMatchArm(source []byte, root *sitter.Node, op Operation) ([]byte, ModificationResult, error) {
	if op.AutoDetect {
		return AutoDetectMissingArms(source, root, op.EnumName, op.FunctionName, op.MatchArm)
	}
	pattern, body, ok := splitMatchArm(op.MatchArm)
	if !ok {
		return source, ModificationResult{}, errInvalidMatchArm(op.MatchArm)
	}
	return AddMatchArm(source, root, op.FunctionName, pattern, body, op.Position)
}

func dispatchUpdateMatchArm(source []byte, root *sitter.Node, op Operation) ([]byte, ModificationResult, error) {
	pattern, body, ok := splitMatchArm(op.MatchArm)
	if !ok {
		return source, ModificationResult{}, errInvalidMatchArm(op.MatchArm)
	}
	return UpdateMatchArm(source, root, op.FunctionName, pattern, body)
}

// splitMatchArm parses a "pattern => body" payload string on its
// top-level "=>" (the first one outside any bracket nesting, so guard
// expressions and nested match bodies in the arm's own value are not
// mistaken for the split point).
func splitMatchArm(s string) (pattern, body string, ok bool) {
	depth := 0
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth == 0 && s[i+1] == '>' {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:]), true
			}
		}
	}
	return "", "", false
}

func transformCategories(op Operation) []rast.Category {
	kind := op.Kind
	if kind == "" {
		kind = op.NodeType
	}
	return rast.ExpandKind(kind)
}

// TargetExists runs the query layer's existence check for op's primary
// target (spec.md §4.5: "Runs an existence check using the query layer;
// if the target is absent, delegates to the hint engine"). It is called
// by the batch/CLI layer before Dispatch, not by Dispatch itself, so a
// primitive's own Changed=false result (meaning "already satisfies the
// request") is never confused with "nothing to act on".
func TargetExists(tree *rast.Tree, op Operation) bool {
	switch op.Type {
	case OpAddStructField, OpUpdateStructField, OpRemoveStructField, OpAddStructLiteralField:
		return len(Inspect(tree, InspectQuery{Categories: []rast.Category{rast.CategoryRecordDefinition}, Name: op.StructName})) > 0
	case OpAddEnumVariant, OpUpdateEnumVariant, OpRemoveEnumVariant, OpRenameEnumVariant:
		return len(Inspect(tree, InspectQuery{Categories: []rast.Category{rast.CategoryUnionDefinition}, Name: op.EnumName})) > 0
	case OpAddMatchArm, OpUpdateMatchArm, OpRemoveMatchArm:
		if op.FunctionName == "" {
			return len(Inspect(tree, InspectQuery{Categories: []rast.Category{rast.CategoryCaseArm}})) > 0
		}
		return len(Inspect(tree, InspectQuery{Categories: []rast.Category{rast.CategoryFunctionDefinition}, Name: op.FunctionName})) > 0
	case OpAddImplMethod:
		return len(Inspect(tree, InspectQuery{Categories: []rast.Category{rast.CategoryRecordDefinition, rast.CategoryUnionDefinition}, Name: op.StructName})) > 0
	case OpAddDerive, OpRemoveDerive:
		return len(Inspect(tree, InspectQuery{Categories: []rast.Category{rast.CategoryRecordDefinition, rast.CategoryUnionDefinition}, Name: op.TargetName})) > 0
	case OpRenameFunction:
		return len(Inspect(tree, InspectQuery{Categories: []rast.Category{rast.CategoryFunctionDefinition}, Name: op.OldName})) > 0
	case OpAddDocComment, OpUpdateDocComment, OpRemoveDocComment:
		return findDefinitionByName(tree.Root, tree.Source, op.TargetName) != nil
	case OpAddUseStatement, OpTransform:
		return true // no single named target to check existence of
	default:
		return true
	}
}
