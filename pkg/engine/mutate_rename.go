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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

// RenameFunction renames every free-function definition and unqualified
// call site of oldName to newName (spec.md §3 "Rename function (with
// optional qualified function path)"). When canonicalPath is nonempty the
// resolver disambiguates qualified call sites (module::old_name(...));
// otherwise only bare identifier calls matching oldName are touched,
// mirroring C3's legacy mode. Method calls (receiver.old_name(...)) are
// never touched by this primitive — the engine has no receiver-type
// information, so a plain identifier rename of a method name could
// silently rewrite an unrelated method on a different type; callers that
// want that need --kind function, which the dispatcher resolves to the
// broader group but RenameFunction itself stays syntax-conservative.
func RenameFunction(source []byte, root *sitter.Node, resolver *PathResolver, oldName, newName string) ([]byte, ModificationResult, error) {
	var edits []Replacement
	var backups []BackupNode

	rast.Walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "function_item":
			if implAncestorNode(n) {
				return
			}
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil || rast.Text(source, nameNode) != oldName {
				return
			}
			edits = append(edits, Replacement{Start: int(nameNode.StartByte()), End: int(nameNode.EndByte()), NewText: newName})
			backups = append(backups, BackupNode{
				Category: rast.CategoryFunctionDefinition, Identifier: oldName,
				OriginalContent: rast.Text(source, n), Location: LocationOf(n),
			})

		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn == nil || fn.Type() == "field_expression" {
				return // method call: out of scope, see doc comment above
			}
			renameCallTarget(source, fn, resolver, oldName, newName, &edits, &backups)
		}
	})

	if len(edits) == 0 {
		return source, ModificationResult{Changed: false}, nil
	}
	out, err := ApplySurgicalEdits(source, edits)
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{Changed: true, ModifiedNodes: backups}, nil
}

// renameCallTarget handles both a bare identifier call target
// (old_name(...)) and a scoped path call target (module::old_name(...)),
// renaming only the final segment.
func renameCallTarget(source []byte, fn *sitter.Node, resolver *PathResolver, oldName, newName string, edits *[]Replacement, backups *[]BackupNode) {
	switch fn.Type() {
	case "identifier":
		if rast.Text(source, fn) != oldName {
			return
		}
		if resolver != nil && !resolver.MatchesTarget(oldName) {
			return
		}
		*edits = append(*edits, Replacement{Start: int(fn.StartByte()), End: int(fn.EndByte()), NewText: newName})
		*backups = append(*backups, BackupNode{
			Category: rast.CategoryFunctionCall, Identifier: oldName,
			OriginalContent: rast.Text(source, fn), Location: LocationOf(fn),
		})

	case "scoped_identifier":
		nameNode := fn.ChildByFieldName("name")
		pathNode := fn.ChildByFieldName("path")
		if nameNode == nil || rast.Text(source, nameNode) != oldName {
			return
		}
		full := rast.Text(source, fn)
		if resolver != nil && !resolver.MatchesTarget(full) {
			return
		}
		if resolver == nil && pathNode != nil {
			return // legacy mode never touches qualified call sites
		}
		*edits = append(*edits, Replacement{Start: int(nameNode.StartByte()), End: int(nameNode.EndByte()), NewText: newName})
		*backups = append(*backups, BackupNode{
			Category: rast.CategoryFunctionCall, Identifier: full,
			OriginalContent: rast.Text(source, fn), Location: LocationOf(fn),
		})
	}
}

func implAncestorNode(n *sitter.Node) bool {
	return rast.Categorize(n) == rast.CategoryImplMethod
}
