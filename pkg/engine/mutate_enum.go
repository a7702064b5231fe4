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
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

func findEnumByName(root *sitter.Node, source []byte, name string) *sitter.Node {
	var found *sitter.Node
	rast.Walk(root, func(n *sitter.Node) {
		if found != nil || n.Type() != "enum_item" {
			return
		}
		if nameNode := n.ChildByFieldName("name"); nameNode != nil && rast.Text(source, nameNode) == name {
			found = n
		}
	})
	return found
}

func variantList(enumNode *sitter.Node) *sitter.Node {
	body := enumNode.ChildByFieldName("body")
	if body == nil || body.Type() != "enum_variant_list" {
		return nil
	}
	return body
}

func variantNodes(source []byte, list *sitter.Node) (names []string, nodes []*sitter.Node) {
	for i := 0; i < int(list.NamedChildCount()); i++ {
		v := list.NamedChild(i)
		if v.Type() != "enum_variant" {
			continue
		}
		if name := v.ChildByFieldName("name"); name != nil {
			names = append(names, rast.Text(source, name))
			nodes = append(nodes, v)
		}
	}
	return
}

func variantByName(source []byte, list *sitter.Node, name string) *sitter.Node {
	names, nodes := variantNodes(source, list)
	for i, n := range names {
		if n == name {
			return nodes[i]
		}
	}
	return nil
}

// AddEnumVariant adds variantDef to enumName's definition, unless a
// variant of that name already exists.
func AddEnumVariant(source []byte, root *sitter.Node, enumName, variantDef string, pos InsertPosition) ([]byte, ModificationResult, error) {
	vd, ok := ParseVariantDef(variantDef)
	if !ok {
		return source, ModificationResult{}, errInvalidVariantDef(variantDef)
	}

	enumNode := findEnumByName(root, source, enumName)
	if enumNode == nil {
		return source, ModificationResult{}, nil
	}
	list := variantList(enumNode)
	if list == nil {
		return source, ModificationResult{}, nil
	}

	if variantByName(source, list, vd.Name) != nil {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, enumNode, true)
	names, nodes := variantNodes(source, list)

	offset, err := siblingInsertOffset(pos, names, nodes, int(list.StartByte())+1, int(list.EndByte())-1)
	if err != nil {
		return source, ModificationResult{}, err
	}

	indent := detectVariantIndent(source, list)
	text := fmt.Sprintf("\n%s%s,", indent, vd.Render())
	if len(nodes) == 0 {
		text = fmt.Sprintf("\n%s%s,\n", indent, vd.Render())
	}

	out, err := ApplySurgicalEdits(source, []Replacement{{Start: offset, End: offset, NewText: text}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryUnionDefinition, Identifier: enumName,
			OriginalContent: before, Location: LocationOf(enumNode),
		}},
	}, nil
}

// UpdateEnumVariant replaces an existing variant's definition text
// entirely (payload shape may change, e.g. unit -> tuple).
func UpdateEnumVariant(source []byte, root *sitter.Node, enumName, variantName, newVariantDef string) ([]byte, ModificationResult, error) {
	vd, ok := ParseVariantDef(newVariantDef)
	if !ok {
		return source, ModificationResult{}, errInvalidVariantDef(newVariantDef)
	}

	enumNode := findEnumByName(root, source, enumName)
	if enumNode == nil {
		return source, ModificationResult{}, nil
	}
	list := variantList(enumNode)
	if list == nil {
		return source, ModificationResult{}, nil
	}
	variantNode := variantByName(source, list, variantName)
	if variantNode == nil {
		return source, ModificationResult{Changed: false}, nil
	}
	if rast.Text(source, variantNode) == vd.Render() {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, enumNode, true)
	out, err := ApplySurgicalEdits(source, []Replacement{{
		Start: int(variantNode.StartByte()), End: int(variantNode.EndByte()), NewText: vd.Render(),
	}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryUnionDefinition, Identifier: enumName,
			OriginalContent: before, Location: LocationOf(enumNode),
		}},
	}, nil
}

// RemoveEnumVariant removes a variant definition and its trailing comma.
func RemoveEnumVariant(source []byte, root *sitter.Node, enumName, variantName string) ([]byte, ModificationResult, error) {
	enumNode := findEnumByName(root, source, enumName)
	if enumNode == nil {
		return source, ModificationResult{}, nil
	}
	list := variantList(enumNode)
	if list == nil {
		return source, ModificationResult{}, nil
	}
	variantNode := variantByName(source, list, variantName)
	if variantNode == nil {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, enumNode, true)
	start, end := trimTrailingComma(source, variantNode)
	out, err := ApplySurgicalEdits(source, []Replacement{{Start: start, End: end, NewText: ""}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryUnionDefinition, Identifier: enumName,
			OriginalContent: before, Location: LocationOf(enumNode),
		}},
	}, nil
}

// RenameEnumVariant renames every declaration and usage of
// Enum::OldName to Enum::NewName within tree, surgically rewriting only
// the variant-name identifier span in each occurrence (the definition's
// name field and every scoped Enum::OldName path: unit values, tuple
// constructors, and match-arm patterns). Brace-form struct constructors
// and patterns, whose path the grammar parses as a type, are not rewritten.
func RenameEnumVariant(source []byte, root *sitter.Node, resolver *PathResolver, enumName, oldName, newName string) ([]byte, ModificationResult, error) {
	var edits []Replacement
	var backups []BackupNode

	enumNode := findEnumByName(root, source, enumName)
	if enumNode != nil {
		if list := variantList(enumNode); list != nil {
			if vn := variantByName(source, list, oldName); vn != nil {
				if nameField := vn.ChildByFieldName("name"); nameField != nil {
					edits = append(edits, Replacement{Start: int(nameField.StartByte()), End: int(nameField.EndByte()), NewText: newName})
					backups = append(backups, BackupNode{
						Category: rast.CategoryUnionDefinition, Identifier: enumName + "::" + oldName,
						OriginalContent: rast.Text(source, vn), Location: LocationOf(vn),
					})
				}
			}
		}
	}

	rast.Walk(root, func(n *sitter.Node) {
		if n.Type() != "scoped_identifier" {
			return
		}
		path := n.ChildByFieldName("path")
		nameNode := n.ChildByFieldName("name")
		if path == nil || nameNode == nil {
			return
		}
		if rast.Text(source, nameNode) != oldName {
			return
		}
		pathText := rast.Text(source, path)
		full := pathText + "::" + oldName
		if resolver != nil && !resolver.MatchesTarget(pathText) {
			return
		}
		if resolver == nil && pathText != enumName {
			return
		}
		edits = append(edits, Replacement{Start: int(nameNode.StartByte()), End: int(nameNode.EndByte()), NewText: newName})
		backups = append(backups, BackupNode{
			Category: rast.CategoryUnionVariantUsage, Identifier: full,
			OriginalContent: rast.Text(source, n), Location: LocationOf(n),
		})
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

func detectVariantIndent(source []byte, list *sitter.Node) string {
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		if child.Type() != "enum_variant" {
			continue
		}
		lineStart := int(child.StartByte())
		for lineStart > 0 && source[lineStart-1] != '\n' {
			lineStart--
		}
		return string(source[lineStart:child.StartByte()])
	}
	return "    "
}

// trimTrailingComma extends node's end byte past a following comma (and
// the node's start byte back over its own leading indentation), the
// shared "remove a comma-delimited list element" logic used by struct
// fields, enum variants, and match arms.
func trimTrailingComma(source []byte, node *sitter.Node) (start, end int) {
	start = int(node.StartByte())
	end = int(node.EndByte())
	rest := string(source[end:])
	j := 0
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
		j++
	}
	if j < len(rest) && rest[j] == ',' {
		end += j + 1
	}
	for start > 0 && (source[start-1] == ' ' || source[start-1] == '\t') {
		start--
	}
	return start, end
}
