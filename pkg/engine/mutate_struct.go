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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

// findStructByName locates a struct_item definition node by name.
func findStructByName(root *sitter.Node, source []byte, name string) *sitter.Node {
	var found *sitter.Node
	rast.Walk(root, func(n *sitter.Node) {
		if found != nil || n.Type() != "struct_item" {
			return
		}
		if nameNode := n.ChildByFieldName("name"); nameNode != nil && rast.Text(source, nameNode) == name {
			found = n
		}
	})
	return found
}

func fieldList(structNode *sitter.Node) *sitter.Node {
	body := structNode.ChildByFieldName("body")
	if body == nil || body.Type() != "field_declaration_list" {
		return nil
	}
	return body
}

func existingFieldNames(source []byte, list *sitter.Node) map[string]*sitter.Node {
	out := map[string]*sitter.Node{}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		fd := list.NamedChild(i)
		if fd.Type() != "field_declaration" {
			continue
		}
		if name := fd.ChildByFieldName("name"); name != nil {
			out[rast.Text(source, name)] = fd
		}
	}
	return out
}

// siblingInsertOffset resolves an InsertPosition against an ordered list
// of (name, node) siblings, returning the byte offset at which new text
// should be inserted (containerOpenByte when there are no siblings), or
// an anchor error when an After/Before anchor names no sibling.
func siblingInsertOffset(pos InsertPosition, names []string, nodes []*sitter.Node, containerOpenByte, containerCloseByte int) (offset int, err error) {
	if len(nodes) == 0 {
		return containerOpenByte, nil
	}
	switch pos.Kind {
	case PositionFirst:
		return int(nodes[0].StartByte()), nil
	case PositionLast:
		return int(nodes[len(nodes)-1].EndByte()), nil
	case PositionAfter:
		for i, n := range names {
			if n == pos.Anchor {
				return int(nodes[i].EndByte()), nil
			}
		}
		return 0, anchorNotFound(pos.Anchor)
	case PositionBefore:
		for i, n := range names {
			if n == pos.Anchor {
				return int(nodes[i].StartByte()), nil
			}
		}
		return 0, anchorNotFound(pos.Anchor)
	default:
		return int(nodes[len(nodes)-1].EndByte()), nil
	}
}

func anchorNotFound(name string) error {
	return errInvalidAnchor(name)
}

// AddStructField adds fieldDef to structName's definition, unless a field
// of that name already exists (idempotent no-op per spec.md §4.4).
func AddStructField(source []byte, root *sitter.Node, structName, fieldDef string, pos InsertPosition) ([]byte, ModificationResult, error) {
	fd, ok := ParseFieldDef(fieldDef)
	if !ok {
		return source, ModificationResult{}, errInvalidFieldDef(fieldDef)
	}

	structNode := findStructByName(root, source, structName)
	if structNode == nil {
		return source, ModificationResult{}, nil // target absent: dispatcher delegates to hints
	}
	list := fieldList(structNode)
	if list == nil {
		return source, ModificationResult{}, nil
	}

	existing := existingFieldNames(source, list)
	if _, already := existing[fd.Name]; already {
		return source, ModificationResult{Changed: false}, nil // idempotent
	}

	before := rast.Snippet(source, structNode, true)

	var names []string
	var nodes []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		if child.Type() != "field_declaration" {
			continue
		}
		if n := child.ChildByFieldName("name"); n != nil {
			names = append(names, rast.Text(source, n))
			nodes = append(nodes, child)
		}
	}

	offset, err := siblingInsertOffset(pos, names, nodes, int(list.StartByte())+1, int(list.EndByte())-1)
	if err != nil {
		return source, ModificationResult{}, err
	}

	indent := detectFieldIndent(source, list)
	text := fmt.Sprintf("\n%s%s: %s,", indent, fd.Name, fd.Type)
	if len(nodes) == 0 {
		text = fmt.Sprintf("\n%s%s: %s,\n", indent, fd.Name, fd.Type)
	}

	out, err := ApplySurgicalEdits(source, []Replacement{{Start: offset, End: offset, NewText: text}})
	if err != nil {
		return source, ModificationResult{}, err
	}

	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category:        rast.CategoryRecordDefinition,
			Identifier:      structName,
			OriginalContent: before,
			Location:        LocationOf(structNode),
		}},
	}, nil
}

// UpdateStructField replaces the type of an existing field. Silently
// succeeds (changed=false) if the field is absent.
func UpdateStructField(source []byte, root *sitter.Node, structName, fieldName, newType string) ([]byte, ModificationResult, error) {
	structNode := findStructByName(root, source, structName)
	if structNode == nil {
		return source, ModificationResult{}, nil
	}
	list := fieldList(structNode)
	if list == nil {
		return source, ModificationResult{}, nil
	}
	existing := existingFieldNames(source, list)
	fieldNode, ok := existing[fieldName]
	if !ok {
		return source, ModificationResult{Changed: false}, nil
	}
	typeNode := fieldNode.ChildByFieldName("type")
	if typeNode == nil {
		return source, ModificationResult{Changed: false}, nil
	}
	if rast.Text(source, typeNode) == newType {
		return source, ModificationResult{Changed: false}, nil // idempotent
	}

	before := rast.Snippet(source, structNode, true)
	out, err := ApplySurgicalEdits(source, []Replacement{{
		Start: int(typeNode.StartByte()), End: int(typeNode.EndByte()), NewText: newType,
	}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryRecordDefinition, Identifier: structName,
			OriginalContent: before, Location: LocationOf(structNode),
		}},
	}, nil
}

// RemoveStructField removes a field definition, including its trailing
// comma, preserving the next sibling's leading whitespace (spec.md §8
// boundary behavior).
func RemoveStructField(source []byte, root *sitter.Node, structName, fieldName string) ([]byte, ModificationResult, error) {
	structNode := findStructByName(root, source, structName)
	if structNode == nil {
		return source, ModificationResult{}, nil
	}
	list := fieldList(structNode)
	if list == nil {
		return source, ModificationResult{}, nil
	}
	existing := existingFieldNames(source, list)
	fieldNode, ok := existing[fieldName]
	if !ok {
		return source, ModificationResult{Changed: false}, nil // idempotent: already absent
	}

	before := rast.Snippet(source, structNode, true)

	start := int(fieldNode.StartByte())
	end := int(fieldNode.EndByte())
	// Consume a following comma (and only the comma; leading whitespace of
	// the next sibling, including its own indentation newline, survives).
	rest := string(source[end:])
	if trimmed := strings.TrimLeft(rest, " \t"); strings.HasPrefix(trimmed, ",") {
		consumed := len(rest) - len(trimmed) + 1
		end += consumed
	}
	// Also absorb the field's own leading whitespace back to the previous
	// sibling so removing the sole field leaves a clean empty body.
	for start > 0 && (source[start-1] == ' ' || source[start-1] == '\t') {
		start--
	}
	if start > 0 && source[start-1] == '\n' && !isOnlyFieldRemaining(list, fieldNode) {
		// keep the newline when other fields remain, so formatting of the
		// surrounding fields is untouched
	} else if isOnlyFieldRemaining(list, fieldNode) {
		for start > 0 && source[start-1] == '\n' {
			start--
		}
	}

	out, err := ApplySurgicalEdits(source, []Replacement{{Start: start, End: end, NewText: ""}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryRecordDefinition, Identifier: structName,
			OriginalContent: before, Location: LocationOf(structNode),
		}},
	}, nil
}

func isOnlyFieldRemaining(list *sitter.Node, field *sitter.Node) bool {
	count := 0
	for i := 0; i < int(list.NamedChildCount()); i++ {
		if list.NamedChild(i).Type() == "field_declaration" {
			count++
		}
	}
	return count == 1
}

// AddStructLiteralField adds fieldName: value to every struct_expression
// literal whose name matches the target (subject to path-resolver
// filtering), per spec.md's struct-literal mutation mode. Each modified
// literal is keyed "StructName#k" by visitation order for backup/revert.
func AddStructLiteralField(source []byte, root *sitter.Node, resolver *PathResolver, structName, fieldName, value string, pos InsertPosition) ([]byte, ModificationResult, error) {
	var edits []Replacement
	var backups []BackupNode
	var unmatched []string
	counter := 0

	rast.Walk(root, func(n *sitter.Node) {
		if n.Type() != "struct_expression" {
			return
		}
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		path := rast.Text(source, nameNode)
		simple := path
		if idx := strings.LastIndex(path, "::"); idx >= 0 {
			simple = path[idx+2:]
		}
		if simple != structName {
			return
		}
		// Every same-simple-name literal gets a counter slot here, matched
		// or not, so this visitation order always agrees with
		// restoreRecordLiteral's unfiltered re-walk on revert.
		identifier := fmt.Sprintf("%s#%d", structName, counter)
		counter++
		if resolver != nil && !resolver.MatchesTarget(path) {
			unmatched = append(unmatched, path)
			return
		}

		fields := n.ChildByFieldName("body")
		if fields == nil {
			return
		}
		already := false
		var names []string
		var nodes []*sitter.Node
		for i := 0; i < int(fields.NamedChildCount()); i++ {
			fi := fields.NamedChild(i)
			if fi.Type() != "field_initializer" && fi.Type() != "shorthand_field_initializer" {
				continue
			}
			fname := fi
			if f := fi.ChildByFieldName("field"); f != nil {
				fname = f
			}
			n := rast.Text(source, fname)
			names = append(names, n)
			nodes = append(nodes, fi)
			if n == fieldName {
				already = true
			}
		}

		if already {
			return // idempotent per-literal
		}

		before := rast.Snippet(source, n, false)
		offset, err := siblingInsertOffset(pos, names, nodes, int(fields.StartByte())+1, int(fields.EndByte())-1)
		if err != nil {
			return
		}
		text := fmt.Sprintf("%s: %s, ", fieldName, value)
		if len(nodes) == 0 {
			text = fmt.Sprintf("%s: %s", fieldName, value)
		} else if offset == int(nodes[len(nodes)-1].EndByte()) {
			text = fmt.Sprintf(", %s: %s", fieldName, value)
		}
		edits = append(edits, Replacement{Start: offset, End: offset, NewText: text})
		backups = append(backups, BackupNode{
			Category: rast.CategoryRecordLiteral, Identifier: identifier,
			OriginalContent: before, Location: LocationOf(n),
		})
	})

	if len(edits) == 0 {
		return source, ModificationResult{Changed: false, UnmatchedQualifiedPaths: unmatched}, nil
	}

	out, err := ApplySurgicalEdits(source, edits)
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{Changed: true, ModifiedNodes: backups, UnmatchedQualifiedPaths: unmatched}, nil
}

func detectFieldIndent(source []byte, list *sitter.Node) string {
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		if child.Type() != "field_declaration" {
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
