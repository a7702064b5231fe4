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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

// definitionItemKinds lists grammar node kinds eligible to carry a
// doc-comment target, used by AddDocComment/UpdateDocComment/
// RemoveDocComment to locate targetName across the several definition
// categories spec.md's doc-comment operation applies to.
var definitionItemKinds = []string{
	"struct_item", "enum_item", "function_item", "trait_item", "type_item",
	"mod_item", "const_item", "static_item", "impl_item",
}

func findDefinitionByName(root *sitter.Node, source []byte, name string) *sitter.Node {
	var found *sitter.Node
	rast.Walk(root, func(n *sitter.Node) {
		if found != nil {
			return
		}
		for _, k := range definitionItemKinds {
			if n.Type() != k {
				continue
			}
			nameNode := n.ChildByFieldName("name")
			if nameNode != nil && rast.Text(source, nameNode) == name {
				found = n
			}
			return
		}
	})
	return found
}

func isDocLine(source []byte, n *sitter.Node) bool {
	return strings.HasPrefix(rast.Text(source, n), "///")
}

// AddDocComment attaches docText as a new doc comment immediately above
// targetName's definition, unless one already exists (idempotent: an
// existing doc comment is left untouched, matching spec.md §4.4's
// idempotency rule for add-primitives).
func AddDocComment(source []byte, root *sitter.Node, targetName, docText string, style DocCommentStyle) ([]byte, ModificationResult, error) {
	item := findDefinitionByName(root, source, targetName)
	if item == nil {
		return source, ModificationResult{}, nil
	}
	if existing := docLines(source, item); len(existing) > 0 {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, item, true)
	indent := leadingIndentOf(source, item)
	rendered := renderDocComment(docText, indent, style)

	out, err := ApplySurgicalEdits(source, []Replacement{{
		Start: int(item.StartByte()), End: int(item.StartByte()), NewText: rendered,
	}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.Categorize(item), Identifier: targetName,
			OriginalContent: before, Location: LocationOf(item),
		}},
	}, nil
}

// UpdateDocComment replaces targetName's existing doc comment with
// docText. Silently succeeds (changed=false) if no doc comment exists.
func UpdateDocComment(source []byte, root *sitter.Node, targetName, docText string, style DocCommentStyle) ([]byte, ModificationResult, error) {
	item := findDefinitionByName(root, source, targetName)
	if item == nil {
		return source, ModificationResult{}, nil
	}
	lines := docLines(source, item)
	if len(lines) == 0 {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, item, true)
	start := int(lines[0].StartByte())
	end := int(lines[len(lines)-1].EndByte())
	for end < len(source) && source[end] != '\n' {
		end++
	}
	if end < len(source) {
		end++ // consume the final doc line's own newline
	}
	indent := leadingIndentOf(source, item)
	rendered := renderDocComment(docText, indent, style)

	out, err := ApplySurgicalEdits(source, []Replacement{{Start: start, End: end, NewText: rendered}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.Categorize(item), Identifier: targetName,
			OriginalContent: before, Location: LocationOf(item),
		}},
	}, nil
}

// RemoveDocComment deletes targetName's doc comment entirely. Silently
// succeeds (changed=false) if no doc comment exists.
func RemoveDocComment(source []byte, root *sitter.Node, targetName string) ([]byte, ModificationResult, error) {
	item := findDefinitionByName(root, source, targetName)
	if item == nil {
		return source, ModificationResult{}, nil
	}
	lines := docLines(source, item)
	if len(lines) == 0 {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, item, true)
	start := int(lines[0].StartByte())
	for start > 0 && (source[start-1] == ' ' || source[start-1] == '\t') {
		start--
	}
	end := int(lines[len(lines)-1].EndByte())
	for end < len(source) && source[end] != '\n' {
		end++
	}
	if end < len(source) {
		end++
	}

	out, err := ApplySurgicalEdits(source, []Replacement{{Start: start, End: end, NewText: ""}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.Categorize(item), Identifier: targetName,
			OriginalContent: before, Location: LocationOf(item),
		}},
	}, nil
}

// docLines returns the run of /// line-comment siblings immediately
// preceding item (not a preceding block comment or attribute), in source
// order.
func docLines(source []byte, item *sitter.Node) []*sitter.Node {
	var lines []*sitter.Node
	prev := item.PrevSibling()
	for prev != nil && prev.Type() == "line_comment" && isDocLine(source, prev) {
		lines = append([]*sitter.Node{prev}, lines...)
		prev = prev.PrevSibling()
	}
	return lines
}

func renderDocComment(docText, indent string, style DocCommentStyle) string {
	lines := strings.Split(strings.TrimRight(docText, "\n"), "\n")
	var b strings.Builder
	switch style {
	case DocStyleBlock:
		b.WriteString(indent + "/**\n")
		for _, l := range lines {
			b.WriteString(indent + " * " + l + "\n")
		}
		b.WriteString(indent + " */\n")
	default:
		for _, l := range lines {
			b.WriteString(indent + "/// " + l + "\n")
		}
	}
	b.WriteString(indent)
	return b.String()
}
