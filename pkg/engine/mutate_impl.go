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

// findImplFor locates the first impl_item whose Self type is typeName
// (skipping trait impls of the form "impl Trait for Type" only when
// preferInherent is set, so AddImplMethod prefers `impl Type { ... }`
// over `impl SomeTrait for Type { ... }` when both exist).
func findImplFor(root *sitter.Node, source []byte, typeName string, preferInherent bool) *sitter.Node {
	var inherent, first *sitter.Node
	rast.Walk(root, func(n *sitter.Node) {
		if n.Type() != "impl_item" {
			return
		}
		typeNode := n.ChildByFieldName("type")
		if typeNode == nil || implTypeName(source, typeNode) != typeName {
			return
		}
		if first == nil {
			first = n
		}
		if n.ChildByFieldName("trait") == nil && inherent == nil {
			inherent = n
		}
	})
	if preferInherent && inherent != nil {
		return inherent
	}
	return first
}

// implTypeName extracts the simple type name from an impl block's Self
// type node, stripping generic arguments (impl<T> Container<T> -> Container).
func implTypeName(source []byte, typeNode *sitter.Node) string {
	text := rast.Text(source, typeNode)
	if idx := strings.IndexByte(text, '<'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func implMethods(source []byte, body *sitter.Node) (names []string, nodes []*sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() != "function_item" {
			continue
		}
		if n := c.ChildByFieldName("name"); n != nil {
			names = append(names, rast.Text(source, n))
			nodes = append(nodes, c)
		}
	}
	return
}

// AddImplMethod inserts methodDef's body into typeName's inherent impl
// block, unless a method of that name already exists (idempotent per
// spec.md §4.4). methodDef is the full method source text, e.g.
// "fn reset(&mut self) {\n    self.count = 0;\n}".
func AddImplMethod(source []byte, root *sitter.Node, typeName, methodDef string, pos InsertPosition) ([]byte, ModificationResult, error) {
	implNode := findImplFor(root, source, typeName, true)
	if implNode == nil {
		return source, ModificationResult{}, nil
	}
	body := implNode.ChildByFieldName("body")
	if body == nil {
		return source, ModificationResult{}, nil
	}

	methodName := methodNameOf(methodDef)
	names, nodes := implMethods(source, body)
	for _, n := range names {
		if n == methodName {
			return source, ModificationResult{Changed: false}, nil
		}
	}

	before := rast.Snippet(source, implNode, true)
	offset, err := siblingInsertOffset(pos, names, nodes, int(body.StartByte())+1, int(body.EndByte())-1)
	if err != nil {
		return source, ModificationResult{}, err
	}

	indent := detectMethodIndent(source, body)
	indented := indentLines(strings.TrimRight(methodDef, "\n"), indent)
	text := "\n\n" + indented + "\n"
	if len(nodes) == 0 {
		text = "\n" + indented + "\n"
	}

	out, err := ApplySurgicalEdits(source, []Replacement{{Start: offset, End: offset, NewText: text}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryImplMethod, Identifier: typeName + "::" + methodName,
			OriginalContent: before, Location: LocationOf(implNode),
		}},
	}, nil
}

func methodNameOf(methodDef string) string {
	const marker = "fn "
	idx := strings.Index(methodDef, marker)
	if idx < 0 {
		return ""
	}
	rest := methodDef[idx+len(marker):]
	end := strings.IndexAny(rest, "(<")
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}

func detectMethodIndent(source []byte, body *sitter.Node) string {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() != "function_item" {
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

func indentLines(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

// AddDerive adds each trait name in traits to structOrEnumName's derive
// attribute, creating one if absent, unless already present. Idempotent
// per trait.
func AddDerive(source []byte, root *sitter.Node, targetName string, traits []string) ([]byte, ModificationResult, error) {
	item := findDerivableItem(root, source, targetName)
	if item == nil {
		return source, ModificationResult{}, nil
	}

	attr := findDeriveAttribute(item)
	existing := map[string]bool{}
	if attr != nil {
		for _, t := range deriveTraitNames(source, attr) {
			existing[t] = true
		}
	}

	var toAdd []string
	for _, t := range traits {
		if !existing[t] {
			toAdd = append(toAdd, t)
		}
	}
	if len(toAdd) == 0 {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, item, true)
	var edit Replacement
	if attr == nil {
		indent := leadingIndentOf(source, item)
		text := fmt.Sprintf("#[derive(%s)]\n%s", strings.Join(toAdd, ", "), indent)
		edit = Replacement{Start: int(item.StartByte()), End: int(item.StartByte()), NewText: text}
	} else {
		argsNode := deriveArgsNode(attr)
		if argsNode == nil {
			return source, ModificationResult{}, nil
		}
		all := append(deriveTraitNames(source, attr), toAdd...)
		edit = Replacement{Start: int(argsNode.StartByte()), End: int(argsNode.EndByte()), NewText: fmt.Sprintf("(%s)", strings.Join(all, ", "))}
	}

	out, err := ApplySurgicalEdits(source, []Replacement{edit})
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

// RemoveDerive removes each named trait from the derive attribute.
// Silently succeeds (changed=false) if the attribute or trait is absent.
func RemoveDerive(source []byte, root *sitter.Node, targetName string, traits []string) ([]byte, ModificationResult, error) {
	item := findDerivableItem(root, source, targetName)
	if item == nil {
		return source, ModificationResult{}, nil
	}
	attr := findDeriveAttribute(item)
	if attr == nil {
		return source, ModificationResult{Changed: false}, nil
	}
	remove := map[string]bool{}
	for _, t := range traits {
		remove[t] = true
	}
	current := deriveTraitNames(source, attr)
	var kept []string
	removedAny := false
	for _, t := range current {
		if remove[t] {
			removedAny = true
			continue
		}
		kept = append(kept, t)
	}
	if !removedAny {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, item, true)
	var edit Replacement
	if len(kept) == 0 {
		start, end := trimTrailingComma(source, attr)
		// extend to consume the attribute's own trailing newline.
		for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
			end++
		}
		if end < len(source) && source[end] == '\n' {
			end++
		}
		edit = Replacement{Start: start, End: end, NewText: ""}
	} else {
		argsNode := deriveArgsNode(attr)
		edit = Replacement{Start: int(argsNode.StartByte()), End: int(argsNode.EndByte()), NewText: fmt.Sprintf("(%s)", strings.Join(kept, ", "))}
	}

	out, err := ApplySurgicalEdits(source, []Replacement{edit})
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

func findDerivableItem(root *sitter.Node, source []byte, name string) *sitter.Node {
	if n := findStructByName(root, source, name); n != nil {
		return n
	}
	return findEnumByName(root, source, name)
}

func findDeriveAttribute(item *sitter.Node) *sitter.Node {
	prev := item.PrevSibling()
	for prev != nil {
		if prev.Type() == "attribute_item" {
			return prev
		}
		if prev.Type() == "line_comment" || prev.Type() == "block_comment" {
			prev = prev.PrevSibling()
			continue
		}
		break
	}
	return nil
}

func deriveArgsNode(attr *sitter.Node) *sitter.Node {
	// attribute_item -> attribute, whose "arguments" is a token_tree
	// following the "derive" identifier.
	for i := 0; i < int(attr.NamedChildCount()); i++ {
		c := attr.NamedChild(i)
		if c.Type() == "attribute" {
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if tt := c.NamedChild(j); tt.Type() == "token_tree" {
					return tt
				}
			}
		}
	}
	return nil
}

func deriveTraitNames(source []byte, attr *sitter.Node) []string {
	args := deriveArgsNode(attr)
	if args == nil {
		return nil
	}
	text := rast.Text(source, args)
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	var out []string
	for _, p := range strings.Split(text, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func leadingIndentOf(source []byte, node *sitter.Node) string {
	lineStart := int(node.StartByte())
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	return string(source[lineStart:node.StartByte()])
}
