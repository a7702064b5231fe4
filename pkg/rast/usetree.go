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

package rast

import sitter "github.com/smacker/go-tree-sitter"

// WalkUseTree recursively walks the argument of a use_declaration node,
// the tree-sitter-grammar equivalent of syn's UseTree::Path/Name/Rename/
// Glob/Group. onAlias is called once per concrete imported name with its
// fully qualified canonical segments; onGlob is called once per glob
// import with the segments of its prefix module.
//
// This is the direct Go analogue of UseStatementScanner::process_use_tree
// in the original Rust implementation, adapted from syn's typed AST to a
// tree-sitter grammar walk.
func WalkUseTree(source []byte, node *sitter.Node, prefix []string, onAlias func(local string, canonical []string), onGlob func(prefix []string)) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "identifier", "self", "super", "crate", "metavariable":
		name := Text(source, node)
		onAlias(name, appendSeg(prefix, name))

	case "scoped_identifier":
		segs := flattenSegments(source, node)
		full := appendSeg(prefix, segs...)
		if len(segs) > 0 {
			onAlias(segs[len(segs)-1], full)
		}

	case "use_as_clause":
		pathNode := node.ChildByFieldName("path")
		aliasNode := node.ChildByFieldName("alias")
		var segs []string
		if pathNode != nil {
			segs = flattenSegments(source, pathNode)
		}
		full := appendSeg(prefix, segs...)
		if aliasNode != nil {
			onAlias(Text(source, aliasNode), full)
		}

	case "use_wildcard":
		pathNode := node.ChildByFieldName("path")
		full := prefix
		if pathNode != nil {
			full = appendSeg(prefix, flattenSegments(source, pathNode)...)
		}
		onGlob(full)

	case "scoped_use_list":
		pathNode := node.ChildByFieldName("path")
		listNode := node.ChildByFieldName("list")
		newPrefix := prefix
		if pathNode != nil {
			newPrefix = appendSeg(prefix, flattenSegments(source, pathNode)...)
		}
		WalkUseTree(source, listNode, newPrefix, onAlias, onGlob)

	case "use_list":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			WalkUseTree(source, node.NamedChild(i), prefix, onAlias, onGlob)
		}

	default:
		// Unrecognized use-tree shape (grammar drift); treat conservatively
		// as a single opaque segment so it at least doesn't vanish silently.
		if text := Text(source, node); text != "" {
			onAlias(text, appendSeg(prefix, text))
		}
	}
}

func flattenSegments(source []byte, node *sitter.Node) []string {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "scoped_identifier":
		path := node.ChildByFieldName("path")
		name := node.ChildByFieldName("name")
		var segs []string
		if path != nil {
			segs = flattenSegments(source, path)
		}
		if name != nil {
			segs = append(segs, Text(source, name))
		}
		return segs
	default:
		return []string{Text(source, node)}
	}
}

func appendSeg(prefix []string, segs ...string) []string {
	out := make([]string, 0, len(prefix)+len(segs))
	out = append(out, prefix...)
	out = append(out, segs...)
	return out
}
