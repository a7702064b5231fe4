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

// InspectQuery is the parameter set for the C4 query layer (spec.md
// §4.3): inspect(categories, name?, content_filter?, include_comments)
// -> []Match.
type InspectQuery struct {
	Categories      []rast.Category
	Name            string // "" = no name filter
	ContentFilter   string // "" = no content filter
	IncludeComments bool
}

// Inspect walks tree's root node once, collecting a Match for every node
// whose category is in q.Categories and which passes the name and
// content filters. Results are emitted in depth-first, definition-order
// visitation order (spec.md §4.3 "Ordering").
func Inspect(tree *rast.Tree, q InspectQuery) []Match {
	wanted := map[rast.Category]bool{}
	for _, c := range q.Categories {
		wanted[c] = true
	}

	var matches []Match
	rast.Walk(tree.Root, func(n *sitter.Node) {
		cat := rast.Categorize(n)
		if cat == "" || !wanted[cat] {
			return
		}
		ident := rast.Identifier(tree.Source, n)
		if q.Name != "" && !matchesNameFilter(ident, q.Name) {
			return
		}
		snippet := rast.Snippet(tree.Source, n, rast.DefinitionLevel(cat))
		if q.ContentFilter != "" && !strings.Contains(snippet, q.ContentFilter) {
			return
		}
		m := Match{
			Category:   cat,
			Identifier: ident,
			Location:   LocationOf(n),
			Snippet:    snippet,
		}
		if q.IncludeComments {
			m.PrecedingComment = precedingComment(tree.Source, n)
		}
		matches = append(matches, m)
	})
	return matches
}

// matchesNameFilter applies spec.md §4.3's name-matching rules: equality
// for simple forms, "*::Name" wildcard, fully-qualified "A::B" exact
// form, bare name matching only unqualified occurrences — the same rule
// set as C3's legacy mode, reused here via a throwaway resolver.
func matchesNameFilter(identifier, filter string) bool {
	return NewSimplePathResolver(filter).MatchesTarget(identifier)
}

// precedingComment returns the text of the contiguous block of line/block
// comments immediately preceding node, or "" if none.
func precedingComment(source []byte, node *sitter.Node) string {
	prev := node.PrevSibling()
	var lines []string
	for prev != nil && (prev.Type() == "line_comment" || prev.Type() == "block_comment") {
		lines = append([]string{rast.Text(source, prev)}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}

// FieldMatch is one result of field-name mode: every occurrence of a
// named field across struct definitions, enum struct-variants, and
// struct-literal expressions (spec.md §4.3 "Field-name mode").
type FieldMatch struct {
	Match
	FieldContext FieldContext
}

// InspectFields locates every occurrence of fieldName across struct
// definitions, enum variant struct-bodies, and struct-literal
// expressions in tree.
func InspectFields(tree *rast.Tree, fieldName string) []FieldMatch {
	var out []FieldMatch
	rast.Walk(tree.Root, func(n *sitter.Node) {
		switch n.Type() {
		case "field_declaration":
			name := n.ChildByFieldName("name")
			if name == nil || rast.Text(tree.Source, name) != fieldName {
				return
			}
			ctx := FieldContextStructDefinition
			if rast.FindAncestor(n, "enum_item") != nil {
				ctx = FieldContextEnumVariantDefinition
			}
			out = append(out, FieldMatch{
				Match: Match{
					Category:   rast.CategoryIdentifier,
					Identifier: fieldName,
					Location:   LocationOf(n),
					Snippet:    rast.Snippet(tree.Source, n, true),
				},
				FieldContext: ctx,
			})
		case "field_initializer":
			name := n.ChildByFieldName("field")
			if name == nil || rast.Text(tree.Source, name) != fieldName {
				return
			}
			out = append(out, FieldMatch{
				Match: Match{
					Category:   rast.CategoryIdentifier,
					Identifier: fieldName,
					Location:   LocationOf(n),
					Snippet:    rast.Snippet(tree.Source, n, false),
				},
				FieldContext: FieldContextStructLiteral,
			})
		case "shorthand_field_initializer":
			if rast.Text(tree.Source, n) != fieldName {
				return
			}
			out = append(out, FieldMatch{
				Match: Match{
					Category:   rast.CategoryIdentifier,
					Identifier: fieldName,
					Location:   LocationOf(n),
					Snippet:    rast.Snippet(tree.Source, n, false),
				},
				FieldContext: FieldContextStructLiteral,
			})
		}
	})
	return out
}
