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

// Transform applies action to every node of one of categories matching
// name/content filters (spec.md §3's Transform operation, §4.4's
// "Transform (comment/remove/replace) on expression categories |
// Surgical | Text-level action on bounded ranges."). limit, when > 0,
// caps the number of nodes transformed.
func Transform(source []byte, root *sitter.Node, categories []rast.Category, name, contentFilter string, action TransformAction, limit int) ([]byte, ModificationResult, error) {
	wanted := map[rast.Category]bool{}
	for _, c := range categories {
		wanted[c] = true
	}

	var targets []*sitter.Node
	rast.Walk(root, func(n *sitter.Node) {
		if limit > 0 && len(targets) >= limit {
			return
		}
		cat := rast.Categorize(n)
		if cat == "" || !wanted[cat] {
			return
		}
		ident := rast.Identifier(source, n)
		if name != "" && !matchesNameFilter(ident, name) {
			return
		}
		snippet := rast.Snippet(source, n, rast.DefinitionLevel(cat))
		if contentFilter != "" && !strings.Contains(snippet, contentFilter) {
			return
		}
		targets = append(targets, n)
	})

	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	if len(targets) == 0 {
		return source, ModificationResult{Changed: false}, nil
	}

	var edits []Replacement
	var backups []BackupNode
	for _, n := range targets {
		cat := rast.Categorize(n)
		original := rast.Text(source, n)
		backups = append(backups, BackupNode{
			Category: cat, Identifier: rast.Identifier(source, n),
			OriginalContent: original, Location: LocationOf(n),
		})

		switch action.Kind {
		case TransformRemove:
			start, end := trimTrailingComma(source, n)
			edits = append(edits, Replacement{Start: start, End: end, NewText: ""})
		case TransformReplace:
			edits = append(edits, Replacement{Start: int(n.StartByte()), End: int(n.EndByte()), NewText: action.With})
		default: // TransformComment
			edits = append(edits, Replacement{
				Start: int(n.StartByte()), End: int(n.EndByte()),
				NewText: commentOut(original),
			})
		}
	}

	out, err := ApplySurgicalEdits(source, edits)
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{Changed: true, ModifiedNodes: backups}, nil
}

// commentOut turns every line of text into a line comment, preserving
// relative indentation on continuation lines.
func commentOut(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "// " + l
	}
	return strings.Join(lines, "\n")
}
