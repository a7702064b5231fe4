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

// matchBlock is a located match_expression's body (match_block), together
// with the expression's own snippet for backup purposes.
type matchBlock struct {
	expr  *sitter.Node
	block *sitter.Node
}

// findMatchOn locates the first match_expression whose scrutinee's text
// contains scrutineeHint (a variable or enum name the caller supplies to
// disambiguate between multiple match expressions in a file). An empty
// hint matches the first match_expression found.
func findMatchOn(root *sitter.Node, source []byte, scrutineeHint string) *matchBlock {
	var found *matchBlock
	rast.Walk(root, func(n *sitter.Node) {
		if found != nil || n.Type() != "match_expression" {
			return
		}
		value := n.ChildByFieldName("value")
		block := n.ChildByFieldName("body")
		if block == nil {
			return
		}
		if scrutineeHint != "" && (value == nil || !strings.Contains(rast.Text(source, value), scrutineeHint)) {
			return
		}
		found = &matchBlock{expr: n, block: block}
	})
	return found
}

func matchArms(list *sitter.Node) []*sitter.Node {
	var arms []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		if c := list.NamedChild(i); c.Type() == "match_arm" {
			arms = append(arms, c)
		}
	}
	return arms
}

func armPattern(source []byte, arm *sitter.Node) string {
	if p := arm.ChildByFieldName("pattern"); p != nil {
		return rast.Text(source, p)
	}
	return ""
}

func armByPattern(source []byte, list *sitter.Node, pattern string) *sitter.Node {
	for _, arm := range matchArms(list) {
		if armPattern(source, arm) == pattern {
			return arm
		}
	}
	return nil
}

// AddMatchArm inserts a new "pattern => body" arm into the match
// expression matching scrutineeHint (pass "" to target the first match
// expression in the file), unless an arm with an identical pattern
// already exists.
func AddMatchArm(source []byte, root *sitter.Node, scrutineeHint, pattern, body string, pos InsertPosition) ([]byte, ModificationResult, error) {
	mb := findMatchOn(root, source, scrutineeHint)
	if mb == nil {
		return source, ModificationResult{}, nil
	}
	if armByPattern(source, mb.block, pattern) != nil {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, mb.expr, true)
	arms := matchArms(mb.block)

	var names []string
	var nodes []*sitter.Node
	for _, a := range arms {
		names = append(names, armPattern(source, a))
		nodes = append(nodes, a)
	}

	offset, err := siblingInsertOffset(pos, names, nodes, int(mb.block.StartByte())+1, int(mb.block.EndByte())-1)
	if err != nil {
		return source, ModificationResult{}, err
	}

	indent := detectArmIndent(source, mb.block)
	armText := fmt.Sprintf("%s => %s", pattern, body)
	text := fmt.Sprintf("\n%s%s,", indent, armText)
	if len(nodes) == 0 {
		text = fmt.Sprintf("\n%s%s,\n", indent, armText)
	}

	out, err := ApplySurgicalEdits(source, []Replacement{{Start: offset, End: offset, NewText: text}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryCaseArm, Identifier: pattern,
			OriginalContent: before, Location: LocationOf(mb.expr),
		}},
	}, nil
}

// UpdateMatchArm replaces an existing arm's body (keeping its pattern).
func UpdateMatchArm(source []byte, root *sitter.Node, scrutineeHint, pattern, newBody string) ([]byte, ModificationResult, error) {
	mb := findMatchOn(root, source, scrutineeHint)
	if mb == nil {
		return source, ModificationResult{}, nil
	}
	arm := armByPattern(source, mb.block, pattern)
	if arm == nil {
		return source, ModificationResult{Changed: false}, nil
	}
	valueNode := arm.ChildByFieldName("value")
	if valueNode == nil {
		return source, ModificationResult{Changed: false}, nil
	}
	if strings.TrimSpace(rast.Text(source, valueNode)) == strings.TrimSpace(newBody) {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, mb.expr, true)
	out, err := ApplySurgicalEdits(source, []Replacement{{
		Start: int(valueNode.StartByte()), End: int(valueNode.EndByte()), NewText: newBody,
	}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryCaseArm, Identifier: pattern,
			OriginalContent: before, Location: LocationOf(mb.expr),
		}},
	}, nil
}

// RemoveMatchArm removes the arm matching pattern, including its
// trailing comma.
func RemoveMatchArm(source []byte, root *sitter.Node, scrutineeHint, pattern string) ([]byte, ModificationResult, error) {
	mb := findMatchOn(root, source, scrutineeHint)
	if mb == nil {
		return source, ModificationResult{}, nil
	}
	arm := armByPattern(source, mb.block, pattern)
	if arm == nil {
		return source, ModificationResult{Changed: false}, nil
	}

	before := rast.Snippet(source, mb.expr, true)
	start, end := trimTrailingComma(source, arm)
	out, err := ApplySurgicalEdits(source, []Replacement{{Start: start, End: end, NewText: ""}})
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{
		Changed: true,
		ModifiedNodes: []BackupNode{{
			Category: rast.CategoryCaseArm, Identifier: pattern,
			OriginalContent: before, Location: LocationOf(mb.expr),
		}},
	}, nil
}

func detectArmIndent(source []byte, list *sitter.Node) string {
	for _, arm := range matchArms(list) {
		lineStart := int(arm.StartByte())
		for lineStart > 0 && source[lineStart-1] != '\n' {
			lineStart--
		}
		return string(source[lineStart:arm.StartByte()])
	}
	return "        "
}
