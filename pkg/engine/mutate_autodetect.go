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

// AutoDetectMissingArms implements spec.md §4.4's "auto-detect missing
// case arms": given enumName, locate its definition to enumerate variant
// names; for every match_expression in the file (optionally restricted to
// functionName), compute which variants are already covered by a pattern
// head, and insert a synthesized "EnumName::Variant => body" arm for each
// missing one. Pattern-coverage comparison is whitespace-normalized
// (spec.md: "Whitespace-normalized pattern comparison is used when
// detecting existing coverage").
//
// Per spec.md §9's open question, the synthesized pattern is always the
// variant's bare name (EnumName::Variant), never a binding form like
// EnumName::Variant(_) or EnumName::Variant { .. } — implementers may
// choose to generate those instead; weld keeps the simpler form so the
// caller-supplied body can itself introduce bindings if it needs them.
func AutoDetectMissingArms(source []byte, root *sitter.Node, enumName, functionName, body string) ([]byte, ModificationResult, error) {
	enumNode := findEnumByName(root, source, enumName)
	if enumNode == nil {
		return source, ModificationResult{}, nil
	}
	list := variantList(enumNode)
	if list == nil {
		return source, ModificationResult{}, nil
	}
	variantNames, _ := variantNodes(source, list)
	if len(variantNames) == 0 {
		return source, ModificationResult{}, nil
	}

	blocks := matchBlocksInScope(root, source, functionName)
	if len(blocks) == 0 {
		return source, ModificationResult{}, nil
	}

	var edits []Replacement
	var backups []BackupNode

	for _, mb := range blocks {
		covered := coveredVariants(source, mb.block, variantNames)
		var missing []string
		for _, v := range variantNames {
			if !covered[v] {
				missing = append(missing, v)
			}
		}
		if len(missing) == 0 {
			continue
		}

		before := rast.Snippet(source, mb.expr, true)
		arms := matchArms(mb.block)
		indent := detectArmIndent(source, mb.block)

		var text strings.Builder
		for _, v := range missing {
			pattern := enumName + "::" + v
			text.WriteString(fmt.Sprintf("\n%s%s => %s,", indent, pattern, body))
			backups = append(backups, BackupNode{
				Category: rast.CategoryCaseArm, Identifier: pattern,
				OriginalContent: before, Location: LocationOf(mb.expr),
			})
		}

		var offset int
		if len(arms) == 0 {
			offset = int(mb.block.StartByte()) + 1
			text.WriteString("\n")
		} else {
			offset = int(arms[len(arms)-1].EndByte())
		}
		edits = append(edits, Replacement{Start: offset, End: offset, NewText: text.String()})
	}

	if len(edits) == 0 {
		return source, ModificationResult{Changed: false}, nil
	}
	out, err := ApplySurgicalEdits(source, edits)
	if err != nil {
		return source, ModificationResult{}, err
	}
	return out, ModificationResult{Changed: true, ModifiedNodes: backups}, nil
}

// matchBlocksInScope returns every match_expression in root, restricted
// to the body of functionName's function_item when functionName is
// nonempty.
func matchBlocksInScope(root *sitter.Node, source []byte, functionName string) []*matchBlock {
	scope := root
	if functionName != "" {
		rast.Walk(root, func(n *sitter.Node) {
			if n.Type() != "function_item" {
				return
			}
			if name := n.ChildByFieldName("name"); name != nil && rast.Text(source, name) == functionName {
				scope = n
			}
		})
		if scope == root && !hasFunctionNamed(root, source, functionName) {
			return nil
		}
	}

	var blocks []*matchBlock
	rast.Walk(scope, func(n *sitter.Node) {
		if n.Type() != "match_expression" {
			return
		}
		block := n.ChildByFieldName("body")
		if block == nil {
			return
		}
		blocks = append(blocks, &matchBlock{expr: n, block: block})
	})
	return blocks
}

func hasFunctionNamed(root *sitter.Node, source []byte, name string) bool {
	found := false
	rast.Walk(root, func(n *sitter.Node) {
		if found || n.Type() != "function_item" {
			return
		}
		if nameNode := n.ChildByFieldName("name"); nameNode != nil && rast.Text(source, nameNode) == name {
			found = true
		}
	})
	return found
}

// coveredVariants returns the set of variantNames already matched by some
// pattern head in block, recognizing "EnumName::Variant", bare "Variant"
// (common when the enum is glob-imported or the match is on a
// locally-scoped alias), and a wildcard "_" arm (which covers every
// variant and short-circuits the scan).
func coveredVariants(source []byte, block *sitter.Node, variantNames []string) map[string]bool {
	covered := map[string]bool{}
	for _, arm := range matchArms(block) {
		pattern := strings.Join(strings.Fields(armPattern(source, arm)), " ")
		if pattern == "_" {
			for _, v := range variantNames {
				covered[v] = true
			}
			return covered
		}
		for _, alt := range strings.Split(pattern, "|") {
			alt = strings.TrimSpace(alt)
			name := alt
			if idx := strings.LastIndex(alt, "::"); idx >= 0 {
				name = alt[idx+2:]
			}
			// Strip a trailing tuple/struct binding payload, if any.
			if idx := strings.IndexAny(name, "({"); idx >= 0 {
				name = strings.TrimSpace(name[:idx])
			}
			covered[name] = true
		}
	}
	return covered
}
