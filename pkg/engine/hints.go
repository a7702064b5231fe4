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

	"github.com/kraklabs/weld/pkg/rast"
)

// Hint is one actionable remediation suggestion emitted by C9 when an
// operation matches nothing. Hints are advisory only: they go to the
// diagnostic stream and never affect mutation (spec.md §4.7).
type Hint struct {
	FilePath string
	Message  string
}

// BuildHints implements spec.md §4.7's four responsibilities for a target
// that an operation failed to match in file. allCategories lets the hint
// engine re-query across every known category instead of just the one
// the operation requested.
func BuildHints(tree *rast.Tree, targetName string, unmatchedQualifiedPaths []string, wasAutoDetectMissingArms bool) []Hint {
	var hints []Hint

	// Re-query across all categories for the same name.
	var elsewhere []Match
	for cat := range allCategoriesSet() {
		ms := Inspect(tree, InspectQuery{Categories: []rast.Category{cat}, Name: targetName})
		elsewhere = append(elsewhere, ms...)
	}
	if len(elsewhere) > 0 {
		var parts []string
		for _, m := range elsewhere {
			parts = append(parts, fmt.Sprintf("%s at %s:%d", m.Category, tree.Path, m.Location.StartLine))
		}
		hints = append(hints, Hint{
			FilePath: tree.Path,
			Message:  fmt.Sprintf("%q was not found in the requested category, but matches elsewhere: %s", targetName, strings.Join(parts, "; ")),
		})
	}

	// Fully qualified paths the bare name didn't reach.
	if len(unmatchedQualifiedPaths) > 0 {
		seen := map[string]bool{}
		var distinct []string
		for _, p := range unmatchedQualifiedPaths {
			if !seen[p] {
				seen[p] = true
				distinct = append(distinct, p)
			}
		}
		hints = append(hints, Hint{
			FilePath: tree.Path,
			Message: fmt.Sprintf(
				"found qualified occurrences not matching the configured target: %s — try \"*::%s\" or one of the exact forms above",
				strings.Join(distinct, ", "), targetName),
		})
	}

	// Nothing at the AST level at all: fall back to a line-level text
	// search and warn about macro bodies / comments.
	if len(elsewhere) == 0 {
		if lines := textSearchLines(tree.Source, targetName); len(lines) > 0 {
			hints = append(hints, Hint{
				FilePath: tree.Path,
				Message: fmt.Sprintf(
					"no AST node matches %q, but plain-text search finds it on line(s) %s — it may live inside a macro body or a comment, which the query layer cannot see",
					targetName, strings.Join(lines, ", ")),
			})
		}
	}

	// Auto-detect missing case arms: the union definition must be in the
	// scanned file set.
	if wasAutoDetectMissingArms {
		hints = append(hints, Hint{
			FilePath: tree.Path,
			Message: fmt.Sprintf(
				"union %q was not found in this file; auto-detect requires the union's definition to be in the scanned path set — widen --paths to include the file that declares it",
				targetName),
		})
	}

	return hints
}

func allCategoriesSet() map[rast.Category]bool {
	cats := []rast.Category{
		rast.CategoryRecordDefinition, rast.CategoryRecordLiteral, rast.CategoryUnionDefinition,
		rast.CategoryUnionVariantUsage, rast.CategoryCaseArm, rast.CategoryFunctionDefinition,
		rast.CategoryFunctionCall, rast.CategoryMethodCall, rast.CategoryMacroCall, rast.CategoryIdentifier,
		rast.CategoryTypeReference, rast.CategoryModule, rast.CategoryConstant, rast.CategoryStatic,
		rast.CategoryTraitDefinition, rast.CategoryTypeAlias, rast.CategoryUseDirective, rast.CategoryImplMethod,
	}
	out := make(map[rast.Category]bool, len(cats))
	for _, c := range cats {
		out[c] = true
	}
	return out
}

func textSearchLines(source []byte, name string) []string {
	var lines []string
	lineNo := 1
	for _, line := range strings.Split(string(source), "\n") {
		if strings.Contains(line, name) {
			lines = append(lines, fmt.Sprintf("%d", lineNo))
		}
		lineNo++
	}
	return lines
}
