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

import "github.com/kraklabs/weld/pkg/rast"

// AmbiguousContext names one semantic category a rename target was found
// in, for the error-kind-3 "Ambiguity" report (spec.md §7.3).
type AmbiguousContext struct {
	Category rast.Category
	Count    int
}

// DetectRenameAmbiguity checks whether name matches more than one
// semantic category across the categories a bare (non-qualified) rename
// could plausibly mean: a free function and an enum variant are the two
// rename targets spec.md's dispatcher distinguishes without an explicit
// kind, so finding name in both is the fatal case spec.md §8's "Ambiguous
// rename" scenario describes. Returns nil when the target is unambiguous.
func DetectRenameAmbiguity(tree *rast.Tree, name string) []AmbiguousContext {
	candidates := []rast.Category{rast.CategoryFunctionDefinition, rast.CategoryUnionVariantUsage}
	var found []AmbiguousContext
	for _, cat := range candidates {
		matches := Inspect(tree, InspectQuery{Categories: []rast.Category{cat}, Name: name})
		if len(matches) > 0 {
			found = append(found, AmbiguousContext{Category: cat, Count: len(matches)})
		}
	}
	if len(found) > 1 {
		return found
	}
	return nil
}

// AmbiguityError renders found as the fatal error-kind-3 report spec.md
// §8 scenario 5 expects: naming both contexts so the caller can rerun
// with an explicit --kind.
func AmbiguityError(name string, found []AmbiguousContext) error {
	kinds := make([]string, 0, len(found))
	total := 0
	for _, f := range found {
		kinds = append(kinds, string(f.Category))
		total += f.Count
	}
	return errAmbiguousTarget(joinCategories(kinds), name, total)
}

func joinCategories(cats []string) string {
	out := ""
	for i, c := range cats {
		if i > 0 {
			out += " and "
		}
		out += c
	}
	return out
}
