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

import "sort"

// Replacement is one byte-range edit: replace source[Start:End) with
// NewText. Ported from original_source/rs-hack/src/surgical.rs's
// Replacement struct.
type Replacement struct {
	Start   int
	End     int
	NewText string
}

// ApplySurgicalEdits rewrites source by applying every replacement in
// replacements, preserving all bytes outside the union of their ranges
// (spec.md §4.1/C2). It is a pure function: replacements are sorted by
// Start internally, so callers may pass them in any order (spec.md §8's
// "reordering R before sorting does not change S′" invariant).
//
// Returns an error if any two replacements overlap — spec.md §7 kind 6,
// "Overlapping surgical replacements: fatal; indicates an internal
// primitive bug" — since well-formed primitives never produce one.
func ApplySurgicalEdits(source []byte, replacements []Replacement) ([]byte, error) {
	if len(replacements) == 0 {
		return source, nil
	}

	sorted := make([]Replacement, len(replacements))
	copy(sorted, replacements)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].End > sorted[i].Start {
			return nil, errOverlap("replacement overlaps a prior one")
		}
	}

	var out []byte
	cursor := 0
	for _, r := range sorted {
		if r.Start < cursor || r.End > len(source) || r.Start > r.End {
			return nil, errOverlap("replacement range out of bounds or inverted")
		}
		out = append(out, source[cursor:r.Start]...)
		out = append(out, r.NewText...)
		cursor = r.End
	}
	out = append(out, source[cursor:]...)
	return out, nil
}
