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
	"github.com/pmezard/go-difflib/difflib"
)

// DiffStats summarizes a unified diff, the Go analogue of
// original_source/src/diff.rs's DiffStats.
type DiffStats struct {
	FilesChanged int
	LinesAdded   int
	LinesRemoved int
}

// Add accumulates other into s, used when summarizing a multi-file run.
func (s *DiffStats) Add(other DiffStats) {
	s.FilesChanged += other.FilesChanged
	s.LinesAdded += other.LinesAdded
	s.LinesRemoved += other.LinesRemoved
}

// GenerateUnifiedDiff renders a unified diff between original and
// modified, the out-of-scope-but-required diff renderer named in
// spec.md §6, wired to go-difflib instead of the original's `similar`
// crate. contextLines mirrors `similar`'s context_radius.
func GenerateUnifiedDiff(path, original, modified string, contextLines int) (string, DiffStats, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: path,
		ToFile:   path,
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", DiffStats{}, err
	}

	var stats DiffStats
	matcher := difflib.NewMatcher(diff.A, diff.B)
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			stats.LinesRemoved += op.I2 - op.I1
			stats.LinesAdded += op.J2 - op.J1
		case 'd':
			stats.LinesRemoved += op.I2 - op.I1
		case 'i':
			stats.LinesAdded += op.J2 - op.J1
		}
	}
	if stats.LinesAdded > 0 || stats.LinesRemoved > 0 {
		stats.FilesChanged = 1
	}
	return text, stats, nil
}
