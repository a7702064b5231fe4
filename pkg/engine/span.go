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

import "unicode/utf8"

// OffsetTable maps 1-indexed line numbers to the byte offset of that
// line's first byte, and converts (line, column) positions — columns
// counting Unicode scalar values, per spec.md §3/§6 — to byte offsets in
// the source they were built from and back.
//
// C1 exists because mutation primitives synthesize anchor positions
// (After(name), Before(name)) against the *original* source even when a
// prior replacement in the same batch has already shifted byte offsets;
// the table is always rebuilt from the string currently being edited, so
// it stays consistent with whichever version of the source is live at
// the time (spec.md §3's invariant).
type OffsetTable struct {
	source     []byte
	lineStarts []int // lineStarts[i] = byte offset of start of line i+1
}

// BuildOffsetTable scans source once, recording the byte offset of the
// start of every line.
func BuildOffsetTable(source []byte) *OffsetTable {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &OffsetTable{source: source, lineStarts: starts}
}

// ByteOffset converts a 1-indexed line and 0-indexed Unicode-scalar
// column into a byte offset. A column past the end of the line clamps to
// the line's length (handles positions pointing at end-of-file).
func (t *OffsetTable) ByteOffset(line, column int) int {
	if line < 1 {
		line = 1
	}
	idx := line - 1
	if idx >= len(t.lineStarts) {
		return len(t.source)
	}
	lineStart := t.lineStarts[idx]
	lineEnd := len(t.source)
	if idx+1 < len(t.lineStarts) {
		lineEnd = t.lineStarts[idx+1]
	}

	offset := lineStart
	remaining := column
	for offset < lineEnd && remaining > 0 {
		_, size := utf8.DecodeRune(t.source[offset:lineEnd])
		if size <= 0 {
			break
		}
		offset += size
		remaining--
	}
	return offset
}

// Position converts a byte offset back into a (line, column) pair.
func (t *OffsetTable) Position(byteOffset int) (line, column int) {
	// Binary search for the line containing byteOffset.
	lo, hi := 0, len(t.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.lineStarts[mid] <= byteOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	lineStart := t.lineStarts[lo]
	column = utf8.RuneCount(t.source[lineStart:byteOffset])
	return lo + 1, column
}

// Range returns the byte range [start,end) for a NodeLocation.
func (t *OffsetTable) Range(loc NodeLocation) (start, end int) {
	return t.ByteOffset(loc.StartLine, loc.StartColumn), t.ByteOffset(loc.EndLine, loc.EndColumn)
}
