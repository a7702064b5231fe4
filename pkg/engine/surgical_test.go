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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplySurgicalEdits_SingleReplacement(t *testing.T) {
	src := []byte("hello world")
	out, err := ApplySurgicalEdits(src, []Replacement{{Start: 6, End: 11, NewText: "there"}})
	require.NoError(t, err)
	require.Equal(t, "hello there", string(out))
}

func TestApplySurgicalEdits_MultipleReplacements(t *testing.T) {
	src := []byte("one two three")
	out, err := ApplySurgicalEdits(src, []Replacement{
		{Start: 0, End: 3, NewText: "1"},
		{Start: 4, End: 7, NewText: "2"},
		{Start: 8, End: 13, NewText: "3"},
	})
	require.NoError(t, err)
	require.Equal(t, "1 2 3", string(out))
}

func TestApplySurgicalEdits_PreservesWhitespace(t *testing.T) {
	src := []byte("struct Config {\n    port: u16,\n}\n")
	// Replace only the type name "u16" with "u32"; surrounding indentation
	// and the trailing comma/newline must survive untouched.
	start := len("struct Config {\n    port: ")
	end := start + len("u16")
	out, err := ApplySurgicalEdits(src, []Replacement{{Start: start, End: end, NewText: "u32"}})
	require.NoError(t, err)
	require.Equal(t, "struct Config {\n    port: u32,\n}\n", string(out))
}

func TestApplySurgicalEdits_NoReplacements(t *testing.T) {
	src := []byte("unchanged")
	out, err := ApplySurgicalEdits(src, nil)
	require.NoError(t, err)
	require.Equal(t, "unchanged", string(out))
}

func TestApplySurgicalEdits_ReplacementSorting(t *testing.T) {
	src := []byte("abcdefghij")
	forward := []Replacement{
		{Start: 0, End: 2, NewText: "X"},
		{Start: 5, End: 7, NewText: "Y"},
	}
	reversed := []Replacement{forward[1], forward[0]}

	outForward, err := ApplySurgicalEdits(src, forward)
	require.NoError(t, err)
	outReversed, err := ApplySurgicalEdits(src, reversed)
	require.NoError(t, err)
	require.Equal(t, string(outForward), string(outReversed))
}

func TestApplySurgicalEdits_OverlapRejected(t *testing.T) {
	src := []byte("abcdefghij")
	_, err := ApplySurgicalEdits(src, []Replacement{
		{Start: 0, End: 5, NewText: "X"},
		{Start: 3, End: 7, NewText: "Y"},
	})
	require.Error(t, err)
}

func TestApplySurgicalEdits_EmptyNewTextDeletes(t *testing.T) {
	src := []byte("keep, drop, keep")
	out, err := ApplySurgicalEdits(src, []Replacement{{Start: 5, End: 11, NewText: ""}})
	require.NoError(t, err)
	require.Equal(t, "keep, keep", string(out))
}
