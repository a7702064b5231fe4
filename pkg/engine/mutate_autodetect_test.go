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

const autoDetectSrc = "enum S {\n    A,\n    B,\n    C,\n}\n\nfn run(s: S) -> i32 {\n    match s {\n        S::A => 1,\n    }\n}\n"

func TestAutoDetectMissingArms_AddsAllMissing(t *testing.T) {
	tree := parseRust(t, autoDetectSrc)
	out, result, err := AutoDetectMissingArms(tree.Source, tree.Root, "S", "run", "todo!()")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "S::B => todo!()")
	require.Contains(t, string(out), "S::C => todo!()")
	require.Len(t, result.ModifiedNodes, 2)
}

func TestAutoDetectMissingArms_Idempotent(t *testing.T) {
	tree := parseRust(t, autoDetectSrc)
	out, _, err := AutoDetectMissingArms(tree.Source, tree.Root, "S", "run", "todo!()")
	require.NoError(t, err)

	tree2 := parseRust(t, string(out))
	_, result, err := AutoDetectMissingArms(tree2.Source, tree2.Root, "S", "run", "todo!()")
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestAutoDetectMissingArms_EmptyMatch(t *testing.T) {
	src := "enum S {\n    A,\n    B,\n}\n\nfn run(s: S) -> i32 {\n    match s {\n    }\n}\n"
	tree := parseRust(t, src)
	out, result, err := AutoDetectMissingArms(tree.Source, tree.Root, "S", "run", "0")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "S::A => 0")
	require.Contains(t, string(out), "S::B => 0")
}

func TestAutoDetectMissingArms_UnionNotInFile(t *testing.T) {
	src := "fn run(s: i32) -> i32 {\n    match s {\n        1 => 1,\n    }\n}\n"
	tree := parseRust(t, src)
	_, result, err := AutoDetectMissingArms(tree.Source, tree.Root, "S", "run", "0")
	require.NoError(t, err)
	require.False(t, result.Changed)
}
