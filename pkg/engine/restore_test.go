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

	"github.com/kraklabs/weld/pkg/rast"
)

func TestRestoreBackupNode_RecordDefinition(t *testing.T) {
	original := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, original)
	out, result, err := AddStructField(tree.Source, tree.Root, "Config", "timeout: u32", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)

	reparsed := parseRust(t, string(out))
	restored, ok, err := RestoreBackupNode(reparsed.Source, reparsed.Root, result.ModifiedNodes[0])
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, original, string(restored))
}

func TestRestoreBackupNode_RecordLiteral(t *testing.T) {
	original := "struct P { x: i32 }\n\nfn make() -> P {\n    P { x: 1 }\n}\n"
	tree := parseRust(t, original)
	out, result, err := AddStructLiteralField(tree.Source, tree.Root, nil, "P", "y", "2", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "y: 2")

	reparsed := parseRust(t, string(out))
	restored, ok, err := RestoreBackupNode(reparsed.Source, reparsed.Root, result.ModifiedNodes[0])
	require.NoError(t, err)
	require.True(t, ok)
	require.NotContains(t, string(restored), "y: 2")
}

func TestRestoreBackupNode_RecordLiteral_SkipsResolverRejectedSiblings(t *testing.T) {
	original := "use a::b::P;\n\nfn other() -> x::P {\n    x::P { x: 9 }\n}\n\nfn make() -> P {\n    P { x: 1 }\n}\n"
	tree := parseRust(t, original)
	resolver := NewPathResolver("a::b::P")
	resolver.ScanFile(tree.Source, tree.Root)

	out, result, err := AddStructLiteralField(tree.Source, tree.Root, resolver, "P", "y", "2", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Len(t, result.ModifiedNodes, 1)
	require.Equal(t, "P#1", result.ModifiedNodes[0].Identifier)
	require.Contains(t, string(out), "P { x: 1, y: 2 }")
	require.NotContains(t, string(out), "x::P { x: 9, y: 2 }")

	reparsed := parseRust(t, string(out))
	restored, ok, err := RestoreBackupNode(reparsed.Source, reparsed.Root, result.ModifiedNodes[0])
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, string(restored), "x::P { x: 9 }")
	require.Contains(t, string(restored), "P { x: 1 }")
	require.NotContains(t, string(restored), "y: 2")
}

func TestRestoreBackupNode_ImplMethod(t *testing.T) {
	original := "struct Counter { n: i32 }\n\nimpl Counter {\n    fn get(&self) -> i32 {\n        self.n\n    }\n}\n"
	tree := parseRust(t, original)
	out, result, err := AddImplMethod(tree.Source, tree.Root, "Counter", "fn reset(&mut self) {\n    self.n = 0;\n}", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)

	reparsed := parseRust(t, string(out))
	restored, ok, err := RestoreBackupNode(reparsed.Source, reparsed.Root, result.ModifiedNodes[0])
	require.NoError(t, err)
	require.True(t, ok)
	require.NotContains(t, string(restored), "fn reset")
}

func TestRestoreBackupNode_UnsupportedCategorySkipped(t *testing.T) {
	node := BackupNode{Category: rast.CategoryFunctionCall, Identifier: "old_name", OriginalContent: "old_name"}
	tree := parseRust(t, "fn main() {\n    old_name();\n}\n")
	_, ok, err := RestoreBackupNode(tree.Source, tree.Root, node)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRestoreOrder_LiteralsDescendingFirst(t *testing.T) {
	nodes := []BackupNode{
		{Category: rast.CategoryRecordDefinition, Identifier: "Config"},
		{Category: rast.CategoryRecordLiteral, Identifier: "P#0"},
		{Category: rast.CategoryRecordLiteral, Identifier: "P#2"},
		{Category: rast.CategoryRecordLiteral, Identifier: "P#1"},
	}
	ordered := RestoreOrder(nodes)
	require.Equal(t, "P#2", ordered[0].Identifier)
	require.Equal(t, "P#1", ordered[1].Identifier)
	require.Equal(t, "P#0", ordered[2].Identifier)
	require.Equal(t, "Config", ordered[3].Identifier)
}
