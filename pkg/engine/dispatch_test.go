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

func TestDispatch_AddStructField(t *testing.T) {
	tree := parseRust(t, "struct Config {\n    port: u16,\n}\n")
	op := Operation{Type: OpAddStructField, StructName: "Config", FieldDef: "timeout: u32", Position: InsertPosition{Kind: PositionLast}}
	require.True(t, TargetExists(tree, op))

	out, result, err := Dispatch(tree.Source, tree.Root, op, nil)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "timeout: u32")
}

func TestDispatch_AddStructFieldWithLiteralDefault(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n\nfn make() -> Config {\n    Config { port: 80 }\n}\n"
	tree := parseRust(t, src)
	op := Operation{
		Type: OpAddStructField, StructName: "Config", FieldDef: "timeout: u32",
		FieldValue: "30", Position: InsertPosition{Kind: PositionLast},
	}

	out, result, err := Dispatch(tree.Source, tree.Root, op, nil)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "timeout: u32")
	require.Contains(t, string(out), "timeout: 30")
	require.Len(t, result.ModifiedNodes, 2)
}

func TestDispatch_AddStructFieldLiteralOnly(t *testing.T) {
	src := "struct Config {\n    port: u16,\n    timeout: u32,\n}\n\nfn make() -> Config {\n    Config { port: 80 }\n}\n"
	tree := parseRust(t, src)
	op := Operation{
		Type: OpAddStructField, StructName: "Config", FieldDef: "timeout: u32",
		FieldValue: "30", LiteralOnly: true, Position: InsertPosition{Kind: PositionLast},
	}

	out, result, err := Dispatch(tree.Source, tree.Root, op, nil)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "timeout: 30")
	require.Len(t, result.ModifiedNodes, 1)
}

func TestDispatch_AddMatchArmExplicit(t *testing.T) {
	tree := parseRust(t, "fn run(s: S) -> i32 {\n    match s {\n        S::A => 1,\n    }\n}\n")
	op := Operation{Type: OpAddMatchArm, MatchArm: "S::B => 2", Position: InsertPosition{Kind: PositionLast}}
	out, result, err := Dispatch(tree.Source, tree.Root, op, nil)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "S::B => 2")
}

func TestDispatch_AddMatchArmAutoDetect(t *testing.T) {
	tree := parseRust(t, autoDetectSrc)
	op := Operation{Type: OpAddMatchArm, AutoDetect: true, EnumName: "S", MatchArm: "0"}
	out, result, err := Dispatch(tree.Source, tree.Root, op, nil)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "S::B => 0")
	require.Contains(t, string(out), "S::C => 0")
}

func TestDispatch_UnknownOperationErrors(t *testing.T) {
	tree := parseRust(t, "struct Config {}\n")
	_, _, err := Dispatch(tree.Source, tree.Root, Operation{Type: "bogus"}, nil)
	require.Error(t, err)
}

func TestTargetExists_AbsentStruct(t *testing.T) {
	tree := parseRust(t, "struct Config {\n    port: u16,\n}\n")
	require.False(t, TargetExists(tree, Operation{Type: OpAddStructField, StructName: "Nonexistent"}))
}

func TestTargetExists_TransformAlwaysTrue(t *testing.T) {
	tree := parseRust(t, "fn main() {}\n")
	require.True(t, TargetExists(tree, Operation{Type: OpTransform, Kind: "call"}))
}
