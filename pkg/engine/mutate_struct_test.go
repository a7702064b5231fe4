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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/weld/pkg/rast"
)

func parseRust(t *testing.T, src string) *rast.Tree {
	t.Helper()
	p := rast.NewParser()
	tree, err := p.Parse(context.Background(), "test.rs", []byte(src))
	require.NoError(t, err)
	return tree
}

func TestAddStructField_AppendsLast(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)
	out, result, err := AddStructField(tree.Source, tree.Root, "Config", "timeout: u32", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "timeout: u32")
	require.Contains(t, string(out), "port: u16")
}

func TestAddStructField_Idempotent(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)
	_, result, err := AddStructField(tree.Source, tree.Root, "Config", "port: u8", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestAddStructField_MissingStruct(t *testing.T) {
	src := "struct Other {\n    x: u8,\n}\n"
	tree := parseRust(t, src)
	_, result, err := AddStructField(tree.Source, tree.Root, "Config", "port: u16", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestUpdateStructField_ChangesType(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)
	out, result, err := UpdateStructField(tree.Source, tree.Root, "Config", "port", "u32")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "port: u32")
}

func TestUpdateStructField_Idempotent(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)
	_, result, err := UpdateStructField(tree.Source, tree.Root, "Config", "port", "u16")
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestRemoveStructField_RemovesFieldAndComma(t *testing.T) {
	src := "struct Config {\n    port: u16,\n    timeout: u32,\n}\n"
	tree := parseRust(t, src)
	out, result, err := RemoveStructField(tree.Source, tree.Root, "Config", "timeout")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.NotContains(t, string(out), "timeout")
	require.Contains(t, string(out), "port: u16")
}

func TestRemoveStructField_AlreadyAbsent(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)
	_, result, err := RemoveStructField(tree.Source, tree.Root, "Config", "timeout")
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestAddStructLiteralField_AddsToMatchingLiteral(t *testing.T) {
	src := "fn build() -> Config {\n    Config { port: 80 }\n}\n"
	tree := parseRust(t, src)
	out, result, err := AddStructLiteralField(tree.Source, tree.Root, nil, "Config", "timeout", "30", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "timeout: 30")
}

func TestAddStructLiteralField_IdempotentPerLiteral(t *testing.T) {
	src := "fn build() -> Config {\n    Config { port: 80, timeout: 30 }\n}\n"
	tree := parseRust(t, src)
	_, result, err := AddStructLiteralField(tree.Source, tree.Root, nil, "Config", "timeout", "30", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.False(t, result.Changed)
}
