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

func TestAddEnumVariant_AppendsUnitVariant(t *testing.T) {
	src := "enum Status {\n    Draft,\n    Published,\n}\n"
	tree := parseRust(t, src)
	out, result, err := AddEnumVariant(tree.Source, tree.Root, "Status", "Archived", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "Archived")
}

func TestAddEnumVariant_TupleShape(t *testing.T) {
	src := "enum Event {\n    Created,\n}\n"
	tree := parseRust(t, src)
	out, result, err := AddEnumVariant(tree.Source, tree.Root, "Event", "Error(String, u32)", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "Error(String, u32)")
}

func TestAddEnumVariant_Idempotent(t *testing.T) {
	src := "enum Status {\n    Draft,\n}\n"
	tree := parseRust(t, src)
	_, result, err := AddEnumVariant(tree.Source, tree.Root, "Status", "Draft", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestUpdateEnumVariant_ChangesShape(t *testing.T) {
	src := "enum Event {\n    Created,\n}\n"
	tree := parseRust(t, src)
	out, result, err := UpdateEnumVariant(tree.Source, tree.Root, "Event", "Created", "Created(u64)")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "Created(u64)")
}

func TestRemoveEnumVariant_RemovesVariantAndComma(t *testing.T) {
	src := "enum Status {\n    Draft,\n    Published,\n}\n"
	tree := parseRust(t, src)
	out, result, err := RemoveEnumVariant(tree.Source, tree.Root, "Status", "Published")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.NotContains(t, string(out), "Published")
	require.Contains(t, string(out), "Draft")
}

func TestRenameEnumVariant_RenamesDefinitionAndUsage(t *testing.T) {
	src := "enum Status {\n    Draft,\n}\n\nfn check(s: Status) -> bool {\n    s == Status::Draft\n}\n"
	tree := parseRust(t, src)
	out, result, err := RenameEnumVariant(tree.Source, tree.Root, nil, "Status", "Draft", "Pending")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "Pending,")
	require.Contains(t, string(out), "Status::Pending")
	require.NotContains(t, string(out), "Draft")
}
