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

func TestAddDocComment_AttachesAboveDefinition(t *testing.T) {
	tree := parseRust(t, "struct Config {\n    port: u16,\n}\n")
	out, result, err := AddDocComment(tree.Source, tree.Root, "Config", "Application configuration.", DocStyleLine)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "/// Application configuration.\nstruct Config")
}

func TestAddDocComment_Idempotent(t *testing.T) {
	tree := parseRust(t, "/// Existing doc.\nstruct Config {\n    port: u16,\n}\n")
	_, result, err := AddDocComment(tree.Source, tree.Root, "Config", "New doc.", DocStyleLine)
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestUpdateDocComment_ReplacesExisting(t *testing.T) {
	tree := parseRust(t, "/// Old doc.\nstruct Config {\n    port: u16,\n}\n")
	out, result, err := UpdateDocComment(tree.Source, tree.Root, "Config", "New doc.", DocStyleLine)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "/// New doc.")
	require.NotContains(t, string(out), "Old doc")
}

func TestRemoveDocComment_RemovesLines(t *testing.T) {
	tree := parseRust(t, "/// Old doc.\nstruct Config {\n    port: u16,\n}\n")
	out, result, err := RemoveDocComment(tree.Source, tree.Root, "Config")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.NotContains(t, string(out), "Old doc")
	require.Contains(t, string(out), "struct Config")
}
