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

const matchSrc = "fn describe(s: Status) -> &'static str {\n    match s {\n        Status::Draft => \"draft\",\n        Status::Published => \"published\",\n    }\n}\n"

func TestAddMatchArm_AppendsArm(t *testing.T) {
	tree := parseRust(t, matchSrc)
	out, result, err := AddMatchArm(tree.Source, tree.Root, "s", "Status::Archived", `"archived"`, InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), `Status::Archived => "archived"`)
}

func TestAddMatchArm_Idempotent(t *testing.T) {
	tree := parseRust(t, matchSrc)
	_, result, err := AddMatchArm(tree.Source, tree.Root, "s", "Status::Draft", `"draft"`, InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestUpdateMatchArm_ChangesBody(t *testing.T) {
	tree := parseRust(t, matchSrc)
	out, result, err := UpdateMatchArm(tree.Source, tree.Root, "s", "Status::Draft", `"pending"`)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), `Status::Draft => "pending"`)
}

func TestRemoveMatchArm_RemovesArmAndComma(t *testing.T) {
	tree := parseRust(t, matchSrc)
	out, result, err := RemoveMatchArm(tree.Source, tree.Root, "s", "Status::Published")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.NotContains(t, string(out), "Published")
	require.Contains(t, string(out), "Draft")
}
