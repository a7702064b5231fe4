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

func TestAddUseDirective_InsertsIntoEmptyFile(t *testing.T) {
	tree := parseRust(t, "fn main() {}\n")
	out, result, err := AddUseDirective(tree.Source, tree.Root, "std::collections::HashMap", InsertPosition{Kind: PositionFirst})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "use std::collections::HashMap;")
}

func TestAddUseDirective_AppendsAfterExisting(t *testing.T) {
	tree := parseRust(t, "use std::fmt;\n\nfn main() {}\n")
	out, result, err := AddUseDirective(tree.Source, tree.Root, "std::collections::HashMap", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "use std::fmt;")
	require.Contains(t, string(out), "use std::collections::HashMap;")
}

func TestAddUseDirective_Idempotent(t *testing.T) {
	tree := parseRust(t, "use std::fmt;\n\nfn main() {}\n")
	_, result, err := AddUseDirective(tree.Source, tree.Root, "std::fmt", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.False(t, result.Changed)
}
