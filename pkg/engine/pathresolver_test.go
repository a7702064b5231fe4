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

func TestPathResolver_ExactCanonicalMatch(t *testing.T) {
	r := NewPathResolver("a::b::Config")
	require.True(t, r.MatchesTarget("a::b::Config"))
	require.False(t, r.MatchesTarget("a::b::Other"))
}

func TestPathResolver_SimpleImport(t *testing.T) {
	r := NewPathResolver("a::b::Config")
	r.registerAlias("Config", []string{"a", "b", "Config"})
	require.True(t, r.MatchesTarget("Config"))
}

func TestPathResolver_ModuleImport(t *testing.T) {
	r := NewPathResolver("a::b::Config")
	r.registerAlias("b", []string{"a", "b"})
	require.True(t, r.MatchesTarget("b::Config"))
}

func TestPathResolver_AliasedImport(t *testing.T) {
	r := NewPathResolver("a::b::Config")
	r.registerAlias("Cfg", []string{"a", "b", "Config"})
	require.True(t, r.MatchesTarget("Cfg"))
}

func TestPathResolver_DoesNotMatchDifferentPath(t *testing.T) {
	r := NewPathResolver("a::b::Config")
	r.registerAlias("Config", []string{"x", "y", "Config"})
	require.False(t, r.MatchesTarget("Config"))
}

func TestPathResolver_DoesNotMatchWithoutImport(t *testing.T) {
	r := NewPathResolver("a::b::Config")
	require.False(t, r.MatchesTarget("Config"))
}

func TestPathResolver_GlobImportDetection(t *testing.T) {
	r := NewPathResolver("a::b::Config")
	r.registerGlob([]string{"a", "b"})
	require.True(t, r.globPossible)
	require.True(t, r.MightMatchViaGlob("Config"))
	require.False(t, r.MightMatchViaGlob("Other"))

	// A glob whose prefix is not the strict parent never sets the flag.
	r2 := NewPathResolver("a::b::Config")
	r2.registerGlob([]string{"x", "y"})
	require.False(t, r2.globPossible)
}

func TestPathResolver_PathEndsWith(t *testing.T) {
	require.True(t, PathEndsWith("a::b::Config", "b"))
	require.False(t, PathEndsWith("a::b::Config", "a"))
	require.False(t, PathEndsWith("Config", "b"))
}

func TestPathResolver_GroupedImports(t *testing.T) {
	// Simulates `use a::b::{Config, Other as Alt};`
	r := NewPathResolver("a::b::Config")
	r.registerAlias("Config", []string{"a", "b", "Config"})
	r.registerAlias("Alt", []string{"a", "b", "Other"})
	require.True(t, r.MatchesTarget("Config"))

	r2 := NewPathResolver("a::b::Other")
	r2.registerAlias("Config", []string{"a", "b", "Config"})
	r2.registerAlias("Alt", []string{"a", "b", "Other"})
	require.True(t, r2.MatchesTarget("Alt"))
}

func TestPathResolver_LegacyBareNameMode(t *testing.T) {
	r := NewSimplePathResolver("Draft")
	require.True(t, r.MatchesTarget("Draft"))
	require.False(t, r.MatchesTarget("Status::Draft"))

	variant := NewSimplePathResolver("Status::Draft")
	require.True(t, variant.MatchesTarget("Status::Draft"))
	require.False(t, variant.MatchesTarget("Draft"))

	wildcard := NewSimplePathResolver("Draft")
	require.True(t, wildcard.MatchesTarget("*::Draft"))
}
