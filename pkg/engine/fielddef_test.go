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

func TestParseFieldDef(t *testing.T) {
	fd, ok := ParseFieldDef("timeout: u32")
	require.True(t, ok)
	require.Equal(t, "timeout", fd.Name)
	require.Equal(t, "u32", fd.Type)
}

func TestParseFieldDef_GenericType(t *testing.T) {
	fd, ok := ParseFieldDef("items: Vec<String>")
	require.True(t, ok)
	require.Equal(t, "items", fd.Name)
	require.Equal(t, "Vec<String>", fd.Type)
}

func TestParseFieldDef_Invalid(t *testing.T) {
	_, ok := ParseFieldDef("not a field")
	require.False(t, ok)
}

func TestParseVariantDef_Unit(t *testing.T) {
	v, ok := ParseVariantDef("Draft")
	require.True(t, ok)
	require.Equal(t, VariantUnit, v.Shape)
	require.Equal(t, "Draft", v.Render())
}

func TestParseVariantDef_Tuple(t *testing.T) {
	v, ok := ParseVariantDef("Error(String, u32)")
	require.True(t, ok)
	require.Equal(t, VariantTuple, v.Shape)
	require.Equal(t, []string{"String", "u32"}, v.Tuple)
	require.Equal(t, "Error(String, u32)", v.Render())
}

func TestParseVariantDef_Struct(t *testing.T) {
	v, ok := ParseVariantDef("Moved { x: i32, y: i32 }")
	require.True(t, ok)
	require.Equal(t, VariantStruct, v.Shape)
	require.Len(t, v.Fields, 2)
	require.Equal(t, "x", v.Fields[0].Name)
	require.Equal(t, "i32", v.Fields[1].Type)
}
