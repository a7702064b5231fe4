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

func TestWhereFilter_DerivesTraitAdmitsMatchingStruct(t *testing.T) {
	src := "#[derive(Debug, Clone)]\nstruct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)

	out, res, err := Dispatch(tree.Source, tree.Root, Operation{
		Type:       OpAddStructField,
		StructName: "Config",
		FieldDef:   "timeout: u32",
		Where:      "derives_trait:Clone",
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Contains(t, string(out), "timeout: u32")
}

func TestWhereFilter_DerivesTraitSkipsNonMatchingStruct(t *testing.T) {
	src := "#[derive(Debug)]\nstruct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)

	out, res, err := Dispatch(tree.Source, tree.Root, Operation{
		Type:       OpAddStructField,
		StructName: "Config",
		FieldDef:   "timeout: u32",
		Where:      "derives_trait:Clone",
	}, nil)
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Equal(t, string(tree.Source), string(out))
}

func TestWhereFilter_SkipsStructWithNoDeriveAttribute(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)

	_, res, err := Dispatch(tree.Source, tree.Root, Operation{
		Type:       OpAddStructField,
		StructName: "Config",
		FieldDef:   "timeout: u32",
		Where:      "derives_trait:Clone",
	}, nil)
	require.NoError(t, err)
	require.False(t, res.Changed)
}

func TestWhereFilter_EmptyWhereAlwaysPasses(t *testing.T) {
	src := "struct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)

	_, res, err := Dispatch(tree.Source, tree.Root, Operation{
		Type:       OpAddStructField,
		StructName: "Config",
		FieldDef:   "timeout: u32",
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Changed)
}
