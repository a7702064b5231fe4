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

const implSrc = "struct Counter {\n    count: i32,\n}\n\nimpl Counter {\n    fn increment(&mut self) {\n        self.count += 1;\n    }\n}\n"

func TestAddImplMethod_AppendsMethod(t *testing.T) {
	tree := parseRust(t, implSrc)
	out, result, err := AddImplMethod(tree.Source, tree.Root, "Counter", "fn reset(&mut self) {\n    self.count = 0;\n}", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "fn reset(&mut self)")
	require.Contains(t, string(out), "fn increment(&mut self)")
}

func TestAddImplMethod_Idempotent(t *testing.T) {
	tree := parseRust(t, implSrc)
	_, result, err := AddImplMethod(tree.Source, tree.Root, "Counter", "fn increment(&mut self) {\n    self.count += 1;\n}", InsertPosition{Kind: PositionLast})
	require.NoError(t, err)
	require.False(t, result.Changed)
}

const deriveSrc = "#[derive(Debug)]\nstruct Config {\n    port: u16,\n}\n\nenum Status {\n    Draft,\n}\n"

func TestAddDerive_CreatesAttributeWhenAbsent(t *testing.T) {
	tree := parseRust(t, deriveSrc)
	out, result, err := AddDerive(tree.Source, tree.Root, "Status", []string{"Debug", "Clone"})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "#[derive(Debug, Clone)]\nenum Status")
}

func TestAddDerive_AppendsToExisting(t *testing.T) {
	tree := parseRust(t, deriveSrc)
	out, result, err := AddDerive(tree.Source, tree.Root, "Config", []string{"Clone"})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "#[derive(Debug, Clone)]")
}

func TestAddDerive_Idempotent(t *testing.T) {
	tree := parseRust(t, deriveSrc)
	_, result, err := AddDerive(tree.Source, tree.Root, "Config", []string{"Debug"})
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestRemoveDerive_RemovesTraitKeepingOthers(t *testing.T) {
	src := "#[derive(Debug, Clone, Serialize)]\nstruct Config {\n    port: u16,\n}\n"
	tree := parseRust(t, src)
	out, result, err := RemoveDerive(tree.Source, tree.Root, "Config", []string{"Clone"})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "#[derive(Debug, Serialize)]")
}

func TestRemoveDerive_RemovesWholeAttributeWhenEmpty(t *testing.T) {
	tree := parseRust(t, deriveSrc)
	out, result, err := RemoveDerive(tree.Source, tree.Root, "Config", []string{"Debug"})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.NotContains(t, string(out), "derive")
	require.Contains(t, string(out), "struct Config")
}
