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

const renameFuncSrc = "fn process(x: i32) -> i32 {\n    x + 1\n}\n\nfn caller() -> i32 {\n    process(5)\n}\n"

func TestRenameFunction_RenamesDefinitionAndCall(t *testing.T) {
	tree := parseRust(t, renameFuncSrc)
	out, result, err := RenameFunction(tree.Source, tree.Root, nil, "process", "run")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "fn run(x: i32)")
	require.Contains(t, string(out), "run(5)")
	require.NotContains(t, string(out), "process")
}

func TestRenameFunction_SkipsMethodCalls(t *testing.T) {
	src := "fn process(x: i32) -> i32 { x }\n\nfn caller(s: Thing) -> i32 {\n    s.process()\n}\n"
	tree := parseRust(t, src)
	out, _, err := RenameFunction(tree.Source, tree.Root, nil, "process", "run")
	require.NoError(t, err)
	require.Contains(t, string(out), "s.process()")
}

func TestRenameFunction_QualifiedCallRequiresResolverMatch(t *testing.T) {
	src := "use a::b::process;\nuse x::y::process as other_process;\n\nfn caller() {\n    process();\n    x::y::process();\n}\n"
	tree := parseRust(t, src)
	resolver := NewPathResolver("a::b::process")
	resolver.ScanFile(tree.Source, tree.Root)
	out, result, err := RenameFunction(tree.Source, tree.Root, resolver, "process", "run")
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Contains(t, string(out), "run();")
	require.Contains(t, string(out), "x::y::process();")
}

func TestRenameFunction_Idempotent(t *testing.T) {
	tree := parseRust(t, renameFuncSrc)
	out, _, err := RenameFunction(tree.Source, tree.Root, nil, "process", "run")
	require.NoError(t, err)

	tree2 := parseRust(t, string(out))
	_, result, err := RenameFunction(tree2.Source, tree2.Root, nil, "process", "run")
	require.NoError(t, err)
	require.False(t, result.Changed)
}
