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

	"github.com/kraklabs/weld/pkg/rast"
)

const transformSrc = "fn main() {\n    debug_log!(\"start\");\n    do_work();\n    debug_log!(\"end\");\n}\n"

func TestTransform_CommentOut(t *testing.T) {
	tree := parseRust(t, transformSrc)
	out, result, err := Transform(tree.Source, tree.Root, []rast.Category{rast.CategoryMacroCall}, "debug_log", "", TransformAction{Kind: TransformComment}, 0)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Len(t, result.ModifiedNodes, 2)
	require.Contains(t, string(out), `// debug_log!("start")`)
	require.Contains(t, string(out), `// debug_log!("end")`)
}

func TestTransform_Remove(t *testing.T) {
	tree := parseRust(t, transformSrc)
	out, result, err := Transform(tree.Source, tree.Root, []rast.Category{rast.CategoryMacroCall}, "debug_log", "", TransformAction{Kind: TransformRemove}, 0)
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.NotContains(t, string(out), "debug_log")
	require.Contains(t, string(out), "do_work();")
}

func TestTransform_LimitCapsCount(t *testing.T) {
	tree := parseRust(t, transformSrc)
	_, result, err := Transform(tree.Source, tree.Root, []rast.Category{rast.CategoryMacroCall}, "debug_log", "", TransformAction{Kind: TransformComment}, 1)
	require.NoError(t, err)
	require.Len(t, result.ModifiedNodes, 1)
}

func TestTransform_NoMatchIsUnchanged(t *testing.T) {
	tree := parseRust(t, transformSrc)
	_, result, err := Transform(tree.Source, tree.Root, []rast.Category{rast.CategoryMacroCall}, "nonexistent", "", TransformAction{Kind: TransformComment}, 0)
	require.NoError(t, err)
	require.False(t, result.Changed)
}
