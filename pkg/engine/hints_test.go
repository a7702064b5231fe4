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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildHints_FoundElsewhere(t *testing.T) {
	tree := parseRust(t, "fn widget() {}\n\nfn use_it() {\n    widget();\n}\n")
	hints := BuildHints(tree, "widget", nil, false)
	require.NotEmpty(t, hints)
	joined := hints[0].Message
	require.Contains(t, joined, "widget")
}

func TestBuildHints_UnmatchedQualifiedPaths(t *testing.T) {
	tree := parseRust(t, "fn main() {}\n")
	hints := BuildHints(tree, "Widget", []string{"a::Widget", "a::Widget", "b::Widget"}, false)
	require.NotEmpty(t, hints)
	var found bool
	for _, h := range hints {
		if strings.Contains(h.Message, "a::Widget") && strings.Contains(h.Message, "b::Widget") {
			found = true
		}
	}
	require.True(t, found)
}

func TestBuildHints_TextSearchFallback(t *testing.T) {
	tree := parseRust(t, "// mentions phantom_fn somewhere\nfn main() {}\n")
	hints := BuildHints(tree, "phantom_fn", nil, false)
	require.NotEmpty(t, hints)
}

func TestBuildHints_AutoDetectMissingUnion(t *testing.T) {
	tree := parseRust(t, "fn main() {}\n")
	hints := BuildHints(tree, "Status", nil, true)
	var found bool
	for _, h := range hints {
		if strings.Contains(h.Message, "auto-detect requires") {
			found = true
		}
	}
	require.True(t, found)
}
