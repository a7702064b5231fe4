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

func TestValidateRename_FindsPlainCallAndComment(t *testing.T) {
	src := "fn process(x: i32) -> i32 {\n    x\n}\n\n// calls process again below\nfn caller() -> i32 {\n    process(5)\n}\n"
	hits := ValidateRename([]byte(src), "process")
	require.Len(t, hits, 3)
	require.Equal(t, "comment", hits[1].Context)
	require.Equal(t, "", hits[2].Context)
}

func TestValidateRename_SkipsUnrelatedSubstring(t *testing.T) {
	src := "fn processAll() -> i32 { 0 }\n"
	hits := ValidateRename([]byte(src), "process")
	require.Empty(t, hits)
}

func TestValidateRename_FlagsStringLiteral(t *testing.T) {
	src := `fn caller() { println!("calling process"); }` + "\n"
	hits := ValidateRename([]byte(src), "process")
	require.Len(t, hits, 1)
	require.Equal(t, "string", hits[0].Context)
}

func TestFormatValidationReport_IncludesFileAndLine(t *testing.T) {
	hits := []ValidationHit{{Line: 3, Text: "process(5)"}}
	out := FormatValidationReport("src/lib.rs", hits)
	require.Equal(t, []string{"src/lib.rs:3: process(5)"}, out)
}
