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

package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/ledger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestApplyOperation_DryRunDoesNotWriteOrLedger(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs", "struct Config {\n    port: u16,\n}\n")

	store := ledger.NewStore(filepath.Join(dir, ".weld"))
	runner := NewRunner(store, "add")

	op := engine.Operation{
		Type:       engine.OpAddStructField,
		StructName: "Config",
		FieldDef:   "timeout: u32",
		Apply:      false,
	}
	require.NoError(t, op.Normalize())

	result, err := runner.ApplyOperation(context.Background(), op, []string{path})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.True(t, result.Files[0].Changed)
	require.Empty(t, result.RunID)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(after), "timeout")

	_, err = store.LoadIndex()
	require.NoError(t, err)
}

func TestApplyOperation_CommitWritesFileAndLedger(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs", "struct Config {\n    port: u16,\n}\n")

	store := ledger.NewStore(filepath.Join(dir, ".weld"))
	runner := NewRunner(store, "add")

	op := engine.Operation{
		Type:       engine.OpAddStructField,
		StructName: "Config",
		FieldDef:   "timeout: u32",
		Apply:      true,
	}
	require.NoError(t, op.Normalize())

	result, err := runner.ApplyOperation(context.Background(), op, []string{path})
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(after), "timeout: u32")

	idx, err := store.LoadIndex()
	require.NoError(t, err)
	_, ok := idx.GetRun(result.RunID)
	require.True(t, ok)
}

func TestApplyOperation_IdempotentSecondRunReportsNoChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs", "struct Config {\n    port: u16,\n    timeout: u32,\n}\n")

	store := ledger.NewStore(filepath.Join(dir, ".weld"))
	runner := NewRunner(store, "add")

	op := engine.Operation{
		Type:       engine.OpAddStructField,
		StructName: "Config",
		FieldDef:   "timeout: u32",
		Apply:      true,
	}
	require.NoError(t, op.Normalize())

	result, err := runner.ApplyOperation(context.Background(), op, []string{path})
	require.NoError(t, err)
	require.Empty(t, result.RunID)
	require.False(t, result.Files[0].Changed)
}

func TestApplyOperation_TargetAbsentReportsHintsNoError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs", "struct Other {\n    x: u8,\n}\n")

	runner := NewRunner(nil, "add")
	op := engine.Operation{Type: engine.OpAddStructField, StructName: "Config", FieldDef: "timeout: u32"}
	require.NoError(t, op.Normalize())

	result, err := runner.ApplyOperation(context.Background(), op, []string{path})
	require.NoError(t, err)
	require.True(t, result.Files[0].Skipped)
	require.False(t, result.Files[0].Changed)
}

func TestApplyOperation_RenameWithResolverSkipsDifferentPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs",
		"use a::b::Status;\n\nfn f(x: Status) -> Status {\n    match x {\n        Status::Draft => x,\n    }\n}\n")

	runner := NewRunner(nil, "rename")
	op := engine.Operation{
		Type:          engine.OpRenameEnumVariant,
		EnumName:      "Status",
		OldName:       "Draft",
		NewName:       "Pending",
		CanonicalPath: "a::c::Status",
	}
	require.NoError(t, op.Normalize())

	result, err := runner.ApplyOperation(context.Background(), op, []string{path})
	require.NoError(t, err)
	require.False(t, result.Files[0].Changed)
}

func TestApplyOperation_RenameWithResolverRewritesMatchingCanonicalPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lib.rs",
		"use a::b::Status;\n\nfn f(x: Status) -> Status {\n    match x {\n        Status::Draft => x,\n    }\n}\n")

	runner := NewRunner(nil, "rename")
	op := engine.Operation{
		Type:          engine.OpRenameEnumVariant,
		EnumName:      "Status",
		OldName:       "Draft",
		NewName:       "Pending",
		CanonicalPath: "a::b::Status",
		Apply:         true,
	}
	require.NoError(t, op.Normalize())

	result, err := runner.ApplyOperation(context.Background(), op, []string{path})
	require.NoError(t, err)
	require.True(t, result.Files[0].Changed)
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(after), "Status::Pending")
	require.NotContains(t, string(after), "Status::Draft")
}

func TestRunBatch_OperationsSeeEarlierCommits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.rs", "struct Config {\n    port: u16,\n}\n\nfn make() -> Config {\n    Config { port: 1 }\n}\n")

	store := ledger.NewStore(filepath.Join(dir, ".weld"))
	runner := NewRunner(store, "batch")

	addField := engine.Operation{Type: engine.OpAddStructField, StructName: "Config", FieldDef: "timeout: u32", Apply: true}
	require.NoError(t, addField.Normalize())
	addLiteral := engine.Operation{Type: engine.OpAddStructLiteralField, StructName: "Config", FieldName: "timeout", FieldValue: "30", Apply: true}
	require.NoError(t, addLiteral.Normalize())

	spec := &engine.BatchSpec{BasePath: dir, Operations: []engine.Operation{addField, addLiteral}}
	results, err := runner.RunBatch(context.Background(), spec, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	data, err := os.ReadFile(filepath.Join(dir, "lib.rs"))
	require.NoError(t, err)
	require.Contains(t, string(data), "timeout: u32")
	require.Contains(t, string(data), "timeout: 30")
}
