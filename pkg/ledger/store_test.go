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

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/rast"
)

func TestLoadIndex_MissingIsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())
	idx, err := store.LoadIndex()
	require.NoError(t, err)
	require.Empty(t, idx.Runs)
	require.Equal(t, ledgerSchemaVersion, idx.SchemaVersion)
}

func TestSaveLoadRunMetadata_Roundtrip(t *testing.T) {
	store := NewStore(t.TempDir())
	run := NewRun("add-field", "add_struct_field", []FileModification{
		{Path: "a.rs", HashBefore: "h1", HashAfter: "h2", BackupNodes: []engine.BackupNode{{Identifier: "Config"}}},
	})
	require.NoError(t, store.SaveRunMetadata(run))

	loaded, err := store.LoadRunMetadata(run.RunID)
	require.NoError(t, err)
	require.Equal(t, run.RunID, loaded.RunID)
	require.Equal(t, run.Command, loaded.Command)
	require.True(t, loaded.CanRevert)

	idx, err := store.LoadIndex()
	require.NoError(t, err)
	got, ok := idx.GetRun(run.RunID)
	require.True(t, ok)
	require.Equal(t, run.RunID, got.RunID)
}

func TestSaveLoadBackupNodes_Roundtrip(t *testing.T) {
	store := NewStore(t.TempDir())
	nodes := []engine.BackupNode{
		{Category: "record-definition", Identifier: "Config", OriginalContent: "struct Config {}"},
		{Category: "record-literal", Identifier: "Config#0", OriginalContent: "Config {}"},
	}
	require.NoError(t, store.SaveBackupNodes("run1", "src/main.rs", nodes))

	loaded, err := store.LoadBackupNodes("run1", "src/main.rs", len(nodes))
	require.NoError(t, err)
	require.Equal(t, nodes, loaded)
}

func TestRevertRun_RestoresFileAndMarksReverted(t *testing.T) {
	dir := t.TempDir()
	original := "struct Config {\n    port: u16,\n}\n"
	filePath := filepath.Join(dir, "main.rs")
	require.NoError(t, os.WriteFile(filePath, []byte(original), 0644))

	hashBefore, err := HashFile(filePath)
	require.NoError(t, err)

	tree := parseRustForTest(t, original)
	modified, result, err := engine.AddStructField(tree.Source, tree.Root, "Config", "timeout: u32", engine.InsertPosition{Kind: engine.PositionLast})
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.NoError(t, os.WriteFile(filePath, modified, 0644))

	hashAfter, err := HashFile(filePath)
	require.NoError(t, err)

	store := NewStore(filepath.Join(dir, "state"))
	run := NewRun("add", "add_struct_field", []FileModification{
		{Path: filePath, HashBefore: hashBefore, HashAfter: hashAfter, BackupNodes: result.ModifiedNodes},
	})
	require.NoError(t, store.SaveRunMetadata(run))

	require.NoError(t, store.RevertRun(run.RunID, false))

	restored, err := os.ReadFile(filePath)
	require.NoError(t, err)
	require.Equal(t, original, string(restored))

	reloaded, err := store.LoadRunMetadata(run.RunID)
	require.NoError(t, err)
	require.Equal(t, StatusReverted, reloaded.Status)
	require.False(t, reloaded.CanRevert)

	idx, err := store.LoadIndex()
	require.NoError(t, err)
	require.False(t, idx.Runs[run.RunID].CanRevert)
}

func TestRevertRun_HashMismatchWithoutForce(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "main.rs")
	require.NoError(t, os.WriteFile(filePath, []byte("struct Config { port: u16, timeout: u32 }\n"), 0644))

	store := NewStore(filepath.Join(dir, "state"))
	run := NewRun("add", "add_struct_field", []FileModification{
		{Path: filePath, HashBefore: "stale", HashAfter: "does-not-match",
			BackupNodes: []engine.BackupNode{{Category: "record-definition", Identifier: "Config", OriginalContent: "struct Config { port: u16 }\n"}}},
	})
	require.NoError(t, store.SaveRunMetadata(run))

	err := store.RevertRun(run.RunID, false)
	require.Error(t, err)
}

func TestRevertRun_AlreadyRevertedErrors(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	run := NewRun("add", "add_struct_field", []FileModification{
		{Path: "x.rs", HashAfter: "h", BackupNodes: []engine.BackupNode{{Identifier: "X"}}},
	})
	run.Status = StatusReverted
	require.NoError(t, store.SaveRunMetadata(run))

	err := store.RevertRun(run.RunID, true)
	require.Error(t, err)
}

func TestShowHistory_LabelsAndOrder(t *testing.T) {
	store := NewStore(t.TempDir())
	older := NewRun("add", "op1", []FileModification{{Path: "a.rs", BackupNodes: []engine.BackupNode{{Identifier: "A"}}}})
	older.Timestamp = time.Now().Add(-time.Hour)
	require.NoError(t, store.SaveRunMetadata(older))

	newer := NewRun("remove", "op2", nil)
	require.NoError(t, store.SaveRunMetadata(newer))

	entries, err := store.ShowHistory(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, newer.RunID, entries[0].Run.RunID)
	require.Equal(t, "[can revert]", entries[1].Label)
	require.Equal(t, "[applied]", entries[0].Label)
}

func TestCleanOldState_RemovesStaleRuns(t *testing.T) {
	store := NewStore(t.TempDir())
	stale := NewRun("add", "op", nil)
	stale.Timestamp = time.Now().Add(-30 * 24 * time.Hour)
	require.NoError(t, store.SaveRunMetadata(stale))

	fresh := NewRun("add", "op", nil)
	require.NoError(t, store.SaveRunMetadata(fresh))

	cleaned, err := store.CleanOldState(7)
	require.NoError(t, err)
	require.Equal(t, 1, cleaned)

	idx, err := store.LoadIndex()
	require.NoError(t, err)
	_, staleStillThere := idx.GetRun(stale.RunID)
	require.False(t, staleStillThere)
	_, freshStillThere := idx.GetRun(fresh.RunID)
	require.True(t, freshStillThere)
}

func parseRustForTest(t *testing.T, src string) *rast.Tree {
	t.Helper()
	tree, err := rast.NewParser().Parse(context.Background(), "test.rs", []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}
