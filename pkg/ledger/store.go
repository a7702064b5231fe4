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
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	wErrors "github.com/kraklabs/weld/internal/errors"
	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/rast"
)

// stateDirEnvVar overrides the state directory outright, taking priority
// over the project config's local_state setting (spec.md §6 / SPEC_FULL.md's renaming of the
// original's RS_HACK_STATE_DIR).
const stateDirEnvVar = "WELD_STATE_DIR"

// GetStateDir resolves the ledger's state directory: the env var if set,
// else "./.weld" when local is requested, else "~/.weld". The original
// resolves the non-local case through the `directories` crate's
// system-data-dir lookup; no equivalent crate is available in this
// module's dependency set, so os.UserHomeDir plus a fixed ".weld" suffix
// stands in for it.
func GetStateDir(local bool) (string, error) {
	if v := os.Getenv(stateDirEnvVar); v != "" {
		return v, nil
	}
	if local {
		return filepath.Join(".", ".weld"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", wErrors.NewInternalError(
			"Could not determine the state directory",
			err.Error(),
			"Set WELD_STATE_DIR to an explicit path",
			err,
		)
	}
	return filepath.Join(home, ".weld"), nil
}

// Store is the ledger's persistence layer, rooted at Dir.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir. dir is created lazily on first
// write, not here.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) indexPath() string           { return filepath.Join(s.Dir, "runs.json") }
func (s *Store) runPath(runID string) string { return filepath.Join(s.Dir, runID+".json") }
func (s *Store) nodesDir(runID string) string { return filepath.Join(s.Dir, runID) }

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// LoadIndex reads runs.json, returning a fresh empty index (not an error)
// if it doesn't exist yet. A schema-version mismatch is reported as a
// KindLedger error: recoverable by resetting state, not fatal to the run.
func (s *Store) LoadIndex() (RunsIndex, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return NewRunsIndex(), nil
		}
		return RunsIndex{}, err
	}
	var idx RunsIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return RunsIndex{}, wErrors.NewLedgerError(
			"Ledger index is corrupt",
			err.Error(),
			`Run "weld clean --keep-days 0" to reset local state`,
		)
	}
	if idx.SchemaVersion != ledgerSchemaVersion {
		return RunsIndex{}, wErrors.NewLedgerError(
			"Ledger schema is incompatible",
			fmt.Sprintf("runs.json is schema version %d, this build expects %d", idx.SchemaVersion, ledgerSchemaVersion),
			`Run "weld clean --keep-days 0" to reset local state`,
		)
	}
	if idx.Runs == nil {
		idx.Runs = map[string]RunMetadata{}
	}
	return idx, nil
}

// LoadOrResetIndex is LoadIndex's tolerant form: any error, including a
// schema incompatibility, resets to a fresh empty index rather than
// propagating, for call sites (like "weld find"/"weld batch --apply")
// that must not fail just because an older weld left behind a stale
// ledger.
func (s *Store) LoadOrResetIndex() RunsIndex {
	idx, err := s.LoadIndex()
	if err != nil {
		return NewRunsIndex()
	}
	return idx
}

// SaveIndex writes idx to runs.json via write-temp-then-rename.
func (s *Store) SaveIndex(idx RunsIndex) error {
	if err := os.MkdirAll(s.Dir, 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(s.indexPath(), data, 0600)
}

// SaveRunMetadata writes run's own metadata file and folds it into the
// index, both atomically.
func (s *Store) SaveRunMetadata(run RunMetadata) error {
	if err := os.MkdirAll(s.Dir, 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicWrite(s.runPath(run.RunID), data, 0600); err != nil {
		return err
	}

	idx, err := s.LoadIndex()
	if err != nil {
		return err
	}
	idx.AddRun(run)
	return s.SaveIndex(idx)
}

// LoadRunMetadata reads one run's own metadata file.
func (s *Store) LoadRunMetadata(runID string) (RunMetadata, error) {
	data, err := os.ReadFile(s.runPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return RunMetadata{}, wErrors.NewInputError(
				"Run not found",
				fmt.Sprintf("no run metadata for %q", runID),
				`Check "weld history" for valid run IDs`,
				nil,
			)
		}
		return RunMetadata{}, err
	}
	var run RunMetadata
	if err := json.Unmarshal(data, &run); err != nil {
		return RunMetadata{}, wErrors.NewLedgerError(
			"Run metadata is corrupt",
			err.Error(),
			`Run "weld clean --keep-days 0" to reset local state`,
		)
	}
	return run, nil
}

// safePath flattens a file path into a filename-safe fragment by joining
// its components with underscores, the same scheme state.rs's
// save_backup_nodes uses for "{safe_path}__node_{idx}.json".
func safePath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "/")
	return strings.ReplaceAll(p, "/", "_")
}

// SaveBackupNodes writes one JSON file per backup node for filePath under
// run runID, named "{safe_path}__node_{idx}.json" by visitation order.
func (s *Store) SaveBackupNodes(runID, filePath string, nodes []engine.BackupNode) error {
	dir := s.nodesDir(runID)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	safe := safePath(filePath)
	for i, n := range nodes {
		data, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s__node_%d.json", safe, i)
		if err := atomicWrite(filepath.Join(dir, name), data, 0600); err != nil {
			return err
		}
	}
	return nil
}

// LoadBackupNodes reads back count backup-node files for filePath under
// run runID, in visitation order.
func (s *Store) LoadBackupNodes(runID, filePath string, count int) ([]engine.BackupNode, error) {
	dir := s.nodesDir(runID)
	safe := safePath(filePath)
	out := make([]engine.BackupNode, 0, count)
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s__node_%d.json", safe, i)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		var n engine.BackupNode
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// RevertRun restores every file a run touched to its pre-apply content.
// Unless force is set, each file's current hash must still match the hash
// recorded right after the run applied — a mismatch means the file was
// edited since, and reverting blind would silently discard that edit.
// Restoration proceeds node-by-node in engine.RestoreOrder, reparsing
// between each since every surgical restore shifts the byte offsets any
// later lookup in the same file still needs.
func (s *Store) RevertRun(runID string, force bool) error {
	run, err := s.LoadRunMetadata(runID)
	if err != nil {
		return err
	}
	if run.Status == StatusReverted {
		return wErrors.NewRevertError(
			"Run already reverted",
			fmt.Sprintf("run %s was already reverted", runID),
			"Nothing to do",
		)
	}
	if !run.CanRevert {
		return wErrors.NewRevertError(
			"Run cannot be reverted",
			fmt.Sprintf("run %s recorded no backup nodes to restore", runID),
			"",
		)
	}

	parser := rast.NewParser()
	for _, mod := range run.FilesModified {
		if len(mod.BackupNodes) == 0 {
			continue
		}
		if !force {
			current, err := HashFile(mod.Path)
			if err != nil {
				return err
			}
			if current != mod.HashAfter {
				return wErrors.NewRevertError(
					"File changed since this run was applied",
					fmt.Sprintf("%s no longer matches the hash recorded after run %s", mod.Path, runID),
					"Pass --force to revert anyway and accept losing the intervening edits",
				)
			}
		}

		source, err := os.ReadFile(mod.Path)
		if err != nil {
			return err
		}
		info, err := os.Stat(mod.Path)
		if err != nil {
			return err
		}

		for _, node := range engine.RestoreOrder(mod.BackupNodes) {
			tree, err := parser.Parse(context.Background(), mod.Path, source)
			if err != nil {
				return err
			}
			out, ok, restoreErr := engine.RestoreBackupNode(tree.Source, tree.Root, node)
			tree.Close()
			if restoreErr != nil {
				return restoreErr
			}
			if ok {
				source = out
			}
		}

		if err := os.WriteFile(mod.Path, source, info.Mode()); err != nil {
			return err
		}
	}

	run.Status = StatusReverted
	run.CanRevert = false
	return s.SaveRunMetadata(run)
}

// ShowHistory returns every run, newest first, paired with its status
// label. limit <= 0 means unlimited.
func (s *Store) ShowHistory(limit int) ([]HistoryEntry, error) {
	idx, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	runs := idx.GetSortedRuns()
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	out := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		out[i] = HistoryEntry{Run: r, Label: historyLabel(r)}
	}
	return out, nil
}

// CleanOldState removes every run (and its backup-node files) older than
// keepDays and rewrites the index, returning how many runs were removed.
func (s *Store) CleanOldState(keepDays int) (int, error) {
	idx, err := s.LoadIndex()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays)
	kept := map[string]RunMetadata{}
	cleaned := 0
	for id, run := range idx.Runs {
		if run.Timestamp.Before(cutoff) {
			_ = os.Remove(s.runPath(id))
			_ = os.RemoveAll(s.nodesDir(id))
			cleaned++
			continue
		}
		kept[id] = run
	}
	idx.Runs = kept
	if err := s.SaveIndex(idx); err != nil {
		return cleaned, err
	}
	return cleaned, nil
}

// Size returns the total bytes occupied by the state directory, walked
// with the standard library since no third-party directory-walking
// library appears anywhere in this module's dependency set.
func (s *Store) Size() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	return total, nil
}
