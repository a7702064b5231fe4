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

// Package ledger records what every apply run touched and lets it be
// reverted. It is ported from original_source/rs-hack/src/state.rs: a
// runs.json index, one metadata file per run, and one backup-node file per
// modified AST node, all under a state directory that is the only thing
// weld ever shares across invocations.
package ledger

import (
	"sort"
	"time"

	"github.com/kraklabs/weld/pkg/engine"
)

// ledgerSchemaVersion guards against an older or newer weld version reading
// a runs.json it doesn't understand. A mismatch is a KindLedger error,
// recoverable by resetting the state directory rather than fatal to the run
// (spec.md §4.8's incompatible-format-detection paragraph).
const ledgerSchemaVersion = 1

// RunStatus is a run's lifecycle state.
type RunStatus string

const (
	StatusApplied  RunStatus = "applied"
	StatusReverted RunStatus = "reverted"
)

// FileModification is one file's before/after hash and the backup nodes
// needed to restore it, the Go analogue of state.rs's FileModification.
type FileModification struct {
	Path        string               `json:"path"`
	HashBefore  string               `json:"hash_before"`
	HashAfter   string               `json:"hash_after"`
	BackupNodes []engine.BackupNode  `json:"backup_nodes"`
}

// RunMetadata is one apply run's full record: what command produced it,
// which files it touched, and whether it can still be reverted.
type RunMetadata struct {
	RunID         string             `json:"run_id"`
	Timestamp     time.Time          `json:"timestamp"`
	Command       string             `json:"command"`
	Operation     string             `json:"operation"`
	FilesModified []FileModification `json:"files_modified"`
	Status        RunStatus          `json:"status"`
	CanRevert     bool               `json:"can_revert"`
}

// NewRun builds a freshly-applied run record. CanRevert is true only if at
// least one file carries a backup node — a run that only added a use
// statement or ran a transform with no matches has nothing to restore.
func NewRun(command, operation string, files []FileModification) RunMetadata {
	canRevert := false
	for _, f := range files {
		if len(f.BackupNodes) > 0 {
			canRevert = true
			break
		}
	}
	return RunMetadata{
		RunID:         GenerateRunID(),
		Timestamp:     time.Now(),
		Command:       command,
		Operation:     operation,
		FilesModified: files,
		Status:        StatusApplied,
		CanRevert:     canRevert,
	}
}

// RunsIndex is the runs.json root: every run keyed by ID, for the history
// and revert-by-ID commands.
type RunsIndex struct {
	SchemaVersion int                    `json:"schema_version"`
	Runs          map[string]RunMetadata `json:"runs"`
}

// NewRunsIndex builds an empty index at the current schema version.
func NewRunsIndex() RunsIndex {
	return RunsIndex{SchemaVersion: ledgerSchemaVersion, Runs: map[string]RunMetadata{}}
}

// AddRun inserts or replaces run by its RunID.
func (idx *RunsIndex) AddRun(run RunMetadata) {
	if idx.Runs == nil {
		idx.Runs = map[string]RunMetadata{}
	}
	idx.Runs[run.RunID] = run
}

// GetRun looks up a run by ID.
func (idx RunsIndex) GetRun(runID string) (RunMetadata, bool) {
	run, ok := idx.Runs[runID]
	return run, ok
}

// GetSortedRuns returns every run, newest first.
func (idx RunsIndex) GetSortedRuns() []RunMetadata {
	out := make([]RunMetadata, 0, len(idx.Runs))
	for _, r := range idx.Runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// HistoryEntry pairs a run with the status label show_history prints next
// to it (spec.md §4.8: "[can revert]" / "[applied]" / "[reverted]").
type HistoryEntry struct {
	Run   RunMetadata
	Label string
}

func historyLabel(r RunMetadata) string {
	switch {
	case r.Status == StatusReverted:
		return "[reverted]"
	case r.CanRevert:
		return "[can revert]"
	default:
		return "[applied]"
	}
}
