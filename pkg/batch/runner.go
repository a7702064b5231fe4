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
	"time"

	"github.com/kraklabs/weld/pkg/engine"
	"github.com/kraklabs/weld/pkg/ledger"
	"github.com/kraklabs/weld/pkg/rast"
)

// FileResult is one file's outcome from a single operation apply,
// carrying enough to render a dry-run preview or, on commit, to have
// already been written and hashed.
type FileResult struct {
	Path        string
	Changed     bool
	Skipped     bool // target absent in this file; Hints explains why
	Diff        string
	Stats       engine.DiffStats
	Hints       []engine.Hint
	BackupNodes []engine.BackupNode
	HashBefore  string
	HashAfter   string
	Duration    time.Duration // parse-dispatch-write wall time, for weld serve's mutation-latency histogram
	Err         error
}

// OperationResult is the outcome of dispatching one Operation across a
// file set: spec.md §4.5's "For each file, invokes the primitive,
// collects backup nodes and a changed bit".
type OperationResult struct {
	Operation     engine.Operation
	Files         []FileResult
	RunID         string // set only when committed to a ledger store and at least one file changed
	ModifiedCount int    // cumulative modified-node count, for --limit enforcement
}

// Runner parses files, dispatches operations against them, and — when
// Operation.Apply is set — writes the result and records it in the
// ledger. It holds no file-set state of its own; CollectFiles/LoadSpec
// supply that externally, consistent with spec.md §1 treating globbing
// as an out-of-core collaborator.
type Runner struct {
	Parser  *rast.Parser
	Store   *ledger.Store
	Command string // ledger RunMetadata.Command, e.g. "add", "rename", "batch"

	// Progress, when set, is called once per file immediately after it has
	// been processed (whether changed, skipped, or errored), letting a CLI
	// front a long file set with a progress bar without the runner itself
	// knowing anything about terminals.
	Progress func(path string)
}

// NewRunner builds a Runner backed by store (nil is valid: a Runner
// without a store never touches the ledger, even when applying).
func NewRunner(store *ledger.Store, command string) *Runner {
	return &Runner{Parser: rast.NewParser(), Store: store, Command: command}
}

// ApplyOperation dispatches op against every file in files, in order
// (spec.md §5's file-ordering guarantee), honoring op.Limit across the
// whole file set and op.Apply's dry-run/commit switch. On commit, a
// ledger run is recorded only if at least one file actually changed.
func (r *Runner) ApplyOperation(ctx context.Context, op engine.Operation, files []string) (OperationResult, error) {
	result := OperationResult{Operation: op}
	var fileMods []ledger.FileModification

	for _, path := range files {
		if op.Limit > 0 && result.ModifiedCount >= op.Limit {
			break
		}

		fr := r.applyOne(ctx, op, path, &result.ModifiedCount)
		result.Files = append(result.Files, fr)
		if r.Progress != nil {
			r.Progress(path)
		}
		if fr.Err != nil || !fr.Changed {
			continue
		}
		if op.Apply {
			fileMods = append(fileMods, ledger.FileModification{
				Path:        path,
				HashBefore:  fr.HashBefore,
				HashAfter:   fr.HashAfter,
				BackupNodes: fr.BackupNodes,
			})
		}
	}

	if op.Apply && r.Store != nil && len(fileMods) > 0 {
		run := ledger.NewRun(r.Command, string(op.Type), fileMods)
		if err := r.recordRun(run); err != nil {
			return result, err
		}
		result.RunID = run.RunID
	}
	return result, nil
}

func (r *Runner) applyOne(ctx context.Context, op engine.Operation, path string, modifiedCount *int) FileResult {
	start := time.Now()
	source, err := os.ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	tree, err := r.Parser.Parse(ctx, path, source)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	defer tree.Close()

	if !engine.TargetExists(tree, op) {
		return FileResult{
			Path:    path,
			Skipped: true,
			Hints:   engine.BuildHints(tree, targetNameOf(op), nil, op.Type == engine.OpAddMatchArm && op.AutoDetect),
		}
	}

	resolver := buildResolver(op)
	if resolver != nil {
		resolver.ScanFile(source, tree.Root)
	}

	out, mod, err := engine.Dispatch(source, tree.Root, op, resolver)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	if !mod.Changed {
		return FileResult{
			Path:  path,
			Hints: engine.BuildHints(tree, targetNameOf(op), mod.UnmatchedQualifiedPaths, false),
		}
	}

	*modifiedCount += len(mod.ModifiedNodes)
	diffText, stats, derr := engine.GenerateUnifiedDiff(path, string(source), string(out), 3)
	if derr != nil {
		return FileResult{Path: path, Err: derr}
	}

	fr := FileResult{
		Path:        path,
		Changed:     true,
		Diff:        diffText,
		Stats:       stats,
		BackupNodes: mod.ModifiedNodes,
	}

	if op.Apply {
		fr.HashBefore = ledger.HashBytes(source)
		if err := os.WriteFile(path, out, 0644); err != nil { //nolint:gosec // preserves caller's existing file mode intent
			fr.Err = err
			return fr
		}
		fr.HashAfter = ledger.HashBytes(out)
	}
	fr.Duration = time.Since(start)
	return fr
}

func (r *Runner) recordRun(run ledger.RunMetadata) error {
	for _, f := range run.FilesModified {
		if len(f.BackupNodes) == 0 {
			continue
		}
		if err := r.Store.SaveBackupNodes(run.RunID, f.Path, f.BackupNodes); err != nil {
			return err
		}
	}
	if err := r.Store.SaveRunMetadata(run); err != nil {
		return err
	}
	idx, err := r.Store.LoadIndex()
	if err != nil {
		idx = ledger.NewRunsIndex()
	}
	idx.AddRun(run)
	return r.Store.SaveIndex(idx)
}

// buildResolver builds the path resolver appropriate to op's target, or
// nil when the operation has no single named target a resolver could
// disambiguate (add-use, transform).
func buildResolver(op engine.Operation) *engine.PathResolver {
	switch op.Type {
	case engine.OpRenameFunction:
		if op.CanonicalPath != "" {
			return engine.NewPathResolver(op.CanonicalPath)
		}
		return engine.NewSimplePathResolver(op.OldName)
	case engine.OpRenameEnumVariant:
		if op.CanonicalPath != "" {
			return engine.NewPathResolver(op.CanonicalPath)
		}
		return engine.NewSimplePathResolver(op.EnumName)
	case engine.OpAddStructField, engine.OpAddStructLiteralField:
		if op.FieldValue != "" || op.Type == engine.OpAddStructLiteralField {
			if op.CanonicalPath != "" {
				return engine.NewPathResolver(op.CanonicalPath)
			}
			return engine.NewSimplePathResolver(op.StructName)
		}
		return nil
	default:
		return nil
	}
}

func targetNameOf(op engine.Operation) string {
	switch op.Type {
	case engine.OpAddStructField, engine.OpUpdateStructField, engine.OpRemoveStructField, engine.OpAddStructLiteralField:
		return op.StructName
	case engine.OpAddEnumVariant, engine.OpUpdateEnumVariant, engine.OpRemoveEnumVariant:
		return op.EnumName
	case engine.OpRenameEnumVariant:
		return op.OldName
	case engine.OpAddMatchArm, engine.OpUpdateMatchArm, engine.OpRemoveMatchArm:
		return op.FunctionName
	case engine.OpAddImplMethod:
		return op.StructName
	case engine.OpAddDerive, engine.OpRemoveDerive:
		return op.TargetName
	case engine.OpRenameFunction:
		return op.OldName
	case engine.OpAddDocComment, engine.OpUpdateDocComment, engine.OpRemoveDocComment:
		return op.TargetName
	default:
		return ""
	}
}

// RunBatch executes spec's operations in list order against files
// collected once from spec.BasePath, with no transactional semantics
// across operations (spec.md §4.9): each operation independently commits
// or dry-runs, and earlier commits are visible to later operations since
// every ApplyOperation call re-reads files from disk.
func (r *Runner) RunBatch(ctx context.Context, spec *engine.BatchSpec, excludes []string) ([]OperationResult, error) {
	files, err := CollectFiles([]string{spec.BasePath}, excludes)
	if err != nil {
		return nil, err
	}

	results := make([]OperationResult, 0, len(spec.Operations))
	for _, op := range spec.Operations {
		res, err := r.ApplyOperation(ctx, op, files)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
