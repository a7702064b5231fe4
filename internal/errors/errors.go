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

// Package errors defines weld's user-facing error type and the fatal-error
// exit path shared by the CLI and the MCP transport.
//
// Every error that can reach a terminal or a JSON-RPC client carries a
// title, a detail line, and an actionable suggestion so the caller never
// has to go spelunking in a stack trace to figure out what to do next.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind classifies a UserError for exit-code and formatting purposes.
type Kind string

const (
	KindInput      Kind = "input"      // bad flags, bad paths, malformed operation descriptors
	KindConfig     Kind = "config"     // batch spec / project config problems
	KindParse      Kind = "parse"      // object-language parse failure
	KindAmbiguous  Kind = "ambiguous"  // rename target matches more than one category
	KindAnchor     Kind = "anchor"     // invalid insertion anchor
	KindOverlap    Kind = "overlap"    // overlapping surgical replacements (internal bug)
	KindRevert     Kind = "revert"     // hash mismatch on revert
	KindLedger     Kind = "ledger"     // ledger schema incompatibility (recoverable, not fatal)
	KindPermission Kind = "permission" // filesystem permission error
	KindInternal   Kind = "internal"   // anything that should never happen
)

// UserError is weld's structured error: a human title, a one-line detail,
// an actionable suggestion, and (optionally) the underlying cause.
type UserError struct {
	Kind       Kind   `json:"kind"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion,omitempty"`
	Cause      error  `json:"-"`
}

func (e *UserError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

func (e *UserError) Unwrap() error { return e.Cause }

// Format renders the error for human display. When json is true it emits
// a single-line JSON object instead (used under --json / quiet-json mode).
func (e *UserError) Format(asJSON bool) string {
	if asJSON {
		payload := map[string]string{
			"kind":   string(e.Kind),
			"title":  e.Title,
			"detail": e.Detail,
		}
		if e.Suggestion != "" {
			payload["suggestion"] = e.Suggestion
		}
		if e.Cause != nil {
			payload["cause"] = e.Cause.Error()
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Sprintf(`{"kind":"internal","title":"error formatting failed","detail":%q}`, err.Error())
		}
		return string(data)
	}

	out := fmt.Sprintf("Error: %s\n  %s", e.Title, e.Detail)
	if e.Cause != nil {
		out += fmt.Sprintf("\n  cause: %v", e.Cause)
	}
	if e.Suggestion != "" {
		out += fmt.Sprintf("\n  suggestion: %s", e.Suggestion)
	}
	return out
}

// ExitCode maps a Kind to the process exit status used by FatalError.
func (e *UserError) ExitCode() int {
	switch e.Kind {
	case KindLedger:
		return 0 // recoverable: emits a notice and resets state, never fatal to the run
	default:
		return 1
	}
}

func newError(kind Kind, title, detail, suggestion string, cause error) *UserError {
	return &UserError{Kind: kind, Title: title, Detail: detail, Suggestion: suggestion, Cause: cause}
}

// NewInputError reports a bad CLI invocation: missing/contradictory flags,
// an unreadable path, an invalid operation descriptor. Fatal, rejected
// before any file I/O.
func NewInputError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindInput, title, detail, suggestion, cause)
}

// NewConfigError reports a problem loading or parsing a project config or
// batch spec file.
func NewConfigError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindConfig, title, detail, suggestion, cause)
}

// NewParseError reports a fatal parse failure on one input file. Fatal for
// that file only; multi-file runs continue past it.
func NewParseError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindParse, title, detail, suggestion, cause)
}

// NewAmbiguousError reports that a rename target matches more than one
// semantic category and needs caller disambiguation.
func NewAmbiguousError(title, detail, suggestion string) *UserError {
	return newError(KindAmbiguous, title, detail, suggestion, nil)
}

// NewAnchorError reports an insert-position anchor (after:/before:) that
// does not name an existing sibling.
func NewAnchorError(title, detail, suggestion string) *UserError {
	return newError(KindAnchor, title, detail, suggestion, nil)
}

// NewOverlapError reports two surgical replacements whose ranges overlap.
// This should never happen from well-formed primitives; it indicates an
// internal bug in a mutation primitive.
func NewOverlapError(title, detail string) *UserError {
	return newError(KindOverlap, title, detail, "This is a bug in a mutation primitive. Please report it.", nil)
}

// NewRevertError reports a hash mismatch on revert: the file has been
// edited since the run was applied.
func NewRevertError(title, detail, suggestion string) *UserError {
	return newError(KindRevert, title, detail, suggestion, nil)
}

// NewLedgerError reports a ledger schema incompatibility. Recoverable: the
// caller emits the notice and resets the state directory rather than
// aborting.
func NewLedgerError(title, detail, suggestion string) *UserError {
	return newError(KindLedger, title, detail, suggestion, nil)
}

// NewPermissionError reports a filesystem permission failure.
func NewPermissionError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindPermission, title, detail, suggestion, cause)
}

// NewInternalError reports an unexpected condition that should never
// occur in correct operation.
func NewInternalError(title, detail, suggestion string, cause error) *UserError {
	return newError(KindInternal, title, detail, suggestion, cause)
}

// FatalError prints err to stderr (as JSON when asJSON is set) and exits
// the process with an appropriate status code. Non-UserError values are
// wrapped as internal errors first.
func FatalError(err error, asJSON bool) {
	if err == nil {
		return
	}
	ue, ok := err.(*UserError)
	if !ok {
		ue = NewInternalError("Unexpected error", err.Error(), "", err)
	}
	fmt.Fprintln(os.Stderr, ue.Format(asJSON))
	os.Exit(ue.ExitCode())
}
