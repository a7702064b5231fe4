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
	"fmt"
	"regexp"
	"strings"
)

// ValidationHit is one line-level textual occurrence of a rename target
// that the AST-directed rename would either miss or be unsafe to touch
// (spec.md §4.6): a comment, a string literal, or (heuristically) a
// macro body.
type ValidationHit struct {
	Line    int
	Text    string
	Context string // "comment", "string", "macro", or "" for a plain textual hit
}

var (
	lineCommentPattern  = regexp.MustCompile(`//.*$`)
	stringLiteralPattern = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
)

// ValidateRename scans source line by line for textual patterns that look
// like references to oldName, the way spec.md §4.6 describes: this never
// mutates anything, it only reports where a rename would have looked.
// Patterns checked per line: `fn oldName(`, `oldName(`, `Enum::oldName`,
// `::oldName`, and a bare `oldName` token boundary match.
func ValidateRename(source []byte, oldName string) []ValidationHit {
	if oldName == "" {
		return nil
	}
	needle := regexp.MustCompile(`\b` + regexp.QuoteMeta(oldName) + `\b`)

	var hits []ValidationHit
	lines := strings.Split(string(source), "\n")
	for i, line := range lines {
		if !needle.MatchString(line) {
			continue
		}
		ctx := classifyLine(line, oldName)
		hits = append(hits, ValidationHit{
			Line:    i + 1,
			Text:    strings.TrimSpace(line),
			Context: ctx,
		})
	}
	return hits
}

// classifyLine guesses why a textual hit would be unsafe or missed: the
// occurrence falls inside a line comment, a string literal, or (as a
// coarse heuristic the query layer shares, since macro bodies are opaque
// to it) a line that invokes a macro.
func classifyLine(line, name string) string {
	if loc := lineCommentPattern.FindStringIndex(line); loc != nil {
		idx := strings.Index(line, name)
		if idx >= loc[0] {
			return "comment"
		}
	}
	for _, m := range stringLiteralPattern.FindAllStringIndex(line, -1) {
		idx := strings.Index(line, name)
		if idx >= m[0] && idx < m[1] {
			return "string"
		}
	}
	if strings.Contains(line, "!(") || strings.Contains(line, "! (") {
		return "macro"
	}
	return ""
}

// FormatValidationReport renders hits as "file:line: text" entries for
// the report of "weld rename --validate" (spec.md §4.6 is advisory — it never
// fails, it only reports).
func FormatValidationReport(path string, hits []ValidationHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		suffix := ""
		if h.Context != "" {
			suffix = fmt.Sprintf(" (%s, unsafe to rewrite)", h.Context)
		}
		out = append(out, fmt.Sprintf("%s:%d: %s%s", path, h.Line, h.Text, suffix))
	}
	return out
}
