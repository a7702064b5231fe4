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

// Package batch supplies the file collector (a deliberately out-of-core
// concern per spec.md §1) and the C8 batch executor that iterates a
// declarative operation list against the engine.
package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CollectFiles resolves --paths into a sorted, de-duplicated set of Rust
// source files: each entry in paths may be a single file, a directory
// (walked recursively for *.rs files), or a glob pattern. excludes is a
// list of glob patterns checked against the slash-normalized relative-to-
// cwd path, the same shouldInclude/excludeGlobs design
// pkg/ingestion/delta.go's FilterDelta uses for its own file filtering.
func CollectFiles(paths []string, excludes []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	add := func(p string) error {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if !strings.HasSuffix(path, ".rs") {
					return nil
				}
				if excluded(path, excludes) {
					return nil
				}
				if !seen[path] {
					seen[path] = true
					out = append(out, path)
				}
				return nil
			})
		}
		if excluded(p, excludes) {
			return nil
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
		return nil
	}

	for _, raw := range paths {
		if strings.ContainsAny(raw, "*?[") {
			matches, err := filepath.Glob(raw)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if err := add(m); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := add(raw); err != nil {
			return nil, err
		}
	}

	sort.Strings(out)
	return out, nil
}

func excluded(path string, patterns []string) bool {
	norm := filepath.ToSlash(path)
	for _, pat := range patterns {
		if matchesGlob(norm, pat) {
			return true
		}
	}
	return false
}

// matchesGlob supports a leading/trailing/embedded "**" segment meaning
// "any number of path components", layered on top of filepath.Match for
// the rest of the pattern — the same shape of exclude pattern
// (".git/**", "vendor/**", "*.o") pkg/ingestion's IndexingConfig.Exclude
// accepts, reimplemented here since the retrieved pack's own matchesGlob
// helper was filtered out of the ingestion slice.
func matchesGlob(path, pattern string) bool {
	pattern = filepath.ToSlash(pattern)
	if !strings.Contains(pattern, "**") {
		ok, err := filepath.Match(pattern, path)
		return err == nil && ok
	}

	parts := strings.Split(pattern, "**")
	rest := path
	for i, part := range parts {
		part = strings.Trim(part, "/")
		if part == "" {
			continue
		}
		idx := strings.Index(rest, part)
		if idx == -1 {
			return false
		}
		if i == 0 && idx != 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return true
}
