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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

// PathResolver decides whether a syntactic path occurrence in a file
// denotes a configured target, given that file's use-directives. Ported
// from original_source/rs-hack/src/path_resolver.rs.
type PathResolver struct {
	canonicalSegments []string
	simpleName        string
	localAliases      map[string][]string
	globPossible      bool
	legacyMode        bool // no canonical path supplied: fall back to bare/Enum::Variant matching
}

// NewPathResolver builds a resolver for a canonical target path such as
// "a::b::Config".
func NewPathResolver(canonicalPath string) *PathResolver {
	segs := strings.Split(canonicalPath, "::")
	return &PathResolver{
		canonicalSegments: segs,
		simpleName:        segs[len(segs)-1],
		localAliases:      map[string][]string{},
	}
}

// NewSimplePathResolver builds a legacy resolver with only a bare name:
// no canonical path was supplied, so matching falls back to the
// conservative syntactic rules described in spec.md §4.2 ("bare simple
// name matches only unqualified occurrences; Enum::Variant matches
// exactly that two-segment form; *::Variant matches any path whose last
// segment is Variant").
func NewSimplePathResolver(name string) *PathResolver {
	return &PathResolver{
		simpleName:   name,
		localAliases: map[string][]string{},
		legacyMode:   true,
	}
}

// TargetName returns the target's simple (unqualified) name.
func (r *PathResolver) TargetName() string { return r.simpleName }

// ScanFile walks every use_declaration in the file's tree, populating
// local aliases and the glob-possible flag.
func (r *PathResolver) ScanFile(source []byte, root *sitter.Node) {
	rast.Walk(root, func(n *sitter.Node) {
		if n.Type() != "use_declaration" {
			return
		}
		arg := n.ChildByFieldName("argument")
		if arg == nil {
			return
		}
		rast.WalkUseTree(source, arg, nil, r.registerAlias, r.registerGlob)
	})
}

func (r *PathResolver) registerAlias(local string, canonical []string) {
	r.localAliases[local] = append([]string{}, canonical...)
}

func (r *PathResolver) registerGlob(prefix []string) {
	if r.isPotentialGlobForTarget(prefix) {
		r.globPossible = true
	}
}

// isPotentialGlobForTarget requires the glob's prefix to be exactly one
// level above the target (spec.md §4.2: "a glob import whose prefix is a
// strict ancestor of the target sets glob_possible = true").
func (r *PathResolver) isPotentialGlobForTarget(prefix []string) bool {
	if len(r.canonicalSegments) == 0 {
		return false
	}
	parent := r.canonicalSegments[:len(r.canonicalSegments)-1]
	return segmentsEqual(prefix, parent)
}

// MatchesTarget implements the three-rule conservative match in spec.md
// §4.2 when a canonical path is configured, or the legacy bare/
// Enum::Variant rules when it is not.
func (r *PathResolver) MatchesTarget(path string) bool {
	segs := strings.Split(path, "::")

	if r.legacyMode {
		return r.matchesLegacy(segs)
	}

	// Rule 1: exact canonical match.
	if segmentsEqual(segs, r.canonicalSegments) {
		return true
	}

	// Rule 2: alias-prefix match. For some i >= 1, the path's first i
	// segments form a key in local_aliases; substituting its value and
	// concatenating the remainder yields the canonical target.
	for i := 1; i <= len(segs); i++ {
		key := strings.Join(segs[:i], "::")
		alias, ok := r.localAliases[key]
		if !ok {
			continue
		}
		candidate := append(append([]string{}, alias...), segs[i:]...)
		if segmentsEqual(candidate, r.canonicalSegments) {
			return true
		}
	}

	// Rule 3: single-segment direct import.
	if len(segs) == 1 {
		if alias, ok := r.localAliases[segs[0]]; ok && segmentsEqual(alias, r.canonicalSegments) {
			return true
		}
	}

	return false
}

func (r *PathResolver) matchesLegacy(segs []string) bool {
	if wildcard := strings.TrimPrefix(r.simpleName, "*::"); wildcard != r.simpleName {
		return segs[len(segs)-1] == wildcard
	}
	switch len(segs) {
	case 1:
		return segs[0] == r.simpleName
	case 2:
		if segs[0] == "*" {
			return segs[1] == r.simpleName
		}
		// bare mode only recognizes the exact two-segment Enum::Variant
		// form when simpleName itself was supplied as "Enum::Variant".
		return strings.Join(segs, "::") == r.simpleName
	default:
		return false
	}
}

// MightMatchViaGlob is advisory only (spec.md §4.2): true when a glob
// import from the target's parent module exists and path's last segment
// equals the target's simple name. The engine never treats this as a
// confirmed match.
func (r *PathResolver) MightMatchViaGlob(path string) bool {
	if !r.globPossible {
		return false
	}
	segs := strings.Split(path, "::")
	return segs[len(segs)-1] == r.simpleName
}

// PathEndsWith checks whether path's second-to-last segment equals
// precedingSegment — used to recognize Enum::Variant forms where Enum is
// not otherwise resolvable.
func PathEndsWith(path, precedingSegment string) bool {
	segs := strings.Split(path, "::")
	if len(segs) < 2 {
		return false
	}
	return segs[len(segs)-2] == precedingSegment
}

func segmentsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
