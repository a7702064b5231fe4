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

import "strings"

// FieldDef holds a parsed Rust struct-field definition: "port: u16".
type FieldDef struct {
	Name string
	Type string
}

// ParseFieldDef parses a single "name: Type" field definition string, the
// shape every Add/Update struct-field operation's FieldDef carries. It is
// a dependency-free, string-only parser in the spirit of
// pkg/sigparse.ParseGoParams — the grammar is far simpler here (Rust
// struct fields have no grouped-parameter shorthand) so a single
// top-level colon split suffices.
func ParseFieldDef(def string) (FieldDef, bool) {
	def = strings.TrimSpace(def)
	def = strings.TrimSuffix(def, ",")
	idx := topLevelIndex(def, ':')
	if idx < 0 {
		return FieldDef{}, false
	}
	name := strings.TrimSpace(def[:idx])
	typ := strings.TrimSpace(def[idx+1:])
	if name == "" || typ == "" {
		return FieldDef{}, false
	}
	return FieldDef{Name: name, Type: typ}, true
}

// VariantShape classifies the payload shape of an enum variant
// definition.
type VariantShape int

const (
	VariantUnit VariantShape = iota
	VariantTuple
	VariantStruct
)

// VariantDef holds a parsed Rust enum-variant definition: a bare name
// ("Draft"), a tuple variant ("Error(String)"), or a struct variant
// ("Moved { x: i32, y: i32 }").
type VariantDef struct {
	Name   string
	Shape  VariantShape
	Fields []FieldDef // struct-shape only
	Tuple  []string   // tuple-shape only: raw type strings
}

// ParseVariantDef parses a VariantDef string.
func ParseVariantDef(def string) (VariantDef, bool) {
	def = strings.TrimSpace(def)
	def = strings.TrimSuffix(def, ",")

	braceIdx := strings.IndexByte(def, '{')
	parenIdx := strings.IndexByte(def, '(')

	switch {
	case braceIdx >= 0:
		name := strings.TrimSpace(def[:braceIdx])
		end := matchingDelim(def, braceIdx, '{', '}')
		if end < 0 {
			return VariantDef{}, false
		}
		body := def[braceIdx+1 : end]
		var fields []FieldDef
		for _, part := range splitTopLevelCommas(body) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			fd, ok := ParseFieldDef(part)
			if !ok {
				return VariantDef{}, false
			}
			fields = append(fields, fd)
		}
		return VariantDef{Name: name, Shape: VariantStruct, Fields: fields}, name != ""

	case parenIdx >= 0:
		name := strings.TrimSpace(def[:parenIdx])
		end := matchingDelim(def, parenIdx, '(', ')')
		if end < 0 {
			return VariantDef{}, false
		}
		body := def[parenIdx+1 : end]
		var types []string
		for _, part := range splitTopLevelCommas(body) {
			part = strings.TrimSpace(part)
			if part != "" {
				types = append(types, part)
			}
		}
		return VariantDef{Name: name, Shape: VariantTuple, Tuple: types}, name != ""

	default:
		name := strings.TrimSpace(def)
		return VariantDef{Name: name, Shape: VariantUnit}, name != ""
	}
}

// Render reproduces the canonical source text for a variant definition,
// used when synthesizing new enum_item bodies in reprint mode.
func (v VariantDef) Render() string {
	switch v.Shape {
	case VariantStruct:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.Name + ": " + f.Type
		}
		return v.Name + " { " + strings.Join(parts, ", ") + " }"
	case VariantTuple:
		return v.Name + "(" + strings.Join(v.Tuple, ", ") + ")"
	default:
		return v.Name
	}
}

func topLevelIndex(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		default:
			if depth == 0 && s[i] == sep {
				return i
			}
		}
	}
	return -1
}

func splitTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func matchingDelim(s string, pos int, open, close byte) int {
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
