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

	wErrors "github.com/kraklabs/weld/internal/errors"
)

func errInvalidPosition(s string) error {
	return wErrors.NewInputError(
		"Invalid insertion position",
		"Position must be one of: first, last, after:<name>, before:<name>; got \""+s+"\"",
		"Use --position first|last|after:<name>|before:<name>",
		nil,
	)
}

// ErrOverlap is returned by the surgical editor when two replacements in
// the same apply overlap (spec.md §7 kind 6: an internal primitive bug).
func errOverlap(detail string) error {
	return wErrors.NewOverlapError("Overlapping surgical replacements", detail)
}

func errInvalidAnchor(name string) error {
	return wErrors.NewAnchorError(
		"Insertion anchor not found",
		"No sibling named \""+name+"\" exists in the target container",
		"Check the name passed to --position after:<name>/before:<name>, or use first/last",
	)
}

func errInvalidFieldDef(def string) error {
	return wErrors.NewInputError(
		"Invalid field definition",
		"Could not parse \""+def+"\" as a \"name: Type\" field definition",
		`Use the form "field_name: Type", e.g. "timeout: u32"`,
		nil,
	)
}

func errInvalidVariantDef(def string) error {
	return wErrors.NewInputError(
		"Invalid enum variant definition",
		"Could not parse \""+def+"\" as an enum variant definition",
		`Use a bare name, "Name(Type, ...)", or "Name { field: Type, ... }"`,
		nil,
	)
}

func errInvalidMatchArm(def string) error {
	return wErrors.NewInputError(
		"Invalid match arm definition",
		"Could not find a top-level \"=>\" in \""+def+"\"",
		`Use the form "pattern => body", e.g. "Status::Draft => 1"`,
		nil,
	)
}

func errUnknownOperation(opType string) error {
	return wErrors.NewInputError(
		"Unknown operation type",
		"\""+opType+"\" is not a recognized operation",
		"Check the operation's \"type\" field against the documented set",
		nil,
	)
}

func errAmbiguousTarget(kind, name string, count int) error {
	return wErrors.NewAmbiguousError(
		"Ambiguous rename target",
		fmt.Sprintf("%q matches %d distinct %s candidates", name, count, kind),
		"Disambiguate with --kind function|enum-variant, or qualify the name further",
	)
}

func errInvalidEditMode(s string) error {
	return wErrors.NewInputError(
		"Invalid edit mode",
		"Edit mode must be one of: surgical, reprint; got \""+s+"\"",
		"Use --edit-mode surgical|reprint, or omit it for the default (surgical)",
		nil,
	)
}

func errInvalidDocStyle(s string) error {
	return wErrors.NewInputError(
		"Invalid doc comment style",
		"Doc style must be one of: line, block; got \""+s+"\"",
		"Use --doc-style line|block, or omit it for the default (line)",
		nil,
	)
}

func errInvalidTransformAction(s string) error {
	return wErrors.NewInputError(
		"Invalid transform action",
		"Action must be one of: comment, remove, replace:<text>; got \""+s+"\"",
		"Use --action comment|remove|replace:<text>, or omit it for the default (comment)",
		nil,
	)
}
