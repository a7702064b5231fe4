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
)

// passesWhereFilter implements spec.md §4.4's `where` filter for
// definition-targeted primitives: "derives_trait:T1,T2,..." admits the
// target only if its attribute set declares derivation of at least one
// listed trait. An empty where is always satisfied. Unknown filter forms
// are treated as non-matching rather than erroring, consistent with
// "targets not matching are skipped silently with changed = false".
func passesWhereFilter(root *sitter.Node, source []byte, targetName, where string) bool {
	if where == "" {
		return true
	}
	const prefix = "derives_trait:"
	if !strings.HasPrefix(where, prefix) {
		return false
	}
	wanted := strings.Split(strings.TrimPrefix(where, prefix), ",")

	item := findDerivableItem(root, source, targetName)
	if item == nil {
		return false
	}
	attr := findDeriveAttribute(item)
	if attr == nil {
		return false
	}
	declared := map[string]bool{}
	for _, t := range deriveTraitNames(source, attr) {
		declared[strings.TrimSpace(t)] = true
	}
	for _, w := range wanted {
		if declared[strings.TrimSpace(w)] {
			return true
		}
	}
	return false
}

// whereTargetName returns the definition-level target name a where
// filter should be evaluated against for op, or "" if op has none (use,
// transform, rename-by-function — only struct/enum-named operations
// carry an attribute set a derives_trait filter can inspect).
func whereTargetName(op Operation) string {
	switch op.Type {
	case OpAddStructField, OpUpdateStructField, OpRemoveStructField, OpAddStructLiteralField:
		return op.StructName
	case OpAddEnumVariant, OpUpdateEnumVariant, OpRemoveEnumVariant, OpRenameEnumVariant:
		return op.EnumName
	case OpAddDerive, OpRemoveDerive:
		return op.TargetName
	default:
		return ""
	}
}
