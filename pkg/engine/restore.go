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
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

// RestoreBackupNode re-locates the node a BackupNode describes in a fresh
// parse of the file's current content and replaces its span with the
// backup's OriginalContent, mirroring original_source/rs-hack's
// restore_from_nodes dispatch over ItemStruct/ItemEnum/ItemImpl/ItemFn/
// ExprStruct/ItemUse. Restoration is only attempted for node shapes whose
// backup captured a whole, name-addressable item; per-occurrence node
// shapes (a single call site, a single match arm, a single use path) have
// no stable handle once other edits have touched the same file, so those
// categories report ok=false rather than guess at a byte range, the same
// conservative stance the original takes for ItemUse.
func RestoreBackupNode(source []byte, root *sitter.Node, node BackupNode) (out []byte, ok bool, err error) {
	switch node.Category {
	case rast.CategoryRecordLiteral:
		return restoreRecordLiteral(source, root, node)
	case rast.CategoryImplMethod:
		return restoreImplBlock(source, root, node)
	case rast.CategoryUnionDefinition:
		if strings.Contains(node.Identifier, "::") {
			return source, false, nil // a single-variant rename backup, not a whole-enum one
		}
		return restoreItemByName(source, root, node)
	case rast.CategoryRecordDefinition, rast.CategoryFunctionDefinition, rast.CategoryTraitDefinition,
		rast.CategoryTypeAlias, rast.CategoryModule, rast.CategoryConstant, rast.CategoryStatic:
		return restoreItemByName(source, root, node)
	default:
		return source, false, nil
	}
}

func restoreItemByName(source []byte, root *sitter.Node, node BackupNode) ([]byte, bool, error) {
	item := findDefinitionByName(root, source, node.Identifier)
	if item == nil {
		return source, false, nil
	}
	out, err := ApplySurgicalEdits(source, []Replacement{{
		Start: int(item.StartByte()), End: int(item.EndByte()), NewText: node.OriginalContent,
	}})
	if err != nil {
		return source, false, err
	}
	return out, true, nil
}

func restoreImplBlock(source []byte, root *sitter.Node, node BackupNode) ([]byte, bool, error) {
	idx := strings.Index(node.Identifier, "::")
	if idx < 0 {
		return source, false, nil
	}
	typeName := node.Identifier[:idx]
	impl := findImplFor(root, source, typeName, true)
	if impl == nil {
		return source, false, nil
	}
	out, err := ApplySurgicalEdits(source, []Replacement{{
		Start: int(impl.StartByte()), End: int(impl.EndByte()), NewText: node.OriginalContent,
	}})
	if err != nil {
		return source, false, err
	}
	return out, true, nil
}

// restoreRecordLiteral restores the k-th "StructName#k" struct-expression
// literal in the current file's visitation order. A literal that no longer
// exists (e.g. its enclosing function was since deleted) is a no-op, not
// an error — it matches the original's tolerant treatment of missing
// ExprStruct targets on revert.
func restoreRecordLiteral(source []byte, root *sitter.Node, node BackupNode) ([]byte, bool, error) {
	hash := strings.LastIndex(node.Identifier, "#")
	if hash < 0 {
		return source, false, nil
	}
	structName := node.Identifier[:hash]
	counter, convErr := strconv.Atoi(node.Identifier[hash+1:])
	if convErr != nil {
		return source, false, nil
	}

	var candidates []*sitter.Node
	rast.Walk(root, func(n *sitter.Node) {
		if n.Type() != "struct_expression" {
			return
		}
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		path := rast.Text(source, nameNode)
		if idx := strings.LastIndex(path, "::"); idx >= 0 {
			path = path[idx+2:]
		}
		if path == structName {
			candidates = append(candidates, n)
		}
	})
	if counter < 0 || counter >= len(candidates) {
		return source, false, nil
	}

	target := candidates[counter]
	out, err := ApplySurgicalEdits(source, []Replacement{{
		Start: int(target.StartByte()), End: int(target.EndByte()), NewText: strings.TrimSpace(node.OriginalContent),
	}})
	if err != nil {
		return source, false, err
	}
	return out, true, nil
}

// RestoreOrder sorts nodes into the order original_source/rs-hack's
// restore_from_nodes applies them in: record-literal backups first, by
// descending counter so removing/replacing one literal never shifts the
// byte offsets the next lookup still needs to find, then every other
// (whole-item) backup in no particular order, since each is located by
// name rather than by position.
func RestoreOrder(nodes []BackupNode) []BackupNode {
	var literals, rest []BackupNode
	for _, n := range nodes {
		if n.Category == rast.CategoryRecordLiteral {
			literals = append(literals, n)
		} else {
			rest = append(rest, n)
		}
	}
	for i := 0; i < len(literals); i++ {
		for j := i + 1; j < len(literals); j++ {
			if literalCounter(literals[j]) > literalCounter(literals[i]) {
				literals[i], literals[j] = literals[j], literals[i]
			}
		}
	}
	return append(literals, rest...)
}

func literalCounter(n BackupNode) int {
	hash := strings.LastIndex(n.Identifier, "#")
	if hash < 0 {
		return -1
	}
	c, err := strconv.Atoi(n.Identifier[hash+1:])
	if err != nil {
		return -1
	}
	return c
}
