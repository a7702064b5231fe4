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

// Package engine implements the refactoring engine: the AST query layer,
// the surgical editor, the path resolver, the mutation primitives, the
// operation dispatcher, and the hint engine. It is ported from
// original_source/rs-hack's operations.rs/path_resolver.rs/surgical.rs,
// generalized from Rust's owned-enum data model to Go interfaces and
// tagged structs.
package engine

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/weld/pkg/rast"
)

// EditMode selects how a mutation primitive rewrites source: Surgical
// (byte-range replacement, preserving all untouched formatting) or
// Reprint (regenerate the smallest enclosing definition from its AST).
type EditMode int

const (
	EditSurgical EditMode = iota
	EditReprint
)

func (m EditMode) String() string {
	if m == EditReprint {
		return "reprint"
	}
	return "surgical"
}

// ParseEditMode parses the --edit-mode flag value.
func ParseEditMode(s string) (EditMode, bool) {
	switch s {
	case "", "surgical":
		return EditSurgical, true
	case "reprint":
		return EditReprint, true
	default:
		return EditSurgical, false
	}
}

// InsertPosition is a tagged value selecting where a new element is
// inserted into a container (struct fields, union variants, impl items,
// use list). Interpretation depends on the container.
type InsertPosition struct {
	Kind  PositionKind
	Anchor string // sibling name, only meaningful for After/Before
}

type PositionKind int

const (
	PositionFirst PositionKind = iota
	PositionLast
	PositionAfter
	PositionBefore
)

// ParsePosition parses the --position flag: "first", "last",
// "after:Name", or "before:Name".
func ParsePosition(s string) (InsertPosition, error) {
	switch {
	case s == "" || s == "last":
		return InsertPosition{Kind: PositionLast}, nil
	case s == "first":
		return InsertPosition{Kind: PositionFirst}, nil
	case len(s) > len("after:") && s[:len("after:")] == "after:":
		return InsertPosition{Kind: PositionAfter, Anchor: s[len("after:"):]}, nil
	case len(s) > len("before:") && s[:len("before:")] == "before:":
		return InsertPosition{Kind: PositionBefore, Anchor: s[len("before:"):]}, nil
	default:
		return InsertPosition{}, errInvalidPosition(s)
	}
}

// NodeLocation is (start_line, start_column, end_line, end_column): lines
// 1-indexed, columns 0-indexed Unicode scalar values, matching the
// parser's own position model (spec.md §3).
type NodeLocation struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// LocationOf derives a NodeLocation from a tree-sitter node's points.
func LocationOf(node *sitter.Node) NodeLocation {
	sp, ep := node.StartPoint(), node.EndPoint()
	return NodeLocation{
		StartLine:   int(sp.Row) + 1,
		StartColumn: int(sp.Column),
		EndLine:     int(ep.Row) + 1,
		EndColumn:   int(ep.Column),
	}
}

// BackupNode is the persisted pre-image of one modified AST node (spec.md
// §3). identifier is the human-stable key used to re-locate the node on
// revert: the record/union/function name, "Enum::Variant", or
// "StructName#k" for the k-th record literal in visitation order.
type BackupNode struct {
	Category         rast.Category `json:"category"`
	Identifier       string        `json:"identifier"`
	OriginalContent  string        `json:"original_content"`
	Location         NodeLocation  `json:"location"`
}

// ModificationResult is returned by a mutation primitive: whether
// anything changed, the backup nodes produced, and any qualified paths
// the resolver found but decided did not match the target (surfaced to
// the hint engine).
type ModificationResult struct {
	Changed              bool
	ModifiedNodes        []BackupNode
	UnmatchedQualifiedPaths []string
}

// Match is one result of the query layer's inspect/find operation
// (spec.md §4.3).
type Match struct {
	FilePath          string        `json:"file_path"`
	Category          rast.Category `json:"node_type"`
	Identifier        string        `json:"identifier"`
	Location          NodeLocation  `json:"location"`
	Snippet           string        `json:"snippet"`
	PrecedingComment  string        `json:"preceding_comment,omitempty"`
	FieldContext      FieldContext  `json:"field_context,omitempty"`
}

// FieldContext tags a field-name-mode Match with the construct it was
// found in: a struct definition, an enum variant definition, or a
// struct-literal expression.
type FieldContext string

const (
	FieldContextNone                 FieldContext = ""
	FieldContextStructDefinition     FieldContext = "struct-definition"
	FieldContextEnumVariantDefinition FieldContext = "enum-variant-definition"
	FieldContextStructLiteral        FieldContext = "struct-literal"
)

// TransformAction is the action payload of a Transform operation.
type TransformAction struct {
	Kind TransformActionKind
	With string // replacement text, only for TransformReplace
}

type TransformActionKind int

const (
	TransformComment TransformActionKind = iota
	TransformRemove
	TransformReplace
)

// DocCommentStyle selects Rust doc-comment syntax: `///` line comments
// (default) or a `/** */` block comment.
type DocCommentStyle int

const (
	DocStyleLine DocCommentStyle = iota
	DocStyleBlock
)

// ParseDocStyle parses the --doc-style flag / a batch spec's doc_style
// string ("line", default, or "block").
func ParseDocStyle(s string) (DocCommentStyle, bool) {
	switch s {
	case "", "line":
		return DocStyleLine, true
	case "block":
		return DocStyleBlock, true
	default:
		return DocStyleLine, false
	}
}

// ParseTransformAction parses the --action flag / a batch spec's action
// string: "comment" (default), "remove", or "replace:<text>".
func ParseTransformAction(s string) (TransformAction, bool) {
	switch {
	case s == "" || s == "comment":
		return TransformAction{Kind: TransformComment}, true
	case s == "remove":
		return TransformAction{Kind: TransformRemove}, true
	case len(s) > len("replace:") && s[:len("replace:")] == "replace:":
		return TransformAction{Kind: TransformReplace, With: s[len("replace:"):]}, true
	default:
		return TransformAction{}, false
	}
}
