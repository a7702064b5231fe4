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

package rast

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Category is the engine's closed semantic-category tag set (spec.md §3).
type Category string

const (
	CategoryRecordDefinition   Category = "record-definition"
	CategoryRecordLiteral      Category = "record-literal"
	CategoryUnionDefinition    Category = "tagged-union-definition"
	CategoryUnionVariantUsage  Category = "tagged-union-variant-usage"
	CategoryCaseArm            Category = "case-arm"
	CategoryFunctionDefinition Category = "function-definition"
	CategoryFunctionCall       Category = "function-call"
	CategoryMethodCall         Category = "method-call"
	CategoryMacroCall          Category = "macro-call"
	CategoryIdentifier         Category = "identifier"
	CategoryTypeReference      Category = "type-reference"
	CategoryModule             Category = "module"
	CategoryConstant           Category = "constant"
	CategoryStatic             Category = "static"
	CategoryTraitDefinition    Category = "trait-definition"
	CategoryTypeAlias          Category = "type-alias"
	CategoryUseDirective       Category = "use-directive"
	CategoryImplMethod         Category = "impl-method"
)

// categoryKinds maps a Category to the one tree-sitter node type string
// that produces it. Categories that depend on context (impl-method vs.
// function-definition, both from "function_item"; calls; identifiers;
// type references) are resolved in Categorize before this table is
// consulted.
var categoryKinds = map[Category]string{
	CategoryRecordDefinition:   "struct_item",
	CategoryRecordLiteral:      "struct_expression",
	CategoryUnionDefinition:    "enum_item",
	CategoryCaseArm:            "match_arm",
	CategoryFunctionDefinition: "function_item",
	CategoryMacroCall:          "macro_invocation",
	CategoryModule:             "mod_item",
	CategoryConstant:           "const_item",
	CategoryStatic:             "static_item",
	CategoryTraitDefinition:    "trait_item",
	CategoryTypeAlias:          "type_item",
	CategoryUseDirective:       "use_declaration",
}

// groupCategories implements spec.md §3's category grouping: "function"
// resolves to {function-definition, function-call, method-call,
// impl-method}; "record" resolves to {record-definition, record-literal};
// "union" and "call" are grouped likewise. There is no separate
// trait-method category.
var groupCategories = map[string][]Category{
	"function": {CategoryFunctionDefinition, CategoryFunctionCall, CategoryMethodCall, CategoryImplMethod},
	"record":   {CategoryRecordDefinition, CategoryRecordLiteral},
	"union":    {CategoryUnionDefinition, CategoryUnionVariantUsage},
	"call":     {CategoryFunctionCall, CategoryMethodCall, CategoryMacroCall},
}

// ExpandKind maps a grouping keyword (or a bare category name) onto the
// set of categories it covers.
func ExpandKind(kind string) []Category {
	if cats, ok := groupCategories[kind]; ok {
		out := make([]Category, len(cats))
		copy(out, cats)
		return out
	}
	return []Category{Category(kind)}
}

// DefinitionLevel reports whether a category is a definition-level
// construct (snippet preserved verbatim) as opposed to an expression-level
// one (snippet whitespace-collapsed), per spec.md §4.3.
func DefinitionLevel(cat Category) bool {
	switch cat {
	case CategoryRecordDefinition, CategoryUnionDefinition, CategoryFunctionDefinition,
		CategoryImplMethod, CategoryTraitDefinition, CategoryTypeAlias, CategoryModule,
		CategoryConstant, CategoryStatic, CategoryUseDirective:
		return true
	default:
		return false
	}
}

// Categorize returns the category of node, or "" if node is not the root
// of any recognized category. Context-sensitive distinctions (impl-method
// vs. free function-definition; function-call vs. method-call) are
// resolved here using the node's kind and its immediate structural
// context, since the grammar alone does not separate them.
func Categorize(node *sitter.Node) Category {
	if node == nil {
		return ""
	}
	kind := node.Type()

	switch kind {
	case "function_item":
		if implAncestor(node) {
			return CategoryImplMethod
		}
		return CategoryFunctionDefinition
	case "call_expression":
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Type() == "field_expression" {
			return CategoryMethodCall
		}
		return CategoryFunctionCall
	case "field_expression":
		// A bare method-call target (receiver.method(...)) is classified
		// at the enclosing call_expression; a field_expression alone
		// (receiver.field) is treated as an identifier reference.
		return CategoryIdentifier
	case "type_identifier", "scoped_type_identifier", "generic_type":
		return CategoryTypeReference
	case "identifier", "field_identifier":
		return CategoryIdentifier
	}

	for cat, gk := range categoryKinds {
		if gk == kind {
			return cat
		}
	}
	return ""
}

// implAncestor walks up from a function_item looking for an enclosing
// impl_item (with at most a declaration_list in between), distinguishing
// an impl method from a free function.
func implAncestor(node *sitter.Node) bool {
	parent := node.Parent()
	for parent != nil {
		switch parent.Type() {
		case "impl_item":
			return true
		case "declaration_list":
			parent = parent.Parent()
			continue
		case "source_file", "mod_item":
			return false
		}
		parent = parent.Parent()
	}
	return false
}

// Identifier returns the declared/referenced name for a categorized node:
// the struct/enum/function/trait/type-alias name, the macro name, the
// path text for a use-directive, or the literal text for an identifier.
func Identifier(source []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "struct_item", "enum_item", "trait_item", "type_item":
		if n := node.ChildByFieldName("name"); n != nil {
			return Text(source, n)
		}
	case "function_item":
		if n := node.ChildByFieldName("name"); n != nil {
			return Text(source, n)
		}
	case "const_item", "static_item":
		if n := node.ChildByFieldName("name"); n != nil {
			return Text(source, n)
		}
	case "mod_item":
		if n := node.ChildByFieldName("name"); n != nil {
			return Text(source, n)
		}
	case "macro_invocation":
		if n := node.ChildByFieldName("macro"); n != nil {
			return Text(source, n)
		}
	case "call_expression":
		if n := node.ChildByFieldName("function"); n != nil {
			if n.Type() == "field_expression" {
				if m := n.ChildByFieldName("field"); m != nil {
					return Text(source, m)
				}
			}
			return Text(source, n)
		}
	case "struct_expression":
		if n := node.ChildByFieldName("name"); n != nil {
			return Text(source, n)
		}
	case "use_declaration":
		if n := node.ChildByFieldName("argument"); n != nil {
			return Text(source, n)
		}
	}
	return Text(source, node)
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Walk visits node and every descendant in depth-first, pre-order
// (definition order within the file), calling visit for each. There is
// no pruning: every subtree is always visited, so callers filter by node
// kind inside visit; mutation primitives rely on this full traversal for
// their backup-node counters.
func Walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), visit)
	}
}

// FindAncestor returns the nearest ancestor of node (inclusive) whose kind
// is one of kinds, or nil.
func FindAncestor(node *sitter.Node, kinds ...string) *sitter.Node {
	for n := node; n != nil; n = n.Parent() {
		for _, k := range kinds {
			if n.Type() == k {
				return n
			}
		}
	}
	return nil
}
