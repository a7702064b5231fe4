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

// Package rast wraps Tree-sitter's Rust grammar: pooled parsers, node-kind
// classification into the engine's closed semantic-category tag set, and
// small helpers for pulling identifiers and source snippets out of a
// parsed tree. Nothing in this package understands refactoring semantics;
// it only understands the grammar.
package rast

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Parser is a pooled wrapper around sitter.Parser for the Rust grammar.
// Tree-sitter parsers are not safe for concurrent use; Parser hands out
// one at a time via sync.Pool.
type Parser struct {
	pool sync.Pool
	init sync.Once
}

// NewParser constructs a Rust parser pool.
func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ensureInit() {
	p.init.Do(func() {
		p.pool.New = func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(rust.GetLanguage())
			return sp
		}
	})
}

// Tree is a parsed file: the original source bytes, its syntax tree, and
// the path it was read from (used only for diagnostics).
type Tree struct {
	Path    string
	Source  []byte
	Root    *sitter.Node
	sitter  *sitter.Tree
	ErrorCt int
}

// Close releases the tree-sitter tree. Safe to call on a nil Tree.
func (t *Tree) Close() {
	if t == nil || t.sitter == nil {
		return
	}
	t.sitter.Close()
}

// Parse parses Rust source into a Tree. Returns an error only on
// catastrophic parser failure (e.g. context cancellation); a source file
// with syntax errors still produces a Tree whose ErrorCt is nonzero and
// whose ERROR nodes are visible to callers that care (the query layer
// does not; it simply fails to match malformed constructs).
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Tree, error) {
	p.ensureInit()
	obj := p.pool.Get()
	sp, ok := obj.(*sitter.Parser)
	if !ok {
		return nil, fmt.Errorf("rast: invalid parser type from pool")
	}
	defer p.pool.Put(sp)

	tree, err := sp.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("rast: parse %s: %w", path, err)
	}
	root := tree.RootNode()
	return &Tree{
		Path:    path,
		Source:  source,
		Root:    root,
		sitter:  tree,
		ErrorCt: countErrors(root),
	}, nil
}

// Reparse re-parses source that has just been surgically edited or
// reprinted, returning a new Tree; it is identical to Parse.
func (p *Parser) Reparse(ctx context.Context, path string, source []byte) (*Tree, error) {
	return p.Parse(ctx, path, source)
}

func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	count := 0
	if node.Type() == "ERROR" || node.IsMissing() {
		count++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		count += countErrors(node.Child(i))
	}
	return count
}

// Text returns the exact source slice spanned by node.
func Text(source []byte, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// Snippet returns node's text, whitespace-collapsed to a single line for
// expression-level categories and preserved as-is for definition-level
// categories — per the query layer's contract (spec.md §4.3).
func Snippet(source []byte, node *sitter.Node, definitionLevel bool) string {
	text := Text(source, node)
	if definitionLevel {
		return text
	}
	return collapseWhitespace(text)
}
