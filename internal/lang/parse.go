package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree is a parse result over one source buffer. It is owned by the caller of
// Parse and must be closed; it is never shared between files.
type Tree struct {
	grammar *Grammar
	source  []byte
	tree    *tree_sitter.Tree
}

// Parse builds a syntax tree for source using g. Parsing never fails:
// malformed input produces a tree with ERROR or MISSING nodes. A nil grammar,
// or a grammar whose parser cannot be created, yields a nil *Tree, which every
// downstream function treats as empty.
func Parse(source []byte, g *Grammar) *Tree {
	if g == nil || g.parsers == nil {
		return nil
	}
	sp := g.parsers.get()
	if sp == nil {
		return nil
	}
	defer g.parsers.put(sp)

	t := sp.Parse(source, nil)
	if t == nil {
		return nil
	}
	return &Tree{grammar: g, source: source, tree: t}
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *tree_sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// Source returns the buffer the tree was parsed from.
func (t *Tree) Source() []byte {
	if t == nil {
		return nil
	}
	return t.source
}

// Grammar returns the grammar the tree was parsed with.
func (t *Tree) Grammar() *Grammar {
	if t == nil {
		return nil
	}
	return t.grammar
}

// Degraded reports whether the parse recovered from syntax errors.
func (t *Tree) Degraded() bool {
	root := t.Root()
	return root != nil && root.HasError()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
}
