package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Capture is one (tag, node) pair produced by evaluating a query. Node is only
// valid while the Tree it came from is open.
type Capture struct {
	Tag       string
	Node      tree_sitter.Node
	StartByte uint
	EndByte   uint
	StartLine int // 1-based
	EndLine   int // 1-based
}

// Text returns the source text spanned by the captured node.
func (c Capture) Text(source []byte) string {
	if c.EndByte > uint(len(source)) || c.StartByte > c.EndByte {
		return ""
	}
	return string(source[c.StartByte:c.EndByte])
}

// CaptureAll evaluates query against the whole tree. A query is an ordered set
// of alternative patterns; the captures of every match are concatenated in
// match order. Overlapping alternatives produce duplicate captures, which are
// returned as-is. A nil tree or nil query yields nil.
func CaptureAll(t *Tree, query *tree_sitter.Query) []Capture {
	root := t.Root()
	if root == nil || query == nil {
		return nil
	}

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	names := query.CaptureNames()
	var out []Capture

	matches := cursor.Matches(query, root, t.source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, c := range match.Captures {
			if int(c.Index) >= len(names) {
				continue
			}
			node := c.Node
			out = append(out, Capture{
				Tag:       names[c.Index],
				Node:      node,
				StartByte: node.StartByte(),
				EndByte:   node.EndByte(),
				StartLine: int(node.StartPosition().Row) + 1,
				EndLine:   int(node.EndPosition().Row) + 1,
			})
		}
	}
	return out
}
