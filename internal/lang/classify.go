package lang

import (
	"strings"
	"time"

	"github.com/dusk-indust/depmap/internal/metrics"
)

// ClassifySymbols turns name.definition captures into Symbols. The kind comes
// from the grammar's table entry for the parent node (the declaration the
// name belongs to); kinds missing from the table are variables. Lines and the
// one-line signature are taken from that parent node. Captures with other
// tags are ignored, and duplicates are kept.
func ClassifySymbols(caps []Capture, source []byte, g *Grammar) []Symbol {
	var symbols []Symbol
	for _, c := range caps {
		if c.Tag != TagDefinition {
			continue
		}
		name := c.Text(source)
		if name == "" {
			continue
		}

		node := c.Node
		decl := &node
		if parent := node.Parent(); parent != nil {
			decl = parent
		}

		start := int(decl.StartPosition().Row) + 1
		end := int(decl.EndPosition().Row) + 1
		if end < start {
			end = start
		}

		symbols = append(symbols, Symbol{
			Name:      name,
			Kind:      g.KindOf(decl.Kind()),
			StartLine: start,
			EndLine:   end,
			Signature: firstLine(source, decl.StartByte(), decl.EndByte()),
		})
	}
	return symbols
}

// firstLine returns source[start:end] cut at the first newline.
func firstLine(source []byte, start, end uint) string {
	if end > uint(len(source)) || start > end {
		return ""
	}
	text := string(source[start:end])
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimRight(text, " \t\r")
}

// ExtractImports turns import captures into ImportReferences: the captured
// text with one layer of surrounding quotes removed, otherwise untouched.
func ExtractImports(caps []Capture, source []byte) []ImportReference {
	var imports []ImportReference
	for _, c := range caps {
		if c.Tag != TagImport {
			continue
		}
		imports = append(imports, ImportReference{Raw: stripQuotes(c.Text(source))})
	}
	return imports
}

// stripQuotes removes a single leading and a single trailing quote character.
// Backticks count as quotes so Go raw-string import paths come out bare.
func stripQuotes(s string) string {
	if s != "" && isQuote(s[0]) {
		s = s[1:]
	}
	if s != "" && isQuote(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

func isQuote(b byte) bool {
	return b == '"' || b == '\'' || b == '`'
}

// Analyze parses source once and runs both queries over the tree. A nil
// grammar yields an empty Analysis.
func Analyze(source []byte, g *Grammar) Analysis {
	if g == nil {
		return Analysis{}
	}

	start := time.Now()
	tree := Parse(source, g)
	defer tree.Close()
	metrics.ParseDuration.WithLabelValues(string(g.ID)).Observe(time.Since(start).Seconds())

	return Analysis{
		Symbols:  ClassifySymbols(CaptureAll(tree, g.SymbolQuery()), source, g),
		Imports:  ExtractImports(CaptureAll(tree, g.ImportQuery()), source),
		Degraded: tree.Degraded(),
	}
}
