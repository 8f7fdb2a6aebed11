package lang

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// parserPool recycles tree-sitter parsers for a single grammar so that
// scanner workers can parse concurrently without allocating a parser per file.
//
// Concurrency: safe for use by multiple goroutines.
type parserPool struct {
	lang *tree_sitter.Language
	pool sync.Pool
}

func newParserPool(lang *tree_sitter.Language) *parserPool {
	p := &parserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := tree_sitter.NewParser()
			if err := sp.SetLanguage(lang); err != nil {
				sp.Close()
				return nil
			}
			return sp
		},
	}
	return p
}

// get returns a parser configured for the pool's grammar, or nil when the
// grammar cannot be loaded (ABI mismatch).
func (p *parserPool) get() *tree_sitter.Parser {
	sp, _ := p.pool.Get().(*tree_sitter.Parser)
	return sp
}

// put resets sp and returns it to the pool. Callers must not use sp afterwards.
func (p *parserPool) put(sp *tree_sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()
	p.pool.Put(sp)
}
