package lang

import (
	"log/slog"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/depmap/internal/metrics"
)

// Definition describes one language before registration: the grammar, the
// file extensions it claims, its two capture queries, the node-kind table
// used to classify definitions, and the way it spells imports.
type Definition struct {
	ID          Language
	Extensions  []string
	Language    *tree_sitter.Language
	SymbolQuery string
	ImportQuery string
	Kinds       map[string]SymbolKind
	Imports     ImportConvention
}

// Grammar is a registered, immutable language. Compiled queries that failed
// to compile are nil and capture nothing.
type Grammar struct {
	ID         Language
	Extensions []string

	lang        *tree_sitter.Language
	symbolQuery *tree_sitter.Query
	importQuery *tree_sitter.Query
	kinds       map[string]SymbolKind
	imports     ImportConvention
	parsers     *parserPool
}

// Imports returns the grammar's import convention.
func (g *Grammar) Imports() ImportConvention {
	if g == nil || g.imports == nil {
		return noConvention{}
	}
	return g.imports
}

// SymbolQuery returns the compiled symbol query, or nil.
func (g *Grammar) SymbolQuery() *tree_sitter.Query {
	if g == nil {
		return nil
	}
	return g.symbolQuery
}

// ImportQuery returns the compiled import query, or nil.
func (g *Grammar) ImportQuery() *tree_sitter.Query {
	if g == nil {
		return nil
	}
	return g.importQuery
}

// KindOf maps a declaration node kind to a SymbolKind. Unknown kinds are
// variables.
func (g *Grammar) KindOf(nodeKind string) SymbolKind {
	if g != nil {
		if k, ok := g.kinds[nodeKind]; ok {
			return k
		}
	}
	return SymbolKindVariable
}

// Registry maps file extensions to grammars. It is built once by NewRegistry
// and never mutated afterwards, so it is safe to share between goroutines.
type Registry struct {
	grammars []*Grammar
	byExt    map[string]*Grammar
	byID     map[Language]*Grammar
}

// NewRegistry compiles and registers every definition. A query that fails to
// compile is logged once and treated as absent; the grammar itself stays
// registered. When two definitions claim the same extension the first wins.
func NewRegistry(logger *slog.Logger, defs ...Definition) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		byExt: make(map[string]*Grammar),
		byID:  make(map[Language]*Grammar),
	}

	for _, def := range defs {
		if def.Language == nil {
			logger.Error("grammar has no tree-sitter language", "language", def.ID)
			continue
		}
		if _, dup := r.byID[def.ID]; dup {
			logger.Warn("duplicate grammar definition ignored", "language", def.ID)
			continue
		}

		g := &Grammar{
			ID:      def.ID,
			lang:    def.Language,
			kinds:   def.Kinds,
			imports: def.Imports,
			parsers: newParserPool(def.Language),
		}
		g.symbolQuery = compileQuery(logger, def.ID, "symbols", def.Language, def.SymbolQuery)
		g.importQuery = compileQuery(logger, def.ID, "imports", def.Language, def.ImportQuery)

		for _, ext := range def.Extensions {
			ext = normalizeExt(ext)
			if ext == "" {
				continue
			}
			if owner, taken := r.byExt[ext]; taken {
				logger.Warn("extension already registered", "extension", ext, "owner", owner.ID, "language", def.ID)
				continue
			}
			r.byExt[ext] = g
			g.Extensions = append(g.Extensions, ext)
		}

		r.grammars = append(r.grammars, g)
		r.byID[def.ID] = g
	}
	return r
}

func compileQuery(logger *slog.Logger, id Language, name string, tsLang *tree_sitter.Language, source string) *tree_sitter.Query {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	q, qErr := tree_sitter.NewQuery(tsLang, source)
	if qErr != nil {
		logger.Error("query compile failed; query disabled", "language", id, "query", name, "error", qErr.Error())
		metrics.QueryCompileFailures.WithLabelValues(string(id), name).Inc()
		return nil
	}
	return q
}

// GrammarFor returns the grammar registered for ext (with or without the
// leading dot, any case), or nil.
func (r *Registry) GrammarFor(ext string) *Grammar {
	if r == nil {
		return nil
	}
	return r.byExt[normalizeExt(ext)]
}

// Grammar returns the grammar with the given identifier, or nil.
func (r *Registry) Grammar(id Language) *Grammar {
	if r == nil {
		return nil
	}
	return r.byID[id]
}

// Languages returns the registered language identifiers in registration order.
func (r *Registry) Languages() []Language {
	if r == nil {
		return nil
	}
	out := make([]Language, 0, len(r.grammars))
	for _, g := range r.grammars {
		out = append(out, g.ID)
	}
	return out
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Restrict returns a registry holding only the given languages. The returned
// registry shares compiled queries with r and must not outlive it.
func (r *Registry) Restrict(langs ...Language) *Registry {
	if r == nil || len(langs) == 0 {
		return r
	}
	keep := make(map[Language]bool, len(langs))
	for _, l := range langs {
		keep[l] = true
	}
	out := &Registry{
		byExt: make(map[string]*Grammar),
		byID:  make(map[Language]*Grammar),
	}
	for _, g := range r.grammars {
		if !keep[g.ID] {
			continue
		}
		out.grammars = append(out.grammars, g)
		out.byID[g.ID] = g
		for _, ext := range g.Extensions {
			out.byExt[ext] = g
		}
	}
	return out
}

// Close releases the compiled queries. Pooled parsers are left to the garbage
// collector.
func (r *Registry) Close() error {
	if r == nil {
		return nil
	}
	for _, g := range r.grammars {
		if g.symbolQuery != nil {
			g.symbolQuery.Close()
			g.symbolQuery = nil
		}
		if g.importQuery != nil {
			g.importQuery.Close()
			g.importQuery = nil
		}
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
