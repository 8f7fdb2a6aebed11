package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dusk-indust/depmap/internal/lang"
)

func sig(name string, kind lang.SymbolKind, signature string) lang.Symbol {
	return lang.Symbol{Name: name, Kind: kind, Signature: signature}
}

func TestBreakingChanges_Python(t *testing.T) {
	old := []lang.Symbol{
		sig("Foo", lang.SymbolKindClass, "class Foo:"),
		sig("bar", lang.SymbolKindFunction, "def bar(x):"),
		sig("_private", lang.SymbolKindFunction, "def _private():"),
		sig("baz", lang.SymbolKindFunction, "def baz():"),
	}
	next := []lang.Symbol{
		sig("Foo", lang.SymbolKindClass, "class Foo(Base):"),
		sig("bar", lang.SymbolKindFunction, "def bar(x):"),
		sig("added", lang.SymbolKindFunction, "def added():"),
	}

	got := BreakingChanges(old, next, lang.LangPython)
	assert.Equal(t, []Change{
		{Kind: ChangeSignature, Symbol: "Foo", SymbolKind: lang.SymbolKindClass, Old: "class Foo:", New: "class Foo(Base):"},
		{Kind: ChangeRemoved, Symbol: "baz", SymbolKind: lang.SymbolKindFunction, Old: "def baz():"},
	}, got)
}

func TestBreakingChanges_GoVisibility(t *testing.T) {
	old := []lang.Symbol{
		sig("Handle", lang.SymbolKindFunction, "func Handle()"),
		sig("helper", lang.SymbolKindFunction, "func helper()"),
	}

	got := BreakingChanges(old, nil, lang.LangGo)
	assert.Equal(t, []Change{
		{Kind: ChangeRemoved, Symbol: "Handle", SymbolKind: lang.SymbolKindFunction, Old: "func Handle()"},
	}, got)
}

func TestBreakingChanges_SameNamedMethods(t *testing.T) {
	method := func(signature string) lang.Symbol { return sig("run", lang.SymbolKindFunction, signature) }

	tests := []struct {
		name string
		prev []lang.Symbol
		next []lang.Symbol
		want []Change
	}{
		{
			name: "second method removed",
			prev: []lang.Symbol{method("def run(self):"), method("def run(self):")},
			next: []lang.Symbol{method("def run(self):")},
			want: []Change{{Kind: ChangeRemoved, Symbol: "run", SymbolKind: lang.SymbolKindFunction, Old: "def run(self):"}},
		},
		{
			name: "first method removed",
			prev: []lang.Symbol{method("def run(self, a):"), method("def run(self):")},
			next: []lang.Symbol{method("def run(self):")},
			want: []Change{
				{Kind: ChangeSignature, Symbol: "run", SymbolKind: lang.SymbolKindFunction, Old: "def run(self, a):", New: "def run(self):"},
				{Kind: ChangeRemoved, Symbol: "run", SymbolKind: lang.SymbolKindFunction, Old: "def run(self):"},
			},
		},
		{
			name: "kinds never pair",
			prev: []lang.Symbol{sig("Run", lang.SymbolKindClass, "class Run:")},
			next: []lang.Symbol{sig("Run", lang.SymbolKindFunction, "def Run():")},
			want: []Change{{Kind: ChangeRemoved, Symbol: "Run", SymbolKind: lang.SymbolKindClass, Old: "class Run:"}},
		},
		{
			name: "method added",
			prev: []lang.Symbol{method("def run(self):")},
			next: []lang.Symbol{method("def run(self):"), method("def run(self):")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BreakingChanges(tt.prev, tt.next, lang.LangPython))
		})
	}
}

func TestBreakingChanges_NoChanges(t *testing.T) {
	symbols := []lang.Symbol{sig("run", lang.SymbolKindFunction, "fn run()")}
	assert.Empty(t, BreakingChanges(symbols, symbols, lang.LangRust))
	assert.Empty(t, BreakingChanges(nil, nil, lang.LangRust))
}

func TestExported(t *testing.T) {
	tests := []struct {
		name string
		l    lang.Language
		want bool
	}{
		{"Handler", lang.LangGo, true},
		{"handler", lang.LangGo, false},
		{"Édition", lang.LangGo, true},
		{"_helper", lang.LangPython, false},
		{"helper", lang.LangPython, true},
		{"#secret", lang.LangJavaScript, false},
		{"render", lang.LangTypeScript, true},
		{"", lang.LangJava, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Exported(tt.name, tt.l), "%s (%s)", tt.name, tt.l)
	}
}
