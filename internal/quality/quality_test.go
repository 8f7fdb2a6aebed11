package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depmap/internal/lang"
)

func fn(name string, start, end int) lang.Symbol {
	return lang.Symbol{Name: name, Kind: lang.SymbolKindFunction, StartLine: start, EndLine: end}
}

func TestCheck_DocCoverage(t *testing.T) {
	src := []byte("// Add sums.\n" +
		"func Add() {}\n" +
		"func sub() {}\n" +
		"def greet():\n" +
		"    \"\"\"Say hi.\"\"\"\n" +
		"    pass\n")
	symbols := []lang.Symbol{fn("Add", 2, 2), fn("sub", 3, 3), fn("greet", 4, 6)}

	r := Check(src, symbols, Options{})

	assert.True(t, r.Structural)
	assert.Equal(t, 3, r.Symbols)
	assert.Equal(t, 2, r.Documented)
	assert.InDelta(t, 66.67, r.Coverage, 0.01)
	require.Len(t, r.MissingDocs, 1)
	assert.Equal(t, "sub", r.MissingDocs[0].Name)
	assert.Equal(t, 3, r.MissingDocs[0].Line)
	assert.Empty(t, r.LongFunctions)
}

func TestCheck_DocPrefixes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		want bool
	}{
		{"hash comment", "# helper\ndef f(): pass\n", 2, true},
		{"block comment", "/* helper */\nfunction f() {}\n", 2, true},
		{"javadoc tail", "/**\n * helper\n */\nvoid f() {}\n", 4, true},
		{"rust doc", "/// helper\nfn f() {}\n", 2, true},
		{"single quoted docstring", "def f():\n    '''helper'''\n", 1, true},
		{"blank line between", "// helper\n\nfunc f() {}\n", 3, false},
		{"first line without docstring", "def f():\n    pass\n", 1, false},
		{"line past end", "x = 1\n", 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, documented(splitLines(tt.src), tt.line))
		})
	}
}

func TestCheck_LongFunctions(t *testing.T) {
	symbols := []lang.Symbol{
		fn("big", 1, 61),
		fn("edge", 70, 120),
		{Name: "Huge", Kind: lang.SymbolKindClass, StartLine: 1, EndLine: 500},
	}

	r := Check(nil, symbols, Options{})
	require.Len(t, r.LongFunctions, 1)
	assert.Equal(t, "big", r.LongFunctions[0].Name)
	assert.Contains(t, r.LongFunctions[0].Message, "60 lines")
	assert.InDelta(t, 55.0, r.AverageFunctionLength, 0.001)

	r = Check(nil, symbols, Options{MaxFunctionLines: 10})
	assert.Len(t, r.LongFunctions, 2)
}

func TestCheck_CommentRatioFallback(t *testing.T) {
	src := []byte("# a\n# b\nx = 1\ny = 2\n")

	r := Check(src, nil, Options{Language: lang.LangPython})
	assert.False(t, r.Structural)
	assert.InDelta(t, 75.0, r.Coverage, 0.001)
	assert.Empty(t, r.MissingDocs)

	r = Check(src, nil, Options{Language: lang.LangGo})
	assert.Zero(t, r.Coverage)

	r = Check([]byte("// a\n"), nil, Options{Language: lang.LangGo})
	assert.InDelta(t, 100.0, r.Coverage, 0.001)
}

func TestCheck_EmptySource(t *testing.T) {
	r := Check(nil, nil, Options{})
	assert.False(t, r.Structural)
	assert.Zero(t, r.Coverage)
	assert.Zero(t, r.AverageFunctionLength)
	assert.Equal(t, 70, r.Score)
	assert.Equal(t, "B", r.Grade)
}

func TestCheck_AnalyzedGoSource(t *testing.T) {
	reg := lang.DefaultRegistry(nil)
	t.Cleanup(func() { _ = reg.Close() })

	src := []byte("package main\n\n" +
		"// Add sums.\n" +
		"func Add(a, b int) int { return a + b }\n\n" +
		"func sub(a, b int) int { return a - b }\n")
	a := lang.Analyze(src, reg.GrammarFor(".go"))

	r := Check(src, a.Symbols, Options{Language: lang.LangGo})
	assert.Equal(t, 2, r.Symbols)
	assert.InDelta(t, 50.0, r.Coverage, 0.001)
	require.Len(t, r.MissingDocs, 1)
	assert.Equal(t, "sub", r.MissingDocs[0].Name)
}

func TestScoreAndGrade(t *testing.T) {
	assert.Equal(t, 30, documentationScore(100))
	assert.Equal(t, 25, documentationScore(60))
	assert.Equal(t, 5, documentationScore(10))

	assert.Equal(t, 30, complexityScore([]byte("x = 1\n"), 1))
	assert.Equal(t, 10, complexityScore([]byte("if x: pass\n"), 1))

	assert.Equal(t, 40, maintainabilityScore(0, 10, 10))
	assert.Equal(t, 35, maintainabilityScore(2, 10, 10))
	assert.Equal(t, 20, maintainabilityScore(3, 10, 60))

	tests := []struct {
		score int
		want  string
	}{
		{100, "A+"}, {85, "A"}, {80, "A-"}, {76, "B+"}, {70, "B"},
		{65, "B-"}, {60, "C+"}, {55, "C"}, {50, "C-"}, {12, "D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, grade(tt.score), "score %d", tt.score)
	}
}
