package lang

// --- Enums ---

// Language identifies a programming language grammar.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangJava       Language = "java"
)

// SymbolKind classifies extracted declarations.
type SymbolKind string

const (
	SymbolKindFunction SymbolKind = "function"
	SymbolKindClass    SymbolKind = "class"
	SymbolKindVariable SymbolKind = "variable"
)

// Capture tags understood by the classifier and the import extractor.
const (
	TagDefinition = "name.definition"
	TagImport     = "import"
)

// --- Models ---

// Symbol is a named declaration found in a source file.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	StartLine int        `json:"startLine"`
	EndLine   int        `json:"endLine"`
	Signature string     `json:"signature"`
}

// ImportReference is a module or path reference exactly as written, minus
// one layer of surrounding quotes.
type ImportReference struct {
	Raw string `json:"raw"`
}

// Analysis holds everything extracted from a single source buffer.
type Analysis struct {
	Symbols []Symbol          `json:"symbols"`
	Imports []ImportReference `json:"imports"`
	// Degraded is true when the parse tree contains ERROR or MISSING nodes.
	Degraded bool `json:"degraded,omitempty"`
}
