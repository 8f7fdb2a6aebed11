package lang

import (
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// DefaultRegistry returns a registry holding every built-in language.
func DefaultRegistry(logger *slog.Logger) *Registry {
	return NewRegistry(logger, Definitions()...)
}

// Definitions returns the built-in language definitions in registration order.
func Definitions() []Definition {
	return []Definition{
		pythonDefinition(),
		javascriptDefinition(),
		typescriptDefinition(),
		tsxDefinition(),
		goDefinition(),
		rustDefinition(),
		javaDefinition(),
	}
}

// --- Python ---

const pythonSymbols = `
(function_definition name: (identifier) @name.definition)
(class_definition name: (identifier) @name.definition)
(module (expression_statement (assignment left: (identifier) @name.definition)))
`

const pythonImports = `
(import_statement name: (dotted_name) @import)
(import_statement name: (aliased_import name: (dotted_name) @import))
(import_from_statement module_name: (dotted_name) @import)
(import_from_statement module_name: (relative_import) @import)
`

func pythonDefinition() Definition {
	return Definition{
		ID:          LangPython,
		Extensions:  []string{".py"},
		Language:    tree_sitter.NewLanguage(tree_sitter_python.Language()),
		SymbolQuery: pythonSymbols,
		ImportQuery: pythonImports,
		Kinds: map[string]SymbolKind{
			"function_definition": SymbolKindFunction,
			"class_definition":    SymbolKindClass,
		},
		Imports: dottedConvention{
			extensions: []string{".py", "/__init__.py"},
			roots:      []string{"", "src/"},
			pyRelative: true,
		},
	}
}

// --- JavaScript / TypeScript ---

var scriptRelativeExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

func scriptConvention() ImportConvention {
	return dottedConvention{
		extensions: []string{".ts", ".tsx", ".js", ".jsx"},
		roots:      []string{""},
		relative:   true,
		relExts:    scriptRelativeExtensions,
		packages:   true,
	}
}

const scriptImports = `
(import_statement source: (string (string_fragment) @import))
(export_statement source: (string (string_fragment) @import))
(call_expression
  function: (identifier) @_callee
  arguments: (arguments . (string (string_fragment) @import))
  (#eq? @_callee "require"))
(call_expression
  function: (import)
  arguments: (arguments . (string (string_fragment) @import)))
`

const javascriptSymbols = `
(function_declaration name: (identifier) @name.definition)
(generator_function_declaration name: (identifier) @name.definition)
(class_declaration name: (identifier) @name.definition)
(method_definition name: (property_identifier) @name.definition)
(program (lexical_declaration (variable_declarator name: (identifier) @name.definition)))
(program (variable_declaration (variable_declarator name: (identifier) @name.definition)))
(export_statement (lexical_declaration (variable_declarator name: (identifier) @name.definition)))
`

var scriptKinds = map[string]SymbolKind{
	"function_declaration":           SymbolKindFunction,
	"generator_function_declaration": SymbolKindFunction,
	"method_definition":              SymbolKindFunction,
	"class_declaration":              SymbolKindClass,
}

func javascriptDefinition() Definition {
	return Definition{
		ID:          LangJavaScript,
		Extensions:  []string{".js", ".jsx", ".mjs", ".cjs"},
		Language:    tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		SymbolQuery: javascriptSymbols,
		ImportQuery: scriptImports,
		Kinds:       scriptKinds,
		Imports:     scriptConvention(),
	}
}

const typescriptSymbols = `
(function_declaration name: (identifier) @name.definition)
(generator_function_declaration name: (identifier) @name.definition)
(class_declaration name: (type_identifier) @name.definition)
(abstract_class_declaration name: (type_identifier) @name.definition)
(interface_declaration name: (type_identifier) @name.definition)
(type_alias_declaration name: (type_identifier) @name.definition)
(enum_declaration name: (identifier) @name.definition)
(method_definition name: (property_identifier) @name.definition)
(program (lexical_declaration (variable_declarator name: (identifier) @name.definition)))
(program (variable_declaration (variable_declarator name: (identifier) @name.definition)))
(export_statement (lexical_declaration (variable_declarator name: (identifier) @name.definition)))
`

func typescriptKinds() map[string]SymbolKind {
	kinds := map[string]SymbolKind{
		"abstract_class_declaration": SymbolKindClass,
		"interface_declaration":      SymbolKindClass,
		"enum_declaration":           SymbolKindClass,
		"type_alias_declaration":     SymbolKindClass,
	}
	for k, v := range scriptKinds {
		kinds[k] = v
	}
	return kinds
}

func typescriptDefinition() Definition {
	return Definition{
		ID:          LangTypeScript,
		Extensions:  []string{".ts", ".mts", ".cts"},
		Language:    tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		SymbolQuery: typescriptSymbols,
		ImportQuery: scriptImports,
		Kinds:       typescriptKinds(),
		Imports:     scriptConvention(),
	}
}

func tsxDefinition() Definition {
	return Definition{
		ID:          LangTSX,
		Extensions:  []string{".tsx"},
		Language:    tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		SymbolQuery: typescriptSymbols,
		ImportQuery: scriptImports,
		Kinds:       typescriptKinds(),
		Imports:     scriptConvention(),
	}
}

// --- Go ---

const goSymbols = `
(function_declaration name: (identifier) @name.definition)
(method_declaration name: (field_identifier) @name.definition)
(type_declaration (type_spec name: (type_identifier) @name.definition))
(type_declaration (type_alias name: (type_identifier) @name.definition))
(source_file (const_declaration (const_spec name: (identifier) @name.definition)))
(source_file (var_declaration (var_spec name: (identifier) @name.definition)))
`

const goImports = `
(import_spec path: (_) @import)
`

func goDefinition() Definition {
	return Definition{
		ID:          LangGo,
		Extensions:  []string{".go"},
		Language:    tree_sitter.NewLanguage(tree_sitter_go.Language()),
		SymbolQuery: goSymbols,
		ImportQuery: goImports,
		Kinds: map[string]SymbolKind{
			"function_declaration": SymbolKindFunction,
			"method_declaration":   SymbolKindFunction,
			"type_spec":            SymbolKindClass,
			"type_alias":           SymbolKindClass,
		},
		Imports: goConvention{},
	}
}

// --- Rust ---

const rustSymbols = `
(function_item name: (identifier) @name.definition)
(struct_item name: (type_identifier) @name.definition)
(enum_item name: (type_identifier) @name.definition)
(union_item name: (type_identifier) @name.definition)
(trait_item name: (type_identifier) @name.definition)
(type_item name: (type_identifier) @name.definition)
(const_item name: (identifier) @name.definition)
(static_item name: (identifier) @name.definition)
`

const rustImports = `
(use_declaration argument: (_) @import)
(extern_crate_declaration name: (identifier) @import)
`

func rustDefinition() Definition {
	return Definition{
		ID:          LangRust,
		Extensions:  []string{".rs"},
		Language:    tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		SymbolQuery: rustSymbols,
		ImportQuery: rustImports,
		Kinds: map[string]SymbolKind{
			"function_item": SymbolKindFunction,
			"struct_item":   SymbolKindClass,
			"enum_item":     SymbolKindClass,
			"union_item":    SymbolKindClass,
			"trait_item":    SymbolKindClass,
			"type_item":     SymbolKindClass,
		},
		Imports: rustConvention{},
	}
}

// --- Java ---

const javaSymbols = `
(method_declaration name: (identifier) @name.definition)
(constructor_declaration name: (identifier) @name.definition)
(class_declaration name: (identifier) @name.definition)
(interface_declaration name: (identifier) @name.definition)
(enum_declaration name: (identifier) @name.definition)
(record_declaration name: (identifier) @name.definition)
`

const javaImports = `
(import_declaration (scoped_identifier) @import)
(import_declaration (identifier) @import)
`

func javaDefinition() Definition {
	return Definition{
		ID:          LangJava,
		Extensions:  []string{".java"},
		Language:    tree_sitter.NewLanguage(tree_sitter_java.Language()),
		SymbolQuery: javaSymbols,
		ImportQuery: javaImports,
		Kinds: map[string]SymbolKind{
			"method_declaration":      SymbolKindFunction,
			"constructor_declaration": SymbolKindFunction,
			"class_declaration":       SymbolKindClass,
			"interface_declaration":   SymbolKindClass,
			"enum_declaration":        SymbolKindClass,
			"record_declaration":      SymbolKindClass,
		},
		Imports: dottedConvention{
			extensions: []string{".java"},
			roots:      []string{"", "src/main/java/", "src/"},
			trim:       true,
		},
	}
}
