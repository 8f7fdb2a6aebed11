package mcptools

import "github.com/dusk-indust/depmap/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	RepoPath     string   `json:"repoPath" jsonschema:"the absolute path to the repository to index"`
	Languages    []string `json:"languages,omitempty" jsonschema:"languages to index (default: all registered). Values: go, python, rust, javascript, typescript, tsx, java"`
	ExcludeDirs  []string `json:"excludeDirs,omitempty" jsonschema:"directory name globs to exclude from indexing (e.g. vendor, node_modules)"`
	ExcludeFiles []string `json:"excludeFiles,omitempty" jsonschema:"file name globs to exclude from indexing (e.g. *_test.go)"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Stats      graph.GraphStats `json:"stats"`
	Unresolved int              `json:"unresolved"` // imports that produced no edge
	Skipped    int              `json:"skipped"`    // files that could not be read or decoded
	Cycles     int              `json:"cycles"`
}

// QuerySymbolsInput is the input for the query_symbols MCP tool.
type QuerySymbolsInput struct {
	Query string `json:"query" jsonschema:"search query for symbol names (substring match)"`
	Kind  string `json:"kind,omitempty" jsonschema:"filter by symbol kind: function, class, variable"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QuerySymbolsOutput is the result of the query_symbols MCP tool.
type QuerySymbolsOutput struct {
	Symbols []graph.SymbolNode `json:"symbols"`
	Total   int                `json:"total"`
}

// GetDependenciesInput is the input for the get_dependencies MCP tool.
type GetDependenciesInput struct {
	NodeID    string `json:"nodeId" jsonschema:"workspace-relative file path"`
	Direction string `json:"direction,omitempty" jsonschema:"upstream (what it imports) or downstream (what imports it). Default: downstream"`
	MaxDepth  int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies MCP tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact MCP tool.
type AssessImpactInput struct {
	ChangedFiles []string `json:"changedFiles" jsonschema:"list of file paths that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact MCP tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct{}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []graph.ClusterNode `json:"clusters"`
}

// FindCyclesInput is the input for the find_cycles MCP tool.
type FindCyclesInput struct{}

// FindCyclesOutput is the result of the find_cycles MCP tool. Order lists
// files dependencies-first and is only set when the graph is acyclic.
type FindCyclesOutput struct {
	Cycles [][]string `json:"cycles"`
	Order  []string   `json:"order,omitempty"`
}
