package graph

import "github.com/dusk-indust/depmap/internal/lang"

// --- Enums ---

// EdgeKind classifies relationships between stored nodes.
type EdgeKind string

const (
	EdgeKindImports EdgeKind = "IMPORTS"
	EdgeKindBelongs EdgeKind = "BELONGS"
)

// Method records which resolution step produced an edge.
type Method string

const (
	MethodExact    Method = "exact"
	MethodModule   Method = "module"
	MethodRelative Method = "relative"
	MethodFuzzy    Method = "fuzzy"
)

// Confidence returns how much the resolution step is trusted, from 0 to 1.
func (m Method) Confidence() float64 {
	switch m {
	case MethodExact:
		return 1.0
	case MethodModule, MethodRelative:
		return 0.9
	case MethodFuzzy:
		return 0.25
	default:
		return 0
	}
}

// --- Stored models ---

// FileNode represents a source file in the stored graph.
type FileNode struct {
	Path     string        `json:"path"`
	Language lang.Language `json:"language"`
	Symbols  int           `json:"symbols"`
	Imports  int           `json:"imports"`
}

// SymbolNode represents a declaration within a file.
type SymbolNode struct {
	Name      string          `json:"name"`
	Kind      lang.SymbolKind `json:"kind"`
	FilePath  string          `json:"filePath"`
	StartLine int             `json:"startLine"`
	EndLine   int             `json:"endLine"`
	Signature string          `json:"signature"`
}

// ClusterNode represents a group of files connected by imports.
type ClusterNode struct {
	Name          string   `json:"name"`
	CohesionScore float64  `json:"cohesionScore"`
	Members       []string `json:"members"` // file paths
}

// Edge represents a relationship between two nodes. Import and Method are set
// on IMPORTS edges only.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
	Import   string   `json:"import,omitempty"`
	Method   Method   `json:"method,omitempty"`
}

// GraphStats summarizes a stored graph.
type GraphStats struct {
	FileCount    int `json:"fileCount"`
	SymbolCount  int `json:"symbolCount"`
	ClusterCount int `json:"clusterCount"`
	EdgeCount    int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of files forming an import path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // file paths in order
	Depth int      `json:"depth"`
}

// ImpactResult describes the blast radius of changing a set of files.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files that import changed files
	TransitivelyAffected []string `json:"transitivelyAffected"` // full importer closure
	RiskScore            float64  `json:"riskScore"`            // 0.0-1.0, based on fan-in
}
