package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/lang"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Files      []FileExport        `json:"files"`
	Adjacency  map[string][]string `json:"adjacency"`
	Links      []graph.Link        `json:"links"`
	Unresolved map[string][]string `json:"unresolved"`
	Stats      ExportStats         `json:"stats"`
}

// FileExport describes one analyzed file.
type FileExport struct {
	Path     string        `json:"path"`
	Language lang.Language `json:"language"`
	Symbols  []lang.Symbol `json:"symbols"`
	Imports  []string      `json:"imports"`
	Degraded bool          `json:"degraded,omitempty"`
}

// ExportStats summarizes the export.
type ExportStats struct {
	Files      int `json:"files"`
	Symbols    int `json:"symbols"`
	Edges      int `json:"edges"`
	Unresolved int `json:"unresolved"`
}

// BuildExport assembles the export from a FileMap and its graph. Files appear
// in path order; encoding/json sorts the map keys, so identical inputs give
// identical bytes.
func BuildExport(files *graph.FileMap, dg *graph.DependencyGraph) *GraphExport {
	out := &GraphExport{
		Files:      make([]FileExport, 0, files.Len()),
		Adjacency:  map[string][]string{},
		Links:      []graph.Link{},
		Unresolved: map[string][]string{},
	}
	for _, rec := range files.Records() {
		imports := make([]string, 0, len(rec.Imports))
		for _, imp := range rec.Imports {
			imports = append(imports, imp.Raw)
		}
		symbols := rec.Symbols
		if symbols == nil {
			symbols = []lang.Symbol{}
		}
		out.Files = append(out.Files, FileExport{
			Path:     rec.Path,
			Language: rec.Language,
			Symbols:  symbols,
			Imports:  imports,
			Degraded: rec.Degraded,
		})
		out.Stats.Symbols += len(rec.Symbols)
	}
	out.Stats.Files = len(out.Files)

	if dg != nil {
		out.Adjacency = dg.Adjacency
		out.Links = dg.Links
		out.Unresolved = dg.Unresolved
		for _, raws := range dg.Unresolved {
			out.Stats.Unresolved += len(raws)
		}
	}
	out.Stats.Edges = len(out.Links)
	return out
}

// JSON writes the indented export to w.
func JSON(w io.Writer, files *graph.FileMap, dg *graph.DependencyGraph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildExport(files, dg)); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}
