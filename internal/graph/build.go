package graph

import (
	"github.com/dusk-indust/depmap/internal/metrics"
)

// Link is one resolved import.
type Link struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Import     string  `json:"import"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
}

// DependencyGraph is the file-level import graph of a workspace.
//
// Adjacency has an entry for every file, in import order; duplicates and
// self-references are kept. Every target is a FileMap key. Links carries one
// entry per resolved import, and Unresolved lists, per file, the raw imports
// that produced no edge.
type DependencyGraph struct {
	Adjacency  map[string][]string `json:"adjacency"`
	Links      []Link              `json:"links"`
	Unresolved map[string][]string `json:"unresolved"`
}

// Build resolves every import of every file. Files are visited in key order
// and imports in source order, so identical inputs produce identical graphs.
// Build must only run once the FileMap is complete.
func Build(files *FileMap, resolver *Resolver) *DependencyGraph {
	dg := &DependencyGraph{
		Adjacency:  make(map[string][]string, files.Len()),
		Links:      []Link{},
		Unresolved: make(map[string][]string),
	}

	for _, rec := range files.Records() {
		targets := []string{}
		for _, imp := range rec.Imports {
			res, ok := resolver.Resolve(imp.Raw, rec.Path)
			if !ok {
				dg.Unresolved[rec.Path] = append(dg.Unresolved[rec.Path], imp.Raw)
				metrics.ImportsUnresolved.Inc()
				continue
			}
			targets = append(targets, res.Target)
			dg.Links = append(dg.Links, Link{
				Source:     rec.Path,
				Target:     res.Target,
				Import:     imp.Raw,
				Method:     res.Method,
				Confidence: res.Confidence,
			})
			metrics.ImportsResolved.WithLabelValues(string(res.Method)).Inc()
		}
		dg.Adjacency[rec.Path] = targets
	}

	metrics.GraphNodes.Set(float64(len(dg.Adjacency)))
	metrics.GraphEdges.Set(float64(len(dg.Links)))
	return dg
}

// EdgeCount returns the number of edges, duplicates included.
func (dg *DependencyGraph) EdgeCount() int {
	if dg == nil {
		return 0
	}
	return len(dg.Links)
}

// Dependents returns the files whose imports resolve to path, in key order
// without duplicates.
func (dg *DependencyGraph) Dependents(p string) []string {
	if dg == nil {
		return nil
	}
	set := make(map[string]bool)
	for _, l := range dg.Links {
		if l.Target == p {
			set[l.Source] = true
		}
	}
	return setToSlice(set)
}
