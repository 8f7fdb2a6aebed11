package scan

import (
	"context"

	"github.com/dusk-indust/depmap/internal/graph"
)

// Analysis is a scanned workspace together with its dependency graph.
type Analysis struct {
	*Result
	Workspace *graph.Workspace
	Graph     *graph.DependencyGraph
}

// Analyze scans root, reads its manifests, and builds the dependency graph.
// Resolution starts only after every file has been scanned.
func (s *Scanner) Analyze(ctx context.Context, root string, opts ...graph.ResolverOption) (*Analysis, error) {
	res, err := s.Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	ws := graph.DetectWorkspace(res.Root)
	opts = append([]graph.ResolverOption{graph.WithWorkspace(ws)}, opts...)
	resolver := graph.NewResolver(res.Files, s.registry, opts...)
	dg := graph.Build(res.Files, resolver)

	s.logger.Debug("dependency graph built",
		"files", len(dg.Adjacency),
		"edges", dg.EdgeCount(),
		"unresolved", len(dg.Unresolved),
	)
	return &Analysis{Result: res, Workspace: ws, Graph: dg}, nil
}
