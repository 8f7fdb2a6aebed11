package graph

import (
	"errors"
	"fmt"
	"sort"

	dgraph "github.com/dominikbraun/graph"
)

// ErrCyclic is returned by TopologicalOrder when the import graph has a cycle.
var ErrCyclic = errors.New("import graph contains cycles")

// directed loads the adjacency into a dominikbraun graph. With reverse set,
// every edge points from the imported file to the importer.
func (dg *DependencyGraph) directed(reverse bool) (dgraph.Graph[string, string], error) {
	g := dgraph.New(dgraph.StringHash, dgraph.Directed())
	keys := dg.keys()
	for _, k := range keys {
		if err := g.AddVertex(k); err != nil && !errors.Is(err, dgraph.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("add vertex %s: %w", k, err)
		}
	}
	for _, src := range keys {
		for _, dst := range dg.Adjacency[src] {
			from, to := src, dst
			if reverse {
				from, to = dst, src
			}
			err := g.AddEdge(from, to)
			if err != nil && !errors.Is(err, dgraph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("add edge %s -> %s: %w", from, to, err)
			}
		}
	}
	return g, nil
}

func (dg *DependencyGraph) keys() []string {
	keys := make([]string, 0, len(dg.Adjacency))
	for k := range dg.Adjacency {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FindCycles returns every import cycle: strongly connected components with
// more than one file, plus files that import themselves. Members of each
// cycle are sorted, and cycles are ordered by their first member.
func FindCycles(dg *DependencyGraph) ([][]string, error) {
	if dg == nil {
		return nil, nil
	}
	g, err := dg.directed(false)
	if err != nil {
		return nil, err
	}
	components, err := dgraph.StronglyConnectedComponents(g)
	if err != nil {
		return nil, fmt.Errorf("strongly connected components: %w", err)
	}

	var cycles [][]string
	for _, c := range components {
		if len(c) == 1 && !dg.importsItself(c[0]) {
			continue
		}
		members := append([]string(nil), c...)
		sort.Strings(members)
		cycles = append(cycles, members)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}

func (dg *DependencyGraph) importsItself(p string) bool {
	for _, t := range dg.Adjacency[p] {
		if t == p {
			return true
		}
	}
	return false
}

// TopologicalOrder returns the files so that each appears after every file
// it imports. Ties are broken by path. A cyclic graph yields ErrCyclic.
func TopologicalOrder(dg *DependencyGraph) ([]string, error) {
	if dg == nil {
		return nil, nil
	}
	g, err := dg.directed(true)
	if err != nil {
		return nil, err
	}
	order, err := dgraph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclic, err)
	}
	return order, nil
}
