package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// rootClusterName names clusters whose members share no directory.
const rootClusterName = "(root)"

// ComputeClusters finds connected components in the file-to-file graph
// (IMPORTS edges only) and stores them as ClusterNodes.
//
// Algorithm:
//  1. Build an undirected adjacency list from IMPORTS edges among the given files.
//  2. Find connected components via BFS, visiting files and neighbors in path order.
//  3. For each component with >= 2 files, compute a cohesion score and store the cluster.
func ComputeClusters(ctx context.Context, store Store, files []FileNode) ([]ClusterNode, error) {
	paths := make([]string, 0, len(files))
	filePaths := make(map[string]bool, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
		filePaths[f.Path] = true
	}
	sort.Strings(paths)

	adj, err := buildAdjacency(ctx, store, paths)
	if err != nil {
		return nil, err
	}

	visited := make(map[string]bool, len(paths))
	used := make(map[string]int)
	var clusters []ClusterNode

	for _, p := range paths {
		if visited[p] {
			continue
		}
		component := bfsComponent(p, adj, visited)
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)

		name := longestCommonPrefix(component)
		if name == "" {
			name = rootClusterName
		}
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s#%d", name, n)
		}

		cluster := ClusterNode{
			Name:          name,
			CohesionScore: computeCohesion(component, adj, filePaths),
			Members:       component,
		}
		if err := store.AddCluster(ctx, cluster); err != nil {
			return nil, fmt.Errorf("add cluster %s: %w", name, err)
		}
		for _, member := range component {
			edge := Edge{SourceID: member, TargetID: name, Kind: EdgeKindBelongs}
			if err := store.AddEdge(ctx, edge); err != nil {
				return nil, fmt.Errorf("add cluster member %s: %w", member, err)
			}
		}
		clusters = append(clusters, cluster)
	}

	return clusters, nil
}

// buildAdjacency constructs a bidirectional adjacency list from IMPORTS edges
// using a single pass over all edges. Self-imports are ignored.
func buildAdjacency(ctx context.Context, store Store, paths []string) (map[string]map[string]bool, error) {
	adj := make(map[string]map[string]bool, len(paths))
	for _, p := range paths {
		adj[p] = make(map[string]bool)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	for _, e := range edges {
		if e.Kind != EdgeKindImports || e.SourceID == e.TargetID {
			continue
		}
		if adj[e.SourceID] != nil && adj[e.TargetID] != nil {
			adj[e.SourceID][e.TargetID] = true
			adj[e.TargetID][e.SourceID] = true
		}
	}
	return adj, nil
}

// bfsComponent performs BFS from start on the adjacency list and returns
// all reachable nodes. It marks visited nodes as it goes.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for _, neighbor := range setToSlice(adj[node]) {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return component
}

// computeCohesion calculates internal_edges / (internal_edges + external_edges)
// for a connected component. Internal edges connect two members; external edges
// connect a member to a non-member.
func computeCohesion(component []string, adj map[string]map[string]bool, allFiles map[string]bool) float64 {
	memberSet := make(map[string]bool, len(component))
	for _, m := range component {
		memberSet[m] = true
	}

	internalEdges := 0
	externalEdges := 0
	for _, m := range component {
		for neighbor := range adj[m] {
			if memberSet[neighbor] {
				// Count each undirected internal edge once.
				if m < neighbor {
					internalEdges++
				}
			} else if allFiles[neighbor] {
				externalEdges++
			}
		}
	}

	total := internalEdges + externalEdges
	if total == 0 {
		return 0
	}
	return float64(internalEdges) / float64(total)
}

// longestCommonPrefix finds the longest common directory prefix among a set
// of file paths, with a trailing slash. Returns "" if there is none.
func longestCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		return paths[0]
	}

	prefix := paths[0]
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			trimmed := strings.TrimRight(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1]
		}
	}

	// Ensure prefix ends at a directory boundary.
	if !strings.HasSuffix(prefix, "/") {
		idx := strings.LastIndex(prefix, "/")
		if idx < 0 {
			return ""
		}
		prefix = prefix[:idx+1]
	}
	return prefix
}
