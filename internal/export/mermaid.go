package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/depmap/internal/graph"
)

// Mermaid produces a Mermaid graph TD diagram. Files are grouped by cluster;
// resolved imports become arrows, one per distinct file pair.
func Mermaid(dg *graph.DependencyGraph, clusters []graph.ClusterNode) string {
	var paths []string
	if dg != nil {
		for p := range dg.Adjacency {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	// Node IDs follow path order so output is stable.
	nodeIDs := make(map[string]string, len(paths))
	for i, p := range paths {
		nodeIDs[p] = fmt.Sprintf("N%d", i)
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	clustered := make(map[string]bool)
	for i, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		members := make([]string, 0, len(c.Members))
		for _, m := range c.Members {
			if _, ok := nodeIDs[m]; ok {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			continue
		}
		sort.Strings(members)

		fmt.Fprintf(&sb, "  subgraph C%d[\"%.40s\"]\n", i, escape(c.Name))
		for _, m := range members {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeIDs[m], escape(shortPath(m)))
			clustered[m] = true
		}
		sb.WriteString("  end\n")
	}

	for _, p := range paths {
		if !clustered[p] {
			fmt.Fprintf(&sb, "  %s[\"%s\"]\n", nodeIDs[p], escape(shortPath(p)))
		}
	}

	for _, p := range paths {
		seen := make(map[string]bool)
		for _, target := range dg.Adjacency[p] {
			if seen[target] {
				continue
			}
			seen[target] = true
			fmt.Fprintf(&sb, "  %s --> %s\n", nodeIDs[p], nodeIDs[target])
		}
	}
	return sb.String()
}

// shortPath returns the last 2 path segments for readability.
func shortPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return p
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
