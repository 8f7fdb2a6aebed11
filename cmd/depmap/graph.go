package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/depmap/internal/export"
	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/scan"
)

var (
	flagCycles  bool
	flagMermaid bool
	flagOrder   bool
	flagClasses bool
)

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Print the file dependency graph",
	Long:  "Prints one line per resolved import. --cycles lists import cycles, --order prints files dependencies-first, --mermaid renders a Mermaid diagram grouped by cluster, and --classes renders a Mermaid class diagram.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().BoolVar(&flagCycles, "cycles", false, "list import cycles")
	graphCmd.Flags().BoolVar(&flagMermaid, "mermaid", false, "render a Mermaid graph TD diagram")
	graphCmd.Flags().BoolVar(&flagOrder, "order", false, "print files so each follows the files it imports")
	graphCmd.Flags().BoolVar(&flagClasses, "classes", false, "render a Mermaid classDiagram of classes, methods, and inheritance")
	graphCmd.MarkFlagsMutuallyExclusive("cycles", "mermaid", "order", "classes")
}

func runGraph(cmd *cobra.Command, args []string) error {
	e, err := newEngine(targetArg(args), true)
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := e.scanner.Analyze(cmd.Context(), e.root, e.resolverOpts...)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}
	w := cmd.OutOrStdout()

	switch {
	case flagCycles:
		return writeCycles(w, a.Graph)
	case flagOrder:
		return writeOrder(w, a.Graph)
	case flagMermaid:
		return writeMermaid(cmd, w, a)
	case flagClasses:
		diagram := export.ClassDiagram(a.Files.Records())
		if diagram == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "No classes found.")
			return nil
		}
		_, err := io.WriteString(w, diagram)
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.Graph)
	}
	for _, l := range a.Graph.Links {
		fmt.Fprintf(w, "%s -> %s\t(%s %q)\n", l.Source, l.Target, l.Method, l.Import)
	}
	return nil
}

func writeCycles(w io.Writer, dg *graph.DependencyGraph) error {
	cycles, err := graph.FindCycles(dg)
	if err != nil {
		return err
	}
	if flagJSON {
		if cycles == nil {
			cycles = [][]string{}
		}
		return json.NewEncoder(w).Encode(cycles)
	}
	if len(cycles) == 0 {
		fmt.Fprintln(w, "No import cycles.")
		return nil
	}
	for i, c := range cycles {
		fmt.Fprintf(w, "cycle %d:\n", i+1)
		for _, member := range c {
			fmt.Fprintf(w, "  %s\n", member)
		}
	}
	return nil
}

func writeOrder(w io.Writer, dg *graph.DependencyGraph) error {
	order, err := graph.TopologicalOrder(dg)
	if errors.Is(err, graph.ErrCyclic) {
		return fmt.Errorf("%w; run 'depmap graph --cycles' to list them", err)
	}
	if err != nil {
		return err
	}
	if flagJSON {
		return json.NewEncoder(w).Encode(order)
	}
	for _, p := range order {
		fmt.Fprintln(w, p)
	}
	return nil
}

// writeMermaid loads the graph into a MemStore to compute clusters, then
// renders them as subgraphs.
func writeMermaid(cmd *cobra.Command, w io.Writer, a *scan.Analysis) error {
	ctx := cmd.Context()
	store := graph.NewMemStore()
	defer store.Close()

	if err := graph.Load(ctx, store, a.Files, a.Graph); err != nil {
		return err
	}
	clusters, err := graph.ComputeClusters(ctx, store, graph.FileNodes(a.Files))
	if err != nil {
		return err
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Name < clusters[j].Name })
	_, err = io.WriteString(w, export.Mermaid(a.Graph, clusters))
	return err
}
