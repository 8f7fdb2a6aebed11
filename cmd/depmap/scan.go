package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/depmap/internal/export"
	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/lang"
	"github.com/dusk-indust/depmap/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a workspace and summarize its files and imports",
	Long:  "Walks the workspace, extracts symbols and imports from every supported file, and resolves imports into a dependency graph. --json writes the full graph.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	e, err := newEngine(targetArg(args), true)
	if err != nil {
		return err
	}
	defer e.Close()

	a, err := e.scanner.Analyze(cmd.Context(), e.root, e.resolverOpts...)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	if flagJSON {
		return export.JSON(cmd.OutOrStdout(), a.Files, a.Graph)
	}
	writeScanSummary(cmd.OutOrStdout(), a)
	return nil
}

type languageTotals struct {
	files, symbols, imports int
}

func writeScanSummary(w io.Writer, a *scan.Analysis) {
	totals := make(map[lang.Language]*languageTotals)
	for _, rec := range a.Files.Records() {
		t := totals[rec.Language]
		if t == nil {
			t = &languageTotals{}
			totals[rec.Language] = t
		}
		t.files++
		t.symbols += len(rec.Symbols)
		t.imports += len(rec.Imports)
	}
	langs := make([]lang.Language, 0, len(totals))
	for l := range totals {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tFILES\tSYMBOLS\tIMPORTS")
	for _, l := range langs {
		t := totals[l]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", l, t.files, t.symbols, t.imports)
	}
	tw.Flush()

	unresolved := 0
	for _, raws := range a.Graph.Unresolved {
		unresolved += len(raws)
	}
	fmt.Fprintf(w, "\n%d files, %d edges, %d unresolved imports, %d skipped files in %s\n",
		a.Files.Len(), a.Graph.EdgeCount(), unresolved, len(a.Skipped), a.Duration.Round(time.Millisecond))
	for _, s := range a.Skipped {
		fmt.Fprintf(w, "  skipped %s (%s)\n", s.Path, s.Reason)
	}
	writeMethodCounts(w, a.Graph)
}

func writeMethodCounts(w io.Writer, dg *graph.DependencyGraph) {
	counts := make(map[graph.Method]int)
	for _, l := range dg.Links {
		counts[l.Method]++
	}
	for _, m := range []graph.Method{graph.MethodExact, graph.MethodModule, graph.MethodRelative, graph.MethodFuzzy} {
		if counts[m] > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", m, counts[m])
		}
	}
}
