package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/depmap/internal/lang"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List the symbols and imports of one source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

// fileAnalysis is the JSON shape of one analyzed file.
type fileAnalysis struct {
	Path     string        `json:"path"`
	Language lang.Language `json:"language"`
	lang.Analysis
}

func runSymbols(cmd *cobra.Command, args []string) error {
	registry := lang.DefaultRegistry(slog.Default())
	defer registry.Close()

	fa, err := analyzeFile(registry, args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fa)
	}
	writeSymbols(w, fa)
	return nil
}

// analyzeFile reads and analyzes a single file with the grammar registered
// for its extension.
func analyzeFile(registry *lang.Registry, path string) (*fileAnalysis, error) {
	g := registry.GrammarFor(filepath.Ext(path))
	if g == nil {
		return nil, fmt.Errorf("no grammar registered for %s (supported: %v)", path, registry.Extensions())
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	a := lang.Analyze(src, g)
	if a.Degraded {
		slog.Warn("parse tree contains errors; results may be partial", "path", path)
	}
	return &fileAnalysis{Path: path, Language: g.ID, Analysis: a}, nil
}

func writeSymbols(w io.Writer, fa *fileAnalysis) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tLINES\tSIGNATURE")
	for _, s := range fa.Symbols {
		fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%s\n", s.Name, s.Kind, s.StartLine, s.EndLine, s.Signature)
	}
	tw.Flush()

	if len(fa.Imports) == 0 {
		return
	}
	fmt.Fprintln(w, "\nIMPORTS")
	for _, imp := range fa.Imports {
		fmt.Fprintf(w, "  %s\n", imp.Raw)
	}
}
