package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/depmap/internal/lang"
	"github.com/dusk-indust/depmap/internal/quality"
)

var flagFailOnBreaking bool

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "List breaking changes between two versions of a file",
	Long:  "Compares the exported symbols of two versions of the same source file and reports removals and signature changes.",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&flagFailOnBreaking, "fail", false, "exit with an error when breaking changes are found")
}

func runDiff(cmd *cobra.Command, args []string) error {
	registry := lang.DefaultRegistry(slog.Default())
	defer registry.Close()

	before, err := analyzeFile(registry, args[0])
	if err != nil {
		return err
	}
	after, err := analyzeFile(registry, args[1])
	if err != nil {
		return err
	}
	if before.Language != after.Language {
		return fmt.Errorf("cannot compare %s file with %s file", before.Language, after.Language)
	}

	changes := quality.BreakingChanges(before.Symbols, after.Symbols, after.Language)

	w := cmd.OutOrStdout()
	if flagJSON {
		if changes == nil {
			changes = []quality.Change{}
		}
		if err := json.NewEncoder(w).Encode(changes); err != nil {
			return err
		}
	} else {
		writeChanges(w, changes)
	}

	if flagFailOnBreaking && len(changes) > 0 {
		return fmt.Errorf("%d breaking changes", len(changes))
	}
	return nil
}

func writeChanges(w io.Writer, changes []quality.Change) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "No breaking changes.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANGE\tSYMBOL\tKIND\tBEFORE\tAFTER")
	for _, c := range changes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Kind, c.Symbol, c.SymbolKind, c.Old, c.New)
	}
	tw.Flush()
}
