package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/scan"
	"github.com/dusk-indust/depmap/internal/watch"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Rebuild the dependency graph whenever files change",
	Long:  "Scans the workspace, then rescans after every burst of changes to supported source files or manifests, printing a summary of each rebuild. Stops on Ctrl-C.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", 0, "quiet period before rescanning (default: depmap.yml or 300ms)")
}

// newWatcher builds a watcher for the engine's workspace with the configured
// debounce.
func newWatcher(e *engine) (*watch.Watcher, error) {
	debounce := e.cfg.Debounce()
	if flagDebounce > 0 {
		debounce = flagDebounce
	}
	return watch.New(e.scanner, e.root,
		watch.WithDebounce(debounce),
		watch.WithLogger(slog.Default()),
		watch.WithResolverOptions(e.resolverOpts...),
	)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEngine(targetArg(args), false)
	if err != nil {
		return err
	}
	defer e.Close()

	w, err := newWatcher(e)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", e.root)
	return w.Run(ctx, func(a *scan.Analysis, changed []string) {
		writeRebuild(out, a, changed)
	})
}

func writeRebuild(w io.Writer, a *scan.Analysis, changed []string) {
	cycles, err := graph.FindCycles(a.Graph)
	if err != nil {
		slog.Warn("cycle detection failed", "error", err)
	}
	stamp := time.Now().Format("15:04:05")
	if len(changed) == 0 {
		fmt.Fprintf(w, "[%s] initial scan: %d files, %d edges, %d cycles\n",
			stamp, a.Files.Len(), a.Graph.EdgeCount(), len(cycles))
		return
	}
	fmt.Fprintf(w, "[%s] rebuilt after %s: %d files, %d edges, %d cycles\n",
		stamp, summarizeChanged(changed), a.Files.Len(), a.Graph.EdgeCount(), len(cycles))
}

// summarizeChanged names up to three changed paths.
func summarizeChanged(changed []string) string {
	const shown = 3
	if len(changed) <= shown {
		return strings.Join(changed, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(changed[:shown], ", "), len(changed)-shown)
}
