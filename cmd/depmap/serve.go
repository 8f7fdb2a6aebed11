//go:build cgo

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/mcptools"
	"github.com/dusk-indust/depmap/internal/scan"
)

var (
	flagAddr  string
	flagStdio bool
	flagStore string
	flagWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Serve the dependency graph over MCP",
	Long:  "Runs an MCP server exposing build_graph, query_symbols, get_dependencies, assess_impact, get_clusters, and find_cycles. With a path, the workspace is indexed at startup; --watch keeps it current. Over HTTP, Prometheus metrics are served at /metrics.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "localhost:8080", "HTTP listen address")
	serveCmd.Flags().BoolVar(&flagStdio, "stdio", false, "serve over stdin/stdout instead of HTTP")
	serveCmd.Flags().StringVar(&flagStore, "store", "memory", "graph store: memory|kuzu")
	serveCmd.Flags().BoolVar(&flagWatch, "watch", false, "rebuild the served graph when files change (requires a path)")
	rootCmd.AddCommand(serveCmd)
}

func storeFactory(name string) (mcptools.StoreFactory, error) {
	switch name {
	case "memory":
		return func() (graph.Store, error) { return graph.NewMemStore(), nil }, nil
	case "kuzu":
		return func() (graph.Store, error) {
			s, err := graph.NewKuzuStore()
			if err != nil {
				return nil, err
			}
			return s, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q (use memory or kuzu)", name)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if flagWatch && len(args) == 0 {
		return fmt.Errorf("--watch requires a workspace path")
	}
	factory, err := storeFactory(flagStore)
	if err != nil {
		return err
	}

	e, err := newEngine(targetArg(args), false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := mcptools.NewCodeIntelService(e.registry, nil,
		mcptools.WithStoreFactory(factory),
		mcptools.WithScanOptions(e.scanOpts...),
		mcptools.WithResolverOptions(e.resolverOpts...),
		mcptools.WithLogger(slog.Default()),
	)
	defer svc.Close()

	if len(args) > 0 {
		if err := indexAtStartup(ctx, e, svc); err != nil {
			return err
		}
	}

	if flagStdio {
		return mcptools.RunMCPServerStdio(ctx, svc)
	}
	slog.Info("serving MCP over HTTP", "addr", flagAddr, "metrics", "/metrics")
	return mcptools.RunMCPServer(ctx, svc, flagAddr)
}

// indexAtStartup publishes the workspace once, or keeps publishing it from a
// watcher when --watch is set.
func indexAtStartup(ctx context.Context, e *engine, svc *mcptools.CodeIntelService) error {
	publish := func(a *scan.Analysis, changed []string) {
		stats, err := svc.Publish(ctx, a)
		if err != nil {
			slog.Error("publishing graph failed", "error", err)
			return
		}
		slog.Info("graph published", "files", stats.FileCount, "edges", stats.EdgeCount, "changed", len(changed))
	}

	if !flagWatch {
		a, err := e.scanner.Analyze(ctx, e.root, e.resolverOpts...)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", e.root, err)
		}
		publish(a, nil)
		return nil
	}

	w, err := newWatcher(e)
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx, publish); err != nil {
			slog.Error("watcher stopped", "error", err)
		}
	}()
	return nil
}
