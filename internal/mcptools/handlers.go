package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/lang"
	"github.com/dusk-indust/depmap/internal/scan"
)

// ErrClosed is returned by tool calls made after Close.
var ErrClosed = errors.New("code intelligence service is closed")

// StoreFactory creates an empty graph store. Every build_graph call gets a
// fresh store so results never mix workspaces.
type StoreFactory func() (graph.Store, error)

// ServiceOption configures a CodeIntelService.
type ServiceOption func(*CodeIntelService)

// WithStoreFactory sets how build_graph creates its store. Defaults to an
// in-memory MemStore.
func WithStoreFactory(f StoreFactory) ServiceOption {
	return func(s *CodeIntelService) { s.newStore = f }
}

// WithScanOptions applies scanner options to every build.
func WithScanOptions(opts ...scan.Option) ServiceOption {
	return func(s *CodeIntelService) { s.scanOpts = append(s.scanOpts, opts...) }
}

// WithResolverOptions applies resolver options to every build.
func WithResolverOptions(opts ...graph.ResolverOption) ServiceOption {
	return func(s *CodeIntelService) { s.resolverOpts = append(s.resolverOpts, opts...) }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *CodeIntelService) { s.logger = l }
}

// CodeIntelService holds the graph store and grammars used by MCP tool handlers.
type CodeIntelService struct {
	registry     *lang.Registry
	newStore     StoreFactory
	scanOpts     []scan.Option
	resolverOpts []graph.ResolverOption
	logger       *slog.Logger

	mu    sync.RWMutex
	store graph.Store
	graph *graph.DependencyGraph
}

// NewCodeIntelService creates a CodeIntelService. store is served until the
// first build_graph call replaces it; nil starts from an empty store.
func NewCodeIntelService(registry *lang.Registry, store graph.Store, opts ...ServiceOption) *CodeIntelService {
	s := &CodeIntelService{registry: registry, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.newStore == nil {
		s.newStore = func() (graph.Store, error) { return graph.NewMemStore(), nil }
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.store == nil {
		s.store = graph.NewMemStore()
	}
	return s
}

// Close releases the current store. Later tool calls return ErrClosed.
func (s *CodeIntelService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// Publish serves a workspace that was analyzed elsewhere, such as by a
// watcher. It loads a fresh store, computes clusters, and swaps it in.
func (s *CodeIntelService) Publish(ctx context.Context, a *scan.Analysis) (*graph.GraphStats, error) {
	store, err := s.newStore()
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := graph.Load(ctx, store, a.Files, a.Graph); err != nil {
		store.Close()
		return nil, fmt.Errorf("load graph: %w", err)
	}
	if _, err := graph.ComputeClusters(ctx, store, graph.FileNodes(a.Files)); err != nil {
		store.Close()
		return nil, fmt.Errorf("compute clusters: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("stats: %w", err)
	}

	s.mu.Lock()
	old := s.store
	if old == nil {
		s.mu.Unlock()
		store.Close()
		return nil, ErrClosed
	}
	s.store = store
	s.graph = a.Graph
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous store", "error", err)
	}
	return stats, nil
}

// BuildGraph scans a repository, resolves its imports, loads the result into
// a new store, and runs clustering. Returns graph statistics.
func (s *CodeIntelService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if input.RepoPath == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("repoPath is required")
	}

	info, err := os.Stat(input.RepoPath)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("cannot access repoPath: %w", err)
	}
	if !info.IsDir() {
		return nil, BuildGraphOutput{}, fmt.Errorf("repoPath is not a directory: %s", input.RepoPath)
	}

	registry, err := s.restrict(input.Languages)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	opts := append([]scan.Option{scan.WithLogger(s.logger)}, s.scanOpts...)
	opts = append(opts,
		scan.WithExcludeDirs(input.ExcludeDirs...),
		scan.WithExcludeFiles(input.ExcludeFiles...),
	)
	scanner, err := scan.New(registry, opts...)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	a, err := scanner.Analyze(ctx, input.RepoPath, s.resolverOpts...)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("analyze: %w", err)
	}

	stats, err := s.Publish(ctx, a)
	if err != nil {
		return nil, BuildGraphOutput{}, err
	}

	cycles, err := graph.FindCycles(a.Graph)
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("find cycles: %w", err)
	}

	unresolved := 0
	for _, raws := range a.Graph.Unresolved {
		unresolved += len(raws)
	}

	return nil, BuildGraphOutput{
		Stats:      *stats,
		Unresolved: unresolved,
		Skipped:    len(a.Skipped),
		Cycles:     len(cycles),
	}, nil
}

// restrict narrows the registry to the requested languages. An empty list
// keeps every registered language.
func (s *CodeIntelService) restrict(languages []string) (*lang.Registry, error) {
	if len(languages) == 0 {
		return s.registry, nil
	}
	ids := make([]lang.Language, 0, len(languages))
	for _, l := range languages {
		id := lang.Language(strings.ToLower(strings.TrimSpace(l)))
		if s.registry.Grammar(id) == nil {
			return nil, fmt.Errorf("unsupported language %q", l)
		}
		ids = append(ids, id)
	}
	return s.registry.Restrict(ids...), nil
}

// QuerySymbols searches for symbols by name substring match.
func (s *CodeIntelService) QuerySymbols(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuerySymbolsInput,
) (*mcp.CallToolResult, QuerySymbolsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, QuerySymbolsOutput{}, ErrClosed
	}

	// Filter before limiting so a kind filter still fills the page.
	symbols, err := s.store.QuerySymbols(ctx, input.Query, 0)
	if err != nil {
		return nil, QuerySymbolsOutput{}, fmt.Errorf("query symbols: %w", err)
	}

	if input.Kind != "" {
		kind := lang.SymbolKind(strings.ToLower(input.Kind))
		filtered := symbols[:0]
		for _, sym := range symbols {
			if sym.Kind == kind {
				filtered = append(filtered, sym)
			}
		}
		symbols = filtered
	}
	if len(symbols) > limit {
		symbols = symbols[:limit]
	}
	if symbols == nil {
		symbols = []graph.SymbolNode{}
	}

	return nil, QuerySymbolsOutput{
		Symbols: symbols,
		Total:   len(symbols),
	}, nil
}

// GetDependencies traverses the dependency graph from a given file.
func (s *CodeIntelService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.NodeID == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("nodeId is required")
	}

	direction := graph.DirectionDownstream
	switch strings.ToLower(input.Direction) {
	case "", string(graph.DirectionDownstream):
	case string(graph.DirectionUpstream):
		direction = graph.DirectionUpstream
	default:
		return nil, GetDependenciesOutput{}, fmt.Errorf("unknown direction %q", input.Direction)
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, GetDependenciesOutput{}, ErrClosed
	}

	chains, err := s.store.GetDependencies(ctx, input.NodeID, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	if chains == nil {
		chains = []graph.DependencyChain{}
	}

	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes the blast radius of modifying a set of files.
func (s *CodeIntelService) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, AssessImpactOutput{}, ErrClosed
	}

	impact, err := s.store.AssessImpact(ctx, input.ChangedFiles)
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}

	return nil, AssessImpactOutput{Impact: *impact}, nil
}

// GetClusters returns all file clusters in the graph.
func (s *CodeIntelService) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, GetClustersOutput{}, ErrClosed
	}

	clusters, err := s.store.GetClusters(ctx)
	if err != nil {
		return nil, GetClustersOutput{}, fmt.Errorf("get clusters: %w", err)
	}
	if clusters == nil {
		clusters = []graph.ClusterNode{}
	}

	return nil, GetClustersOutput{Clusters: clusters}, nil
}

// FindCycles reports the import cycles of the last built graph and, when
// there are none, a dependencies-first file order.
func (s *CodeIntelService) FindCycles(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ FindCyclesInput,
) (*mcp.CallToolResult, FindCyclesOutput, error) {
	s.mu.RLock()
	dg, closed := s.graph, s.store == nil
	s.mu.RUnlock()

	if closed {
		return nil, FindCyclesOutput{}, ErrClosed
	}
	if dg == nil {
		return nil, FindCyclesOutput{}, fmt.Errorf("no graph built; call build_graph first")
	}

	cycles, err := graph.FindCycles(dg)
	if err != nil {
		return nil, FindCyclesOutput{}, fmt.Errorf("find cycles: %w", err)
	}
	out := FindCyclesOutput{Cycles: cycles}
	if out.Cycles == nil {
		out.Cycles = [][]string{}
	}
	if len(cycles) == 0 {
		order, err := graph.TopologicalOrder(dg)
		if err != nil && !errors.Is(err, graph.ErrCyclic) {
			return nil, FindCyclesOutput{}, fmt.Errorf("topological order: %w", err)
		}
		out.Order = order
	}
	return nil, out, nil
}
