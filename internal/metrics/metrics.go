package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depmap_parse_seconds",
		Help:    "Time spent parsing and querying a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	QueryCompileFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depmap_query_compile_failures_total",
		Help: "Total number of grammar queries that failed to compile.",
	}, []string{"language", "query"})

	FilesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depmap_files_scanned_total",
		Help: "Total number of source files analyzed.",
	})

	FilesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depmap_files_skipped_total",
		Help: "Total number of candidate files skipped during a scan.",
	}, []string{"reason"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "depmap_scan_seconds",
		Help:    "Time spent scanning a workspace.",
		Buckets: prometheus.DefBuckets,
	})

	ImportsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depmap_imports_resolved_total",
		Help: "Total number of import references resolved, by resolution method.",
	}, []string{"method"})

	ImportsUnresolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depmap_imports_unresolved_total",
		Help: "Total number of import references that matched no workspace file.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depmap_graph_nodes",
		Help: "Number of files in the most recently built dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depmap_graph_edges",
		Help: "Number of edges in the most recently built dependency graph.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depmap_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherRescans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depmap_watcher_rescans_total",
		Help: "Total number of rescans triggered by the watcher.",
	})
)
