// Package watch rebuilds the dependency graph whenever workspace files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/metrics"
	"github.com/dusk-indust/depmap/internal/scan"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// manifests trigger a rescan even though they are not analyzed.
var manifests = map[string]bool{
	".gitignore":   true,
	"go.mod":       true,
	"package.json": true,
}

// Handler receives every rebuilt analysis. changed lists the
// workspace-relative paths that triggered the rebuild; it is empty for the
// initial scan.
type Handler func(a *scan.Analysis, changed []string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits after the last event before
// rescanning.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithResolverOptions passes options to every graph build.
func WithResolverOptions(opts ...graph.ResolverOption) Option {
	return func(w *Watcher) { w.resolverOpts = append(w.resolverOpts, opts...) }
}

// Watcher runs a full rescan after each burst of file changes. A rescan is
// always complete because resolution needs the whole FileMap.
type Watcher struct {
	scanner      *scan.Scanner
	root         string
	debounce     time.Duration
	logger       *slog.Logger
	resolverOpts []graph.ResolverOption
	extensions   map[string]bool
}

// New creates a Watcher for root.
func New(scanner *scan.Scanner, root string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch root %s: %w", root, err)
	}
	w := &Watcher{
		scanner:    scanner,
		root:       abs,
		debounce:   DefaultDebounce,
		extensions: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	for _, ext := range scanner.Extensions() {
		w.extensions[ext] = true
	}
	return w, nil
}

// Run performs an initial analysis, then watches until ctx is done. Errors
// from the initial scan are returned; errors from later rescans are logged
// and watching continues. Run returns nil once ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}

	a, err := w.scanner.Analyze(ctx, w.root, w.resolverOpts...)
	if err != nil {
		return err
	}
	handle(a, nil)

	pending := make(map[string]bool)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			metrics.WatcherEventsTotal.Inc()

			trigger := w.relevant(ev)
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					// Files may land before the watch is added; the rescan finds them.
					if err := w.addRecursive(fsw, ev.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
					}
					trigger = true
				}
			}
			if !trigger {
				continue
			}
			pending[w.rel(ev.Name)] = true

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			metrics.WatcherRescans.Inc()
			w.logger.Debug("rescanning", "changed", len(changed))
			a, err := w.scanner.Analyze(ctx, w.root, w.resolverOpts...)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("rescan failed", "error", err)
				continue
			}
			handle(a, changed)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether an event can change the analysis.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(ev.Name)
	return w.extensions[strings.ToLower(filepath.Ext(base))] || manifests[base]
}

func (w *Watcher) rel(p string) string {
	r, err := filepath.Rel(w.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

// addRecursive watches dir and every subdirectory the scanner would walk.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.scanner.SkipsDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
