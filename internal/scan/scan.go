// Package scan walks a workspace and extracts symbols and imports from every
// file whose extension has a registered grammar.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/lang"
	"github.com/dusk-indust/depmap/internal/metrics"
)

// ErrRootNotDir is returned when the scan root exists but is not a directory.
var ErrRootNotDir = errors.New("scan root is not a directory")

// Skip reasons recorded in SkippedFile.Reason.
const (
	ReasonRead     = "read"
	ReasonEncoding = "encoding"
)

// SkippedFile is a candidate file that could not be analyzed.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// ProgressEvent reports one finished file. Done counts analyzed and skipped
// files alike; Err is set when the file was skipped.
type ProgressEvent struct {
	Path  string
	Done  int
	Total int
	Err   error
}

// Result is the outcome of one scan.
type Result struct {
	Root     string         // absolute workspace root
	Files    *graph.FileMap // one record per analyzed file
	Skipped  []SkippedFile  // sorted by path
	Duration time.Duration
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers bounds the number of files analyzed concurrently. Values below
// one select the number of CPUs.
func WithWorkers(n int) Option {
	return func(s *Scanner) { s.workers = n }
}

// WithExcludeDirs skips directories whose base name matches any glob.
func WithExcludeDirs(patterns ...string) Option {
	return func(s *Scanner) { s.dirPatterns = append(s.dirPatterns, patterns...) }
}

// WithExcludeFiles skips files whose base name matches any glob.
func WithExcludeFiles(patterns ...string) Option {
	return func(s *Scanner) { s.filePatterns = append(s.filePatterns, patterns...) }
}

// WithGitignore controls whether the root .gitignore is honored. On by default.
func WithGitignore(enabled bool) Option {
	return func(s *Scanner) { s.gitignore = enabled }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithProgress registers a callback invoked once per finished file. Calls
// are serialized.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(s *Scanner) { s.onProgress = fn }
}

// Scanner walks workspaces. It holds no per-scan state and may be reused.
type Scanner struct {
	registry     *lang.Registry
	workers      int
	dirPatterns  []string
	filePatterns []string
	dirGlobs     []glob.Glob
	fileGlobs    []glob.Glob
	gitignore    bool
	logger       *slog.Logger
	onProgress   func(ProgressEvent)
}

// New creates a Scanner over the grammars in registry. It fails only on an
// invalid exclude pattern.
func New(registry *lang.Registry, opts ...Option) (*Scanner, error) {
	s := &Scanner{
		registry:  registry,
		gitignore: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.NumCPU()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	var err error
	if s.dirGlobs, err = compileGlobs(s.dirPatterns); err != nil {
		return nil, fmt.Errorf("invalid exclude dir pattern: %w", err)
	}
	if s.fileGlobs, err = compileGlobs(s.filePatterns); err != nil {
		return nil, fmt.Errorf("invalid exclude file pattern: %w", err)
	}
	return s, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Scan walks root and analyzes every supported file. Unreadable files and
// files that are not valid UTF-8 are recorded in Result.Skipped and never
// abort the scan. A missing root, a root that is not a directory, and
// cancellation are the only errors.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, abs)
	}

	paths, err := s.collect(ctx, abs)
	if err != nil {
		return nil, err
	}

	records, skipped, err := s.analyzeAll(ctx, abs, paths)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Root:     abs,
		Files:    graph.NewFileMap(records...),
		Skipped:  skipped,
		Duration: time.Since(start),
	}
	metrics.ScanDuration.Observe(res.Duration.Seconds())
	s.logger.Info("scan complete",
		"root", abs,
		"files", res.Files.Len(),
		"skipped", len(skipped),
		"duration", res.Duration,
	)
	return res, nil
}

// collect returns the workspace-relative paths of candidate files, sorted.
func (s *Scanner) collect(ctx context.Context, root string) ([]string, error) {
	gi := s.loadGitignore(root)

	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return err
			}
			s.logger.Warn("skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p == root {
				return nil
			}
			if s.SkipsDir(d.Name()) {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&(fs.ModeNamedPipe|fs.ModeSocket|fs.ModeDevice) != 0 {
			return nil
		}
		if s.registry.GrammarFor(path.Ext(rel)) == nil {
			return nil
		}
		if matchAny(s.fileGlobs, d.Name()) {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// loadGitignore compiles the root .gitignore, or returns nil.
func (s *Scanner) loadGitignore(root string) *ignore.GitIgnore {
	if !s.gitignore {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("ignoring unreadable .gitignore", "error", err)
		}
		return nil
	}
	return gi
}

// analyzeAll runs per-file analysis on a bounded pool. Records come back in
// the order of paths regardless of scheduling.
func (s *Scanner) analyzeAll(ctx context.Context, root string, paths []string) ([]graph.FileRecord, []SkippedFile, error) {
	results := make([]*graph.FileRecord, len(paths))
	skips := make([]*SkippedFile, len(paths))

	var (
		mu   sync.Mutex
		done int
	)
	report := func(p string, err error) {
		if s.onProgress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		s.onProgress(ProgressEvent{Path: p, Done: done, Total: len(paths), Err: err})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, skip := s.analyzeFile(root, p)
			if skip != nil {
				skips[i] = skip
				report(p, skip.Err)
				return nil
			}
			results[i] = &rec
			report(p, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	records := make([]graph.FileRecord, 0, len(paths))
	var skipped []SkippedFile
	for i := range paths {
		switch {
		case results[i] != nil:
			records = append(records, *results[i])
		case skips[i] != nil:
			skipped = append(skipped, *skips[i])
		}
	}
	metrics.FilesScanned.Add(float64(len(records)))
	return records, skipped, nil
}

// analyzeFile reads and analyzes one file. A non-nil SkippedFile means the
// file produced no record.
func (s *Scanner) analyzeFile(root, rel string) (graph.FileRecord, *SkippedFile) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return graph.FileRecord{}, s.skip(rel, ReasonRead, err)
	}
	if !utf8.Valid(data) {
		return graph.FileRecord{}, s.skip(rel, ReasonEncoding, errors.New("not valid UTF-8"))
	}

	g := s.registry.GrammarFor(path.Ext(rel))
	a := lang.Analyze(data, g)
	if a.Degraded {
		s.logger.Debug("parse tree contains errors", "path", rel)
	}
	return graph.FileRecord{
		Path:     rel,
		Language: g.ID,
		Symbols:  a.Symbols,
		Imports:  a.Imports,
		Degraded: a.Degraded,
	}, nil
}

func (s *Scanner) skip(rel, reason string, err error) *SkippedFile {
	s.logger.Warn("skipping file", "path", rel, "reason", reason, "error", err)
	metrics.FilesSkipped.WithLabelValues(reason).Inc()
	return &SkippedFile{Path: rel, Reason: reason, Err: err}
}

// Extensions returns the file extensions the scanner analyzes.
func (s *Scanner) Extensions() []string {
	return s.registry.Extensions()
}

// SkipsDir reports whether a directory with the given base name is never
// walked.
func (s *Scanner) SkipsDir(name string) bool {
	return name == ".git" || matchAny(s.dirGlobs, name)
}
