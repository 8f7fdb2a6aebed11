package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/dusk-indust/depmap/internal/config"
	"github.com/dusk-indust/depmap/internal/graph"
	"github.com/dusk-indust/depmap/internal/lang"
	"github.com/dusk-indust/depmap/internal/scan"
)

// engine bundles everything a command needs to analyze one workspace.
type engine struct {
	root         string
	cfg          *config.ProjectConfig
	registry     *lang.Registry
	scanner      *scan.Scanner
	scanOpts     []scan.Option // without progress reporting
	resolverOpts []graph.ResolverOption
	closeFn      func() error
}

// Close releases the grammars.
func (e *engine) Close() error {
	return e.closeFn()
}

// newEngine loads depmap.yml from root and applies the command-line
// overrides on top of it.
func newEngine(root string, progress bool) (*engine, error) {
	abs, err := resolveTargetDir(root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(abs)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	full := lang.DefaultRegistry(slog.Default())
	registry, err := restrictLanguages(full, mergeLanguages(cfg.Languages, flagLanguages))
	if err != nil {
		full.Close()
		return nil, err
	}

	workers := cfg.Workers
	if flagWorkers > 0 {
		workers = flagWorkers
	}
	opts := []scan.Option{
		scan.WithWorkers(workers),
		scan.WithExcludeDirs(cfg.Exclude.Dirs...),
		scan.WithExcludeDirs(flagExcludeDirs...),
		scan.WithExcludeFiles(cfg.Exclude.Files...),
		scan.WithExcludeFiles(flagExcludeFile...),
		scan.WithGitignore(cfg.UseGitignore() && !flagNoGitignore),
		scan.WithLogger(slog.Default()),
	}
	scanOpts := opts
	if progress && !flagQuiet {
		opts = append(opts[:len(opts):len(opts)], scan.WithProgress(newProgressReporter()))
	}
	scanner, err := scan.New(registry, opts...)
	if err != nil {
		full.Close()
		return nil, err
	}

	return &engine{
		root:         abs,
		cfg:          cfg,
		registry:     registry,
		scanner:      scanner,
		scanOpts:     scanOpts,
		resolverOpts: []graph.ResolverOption{graph.WithFuzzy(cfg.FuzzyResolution() && !flagNoFuzzy)},
		closeFn:      full.Close,
	}, nil
}

// mergeLanguages prefers the command line over depmap.yml.
func mergeLanguages(fromConfig, fromFlags []string) []string {
	if len(fromFlags) > 0 {
		return fromFlags
	}
	return fromConfig
}

func restrictLanguages(r *lang.Registry, names []string) (*lang.Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	ids := make([]lang.Language, 0, len(names))
	for _, n := range names {
		id := lang.Language(strings.ToLower(strings.TrimSpace(n)))
		if r.Grammar(id) == nil {
			return nil, fmt.Errorf("unsupported language %q (known: %v)", n, r.Languages())
		}
		ids = append(ids, id)
	}
	return r.Restrict(ids...), nil
}

// resolveTargetDir returns the absolute path of the directory to analyze.
func resolveTargetDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

func targetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// newProgressReporter draws a file progress bar on stderr. The bar is created
// on the first event, once the total is known.
func newProgressReporter() func(scan.ProgressEvent) {
	var bar *progressbar.ProgressBar
	return func(ev scan.ProgressEvent) {
		if bar == nil {
			bar = progressbar.NewOptions(ev.Total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Scanning files"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files/s"),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(ev.Done)
		if ev.Done == ev.Total {
			_ = bar.Finish()
		}
	}
}
