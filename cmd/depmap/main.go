package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

var (
	flagVerbose     bool
	flagQuiet       bool
	flagJSON        bool
	flagWorkers     int
	flagLanguages   []string
	flagExcludeDirs []string
	flagExcludeFile []string
	flagNoGitignore bool
	flagNoFuzzy     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "depmap",
	Short:         "Multi-language source dependency mapper",
	Long:          "depmap parses a workspace with tree-sitter, extracts symbols and imports, and resolves imports into a file-level dependency graph.",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	// No Run: prints help by default.
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "hide progress output")
	pf.BoolVar(&flagJSON, "json", false, "write JSON instead of text")
	pf.IntVar(&flagWorkers, "workers", 0, "files analyzed concurrently (default: depmap.yml or number of CPUs)")
	pf.StringSliceVar(&flagLanguages, "languages", nil, "comma-separated language filter (e.g. go,python)")
	pf.StringSliceVar(&flagExcludeDirs, "exclude-dir", nil, "directory name globs to skip (repeatable)")
	pf.StringSliceVar(&flagExcludeFile, "exclude-file", nil, "file name globs to skip (repeatable)")
	pf.BoolVar(&flagNoGitignore, "no-gitignore", false, "do not honor the root .gitignore")
	pf.BoolVar(&flagNoFuzzy, "no-fuzzy", false, "disable the last-resort fuzzy resolution step")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(watchCmd)
}

// setupLogging installs a text handler on stderr. --verbose selects debug
// level; --quiet keeps only warnings and errors.
func setupLogging() {
	level := slog.LevelInfo
	switch {
	case flagVerbose:
		level = slog.LevelDebug
	case flagQuiet:
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
