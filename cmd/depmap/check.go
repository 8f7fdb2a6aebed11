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

	"github.com/dusk-indust/depmap/internal/config"
	"github.com/dusk-indust/depmap/internal/quality"
)

var (
	flagMaxFunctionLines int
	flagMinScore         int
	flagFindings         bool
	flagFailOnHigh       bool
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Report documentation coverage, long functions, and risky patterns per file",
	Long:  "Scores every scanned file for documentation coverage, function length, and complexity, and scans it for security and performance patterns. --min-score fails the command when any file scores lower; --fail-on-high fails it on any HIGH security issue.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().IntVar(&flagMaxFunctionLines, "max-function-lines", 0, "function length threshold (default: depmap.yml or 50)")
	checkCmd.Flags().IntVar(&flagMinScore, "min-score", 0, "fail when any file scores below this value (0-100)")
	checkCmd.Flags().BoolVar(&flagFindings, "findings", false, "list every finding under its file")
	checkCmd.Flags().BoolVar(&flagFailOnHigh, "fail-on-high", false, "fail when any file has a HIGH severity security issue")
}

// fileReport pairs a file with its quality report.
type fileReport struct {
	Path string `json:"path"`
	quality.Report
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := newEngine(targetArg(args), true)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.scanner.Scan(cmd.Context(), e.root)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	maxLines := e.cfg.MaxFunctionLines()
	if flagMaxFunctionLines > 0 {
		maxLines = flagMaxFunctionLines
	}

	security, performance, err := qualityRules(e.cfg)
	if err != nil {
		return err
	}

	var (
		reports []fileReport
		failing int
		high    int
	)
	for _, rec := range res.Files.Records() {
		src, err := os.ReadFile(filepath.Join(res.Root, filepath.FromSlash(rec.Path)))
		if err != nil {
			slog.Warn("skipping file changed since scan", "path", rec.Path, "error", err)
			continue
		}
		r := quality.Check(src, rec.Symbols, quality.Options{
			Language:         rec.Language,
			MaxFunctionLines: maxLines,
			Security:         security,
			Performance:      performance,
		})
		if r.Score < flagMinScore {
			failing++
		}
		for _, issue := range r.Security {
			if issue.Severity == quality.SeverityHigh {
				high++
			}
		}
		reports = append(reports, fileReport{Path: rec.Path, Report: r})
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		if reports == nil {
			reports = []fileReport{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		writeReports(w, reports)
	}

	if failing > 0 {
		return fmt.Errorf("%d files scored below %d", failing, flagMinScore)
	}
	if flagFailOnHigh && high > 0 {
		return fmt.Errorf("%d HIGH severity security issues", high)
	}
	return nil
}

// qualityRules compiles the built-in security and performance patterns with
// the depmap.yml categories laid over them.
func qualityRules(cfg *config.ProjectConfig) (security, performance *quality.RuleSet, err error) {
	security, err = quality.CompileSecurity(quality.DefaultSecurityRules().Merge(toRules(cfg.Quality.Security)))
	if err != nil {
		return nil, nil, fmt.Errorf("quality.security: %w", err)
	}
	performance, err = quality.CompilePerformance(quality.DefaultPerformanceRules().Merge(toRules(cfg.Quality.Performance)))
	if err != nil {
		return nil, nil, fmt.Errorf("quality.performance: %w", err)
	}
	return security, performance, nil
}

func toRules(m map[string][]config.PatternConfig) quality.Rules {
	out := make(quality.Rules, len(m))
	for category, patterns := range m {
		rules := make([]quality.Rule, 0, len(patterns))
		for _, p := range patterns {
			rules = append(rules, quality.Rule{Pattern: p.Pattern, Description: p.Description})
		}
		out[category] = rules
	}
	return out
}

func writeReports(w io.Writer, reports []fileReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tGRADE\tSCORE\tDOCS\tLONG FUNCS\tSEC\tPERF")
	for _, r := range reports {
		docs := fmt.Sprintf("%.0f%%", r.Coverage)
		if !r.Structural {
			docs += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%d\n", r.Path, r.Grade, r.Score, docs,
			len(r.LongFunctions), len(r.Security), len(r.Performance))
	}
	tw.Flush()

	if !flagFindings {
		return
	}
	for _, r := range reports {
		if len(r.LongFunctions)+len(r.MissingDocs)+len(r.Security)+len(r.Performance) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", r.Path)
		for _, f := range r.LongFunctions {
			fmt.Fprintf(w, "  %d: %s\n", f.Line, f.Message)
		}
		for _, f := range r.MissingDocs {
			fmt.Fprintf(w, "  %d: %s\n", f.Line, f.Message)
		}
		for _, i := range r.Security {
			fmt.Fprintf(w, "  %d: [%s] %s: %s\n", i.Line, i.Severity, i.Description, i.Code)
		}
		for _, i := range r.Performance {
			fmt.Fprintf(w, "  %d: [%s] %s\n", i.Line, i.Severity, i.Description)
		}
	}
}
