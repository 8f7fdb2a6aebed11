// Package quality scores documentation coverage and function size for one
// source file, using the symbols extracted by the classifier, and scans it
// for security and performance patterns.
package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/depmap/internal/lang"
)

// DefaultMaxFunctionLines is the function length above which a function is
// reported.
const DefaultMaxFunctionLines = 50

// longLine is the width above which a line counts against maintainability.
const longLine = 120

var (
	docPrefixes       = []string{"#", "//", "/*", "*", `"""`, "'''"}
	docstringPrefixes = []string{`"""`, "'''"}
	decisionKeywords  = regexp.MustCompile(`\b(if|else|for|while|switch|case|try|catch|except)\b`)
)

// Options tunes Check.
type Options struct {
	Language         lang.Language
	MaxFunctionLines int // <= 0 selects DefaultMaxFunctionLines
	// Security and Performance enable the pattern scanners when non-nil.
	Security    *RuleSet
	Performance *RuleSet
}

// Finding points at one symbol that failed a check.
type Finding struct {
	Name    string          `json:"name"`
	Kind    lang.SymbolKind `json:"kind"`
	Line    int             `json:"line"`
	Message string          `json:"message"`
}

// Report is the quality summary of one file. Structural is false when the
// file had no symbols and coverage was estimated from comment lines.
type Report struct {
	Structural            bool      `json:"structural"`
	Symbols               int       `json:"symbols"`
	Documented            int       `json:"documented"`
	Coverage              float64   `json:"coverage"` // percent
	AverageFunctionLength float64   `json:"averageFunctionLength"`
	LongLines             int       `json:"longLines"`
	MissingDocs           []Finding `json:"missingDocs,omitempty"`
	LongFunctions         []Finding `json:"longFunctions,omitempty"`
	Security              []Issue   `json:"security,omitempty"`
	Performance           []Issue   `json:"performance,omitempty"`
	Score                 int       `json:"score"` // 0-100
	Grade                 string    `json:"grade"`
}

// Check scores src. An empty symbol list is not an error: coverage then
// falls back to the share of comment lines.
func Check(src []byte, symbols []lang.Symbol, opts Options) Report {
	maxLines := opts.MaxFunctionLines
	if maxLines <= 0 {
		maxLines = DefaultMaxFunctionLines
	}
	lines := splitLines(string(src))

	r := Report{
		Structural: len(symbols) > 0,
		Symbols:    len(symbols),
	}
	for _, l := range lines {
		if len(l) > longLine {
			r.LongLines++
		}
	}

	if r.Structural {
		for _, sym := range symbols {
			if documented(lines, sym.StartLine) {
				r.Documented++
			} else {
				r.MissingDocs = append(r.MissingDocs, Finding{
					Name:    sym.Name,
					Kind:    sym.Kind,
					Line:    sym.StartLine,
					Message: fmt.Sprintf("missing doc for %s %q", sym.Kind, sym.Name),
				})
			}
		}
		r.Coverage = 100 * float64(r.Documented) / float64(len(symbols))
	} else if len(lines) > 0 {
		markers := commentMarkers(opts.Language)
		comments := 0
		for _, l := range lines {
			if hasAnyPrefix(strings.TrimSpace(l), markers) {
				comments++
			}
		}
		r.Coverage = min(100, 1.5*100*float64(comments)/float64(len(lines)))
	}

	total, funcs := 0, 0
	for _, sym := range symbols {
		if sym.Kind != lang.SymbolKindFunction {
			continue
		}
		length := sym.EndLine - sym.StartLine
		total += length
		funcs++
		if length > maxLines {
			r.LongFunctions = append(r.LongFunctions, Finding{
				Name:    sym.Name,
				Kind:    sym.Kind,
				Line:    sym.StartLine,
				Message: fmt.Sprintf("function %q is %d lines (max %d)", sym.Name, length, maxLines),
			})
		}
	}
	if funcs > 0 {
		r.AverageFunctionLength = float64(total) / float64(funcs)
	}

	r.Security = ScanSecurity(src, opts.Security)
	if opts.Performance != nil {
		r.Performance = PerformanceIssues(src, symbols, opts.Performance, maxLines)
	}

	r.Score = documentationScore(r.Coverage) +
		complexityScore(src, len(lines)) +
		maintainabilityScore(r.LongLines, len(lines), r.AverageFunctionLength)
	r.Grade = grade(r.Score)
	return r
}

// documented reports whether the symbol starting at 1-based line has a
// comment on the line above or a docstring on the line below.
func documented(lines []string, line int) bool {
	idx := line - 1
	if idx > 0 && idx-1 < len(lines) && hasAnyPrefix(strings.TrimSpace(lines[idx-1]), docPrefixes) {
		return true
	}
	if idx >= 0 && idx+1 < len(lines) && hasAnyPrefix(strings.TrimSpace(lines[idx+1]), docstringPrefixes) {
		return true
	}
	return false
}

func commentMarkers(l lang.Language) []string {
	switch l {
	case lang.LangPython:
		return []string{"#"}
	case lang.LangGo, lang.LangRust, lang.LangJava, lang.LangJavaScript, lang.LangTypeScript, lang.LangTSX:
		return []string{"//", "/*", "*"}
	default:
		return []string{"//", "#"}
	}
}

func documentationScore(coverage float64) int {
	switch {
	case coverage >= 80:
		return 30
	case coverage >= 60:
		return 25
	case coverage >= 40:
		return 20
	case coverage >= 20:
		return 15
	default:
		return int(coverage / 2)
	}
}

func complexityScore(src []byte, lines int) int {
	if lines == 0 {
		return 30
	}
	perLine := float64(len(decisionKeywords.FindAllIndex(src, -1))) / float64(lines)
	switch {
	case perLine <= 0.05:
		return 30
	case perLine <= 0.10:
		return 25
	case perLine <= 0.15:
		return 20
	case perLine <= 0.20:
		return 15
	default:
		return 10
	}
}

func maintainabilityScore(longLines, lines int, avgFunc float64) int {
	score := 40
	switch {
	case float64(longLines) > 0.2*float64(lines):
		score -= 10
	case float64(longLines) > 0.1*float64(lines):
		score -= 5
	}
	switch {
	case avgFunc > 50:
		score -= 10
	case avgFunc > 30:
		score -= 5
	}
	return score
}

func grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "A-"
	case score >= 75:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 65:
		return "B-"
	case score >= 60:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 50:
		return "C-"
	default:
		return "D"
	}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
