package quality

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dusk-indust/depmap/internal/lang"
)

// Severity ranks an Issue.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Categories whose security matches are reported as SeverityHigh.
const (
	CategorySQLInjection     = "sql_injection"
	CategoryCommandInjection = "command_injection"
)

// CategoryLargeFunction marks performance issues derived from symbol ranges
// rather than a pattern.
const CategoryLargeFunction = "large_function"

// Rule is one regular expression of a pattern category.
type Rule struct {
	Pattern     string
	Description string
}

// Rules maps a category name to its patterns.
type Rules map[string][]Rule

// Issue is one pattern match or derived finding, located by 1-based line.
type Issue struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Line        int      `json:"line"`
	Code        string   `json:"code,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// DefaultSecurityRules returns the built-in security patterns. They are
// matched case-insensitively.
func DefaultSecurityRules() Rules {
	return Rules{
		CategorySQLInjection: {
			{`\b(execute|query|raw)\s*\(\s*["'][^"']*\b(select|insert|update|delete)\b[^"']*["']\s*(\+|%|\.format\b)`, "SQL built by string concatenation or formatting"},
			{`\bf["'](select|insert|update|delete)\b[^"']*\{`, "SQL built with an f-string"},
		},
		CategoryCommandInjection: {
			{`\bos\.system\s*\(`, "shell command via os.system"},
			{`\bsubprocess\.\w+\([^)]*shell\s*=\s*true`, "subprocess call with shell=True"},
			{`\bexec\.command\(\s*"(sh|bash)"\s*,\s*"-c"`, "shell invoked through exec.Command"},
			{`\bchild_process\.exec(sync)?\s*\(`, "shell command via child_process.exec"},
		},
		"code_injection": {
			{`\beval\s*\(`, "evaluation of dynamic code"},
		},
		"hardcoded_secret": {
			{`\b(password|passwd|secret|api_?key|token)\s*[:=]\s*["'][^"']{4,}["']`, "hard-coded credential"},
		},
		"insecure_deserialization": {
			{`\bpickle\.loads?\s*\(`, "pickle deserialization of untrusted data"},
			{`\byaml\.load\s*\(`, "yaml.load without a safe loader"},
		},
		"weak_crypto": {
			{`\b(md5|sha1)\s*[.(]`, "weak hash algorithm"},
		},
	}
}

// DefaultPerformanceRules returns the built-in performance patterns. They
// are matched case-sensitively, with ^ and $ anchoring at line boundaries.
func DefaultPerformanceRules() Rules {
	return Rules{
		"nested_loop": {
			{`^[ \t]*for\b[^\n]*\n[ \t]+for\b`, "loop nested directly inside a loop"},
		},
		"query_in_loop": {
			{`^[ \t]*for\b[^\n]*\n[ \t]+[^\n]*\b(execute|query|fetch)\w*\s*\(`, "database or network call inside a loop"},
		},
		"blocking_sleep": {
			{`\b(time\.sleep|time\.Sleep|Thread\.sleep)\s*\(`, "blocking sleep"},
		},
		"select_star": {
			{`(?i)\bselect\s+\*\s+from\b`, "unbounded SELECT *"},
		},
	}
}

// Merge returns base with every category of override replacing the
// same-named category of base. Neither argument is modified.
func (r Rules) Merge(override Rules) Rules {
	out := make(Rules, len(r)+len(override))
	for category, rules := range r {
		out[category] = rules
	}
	for category, rules := range override {
		out[category] = rules
	}
	return out
}

type compiledRule struct {
	category    string
	description string
	re          *regexp.Regexp
}

// RuleSet is a compiled Rules value, safe for concurrent use.
type RuleSet struct {
	rules []compiledRule
}

// CompileSecurity compiles security rules for case-insensitive,
// line-anchored matching.
func CompileSecurity(r Rules) (*RuleSet, error) {
	return compile(r, "(?im)")
}

// CompilePerformance compiles performance rules for line-anchored matching.
func CompilePerformance(r Rules) (*RuleSet, error) {
	return compile(r, "(?m)")
}

func compile(r Rules, flags string) (*RuleSet, error) {
	categories := make([]string, 0, len(r))
	for category := range r {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rs := &RuleSet{}
	for _, category := range categories {
		for _, rule := range r[category] {
			re, err := regexp.Compile(flags + rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%s pattern %q: %w", category, rule.Pattern, err)
			}
			rs.rules = append(rs.rules, compiledRule{
				category:    category,
				description: rule.Description,
				re:          re,
			})
		}
	}
	return rs, nil
}

// ScanSecurity reports every security pattern match in src. SQL and command
// injection are SeverityHigh; every other category is SeverityMedium.
func ScanSecurity(src []byte, rules *RuleSet) []Issue {
	if rules == nil || len(src) == 0 {
		return nil
	}
	lines := splitLines(string(src))
	var issues []Issue
	for _, rule := range rules.rules {
		severity := SeverityMedium
		if rule.category == CategorySQLInjection || rule.category == CategoryCommandInjection {
			severity = SeverityHigh
		}
		for _, loc := range rule.re.FindAllIndex(src, -1) {
			line := lineAt(src, loc[0])
			issues = append(issues, Issue{
				Category:    rule.category,
				Severity:    severity,
				Description: rule.description,
				Line:        line,
				Code:        codeAt(lines, line),
			})
		}
	}
	sortIssues(issues)
	return issues
}

// PerformanceIssues reports performance pattern matches in src plus one
// large_function issue per function longer than maxFunctionLines
// (<= 0 selects DefaultMaxFunctionLines).
func PerformanceIssues(src []byte, symbols []lang.Symbol, rules *RuleSet, maxFunctionLines int) []Issue {
	if maxFunctionLines <= 0 {
		maxFunctionLines = DefaultMaxFunctionLines
	}
	var issues []Issue
	if rules != nil && len(src) > 0 {
		lines := splitLines(string(src))
		for _, rule := range rules.rules {
			description := rule.description
			if description == "" {
				description = fmt.Sprintf("potential %s performance issue", rule.category)
			}
			for _, loc := range rule.re.FindAllIndex(src, -1) {
				line := lineAt(src, loc[0])
				issues = append(issues, Issue{
					Category:    rule.category,
					Severity:    SeverityMedium,
					Description: description,
					Line:        line,
					Code:        codeAt(lines, line),
					Suggestion:  "review algorithmic complexity",
				})
			}
		}
	}
	for _, sym := range symbols {
		if sym.Kind != lang.SymbolKindFunction {
			continue
		}
		if length := sym.EndLine - sym.StartLine; length > maxFunctionLines {
			issues = append(issues, Issue{
				Category:    CategoryLargeFunction,
				Severity:    SeverityLow,
				Description: fmt.Sprintf("large function %q (%d lines)", sym.Name, length),
				Line:        sym.StartLine,
				Suggestion:  "break into smaller functions",
			})
		}
	}
	sortIssues(issues)
	return issues
}

// lineAt returns the 1-based line containing byte offset off.
func lineAt(src []byte, off int) int {
	return strings.Count(string(src[:off]), "\n") + 1
}

func codeAt(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Category < issues[j].Category
	})
}
