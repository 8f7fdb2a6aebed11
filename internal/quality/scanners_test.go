package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depmap/internal/lang"
)

func defaultSecurity(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := CompileSecurity(DefaultSecurityRules())
	require.NoError(t, err)
	return rs
}

func defaultPerformance(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := CompilePerformance(DefaultPerformanceRules())
	require.NoError(t, err)
	return rs
}

func TestScanSecurity(t *testing.T) {
	rules := defaultSecurity(t)

	tests := []struct {
		name         string
		src          string
		wantCategory string
		wantSeverity Severity
		wantLine     int
	}{
		{"sql concatenation", "x = 1\ncursor.execute(\"SELECT * FROM users WHERE id = \" + uid)\n", CategorySQLInjection, SeverityHigh, 2},
		{"sql f-string", "db.query(f\"select name from t where id = {uid}\")\n", CategorySQLInjection, SeverityHigh, 1},
		{"os.system", "import os\n\nos.system(cmd)\n", CategoryCommandInjection, SeverityHigh, 3},
		{"shell=True", "subprocess.run(cmd, shell=True)\n", CategoryCommandInjection, SeverityHigh, 1},
		{"go sh -c", "out, _ := exec.Command(\"sh\", \"-c\", line).Output()\n", CategoryCommandInjection, SeverityHigh, 1},
		{"child_process", "child_process.execSync(cmd);\n", CategoryCommandInjection, SeverityHigh, 1},
		{"eval", "const v = eval(input);\n", "code_injection", SeverityMedium, 1},
		{"secret", "API_KEY = \"sk-1234567890\"\n", "hardcoded_secret", SeverityMedium, 1},
		{"pickle", "obj = pickle.loads(blob)\n", "insecure_deserialization", SeverityMedium, 1},
		{"md5", "h = hashlib.md5(data)\n", "weak_crypto", SeverityMedium, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ScanSecurity([]byte(tt.src), rules)
			require.Len(t, issues, 1, "%+v", issues)
			assert.Equal(t, tt.wantCategory, issues[0].Category)
			assert.Equal(t, tt.wantSeverity, issues[0].Severity)
			assert.Equal(t, tt.wantLine, issues[0].Line)
			assert.NotEmpty(t, issues[0].Description)
		})
	}
}

func TestScanSecurity_CodeSnippetAndOrder(t *testing.T) {
	src := []byte("def run(cmd):\n    os.system(cmd)\n    return eval(cmd)\n")

	issues := ScanSecurity(src, defaultSecurity(t))
	require.Len(t, issues, 2)
	assert.Equal(t, Issue{
		Category:    CategoryCommandInjection,
		Severity:    SeverityHigh,
		Description: "shell command via os.system",
		Line:        2,
		Code:        "os.system(cmd)",
	}, issues[0])
	assert.Equal(t, 3, issues[1].Line)
	assert.Equal(t, "return eval(cmd)", issues[1].Code)
}

func TestScanSecurity_CleanAndNil(t *testing.T) {
	src := []byte("import yaml\nyaml.safe_load(data)\nh = hashlib.sha256(data)\n")
	assert.Empty(t, ScanSecurity(src, defaultSecurity(t)))
	assert.Nil(t, ScanSecurity(src, nil))
	assert.Nil(t, ScanSecurity(nil, defaultSecurity(t)))
}

func TestPerformanceIssues(t *testing.T) {
	rules := defaultPerformance(t)

	tests := []struct {
		name         string
		src          string
		wantCategory string
		wantLine     int
	}{
		{"nested python loop", "for a in xs:\n    for b in ys:\n        pass\n", "nested_loop", 1},
		{"nested go loop", "func f() {\n\tfor i := 0; i < n; i++ {\n\t\tfor j := range m {\n\t\t}\n\t}\n}\n", "nested_loop", 2},
		{"query in loop", "for u in users:\n    cursor.execute(sql, u)\n", "query_in_loop", 1},
		{"sleep", "time.Sleep(time.Second)\n", "blocking_sleep", 1},
		{"select star", "q = \"select * from orders\"\n", "select_star", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := PerformanceIssues([]byte(tt.src), nil, rules, 0)
			require.Len(t, issues, 1, "%+v", issues)
			assert.Equal(t, tt.wantCategory, issues[0].Category)
			assert.Equal(t, SeverityMedium, issues[0].Severity)
			assert.Equal(t, tt.wantLine, issues[0].Line)
			assert.NotEmpty(t, issues[0].Suggestion)
		})
	}
}

func TestPerformanceIssues_LargeFunction(t *testing.T) {
	symbols := []lang.Symbol{
		fn("big", 10, 71),
		fn("small", 80, 90),
		{Name: "Huge", Kind: lang.SymbolKindClass, StartLine: 1, EndLine: 500},
	}

	issues := PerformanceIssues(nil, symbols, nil, 0)
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{
		Category:    CategoryLargeFunction,
		Severity:    SeverityLow,
		Description: `large function "big" (61 lines)`,
		Line:        10,
		Suggestion:  "break into smaller functions",
	}, issues[0])

	assert.Len(t, PerformanceIssues(nil, symbols, nil, 5), 2)
}

func TestRules_MergeAndCompile(t *testing.T) {
	base := DefaultSecurityRules()
	merged := base.Merge(Rules{
		"weak_crypto": {{Pattern: `\bdes\b`, Description: "DES cipher"}},
		"custom":      {{Pattern: `danger\(`}},
	})

	assert.Len(t, merged["weak_crypto"], 1)
	assert.Equal(t, "DES cipher", merged["weak_crypto"][0].Description)
	assert.Contains(t, merged, "custom")
	assert.Contains(t, merged, CategorySQLInjection)
	assert.Equal(t, `\b(md5|sha1)\s*[.(]`, base["weak_crypto"][0].Pattern, "base is not modified")

	rs, err := CompileSecurity(merged)
	require.NoError(t, err)
	issues := ScanSecurity([]byte("DANGER(x)\nuse DES here\nmd5(x)\n"), rs)
	require.Len(t, issues, 2)
	assert.Equal(t, "custom", issues[0].Category)
	assert.Equal(t, "weak_crypto", issues[1].Category)

	_, err = CompilePerformance(Rules{"broken": {{Pattern: `(`}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestCheck_WithScanners(t *testing.T) {
	src := []byte("def run(cmd):\n    for a in cmd:\n        for b in a:\n            os.system(b)\n")
	symbols := []lang.Symbol{fn("run", 1, 4)}

	r := Check(src, symbols, Options{Language: lang.LangPython})
	assert.Empty(t, r.Security)
	assert.Empty(t, r.Performance)

	r = Check(src, symbols, Options{
		Language:    lang.LangPython,
		Security:    defaultSecurity(t),
		Performance: defaultPerformance(t),
	})
	require.Len(t, r.Security, 1)
	assert.Equal(t, 4, r.Security[0].Line)
	require.Len(t, r.Performance, 1)
	assert.Equal(t, "nested_loop", r.Performance[0].Category)
	assert.Equal(t, 2, r.Performance[0].Line)
}
