package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubWorkspace is a fixed directory listing.
type stubWorkspace struct {
	module   string
	dirs     map[string][]string
	packages map[string][]string
}

func (w stubWorkspace) GoModule() string { return w.module }

func (w stubWorkspace) FilesIn(dir string) []string {
	if dir == "" {
		dir = "."
	}
	return w.dirs[dir]
}

func (w stubWorkspace) PackageEntries(spec string) []string { return w.packages[spec] }

func TestPythonConvention(t *testing.T) {
	c := pythonDefinition().Imports

	assert.Equal(t, []string{
		"sub/lib.py", "sub/lib/__init__.py",
		"src/sub/lib.py", "src/sub/lib/__init__.py",
	}, c.ModuleCandidates("sub.lib", "main.py", nil))

	assert.Nil(t, c.ModuleCandidates(".sibling", "pkg/a.py", nil), "relative markers skip the module step")
	assert.Nil(t, c.ModuleCandidates("", "main.py", nil))

	tests := []struct {
		raw, source string
		want        []string
	}{
		{".sibling", "pkg/a.py", []string{"pkg/sibling", "pkg/sibling.py", "pkg/sibling/__init__.py"}},
		{"..util.io", "pkg/sub/a.py", []string{"pkg/util/io", "pkg/util/io.py", "pkg/util/io/__init__.py"}},
		{".", "pkg/a.py", []string{"pkg/__init__.py"}},
		{".", "a.py", []string{"__init__.py"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.RelativeCandidates(tt.raw, tt.source, nil), tt.raw)
	}
	assert.Nil(t, c.RelativeCandidates("os", "main.py", nil))
}

func TestScriptConvention(t *testing.T) {
	c := typescriptDefinition().Imports

	rel := c.RelativeCandidates("./components/foo", "app.ts", nil)
	assert.Equal(t, "components/foo", rel[0], "the base itself is tried first")
	assert.Contains(t, rel, "components/foo.ts")
	assert.Contains(t, rel, "components/foo/index.tsx")

	rel = c.RelativeCandidates("../shared/util", "src/app/main.tsx", nil)
	assert.Contains(t, rel, "src/shared/util.ts")

	rel = c.RelativeCandidates(".", "src/index.ts", nil)
	assert.Contains(t, rel, "src/index.ts")

	assert.Nil(t, c.RelativeCandidates("react", "app.ts", nil))
	assert.Nil(t, c.ModuleCandidates("./foo", "app.ts", nil))
	assert.Equal(t, []string{"lib/util.ts", "lib/util.tsx", "lib/util.js", "lib/util.jsx"},
		c.ModuleCandidates("lib.util", "app.ts", nil))

	ws := stubWorkspace{packages: map[string][]string{"@acme/db": {"packages/db/src/index"}}}
	got := c.ModuleCandidates("@acme/db", "apps/web/main.ts", ws)
	assert.Equal(t, "packages/db/src/index", got[0], "package entries come before the dotted rule")
	assert.Contains(t, got, "packages/db/src/index.ts")
}

func TestJavaConvention_TrimsMembers(t *testing.T) {
	c := javaDefinition().Imports

	got := c.ModuleCandidates("com.example.Util.helper", "App.java", nil)
	assert.Equal(t, "com/example/Util/helper.java", got[0])
	assert.Contains(t, got, "src/main/java/com/example/Util.java")
	assert.Nil(t, c.RelativeCandidates("./x", "App.java", nil))
}

func TestGoConvention(t *testing.T) {
	c := goDefinition().Imports
	ws := stubWorkspace{
		module: "example.com/app",
		dirs: map[string][]string{
			".":            {"main.go"},
			"internal/svc": {"internal/svc/a_test.go", "internal/svc/b.go", "internal/svc/c.go"},
		},
	}

	assert.Equal(t, []string{"internal/svc/b.go"}, c.ModuleCandidates("example.com/app/internal/svc", "main.go", ws))
	assert.Equal(t, []string{"main.go"}, c.ModuleCandidates("example.com/app", "internal/svc/b.go", ws))
	assert.Nil(t, c.ModuleCandidates("example.com/application", "main.go", ws), "prefix must end at a path boundary")
	assert.Nil(t, c.ModuleCandidates("fmt", "main.go", ws))
	assert.Nil(t, c.ModuleCandidates("example.com/app/missing", "main.go", ws))
	assert.Nil(t, c.ModuleCandidates("example.com/app", "main.go", stubWorkspace{}), "no go.mod")
	assert.Nil(t, c.ModuleCandidates("example.com/app", "main.go", nil))

	assert.Equal(t, []string{"internal/svc/b.go"}, c.RelativeCandidates("./internal/svc", "main.go", ws))
}

func TestRustConvention(t *testing.T) {
	c := rustDefinition().Imports

	got := c.ModuleCandidates("crate::model::User", "src/main.rs", nil)
	assert.Equal(t, "src/model/User.rs", got[0])
	assert.Contains(t, got, "src/model.rs")
	assert.Contains(t, got, "src/model/mod.rs")

	got = c.ModuleCandidates("crate::db::{Pool, Conn}", "server/src/lib.rs", nil)
	assert.Equal(t, "server/src/db.rs", got[0], "crate root of the importing file comes first")

	assert.Nil(t, c.ModuleCandidates("self::child", "src/lib.rs", nil))
	assert.Nil(t, c.ModuleCandidates("super::sibling", "src/a/b.rs", nil))

	assert.Contains(t, c.RelativeCandidates("self::child::Thing", "src/lib.rs", nil), "src/child.rs")
	assert.Contains(t, c.RelativeCandidates("super::sibling", "src/a/b.rs", nil), "src/sibling.rs")
	assert.Contains(t, c.RelativeCandidates("super::super::top", "src/a/b/c.rs", nil), "src/top.rs")
	assert.Nil(t, c.RelativeCandidates("crate::x", "src/lib.rs", nil))

	assert.Nil(t, c.ModuleCandidates("super::*", "src/a/b.rs", nil))
	assert.Equal(t, []string{"src/mod.rs", "src.rs", "src/lib.rs", "src/main.rs"},
		c.RelativeCandidates("super::*", "src/a/b.rs", nil))
	assert.Equal(t, []string{"src/a/mod.rs", "src/a.rs"}, c.RelativeCandidates("self::*", "src/a/b.rs", nil))
	assert.Equal(t, []string{"src/a.rs"}, c.RelativeCandidates("self", "src/a/mod.rs", nil))
}

func TestIsRelative(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{".", true},
		{"..", true},
		{"./api", true},
		{"../lib/util", true},
		{".models", true},
		{"self::*", true},
		{"super", true},
		{"super::model::User", true},
		{"crate::model", false},
		{"superuser", false},
		{"selfish::x", false},
		{"tools.report", false},
		{"react", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRelative(tt.raw), tt.raw)
	}
}

func TestCleanRustPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"crate::a::{B, C}", "crate::a"},
		{"std::io::*", "std::io"},
		{"crate::a::B as C", "crate::a::B"},
		{"::serde::Deserialize", "serde::Deserialize"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanRustPath(tt.in), tt.in)
	}
}

func TestNoConvention(t *testing.T) {
	var c ImportConvention = noConvention{}
	assert.Nil(t, c.ModuleCandidates("a.b", "x", nil))
	assert.Nil(t, c.RelativeCandidates("./a", "x", nil))
}
