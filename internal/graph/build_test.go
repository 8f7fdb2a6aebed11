package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depmap/internal/lang"
)

// record builds a FileRecord importing raws, in order.
func record(p string, language lang.Language, raws ...string) FileRecord {
	rec := FileRecord{Path: p, Language: language}
	for _, r := range raws {
		rec.Imports = append(rec.Imports, lang.ImportReference{Raw: r})
	}
	return rec
}

func buildGraph(t *testing.T, records []FileRecord, opts ...ResolverOption) (*FileMap, *DependencyGraph) {
	t.Helper()
	files := NewFileMap(records...)
	dg := Build(files, NewResolver(files, newTestRegistry(t), opts...))
	return files, dg
}

func assertEdgeTargetsAreKeys(t *testing.T, files *FileMap, dg *DependencyGraph) {
	t.Helper()
	assert.Len(t, dg.Adjacency, files.Len(), "every file has an adjacency entry")
	for src, targets := range dg.Adjacency {
		assert.True(t, files.Has(src), "source %s", src)
		for _, dst := range targets {
			assert.True(t, files.Has(dst), "%s -> %s", src, dst)
		}
	}
}

func TestBuild_DottedResolution(t *testing.T) {
	files, dg := buildGraph(t, []FileRecord{
		record("main.py", lang.LangPython, "utils", "sub.lib"),
		record("utils.py", lang.LangPython),
		record("sub/lib.py", lang.LangPython),
	})

	assert.Equal(t, []string{"utils.py", "sub/lib.py"}, dg.Adjacency["main.py"])
	assert.Empty(t, dg.Adjacency["utils.py"])
	assert.NotNil(t, dg.Adjacency["utils.py"], "files without imports map to an empty list")
	assert.Equal(t, 2, dg.EdgeCount())
	assertEdgeTargetsAreKeys(t, files, dg)
}

func TestBuild_RelativeResolution(t *testing.T) {
	files, dg := buildGraph(t, []FileRecord{
		record("app.ts", lang.LangTypeScript, "./components/foo"),
		record("components/foo.ts", lang.LangTypeScript),
	})

	assert.Equal(t, []string{"components/foo.ts"}, dg.Adjacency["app.ts"])
	require.Len(t, dg.Links, 1)
	assert.Equal(t, Link{
		Source:     "app.ts",
		Target:     "components/foo.ts",
		Import:     "./components/foo",
		Method:     MethodRelative,
		Confidence: 0.9,
	}, dg.Links[0])
	assertEdgeTargetsAreKeys(t, files, dg)
}

func TestBuild_UnresolvedImport(t *testing.T) {
	files, dg := buildGraph(t, []FileRecord{
		record("main.py", lang.LangPython, "requests", "utils"),
		record("utils.py", lang.LangPython),
	})

	assert.Equal(t, []string{"utils.py"}, dg.Adjacency["main.py"])
	assert.Equal(t, map[string][]string{"main.py": {"requests"}}, dg.Unresolved)
	assertEdgeTargetsAreKeys(t, files, dg)
}

func TestBuild_KeepsDuplicatesAndSelfReferences(t *testing.T) {
	files, dg := buildGraph(t, []FileRecord{
		record("pkg/a.py", lang.LangPython, "pkg.b", "pkg.b", "pkg.a"),
		record("pkg/b.py", lang.LangPython),
	})

	assert.Equal(t, []string{"pkg/b.py", "pkg/b.py", "pkg/a.py"}, dg.Adjacency["pkg/a.py"])
	assert.Equal(t, 3, dg.EdgeCount())
	assert.Equal(t, []string{"pkg/a.py"}, dg.Dependents("pkg/b.py"), "dependents are deduplicated")
	assertEdgeTargetsAreKeys(t, files, dg)
}

func TestBuild_MixedLanguages(t *testing.T) {
	ws := &Workspace{GoModule: "example.com/shop"}
	files, dg := buildGraph(t, []FileRecord{
		record("service/user.go", lang.LangGo, "fmt", "example.com/shop/model"),
		record("model/user.go", lang.LangGo),
		record("tools/report.py", lang.LangPython, "json", ".helpers"),
		record("tools/helpers.py", lang.LangPython, "tools.report"),
		record("web/app.ts", lang.LangTypeScript, "./api"),
		record("web/api.ts", lang.LangTypeScript),
	}, WithWorkspace(ws), WithFuzzy(false))

	assert.Equal(t, []string{"model/user.go"}, dg.Adjacency["service/user.go"])
	assert.Equal(t, []string{"tools/helpers.py"}, dg.Adjacency["tools/report.py"])
	assert.Equal(t, []string{"tools/report.py"}, dg.Adjacency["tools/helpers.py"])
	assert.Equal(t, []string{"web/api.ts"}, dg.Adjacency["web/app.ts"])
	assert.Equal(t, []string{"fmt"}, dg.Unresolved["service/user.go"])
	assert.Equal(t, []string{"json"}, dg.Unresolved["tools/report.py"])
	assertEdgeTargetsAreKeys(t, files, dg)
}

func TestBuild_Deterministic(t *testing.T) {
	records := []FileRecord{
		record("c.py", lang.LangPython, "a", "b"),
		record("a.py", lang.LangPython, "b", "numpy"),
		record("b.py", lang.LangPython, "c"),
	}

	_, first := buildGraph(t, records)
	// Reversed input order must not change the result.
	reversed := []FileRecord{records[2], records[1], records[0]}
	_, second := buildGraph(t, reversed)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestBuild_EmptyWorkspace(t *testing.T) {
	_, dg := buildGraph(t, nil)
	assert.Empty(t, dg.Adjacency)
	assert.NotNil(t, dg.Links)
	assert.Zero(t, dg.EdgeCount())

	var nilGraph *DependencyGraph
	assert.Zero(t, nilGraph.EdgeCount())
	assert.Nil(t, nilGraph.Dependents("a.py"))
}

func TestFileMap(t *testing.T) {
	fm := NewFileMap(
		FileRecord{Path: "pkg/b.go", Language: lang.LangGo},
		FileRecord{Path: "pkg/a.go", Language: lang.LangGo},
		FileRecord{Path: "main.go", Language: lang.LangGo},
		FileRecord{Path: "pkg/a.go", Language: lang.LangGo, Degraded: true},
	)

	assert.Equal(t, []string{"main.go", "pkg/a.go", "pkg/b.go"}, fm.Keys())
	assert.Equal(t, 3, fm.Len())

	rec, ok := fm.Get("pkg/a.go")
	require.True(t, ok)
	assert.True(t, rec.Degraded, "the later record wins")

	assert.Equal(t, []string{"pkg/a.go", "pkg/b.go"}, fm.FilesIn("pkg"))
	assert.Equal(t, []string{"main.go"}, fm.FilesIn(""))
	assert.Empty(t, fm.FilesIn("missing"))

	var nilMap *FileMap
	assert.Zero(t, nilMap.Len())
	assert.False(t, nilMap.Has("main.go"))
	assert.Empty(t, nilMap.Records())
}
