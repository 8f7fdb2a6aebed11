package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestDetectWorkspace_GoModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "// comment\nmodule \"example.com/tool\"\n\ngo 1.22\n")

	ws := DetectWorkspace(root)
	assert.Equal(t, root, ws.Root)
	assert.Equal(t, "example.com/tool", ws.GoModule)
	assert.Empty(t, ws.Packages)
}

func TestDetectWorkspace_Packages(t *testing.T) {
	ws := DetectWorkspace("../../testdata/fixtures/ts_monorepo")
	require.Len(t, ws.Packages, 2)

	db := ws.Packages[0]
	assert.Equal(t, "@test/db", db.Name)
	assert.Equal(t, "packages/db", db.Dir)
	assert.Equal(t, "packages/db/src/index.ts", db.Entries[0])
	assert.Equal(t, map[string]string{"./queries": "packages/db/src/queries.ts"}, db.Subpaths)

	logger := ws.Packages[1]
	assert.Equal(t, "@test/logger", logger.Name)
	assert.Equal(t, []string{"packages/logger/src/index", "packages/logger/index"}, logger.Entries)
}

func TestDetectWorkspace_ObjectPatternsAndMain(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"workspaces": {"packages": ["libs/*"]}}`)
	writeFile(t, root, "libs/core/package.json", `{"name": "core", "main": "lib/main.js"}`)
	writeFile(t, root, "libs/broken/package.json", `{not json`)
	writeFile(t, root, "libs/README.md", "not a package")

	ws := DetectWorkspace(root)
	require.Len(t, ws.Packages, 1)
	assert.Equal(t, "core", ws.Packages[0].Name)
	assert.Equal(t, []string{"libs/core/lib/main.js", "libs/core/src/index", "libs/core/index"}, ws.Packages[0].Entries)
}

func TestWorkspaceView_PackageEntries(t *testing.T) {
	ws := &Workspace{Packages: []PackageManifest{{
		Name:     "@acme/ui",
		Dir:      "packages/ui",
		Entries:  []string{"packages/ui/src/index"},
		Subpaths: map[string]string{"./button": "packages/ui/src/button/index.tsx"},
	}}}
	v := workspaceView{ws: ws}

	assert.Equal(t, []string{"packages/ui/src/index"}, v.PackageEntries("@acme/ui"))
	assert.Equal(t, []string{"packages/ui/src/button/index.tsx"}, v.PackageEntries("@acme/ui/button"))
	assert.Equal(t, []string{"packages/ui/theme", "packages/ui/src/theme"}, v.PackageEntries("@acme/ui/theme"))
	assert.Nil(t, v.PackageEntries("@acme/uikit"))
	assert.Nil(t, workspaceView{}.PackageEntries("@acme/ui"))
	assert.Empty(t, workspaceView{}.GoModule())
}
