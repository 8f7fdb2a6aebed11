package graph

import (
	"bufio"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Workspace holds project metadata read from manifests at the workspace root.
// It feeds package-aware resolution and is never required: a zero Workspace
// resolves with the plain per-language rules.
type Workspace struct {
	Root     string
	GoModule string
	Packages []PackageManifest // sorted by name
}

// PackageManifest describes one npm/bun workspace package.
type PackageManifest struct {
	Name string
	Dir  string // workspace-relative directory (e.g. "packages/db")
	// Entries are base paths for the bare package name, in priority order.
	// The resolver tries each as-is and with the script extensions.
	Entries []string
	// Subpaths maps export keys ("./queries") to workspace-relative targets.
	Subpaths map[string]string
}

// DetectWorkspace reads go.mod and package.json workspaces under root.
// Missing or malformed manifests are ignored.
func DetectWorkspace(root string) *Workspace {
	ws := &Workspace{Root: root}
	ws.GoModule = readGoModule(filepath.Join(root, "go.mod"))
	ws.Packages = scanPackageWorkspaces(root)
	return ws
}

// readGoModule returns the module path declared in a go.mod file, or "".
func readGoModule(modPath string) string {
	f, err := os.Open(modPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module")), `"`)
		}
	}
	return ""
}

// --- package.json workspaces ---

// packageJSON is a minimal representation for reading package.json files.
type packageJSON struct {
	Name       string          `json:"name"`
	Main       string          `json:"main"`
	Workspaces json.RawMessage `json:"workspaces"`
	Exports    json.RawMessage `json:"exports"`
}

func scanPackageWorkspaces(root string) []PackageManifest {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}

	var out []PackageManifest
	for _, pattern := range parseWorkspacePatterns(pkg.Workspaces) {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			continue
		}
		for _, dir := range matches {
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			if m, ok := loadPackageManifest(root, dir); ok {
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func parseWorkspacePatterns(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	// Array of globs: ["packages/*", "apps/*"]
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}

	// Object with a "packages" key: {"packages": ["packages/*"]}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Packages
	}
	return nil
}

func loadPackageManifest(root, absDir string) (PackageManifest, bool) {
	data, err := os.ReadFile(filepath.Join(absDir, "package.json"))
	if err != nil {
		return PackageManifest{}, false
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.Name == "" {
		return PackageManifest{}, false
	}
	relDir, err := filepath.Rel(root, absDir)
	if err != nil {
		return PackageManifest{}, false
	}
	relDir = filepath.ToSlash(relDir)

	m := PackageManifest{
		Name:     pkg.Name,
		Dir:      relDir,
		Subpaths: make(map[string]string),
	}

	main := parseExports(&m, pkg.Exports)
	if main != "" {
		m.Entries = append(m.Entries, main)
	}
	if pkg.Main != "" {
		m.Entries = append(m.Entries, path.Join(relDir, pkg.Main))
	}
	m.Entries = append(m.Entries, path.Join(relDir, "src", "index"), path.Join(relDir, "index"))
	return m, true
}

// parseExports fills m.Subpaths and returns the "." export target, if any.
func parseExports(m *PackageManifest, raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	// A plain string: "exports": "./src/index.ts"
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return path.Join(m.Dir, str)
	}

	// An object: {".": "./src/index.ts", "./queries": "./src/queries.ts"}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	var main string
	for key, val := range obj {
		target := resolveExportValue(val)
		if target == "" {
			continue
		}
		resolved := path.Join(m.Dir, target)
		if key == "." {
			main = resolved
		} else {
			m.Subpaths[key] = resolved
		}
	}
	return main
}

// resolveExportValue extracts a file path from an export value, which can be
// a string or a conditional object {"import": "...", "require": "...", "default": "..."}.
func resolveExportValue(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	for _, key := range []string{"import", "default", "require"} {
		if v, ok := obj[key]; ok {
			// Conditional values can themselves be strings or nested objects.
			return resolveExportValue(v)
		}
	}
	return ""
}

// --- resolver view ---

// workspaceView adapts a FileMap plus Workspace metadata to lang.Workspace.
type workspaceView struct {
	files *FileMap
	ws    *Workspace
}

func (v workspaceView) GoModule() string {
	if v.ws == nil {
		return ""
	}
	return v.ws.GoModule
}

func (v workspaceView) FilesIn(dir string) []string {
	return v.files.FilesIn(dir)
}

func (v workspaceView) PackageEntries(spec string) []string {
	if v.ws == nil {
		return nil
	}
	for _, m := range v.ws.Packages {
		if spec == m.Name {
			return m.Entries
		}
		if rest, ok := strings.CutPrefix(spec, m.Name+"/"); ok {
			if target, ok := m.Subpaths["./"+rest]; ok {
				return []string{target}
			}
			return []string{path.Join(m.Dir, rest), path.Join(m.Dir, "src", rest)}
		}
	}
	return nil
}
