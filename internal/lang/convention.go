package lang

import (
	"path"
	"strings"
)

// Workspace is the view of the scanned file set an ImportConvention may
// consult while generating candidates. It never touches the filesystem.
type Workspace interface {
	// GoModule returns the module path declared in the workspace go.mod, or "".
	GoModule() string
	// FilesIn returns the sorted keys of files directly inside dir ("" or "."
	// for the workspace root).
	FilesIn(dir string) []string
	// PackageEntries returns extensionless entry paths for a package name or
	// package subpath declared by the workspace's JS package manifests.
	PackageEntries(spec string) []string
}

// ImportConvention describes how one language spells references to other
// files. Implementations return complete candidate keys in priority order;
// the resolver accepts the first candidate present in the file map.
type ImportConvention interface {
	// ModuleCandidates maps a module-style reference (a.b.c, crate::a::b,
	// example.com/mod/pkg) to candidate keys. Relative references yield nil.
	ModuleCandidates(raw, sourceKey string, ws Workspace) []string
	// RelativeCandidates maps a relative reference to candidate keys computed
	// from the importing file's directory. Non-relative references yield nil.
	RelativeCandidates(raw, sourceKey string, ws Workspace) []string
}

// --- dotted modules (Python, Java, and the generic JS/TS module step) ---

// dottedConvention maps a.b.c to a/b/c plus each extension, under each root.
type dottedConvention struct {
	extensions []string
	roots      []string
	// trim also tries every shorter prefix of the path (member imports).
	trim bool
	// relative enables path-style ./ and ../ references.
	relative   bool
	relExts    []string
	pyRelative bool
	// packages consults workspace package manifests before the dotted rule.
	packages bool
}

func (c dottedConvention) ModuleCandidates(raw, _ string, ws Workspace) []string {
	if raw == "" || strings.HasPrefix(raw, ".") {
		return nil
	}
	var out []string
	if c.packages && ws != nil {
		for _, entry := range ws.PackageEntries(raw) {
			out = append(out, withBase(entry, c.relExts)...)
		}
	}
	segments := strings.Split(raw, ".")
	return append(out, expand(prefixBases(segments, c.trim), c.roots, c.extensions)...)
}

func (c dottedConvention) RelativeCandidates(raw, sourceKey string, _ Workspace) []string {
	switch {
	case c.pyRelative && strings.HasPrefix(raw, "."):
		return pythonRelative(raw, sourceKey)
	case c.relative && isPathRelative(raw):
		base := path.Join(path.Dir(sourceKey), raw)
		return withBase(base, c.relExts)
	}
	return nil
}

// pythonRelative resolves package-relative references such as .mod, ..pkg.mod
// and bare dots. One dot is the importing file's own package; every further
// dot climbs one directory.
func pythonRelative(raw, sourceKey string) []string {
	dots := 0
	for dots < len(raw) && raw[dots] == '.' {
		dots++
	}
	modulePart := raw[dots:]

	baseDir := path.Dir(sourceKey)
	for i := 1; i < dots; i++ {
		baseDir = path.Dir(baseDir)
	}

	if modulePart == "" {
		return withBase(path.Join(baseDir, "__init__"), []string{".py"})[1:]
	}
	base := path.Join(baseDir, strings.ReplaceAll(modulePart, ".", "/"))
	return withBase(base, []string{".py", "/__init__.py"})
}

// --- Go ---

// goConvention resolves import paths below the workspace module to the first
// non-test source file of the package directory.
type goConvention struct{}

func (goConvention) ModuleCandidates(raw, _ string, ws Workspace) []string {
	if ws == nil {
		return nil
	}
	mod := ws.GoModule()
	if mod == "" {
		return nil
	}
	var dir string
	switch {
	case raw == mod:
		dir = "."
	case strings.HasPrefix(raw, mod+"/"):
		dir = strings.TrimPrefix(raw, mod+"/")
	default:
		return nil
	}
	return firstGoFile(ws, dir)
}

func (goConvention) RelativeCandidates(raw, sourceKey string, ws Workspace) []string {
	if ws == nil || !isPathRelative(raw) {
		return nil
	}
	return firstGoFile(ws, path.Join(path.Dir(sourceKey), raw))
}

func firstGoFile(ws Workspace, dir string) []string {
	for _, f := range ws.FilesIn(dir) {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			return []string{f}
		}
	}
	return nil
}

// --- Rust ---

// rustConvention understands crate::, self:: and super:: paths.
type rustConvention struct{}

var rustExtensions = []string{".rs", "/mod.rs"}

func (rustConvention) ModuleCandidates(raw, sourceKey string, _ Workspace) []string {
	p := cleanRustPath(raw)
	if p == "" || rustRelative(p) {
		return nil
	}
	p = strings.TrimPrefix(p, "crate::")

	roots := []string{"src/", ""}
	if crate := findCrateRoot(sourceKey); crate != "" && crate != "src" {
		roots = append([]string{crate + "/"}, roots...)
	}
	return expand(prefixBases(strings.Split(p, "::"), true), roots, rustExtensions)
}

func (rustConvention) RelativeCandidates(raw, sourceKey string, _ Workspace) []string {
	p := cleanRustPath(raw)
	dir := path.Dir(sourceKey)
	switch {
	case hasRustKeyword(p, "self"):
		p = trimRustKeyword(p, "self")
	case hasRustKeyword(p, "super"):
		for hasRustKeyword(p, "super") {
			p = trimRustKeyword(p, "super")
			dir = path.Dir(dir)
		}
	default:
		return nil
	}
	if p == "" {
		return rustModuleFiles(dir, sourceKey)
	}
	var out []string
	for _, base := range prefixBases(strings.Split(p, "::"), true) {
		out = append(out, withBase(path.Join(dir, base), rustExtensions)[1:]...)
	}
	return out
}

// cleanRustPath drops use-list braces, glob suffixes, and aliases.
func cleanRustPath(raw string) string {
	p := strings.TrimSpace(raw)
	if i := strings.Index(p, "::{"); i >= 0 {
		p = p[:i]
	}
	if i := strings.Index(p, " as "); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSuffix(p, "::*")
	return strings.TrimPrefix(p, "::")
}

// rustRelative reports whether a cleaned path starts at self or super.
func rustRelative(p string) bool {
	return hasRustKeyword(p, "self") || hasRustKeyword(p, "super")
}

// hasRustKeyword reports whether p is kw alone or starts with kw::.
func hasRustKeyword(p, kw string) bool {
	return p == kw || strings.HasPrefix(p, kw+"::")
}

func trimRustKeyword(p, kw string) string {
	return strings.TrimPrefix(strings.TrimPrefix(p, kw), "::")
}

// rustModuleFiles lists the files that can define the module whose
// directory is dir. A bare self or super names that module itself, so the
// importing file is never a candidate.
func rustModuleFiles(dir, sourceKey string) []string {
	candidates := []string{path.Join(dir, "mod.rs")}
	if dir != "." {
		candidates = append(candidates, dir+".rs")
	}
	if dir == "." || path.Base(dir) == "src" {
		candidates = append(candidates, path.Join(dir, "lib.rs"), path.Join(dir, "main.rs"))
	}
	out := candidates[:0]
	for _, c := range candidates {
		if c != sourceKey {
			out = append(out, c)
		}
	}
	return out
}

// findCrateRoot returns the nearest enclosing "src" directory of key, or "".
func findCrateRoot(key string) string {
	dir := path.Dir(key)
	for dir != "." && dir != "/" && dir != "" {
		if path.Base(dir) == "src" {
			return dir
		}
		dir = path.Dir(dir)
	}
	return ""
}

// --- fallback ---

type noConvention struct{}

func (noConvention) ModuleCandidates(string, string, Workspace) []string   { return nil }
func (noConvention) RelativeCandidates(string, string, Workspace) []string { return nil }

// --- helpers ---

// IsRelative reports whether raw is spelled relative to the importing file:
// a leading dot (./x, ../x, Python's .mod and bare dots) or a Rust self or
// super path. Such references resolve by path arithmetic or not at all.
func IsRelative(raw string) bool {
	if strings.HasPrefix(raw, ".") {
		return true
	}
	return rustRelative(cleanRustPath(raw))
}

func isPathRelative(raw string) bool {
	return raw == "." || raw == ".." || strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../")
}

// prefixBases joins segments with "/"; with trim it also yields every shorter
// prefix, longest first.
func prefixBases(segments []string, trim bool) []string {
	var out []string
	for n := len(segments); n >= 1; n-- {
		if base := strings.Join(segments[:n], "/"); base != "" {
			out = append(out, base)
		}
		if !trim {
			break
		}
	}
	return out
}

// expand produces root+base+ext for every base, root, and extension in order.
func expand(bases, roots, exts []string) []string {
	if len(roots) == 0 {
		roots = []string{""}
	}
	var out []string
	for _, base := range bases {
		for _, root := range roots {
			for _, ext := range exts {
				out = append(out, root+base+ext)
			}
		}
	}
	return out
}

// withBase returns base itself followed by base+ext for each extension.
// Leading "./" left by joins against the workspace root is removed.
func withBase(base string, exts []string) []string {
	out := make([]string, 0, len(exts)+1)
	out = append(out, strings.TrimPrefix(base, "./"))
	for _, ext := range exts {
		out = append(out, strings.TrimPrefix(base+ext, "./"))
	}
	return out
}
