package graph

import (
	"path"
	"strings"

	"github.com/dusk-indust/depmap/internal/lang"
)

// Resolution is the outcome of resolving one import reference.
type Resolution struct {
	Target     string  `json:"target"`
	Method     Method  `json:"method"`
	Confidence float64 `json:"confidence"`
}

// Resolver maps raw import references to FileMap keys. It is built once per
// FileMap snapshot, after the scan has finished, and is safe for concurrent
// use because it only reads.
type Resolver struct {
	files    *FileMap
	registry *lang.Registry
	view     workspaceView
	fuzzy    bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFuzzy enables or disables the substring fallback. It is on by default.
func WithFuzzy(enabled bool) ResolverOption {
	return func(r *Resolver) { r.fuzzy = enabled }
}

// WithWorkspace supplies manifest metadata (go.mod module path, JS workspace
// packages) for package-aware resolution.
func WithWorkspace(ws *Workspace) ResolverOption {
	return func(r *Resolver) { r.view.ws = ws }
}

// NewResolver builds a Resolver over files. The registry supplies each
// source file's import convention; a nil registry limits resolution to the
// exact and fuzzy steps.
func NewResolver(files *FileMap, registry *lang.Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		files:    files,
		registry: registry,
		view:     workspaceView{files: files},
		fuzzy:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps raw, imported from sourceKey, to a FileMap key. The steps run
// in a fixed order and the first hit wins:
//
//  1. exact: raw is itself a key.
//  2. module: the source language's module-style candidates.
//  3. relative: candidates computed from the source file's directory.
//  4. fuzzy: the first key, in sorted order, containing raw. Relative
//     references skip this step.
//
// An empty raw string never resolves.
func (r *Resolver) Resolve(raw, sourceKey string) (Resolution, bool) {
	if raw == "" {
		return Resolution{}, false
	}
	if r.files.Has(raw) {
		return resolved(raw, MethodExact), true
	}

	conv := r.convention(sourceKey)
	if target, ok := r.firstKnown(conv.ModuleCandidates(raw, sourceKey, r.view)); ok {
		return resolved(target, MethodModule), true
	}
	if target, ok := r.firstKnown(conv.RelativeCandidates(raw, sourceKey, r.view)); ok {
		return resolved(target, MethodRelative), true
	}

	// A relative reference that path arithmetic missed names no module, so
	// a substring match could only hit an unrelated file.
	if r.fuzzy && !lang.IsRelative(raw) {
		for _, key := range r.files.Keys() {
			if strings.Contains(key, raw) {
				return resolved(key, MethodFuzzy), true
			}
		}
	}
	return Resolution{}, false
}

func resolved(target string, m Method) Resolution {
	return Resolution{Target: target, Method: m, Confidence: m.Confidence()}
}

// convention picks the import convention of the source file's language,
// falling back to its extension when the record is unknown.
func (r *Resolver) convention(sourceKey string) lang.ImportConvention {
	if r.registry == nil {
		return (*lang.Grammar)(nil).Imports()
	}
	if rec, ok := r.files.Get(sourceKey); ok && rec.Language != "" {
		if g := r.registry.Grammar(rec.Language); g != nil {
			return g.Imports()
		}
	}
	return r.registry.GrammarFor(path.Ext(sourceKey)).Imports()
}

// firstKnown returns the first candidate that is a FileMap key.
func (r *Resolver) firstKnown(candidates []string) (string, bool) {
	for _, c := range candidates {
		if r.files.Has(c) {
			return c, true
		}
	}
	return "", false
}
