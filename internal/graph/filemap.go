package graph

import (
	"path"
	"sort"

	"github.com/dusk-indust/depmap/internal/lang"
)

// FileRecord is everything extracted from one analyzable workspace file.
type FileRecord struct {
	Path     string                 `json:"path"` // workspace-relative, forward slashes
	Language lang.Language          `json:"language"`
	Symbols  []lang.Symbol          `json:"symbols"`
	Imports  []lang.ImportReference `json:"imports"`
	Degraded bool                   `json:"degraded,omitempty"`
}

// FileMap holds FileRecords keyed by path. Keys iterate in sorted order, which
// is the order every resolution and graph step observes.
type FileMap struct {
	records map[string]FileRecord
	keys    []string
	dirs    map[string][]string
}

// NewFileMap builds a FileMap. A later record with the same path replaces an
// earlier one.
func NewFileMap(records ...FileRecord) *FileMap {
	fm := &FileMap{
		records: make(map[string]FileRecord, len(records)),
		dirs:    make(map[string][]string),
	}
	for _, r := range records {
		fm.records[r.Path] = r
	}
	fm.keys = make([]string, 0, len(fm.records))
	for k := range fm.records {
		fm.keys = append(fm.keys, k)
	}
	sort.Strings(fm.keys)
	for _, k := range fm.keys {
		dir := path.Dir(k)
		fm.dirs[dir] = append(fm.dirs[dir], k)
	}
	return fm
}

// Keys returns the sorted file paths. The slice must not be modified.
func (fm *FileMap) Keys() []string {
	if fm == nil {
		return nil
	}
	return fm.keys
}

// Len returns the number of files.
func (fm *FileMap) Len() int {
	if fm == nil {
		return 0
	}
	return len(fm.keys)
}

// Get returns the record for path.
func (fm *FileMap) Get(p string) (FileRecord, bool) {
	if fm == nil {
		return FileRecord{}, false
	}
	r, ok := fm.records[p]
	return r, ok
}

// Has reports whether path is a key.
func (fm *FileMap) Has(p string) bool {
	if fm == nil {
		return false
	}
	_, ok := fm.records[p]
	return ok
}

// Records returns every record in key order.
func (fm *FileMap) Records() []FileRecord {
	if fm == nil {
		return nil
	}
	out := make([]FileRecord, 0, len(fm.keys))
	for _, k := range fm.keys {
		out = append(out, fm.records[k])
	}
	return out
}

// FilesIn returns the sorted keys directly inside dir. The workspace root is
// "." or "".
func (fm *FileMap) FilesIn(dir string) []string {
	if fm == nil {
		return nil
	}
	if dir == "" {
		dir = "."
	}
	return fm.dirs[path.Clean(dir)]
}
