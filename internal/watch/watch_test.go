package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/depmap/internal/lang"
	"github.com/dusk-indust/depmap/internal/scan"
)

type update struct {
	analysis *scan.Analysis
	changed  []string
}

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	reg := lang.DefaultRegistry(nil)
	t.Cleanup(func() { _ = reg.Close() })
	s, err := scan.New(reg, scan.WithExcludeDirs("node_modules"))
	require.NoError(t, err)
	w, err := New(s, root, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	return w
}

func waitUpdate(t *testing.T, ch <-chan update) update {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for rebuild")
		return update{}
	}
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "utils.py"), []byte("def helper():\n    pass\n"), 0o644))

	w := newTestWatcher(t, root)
	updates := make(chan update, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(a *scan.Analysis, changed []string) {
			updates <- update{analysis: a, changed: changed}
		})
	}()

	initial := waitUpdate(t, updates)
	assert.Empty(t, initial.changed)
	assert.Equal(t, []string{"utils.py"}, initial.analysis.Files.Keys())

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("import utils\n"), 0o644))

	rebuilt := waitUpdate(t, updates)
	assert.Contains(t, rebuilt.changed, "main.py")
	assert.Equal(t, []string{"utils.py"}, rebuilt.analysis.Graph.Adjacency["main.py"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_InitialScanError(t *testing.T) {
	w := newTestWatcher(t, filepath.Join(t.TempDir(), "missing"))
	err := w.Run(context.Background(), func(*scan.Analysis, []string) {
		t.Fatal("handler must not run")
	})
	assert.Error(t, err)
}

func TestWatcher_Relevant(t *testing.T) {
	w := newTestWatcher(t, t.TempDir())

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"source write", fsnotify.Event{Name: "/r/a.py", Op: fsnotify.Write}, true},
		{"source remove", fsnotify.Event{Name: "/r/web/app.tsx", Op: fsnotify.Remove}, true},
		{"manifest", fsnotify.Event{Name: "/r/go.mod", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: "/r/a.py", Op: fsnotify.Chmod}, false},
		{"unsupported", fsnotify.Event{Name: "/r/notes.md", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.ev))
		})
	}
}
