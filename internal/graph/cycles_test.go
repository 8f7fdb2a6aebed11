package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adjacencyGraph(adj map[string][]string) *DependencyGraph {
	return &DependencyGraph{Adjacency: adj, Links: []Link{}}
}

func TestFindCycles(t *testing.T) {
	dg := adjacencyGraph(map[string][]string{
		"a.py": {"b.py"},
		"b.py": {"c.py"},
		"c.py": {"a.py"},
		"d.py": {"d.py"},
		"e.py": {"a.py"},
		"f.py": {},
	})

	cycles, err := FindCycles(dg)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"a.py", "b.py", "c.py"},
		{"d.py"},
	}, cycles)
}

func TestFindCycles_Acyclic(t *testing.T) {
	dg := adjacencyGraph(map[string][]string{
		"main.py":  {"utils.py", "utils.py"},
		"utils.py": {},
	})

	cycles, err := FindCycles(dg)
	require.NoError(t, err)
	assert.Empty(t, cycles)

	none, err := FindCycles(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTopologicalOrder(t *testing.T) {
	dg := adjacencyGraph(map[string][]string{
		"app.ts":   {"api.ts", "util.ts"},
		"api.ts":   {"util.ts"},
		"util.ts":  {},
		"other.ts": {},
	})

	order, err := TopologicalOrder(dg)
	require.NoError(t, err)
	assert.Equal(t, []string{"other.ts", "util.ts", "api.ts", "app.ts"}, order)
}

func TestTopologicalOrder_Cyclic(t *testing.T) {
	dg := adjacencyGraph(map[string][]string{
		"a.py": {"b.py"},
		"b.py": {"a.py"},
	})

	_, err := TopologicalOrder(dg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclic))
}
