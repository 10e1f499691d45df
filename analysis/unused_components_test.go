package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/includeguardian/analysis"
	"github.com/viant/includeguardian/graph"
)

// buildWIncludeForUnused mirrors spec.md §8 scenario 3 and scenario 7:
// two component-paired leaf pairs, both included by a single main file.
func buildWIncludeForUnused(t *testing.T) (*graph.Graph, map[string]graph.Handle) {
	t.Helper()
	g := graph.New()
	h := map[string]graph.Handle{}
	for _, name := range []string{"a.h", "a.c", "b.h", "b.c", "main.c"} {
		h[name] = g.AddNode(graph.Node{Path: name})
	}
	g.AddEdge(h["a.c"], h["a.h"], graph.Edge{IsRemovable: false})
	g.AddEdge(h["b.c"], h["b.h"], graph.Edge{IsRemovable: false})
	g.AddEdge(h["main.c"], h["a.h"], graph.Edge{IsRemovable: true})
	g.AddEdge(h["main.c"], h["b.h"], graph.Edge{IsRemovable: true})

	g.Node(h["a.h"]).Component = graph.NewComponent(h["a.c"])
	g.Node(h["a.c"]).Component = graph.NewComponent(h["a.h"])
	g.Node(h["b.h"]).Component = graph.NewComponent(h["b.c"])
	g.Node(h["b.c"]).Component = graph.NewComponent(h["b.h"])

	return g, h
}

func TestUnusedComponentsIncludedByAtMostOneReturnsBoth(t *testing.T) {
	g, h := buildWIncludeForUnused(t)
	sources := []graph.Handle{h["a.c"], h["b.c"]}

	results := analysis.UnusedComponents(g, sources, 1, 0)
	require.Len(t, results, 2)

	var paths []string
	for _, r := range results {
		paths = append(paths, r.Source.Path)
	}
	assert.ElementsMatch(t, []string{"a.c", "b.c"}, paths)
}

func TestUnusedComponentsIncludedByAtMostZeroReturnsNone(t *testing.T) {
	g, h := buildWIncludeForUnused(t)
	sources := []graph.Handle{h["a.c"], h["b.c"]}

	results := analysis.UnusedComponents(g, sources, 0, 0)
	assert.Empty(t, results)
}

func TestUnusedComponentsSkipsSourceWithoutAPeer(t *testing.T) {
	g := graph.New()
	a := g.AddNode(graph.Node{Path: "a.c"})

	results := analysis.UnusedComponents(g, []graph.Handle{a}, 10, 0)
	assert.Empty(t, results)
}
