package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/includeguardian/analysis"
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/reachability"
)

func TestExpensiveIncludesDiamond(t *testing.T) {
	g, idx, _, sources := buildDiamond(t)

	results := analysis.ExpensiveIncludes(g, idx, sources, 1)
	require.Len(t, results, 2)

	// Both directives are in a, so key each saving by the file it includes.
	byTo := map[string]int64{}
	for _, r := range results {
		byTo[g.Node(g.Edge(r.EdgeIdx).To).Path] = r.Saving.Tokens
	}
	assert.Equal(t, int64(10), byTo["b"])
}

func TestExpensiveIncludesDiamondSavings(t *testing.T) {
	g, idx, _, sources := buildDiamond(t)
	results := analysis.ExpensiveIncludes(g, idx, sources, 1)

	var savings []int64
	for _, r := range results {
		savings = append(savings, r.Saving.Tokens)
	}
	assert.ElementsMatch(t, []int64{10, 100}, savings)
}

func TestExpensiveIncludesNonRemovableIsSkipped(t *testing.T) {
	g := graph.New()
	a := g.AddNode(graph.Node{Path: "a"})
	b := g.AddNode(graph.Node{Path: "b"})
	g.AddEdge(a, b, graph.Edge{IsRemovable: false})

	idx, err := reachability.Build(g)
	require.NoError(t, err)
	results := analysis.ExpensiveIncludes(g, idx, []graph.Handle{a}, 0)
	assert.Empty(t, results)
}
