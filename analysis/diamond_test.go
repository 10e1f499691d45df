package analysis_test

import (
	"testing"

	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/reachability"
)

// buildDiamond mirrors spec.md §8 scenario 1: a→b, a→c, b→d, c→d, each
// node costing 10ⁿ tokens (a=1, b=10, c=100, d=1000), source={a}.
func buildDiamond(t *testing.T) (*graph.Graph, *reachability.Index, map[string]graph.Handle, []graph.Handle) {
	t.Helper()
	g := graph.New()
	h := map[string]graph.Handle{}
	costs := map[string]int64{"a": 1, "b": 10, "c": 100, "d": 1000}
	for _, name := range []string{"a", "b", "c", "d"} {
		h[name] = g.AddNode(graph.Node{Path: name, UnderlyingCost: cost.Cost{Tokens: costs[name]}})
	}
	g.AddEdge(h["a"], h["b"], graph.Edge{IsRemovable: true})
	g.AddEdge(h["a"], h["c"], graph.Edge{IsRemovable: true})
	g.AddEdge(h["b"], h["d"], graph.Edge{IsRemovable: true})
	g.AddEdge(h["c"], h["d"], graph.Edge{IsRemovable: true})

	idx, err := reachability.Build(g)
	if err != nil {
		t.Fatalf("reachability.Build: %v", err)
	}
	return g, idx, h, []graph.Handle{h["a"]}
}
