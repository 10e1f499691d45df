package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
)

func buildDiamond(t *testing.T) (*graph.Graph, map[string]graph.Handle) {
	t.Helper()
	g := graph.New()
	handles := map[string]graph.Handle{}
	for _, name := range []string{"a", "b", "c", "d"} {
		handles[name] = g.AddNode(graph.Node{Path: name})
	}
	g.AddEdge(handles["a"], handles["b"], graph.Edge{IsRemovable: true, LineNumber: 1})
	g.AddEdge(handles["a"], handles["c"], graph.Edge{IsRemovable: true, LineNumber: 2})
	g.AddEdge(handles["b"], handles["d"], graph.Edge{IsRemovable: true, LineNumber: 1})
	g.AddEdge(handles["c"], handles["d"], graph.Edge{IsRemovable: true, LineNumber: 1})
	return g, handles
}

func TestAddNodeDenseHandles(t *testing.T) {
	g, handles := buildDiamond(t)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, graph.Handle(0), handles["a"])
	assert.Equal(t, graph.Handle(3), handles["d"])
}

func TestOutInDegree(t *testing.T) {
	g, h := buildDiamond(t)
	assert.Equal(t, 2, g.OutDegree(h["a"]))
	assert.Equal(t, 0, g.OutDegree(h["d"]))
	assert.Equal(t, 2, g.InDegree(h["d"]))
	assert.Equal(t, 0, g.InDegree(h["a"]))
}

func TestNeighbours(t *testing.T) {
	g, h := buildDiamond(t)
	assert.ElementsMatch(t, []graph.Handle{h["b"], h["c"]}, g.Neighbours(h["a"]))
}

func TestTrueCostZeroForPrecompiled(t *testing.T) {
	n := graph.Node{UnderlyingCost: cost.Cost{Tokens: 100, Bytes: 100}, IsPrecompiled: true}
	assert.True(t, n.TrueCost().IsZero())

	n.IsPrecompiled = false
	assert.Equal(t, n.UnderlyingCost, n.TrueCost())
}

func TestComponentSymmetricPairing(t *testing.T) {
	g := graph.New()
	src := g.AddNode(graph.Node{Path: "a.c"})
	hdr := g.AddNode(graph.Node{Path: "a.h"})

	a := g.Node(src)
	h := g.Node(hdr)
	a.Component = graph.NewComponent(hdr)
	h.Component = graph.NewComponent(src)

	assert.True(t, a.Component.Valid())
	assert.Equal(t, hdr, a.Component.Peer)
	assert.Equal(t, src, h.Component.Peer)
}

func TestForEachNodeVisitsAll(t *testing.T) {
	g, _ := buildDiamond(t)
	seen := map[graph.Handle]bool{}
	g.ForEachNode(func(h graph.Handle) { seen[h] = true })
	assert.Len(t, seen, 4)
}
