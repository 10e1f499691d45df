package analysis

import (
	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/reachability"
)

// IncludeAndSaving names one removable `#include` directive and the total
// cost that would disappear from the build if it were deleted.
type IncludeAndSaving struct {
	From    *graph.Node
	EdgeIdx int
	Saving  cost.Cost
}

// ExpensiveIncludes finds every removable include directive whose removal
// would save at least minTokenCutOff tokens across every source, using a
// two-pass DFS per candidate edge and source: first a scan from the source
// skipping the edge to find out whether the includee is still reachable
// some other way (no saving if so), then a scan from the includee counting,
// exactly once each, the cost of every node the first scan did not reach (spec.md §4.E, grounded on find_expensive_includes.cpp's DFSHelper).
func ExpensiveIncludes(g *graph.Graph, idx *reachability.Index, sources []graph.Handle, minTokenCutOff int64) []IncludeAndSaving {
	if len(sources) == 0 {
		return nil
	}

	candidates := make([]int, 0, len(g.Edges()))
	for i, e := range g.Edges() {
		if !e.IsRemovable {
			continue
		}
		if g.Node(e.From).IsExternal {
			continue
		}
		candidates = append(candidates, i)
	}

	return parallelCollect(candidates, func(edgeIdx int, emit func(IncludeAndSaving)) {
		edge := g.Edge(edgeIdx)
		var total cost.Cost
		for _, s := range sources {
			total = total.Add(savingFromRemoving(g, idx, s, edgeIdx))
		}
		if total.Tokens >= minTokenCutOff {
			emit(IncludeAndSaving{From: g.Node(edge.From), EdgeIdx: edgeIdx, Saving: total})
		}
	})
}

// savingFromRemoving returns the cost saved if edge were removed from the
// graph, as observed starting a traversal from source. It is zero unless
// source can reach the includer at all.
func savingFromRemoving(g *graph.Graph, idx *reachability.Index, source graph.Handle, edgeIdx int) cost.Cost {
	edge := g.Edge(edgeIdx)
	if !idx.IsReachable(source, edge.From) {
		return cost.Zero
	}

	n := g.Len()
	const (
		notSeen = iota
		seenInitial
		seenFollowup
	)
	state := make([]int, n)

	// First DFS from source, skipping edgeIdx: if we can still reach
	// edge.To some other way, removing the edge buys nothing.
	stack := []graph.Handle{source}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if state[v] == seenInitial {
			continue
		}
		state[v] = seenInitial
		for _, outIdx := range g.OutEdges(v) {
			if outIdx == edgeIdx {
				continue
			}
			w := g.Edge(outIdx).To
			if w == edge.To {
				return cost.Zero
			}
			stack = append(stack, w)
		}
	}

	// Second DFS from edge.To: every node not marked in the first pass is
	// a true saving; every node is visited at most once here too so costs
	// are never double-counted.
	var savings cost.Cost
	stack = []graph.Handle{edge.To}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch state[v] {
		case seenFollowup:
			continue
		case notSeen:
			savings = savings.Add(g.Node(v).TrueCost())
			state[v] = seenFollowup
		case seenInitial:
			state[v] = seenFollowup
		}
		stack = append(stack, g.Neighbours(v)...)
	}

	return savings
}
