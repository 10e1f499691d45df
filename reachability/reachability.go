// Package reachability precomputes, for every node in a graph.Graph, the
// set of nodes it can reach and the number of distinct simple paths to
// every other node — the shared artefact every analysis in this module
// builds on top of.
package reachability

import (
	"fmt"

	"github.com/viant/includeguardian/graph"
)

// ErrOverflow is returned by Build when a path count between two vertices
// overflows the 32-bit range the tool assumes typical C++ include graphs
// fit in (spec.md §4.C). It is a reported failure condition, not a panic.
type ErrOverflow struct {
	From, To graph.Handle
}

func (e *ErrOverflow) Error() string {
	return fmt.Sprintf("reachability: path count from %d to %d overflowed 32 bits", e.From, e.To)
}

// Index is the precomputed per-source reachability and path-count
// artefact. It is immutable once built and safe for concurrent read access
// by every analysis.
type Index struct {
	n int
	// reach[s] is the set of handles reachable from s, including s itself.
	reach []map[graph.Handle]struct{}
	// paths is a flat n*n matrix; paths[s*n+t] is the number of distinct
	// simple paths from s to t.
	paths []int64
}

const overflowLimit = 1 << 32

// Build computes the reachability index for g. For every vertex v it walks
// every simple path starting at v exactly once, incrementing the path
// count for every vertex visited along the way; the set of vertices ever
// visited along any such path is v's reachable set. This is
// O(Σ_v |paths from v|) and implicitly handles DAGs with exponential path
// counts, at the cost of failing (via ErrOverflow) if any single count
// exceeds the 32-bit range.
func Build(g *graph.Graph) (*Index, error) {
	n := g.Len()
	idx := &Index{
		n:     n,
		reach: make([]map[graph.Handle]struct{}, n),
		paths: make([]int64, n*n),
	}

	onStack := make([]bool, n)
	for s := 0; s < n; s++ {
		reach := make(map[graph.Handle]struct{})
		idx.reach[graph.Handle(s)] = reach
		var walk func(v graph.Handle)
		walk = func(v graph.Handle) {
			reach[v] = struct{}{}
			idx.paths[s*n+int(v)]++
			if onStack[v] {
				// Unguarded headers can induce apparent cycles (spec.md
				// §3 invariant 3); stop walking this branch rather than
				// recursing forever. The count at v still reflects every
				// completed simple path that reached it.
				return
			}
			onStack[v] = true
			for _, w := range g.Neighbours(v) {
				walk(w)
			}
			onStack[v] = false
		}
		walk(graph.Handle(s))
	}

	for s := 0; s < n; s++ {
		for t := 0; t < n; t++ {
			if idx.paths[s*n+t] >= overflowLimit {
				return nil, &ErrOverflow{From: graph.Handle(s), To: graph.Handle(t)}
			}
		}
	}

	return idx, nil
}

// ReachableFrom returns the set of handles reachable from s, including s
// itself.
func (idx *Index) ReachableFrom(s graph.Handle) map[graph.Handle]struct{} {
	return idx.reach[s]
}

// PathCount returns the number of distinct simple paths from s to t.
func (idx *Index) PathCount(s, t graph.Handle) int64 {
	return idx.paths[int(s)*idx.n+int(t)]
}

// IsReachable reports whether t is reachable from s.
func (idx *Index) IsReachable(s, t graph.Handle) bool {
	return idx.PathCount(s, t) > 0
}
