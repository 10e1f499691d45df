// Package analysis implements the DFS-based savings analyses: the part of
// the tool that turns a built graph.Graph plus its reachability.Index into
// concrete, rankable compilation-cost-reduction opportunities.
package analysis

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
)

// allHandles returns every node handle in [0, g.Len()) as a slice, for
// feeding into parallelCollect.
func allHandles(g *graph.Graph) []graph.Handle {
	handles := make([]graph.Handle, g.Len())
	for h := range handles {
		handles[h] = graph.Handle(h)
	}
	return handles
}

// parallelCollect runs fn(item) for every item concurrently and appends
// whatever fn reports via emit into a single mutex-guarded result slice,
// preserving no particular order across runs.
func parallelCollect[T any, R any](items []T, fn func(item T, emit func(R))) []R {
	var (
		mu      sync.Mutex
		results []R
		grp     errgroup.Group
	)
	for _, item := range items {
		item := item
		grp.Go(func() error {
			fn(item, func(r R) {
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			})
			return nil
		})
	}
	_ = grp.Wait()
	return results
}

// descendantCost sums TrueCost() over every node reachable from start by
// plain DFS (ignoring removed), visiting each node at most once.
func descendantCost(g *graph.Graph, start graph.Handle) cost.Cost {
	seen := make([]bool, g.Len())
	var total cost.Cost
	stack := []graph.Handle{start}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v] {
			continue
		}
		seen[v] = true
		total = total.Add(g.Node(v).TrueCost())
		stack = append(stack, g.Neighbours(v)...)
	}
	return total
}
