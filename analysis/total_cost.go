package analysis

import (
	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
)

// TotalCostResult is the aggregate cost of compiling every source, plus
// the slice already charged to precompiled headers (spec.md §4.E,
// grounded on get_total_cost.cpp).
type TotalCostResult struct {
	TrueCost    cost.Cost
	Precompiled cost.Cost
}

// TotalCost sums, independently for every source, the true cost of every
// file reachable from it — so a file reachable from two sources is
// counted twice, matching spec.md §8 scenario 2's
// "(A+C+D+F+H) + (B+D+E+F+G+H)" formula.
func TotalCost(g *graph.Graph, sources []graph.Handle) TotalCostResult {
	perSource := parallelCollect(sources, func(source graph.Handle, emit func(TotalCostResult)) {
		seen := make([]bool, g.Len())
		var result TotalCostResult
		stack := []graph.Handle{source}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[v] {
				continue
			}
			seen[v] = true
			result.TrueCost = result.TrueCost.Add(g.Node(v).TrueCost())
			if g.Node(v).IsPrecompiled {
				result.Precompiled = result.Precompiled.Add(g.Node(v).UnderlyingCost)
			}
			stack = append(stack, g.Neighbours(v)...)
		}
		emit(result)
	})

	var total TotalCostResult
	for _, r := range perSource {
		total.TrueCost = total.TrueCost.Add(r.TrueCost)
		total.Precompiled = total.Precompiled.Add(r.Precompiled)
	}
	return total
}
