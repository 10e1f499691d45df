package analysis

import (
	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
)

// PrecompiledRecommendation names an external file worth adding to the
// precompiled header, the saving that would produce across every source,
// and how much bigger the precompiled header would grow as a result.
type PrecompiledRecommendation struct {
	Node                 *graph.Node
	Saving               cost.Cost
	ExtraPrecompiledSize cost.Cost
}

// RecommendPrecompiled proposes external files to add to the precompiled
// header: only files already included from our own code (InternalIncoming
// > 0), not already precompiled, are considered. A candidate must save at
// least minTokenCutOff tokens AND beat minSavingRatio times the extra size
// the precompiled header would grow by (spec.md §4.E, grounded on
// recommend_precompiled.cpp).
func RecommendPrecompiled(g *graph.Graph, sources []graph.Handle, minTokenCutOff int64, minSavingRatio float64) []PrecompiledRecommendation {
	return parallelCollect(allHandles(g), func(file graph.Handle, emit func(PrecompiledRecommendation)) {
		f := g.Node(file)
		if f.InternalIncoming == 0 || !f.IsExternal || f.IsPrecompiled {
			return
		}

		newlyPrecompiled, extra := newlyPrecompiledDescendants(g, file)

		cutoff := minTokenCutOff
		if ratioCutoff := int64(minSavingRatio * float64(extra.Tokens)); ratioCutoff > cutoff {
			cutoff = ratioCutoff
		}

		var saving cost.Cost
		for i, source := range sources {
			remaining := int64(len(sources) - i)
			if extra.Tokens*remaining+saving.Tokens < cutoff {
				return
			}
			saving = saving.Add(costOfNewlyPrecompiledReachable(g, source, newlyPrecompiled))
		}

		if saving.Tokens >= cutoff {
			emit(PrecompiledRecommendation{Node: f, Saving: saving, ExtraPrecompiledSize: extra})
		}
	})
}

// newlyPrecompiledDescendants walks from file and marks every descendant
// that is not already precompiled — file's own subtree stops descending
// as soon as it hits an already-precompiled node, since everything below
// that node is precompiled too.
func newlyPrecompiledDescendants(g *graph.Graph, file graph.Handle) (map[graph.Handle]struct{}, cost.Cost) {
	newlyPrecompiled := map[graph.Handle]struct{}{}
	var extra cost.Cost

	seen := make([]bool, g.Len())
	stack := []graph.Handle{file}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v] {
			continue
		}
		if g.Node(v).IsPrecompiled {
			continue
		}

		seen[v] = true
		newlyPrecompiled[v] = struct{}{}
		extra = extra.Add(g.Node(v).UnderlyingCost)
		stack = append(stack, g.Neighbours(v)...)
	}
	return newlyPrecompiled, extra
}

func costOfNewlyPrecompiledReachable(g *graph.Graph, source graph.Handle, newlyPrecompiled map[graph.Handle]struct{}) cost.Cost {
	var total cost.Cost
	seen := make([]bool, g.Len())
	stack := []graph.Handle{source}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v] {
			continue
		}
		seen[v] = true

		if _, ok := newlyPrecompiled[v]; ok {
			total = total.Add(g.Node(v).UnderlyingCost)
		}
		stack = append(stack, g.Neighbours(v)...)
	}
	return total
}
