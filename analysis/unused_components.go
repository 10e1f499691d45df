package analysis

import (
	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
)

// ComponentAndSaving names a source file whose paired header is included
// rarely enough that the whole component is a deletion candidate.
type ComponentAndSaving struct {
	Source *graph.Node
	Saving cost.Cost
}

// UnusedComponents returns every source in sources whose paired header is
// included by at most includedByAtMost other files — not counting the
// pairing edge from the component's own source — and whose removal would
// save at least minTokenCutOff tokens (spec.md §4.E, grounded on
// find_unused_components.cpp).
func UnusedComponents(g *graph.Graph, sources []graph.Handle, includedByAtMost int, minTokenCutOff int64) []ComponentAndSaving {
	return parallelCollect(sources, func(source graph.Handle, emit func(ComponentAndSaving)) {
		peer := g.Node(source).Component
		if !peer.Valid() {
			return
		}

		// +1 accounts for the component's own source→header pairing edge,
		// which always exists and isn't itself evidence of external use.
		if g.InDegree(peer.Peer) > includedByAtMost+1 {
			return
		}

		saving := descendantCost(g, source)
		if saving.Tokens < minTokenCutOff {
			return
		}
		emit(ComponentAndSaving{Source: g.Node(source), Saving: saving})
	})
}
