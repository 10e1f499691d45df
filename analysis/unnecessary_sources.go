package analysis

import (
	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/reachability"
)

// UnnecessarySource names a source file whose own .cpp could be folded
// back into its paired header, along with the saving that would produce
// and the extra cost every other source would incur from now pulling in
// whatever used to be reachable only through the removed source.
type UnnecessarySource struct {
	Source    *graph.Node
	Saving    cost.Cost
	ExtraCost cost.Cost
}

// reachMark tracks, per vertex, whether it was reached from the source
// being considered for removal, from its paired header, or both.
type reachMark uint8

const (
	reachNone   reachMark = 0
	reachHeader reachMark = 1 << 0
	reachSource reachMark = 1 << 1
)

// UnnecessarySources finds sources whose removal (folding their body
// into the paired header) would save at least minTokenCutOff tokens net
// of the extra cost imposed on every other source that already reaches
// the header (spec.md §4.E, grounded on find_unnecessary_sources.cpp).
func UnnecessarySources(g *graph.Graph, idx *reachability.Index, sources []graph.Handle, minTokenCutOff int64) []UnnecessarySource {
	return parallelCollect(sources, func(source graph.Handle, emit func(UnnecessarySource)) {
		peer := g.Node(source).Component
		if !peer.Valid() || g.Node(source).IsExternal {
			return
		}

		reach := make([]reachMark, g.Len())
		var saving cost.Cost
		sourceOnly := map[graph.Handle]struct{}{}

		stack := []graph.Handle{source}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reach[v]&reachSource != 0 {
				continue
			}
			reach[v] |= reachSource
			saving = saving.Add(g.Node(v).TrueCost())
			sourceOnly[v] = struct{}{}
			stack = append(stack, g.Neighbours(v)...)
		}

		if saving.Tokens < minTokenCutOff {
			return
		}

		header := peer.Peer
		stack = append(stack[:0], header)
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reach[v]&reachHeader != 0 {
				continue
			}
			reach[v] |= reachHeader
			delete(sourceOnly, v)
			stack = append(stack, g.Neighbours(v)...)
		}

		var extra cost.Cost
		for _, otherSource := range sources {
			if otherSource == source {
				continue
			}
			if !idx.IsReachable(otherSource, header) {
				continue
			}
			extra = extra.Add(extraCostFrom(g, otherSource, sourceOnly))
		}

		if saving.Tokens-extra.Tokens >= minTokenCutOff {
			emit(UnnecessarySource{Source: g.Node(source), Saving: saving, ExtraCost: extra})
		}
	})
}

// extraCostFrom assumes the full cost of every sourceOnly file is added
// to start, then walks from start and subtracts any sourceOnly file it
// can reach some other way, since that file's cost was already going to
// be paid regardless.
func extraCostFrom(g *graph.Graph, start graph.Handle, sourceOnly map[graph.Handle]struct{}) cost.Cost {
	total := costOfDescendantsOnly(g, sourceOnly)
	remaining := len(sourceOnly)

	seen := make([]bool, g.Len())
	stack := []graph.Handle{start}
	for len(stack) > 0 && remaining > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[v] {
			continue
		}
		seen[v] = true

		if _, ok := sourceOnly[v]; ok {
			remaining--
			total = total.Sub(g.Node(v).TrueCost())
		}
		stack = append(stack, g.Neighbours(v)...)
	}
	return total
}
