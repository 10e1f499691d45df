package analysis

import (
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/reachability"
)

// FileAndSources pairs a file with the number of sources that reach it.
type FileAndSources struct {
	Node    *graph.Node
	Sources int
}

// ExpensiveFiles returns every internal file reachable from at least one of
// sources whose (reach-count × true-cost-tokens) meets minTokenCutOff,
// ranking candidates for a byte-size reduction by how many times their
// cost is paid across the build (spec.md §4.E, grounded on
// find_expensive_files.cpp).
func ExpensiveFiles(g *graph.Graph, idx *reachability.Index, sources []graph.Handle, minTokenCutOff int64) []FileAndSources {
	if len(sources) == 0 {
		return nil
	}

	return parallelCollect(allHandles(g), func(h graph.Handle, emit func(FileAndSources)) {
		node := g.Node(h)
		if node.IsExternal {
			return
		}

		reachCount := 0
		for _, s := range sources {
			if idx.IsReachable(s, h) {
				reachCount++
			}
		}

		if int64(reachCount)*node.TrueCost().Tokens >= minTokenCutOff {
			emit(FileAndSources{Node: node, Sources: reachCount})
		}
	})
}
