package analysis

import (
	"github.com/viant/includeguardian/cost"
	"github.com/viant/includeguardian/graph"
	"github.com/viant/includeguardian/reachability"
)

// HeaderAndSaving names a header file along with the saving if every
// include of it were moved out of headers and down into source files.
type HeaderAndSaving struct {
	Node   *graph.Node
	Saving cost.Cost
}

// ExpensiveHeaders finds headers that could be "privatized" — included
// only from source files instead of from other headers — and reports the
// saving that would produce: for header H, every include of H from another
// header is dropped while a source's own direct include of H stays, and
// each source that reaches H is credited with whatever of H's subtree it
// then no longer reaches (spec.md §4.E, grounded on
// find_expensive_headers.cpp's DFSHelper).
func ExpensiveHeaders(g *graph.Graph, idx *reachability.Index, sources []graph.Handle, minTokenCutOff int64) []HeaderAndSaving {
	return parallelCollect(allHandles(g), func(file graph.Handle, emit func(HeaderAndSaving)) {
		if g.Node(file).IsExternal {
			return
		}

		descendants := reachableSet(g, file)
		var savings cost.Cost

		for _, source := range sources {
			if source == file {
				continue
			}
			if !idx.IsReachable(source, file) {
				continue
			}

			savings = savings.Add(costOfDescendantsOnly(g, descendants))
			savings = savings.Sub(unreachedWithoutVisiting(g, source, file, descendants))
		}

		if savings.Tokens >= minTokenCutOff {
			emit(HeaderAndSaving{Node: g.Node(file), Saving: savings})
		}
	})
}

// reachableSet returns the set of handles reachable from file, including
// file itself.
func reachableSet(g *graph.Graph, file graph.Handle) map[graph.Handle]struct{} {
	seen := map[graph.Handle]struct{}{}
	stack := []graph.Handle{file}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		stack = append(stack, g.Neighbours(v)...)
	}
	return seen
}

func costOfDescendantsOnly(g *graph.Graph, descendants map[graph.Handle]struct{}) cost.Cost {
	var total cost.Cost
	for h := range descendants {
		total = total.Add(g.Node(h).TrueCost())
	}
	return total
}

// unreachedWithoutVisiting walks from source, skipping every edge into
// file except one straight from source itself, and sums the cost of every
// member of descendants that is still reached — the part of the assumed
// saving that has to be given back because it stays reachable from source
// once file is no longer included by any header.
func unreachedWithoutVisiting(g *graph.Graph, source, file graph.Handle, descendants map[graph.Handle]struct{}) cost.Cost {
	seen := map[graph.Handle]struct{}{}
	var total cost.Cost
	stack := []graph.Handle{source}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		if _, isDescendant := descendants[v]; isDescendant {
			total = total.Add(g.Node(v).TrueCost())
		}
		for _, w := range g.Neighbours(v) {
			if w == file && v != source {
				continue
			}
			stack = append(stack, w)
		}
	}
	return total
}
