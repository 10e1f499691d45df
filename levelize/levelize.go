// Package levelize computes a topological layering of the include graph:
// groups of files that can, in principle, all be compiled at the same
// depth from the leaves. Paired components are forced onto the same
// level by a virtual edge, and strongly connected components (including
// unguarded-include cycles) collapse to a single level before layering.
package levelize

import (
	"github.com/viant/includeguardian/graph"
)

// Group is one strongly connected component of the levelization graph —
// ordinarily a single file, or a paired source/header component.
type Group []graph.Handle

// Levels is the layered output: Levels[i] is every group at depth i,
// depth 0 being closest to the leaves (the files with no internal
// includes of their own).
type Levels [][]Group

// Build computes the levelization of g rooted at sources. It returns nil
// if sources is empty.
func Build(g *graph.Graph, sources []graph.Handle) Levels {
	if len(sources) == 0 {
		return nil
	}

	n := g.Len()
	root := n
	adj := make([][]int, n+1)

	// Reverse every internal include edge: walking forward from a
	// dependency towards its includer mirrors moving up from the leaves
	// towards the translation-unit entry points.
	for _, e := range g.Edges() {
		if g.Node(e.To).IsExternal {
			continue
		}
		adj[int(e.To)] = append(adj[int(e.To)], int(e.From))
	}

	// Files with nothing of their own to include are the true leaves;
	// connect them to a synthetic root so every reachable file ends up
	// with a finite depth.
	for v := 0; v < n; v++ {
		if g.OutDegree(graph.Handle(v)) == 0 && !g.Node(graph.Handle(v)).IsExternal {
			adj[root] = append(adj[root], v)
		}
	}

	// Force each paired component into a 2-cycle so the pairing survives
	// SCC collapse and both files land on the same level (spec.md §9).
	for _, s := range sources {
		if peer := g.Node(s).Component; peer.Valid() {
			adj[int(s)] = append(adj[int(s)], int(peer.Peer))
		}
	}

	componentOf, numComponents := tarjanSCC(adj)

	componentOfRoot := componentOf[root]
	level := longestPathLevels(adj, componentOf, numComponents, componentOfRoot)

	maxLevel := 0
	for v := 0; v < n; v++ {
		if l := level[componentOf[v]]; l > maxLevel {
			maxLevel = l
		}
	}
	if maxLevel == 0 {
		return nil
	}

	groupIndex := make(map[int]int, numComponents)
	levels := make(Levels, maxLevel)
	for v := 0; v < n; v++ {
		c := componentOf[v]
		l := level[c]
		if l <= 0 {
			// Unreached from root, or root's own component: neither
			// represents a real file depth.
			continue
		}
		idx, ok := groupIndex[c]
		if !ok {
			levels[l-1] = append(levels[l-1], Group{})
			idx = len(levels[l-1]) - 1
			groupIndex[c] = idx
		}
		levels[l-1][idx] = append(levels[l-1][idx], graph.Handle(v))
	}

	return levels
}

// tarjanSCC runs Tarjan's algorithm over the adjacency list adj (node
// count len(adj)) and returns, for each node, the id of its strongly
// connected component, plus the total number of components found.
func tarjanSCC(adj [][]int) ([]int, int) {
	n := len(adj)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	visited := make([]bool, n)
	componentOf := make([]int, n)
	for i := range componentOf {
		componentOf[i] = -1
	}

	var stack []int
	next := 0
	numComponents := 0

	var strongConnect func(v int)
	strongConnect = func(v int) {
		index[v] = next
		lowlink[v] = next
		next++
		visited[v] = true
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if !visited[w] {
				strongConnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				componentOf[w] = numComponents
				if w == v {
					break
				}
			}
			numComponents++
		}
	}

	for v := 0; v < n; v++ {
		if !visited[v] {
			strongConnect(v)
		}
	}
	return componentOf, numComponents
}

// longestPathLevels returns, for each component id, its longest-path
// distance (in number of distinct components crossed) from rootComponent
// in the condensation DAG. Components unreachable from the root keep a
// distance of -1.
func longestPathLevels(adj [][]int, componentOf []int, numComponents, rootComponent int) []int {
	condSucc := make([]map[int]struct{}, numComponents)
	for v, neighbours := range adj {
		cv := componentOf[v]
		for _, w := range neighbours {
			cw := componentOf[w]
			if cv == cw {
				continue
			}
			if condSucc[cv] == nil {
				condSucc[cv] = map[int]struct{}{}
			}
			condSucc[cv][cw] = struct{}{}
		}
	}

	indegree := make([]int, numComponents)
	for _, succs := range condSucc {
		for w := range succs {
			indegree[w]++
		}
	}

	level := make([]int, numComponents)
	for i := range level {
		level[i] = -1
	}
	level[rootComponent] = 0

	// Kahn's algorithm restricted to the subgraph reachable from the
	// root: seed the queue with every zero-indegree component, but only
	// ever relax distances for components we've actually reached.
	queue := make([]int, 0, numComponents)
	indegreeLeft := append([]int(nil), indegree...)
	for c := 0; c < numComponents; c++ {
		if indegreeLeft[c] == 0 {
			queue = append(queue, c)
		}
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for w := range condSucc[c] {
			if level[c] >= 0 && (level[w] < 0 || level[c]+1 > level[w]) {
				level[w] = level[c] + 1
			}
			indegreeLeft[w]--
			if indegreeLeft[w] == 0 {
				queue = append(queue, w)
			}
		}
	}

	return level
}
