// Package graph implements the directed file-dependency graph: a node per
// physical file, an edge per include directive, with dense integer handles
// so analyses can index auxiliary per-node state in plain arrays.
package graph

import "github.com/viant/includeguardian/cost"

// Handle is a stable, dense node identifier in [0, n). Analyses rely on
// this density to back scratch state with arrays instead of maps.
type Handle int

// Component optionally links a node to its paired header/source peer.
// Represented as a handle rather than an embedded struct so the two nodes
// never have to agree on which one "owns" the pairing.
type Component struct {
	Peer  Handle
	valid bool
}

// Valid reports whether the component pairing is set.
func (c Component) Valid() bool { return c.valid }

// NewComponent returns a valid Component pointing at peer.
func NewComponent(peer Handle) Component {
	return Component{Peer: peer, valid: true}
}

// Node is a file vertex in the include graph.
type Node struct {
	// Path is the logical, normalized, relative path used to identify the
	// file in reports and in the component-pairing stem comparison.
	Path string

	// IsExternal is true if the file is reached only via a system-style
	// ("-isystem") include search path; the tool has no authority to
	// modify such a file.
	IsExternal bool

	// IsPrecompiled is true if this file, or a file that included it, is a
	// precompiled header. Computed once at node creation time: parent ∨
	// self-predicate (spec.md §9 — viral down the include tree).
	IsPrecompiled bool

	// UnderlyingCost is this file's own cost after preprocessing its body,
	// excluding any transitively included file.
	UnderlyingCost cost.Cost

	// InternalIncoming is the number of non-external predecessors,
	// maintained incrementally during graph construction.
	InternalIncoming int

	// Component optionally names this node's paired header/source peer.
	Component Component
}

// TrueCost returns UnderlyingCost unless the node is precompiled, in which
// case it returns cost.Zero — a precompiled file's cost is charged once to
// the PCH, not to each including source.
func (n *Node) TrueCost() cost.Cost {
	if n.IsPrecompiled {
		return cost.Zero
	}
	return n.UnderlyingCost
}

// Edge is a directed include-directive edge, includer → includee.
type Edge struct {
	From Handle
	To   Handle

	// Code is the verbatim directive text, e.g. `"foo.hpp"` or `<bar>`.
	Code string

	// LineNumber is 1-based in the including file; 0 is reserved for
	// driver-implanted forced includes.
	LineNumber int

	// IsRemovable is false for forced includes and for the include that
	// pairs a source file with its own header; true otherwise.
	IsRemovable bool
}

// Graph is the immutable-once-built directed file-dependency graph.
// It is built exclusively by trace.Builder; analyses take a read-only
// reference.
type Graph struct {
	nodes []*Node
	// out[h] lists, in insertion order, the indices into edges of every
	// edge leaving h. Duplicate edges across different including files are
	// permitted and expected for diamond graphs.
	out   [][]int
	in    [][]int
	edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddNode appends a new node and returns its handle.
func (g *Graph) AddNode(n Node) Handle {
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, &n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return h
}

// AddEdge appends a new edge from → to and returns its index.
func (g *Graph) AddEdge(from, to Handle, e Edge) int {
	e.From, e.To = from, to
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
	return idx
}

// Len returns the number of nodes, n, such that handles range over [0, n).
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns a pointer to the node's attributes. The pointer is valid for
// the lifetime of the graph and may be mutated by the builder until the
// graph is handed to analyses.
func (g *Graph) Node(h Handle) *Node { return g.nodes[h] }

// Edges returns the full, read-only edge list. Edge indices are stable for
// the lifetime of the graph.
func (g *Graph) Edges() []Edge { return g.edges }

// Edge returns the edge at index idx.
func (g *Graph) Edge(idx int) Edge { return g.edges[idx] }

// OutEdges returns the indices, into Edges(), of every edge leaving h.
func (g *Graph) OutEdges(h Handle) []int { return g.out[h] }

// InEdges returns the indices, into Edges(), of every edge entering h.
func (g *Graph) InEdges(h Handle) []int { return g.in[h] }

// OutDegree returns the number of edges leaving h.
func (g *Graph) OutDegree(h Handle) int { return len(g.out[h]) }

// InDegree returns the number of edges entering h.
func (g *Graph) InDegree(h Handle) int { return len(g.in[h]) }

// Neighbours returns the target handles of every edge leaving h, in
// insertion order (duplicates included, as with diamond graphs).
func (g *Graph) Neighbours(h Handle) []Handle {
	outs := g.out[h]
	result := make([]Handle, len(outs))
	for i, idx := range outs {
		result[i] = g.edges[idx].To
	}
	return result
}

// ForEachNode calls fn for every node handle in [0, Len()).
func (g *Graph) ForEachNode(fn func(Handle)) {
	for h := range g.nodes {
		fn(Handle(h))
	}
}
