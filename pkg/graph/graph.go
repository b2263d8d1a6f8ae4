// Package graph implements the mutable, append-only road graph that feeds
// contraction: nodes and directed weighted edges addressed by dense uint32
// indices, with parallel in/out adjacency lists maintained incrementally.
package graph

import "github.com/paulmach/orb"

// NoNode is the sentinel for "no such node", used by predecessor arrays and
// snap results throughout the routing stack.
const NoNode = ^uint32(0)

// NoEdge is the sentinel stored in Edge.Child1/Child2 for original (i.e.
// non-shortcut) edges.
const NoEdge = ^uint32(0)

// Node is a graph vertex: a stable external id plus its geographic position.
type Node struct {
	ID  int64
	Pos orb.Point // Pos.X() = longitude, Pos.Y() = latitude, per orb convention
}

// Edge is a directed weighted arc. Child1/Child2 are NoEdge for an original
// edge, or index the two edges a shortcut bypasses (in travel order) when
// the edge was introduced by contraction.
type Edge struct {
	Source, Target uint32
	Weight         uint32
	Child1, Child2 uint32
	Geometry       []orb.Point // intermediate shape points, original edges only
}

// IsShortcut reports whether e was introduced by node contraction rather
// than being part of the original road network.
func (e Edge) IsShortcut() bool { return e.Child1 != NoEdge }

// Graph is a mutable directed graph over dense node indices. Edges are
// append-only: AddEdge never removes an edge, it only ever lowers the
// weight of an existing parallel edge in place. DisconnectNode is the one
// operation that removes entries, used by contraction to retire a node
// after its shortcuts have been inserted.
type Graph struct {
	Nodes []Node
	Edges []Edge

	out [][]uint32 // out[v] = indices of edges with Source == v
	in  [][]uint32 // in[v]  = indices of edges with Target == v

	NumShortcuts int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// NumNodes returns the number of nodes currently in the graph.
func (g *Graph) NumNodes() int { return len(g.Nodes) }

// NumEdges returns the number of edges currently in the graph, including
// shortcuts inserted by contraction.
func (g *Graph) NumEdges() int { return len(g.Edges) }

// AddNode appends a new node and returns its dense index.
func (g *Graph) AddNode(n Node) uint32 {
	idx := uint32(len(g.Nodes))
	g.Nodes = append(g.Nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return idx
}

// AddEdge inserts a directed original edge source->target with the given
// weight. If an edge source->target already exists with a strictly greater
// weight, that edge's weight is overwritten in place and its index is
// returned rather than appending a new edge — see the duplicate-edge
// scenario in the test graphs.
func (g *Graph) AddEdge(source, target, weight uint32) uint32 {
	return g.insert(Edge{Source: source, Target: target, Weight: weight, Child1: NoEdge, Child2: NoEdge})
}

// AddShortcut inserts a shortcut edge representing the two-hop path
// child1, child2 around a contracted node. Same overwrite-on-cheaper-
// duplicate semantics as AddEdge; on overwrite, the children are updated
// too, since a cheaper duplicate shortcut always supersedes the path the
// old one represented.
func (g *Graph) AddShortcut(source, target, weight, child1, child2 uint32) uint32 {
	return g.insert(Edge{Source: source, Target: target, Weight: weight, Child1: child1, Child2: child2})
}

func (g *Graph) insert(e Edge) uint32 {
	for _, idx := range g.out[e.Source] {
		existing := &g.Edges[idx]
		if existing.Target != e.Target {
			continue
		}
		if e.Weight < existing.Weight {
			wasShortcut := existing.IsShortcut()
			existing.Weight = e.Weight
			existing.Child1, existing.Child2 = e.Child1, e.Child2
			if !wasShortcut && e.IsShortcut() {
				g.NumShortcuts++
			}
		}
		return idx
	}

	idx := uint32(len(g.Edges))
	g.Edges = append(g.Edges, e)
	g.out[e.Source] = append(g.out[e.Source], idx)
	g.in[e.Target] = append(g.in[e.Target], idx)
	if e.IsShortcut() {
		g.NumShortcuts++
	}
	return idx
}

// SetGeometry attaches intermediate shape points to an already-inserted
// original edge. No-op on shortcuts, which never carry their own geometry
// (unpacking recovers it from the original edges they represent).
func (g *Graph) SetGeometry(edgeIdx uint32, pts []orb.Point) {
	if g.Edges[edgeIdx].IsShortcut() {
		return
	}
	g.Edges[edgeIdx].Geometry = pts
}

// EdgesFrom returns the indices of edges whose source is v.
func (g *Graph) EdgesFrom(v uint32) []uint32 { return g.out[v] }

// EdgesTo returns the indices of edges whose target is v.
func (g *Graph) EdgesTo(v uint32) []uint32 { return g.in[v] }

// DisconnectNode removes v from the graph's adjacency: every edge incident
// to v is struck from its other endpoint's list. The edges themselves stay
// in g.Edges (indices must remain stable for anything that still
// references them, e.g. shortcut child pointers or an overlay built
// incrementally during contraction) but v's own adjacency becomes empty.
func (g *Graph) DisconnectNode(v uint32) {
	for _, idx := range g.out[v] {
		target := g.Edges[idx].Target
		g.in[target] = removeEdge(g.in[target], idx)
	}
	for _, idx := range g.in[v] {
		source := g.Edges[idx].Source
		g.out[source] = removeEdge(g.out[source], idx)
	}
	g.out[v] = nil
	g.in[v] = nil
}

func removeEdge(list []uint32, idx uint32) []uint32 {
	for i, e := range list {
		if e == idx {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
