// Package overlay holds the frozen result of contraction: per-node
// upward/downward edge partitions, the rank each node was contracted at,
// and the shortcut child map, plus a binary on-disk format for it.
package overlay

import "github.com/azybler/chrouter/pkg/graph"

// Graph is the contraction hierarchy overlay built on top of a (by then
// fully contracted, i.e. edge-only) graph.Graph. For every original edge
// e=(u,v): e is in up(u) if rank[u] < rank[v], else it is in down(v).
// Shortcuts are partitioned the same way, keyed by their own edge index
// into the underlying graph.
type Graph struct {
	g *graph.Graph

	up        [][]uint32
	down      [][]uint32
	rank      []uint32
	shortcuts map[uint32][2]uint32
}

// New builds an overlay from its four constituent parts. up/down/rank must
// all be indexed by the same dense node space as g.
func New(g *graph.Graph, up, down [][]uint32, rank []uint32, shortcuts map[uint32][2]uint32) *Graph {
	return &Graph{g: g, up: up, down: down, rank: rank, shortcuts: shortcuts}
}

// Base returns the underlying graph holding node/edge data.
func (o *Graph) Base() *graph.Graph { return o.g }

// NumNodes returns the number of nodes in the hierarchy.
func (o *Graph) NumNodes() int { return len(o.rank) }

// Edge returns the graph.Edge at idx.
func (o *Graph) Edge(idx uint32) graph.Edge { return o.g.Edges[idx] }

// UpEdges returns the indices of edges from v to a higher-ranked neighbor.
func (o *Graph) UpEdges(v uint32) []uint32 { return o.up[v] }

// DownEdges returns the indices of edges into v from a higher-ranked
// neighbor.
func (o *Graph) DownEdges(v uint32) []uint32 { return o.down[v] }

// Rank returns the contraction order of node v (0 = contracted first).
func (o *Graph) Rank(v uint32) uint32 { return o.rank[v] }

// Shortcut reports the two child edges a shortcut edge represents, if idx
// names a shortcut.
func (o *Graph) Shortcut(idx uint32) (child1, child2 uint32, ok bool) {
	c, ok := o.shortcuts[idx]
	if !ok {
		return 0, 0, false
	}
	return c[0], c[1], true
}

// NumShortcuts returns how many edges in the hierarchy are shortcuts.
func (o *Graph) NumShortcuts() int { return len(o.shortcuts) }
