// Package dijkstra implements plain single-pair Dijkstra over a graph.Graph.
// It exists purely as a correctness oracle for tests — it is not part of
// the CH query path and is never used at serving time.
package dijkstra

import (
	"github.com/azybler/chrouter/pkg/graph"
	"github.com/azybler/chrouter/pkg/pqueue"
)

// NoPath is returned as the distance when source cannot reach target.
const NoPath = pqueue.MaxWeight

// ShortestPath runs Dijkstra from source to target over g's current
// adjacency (whatever it is at call time — original edges, shortcuts, or a
// mix, since the oracle doesn't care which it's walking).
func ShortestPath(g *graph.Graph, source, target uint32) (weight uint32, path []uint32, ok bool) {
	n := g.NumNodes()
	dist := make([]uint32, n)
	pred := make([]uint32, n)
	for i := range dist {
		dist[i] = NoPath
		pred[i] = graph.NoNode
	}

	var heap pqueue.MinHeap
	dist[source] = 0
	heap.Push(source, 0)

	for heap.Len() > 0 {
		u, d := heap.PopMin()
		if d > dist[u] {
			continue
		}
		if u == target {
			break
		}
		for _, idx := range g.EdgesFrom(u) {
			e := g.Edges[idx]
			nd := d + e.Weight
			if nd < dist[e.Target] {
				dist[e.Target] = nd
				pred[e.Target] = u
				heap.Push(e.Target, nd)
			}
		}
	}

	if dist[target] == NoPath {
		return 0, nil, false
	}

	var rev []uint32
	for v := target; v != graph.NoNode; v = pred[v] {
		rev = append(rev, v)
		if v == source {
			break
		}
	}
	path = make([]uint32, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return dist[target], path, true
}
