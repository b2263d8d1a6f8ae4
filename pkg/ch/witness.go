package ch

import (
	"github.com/azybler/chrouter/pkg/graph"
	"github.com/azybler/chrouter/pkg/pqueue"
)

// InfWeight marks a node the current witness search never reached.
const InfWeight = pqueue.MaxWeight

// WitnessSearch runs the bounded one-sided Dijkstra used to decide whether
// a shortcut is needed when contracting a node. One instance is reused
// across an entire contraction run; its dense distance array is reset via
// a touched-node list rather than a full scan between calls.
type WitnessSearch struct {
	g       *graph.Graph
	dist    []uint32
	touched []uint32
	heap    pqueue.MinHeap
}

// NewWitnessSearch allocates a reusable searcher over g.
func NewWitnessSearch(g *graph.Graph) *WitnessSearch {
	dist := make([]uint32, g.NumNodes())
	for i := range dist {
		dist[i] = InfWeight
	}
	return &WitnessSearch{g: g, dist: dist}
}

func (ws *WitnessSearch) reset() {
	for _, n := range ws.touched {
		ws.dist[n] = InfWeight
	}
	ws.touched = ws.touched[:0]
	ws.heap.Reset()
}

// Search runs a bounded Dijkstra from source, looking for the shortest
// path to each node in targets that never passes through avoid, never uses
// an edge in ignore, and never exceeds bound. It stops as soon as any one
// of: the frontier empties, a popped distance exceeds bound, maxSettled
// nodes have been settled, or every target has been found — whichever
// comes first. A target absent from the result was not reached within
// budget; that is not proof no such path exists, only that none was found
// cheaply enough to rule out a shortcut.
func (ws *WitnessSearch) Search(source uint32, targets []uint32, avoid uint32, bound uint32, ignore map[uint32]bool, maxSettled int) map[uint32]uint32 {
	ws.reset()

	result := make(map[uint32]uint32, len(targets))
	remaining := make(map[uint32]bool, len(targets))
	for _, t := range targets {
		if t != source {
			remaining[t] = true
		} else {
			result[t] = 0
		}
	}

	ws.dist[source] = 0
	ws.touched = append(ws.touched, source)
	ws.heap.Push(source, 0)

	settled := 0
	for len(remaining) > 0 && ws.heap.Len() > 0 {
		node, d := ws.heap.PopMin()
		if d > ws.dist[node] {
			continue // stale duplicate
		}
		if d > bound {
			break
		}
		settled++
		if settled > maxSettled {
			break
		}

		if remaining[node] {
			result[node] = d
			delete(remaining, node)
		}

		for _, eIdx := range ws.g.EdgesFrom(node) {
			e := &ws.g.Edges[eIdx]
			if e.Target == avoid || ignore[eIdx] {
				continue
			}
			nd := d + e.Weight
			if nd > bound {
				continue
			}
			if nd < ws.dist[e.Target] {
				if ws.dist[e.Target] == InfWeight {
					ws.touched = append(ws.touched, e.Target)
				}
				ws.dist[e.Target] = nd
				ws.heap.Push(e.Target, nd)
			}
		}
	}
	return result
}
