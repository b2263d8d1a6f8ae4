package ch

import (
	"log"

	"github.com/azybler/chrouter/pkg/graph"
	"github.com/azybler/chrouter/pkg/overlay"
	"github.com/azybler/chrouter/pkg/pqueue"
	"github.com/azybler/chrouter/pkg/stats"
)

// Contract runs the contraction strategy named by params.Strategy over g
// and returns the resulting overlay graph. g is mutated in place: every
// shortcut is appended to it, and every contracted node is disconnected
// once its shortcuts are in place.
func Contract(g *graph.Graph, params Params) (*overlay.Graph, stats.ContractionStats) {
	if params.Strategy == StrategyFixedOrder {
		return contractWithOrder(g, params.FixedOrder, params)
	}
	return contractLazyUpdate(g, params)
}

// ContractWithOrder contracts g in exactly the given order, ignoring the
// priority function — the FixedOrder strategy from contraction_strategy.rs,
// used directly by every literal scenario that specifies an explicit
// contraction order.
func ContractWithOrder(g *graph.Graph, order []uint32, params Params) (*overlay.Graph, stats.ContractionStats) {
	params.Strategy = StrategyFixedOrder
	params.FixedOrder = order
	return Contract(g, params)
}

// builder accumulates the pieces the overlay graph needs, one node at a
// time, as contraction proceeds.
type builder struct {
	up        [][]uint32
	down      [][]uint32
	rank      []uint32
	shortcuts map[uint32][2]uint32
}

func newBuilder(n int) *builder {
	return &builder{
		up:        make([][]uint32, n),
		down:      make([][]uint32, n),
		rank:      make([]uint32, n),
		shortcuts: make(map[uint32][2]uint32),
	}
}

// recordNode snapshots v's current (pre-disconnect) adjacency as its
// up/down partition: since any neighbor already contracted has already
// been disconnected and so no longer appears in these lists, what remains
// is, by construction, exactly the edges to higher-ranked neighbors.
// Self-loops belong to neither direction and are left out.
func (b *builder) recordNode(g *graph.Graph, v uint32, order uint32) (up, down []uint32) {
	for _, idx := range g.EdgesFrom(v) {
		if g.Edges[idx].Target != v {
			up = append(up, idx)
		}
	}
	for _, idx := range g.EdgesTo(v) {
		if g.Edges[idx].Source != v {
			down = append(down, idx)
		}
	}
	b.up[v] = up
	b.down[v] = down
	b.rank[v] = order
	return up, down
}

func (b *builder) recordShortcut(idx, child1, child2 uint32) {
	b.shortcuts[idx] = [2]uint32{child1, child2}
}

func (b *builder) build(g *graph.Graph) *overlay.Graph {
	return overlay.New(g, b.up, b.down, b.rank, b.shortcuts)
}

// applyShortcuts inserts every planned shortcut into g, updating both the
// priority bookkeeping and the overlay's shortcut map. A planned shortcut
// that g rejects because an existing edge is at least as cheap is skipped.
func applyShortcuts(g *graph.Graph, planned []plannedShortcut, st *priorityState, b *builder, sstat *stats.ContractionStats) {
	for _, sc := range planned {
		idx := g.AddShortcut(sc.from, sc.to, sc.weight, sc.child1, sc.child2)
		if e := g.Edges[idx]; e.Child1 != sc.child1 || e.Child2 != sc.child2 {
			continue
		}
		st.recordShortcut(idx, sc.child1, sc.child2)
		b.recordShortcut(idx, sc.child1, sc.child2)
		sstat.ShortcutsAdded++
	}
}

// bumpNeighbors increments contractedNeighbors and raises level for every
// live neighbor of a just-contracted node v, using the adjacency snapshot
// taken right before v was disconnected.
func bumpNeighbors(g *graph.Graph, up, down []uint32, v uint32, contracted []bool, st *priorityState) {
	for _, idx := range up {
		w := g.Edges[idx].Target
		if !contracted[w] {
			st.contractedNeighbors[w]++
			if st.level[v]+1 > st.level[w] {
				st.level[w] = st.level[v] + 1
			}
		}
	}
	for _, idx := range down {
		w := g.Edges[idx].Source
		if !contracted[w] {
			st.contractedNeighbors[w]++
			if st.level[v]+1 > st.level[w] {
				st.level[w] = st.level[v] + 1
			}
		}
	}
}

func contractWithOrder(g *graph.Graph, order []uint32, params Params) (*overlay.Graph, stats.ContractionStats) {
	n := g.NumNodes()
	contracted := make([]bool, n)
	st := newPriorityState(g)
	ws := NewWitnessSearch(g)
	b := newBuilder(n)

	var sstat stats.ContractionStats
	sstat.Init()

	for i, v := range order {
		planned, _, _ := planShortcuts(g, ws, v, contracted, params.WitnessLimit)
		up, down := b.recordNode(g, v, uint32(i))
		contracted[v] = true
		applyShortcuts(g, planned, st, b, &sstat)
		bumpNeighbors(g, up, down, v, contracted, st)
		g.DisconnectNode(v)
	}

	sstat.NodesContracted = len(order)
	sstat.Finish()
	return b.build(g), sstat
}

func contractLazyUpdate(g *graph.Graph, params Params) (*overlay.Graph, stats.ContractionStats) {
	n := g.NumNodes()
	contracted := make([]bool, n)
	st := newPriorityState(g)
	ws := NewWitnessSearch(g)
	b := newBuilder(n)

	pq := pqueue.NewAddressable(n)
	for v := uint32(0); v < uint32(n); v++ {
		pq.Push(v, int64(priority(g, ws, v, contracted, st, params, params.WitnessInitialLimit)))
	}

	var sstat stats.ContractionStats
	sstat.Init()

	order := uint32(0)
	logInterval := adaptiveLogInterval(n)

	for pq.Len() > 0 {
		v, p := pq.PopMin()

		if params.Update.Self {
			fresh := int64(priority(g, ws, v, contracted, st, params, params.WitnessLimit))
			if fresh > p && fresh > pq.PeekPriority() {
				pq.Push(v, fresh)
				continue
			}
		}

		planned, _, _ := planShortcuts(g, ws, v, contracted, params.WitnessLimit)
		up, down := b.recordNode(g, v, order)
		contracted[v] = true
		order++

		applyShortcuts(g, planned, st, b, &sstat)
		bumpNeighbors(g, up, down, v, contracted, st)
		g.DisconnectNode(v)

		if params.Update.Neighbors {
			seen := make(map[uint32]bool, len(up)+len(down))
			reprioritize := func(w uint32) {
				if contracted[w] || seen[w] {
					return
				}
				seen[w] = true
				pq.ChangePriority(w, int64(priority(g, ws, w, contracted, st, params, params.WitnessLimit)))
			}
			for _, idx := range up {
				reprioritize(g.Edges[idx].Target)
			}
			for _, idx := range down {
				reprioritize(g.Edges[idx].Source)
			}
		}

		if params.Update.Periodic && params.Update.PeriodicK > 0 && order%uint32(params.Update.PeriodicK) == 0 {
			for w := uint32(0); w < uint32(n); w++ {
				if !contracted[w] && pq.Contains(w) {
					pq.ChangePriority(w, int64(priority(g, ws, w, contracted, st, params, params.WitnessLimit)))
				}
			}
		}

		if order%logInterval == 0 {
			log.Printf("contracted %d/%d nodes, %d shortcuts so far", order, n, sstat.ShortcutsAdded)
		}
	}

	sstat.NodesContracted = int(order)
	sstat.Finish()
	return b.build(g), sstat
}

// adaptiveLogInterval scales progress-log frequency to graph size so tiny
// test graphs don't spam and city-scale graphs still report periodically.
func adaptiveLogInterval(n int) uint32 {
	switch {
	case n < 1000:
		return uint32(n + 1) // effectively never, for small graphs
	case n < 100000:
		return 10000
	default:
		return 100000
	}
}
