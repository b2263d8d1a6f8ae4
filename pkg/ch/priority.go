package ch

import "github.com/azybler/chrouter/pkg/graph"

// priorityState holds the per-node bookkeeping the importance heuristic
// needs across the whole contraction run: how many of a node's neighbors
// have already been contracted, its search-space level, and — per edge —
// how many original edges it represents (1 for a road segment, or the sum
// of its two children for a shortcut).
//
// search_space is defined here as level[v]: the longest chain of
// contracted neighbors leading to v. When a neighbor u contracts, level[v]
// becomes max(level[v], level[u]+1), so it only ever rises, but not
// necessarily by one per contracted neighbor.
type priorityState struct {
	contractedNeighbors []int
	level               []int
	origEdgeCount       []int
}

func newPriorityState(g *graph.Graph) *priorityState {
	oec := make([]int, len(g.Edges))
	for i := range oec {
		oec[i] = 1
	}
	return &priorityState{
		contractedNeighbors: make([]int, g.NumNodes()),
		level:               make([]int, g.NumNodes()),
		origEdgeCount:       oec,
	}
}

// recordShortcut registers edgeIdx as a shortcut representing child1 and
// child2, growing origEdgeCount if the shortcut was appended past the end
// (as opposed to overwriting an existing duplicate edge slot).
func (s *priorityState) recordShortcut(edgeIdx, child1, child2 uint32) {
	if int(edgeIdx) >= len(s.origEdgeCount) {
		grown := make([]int, edgeIdx+1)
		copy(grown, s.origEdgeCount)
		s.origEdgeCount = grown
	}
	s.origEdgeCount[edgeIdx] = s.origEdgeCount[child1] + s.origEdgeCount[child2]
}

// liveEdge is a snapshot of one incident edge, with the neighbor already
// resolved so callers don't re-derive Source/Target.
type liveEdge struct {
	edgeIdx uint32
	other   uint32
	weight  uint32
}

func liveIn(g *graph.Graph, v uint32, contracted []bool) []liveEdge {
	var out []liveEdge
	for _, idx := range g.EdgesTo(v) {
		e := g.Edges[idx]
		if e.Source != v && !contracted[e.Source] {
			out = append(out, liveEdge{idx, e.Source, e.Weight})
		}
	}
	return out
}

func liveOut(g *graph.Graph, v uint32, contracted []bool) []liveEdge {
	var out []liveEdge
	for _, idx := range g.EdgesFrom(v) {
		e := g.Edges[idx]
		if e.Target != v && !contracted[e.Target] {
			out = append(out, liveEdge{idx, e.Target, e.Weight})
		}
	}
	return out
}

// plannedShortcut is a shortcut planShortcuts determined necessary, not
// yet inserted into the graph.
type plannedShortcut struct {
	from, to, weight uint32
	child1, child2   uint32
}

// planShortcuts computes the shortcuts needed to contract v without
// mutating the graph, per the witness-search contract: for each live
// incoming edge (u,v), search from u (avoiding v) for witnesses to every
// other live outgoing neighbor, bounded by the most expensive two-hop
// path through v. Any outgoing neighbor without a cheap-enough witness
// needs a shortcut. Also returns the live in/out degree, since the
// edge-difference priority term needs it.
func planShortcuts(g *graph.Graph, ws *WitnessSearch, v uint32, contracted []bool, witnessLimit int) (planned []plannedShortcut, liveInCount, liveOutCount int) {
	ins := liveIn(g, v, contracted)
	outs := liveOut(g, v, contracted)
	liveInCount, liveOutCount = len(ins), len(outs)

	for _, in := range ins {
		var targets []uint32
		var maxOut uint32
		for _, out := range outs {
			if out.other == in.other {
				continue
			}
			targets = append(targets, out.other)
			if out.weight > maxOut {
				maxOut = out.weight
			}
		}
		if len(targets) == 0 {
			continue
		}
		bound := in.weight + maxOut
		witness := ws.Search(in.other, targets, v, bound, nil, witnessLimit)

		for _, out := range outs {
			if out.other == in.other {
				continue
			}
			scWeight := in.weight + out.weight
			if d, ok := witness[out.other]; !ok || d > scWeight {
				planned = append(planned, plannedShortcut{in.other, out.other, scWeight, in.edgeIdx, out.edgeIdx})
			}
		}
	}
	return planned, liveInCount, liveOutCount
}

func originalEdges(g *graph.Graph, v uint32, contracted []bool, s *priorityState) int {
	sum := 0
	for _, idx := range g.EdgesTo(v) {
		e := g.Edges[idx]
		if !contracted[e.Source] {
			sum += s.origEdgeCount[idx]
		}
	}
	for _, idx := range g.EdgesFrom(v) {
		e := g.Edges[idx]
		if !contracted[e.Target] {
			sum += s.origEdgeCount[idx]
		}
	}
	return sum
}

// priority computes P(v) = ed*edge_difference + cn*contracted_neighbors +
// ss*search_space + oe*original_edges. witnessLimit is the settle cap for
// the simulated contraction: the generous initial cap during the seeding
// pass, the tight per-step cap for every re-evaluation after that.
func priority(g *graph.Graph, ws *WitnessSearch, v uint32, contracted []bool, s *priorityState, p Params, witnessLimit int) int {
	planned, liveInCount, liveOutCount := planShortcuts(g, ws, v, contracted, witnessLimit)
	edgeDiff := len(planned) - (liveInCount + liveOutCount)

	return p.Priority.EdgeDifference*edgeDiff +
		p.Priority.ContractedNeighbors*s.contractedNeighbors[v] +
		p.Priority.SearchSpace*s.level[v] +
		p.Priority.OriginalEdges*originalEdges(g, v, contracted, s)
}
