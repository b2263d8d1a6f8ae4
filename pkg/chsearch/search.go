// Package chsearch implements the bidirectional contraction-hierarchy
// query: two Dijkstra frontiers walking only upward edges, meeting in the
// middle, with stall-on-demand as an optional performance pass that must
// never change which path is found.
package chsearch

import (
	"github.com/azybler/chrouter/pkg/overlay"
	"github.com/azybler/chrouter/pkg/pqueue"
	"github.com/azybler/chrouter/pkg/stats"
)

const noEdge = ^uint32(0)
const noNode = ^uint32(0) // same sentinel value, kept distinct for readability

// Searcher holds the per-query scratch state for bidirectional search:
// distance arrays, settled marks, and predecessor edges for both
// directions. One Searcher is meant to be reused across many queries (via
// a sync.Pool in the consuming package) rather than allocated per call.
type Searcher struct {
	og *overlay.Graph

	distFwd, distBwd       []uint32
	settledFwd, settledBwd []bool
	predFwd, predBwd       []uint32 // edge index used to reach this node, noEdge if none
	touched                []uint32

	heapFwd, heapBwd pqueue.MinHeap

	Stats stats.SearchStats
}

// NewSearcher allocates a Searcher over og.
func NewSearcher(og *overlay.Graph) *Searcher {
	n := og.NumNodes()
	s := &Searcher{
		og:         og,
		distFwd:    make([]uint32, n),
		distBwd:    make([]uint32, n),
		settledFwd: make([]bool, n),
		settledBwd: make([]bool, n),
		predFwd:    make([]uint32, n),
		predBwd:    make([]uint32, n),
		touched:    make([]uint32, 0, 64),
	}
	s.reset()
	return s
}

func (s *Searcher) reset() {
	for _, v := range s.touched {
		s.distFwd[v] = pqueue.MaxWeight
		s.distBwd[v] = pqueue.MaxWeight
		s.settledFwd[v] = false
		s.settledBwd[v] = false
		s.predFwd[v] = noEdge
		s.predBwd[v] = noEdge
	}
	if len(s.touched) == 0 {
		// First use: arrays are zero-valued, not MaxWeight/noEdge. Fill once.
		for i := range s.distFwd {
			s.distFwd[i] = pqueue.MaxWeight
			s.distBwd[i] = pqueue.MaxWeight
			s.predFwd[i] = noEdge
			s.predBwd[i] = noEdge
		}
	}
	s.touched = s.touched[:0]
	s.heapFwd.Reset()
	s.heapBwd.Reset()
}

func (s *Searcher) touch(v uint32) {
	s.touched = append(s.touched, v)
}

// Search runs the query with stall-on-demand enabled.
func (s *Searcher) Search(source, target uint32) (weight uint32, path []uint32, ok bool) {
	return s.search(source, target, true)
}

// SearchWithoutStalling runs the same query with stalling disabled. Used to
// verify that stalling never changes the result (only how much work it
// takes to get there).
func (s *Searcher) SearchWithoutStalling(source, target uint32) (weight uint32, path []uint32, ok bool) {
	return s.search(source, target, false)
}

func (s *Searcher) search(source, target uint32, stalling bool) (uint32, []uint32, bool) {
	s.reset()
	s.Stats.Init()
	defer s.Stats.Finish()

	if source == target {
		return 0, []uint32{source}, true
	}

	s.distFwd[source] = 0
	s.touch(source)
	s.heapFwd.Push(source, 0)

	s.distBwd[target] = 0
	s.touch(target)
	s.heapBwd.Push(target, 0)

	best := pqueue.MaxWeight
	meet := noNode

	for s.heapFwd.Len() > 0 || s.heapBwd.Len() > 0 {
		fwdMin := s.heapFwd.PeekDist()
		bwdMin := s.heapBwd.PeekDist()
		if fwdMin >= best && bwdMin >= best {
			break
		}
		if fwdMin < best {
			s.stepForward(stalling, &best, &meet)
		}
		if s.heapBwd.PeekDist() < best {
			s.stepBackward(stalling, &best, &meet)
		}
	}

	if meet == noNode {
		return 0, nil, false
	}

	path := s.reconstruct(source, target, meet)
	return best, path, true
}

func (s *Searcher) stepForward(stalling bool, best *uint32, meet *uint32) {
	for s.heapFwd.Len() > 0 {
		node, d := s.heapFwd.PopMin()
		if s.settledFwd[node] || d > s.distFwd[node] {
			continue
		}
		if d > *best {
			break
		}
		if stalling && s.isStalledFwd(node, d) {
			s.Stats.NodesStalled++
			continue
		}

		s.settledFwd[node] = true
		s.Stats.NodesSettled++

		if s.distBwd[node] < pqueue.MaxWeight {
			if cand := d + s.distBwd[node]; cand < *best {
				*best = cand
				*meet = node
			}
		}

		for _, idx := range s.og.UpEdges(node) {
			e := s.og.Edge(idx)
			nd := d + e.Weight
			if nd < s.distFwd[e.Target] {
				if s.distFwd[e.Target] == pqueue.MaxWeight && s.distBwd[e.Target] == pqueue.MaxWeight {
					s.touch(e.Target)
				}
				s.distFwd[e.Target] = nd
				s.predFwd[e.Target] = idx
				s.heapFwd.Push(e.Target, nd)
			}
		}
		return
	}
}

func (s *Searcher) stepBackward(stalling bool, best *uint32, meet *uint32) {
	for s.heapBwd.Len() > 0 {
		node, d := s.heapBwd.PopMin()
		if s.settledBwd[node] || d > s.distBwd[node] {
			continue
		}
		if d > *best {
			break
		}
		if stalling && s.isStalledBwd(node, d) {
			s.Stats.NodesStalled++
			continue
		}

		s.settledBwd[node] = true
		s.Stats.NodesSettled++

		if s.distFwd[node] < pqueue.MaxWeight {
			if cand := s.distFwd[node] + d; cand < *best {
				*best = cand
				*meet = node
			}
		}

		for _, idx := range s.og.DownEdges(node) {
			e := s.og.Edge(idx)
			x := e.Source
			nd := d + e.Weight
			if nd < s.distBwd[x] {
				if s.distFwd[x] == pqueue.MaxWeight && s.distBwd[x] == pqueue.MaxWeight {
					s.touch(x)
				}
				s.distBwd[x] = nd
				s.predBwd[x] = idx
				s.heapBwd.Push(x, nd)
			}
		}
		return
	}
}

// isStalledFwd implements stall-on-demand for the forward frontier: v is
// stalled if some already-settled higher-ranked neighbor u reaches it more
// cheaply than the tentative distance d just popped for v. Purely a
// performance cut — skipping a stalled node must never change the final
// answer, only how many nodes get settled getting there.
func (s *Searcher) isStalledFwd(v uint32, d uint32) bool {
	for _, idx := range s.og.DownEdges(v) {
		e := s.og.Edge(idx)
		if s.settledFwd[e.Source] && s.distFwd[e.Source]+e.Weight < d {
			return true
		}
	}
	return false
}

// isStalledBwd is the symmetric check for the backward frontier, using v's
// upward edges instead.
func (s *Searcher) isStalledBwd(v uint32, d uint32) bool {
	for _, idx := range s.og.UpEdges(v) {
		e := s.og.Edge(idx)
		if s.settledBwd[e.Target] && s.distBwd[e.Target]+e.Weight < d {
			return true
		}
	}
	return false
}
