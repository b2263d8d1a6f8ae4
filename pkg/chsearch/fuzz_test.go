package chsearch

import (
	"math/rand"
	"testing"

	"github.com/azybler/chrouter/pkg/ch"
	"github.com/azybler/chrouter/pkg/dijkstra"
	"github.com/azybler/chrouter/pkg/graph"
)

type fuzzEdge struct {
	from, to uint32
	weight   uint32
}

func randomEdges(r *rand.Rand, n, m int) []fuzzEdge {
	edges := make([]fuzzEdge, 0, m)
	for i := 0; i < m; i++ {
		from := uint32(r.Intn(n))
		to := uint32(r.Intn(n))
		if from == to {
			continue
		}
		edges = append(edges, fuzzEdge{from, to, uint32(1 + r.Intn(100))})
	}
	return edges
}

func buildFromEdges(n int, edges []fuzzEdge) *graph.Graph {
	g := graph.New()
	for i := 0; i < n; i++ {
		g.AddNode(graph.Node{ID: int64(i)})
	}
	for _, e := range edges {
		g.AddEdge(e.from, e.to, e.weight)
	}
	return g
}

// TestRandomGraphsAgreeWithDijkstra cross-checks the CH query against the
// plain Dijkstra oracle on random graphs. Contraction mutates its input, so
// the oracle runs on a second graph built from the same edge list.
func TestRandomGraphsAgreeWithDijkstra(t *testing.T) {
	cases := []struct {
		n, m, pairs int
	}{
		{10, 30, 1000},
		{100, 400, 1000},
		{1000, 4000, 1000},
	}

	r := rand.New(rand.NewSource(42))
	for _, tc := range cases {
		if testing.Short() && tc.n > 100 {
			continue
		}

		edges := randomEdges(r, tc.n, tc.m)
		contracted := buildFromEdges(tc.n, edges)
		oracle := buildFromEdges(tc.n, edges)

		og, _ := ch.Contract(contracted, ch.DefaultParams())
		s := NewSearcher(og)

		for p := 0; p < tc.pairs; p++ {
			src := uint32(r.Intn(tc.n))
			dst := uint32(r.Intn(tc.n))

			wantW, _, wantOK := dijkstra.ShortestPath(oracle, src, dst)
			gotW, path, gotOK := s.Search(src, dst)

			if gotOK != wantOK {
				t.Fatalf("n=%d %d->%d: reachable = %v, oracle says %v", tc.n, src, dst, gotOK, wantOK)
			}
			if !gotOK {
				continue
			}
			if gotW != wantW {
				t.Fatalf("n=%d %d->%d: weight = %d, oracle says %d", tc.n, src, dst, gotW, wantW)
			}
			checkPath(t, oracle, src, dst, path, gotW)
		}
	}
}

// checkPath asserts the node sequence is a walk in the original graph whose
// edge weights sum to the reported total.
func checkPath(t *testing.T, g *graph.Graph, src, dst uint32, path []uint32, want uint32) {
	t.Helper()
	if len(path) == 0 || path[0] != src || path[len(path)-1] != dst {
		t.Fatalf("%d->%d: path endpoints wrong: %v", src, dst, path)
	}
	var sum uint32
	for i := 0; i+1 < len(path); i++ {
		found := false
		for _, idx := range g.EdgesFrom(path[i]) {
			if g.Edges[idx].Target == path[i+1] {
				sum += g.Edges[idx].Weight
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("%d->%d: path step %d->%d is not an edge", src, dst, path[i], path[i+1])
		}
	}
	if sum != want {
		t.Fatalf("%d->%d: path weights sum to %d, reported %d", src, dst, sum, want)
	}
}
