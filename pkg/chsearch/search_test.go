package chsearch

import (
	"reflect"
	"testing"

	"github.com/azybler/chrouter/pkg/ch"
	"github.com/azybler/chrouter/pkg/graph"
)

func addBidir(g *graph.Graph, a, b, w uint32) {
	g.AddEdge(a, b, w)
	g.AddEdge(b, a, w)
}

func labelsToNodes(labels string, ids map[byte]uint32) []uint32 {
	order := make([]uint32, len(labels))
	for i := 0; i < len(labels); i++ {
		order[i] = ids[labels[i]]
	}
	return order
}

func buildComplexGraph() (*graph.Graph, map[byte]uint32) {
	g := graph.New()
	ids := make(map[byte]uint32, 11)
	for _, l := range []byte("ABCDEFGHIJK") {
		ids[l] = g.AddNode(graph.Node{ID: int64(l)})
	}
	type e struct {
		from, to byte
		w        uint32
	}
	edges := []e{
		{'A', 'B', 3}, {'A', 'C', 5}, {'A', 'K', 3},
		{'B', 'D', 5}, {'B', 'C', 3},
		{'C', 'D', 2}, {'C', 'J', 2},
		{'D', 'J', 4}, {'D', 'E', 7},
		{'E', 'J', 3}, {'E', 'F', 6},
		{'F', 'H', 2}, {'F', 'G', 4},
		{'G', 'H', 3}, {'G', 'I', 5},
		{'H', 'I', 3}, {'H', 'J', 2},
		{'I', 'J', 4}, {'I', 'K', 6},
		{'J', 'K', 3},
	}
	for _, edge := range edges {
		addBidir(g, ids[edge.from], ids[edge.to], edge.w)
	}
	return g, ids
}

func nodePath(ids map[byte]uint32, labels string) []uint32 {
	path := make([]uint32, len(labels))
	for i := 0; i < len(labels); i++ {
		path[i] = ids[labels[i]]
	}
	return path
}

func TestSearchDiamond(t *testing.T) {
	g := graph.New()
	a := g.AddNode(graph.Node{ID: 0})
	b := g.AddNode(graph.Node{ID: 1})
	c := g.AddNode(graph.Node{ID: 2})
	d := g.AddNode(graph.Node{ID: 3})
	e := g.AddNode(graph.Node{ID: 4})
	g.AddEdge(a, c, 1)
	g.AddEdge(a, d, 1)
	g.AddEdge(e, a, 1)
	addBidir(g, c, b, 1)
	addBidir(g, c, d, 1)

	ov, _ := ch.ContractWithOrder(g, []uint32{a, e, d, c, b}, ch.DefaultParams())

	s := NewSearcher(ov)
	weight, path, ok := s.Search(e, b)
	if !ok {
		t.Fatalf("expected a route from E to B")
	}
	if weight != 3 {
		t.Fatalf("got weight %d, want 3", weight)
	}
	want := []uint32{e, a, c, b}
	if !reflect.DeepEqual(path, want) {
		t.Fatalf("got path %v, want %v", path, want)
	}
}

func TestSearchStraightLine(t *testing.T) {
	g := graph.New()
	for i := 0; i < 5; i++ {
		g.AddNode(graph.Node{ID: int64(i)})
	}
	for i := 0; i < 4; i++ {
		g.AddEdge(uint32(i), uint32(i+1), 1)
	}

	ov, _ := ch.ContractWithOrder(g, []uint32{1, 2, 3, 4}, ch.DefaultParams())

	s := NewSearcher(ov)
	weight, path, ok := s.Search(0, 4)
	if !ok {
		t.Fatalf("expected a route")
	}
	if weight != 4 {
		t.Fatalf("got weight %d, want 4", weight)
	}
	want := []uint32{0, 1, 2, 3, 4}
	if !reflect.DeepEqual(path, want) {
		t.Fatalf("got path %v, want %v", path, want)
	}
}

func TestSearchComplexGraph(t *testing.T) {
	g, ids := buildComplexGraph()
	order := labelsToNodes("BEIKDGCJHFA", ids)
	ov, _ := ch.ContractWithOrder(g, order, ch.DefaultParams())

	s := NewSearcher(ov)

	weight, path, ok := s.Search(ids['B'], ids['G'])
	if !ok {
		t.Fatalf("expected a route B->G")
	}
	if weight != 10 {
		t.Fatalf("got weight %d, want 10", weight)
	}
	if want := nodePath(ids, "BCJHG"); !reflect.DeepEqual(path, want) {
		t.Fatalf("got path %v, want %v", path, want)
	}

	weight, path, ok = s.Search(ids['A'], ids['G'])
	if !ok {
		t.Fatalf("expected a route A->G")
	}
	if weight != 11 {
		t.Fatalf("got weight %d, want 11", weight)
	}
	if want := nodePath(ids, "AKJHG"); !reflect.DeepEqual(path, want) {
		t.Fatalf("got path %v, want %v", path, want)
	}
}

func TestSearchSameNode(t *testing.T) {
	g, ids := buildComplexGraph()
	order := labelsToNodes("BEIKDGCJHFA", ids)
	ov, _ := ch.ContractWithOrder(g, order, ch.DefaultParams())

	s := NewSearcher(ov)
	weight, path, ok := s.Search(ids['C'], ids['C'])
	if !ok || weight != 0 || !reflect.DeepEqual(path, []uint32{ids['C']}) {
		t.Fatalf("got (%d,%v,%v), want (0,[C],true)", weight, path, ok)
	}
}

func TestSearchUnreachable(t *testing.T) {
	g := graph.New()
	a := g.AddNode(graph.Node{ID: 0})
	b := g.AddNode(graph.Node{ID: 1})
	ov, _ := ch.ContractWithOrder(g, []uint32{a, b}, ch.DefaultParams())

	s := NewSearcher(ov)
	_, _, ok := s.Search(a, b)
	if ok {
		t.Fatalf("expected no route between disconnected nodes")
	}
}

func TestStallingNeutrality(t *testing.T) {
	g, ids := buildComplexGraph()
	order := labelsToNodes("BEIKDGCJHFA", ids)
	ov, _ := ch.ContractWithOrder(g, order, ch.DefaultParams())

	pairs := [][2]byte{{'A', 'G'}, {'B', 'G'}, {'A', 'F'}, {'K', 'E'}, {'D', 'I'}}
	for _, p := range pairs {
		s1 := NewSearcher(ov)
		w1, path1, ok1 := s1.Search(ids[p[0]], ids[p[1]])

		s2 := NewSearcher(ov)
		w2, path2, ok2 := s2.SearchWithoutStalling(ids[p[0]], ids[p[1]])

		if ok1 != ok2 {
			t.Fatalf("%c->%c: stalling changed reachability (%v vs %v)", p[0], p[1], ok1, ok2)
		}
		if ok1 && w1 != w2 {
			t.Fatalf("%c->%c: stalling changed distance (%d vs %d)", p[0], p[1], w1, w2)
		}
		if ok1 && !reflect.DeepEqual(path1, path2) {
			t.Fatalf("%c->%c: stalling changed path (%v vs %v)", p[0], p[1], path1, path2)
		}
	}
}

func TestSearchDisconnectedComponents(t *testing.T) {
	g := graph.New()
	for i := 0; i < 6; i++ {
		g.AddNode(graph.Node{ID: int64(i)})
	}
	g.AddEdge(0, 1, 1)
	g.AddEdge(1, 2, 1)
	g.AddEdge(3, 4, 2)
	g.AddEdge(4, 5, 2)

	ov, _ := ch.Contract(g, ch.DefaultParams())
	s := NewSearcher(ov)

	if _, _, ok := s.Search(0, 3); ok {
		t.Fatalf("expected no route across components")
	}
	if w, _, ok := s.Search(0, 2); !ok || w != 2 {
		t.Fatalf("0->2: got (%d,%v), want weight 2", w, ok)
	}
	if w, _, ok := s.Search(3, 5); !ok || w != 4 {
		t.Fatalf("3->5: got (%d,%v), want weight 4", w, ok)
	}
}
