package routing

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/paulmach/orb"

	"github.com/azybler/chrouter/pkg/chsearch"
	"github.com/azybler/chrouter/pkg/graph"
	"github.com/azybler/chrouter/pkg/overlay"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// Segment represents a road segment in the route result.
type Segment struct {
	DistanceMeters float64
	Geometry       orb.LineString
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end orb.Point) (*RouteResult, error)
}

// Engine implements Router over a frozen overlay graph. Queries carry no
// shared mutable state: each borrows a Searcher from the pool, so Route is
// safe to call from many goroutines at once.
type Engine struct {
	og      *overlay.Graph
	g       *graph.Graph
	snapper *Snapper

	// origEdge maps (source, target) to the cheapest original edge between
	// them, for recovering geometry from the unpacked node path.
	origEdge map[uint64]uint32

	searchers sync.Pool
}

// NewEngine creates a routing engine from a contracted overlay graph.
func NewEngine(og *overlay.Graph) *Engine {
	g := og.Base()
	e := &Engine{
		og:       og,
		g:        g,
		snapper:  NewSnapper(g),
		origEdge: make(map[uint64]uint32, g.NumEdges()-g.NumShortcuts),
	}
	for idx := uint32(0); idx < uint32(g.NumEdges()); idx++ {
		edge := g.Edges[idx]
		if edge.IsShortcut() {
			continue
		}
		key := uint64(edge.Source)<<32 | uint64(edge.Target)
		if prev, ok := e.origEdge[key]; !ok || edge.Weight < g.Edges[prev].Weight {
			e.origEdge[key] = idx
		}
	}
	e.searchers.New = func() any {
		return chsearch.NewSearcher(og)
	}
	return e
}

// seed is one candidate entry (or exit) node for a snapped point, with the
// travel offset in millimeters between the snap point and that node.
type seed struct {
	node   uint32
	offset uint32
}

func snapSeeds(g *graph.Graph, snap SnapResult) []seed {
	w := float64(g.Edges[snap.EdgeIdx].Weight)
	seeds := []seed{
		{node: snap.NodeU, offset: uint32(math.Round(w * snap.Ratio))},
	}
	if snap.NodeV != snap.NodeU {
		seeds = append(seeds, seed{node: snap.NodeV, offset: uint32(math.Round(w * (1 - snap.Ratio)))})
	}
	return seeds
}

// Route computes the shortest path between two points.
func (e *Engine) Route(ctx context.Context, start, end orb.Point) (*RouteResult, error) {
	startSnap, err := e.snapper.Snap(start)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(end)
	if err != nil {
		return nil, err
	}

	s := e.searchers.Get().(*chsearch.Searcher)
	defer e.searchers.Put(s)

	// Both endpoints of each snapped segment are viable entry/exit nodes;
	// try every combination and keep the cheapest door-to-door total. Among
	// equal totals, the one with the smallest snap offsets wins, so the node
	// path starts and ends as close to the query points as possible.
	bestTotal := uint32(math.MaxUint32)
	bestOffsets := uint32(math.MaxUint32)
	var bestPath []uint32
	found := false

	for _, from := range snapSeeds(e.g, startSnap) {
		for _, to := range snapSeeds(e.g, endSnap) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			weight, path, ok := s.Search(from.node, to.node)
			if !ok {
				continue
			}
			total := from.offset + weight + to.offset
			offsets := from.offset + to.offset
			if total < bestTotal || (total == bestTotal && offsets < bestOffsets) {
				bestTotal = total
				bestOffsets = offsets
				bestPath = path
				found = true
			}
		}
	}

	if !found {
		return nil, ErrNoRoute
	}

	totalMeters := float64(bestTotal) / 1000.0
	return &RouteResult{
		TotalDistanceMeters: totalMeters,
		Segments: []Segment{
			{
				DistanceMeters: totalMeters,
				Geometry:       e.buildGeometry(bestPath),
			},
		},
	}, nil
}

// buildGeometry converts a node path into a coordinate sequence, including
// intermediate shape points from the original edge geometry.
func (e *Engine) buildGeometry(nodes []uint32) orb.LineString {
	if len(nodes) == 0 {
		return nil
	}

	geom := make(orb.LineString, 0, len(nodes)*2)
	geom = append(geom, e.g.Nodes[nodes[0]].Pos)

	for i := 0; i+1 < len(nodes); i++ {
		key := uint64(nodes[i])<<32 | uint64(nodes[i+1])
		if idx, ok := e.origEdge[key]; ok {
			geom = append(geom, e.g.Edges[idx].Geometry...)
		}
		geom = append(geom, e.g.Nodes[nodes[i+1]].Pos)
	}
	return geom
}
