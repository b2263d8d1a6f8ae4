// Package routing glues the contraction-hierarchy query to geographic
// input: it snaps raw lat/lng points onto the road network, runs the
// bidirectional search between the snapped segments, and turns the result
// back into route geometry.
package routing

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/azybler/chrouter/pkg/geo"
	"github.com/azybler/chrouter/pkg/graph"
)

const maxSnapDistMeters = 500.0

// metersPerDegreeLat is exact enough for converting the snap radius into a
// search rectangle; the final distance check uses real great-circle math.
const metersPerDegreeLat = 111_320.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeIdx uint32  // index of an original (non-shortcut) edge
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Ratio   float64 // 0.0 = at NodeU, 1.0 = at NodeV, measured along the polyline
	Dist    float64 // distance in meters from query point to snapped point
}

// Snapper provides nearest-road snapping via an R-tree over the bounding
// boxes of the original edges' polylines.
type Snapper struct {
	tr rtree.RTreeG[uint32]
	g  *graph.Graph
}

// NewSnapper indexes the original (non-shortcut) edges of g. Shortcut
// edges are skipped: they are search artifacts, not roads a point can lie
// on.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{g: g}
	for e := uint32(0); e < uint32(g.NumEdges()); e++ {
		// A cheap parallel shortcut can overwrite an original edge's slot,
		// so filter by the edge itself rather than trusting index ranges.
		if g.Edges[e].IsShortcut() {
			continue
		}
		min, max := edgeBounds(g, e)
		s.tr.Insert(min, max, e)
	}
	return s
}

func edgeBounds(g *graph.Graph, e uint32) (min, max [2]float64) {
	edge := g.Edges[e]
	min = [2]float64{math.Inf(1), math.Inf(1)}
	max = [2]float64{math.Inf(-1), math.Inf(-1)}
	expand := func(p orb.Point) {
		min[0] = math.Min(min[0], p.X())
		min[1] = math.Min(min[1], p.Y())
		max[0] = math.Max(max[0], p.X())
		max[1] = math.Max(max[1], p.Y())
	}
	expand(g.Nodes[edge.Source].Pos)
	for _, p := range edge.Geometry {
		expand(p)
	}
	expand(g.Nodes[edge.Target].Pos)
	return min, max
}

// polyline returns the full shape of edge e: source node, intermediate
// shape points, target node.
func polyline(g *graph.Graph, e uint32) []orb.Point {
	edge := g.Edges[e]
	pts := make([]orb.Point, 0, len(edge.Geometry)+2)
	pts = append(pts, g.Nodes[edge.Source].Pos)
	pts = append(pts, edge.Geometry...)
	pts = append(pts, g.Nodes[edge.Target].Pos)
	return pts
}

// Snap finds the nearest road segment to p, or ErrPointTooFar if nothing
// lies within the snap radius.
func (s *Snapper) Snap(p orb.Point) (SnapResult, error) {
	dLat := maxSnapDistMeters / metersPerDegreeLat
	dLon := dLat / math.Max(math.Cos(p.Y()*math.Pi/180), 0.01)
	min := [2]float64{p.X() - dLon, p.Y() - dLat}
	max := [2]float64{p.X() + dLon, p.Y() + dLat}

	bestDist := math.Inf(1)
	var best SnapResult

	s.tr.Search(min, max, func(_, _ [2]float64, e uint32) bool {
		dist, ratio := snapToPolyline(p, polyline(s.g, e))
		if dist < bestDist {
			bestDist = dist
			edge := s.g.Edges[e]
			best = SnapResult{
				EdgeIdx: e,
				NodeU:   edge.Source,
				NodeV:   edge.Target,
				Ratio:   ratio,
				Dist:    dist,
			}
		}
		return true
	})

	if bestDist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}

// snapToPolyline finds the closest point on the polyline to p, returning
// the distance in meters and the position along the whole polyline as a
// [0,1] ratio of its (approximate) length.
func snapToPolyline(p orb.Point, pts []orb.Point) (dist, ratio float64) {
	bestDist := math.Inf(1)
	bestPrefix := 0.0
	totalLen := 0.0

	for i := 0; i+1 < len(pts); i++ {
		segLen := geo.EquirectangularDist(pts[i], pts[i+1])
		d, t := geo.PointToSegmentDist(p, pts[i], pts[i+1])
		if d < bestDist {
			bestDist = d
			bestPrefix = totalLen + t*segLen
		}
		totalLen += segLen
	}

	if totalLen == 0 {
		return bestDist, 0
	}
	return bestDist, bestPrefix / totalLen
}
