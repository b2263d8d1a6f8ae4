package osmreader

import (
	"sort"

	"github.com/paulmach/osm"

	"github.com/azybler/chrouter/pkg/graph"
)

// BuildGraph converts parsed OSM edges into a graph.Graph with dense node
// indices. Edges are sorted by (source, target) before insertion so the
// adjacency lists — and therefore contraction order and shortcut counts —
// are deterministic regardless of PBF block ordering.
func BuildGraph(result *ParseResult) *graph.Graph {
	g := graph.New()
	if len(result.Edges) == 0 {
		return g
	}

	// Assign dense indices in first-seen order over the edge list.
	nodeIdx := make(map[osm.NodeID]uint32)
	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeIdx[id]; ok {
			return idx
		}
		idx := g.AddNode(graph.Node{ID: int64(id), Pos: result.NodeCoord[id]})
		nodeIdx[id] = idx
		return idx
	}

	type compactEdge struct {
		from, to uint32
		raw      *RawEdge
	}
	compact := make([]compactEdge, len(result.Edges))
	for i := range result.Edges {
		e := &result.Edges[i]
		compact[i] = compactEdge{
			from: addNode(e.FromNodeID),
			to:   addNode(e.ToNodeID),
			raw:  e,
		}
	}

	sort.Slice(compact, func(i, j int) bool {
		if compact[i].from != compact[j].from {
			return compact[i].from < compact[j].from
		}
		return compact[i].to < compact[j].to
	})

	for _, e := range compact {
		idx := g.AddEdge(e.from, e.to, e.raw.Weight)
		if len(e.raw.Shape) > 0 {
			g.SetGeometry(idx, e.raw.Shape)
		}
	}
	return g
}
