package chsearch

import "github.com/azybler/chrouter/pkg/overlay"

// maxUnpackDepth bounds the recursion when expanding a shortcut into the
// original edges it represents. The shortcut DAG built by contraction is
// acyclic by construction, so this is a safety net against a corrupted
// overlay, not an expected limit.
const maxUnpackDepth = 128

// reconstruct walks the predecessor edges from source and target back to
// meet, then expands every edge — shortcut or original — into the flat
// node sequence of the actual route.
func (s *Searcher) reconstruct(source, target, meet uint32) []uint32 {
	var fwdEdges []uint32
	node := meet
	for node != source {
		idx := s.predFwd[node]
		if idx == noEdge {
			break
		}
		fwdEdges = append(fwdEdges, idx)
		node = s.og.Edge(idx).Source
	}
	reverseEdges(fwdEdges)

	var bwdEdges []uint32
	node = meet
	for node != target {
		idx := s.predBwd[node]
		if idx == noEdge {
			break
		}
		bwdEdges = append(bwdEdges, idx)
		node = s.og.Edge(idx).Target
	}

	allEdges := append(fwdEdges, bwdEdges...)

	var original []uint32
	for _, idx := range allEdges {
		unpackEdge(s.og, idx, &original, 0)
	}

	nodes := make([]uint32, 0, len(original)+1)
	nodes = append(nodes, source)
	for _, idx := range original {
		nodes = append(nodes, s.og.Edge(idx).Target)
	}
	return nodes
}

// unpackEdge expands edgeIdx into the original (non-shortcut) edges it
// represents, appending them to out in travel order. Unpacking is driven
// purely by the shortcut child map: it does not special-case direction, so
// the same function serves both the forward and backward half of a path.
func unpackEdge(og *overlay.Graph, edgeIdx uint32, out *[]uint32, depth int) {
	if depth > maxUnpackDepth {
		return
	}
	if c1, c2, ok := og.Shortcut(edgeIdx); ok {
		unpackEdge(og, c1, out, depth+1)
		unpackEdge(og, c2, out, depth+1)
		return
	}
	*out = append(*out, edgeIdx)
}

func reverseEdges(s []uint32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
