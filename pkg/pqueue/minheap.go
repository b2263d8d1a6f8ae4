// Package pqueue implements the two priority-queue shapes the contraction
// hierarchy needs: a simple duplicate-tolerant min-heap for Dijkstra-style
// frontiers, and an addressable min-heap for node-ordering during
// contraction, where priorities get revised in place as neighbors contract.
package pqueue

// MaxWeight is the sentinel returned by PeekDist on an empty heap, and used
// throughout the search/contraction packages as "unreached".
const MaxWeight = ^uint32(0)

type heapItem struct {
	node   uint32
	weight uint32
}

// MinHeap is a concrete-typed binary min-heap over (node, weight) pairs.
// Callers may push the same node multiple times with different weights;
// stale entries are expected and must be discarded by the caller comparing
// a popped weight against its own best-known distance for that node.
type MinHeap struct {
	items []heapItem
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(node, weight uint32) {
	h.items = append(h.items, heapItem{node, weight})
	h.siftUp(len(h.items) - 1)
}

// PopMin removes and returns the minimum-weight entry. Callers must not call
// PopMin on an empty heap.
func (h *MinHeap) PopMin() (uint32, uint32) {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top.node, top.weight
}

// PeekDist returns the minimum weight currently queued, or MaxWeight if the
// heap is empty. Lets callers fold the empty-queue case into a single
// comparison instead of a separate Len() check.
func (h *MinHeap) PeekDist() uint32 {
	if len(h.items) == 0 {
		return MaxWeight
	}
	return h.items[0].weight
}

func (h *MinHeap) Reset() { h.items = h.items[:0] }

func (h *MinHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.weight >= h.items[parent].weight {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].weight < h.items[child].weight {
			child = right
		}
		if item.weight <= h.items[child].weight {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}
