package pqueue

import "math"

// MaxPriority is the sentinel returned by PeekPriority on an empty queue.
const MaxPriority = math.MaxInt64

type addrItem struct {
	node     uint32
	priority int64
}

// Addressable is a min-heap keyed by dense node index supporting push,
// pop-min and change-priority, all O(log n). Node contraction needs this: a
// node's priority is recomputed whenever a neighbor is contracted, and the
// queue must reflect the new value without a full rebuild.
type Addressable struct {
	items []addrItem
	pos   []int // pos[node] = index into items, or -1 if node is not queued
}

// NewAddressable allocates an addressable queue over a dense id space
// [0, numNodes).
func NewAddressable(numNodes int) *Addressable {
	pos := make([]int, numNodes)
	for i := range pos {
		pos[i] = -1
	}
	return &Addressable{pos: pos}
}

func (a *Addressable) Len() int { return len(a.items) }

func (a *Addressable) Contains(node uint32) bool { return a.pos[node] >= 0 }

// Push inserts node with the given priority, or updates its priority if
// already queued.
func (a *Addressable) Push(node uint32, priority int64) {
	if a.pos[node] >= 0 {
		a.ChangePriority(node, priority)
		return
	}
	idx := len(a.items)
	a.items = append(a.items, addrItem{node, priority})
	a.pos[node] = idx
	a.siftUp(idx)
}

// PopMin removes and returns the node with the smallest priority. Must not
// be called on an empty queue.
func (a *Addressable) PopMin() (uint32, int64) {
	top := a.items[0]
	n := len(a.items) - 1
	a.moveItem(n, 0)
	a.items = a.items[:n]
	a.pos[top.node] = -1
	if n > 0 {
		a.siftDown(0)
	}
	return top.node, top.priority
}

// PeekPriority returns the smallest queued priority, or MaxPriority if the
// queue is empty.
func (a *Addressable) PeekPriority() int64 {
	if len(a.items) == 0 {
		return MaxPriority
	}
	return a.items[0].priority
}

// ChangePriority updates node's priority in place, re-heapifying around it.
// If node isn't queued, it's inserted.
func (a *Addressable) ChangePriority(node uint32, priority int64) {
	i := a.pos[node]
	if i < 0 {
		a.Push(node, priority)
		return
	}
	old := a.items[i].priority
	a.items[i].priority = priority
	switch {
	case priority < old:
		a.siftUp(i)
	case priority > old:
		a.siftDown(i)
	}
}

func (a *Addressable) moveItem(from, to int) {
	a.items[to] = a.items[from]
	a.pos[a.items[to].node] = to
}

func (a *Addressable) siftUp(i int) {
	item := a.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.priority >= a.items[parent].priority {
			break
		}
		a.moveItem(parent, i)
		i = parent
	}
	a.items[i] = item
	a.pos[item.node] = i
}

func (a *Addressable) siftDown(i int) {
	n := len(a.items)
	item := a.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && a.items[right].priority < a.items[child].priority {
			child = right
		}
		if item.priority <= a.items[child].priority {
			break
		}
		a.moveItem(child, i)
		i = child
	}
	a.items[i] = item
	a.pos[item.node] = i
}
