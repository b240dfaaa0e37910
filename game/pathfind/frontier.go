package pathfind

import (
	"container/heap"

	"github.com/wricardo/treasure-path/game/grid"
)

type frontierItem struct {
	node     grid.Coordinate
	cost     int
	priority int
	seq      uint64
}

// frontierQueue orders by priority, then by insertion sequence
type frontierQueue []frontierItem

func (q frontierQueue) Len() int { return len(q) }
func (q frontierQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}
func (q frontierQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontierQueue) Push(x any) {
	*q = append(*q, x.(frontierItem))
}

func (q *frontierQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// frontier is a min-heap with stable FIFO tie-breaking
type frontier struct {
	items frontierQueue
	next  uint64
}

func (f *frontier) push(node grid.Coordinate, cost, priority int) {
	heap.Push(&f.items, frontierItem{node: node, cost: cost, priority: priority, seq: f.next})
	f.next++
}

func (f *frontier) pop() frontierItem {
	return heap.Pop(&f.items).(frontierItem)
}

func (f *frontier) empty() bool {
	return f.items.Len() == 0
}
