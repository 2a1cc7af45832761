package charts

import "container/heap"

type queued[T any] struct {
	value    T
	priority float64
	seq      uint64
}

// maxQueue is a max-priority queue. Equal priorities pop in push order, so
// a run is reproducible for a given input.
type maxQueue[T any] struct {
	items []queued[T]
	seq   uint64
}

func (q *maxQueue[T]) Len() int { return len(q.items) }

func (q *maxQueue[T]) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.seq < b.seq
}

func (q *maxQueue[T]) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *maxQueue[T]) Push(x any) { q.items = append(q.items, x.(queued[T])) }

func (q *maxQueue[T]) Pop() any {
	n := len(q.items)
	it := q.items[n-1]
	q.items = q.items[:n-1]
	return it
}

func (q *maxQueue[T]) push(v T, priority float64) {
	heap.Push(q, queued[T]{value: v, priority: priority, seq: q.seq})
	q.seq++
}

func (q *maxQueue[T]) pop() T {
	return heap.Pop(q).(queued[T]).value
}
