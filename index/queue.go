package index

// queueItem pairs a graph node with its cosine distance to the query.
type queueItem struct {
	node uint32
	dist float32
}

// priorityQueue is a binary heap over queueItems. With maxHeap false the
// closest node surfaces first (candidate frontier); with maxHeap true the
// farthest surfaces first (bounded result set). Value-based storage keeps
// the hot search loop allocation free.
type priorityQueue struct {
	maxHeap bool
	items   []queueItem
}

func newPriorityQueue(maxHeap bool, capacity int) *priorityQueue {
	return &priorityQueue{
		maxHeap: maxHeap,
		items:   make([]queueItem, 0, capacity),
	}
}

func (pq *priorityQueue) Len() int { return len(pq.items) }

// Top returns the root of the heap without removing it.
func (pq *priorityQueue) Top() (queueItem, bool) {
	if len(pq.items) == 0 {
		return queueItem{}, false
	}
	return pq.items[0], true
}

// Push inserts an item, restoring the heap invariant.
func (pq *priorityQueue) Push(item queueItem) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// Pop removes and returns the root, restoring the heap invariant.
func (pq *priorityQueue) Pop() (queueItem, bool) {
	n := len(pq.items)
	if n == 0 {
		return queueItem{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items = pq.items[:n-1]
	if n > 1 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

func (pq *priorityQueue) less(i, j int) bool {
	if pq.maxHeap {
		return pq.items[i].dist > pq.items[j].dist
	}
	return pq.items[i].dist < pq.items[j].dist
}

func (pq *priorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *priorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
