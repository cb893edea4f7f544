package queue

import (
	"container/heap"
	"errors"
	"sync"
	"time"
)

var (
	// ErrQueueClosed is returned when operations are attempted on a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrDuplicate is returned when a sequence number was already pushed or released
	ErrDuplicate = errors.New("duplicate sequence number")
)

// Reorder buffers items that arrive out of sequence and releases them in
// sequence order. It is safe for concurrent use.
type Reorder[T any] struct {
	pending *seqHeap[T]
	seen    map[uint64]struct{}
	next    uint64

	mu     sync.Mutex
	closed bool
	stats  Stats
}

// Stats tracks reorder buffer activity.
type Stats struct {
	TotalPushed   int64
	TotalReleased int64
	CurrentSize   int
	PeakSize      int
	LastRelease   time.Time
}

// NewReorder creates a buffer whose first released item has sequence start.
func NewReorder[T any](start uint64) *Reorder[T] {
	r := &Reorder[T]{
		pending: &seqHeap[T]{},
		seen:    make(map[uint64]struct{}),
		next:    start,
	}
	heap.Init(r.pending)
	return r
}

// Push stores v under seq and returns every item that is now releasable,
// in order. The returned slice is empty while an earlier sequence number
// is still missing.
func (r *Reorder[T]) Push(seq uint64, v T) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrQueueClosed
	}
	if _, dup := r.seen[seq]; dup || seq < r.next {
		return nil, ErrDuplicate
	}

	r.seen[seq] = struct{}{}
	heap.Push(r.pending, &seqItem[T]{seq: seq, value: v})
	r.stats.TotalPushed++

	var ready []T
	for r.pending.Len() > 0 && (*r.pending)[0].seq == r.next {
		item := heap.Pop(r.pending).(*seqItem[T])
		delete(r.seen, item.seq)
		ready = append(ready, item.value)
		r.next++
	}
	if len(ready) > 0 {
		r.stats.TotalReleased += int64(len(ready))
		r.stats.LastRelease = time.Now()
	}
	r.stats.CurrentSize = r.pending.Len()
	if r.stats.CurrentSize > r.stats.PeakSize {
		r.stats.PeakSize = r.stats.CurrentSize
	}
	return ready, nil
}

// Next returns the sequence number the buffer is waiting for.
func (r *Reorder[T]) Next() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}

// Size returns the number of buffered items.
func (r *Reorder[T]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending.Len()
}

// GetStats returns current buffer statistics.
func (r *Reorder[T]) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := r.stats
	stats.CurrentSize = r.pending.Len()
	return stats
}

// Close discards anything still buffered. Subsequent pushes fail.
func (r *Reorder[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.pending = &seqHeap[T]{}
	r.seen = nil
	r.stats.CurrentSize = 0
	return nil
}

// Min-heap on sequence number.
type seqItem[T any] struct {
	seq   uint64
	value T
	index int
}

type seqHeap[T any] []*seqItem[T]

func (h seqHeap[T]) Len() int { return len(h) }

func (h seqHeap[T]) Less(i, j int) bool { return h[i].seq < h[j].seq }

func (h seqHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *seqHeap[T]) Push(x any) {
	item := x.(*seqItem[T])
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *seqHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // Avoid memory leak
	item.index = -1 // For safety
	*h = old[0 : n-1]
	return item
}
