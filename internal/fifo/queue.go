package fifo

import (
	"errors"
	"sync"
)

// ErrClosed is returned when operations are attempted on a closed queue.
var ErrClosed = errors.New("queue is closed")

// Queue is an unbounded, thread-safe FIFO queue. It supports any number of
// producers and consumers, though the intended shape is many producers and a
// single consumer per queue.
//
// Items are delivered strictly in enqueue order. There is no capacity limit:
// Enqueue never blocks and never drops.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond

	items  []T
	closed bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item to the tail of the queue. It returns ErrClosed if
// the queue has been closed.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, item)
	q.notEmpty.Signal()
	return nil
}

// Dequeue removes and returns the item at the head of the queue, blocking
// until an item is available. Once the queue is closed and drained, Dequeue
// returns the zero value and ErrClosed.
func (q *Queue[T]) Dequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if len(q.items) == 0 {
		var zero T
		return zero, ErrClosed
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// TryDequeue removes and returns the head item without blocking. The second
// return value reports whether an item was available.
func (q *Queue[T]) TryDequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Drain removes and returns all items currently in the queue without
// blocking. It returns nil when the queue is empty.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	items := q.items
	q.items = nil
	return items
}

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue as closed and wakes all blocked consumers. Items
// already queued remain dequeueable; further enqueues fail with ErrClosed.
// Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.notEmpty.Broadcast()
}

// Closed reports whether the queue has been closed.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
