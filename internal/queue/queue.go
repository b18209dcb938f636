// Package queue provides an unbounded FIFO with non-blocking Push and
// blocking Pop, safe for many producers and a single consumer.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Pop once the queue has been closed.
var ErrClosed = errors.New("queue closed")

type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool

	updateSignal chan struct{}
}

func New[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{
		items:        make([]T, 0, capacity),
		updateSignal: make(chan struct{}, 1),
	}
}

// Push appends v and never blocks. It reports false when the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.signalUpdate()
	return true
}

// Pop blocks until an item is available, the context is done, or the queue
// is closed and empty. Items still queued at Close are abandoned; items still
// queued at Finish are returned first.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if q.head < len(q.items) {
			v := q.items[q.head]
			q.items[q.head] = zero
			q.head++
			if q.head == len(q.items) {
				q.items = q.items[:0]
				q.head = 0
			}
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-q.updateSignal:
		}
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close rejects further pushes and abandons anything still queued.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.head = 0
	q.mu.Unlock()

	q.signalUpdate()
}

// Finish rejects further pushes but lets Pop return what is already queued.
func (q *Queue[T]) Finish() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signalUpdate()
}

func (q *Queue[T]) signalUpdate() {
	select {
	case q.updateSignal <- struct{}{}:
	default:
	}
}
