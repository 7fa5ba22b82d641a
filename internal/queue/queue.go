package queue

import (
	"sync"
)

// Inbox collects results produced on other goroutines so the frame loop can
// consume them in one place. Ready is signalled (non-blocking) on every push,
// letting callers without a frame loop wait for work.
type Inbox[T any] struct {
	mu    sync.Mutex
	items []T
	ready chan struct{}
}

// New creates a new empty inbox.
func New[T any]() *Inbox[T] {
	return &Inbox[T]{
		items: make([]T, 0),
		ready: make(chan struct{}, 1),
	}
}

// Push appends items and wakes a waiter.
func (q *Inbox[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready fires after at least one Push since the last receive.
func (q *Inbox[T]) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of pending items.
func (q *Inbox[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops all pending items.
func (q *Inbox[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
}

// Drain returns all pending items in push order and empties the inbox.
func (q *Inbox[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}
