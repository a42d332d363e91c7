// Package mailbox provides an unbounded FIFO queue with a non-blocking
// producer side and a single blocking, context-aware consumer.
package mailbox

import (
	"context"
	"sync"
)

// compactThreshold is the minimum number of consumed slots before the
// backing slice is compacted to reclaim memory.
const compactThreshold = 64

// Mailbox is an unbounded multi-producer, single-consumer FIFO queue.
// Push never blocks and never fails; Recv blocks until an item arrives or
// the context is cancelled. Capacity is limited by available memory only.
type Mailbox[T any] struct {
	mu     sync.Mutex
	buf    []T
	head   int
	notify chan struct{}
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		// Capacity one so a producer can always leave a wakeup token
		// without blocking; extra tokens coalesce.
		notify: make(chan struct{}, 1),
	}
}

// Push appends v to the tail of the queue. It never blocks.
func (m *Mailbox[T]) Push(v T) {
	m.mu.Lock()
	m.buf = append(m.buf, v)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Recv removes and returns the item at the head of the queue, blocking while
// the queue is empty. It returns ok=false only when ctx is cancelled; the
// queue itself is never closed.
//
// Recv must be called from a single consumer goroutine.
func (m *Mailbox[T]) Recv(ctx context.Context) (v T, ok bool) {
	for {
		m.mu.Lock()
		if m.head < len(m.buf) {
			v = m.buf[m.head]
			var zero T
			m.buf[m.head] = zero // release the reference
			m.head++
			m.compactLocked()
			m.mu.Unlock()
			return v, true
		}
		m.mu.Unlock()

		select {
		case <-m.notify:
			// A stale token from a previous Push may wake us with an
			// empty buffer; loop and re-check.
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// Len reports the number of items currently queued.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buf) - m.head
}

// compactLocked drops consumed slots once they dominate the backing slice.
// Caller must hold mu.
func (m *Mailbox[T]) compactLocked() {
	if m.head < compactThreshold || m.head*2 < len(m.buf) {
		return
	}
	n := copy(m.buf, m.buf[m.head:])
	clear(m.buf[n:])
	m.buf = m.buf[:n]
	m.head = 0
}
