// Package broadcast provides a small multi-subscriber hub for state streams.
//
// Every subscriber owns a buffered channel. When a subscriber falls behind,
// the oldest pending value is dropped so the most recent state is always
// delivered. This suits "current state" streams such as authentication
// changes, where intermediate values may be coalesced but the last one must
// never be lost.
package broadcast

import (
	"context"
	"sync"
)

// Hub fans out published values to all live subscribers.
// It is safe for concurrent use.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]chan T
	next   uint64
	buffer int
	closed bool
	done   chan struct{}
}

// New creates a hub whose subscriber channels hold up to buffer pending values.
// buffer is raised to 1 if smaller.
func New[T any](buffer int) *Hub[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub[T]{subs: make(map[uint64]chan T), buffer: buffer, done: make(chan struct{})}
}

// Subscribe registers a subscriber. The returned channel is closed when ctx
// is done or the hub is closed.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	return h.subscribe(ctx, nil)
}

// SubscribeWith registers a subscriber whose first value is initial. No
// publish can interleave before initial.
func (h *Hub[T]) SubscribeWith(ctx context.Context, initial T) <-chan T {
	return h.subscribe(ctx, &initial)
}

func (h *Hub[T]) subscribe(ctx context.Context, initial *T) <-chan T {
	ch := make(chan T, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	if initial != nil {
		ch <- *initial
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			h.unsubscribe(id)
		case <-h.done:
		}
	}()

	return ch
}

func (h *Hub[T]) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers v to every subscriber without blocking.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		// full: drop the oldest pending value and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later subscriptions receive a closed
// channel and later publishes are ignored.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
