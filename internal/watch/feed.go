// Package watch implements the push-updated snapshot views consumed by the
// front end: a feed holds the latest immutable snapshot and notifies
// subscribers after each successful mutation.
package watch

import "sync"

// Feed broadcasts the latest value of one read view. Subscribers are only
// guaranteed to observe monotonically newer snapshots, not every
// intermediate one: a slow listener has stale values replaced, not queued.
type Feed[T any] struct {
	mu     sync.Mutex
	latest T
	ready  bool
	subs   map[int]chan T
	nextID int
}

// NewFeed creates a feed with no value published yet.
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[int]chan T)}
}

// Publish replaces the latest snapshot and notifies every subscriber.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = v
	f.ready = true
	for _, ch := range f.subs {
		// Drop the undelivered previous snapshot so the channel always
		// carries the newest value.
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Latest returns the current snapshot, ok=false before the first publish.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.ready
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (f *Feed[T]) Subscribe() (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan T, 1)
	if f.ready {
		ch <- f.latest
	}
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
	return ch, cancel
}
