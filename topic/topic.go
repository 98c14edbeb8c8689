// Package topic provides a single-slot observable cell with last-value-wins
// semantics: the cell holds only the most recent published value, and each
// watcher sees at most the latest value it has not yet consumed. There is no
// queue and no history.
package topic

import "sync"

// Topic is a many-reader/single-writer cell. Reads never block; Publish
// overwrites the slot and conflates delivery to slow watchers.
type Topic[T any] struct {
	mu      sync.RWMutex
	value   T
	set     bool
	version uint64
	subs    map[uint64]chan T
	nextID  uint64
}

func New[T any]() *Topic[T] {
	return &Topic[T]{
		subs: make(map[uint64]chan T),
	}
}

// Get returns the latest published value. The second return is false until
// the first Publish.
func (t *Topic[T]) Get() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.value, t.set
}

// Version returns the number of publishes so far. Useful for asserting that
// a slot did or did not change.
func (t *Topic[T]) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Publish overwrites the cell and notifies all watchers. A watcher that has
// not drained its channel loses the stale value, not the new one.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.value = v
	t.set = true
	t.version++

	for _, ch := range t.subs {
		select {
		case ch <- v:
		default:
			// Watcher is behind: swap the stale value for the fresh one.
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
}

// Watch registers a watcher and returns its channel plus a cancel func.
// The channel is buffered with capacity one and conflated, so a consumer
// always observes the most recent value first. If a value is already set it
// is delivered immediately.
func (t *Topic[T]) Watch() (<-chan T, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan T, 1)
	if t.set {
		ch <- t.value
	}
	t.subs[id] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
	return ch, cancel
}
