// Package store provides the observable state container backing a search
// manager. It is a generic single-value store: the state is replaced
// wholesale on every write, so a reader holding a snapshot never observes a
// torn update.
package store

import "sync"

// Store holds one value of type T and notifies subscribers on replacement.
//
// Subscribers run synchronously on the writer's goroutine and without any
// recover: a panic in state-consuming code is a consumer bug and must stay
// visible instead of being absorbed.
type Store[T any] struct {
	mu    sync.RWMutex
	state T
	subs  map[uint64]func(T)
	next  uint64
}

// New creates a store seeded with the initial state.
func New[T any](initial T) *Store[T] {
	return &Store[T]{state: initial, subs: make(map[uint64]func(T))}
}

// Get returns the current state snapshot.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set replaces the state and notifies subscribers.
func (s *Store[T]) Set(next T) {
	s.mu.Lock()
	s.state = next
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Update applies fn to the current state and stores the result, returning
// it. fn must treat its argument as immutable and return a fresh value.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	next := fn(s.state)
	s.state = next
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, f := range subs {
		f(next)
	}
	return next
}

// Subscribe registers fn for every subsequent state replacement and returns
// a cancel function. fn is not called with the current state.
func (s *Store[T]) Subscribe(fn func(T)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// snapshotSubs copies the subscriber set in stable id order. Caller holds mu.
func (s *Store[T]) snapshotSubs() []func(T) {
	out := make([]func(T), 0, len(s.subs))
	for id := uint64(0); id < s.next; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
