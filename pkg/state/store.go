// Package state holds view state as values reduced from actions.
//
// Each view owns one Store. Reducers are pure: they return a new state and
// never mutate slices reachable from the previous one, so snapshots handed
// to subscribers stay valid after later dispatches.
package state

import "sync"

// Reducer folds one action into the state.
type Reducer[S, A any] func(S, A) S

// Store serializes dispatches and fans out post-reduce snapshots.
type Store[S, A any] struct {
	dispatchMu sync.Mutex

	mu     sync.RWMutex
	state  S
	reduce Reducer[S, A]
	subs   map[int]func(S)
	nextID int
}

// New returns a store seeded with initial.
func New[S, A any](initial S, reduce Reducer[S, A]) *Store[S, A] {
	return &Store[S, A]{
		state:  initial,
		reduce: reduce,
		subs:   make(map[int]func(S)),
	}
}

// Dispatch reduces action and notifies subscribers in dispatch order before
// returning the new state. Subscribers must not call Dispatch themselves.
func (s *Store[S, A]) Dispatch(action A) S {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := s.reduce(s.state, action)
	s.state = next
	subs := make([]func(S), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// State returns the current snapshot.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for every later dispatch. The returned func
// removes it and is safe to call more than once.
func (s *Store[S, A]) Subscribe(fn func(S)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
