// Package session holds the ordered transcript of one conversation.
//
// The store is append-only: turns are never edited or removed once written,
// and every read hands out a copy so callers cannot reach the backing slice.
package session

import (
	"sync"

	"github.com/jackwu/routerchat/model"
)

// Observer is called with the new transcript after every append.
type Observer func(turns []model.Turn)

// Store is a concurrency-safe, slice-backed transcript.
type Store struct {
	mu        sync.RWMutex
	turns     []model.Turn
	observers []Observer
}

// New returns a store seeded with the given turns, in order.
func New(seed ...model.Turn) *Store {
	s := &Store{turns: make([]model.Turn, 0, len(seed)+8)}
	for _, t := range seed {
		s.turns = append(s.turns, t.Clone())
	}
	return s
}

// Observe registers fn to run after each append. Observers run on the
// appending goroutine, outside the store lock, in registration order.
func (s *Store) Observe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Append adds turn to the end of the transcript and returns the new snapshot.
func (s *Store) Append(turn model.Turn) []model.Turn {
	s.mu.Lock()
	s.turns = append(s.turns, turn.Clone())
	snapshot := s.snapshotLocked()
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
	return snapshot
}

// Turns returns a copy of the transcript in insertion order.
func (s *Store) Turns() []model.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.RLock()
	n := len(s.turns)
	s.mu.RUnlock()
	return n
}

// Last returns the newest turn, or false on an empty store.
func (s *Store) Last() (model.Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turns) == 0 {
		return model.Turn{}, false
	}
	return s.turns[len(s.turns)-1].Clone(), true
}

func (s *Store) snapshotLocked() []model.Turn {
	out := make([]model.Turn, len(s.turns))
	for i, t := range s.turns {
		out[i] = t.Clone()
	}
	return out
}
