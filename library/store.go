package library

import (
	"sync"

	"vibelist/model"
)

// Store holds the in-memory track library behind a read lock. Readers get a
// snapshot slice, so a reload never mutates tracks a generation in flight is
// working with.
type Store struct {
	mu     sync.RWMutex
	tracks []model.Track
}

// NewStore creates a store seeded with the given tracks.
func NewStore(tracks []model.Track) *Store {
	return &Store{tracks: tracks}
}

// Tracks returns a copy of the current library.
func (s *Store) Tracks() []model.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Size returns the number of tracks in the library.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Replace swaps in a new library.
func (s *Store) Replace(tracks []model.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = tracks
}
