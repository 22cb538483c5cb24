// Package favorites keeps the set of favourited tracks.
package favorites

import (
	"fmt"
	"sync"

	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/state"
)

// StorageKey is the key favourites are persisted under.
const StorageKey = "favourite-storage"

// Set holds favourited tracks, newest first, unique by id.
type Set struct {
	mu     sync.RWMutex
	store  state.Store
	tracks []playlist.Track
}

// New creates an empty set. Call Load to hydrate.
func New(store state.Store) *Set {
	return &Set{
		store:  store,
		tracks: []playlist.Track{},
	}
}

// Load replaces the in-memory set with the persisted one.
func (s *Set) Load() error {
	var tracks []playlist.Track
	ok, err := s.store.Load(StorageKey, &tracks)
	if err != nil {
		return fmt.Errorf("load favourites: %w", err)
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.tracks = tracks
	s.mu.Unlock()
	return nil
}

// Toggle removes t if it is a favourite, otherwise adds it at the front.
// Returns true if t is a favourite afterwards.
func (s *Set) Toggle(t playlist.Track) bool {
	s.mu.Lock()
	added := !playlist.Contains(s.tracks, t.ID)
	if added {
		s.tracks = append([]playlist.Track{t}, s.tracks...)
	} else {
		s.tracks = playlist.Without(s.tracks, t.ID)
	}
	snapshot := playlist.Clone(s.tracks)
	s.mu.Unlock()

	s.store.Save(StorageKey, snapshot)
	return added
}

// Contains reports whether the track id is a favourite.
func (s *Set) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return playlist.Contains(s.tracks, id)
}

// Clear removes every favourite.
func (s *Set) Clear() {
	s.mu.Lock()
	s.tracks = []playlist.Track{}
	s.mu.Unlock()

	s.store.Save(StorageKey, []playlist.Track{})
}

// Tracks returns a copy of the favourites, newest first.
func (s *Set) Tracks() []playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return playlist.Clone(s.tracks)
}

// Len returns the number of favourites.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}
