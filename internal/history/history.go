// Package history keeps the recently played tracks, most recent first.
package history

import (
	"fmt"
	"sync"

	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/state"
)

// StorageKey is the key the history is persisted under.
const StorageKey = "history-storage"

// Log is an ordered, de-duplicated list of played tracks.
type Log struct {
	mu     sync.RWMutex
	store  state.Store
	tracks []playlist.Track
	limit  int // 0 means unlimited
}

// Option configures a Log.
type Option func(*Log)

// WithLimit caps the number of entries kept. Oldest entries are dropped.
func WithLimit(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.limit = n
		}
	}
}

// New creates an empty history. Call Load to hydrate.
func New(store state.Store, opts ...Option) *Log {
	l := &Log{
		store:  store,
		tracks: []playlist.Track{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory history with the persisted one.
func (l *Log) Load() error {
	var tracks []playlist.Track
	ok, err := l.store.Load(StorageKey, &tracks)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return nil
	}

	l.mu.Lock()
	l.tracks = l.trim(tracks)
	l.mu.Unlock()
	return nil
}

// Record moves t to the front, removing any earlier entry with its id.
func (l *Log) Record(t playlist.Track) {
	l.mu.Lock()
	l.tracks = l.trim(playlist.MoveToFront(l.tracks, t))
	snapshot := playlist.Clone(l.tracks)
	l.mu.Unlock()

	l.store.Save(StorageKey, snapshot)
}

// Clear empties the history.
func (l *Log) Clear() {
	l.mu.Lock()
	l.tracks = []playlist.Track{}
	l.mu.Unlock()

	l.store.Save(StorageKey, []playlist.Track{})
}

// Tracks returns a copy of the history, most recent first.
func (l *Log) Tracks() []playlist.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return playlist.Clone(l.tracks)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tracks)
}

func (l *Log) trim(tracks []playlist.Track) []playlist.Track {
	if l.limit > 0 && len(tracks) > l.limit {
		return tracks[:l.limit]
	}
	return tracks
}
