// Package covers decides which artwork a track is displayed with.
package covers

import (
	"fmt"
	"maps"
	"sync"

	"github.com/llehouerou/ripple/internal/state"
)

// StorageKey is the key per-track metadata overrides are persisted under.
const StorageKey = "song-metadata"

type songMetadata struct {
	CustomCover string `json:"customCover,omitempty"`
}

// Overrides stores user-chosen cover URIs keyed by track id.
type Overrides struct {
	mu    sync.RWMutex
	store state.Store
	byID  map[string]songMetadata
}

// NewOverrides creates an empty override set. Call Load to hydrate.
func NewOverrides(store state.Store) *Overrides {
	return &Overrides{
		store: store,
		byID:  make(map[string]songMetadata),
	}
}

// Load replaces the overrides with the persisted ones.
func (o *Overrides) Load() error {
	loaded := make(map[string]songMetadata)
	ok, err := o.store.Load(StorageKey, &loaded)
	if err != nil {
		return fmt.Errorf("load cover overrides: %w", err)
	}
	if !ok {
		return nil
	}

	o.mu.Lock()
	o.byID = loaded
	o.mu.Unlock()
	return nil
}

// Get returns the custom cover for a track.
func (o *Overrides) Get(trackID string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	m, ok := o.byID[trackID]
	if !ok || m.CustomCover == "" {
		return "", false
	}
	return m.CustomCover, true
}

// Set records a custom cover for a track. An empty uri removes it.
func (o *Overrides) Set(trackID, uri string) {
	if uri == "" {
		o.Remove(trackID)
		return
	}
	o.mutate(func(m map[string]songMetadata) {
		m[trackID] = songMetadata{CustomCover: uri}
	})
}

// Remove drops the custom cover for a track.
func (o *Overrides) Remove(trackID string) {
	o.mutate(func(m map[string]songMetadata) {
		delete(m, trackID)
	})
}

// Clear drops every custom cover.
func (o *Overrides) Clear() {
	o.mutate(func(m map[string]songMetadata) {
		clear(m)
	})
}

// Len returns the number of tracks with a custom cover.
func (o *Overrides) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.byID)
}

func (o *Overrides) mutate(fn func(map[string]songMetadata)) {
	o.mu.Lock()
	fn(o.byID)
	snapshot := maps.Clone(o.byID)
	o.mu.Unlock()

	o.store.Save(StorageKey, snapshot)
}
