package playlists

import (
	"fmt"
	"sync"

	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/state"
)

// StorageKey is the key the registry is persisted under.
const StorageKey = "playlist-storage"

// Seeded on first run, when nothing has been persisted yet.
const (
	DefaultPlaylistID   = "123"
	DefaultPlaylistName = "Default Playlist"
)

// Playlist is a named, ordered collection of tracks.
// The track list may contain duplicates; callers that add tracks
// filter them (see AddTracks).
type Playlist struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Songs []playlist.Track `json:"songs"`
}

// Contains reports whether the playlist holds a track with the given id.
func (p Playlist) Contains(trackID string) bool {
	return playlist.Contains(p.Songs, trackID)
}

func (p Playlist) clone() Playlist {
	p.Songs = playlist.Clone(p.Songs)
	return p
}

// Playlists is the registry of user playlists, in display order.
type Playlists struct {
	mu        sync.RWMutex
	store     state.Store
	playlists []Playlist
}

// New creates a registry holding the default playlist. Call Load to hydrate.
func New(store state.Store) *Playlists {
	return &Playlists{
		store: store,
		playlists: []Playlist{{
			ID:    DefaultPlaylistID,
			Name:  DefaultPlaylistName,
			Songs: []playlist.Track{},
		}},
	}
}

// Load replaces the registry with the persisted one.
func (p *Playlists) Load() error {
	var loaded []Playlist
	ok, err := p.store.Load(StorageKey, &loaded)
	if err != nil {
		return fmt.Errorf("load playlists: %w", err)
	}
	if !ok {
		return nil
	}
	for i := range loaded {
		if loaded[i].Songs == nil {
			loaded[i].Songs = []playlist.Track{}
		}
	}

	p.mu.Lock()
	p.playlists = loaded
	p.mu.Unlock()
	return nil
}

// Create prepends pl to the registry. The caller supplies a unique id.
func (p *Playlists) Create(pl Playlist) {
	if pl.Songs == nil {
		pl.Songs = []playlist.Track{}
	}
	p.mutate(func(current []Playlist) []Playlist {
		return append([]Playlist{pl.clone()}, current...)
	})
}

// Delete removes the playlist with the given id. Unknown ids are ignored.
func (p *Playlists) Delete(id string) {
	p.mutate(func(current []Playlist) []Playlist {
		result := make([]Playlist, 0, len(current))
		for _, pl := range current {
			if pl.ID != id {
				result = append(result, pl)
			}
		}
		return result
	})
}

// ReplaceAll overwrites the whole registry.
func (p *Playlists) ReplaceAll(playlists []Playlist) {
	p.mutate(func([]Playlist) []Playlist {
		result := make([]Playlist, len(playlists))
		for i, pl := range playlists {
			result[i] = pl.clone()
		}
		return result
	})
}

// Rename changes a playlist name. Returns false if the id is unknown.
func (p *Playlists) Rename(id, name string) bool {
	found := false
	p.mutate(func(current []Playlist) []Playlist {
		result := clonePlaylists(current)
		for i := range result {
			if result[i].ID == id {
				result[i].Name = name
				found = true
			}
		}
		return result
	})
	return found
}

// FindContaining returns the first playlist, in registry order, holding a
// track with the given id.
func (p *Playlists) FindContaining(trackID string) (Playlist, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, pl := range p.playlists {
		if pl.Contains(trackID) {
			return pl.clone(), true
		}
	}
	return Playlist{}, false
}

// Get returns the playlist with the given id.
func (p *Playlists) Get(id string) (Playlist, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, pl := range p.playlists {
		if pl.ID == id {
			return pl.clone(), true
		}
	}
	return Playlist{}, false
}

// List returns a copy of the registry.
func (p *Playlists) List() []Playlist {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clonePlaylists(p.playlists)
}

func (p *Playlists) mutate(fn func([]Playlist) []Playlist) {
	p.mu.Lock()
	p.playlists = fn(p.playlists)
	snapshot := clonePlaylists(p.playlists)
	p.mu.Unlock()

	p.store.Save(StorageKey, snapshot)
}

func clonePlaylists(playlists []Playlist) []Playlist {
	result := make([]Playlist, len(playlists))
	for i, pl := range playlists {
		result[i] = pl.clone()
	}
	return result
}

// RemoveTrack drops every occurrence of trackID from the playlist.
func (p *Playlists) RemoveTrack(playlistID, trackID string) {
	p.mutate(func(current []Playlist) []Playlist {
		return RemoveTrack(current, playlistID, trackID)
	})
}

// MoveTrack reorders one track inside a playlist. Returns false and leaves
// the registry untouched when the playlist or an index is invalid.
func (p *Playlists) MoveTrack(playlistID string, from, to int) bool {
	p.mu.Lock()
	moved, ok := MoveTrack(p.playlists, playlistID, from, to)
	if !ok {
		p.mu.Unlock()
		return false
	}
	p.playlists = moved
	snapshot := clonePlaylists(moved)
	p.mu.Unlock()

	p.store.Save(StorageKey, snapshot)
	return true
}
