package playback

import (
	"time"

	"github.com/llehouerou/ripple/internal/playlist"
)

// State is a snapshot of the now-playing state.
//
// Shuffle and Repeat are never both true.
type State struct {
	Current      *playlist.Track
	Playing      bool
	Queue        []playlist.Track
	Shuffle      bool
	Repeat       bool
	LastPosition time.Duration
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	if s.Current != nil {
		t := *s.Current
		s.Current = &t
	}
	s.Queue = playlist.Clone(s.Queue)
	return s
}

// CurrentIndex returns the index of the current track in the queue, or -1.
func (s State) CurrentIndex() int {
	if s.Current == nil {
		return -1
	}
	return playlist.IndexOf(s.Queue, s.Current.ID)
}

// Status derives the transport status from the state.
func (s State) Status() Status {
	switch {
	case s.Current == nil:
		return StatusStopped
	case s.Playing:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

// Status is the coarse transport status shown to media controllers.
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "Stopped"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a track is loaded (playing or paused).
func (s Status) IsActive() bool {
	return s == StatusPlaying || s == StatusPaused
}
