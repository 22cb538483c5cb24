package player

import "time"

// Media describes what the engine should load.
type Media struct {
	ID      string
	URL     string
	Title   string
	Artist  string
	Artwork string
}

// Options configures an engine before use.
type Options struct {
	// ProgressInterval is how often EventProgress is emitted while playing.
	// Zero disables progress events.
	ProgressInterval time.Duration
}

// Engine is the audio engine contract the playback service drives.
//
// Commands are fire-and-forget from the caller's point of view: Play
// returns once the media is accepted, and further outcomes (ready, ended,
// asynchronous failures) arrive on Events in emission order.
type Engine interface {
	Configure(opts Options) error
	Play(m Media) error
	Pause()
	Resume()
	Stop()
	SeekTo(pos time.Duration) error
	State() State
	Events() <-chan Event
	Close() error
}

// Verify Player implements Engine at compile time.
var _ Engine = (*Player)(nil)
