package playback

import (
	"time"

	"github.com/llehouerou/ripple/internal/playlist"
)

// StatusChange is emitted when the transport status changes.
type StatusChange struct {
	Previous Status
	Current  Status
}

// TrackChange is emitted when a different track becomes current.
//
// Emitted by SetCurrentTrack and everything built on it (PlayQueue,
// PlayNext, PlayPrevious), and by ClearCurrentTrack with a nil Current.
// Not emitted when the selected track is already current, nor when repeat
// restarts the current track.
type TrackChange struct {
	Previous *playlist.Track
	Current  *playlist.Track
	Index    int
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []playlist.Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle changes.
type ModeChange struct {
	Shuffle bool
	Repeat  bool
}

// PositionChange is emitted when the recorded position changes.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when an engine command or the engine itself fails.
type ErrorEvent struct {
	Operation string // e.g., "play", "seek", "engine"
	TrackID   string
	Err       error
}
