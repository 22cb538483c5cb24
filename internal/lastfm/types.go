package lastfm

import (
	"time"

	"github.com/llehouerou/ripple/internal/playlist"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string        `json:"artist"`
	Track     string        `json:"track"`
	Album     string        `json:"album,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"` // when playback started
	Attempts  int           `json:"attempts,omitempty"`
}

// FromTrack builds the scrobble for t started at startedAt. ok is false
// for tracks Last.fm would reject: no title or no artist.
func FromTrack(t playlist.Track, startedAt time.Time) (ScrobbleTrack, bool) {
	if t.Title == "" || t.Artist == "" {
		return ScrobbleTrack{}, false
	}
	return ScrobbleTrack{
		Artist:    t.Artist,
		Track:     t.Title,
		Album:     t.Album,
		Duration:  t.Duration,
		Timestamp: startedAt,
	}, true
}

// Session is a linked Last.fm account.
type Session struct {
	Username string    `json:"username"`
	Key      string    `json:"key"`
	LinkedAt time.Time `json:"linkedAt"`
}
