// Package mpris publishes the playback state to desktop media controllers.
package mpris

import (
	"time"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/player"
	"github.com/llehouerou/ripple/internal/playlist"
)

// Controls is the part of the playback service a media session drives.
type Controls interface {
	HandleEvent(e player.Event)
	SetCurrentTrack(t playlist.Track)
	SetIsPlaying(playing bool)
	TogglePlayback()
	ClearCurrentTrack()
	SeekTo(pos time.Duration)
	ToggleShuffle() bool
	ToggleRepeat() bool
	Snapshot() playback.State
}

var _ Controls = playback.Service(nil)
