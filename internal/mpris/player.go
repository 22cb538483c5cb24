//go:build linux

package mpris

import (
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/player"
)

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the
// loop status and shuffle extensions.
//
// Next and Previous call HandleEvent directly on the D-Bus goroutine with
// the engine's remote-skip events, so skips behave as engine remote
// commands do. The service mutex orders them against Run.
type playerAdapter struct {
	controls Controls
}

func (p *playerAdapter) Next() error {
	p.controls.HandleEvent(player.EventRemoteNext{})
	return nil
}

func (p *playerAdapter) Previous() error {
	p.controls.HandleEvent(player.EventRemotePrevious{})
	return nil
}

func (p *playerAdapter) Pause() error {
	p.controls.SetIsPlaying(false)
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.controls.TogglePlayback()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.controls.ClearCurrentTrack()
	return nil
}

func (p *playerAdapter) Play() error {
	s := p.controls.Snapshot()
	if s.Current == nil && len(s.Queue) > 0 {
		p.controls.SetCurrentTrack(s.Queue[0])
		return nil
	}
	p.controls.SetIsPlaying(true)
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	pos := p.controls.Snapshot().LastPosition + time.Duration(offset)*time.Microsecond
	p.controls.SeekTo(max(pos, 0))
	return nil
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	s := p.controls.Snapshot()
	if s.Current == nil || trackID != formatTrackID(s.Current.ID) {
		return nil // Stale request, ignored per MPRIS
	}
	p.controls.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.controls.Snapshot().Status() {
	case playback.StatusPlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatusPaused:
		return types.PlaybackStatusPaused, nil
	case playback.StatusStopped:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.controls.Snapshot().Current
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.ID)),
		Length:  types.Microseconds(track.Duration.Microseconds()),
		Title:   track.Title,
		Artist:  []string{track.DisplayArtist()},
		Album:   track.Album,
	}
	if isArtURL(track.Cover) {
		meta.ArtUrl = track.Cover
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil // Volume control not exposed
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return p.controls.Snapshot().LastPosition.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.controls.Snapshot().CurrentIndex() >= 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.controls.Snapshot().CurrentIndex() >= 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	s := p.controls.Snapshot()
	return s.Current != nil || len(s.Queue) > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.controls.Snapshot().Current != nil, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// Without repeat the queue still wraps around, hence Playlist.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.controls.Snapshot().Repeat {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusPlaylist, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	want := status == types.LoopStatusTrack
	if p.controls.Snapshot().Repeat != want {
		p.controls.ToggleRepeat()
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.controls.Snapshot().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	if p.controls.Snapshot().Shuffle != shuffle {
		p.controls.ToggleShuffle()
	}
	return nil
}

// formatTrackID maps a track id to a D-Bus object path. Track ids are
// hex hashes or arbitrary strings, so only [A-Za-z0-9_] survive.
func formatTrackID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_%x", r)
		}
	}
	return "/org/mpris/MediaPlayer2/Track/t" + b.String()
}

func isArtURL(cover string) bool {
	return strings.HasPrefix(cover, "file://") ||
		strings.HasPrefix(cover, "https://") ||
		strings.HasPrefix(cover, "http://")
}
