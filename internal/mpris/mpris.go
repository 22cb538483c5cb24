//go:build linux

package mpris

import (
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/rs/zerolog/log"
)

// Adapter exposes the playback service over D-Bus as an MPRIS player.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter under the given bus name
// (org.mpris.MediaPlayer2.<name>).
func New(name string, controls Controls) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(name, &rootAdapter{name: name}, &playerAdapter{controls: controls}),
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			log.Warn().Err(err).Str("component", "mpris").Msg("media session unavailable")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct {
	name string
}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return r.name, nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav"}, nil
}
