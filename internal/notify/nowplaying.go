package notify

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/playlist"
)

// NowPlaying announces every new current track, replacing its previous
// notification instead of stacking them.
type NowPlaying struct {
	notifier Notifier
	showArt  bool
	timeout  int32

	mu     sync.Mutex
	lastID uint32
}

// NewNowPlaying creates an announcer. timeout is in milliseconds.
func NewNowPlaying(n Notifier, showArt bool, timeout int32) *NowPlaying {
	return &NowPlaying{notifier: n, showArt: showArt, timeout: timeout}
}

// Announce posts the notification for t.
func (p *NowPlaying) Announce(t playlist.Track) {
	if p == nil || p.notifier == nil {
		return
	}

	n := Notification{
		Title:   t.Title,
		Body:    body(t),
		Timeout: p.timeout,
		Urgency: UrgencyLow,
	}
	if p.showArt {
		n.Icon = localPath(t.Cover)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	n.ReplacesID = p.lastID
	id, err := p.notifier.Notify(n)
	if err != nil {
		log.Debug().Err(err).Str("component", "notify").Msg("now playing notification failed")
		return
	}
	p.lastID = id
}

// Watch announces track changes from sub until ctx ends or sub closes.
func (p *NowPlaying) Watch(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.TrackChanged:
			if e.Current != nil {
				p.Announce(*e.Current)
			}
		}
	}
}

func body(t playlist.Track) string {
	if t.Album == "" {
		return t.DisplayArtist()
	}
	return t.DisplayArtist() + " · " + t.Album
}

// localPath returns the filesystem path of a file:// cover, or "" for
// anything a notification daemon cannot load.
func localPath(cover string) string {
	if !strings.HasPrefix(cover, "file://") {
		return ""
	}
	u, err := url.Parse(cover)
	if err != nil {
		return ""
	}
	return u.Path
}
