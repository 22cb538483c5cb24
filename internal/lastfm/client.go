// Package lastfm reports played tracks to Last.fm.
package lastfm

import (
	"errors"
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"
)

// ErrNotAuthenticated is returned when an operation requires a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Client wraps the Last.fm API.
type Client struct {
	api        *lastfm.Api
	apiKey     string
	sessionKey string
}

// New creates a client with the given API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		api:    lastfm.New(apiKey, apiSecret),
		apiKey: apiKey,
	}
}

// SetSessionKey sets the authenticated session key. Empty unlinks.
func (c *Client) SetSessionKey(key string) {
	c.sessionKey = key
	c.api.SetSession(key)
}

// IsAuthenticated reports whether a session key is set.
func (c *Client) IsAuthenticated() bool {
	return c.sessionKey != ""
}

// GetToken requests an authentication token.
func (c *Client) GetToken() (string, error) {
	token, err := c.api.GetToken()
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// GetAuthURL returns the page where the user authorizes token. After
// approval Last.fm redirects to callback when it is not empty.
func (c *Client) GetAuthURL(token, callback string) string {
	u := fmt.Sprintf("https://www.last.fm/api/auth/?api_key=%s&token=%s", c.apiKey, token)
	if callback != "" {
		u += "&cb=" + callback
	}
	return u
}

// GetSession exchanges an authorized token for a session.
func (c *Client) GetSession(token string) (Session, error) {
	if err := c.api.LoginWithToken(token); err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	s := Session{Key: c.api.GetSessionKey(), Username: "unknown"}
	c.sessionKey = s.Key

	// The username is informative only.
	if info, err := c.api.User.GetInfo(nil); err == nil {
		s.Username = info.Name
	}
	return s, nil
}

// UpdateNowPlaying tells Last.fm that track started playing.
func (c *Client) UpdateNowPlaying(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.UpdateNowPlaying(track.params(false)); err != nil {
		return fmt.Errorf("update now playing: %w", err)
	}
	return nil
}

// Scrobble submits a finished play.
func (c *Client) Scrobble(track ScrobbleTrack) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if _, err := c.api.Track.Scrobble(track.params(true)); err != nil {
		return fmt.Errorf("scrobble: %w", err)
	}
	return nil
}

func (t ScrobbleTrack) params(withTimestamp bool) lastfm.P {
	p := lastfm.P{
		"artist": t.Artist,
		"track":  t.Track,
	}
	if withTimestamp {
		p["timestamp"] = t.Timestamp.Unix()
	}
	if t.Album != "" {
		p["album"] = t.Album
	}
	if t.Duration > 0 {
		p["duration"] = int(t.Duration.Seconds())
	}
	return p
}
