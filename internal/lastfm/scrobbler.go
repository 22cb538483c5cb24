package lastfm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/state"
)

// Storage keys.
const (
	SessionKey = "lastfm-session"
	PendingKey = "lastfm-pending"
)

const (
	minScrobbleDuration = 30 * time.Second
	maxScrobbleDelay    = 4 * time.Minute
	maxAttempts         = 10
	retryInterval       = 5 * time.Minute
)

// Submitter is the part of Client the scrobbler needs.
type Submitter interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// LoadSession returns the linked account, if any.
func LoadSession(store state.Store) (Session, bool, error) {
	var s Session
	ok, err := store.Load(SessionKey, &s)
	if err != nil {
		return Session{}, false, fmt.Errorf("load lastfm session: %w", err)
	}
	return s, ok && s.Key != "", nil
}

// SaveSession persists s. A zero Session unlinks.
func SaveSession(store state.Store, s Session) {
	store.Save(SessionKey, s)
}

// Threshold is how long a track must play before it counts as listened:
// half its duration, at most four minutes. ok is false for tracks too
// short to scrobble.
func Threshold(d time.Duration) (time.Duration, bool) {
	if d < minScrobbleDuration {
		return 0, false
	}
	return min(d/2, maxScrobbleDelay), true
}

// Scrobbler follows the playback service and reports plays. Failed
// scrobbles are kept and retried.
type Scrobbler struct {
	client Submitter
	store  state.Store
	now    func() time.Time

	mu        sync.Mutex
	current   *playlist.Track
	startedAt time.Time
	lastPos   time.Duration
	scrobbled bool
	pending   []ScrobbleTrack
}

// NewScrobbler creates a scrobbler. Call Load to restore pending plays.
func NewScrobbler(client Submitter, store state.Store) *Scrobbler {
	return &Scrobbler{client: client, store: store, now: time.Now}
}

// Load restores the plays that could not be submitted yet.
func (s *Scrobbler) Load() error {
	var pending []ScrobbleTrack
	ok, err := s.store.Load(PendingKey, &pending)
	if err != nil {
		return fmt.Errorf("load pending scrobbles: %w", err)
	}
	if ok {
		s.mu.Lock()
		s.pending = pending
		s.mu.Unlock()
	}
	return nil
}

// Pending returns a copy of the plays waiting to be submitted.
func (s *Scrobbler) Pending() []ScrobbleTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScrobbleTrack, len(s.pending))
	copy(out, s.pending)
	return out
}

// TrackStarted resets play tracking for t and sends the now playing
// update. A nil t stops tracking.
func (s *Scrobbler) TrackStarted(t *playlist.Track) {
	s.mu.Lock()
	s.current = nil
	if t != nil {
		cp := *t
		s.current = &cp
	}
	s.startedAt = s.now()
	s.lastPos = 0
	s.scrobbled = false
	s.mu.Unlock()

	if t == nil {
		return
	}
	st, ok := FromTrack(*t, s.startedAt)
	if !ok {
		return
	}
	// Best effort, nothing to retry.
	if err := s.client.UpdateNowPlaying(st); err != nil {
		log.Debug().Err(err).Str("component", "lastfm").Msg("now playing update failed")
	}
}

// Progress records the playback position and scrobbles the current track
// once it crosses its threshold. Returning to the start after a scrobble
// counts as a new play.
func (s *Scrobbler) Progress(pos time.Duration) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	threshold, ok := Threshold(s.current.Duration)
	if s.scrobbled && pos < time.Second && s.lastPos >= threshold {
		s.startedAt = s.now()
		s.scrobbled = false
	}
	s.lastPos = pos
	if !ok || s.scrobbled || pos < threshold {
		s.mu.Unlock()
		return
	}
	s.scrobbled = true
	st, ok := FromTrack(*s.current, s.startedAt)
	s.mu.Unlock()

	if ok {
		s.submit(st)
	}
}

func (s *Scrobbler) submit(st ScrobbleTrack) {
	err := s.client.Scrobble(st)
	if err == nil {
		log.Debug().Str("component", "lastfm").Str("track", st.Track).Msg("scrobbled")
		return
	}
	log.Warn().Err(err).Str("component", "lastfm").Str("track", st.Track).Msg("scrobble failed, queued for retry")

	s.mu.Lock()
	defer s.mu.Unlock()
	st.Attempts = 1
	s.pending = append(s.pending, st)
	s.store.Save(PendingKey, s.pending)
}

// Retry resubmits the pending plays. Plays that keep failing are dropped
// after a bounded number of attempts.
func (s *Scrobbler) Retry() (succeeded, failed int) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(pending) == 0 {
		return 0, 0
	}

	var keep []ScrobbleTrack
	for _, st := range pending {
		if err := s.client.Scrobble(st); err != nil {
			failed++
			st.Attempts++
			if st.Attempts < maxAttempts {
				keep = append(keep, st)
			}
			continue
		}
		succeeded++
	}

	s.mu.Lock()
	s.pending = append(keep, s.pending...)
	s.store.Save(PendingKey, s.pending)
	s.mu.Unlock()

	log.Debug().Str("component", "lastfm").Int("succeeded", succeeded).Int("failed", failed).Msg("retried pending scrobbles")
	return succeeded, failed
}

// Watch follows sub until ctx ends or sub closes, retrying pending plays
// periodically.
func (s *Scrobbler) Watch(ctx context.Context, sub *playback.Subscription) {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	s.Retry()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case e := <-sub.TrackChanged:
			s.TrackStarted(e.Current)
		case e := <-sub.PositionChanged:
			s.Progress(e.Position)
		case <-ticker.C:
			s.Retry()
		}
	}
}
