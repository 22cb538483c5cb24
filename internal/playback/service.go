package playback

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/player"
	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/settings"
	"github.com/llehouerou/ripple/internal/state"
)

// StorageKey is the key the now-playing state is persisted under.
const StorageKey = "audio-context"

// DefaultResumeGrace bounds how long Resume waits for the engine to report
// the media ready before seeking anyway.
const DefaultResumeGrace = 500 * time.Millisecond

// Service defines the playback service contract.
type Service interface {
	// Track selection
	SetCurrentTrack(t playlist.Track)
	ClearCurrentTrack()
	PlayQueue(tracks []playlist.Track, startIndex int)
	PlayNext(forceSkip bool)
	PlayPrevious()

	// Transport
	SetIsPlaying(playing bool)
	TogglePlayback()
	SeekTo(pos time.Duration)
	SetLastPosition(pos time.Duration)

	// Queue and modes
	SetQueue(tracks []playlist.Track)
	ToggleShuffle() bool
	ToggleRepeat() bool

	// Engine integration
	HandleEvent(e player.Event)
	Run(ctx context.Context) error

	// Startup
	Hydrate() error
	Hydrated() <-chan struct{}
	Resume(ctx context.Context) error

	// Queries
	Snapshot() State
	CurrentTrack() *playlist.Track
	IsPlaying() bool
	Status() Status
	Queue() []playlist.Track
	CurrentIndex() int
	Shuffle() bool
	Repeat() bool
	LastPosition() time.Duration

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// HistoryRecorder receives every track that becomes current.
type HistoryRecorder interface {
	Record(t playlist.Track)
}

// CoverResolver fills in the display cover of a track.
type CoverResolver interface {
	Resolve(t playlist.Track) playlist.Track
}

// Config holds the collaborators of the playback service.
// Engine and Store are required; the others may be nil.
type Config struct {
	Engine   player.Engine
	Store    state.Store
	History  HistoryRecorder
	Settings settings.Reader
	Covers   CoverResolver

	// ResumeGrace defaults to DefaultResumeGrace.
	ResumeGrace time.Duration

	// IntN returns a random int in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	mu sync.RWMutex

	engine   player.Engine
	store    state.Store
	history  HistoryRecorder
	settings settings.Reader
	covers   CoverResolver
	grace    time.Duration
	intN     func(int) int

	st      State
	pending *pendingSeek

	hydrated     chan struct{}
	hydratedOnce sync.Once

	subs   []*Subscription
	subsMu sync.RWMutex

	closed bool
}

// pendingSeek is a position to restore once the engine reports the media
// with the given id ready.
type pendingSeek struct {
	id    string
	pos   time.Duration
	ready chan struct{}
}

// New creates a playback service with an empty state.
// Call Hydrate to restore the persisted one.
func New(cfg Config) Service {
	s := &serviceImpl{
		engine:   cfg.Engine,
		store:    cfg.Store,
		history:  cfg.History,
		settings: cfg.Settings,
		covers:   cfg.Covers,
		grace:    cfg.ResumeGrace,
		intN:     cfg.IntN,
		hydrated: make(chan struct{}),
	}
	if s.grace <= 0 {
		s.grace = DefaultResumeGrace
	}
	if s.intN == nil {
		s.intN = rand.IntN
	}
	if s.settings == nil {
		s.settings = staticSettings(settings.Defaults())
	}
	return s
}

type staticSettings settings.Settings

func (s staticSettings) Get() settings.Settings { return settings.Settings(s) }

// persistedState is the stored form of State. Shuffle and repeat are not
// stored; they come from preferences at startup.
type persistedState struct {
	Song         *playlist.Track  `json:"song"`
	Playlist     []playlist.Track `json:"playlist"`
	IsPlaying    bool             `json:"isPlaying"`
	LastPosition int64            `json:"lastPosition"` // milliseconds
}

func (s *serviceImpl) persistLocked() {
	s.store.Save(StorageKey, persistedState{
		Song:         s.st.Current,
		Playlist:     s.st.Queue,
		IsPlaying:    s.st.Playing,
		LastPosition: s.st.LastPosition.Milliseconds(),
	})
}

// Hydrate loads the persisted state and signals Hydrated. It is safe to
// call once; Hydrated is closed even when loading fails.
func (s *serviceImpl) Hydrate() error {
	defer s.hydratedOnce.Do(func() { close(s.hydrated) })

	var p persistedState
	ok, err := s.store.Load(StorageKey, &p)

	prefs := s.settings.Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && ok {
		s.st.Current = p.Song
		s.st.Queue = playlist.Clone(p.Playlist)
		// Nothing is loaded in the engine until Resume or an explicit play.
		s.st.Playing = false
		s.st.LastPosition = max(time.Duration(p.LastPosition)*time.Millisecond, 0)
	}
	s.st = applyModes(s.st, prefs.AlwaysShuffle, prefs.AlwaysRepeat)

	if err != nil {
		return fmt.Errorf("load playback state: %w", err)
	}
	return nil
}

func (s *serviceImpl) Hydrated() <-chan struct{} {
	return s.hydrated
}

// Resume restores playback after startup. It waits for hydration, then,
// if resuming is enabled and a track is current, reloads it and seeks to
// the last position once the engine reports it ready or the grace period
// elapses. Otherwise it only marks playback as paused.
func (s *serviceImpl) Resume(ctx context.Context) error {
	select {
	case <-s.hydrated:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	if !s.settings.Get().ResumeOnStartup || s.st.Current == nil {
		prev := s.st.Status()
		s.st.Playing = false
		s.persistLocked()
		s.notifyStatus(prev)
		s.mu.Unlock()
		return nil
	}

	resolved := s.resolve(*s.st.Current)
	prev := s.st.Status()
	s.st.Current = &resolved
	s.st.Playing = true
	p := s.loadLocked(resolved, s.st.LastPosition)
	s.persistLocked()
	s.notifyStatus(prev)
	s.mu.Unlock()

	if p == nil {
		return nil
	}

	timer := time.NewTimer(s.grace)
	defer timer.Stop()
	select {
	case <-p.ready:
		return nil
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applySeekLocked(p)
	return nil
}

// loadLocked issues load+play for t and arranges a seek to pos once the
// engine reports it ready. Returns nil when there is nothing to wait for.
func (s *serviceImpl) loadLocked(t playlist.Track, pos time.Duration) *pendingSeek {
	s.pending = nil
	if err := s.engine.Play(mediaFor(t)); err != nil {
		s.reportError("play", t.ID, err)
		return nil
	}
	if pos <= 0 {
		return nil
	}
	s.pending = &pendingSeek{id: t.ID, pos: pos, ready: make(chan struct{})}
	return s.pending
}

// applySeekLocked performs p unless it was already applied or superseded.
func (s *serviceImpl) applySeekLocked(p *pendingSeek) {
	if s.pending != p {
		return
	}
	s.pending = nil
	defer close(p.ready)
	if s.st.Current == nil || s.st.Current.ID != p.id {
		return
	}
	if err := s.engine.SeekTo(p.pos); err != nil {
		s.reportError("seek", p.id, err)
	}
}

func mediaFor(t playlist.Track) player.Media {
	return player.Media{
		ID:      t.ID,
		URL:     t.URL,
		Title:   t.Title,
		Artist:  t.DisplayArtist(),
		Artwork: t.Cover,
	}
}

func (s *serviceImpl) resolve(t playlist.Track) playlist.Track {
	if s.covers == nil {
		return t
	}
	return s.covers.Resolve(t)
}

// SetCurrentTrack makes t current and plays it from the start.
// Selecting the track that is already current does nothing.
func (s *serviceImpl) SetCurrentTrack(t playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCurrentTrackLocked(t)
}

func (s *serviceImpl) setCurrentTrackLocked(t playlist.Track) {
	if s.st.Current != nil && s.st.Current.ID == t.ID {
		return
	}

	resolved := s.resolve(t)
	prev := s.st
	next, _ := selectTrack(s.st, resolved)
	s.st = next

	if s.history != nil {
		s.history.Record(t)
	}
	s.loadLocked(resolved, 0)
	s.persistLocked()

	s.notifyTrack(prev.Current)
	s.notifyStatus(prev.Status())
	if prev.LastPosition != 0 {
		s.notifyPosition()
	}
}

// ClearCurrentTrack unloads the current track and stops the engine.
func (s *serviceImpl) ClearCurrentTrack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.st
	s.st = clearTrack(s.st)
	s.pending = nil
	s.engine.Stop()
	s.persistLocked()

	if prev.Current != nil {
		s.notifyTrack(prev.Current)
	}
	s.notifyStatus(prev.Status())
}

// SetIsPlaying resumes or pauses the engine. Asking to play with no current
// track does nothing.
func (s *serviceImpl) SetIsPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setIsPlayingLocked(playing)
}

func (s *serviceImpl) setIsPlayingLocked(playing bool) {
	if playing && s.st.Current == nil {
		return
	}
	prev := s.st.Status()
	next, changed := setPlaying(s.st, playing)
	s.st = next

	switch {
	case playing && s.engine.State() == player.Stopped:
		// Nothing loaded, e.g. after startup without resume.
		s.loadLocked(*s.st.Current, s.st.LastPosition)
	case playing:
		s.engine.Resume()
	default:
		s.engine.Pause()
	}

	if changed {
		s.persistLocked()
		s.notifyStatus(prev)
	}
}

// TogglePlayback flips between playing and paused.
func (s *serviceImpl) TogglePlayback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setIsPlayingLocked(!s.st.Playing)
}

// SeekTo moves the engine to pos and records it.
func (s *serviceImpl) SeekTo(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Current == nil {
		return
	}
	if err := s.engine.SeekTo(max(pos, 0)); err != nil {
		s.reportError("seek", s.st.Current.ID, err)
		return
	}
	s.setLastPositionLocked(pos)
}

// SetLastPosition records playback progress without commanding the engine.
func (s *serviceImpl) SetLastPosition(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLastPositionLocked(pos)
}

func (s *serviceImpl) setLastPositionLocked(pos time.Duration) {
	s.st = setPosition(s.st, pos)
	s.persistLocked()
	s.notifyPosition()
}

// SetQueue replaces the queue. The current track is kept even when it is
// not part of the new queue.
func (s *serviceImpl) SetQueue(tracks []playlist.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setQueueLocked(tracks)
}

func (s *serviceImpl) setQueueLocked(tracks []playlist.Track) {
	s.st.Queue = playlist.Clone(tracks)
	s.persistLocked()
	s.notifyQueue()
}

// PlayQueue replaces the queue and plays the track at startIndex.
// An out-of-range index only replaces the queue.
func (s *serviceImpl) PlayQueue(tracks []playlist.Track, startIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setQueueLocked(tracks)
	if startIndex >= 0 && startIndex < len(tracks) {
		s.setCurrentTrackLocked(tracks[startIndex])
	}
}

// ToggleShuffle flips shuffle and returns the new value.
// Enabling shuffle disables repeat.
func (s *serviceImpl) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = toggleShuffle(s.st)
	s.notifyMode()
	return s.st.Shuffle
}

// ToggleRepeat flips repeat and returns the new value.
// Enabling repeat disables shuffle.
func (s *serviceImpl) ToggleRepeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = toggleRepeat(s.st)
	s.notifyMode()
	return s.st.Repeat
}

// PlayNext advances according to the repeat, shuffle and sequential
// policies. forceSkip bypasses repeat. Does nothing when the queue is empty
// or does not contain the current track.
func (s *serviceImpl) PlayNext(forceSkip bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked(forceSkip)
}

// advanceLocked reports whether playback moved or restarted.
func (s *serviceImpl) advanceLocked(forceSkip bool) bool {
	i, ok := nextIndex(s.st, forceSkip, s.intN)
	if !ok {
		return false
	}
	if s.st.Repeat && !forceSkip {
		s.restartLocked()
		return true
	}
	if s.st.Queue[i].ID == s.st.Current.ID {
		return false
	}
	s.setCurrentTrackLocked(s.st.Queue[i])
	return true
}

// restartLocked plays the current track again from the start. The track
// stays current, so history and track subscribers are not involved.
func (s *serviceImpl) restartLocked() {
	prev := s.st.Status()
	s.st.Playing = true
	s.st.LastPosition = 0
	s.loadLocked(*s.st.Current, 0)
	s.persistLocked()
	s.notifyStatus(prev)
	s.notifyPosition()
}

// PlayPrevious moves to the previous queue track, wrapping to the last.
func (s *serviceImpl) PlayPrevious() {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := previousIndex(s.st)
	if !ok {
		return
	}
	s.setCurrentTrackLocked(s.st.Queue[i])
}

// HandleEvent reacts to one engine event.
func (s *serviceImpl) HandleEvent(e player.Event) {
	switch e := e.(type) {
	case player.EventTrackEnded:
		s.trackEnded(e.ID)
	case player.EventRemoteNext:
		s.PlayNext(true)
	case player.EventRemotePrevious:
		s.PlayPrevious()
	case player.EventProgress:
		s.SetLastPosition(e.Position)
	case player.EventReady:
		s.mu.Lock()
		if s.pending != nil && s.pending.id == e.ID {
			s.applySeekLocked(s.pending)
		}
		s.mu.Unlock()
	case player.EventError:
		s.mu.Lock()
		id := ""
		if s.st.Current != nil {
			id = s.st.Current.ID
		}
		s.reportError("engine", id, e.Err)
		s.mu.Unlock()
	}
}

func (s *serviceImpl) trackEnded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.Current == nil || (id != "" && id != s.st.Current.ID) {
		// Ended event for a track that was already replaced.
		return
	}
	if s.settings.Get().AutoplayNext && s.advanceLocked(false) {
		return
	}

	prev := s.st.Status()
	s.st.Playing = false
	s.st.LastPosition = 0
	s.persistLocked()
	s.notifyStatus(prev)
	s.notifyPosition()
}

// Run consumes engine events in emission order until ctx is done or the
// engine closes its event channel.
func (s *serviceImpl) Run(ctx context.Context) error {
	events := s.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			s.HandleEvent(e)
		}
	}
}

func (s *serviceImpl) reportError(op, trackID string, err error) {
	log.Error().
		Err(err).
		Str("component", "playback").
		Str("op", op).
		Str("track", trackID).
		Msg("playback error")
	s.broadcast(func(sub *Subscription) {
		sub.sendError(ErrorEvent{Operation: op, TrackID: trackID, Err: err})
	})
}

// Snapshot returns a copy of the whole state.
func (s *serviceImpl) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Clone()
}

// CurrentTrack returns a copy of the current track, or nil if none.
func (s *serviceImpl) CurrentTrack() *playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.Current == nil {
		return nil
	}
	t := *s.st.Current
	return &t
}

func (s *serviceImpl) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Playing
}

func (s *serviceImpl) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Status()
}

// Queue returns a copy of the queue.
func (s *serviceImpl) Queue() []playlist.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return playlist.Clone(s.st.Queue)
}

// CurrentIndex returns the queue index of the current track (-1 if none).
func (s *serviceImpl) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.CurrentIndex()
}

func (s *serviceImpl) Shuffle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Shuffle
}

func (s *serviceImpl) Repeat() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Repeat
}

func (s *serviceImpl) LastPosition() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.LastPosition
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Close ends every subscription. The engine is owned by the caller.
func (s *serviceImpl) Close() error {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	return nil
}
