package playback

import (
	"time"

	"github.com/llehouerou/ripple/internal/playlist"
)

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StatusChanged   <-chan StatusChange
	TrackChanged    <-chan TrackChange
	PositionChanged <-chan PositionChange
	QueueChanged    <-chan QueueChange
	ModeChanged     <-chan ModeChange
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	// Internal write channels
	statusCh   chan StatusChange
	trackCh    chan TrackChange
	positionCh chan PositionChange
	queueCh    chan QueueChange
	modeCh     chan ModeChange
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		statusCh:   make(chan StatusChange, eventBufferSize),
		trackCh:    make(chan TrackChange, eventBufferSize),
		positionCh: make(chan PositionChange, eventBufferSize),
		queueCh:    make(chan QueueChange, eventBufferSize),
		modeCh:     make(chan ModeChange, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StatusChanged = s.statusCh
	s.TrackChanged = s.trackCh
	s.PositionChanged = s.positionCh
	s.QueueChanged = s.queueCh
	s.ModeChanged = s.modeCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendStatus sends a status change event (non-blocking).
func (s *Subscription) sendStatus(e StatusChange) {
	select {
	case s.statusCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendTrack sends a track change event (non-blocking).
func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
	}
}

// sendPosition sends a position change event (non-blocking).
func (s *Subscription) sendPosition(pos time.Duration) {
	select {
	case s.positionCh <- PositionChange{Position: pos}:
	default:
	}
}

// sendQueue sends a queue change event (non-blocking).
func (s *Subscription) sendQueue(e QueueChange) {
	select {
	case s.queueCh <- e:
	default:
	}
}

// sendMode sends a mode change event (non-blocking).
func (s *Subscription) sendMode(e ModeChange) {
	select {
	case s.modeCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}

func (s *serviceImpl) broadcast(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}

// The notify helpers are called with s.mu held so subscribers observe
// changes in the order they were applied.

func (s *serviceImpl) notifyStatus(prev Status) {
	cur := s.st.Status()
	if cur == prev {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendStatus(StatusChange{Previous: prev, Current: cur})
	})
}

func (s *serviceImpl) notifyTrack(prev *playlist.Track) {
	e := TrackChange{
		Previous: copyTrack(prev),
		Current:  copyTrack(s.st.Current),
		Index:    s.st.CurrentIndex(),
	}
	s.broadcast(func(sub *Subscription) { sub.sendTrack(e) })
}

func (s *serviceImpl) notifyQueue() {
	e := QueueChange{Tracks: playlist.Clone(s.st.Queue), Index: s.st.CurrentIndex()}
	s.broadcast(func(sub *Subscription) { sub.sendQueue(e) })
}

func (s *serviceImpl) notifyMode() {
	e := ModeChange{Shuffle: s.st.Shuffle, Repeat: s.st.Repeat}
	s.broadcast(func(sub *Subscription) { sub.sendMode(e) })
}

func (s *serviceImpl) notifyPosition() {
	pos := s.st.LastPosition
	s.broadcast(func(sub *Subscription) { sub.sendPosition(pos) })
}

func copyTrack(t *playlist.Track) *playlist.Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
