package player

import "time"

// Event is emitted by an engine on its Events channel.
type Event interface {
	event()
}

// EventReady is emitted once the media passed to Play is decoded and
// queued on the output device. Seeking is reliable from this point.
type EventReady struct {
	ID string
}

// EventTrackEnded is emitted when the current media plays to its end.
type EventTrackEnded struct {
	ID string
}

// EventRemoteNext is a "next" command from an external controller
// (headset, lock screen, media session).
type EventRemoteNext struct{}

// EventRemotePrevious is a "previous" command from an external controller.
type EventRemotePrevious struct{}

// EventProgress reports the playback position periodically while playing.
type EventProgress struct {
	Position time.Duration
}

// EventError reports an asynchronous playback failure.
type EventError struct {
	Err error
}

func (EventReady) event()          {}
func (EventTrackEnded) event()     {}
func (EventRemoteNext) event()     {}
func (EventRemotePrevious) event() {}
func (EventProgress) event()       {}
func (EventError) event()          {}
