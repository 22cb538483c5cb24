package player

import (
	"sync"
	"time"
)

// Call is one command recorded by Mock.
type Call struct {
	Op    string
	Media Media
	Pos   time.Duration
}

// Mock is a test double for Engine. It records every command and lets
// tests inject events.
type Mock struct {
	mu      sync.Mutex
	state   State
	opts    Options
	calls   []Call
	playErr error
	seekErr error
	events  chan Event
	closed  bool
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{
		state:  Stopped,
		events: make(chan Event, eventBuffer),
	}
}

func (m *Mock) record(c Call) {
	m.calls = append(m.calls, c)
}

func (m *Mock) Configure(opts Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
	m.record(Call{Op: "configure"})
	return nil
}

func (m *Mock) Play(media Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "play", Media: media})
	if m.playErr != nil {
		return m.playErr
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "pause"})
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "resume"})
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "stop"})
	m.state = Stopped
}

func (m *Mock) SeekTo(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Op: "seek", Pos: pos})
	return m.seekErr
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Test helpers

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetSeekError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekErr = err
}

func (m *Mock) Options() Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// Calls returns a copy of every recorded command.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Ops returns the recorded command names in order.
func (m *Mock) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, len(m.calls))
	for i, c := range m.calls {
		ops[i] = c.Op
	}
	return ops
}

// PlayCalls returns the media passed to Play, in order.
func (m *Mock) PlayCalls() []Media {
	m.mu.Lock()
	defer m.mu.Unlock()
	var media []Media
	for _, c := range m.calls {
		if c.Op == "play" {
			media = append(media, c.Media)
		}
	}
	return media
}

// SeekCalls returns the positions passed to SeekTo, in order.
func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var seeks []time.Duration
	for _, c := range m.calls {
		if c.Op == "seek" {
			seeks = append(seeks, c.Pos)
		}
	}
	return seeks
}

// ResetCalls forgets recorded commands.
func (m *Mock) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Emit delivers an event as if the engine produced it.
func (m *Mock) Emit(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.events <- e
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
