package player

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog/log"
)

// ErrUnsupportedFormat is returned for media beep cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("player closed")

const (
	outputSampleRate = beep.SampleRate(44100)
	resampleQuality  = 4
	eventBuffer      = 64
)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(f)
	},
	".flac": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(f)
	},
	".wav": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(f)
	},
	".ogg":  decodeOggFile,
	".oga":  decodeOggFile,
	".opus": decodeOggFile,
}

func decodeOggFile(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	return decodeOgg(f)
}

// IsSupported reports whether the file extension has a decoder.
func IsSupported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// speakerOnce guards the process-wide output device.
var (
	speakerOnce sync.Once
	errSpeaker  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		errSpeaker = speaker.Init(outputSampleRate, outputSampleRate.N(time.Second/10))
	})
	return errSpeaker
}

// Player plays local audio files through the system speaker.
type Player struct {
	mu       sync.Mutex
	state    State
	opts     Options
	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	format   beep.Format
	current  string
	gen      uint64
	stopTick context.CancelFunc
	events   chan Event
	closed   bool
}

// New creates a stopped player. The output device is opened on first Play.
func New() *Player {
	return &Player{
		state:  Stopped,
		events: make(chan Event, eventBuffer),
	}
}

func (p *Player) Configure(opts Options) error {
	if opts.ProgressInterval < 0 {
		return fmt.Errorf("progress interval must not be negative: %s", opts.ProgressInterval)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = opts
	return nil
}

func (p *Player) Play(m Media) error {
	path, err := MediaPath(m.URL)
	if err != nil {
		return err
	}
	streamer, format, err := decodeFile(path)
	if err != nil {
		return err
	}
	if err := initSpeaker(); err != nil {
		streamer.Close()
		return fmt.Errorf("init speaker: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		streamer.Close()
		return ErrClosed
	}
	p.stopLocked()

	p.gen++
	gen := p.gen
	p.streamer = streamer
	p.format = format
	p.current = m.ID

	var out beep.Streamer = streamer
	if format.SampleRate != outputSampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, outputSampleRate, streamer)
	}
	p.ctrl = &beep.Ctrl{Streamer: out}
	p.state = Playing

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held.
		go p.finished(gen)
	})))

	p.emitLocked(EventReady{ID: m.ID})
	p.startProgressLocked(gen)

	log.Debug().
		Str("component", "player").
		Str("id", m.ID).
		Str("path", path).
		Msg("playing")
	return nil
}

func (p *Player) finished(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.closed {
		return
	}
	id := p.current
	p.stopLocked()
	p.emitLocked(EventTrackEnded{ID: id})
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.CanPause() || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.CanResume() || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.stopTick != nil {
		p.stopTick()
		p.stopTick = nil
	}
	if p.state == Stopped {
		return
	}
	// Invalidate the pending end-of-stream callback.
	p.gen++
	speaker.Clear()
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.current = ""
	p.state = Stopped
}

// SeekTo moves the playback position, clamped to the media length.
func (p *Player) SeekTo(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()
	n := p.format.SampleRate.N(pos)
	n = max(0, min(n, p.streamer.Len()-1))
	if err := p.streamer.Seek(n); err != nil {
		return fmt.Errorf("seek to %s: %w", pos, err)
	}
	return nil
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.format.SampleRate.D(p.streamer.Position())
}

func (p *Player) Events() <-chan Event {
	return p.events
}

// Close stops playback and closes the event channel.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.stopLocked()
	p.closed = true
	close(p.events)
	return nil
}

func (p *Player) startProgressLocked(gen uint64) {
	if p.opts.ProgressInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.stopTick = cancel
	go reportProgress(ctx, p.opts.ProgressInterval, func() (time.Duration, bool) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen || p.state != Playing {
			return 0, false
		}
		return p.positionLocked(), true
	}, p.emit)
}

// reportProgress emits the position every interval until ctx is done.
// sample returns false when there is nothing to report.
func reportProgress(ctx context.Context, interval time.Duration, sample func() (time.Duration, bool), emit func(Event)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pos, ok := sample(); ok {
				emit(EventProgress{Position: pos})
			}
		}
	}
}

func (p *Player) emit(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emitLocked(e)
}

// emitLocked never blocks; events are dropped when the consumer lags.
func (p *Player) emitLocked(e Event) {
	if p.closed {
		return
	}
	select {
	case p.events <- e:
	default:
		log.Warn().
			Str("component", "player").
			Type("event", e).
			Msg("event dropped, consumer too slow")
	}
}

// MediaPath converts a media URL (file:// or plain path) to a local path.
func MediaPath(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty media url")
	}
	if !strings.Contains(raw, "://") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse media url: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedFormat, u.Scheme)
	}
	return u.Path, nil
}

func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}

// Probe returns the duration of an audio file without playing it.
func Probe(path string) (time.Duration, error) {
	streamer, format, err := decodeFile(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()), nil
}
