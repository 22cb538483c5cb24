package player

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// writeSilence writes a mono 16-bit WAV file of the given length.
func writeSilence(t *testing.T, path string, d time.Duration) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Silence(format.SampleRate.N(d)), format); err != nil {
		t.Fatal(err)
	}
}

func TestMediaPath(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain path", "/music/a.mp3", "/music/a.mp3", false},
		{"file url", "file:///music/a.mp3", "/music/a.mp3", false},
		{"escaped file url", "file:///music/my%20song.mp3", "/music/my song.mp3", false},
		{"http url", "https://example.com/a.mp3", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MediaPath(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MediaPath(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("MediaPath(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.mp3":  true,
		"a.MP3":  true,
		"a.flac": true,
		"a.wav":  true,
		"a.ogg":  true,
		"a.opus": true,
		"a.m4a":  false,
		"a":      false,
	} {
		if got := IsSupported(path); got != want {
			t.Errorf("IsSupported(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence.wav")
	writeSilence(t, path, 2*time.Second)

	got, err := Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if got != 2*time.Second {
		t.Errorf("Probe() = %v, want 2s", got)
	}
}

func TestProbe_Unsupported(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "song.m4a"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Probe() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestProbe_Missing(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "missing.mp3"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Probe() error = %v, want not exist", err)
	}
}

func TestProbe_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("not a wav file"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Probe(path); err == nil {
		t.Error("Probe() expected error for corrupt file")
	}
}

func TestPlay_UnsupportedDoesNotChangeState(t *testing.T) {
	p := New()
	err := p.Play(Media{ID: "x", URL: "file:///music/a.m4a"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Play() error = %v, want ErrUnsupportedFormat", err)
	}
	if p.State() != Stopped {
		t.Errorf("State() = %v, want Stopped", p.State())
	}
}

func TestConfigure_RejectsNegativeInterval(t *testing.T) {
	p := New()
	if err := p.Configure(Options{ProgressInterval: -time.Second}); err == nil {
		t.Error("Configure() expected error")
	}
	if err := p.Configure(Options{ProgressInterval: time.Second}); err != nil {
		t.Errorf("Configure() error = %v", err)
	}
}

func TestPauseResume_IgnoredWhenStopped(t *testing.T) {
	p := New()
	p.Pause()
	p.Resume()
	if p.State() != Stopped {
		t.Errorf("State() = %v, want Stopped", p.State())
	}
	if err := p.SeekTo(time.Second); err != nil {
		t.Errorf("SeekTo() on stopped player error = %v", err)
	}
}

func TestClose_ClosesEvents(t *testing.T) {
	p := New()
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-p.Events(); ok {
		t.Error("Events() should be closed")
	}
	// Second close is a no-op, emits after close are dropped.
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	p.emit(EventProgress{})
}

func TestEmit_DropsWhenFull(t *testing.T) {
	p := New()
	for range eventBuffer + 5 {
		p.emit(EventProgress{})
	}
	if got := len(p.Events()); got != eventBuffer {
		t.Errorf("buffered events = %d, want %d", got, eventBuffer)
	}
}

func TestReportProgress_TicksAtInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var got []Event
		pos := time.Duration(0)

		go reportProgress(ctx, time.Second, func() (time.Duration, bool) {
			pos += time.Second
			return pos, true
		}, func(e Event) { got = append(got, e) })

		time.Sleep(3500 * time.Millisecond)
		synctest.Wait()
		cancel()
		synctest.Wait()

		if len(got) != 3 {
			t.Fatalf("got %d events, want 3", len(got))
		}
		if last := got[2].(EventProgress); last.Position != 3*time.Second {
			t.Errorf("last position = %v, want 3s", last.Position)
		}
	})
}

func TestReportProgress_SkipsWhenNothingToReport(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		count := 0

		go reportProgress(ctx, time.Second, func() (time.Duration, bool) {
			return 0, false
		}, func(Event) { count++ })

		time.Sleep(5 * time.Second)
		synctest.Wait()

		if count != 0 {
			t.Errorf("emitted %d events, want 0", count)
		}
	})
}
