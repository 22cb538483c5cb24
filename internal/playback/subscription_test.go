package playback

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/ripple/internal/playlist"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		// Send events
		sub.sendStatus(StatusChange{Previous: StatusStopped, Current: StatusPlaying})
		sub.sendTrack(TrackChange{Index: 1})
		sub.sendPosition(30 * time.Second)
		sub.sendQueue(QueueChange{Index: 2, Tracks: []playlist.Track{{ID: "q1"}}})
		sub.sendMode(ModeChange{Repeat: true})

		e := <-sub.StatusChanged
		if e.Current != StatusPlaying {
			t.Errorf("StatusChanged.Current = %v, want Playing", e.Current)
		}

		tr := <-sub.TrackChanged
		if tr.Index != 1 {
			t.Errorf("TrackChanged.Index = %d, want 1", tr.Index)
		}

		pos := <-sub.PositionChanged
		if pos.Position != 30*time.Second {
			t.Errorf("PositionChanged.Position = %v, want 30s", pos.Position)
		}

		q := <-sub.QueueChanged
		if q.Index != 2 {
			t.Errorf("QueueChanged.Index = %d, want 2", q.Index)
		}
		if len(q.Tracks) != 1 || q.Tracks[0].ID != "q1" {
			t.Errorf("QueueChanged.Tracks = %v, want [q1]", q.Tracks)
		}

		m := <-sub.ModeChanged
		if !m.Repeat {
			t.Errorf("ModeChanged.Repeat = %v, want true", m.Repeat)
		}
	})
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	// Fill buffer
	for range eventBufferSize + 5 {
		sub.sendStatus(StatusChange{})
	}

	// Should not block or panic - count what we got
	count := 0
	for {
		select {
		case <-sub.StatusChanged:
			count++
		default:
			goto done
		}
	}
done:
	if count != eventBufferSize {
		t.Errorf("received %d events, want %d (buffer size)", count, eventBufferSize)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusStopped, "Stopped"},
		{StatusPlaying, "Playing"},
		{StatusPaused, "Paused"},
		{Status(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
	if StatusStopped.IsActive() || !StatusPaused.IsActive() {
		t.Error("IsActive() mismatch")
	}
}
