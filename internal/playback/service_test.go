package playback

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/ripple/internal/covers"
	"github.com/llehouerou/ripple/internal/history"
	"github.com/llehouerou/ripple/internal/player"
	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/settings"
	"github.com/llehouerou/ripple/internal/state"
)

const placeholder = "https://picsum.photos/seed/%s/800"

type fixture struct {
	svc     *serviceImpl
	engine  *player.Mock
	store   *state.Mock
	history *history.Log
}

func newFixture(t *testing.T, configure ...func(*settings.Settings, *Config)) *fixture {
	t.Helper()
	prefs := settings.Defaults()
	store := state.NewMock()
	f := &fixture{
		engine:  player.NewMock(),
		store:   store,
		history: history.New(store),
	}
	cfg := Config{
		Engine:  f.engine,
		Store:   store,
		History: f.history,
	}
	for _, fn := range configure {
		fn(&prefs, &cfg)
	}
	reader := staticSettings(prefs)
	cfg.Settings = reader
	cfg.Covers = covers.NewResolver(covers.NewOverrides(store), reader, placeholder, "asset://default")
	f.svc = New(cfg).(*serviceImpl)
	return f
}

func withSettings(fn func(*settings.Settings)) func(*settings.Settings, *Config) {
	return func(s *settings.Settings, _ *Config) { fn(s) }
}

func (f *fixture) currentID(t *testing.T) string {
	t.Helper()
	cur := f.svc.CurrentTrack()
	if cur == nil {
		return ""
	}
	return cur.ID
}

func (f *fixture) persisted(t *testing.T) persistedState {
	t.Helper()
	var p persistedState
	if err := json.Unmarshal(f.store.Raw(StorageKey), &p); err != nil {
		t.Fatalf("persisted state: %v", err)
	}
	return p
}

func historyIDs(l *history.Log) []string {
	var ids []string
	for _, t := range l.Tracks() {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestSetCurrentTrack(t *testing.T) {
	f := newFixture(t)
	a := tracks("A")[0]

	f.svc.SetCurrentTrack(a)

	cur := f.svc.CurrentTrack()
	if cur == nil || cur.ID != "A" {
		t.Fatalf("CurrentTrack() = %v, want A", cur)
	}
	if !f.svc.IsPlaying() {
		t.Error("IsPlaying() = false, want true")
	}
	if cur.Cover != "https://picsum.photos/seed/A/800" {
		t.Errorf("Cover = %q, want resolved placeholder", cur.Cover)
	}

	plays := f.engine.PlayCalls()
	if len(plays) != 1 {
		t.Fatalf("engine play calls = %d, want 1", len(plays))
	}
	want := player.Media{ID: "A", URL: a.URL, Title: a.Title, Artist: "Unknown Artist", Artwork: cur.Cover}
	if plays[0] != want {
		t.Errorf("engine play = %+v, want %+v", plays[0], want)
	}

	if got := historyIDs(f.history); !slices.Equal(got, []string{"A"}) {
		t.Errorf("history = %v, want [A]", got)
	}
	if f.history.Tracks()[0].Cover != "" {
		t.Error("history should hold the unresolved track")
	}

	p := f.persisted(t)
	if p.Song == nil || p.Song.ID != "A" || !p.IsPlaying {
		t.Errorf("persisted = %+v", p)
	}
}

func TestSetCurrentTrack_Idempotent(t *testing.T) {
	f := newFixture(t)
	a := tracks("A")[0]

	f.svc.SetCurrentTrack(a)
	f.svc.SetLastPosition(30 * time.Second)
	f.svc.SetCurrentTrack(a)

	if n := len(f.engine.PlayCalls()); n != 1 {
		t.Errorf("engine play calls = %d, want 1", n)
	}
	if n := f.history.Len(); n != 1 {
		t.Errorf("history length = %d, want 1", n)
	}
	if got := f.svc.LastPosition(); got != 30*time.Second {
		t.Errorf("LastPosition() = %v, want 30s", got)
	}
}

func TestSetCurrentTrack_ResetsPosition(t *testing.T) {
	f := newFixture(t)
	ts := tracks("A", "B")

	f.svc.SetCurrentTrack(ts[0])
	f.svc.SetLastPosition(time.Minute)
	f.svc.SetCurrentTrack(ts[1])

	if got := f.svc.LastPosition(); got != 0 {
		t.Errorf("LastPosition() = %v, want 0", got)
	}
	if got := historyIDs(f.history); !slices.Equal(got, []string{"B", "A"}) {
		t.Errorf("history = %v, want [B A]", got)
	}
}

func TestSetCurrentTrack_UsesOwnCover(t *testing.T) {
	f := newFixture(t)
	a := playlist.Track{ID: "A", Cover: "file:///music/cover.jpg"}

	f.svc.SetCurrentTrack(a)

	if got := f.engine.PlayCalls()[0].Artwork; got != "file:///music/cover.jpg" {
		t.Errorf("Artwork = %q", got)
	}
}

func TestSetCurrentTrack_DefaultCoverWhenRandomDisabled(t *testing.T) {
	f := newFixture(t, withSettings(func(s *settings.Settings) {
		s.ShowRandomCoverArt = false
	}))

	f.svc.SetCurrentTrack(playlist.Track{ID: "A"})

	if got := f.svc.CurrentTrack().Cover; got != "asset://default" {
		t.Errorf("Cover = %q, want default", got)
	}
}

func TestSetCurrentTrack_PlayErrorKeepsState(t *testing.T) {
	f := newFixture(t)
	sub := f.svc.Subscribe()
	f.engine.SetPlayError(player.ErrUnsupportedFormat)

	f.svc.SetCurrentTrack(tracks("A")[0])

	if f.currentID(t) != "A" {
		t.Error("current track should still be set")
	}
	select {
	case e := <-sub.Error:
		if e.Operation != "play" || !errors.Is(e.Err, player.ErrUnsupportedFormat) {
			t.Errorf("error event = %+v", e)
		}
	default:
		t.Error("expected an error event")
	}
}

func TestClearCurrentTrack(t *testing.T) {
	f := newFixture(t)
	f.svc.SetCurrentTrack(tracks("A")[0])

	f.svc.ClearCurrentTrack()

	if f.svc.CurrentTrack() != nil || f.svc.IsPlaying() {
		t.Error("expected no current track and not playing")
	}
	ops := f.engine.Ops()
	if ops[len(ops)-1] != "stop" {
		t.Errorf("last engine op = %q, want stop", ops[len(ops)-1])
	}
	if p := f.persisted(t); p.Song != nil || p.IsPlaying {
		t.Errorf("persisted = %+v", p)
	}
}

func TestSetIsPlaying(t *testing.T) {
	f := newFixture(t)
	f.svc.SetCurrentTrack(tracks("A")[0])
	f.engine.ResetCalls()

	f.svc.SetIsPlaying(false)
	if f.svc.IsPlaying() {
		t.Error("IsPlaying() = true after pause")
	}
	f.svc.TogglePlayback()
	if !f.svc.IsPlaying() {
		t.Error("IsPlaying() = false after toggle")
	}
	f.svc.TogglePlayback()

	if got := f.engine.Ops(); !slices.Equal(got, []string{"pause", "resume", "pause"}) {
		t.Errorf("engine ops = %v", got)
	}
	if f.currentID(t) != "A" {
		t.Error("SetIsPlaying must not change the current track")
	}
}

func TestSetIsPlaying_WithoutTrackIsNoop(t *testing.T) {
	f := newFixture(t)

	f.svc.SetIsPlaying(true)
	f.svc.TogglePlayback()

	if f.svc.IsPlaying() {
		t.Error("IsPlaying() = true without a track")
	}
	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("engine ops = %v, want none", ops)
	}
}

func TestSetQueue_KeepsCurrentTrack(t *testing.T) {
	f := newFixture(t)
	f.svc.SetCurrentTrack(tracks("Z")[0])
	f.engine.ResetCalls()

	f.svc.SetQueue(tracks("A", "B"))

	if f.currentID(t) != "Z" {
		t.Errorf("current = %q, want Z", f.currentID(t))
	}
	if n := len(f.svc.Queue()); n != 2 {
		t.Errorf("queue length = %d, want 2", n)
	}
	if f.svc.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", f.svc.CurrentIndex())
	}
	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("engine ops = %v, want none", ops)
	}
}

func TestPlayQueue(t *testing.T) {
	f := newFixture(t)

	f.svc.PlayQueue(tracks("A", "B", "C"), 1)

	if f.currentID(t) != "B" || f.svc.CurrentIndex() != 1 {
		t.Errorf("current = %q at %d, want B at 1", f.currentID(t), f.svc.CurrentIndex())
	}
	if p := f.persisted(t); len(p.Playlist) != 3 {
		t.Errorf("persisted queue = %d tracks, want 3", len(p.Playlist))
	}
}

func TestPlayQueue_OutOfRangeOnlyReplacesQueue(t *testing.T) {
	for _, start := range []int{-1, 3} {
		f := newFixture(t)

		f.svc.PlayQueue(tracks("A", "B", "C"), start)

		if f.svc.CurrentTrack() != nil {
			t.Errorf("start %d: current track should stay nil", start)
		}
		if n := len(f.svc.Queue()); n != 3 {
			t.Errorf("start %d: queue length = %d, want 3", start, n)
		}
	}

	f := newFixture(t)
	f.svc.PlayQueue(nil, 0)
	if f.svc.CurrentTrack() != nil || len(f.engine.Ops()) != 0 {
		t.Error("empty queue should not start playback")
	}
}

func TestPlayNext_SequentialWraps(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B", "C"), 1)

	f.svc.PlayNext(false)
	if got := f.currentID(t); got != "C" {
		t.Fatalf("after first PlayNext current = %q, want C", got)
	}
	f.svc.PlayNext(false)
	if got := f.currentID(t); got != "A" {
		t.Fatalf("after second PlayNext current = %q, want A", got)
	}
	if got := historyIDs(f.history); !slices.Equal(got, []string{"A", "C", "B"}) {
		t.Errorf("history = %v, want [A C B]", got)
	}
}

func TestPlayNext_EmptyQueueIsNoop(t *testing.T) {
	f := newFixture(t)
	f.svc.SetCurrentTrack(tracks("A")[0])
	before := f.svc.Snapshot()
	f.engine.ResetCalls()

	f.svc.PlayNext(false)
	f.svc.PlayNext(true)
	f.svc.PlayPrevious()

	after := f.svc.Snapshot()
	if after.Current.ID != before.Current.ID || after.Playing != before.Playing {
		t.Errorf("state changed: %+v -> %+v", before, after)
	}
	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("engine ops = %v, want none", ops)
	}
}

func TestPlayNext_CurrentMissingFromQueueIsNoop(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B"), 0)
	f.svc.SetQueue(tracks("X", "Y"))
	f.engine.ResetCalls()

	f.svc.PlayNext(true)
	f.svc.PlayPrevious()

	if f.currentID(t) != "A" {
		t.Errorf("current = %q, want A", f.currentID(t))
	}
	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("engine ops = %v, want none", ops)
	}
}

func TestPlayNext_RepeatRestartsCurrent(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A"), 0)
	f.svc.ToggleRepeat()
	f.svc.SetLastPosition(90 * time.Second)

	f.svc.PlayNext(false)

	if f.currentID(t) != "A" {
		t.Errorf("current = %q, want A", f.currentID(t))
	}
	if n := f.history.Len(); n != 1 {
		t.Errorf("history length = %d, want 1", n)
	}
	if got := f.svc.LastPosition(); got != 0 {
		t.Errorf("LastPosition() = %v, want 0", got)
	}
	if n := len(f.engine.PlayCalls()); n != 2 {
		t.Errorf("engine play calls = %d, want 2 (initial + restart)", n)
	}
}

func TestPlayNext_ForceSkipIgnoresRepeat(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B", "C"), 0)
	f.svc.ToggleRepeat()

	f.svc.PlayNext(true)

	if got := f.currentID(t); got != "B" {
		t.Errorf("current = %q, want B", got)
	}
}

func TestPlayNext_Shuffle(t *testing.T) {
	f := newFixture(t, func(_ *settings.Settings, c *Config) {
		c.IntN = sequence(0, 0, 3)
	})
	f.svc.PlayQueue(tracks("A", "B", "C", "D"), 0)
	f.svc.ToggleShuffle()

	f.svc.PlayNext(false)

	if got := f.currentID(t); got != "D" {
		t.Errorf("current = %q, want D", got)
	}
}

func TestPlayPrevious_Wraps(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B", "C"), 0)

	f.svc.PlayPrevious()
	if got := f.currentID(t); got != "C" {
		t.Fatalf("current = %q, want C", got)
	}
	f.svc.PlayPrevious()
	if got := f.currentID(t); got != "B" {
		t.Fatalf("current = %q, want B", got)
	}
}

func TestToggles_Exclusive(t *testing.T) {
	f := newFixture(t)
	sub := f.svc.Subscribe()

	if !f.svc.ToggleRepeat() {
		t.Fatal("ToggleRepeat() = false")
	}
	if !f.svc.ToggleShuffle() {
		t.Fatal("ToggleShuffle() = false")
	}
	if f.svc.Repeat() {
		t.Error("Repeat() should be cleared by shuffle")
	}
	if !f.svc.ToggleRepeat() || f.svc.Shuffle() {
		t.Error("Shuffle() should be cleared by repeat")
	}

	var last ModeChange
	for range 3 {
		last = <-sub.ModeChanged
	}
	if !last.Repeat || last.Shuffle {
		t.Errorf("last ModeChange = %+v", last)
	}
}

func TestSetLastPosition_NoEngineCommand(t *testing.T) {
	f := newFixture(t)
	f.svc.SetCurrentTrack(tracks("A")[0])
	f.engine.ResetCalls()

	f.svc.SetLastPosition(1500 * time.Millisecond)

	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("engine ops = %v, want none", ops)
	}
	if p := f.persisted(t); p.LastPosition != 1500 {
		t.Errorf("persisted lastPosition = %d, want 1500", p.LastPosition)
	}
}

func TestSeekTo(t *testing.T) {
	f := newFixture(t)
	f.svc.SeekTo(time.Second)
	if n := len(f.engine.SeekCalls()); n != 0 {
		t.Errorf("seek without track issued %d commands", n)
	}

	f.svc.SetCurrentTrack(tracks("A")[0])
	f.svc.SeekTo(42 * time.Second)

	if got := f.engine.SeekCalls(); !slices.Equal(got, []time.Duration{42 * time.Second}) {
		t.Errorf("seek calls = %v", got)
	}
	if got := f.svc.LastPosition(); got != 42*time.Second {
		t.Errorf("LastPosition() = %v, want 42s", got)
	}
}

func TestHandleEvent_TrackEndedAutoplay(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B"), 0)

	f.svc.HandleEvent(player.EventTrackEnded{ID: "A"})

	if got := f.currentID(t); got != "B" {
		t.Errorf("current = %q, want B", got)
	}
}

func TestHandleEvent_TrackEndedWithoutAutoplay(t *testing.T) {
	f := newFixture(t, withSettings(func(s *settings.Settings) {
		s.AutoplayNext = false
	}))
	f.svc.PlayQueue(tracks("A", "B"), 0)

	f.svc.HandleEvent(player.EventTrackEnded{ID: "A"})

	if got := f.currentID(t); got != "A" {
		t.Errorf("current = %q, want A", got)
	}
	if f.svc.IsPlaying() {
		t.Error("IsPlaying() = true after the track ended")
	}
}

func TestHandleEvent_TrackEndedRepeat(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B"), 0)
	f.svc.ToggleRepeat()

	f.svc.HandleEvent(player.EventTrackEnded{ID: "A"})

	if got := f.currentID(t); got != "A" {
		t.Errorf("current = %q, want A", got)
	}
	if n := len(f.engine.PlayCalls()); n != 2 {
		t.Errorf("engine play calls = %d, want 2", n)
	}
}

func TestHandleEvent_StaleTrackEndedIgnored(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B", "C"), 1)

	f.svc.HandleEvent(player.EventTrackEnded{ID: "A"})

	if got := f.currentID(t); got != "B" {
		t.Errorf("current = %q, want B", got)
	}
}

func TestHandleEvent_RemoteControls(t *testing.T) {
	f := newFixture(t)
	f.svc.PlayQueue(tracks("A", "B", "C"), 0)
	f.svc.ToggleRepeat()

	f.svc.HandleEvent(player.EventRemoteNext{})
	if got := f.currentID(t); got != "B" {
		t.Fatalf("after remote next current = %q, want B", got)
	}
	f.svc.HandleEvent(player.EventRemotePrevious{})
	if got := f.currentID(t); got != "A" {
		t.Fatalf("after remote previous current = %q, want A", got)
	}
}

func TestHandleEvent_Progress(t *testing.T) {
	f := newFixture(t)
	sub := f.svc.Subscribe()

	f.svc.HandleEvent(player.EventProgress{Position: 12 * time.Second})

	if got := f.svc.LastPosition(); got != 12*time.Second {
		t.Errorf("LastPosition() = %v, want 12s", got)
	}
	if e := <-sub.PositionChanged; e.Position != 12*time.Second {
		t.Errorf("PositionChange = %v", e.Position)
	}
}

func TestHandleEvent_Error(t *testing.T) {
	f := newFixture(t)
	f.svc.SetCurrentTrack(tracks("A")[0])
	sub := f.svc.Subscribe()
	boom := errors.New("boom")

	f.svc.HandleEvent(player.EventError{Err: boom})

	e := <-sub.Error
	if e.Operation != "engine" || e.TrackID != "A" || !errors.Is(e.Err, boom) {
		t.Errorf("ErrorEvent = %+v", e)
	}
	if f.currentID(t) != "A" {
		t.Error("engine errors must not change the current track")
	}
}

func TestSubscribe_TrackAndStatusChanges(t *testing.T) {
	f := newFixture(t)
	sub := f.svc.Subscribe()

	f.svc.PlayQueue(tracks("A", "B"), 0)
	f.svc.PlayNext(false)
	f.svc.ClearCurrentTrack()

	first := <-sub.TrackChanged
	if first.Previous != nil || first.Current.ID != "A" || first.Index != 0 {
		t.Errorf("first TrackChange = %+v", first)
	}
	second := <-sub.TrackChanged
	if second.Previous.ID != "A" || second.Current.ID != "B" {
		t.Errorf("second TrackChange = %+v", second)
	}
	third := <-sub.TrackChanged
	if third.Current != nil {
		t.Errorf("third TrackChange = %+v, want nil current", third)
	}

	if e := <-sub.StatusChanged; e.Previous != StatusStopped || e.Current != StatusPlaying {
		t.Errorf("first StatusChange = %+v", e)
	}
	if e := <-sub.StatusChanged; e.Current != StatusStopped {
		t.Errorf("second StatusChange = %+v", e)
	}

	if q := <-sub.QueueChanged; len(q.Tracks) != 2 {
		t.Errorf("QueueChange = %+v", q)
	}
}

func TestClose_EndsSubscriptions(t *testing.T) {
	f := newFixture(t)
	sub := f.svc.Subscribe()

	if err := f.svc.Close(); err != nil {
		t.Fatal(err)
	}
	<-sub.Done
	<-f.svc.Subscribe().Done
	if err := f.svc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.store.SetFailSaves(true)

	f.svc.PlayQueue(tracks("A", "B"), 0)
	f.svc.PlayNext(false)

	if got := f.currentID(t); got != "B" {
		t.Errorf("current = %q, want B", got)
	}
	if f.store.Raw(StorageKey) != nil {
		t.Error("nothing should have been persisted")
	}
}

func TestHydrate(t *testing.T) {
	f := newFixture(t, withSettings(func(s *settings.Settings) {
		s.AlwaysShuffle = true
		s.AlwaysRepeat = true
	}))
	song := tracks("B")[0]
	f.store.Put(StorageKey, persistedState{
		Song:         &song,
		Playlist:     tracks("A", "B"),
		IsPlaying:    true,
		LastPosition: 65_000,
	})

	select {
	case <-f.svc.Hydrated():
		t.Fatal("Hydrated() closed before Hydrate")
	default:
	}

	if err := f.svc.Hydrate(); err != nil {
		t.Fatal(err)
	}
	<-f.svc.Hydrated()

	s := f.svc.Snapshot()
	if s.Current == nil || s.Current.ID != "B" || len(s.Queue) != 2 {
		t.Errorf("hydrated state = %+v", s)
	}
	if s.LastPosition != 65*time.Second || s.Playing {
		t.Errorf("position = %v playing = %v", s.LastPosition, s.Playing)
	}
	if !s.Shuffle || s.Repeat {
		t.Errorf("shuffle = %v repeat = %v, want shuffle only", s.Shuffle, s.Repeat)
	}
	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("Hydrate issued engine ops %v", ops)
	}
}

func TestHydrate_LoadErrorStillSignals(t *testing.T) {
	f := newFixture(t)
	f.store.SetFailLoads(true)

	if err := f.svc.Hydrate(); !errors.Is(err, state.ErrMockLoad) {
		t.Errorf("Hydrate() error = %v, want ErrMockLoad", err)
	}
	<-f.svc.Hydrated()
}

func hydrated(t *testing.T, f *fixture, pos time.Duration) {
	t.Helper()
	song := tracks("A")[0]
	f.store.Put(StorageKey, persistedState{
		Song:         &song,
		Playlist:     tracks("A", "B"),
		IsPlaying:    true,
		LastPosition: pos.Milliseconds(),
	})
	if err := f.svc.Hydrate(); err != nil {
		t.Fatal(err)
	}
}

func TestResume_Disabled(t *testing.T) {
	f := newFixture(t, withSettings(func(s *settings.Settings) {
		s.ResumeOnStartup = false
	}))
	hydrated(t, f, 30*time.Second)

	if err := f.svc.Resume(context.Background()); err != nil {
		t.Fatal(err)
	}

	if f.svc.IsPlaying() {
		t.Error("IsPlaying() = true with resume disabled")
	}
	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("engine ops = %v, want none", ops)
	}
	if f.currentID(t) != "A" {
		t.Error("current track should be kept")
	}
}

func TestResume_NoTrack(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Hydrate(); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Resume(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ops := f.engine.Ops(); len(ops) != 0 {
		t.Errorf("engine ops = %v, want none", ops)
	}
}

func TestResume_SeeksWhenReady(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		hydrated(t, f, 30*time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go f.svc.Run(ctx)

		start := time.Now()
		done := make(chan error)
		go func() { done <- f.svc.Resume(ctx) }()

		synctest.Wait()
		if n := len(f.engine.PlayCalls()); n != 1 {
			t.Fatalf("engine play calls = %d, want 1", n)
		}
		if n := len(f.engine.SeekCalls()); n != 0 {
			t.Fatalf("seek issued before ready")
		}

		f.engine.Emit(player.EventReady{ID: "A"})
		if err := <-done; err != nil {
			t.Fatal(err)
		}

		if elapsed := time.Since(start); elapsed >= DefaultResumeGrace {
			t.Errorf("Resume waited %v, want less than the grace period", elapsed)
		}
		if got := f.engine.SeekCalls(); !slices.Equal(got, []time.Duration{30 * time.Second}) {
			t.Errorf("seek calls = %v, want [30s]", got)
		}
		if !f.svc.IsPlaying() {
			t.Error("IsPlaying() = false after resume")
		}
		if cover := f.engine.PlayCalls()[0].Artwork; cover != "https://picsum.photos/seed/A/800" {
			t.Errorf("resumed with artwork %q", cover)
		}
	})
}

func TestResume_SeeksAfterGrace(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, func(_ *settings.Settings, c *Config) {
			c.ResumeGrace = 2 * time.Second
		})
		hydrated(t, f, 10*time.Second)

		start := time.Now()
		if err := f.svc.Resume(context.Background()); err != nil {
			t.Fatal(err)
		}

		if elapsed := time.Since(start); elapsed != 2*time.Second {
			t.Errorf("Resume waited %v, want 2s", elapsed)
		}
		if got := f.engine.SeekCalls(); !slices.Equal(got, []time.Duration{10 * time.Second}) {
			t.Errorf("seek calls = %v, want [10s]", got)
		}

		// A late ready event does not seek again.
		f.svc.HandleEvent(player.EventReady{ID: "A"})
		if n := len(f.engine.SeekCalls()); n != 1 {
			t.Errorf("seek calls = %d, want 1", n)
		}
	})
}

func TestResume_SupersededBeforeReady(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		hydrated(t, f, 10*time.Second)

		done := make(chan error)
		go func() { done <- f.svc.Resume(context.Background()) }()
		synctest.Wait()

		f.svc.PlayNext(true)
		if err := <-done; err != nil {
			t.Fatal(err)
		}

		if n := len(f.engine.SeekCalls()); n != 0 {
			t.Errorf("seek calls = %d, want 0 after the track changed", n)
		}
		if got := f.currentID(t); got != "B" {
			t.Errorf("current = %q, want B", got)
		}
	})
}

func TestResume_WaitsForHydration(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		song := tracks("A")[0]
		f.store.Put(StorageKey, persistedState{Song: &song})

		done := make(chan error)
		go func() { done <- f.svc.Resume(context.Background()) }()
		synctest.Wait()
		if n := len(f.engine.Ops()); n != 0 {
			t.Fatalf("Resume acted before hydration: %v", f.engine.Ops())
		}

		if err := f.svc.Hydrate(); err != nil {
			t.Fatal(err)
		}
		if err := <-done; err != nil {
			t.Fatal(err)
		}
		if n := len(f.engine.PlayCalls()); n != 1 {
			t.Errorf("engine play calls = %d, want 1", n)
		}
	})
}

func TestResume_ContextCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.svc.Resume(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Resume() error = %v, want context.Canceled", err)
	}
}

func TestSetIsPlaying_LoadsWhenEngineStopped(t *testing.T) {
	f := newFixture(t, withSettings(func(s *settings.Settings) {
		s.ResumeOnStartup = false
	}))
	hydrated(t, f, 20*time.Second)
	if err := f.svc.Resume(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.svc.SetIsPlaying(true)

	if got := f.engine.Ops(); !slices.Equal(got, []string{"play"}) {
		t.Fatalf("engine ops = %v, want [play]", got)
	}
	f.svc.HandleEvent(player.EventReady{ID: "A"})
	if got := f.engine.SeekCalls(); !slices.Equal(got, []time.Duration{20 * time.Second}) {
		t.Errorf("seek calls = %v, want [20s]", got)
	}
}

func TestRun_ProcessesEventsInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.svc.PlayQueue(tracks("A", "B", "C"), 0)

		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error)
		go func() { errc <- f.svc.Run(ctx) }()

		f.engine.Emit(player.EventRemoteNext{})
		f.engine.Emit(player.EventProgress{Position: 5 * time.Second})
		f.engine.Emit(player.EventRemoteNext{})
		synctest.Wait()

		if got := f.currentID(t); got != "C" {
			t.Errorf("current = %q, want C", got)
		}
		if got := f.svc.LastPosition(); got != 0 {
			t.Errorf("LastPosition() = %v, want 0 (reset by the second skip)", got)
		}

		cancel()
		if err := <-errc; !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

func TestRun_StopsWhenEngineCloses(t *testing.T) {
	f := newFixture(t)
	if err := f.engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}
