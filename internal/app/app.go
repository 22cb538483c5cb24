// Package app wires the stores, the audio engine and the playback service
// into a single runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/config"
	"github.com/llehouerou/ripple/internal/covers"
	"github.com/llehouerou/ripple/internal/favorites"
	"github.com/llehouerou/ripple/internal/history"
	"github.com/llehouerou/ripple/internal/lastfm"
	"github.com/llehouerou/ripple/internal/lrclib"
	"github.com/llehouerou/ripple/internal/lyrics"
	"github.com/llehouerou/ripple/internal/mediasource"
	"github.com/llehouerou/ripple/internal/mpris"
	"github.com/llehouerou/ripple/internal/notify"
	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/player"
	"github.com/llehouerou/ripple/internal/playlists"
	"github.com/llehouerou/ripple/internal/settings"
	"github.com/llehouerou/ripple/internal/state"
)

// BusName is the MPRIS bus name suffix.
const BusName = "ripple"

// App owns every long-lived component.
type App struct {
	Config *config.Config

	State     *state.Manager
	Settings  *settings.Store
	History   *history.Log
	Favorites *favorites.Set
	Playlists *playlists.Playlists
	Overrides *covers.Overrides
	Covers    *covers.Resolver
	Media     *mediasource.Source
	Lyrics    *lyrics.Source

	Engine   player.Engine
	Playback playback.Service

	// Nil unless Last.fm credentials are configured.
	Lastfm    *lastfm.Client
	Scrobbler *lastfm.Scrobbler

	mu        sync.Mutex
	session   *mpris.Adapter
	closeOnce sync.Once
	closeErr  error
}

// New opens the state database and builds the component graph.
// engine is owned by the returned App and closed with it.
func New(cfg *config.Config, engine player.Engine) (*App, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}

	mgr, err := openState(cfg.Database)
	if err != nil {
		return nil, err
	}

	defaults, err := settingsDefaults(cfg.Settings)
	if err != nil {
		mgr.Close()
		return nil, err
	}

	pb := cfg.GetPlaybackConfig()
	cv := cfg.GetCoversConfig()
	lc := cfg.GetLyricsConfig()

	if err := engine.Configure(player.Options{ProgressInterval: pb.ProgressInterval}); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("configure engine: %w", err)
	}

	a := &App{
		Config:    cfg,
		State:     mgr,
		Settings:  settings.New(mgr, defaults),
		History:   history.New(mgr),
		Favorites: favorites.New(mgr),
		Playlists: playlists.New(mgr),
		Overrides: covers.NewOverrides(mgr),
		Media:     mediasource.New(cfg.LibrarySources, player.Probe),
		Lyrics:    lyrics.NewSource(lrclib.New(lc.LrclibURL), lc.CacheDir),
		Engine:    engine,
	}
	a.Covers = covers.NewResolver(a.Overrides, a.Settings, cv.PlaceholderURL, cv.Default)
	a.Playback = playback.New(playback.Config{
		Engine:      engine,
		Store:       mgr,
		History:     a.History,
		Settings:    a.Settings,
		Covers:      a.Covers,
		ResumeGrace: pb.ResumeGrace,
	})
	if cfg.HasLastfmConfig() {
		a.Lastfm = lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		a.Scrobbler = lastfm.NewScrobbler(a.Lastfm, mgr)
	}

	return a, nil
}

func openState(path string) (*state.Manager, error) {
	if path == "" {
		mgr, err := state.OpenDefault()
		if err != nil {
			return nil, fmt.Errorf("open state: %w", err)
		}
		return mgr, nil
	}
	mgr, err := state.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	return mgr, nil
}

// settingsDefaults applies the config overrides to the built-in defaults.
func settingsDefaults(sc config.SettingsConfig) (settings.Settings, error) {
	d := settings.Defaults()
	apply := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&d.AutoplayNext, sc.AutoplayNext)
	apply(&d.ResumeOnStartup, sc.ResumeOnStartup)
	apply(&d.ShowRandomCoverArt, sc.ShowRandomCoverArt)
	apply(&d.AlwaysShuffle, sc.AlwaysShuffle)
	apply(&d.AlwaysRepeat, sc.AlwaysRepeat)

	if sc.AccentColor != "" {
		c, err := settings.NormalizeColor(sc.AccentColor)
		if err != nil {
			return d, fmt.Errorf("config accent_color: %w", err)
		}
		d.AccentColor = c
	}
	return d, nil
}

// Hydrate loads every persisted store. Settings load first so that the
// playback service sees the user's modes. A failing store keeps its
// defaults; all failures are returned joined.
func (a *App) Hydrate() error {
	type loader struct {
		name string
		load func() error
	}
	loaders := []loader{
		{"settings", a.Settings.Load},
		{"history", a.History.Load},
		{"favorites", a.Favorites.Load},
		{"playlists", a.Playlists.Load},
		{"covers", a.Overrides.Load},
		{"playback", a.Playback.Hydrate},
	}
	if a.Scrobbler != nil {
		loaders = append(loaders, loader{"lastfm", a.loadLastfm})
	}

	var errs []error
	for _, s := range loaders {
		if err := s.load(); err != nil {
			log.Error().Err(err).Str("component", "app").Str("store", s.name).Msg("hydrate failed")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) loadLastfm() error {
	session, ok, err := lastfm.LoadSession(a.State)
	if err != nil {
		return err
	}
	if ok {
		a.Lastfm.SetSessionKey(session.Key)
	}
	return a.Scrobbler.Load()
}

// Run exports the media session when enabled and forwards engine events to
// the playback service until ctx is canceled. With resume set, the previous
// session is restored once the engine is running.
func (a *App) Run(ctx context.Context, resume bool) error {
	if a.Config.MPRISEnabled() {
		session, err := mpris.New(BusName, a.Playback)
		if err != nil {
			log.Warn().Err(err).Str("component", "app").Msg("media session disabled")
		} else {
			a.mu.Lock()
			a.session = session
			a.mu.Unlock()
		}
	}
	if nc := a.Config.GetNotificationsConfig(); *nc.Enabled {
		a.watchNowPlaying(ctx, nc)
	}
	if a.Scrobbler != nil && a.Lastfm.IsAuthenticated() {
		go a.Scrobbler.Watch(ctx, a.Playback.Subscribe())
	}
	if resume {
		// Readiness arrives through Playback.Run, so Resume cannot block it.
		go func() {
			if err := a.Playback.Resume(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Str("component", "app").Msg("resume failed")
			}
		}()
	}

	return a.Playback.Run(ctx)
}

func (a *App) watchNowPlaying(ctx context.Context, nc config.NotificationsConfig) {
	n, err := notify.New()
	if err != nil {
		log.Warn().Err(err).Str("component", "app").Msg("desktop notifications disabled")
		return
	}
	np := notify.NewNowPlaying(n, *nc.ShowAlbumArt, nc.Timeout)
	go np.Watch(ctx, a.Playback.Subscribe())
}

// Close shuts down the media session, the playback service, the engine and
// the state store, in that order. Safe to call more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error

		a.mu.Lock()
		session := a.session
		a.session = nil
		a.mu.Unlock()
		if session != nil {
			errs = append(errs, session.Close())
		}

		errs = append(errs, a.Playback.Close())
		errs = append(errs, a.Engine.Close())
		errs = append(errs, a.State.Close())
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
