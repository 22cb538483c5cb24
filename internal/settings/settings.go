// Package settings holds user preferences consumed by the playback core.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/state"
)

// StorageKey is the key the settings document is persisted under.
const StorageKey = "settings-storage"

// Flag names accepted by Toggle.
const (
	FlagAlwaysShuffle      = "alwaysShuffle"
	FlagAlwaysRepeat       = "alwaysRepeat"
	FlagAutoplayNext       = "autoplayNext"
	FlagShowRandomCoverArt = "showRandomCoverArt"
	FlagResumeOnStartup    = "resumeOnStartup"
)

// Accent names accepted by SetAccent.
const (
	AccentPrimary = "accentColor"
	AccentPurple  = "accentPurple"
	AccentPink    = "accentPink"
)

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidColor   = errors.New("invalid color")
)

// Settings is a snapshot of all user preferences.
type Settings struct {
	// Appearance
	AccentColor  string `json:"accentColor"`
	AccentPurple string `json:"accentPurple"`
	AccentPink   string `json:"accentPink"`

	// Playback
	AlwaysShuffle      bool `json:"alwaysShuffle"`
	AlwaysRepeat       bool `json:"alwaysRepeat"`
	AutoplayNext       bool `json:"autoplayNext"`
	ShowRandomCoverArt bool `json:"showRandomCoverArt"`
	ResumeOnStartup    bool `json:"resumeOnStartup"`
}

// Defaults returns the built-in preferences.
func Defaults() Settings {
	return Settings{
		AccentColor:        "#00F5D4",
		AccentPurple:       "#A855F7",
		AccentPink:         "#FF1493",
		AutoplayNext:       true,
		ShowRandomCoverArt: true,
		ResumeOnStartup:    true,
	}
}

// Reader is the read-only view other components depend on.
type Reader interface {
	Get() Settings
}

// Store holds the current settings and persists every change.
type Store struct {
	mu       sync.RWMutex
	store    state.Store
	current  Settings
	defaults Settings
}

var _ Reader = (*Store)(nil)

// New creates a store starting from defaults. Call Load to hydrate.
func New(store state.Store, defaults Settings) *Store {
	return &Store{
		store:    store,
		current:  defaults,
		defaults: defaults,
	}
}

// Load replaces the current settings with the persisted ones.
// Fields missing from the persisted document keep their default.
func (s *Store) Load() error {
	loaded := s.defaults
	ok, err := s.store.Load(StorageKey, &loaded)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Get returns a snapshot of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Toggle flips the named boolean preference and returns its new value.
func (s *Store) Toggle(name string) (bool, error) {
	var value bool
	err := s.update(func(st *Settings) error {
		field := flagField(st, name)
		if field == nil {
			return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
		}
		*field = !*field
		value = *field
		return nil
	})
	return value, err
}

// ToggleAlwaysShuffle flips the always-shuffle preference.
func (s *Store) ToggleAlwaysShuffle() bool {
	v, _ := s.Toggle(FlagAlwaysShuffle)
	return v
}

// ToggleAlwaysRepeat flips the always-repeat preference.
func (s *Store) ToggleAlwaysRepeat() bool {
	v, _ := s.Toggle(FlagAlwaysRepeat)
	return v
}

// ToggleAutoplayNext flips the autoplay-next preference.
func (s *Store) ToggleAutoplayNext() bool {
	v, _ := s.Toggle(FlagAutoplayNext)
	return v
}

// ToggleShowRandomCoverArt flips the random cover art preference.
func (s *Store) ToggleShowRandomCoverArt() bool {
	v, _ := s.Toggle(FlagShowRandomCoverArt)
	return v
}

// ToggleResumeOnStartup flips the resume-on-startup preference.
func (s *Store) ToggleResumeOnStartup() bool {
	v, _ := s.Toggle(FlagResumeOnStartup)
	return v
}

// SetAccent sets the named accent color. The color is normalized to
// lowercase #rrggbb.
func (s *Store) SetAccent(name, hex string) error {
	normalized, err := NormalizeColor(hex)
	if err != nil {
		return err
	}

	return s.update(func(st *Settings) error {
		switch name {
		case AccentPrimary:
			st.AccentColor = normalized
		case AccentPurple:
			st.AccentPurple = normalized
		case AccentPink:
			st.AccentPink = normalized
		default:
			return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
		}
		return nil
	})
}

// NormalizeColor validates a #rrggbb color and returns it lowercased.
func NormalizeColor(hex string) (string, error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidColor, hex, err)
	}
	return c.Hex(), nil
}

// Reset restores the defaults.
func (s *Store) Reset() {
	_ = s.update(func(st *Settings) error {
		*st = s.defaults
		return nil
	})
}

func (s *Store) update(fn func(*Settings) error) error {
	s.mu.Lock()
	next := s.current
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	s.mu.Unlock()

	s.store.Save(StorageKey, next)
	log.Debug().Str("component", "settings").Interface("settings", next).Msg("settings updated")
	return nil
}

func flagField(st *Settings, name string) *bool {
	switch name {
	case FlagAlwaysShuffle:
		return &st.AlwaysShuffle
	case FlagAlwaysRepeat:
		return &st.AlwaysRepeat
	case FlagAutoplayNext:
		return &st.AutoplayNext
	case FlagShowRandomCoverArt:
		return &st.ShowRandomCoverArt
	case FlagResumeOnStartup:
		return &st.ResumeOnStartup
	}
	return nil
}

// Flags lists the names accepted by Toggle.
func Flags() []string {
	return []string{
		FlagAlwaysShuffle,
		FlagAlwaysRepeat,
		FlagAutoplayNext,
		FlagShowRandomCoverArt,
		FlagResumeOnStartup,
	}
}
