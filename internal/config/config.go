package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultProgressInterval = time.Second
	defaultResumeGrace      = 500 * time.Millisecond
	defaultPlaceholderURL   = "https://picsum.photos/seed/%s/800"
	defaultCover            = "asset://default-cover.png"
	defaultNotifyTimeout    = 5000
	defaultLrclibURL        = "https://lrclib.net/api"
)

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths scanned for audio files
	Database       string   `koanf:"database"`        // empty means XDG data dir

	Log      LogConfig      `koanf:"log"`
	Playback PlaybackConfig `koanf:"playback"`
	Covers   CoversConfig   `koanf:"covers"`

	// First-run defaults for user settings
	Settings SettingsConfig `koanf:"settings"`

	MPRIS         MPRISConfig         `koanf:"mpris"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Lastfm        LastfmConfig        `koanf:"lastfm"`
	Lyrics        LyricsConfig        `koanf:"lyrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Output string `koanf:"output"` // "stderr", "stdout" or a file path
}

// PlaybackConfig holds audio engine timing.
type PlaybackConfig struct {
	ProgressInterval time.Duration `koanf:"progress_interval"` // default: 1s
	ResumeGrace      time.Duration `koanf:"resume_grace"`      // max wait for engine readiness on resume (default: 500ms)
}

// CoversConfig holds cover art fallbacks.
type CoversConfig struct {
	PlaceholderURL string `koanf:"placeholder_url"` // format string, %s is the track id
	Default        string `koanf:"default"`         // bundled default cover
}

// SettingsConfig overrides the built-in settings defaults. Nil means keep
// the built-in value.
type SettingsConfig struct {
	AutoplayNext       *bool  `koanf:"autoplay_next"`
	ResumeOnStartup    *bool  `koanf:"resume_on_startup"`
	ShowRandomCoverArt *bool  `koanf:"show_random_cover_art"`
	AlwaysShuffle      *bool  `koanf:"always_shuffle"`
	AlwaysRepeat       *bool  `koanf:"always_repeat"`
	AccentColor        string `koanf:"accent_color"`
}

// MPRISConfig holds media session settings.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Enabled      *bool `koanf:"enabled"`        // default: true
	ShowAlbumArt *bool `koanf:"show_album_art"` // default: true
	Timeout      int32 `koanf:"timeout"`        // ms, default: 5000
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// LyricsConfig holds lyrics lookup settings.
type LyricsConfig struct {
	LrclibURL string `koanf:"lrclib_url"` // default: https://lrclib.net/api
	CacheDir  string `koanf:"cache_dir"`  // default: XDG cache dir; "off" disables caching
}

// Load reads the standard config files followed by extra, last wins.
// Missing files are skipped.
func Load(extra ...string) (*Config, error) {
	return loadFiles(append(getConfigPaths(), extra...))
}

func loadFiles(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.Database = expandPath(cfg.Database)
	cfg.Lyrics.CacheDir = expandPath(cfg.Lyrics.CacheDir)
	if !isStdStream(cfg.Log.Output) {
		cfg.Log.Output = expandPath(cfg.Log.Output)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/ripple/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, "ripple", "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func isStdStream(output string) bool {
	switch strings.ToLower(output) {
	case "", "stderr", "stdout":
		return true
	}
	return false
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = defaultProgressInterval
	}
	if cfg.ResumeGrace <= 0 {
		cfg.ResumeGrace = defaultResumeGrace
	}
	return cfg
}

// GetCoversConfig returns the cover configuration with defaults applied.
func (c *Config) GetCoversConfig() CoversConfig {
	cfg := c.Covers
	if strings.Count(cfg.PlaceholderURL, "%s") != 1 {
		cfg.PlaceholderURL = defaultPlaceholderURL
	}
	if cfg.Default == "" {
		cfg.Default = defaultCover
	}
	return cfg
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
	return cfg
}

// MPRISEnabled reports whether the media session should be exported.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// GetNotificationsConfig returns the notification configuration with
// defaults applied. Enabled and ShowAlbumArt are never nil.
func (c *Config) GetNotificationsConfig() NotificationsConfig {
	cfg := c.Notifications
	yes := true
	if cfg.Enabled == nil {
		cfg.Enabled = &yes
	}
	if cfg.ShowAlbumArt == nil {
		cfg.ShowAlbumArt = &yes
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultNotifyTimeout
	}
	return cfg
}

// HasLastfmConfig returns true if Last.fm scrobbling is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// GetLyricsConfig returns the lyrics configuration with defaults applied.
// CacheDir is empty when caching is off.
func (c *Config) GetLyricsConfig() LyricsConfig {
	cfg := c.Lyrics
	if cfg.LrclibURL == "" {
		cfg.LrclibURL = defaultLrclibURL
	}
	switch strings.ToLower(cfg.CacheDir) {
	case "":
		cfg.CacheDir = filepath.Join(xdg.CacheHome, "ripple", "lyrics")
	case "off":
		cfg.CacheDir = ""
	}
	return cfg
}
