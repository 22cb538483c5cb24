package lyrics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/lrclib"
	"github.com/llehouerou/ripple/internal/playlist"
)

// ErrNotFound is returned when no source has lyrics for the track.
var ErrNotFound = errors.New("no lyrics found")

// Origin names where lyrics were found.
type Origin string

const (
	OriginLocal Origin = "local" // .lrc next to the audio file
	OriginCache Origin = "cache"
	OriginAPI   Origin = "lrclib"
)

// Fetcher looks lyrics up remotely.
type Fetcher interface {
	Get(ctx context.Context, artist, title, album string, duration time.Duration) (*lrclib.Result, error)
}

// Source looks for lyrics next to the audio file, then in the cache, then
// remotely. Remote synced lyrics are cached.
type Source struct {
	client   Fetcher
	cacheDir string
}

// NewSource creates a source. An empty cacheDir disables caching.
func NewSource(client Fetcher, cacheDir string) *Source {
	return &Source{client: client, cacheDir: cacheDir}
}

// Fetch returns the lyrics of t and where they came from.
func (s *Source) Fetch(ctx context.Context, t playlist.Track) (*Lyrics, Origin, error) {
	if path := localPath(t.URL); path != "" {
		if l, err := loadFile(lrcPathFor(path)); err == nil && len(l.Lines) > 0 {
			return l, OriginLocal, nil
		}
	}

	if t.Artist == "" || t.Title == "" {
		return nil, "", ErrNotFound
	}

	if path := s.cachePath(t.Artist, t.Title); path != "" {
		if l, err := loadFile(path); err == nil && len(l.Lines) > 0 {
			return l, OriginCache, nil
		}
	}

	if s.client == nil {
		return nil, "", ErrNotFound
	}
	res, err := s.client.Get(ctx, t.Artist, t.Title, t.Album, t.Duration)
	if errors.Is(err, lrclib.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("fetch lyrics: %w", err)
	}

	l, err := fromResult(res)
	if err != nil {
		return nil, "", err
	}
	if res.SyncedLyrics != "" {
		if err := s.saveToCache(t.Artist, t.Title, res.SyncedLyrics); err != nil {
			log.Debug().Err(err).Str("component", "lyrics").Msg("cache write failed")
		}
	}
	return l, OriginAPI, nil
}

func fromResult(res *lrclib.Result) (*Lyrics, error) {
	var l *Lyrics
	switch {
	case res.SyncedLyrics != "":
		var err error
		if l, err = ParseLRC(strings.NewReader(res.SyncedLyrics)); err != nil {
			return nil, fmt.Errorf("parse lyrics: %w", err)
		}
	case res.PlainLyrics != "":
		l = FromPlain(res.PlainLyrics)
	default:
		return nil, ErrNotFound
	}
	if len(l.Lines) == 0 {
		return nil, ErrNotFound
	}

	if l.Artist == "" {
		l.Artist = res.ArtistName
	}
	if l.Title == "" {
		l.Title = res.TrackName
	}
	if l.Album == "" {
		l.Album = res.AlbumName
	}
	return l, nil
}

// localPath returns the filesystem path of a file:// URL, or "".
func localPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return u.Path
}

func lrcPathFor(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".lrc"
}

func loadFile(path string) (*Lyrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLRC(f)
}

func (s *Source) cachePath(artist, title string) string {
	if s.cacheDir == "" {
		return ""
	}
	return filepath.Join(s.cacheDir, sanitizeFilename(artist), sanitizeFilename(title)+".lrc")
}

func (s *Source) saveToCache(artist, title, content string) error {
	path := s.cachePath(artist, title)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

func sanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		return "_"
	}
	return name
}
