// Package mediasource lists the audio files found under the configured
// library folders and maps them to tracks.
package mediasource

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/llehouerou/ripple/internal/playlist"
)

const numWorkers = 8

// ErrUnknownAlbum is returned by Assets for an album id that is not found.
var ErrUnknownAlbum = errors.New("unknown album")

// ProbeFunc returns the duration of an audio file.
type ProbeFunc func(path string) (time.Duration, error)

// Album is a folder that directly contains audio files.
type Album struct {
	ID         string
	Title      string
	Path       string
	AssetCount int
}

// Source enumerates albums and audio assets on the local filesystem.
type Source struct {
	roots []string
	probe ProbeFunc
}

// New creates a source over the given root folders.
func New(roots []string, probe ProbeFunc) *Source {
	return &Source{roots: roots, probe: probe}
}

// Albums lists every folder holding at least one audio file, sorted by
// title then path.
func (s *Source) Albums(ctx context.Context) ([]Album, error) {
	files, err := discoverFiles(ctx, s.roots)
	if err != nil {
		return nil, err
	}

	byDir := make(map[string]*Album)
	for _, f := range files {
		dir := filepath.Dir(f.path)
		a, ok := byDir[dir]
		if !ok {
			a = &Album{ID: hashID(dir), Title: filepath.Base(dir), Path: dir}
			byDir[dir] = a
		}
		a.AssetCount++
	}

	albums := make([]Album, 0, len(byDir))
	for _, a := range byDir {
		albums = append(albums, *a)
	}
	slices.SortFunc(albums, func(a, b Album) int {
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return albums, nil
}

// Assets lists the tracks of one album, or of the whole library when
// albumID is empty. Files whose duration cannot be probed are skipped.
func (s *Source) Assets(ctx context.Context, albumID string) ([]playlist.Track, error) {
	files, err := discoverFiles(ctx, s.roots)
	if err != nil {
		return nil, err
	}

	if albumID != "" {
		files = slices.DeleteFunc(files, func(f fileInfo) bool {
			return hashID(filepath.Dir(f.path)) != albumID
		})
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAlbum, albumID)
		}
	}

	return s.processFiles(ctx, files)
}

// hashID derives a stable identifier from a path.
func hashID(path string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return fmt.Sprintf("%016x", h.Sum64())
}
