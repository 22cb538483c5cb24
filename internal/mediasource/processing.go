package mediasource

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/llehouerou/ripple/internal/covers"
	"github.com/llehouerou/ripple/internal/playlist"
	"github.com/llehouerou/ripple/internal/tags"
)

type result struct {
	track playlist.Track
	ok    bool
}

// processFiles maps files to tracks in parallel, preserving input order.
func (s *Source) processFiles(ctx context.Context, files []fileInfo) ([]playlist.Track, error) {
	results := make([]result, len(files))
	workCh := make(chan int)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for i := range workCh {
				t, err := s.trackFor(files[i].path)
				if err != nil {
					log.Warn().
						Err(err).
						Str("component", "mediasource").
						Str("path", files[i].path).
						Msg("skipping unreadable file")
					continue
				}
				results[i] = result{track: t, ok: true}
			}
		})
	}

	var err error
send:
	for i := range files {
		select {
		case workCh <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break send
		}
	}
	close(workCh)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	tracks := make([]playlist.Track, 0, len(files))
	for _, r := range results {
		if r.ok {
			tracks = append(tracks, r.track)
		}
	}
	return tracks, nil
}

// trackFor builds the track for one audio file.
func (s *Source) trackFor(path string) (playlist.Track, error) {
	t := playlist.Track{
		ID:    hashID(path),
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		URL:   fileURL(path),
	}

	if s.probe != nil {
		d, err := s.probe(path)
		if err != nil {
			return playlist.Track{}, err
		}
		t.Duration = d
	}

	if tg, err := tags.Read(path); err == nil {
		t.Artist, t.Album = tg.DisplayArtist(), tg.Album
	}
	if art := covers.FindAlbumArt(path); art != "" {
		t.Cover = fileURL(art)
	}
	return t, nil
}

func fileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
