// Package tags reads the metadata embedded in audio files.
package tags

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// Tag is the subset of embedded metadata a track listing needs.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Year        int
	TrackNumber int
	DiscNumber  int
	HasPicture  bool
}

// DisplayArtist returns the track artist, falling back to the album artist.
func (t *Tag) DisplayArtist() string {
	if t.Artist != "" {
		return t.Artist
	}
	return t.AlbumArtist
}

// Read reads tag metadata from a music file. Files without a recognizable
// tag block return the error from the underlying reader.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	track, _ := m.Track()
	disc, _ := m.Disc()
	return &Tag{
		Path:        path,
		Title:       strings.TrimSpace(m.Title()),
		Artist:      strings.TrimSpace(m.Artist()),
		AlbumArtist: strings.TrimSpace(m.AlbumArtist()),
		Album:       strings.TrimSpace(m.Album()),
		Year:        m.Year(),
		TrackNumber: track,
		DiscNumber:  disc,
		HasPicture:  m.Picture() != nil,
	}, nil
}
