package playlist

import (
	"encoding/json"
	"time"
)

// Track represents a single playable audio item.
// Tracks are values: operations return modified copies instead of
// mutating a stored track.
type Track struct {
	ID       string // stable per device asset
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Cover    string // cover art URI, empty if unknown
	URL      string // playable source
}

// trackJSON is the persisted form. Duration is stored in seconds.
type trackJSON struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist,omitempty"`
	Album    string  `json:"album,omitempty"`
	Duration float64 `json:"duration"`
	Cover    string  `json:"cover,omitempty"`
	URL      string  `json:"url"`
}

// MarshalJSON implements json.Marshaler.
func (t Track) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackJSON{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Duration: t.Duration.Seconds(),
		Cover:    t.Cover,
		URL:      t.URL,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Track) UnmarshalJSON(data []byte) error {
	var j trackJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*t = Track{
		ID:       j.ID,
		Title:    j.Title,
		Artist:   j.Artist,
		Album:    j.Album,
		Duration: time.Duration(j.Duration * float64(time.Second)),
		Cover:    j.Cover,
		URL:      j.URL,
	}
	return nil
}

// DisplayArtist returns the artist, or a placeholder when unknown.
func (t Track) DisplayArtist() string {
	if t.Artist == "" {
		return "Unknown Artist"
	}
	return t.Artist
}
