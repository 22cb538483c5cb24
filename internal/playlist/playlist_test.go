//nolint:goconst // test file with repeated string literals
package playlist

import (
	"encoding/json"
	"testing"
	"time"
)

func ids(tracks []Track) []string {
	result := make([]string, len(tracks))
	for i, t := range tracks {
		result[i] = t.ID
	}
	return result
}

func equalIDs(t *testing.T, got []Track, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func TestIndexOf(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tests := []struct {
		id   string
		want int
	}{
		{"a", 0},
		{"c", 2},
		{"missing", -1},
	}
	for _, tt := range tests {
		if got := IndexOf(tracks, tt.id); got != tt.want {
			t.Errorf("IndexOf(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
	if IndexOf(nil, "a") != -1 {
		t.Error("IndexOf(nil) should be -1")
	}
}

func TestClone_NilReturnsEmpty(t *testing.T) {
	got := Clone(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Clone(nil) = %v, want empty non-nil slice", got)
	}
}

func TestWithout(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "a"}}

	got := Without(tracks, "a")

	equalIDs(t, got, "b")
	equalIDs(t, tracks, "a", "b", "a")
}

func TestMoveToFront(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := MoveToFront(tracks, Track{ID: "c", Title: "new"})

	equalIDs(t, got, "c", "a", "b")
	if got[0].Title != "new" {
		t.Errorf("front Title = %q, want new", got[0].Title)
	}
}

func TestAppendUnique(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}}

	got := AppendUnique(tracks, Track{ID: "b"}, Track{ID: "c"}, Track{ID: "c"})

	equalIDs(t, got, "a", "b", "c")
	equalIDs(t, tracks, "a", "b")
}

func TestMove(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got, ok := Move(tracks, 0, 2)
	if !ok {
		t.Fatal("Move should succeed")
	}
	equalIDs(t, got, "b", "c", "a")
	equalIDs(t, tracks, "a", "b", "c")

	if _, ok := Move(tracks, 3, 0); ok {
		t.Error("Move with out-of-range source should fail")
	}
	if _, ok := Move(tracks, 0, -1); ok {
		t.Error("Move with out-of-range target should fail")
	}
}

func TestTrack_JSON(t *testing.T) {
	tr := Track{
		ID:       "42",
		Title:    "Song",
		Duration: 90 * time.Second,
		URL:      "file:///music/song.mp3",
	}

	data, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if raw["duration"] != 90.0 {
		t.Errorf("duration = %v, want 90 seconds", raw["duration"])
	}
	if _, ok := raw["artist"]; ok {
		t.Error("empty artist should be omitted")
	}

	var back Track
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != tr {
		t.Errorf("round trip = %+v, want %+v", back, tr)
	}
}

func TestTrack_DisplayArtist(t *testing.T) {
	if got := (Track{}).DisplayArtist(); got != "Unknown Artist" {
		t.Errorf("DisplayArtist() = %q", got)
	}
	if got := (Track{Artist: "X"}).DisplayArtist(); got != "X" {
		t.Errorf("DisplayArtist() = %q, want X", got)
	}
}
