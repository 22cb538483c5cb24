package search

import (
	"testing"

	"github.com/llehouerou/ripple/internal/playlist"
)

func titles(tracks []playlist.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.Title
	}
	return out
}

func library() []playlist.Track {
	return []playlist.Track{
		{ID: "1", Title: "Blue Train", Artist: "John Coltrane", Album: "Blue Train"},
		{ID: "2", Title: "Moment's Notice", Artist: "John Coltrane", Album: "Blue Train"},
		{ID: "3", Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue"},
		{ID: "4", Title: "Halo", Artist: "Beyoncé", Album: "I Am... Sasha Fierce"},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello", "hello"},
		{"MixedCase", "mixedcase"},
		{"", ""},
		{"Beyoncé", "beyonce"},
		{"Sigur Rós", "sigur ros"},
		{"Moment's Notice", "moments notice"},
		{"Don’t Stop", "dont stop"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalize(tt.input); got != tt.expected {
				t.Errorf("normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTrigrams(t *testing.T) {
	if got := trigrams(""); got != nil {
		t.Errorf("trigrams(\"\") = %v, want nil", got)
	}

	got := trigrams("abc")
	for _, tri := range []string{"  a", " ab", "abc", "bc ", "c  "} {
		if _, ok := got[tri]; !ok {
			t.Errorf("trigrams(\"abc\") missing %q", tri)
		}
	}
	if len(got) != 5 {
		t.Errorf("trigrams(\"abc\") has %d entries, want 5", len(got))
	}
}

func TestCoverage(t *testing.T) {
	q := trigrams("abc")
	if got := coverage(q, q); got != 1 {
		t.Errorf("coverage(self) = %f, want 1", got)
	}
	if got := coverage(q, trigrams("xyz")); got != 0 {
		t.Errorf("coverage(disjoint) = %f, want 0", got)
	}
	if got := coverage(nil, q); got != 0 {
		t.Errorf("coverage(empty query) = %f, want 0", got)
	}
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	ix := NewIndex(library())

	got := ix.Search("   ")
	if len(got) != 4 {
		t.Fatalf("Search(blank) returned %d tracks, want 4", len(got))
	}
	for i, m := range ix.Match("") {
		if m.Index != i || m.Score != 0 {
			t.Errorf("Match(\"\")[%d] = %+v, want index %d score 0", i, m, i)
		}
	}
}

func TestSearch_MatchesArtistAndAlbum(t *testing.T) {
	ix := NewIndex(library())

	got := titles(ix.Search("coltrane"))
	if len(got) != 2 || got[0] != "Blue Train" || got[1] != "Moment's Notice" {
		t.Errorf("Search(coltrane) = %v", got)
	}

	got = titles(ix.Search("kind of blue"))
	if len(got) != 1 || got[0] != "So What" {
		t.Errorf("Search(kind of blue) = %v", got)
	}
}

func TestSearch_AllWordsMustMatch(t *testing.T) {
	ix := NewIndex(library())

	got := titles(ix.Search("blue miles"))
	if len(got) != 1 || got[0] != "So What" {
		t.Errorf("Search(blue miles) = %v, want [So What]", got)
	}
}

func TestSearch_FoldsDiacriticsAndApostrophes(t *testing.T) {
	ix := NewIndex(library())

	if got := titles(ix.Search("beyonce")); len(got) != 1 || got[0] != "Halo" {
		t.Errorf("Search(beyonce) = %v, want [Halo]", got)
	}
	if got := titles(ix.Search("moments")); len(got) != 1 || got[0] != "Moment's Notice" {
		t.Errorf("Search(moments) = %v, want [Moment's Notice]", got)
	}
}

func TestSearch_ShortWordsUseSubstring(t *testing.T) {
	ix := NewIndex(library())

	got := ix.Search("so")
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("Search(so) = %v, want track 3", titles(got))
	}
}

func TestSearch_NoMatch(t *testing.T) {
	ix := NewIndex(library())

	if got := ix.Search("xylophone"); len(got) != 0 {
		t.Errorf("Search(xylophone) = %v, want none", titles(got))
	}
}

func TestMatch_SortedByScore(t *testing.T) {
	ix := NewIndex([]playlist.Track{
		{Title: "Something Else"},
		{Title: "Train"},
		{Title: "Training Day"},
		{Title: "Unrelated"},
	})

	matches := ix.Match("train")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted: [%d]=%f > [%d]=%f", i, matches[i].Score, i-1, matches[i-1].Score)
		}
	}
}

func TestNewIndex_CopiesInput(t *testing.T) {
	tracks := library()
	ix := NewIndex(tracks)
	tracks[0].Title = "changed"

	if got := ix.Search("blue train")[0].Title; got != "Blue Train" {
		t.Errorf("index observed caller mutation: %q", got)
	}
}
